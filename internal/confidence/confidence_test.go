package confidence

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/opsignal/breachwatch/pkg/models"
)

func makeWindow(values []float64) models.Window {
	start := time.Now().Add(-time.Duration(len(values)) * time.Minute)
	window := make(models.Window, len(values))
	for i, v := range values {
		window[i] = models.Sample{
			Value:     v,
			Timestamp: start.Add(time.Duration(i) * time.Minute),
		}
	}
	return window
}

func repeat(value float64, count int) []float64 {
	values := make([]float64, count)
	for i := range values {
		values[i] = value
	}
	return values
}

func TestEstimator_Score_Bounds(t *testing.T) {
	tests := []struct {
		name       string
		values     []float64
		regime     models.Regime
		willBreach bool
	}{
		{name: "constant no breach", values: repeat(42, 15), regime: models.RegimeStable, willBreach: false},
		{name: "volatile breach", values: []float64{50, 90, 50, 90, 50, 90, 50, 90, 50, 90}, regime: models.RegimeVolatile, willBreach: true},
		{name: "tiny window", values: repeat(10, 3), regime: models.RegimeStable, willBreach: false},
		{name: "empty window", values: nil, regime: models.RegimeStable, willBreach: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(Config{})

			score := e.Score(makeWindow(tt.values), tt.regime, 0, tt.willBreach)

			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
			assert.Equal(t, math.Round(score*1000)/1000, score, "score must be rounded to 3 decimals")
		})
	}
}

func TestEstimator_Score_ConstantStableWindow(t *testing.T) {
	e := New(Config{})

	// 15/60 sufficiency, 0.8 stable clarity, perfect consistency,
	// 0.9 no-breach certainty.
	score := e.Score(makeWindow(repeat(42, 15)), models.RegimeStable, 0, false)

	assert.InDelta(t, 0.77, score, 0.001)
}

func TestEstimator_Score_OmitsConsistencyForTinyWindows(t *testing.T) {
	e := New(Config{})

	// Below the consistency gate the remaining weights renormalize:
	// (0.2*0.05 + 0.3*0.8 + 0.2*0.9) / 0.7
	score := e.Score(makeWindow(repeat(10, 3)), models.RegimeStable, 0, false)

	assert.InDelta(t, 0.614, score, 0.001)
}

func TestEstimator_Score_CleanTrendBeatsVolatile(t *testing.T) {
	e := New(Config{})

	clean := make([]float64, 30)
	volatile := make([]float64, 30)
	for i := range clean {
		clean[i] = 50 + float64(i)
		if i%2 == 0 {
			volatile[i] = 50
		} else {
			volatile[i] = 90
		}
	}

	cleanScore := e.Score(makeWindow(clean), models.RegimeIncreasing, 1.0, false)
	volatileScore := e.Score(makeWindow(volatile), models.RegimeVolatile, 0, false)

	assert.Greater(t, cleanScore, volatileScore)
}

func TestEstimator_Score_SteepSlopeLowersCertainty(t *testing.T) {
	e := New(Config{})

	values := make([]float64, 20)
	for i := range values {
		values[i] = 10 + 5*float64(i)
	}
	window := makeWindow(values)

	// Same window, steep rate vs shallow rate, both predicted to breach.
	steep := e.Score(window, models.RegimeIncreasing, 50.0, true)
	shallow := e.Score(window, models.RegimeIncreasing, 0.5, true)

	assert.Greater(t, shallow, steep)
}

func TestEstimator_Score_ZeroMeanOmitsConsistency(t *testing.T) {
	e := New(Config{})

	// All-zero recent values cannot be normalized; the factor is
	// dropped instead of dividing by zero.
	score := e.Score(makeWindow(repeat(0, 15)), models.RegimeStable, 0, false)

	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}
