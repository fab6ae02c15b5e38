package confidence

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/opsignal/breachwatch/pkg/models"
)

type Config struct {
	// FullWindowSamples is the sample count at which the data
	// sufficiency factor saturates.
	FullWindowSamples int

	// ConsistencySamples is how many trailing samples feed the
	// short-term consistency factor.
	ConsistencySamples int

	// MinConsistencySamples gates the consistency factor; below it the
	// factor is omitted and the remaining weights renormalized.
	MinConsistencySamples int
}

// Factor weights. Regime clarity and short-term consistency dominate;
// raw sample volume and breach certainty temper the score.
const (
	weightSufficiency = 0.2
	weightClarity     = 0.3
	weightConsistency = 0.3
	weightCertainty   = 0.2
)

var regimeClarity = map[models.Regime]float64{
	models.RegimeIncreasing: 0.9,
	models.RegimeStable:     0.8,
	models.RegimeDecreasing: 0.7,
	models.RegimeVolatile:   0.4,
}

type Estimator struct {
	config Config
}

func New(cfg Config) *Estimator {
	if cfg.FullWindowSamples == 0 {
		cfg.FullWindowSamples = 60
	}
	if cfg.ConsistencySamples == 0 {
		cfg.ConsistencySamples = 10
	}
	if cfg.MinConsistencySamples == 0 {
		cfg.MinConsistencySamples = 5
	}
	return &Estimator{config: cfg}
}

// Score combines the four independent factors into one [0,1] value,
// rounded to 3 decimals. A confident no-breach call scores as well as
// a confident breach call.
func (e *Estimator) Score(window models.Window, regime models.Regime, rateOfChange float64, willBreach bool) float64 {
	weightedSum := 0.0
	totalWeight := 0.0

	weightedSum += weightSufficiency * e.dataSufficiency(window)
	totalWeight += weightSufficiency

	weightedSum += weightClarity * regimeClarity[regime]
	totalWeight += weightClarity

	if consistency, ok := e.shortTermConsistency(window); ok {
		weightedSum += weightConsistency * consistency
		totalWeight += weightConsistency
	}

	weightedSum += weightCertainty * e.predictionCertainty(window, rateOfChange, willBreach)
	totalWeight += weightCertainty

	score := weightedSum / totalWeight
	score = math.Round(score*1000) / 1000

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func (e *Estimator) dataSufficiency(window models.Window) float64 {
	return math.Min(float64(window.Len())/float64(e.config.FullWindowSamples), 1.0)
}

// shortTermConsistency measures how regular the most recent
// sample-to-sample movements are. Omitted for tiny windows.
func (e *Estimator) shortTermConsistency(window models.Window) (float64, bool) {
	if window.Len() < e.config.MinConsistencySamples {
		return 0, false
	}

	recent := window.Tail(e.config.ConsistencySamples).Values()
	mean := stat.Mean(recent, nil)
	if mean == 0 {
		return 0, false
	}

	diffs := make([]float64, len(recent)-1)
	for i := 1; i < len(recent); i++ {
		diffs[i-1] = recent[i] - recent[i-1]
	}

	variance := stat.Variance(diffs, nil)
	if math.IsNaN(variance) {
		return 0, false
	}

	relativeVariance := variance / (mean * mean)
	return 1.0 / (1.0 + relativeVariance), true
}

func (e *Estimator) predictionCertainty(window models.Window, rateOfChange float64, willBreach bool) float64 {
	if !willBreach {
		return 0.9
	}

	mean := stat.Mean(window.Values(), nil)
	if math.Abs(rateOfChange) > math.Abs(mean)*0.1 {
		// Steep slopes extrapolate poorly.
		return 0.6
	}
	return 0.8
}
