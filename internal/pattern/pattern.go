package pattern

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/opsignal/breachwatch/pkg/models"
)

// Descriptions returned by Identify. Diagnostic only; no control flow
// downstream depends on them.
const (
	DescConstant    = "Constant values"
	DescSpike       = "Spike detected in recent data"
	DescStepChange  = "Step change detected"
	DescNoPattern   = "No clear pattern"
	DescUnavailable = "Pattern analysis unavailable"
)

type Config struct {
	// CycleLags are the index offsets probed for cyclical structure,
	// in order. With the usual one-minute cadence they read as minutes.
	CycleLags []int

	// CycleCorrelation is the autocorrelation level that counts as
	// cyclical.
	CycleCorrelation float64

	// MinCycleSamples gates the autocorrelation probe.
	MinCycleSamples int

	// SpikeSamples / SpikeRatio drive the recent-spike check.
	SpikeSamples int
	SpikeRatio   float64

	// MinStepSamples / StepRatio drive the half-window step check.
	MinStepSamples int
	StepRatio      float64
}

type Recognizer struct {
	config Config
}

func New(cfg Config) *Recognizer {
	if len(cfg.CycleLags) == 0 {
		cfg.CycleLags = []int{5, 10, 15}
	}
	if cfg.CycleCorrelation == 0 {
		cfg.CycleCorrelation = 0.7
	}
	if cfg.MinCycleSamples == 0 {
		cfg.MinCycleSamples = 30
	}
	if cfg.SpikeSamples == 0 {
		cfg.SpikeSamples = 10
	}
	if cfg.SpikeRatio == 0 {
		cfg.SpikeRatio = 1.5
	}
	if cfg.MinStepSamples == 0 {
		cfg.MinStepSamples = 20
	}
	if cfg.StepRatio == 0 {
		cfg.StepRatio = 0.3
	}
	return &Recognizer{config: cfg}
}

// Identify describes the dominant historical structure of the window.
// First matching description wins. Numeric failure degrades to
// DescUnavailable and never propagates.
func (r *Recognizer) Identify(window models.Window) (description string) {
	defer func() {
		if recover() != nil {
			description = DescUnavailable
		}
	}()

	values := window.Values()
	if len(values) == 0 {
		return DescNoPattern
	}

	if isConstant(values) {
		return DescConstant
	}

	if lag, ok := r.detectCycle(values); ok {
		return fmt.Sprintf("Cyclical pattern (period: ~%d minutes)", lag)
	}

	if r.detectSpike(window) {
		return DescSpike
	}

	if r.detectStepChange(values) {
		return DescStepChange
	}

	return DescNoPattern
}

func isConstant(values []float64) bool {
	variance := stat.Variance(values, nil)
	return variance == 0 || math.IsNaN(variance) && len(values) == 1
}

// detectCycle correlates the series against itself at each candidate
// lag; the first lag above the cutoff wins.
func (r *Recognizer) detectCycle(values []float64) (int, bool) {
	if len(values) < r.config.MinCycleSamples {
		return 0, false
	}

	for _, lag := range r.config.CycleLags {
		if len(values)-lag < 2 {
			continue
		}
		corr := stat.Correlation(values[:len(values)-lag], values[lag:], nil)
		if !math.IsNaN(corr) && corr > r.config.CycleCorrelation {
			return lag, true
		}
	}
	return 0, false
}

func (r *Recognizer) detectSpike(window models.Window) bool {
	if window.Len() < r.config.SpikeSamples {
		return false
	}

	recent := window.Tail(r.config.SpikeSamples).Values()
	mean := stat.Mean(recent, nil)
	if mean <= 0 {
		return false
	}

	max := recent[0]
	for _, v := range recent[1:] {
		if v > max {
			max = v
		}
	}
	return max > r.config.SpikeRatio*mean
}

func (r *Recognizer) detectStepChange(values []float64) bool {
	if len(values) < r.config.MinStepSamples {
		return false
	}

	half := len(values) / 2
	firstMean := stat.Mean(values[:half], nil)
	secondMean := stat.Mean(values[half:], nil)
	if firstMean == 0 {
		return false
	}

	return math.Abs(secondMean-firstMean) > r.config.StepRatio*math.Abs(firstMean)
}
