package trend

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/opsignal/breachwatch/pkg/models"
)

type Config struct {
	// VolatilityCutoff is the relative-volatility level above which a
	// window is classed volatile regardless of slope.
	VolatilityCutoff float64

	// StabilityMargin scales the mean to form the slope band treated
	// as flat.
	StabilityMargin float64
}

// Analysis is the per-window trend summary consumed by the breach
// predictor and confidence estimator.
type Analysis struct {
	Regime             models.Regime
	RateOfChange       float64 // metric units per minute
	Volatility         float64
	RelativeVolatility float64
	Mean               float64
}

type Analyzer struct {
	config Config
}

func New(cfg Config) *Analyzer {
	if cfg.VolatilityCutoff == 0 {
		cfg.VolatilityCutoff = 0.2
	}
	if cfg.StabilityMargin == 0 {
		cfg.StabilityMargin = 0.01
	}
	return &Analyzer{config: cfg}
}

// Analyze fits a degree-1 least-squares line of value against minutes
// since window start and classifies the regime. Fit failures degrade
// to (Stable, 0); trend analysis never fails a prediction.
func (a *Analyzer) Analyze(window models.Window) Analysis {
	values := window.Values()
	mean := 0.0
	if len(values) > 0 {
		mean = stat.Mean(values, nil)
	}
	neutral := Analysis{Regime: models.RegimeStable, Mean: mean}

	if len(window) < 2 {
		return neutral
	}

	xs := window.ElapsedMinutes()
	if !hasDistinctTimestamps(xs) {
		return neutral
	}

	intercept, slope := stat.LinearRegression(xs, values, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return neutral
	}

	volatility := residualStdDev(xs, values, intercept, slope)

	relativeVolatility := 0.0
	if mean != 0 {
		relativeVolatility = volatility / math.Abs(mean)
	}

	return Analysis{
		Regime:             a.classify(slope, mean, relativeVolatility),
		RateOfChange:       slope,
		Volatility:         volatility,
		RelativeVolatility: relativeVolatility,
		Mean:               mean,
	}
}

// classify applies the ordered regime rules: volatility overrides
// slope, then the stability band, then slope sign.
func (a *Analyzer) classify(slope, mean, relativeVolatility float64) models.Regime {
	switch {
	case relativeVolatility > a.config.VolatilityCutoff:
		return models.RegimeVolatile
	case slope == 0 || math.Abs(slope) < math.Abs(mean)*a.config.StabilityMargin:
		return models.RegimeStable
	case slope > 0:
		return models.RegimeIncreasing
	default:
		return models.RegimeDecreasing
	}
}

func residualStdDev(xs, ys []float64, intercept, slope float64) float64 {
	residuals := make([]float64, len(ys))
	for i := range ys {
		residuals[i] = ys[i] - (intercept + slope*xs[i])
	}
	sd := stat.StdDev(residuals, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd
}

func hasDistinctTimestamps(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return true
		}
	}
	return false
}
