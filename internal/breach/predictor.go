package breach

import (
	"github.com/opsignal/breachwatch/pkg/models"
)

type Config struct {
	// HorizonCapMinutes bounds how far ahead a slope extrapolation is
	// trusted; projections beyond it are reported as no-breach.
	HorizonCapMinutes float64

	// PeakMargin is the overshoot multiplier applied to the
	// extrapolated value at breach time.
	PeakMargin float64

	// VolatileTriggerRatio scales the threshold for the volatile
	// near-miss check against the recent maximum.
	VolatileTriggerRatio float64

	// VolatilePeakMargin scales the threshold to a conservative peak
	// estimate for volatile windows.
	VolatilePeakMargin float64

	// VolatileTimeToBreachMinutes is the fixed horizon reported for a
	// volatile near-miss; volatile series are not extrapolated by slope.
	VolatileTimeToBreachMinutes float64

	// VolatileLookbackSamples is how many trailing samples the
	// volatile near-miss check inspects.
	VolatileLookbackSamples int
}

// Prediction is the breach verdict for one window.
type Prediction struct {
	WillBreach    bool
	TimeToBreach  *float64 // minutes; nil when no breach is predicted
	PredictedPeak float64
}

type ruleInput struct {
	window       models.Window
	current      float64
	threshold    float64
	regime       models.Regime
	rateOfChange float64
}

// rule is one entry of the priority-ordered decision table. applies
// reports whether the rule claims the input; eval produces the verdict.
type rule struct {
	name    string
	applies func(in ruleInput) bool
	eval    func(in ruleInput) Prediction
}

type Predictor struct {
	config Config
	rules  []rule
}

func New(cfg Config) *Predictor {
	if cfg.HorizonCapMinutes == 0 {
		cfg.HorizonCapMinutes = 240.0
	}
	if cfg.PeakMargin == 0 {
		cfg.PeakMargin = 1.2
	}
	if cfg.VolatileTriggerRatio == 0 {
		cfg.VolatileTriggerRatio = 0.9
	}
	if cfg.VolatilePeakMargin == 0 {
		cfg.VolatilePeakMargin = 1.1
	}
	if cfg.VolatileTimeToBreachMinutes == 0 {
		cfg.VolatileTimeToBreachMinutes = 30.0
	}
	if cfg.VolatileLookbackSamples == 0 {
		cfg.VolatileLookbackSamples = 10
	}

	p := &Predictor{config: cfg}
	p.rules = []rule{
		{name: "already_breached", applies: p.alreadyBreached, eval: p.evalAlreadyBreached},
		{name: "non_increasing_regime", applies: p.nonIncreasingRegime, eval: p.evalNoBreach},
		{name: "linear_extrapolation", applies: p.increasingWithPositiveRate, eval: p.evalExtrapolation},
		{name: "volatile_near_miss", applies: p.volatileRegime, eval: p.evalVolatile},
	}
	return p
}

// Predict runs the window through the ordered rule table; the first
// rule that applies wins. The explicit ordering avoids false negatives
// on volatile metrics that a naive slope fit would under-predict.
func (p *Predictor) Predict(window models.Window, threshold float64, regime models.Regime, rateOfChange float64) Prediction {
	in := ruleInput{
		window:       window,
		current:      window.Current(),
		threshold:    threshold,
		regime:       regime,
		rateOfChange: rateOfChange,
	}

	for _, r := range p.rules {
		if r.applies(in) {
			return r.eval(in)
		}
	}
	return Prediction{WillBreach: false}
}

func (p *Predictor) alreadyBreached(in ruleInput) bool {
	return in.current >= in.threshold
}

func (p *Predictor) evalAlreadyBreached(in ruleInput) Prediction {
	zero := 0.0
	return Prediction{
		WillBreach:    true,
		TimeToBreach:  &zero,
		PredictedPeak: in.current,
	}
}

func (p *Predictor) nonIncreasingRegime(in ruleInput) bool {
	return in.regime == models.RegimeStable || in.regime == models.RegimeDecreasing
}

func (p *Predictor) evalNoBreach(in ruleInput) Prediction {
	return Prediction{WillBreach: false}
}

func (p *Predictor) increasingWithPositiveRate(in ruleInput) bool {
	return in.regime == models.RegimeIncreasing && in.rateOfChange > 0
}

func (p *Predictor) evalExtrapolation(in ruleInput) Prediction {
	minutes := (in.threshold - in.current) / in.rateOfChange
	if minutes > p.config.HorizonCapMinutes {
		// Too speculative to report.
		return Prediction{WillBreach: false}
	}
	return Prediction{
		WillBreach:    true,
		TimeToBreach:  &minutes,
		PredictedPeak: in.current + in.rateOfChange*minutes*p.config.PeakMargin,
	}
}

func (p *Predictor) volatileRegime(in ruleInput) bool {
	return in.regime == models.RegimeVolatile
}

func (p *Predictor) evalVolatile(in ruleInput) Prediction {
	recent := in.window.Tail(p.config.VolatileLookbackSamples)
	if recent.Len() == 0 {
		return Prediction{WillBreach: false}
	}

	max := recent[0].Value
	for _, s := range recent[1:] {
		if s.Value > max {
			max = s.Value
		}
	}

	if max >= p.config.VolatileTriggerRatio*in.threshold {
		ttb := p.config.VolatileTimeToBreachMinutes
		return Prediction{
			WillBreach:    true,
			TimeToBreach:  &ttb,
			PredictedPeak: in.threshold * p.config.VolatilePeakMargin,
		}
	}
	return Prediction{WillBreach: false}
}
