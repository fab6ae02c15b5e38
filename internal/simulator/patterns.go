package simulator

import (
	"math"
	"math/rand"
	"time"
)

type Pattern interface {
	Apply(baseValue float64) float64
	Name() string
}

func ParsePattern(name string) Pattern {
	switch name {
	case "daily":
		return &DailyPattern{}
	case "random":
		return &RandomPattern{}
	case "gradual_rise":
		return &GradualRisePattern{startTime: time.Now()}
	case "sine_wave":
		return &SineWavePattern{}
	case "spike":
		return &SpikePattern{}
	default:
		return &SteadyPattern{}
	}
}

// SteadyPattern - constant load
type SteadyPattern struct{}

func (p *SteadyPattern) Apply(baseValue float64) float64 {
	return baseValue
}

func (p *SteadyPattern) Name() string {
	return "steady"
}

// DailyPattern - simulates daily traffic cycle (high during business hours)
type DailyPattern struct{}

func (p *DailyPattern) Apply(baseValue float64) float64 {
	hour := time.Now().Hour()

	var modifier float64
	switch {
	case hour >= 9 && hour <= 11:
		modifier = 1.4
	case hour >= 14 && hour <= 16:
		modifier = 1.3
	case hour >= 17 && hour <= 20:
		modifier = 1.1
	case hour >= 0 && hour <= 6:
		modifier = 0.6
	default:
		modifier = 1.0
	}

	return baseValue * modifier
}

func (p *DailyPattern) Name() string {
	return "daily"
}

// RandomPattern - unpredictable spikes and drops
type RandomPattern struct{}

func (p *RandomPattern) Apply(baseValue float64) float64 {
	// Random modifier between 0.5 and 1.5
	modifier := 0.5 + rand.Float64()
	return baseValue * modifier
}

func (p *RandomPattern) Name() string {
	return "random"
}

// GradualRisePattern - slowly increasing load
type GradualRisePattern struct {
	startTime time.Time
}

func (p *GradualRisePattern) Apply(baseValue float64) float64 {
	elapsed := time.Since(p.startTime)
	minutes := elapsed.Minutes()

	// Increase by 2% per minute, capped at 100% increase
	increasePercent := math.Min(minutes*2, 100)
	modifier := 1.0 + (increasePercent / 100)

	return baseValue * modifier
}

func (p *GradualRisePattern) Name() string {
	return "gradual_rise"
}

// SineWavePattern - smooth oscillation
type SineWavePattern struct {
	Period    time.Duration
	Amplitude float64
}

func (p *SineWavePattern) Apply(baseValue float64) float64 {
	if p.Period == 0 {
		p.Period = 10 * time.Minute
	}
	if p.Amplitude == 0 {
		p.Amplitude = baseValue * 0.2
	}

	elapsed := float64(time.Now().UnixNano())
	periodNano := float64(p.Period.Nanoseconds())
	phase := (elapsed / periodNano) * 2 * math.Pi

	return baseValue + math.Sin(phase)*p.Amplitude
}

func (p *SineWavePattern) Name() string {
	return "sine_wave"
}

// SpikePattern - mostly steady with occasional sharp excursions
type SpikePattern struct {
	Chance     float64
	Multiplier float64
}

func (p *SpikePattern) Apply(baseValue float64) float64 {
	chance := p.Chance
	if chance == 0 {
		chance = 0.05
	}
	multiplier := p.Multiplier
	if multiplier == 0 {
		multiplier = 2.0
	}

	if rand.Float64() < chance {
		return baseValue * multiplier
	}
	return baseValue
}

func (p *SpikePattern) Name() string {
	return "spike"
}
