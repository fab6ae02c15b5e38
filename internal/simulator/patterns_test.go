package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "steady", expected: "steady"},
		{input: "daily", expected: "daily"},
		{input: "random", expected: "random"},
		{input: "gradual_rise", expected: "gradual_rise"},
		{input: "sine_wave", expected: "sine_wave"},
		{input: "spike", expected: "spike"},
		{input: "unknown", expected: "steady"},
		{input: "", expected: "steady"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePattern(tt.input).Name())
		})
	}
}

func TestSteadyPattern(t *testing.T) {
	p := &SteadyPattern{}
	assert.Equal(t, 50.0, p.Apply(50.0))
}

func TestRandomPattern_Bounds(t *testing.T) {
	p := &RandomPattern{}
	for i := 0; i < 100; i++ {
		v := p.Apply(50.0)
		assert.GreaterOrEqual(t, v, 25.0)
		assert.LessOrEqual(t, v, 75.0)
	}
}

func TestGradualRisePattern(t *testing.T) {
	p := &GradualRisePattern{startTime: time.Now().Add(-10 * time.Minute)}
	v := p.Apply(50.0)
	assert.InDelta(t, 60.0, v, 0.5)

	// Capped at double the base value.
	capped := &GradualRisePattern{startTime: time.Now().Add(-24 * time.Hour)}
	assert.InDelta(t, 100.0, capped.Apply(50.0), 0.01)
}

func TestSineWavePattern_Bounds(t *testing.T) {
	p := &SineWavePattern{Period: time.Minute, Amplitude: 5}
	for i := 0; i < 20; i++ {
		v := p.Apply(50.0)
		assert.GreaterOrEqual(t, v, 45.0)
		assert.LessOrEqual(t, v, 55.0)
	}
}

func TestSpikePattern(t *testing.T) {
	base := &SpikePattern{Chance: 0, Multiplier: 3}
	seen := map[float64]bool{}
	for i := 0; i < 1000; i++ {
		seen[base.Apply(50.0)] = true
	}
	// Default 5% chance should surface both values over 1000 draws.
	assert.True(t, seen[50.0])
	assert.True(t, seen[150.0])
}
