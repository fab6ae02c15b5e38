package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsignal/breachwatch/internal/events"
	"github.com/opsignal/breachwatch/pkg/models"
)

func ptr(f float64) *float64 { return &f }

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name         string
		timeToBreach *float64
		expected     models.AlertLevel
	}{
		{name: "imminent breach is critical", timeToBreach: ptr(10), expected: models.AlertLevelCritical},
		{name: "near breach is warning", timeToBreach: ptr(45), expected: models.AlertLevelWarning},
		{name: "distant breach is info", timeToBreach: ptr(180), expected: models.AlertLevelInfo},
		{name: "no horizon is info", timeToBreach: nil, expected: models.AlertLevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevelFor(tt.timeToBreach))
		})
	}
}

func TestBuild(t *testing.T) {
	result := &models.PredictionResult{
		MetricName:        "api.cpu_usage",
		CurrentValue:      69,
		Threshold:         80,
		WillBreach:        true,
		Confidence:        0.85,
		ConfidenceLevel:   models.ConfidenceHigh,
		TimeToBreach:      ptr(11),
		Regime:            models.RegimeIncreasing,
		RateOfChange:      1.0,
		PredictedPeak:     82.2,
		HistoricalPattern: "No clear pattern",
		GeneratedAt:       time.Now(),
	}

	alert := Build(result)

	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, "Predicted threshold breach: api.cpu_usage", alert.Title)
	assert.Contains(t, alert.Message, "~11 minutes")
	assert.Contains(t, alert.Message, "85%")
	assert.Equal(t, models.AlertLevelCritical, alert.Level)
	assert.Equal(t, "cpu", alert.Category)
	assert.Equal(t, "api.cpu_usage", alert.Source)
	assert.Equal(t, 80.0, alert.Metadata["threshold"])
	assert.Equal(t, 11.0, alert.Metadata["time_to_breach_minutes"])
}

func TestBuild_NoHorizon(t *testing.T) {
	result := &models.PredictionResult{
		MetricName: "heap_bytes",
		Threshold:  1024,
		WillBreach: true,
		Regime:     models.RegimeVolatile,
	}

	alert := Build(result)

	assert.Equal(t, models.AlertLevelInfo, alert.Level)
	assert.Equal(t, "memory", alert.Category)
	assert.NotContains(t, alert.Metadata, "time_to_breach_minutes")
}

func TestBusDispatcher_CreateAlert(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()

	received := bus.Subscribe(models.EventTypeAlertRaised)
	dispatcher := NewBusDispatcher(events.NewPublisher(bus))

	alert := models.NewAlert("title", "message", models.AlertLevelWarning)
	handle, err := dispatcher.CreateAlert(context.Background(), alert)

	require.NoError(t, err)
	assert.Equal(t, alert.ID, handle)

	select {
	case event := <-received:
		assert.Equal(t, models.EventTypeAlertRaised, event.Type)
	case <-time.After(time.Second):
		t.Fatal("expected alert_raised event")
	}
}
