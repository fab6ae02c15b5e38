package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceLevelFor(t *testing.T) {
	tests := []struct {
		score    float64
		expected ConfidenceLevel
	}{
		{0.95, ConfidenceHigh},
		{0.81, ConfidenceHigh},
		{0.8, ConfidenceMedium},
		{0.51, ConfidenceMedium},
		{0.5, ConfidenceLow},
		{0.0, ConfidenceLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ConfidenceLevelFor(tt.score), "score %v", tt.score)
	}
}

func TestWindow_Current(t *testing.T) {
	assert.Equal(t, 0.0, Window{}.Current())

	w := Window{
		{Value: 10, Timestamp: time.Unix(100, 0)},
		{Value: 20, Timestamp: time.Unix(160, 0)},
	}
	assert.Equal(t, 20.0, w.Current())
}

func TestWindow_Tail(t *testing.T) {
	w := Window{
		{Value: 1}, {Value: 2}, {Value: 3}, {Value: 4},
	}

	assert.Equal(t, []float64{3, 4}, w.Tail(2).Values())
	assert.Equal(t, []float64{1, 2, 3, 4}, w.Tail(10).Values())
	assert.Equal(t, 0, w.Tail(0).Len())
	assert.Equal(t, 0, w.Tail(-1).Len())
}

func TestWindow_Span(t *testing.T) {
	assert.Equal(t, time.Duration(0), Window{}.Span())
	assert.Equal(t, time.Duration(0), Window{{Value: 1, Timestamp: time.Unix(100, 0)}}.Span())

	w := Window{
		{Value: 1, Timestamp: time.Unix(100, 0)},
		{Value: 2, Timestamp: time.Unix(400, 0)},
	}
	assert.Equal(t, 5*time.Minute, w.Span())
}

func TestWindow_ElapsedMinutes(t *testing.T) {
	w := Window{
		{Value: 1, Timestamp: time.Unix(0, 0)},
		{Value: 2, Timestamp: time.Unix(60, 0)},
		{Value: 3, Timestamp: time.Unix(180, 0)},
	}

	assert.Equal(t, []float64{0, 1, 3}, w.ElapsedMinutes())
	assert.Nil(t, Window{}.ElapsedMinutes())
}

func TestNewPredictionRecord(t *testing.T) {
	ttb := 11.0
	result := &PredictionResult{
		MetricName:        "api.cpu_usage",
		CurrentValue:      69,
		Threshold:         80,
		WillBreach:        true,
		Confidence:        0.85,
		TimeToBreach:      &ttb,
		Regime:            RegimeIncreasing,
		HistoricalPattern: "No clear pattern",
	}

	record := NewPredictionRecord(result)

	assert.Equal(t, "api.cpu_usage", record.MetricName)
	assert.Equal(t, 69.0, record.CurrentValue)
	assert.Equal(t, 80.0, record.Threshold)
	assert.True(t, record.WillBreach)
	assert.Equal(t, 0.85, record.Confidence)
	assert.Equal(t, &ttb, record.TimeToBreach)
	assert.Equal(t, RegimeIncreasing, record.Regime)
	assert.Equal(t, "No clear pattern", record.Pattern)
	assert.Nil(t, record.ActualValue)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestAlert_Builders(t *testing.T) {
	alert := NewAlert("title", "message", AlertLevelWarning).
		WithCategory("cpu").
		WithSource("api.cpu_usage").
		WithMetadata(map[string]interface{}{"threshold": 80.0})

	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, "cpu", alert.Category)
	assert.Equal(t, "api.cpu_usage", alert.Source)
	assert.Equal(t, 80.0, alert.Metadata["threshold"])
}

func TestEvent_Builders(t *testing.T) {
	event := NewEvent(EventTypeBreachPredicted, "api.cpu_usage", "Breach predicted").
		WithSeverity(SeverityCritical).
		WithTraceID("trace-1")

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, SeverityCritical, event.Severity)
	assert.Equal(t, "trace-1", event.TraceID)
	assert.Equal(t, "api.cpu_usage", event.MetricName)
}
