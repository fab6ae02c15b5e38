package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsignal/breachwatch/pkg/models"
)

func receiveEvent(t *testing.T, ch <-chan *models.Event) *models.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestEventBus_SubscribeAndPublish(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeBreachPredicted)

	bus.Publish(models.NewEvent(models.EventTypeBreachPredicted, "api.cpu_usage", "Breach predicted"))

	event := receiveEvent(t, ch)
	assert.Equal(t, models.EventTypeBreachPredicted, event.Type)
	assert.Equal(t, "api.cpu_usage", event.MetricName)
}

func TestEventBus_TypedSubscriptionFilters(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeAlertRaised)

	bus.Publish(models.NewEvent(models.EventTypeSamplesIngested, "m", "ingested"))

	select {
	case event := <-ch:
		t.Fatalf("unexpected event delivered: %s", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.SubscribeAll()

	bus.Publish(models.NewEvent(models.EventTypeSamplesIngested, "m", "ingested"))
	bus.Publish(models.NewEvent(models.EventTypeAlertRaised, "m", "alert"))

	first := receiveEvent(t, ch)
	second := receiveEvent(t, ch)
	assert.Equal(t, models.EventTypeSamplesIngested, first.Type)
	assert.Equal(t, models.EventTypeAlertRaised, second.Type)
}

func TestEventBus_PublishAfterCloseIsNoop(t *testing.T) {
	bus := NewEventBus(10)
	bus.Close()

	assert.NotPanics(t, func() {
		bus.Publish(models.NewEvent(models.EventTypeError, "m", "err"))
	})
}

func TestPublisher_PredictionCompleted_EmitsBreachEvent(t *testing.T) {
	tests := []struct {
		name             string
		timeToBreach     *float64
		expectedSeverity models.EventSeverity
	}{
		{name: "imminent breach is critical", timeToBreach: ptrFloat(10), expectedSeverity: models.SeverityCritical},
		{name: "distant breach is warning", timeToBreach: ptrFloat(45), expectedSeverity: models.SeverityWarning},
		{name: "no horizon is warning", timeToBreach: nil, expectedSeverity: models.SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := NewEventBus(10)
			defer bus.Close()

			completed := bus.Subscribe(models.EventTypePredictionCompleted)
			breaches := bus.Subscribe(models.EventTypeBreachPredicted)

			publisher := NewPublisher(bus)
			publisher.PredictionCompleted(&models.PredictionResult{
				MetricName:   "api.cpu_usage",
				WillBreach:   true,
				TimeToBreach: tt.timeToBreach,
			})

			receiveEvent(t, completed)
			breach := receiveEvent(t, breaches)
			assert.Equal(t, tt.expectedSeverity, breach.Severity)
		})
	}
}

func TestPublisher_PredictionCompleted_NoBreachEvent(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	breaches := bus.Subscribe(models.EventTypeBreachPredicted)

	publisher := NewPublisher(bus)
	publisher.PredictionCompleted(&models.PredictionResult{
		MetricName: "api.cpu_usage",
		WillBreach: false,
	})

	select {
	case <-breaches:
		t.Fatal("no-breach prediction must not emit a breach event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublisher_WithTraceID(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeStoreDegraded)

	publisher := NewPublisher(bus).WithTraceID("trace-123")
	publisher.StoreDegraded("api.cpu_usage", assert.AnError)

	event := receiveEvent(t, ch)
	require.NotNil(t, event)
	assert.Equal(t, "trace-123", event.TraceID)
}

func ptrFloat(f float64) *float64 { return &f }
