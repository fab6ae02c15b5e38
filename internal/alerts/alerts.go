package alerts

import (
	"context"
	"errors"
	"fmt"

	"github.com/opsignal/breachwatch/internal/actions"
	"github.com/opsignal/breachwatch/internal/events"
	"github.com/opsignal/breachwatch/pkg/models"
)

var ErrNoDispatcher = errors.New("no alert dispatcher configured")

// Dispatcher is the boundary to the external alert service, which owns
// delivery, routing and deduplication. CreateAlert returns an opaque
// handle for the accepted alert.
type Dispatcher interface {
	CreateAlert(ctx context.Context, alert *models.Alert) (string, error)
}

// LevelFor derives the alert level from predicted time to breach:
// under 15 minutes is critical, under an hour a warning.
func LevelFor(timeToBreach *float64) models.AlertLevel {
	if timeToBreach == nil {
		return models.AlertLevelInfo
	}
	switch {
	case *timeToBreach < 15:
		return models.AlertLevelCritical
	case *timeToBreach < 60:
		return models.AlertLevelWarning
	default:
		return models.AlertLevelInfo
	}
}

// Build assembles the alert payload for a breach prediction.
func Build(result *models.PredictionResult) *models.Alert {
	title := fmt.Sprintf("Predicted threshold breach: %s", result.MetricName)

	var message string
	if result.TimeToBreach != nil {
		message = fmt.Sprintf(
			"%s is predicted to reach its threshold of %.2f in ~%.0f minutes (current: %.2f, trend: %s, confidence: %.0f%%)",
			result.MetricName, result.Threshold, *result.TimeToBreach,
			result.CurrentValue, result.Regime, result.Confidence*100,
		)
	} else {
		message = fmt.Sprintf(
			"%s is predicted to reach its threshold of %.2f (current: %.2f, trend: %s, confidence: %.0f%%)",
			result.MetricName, result.Threshold,
			result.CurrentValue, result.Regime, result.Confidence*100,
		)
	}

	metadata := map[string]interface{}{
		"threshold":        result.Threshold,
		"current_value":    result.CurrentValue,
		"confidence":       result.Confidence,
		"confidence_level": result.ConfidenceLevel,
		"regime":           result.Regime,
		"rate_of_change":   result.RateOfChange,
		"predicted_peak":   result.PredictedPeak,
		"pattern":          result.HistoricalPattern,
	}
	if result.TimeToBreach != nil {
		metadata["time_to_breach_minutes"] = *result.TimeToBreach
	}

	return models.NewAlert(title, message, LevelFor(result.TimeToBreach)).
		WithCategory(actions.CategoryFor(result.MetricName).String()).
		WithSource(result.MetricName).
		WithMetadata(metadata)
}

// BusDispatcher publishes alerts onto the internal event bus, where
// the dispatch service's consumer (and the websocket bridge) pick them
// up. It stands in for a remote dispatch client in single-node
// deployments.
type BusDispatcher struct {
	publisher *events.Publisher
}

func NewBusDispatcher(publisher *events.Publisher) *BusDispatcher {
	return &BusDispatcher{publisher: publisher}
}

func (d *BusDispatcher) CreateAlert(ctx context.Context, alert *models.Alert) (string, error) {
	d.publisher.AlertRaised(alert)
	return alert.ID, nil
}
