package events

import (
	"github.com/opsignal/breachwatch/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) SamplesIngested(metricName string, count int) {
	event := models.NewEvent(models.EventTypeSamplesIngested, metricName, "Samples ingested").
		WithData(map[string]interface{}{"count": count})
	p.publish(event)
}

func (p *Publisher) PredictionCompleted(result *models.PredictionResult) {
	event := models.NewEvent(models.EventTypePredictionCompleted, result.MetricName, "Prediction completed").
		WithData(result)
	p.publish(event)

	if result.WillBreach {
		breach := models.NewEvent(models.EventTypeBreachPredicted, result.MetricName, "Breach predicted").
			WithData(result)

		if result.TimeToBreach != nil && *result.TimeToBreach < 15 {
			breach.WithSeverity(models.SeverityCritical)
		} else {
			breach.WithSeverity(models.SeverityWarning)
		}

		p.publish(breach)
	}
}

func (p *Publisher) AlertRaised(alert *models.Alert) {
	severity := models.SeverityInfo
	switch alert.Level {
	case models.AlertLevelCritical:
		severity = models.SeverityCritical
	case models.AlertLevelWarning:
		severity = models.SeverityWarning
	}

	event := models.NewEvent(models.EventTypeAlertRaised, alert.Source, alert.Title).
		WithSeverity(severity).
		WithData(alert)
	p.publish(event)
}

func (p *Publisher) RecordAppended(record *models.PredictionRecord) {
	event := models.NewEvent(models.EventTypeRecordAppended, record.MetricName, "Prediction record appended").
		WithData(record)
	p.publish(event)
}

func (p *Publisher) StoreDegraded(metricName string, err error) {
	event := models.NewEvent(models.EventTypeStoreDegraded, metricName, "Sample store degraded").
		WithSeverity(models.SeverityWarning).
		WithData(map[string]interface{}{"error": err.Error()})
	p.publish(event)
}

func (p *Publisher) Error(metricName string, message string, err error) {
	event := models.NewEvent(models.EventTypeError, metricName, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{"error": err.Error()})
	p.publish(event)
}
