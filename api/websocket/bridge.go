package websocket

import (
	"context"
	"encoding/json"

	"github.com/opsignal/breachwatch/internal/logger"
	"github.com/opsignal/breachwatch/pkg/models"
)

// EventBridge forwards internal engine events to WebSocket clients
type EventBridge struct {
	hub        *Hub
	eventsChan <-chan *models.Event
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewEventBridge(hub *Hub, eventsChan <-chan *models.Event) *EventBridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventBridge{
		hub:        hub,
		eventsChan: eventsChan,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins listening for events and forwarding to WebSocket clients
func (b *EventBridge) Start() {
	go b.run()
	logger.Info("WebSocket event bridge started")
}

// Stop stops the event bridge
func (b *EventBridge) Stop() {
	b.cancel()
	logger.Info("WebSocket event bridge stopped")
}

func (b *EventBridge) run() {
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.eventsChan:
			if !ok {
				logger.Info("Event channel closed, stopping bridge")
				return
			}
			b.forwardEvent(event)
		}
	}
}

func (b *EventBridge) forwardEvent(event *models.Event) {
	wsMessage := b.convertToWSMessage(event)
	if wsMessage == nil {
		return
	}

	data, err := json.Marshal(wsMessage)
	if err != nil {
		logger.Errorf("Failed to marshal WebSocket message: %v", err)
		return
	}

	b.hub.BroadcastToMetric(event.MetricName, data)
}

func (b *EventBridge) convertToWSMessage(event *models.Event) *OutgoingMessage {
	msgType, ok := mapEventType(event.Type)
	if !ok {
		return nil // Skip events we don't want to broadcast
	}

	return &OutgoingMessage{
		Type:       msgType,
		MetricName: event.MetricName,
		Timestamp:  event.Timestamp,
		Severity:   string(event.Severity),
		Message:    event.Message,
		Data:       event.Data,
	}
}

func mapEventType(eventType models.EventType) (MessageType, bool) {
	switch eventType {
	case models.EventTypePredictionCompleted:
		return MessageTypePrediction, true
	case models.EventTypeBreachPredicted:
		return MessageTypeBreach, true
	case models.EventTypeAlertRaised:
		return MessageTypeAlert, true
	case models.EventTypeStoreDegraded:
		return MessageTypeStore, true
	case models.EventTypeError:
		return MessageTypeError, true
	default:
		// Skip samples_ingested and other internal events
		return "", false
	}
}
