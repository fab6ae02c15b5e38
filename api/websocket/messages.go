package websocket

import "time"

type MessageType string

const (
	MessageTypePrediction MessageType = "prediction"
	MessageTypeBreach     MessageType = "breach_predicted"
	MessageTypeAlert      MessageType = "alert"
	MessageTypeStore      MessageType = "store_degraded"
	MessageTypeError      MessageType = "error"
)

// OutgoingMessage is the wire format sent to connected clients.
type OutgoingMessage struct {
	Type       MessageType `json:"type"`
	MetricName string      `json:"metric_name"`
	Timestamp  time.Time   `json:"timestamp"`
	Severity   string      `json:"severity,omitempty"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}
