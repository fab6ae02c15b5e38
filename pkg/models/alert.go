package models

import "time"

type AlertLevel string

const (
	AlertLevelInfo     AlertLevel = "info"
	AlertLevelWarning  AlertLevel = "warning"
	AlertLevelCritical AlertLevel = "critical"
)

// Alert is the payload handed to the external dispatch service. The
// dispatcher owns delivery, routing and deduplication; the engine only
// assembles the payload.
type Alert struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Level     AlertLevel             `json:"level"`
	Category  string                 `json:"category"`
	Source    string                 `json:"source"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

func NewAlert(title, message string, level AlertLevel) *Alert {
	return &Alert{
		ID:        NewUUID(),
		Title:     title,
		Message:   message,
		Level:     level,
		CreatedAt: time.Now(),
	}
}

func (a *Alert) WithCategory(category string) *Alert {
	a.Category = category
	return a
}

func (a *Alert) WithSource(source string) *Alert {
	a.Source = source
	return a
}

func (a *Alert) WithMetadata(metadata map[string]interface{}) *Alert {
	a.Metadata = metadata
	return a
}
