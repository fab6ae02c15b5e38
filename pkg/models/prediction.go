package models

import "time"

// Regime is the qualitative trend classification for a window. It is
// derived fresh on every prediction and never persisted.
type Regime string

const (
	RegimeIncreasing Regime = "increasing"
	RegimeDecreasing Regime = "decreasing"
	RegimeStable     Regime = "stable"
	RegimeVolatile   Regime = "volatile"
)

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ConfidenceLevelFor discretizes a [0,1] confidence score.
func ConfidenceLevelFor(score float64) ConfidenceLevel {
	switch {
	case score > 0.8:
		return ConfidenceHigh
	case score > 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// PredictionResult is the value object returned for one breach
// prediction. It is constructed once per call and never mutated.
type PredictionResult struct {
	MetricName         string                 `json:"metric_name"`
	CurrentValue       float64                `json:"current_value"`
	Threshold          float64                `json:"threshold"`
	WillBreach         bool                   `json:"will_breach"`
	Confidence         float64                `json:"confidence"`
	ConfidenceLevel    ConfidenceLevel        `json:"confidence_level"`
	TimeToBreach       *float64               `json:"time_to_breach_minutes,omitempty"`
	Regime             Regime                 `json:"regime"`
	RateOfChange       float64                `json:"rate_of_change"`
	PredictedPeak      float64                `json:"predicted_peak_value"`
	PredictedPeakTime  *time.Time             `json:"predicted_peak_time,omitempty"`
	RecommendedActions []string               `json:"recommended_actions"`
	HistoricalPattern  string                 `json:"historical_pattern"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
	GeneratedAt        time.Time              `json:"generated_at"`
}

func (r *PredictionResult) IsHighConfidence(threshold float64) bool {
	return r.Confidence >= threshold
}

// PredictionRecord is the durable, append-only projection of a result
// kept for offline accuracy auditing. Retention (bounded count plus
// time expiry) is owned by the store.
type PredictionRecord struct {
	ID           int       `json:"id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	MetricName   string    `json:"metric_name"`
	CurrentValue float64   `json:"current_value"`
	Threshold    float64   `json:"threshold"`
	WillBreach   bool      `json:"will_breach"`
	Confidence   float64   `json:"confidence"`
	TimeToBreach *float64  `json:"time_to_breach_minutes,omitempty"`
	Regime       Regime    `json:"regime"`
	Pattern      string    `json:"pattern,omitempty"`
	ActualValue  *float64  `json:"actual_value,omitempty"`
}

// NewPredictionRecord projects the audited subset of a result.
func NewPredictionRecord(result *PredictionResult) *PredictionRecord {
	return &PredictionRecord{
		CreatedAt:    time.Now(),
		MetricName:   result.MetricName,
		CurrentValue: result.CurrentValue,
		Threshold:    result.Threshold,
		WillBreach:   result.WillBreach,
		Confidence:   result.Confidence,
		TimeToBreach: result.TimeToBreach,
		Regime:       result.Regime,
		Pattern:      result.HistoricalPattern,
	}
}
