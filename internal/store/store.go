package store

import (
	"context"
	"errors"
	"time"

	"github.com/opsignal/breachwatch/pkg/models"
)

var (
	ErrStoreUnavailable = errors.New("sample store unavailable")
	ErrInvalidLookback  = errors.New("lookback must be positive")
)

// SampleStore is the engine's view of the external time-series store.
// An empty window is a valid, non-error response.
type SampleStore interface {
	// GetWindow fetches the samples for a metric covering
	// [now - lookback, now], ascending by timestamp.
	GetWindow(ctx context.Context, metricName string, lookback time.Duration) (models.Window, error)

	// AppendSamples writes samples on behalf of external collectors.
	AppendSamples(ctx context.Context, metricName string, samples []models.Sample) error

	// HealthCheck verifies the store can be reached.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
