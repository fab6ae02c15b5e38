package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/opsignal/breachwatch/pkg/models"
)

// MemoryStore keeps samples in process memory. Used by tests and the
// load generator; it honors the same contract as the Postgres store.
type MemoryStore struct {
	mu      sync.RWMutex
	samples map[string]models.Window
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		samples: make(map[string]models.Window),
	}
}

func (s *MemoryStore) GetWindow(ctx context.Context, metricName string, lookback time.Duration) (models.Window, error) {
	if lookback <= 0 {
		return nil, ErrInvalidLookback
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Add(-lookback)
	var window models.Window
	for _, sample := range s.samples[metricName] {
		if !sample.Timestamp.Before(cutoff) {
			window = append(window, sample)
		}
	}
	return window, nil
}

func (s *MemoryStore) AppendSamples(ctx context.Context, metricName string, samples []models.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := append(s.samples[metricName], samples...)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	s.samples[metricName] = merged
	return nil
}

func (s *MemoryStore) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
