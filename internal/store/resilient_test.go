package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsignal/breachwatch/internal/resilience"
	"github.com/opsignal/breachwatch/pkg/models"
)

type flakyStore struct {
	failing bool
	calls   int
}

func (s *flakyStore) GetWindow(ctx context.Context, metricName string, lookback time.Duration) (models.Window, error) {
	s.calls++
	if s.failing {
		return nil, errors.New("connection refused")
	}
	return models.Window{{Value: 1, Timestamp: time.Now()}}, nil
}

func (s *flakyStore) AppendSamples(ctx context.Context, metricName string, samples []models.Sample) error {
	s.calls++
	if s.failing {
		return errors.New("connection refused")
	}
	return nil
}

func (s *flakyStore) HealthCheck(ctx context.Context) error { return nil }
func (s *flakyStore) Close() error                          { return nil }

func TestResilientStore_PassesThroughWhenHealthy(t *testing.T) {
	inner := &flakyStore{}
	st := NewResilientStore(ResilientStoreConfig{Store: inner, MaxFailures: 3, Timeout: time.Minute})

	window, err := st.GetWindow(context.Background(), "m", time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, window.Len())
	assert.Equal(t, resilience.StateClosed, st.BreakerState())
}

func TestResilientStore_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyStore{failing: true}
	st := NewResilientStore(ResilientStoreConfig{Store: inner, MaxFailures: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := st.GetWindow(context.Background(), "m", time.Hour)
		assert.Error(t, err)
	}

	assert.Equal(t, resilience.StateOpen, st.BreakerState())

	// Open breaker sheds load without touching the inner store.
	callsBefore := inner.calls
	_, err := st.GetWindow(context.Background(), "m", time.Hour)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, callsBefore, inner.calls)
}

func TestResilientStore_RecoversAfterTimeout(t *testing.T) {
	inner := &flakyStore{failing: true}
	st := NewResilientStore(ResilientStoreConfig{Store: inner, MaxFailures: 2, Timeout: 20 * time.Millisecond})

	for i := 0; i < 2; i++ {
		_, _ = st.GetWindow(context.Background(), "m", time.Hour)
	}
	require.Equal(t, resilience.StateOpen, st.BreakerState())

	inner.failing = false
	time.Sleep(30 * time.Millisecond)

	_, err := st.GetWindow(context.Background(), "m", time.Hour)
	assert.NoError(t, err)
}

func TestResilientStore_AppendGuardedByBreaker(t *testing.T) {
	inner := &flakyStore{failing: true}
	st := NewResilientStore(ResilientStoreConfig{Store: inner, MaxFailures: 2, Timeout: time.Minute})

	for i := 0; i < 2; i++ {
		_ = st.AppendSamples(context.Background(), "m", []models.Sample{{Value: 1, Timestamp: time.Now()}})
	}

	err := st.AppendSamples(context.Background(), "m", []models.Sample{{Value: 1, Timestamp: time.Now()}})
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}
