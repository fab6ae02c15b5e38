package store

import (
	"context"
	"time"

	"github.com/opsignal/breachwatch/internal/logger"
	"github.com/opsignal/breachwatch/internal/resilience"
	"github.com/opsignal/breachwatch/pkg/models"
)

// ResilientStore guards a SampleStore with a circuit breaker. There is
// no retry loop: each prediction is cheap and idempotent, so retry
// policy belongs to the caller.
type ResilientStore struct {
	store   SampleStore
	breaker *resilience.CircuitBreaker
}

type ResilientStoreConfig struct {
	Store         SampleStore
	MaxFailures   int
	Timeout       time.Duration
	OnStateChange func(name string, from, to resilience.State)
}

func NewResilientStore(cfg ResilientStoreConfig) *ResilientStore {
	onStateChange := cfg.OnStateChange
	if onStateChange == nil {
		onStateChange = func(name string, from, to resilience.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		}
	}

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:          "sample-store",
		MaxFailures:   cfg.MaxFailures,
		Timeout:       cfg.Timeout,
		OnStateChange: onStateChange,
	})

	return &ResilientStore{
		store:   cfg.Store,
		breaker: breaker,
	}
}

func (s *ResilientStore) GetWindow(ctx context.Context, metricName string, lookback time.Duration) (models.Window, error) {
	var window models.Window

	err := s.breaker.Execute(func() error {
		var err error
		window, err = s.store.GetWindow(ctx, metricName, lookback)
		return err
	})
	if err != nil {
		return nil, err
	}
	return window, nil
}

func (s *ResilientStore) AppendSamples(ctx context.Context, metricName string, samples []models.Sample) error {
	return s.breaker.Execute(func() error {
		return s.store.AppendSamples(ctx, metricName, samples)
	})
}

func (s *ResilientStore) HealthCheck(ctx context.Context) error {
	return s.store.HealthCheck(ctx)
}

func (s *ResilientStore) Close() error {
	return s.store.Close()
}

func (s *ResilientStore) BreakerState() resilience.State {
	return s.breaker.State()
}
