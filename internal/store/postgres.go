package store

import (
	"context"
	"fmt"
	"time"

	"github.com/opsignal/breachwatch/pkg/database"
	"github.com/opsignal/breachwatch/pkg/database/queries"
	"github.com/opsignal/breachwatch/pkg/models"
)

// PostgresStore reads and writes metric samples through the shared
// Postgres connection pool.
type PostgresStore struct {
	db      *database.DB
	samples *queries.SampleRepository
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		samples: queries.NewSampleRepository(db.DB),
	}
}

func (s *PostgresStore) GetWindow(ctx context.Context, metricName string, lookback time.Duration) (models.Window, error) {
	if lookback <= 0 {
		return nil, ErrInvalidLookback
	}

	now := time.Now()
	window, err := s.samples.GetWindow(ctx, metricName, now.Add(-lookback), now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return window, nil
}

func (s *PostgresStore) AppendSamples(ctx context.Context, metricName string, samples []models.Sample) error {
	if err := s.samples.InsertBatch(ctx, metricName, samples); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *PostgresStore) Close() error {
	// The shared pool is owned by the caller.
	return nil
}
