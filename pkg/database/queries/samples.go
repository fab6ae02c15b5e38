package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/opsignal/breachwatch/pkg/models"
)

type SampleRepository struct {
	db *sql.DB
}

func NewSampleRepository(db *sql.DB) *SampleRepository {
	return &SampleRepository{db: db}
}

// GetWindow returns the samples for a metric in [from, to], ascending
// by time. The prediction path depends on this ordering.
func (r *SampleRepository) GetWindow(ctx context.Context, metricName string, from, to time.Time) (models.Window, error) {
	query := `
		SELECT value, time
		FROM metric_samples
		WHERE metric_name = $1 AND time >= $2 AND time <= $3
		ORDER BY time ASC`

	rows, err := r.db.QueryContext(ctx, query, metricName, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var window models.Window
	for rows.Next() {
		var s models.Sample
		if err := rows.Scan(&s.Value, &s.Timestamp); err != nil {
			return nil, err
		}
		window = append(window, s)
	}

	return window, rows.Err()
}

func (r *SampleRepository) Insert(ctx context.Context, metricName string, sample models.Sample) error {
	query := `
		INSERT INTO metric_samples (time, metric_name, value)
		VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, sample.Timestamp, metricName, sample.Value)
	return err
}

func (r *SampleRepository) InsertBatch(ctx context.Context, metricName string, samples []models.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO metric_samples (time, metric_name, value)
		VALUES ($1, $2, $3)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.ExecContext(ctx, s.Timestamp, metricName, s.Value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteOlderThan trims sample history; returns rows removed.
func (r *SampleRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM metric_samples WHERE time < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
