package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/opsignal/breachwatch/pkg/models"
)

var ErrRecordNotFound = errors.New("prediction record not found")

type PredictionRecordRepository struct {
	db *sql.DB
}

func NewPredictionRecordRepository(db *sql.DB) *PredictionRecordRepository {
	return &PredictionRecordRepository{db: db}
}

func (r *PredictionRecordRepository) Append(ctx context.Context, record *models.PredictionRecord) error {
	query := `
		INSERT INTO prediction_records
			(created_at, metric_name, current_value, threshold, will_breach,
			 confidence, time_to_breach_minutes, regime, pattern)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		record.CreatedAt,
		record.MetricName,
		record.CurrentValue,
		record.Threshold,
		record.WillBreach,
		record.Confidence,
		record.TimeToBreach,
		record.Regime,
		record.Pattern,
	)
	return err
}

func (r *PredictionRecordRepository) Recent(ctx context.Context, metricName string, limit int) ([]models.PredictionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, created_at, metric_name, current_value, threshold, will_breach,
			   confidence, time_to_breach_minutes, regime, pattern, actual_value
		FROM prediction_records
		WHERE metric_name = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, metricName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.PredictionRecord
	for rows.Next() {
		var rec models.PredictionRecord
		var pattern sql.NullString
		err := rows.Scan(
			&rec.ID, &rec.CreatedAt, &rec.MetricName, &rec.CurrentValue,
			&rec.Threshold, &rec.WillBreach, &rec.Confidence,
			&rec.TimeToBreach, &rec.Regime, &pattern, &rec.ActualValue,
		)
		if err != nil {
			return nil, err
		}
		rec.Pattern = pattern.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

// SetActual backfills the observed value for a past prediction so
// offline accuracy auditing can compare it against the forecast.
func (r *PredictionRecordRepository) SetActual(ctx context.Context, id int, actual float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE prediction_records SET actual_value = $1 WHERE id = $2`, actual, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Prune enforces retention: entries older than maxAge go, and each
// metric keeps at most maxPerMetric of its newest records.
func (r *PredictionRecordRepository) Prune(ctx context.Context, maxAge time.Duration, maxPerMetric int) (int64, error) {
	var total int64

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM prediction_records WHERE created_at < $1`,
		time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	if n, err := result.RowsAffected(); err == nil {
		total += n
	}

	query := `
		DELETE FROM prediction_records
		WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY metric_name ORDER BY created_at DESC
				) AS rn
				FROM prediction_records
			) ranked
			WHERE ranked.rn > $1
		)`

	result, err = r.db.ExecContext(ctx, query, maxPerMetric)
	if err != nil {
		return total, err
	}
	if n, err := result.RowsAffected(); err == nil {
		total += n
	}

	return total, nil
}
