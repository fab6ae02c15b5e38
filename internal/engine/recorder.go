package engine

import (
	"context"

	"github.com/opsignal/breachwatch/internal/logger"
	"github.com/opsignal/breachwatch/pkg/models"
)

// recordPrediction appends the audit projection of a result to the
// external store. Best effort: losing an audit record must never block
// an operational breach signal, so failures are logged and swallowed.
func (e *Engine) recordPrediction(ctx context.Context, result *models.PredictionResult) {
	if e.records == nil {
		return
	}

	record := models.NewPredictionRecord(result)

	recordCtx, cancel := context.WithTimeout(ctx, e.config.RecordTimeout)
	defer cancel()

	if err := e.records.Append(recordCtx, record); err != nil {
		logger.WithMetric(result.MetricName).Warnf("Failed to append prediction record: %v", err)
		e.stats.IncRecordsDropped()
		return
	}

	if e.publisher != nil {
		e.publisher.RecordAppended(record)
	}
}
