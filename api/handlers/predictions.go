package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsignal/breachwatch/internal/alerts"
	"github.com/opsignal/breachwatch/internal/engine"
	"github.com/opsignal/breachwatch/pkg/database/queries"
	"github.com/opsignal/breachwatch/pkg/validation"
)

type PredictionHandler struct {
	engine     *engine.Engine
	recordRepo *queries.PredictionRecordRepository
}

func NewPredictionHandler(eng *engine.Engine, recordRepo *queries.PredictionRecordRepository) *PredictionHandler {
	return &PredictionHandler{
		engine:     eng,
		recordRepo: recordRepo,
	}
}

type PredictRequest struct {
	MetricName      string  `json:"metric_name" binding:"required"`
	Threshold       float64 `json:"threshold"`
	LookbackMinutes int     `json:"lookback_minutes" binding:"omitempty,min=1"`
	CreateAlert     bool    `json:"create_alert"`
}

// Predict runs a breach prediction for one metric. The response is the
// full prediction result; when create_alert is set and a breach is
// predicted, an alert is dispatched and its ID is included.
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := validation.ValidateMetricName(req.MetricName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validation.ValidateThreshold(req.Threshold); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.LookbackMinutes > 0 {
		if err := validation.ValidateLookbackMinutes(req.LookbackMinutes); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	var lookback []time.Duration
	if req.LookbackMinutes > 0 {
		lookback = append(lookback, time.Duration(req.LookbackMinutes)*time.Minute)
	}

	prediction := h.engine.PredictThresholdBreach(ctx, req.MetricName, req.Threshold, lookback...)

	response := gin.H{"prediction": prediction}

	if req.CreateAlert && prediction.WillBreach {
		alertID, err := h.engine.CreatePredictiveAlert(ctx, prediction)
		if err != nil {
			if err == alerts.ErrNoDispatcher {
				c.JSON(http.StatusConflict, gin.H{"error": "alert dispatch is not configured"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create alert"})
			return
		}
		response["alert_id"] = alertID
	}

	c.JSON(http.StatusOK, response)
}

// Records returns the most recent prediction records for a metric.
func (h *PredictionHandler) Records(c *gin.Context) {
	metricName := c.Param("metric")
	if err := validation.ValidateMetricName(metricName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	records, err := h.recordRepo.Recent(ctx, metricName, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch prediction records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metric_name": metricName,
		"count":       len(records),
		"records":     records,
	})
}

type OutcomeRequest struct {
	ActualValue float64 `json:"actual_value"`
}

// RecordOutcome attaches the observed value to a past prediction so
// accuracy can be audited offline.
func (h *PredictionHandler) RecordOutcome(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	var req OutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := validation.ValidateSampleValue(req.ActualValue); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.recordRepo.SetActual(ctx, id, req.ActualValue); err != nil {
		if err == queries.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "prediction record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update prediction record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "actual_value": req.ActualValue})
}
