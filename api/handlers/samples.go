package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsignal/breachwatch/internal/events"
	"github.com/opsignal/breachwatch/internal/store"
	"github.com/opsignal/breachwatch/pkg/models"
	"github.com/opsignal/breachwatch/pkg/validation"
)

type SampleHandler struct {
	store     store.SampleStore
	publisher *events.Publisher
}

func NewSampleHandler(st store.SampleStore, publisher *events.Publisher) *SampleHandler {
	return &SampleHandler{
		store:     st,
		publisher: publisher,
	}
}

type IngestSample struct {
	Value     float64    `json:"value"`
	Timestamp *time.Time `json:"timestamp"`
}

type IngestRequest struct {
	Samples []IngestSample `json:"samples" binding:"required,min=1,max=1000"`
}

// Ingest accepts a batch of samples for one metric. Samples without a
// timestamp are stamped with the server clock.
func (h *SampleHandler) Ingest(c *gin.Context) {
	metricName := c.Param("metric")
	if err := validation.ValidateMetricName(metricName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	now := time.Now()
	samples := make([]models.Sample, 0, len(req.Samples))
	for _, s := range req.Samples {
		if err := validation.ValidateSampleValue(s.Value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ts := now
		if s.Timestamp != nil {
			ts = *s.Timestamp
		}
		samples = append(samples, models.Sample{Value: s.Value, Timestamp: ts})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.store.AppendSamples(ctx, metricName, samples); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to store samples"})
		return
	}

	if h.publisher != nil {
		h.publisher.SamplesIngested(metricName, len(samples))
	}

	c.JSON(http.StatusAccepted, gin.H{
		"metric_name": metricName,
		"accepted":    len(samples),
	})
}

// Window returns the raw samples the engine would see for a metric.
func (h *SampleHandler) Window(c *gin.Context) {
	metricName := c.Param("metric")
	if err := validation.ValidateMetricName(metricName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lookbackMinutes := 60
	if raw := c.Query("lookback_minutes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lookback_minutes must be an integer"})
			return
		}
		if err := validation.ValidateLookbackMinutes(parsed); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		lookbackMinutes = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	window, err := h.store.GetWindow(ctx, metricName, time.Duration(lookbackMinutes)*time.Minute)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to fetch samples"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metric_name":      metricName,
		"lookback_minutes": lookbackMinutes,
		"count":            window.Len(),
		"samples":          window,
	})
}
