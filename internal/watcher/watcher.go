package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/opsignal/breachwatch/internal/engine"
	"github.com/opsignal/breachwatch/internal/logger"
	"github.com/opsignal/breachwatch/pkg/config"
)

// Watcher re-predicts each configured metric on an interval and
// escalates confident breach calls through the engine's dispatcher.
// Per-metric runs are independent; a slow store hurts one metric, not
// all of them.
type Watcher struct {
	config  config.WatchConfig
	engine  *engine.Engine
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func New(cfg config.WatchConfig, eng *engine.Engine) *Watcher {
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}
	if cfg.MinAlertConfidence == 0 {
		cfg.MinAlertConfidence = 0.5
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		config: cfg,
		engine: eng,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}
	w.running = true

	for _, metric := range w.config.Metrics {
		w.wg.Add(1)
		go w.watchMetric(metric)
	}

	logger.Infof("Watcher started for %d metrics (interval: %s)", len(w.config.Metrics), w.config.Interval)
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false

	w.cancel()
	w.wg.Wait()
	logger.Info("Watcher stopped")
}

func (w *Watcher) watchMetric(metric config.WatchMetric) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(metric)
		}
	}
}

func (w *Watcher) runOnce(metric config.WatchMetric) {
	ctx, cancel := context.WithTimeout(w.ctx, w.config.Interval)
	defer cancel()

	result := w.engine.PredictThresholdBreach(ctx, metric.Name, metric.Threshold, metric.Lookback)

	if !result.WillBreach || result.Confidence < w.config.MinAlertConfidence {
		return
	}

	handle, err := w.engine.CreatePredictiveAlert(ctx, result)
	if err != nil {
		logger.WithMetric(metric.Name).Errorf("Failed to create predictive alert: %v", err)
		return
	}

	logger.WithMetric(metric.Name).Infof(
		"Escalated predicted breach (confidence %.2f, handle %s)", result.Confidence, handle)
}
