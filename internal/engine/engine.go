package engine

import (
	"context"
	"time"

	"github.com/opsignal/breachwatch/internal/actions"
	"github.com/opsignal/breachwatch/internal/alerts"
	"github.com/opsignal/breachwatch/internal/breach"
	"github.com/opsignal/breachwatch/internal/confidence"
	"github.com/opsignal/breachwatch/internal/events"
	"github.com/opsignal/breachwatch/internal/logger"
	"github.com/opsignal/breachwatch/internal/metrics"
	"github.com/opsignal/breachwatch/internal/pattern"
	"github.com/opsignal/breachwatch/internal/store"
	"github.com/opsignal/breachwatch/internal/trend"
	"github.com/opsignal/breachwatch/pkg/models"
)

const (
	patternInsufficientData = "Insufficient data"
	actionManualInvestigate = "Manual investigation required - prediction failed"
)

// Config is the immutable knob set for one engine instance. Separate
// instances with different settings can run side by side, which the
// tests rely on.
type Config struct {
	Lookback      time.Duration
	MinSamples    int
	RecordTimeout time.Duration

	Trend      trend.Config
	Breach     breach.Config
	Confidence confidence.Config
	Pattern    pattern.Config
	Actions    actions.Config
}

// RecordAppender receives the audit projection of each result.
type RecordAppender interface {
	Append(ctx context.Context, record *models.PredictionRecord) error
}

// Options carries the engine's collaborators. Store is required;
// everything else is optional and disabled when nil.
type Options struct {
	Store      store.SampleStore
	Records    RecordAppender
	Dispatcher alerts.Dispatcher
	Publisher  *events.Publisher
}

// Engine runs the prediction pipeline: load window, fit trend, apply
// breach rules, score confidence, describe the pattern, recommend
// actions, record the audit trail. Each call owns its fetched window;
// no state is shared between calls.
type Engine struct {
	config     Config
	store      store.SampleStore
	records    RecordAppender
	dispatcher alerts.Dispatcher
	publisher  *events.Publisher
	stats      *metrics.Metrics

	trend      *trend.Analyzer
	breach     *breach.Predictor
	confidence *confidence.Estimator
	patterns   *pattern.Recognizer
	actions    *actions.Recommender
}

func New(cfg Config, opts Options) *Engine {
	if cfg.Lookback == 0 {
		cfg.Lookback = 60 * time.Minute
	}
	if cfg.MinSamples == 0 {
		cfg.MinSamples = 10
	}
	if cfg.RecordTimeout == 0 {
		cfg.RecordTimeout = 5 * time.Second
	}

	return &Engine{
		config:     cfg,
		store:      opts.Store,
		records:    opts.Records,
		dispatcher: opts.Dispatcher,
		publisher:  opts.Publisher,
		stats:      metrics.Get(),
		trend:      trend.New(cfg.Trend),
		breach:     breach.New(cfg.Breach),
		confidence: confidence.New(cfg.Confidence),
		patterns:   pattern.New(cfg.Pattern),
		actions:    actions.New(cfg.Actions),
	}
}

// PredictThresholdBreach is the public prediction surface. It is
// total: store outages degrade to the insufficient-data result and
// panics are converted to an error result, so callers never see a
// failure. An optional lookback overrides the configured default.
func (e *Engine) PredictThresholdBreach(ctx context.Context, metricName string, threshold float64, lookback ...time.Duration) (result *models.PredictionResult) {
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.WithMetric(metricName).Errorf("Prediction panicked: %v", r)
			e.stats.IncPredictionErrors(metricName)
			result = e.errorResult(metricName, threshold)
		}
	}()

	window := e.loadWindow(ctx, metricName, lookback...)

	if window.Len() < e.config.MinSamples {
		logger.WithMetric(metricName).Debugf(
			"Insufficient data: %d samples (minimum %d)", window.Len(), e.config.MinSamples)
		result = e.insufficientDataResult(metricName, threshold, window)
		e.finish(ctx, result, started)
		return result
	}

	analysis := e.trend.Analyze(window)
	verdict := e.breach.Predict(window, threshold, analysis.Regime, analysis.RateOfChange)
	score := e.confidence.Score(window, analysis.Regime, analysis.RateOfChange, verdict.WillBreach)
	historicalPattern := e.patterns.Identify(window)
	recommended := e.actions.Recommend(metricName, verdict.WillBreach, verdict.TimeToBreach, analysis.Regime)

	result = &models.PredictionResult{
		MetricName:         metricName,
		CurrentValue:       window.Current(),
		Threshold:          threshold,
		WillBreach:         verdict.WillBreach,
		Confidence:         score,
		ConfidenceLevel:    models.ConfidenceLevelFor(score),
		TimeToBreach:       verdict.TimeToBreach,
		Regime:             analysis.Regime,
		RateOfChange:       analysis.RateOfChange,
		PredictedPeak:      verdict.PredictedPeak,
		RecommendedActions: recommended,
		HistoricalPattern:  historicalPattern,
		Metadata: map[string]interface{}{
			"sample_count":        window.Len(),
			"window_span_minutes": window.Span().Minutes(),
			"volatility":          analysis.Volatility,
			"relative_volatility": analysis.RelativeVolatility,
		},
		GeneratedAt: started,
	}

	if verdict.WillBreach && verdict.TimeToBreach != nil {
		peakTime := started.Add(time.Duration(*verdict.TimeToBreach * float64(time.Minute)))
		result.PredictedPeakTime = &peakTime
	}

	logger.WithMetric(metricName).Debugf(
		"Prediction: breach=%v regime=%s rate=%.3f confidence=%.3f",
		result.WillBreach, result.Regime, result.RateOfChange, result.Confidence)

	if verdict.WillBreach {
		e.stats.IncBreachesPredicted(metricName)
	}

	e.finish(ctx, result, started)
	return result
}

// CreatePredictiveAlert escalates a breach prediction to the dispatch
// service. Results without a predicted breach produce no alert and no
// error; escalation is the caller's judgment call.
func (e *Engine) CreatePredictiveAlert(ctx context.Context, result *models.PredictionResult) (string, error) {
	if result == nil || !result.WillBreach {
		return "", nil
	}
	if e.dispatcher == nil {
		return "", alerts.ErrNoDispatcher
	}

	alert := alerts.Build(result)
	handle, err := e.dispatcher.CreateAlert(ctx, alert)
	if err != nil {
		return "", err
	}

	e.stats.IncAlertsCreated(result.MetricName)
	logger.WithMetric(result.MetricName).Infof(
		"Predictive alert created: level=%s handle=%s", alert.Level, handle)
	return handle, nil
}

// loadWindow fetches the sample window, degrading store failures to an
// empty window so every caller goes through the same
// insufficient-data policy.
func (e *Engine) loadWindow(ctx context.Context, metricName string, lookback ...time.Duration) models.Window {
	effective := e.config.Lookback
	if len(lookback) > 0 && lookback[0] > 0 {
		effective = lookback[0]
	}

	window, err := e.store.GetWindow(ctx, metricName, effective)
	if err != nil {
		logger.WithMetric(metricName).Warnf("Sample window fetch failed, degrading to empty window: %v", err)
		e.stats.IncStoreErrors()
		if e.publisher != nil {
			e.publisher.StoreDegraded(metricName, err)
		}
		return models.Window{}
	}
	return window
}

// finish performs the per-call side effects: audit record, event
// publication, stats. None of them can fail the prediction.
func (e *Engine) finish(ctx context.Context, result *models.PredictionResult, started time.Time) {
	e.recordPrediction(ctx, result)

	if e.publisher != nil {
		e.publisher.PredictionCompleted(result)
	}

	e.stats.IncPredictions(result.MetricName)
	e.stats.SetLastConfidence(result.MetricName, result.Confidence)
	e.stats.SetPredictionLatency(result.MetricName, time.Since(started))
}

func (e *Engine) insufficientDataResult(metricName string, threshold float64, window models.Window) *models.PredictionResult {
	return &models.PredictionResult{
		MetricName:         metricName,
		CurrentValue:       window.Current(),
		Threshold:          threshold,
		WillBreach:         false,
		Confidence:         0,
		ConfidenceLevel:    models.ConfidenceLow,
		Regime:             models.RegimeStable,
		RecommendedActions: []string{"Collect more data before acting on predictions"},
		HistoricalPattern:  patternInsufficientData,
		Metadata: map[string]interface{}{
			"sample_count": window.Len(),
			"min_samples":  e.config.MinSamples,
		},
		GeneratedAt: time.Now(),
	}
}

func (e *Engine) errorResult(metricName string, threshold float64) *models.PredictionResult {
	return &models.PredictionResult{
		MetricName:         metricName,
		Threshold:          threshold,
		WillBreach:         false,
		Confidence:         0,
		ConfidenceLevel:    models.ConfidenceLow,
		Regime:             models.RegimeStable,
		RecommendedActions: []string{actionManualInvestigate},
		HistoricalPattern:  pattern.DescUnavailable,
		GeneratedAt:        time.Now(),
	}
}
