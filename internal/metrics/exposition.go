package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Metrics keeps process-local counters for the prediction pipeline and
// serves them in Prometheus text exposition format.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	predictionsTotal  map[string]int64
	predictionErrors  map[string]int64
	breachesPredicted map[string]int64
	alertsCreated     map[string]int64
	storeErrors       int64
	recordsDropped    int64

	// Gauges
	lastConfidence      map[string]float64
	circuitBreakerState map[string]int // 0=closed, 1=open, 2=half-open

	// Last observed latency per metric
	predictionLatency map[string]time.Duration
}

var (
	instance *Metrics
	once     sync.Once
)

func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			predictionsTotal:    make(map[string]int64),
			predictionErrors:    make(map[string]int64),
			breachesPredicted:   make(map[string]int64),
			alertsCreated:       make(map[string]int64),
			lastConfidence:      make(map[string]float64),
			circuitBreakerState: make(map[string]int),
			predictionLatency:   make(map[string]time.Duration),
		}
	})
	return instance
}

func (m *Metrics) IncPredictions(metricName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictionsTotal[metricName]++
}

func (m *Metrics) IncPredictionErrors(metricName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictionErrors[metricName]++
}

func (m *Metrics) IncBreachesPredicted(metricName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breachesPredicted[metricName]++
}

func (m *Metrics) IncAlertsCreated(metricName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alertsCreated[metricName]++
}

func (m *Metrics) IncStoreErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeErrors++
}

func (m *Metrics) IncRecordsDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordsDropped++
}

func (m *Metrics) SetLastConfidence(metricName string, confidence float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastConfidence[metricName] = confidence
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.circuitBreakerState[name] = state
}

func (m *Metrics) SetPredictionLatency(metricName string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictionLatency[metricName] = d
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		for metric, count := range m.predictionsTotal {
			writeMetric(w, "breachwatch_predictions_total", map[string]string{"metric_name": metric}, float64(count))
		}
		for metric, count := range m.predictionErrors {
			writeMetric(w, "breachwatch_prediction_errors_total", map[string]string{"metric_name": metric}, float64(count))
		}
		for metric, count := range m.breachesPredicted {
			writeMetric(w, "breachwatch_breaches_predicted_total", map[string]string{"metric_name": metric}, float64(count))
		}
		for metric, count := range m.alertsCreated {
			writeMetric(w, "breachwatch_alerts_created_total", map[string]string{"metric_name": metric}, float64(count))
		}

		writeMetric(w, "breachwatch_store_errors_total", nil, float64(m.storeErrors))
		writeMetric(w, "breachwatch_records_dropped_total", nil, float64(m.recordsDropped))

		for metric, confidence := range m.lastConfidence {
			writeMetric(w, "breachwatch_last_confidence", map[string]string{"metric_name": metric}, confidence)
		}
		for name, state := range m.circuitBreakerState {
			writeMetric(w, "breachwatch_circuit_breaker_state", map[string]string{"name": name}, float64(state))
		}
		for metric, latency := range m.predictionLatency {
			writeMetric(w, "breachwatch_prediction_latency_ms", map[string]string{"metric_name": metric}, float64(latency.Milliseconds()))
		}
	})
}

func writeMetric(w http.ResponseWriter, name string, labels map[string]string, value float64) {
	labelStr := ""
	if len(labels) > 0 {
		labelStr = "{"
		first := true
		for k, v := range labels {
			if !first {
				labelStr += ","
			}
			labelStr += k + `="` + v + `"`
			first = false
		}
		labelStr += "}"
	}
	w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(value, 'f', -1, 64) + "\n"))
}
