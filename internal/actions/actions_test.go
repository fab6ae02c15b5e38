package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsignal/breachwatch/pkg/models"
)

func ptr(f float64) *float64 { return &f }

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		metricName string
		expected   MetricCategory
	}{
		{"api.cpu_usage", CategoryCPU},
		{"system_load_avg", CategoryCPU},
		{"heap_bytes", CategoryMemory},
		{"MEMORY_RSS", CategoryMemory},
		{"db_connection_count", CategoryDatabase},
		{"slow_query_rate", CategoryDatabase},
		{"disk_used_percent", CategoryDisk},
		{"volume_io_wait", CategoryDisk},
		{"p99_latency_ms", CategoryLatency},
		{"request_duration", CategoryLatency},
		{"error_rate", CategoryError},
		{"login_failures", CategoryError},
		{"queue_depth", CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.metricName, func(t *testing.T) {
			assert.Equal(t, tt.expected, CategoryFor(tt.metricName))
		})
	}
}

func TestCategoryFor_FirstMatchWins(t *testing.T) {
	// "cpu" is checked before "memory".
	assert.Equal(t, CategoryCPU, CategoryFor("cpu_memory_ratio"))
}

func TestRecommender_Recommend_NoBreach(t *testing.T) {
	r := New(Config{})

	recommendations := r.Recommend("api.cpu_usage", false, nil, models.RegimeStable)

	assert.Equal(t, []string{"Continue monitoring - no immediate action needed"}, recommendations)
}

func TestRecommender_Recommend_Urgency(t *testing.T) {
	tests := []struct {
		name         string
		timeToBreach *float64
		expected     string
	}{
		{
			name:         "under urgent window",
			timeToBreach: ptr(10),
			expected:     "URGENT: breach predicted in 10 minutes - take immediate action",
		},
		{
			name:         "under prepare window",
			timeToBreach: ptr(45),
			expected:     "Breach predicted in 45 minutes - prepare mitigation now",
		},
		{
			name:         "beyond prepare window",
			timeToBreach: ptr(120),
			expected:     "Breach predicted - schedule a capacity review",
		},
		{
			name:         "no horizon",
			timeToBreach: nil,
			expected:     "Breach predicted - schedule a capacity review",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(Config{})

			recommendations := r.Recommend("api.cpu_usage", true, tt.timeToBreach, models.RegimeIncreasing)

			require.NotEmpty(t, recommendations)
			assert.Equal(t, tt.expected, recommendations[0])
		})
	}
}

func TestRecommender_Recommend_IncludesCategoryChecklist(t *testing.T) {
	r := New(Config{})

	recommendations := r.Recommend("db_connections", true, ptr(30), models.RegimeIncreasing)

	assert.Contains(t, recommendations, "Review slow query log and active connections")
	assert.Contains(t, recommendations, "Check connection pool saturation")
}

func TestRecommender_Recommend_VolatileNote(t *testing.T) {
	r := New(Config{})

	volatile := r.Recommend("api.cpu_usage", true, ptr(30), models.RegimeVolatile)
	steady := r.Recommend("api.cpu_usage", true, ptr(30), models.RegimeIncreasing)

	assert.Contains(t, volatile, "Investigate the source of metric volatility before acting")
	assert.NotContains(t, steady, "Investigate the source of metric volatility before acting")
	assert.Equal(t, "Investigate the source of metric volatility before acting", volatile[len(volatile)-1])
}

func TestRecommender_Recommend_CustomWindows(t *testing.T) {
	r := New(Config{UrgentWindowMinutes: 5, PrepareWindowMinutes: 30})

	recommendations := r.Recommend("api.cpu_usage", true, ptr(10), models.RegimeIncreasing)

	require.NotEmpty(t, recommendations)
	assert.Equal(t, "Breach predicted in 10 minutes - prepare mitigation now", recommendations[0])
}
