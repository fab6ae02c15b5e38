package actions

import (
	"fmt"
	"strings"

	"github.com/opsignal/breachwatch/pkg/models"
)

// MetricCategory is the closed set of metric families the recommender
// knows checklists for. Unmatched names fall through to CategoryGeneric.
type MetricCategory int

const (
	CategoryCPU MetricCategory = iota
	CategoryMemory
	CategoryDatabase
	CategoryDisk
	CategoryLatency
	CategoryError
	CategoryGeneric
)

func (c MetricCategory) String() string {
	switch c {
	case CategoryCPU:
		return "cpu"
	case CategoryMemory:
		return "memory"
	case CategoryDatabase:
		return "database"
	case CategoryDisk:
		return "disk"
	case CategoryLatency:
		return "latency"
	case CategoryError:
		return "error"
	default:
		return "generic"
	}
}

// categoryKeywords is the ordered lookup table; the first group whose
// keyword matches the metric name wins.
var categoryKeywords = []struct {
	category MetricCategory
	keywords []string
}{
	{CategoryCPU, []string{"cpu", "load"}},
	{CategoryMemory, []string{"memory", "mem", "heap"}},
	{CategoryDatabase, []string{"database", "db", "query", "connection"}},
	{CategoryDisk, []string{"disk", "storage", "volume"}},
	{CategoryLatency, []string{"latency", "response_time", "duration"}},
	{CategoryError, []string{"error", "fail", "exception"}},
}

// CategoryFor resolves a metric name by case-insensitive substring
// match against the keyword table.
func CategoryFor(metricName string) MetricCategory {
	name := strings.ToLower(metricName)
	for _, group := range categoryKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(name, keyword) {
				return group.category
			}
		}
	}
	return CategoryGeneric
}

var categoryChecklists = map[MetricCategory][]string{
	CategoryCPU: {
		"Identify and throttle CPU-intensive processes",
		"Scale out compute capacity or add worker instances",
		"Review recent deployments for CPU regressions",
	},
	CategoryMemory: {
		"Check for memory leaks in long-running processes",
		"Restart services showing abnormal memory growth",
		"Consider raising memory limits or adding capacity",
	},
	CategoryDatabase: {
		"Review slow query log and active connections",
		"Check connection pool saturation",
		"Consider read replicas or query optimization",
	},
	CategoryDisk: {
		"Clean up old logs and temporary files",
		"Archive or compress cold data",
		"Provision additional storage volumes",
	},
	CategoryLatency: {
		"Check downstream dependency response times",
		"Review load balancer target health",
		"Enable caching for hot paths",
	},
	CategoryError: {
		"Inspect recent error logs for new failure modes",
		"Roll back recent deployments if errors correlate",
		"Verify external dependency availability",
	},
	CategoryGeneric: {
		"Monitor the metric closely",
		"Review recent changes to the affected system",
	},
}

const (
	actionContinueMonitoring    = "Continue monitoring - no immediate action needed"
	actionInvestigateVolatility = "Investigate the source of metric volatility before acting"
)

type Config struct {
	// UrgentWindowMinutes and PrepareWindowMinutes split the urgency
	// message by predicted time to breach.
	UrgentWindowMinutes  float64
	PrepareWindowMinutes float64
}

type Recommender struct {
	config Config
}

func New(cfg Config) *Recommender {
	if cfg.UrgentWindowMinutes == 0 {
		cfg.UrgentWindowMinutes = 15.0
	}
	if cfg.PrepareWindowMinutes == 0 {
		cfg.PrepareWindowMinutes = 60.0
	}
	return &Recommender{config: cfg}
}

// Recommend builds the ordered action checklist for a prediction:
// urgency line, category checklist, then a volatility note when the
// regime warrants one.
func (r *Recommender) Recommend(metricName string, willBreach bool, timeToBreach *float64, regime models.Regime) []string {
	if !willBreach {
		return []string{actionContinueMonitoring}
	}

	recommendations := []string{r.urgencyLine(timeToBreach)}
	recommendations = append(recommendations, categoryChecklists[CategoryFor(metricName)]...)

	if regime == models.RegimeVolatile {
		recommendations = append(recommendations, actionInvestigateVolatility)
	}

	return recommendations
}

func (r *Recommender) urgencyLine(timeToBreach *float64) string {
	if timeToBreach == nil {
		return "Breach predicted - schedule a capacity review"
	}

	switch {
	case *timeToBreach < r.config.UrgentWindowMinutes:
		return fmt.Sprintf("URGENT: breach predicted in %.0f minutes - take immediate action", *timeToBreach)
	case *timeToBreach < r.config.PrepareWindowMinutes:
		return fmt.Sprintf("Breach predicted in %.0f minutes - prepare mitigation now", *timeToBreach)
	default:
		return "Breach predicted - schedule a capacity review"
	}
}
