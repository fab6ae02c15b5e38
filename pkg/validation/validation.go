package validation

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// Metric names are dotted identifiers, e.g. "api.cpu_usage"
	metricNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)
)

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	// Trim whitespace
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters except newline and tab
	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ValidateMetricName checks if a metric name is valid
func ValidateMetricName(name string) error {
	name = SanitizeString(name)

	if name == "" {
		return errors.New("metric name cannot be empty")
	}

	if len(name) > 128 {
		return errors.New("metric name must not exceed 128 characters")
	}

	if !metricNameRegex.MatchString(name) {
		return errors.New("metric name must start with alphanumeric and contain only letters, numbers, dots, hyphens, and underscores")
	}

	return nil
}

// ValidateThreshold checks if a threshold value is usable
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return errors.New("threshold must be a finite number")
	}

	return nil
}

// ValidateSampleValue checks if a sample value is usable
func ValidateSampleValue(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return errors.New("sample value must be a finite number")
	}

	return nil
}

// ValidateLookbackMinutes checks if a lookback duration in minutes is valid
func ValidateLookbackMinutes(minutes int) error {
	if minutes < 1 {
		return errors.New("lookback must be at least 1 minute")
	}

	if minutes > 10080 {
		return errors.New("lookback cannot exceed 7 days")
	}

	return nil
}

// ValidateAPIKey checks if an API key meets minimum requirements
func ValidateAPIKey(key string) error {
	if len(key) < 16 {
		return errors.New("api key must be at least 16 characters")
	}

	if len(key) > 128 {
		return errors.New("api key must not exceed 128 characters")
	}

	return nil
}
