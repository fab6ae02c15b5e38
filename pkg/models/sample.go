package models

import "time"

// Sample is a single observation of a metric. Samples are immutable and
// owned by the store; the engine borrows them read-only for one call.
type Sample struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Window is a time-ordered sequence of samples covering one lookback
// interval. Samples are ascending by timestamp but not necessarily
// evenly spaced.
type Window []Sample

func (w Window) Len() int {
	return len(w)
}

// Current returns the most recent value, or 0 for an empty window.
func (w Window) Current() float64 {
	if len(w) == 0 {
		return 0
	}
	return w[len(w)-1].Value
}

// Values extracts the raw value series in window order.
func (w Window) Values() []float64 {
	values := make([]float64, len(w))
	for i, s := range w {
		values[i] = s.Value
	}
	return values
}

// Tail returns the last n samples, or the whole window if shorter.
func (w Window) Tail(n int) Window {
	if n <= 0 {
		return Window{}
	}
	if len(w) <= n {
		return w
	}
	return w[len(w)-n:]
}

// Span is the elapsed time between the first and last sample.
func (w Window) Span() time.Duration {
	if len(w) < 2 {
		return 0
	}
	return w[len(w)-1].Timestamp.Sub(w[0].Timestamp)
}

// ElapsedMinutes maps each sample to minutes since the window start,
// the x-axis used for trend fitting.
func (w Window) ElapsedMinutes() []float64 {
	if len(w) == 0 {
		return nil
	}
	start := w[0].Timestamp
	xs := make([]float64, len(w))
	for i, s := range w {
		xs[i] = s.Timestamp.Sub(start).Minutes()
	}
	return xs
}
