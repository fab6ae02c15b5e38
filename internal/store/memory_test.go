package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsignal/breachwatch/pkg/models"
)

func TestMemoryStore_AppendAndGetWindow(t *testing.T) {
	st := NewMemoryStore()
	now := time.Now()

	samples := []models.Sample{
		{Value: 10, Timestamp: now.Add(-3 * time.Minute)},
		{Value: 20, Timestamp: now.Add(-2 * time.Minute)},
		{Value: 30, Timestamp: now.Add(-1 * time.Minute)},
	}
	require.NoError(t, st.AppendSamples(context.Background(), "api.cpu_usage", samples))

	window, err := st.GetWindow(context.Background(), "api.cpu_usage", 10*time.Minute)

	require.NoError(t, err)
	assert.Equal(t, 3, window.Len())
	assert.Equal(t, 30.0, window.Current())
}

func TestMemoryStore_GetWindow_SortsOutOfOrderAppends(t *testing.T) {
	st := NewMemoryStore()
	now := time.Now()

	require.NoError(t, st.AppendSamples(context.Background(), "m", []models.Sample{
		{Value: 30, Timestamp: now.Add(-1 * time.Minute)},
	}))
	require.NoError(t, st.AppendSamples(context.Background(), "m", []models.Sample{
		{Value: 10, Timestamp: now.Add(-3 * time.Minute)},
		{Value: 20, Timestamp: now.Add(-2 * time.Minute)},
	}))

	window, err := st.GetWindow(context.Background(), "m", 10*time.Minute)

	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, window.Values())
}

func TestMemoryStore_GetWindow_FiltersByLookback(t *testing.T) {
	st := NewMemoryStore()
	now := time.Now()

	require.NoError(t, st.AppendSamples(context.Background(), "m", []models.Sample{
		{Value: 1, Timestamp: now.Add(-2 * time.Hour)},
		{Value: 2, Timestamp: now.Add(-30 * time.Minute)},
		{Value: 3, Timestamp: now.Add(-1 * time.Minute)},
	}))

	window, err := st.GetWindow(context.Background(), "m", time.Hour)

	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, window.Values())
}

func TestMemoryStore_GetWindow_InvalidLookback(t *testing.T) {
	st := NewMemoryStore()

	_, err := st.GetWindow(context.Background(), "m", 0)

	assert.ErrorIs(t, err, ErrInvalidLookback)
}

func TestMemoryStore_GetWindow_UnknownMetricIsEmpty(t *testing.T) {
	st := NewMemoryStore()

	window, err := st.GetWindow(context.Background(), "never_seen", time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 0, window.Len())
}
