package datasource

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(values ...float64) []Point {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Timestamp: start.Add(time.Duration(i) * time.Minute), Value: v}
	}
	return points
}

func TestRecommendThresholdRejectsShortSeries(t *testing.T) {
	_, err := RecommendThreshold(series(1, 2, 3), 3)
	require.Error(t, err)
}

func TestRecommendThresholdStats(t *testing.T) {
	// Ten samples alternating 10 and 20: mean 15, stddev 5.
	result, err := RecommendThreshold(series(10, 20, 10, 20, 10, 20, 10, 20, 10, 20), 3)
	require.NoError(t, err)

	assert.InDelta(t, 15, result.Mean, 1e-9)
	assert.InDelta(t, 5, result.StdDev, 1e-9)
	assert.Equal(t, 10, result.SampleCount)
	assert.InDelta(t, 30, result.Upper, 1e-9)
	assert.InDelta(t, 0, result.Lower, 1e-9)
}

func TestRecommendThresholdBandCoversObservedRange(t *testing.T) {
	// A flat series with one large spike: the band must not alarm on
	// values the window already contained.
	values := make([]float64, 100)
	for i := range values {
		values[i] = 50
	}
	values[99] = 500

	result, err := RecommendThreshold(series(values...), 1)
	require.NoError(t, err)

	p99 := 500*0.01 + 50*0.99 // interpolated over the sorted tail
	assert.GreaterOrEqual(t, result.Upper, p99-1e-9)
	assert.LessOrEqual(t, result.Lower, 50.0)
}

func TestRecommendThresholdDefaultsSensitivity(t *testing.T) {
	withDefault, err := RecommendThreshold(series(10, 20, 10, 20, 10, 20, 10, 20, 10, 20), 0)
	require.NoError(t, err)
	explicit, err := RecommendThreshold(series(10, 20, 10, 20, 10, 20, 10, 20, 10, 20), 3)
	require.NoError(t, err)

	assert.Equal(t, explicit.Upper, withDefault.Upper)
	assert.Equal(t, explicit.Lower, withDefault.Lower)
}

func TestPercentileInterpolates(t *testing.T) {
	sorted := []float64{0, 10, 20, 30, 40}
	assert.InDelta(t, 0, percentile(sorted, 0), 1e-9)
	assert.InDelta(t, 40, percentile(sorted, 1), 1e-9)
	assert.InDelta(t, 20, percentile(sorted, 0.5), 1e-9)
	assert.InDelta(t, 30, percentile(sorted, 0.75), 1e-9)
	assert.False(t, math.IsNaN(percentile([]float64{7}, 0.5)))
}
