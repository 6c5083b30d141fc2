package datasource

import (
	"math"
	"sort"

	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/errors"
)

// minSamples is the smallest series a recommendation can be computed
// from; shorter windows produce meaningless bands.
const minSamples = 10

// RecommendThreshold computes an alarm band for a metric series:
// mean ± sensitivity·σ, widened so the observed p01..p99 range never
// triggers. Sensitivity defaults to 3 when non-positive.
func RecommendThreshold(points []Point, sensitivity float64) (*model.ThresholdResult, error) {
	if len(points) < minSamples {
		return nil, errors.ErrInvalidParam.WithMessagef(
			"threshold recommendation needs at least %d samples, got %d", minSamples, len(points))
	}
	if sensitivity <= 0 {
		sensitivity = 3
	}

	values := make([]float64, len(points))
	var sum float64
	for i, p := range points {
		values[i] = p.Value
		sum += p.Value
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	stddev := math.Sqrt(variance)

	sort.Float64s(values)
	p01 := percentile(values, 0.01)
	p99 := percentile(values, 0.99)

	upper := math.Max(mean+sensitivity*stddev, p99)
	lower := math.Min(mean-sensitivity*stddev, p01)

	return &model.ThresholdResult{
		Upper:       upper,
		Lower:       lower,
		Mean:        mean,
		StdDev:      stddev,
		SampleCount: len(points),
	}, nil
}

// percentile interpolates the q-quantile over sorted values.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
