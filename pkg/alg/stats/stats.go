// Package stats provides core statistical functions for numerical analysis.
// All standard deviation calculations use population stddev (÷n, not ÷(n−1)).
package stats

import (
	"cmp"
	"errors"
	"math"
	"slices"
)

// ErrEmptyInput is returned when a statistic is requested over no values.
var ErrEmptyInput = errors.New("empty input")

// Well-known percentile thresholds.
const (
	PercentileMin    = 0.0
	PercentileP5     = 0.05
	PercentileQ1     = 0.25
	PercentileMedian = 0.5
	PercentileQ3     = 0.75
	PercentileP95    = 0.95
	PercentileMax    = 1.0
)

// Mean returns the arithmetic mean of values.
// Returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return Sum(values) / float64(len(values))
}

// MeanStdDev returns the arithmetic mean and population standard deviation.
// Returns (0, 0) for an empty slice.
func MeanStdDev(values []float64) (mean, stddev float64) {
	count := len(values)
	if count == 0 {
		return 0, 0
	}

	mean = Mean(values)

	var sumSq float64

	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}

	return mean, math.Sqrt(sumSq / float64(count))
}

// Percentile returns the p-th quantile of values using linear interpolation
// between order statistics (the R-7 method). The input slice is not modified
// (a copy is sorted internally).
//
// p is clamped to [0, 1]; NaN is treated as 0.
// Returns ErrEmptyInput for an empty slice.
func Percentile(values []float64, p float64) (float64, error) {
	count := len(values)
	if count == 0 {
		return 0, ErrEmptyInput
	}

	sorted := make([]float64, count)
	copy(sorted, values)
	slices.Sort(sorted)

	return sortedPercentile(sorted, p), nil
}

// Percentiles returns one quantile per entry of ps, sorting values once.
// Returns ErrEmptyInput for an empty slice.
func Percentiles(values []float64, ps ...float64) ([]float64, error) {
	count := len(values)
	if count == 0 {
		return nil, ErrEmptyInput
	}

	sorted := make([]float64, count)
	copy(sorted, values)
	slices.Sort(sorted)

	result := make([]float64, len(ps))

	for i, p := range ps {
		result[i] = sortedPercentile(sorted, p)
	}

	return result, nil
}

// sortedPercentile interpolates over an already sorted, non-empty slice.
func sortedPercentile(sorted []float64, p float64) float64 {
	if math.IsNaN(p) {
		p = 0
	}

	p = Clamp(p, PercentileMin, PercentileMax)

	idx := p * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))

	if lower == upper {
		return sorted[lower]
	}

	frac := idx - float64(lower)

	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// Median returns the 50th percentile of values.
// Returns ErrEmptyInput for an empty slice.
func Median(values []float64) (float64, error) {
	return Percentile(values, PercentileMedian)
}

// Clamp restricts val to the range [lo, hi].
func Clamp[T cmp.Ordered](val, lo, hi T) T {
	return max(lo, min(val, hi))
}

// Sum returns the sum of all elements in values.
// Returns the zero value of T for an empty slice.
func Sum[T cmp.Ordered](values []T) T {
	var result T

	for _, v := range values {
		result += v
	}

	return result
}
