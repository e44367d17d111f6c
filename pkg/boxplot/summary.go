// Package boxplot derives box-plot descriptors from survey scores and groups
// them into parallel privacy-filtered views.
//
// Values are percentages in [0, 100]; fences are clamped to that domain.
package boxplot

import (
	"fmt"

	"github.com/mpedy/myboxplot/pkg/alg/stats"
	"github.com/mpedy/myboxplot/pkg/survey"
)

// Percentage domain bounds and the Tukey fence multiplier.
const (
	DomainMin       = 0.0
	DomainMax       = 100.0
	FenceMultiplier = 1.5
)

// Identity is the stable identity of one category across all views of an
// update cycle.
type Identity struct {
	Category     survey.Category `json:"category"      yaml:"category"`
	Color        survey.Color    `json:"color"         yaml:"color"`
	SelectionKey string          `json:"selection_key" yaml:"selection_key"`
}

// Summary is the box-plot descriptor for one (category, view) pair.
// It is never mutated after Summarize returns it.
type Summary struct {
	Category      survey.Category `json:"category"       yaml:"category"`
	DisplayLabel  string          `json:"display_label"  yaml:"display_label"`
	Min           float64         `json:"min"            yaml:"min"`
	Q1            float64         `json:"q1"             yaml:"q1"`
	Median        float64         `json:"median"         yaml:"median"`
	Mean          float64         `json:"mean"           yaml:"mean"`
	Q3            float64         `json:"q3"             yaml:"q3"`
	Max           float64         `json:"max"            yaml:"max"`
	IQR           float64         `json:"iqr"            yaml:"iqr"`
	LowerFence    float64         `json:"lower_fence"    yaml:"lower_fence"`
	UpperFence    float64         `json:"upper_fence"    yaml:"upper_fence"`
	Values        []float64       `json:"values"         yaml:"values"`
	OutliersBelow []float64       `json:"outliers_below" yaml:"outliers_below"`
	OutliersAbove []float64       `json:"outliers_above" yaml:"outliers_above"`
	Identity      Identity        `json:"identity"       yaml:"identity"`
}

// Count returns the number of values behind the summary.
func (s Summary) Count() int {
	return len(s.Values)
}

// OutlierCount returns the number of values outside the fences.
func (s Summary) OutlierCount() int {
	return len(s.OutliersBelow) + len(s.OutliersAbove)
}

// WhiskerLow returns where the lower whisker ends: the minimum when it lies
// inside the fence, otherwise the fence itself.
func (s Summary) WhiskerLow() float64 {
	return max(s.Min, s.LowerFence)
}

// WhiskerHigh returns where the upper whisker ends: the maximum when it lies
// inside the fence, otherwise the fence itself.
func (s Summary) WhiskerHigh() float64 {
	return min(s.Max, s.UpperFence)
}

// Summarize computes the box-plot descriptor of values for category,
// attaching identity unchanged. values must be non-empty; the slice is
// copied, never modified.
func Summarize(values []float64, category survey.Category, identity Identity) (Summary, error) {
	qs, err := stats.Percentiles(values,
		stats.PercentileMin,
		stats.PercentileQ1,
		stats.PercentileMedian,
		stats.PercentileQ3,
		stats.PercentileMax,
	)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize %q: %w", string(category), err)
	}

	minV, q1, median, q3, maxV := qs[0], qs[1], qs[2], qs[3], qs[4]
	iqr := q3 - q1
	lower := max(q1-FenceMultiplier*iqr, DomainMin)
	upper := min(q3+FenceMultiplier*iqr, DomainMax)

	below := make([]float64, 0)
	above := make([]float64, 0)

	for _, v := range values {
		switch {
		case v < lower:
			below = append(below, v)
		case v > upper:
			above = append(above, v)
		}
	}

	kept := make([]float64, len(values))
	copy(kept, values)

	return Summary{
		Category:      category,
		DisplayLabel:  survey.ToDisplay(category),
		Min:           minV,
		Q1:            q1,
		Median:        median,
		Mean:          stats.Mean(values),
		Q3:            q3,
		Max:           maxV,
		IQR:           iqr,
		LowerFence:    lower,
		UpperFence:    upper,
		Values:        kept,
		OutliersBelow: below,
		OutliersAbove: above,
		Identity:      identity,
	}, nil
}
