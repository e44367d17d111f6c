package boxplot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpedy/myboxplot/pkg/alg/stats"
	"github.com/mpedy/myboxplot/pkg/boxplot"
	"github.com/mpedy/myboxplot/pkg/survey"
)

const delta = 1e-9

func testIdentity(c survey.Category) boxplot.Identity {
	return boxplot.Identity{Category: c, Color: "#abcdef", SelectionKey: boxplot.SelectionKey(0, c)}
}

func TestSummarize_EvenlySpacedScores(t *testing.T) {
	t.Parallel()

	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	s, err := boxplot.Summarize(values, survey.Orari, testIdentity(survey.Orari))
	require.NoError(t, err)

	assert.InDelta(t, 10, s.Min, delta)
	assert.InDelta(t, 32.5, s.Q1, delta)
	assert.InDelta(t, 55, s.Median, delta)
	assert.InDelta(t, 55, s.Mean, delta)
	assert.InDelta(t, 77.5, s.Q3, delta)
	assert.InDelta(t, 100, s.Max, delta)
	assert.InDelta(t, 45, s.IQR, delta)
	assert.InDelta(t, 0, s.LowerFence, delta, "lower fence is clamped to 0")
	assert.InDelta(t, 100, s.UpperFence, delta, "upper fence is clamped to 100")
	assert.Empty(t, s.OutliersBelow)
	assert.Empty(t, s.OutliersAbove)
	assert.Equal(t, "ORARI", s.DisplayLabel)
	assert.Equal(t, survey.Orari, s.Category)
	assert.Equal(t, testIdentity(survey.Orari), s.Identity)
	assert.Equal(t, values, s.Values)
}

func TestSummarize_DegenerateBoxFlagsHighValue(t *testing.T) {
	t.Parallel()

	s, err := boxplot.Summarize([]float64{0, 0, 0, 0, 100}, survey.Interesse, testIdentity(survey.Interesse))
	require.NoError(t, err)

	assert.InDelta(t, 0, s.Q1, delta)
	assert.InDelta(t, 0, s.Median, delta)
	assert.InDelta(t, 0, s.Q3, delta)
	assert.InDelta(t, 0, s.IQR, delta)
	assert.InDelta(t, 0, s.LowerFence, delta)
	assert.InDelta(t, 0, s.UpperFence, delta)
	assert.Empty(t, s.OutliersBelow)
	assert.Equal(t, []float64{100}, s.OutliersAbove)
	assert.Equal(t, 1, s.OutlierCount())
}

func TestSummarize_ValuesOnFenceAreNotOutliers(t *testing.T) {
	t.Parallel()

	// q1=40, q3=60, iqr=20: fences 10 and 90.
	values := []float64{10, 40, 40, 50, 60, 60, 90, 5, 95}

	s, err := boxplot.Summarize(values, survey.Coerenza, testIdentity(survey.Coerenza))
	require.NoError(t, err)

	assert.InDelta(t, 40, s.Q1, delta)
	assert.InDelta(t, 60, s.Q3, delta)
	assert.InDelta(t, 10, s.LowerFence, delta)
	assert.InDelta(t, 90, s.UpperFence, delta)
	assert.Equal(t, []float64{5}, s.OutliersBelow)
	assert.Equal(t, []float64{95}, s.OutliersAbove)
}

func TestSummarize_TranslatesDisplayLabel(t *testing.T) {
	t.Parallel()

	s, err := boxplot.Summarize([]float64{50}, survey.ModEsame, testIdentity(survey.ModEsame))
	require.NoError(t, err)
	assert.Equal(t, "MODALITA' ESAME", s.DisplayLabel)
	assert.Equal(t, survey.ModEsame, s.Category)

	s, err = boxplot.Summarize([]float64{50}, "LABORATORIO", testIdentity("LABORATORIO"))
	require.NoError(t, err)
	assert.Equal(t, "LABORATORIO", s.DisplayLabel)
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	_, err := boxplot.Summarize(nil, survey.Orari, testIdentity(survey.Orari))
	require.ErrorIs(t, err, stats.ErrEmptyInput)
	assert.Contains(t, err.Error(), "ORARI")
}

func TestSummarize_DoesNotAliasInput(t *testing.T) {
	t.Parallel()

	values := []float64{30, 10, 20}

	s, err := boxplot.Summarize(values, survey.Orari, testIdentity(survey.Orari))
	require.NoError(t, err)

	values[0] = 99
	assert.Equal(t, []float64{30, 10, 20}, s.Values)
}

func TestSummarize_Invariants(t *testing.T) {
	t.Parallel()

	inputs := [][]float64{
		{50},
		{0, 100},
		{0, 0, 0, 0, 100},
		{100, 100, 100, 0},
		{12.5, 37.5, 37.5, 50, 62.5, 87.5, 100},
		{3, 97, 48, 49, 50, 51, 52, 1, 99},
		{20, 20, 25, 25, 25, 30, 80, 90},
	}

	for _, values := range inputs {
		s, err := boxplot.Summarize(values, survey.Soddisfazione, testIdentity(survey.Soddisfazione))
		require.NoError(t, err)

		assert.LessOrEqual(t, s.Min, s.Q1)
		assert.LessOrEqual(t, s.Q1, s.Median)
		assert.LessOrEqual(t, s.Median, s.Q3)
		assert.LessOrEqual(t, s.Q3, s.Max)
		assert.GreaterOrEqual(t, s.IQR, 0.0)
		assert.GreaterOrEqual(t, s.LowerFence, 0.0)
		assert.LessOrEqual(t, s.LowerFence, s.Q1)
		assert.GreaterOrEqual(t, s.UpperFence, s.Q3)
		assert.LessOrEqual(t, s.UpperFence, 100.0)

		inside := 0

		for _, v := range values {
			if v >= s.LowerFence && v <= s.UpperFence {
				inside++
			}
		}

		assert.Equal(t, len(values), inside+s.OutlierCount(), "partition of %v", values)
	}
}

func TestSummary_Whiskers(t *testing.T) {
	t.Parallel()

	s, err := boxplot.Summarize([]float64{0, 0, 0, 0, 100}, survey.Orari, testIdentity(survey.Orari))
	require.NoError(t, err)
	assert.InDelta(t, 0, s.WhiskerLow(), delta)
	assert.InDelta(t, 0, s.WhiskerHigh(), delta)

	s, err = boxplot.Summarize([]float64{40, 50, 60}, survey.Orari, testIdentity(survey.Orari))
	require.NoError(t, err)
	assert.InDelta(t, 40, s.WhiskerLow(), delta)
	assert.InDelta(t, 60, s.WhiskerHigh(), delta)
}
