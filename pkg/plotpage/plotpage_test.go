package plotpage_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpedy/myboxplot/pkg/boxplot"
	"github.com/mpedy/myboxplot/pkg/dataset"
	"github.com/mpedy/myboxplot/pkg/plotpage"
	"github.com/mpedy/myboxplot/pkg/survey"
)

func sampleViews(t *testing.T) boxplot.ViewSet {
	t.Helper()

	var obs []boxplot.Observation

	for i, v := range []float64{10, 60, 62, 64, 66, 68, 70} {
		flag := boxplot.FlagNo
		if i%2 == 0 {
			flag = boxplot.FlagYes
		}

		obs = append(obs,
			boxplot.Observation{Category: survey.Orari, Value: v, FlagDept: flag, FlagProgram: boxplot.FlagYes},
			boxplot.Observation{Category: survey.DocStimola, Value: 100 - v, FlagDept: flag, FlagProgram: boxplot.FlagYes},
		)
	}

	views, err := boxplot.Aggregate(obs, nil)
	require.NoError(t, err)

	return views
}

func TestParseTheme(t *testing.T) {
	t.Parallel()

	theme, err := plotpage.ParseTheme("")
	require.NoError(t, err)
	assert.Equal(t, plotpage.ThemeLight, theme)

	theme, err = plotpage.ParseTheme(" Dark ")
	require.NoError(t, err)
	assert.Equal(t, plotpage.ThemeDark, theme)

	_, err = plotpage.ParseTheme("neon")
	require.Error(t, err)
}

func TestBuildBoxPlotChartSeries(t *testing.T) {
	t.Parallel()

	views := sampleViews(t)
	thresholds := []plotpage.ThresholdLine{{Value: 25, Color: "red"}, {Value: 50, Color: "#cccc00"}}

	chart := plotpage.BuildBoxPlotChart(nil, views.All, thresholds)

	require.Len(t, chart.MultiSeries, 4)
	assert.Equal(t, "boxplot", chart.MultiSeries[0].Type)
	assert.Equal(t, "scatter", chart.MultiSeries[1].Type)
	assert.Equal(t, "line", chart.MultiSeries[2].Type)
	assert.Equal(t, plotpage.ThresholdName(25), chart.MultiSeries[2].Name)
	assert.Equal(t, plotpage.ThresholdName(50), chart.MultiSeries[3].Name)

	boxes, ok := chart.MultiSeries[0].Data.([]opts.BoxPlotData)
	require.True(t, ok)
	require.Len(t, boxes, 2)

	s := views.All[0]
	assert.Equal(t, s.DisplayLabel, boxes[0].Name)
	assert.Equal(t, []float64{s.WhiskerLow(), s.Q1, s.Median, s.Q3, s.WhiskerHigh()}, boxes[0].Value)
}

func TestBuildBoxPlotChartWithoutOutliers(t *testing.T) {
	t.Parallel()

	s, err := boxplot.Summarize([]float64{40, 50, 60}, survey.Orari, boxplot.Identity{Category: survey.Orari, Color: "#123456"})
	require.NoError(t, err)

	chart := plotpage.BuildBoxPlotChart(nil, []boxplot.Summary{s}, nil)

	require.Len(t, chart.MultiSeries, 1)
	assert.Equal(t, "boxplot", chart.MultiSeries[0].Type)
}

func TestTooltipHTML(t *testing.T) {
	t.Parallel()

	s, err := boxplot.Summarize([]float64{0, 50, 100}, survey.DocStimola, boxplot.Identity{Category: survey.DocStimola})
	require.NoError(t, err)

	tip := plotpage.TooltipHTML(s)

	assert.Contains(t, tip, "<b>DOCENTE STIMOLA</b>")
	assert.Contains(t, tip, "N: 3")
	assert.Contains(t, tip, "Media: 50.00%")
	assert.Contains(t, tip, "Q1: 25.00%")
	assert.Contains(t, tip, "Limite superiore: 100.00%")
}

func TestTooltipHTMLEscapesLabel(t *testing.T) {
	t.Parallel()

	s, err := boxplot.Summarize([]float64{1}, "<x>", boxplot.Identity{})
	require.NoError(t, err)

	assert.Contains(t, plotpage.TooltipHTML(s), "<b>&lt;x&gt;</b>")
}

func TestSummaryTable(t *testing.T) {
	t.Parallel()

	views := sampleViews(t)

	var buf bytes.Buffer
	require.NoError(t, plotpage.SummaryTable(views.All).Render(&buf))

	html := buf.String()
	assert.Contains(t, html, "<th>Mediana</th>")
	assert.Contains(t, html, "ORARI")
	assert.Contains(t, html, `class="swatch"`)
	assert.Equal(t, 2, strings.Count(html, "<tr><td>"))
}

func TestTabsFirstActive(t *testing.T) {
	t.Parallel()

	tabs := plotpage.NewTabs("t",
		plotpage.TabItem{ID: "a", Label: "A", Content: plotpage.NewTable("x")},
		plotpage.TabItem{ID: "b", Label: "B"},
	)

	var buf bytes.Buffer
	require.NoError(t, tabs.Render(&buf))

	html := buf.String()
	assert.Contains(t, html, `class="tab-button active" role="tab" data-tab="a"`)
	assert.Contains(t, html, `class="tab-button" role="tab" data-tab="b"`)
	assert.Contains(t, html, `<th>x</th>`)
}

func TestEmptyTabsRenderNothing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, plotpage.NewTabs("t").Render(&buf))
	assert.Empty(t, buf.String())
}

func TestQuestionHint(t *testing.T) {
	t.Parallel()

	views := sampleViews(t)
	hint := plotpage.QuestionHint(views.All)

	require.Len(t, hint.Items, 2)
	assert.True(t, strings.HasPrefix(hint.Items[0], "ORARI: "))
}

func TestNewSurveyPageRender(t *testing.T) {
	t.Parallel()

	views := sampleViews(t)
	counts := dataset.RespondentCounts{TotalRespondents: 9, BlankQuestionnaires: 2, CompletedQuestionnaires: 7}

	page := plotpage.NewSurveyPage(views, counts, plotpage.PageOptions{
		Theme:          plotpage.ThemeDark,
		ShowLogo:       true,
		LogoSize:       200,
		ThresholdLines: []plotpage.ThresholdLine{{Value: 25, Color: "red"}},
	})

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))

	html := buf.String()
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, `class="dark"`)
	assert.Contains(t, html, plotpage.EvaluatedCoursesKey)
	assert.Contains(t, html, `<div class="stat-value">9</div>`)
	assert.Contains(t, html, `width="200" height="50"`)
	assert.Contains(t, html, "data:image/svg+xml;base64,")
	assert.Contains(t, html, "echarts.min.js")
	assert.Equal(t, 3, strings.Count(html, `class="echart-box"`))
	assert.Contains(t, html, `data-tab="view-dept"`)
	assert.Contains(t, html, `data-tab="view-program"`)
	assert.Equal(t, 1, strings.Count(html, "<!DOCTYPE html>"))
}

func TestNewSurveyPageWithoutLogo(t *testing.T) {
	t.Parallel()

	page := plotpage.NewSurveyPage(sampleViews(t), dataset.RespondentCounts{}, plotpage.PageOptions{Title: "Report"})

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))

	html := buf.String()
	assert.Contains(t, html, "<title>Report</title>")
	assert.NotContains(t, html, `class="logo"`)
	assert.NotContains(t, html, `class="dark"`)
}

func TestWrapChartFragment(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, plotpage.WrapChart(plotpage.NewTable("h")).Render(&buf))
	assert.Contains(t, buf.String(), "<th>h</th>")
}

func TestLogoDataURI(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.HasPrefix(string(plotpage.LogoDataURI()), "data:image/svg+xml;base64,"))
}
