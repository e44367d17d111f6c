package plotpage

import (
	"encoding/json"
	"fmt"
	"html"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mpedy/myboxplot/pkg/boxplot"
)

// Chart geometry.
const (
	boxSeriesName     = "Box plot"
	outlierSeriesName = "Outliers"
	outlierSymbolSize = 6
	axisMin           = 0
	axisMax           = 100
)

// ThresholdLine is a dashed horizontal reference line.
type ThresholdLine struct {
	Value float64
	Color string
}

// BuildBoxPlotChart builds one box plot with a box per summary, an outlier
// overlay and one dashed line per threshold. Whiskers end at the clamped
// fences. If cOpts is nil, DefaultChartOpts() is used.
func BuildBoxPlotChart(cOpts *ChartOpts, summaries []boxplot.Summary, thresholds []ThresholdLine) *charts.BoxPlot {
	if cOpts == nil {
		cOpts = DefaultChartOpts()
	}

	labels := make([]string, len(summaries))
	colors := make([]string, len(summaries))
	tooltips := make([]string, len(summaries))
	boxes := make([]opts.BoxPlotData, len(summaries))

	var outliers []opts.ScatterData

	for i, s := range summaries {
		labels[i] = s.DisplayLabel
		colors[i] = string(s.Identity.Color)
		tooltips[i] = TooltipHTML(s)
		boxes[i] = opts.BoxPlotData{
			Name:  s.DisplayLabel,
			Value: []float64{s.WhiskerLow(), s.Q1, s.Median, s.Q3, s.WhiskerHigh()},
		}

		for _, v := range s.OutliersBelow {
			outliers = append(outliers, opts.ScatterData{Value: []any{s.DisplayLabel, v}, SymbolSize: outlierSymbolSize})
		}

		for _, v := range s.OutliersAbove {
			outliers = append(outliers, opts.ScatterData{Value: []any{s.DisplayLabel, v}, SymbolSize: outlierSymbolSize})
		}
	}

	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init("100%", "560px")),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: opts.FuncOpts(indexedFunc(tooltips, tooltipFallback)),
		}),
		charts.WithLegendOpts(cOpts.Legend()),
		charts.WithXAxisOpts(cOpts.CategoryAxis()),
		charts.WithYAxisOpts(cOpts.PercentAxis("%", axisMin, axisMax)),
		charts.WithGridOpts(cOpts.Grid()),
	)

	box.SetXAxis(labels)
	box.AddSeries(boxSeriesName, boxes,
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:       string(opts.FuncOpts(indexedFunc(colors, colorFallback))),
			BorderColor: cOpts.BoxStroke(),
		}),
	)

	if len(outliers) > 0 {
		scatter := charts.NewScatter()
		scatter.SetXAxis(labels)
		scatter.AddSeries(outlierSeriesName, outliers,
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color:       cOpts.OutlierFill(),
				BorderColor: cOpts.BoxStroke(),
			}),
		)
		box.Overlap(scatter)
	}

	for _, t := range thresholds {
		box.Overlap(thresholdLine(labels, t))
	}

	return box
}

func thresholdLine(labels []string, t ThresholdLine) *charts.Line {
	data := make([]opts.LineData, len(labels))
	for i := range data {
		data[i] = opts.LineData{Value: t.Value}
	}

	line := charts.NewLine()
	line.SetXAxis(labels)
	line.AddSeries(ThresholdName(t.Value), data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: t.Color, Type: "dashed"}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: t.Color}),
	)

	return line
}

// ThresholdName is the legend name of a threshold line.
func ThresholdName(value float64) string {
	return fmt.Sprintf("Soglia %s%%", FormatPercent(value))
}

// JS fallbacks for series other than the box plot.
const (
	colorFallback   = "p.color"
	tooltipFallback = "p.seriesName + ': ' + p.value"
)

// indexedFunc returns a JS function picking values[p.dataIndex] for the box
// series and evaluating fallback for every other series.
func indexedFunc(values []string, fallback string) string {
	encoded, err := json.Marshal(values)
	if err != nil {
		encoded = []byte("[]")
	}

	return fmt.Sprintf(
		`function (p) { var v = %s; if (p.seriesType === 'boxplot' && p.dataIndex < v.length) { return v[p.dataIndex]; } return %s; }`,
		encoded, fallback,
	)
}

// FormatPercent formats a percentage with two decimals.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// TooltipHTML is the tooltip body of one box: label, count, mean, quartiles,
// fences and outlier counts.
func TooltipHTML(s boxplot.Summary) string {
	return fmt.Sprintf(
		"<b>%s</b><br/>N: %d<br/>Media: %s%%<br/>Mediana: %s%%<br/>Q1: %s%%<br/>Q3: %s%%"+
			"<br/>Limite inferiore: %s%%<br/>Limite superiore: %s%%"+
			"<br/>Outlier sotto: %d<br/>Outlier sopra: %d",
		html.EscapeString(s.DisplayLabel), s.Count(),
		FormatPercent(s.Mean), FormatPercent(s.Median), FormatPercent(s.Q1), FormatPercent(s.Q3),
		FormatPercent(s.LowerFence), FormatPercent(s.UpperFence),
		len(s.OutliersBelow), len(s.OutliersAbove),
	)
}
