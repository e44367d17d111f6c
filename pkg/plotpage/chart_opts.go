package plotpage

import (
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartOpts provides themed chart options based on the current theme.
type ChartOpts struct {
	theme ThemeConfig
}

// NewChartOpts creates a new ChartOpts with the given theme.
func NewChartOpts(theme Theme) *ChartOpts {
	return &ChartOpts{theme: GetThemeConfig(theme)}
}

// DefaultChartOpts returns chart options for the default light theme.
func DefaultChartOpts() *ChartOpts {
	return NewChartOpts(ThemeLight)
}

// Init returns initialization options with themed background.
func (c *ChartOpts) Init(width, height string) opts.Initialization {
	return opts.Initialization{
		Width:           width,
		Height:          height,
		BackgroundColor: c.theme.ChartBackground,
	}
}

// Legend returns legend options with themed text color.
func (c *ChartOpts) Legend() opts.Legend {
	return opts.Legend{
		Show:      opts.Bool(true),
		Type:      "scroll",
		Top:       "0",
		Left:      "center",
		TextStyle: &opts.TextStyle{Color: c.theme.ChartTextMuted},
	}
}

// CategoryAxis returns x-axis options for category labels. Every label is
// shown; long labels wrap in the chart's own formatter.
func (c *ChartOpts) CategoryAxis() opts.XAxis {
	return opts.XAxis{
		Type: "category",
		AxisLabel: &opts.AxisLabel{
			Interval: "0",
			Color:    c.theme.ChartText,
		},
		AxisLine: &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
	}
}

// PercentAxis returns a y-axis fixed to [min,max].
func (c *ChartOpts) PercentAxis(name string, lo, hi float64) opts.YAxis {
	return opts.YAxis{
		Name:      name,
		Type:      "value",
		Min:       lo,
		Max:       hi,
		AxisLabel: &opts.AxisLabel{Color: c.theme.ChartTextMuted},
		AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
		SplitLine: &opts.SplitLine{
			Show:      opts.Bool(true),
			LineStyle: &opts.LineStyle{Color: c.theme.ChartGrid},
		},
	}
}

// Grid returns grid options with standard margins.
func (c *ChartOpts) Grid() opts.Grid {
	return opts.Grid{
		Top:          "12%",
		Bottom:       "10%",
		Left:         "4%",
		Right:        "4%",
		ContainLabel: opts.Bool(true),
	}
}

// BoxStroke returns the stroke color of boxes and whiskers.
func (c *ChartOpts) BoxStroke() string {
	return c.theme.BoxStroke
}

// OutlierFill returns the fill color of outlier markers.
func (c *ChartOpts) OutlierFill() string {
	return c.theme.OutlierFill
}
