package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpedy/myboxplot/pkg/config"
	"github.com/mpedy/myboxplot/pkg/dataset"
	"github.com/mpedy/myboxplot/pkg/report"
)

func TestResolveInputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		flag       string
		configured string
		path       string
		want       dataset.Format
	}{
		{"flag wins", "yaml", "json", "data.csv", dataset.FormatYAML},
		{"extension", "", "json", "data.csv", dataset.FormatCSV},
		{"config fallback", "", "json", "data.txt", dataset.FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveInputFormat(tt.flag, tt.configured, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := resolveInputFormat("", "", "data.txt")
	require.ErrorIs(t, err, dataset.ErrUnknownFormat)
}

func TestResolveOutputFormat(t *testing.T) {
	t.Parallel()

	got, err := resolveOutputFormat("", "")
	require.NoError(t, err)
	assert.Equal(t, report.FormatText, got)

	got, err = resolveOutputFormat("", "out.pdf")
	require.NoError(t, err)
	assert.Equal(t, report.FormatPDF, got)

	got, err = resolveOutputFormat("json", "out.pdf")
	require.NoError(t, err)
	assert.Equal(t, report.FormatJSON, got)

	_, err = resolveOutputFormat("docx", "")
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestThresholdConversions(t *testing.T) {
	t.Parallel()

	lines := config.DefaultThresholdLines()

	reportLines := reportThresholds(lines)
	chartLines := chartThresholds(lines)

	require.Len(t, reportLines, len(lines))
	require.Len(t, chartLines, len(lines))

	for i, l := range lines {
		assert.InDelta(t, l.Value, reportLines[i].Value, 1e-12)
		assert.Equal(t, l.Color, chartLines[i].Color)
	}
}
