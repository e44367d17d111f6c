package commands

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpedy/myboxplot/pkg/config"
	"github.com/mpedy/myboxplot/pkg/observability"
	"github.com/mpedy/myboxplot/pkg/plotpage"
	"github.com/mpedy/myboxplot/pkg/report"
)

const defaultRenderOutput = "boxplot.html"

type renderOptions struct {
	inputFormat string
	output      string
	title       string
	theme       string
	noLogo      bool
}

func newRenderCommand(global *globalOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <dataset>",
		Short: "Render the box-plot page as HTML or PDF",
		Long: `Render writes the three box-plot views of a dataset to a file. A .pdf
output gets the printable report; anything else gets the interactive HTML page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := global.setup(observability.ModeCLI)
			if err != nil {
				return err
			}
			defer rt.close()

			return runRender(cmd, rt, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "dataset format: csv, json, yaml (default: from extension, then input.format)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", defaultRenderOutput, "output file (.html or .pdf), - for stdout")
	cmd.Flags().StringVar(&opts.title, "title", "", "page title")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "light or dark (default: chart.theme)")
	cmd.Flags().BoolVar(&opts.noLogo, "no-logo", false, "hide the logo (default: chart.show_logo)")

	return cmd
}

func runRender(cmd *cobra.Command, rt *runtime, path string, opts *renderOptions) error {
	inputFormat, err := resolveInputFormat(opts.inputFormat, rt.cfg.Input.Format, path)
	if err != nil {
		return err
	}

	themeName := opts.theme
	if themeName == "" {
		themeName = rt.cfg.Chart.Theme
	}

	theme, err := plotpage.ParseTheme(themeName)
	if err != nil {
		return err
	}

	result, err := rt.pipeline.SummarizeFile(cmd.Context(), path, inputFormat, rt.summarizeOptions())
	if err != nil {
		return err
	}

	output := opts.output
	if output == "-" {
		output = ""
	}

	lines := rt.cfg.Chart.ActiveThresholdLines()

	if strings.EqualFold(filepath.Ext(output), ".pdf") {
		return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
			return report.Write(w, report.FormatPDF, result, report.Options{
				Title:          opts.title,
				ThresholdLines: reportThresholds(lines),
			})
		})
	}

	page := plotpage.NewSurveyPage(result.Views, result.Counts, plotpage.PageOptions{
		Title:          opts.title,
		Theme:          theme,
		ShowLogo:       rt.cfg.Chart.ShowLogo && !opts.noLogo,
		LogoSize:       rt.cfg.Chart.LogoSize,
		ThresholdLines: chartThresholds(lines),
	})

	err = writeOutput(cmd.OutOrStdout(), output, page.Render)
	if err != nil {
		return err
	}

	if output != "" {
		rt.logger.InfoContext(cmd.Context(), "page written", "path", output)
	}

	return nil
}

func chartThresholds(lines []config.ThresholdLine) []plotpage.ThresholdLine {
	result := make([]plotpage.ThresholdLine, len(lines))
	for i, l := range lines {
		result[i] = plotpage.ThresholdLine{Value: l.Value, Color: l.Color}
	}

	return result
}
