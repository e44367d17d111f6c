package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpedy/myboxplot/pkg/config"
	"github.com/mpedy/myboxplot/pkg/dataset"
	"github.com/mpedy/myboxplot/pkg/observability"
	"github.com/mpedy/myboxplot/pkg/report"
)

const outputFilePerm = 0o644

type summarizeOptions struct {
	inputFormat  string
	outputFormat string
	output       string
	title        string
	scale        float64
	noColor      bool
}

func newSummarizeCommand(global *globalOptions) *cobra.Command {
	opts := &summarizeOptions{}

	cmd := &cobra.Command{
		Use:   "summarize <dataset>",
		Short: "Summarize a survey dataset per category and view",
		Long: `Summarize reads a CSV, JSON or YAML dataset and prints, for every category,
the box-plot figures of all courses, the department view and the program view.

Output formats: text (default), json, yaml, pdf. With --output the format is
inferred from the file extension unless --format is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := global.setup(observability.ModeCLI)
			if err != nil {
				return err
			}
			defer rt.close()

			return runSummarize(cmd, rt, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "dataset format: csv, json, yaml (default: from extension, then input.format)")
	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", "", "output format: text, json, yaml, pdf")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringVar(&opts.title, "title", "", "report title")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "score multiplier in (0, 100] (default: input.scale)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored text output")

	return cmd
}

func runSummarize(cmd *cobra.Command, rt *runtime, path string, opts *summarizeOptions) error {
	inputFormat, err := resolveInputFormat(opts.inputFormat, rt.cfg.Input.Format, path)
	if err != nil {
		return err
	}

	outputFormat, err := resolveOutputFormat(opts.outputFormat, opts.output)
	if err != nil {
		return err
	}

	pipelineOpts := rt.summarizeOptions()
	if opts.scale > 0 {
		pipelineOpts.Scale = opts.scale
	}

	result, err := rt.pipeline.SummarizeFile(cmd.Context(), path, inputFormat, pipelineOpts)
	if err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), opts.output, func(w io.Writer) error {
		return report.Write(w, outputFormat, result, report.Options{
			Title:          opts.title,
			NoColor:        opts.noColor || opts.output != "",
			ThresholdLines: reportThresholds(rt.cfg.Chart.ActiveThresholdLines()),
		})
	})
}

// resolveInputFormat prefers the flag, then the extension, then the config.
func resolveInputFormat(flag, configured, path string) (dataset.Format, error) {
	if flag != "" {
		return dataset.ParseFormat(flag)
	}

	if format, err := dataset.FormatFromPath(path); err == nil {
		return format, nil
	}

	if configured != "" {
		return dataset.ParseFormat(configured)
	}

	return "", fmt.Errorf("%w: cannot infer format of %s, use --input-format", dataset.ErrUnknownFormat, path)
}

func resolveOutputFormat(flag, output string) (report.Format, error) {
	if flag != "" {
		return report.ParseFormat(flag)
	}

	if output != "" {
		return report.FormatFromPath(output), nil
	}

	return report.FormatText, nil
}

// writeOutput runs write against path, or against stdout when path is empty.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputFilePerm)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	writeErr := write(f)
	closeErr := f.Close()

	if writeErr != nil {
		return writeErr
	}

	if closeErr != nil {
		return fmt.Errorf("close output: %w", closeErr)
	}

	return nil
}

func reportThresholds(lines []config.ThresholdLine) []report.ThresholdLine {
	result := make([]report.ThresholdLine, len(lines))
	for i, l := range lines {
		result[i] = report.ThresholdLine(l)
	}

	return result
}
