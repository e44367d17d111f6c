package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpedy/myboxplot/pkg/mcp"
	"github.com/mpedy/myboxplot/pkg/observability"
)

func newMCPCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

Tools:
  - boxplot_summarize: summarize an inline dataset into box plots per view
  - survey_categories: list the survey categories`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := global.setup(observability.ModeMCP)
			if err != nil {
				return err
			}
			defer rt.close()

			srv := newMCPServer(rt)

			err = srv.Run(cmd.Context())
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("run mcp: %w", err)
			}

			return nil
		},
	}
}

func newMCPServer(rt *runtime) *mcp.Server {
	return mcp.NewServer(mcp.ServerDeps{
		Logger:         rt.logger,
		Metrics:        rt.red,
		Tracer:         rt.providers.Tracer,
		Pipeline:       rt.pipeline,
		Defaults:       rt.summarizeOptions(),
		ThresholdLines: reportThresholds(rt.cfg.Chart.ActiveThresholdLines()),
	})
}
