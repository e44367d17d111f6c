// Package commands implements the myboxplot CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/mpedy/myboxplot/pkg/config"
	"github.com/mpedy/myboxplot/pkg/observability"
	"github.com/mpedy/myboxplot/pkg/pipeline"
	"github.com/mpedy/myboxplot/pkg/version"
)

const defaultEnvFile = ".env"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
}

// NewRootCommand builds the myboxplot command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "myboxplot",
		Short: "Box-plot summaries of course-evaluation surveys",
		Long: `myboxplot turns per-respondent survey scores into box-plot summaries
for all courses, the department view and the program view.

Commands:
  summarize   Print summaries as a table, JSON, YAML or PDF
  render      Write the box-plot page as HTML or PDF
  serve       Run the HTTP API
  mcp         Run the MCP server on stdio
  categories  List the survey categories`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: myboxplot.yaml in ., ./config or /etc/myboxplot)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", defaultEnvFile, "dotenv file loaded before the config")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newSummarizeCommand(opts),
		newRenderCommand(opts),
		newServeCommand(opts),
		newMCPCommand(opts),
		newCategoriesCommand(),
		newVersionCommand(),
	)

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// runtime bundles the configuration and telemetry of one command run.
type runtime struct {
	cfg       *config.Config
	providers observability.Providers
	logger    *slog.Logger
	reporter  *observability.ErrorReporter
	red       *observability.REDMetrics
	pipeline  *pipeline.Service
}

// setup loads .env and the config, then starts telemetry for mode. Extra
// readers are attached to the meter provider.
func (o *globalOptions) setup(mode observability.AppMode, readers ...sdkmetric.Reader) (*runtime, error) {
	err := config.LoadDotEnv(o.envFile)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	providers, err := observability.Init(observabilityConfig(cfg, mode), readers...)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	rt := &runtime{cfg: cfg, providers: providers, logger: providers.Logger}

	rt.reporter, err = observability.NewErrorReporter(observability.ReporterOptions{
		DSN:         cfg.Telemetry.SentryDSN,
		Environment: cfg.Telemetry.Environment,
		Release:     version.Version,
	})
	if err != nil {
		return nil, rt.abort(err)
	}

	aggMetrics, err := observability.NewAggregationMetrics(providers.Meter)
	if err != nil {
		return nil, rt.abort(err)
	}

	rt.red, err = observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, rt.abort(err)
	}

	rt.pipeline = pipeline.New(pipeline.Deps{
		Logger:   providers.Logger,
		Tracer:   providers.Tracer,
		Metrics:  aggMetrics,
		Reporter: rt.reporter,
	})

	return rt, nil
}

func observabilityConfig(cfg *config.Config, mode observability.AppMode) observability.Config {
	obs := observability.DefaultConfig()
	obs.ServiceVersion = version.Version
	obs.Environment = cfg.Telemetry.Environment
	obs.Mode = mode
	obs.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obs.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obs.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obs.SampleRatio = cfg.Telemetry.SampleRatio
	obs.LogLevel = observability.ParseLogLevel(cfg.Logging.Level)
	obs.LogJSON = cfg.Logging.Format == config.LogFormatJSON || mode == observability.ModeMCP
	obs.DebugTrace = obs.LogLevel == slog.LevelDebug

	return obs
}

func (rt *runtime) abort(err error) error {
	shutdownErr := rt.providers.Shutdown(context.Background())
	if shutdownErr != nil {
		return fmt.Errorf("%w (shutdown: %w)", err, shutdownErr)
	}

	return err
}

// close flushes error reports and telemetry.
func (rt *runtime) close() {
	rt.reporter.Flush()

	err := rt.providers.Shutdown(context.Background())
	if err != nil {
		rt.logger.Warn("observability shutdown failed", "error", err)
	}
}

// summarizeOptions are the pipeline options implied by the config.
func (rt *runtime) summarizeOptions() pipeline.Options {
	return pipeline.Options{
		Scale:     rt.cfg.Input.Scale,
		Overrides: rt.cfg.Colors.OverrideMap(),
	}
}
