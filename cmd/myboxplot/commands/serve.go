package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/mpedy/myboxplot/pkg/observability"
	"github.com/mpedy/myboxplot/pkg/server"
)

type serveOptions struct {
	host string
	port int
}

func newServeCommand(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes POST /v1/summarize and GET /v1/categories together with
/metrics (Prometheus), /healthz and /readyz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exporter, err := observability.NewPrometheusExporter()
			if err != nil {
				return err
			}

			rt, err := global.setup(observability.ModeServe, exporter.Reader)
			if err != nil {
				return err
			}
			defer rt.close()

			return runServe(cmd.Context(), rt, exporter, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "listen host (default: server.host)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port (default: server.port)")

	return cmd
}

func runServe(ctx context.Context, rt *runtime, exporter *observability.PrometheusExporter, opts *serveOptions) error {
	cfg := rt.cfg.Server
	if opts.host != "" {
		cfg.Host = opts.host
	}

	if opts.port != 0 {
		cfg.Port = opts.port
	}

	handler := server.NewHandler(server.Deps{
		Pipeline: rt.pipeline,
		Logger:   rt.logger,
		Tracer:   rt.providers.Tracer,
		RED:      rt.red,
		Metrics:  exporter.Handler,
	}, server.Options{
		Summarize:      rt.summarizeOptions(),
		ThresholdLines: reportThresholds(rt.cfg.Chart.ActiveThresholdLines()),
	})

	srv, err := server.Listen(ctx, cfg, handler)
	if err != nil {
		return err
	}

	rt.logger.InfoContext(ctx, "server listening", "addr", srv.Addr())

	serveErr := make(chan error, 1)

	go func() { serveErr <- srv.Serve() }()

	select {
	case err = <-serveErr:
		return err
	case <-ctx.Done():
	}

	rt.logger.InfoContext(ctx, "server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.WriteTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)

	return errors.Join(err, <-serveErr)
}
