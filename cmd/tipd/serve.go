package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/tooltip/internal/config"
	"github.com/vango-dev/tooltip/pkg/bridge"
	"github.com/vango-dev/tooltip/pkg/metrics"
)

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tooltip bridge server",
		Long: `Run the tooltip bridge server.

Routes:
  /ws         WebSocket endpoint for the browser client
  /client.js  the browser client
  /healthz    liveness and open session count
  /metrics    Prometheus metrics (when enabled)

Examples:
  tipd serve
  tipd serve --addr=:9000
  tipd serve --config=deploy/tooltip.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from "+config.ConfigFileName+")")

	return cmd
}

// bridgeConfig builds the bridge configuration from cfg.
func bridgeConfig(cfg *config.Config) (*bridge.Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	defaults, err := cfg.Defaults.Options()
	if err != nil {
		return nil, err
	}

	bc := &bridge.Config{
		ReadTimeout:       cfg.Server.ReadTimeoutDuration(),
		WriteTimeout:      cfg.Server.WriteTimeoutDuration(),
		HeartbeatInterval: cfg.Server.HeartbeatDuration(),
		MaxMessageBytes:   cfg.Server.MaxMessageBytes,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		Defaults:          defaults,
		Logger:            cfg.Log.Logger(os.Stderr),
		MetricsPath:       cfg.Metrics.Path,
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		bc.Metrics = metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(reg),
		)
		bc.Gatherer = reg
	}
	return bc, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	bc, err := bridgeConfig(cfg)
	if err != nil {
		return err
	}
	srv := bridge.New(bc)
	logger := bc.Logger

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	success("tipd listening on %s", cfg.Server.Addr)
	if p := cfg.Path(); p != "" {
		info("config: %s", p)
	}
	if bc.Gatherer != nil {
		info("metrics: %s", bc.MetricsPath)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv.Shutdown(shutdownCtx)
	return httpSrv.Shutdown(shutdownCtx)
}
