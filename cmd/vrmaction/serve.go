package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rhuss/vrmaction/pkg/config"
	"github.com/rhuss/vrmaction/pkg/engine"
	transporthttp "github.com/rhuss/vrmaction/pkg/transport/http"
	"github.com/rhuss/vrmaction/pkg/transport/mcpserver"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		transportName string
		port          int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the MCP server over stdio (for desktop MCP clients) or over the
streamable HTTP transport.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("transport") {
				cfg.Server.Transport = transportName
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&transportName, "transport", "t", config.TransportStdio, "MCP transport: stdio or http")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port for the http transport")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	store, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	eng := engine.New(store, engineConfig(cfg.Engine))
	server := mcpserver.New(eng, mcpserver.Options{
		Version: version,
		Logger:  slog.Default(),
	})

	if cfg.Server.Transport == config.TransportStdio {
		return mcpserver.RunStdio(ctx, server)
	}

	chain, err := newAuthChain(cfg.Auth)
	if err != nil {
		return fmt.Errorf("configuring auth: %w", err)
	}
	httpCfg := mcpserver.HTTPConfig{
		Path:      cfg.Server.Path,
		Stateless: cfg.Server.Stateless,
		Auth:      chain,
		Limiter:   newRateLimiter(cfg.Auth.RateLimit),
	}
	if store != nil {
		httpCfg.Ready = store.HealthCheck
	}
	if cfg.Observability.Metrics.Enabled {
		httpCfg.MetricsPath = cfg.Observability.Metrics.Path
	}

	srv := transporthttp.NewServer(
		mcpserver.NewHTTPHandler(server, httpCfg),
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(slog.Default()),
	)
	slog.Info("serving MCP over http",
		"port", cfg.Server.Port,
		"path", cfg.Server.Path,
		"auth", cfg.Auth.Type,
		"storage", cfg.Storage.Type,
	)
	return srv.ListenAndServe(ctx)
}
