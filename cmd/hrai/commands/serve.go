package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/54b3r/hrai-go/internal/logging"
	"github.com/54b3r/hrai-go/internal/server"
)

// NewServeCmd constructs the `hrai serve` command, which starts the HTTP
// search API.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HRAI HTTP server",
		Long: `Start the HRAI HTTP server.

Endpoints:
  POST /api/search     run a search (JSON body: query, site, page, page_size)
  GET  /api/sites      list the site filter values
  GET  /api/cv/{id}    redirect to a candidate's CV document
  GET  /api/health     liveness
  GET  /api/ready      readiness (probes SQLite and Qdrant)
  GET  /metrics        Prometheus metrics

Set HRAI_API_KEY to require a Bearer token on the /api/search, /api/sites
and /api/cv routes.

Examples:
  hrai serve
  hrai serve --port 9090
  QDRANT_HOST=localhost GOOGLE_API_KEY=... hrai serve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.FromContext(ctx)

			// HRAI_HOST / HRAI_PORT may come from the YAML file, which is
			// applied after flag defaults are computed.
			if !cmd.Flags().Changed("host") {
				host = getEnvOrDefault("HRAI_HOST", host)
			}
			if !cmd.Flags().Changed("port") {
				port = getEnvInt("HRAI_PORT", port)
			}

			d, err := buildDeps(ctx, log, prometheus.DefaultRegisterer)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer d.Close()

			srv, err := server.New(d.engine, d.store, &server.Config{
				Host:      host,
				Port:      port,
				Logger:    log,
				Pingers:   d.pingers(),
				RateLimit: getEnvFloat("HRAI_RATE_LIMIT", 0),
				RateBurst: getEnvInt("HRAI_RATE_BURST", 0),
				APIKey:    os.Getenv("HRAI_API_KEY"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			log.Info("serve starting",
				slog.Bool("semantic_enabled", d.engine.SemanticEnabled()),
				slog.Bool("auth_enabled", os.Getenv("HRAI_API_KEY") != ""),
			)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to (env: HRAI_HOST)")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on (env: HRAI_PORT)")

	return cmd
}
