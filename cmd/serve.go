// =============================================================================
// ibankit - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which runs the HTTP API.
//
// COMMAND USAGE:
//   ibankit serve [--addr :8080]
//
// ENDPOINTS:
//   GET  /v1/ibans/{iban}      Validate and decompose an IBAN
//   GET  /v1/ibans/random      Random IBAN (?country=, ?seed=)
//   POST /v1/ibans             Build an IBAN from its parts
//   GET  /v1/bics/{bic}        Validate and decompose a BIC
//   GET  /v1/countries         Supported countries
//   GET  /v1/countries/{code}  One country's BBAN structure
//   GET  /-/live               Liveness
//   GET  /metrics              Prometheus metrics (server.metrics_path)
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ibankit/internal/httpapi"
	"github.com/ginjaninja78/ibankit/internal/metrics"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		log, closeLog, err := openLogger(cfg)
		if err != nil {
			return err
		}
		defer closeLog()

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		router := httpapi.NewRouter(log, metrics.New(reg),
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), cfg.Server.MetricsPath)

		srv := httpapi.NewServer(log, router)
		if err := srv.Start(cfg.Server.Addr); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from the config)")
}
