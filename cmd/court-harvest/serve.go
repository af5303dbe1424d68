// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/court-harvest/internal/api"
	"github.com/pdiddy/court-harvest/internal/convert"
	"github.com/pdiddy/court-harvest/internal/fetch"
	"github.com/pdiddy/court-harvest/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve starts an HTTP server with POST /api/scrape and GET /health.
Case URLs are restricted to server.allowed_hosts (default
search.txcourts.gov). The server shuts down gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := fetch.New(&http.Client{}, cfg.Harvest.HTTPConfig, logger)
	p := pipeline.New(fetcher, convert.NewPDFConverter(), cfg.Harvest, pipeline.WithLogger(logger))
	e := api.NewServer(p, cfg.Server, logger).Echo()

	logger.Info("starting server", "addr", cfg.Server.Addr, "allowed_hosts", cfg.Server.AllowedHosts)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
