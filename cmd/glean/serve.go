package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/glean/api"
	"github.com/use-agent/glean/cache"
	"github.com/use-agent/glean/scraper"
)

const shutdownGrace = 5 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes the scraper over HTTP:

  POST /api/v1/scrape   body: {"url": "...", "selector": "...", ...}
  GET  /api/v1/health

API keys and rate limits come from the auth and rate_limit configuration
sections (GLEAN_API_KEYS, GLEAN_RATE_RPS, GLEAN_RATE_BURST).`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("host", "", "Listen host (overrides configuration)")
	cmd.Flags().IntP("port", "p", 0, "Listen port (overrides configuration)")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}

	logger := initLogger(cmd, cfg.Log, cmd.ErrOrStderr())
	logger.Info("glean starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"respectRobots", cfg.Scraper.RespectRobots,
	)

	robotsCache := cache.New(cfg.Scraper.RobotsCacheSize, cfg.Scraper.RobotsCacheTTL)
	defer robotsCache.Close()

	sc := scraper.New(cfg.Scraper,
		scraper.WithLogger(logger),
		scraper.WithPolicyCache(robotsCache),
	)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	router := api.NewRouter(ctx, sc, cfg, time.Now())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server forced shutdown", "error", err)
	} else {
		logger.Info("HTTP server drained gracefully")
	}

	logger.Info("glean stopped")
	return nil
}
