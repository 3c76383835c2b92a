package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ncobase/todox/config"
	"github.com/ncobase/todox/internal/server"
	"github.com/ncobase/todox/logging/logger"
	"github.com/ncobase/todox/logging/observes"
	"github.com/ncobase/todox/version"

	_ "github.com/ncobase/todox/data/mysql"
	_ "github.com/ncobase/todox/data/postgres"
	_ "github.com/ncobase/todox/data/redis"
	_ "github.com/ncobase/todox/data/sqlite"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	return cmd
}

func runServe(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer cleanupLogger()
	log := logger.StdLogger()

	setupObserves(cfg, log)

	srv, err := server.NewServer(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	router := srv.SetupRouter()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.StartEventBus(ctx, 5)
	srv.StartReminder(ctx)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info(context.Background(), "Starting server",
			"addr", addr,
			"version", version.GetVersionInfo().Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(context.Background(), "Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(context.Background(), "Shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error(context.Background(), "Server forced to shutdown", "error", err)
	}

	cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cleanupCancel()
	srv.Cleanup(cleanupCtx)

	log.Info(context.Background(), "Server exited")
	return nil
}

// setupObserves initializes sentry and the tracer when configured.
// Both stay no-ops on empty endpoints.
func setupObserves(cfg *config.Config, log *logger.Logger) {
	if cfg.Observes == nil {
		return
	}
	info := version.GetVersionInfo()

	if sc := cfg.Observes.Sentry; sc != nil && sc.Endpoint != "" {
		err := observes.NewSentry(&observes.SentryOptions{
			Dsn:         sc.Endpoint,
			Name:        cfg.AppName,
			Release:     sc.Release,
			Environment: sc.Environment,
		})
		if err != nil {
			log.Warn(context.Background(), "Failed to initialize sentry", "error", err)
		}
	}

	if tc := cfg.Observes.Tracer; tc != nil && tc.Endpoint != "" {
		name := tc.ServiceName
		if name == "" {
			name = cfg.AppName
		}
		err := observes.NewTracer(&observes.TracerOption{
			URL:                tc.Endpoint,
			Name:               name,
			Version:            info.Version,
			Branch:             info.Branch,
			Revision:           info.Revision,
			Environment:        tc.Environment,
			SamplingRate:       tc.SamplingRate,
			BatchTimeout:       tc.BatchTimeout,
			ExportTimeout:      tc.ExportTimeout,
			MaxExportBatchSize: tc.MaxExportBatchSize,
		})
		if err != nil {
			log.Warn(context.Background(), "Failed to initialize tracer", "error", err)
		}
	}
}
