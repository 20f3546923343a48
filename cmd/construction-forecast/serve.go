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

	"github.com/iwvelando/construction-forecast/internal/cache"
	"github.com/iwvelando/construction-forecast/internal/calculator"
	"github.com/iwvelando/construction-forecast/internal/metrics"
	"github.com/iwvelando/construction-forecast/internal/server"
	"github.com/iwvelando/construction-forecast/internal/store"
	"github.com/iwvelando/construction-forecast/pkg/constants"
	"github.com/iwvelando/construction-forecast/pkg/reference"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var serverConfigPath, address, maxUploadSize string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}
			if maxUploadSize != "" {
				size, err := server.ParseSize(maxUploadSize)
				if err != nil {
					return err
				}
				cfg.SetUploadSizeBytes(size)
			}
			if opts.storePath != "" {
				cfg.Store.Path = opts.storePath
			}

			logger, err := initializeLogger(cfg.Logging, opts.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, logger, cfg)
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	cmd.Flags().StringVar(&maxUploadSize, "max-upload-size", "", "maximum upload size override (e.g. 256K, 1M)")

	return cmd
}

func serve(ctx context.Context, logger *zap.Logger, cfg *server.Config) error {
	tables, err := loadServerTables(cfg.Tables)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return fmt.Errorf("opening project store: %w", err)
	}
	defer st.Close()

	namespace := "default"
	if cfg.Tables != "" {
		namespace = cfg.Tables
	}
	resultCache := cache.New(cache.NewClient(cfg.Redis), cfg.Redis.TTL(), namespace, logger)
	if err := resultCache.Ping(ctx); err != nil {
		logger.Warn("result cache unavailable, calculating without it",
			zap.String("op", "main.serve"),
			zap.String("address", cfg.Redis.Address),
			zap.Error(err),
		)
		_ = resultCache.Close()
		resultCache = nil
	}
	defer resultCache.Close()

	var m *metrics.Metrics
	if cfg.Metrics {
		m = metrics.New()
	}

	handler := server.NewHandler(logger, server.Dependencies{
		Calculator: calculator.New(tables, calculator.WithLogger(logger)),
		Store:      st,
		Cache:      resultCache,
		Metrics:    m,
	}, cfg.UploadSizeBytes(), version)

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "main.serve"),
			zap.String("address", cfg.Address),
			zap.Bool("cache", resultCache.Enabled()),
			zap.Bool("metrics", m != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server", zap.String("op", "main.serve"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func loadServerTables(path string) (*reference.Tables, error) {
	if path == "" {
		return reference.Default()
	}
	tables, err := reference.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference tables %s: %w", path, err)
	}
	return tables, nil
}
