package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"promptswitcher/internal/handlers"
	"promptswitcher/internal/httpserver"
	"promptswitcher/internal/metrics"
)

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	logger := a.logger
	cfg := a.cfg

	metrics.Register()

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("llm_backend", cfg.LLMBackend),
		zap.String("llm_base_url", cfg.OpenAIBaseURL),
		zap.String("model", cfg.OpenAIModel),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.String("cache_version", cfg.CacheVersion),
		zap.Bool("dedupe_inflight", cfg.DedupeInFlight),
		zap.Bool("strict_result", cfg.StrictResult),
	)

	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, handlers.NewGenerateHandler(a.service), httpserver.Options{
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	// WriteTimeout leaves room past the request deadline to write the error
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}
