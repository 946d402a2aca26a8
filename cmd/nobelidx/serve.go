package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/nobelidx/internal/config"
	"github.com/kailas-cloud/nobelidx/internal/domain/layout"
	laureaterepo "github.com/kailas-cloud/nobelidx/internal/repository/laureate"
	prizerepo "github.com/kailas-cloud/nobelidx/internal/repository/prize"
	chiTransport "github.com/kailas-cloud/nobelidx/internal/transport/chi"
	healthuc "github.com/kailas-cloud/nobelidx/internal/usecase/health"
	laureateuc "github.com/kailas-cloud/nobelidx/internal/usecase/laureate"
	"github.com/kailas-cloud/nobelidx/internal/version"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the RPC server",
		Long: `Serve the query RPCs as POST /rpc/<Method> with JSON bodies, plus
GET /health and GET /metrics. Indexes must have been provisioned by "ingest".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), g, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default: http.port)")

	return cmd
}

func runServe(ctx context.Context, g *globalFlags, port int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, g, func(cfg *config.Config) {
		if port != 0 {
			cfg.HTTP.Port = port
		}
	})
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	logger := a.logger
	logger.Info("Starting nobelidx RPC server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	queries := laureateuc.New(
		prizerepo.New(a.store, a.ns, cfg.Query.MaxResults),
		laureaterepo.New(a.store, a.ns),
		a.embedder,
	).WithSimilarLimits(cfg.Query.SimilarDefaultK, cfg.Query.SimilarMaxK)

	indexNames := make([]string, 0, len(layout.All()))
	for _, l := range layout.All() {
		indexNames = append(indexNames, a.ns.IndexName(l))
	}
	health := healthuc.New(a.store, a.store, indexNames, a.embedder, logger)

	server := chiTransport.NewServer(queries, health, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
