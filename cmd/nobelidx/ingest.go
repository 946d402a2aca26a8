package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/nobelidx/internal/config"
	"github.com/kailas-cloud/nobelidx/internal/domain/layout"
	"github.com/kailas-cloud/nobelidx/internal/metrics"
	laureaterepo "github.com/kailas-cloud/nobelidx/internal/repository/laureate"
	prizerepo "github.com/kailas-cloud/nobelidx/internal/repository/prize"
	"github.com/kailas-cloud/nobelidx/internal/repository/schema"
	"github.com/kailas-cloud/nobelidx/internal/source"
	ingestuc "github.com/kailas-cloud/nobelidx/internal/usecase/ingest"
)

type ingestFlags struct {
	file     string
	from, to int
	layouts  []string
	workers  int
}

func ingestCmd(g *globalFlags) *cobra.Command {
	var f ingestFlags

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load awards into the search indexes",
		Long: `Fetch the award feed, (re)provision each requested layout's index and
write one document per prize (prize layout) or per laureate (laureate layout).

Provisioning drops the existing index and deletes every document under the
layout's key prefix, so a run replaces the previous one.
Documents that fail to build or to write are reported and skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd.Context(), g, f)
		},
	}

	cmd.Flags().StringVar(&f.file, "file", "", "Read the feed from a local JSON file instead of source.url")
	cmd.Flags().IntVar(&f.from, "from", 0, "First award year to ingest, 2013-2023 (default: source.from_year)")
	cmd.Flags().IntVar(&f.to, "to", 0, "Last award year to ingest, 2013-2023 (default: source.to_year)")
	cmd.Flags().StringSliceVar(&f.layouts, "layouts", nil, "Layouts to ingest: prize, laureate (default: ingest.layouts)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Concurrent document writes (default: ingest.workers)")

	return cmd
}

func (f ingestFlags) apply(cfg *config.Config) {
	if f.file != "" {
		cfg.Source.File = f.file
	}
	if f.from != 0 {
		cfg.Source.FromYear = f.from
	}
	if f.to != 0 {
		cfg.Source.ToYear = f.to
	}
	if len(f.layouts) > 0 {
		cfg.Ingest.Layouts = f.layouts
	}
	if f.workers > 0 {
		cfg.Ingest.Workers = f.workers
	}
}

func runIngest(ctx context.Context, g *globalFlags, f ingestFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, g, f.apply)
	if err != nil {
		return err
	}
	defer a.close()

	layouts, err := layout.ParseList(a.cfg.Ingest.Layouts)
	if err != nil {
		return fmt.Errorf("parse layouts: %w", err)
	}

	src := source.New(source.Config{
		URL:      a.cfg.Source.URL,
		File:     a.cfg.Source.File,
		Timeout:  time.Duration(a.cfg.Source.TimeoutSec) * time.Second,
		FromYear: a.cfg.Source.FromYear,
		ToYear:   a.cfg.Source.ToYear,
	}, a.logger)

	svc := ingestuc.New(
		src,
		schema.New(a.store, a.ns),
		prizerepo.New(a.store, a.ns, a.cfg.Query.MaxResults),
		laureaterepo.New(a.store, a.ns),
		ingestuc.NewBuilder(a.ns, a.embedder),
		a.logger,
	).
		WithRetryPolicy(a.cfg.Ingest.RetryPolicy()).
		WithWorkers(a.cfg.Ingest.Workers).
		WithRecorder(metrics.IngestRecorder{})

	a.logger.Info("Starting ingestion",
		zap.Strings("layouts", a.cfg.Ingest.Layouts),
		zap.Int("from_year", a.cfg.Source.FromYear),
		zap.Int("to_year", a.cfg.Source.ToYear),
		zap.Int("workers", a.cfg.Ingest.Workers),
	)

	report, err := svc.Run(ctx, layouts)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	failed := 0
	for _, lr := range report.Layouts {
		failed += lr.Failed
	}
	a.logger.Info("Ingestion finished",
		zap.Int("records", report.Records),
		zap.Int("layouts", len(report.Layouts)),
		zap.Int("write_failures", failed),
	)
	return nil
}
