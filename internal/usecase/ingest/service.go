package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/nobelidx/internal/domain"
	"github.com/kailas-cloud/nobelidx/internal/domain/award"
	dombatch "github.com/kailas-cloud/nobelidx/internal/domain/batch"
	"github.com/kailas-cloud/nobelidx/internal/domain/document"
	"github.com/kailas-cloud/nobelidx/internal/domain/layout"
	"github.com/kailas-cloud/nobelidx/internal/domain/retry"
	logpkg "github.com/kailas-cloud/nobelidx/internal/logger"
)

// DefaultWorkers bounds concurrent document writes.
const DefaultWorkers = 4

// Report summarizes one ingestion run.
type Report struct {
	Records int
	Layouts []LayoutReport
}

// LayoutReport summarizes one layout of a run.
type LayoutReport struct {
	Layout      layout.Layout
	Built       int
	BuildErrors int
	Written     int
	Failed      int
	Duration    time.Duration
	Results     []dombatch.Result
}

// Service runs ingestion: provision, build, then write with bounded retries.
type Service struct {
	source    RecordSource
	schema    SchemaProvisioner
	prizes    PrizeWriter
	laureates LaureateWriter
	builder   *Builder
	policy    retry.Policy
	workers   int
	recorder  Recorder
	logger    *zap.Logger
}

// New creates an ingestion service with the default retry policy and worker count.
func New(
	source RecordSource, schema SchemaProvisioner,
	prizes PrizeWriter, laureates LaureateWriter,
	builder *Builder, logger *zap.Logger,
) *Service {
	return &Service{
		source: source, schema: schema,
		prizes: prizes, laureates: laureates,
		builder:  builder,
		policy:   retry.Default(),
		workers:  DefaultWorkers,
		recorder: nopRecorder{},
		logger:   logger,
	}
}

// WithRetryPolicy configures the per-document write retry policy.
func (s *Service) WithRetryPolicy(p retry.Policy) *Service {
	s.policy = p
	return s
}

// WithWorkers configures the write concurrency.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithRecorder configures the progress recorder.
func (s *Service) WithRecorder(r Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Run fetches the records once and ingests them under each layout in order.
// Provisioning failures abort the run; per-record and per-document failures do not.
func (s *Service) Run(ctx context.Context, layouts []layout.Layout) (*Report, error) {
	if len(layouts) == 0 {
		return nil, domain.InvalidArgument("at least one layout is required")
	}

	records, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	report := &Report{Records: len(records)}
	for _, l := range layouts {
		lr, err := s.runLayout(ctx, l, records)
		if err != nil {
			return report, err
		}
		report.Layouts = append(report.Layouts, lr)
	}
	return report, nil
}

// job is one document write.
type job struct {
	key   string
	write func(ctx context.Context) error
}

func (s *Service) runLayout(ctx context.Context, l layout.Layout, records []award.Record) (LayoutReport, error) {
	start := time.Now()
	lr := LayoutReport{Layout: l}
	log := s.logger.With(zap.String("layout", string(l)))
	ctx = logpkg.ContextWithLogger(ctx, log)

	if err := s.schema.Provision(ctx, l); err != nil {
		log.Error("provisioning failed", zap.Error(err))
		return lr, err
	}

	jobs, buildErrs, err := s.build(ctx, l, records)
	if err != nil {
		return lr, err
	}

	lr.Built = len(jobs)
	lr.BuildErrors = len(buildErrs)
	for _, be := range buildErrs {
		s.recorder.BuildError(string(l))
		log.Warn("document build failed", zap.Error(be))
		var key string
		var bErr *domain.BuildError
		if errors.As(be, &bErr) {
			key = bErr.Key
		}
		lr.Results = append(lr.Results, dombatch.NewError(key, dombatch.StageBuild, 0, be))
	}

	writeResults := s.write(ctx, l, jobs, log)
	for _, r := range writeResults {
		if r.Status() == dombatch.StatusOK {
			lr.Written++
		} else {
			lr.Failed++
		}
	}
	lr.Results = append(lr.Results, writeResults...)
	lr.Duration = time.Since(start)
	s.recorder.Observe(string(l), lr.Duration)

	if err := ctx.Err(); err != nil {
		return lr, fmt.Errorf("ingest %s: %w", l, err)
	}

	log.Info("layout ingested",
		zap.Int("built", lr.Built),
		zap.Int("build_errors", lr.BuildErrors),
		zap.Int("written", lr.Written),
		zap.Int("failed", lr.Failed),
		zap.Duration("duration", lr.Duration),
	)
	return lr, nil
}

// build assigns every key sequentially, before any write starts.
func (s *Service) build(ctx context.Context, l layout.Layout, records []award.Record) ([]job, []error, error) {
	switch l {
	case layout.Prize:
		docs, errs := s.builder.BuildPrizes(records, document.NewPerBase())
		jobs := make([]job, len(docs))
		for i, d := range docs {
			jobs[i] = job{key: d.Key, write: func(ctx context.Context) error { return s.prizes.Save(ctx, d) }}
		}
		return jobs, errs, nil

	case layout.Laureate:
		docs, errs, err := s.builder.BuildLaureates(ctx, records, document.NewGlobal())
		if err != nil {
			return nil, nil, fmt.Errorf("build %s: %w", l, err)
		}
		jobs := make([]job, len(docs))
		for i, d := range docs {
			jobs[i] = job{key: d.Key, write: func(ctx context.Context) error { return s.laureates.Save(ctx, d) }}
		}
		return jobs, errs, nil

	default:
		return nil, nil, domain.InvalidArgument("unknown layout %q", l)
	}
}

// write runs jobs with bounded concurrency. A failed document never stops the others.
func (s *Service) write(ctx context.Context, l layout.Layout, jobs []job, log *zap.Logger) []dombatch.Result {
	results := make([]dombatch.Result, len(jobs))

	var g errgroup.Group
	g.SetLimit(s.workers)

	for i, j := range jobs {
		g.Go(func() error {
			attempts, err := s.policy.Do(ctx, j.write, func(attempt int, err error) {
				s.recorder.Retried(string(l))
				log.Debug("retrying document write",
					zap.String("key", j.key),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
			})
			if err != nil {
				werr := &domain.WriteError{Key: j.key, Attempts: attempts, Err: err}
				s.recorder.Failed(string(l))
				log.Error("document write failed",
					zap.String("key", j.key),
					zap.Int("attempts", attempts),
					zap.Error(err),
				)
				results[i] = dombatch.NewError(j.key, dombatch.StageWrite, attempts, werr)
				return nil
			}
			s.recorder.Written(string(l))
			results[i] = dombatch.NewWritten(j.key, attempts)
			return nil
		})
	}

	_ = g.Wait() // jobs never return errors
	return results
}
