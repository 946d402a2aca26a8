package health

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Status is the aggregated health.
type Status string

const (
	// Healthy means every check passed.
	Healthy Status = "ok"
	// Degraded means the store answers but an index or the embedder does not.
	Degraded Status = "degraded"
	// Unhealthy means the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult is one component's outcome.
type CheckResult string

// Check results.
const (
	CheckOK      CheckResult = "ok"
	CheckMissing CheckResult = "missing"
	CheckError   CheckResult = "error"
)

// DefaultCheckTimeout bounds each individual check.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates check results keyed by component ("store", "index:<name>", "embedding").
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service runs health checks.
type Service struct {
	store     StorePinger
	indexes   IndexChecker
	names     []string
	embedding EmbeddingChecker
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a Service. indexes and embedding may be nil.
func New(store StorePinger, indexes IndexChecker, names []string, embedding EmbeddingChecker, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		indexes:   indexes,
		names:     names,
		embedding: embedding,
		timeout:   DefaultCheckTimeout,
		logger:    logger,
	}
}

// Check runs every check. Index checks are skipped when the store is down.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	storeErr := s.run(ctx, func(ctx context.Context) error { return s.store.Ping(ctx) })
	if storeErr != nil {
		s.logger.Warn("store health check failed", zap.Error(storeErr))
		checks["store"] = CheckError
	} else {
		checks["store"] = CheckOK
	}

	if s.indexes != nil && storeErr == nil {
		for _, name := range s.names {
			checks["index:"+name] = s.checkIndex(ctx, name)
		}
	}

	if s.embedding != nil {
		if err := s.run(ctx, s.embedding.HealthCheck); err != nil {
			s.logger.Warn("embedding health check failed", zap.Error(err))
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v != CheckOK {
			status = Degraded
			break
		}
	}
	if storeErr != nil {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) checkIndex(ctx context.Context, name string) CheckResult {
	var exists bool
	err := s.run(ctx, func(ctx context.Context) error {
		var err error
		exists, err = s.indexes.IndexExists(ctx, name)
		return err
	})
	switch {
	case err != nil:
		s.logger.Warn("index health check failed", zap.String("index", name), zap.Error(err))
		return CheckError
	case !exists:
		return CheckMissing
	default:
		return CheckOK
	}
}

func (s *Service) run(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}
