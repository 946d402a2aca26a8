package health

import "context"

// StorePinger checks store reachability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether a named search index is declared.
type IndexChecker interface {
	IndexExists(ctx context.Context, name string) (bool, error)
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
