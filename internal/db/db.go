package db

import (
	"context"
	"time"
)

// Store is everything the Redis driver offers. Consumers declare the
// narrow subset they need.
//
//nolint:interfacebloat // composed of the interfaces below
type Store interface {
	Pinger
	KeyStore
	HashStore
	JSONStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KeyStore enumerates and removes keys regardless of their type.
type KeyStore interface {
	ScanPrefix(ctx context.Context, prefix string) ([]string, error)
	Del(ctx context.Context, keys ...string) (int, error)
}

// HashStore reads and writes hashes (laureate documents, embedding cache).
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// JSONStore reads and writes JSON documents (prize documents).
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	Search(ctx context.Context, q *Query) (*SearchResult, error)
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
