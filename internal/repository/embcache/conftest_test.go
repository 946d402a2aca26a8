package embcache

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nobelidx/internal/db"
	"github.com/kailas-cloud/nobelidx/internal/domain"
)

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	calls     int
	healthErr error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

// mockHashStore implements the consumer interface for tests.
type mockHashStore struct {
	hgetallFn func(ctx context.Context, key string) (map[string]string, error)
	hsetFn    func(ctx context.Context, key string, fields map[string]string) error
}

func (m *mockHashStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetallFn != nil {
		return m.hgetallFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockHashStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func newTestCachedEmbedder(t *testing.T, inner *mockEmbedder) (*CachedEmbedder, *mockHashStore) {
	t.Helper()
	ms := &mockHashStore{}
	ce := New(inner, ms, "nobel:emb:", "text-embedding-3-small", nil, zap.NewNop())
	return ce, ms
}
