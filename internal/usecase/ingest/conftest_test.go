package ingest

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/nobelidx/internal/db"
	"github.com/kailas-cloud/nobelidx/internal/domain"
	"github.com/kailas-cloud/nobelidx/internal/domain/award"
	"github.com/kailas-cloud/nobelidx/internal/domain/document"
	"github.com/kailas-cloud/nobelidx/internal/domain/layout"
	"github.com/kailas-cloud/nobelidx/internal/domain/vector"
)

type mockSource struct {
	records []award.Record
	err     error
}

func (m *mockSource) Fetch(context.Context) ([]award.Record, error) { return m.records, m.err }

type mockSchema struct {
	provisionFn func(ctx context.Context, l layout.Layout) error
	provisioned []layout.Layout
}

func (m *mockSchema) Provision(ctx context.Context, l layout.Layout) error {
	m.provisioned = append(m.provisioned, l)
	if m.provisionFn != nil {
		return m.provisionFn(ctx, l)
	}
	return nil
}

type mockPrizes struct {
	mu     sync.Mutex
	saveFn func(ctx context.Context, p document.Prize) error
	saved  map[string]document.Prize
	calls  map[string]int
}

func (m *mockPrizes) Save(ctx context.Context, p document.Prize) error {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = map[string]int{}
		m.saved = map[string]document.Prize{}
	}
	m.calls[p.Key]++
	m.mu.Unlock()

	if m.saveFn != nil {
		if err := m.saveFn(ctx, p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.saved[p.Key] = p
	m.mu.Unlock()
	return nil
}

type mockLaureates struct {
	mu     sync.Mutex
	saveFn func(ctx context.Context, d document.Laureate) error
	saved  map[string]document.Laureate
}

func (m *mockLaureates) Save(ctx context.Context, d document.Laureate) error {
	if m.saveFn != nil {
		if err := m.saveFn(ctx, d); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = map[string]document.Laureate{}
	}
	m.saved[d.Key] = d
	return nil
}

// keyspace is an in-memory Redis keyspace. Dropping an index keeps its
// documents, as FT.DROPINDEX without DD does.
type keyspace struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newKeyspace() *keyspace { return &keyspace{keys: map[string]bool{}} }

func (k *keyspace) CreateIndex(context.Context, *db.IndexDefinition) error { return nil }
func (k *keyspace) DropIndex(context.Context, string) error                { return nil }

func (k *keyspace) ScanPrefix(_ context.Context, prefix string) ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	var out []string
	for key := range k.keys {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out, nil
}

func (k *keyspace) Del(_ context.Context, keys ...string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := 0
	for _, key := range keys {
		if k.keys[key] {
			delete(k.keys, key)
			n++
		}
	}
	return n, nil
}

func (k *keyspace) put(key string) {
	k.mu.Lock()
	k.keys[key] = true
	k.mu.Unlock()
}

func (k *keyspace) sorted() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]string, 0, len(k.keys))
	for key := range k.keys {
		out = append(out, key)
	}
	slices.Sort(out)
	return out
}

type keyspacePrizes struct{ *keyspace }

func (k keyspacePrizes) Save(_ context.Context, p document.Prize) error {
	k.put(p.Key)
	return nil
}

type keyspaceLaureates struct{ *keyspace }

func (k keyspaceLaureates) Save(_ context.Context, d document.Laureate) error {
	k.put(d.Key)
	return nil
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: vector.FromName(text)}, nil
}

type countingRecorder struct {
	mu                                   sync.Mutex
	written, failed, retried, buildError int
	observed                             int
}

func (r *countingRecorder) Written(string)    { r.mu.Lock(); r.written++; r.mu.Unlock() }
func (r *countingRecorder) Failed(string)     { r.mu.Lock(); r.failed++; r.mu.Unlock() }
func (r *countingRecorder) Retried(string)    { r.mu.Lock(); r.retried++; r.mu.Unlock() }
func (r *countingRecorder) BuildError(string) { r.mu.Lock(); r.buildError++; r.mu.Unlock() }
func (r *countingRecorder) Observe(string, time.Duration) {
	r.mu.Lock()
	r.observed++
	r.mu.Unlock()
}

func corpus() []award.Record {
	return []award.Record{
		{Year: "2018", Category: "physics", Laureates: []award.Laureate{
			{ID: "960", Firstname: "Arthur", Surname: "Ashkin", Motivation: "for the optical tweezers", Share: "2"},
			{ID: "961", Firstname: "Gérard", Surname: "Mourou", Motivation: "for their method", Share: "4"},
		}},
		{Year: "2018", Category: "physics", Laureates: []award.Laureate{
			{ID: "962", Firstname: "Donna", Surname: "Strickland", Share: "4"},
		}},
		{Year: "2019", Category: "chemistry", Laureates: []award.Laureate{
			{ID: "976", Firstname: "John", Surname: "Goodenough", Share: "3"},
			{ID: "000", Share: "3"},
		}},
		{Year: "unknown", Category: "peace", Laureates: []award.Laureate{
			{ID: "999", Firstname: "Nobody"},
		}},
	}
}
