package laureate

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/nobelidx/internal/db"
	"github.com/kailas-cloud/nobelidx/internal/domain"
	"github.com/kailas-cloud/nobelidx/internal/domain/award"
	"github.com/kailas-cloud/nobelidx/internal/domain/document"
	"github.com/kailas-cloud/nobelidx/internal/domain/layout"
	"github.com/kailas-cloud/nobelidx/internal/domain/search/filter"
	"github.com/kailas-cloud/nobelidx/internal/domain/vector"
	"github.com/kailas-cloud/nobelidx/internal/repository/schema"
)

// store is the consumer interface for laureate hashes (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

var returnFields = []string{
	schema.FieldYear,
	schema.FieldCategory,
	schema.FieldLaureateID,
	schema.FieldFirstname,
	schema.FieldSurname,
	schema.FieldMotivation,
	schema.FieldShare,
}

// Repo implements the laureate repository.
type Repo struct {
	store store
	index string
}

// New creates a laureate repository.
func New(s store, ns layout.Namespace) *Repo {
	return &Repo{store: s, index: ns.IndexName(layout.Laureate)}
}

// Save writes a laureate hash with its encoded embedding.
func (r *Repo) Save(ctx context.Context, d document.Laureate) error {
	if len(d.Embedding) != vector.Dim {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(d.Embedding), vector.Dim)
	}
	fields := map[string]string{
		schema.FieldYear:       strconv.Itoa(d.Year),
		schema.FieldCategory:   d.Category,
		schema.FieldLaureateID: d.Laureate.ID,
		schema.FieldFirstname:  d.Laureate.Firstname,
		schema.FieldSurname:    d.Laureate.Surname,
		schema.FieldMotivation: d.Laureate.Motivation,
		schema.FieldShare:      d.Laureate.Share,
		schema.FieldEmbedding:  string(vector.Encode(d.Embedding)),
	}
	if err := r.store.HSet(ctx, d.Key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", d.Key, err)
	}
	return nil
}

// Similar returns the k laureates nearest to vec by cosine similarity, best first.
// category, when non-empty, restricts candidates before ranking.
func (r *Repo) Similar(ctx context.Context, vec []float32, k int, category string) ([]document.Match, error) {
	q := &db.KNNQuery{
		IndexName:    r.index,
		VectorField:  schema.FieldEmbedding,
		Vector:       vec,
		K:            k,
		ReturnFields: returnFields,
	}
	if category != "" {
		cat, err := filter.NewMatch(schema.FieldCategory, category)
		if err != nil {
			return nil, domain.InvalidArgument("%v", err)
		}
		if q.Filters, err = filter.All(cat); err != nil {
			return nil, domain.InvalidArgument("%v", err)
		}
	}

	res, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: knn %s: %w", domain.ErrQueryExecution, r.index, err)
	}

	out := make([]document.Match, 0, len(res.Entries))
	for _, e := range res.Entries {
		f, err := flatten(e.Fields)
		if err != nil {
			continue
		}
		out = append(out, document.Match{Key: e.Key, Score: e.Score, Flattened: f})
	}
	return out, nil
}

func flatten(m map[string]string) (document.Flattened, error) {
	year, err := strconv.Atoi(m[schema.FieldYear])
	if err != nil {
		return document.Flattened{}, fmt.Errorf("stored year %q: %w", m[schema.FieldYear], err)
	}
	return document.Flattened{
		Year:     year,
		Category: m[schema.FieldCategory],
		Laureate: award.Laureate{
			ID:         m[schema.FieldLaureateID],
			Firstname:  m[schema.FieldFirstname],
			Surname:    m[schema.FieldSurname],
			Motivation: m[schema.FieldMotivation],
			Share:      m[schema.FieldShare],
		},
	}, nil
}
