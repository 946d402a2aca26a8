package prize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nobelidx/internal/db"
	"github.com/kailas-cloud/nobelidx/internal/domain"
	"github.com/kailas-cloud/nobelidx/internal/domain/award"
	"github.com/kailas-cloud/nobelidx/internal/domain/document"
	"github.com/kailas-cloud/nobelidx/internal/domain/layout"
	"github.com/kailas-cloud/nobelidx/internal/domain/search/filter"
	"github.com/kailas-cloud/nobelidx/internal/logger"
	"github.com/kailas-cloud/nobelidx/internal/repository/schema"
)

// store is the consumer interface for prize documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Search(ctx context.Context, q *db.Query) (*db.SearchResult, error)
}

// Repo implements the prize repository used by ingestion and queries.
type Repo struct {
	store      store
	index      string
	maxResults int
}

// New creates a prize repository. maxResults bounds every search.
func New(s store, ns layout.Namespace, maxResults int) *Repo {
	if maxResults <= 0 {
		maxResults = 1000
	}
	return &Repo{store: s, index: ns.IndexName(layout.Prize), maxResults: maxResults}
}

// Save writes a prize document as JSON under its key.
func (r *Repo) Save(ctx context.Context, p document.Prize) error {
	data, err := json.Marshal(toJSON(p))
	if err != nil {
		return fmt.Errorf("marshal prize: %w", err)
	}
	if err := r.store.JSONSet(ctx, p.Key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", p.Key, err)
	}
	return nil
}

// ByCategory returns every prize in category.
func (r *Repo) ByCategory(ctx context.Context, category string) ([]document.Prize, error) {
	cat, err := filter.NewMatch(schema.FieldCategory, category)
	if err != nil {
		return nil, domain.InvalidArgument("%v", err)
	}
	return r.searchBodies(ctx, cat)
}

// ByCategoryAndYears returns prizes in category awarded in [from, to].
func (r *Repo) ByCategoryAndYears(ctx context.Context, category string, from, to int) ([]document.Prize, error) {
	cat, err := filter.NewMatch(schema.FieldCategory, category)
	if err != nil {
		return nil, domain.InvalidArgument("%v", err)
	}
	years, err := filter.NewBetween(schema.FieldYear, float64(from), float64(to))
	if err != nil {
		return nil, domain.InvalidArgument("%v", err)
	}
	return r.searchBodies(ctx, cat, years)
}

// ByMotivation returns prizes whose laureate motivations match keyword under
// full-text rules (tokenized, stemmed). Callers needing substring semantics
// must filter the result.
func (r *Repo) ByMotivation(ctx context.Context, keyword string) ([]document.Prize, error) {
	kw, err := filter.NewText(schema.FieldMotivation, keyword)
	if err != nil {
		return nil, domain.InvalidArgument("%v", err)
	}
	return r.searchBodies(ctx, kw)
}

// ByName returns prizes with a laureate tagged with both firstname and surname.
// The search returns keys only; each body is fetched by key.
func (r *Repo) ByName(ctx context.Context, firstname, surname string) ([]document.Prize, error) {
	fn, err := filter.NewMatch(schema.FieldFirstname, firstname)
	if err != nil {
		return nil, domain.InvalidArgument("%v", err)
	}
	sn, err := filter.NewMatch(schema.FieldSurname, surname)
	if err != nil {
		return nil, domain.InvalidArgument("%v", err)
	}
	expr, err := filter.All(fn, sn)
	if err != nil {
		return nil, domain.InvalidArgument("%v", err)
	}

	res, err := r.search(ctx, &db.Query{
		IndexName: r.index,
		Filters:   expr,
		Limit:     r.maxResults,
		NoContent: true,
		SortBy:    schema.FieldYear,
	})
	if err != nil {
		return nil, err
	}

	out := make([]document.Prize, 0, len(res.Entries))
	for _, e := range res.Entries {
		raw, err := r.store.JSONGet(ctx, e.Key, "$")
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("%w: json.get %s: %w", domain.ErrQueryExecution, e.Key, err)
		}
		if p, ok := r.reconstruct(ctx, e.Key, string(raw)); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Repo) searchBodies(ctx context.Context, conds ...filter.Condition) ([]document.Prize, error) {
	expr, err := filter.All(conds...)
	if err != nil {
		return nil, domain.InvalidArgument("%v", err)
	}

	res, err := r.search(ctx, &db.Query{
		IndexName:    r.index,
		Filters:      expr,
		Limit:        r.maxResults,
		ReturnFields: []string{"$"},
		SortBy:       schema.FieldYear,
	})
	if err != nil {
		return nil, err
	}

	out := make([]document.Prize, 0, len(res.Entries))
	for _, e := range res.Entries {
		if p, ok := r.reconstruct(ctx, e.Key, e.Fields["$"]); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Repo) search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	res, err := r.store.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: ft.search %s: %w", domain.ErrQueryExecution, q.IndexName, err)
	}
	if res.Total > len(res.Entries) {
		logger.FromContext(ctx).Warn("search result truncated",
			zap.String("index", q.IndexName),
			zap.Int("total", res.Total),
			zap.Int("returned", len(res.Entries)),
		)
	}
	return res, nil
}

// reconstruct parses a stored prize. An unreadable envelope drops the document.
// An unreadable year degrades to 0 and an unreadable laureate list to no laureates.
// All three are logged, never returned.
func (r *Repo) reconstruct(ctx context.Context, key, raw string) (document.Prize, bool) {
	log := logger.FromContext(ctx)

	env, err := parseEnvelope(raw)
	if err != nil {
		log.Warn("skipped unreadable prize document",
			zap.Error(&domain.ReconstructionError{Key: key, Err: err}))
		return document.Prize{}, false
	}
	year, err := env.year()
	if err != nil {
		log.Warn("kept prize document with unreadable year",
			zap.Error(&domain.ReconstructionError{Key: key, Err: err}))
		year = 0
	}

	p := document.Prize{
		Key:             key,
		Year:            year,
		Category:        env.Category,
		SearchableNames: env.SearchableNames,
	}

	body, err := env.body()
	if err == nil {
		p.Laureates, err = resolveLaureates(body)
	}
	if err != nil {
		log.Warn("degraded prize document to empty laureates",
			zap.Error(&domain.ReconstructionError{Key: key, Err: err}))
		p.Laureates = []award.Laureate{}
	}
	return p, true
}
