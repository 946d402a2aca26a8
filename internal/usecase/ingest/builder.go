package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/nobelidx/internal/domain"
	"github.com/kailas-cloud/nobelidx/internal/domain/award"
	"github.com/kailas-cloud/nobelidx/internal/domain/document"
	"github.com/kailas-cloud/nobelidx/internal/domain/layout"
)

var errNoCategory = errors.New("record has no category")

// Builder turns award records into index-ready documents. Input records are
// expected to be year-filtered already.
type Builder struct {
	ns       layout.Namespace
	embedder Embedder
}

// NewBuilder creates a document builder.
func NewBuilder(ns layout.Namespace, embedder Embedder) *Builder {
	return &Builder{ns: ns, embedder: embedder}
}

// BuildPrizes produces one prize document per record, keyed by a counter
// local to each (year, category). Records with a non-numeric year or no category
// are skipped; laureates without any name are dropped from the nested list.
// Every rejection is returned as a *domain.BuildError.
func (b *Builder) BuildPrizes(records []award.Record, seq document.Sequence) ([]document.Prize, []error) {
	docs := make([]document.Prize, 0, len(records))
	var errs []error

	for i, r := range records {
		year, category, err := header(r)
		if err != nil {
			errs = append(errs, &domain.BuildError{Index: i, Err: err})
			continue
		}

		base := b.ns.KeyBase(layout.Prize, year, category)
		key := layout.Key(base, seq.Next(base))

		laureates := make([]award.Laureate, 0, len(r.Laureates))
		for _, l := range r.Laureates {
			if err := l.Validate(); err != nil {
				errs = append(errs, &domain.BuildError{Index: i, Key: key, Err: err})
				continue
			}
			laureates = append(laureates, l)
		}

		docs = append(docs, document.Prize{
			Key:             key,
			Year:            year,
			Category:        category,
			Laureates:       laureates,
			SearchableNames: document.SearchableNames(laureates),
		})
	}

	return docs, errs
}

// BuildLaureates produces one laureate document per valid laureate, keyed by
// a counter shared across the whole run. Invalid laureates and embedding
// failures are returned as *domain.BuildError; a canceled ctx stops the build.
func (b *Builder) BuildLaureates(
	ctx context.Context, records []award.Record, seq document.Sequence,
) ([]document.Laureate, []error, error) {
	var docs []document.Laureate
	var errs []error

	for i, r := range records {
		year, category, err := header(r)
		if err != nil {
			errs = append(errs, &domain.BuildError{Index: i, Err: err})
			continue
		}
		base := b.ns.KeyBase(layout.Laureate, year, category)

		for _, l := range r.Laureates {
			if err := l.Validate(); err != nil {
				errs = append(errs, &domain.BuildError{Index: i, Err: err})
				continue
			}

			res, err := b.embedder.Embed(ctx, l.FullName())
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, nil, ctxErr
				}
				errs = append(errs, &domain.BuildError{Index: i, Err: fmt.Errorf("embed %q: %w", l.FullName(), err)})
				continue
			}

			docs = append(docs, document.Laureate{
				Key:       layout.Key(base, seq.Next(base)),
				Year:      year,
				Category:  category,
				Laureate:  l,
				Embedding: res.Embedding,
			})
		}
	}

	return docs, errs, nil
}

func header(r award.Record) (int, string, error) {
	year, err := r.ParseYear()
	if err != nil {
		return 0, "", err
	}
	category := strings.TrimSpace(r.Category)
	if category == "" {
		return 0, "", errNoCategory
	}
	return year, category, nil
}
