package schema

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nobelidx/internal/db"
	"github.com/kailas-cloud/nobelidx/internal/domain"
	"github.com/kailas-cloud/nobelidx/internal/domain/layout"
	"github.com/kailas-cloud/nobelidx/internal/domain/vector"
	"github.com/kailas-cloud/nobelidx/internal/logger"
)

// Query attribute names shared by both layouts.
const (
	FieldYear       = "year"
	FieldCategory   = "category"
	FieldLaureateID = "laureate_id"
	FieldFirstname  = "firstname"
	FieldSurname    = "surname"
	FieldMotivation = "motivation"
	FieldShare      = "share"
	FieldNames      = "searchableNames"
	FieldEmbedding  = "embedding"
)

// namesWeight boosts the joined-names field over motivations in full-text ranking.
const namesWeight = 2

// store is the consumer interface for index lifecycle (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	ScanPrefix(ctx context.Context, prefix string) ([]string, error)
	Del(ctx context.Context, keys ...string) (int, error)
}

// Manager provisions layout indexes.
type Manager struct {
	store store
	ns    layout.Namespace
}

// New creates a schema manager.
func New(s store, ns layout.Namespace) *Manager {
	return &Manager{store: s, ns: ns}
}

// Definition returns the index definition for a layout.
func (m *Manager) Definition(l layout.Layout) (*db.IndexDefinition, error) {
	switch l {
	case layout.Prize:
		return prizeIndex(m.ns), nil
	case layout.Laureate:
		return laureateIndex(m.ns), nil
	default:
		return nil, fmt.Errorf("unknown layout %q", l)
	}
}

// Provision rebuilds the layout's index from scratch: the index is dropped
// (absent is success), every key under the layout prefix is deleted and the
// index is created again. Documents from an earlier run never outlive it.
// Any store failure is a *domain.ProvisioningError.
func (m *Manager) Provision(ctx context.Context, l layout.Layout) error {
	def, err := m.Definition(l)
	if err != nil {
		return &domain.ProvisioningError{Layout: string(l), Err: err}
	}

	if err := m.store.DropIndex(ctx, def.Name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return &domain.ProvisioningError{Layout: string(l), Err: fmt.Errorf("drop %s: %w", def.Name, err)}
	}

	prefix := m.ns.KeyPrefix(l)
	keys, err := m.store.ScanPrefix(ctx, prefix)
	if err != nil {
		return &domain.ProvisioningError{Layout: string(l), Err: fmt.Errorf("scan %s: %w", prefix, err)}
	}
	deleted, err := m.store.Del(ctx, keys...)
	if err != nil {
		return &domain.ProvisioningError{Layout: string(l), Err: fmt.Errorf("purge %s: %w", prefix, err)}
	}
	if deleted > 0 {
		logger.FromContext(ctx).Info("purged previous documents",
			zap.String("layout", string(l)),
			zap.String("prefix", prefix),
			zap.Int("deleted", deleted),
		)
	}

	if err := m.store.CreateIndex(ctx, def); err != nil {
		return &domain.ProvisioningError{Layout: string(l), Err: fmt.Errorf("create %s: %w", def.Name, err)}
	}
	return nil
}

func prizeIndex(ns layout.Namespace) *db.IndexDefinition {
	return db.NewIndex(ns.IndexName(layout.Prize)).
		OnJSON().
		Prefix(ns.KeyPrefix(layout.Prize)).
		Numeric("$.year").As(FieldYear).Sortable().
		Tag("$.category").As(FieldCategory).
		Tag("$.laureates[*].id").As(FieldLaureateID).
		Tag("$.laureates[*].firstname").As(FieldFirstname).
		Tag("$.laureates[*].surname").As(FieldSurname).
		Text("$.laureates[*].motivation").As(FieldMotivation).
		Text("$.searchableNames").As(FieldNames).Weight(namesWeight).
		MustBuild()
}

func laureateIndex(ns layout.Namespace) *db.IndexDefinition {
	return db.NewIndex(ns.IndexName(layout.Laureate)).
		OnHash().
		Prefix(ns.KeyPrefix(layout.Laureate)).
		Numeric(FieldYear).Sortable().
		Tag(FieldCategory).
		Tag(FieldLaureateID).
		Text(FieldFirstname).
		Text(FieldSurname).
		Text(FieldMotivation).
		Tag(FieldShare).
		VectorFlat(FieldEmbedding, vector.Dim, db.DistanceCosine, 0).
		MustBuild()
}
