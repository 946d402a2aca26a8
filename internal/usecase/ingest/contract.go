package ingest

import (
	"context"
	"time"

	"github.com/kailas-cloud/nobelidx/internal/domain"
	"github.com/kailas-cloud/nobelidx/internal/domain/award"
	"github.com/kailas-cloud/nobelidx/internal/domain/document"
	"github.com/kailas-cloud/nobelidx/internal/domain/layout"
)

// RecordSource yields the year-filtered award records of one run.
type RecordSource interface {
	Fetch(ctx context.Context) ([]award.Record, error)
}

// SchemaProvisioner (re)declares a layout's index.
type SchemaProvisioner interface {
	Provision(ctx context.Context, l layout.Layout) error
}

// PrizeWriter persists prize-centric documents.
type PrizeWriter interface {
	Save(ctx context.Context, p document.Prize) error
}

// LaureateWriter persists laureate-centric documents.
type LaureateWriter interface {
	Save(ctx context.Context, d document.Laureate) error
}

// Embedder vectorizes laureate names.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Recorder receives ingestion progress, labeled by layout.
type Recorder interface {
	Written(layout string)
	Failed(layout string)
	Retried(layout string)
	BuildError(layout string)
	Observe(layout string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) Written(string)                {}
func (nopRecorder) Failed(string)                 {}
func (nopRecorder) Retried(string)                {}
func (nopRecorder) BuildError(string)             {}
func (nopRecorder) Observe(string, time.Duration) {}
