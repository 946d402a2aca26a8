package laureate

import (
	"context"

	"github.com/kailas-cloud/nobelidx/internal/domain"
	"github.com/kailas-cloud/nobelidx/internal/domain/document"
)

// PrizeReader runs the prize-centric index queries.
type PrizeReader interface {
	ByCategory(ctx context.Context, category string) ([]document.Prize, error)
	ByCategoryAndYears(ctx context.Context, category string, from, to int) ([]document.Prize, error)
	ByMotivation(ctx context.Context, keyword string) ([]document.Prize, error)
	ByName(ctx context.Context, firstname, surname string) ([]document.Prize, error)
}

// SimilarityReader runs KNN over laureate name embeddings.
type SimilarityReader interface {
	Similar(ctx context.Context, vec []float32, k int, category string) ([]document.Match, error)
}

// Embedder vectorizes query names.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
