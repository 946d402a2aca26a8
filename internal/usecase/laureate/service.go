package laureate

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/nobelidx/internal/domain"
	"github.com/kailas-cloud/nobelidx/internal/domain/award"
	"github.com/kailas-cloud/nobelidx/internal/domain/document"
)

// Default similarity bounds.
const (
	DefaultSimilarK = 5
	DefaultMaxK     = 50
)

// Count is a laureate total with the matching laureates.
type Count struct {
	Total     int
	Laureates []document.Flattened
}

// Detail is where and why a named laureate was awarded.
type Detail struct {
	Year       int
	Category   string
	Motivation string
}

// Service validates query arguments and shapes repository results.
type Service struct {
	prizes   PrizeReader
	similar  SimilarityReader
	embed    Embedder
	defaultK int
	maxK     int
}

// New creates a query service.
func New(prizes PrizeReader, similar SimilarityReader, embed Embedder) *Service {
	return &Service{
		prizes:   prizes,
		similar:  similar,
		embed:    embed,
		defaultK: DefaultSimilarK,
		maxK:     DefaultMaxK,
	}
}

// WithSimilarLimits overrides the default and maximum k of similarity search.
// Non-positive values keep the current setting.
func (s *Service) WithSimilarLimits(defaultK, maxK int) *Service {
	if maxK > 0 {
		s.maxK = maxK
	}
	if defaultK > 0 {
		s.defaultK = min(defaultK, s.maxK)
	}
	return s
}

// PrizesByCategory returns every prize of category.
func (s *Service) PrizesByCategory(ctx context.Context, category string) ([]document.Prize, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, domain.InvalidArgument("category is required")
	}
	prizes, err := s.prizes.ByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("prizes by category: %w", err)
	}
	return prizes, nil
}

// CountByCategoryAndYearRange counts laureates of category awarded in
// [startYear, endYear]. The range must lie within the ingested corpus.
func (s *Service) CountByCategoryAndYearRange(
	ctx context.Context, category string, startYear, endYear int,
) (Count, error) {
	if startYear < award.MinYear || endYear > award.MaxYear {
		return Count{}, domain.InvalidArgument(
			"year range must lie within %d-%d, got %d-%d", award.MinYear, award.MaxYear, startYear, endYear)
	}
	if startYear > endYear {
		return Count{}, domain.InvalidArgument("startYear %d is after endYear %d", startYear, endYear)
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return Count{}, domain.InvalidArgument("category is required")
	}

	prizes, err := s.prizes.ByCategoryAndYears(ctx, category, startYear, endYear)
	if err != nil {
		return Count{}, fmt.Errorf("prizes by category and years: %w", err)
	}
	return count(prizes, nil), nil
}

// CountByMotivationKeyword counts laureates whose motivation contains keyword,
// case-insensitively. The index query only narrows candidates.
func (s *Service) CountByMotivationKeyword(ctx context.Context, keyword string) (Count, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return Count{}, domain.InvalidArgument("keyword is required")
	}

	prizes, err := s.prizes.ByMotivation(ctx, keyword)
	if err != nil {
		return Count{}, fmt.Errorf("prizes by motivation: %w", err)
	}
	return count(prizes, MotivationContains(keyword)), nil
}

// DetailsByName returns one Detail per award of the laureate with exactly
// this first name and surname, compared case-insensitively. An unknown name
// yields an empty result.
func (s *Service) DetailsByName(ctx context.Context, firstname, surname string) ([]Detail, error) {
	firstname = strings.TrimSpace(firstname)
	surname = strings.TrimSpace(surname)
	if firstname == "" || surname == "" {
		return nil, domain.InvalidArgument("firstname and surname are required")
	}

	prizes, err := s.prizes.ByName(ctx, firstname, surname)
	if err != nil {
		return nil, fmt.Errorf("prizes by name: %w", err)
	}

	details := make([]Detail, 0, len(prizes))
	for _, p := range prizes {
		for _, l := range p.Laureates {
			if !NameEquals(l, firstname, surname) {
				continue
			}
			details = append(details, Detail{Year: p.Year, Category: p.Category, Motivation: l.Motivation})
			break
		}
	}
	return details, nil
}

// SearchByName returns the k laureates whose names are closest to name.
// k <= 0 selects the default. category, if set, restricts the candidates.
func (s *Service) SearchByName(ctx context.Context, name string, k int, category string) ([]document.Match, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.InvalidArgument("name is required")
	}
	if k <= 0 {
		k = s.defaultK
	}
	if k > s.maxK {
		return nil, domain.InvalidArgument("k must not exceed %d, got %d", s.maxK, k)
	}

	res, err := s.embed.Embed(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.similar.Similar(ctx, res.Embedding, k, strings.TrimSpace(category))
	if err != nil {
		return nil, fmt.Errorf("similar laureates: %w", err)
	}
	return matches, nil
}

// count flattens prizes, keeping the laureates accepted by keep (all when nil).
func count(prizes []document.Prize, keep func(award.Laureate) bool) Count {
	out := make([]document.Flattened, 0, len(prizes))
	for _, p := range prizes {
		for _, f := range p.Flatten() {
			if keep == nil || keep(f.Laureate) {
				out = append(out, f)
			}
		}
	}
	return Count{Total: len(out), Laureates: out}
}
