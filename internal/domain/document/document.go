package document

import (
	"strings"

	"github.com/kailas-cloud/nobelidx/internal/domain/award"
)

// NameSeparator joins per-laureate names in SearchableNames.
// A pipe does not occur in personal or organization names.
const NameSeparator = " | "

// Prize is the prize-centric document: one award with its laureates nested.
type Prize struct {
	Key             string
	Year            int
	Category        string
	Laureates       []award.Laureate
	SearchableNames string
}

// SearchableNames joins each laureate's full name with NameSeparator.
// Laureates without any name contribute nothing.
func SearchableNames(laureates []award.Laureate) string {
	names := make([]string, 0, len(laureates))
	for _, l := range laureates {
		if n := l.FullName(); n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, NameSeparator)
}

// Laureate is the laureate-centric document: one person with parent award fields
// and a fixed-length name embedding.
type Laureate struct {
	Key       string
	Year      int
	Category  string
	Laureate  award.Laureate
	Embedding []float32
}

// Flattened is one laureate annotated with the parent award's year and category.
type Flattened struct {
	Year     int
	Category string
	award.Laureate
}

// Flatten lists the prize's laureates annotated with its year and category.
func (p Prize) Flatten() []Flattened {
	out := make([]Flattened, 0, len(p.Laureates))
	for _, l := range p.Laureates {
		out = append(out, Flattened{Year: p.Year, Category: p.Category, Laureate: l})
	}
	return out
}

// Match is a laureate returned by similarity search, scored in [0, 1].
type Match struct {
	Key   string
	Score float64
	Flattened
}
