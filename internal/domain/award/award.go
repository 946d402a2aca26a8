package award

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Bounds of the ingested corpus, inclusive.
const (
	MinYear = 2013
	MaxYear = 2023
)

// ErrNoName is returned for a laureate with neither first name nor surname.
var ErrNoName = errors.New("laureate has neither firstname nor surname")

// Laureate is one person or organization credited on an award.
type Laureate struct {
	ID         string
	Firstname  string
	Surname    string
	Motivation string
	Share      string
}

// Validate enforces that at least one of Firstname or Surname is present.
func (l Laureate) Validate() error {
	if strings.TrimSpace(l.Firstname) == "" && strings.TrimSpace(l.Surname) == "" {
		if l.ID != "" {
			return fmt.Errorf("laureate %s: %w", l.ID, ErrNoName)
		}
		return ErrNoName
	}
	return nil
}

// FullName joins the trimmed first name and surname with a single space.
func (l Laureate) FullName() string {
	first := strings.TrimSpace(l.Firstname)
	last := strings.TrimSpace(l.Surname)
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

// Record is one award: a year, a category and its ordered laureates.
// Year is kept as delivered so a non-numeric value surfaces as a build error.
type Record struct {
	Year      string
	Category  string
	Laureates []Laureate
}

// ParseYear returns the numeric year.
func (r Record) ParseYear() (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(r.Year))
	if err != nil {
		return 0, fmt.Errorf("non-numeric year %q", r.Year)
	}
	return y, nil
}

// InCorpus reports whether year lies within [MinYear, MaxYear].
func InCorpus(year int) bool {
	return year >= MinYear && year <= MaxYear
}
