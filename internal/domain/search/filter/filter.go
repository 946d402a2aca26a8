// Package filter describes the attribute conditions a query applies before
// ranking: tag equality, inclusive numeric ranges and full-text terms.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

// MaxConditions bounds the number of conditions in one expression.
const MaxConditions = 16

var errKeyRequired = errors.New("filter key is required")

// Kind identifies the clause a Condition holds.
type Kind int

// Condition kinds.
const (
	KindMatch Kind = iota + 1
	KindRange
	KindText
)

// Expression is a conjunction of conditions. The zero value matches everything.
type Expression struct {
	conds []Condition
}

// All builds an expression whose conditions must all hold.
func All(conds ...Condition) (Expression, error) {
	if len(conds) > MaxConditions {
		return Expression{}, fmt.Errorf("too many conditions: %d (max %d)", len(conds), MaxConditions)
	}
	for i, c := range conds {
		if c.kind == 0 {
			return Expression{}, fmt.Errorf("condition %d is empty", i)
		}
	}
	return Expression{conds: conds}, nil
}

// Conditions returns the conditions in declaration order.
func (e Expression) Conditions() []Condition { return e.conds }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conds) == 0 }

// Condition is a single clause on one indexed field.
type Condition struct {
	kind  Kind
	key   string
	value string
	rng   Range
}

// Range is an inclusive numeric interval.
type Range struct {
	Min, Max float64
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, errKeyRequired
	}
	if value == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{kind: KindMatch, key: key, value: value}, nil
}

// NewBetween creates an inclusive numeric range condition [lo, hi].
func NewBetween(key string, lo, hi float64) (Condition, error) {
	if key == "" {
		return Condition{}, errKeyRequired
	}
	if lo > hi {
		return Condition{}, fmt.Errorf("range lower bound %g exceeds upper bound %g", lo, hi)
	}
	return Condition{kind: KindRange, key: key, rng: Range{Min: lo, Max: hi}}, nil
}

// NewText creates a full-text condition. Terms are matched by the engine's
// tokenizer (stemming, stop words), not by substring.
func NewText(key, terms string) (Condition, error) {
	if key == "" {
		return Condition{}, errKeyRequired
	}
	terms = strings.TrimSpace(terms)
	if terms == "" {
		return Condition{}, fmt.Errorf("text terms are required for key %q", key)
	}
	return Condition{kind: KindText, key: key, value: terms}, nil
}

// Kind returns the clause type.
func (c Condition) Kind() Kind { return c.kind }

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Value returns the tag value of a match or the terms of a text condition.
func (c Condition) Value() string { return c.value }

// Range returns the interval of a range condition.
func (c Condition) Range() Range { return c.rng }
