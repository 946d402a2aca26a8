package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Layout selects a document shape.
type Layout string

const (
	// Prize is the prize-centric layout: one JSON document per award with nested laureates.
	Prize Layout = "prize"
	// Laureate is the laureate-centric layout: one hash per laureate with an embedding.
	Laureate Layout = "laureate"
)

// All lists every layout in provisioning order.
func All() []Layout { return []Layout{Prize, Laureate} }

// Parse converts a config or flag value to a Layout.
func Parse(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case Prize, Laureate:
		return l, nil
	default:
		return "", fmt.Errorf("unknown layout %q", s)
	}
}

// ParseList parses and deduplicates a list of layout names, keeping order.
func ParseList(names []string) ([]Layout, error) {
	out := make([]Layout, 0, len(names))
	seen := make(map[Layout]bool, len(names))
	for _, n := range names {
		l, err := Parse(n)
		if err != nil {
			return nil, err
		}
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out, nil
}

// Namespace derives keys and index names under a common key prefix.
// Distinct per-layout prefixes keep the two indexes from seeing each other's documents.
type Namespace struct {
	prefix string
}

// NewNamespace creates a Namespace rooted at prefix (e.g. "nobel:").
func NewNamespace(prefix string) Namespace {
	return Namespace{prefix: prefix}
}

// Root is the bare prefix shared by every key in the namespace.
func (n Namespace) Root() string {
	return n.prefix
}

// KeyPrefix is the index PREFIX for l, e.g. "nobel:prize:".
func (n Namespace) KeyPrefix(l Layout) string {
	return n.prefix + string(l) + ":"
}

// IndexName is the FT index name for l, e.g. "nobel:prize:idx".
func (n Namespace) IndexName(l Layout) string {
	return n.prefix + string(l) + ":idx"
}

// KeyBase is the part of a document key shared by one (year, category).
func (n Namespace) KeyBase(l Layout, year int, category string) string {
	return n.KeyPrefix(l) + strconv.Itoa(year) + ":" + category
}

// Key appends the sequence number to a key base.
func Key(base string, seq int) string {
	return base + ":" + strconv.Itoa(seq)
}
