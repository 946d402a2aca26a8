package document

import "github.com/kailas-cloud/nobelidx/internal/domain/award"

// BodyKind tells how a prize's nested laureates arrived from the store.
type BodyKind int

const (
	// BodyAbsent means the search returned no content and the document must be fetched by key.
	BodyAbsent BodyKind = iota
	// BodyStructured means the laureates were already decoded.
	BodyStructured
	// BodySerialized means the laureates arrived as a JSON string needing a second parse.
	BodySerialized
)

func (k BodyKind) String() string {
	switch k {
	case BodyStructured:
		return "structured"
	case BodySerialized:
		return "serialized"
	default:
		return "absent"
	}
}

// Body is the tagged variant for a stored prize's laureate list.
type Body struct {
	kind       BodyKind
	structured []award.Laureate
	raw        string
}

// Structured wraps already-decoded laureates.
func Structured(laureates []award.Laureate) Body {
	return Body{kind: BodyStructured, structured: laureates}
}

// Serialized wraps a laureate array that was stored as a JSON string.
func Serialized(raw string) Body {
	return Body{kind: BodySerialized, raw: raw}
}

// Absent marks a body that was not returned.
func Absent() Body { return Body{kind: BodyAbsent} }

// Kind returns the variant tag.
func (b Body) Kind() BodyKind { return b.kind }

// Laureates returns the decoded laureates of a Structured body.
func (b Body) Laureates() []award.Laureate { return b.structured }

// Raw returns the JSON text of a Serialized body.
func (b Body) Raw() string { return b.raw }
