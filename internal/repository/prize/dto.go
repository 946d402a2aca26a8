package prize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/nobelidx/internal/domain/award"
	"github.com/kailas-cloud/nobelidx/internal/domain/document"
)

// prizeJSON is the stored shape of a prize document.
type prizeJSON struct {
	Year            int            `json:"year"`
	Category        string         `json:"category"`
	Laureates       []laureateJSON `json:"laureates"`
	SearchableNames string         `json:"searchableNames"`
}

type laureateJSON struct {
	ID         string `json:"id"`
	Firstname  string `json:"firstname"`
	Surname    string `json:"surname"`
	Motivation string `json:"motivation"`
	Share      string `json:"share"`
}

// envelope reads a stored prize while leaving the laureates undecoded,
// since they may arrive as an array or as a string holding an array.
type envelope struct {
	Year            json.RawMessage `json:"year"`
	Category        string          `json:"category"`
	Laureates       json.RawMessage `json:"laureates"`
	SearchableNames string          `json:"searchableNames"`
}

var errEmptyDocument = errors.New("empty document")

func toJSON(p document.Prize) prizeJSON {
	ls := make([]laureateJSON, 0, len(p.Laureates))
	for _, l := range p.Laureates {
		ls = append(ls, laureateJSON{
			ID:         l.ID,
			Firstname:  l.Firstname,
			Surname:    l.Surname,
			Motivation: l.Motivation,
			Share:      l.Share,
		})
	}
	return prizeJSON{
		Year:            p.Year,
		Category:        p.Category,
		Laureates:       ls,
		SearchableNames: p.SearchableNames,
	}
}

func fromJSON(ls []laureateJSON) []award.Laureate {
	out := make([]award.Laureate, 0, len(ls))
	for _, l := range ls {
		out = append(out, award.Laureate(l))
	}
	return out
}

// parseEnvelope decodes a stored prize. JSON.GET with a "$" path wraps
// the document in an array; FT.SEARCH RETURN $ does not.
func parseEnvelope(raw string) (envelope, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return envelope{}, errEmptyDocument
	}

	if data[0] == '[' {
		var wrapped []envelope
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return envelope{}, fmt.Errorf("parse document: %w", err)
		}
		if len(wrapped) == 0 {
			return envelope{}, errEmptyDocument
		}
		return wrapped[0], nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return envelope{}, fmt.Errorf("parse document: %w", err)
	}
	return env, nil
}

// year parses the stored year, which is always written as a number.
// year accepts a number or a string holding one.
func (e envelope) year() (int, error) {
	raw := bytes.TrimSpace(e.Year)
	if len(raw) > 0 && raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, fmt.Errorf("stored year %s: %w", raw, err)
		}
		raw = []byte(str)
	}
	y, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("stored year %s: %w", e.Year, err)
	}
	return y, nil
}

// body classifies the laureates field into the tagged variant.
func (e envelope) body() (document.Body, error) {
	data := bytes.TrimSpace(e.Laureates)
	if len(data) == 0 || string(data) == "null" {
		return document.Structured(nil), nil
	}

	switch data[0] {
	case '[':
		var ls []laureateJSON
		if err := json.Unmarshal(data, &ls); err != nil {
			return document.Body{}, fmt.Errorf("parse laureates: %w", err)
		}
		return document.Structured(fromJSON(ls)), nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return document.Body{}, fmt.Errorf("parse serialized laureates: %w", err)
		}
		return document.Serialized(s), nil
	default:
		return document.Body{}, fmt.Errorf("unexpected laureates value %.20q", data)
	}
}

// resolveLaureates turns a body into laureates. Absent bodies must be fetched first.
func resolveLaureates(b document.Body) ([]award.Laureate, error) {
	switch b.Kind() {
	case document.BodyStructured:
		return b.Laureates(), nil
	case document.BodySerialized:
		var ls []laureateJSON
		if err := json.Unmarshal([]byte(b.Raw()), &ls); err != nil {
			return nil, fmt.Errorf("parse serialized laureates: %w", err)
		}
		return fromJSON(ls), nil
	default:
		return nil, errors.New("laureates body was not loaded")
	}
}
