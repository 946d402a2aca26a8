package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nobelidx/internal/domain/award"
)

// DefaultURL is the public prize feed.
const DefaultURL = "https://api.nobelprize.org/v1/prize.json"

// maxFeedBytes caps the response body; the full feed is a few MB.
const maxFeedBytes = 64 << 20

// Config selects where records come from and which years are kept.
type Config struct {
	URL      string
	File     string // takes precedence over URL when set
	Timeout  time.Duration
	FromYear int
	ToYear   int
}

// Client fetches and normalizes the feed.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// New creates a feed client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Fetch loads the feed, decodes it, and keeps records within the configured years.
func (c *Client) Fetch(ctx context.Context) ([]award.Record, error) {
	raw, origin, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	records, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", origin, err)
	}

	kept := FilterYears(records, c.cfg.FromYear, c.cfg.ToYear)
	c.logger.Info("source loaded",
		zap.String("origin", origin),
		zap.Int("records", len(records)),
		zap.Int("kept", len(kept)),
		zap.Int("from_year", c.cfg.FromYear),
		zap.Int("to_year", c.cfg.ToYear),
	)
	return kept, nil
}

func (c *Client) load(ctx context.Context) ([]byte, string, error) {
	if c.cfg.File != "" {
		data, err := os.ReadFile(c.cfg.File)
		if err != nil {
			return nil, c.cfg.File, fmt.Errorf("read source file: %w", err)
		}
		return data, c.cfg.File, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, http.NoBody)
	if err != nil {
		return nil, c.cfg.URL, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.cfg.URL, fmt.Errorf("fetch source: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, c.cfg.URL, fmt.Errorf("fetch source: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, c.cfg.URL, fmt.Errorf("read source body: %w", err)
	}
	return data, c.cfg.URL, nil
}

// FilterYears keeps records whose year lies in [from, to]. A zero bound is open.
// Records with a non-numeric year are kept so the document builder can report them.
func FilterYears(records []award.Record, from, to int) []award.Record {
	out := make([]award.Record, 0, len(records))
	for _, r := range records {
		y, err := r.ParseYear()
		if err != nil {
			out = append(out, r)
			continue
		}
		if from != 0 && y < from {
			continue
		}
		if to != 0 && y > to {
			continue
		}
		out = append(out, r)
	}
	return out
}

// --- wire format ---

type feed struct {
	Prizes []prizeDTO `json:"prizes"`
}

type prizeDTO struct {
	Year      looseString   `json:"year"`
	Category  string        `json:"category"`
	Laureates []laureateDTO `json:"laureates"`
}

type laureateDTO struct {
	ID         looseString `json:"id"`
	Firstname  string      `json:"firstname"`
	Surname    string      `json:"surname"`
	Motivation string      `json:"motivation"`
	Share      looseString `json:"share"`
}

// looseString accepts a JSON string or number.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = looseString(n.String())
	return nil
}

// Decode parses a feed document into award records, preserving order.
func Decode(r io.Reader) ([]award.Record, error) {
	var f feed
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}

	records := make([]award.Record, 0, len(f.Prizes))
	for _, p := range f.Prizes {
		ls := make([]award.Laureate, 0, len(p.Laureates))
		for _, l := range p.Laureates {
			ls = append(ls, award.Laureate{
				ID:         string(l.ID),
				Firstname:  l.Firstname,
				Surname:    l.Surname,
				Motivation: l.Motivation,
				Share:      string(l.Share),
			})
		}
		records = append(records, award.Record{
			Year:      string(p.Year),
			Category:  p.Category,
			Laureates: ls,
		})
	}
	return records, nil
}
