package redis

import (
	"context"
	"strings"

	"github.com/kailas-cloud/nobelidx/internal/db"
)

const (
	scanCount = 100
	delBatch  = 500
)

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// ScanPrefix returns every key that starts with prefix. Glob metacharacters
// in prefix match literally.
func (s *Store) ScanPrefix(ctx context.Context, prefix string) ([]string, error) {
	pattern := globEscaper.Replace(prefix) + "*"

	var keys []string
	var cursor uint64
	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(scanCount).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// Del deletes keys in batches and reports how many existed.
func (s *Store) Del(ctx context.Context, keys ...string) (int, error) {
	deleted := 0
	for start := 0; start < len(keys); start += delBatch {
		end := min(start+delBatch, len(keys))
		cmd := s.b().Del().Key(keys[start:end]...).Build()
		n, err := s.do(ctx, cmd).AsInt64()
		if err != nil {
			return deleted, &db.Error{Op: db.OpDel, Err: err}
		}
		deleted += int(n)
	}
	return deleted, nil
}
