package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/nobelidx/internal/db"
)

// Server modules the store depends on, as reported by MODULE LIST.
const (
	ModuleSearch = "search"
	ModuleJSON   = "ReJSON"
)

// RequireModules fails unless every named module is loaded. Names compare
// case-insensitively.
func (s *Store) RequireModules(ctx context.Context, names ...string) error {
	loaded, err := s.modules(ctx)
	if err != nil {
		return err
	}
	var missing []string
	for _, n := range names {
		if _, ok := loaded[strings.ToLower(n)]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", db.ErrModuleMissing, strings.Join(missing, ", "))
	}
	return nil
}

// modules returns the lower-cased names of loaded modules. Each MODULE LIST
// entry is a flat name/value array.
func (s *Store) modules(ctx context.Context) (map[string]struct{}, error) {
	cmd := s.b().Arbitrary("MODULE", "LIST").Build()
	entries, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpModuleList, Err: err}
	}

	out := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		attrs, err := e.ToArray()
		if err != nil {
			continue
		}
		for i := 0; i+1 < len(attrs); i += 2 {
			if k, _ := attrs[i].ToString(); k != "name" {
				continue
			}
			if name, err := attrs[i+1].ToString(); err == nil {
				out[strings.ToLower(name)] = struct{}{}
			}
		}
	}
	return out, nil
}
