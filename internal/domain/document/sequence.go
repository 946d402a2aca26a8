package document

import "sync"

// Sequence hands out document key counters. Implementations are safe for concurrent use.
type Sequence interface {
	// Next returns the next 1-based counter for base.
	Next(base string) int
}

// PerBase counts independently for each key base, starting at 1.
type PerBase struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewPerBase creates an empty per-base sequence.
func NewPerBase() *PerBase {
	return &PerBase{counters: make(map[string]int)}
}

// Next increments and returns the counter for base.
func (s *PerBase) Next(base string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[base]++
	return s.counters[base]
}

// Global counts once across every base, starting at 1. It is never reset during a run.
type Global struct {
	mu sync.Mutex
	n  int
}

// NewGlobal creates a global sequence.
func NewGlobal() *Global { return &Global{} }

// Next increments and returns the run-wide counter; base is ignored.
func (s *Global) Next(string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}
