package store

import (
	"sync"

	"github.com/AvengeMedia/dankfind/internal/catalog"
	"github.com/AvengeMedia/dankfind/internal/config"
	"github.com/AvengeMedia/dankfind/internal/query"
)

// Memory keeps the catalogue in process memory. Records iterate in
// insertion order. It backs snapshot-only searches and tests.
type Memory struct {
	mu    sync.RWMutex
	cat   *catalog.Catalog
	stats *config.IndexStats
}

func NewMemory() *Memory {
	return &Memory{cat: catalog.New()}
}

// NewMemoryFrom wraps an existing catalogue, typically one loaded from
// a snapshot file.
func NewMemoryFrom(cat *catalog.Catalog) *Memory {
	return &Memory{cat: cat}
}

func (s *Memory) Upsert(f *catalog.File) (*catalog.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat.Upsert(f), nil
}

func (s *Memory) Each(fn func(*catalog.File) error) error {
	s.mu.RLock()
	files := s.cat.Files()
	s.mu.RUnlock()

	for _, f := range files {
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (s *Memory) RunQuery(q *query.Query) ([]query.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return query.Evaluate(q, s.cat), nil
}

func (s *Memory) EachMatch(q *query.Query, fn func(query.Result) error) error {
	s.mu.RLock()
	cat := s.cat
	s.mu.RUnlock()
	return query.EachMatch(q, cat, fn)
}

func (s *Memory) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat.Len(), nil
}

func (s *Memory) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cat = catalog.New()
	return nil
}

func (s *Memory) SaveStats(st *config.IndexStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = st
	return nil
}

func (s *Memory) Stats() (*config.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, nil
}

func (s *Memory) Close() error {
	return nil
}
