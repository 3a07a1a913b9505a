// Package store persists the file catalogue and answers queries
// against it.
package store

import (
	"github.com/AvengeMedia/dankfind/internal/catalog"
	"github.com/AvengeMedia/dankfind/internal/config"
	"github.com/AvengeMedia/dankfind/internal/query"
)

// Backend is a catalogue store. Upsert keys records by path, so
// re-indexing the same tree replaces entries instead of duplicating
// them. RunQuery returns matches ranked best-first; EachMatch streams
// them unranked in the backend's iteration order.
//
// Stats from the last index run live alongside the records; Clear
// drops records only. Stats returns nil when no run has been recorded.
type Backend interface {
	Upsert(f *catalog.File) (*catalog.File, error)
	Each(fn func(*catalog.File) error) error
	RunQuery(q *query.Query) ([]query.Result, error)
	EachMatch(q *query.Query, fn func(query.Result) error) error
	Count() (int, error)
	Clear() error
	SaveStats(st *config.IndexStats) error
	Stats() (*config.IndexStats, error)
	Close() error
}
