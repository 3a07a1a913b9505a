package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/AvengeMedia/dankfind/internal/errdefs"
)

// Catalog is an ordered collection of file records keyed by path.
// Lookups and upserts scan linearly; the catalogue is built for
// single-writer indexing with concurrent read-only queries.
type Catalog struct {
	mu    sync.RWMutex
	files []*File
}

func New() *Catalog {
	return &Catalog{}
}

// Upsert inserts f or replaces the existing record with the same path,
// keeping its position in the ordering. Returns the stored record.
func (c *Catalog) Upsert(f *File) *File {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.files {
		if existing.Path == f.Path {
			c.files[i] = f
			return f
		}
	}
	c.files = append(c.files, f)
	return f
}

// Get returns the record for path, if any.
func (c *Catalog) Get(path string) (*File, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, f := range c.files {
		if f.Path == path {
			return f, true
		}
	}
	return nil, false
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}

// Files returns a snapshot of the records in catalogue order.
func (c *Catalog) Files() []*File {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*File, len(c.files))
	copy(out, c.files)
	return out
}

// Paths returns the record paths in catalogue order.
func (c *Catalog) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, len(c.files))
	for i, f := range c.files {
		out[i] = f.Path
	}
	return out
}

// snapshot is the on-disk JSON shape: a single object holding the
// record list, so the format stays stable if metadata is added later.
type snapshot struct {
	Files []*File `json:"files"`
}

// Save writes the catalogue to path as indented JSON.
func (c *Catalog) Save(path string) error {
	c.mu.RLock()
	files := c.files
	data, err := json.MarshalIndent(snapshot{Files: files}, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return errdefs.NewCustomError(errdefs.ErrTypeSnapshotFailed, "encode snapshot", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errdefs.NewCustomError(errdefs.ErrTypeSnapshotFailed, path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errdefs.NewCustomError(errdefs.ErrTypeSnapshotFailed, path, err)
	}
	return nil
}

// Load reads a catalogue snapshot written by Save.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeSnapshotFailed, path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeSnapshotFailed, path, err)
	}

	for _, f := range snap.Files {
		if f.Tags == nil {
			f.Tags = []string{}
		}
	}
	return &Catalog{files: snap.Files}, nil
}
