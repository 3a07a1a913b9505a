package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AvengeMedia/dankfind/internal/catalog"
	"github.com/AvengeMedia/dankfind/internal/config"
	"github.com/AvengeMedia/dankfind/internal/errdefs"
	"github.com/AvengeMedia/dankfind/internal/ignore"
	"github.com/AvengeMedia/dankfind/internal/log"
	"github.com/AvengeMedia/dankfind/internal/store"
)

// Indexer walks a directory tree and catalogues every entry that
// survives the ignore rules, directories included.
type Indexer struct {
	cfg     *config.Config
	backend store.Backend
	build   func(path string) (*catalog.File, error)
}

func New(cfg *config.Config, backend store.Backend, builder *catalog.Builder) *Indexer {
	return &Indexer{
		cfg:     cfg,
		backend: backend,
		build:   builder.Build,
	}
}

// dirEntry is one unit of walk work.
type dirEntry struct {
	path  string
	depth int
}

// walk carries the shared state of one Run.
type walk struct {
	matcher  *ignore.Matcher
	frontier chan dirEntry
	records  chan *catalog.File
	pending  sync.WaitGroup
	skipped  atomic.Int64
}

// Run walks root with cfg.WorkerCount walkers feeding a single
// consumer that upserts into the backend. Entries within a run arrive
// in no particular order. Unreadable directories and entries that fail
// record construction are logged at debug, counted as skipped and left
// out; a backend error or context cancellation aborts the whole run.
func (i *Indexer) Run(ctx context.Context, root string) (*config.IndexStats, error) {
	start := time.Now()

	info, err := os.Lstat(root)
	if err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeIndexingFailed, "cannot stat walk root", err)
	}
	if !info.IsDir() {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeIndexingFailed,
			fmt.Sprintf("%s is not a directory", root), nil)
	}

	w := &walk{
		matcher: ignore.NewMatcher(ignore.Options{
			Root:           root,
			IncludeHidden:  i.cfg.IncludeHidden,
			ExcludeDirs:    i.cfg.ExcludeDirs,
			ExcludeGlobs:   i.cfg.ExcludeGlobs,
			UseIgnoreFiles: i.cfg.UseGitignore,
		}),
		// The frontier holds directories waiting for a walker. When it
		// is full the discovering walker descends into the subtree
		// itself, so queueing never blocks.
		frontier: make(chan dirEntry, i.cfg.QueueSize),
		records:  make(chan *catalog.File, i.cfg.QueueSize),
	}

	log.Infof("indexing %s (workers: %d)", root, i.cfg.WorkerCount)

	g, gctx := errgroup.WithContext(ctx)

	// pending counts directories not yet walked.
	w.pending.Add(1)
	w.frontier <- dirEntry{path: root}

	var walkers sync.WaitGroup
	for n := 0; n < i.cfg.WorkerCount; n++ {
		walkers.Add(1)
		go func() {
			defer walkers.Done()
			for d := range w.frontier {
				i.walkDir(gctx, w, d)
				w.pending.Done()
			}
		}()
	}

	g.Go(func() error {
		w.pending.Wait()
		close(w.frontier)
		return nil
	})
	g.Go(func() error {
		walkers.Wait()
		close(w.records)
		return nil
	})

	var total int
	g.Go(func() error {
		for f := range w.records {
			if _, err := i.backend.Upsert(f); err != nil {
				return errdefs.NewCustomError(errdefs.ErrTypeStoreFailed,
					fmt.Sprintf("failed to store record for %s", f.Path), err)
			}
			total++
			log.Debugf("catalogued %s", f.Path)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeIndexingFailed, "indexing cancelled", err)
	}

	duration := time.Since(start)
	log.Infof("indexing complete: %d entries, took %s", total, duration)

	stats := &config.IndexStats{
		TotalFiles:     total,
		SkippedEntries: int(w.skipped.Load()),
		LastIndexTime:  time.Now().UTC(),
		IndexDuration:  duration.String(),
	}
	if err := i.backend.SaveStats(stats); err != nil {
		log.Warnf("failed to persist index stats: %v", err)
	}
	return stats, nil
}

// Reindex clears the backend and catalogues the tree from scratch.
func (i *Indexer) Reindex(ctx context.Context, root string) (*config.IndexStats, error) {
	if err := i.backend.Clear(); err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeStoreFailed, "failed to clear store", err)
	}
	return i.Run(ctx, root)
}

// walkDir catalogues one directory and dispatches its subdirectories.
// A cancelled context turns remaining work into a fast drain so the
// frontier still empties and Run can join its walkers.
func (i *Indexer) walkDir(ctx context.Context, w *walk, d dirEntry) {
	if ctx.Err() != nil {
		return
	}
	if w.matcher.ShouldIgnoreDir(d.path) {
		return
	}

	self, err := i.build(d.path)
	if err != nil {
		log.Debugf("skipping %s: %v", d.path, err)
		w.skipped.Add(1)
		return
	}
	if !send(ctx, w.records, self) {
		return
	}

	entries, err := os.ReadDir(d.path)
	if err != nil {
		log.Debugf("cannot read %s: %v", d.path, err)
		w.skipped.Add(1)
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		path := filepath.Join(d.path, entry.Name())

		if entry.IsDir() {
			child := dirEntry{path: path, depth: d.depth + 1}
			if i.cfg.MaxDepth > 0 && child.depth >= i.cfg.MaxDepth {
				continue
			}
			w.pending.Add(1)
			select {
			case w.frontier <- child:
			default:
				i.walkDir(ctx, w, child)
				w.pending.Done()
			}
			continue
		}

		if w.matcher.ShouldIgnore(path) {
			continue
		}
		f, err := i.build(path)
		if err != nil {
			log.Debugf("skipping %s: %v", path, err)
			w.skipped.Add(1)
			continue
		}
		if !send(ctx, w.records, f) {
			return
		}
	}
}

func send(ctx context.Context, records chan<- *catalog.File, f *catalog.File) bool {
	select {
	case records <- f:
		return true
	case <-ctx.Done():
		return false
	}
}
