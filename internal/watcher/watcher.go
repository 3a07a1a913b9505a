// Package watcher keeps the catalogue warm between full index runs by
// upserting records for files as they are created or modified. Removed
// and renamed entries are only logged; the catalogue keeps the stale
// record until the next reindex.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/AvengeMedia/dankfind/internal/catalog"
	"github.com/AvengeMedia/dankfind/internal/config"
	"github.com/AvengeMedia/dankfind/internal/errdefs"
	"github.com/AvengeMedia/dankfind/internal/ignore"
	"github.com/AvengeMedia/dankfind/internal/log"
)

// Upserter is the slice of the store the watcher needs.
type Upserter interface {
	Upsert(f *catalog.File) (*catalog.File, error)
}

type Watcher struct {
	watcher *fsnotify.Watcher
	backend Upserter
	build   func(path string) (*catalog.File, error)
	matcher *ignore.Matcher
	cfg     *config.Config
	running bool
	mu      sync.Mutex
	done    chan struct{}
}

func New(cfg *config.Config, backend Upserter, builder *catalog.Builder) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeWatcherFailed, "failed to create watcher", err)
	}

	return &Watcher{
		watcher: fw,
		backend: backend,
		build:   builder.Build,
		matcher: ignore.NewMatcher(ignore.Options{
			Root:           cfg.RootDir,
			IncludeHidden:  cfg.IncludeHidden,
			ExcludeDirs:    cfg.ExcludeDirs,
			ExcludeGlobs:   cfg.ExcludeGlobs,
			UseIgnoreFiles: cfg.UseGitignore,
		}),
		cfg:  cfg,
		done: make(chan struct{}),
	}, nil
}

func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	// Create a new watcher if the previous one was closed
	if w.watcher == nil {
		fw, err := fsnotify.NewWatcher()
		if err != nil {
			w.mu.Unlock()
			return errdefs.NewCustomError(errdefs.ErrTypeWatcherFailed, "failed to create watcher", err)
		}
		w.watcher = fw
		w.done = make(chan struct{})
	}

	w.running = true
	fw := w.watcher
	w.mu.Unlock()

	if err := w.addWatches(fw, w.cfg.RootDir); err != nil {
		w.Stop()
		return err
	}

	go w.eventLoop(fw)
	log.Infof("watcher started on %s", w.cfg.RootDir)
	return nil
}

func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.done)
	err := w.watcher.Close()
	w.watcher = nil // Allow recreation on next Start()
	log.Infof("watcher stopped")
	return err
}

func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) addWatches(fw *fsnotify.Watcher, root string) error {
	watchCount := 0
	errorCount := 0

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				log.Debugf("permission denied: %s", path)
				return nil
			}
			return err
		}

		if !info.IsDir() {
			return nil
		}

		if w.matcher.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}

		if w.cfg.MaxDepth > 0 && w.depthOf(path) >= w.cfg.MaxDepth {
			return filepath.SkipDir
		}

		if err := fw.Add(path); err != nil {
			errorCount++
			if errorCount == 1 {
				log.Warnf("failed to add watch for %s: %v", path, err)
			}
			return nil
		}

		watchCount++
		return nil
	})

	if errorCount > 0 {
		log.Warnf("failed to add %d watches (added %d successfully)", errorCount, watchCount)
		log.Infof("if you hit inotify limits, increase with: sudo sysctl fs.inotify.max_user_watches=524288")
	} else {
		log.Infof("added %d directory watches", watchCount)
	}

	return err
}

// depthOf reports how many levels below the watch root a path sits.
func (w *Watcher) depthOf(path string) int {
	rel, err := filepath.Rel(w.cfg.RootDir, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func (w *Watcher) eventLoop(fw *fsnotify.Watcher) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(fw, event)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			log.Errorf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, event fsnotify.Event) {
	path := event.Name

	if w.cfg.UseGitignore && event.Op&(fsnotify.Create|fsnotify.Write) != 0 && w.isIgnoreFile(path) {
		w.matcher.Reload()
		log.Debugf("reloaded ignore rules after change to %s", path)
		return
	}

	if event.Op&fsnotify.Create == fsnotify.Create {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if w.matcher.ShouldIgnoreDir(path) {
				return
			}
			if w.cfg.MaxDepth > 0 && w.depthOf(path) >= w.cfg.MaxDepth {
				return
			}
			if err := fw.Add(path); err != nil {
				log.Debugf("failed to watch new dir %s: %v", path, err)
			}
			w.upsert(path)
			return
		}

		if !w.matcher.ShouldIgnore(path) {
			w.upsert(path)
		}
	}

	if event.Op&fsnotify.Write == fsnotify.Write {
		if !w.matcher.ShouldIgnore(path) {
			w.upsert(path)
		}
	}

	if event.Op&fsnotify.Remove == fsnotify.Remove || event.Op&fsnotify.Rename == fsnotify.Rename {
		log.Debugf("%s gone; stale catalogue entry remains until reindex", path)
	}
}

// isIgnoreFile reports whether path is an ignore file at the watch
// root. Nested ignore files are not loaded, so changes to them do not
// trigger a reload.
func (w *Watcher) isIgnoreFile(path string) bool {
	if filepath.Dir(path) != w.cfg.RootDir {
		return false
	}
	base := filepath.Base(path)
	return base == ".gitignore" || base == ".ignore"
}

func (w *Watcher) upsert(path string) {
	f, err := w.build(path)
	if err != nil {
		log.Debugf("failed to build record for %s: %v", path, err)
		return
	}
	if _, err := w.backend.Upsert(f); err != nil {
		log.Errorf("failed to store record for %s: %v", path, err)
	}
}
