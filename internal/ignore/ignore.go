// Package ignore decides which paths stay out of the catalogue during
// a walk: hidden entries, excluded directory names, glob patterns, and
// the root's .gitignore and .ignore files.
package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher answers ignore queries for paths under a single root.
// Thread-safe: Reload takes the write lock, the Should* methods take
// the read lock.
type Matcher struct {
	mu            sync.RWMutex
	root          string
	includeHidden bool
	excludeDirs   map[string]bool
	excludeGlobs  []string
	useIgnores    bool
	ignoreFiles   []gitignore.GitIgnore
}

// Options configures a Matcher. ExcludeDirs are bare directory names
// matched against every path component; ExcludeGlobs are doublestar
// patterns matched against the root-relative path and the base name.
type Options struct {
	Root           string
	IncludeHidden  bool
	ExcludeDirs    []string
	ExcludeGlobs   []string
	UseIgnoreFiles bool
}

func NewMatcher(opts Options) *Matcher {
	m := &Matcher{
		root:          opts.Root,
		includeHidden: opts.IncludeHidden,
		excludeDirs:   make(map[string]bool, len(opts.ExcludeDirs)),
		excludeGlobs:  opts.ExcludeGlobs,
		useIgnores:    opts.UseIgnoreFiles,
	}
	for _, dir := range opts.ExcludeDirs {
		m.excludeDirs[dir] = true
	}
	if m.useIgnores {
		m.ignoreFiles = loadIgnoreFiles(m.root)
	}
	return m
}

// ShouldIgnore reports whether a file path should be left out of the
// catalogue.
func (m *Matcher) ShouldIgnore(path string) bool {
	return m.shouldIgnore(path, false)
}

// ShouldIgnoreDir reports whether a directory should be skipped
// entirely, pruning everything beneath it.
func (m *Matcher) ShouldIgnoreDir(path string) bool {
	return m.shouldIgnore(path, true)
}

func (m *Matcher) shouldIgnore(path string, isDir bool) bool {
	rel, err := filepath.Rel(m.root, path)
	if err != nil {
		return false
	}
	// The root itself is always walked, even when its own name is
	// hidden or excluded.
	if rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, comp := range strings.Split(rel, "/") {
		if !m.includeHidden && strings.HasPrefix(comp, ".") {
			return true
		}
		if m.excludeDirs[comp] {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range m.excludeGlobs {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, gi := range m.ignoreFiles {
		if match := gi.Relative(rel, isDir); match != nil && match.Ignore() {
			return true
		}
	}
	return false
}

// Reload re-reads the root's ignore files. The watcher calls this when
// one of them changes.
func (m *Matcher) Reload() {
	if !m.useIgnores {
		return
	}
	files := loadIgnoreFiles(m.root)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignoreFiles = files
}

func loadIgnoreFiles(root string) []gitignore.GitIgnore {
	var files []gitignore.GitIgnore
	for _, name := range []string{".gitignore", ".ignore"} {
		if gi := loadIgnoreFile(filepath.Join(root, name), root); gi != nil {
			files = append(files, gi)
		}
	}
	return files
}

func loadIgnoreFile(path, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	return gitignore.New(f, baseDir, nil)
}
