package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/AvengeMedia/dankfind/internal/catalog"
	"github.com/AvengeMedia/dankfind/internal/config"
	"github.com/AvengeMedia/dankfind/internal/query"
)

func openBackends(t *testing.T) map[string]Backend {
	t.Helper()

	bb, err := OpenBolt(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenBolt() error = %v", err)
	}
	t.Cleanup(func() { bb.Close() })

	return map[string]Backend{
		"memory": NewMemory(),
		"bolt":   bb,
	}
}

func record(path string, tags ...string) *catalog.File {
	if tags == nil {
		tags = []string{}
	}
	return &catalog.File{
		Path:         path,
		Kind:         catalog.KindRegular,
		Tags:         tags,
		LastModified: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		LastIndexed:  time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC),
	}
}

func TestBackend_UpsertReplacesByPath(t *testing.T) {
	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			first := record("/a/file.txt", "old")
			if _, err := b.Upsert(first); err != nil {
				t.Fatalf("Upsert() error = %v", err)
			}
			second := record("/a/file.txt", "new")
			if _, err := b.Upsert(second); err != nil {
				t.Fatalf("Upsert() error = %v", err)
			}

			count, err := b.Count()
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if count != 1 {
				t.Fatalf("Count() = %d after double upsert, want 1", count)
			}

			var got *catalog.File
			if err := b.Each(func(f *catalog.File) error { got = f; return nil }); err != nil {
				t.Fatalf("Each() error = %v", err)
			}
			if len(got.Tags) != 1 || got.Tags[0] != "new" {
				t.Errorf("stored tags = %v, want [new]", got.Tags)
			}
		})
	}
}

func TestBackend_RunQuery(t *testing.T) {
	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			for _, path := range []string{"/src/main.rs", "/src/lib.rs", "/docs/readme.md"} {
				if _, err := b.Upsert(record(path)); err != nil {
					t.Fatalf("Upsert() error = %v", err)
				}
			}

			q, err := query.Parse("extension:rs")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			results, err := b.RunQuery(q)
			if err != nil {
				t.Fatalf("RunQuery() error = %v", err)
			}
			if len(results) != 2 {
				t.Fatalf("RunQuery() returned %d results, want 2", len(results))
			}
			for _, r := range results {
				if filepath.Ext(r.File.Path) != ".rs" {
					t.Errorf("unexpected result %s", r.File.Path)
				}
			}
		})
	}
}

func TestBackend_EachMatchStreams(t *testing.T) {
	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			for _, path := range []string{"/b.txt", "/a.txt", "/c.md"} {
				if _, err := b.Upsert(record(path)); err != nil {
					t.Fatalf("Upsert() error = %v", err)
				}
			}

			q, err := query.Parse("extension:txt")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			var got []string
			err = b.EachMatch(q, func(r query.Result) error {
				got = append(got, r.File.Path)
				return nil
			})
			if err != nil {
				t.Fatalf("EachMatch() error = %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("EachMatch() yielded %v, want the two txt records", got)
			}

			sentinel := errors.New("stop")
			seen := 0
			err = b.EachMatch(q, func(query.Result) error {
				seen++
				return sentinel
			})
			if !errors.Is(err, sentinel) {
				t.Errorf("EachMatch() error = %v, want sentinel", err)
			}
			if seen != 1 {
				t.Errorf("callback ran %d times after erroring, want 1", seen)
			}
		})
	}
}

func TestBackend_Clear(t *testing.T) {
	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := b.Upsert(record("/a.txt")); err != nil {
				t.Fatalf("Upsert() error = %v", err)
			}
			if err := b.Clear(); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			count, err := b.Count()
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if count != 0 {
				t.Errorf("Count() = %d after Clear, want 0", count)
			}

			// The store keeps working after a clear.
			if _, err := b.Upsert(record("/b.txt")); err != nil {
				t.Errorf("Upsert() after Clear error = %v", err)
			}
		})
	}
}

func TestBackend_StatsRoundTrip(t *testing.T) {
	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			st, err := b.Stats()
			if err != nil {
				t.Fatalf("Stats() error = %v", err)
			}
			if st != nil {
				t.Fatalf("Stats() = %+v before any run, want nil", st)
			}

			saved := &config.IndexStats{
				TotalFiles:     42,
				SkippedEntries: 3,
				LastIndexTime:  time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
				IndexDuration:  "1.5s",
			}
			if err := b.SaveStats(saved); err != nil {
				t.Fatalf("SaveStats() error = %v", err)
			}

			st, err = b.Stats()
			if err != nil {
				t.Fatalf("Stats() error = %v", err)
			}
			if st == nil {
				t.Fatal("Stats() = nil after save")
			}
			if st.TotalFiles != 42 || st.SkippedEntries != 3 || st.IndexDuration != "1.5s" {
				t.Errorf("Stats() = %+v, want %+v", st, saved)
			}
			if !st.LastIndexTime.Equal(saved.LastIndexTime) {
				t.Errorf("LastIndexTime = %v, want %v", st.LastIndexTime, saved.LastIndexTime)
			}

			// Clearing the records does not discard run stats.
			if err := b.Clear(); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			st, err = b.Stats()
			if err != nil {
				t.Fatalf("Stats() after Clear error = %v", err)
			}
			if st == nil || st.TotalFiles != 42 {
				t.Errorf("stats lost after Clear: %+v", st)
			}
		})
	}
}
