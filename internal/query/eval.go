package query

import (
	"sort"

	"github.com/AvengeMedia/dankfind/internal/catalog"
)

// Result pairs an accepted record with its fuzzy score.
type Result struct {
	File  *catalog.File `json:"file"`
	Score int           `json:"score"`
}

// accept applies the per-record decision: every include predicate must
// hold (Fuzzy is trivially true), and any matching exclude disqualifies.
func accept(q *Query, f *catalog.File) bool {
	for _, t := range q.Includes {
		if !t.Matches(f) {
			return false
		}
	}
	for _, t := range q.Excludes {
		if t.Matches(f) {
			return false
		}
	}
	return true
}

// Evaluate runs q against the full catalogue and returns accepted
// records ranked best-first by fuzzy score. The sort is stable, so
// equal scores keep catalogue order.
func Evaluate(q *Query, cat *catalog.Catalog) []Result {
	files := cat.Files()
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	scores := NewScorer(q).ScoreAll(paths)

	results := []Result{}
	for i, f := range files {
		if !accept(q, f) {
			continue
		}
		results = append(results, Result{File: f, Score: scores[i]})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// EachMatch evaluates q lazily, yielding accepted records in catalogue
// order without materializing or ranking the result set. A non-nil
// error from fn stops the scan and is returned.
func EachMatch(q *Query, cat *catalog.Catalog, fn func(Result) error) error {
	scorer := NewScorer(q)
	for _, f := range cat.Files() {
		if !accept(q, f) {
			continue
		}
		if err := fn(Result{File: f, Score: scorer.Score(f.Path)}); err != nil {
			return err
		}
	}
	return nil
}
