package query

import "github.com/sahilm/fuzzy"

// Scorer ranks record paths against a query's fuzzy include terms.
// Each term contributes its subsequence-alignment score for paths it
// matches; non-matches contribute zero, never a rejection. With no
// fuzzy terms every path scores zero.
type Scorer struct {
	terms []string
}

func NewScorer(q *Query) *Scorer {
	s := &Scorer{}
	for _, t := range q.Includes {
		if f, ok := t.(Fuzzy); ok && f.Text != "" {
			s.terms = append(s.terms, f.Text)
		}
	}
	return s
}

// ScoreAll scores every path in one pass per term. Scores are clamped
// at zero so a weak alignment never drags a record below non-matches.
func (s *Scorer) ScoreAll(paths []string) []int {
	scores := make([]int, len(paths))
	for _, term := range s.terms {
		for _, m := range fuzzy.Find(term, paths) {
			if m.Score > 0 {
				scores[m.Index] += m.Score
			}
		}
	}
	return scores
}

// Score scores a single path.
func (s *Scorer) Score(path string) int {
	total := 0
	one := []string{path}
	for _, term := range s.terms {
		for _, m := range fuzzy.Find(term, one) {
			if m.Score > 0 {
				total += m.Score
			}
		}
	}
	return total
}
