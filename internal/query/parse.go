package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/AvengeMedia/dankfind/internal/errdefs"
)

// Query is a parsed search: includes are ANDed, excludes are ORed.
// Built once per search and immutable afterwards.
type Query struct {
	Includes []Term
	Excludes []Term
}

// marker recognizers in priority order. Regex comes first so a
// regex-looking token is never swallowed by a looser rule. Every
// marker requires at least one payload character; a bare marker falls
// through the whole table and parses as Fuzzy.
var markers = []struct {
	prefixes []string
	build    func(payload string) (Term, error)
}{
	{[]string{"regex:", "re:", "r:", "regexp:", "rgx:"}, buildRegex},
	{[]string{"prefix:", "pre:", "start:", "starts_with:", "pfx:"}, func(p string) (Term, error) {
		return Prefix{Text: p}, nil
	}},
	{[]string{"extension:", "ext:", "file:"}, func(p string) (Term, error) {
		return Extension{Text: p}, nil
	}},
	{[]string{"suffix_name:"}, func(p string) (Term, error) {
		return SuffixName{Text: p}, nil
	}},
	{[]string{"suffix:", "suf:", "end:", "ends_with:", "sfx:"}, func(p string) (Term, error) {
		return Suffix{Text: p}, nil
	}},
	{[]string{"before:"}, func(p string) (Term, error) {
		when, err := parseDate(p)
		if err != nil {
			return nil, err
		}
		return Before{When: when}, nil
	}},
	{[]string{"after:"}, func(p string) (Term, error) {
		when, err := parseDate(p)
		if err != nil {
			return nil, err
		}
		return After{When: when}, nil
	}},
	{[]string{"mime:"}, func(p string) (Term, error) {
		return Mime{Text: p}, nil
	}},
	{[]string{"#", "tag:", "tags:", "tagged:"}, func(p string) (Term, error) {
		return Tag{Text: p}, nil
	}},
	{[]string{"@", "exact:"}, func(p string) (Term, error) {
		return Exact{Text: p}, nil
	}},
}

func buildRegex(payload string) (Term, error) {
	t, err := NewRegex(payload)
	if err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeParseFailed,
			fmt.Sprintf("invalid regex %q", payload), err)
	}
	return t, nil
}

// parseDate accepts a plain date (UTC midnight) or a full RFC3339
// timestamp. The Before and After bounds are exclusive on both sides.
func parseDate(payload string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, payload); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, payload); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errdefs.NewCustomError(errdefs.ErrTypeParseFailed,
		fmt.Sprintf("invalid date %q (want 2006-01-02 or RFC3339)", payload), nil)
}

// parseTerm recognizes the first marker that leaves a non-empty
// payload, falling back to a Fuzzy term over the whole token.
func parseTerm(token string) (Term, error) {
	for _, m := range markers {
		for _, p := range m.prefixes {
			if strings.HasPrefix(token, p) && len(token) > len(p) {
				return m.build(token[len(p):])
			}
		}
	}
	return Fuzzy{Text: token}, nil
}

// Parse tokenizes raw and routes each token: a leading dash sends the
// term to excludes, with bare words hardened from Fuzzy to Exact so a
// negated word means "must not contain this text". Any malformed term
// fails the whole parse.
func Parse(raw string) (*Query, error) {
	q := &Query{}
	for _, token := range Tokenize(raw) {
		if strings.HasPrefix(token, "-") {
			term, err := parseTerm(strings.TrimPrefix(token, "-"))
			if err != nil {
				return nil, err
			}
			if f, ok := term.(Fuzzy); ok {
				term = Exact{Text: f.Text}
			}
			q.Excludes = append(q.Excludes, term)
			continue
		}

		term, err := parseTerm(token)
		if err != nil {
			return nil, err
		}
		q.Includes = append(q.Includes, term)
	}
	return q, nil
}
