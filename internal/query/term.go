// Package query implements the dankfind query language: a tokenizer
// and parser for the small prefixed-term grammar, term predicates over
// catalogue records, fuzzy scoring, and the evaluator that ranks
// matching records.
package query

import (
	"regexp"
	"strings"
	"time"

	"github.com/AvengeMedia/dankfind/internal/catalog"
)

// Term is one parsed query atom. Includes are ANDed, excludes are ORed;
// Fuzzy terms are ranking signals whose predicate is always true.
type Term interface {
	Matches(f *catalog.File) bool
}

// Fuzzy ranks records by subsequence alignment of Text against the
// record path. It never filters.
type Fuzzy struct {
	Text string
}

func (t Fuzzy) Matches(f *catalog.File) bool { return true }

// Exact matches records whose file name contains Text.
type Exact struct {
	Text string
}

func (t Exact) Matches(f *catalog.File) bool {
	name := f.Name()
	return name != "" && strings.Contains(name, t.Text)
}

// Prefix matches records whose file name starts with Text.
type Prefix struct {
	Text string
}

func (t Prefix) Matches(f *catalog.File) bool {
	name := f.Name()
	return name != "" && strings.HasPrefix(name, t.Text)
}

// Suffix matches records whose file name ends with Text, extension
// included.
type Suffix struct {
	Text string
}

func (t Suffix) Matches(f *catalog.File) bool {
	name := f.Name()
	return name != "" && strings.HasSuffix(name, t.Text)
}

// SuffixName matches records whose stem (file name with the final
// extension removed, truncated at the first remaining dot) ends with
// Text.
type SuffixName struct {
	Text string
}

func (t SuffixName) Matches(f *catalog.File) bool {
	name := f.Name()
	return name != "" && strings.HasSuffix(stemOf(name), t.Text)
}

// Extension matches records whose extension equals Text exactly,
// case-sensitively and without the leading dot. Records with no
// extension never match.
type Extension struct {
	Text string
}

func (t Extension) Matches(f *catalog.File) bool {
	ext := extensionOf(f.Name())
	return ext != "" && ext == t.Text
}

// Mime matches records whose sniffed data type equals Text exactly. An
// unset data type never matches.
type Mime struct {
	Text string
}

func (t Mime) Matches(f *catalog.File) bool {
	return f.DataType != "" && f.DataType == t.Text
}

// Tag matches records carrying Text in their tag set.
type Tag struct {
	Text string
}

func (t Tag) Matches(f *catalog.File) bool { return f.HasTag(t.Text) }

// Regex matches records whose file name matches the compiled pattern.
// Construct through NewRegex or the parser so the pattern is compiled;
// a zero Regex fails closed.
type Regex struct {
	Pattern string

	re *regexp.Regexp
}

func NewRegex(pattern string) (Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Regex{}, err
	}
	return Regex{Pattern: pattern, re: re}, nil
}

func (t Regex) Matches(f *catalog.File) bool {
	name := f.Name()
	return name != "" && t.re != nil && t.re.MatchString(name)
}

// Before matches records last modified strictly before When.
type Before struct {
	When time.Time
}

func (t Before) Matches(f *catalog.File) bool {
	return f.LastModified.Before(t.When)
}

// After matches records last modified strictly after When.
type After struct {
	When time.Time
}

func (t After) Matches(f *catalog.File) bool {
	return f.LastModified.After(t.When)
}

// extensionOf returns the extension after the final dot, or "" when the
// name has none. A leading dot alone (hidden files) is not an
// extension.
func extensionOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i+1:]
}

// stemOf strips the extension, then truncates at the first remaining
// dot, so "archive.tar.gz" stems to "archive".
func stemOf(name string) string {
	s := name
	if ext := extensionOf(name); ext != "" {
		s = s[:len(s)-len(ext)-1]
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	return s
}
