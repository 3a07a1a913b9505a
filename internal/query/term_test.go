package query

import (
	"testing"
	"time"

	"github.com/AvengeMedia/dankfind/internal/catalog"
)

func fileAt(path string) *catalog.File {
	return &catalog.File{Path: path, Kind: catalog.KindRegular, Tags: []string{}}
}

func TestExact(t *testing.T) {
	tests := []struct {
		text string
		path string
		want bool
	}{
		{"main", "/src/main.go", true},
		{"ain.g", "/src/main.go", true},
		{"main.go", "/src/main.go", true},
		{"Main", "/src/main.go", false},
		{"src", "/src/main.go", false},
		{"", "/src/main.go", true},
		{"x", "/", false},
	}

	for _, tt := range tests {
		f := fileAt(tt.path)
		if got := (Exact{Text: tt.text}).Matches(f); got != tt.want {
			t.Errorf("Exact(%q).Matches(%q) = %v, want %v", tt.text, tt.path, got, tt.want)
		}
	}
}

func TestPrefixSuffix(t *testing.T) {
	f := fileAt("/docs/report-final.txt")

	if !(Prefix{Text: "report"}).Matches(f) {
		t.Error("Prefix(report) should match report-final.txt")
	}
	if (Prefix{Text: "final"}).Matches(f) {
		t.Error("Prefix(final) should not match report-final.txt")
	}
	if !(Suffix{Text: ".txt"}).Matches(f) {
		t.Error("Suffix(.txt) should match report-final.txt")
	}
	if (Suffix{Text: "report"}).Matches(f) {
		t.Error("Suffix(report) should not match report-final.txt")
	}
	// Matching happens against the base name, never the directory.
	if (Prefix{Text: "docs"}).Matches(f) {
		t.Error("Prefix(docs) should not match against the parent directory")
	}
}

func TestSuffixName(t *testing.T) {
	tests := []struct {
		text string
		path string
		want bool
	}{
		{"report", "/docs/q3-report.txt", true},
		{"report", "/docs/q3-report.tar.gz", true},
		{"q3-report", "/docs/q3-report.txt", true},
		{".txt", "/docs/q3-report.txt", false},
		{"archive", "/a/archive.tar.gz", true},
		{"tar", "/a/archive.tar.gz", false},
		{"bashrc", "/home/u/.bashrc", true},
	}

	for _, tt := range tests {
		f := fileAt(tt.path)
		if got := (SuffixName{Text: tt.text}).Matches(f); got != tt.want {
			t.Errorf("SuffixName(%q).Matches(%q) = %v, want %v", tt.text, tt.path, got, tt.want)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		text string
		path string
		want bool
	}{
		{"go", "/src/main.go", true},
		{"rs", "/src/lib.rs", true},
		{"RS", "/src/lib.rs", false},
		{"rs", "/src/lib.RS", false},
		{"gz", "/a/archive.tar.gz", true},
		{"tar.gz", "/a/archive.tar.gz", false},
		{"go", "/src/main_go", false},
		// Hidden files with no further dot have no extension.
		{"bashrc", "/home/u/.bashrc", false},
		{"", "/home/u/.bashrc", true},
		{"", "/bin/noext", true},
		{"", "/src/main.go", false},
	}

	for _, tt := range tests {
		f := fileAt(tt.path)
		if got := (Extension{Text: tt.text}).Matches(f); got != tt.want {
			t.Errorf("Extension(%q).Matches(%q) = %v, want %v", tt.text, tt.path, got, tt.want)
		}
	}
}

func TestMime(t *testing.T) {
	pdf := fileAt("/docs/paper.pdf")
	pdf.DataType = "application/pdf"
	unset := fileAt("/docs/unknown")

	if !(Mime{Text: "application/pdf"}).Matches(pdf) {
		t.Error("Mime(application/pdf) should match a pdf record")
	}
	if (Mime{Text: "application/PDF"}).Matches(pdf) {
		t.Error("mime matching is case-sensitive")
	}
	if (Mime{Text: "application"}).Matches(pdf) {
		t.Error("mime matching is exact, not substring")
	}
	if (Mime{Text: "application/pdf"}).Matches(unset) {
		t.Error("a record with no detected type matches no mime term")
	}
}

func TestTag(t *testing.T) {
	f := fileAt("/notes/todo.md")
	f.Tags = []string{"work", "urgent"}

	if !(Tag{Text: "work"}).Matches(f) {
		t.Error("Tag(work) should match")
	}
	if (Tag{Text: "Work"}).Matches(f) {
		t.Error("tag matching is case-sensitive")
	}
	if (Tag{Text: "wor"}).Matches(f) {
		t.Error("tag matching is whole-tag, not substring")
	}
	if (Tag{Text: "work"}).Matches(fileAt("/notes/todo.md")) {
		t.Error("an untagged record matches no tag term")
	}
}

func TestRegex(t *testing.T) {
	rx, err := NewRegex(`^lib.*\.rs$`)
	if err != nil {
		t.Fatalf("NewRegex() error = %v", err)
	}

	if !rx.Matches(fileAt("/src/libcore.rs")) {
		t.Error("regex should match libcore.rs")
	}
	if rx.Matches(fileAt("/src/main.rs")) {
		t.Error("regex should not match main.rs")
	}
	// The pattern sees only the base name.
	if rx.Matches(fileAt("/lib/main.rs")) {
		t.Error("regex should not match against the directory")
	}
}

func TestRegex_ZeroValueNeverMatches(t *testing.T) {
	var rx Regex
	if rx.Matches(fileAt("/src/anything.go")) {
		t.Error("an uncompiled Regex must not match")
	}
}

func TestNewRegex_Invalid(t *testing.T) {
	if _, err := NewRegex("[unclosed"); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestBeforeAfter(t *testing.T) {
	cut := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	older := fileAt("/a/older.txt")
	older.LastModified = cut.Add(-time.Hour)
	atCut := fileAt("/a/at-cut.txt")
	atCut.LastModified = cut
	newer := fileAt("/a/newer.txt")
	newer.LastModified = cut.Add(time.Hour)

	before := Before{When: cut}
	if !before.Matches(older) {
		t.Error("Before should match a strictly older record")
	}
	if before.Matches(atCut) {
		t.Error("Before is exclusive at the cutoff")
	}
	if before.Matches(newer) {
		t.Error("Before should not match a newer record")
	}

	after := After{When: cut}
	if !after.Matches(newer) {
		t.Error("After should match a strictly newer record")
	}
	if after.Matches(atCut) {
		t.Error("After is exclusive at the cutoff")
	}
	if after.Matches(older) {
		t.Error("After should not match an older record")
	}
}

func TestPredicates_FailClosedOnEmptyName(t *testing.T) {
	rx, err := NewRegex(".*")
	if err != nil {
		t.Fatalf("NewRegex() error = %v", err)
	}

	// A path ending in a separator has no base name, so every
	// name predicate must reject it.
	root := fileAt("/")
	terms := []Term{
		Exact{Text: ""},
		Prefix{Text: ""},
		Suffix{Text: ""},
		SuffixName{Text: ""},
		rx,
	}
	for _, term := range terms {
		if term.Matches(root) {
			t.Errorf("%#v matched a record with no base name", term)
		}
	}
}
