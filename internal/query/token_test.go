package query

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "plain words",
			input:    "foo bar baz",
			expected: []string{"foo", "bar", "baz"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "quoted span keeps spaces",
			input:    `a "b c" d`,
			expected: []string{"a", "b c", "d"},
		},
		{
			name:     "quote glued to prefix",
			input:    `-"aaa bbb"`,
			expected: []string{"-aaa bbb"},
		},
		{
			name:     "escaped space joins words",
			input:    `a\ b c`,
			expected: []string{"a b", "c"},
		},
		{
			name:     "escaped quote is literal",
			input:    `say \" loud`,
			expected: []string{"say", `"`, "loud"},
		},
		{
			name:     "escaped backslash",
			input:    `a\\b`,
			expected: []string{`a\b`},
		},
		{
			name:     "escaped quote inside span",
			input:    `"a \" b"`,
			expected: []string{`a " b`},
		},
		{
			name:     "backslash literal inside span",
			input:    `"a\b"`,
			expected: []string{`a\b`},
		},
		{
			name:     "unterminated span runs to end",
			input:    `a "bc def`,
			expected: []string{"a", "bc def"},
		},
		{
			name:     "double space emits empty token",
			input:    "a  b",
			expected: []string{"a", "", "b"},
		},
		{
			name:     "leading space emits empty token",
			input:    " a",
			expected: []string{"", "a"},
		},
		{
			name:     "trailing space emits nothing extra",
			input:    "a ",
			expected: []string{"a"},
		},
		{
			name:     "empty quoted span still counts",
			input:    `a ""`,
			expected: []string{"a", ""},
		},
		{
			name:     "dangling backslash is dropped",
			input:    `a \`,
			expected: []string{"a", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tokenize(%q) = %#v, want %#v", tt.input, got, tt.expected)
			}
		})
	}
}
