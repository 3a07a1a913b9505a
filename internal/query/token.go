package query

import "strings"

// Tokenize splits a raw query into tokens. A backslash copies the next
// character verbatim, a double quote opens a span copied literally
// (backslash-quote escapes inside it, an unterminated span runs to end
// of input), and an unquoted space ends the current token even when it
// is empty. A trailing token is emitted when it has content or was
// started by a quote or escape.
func Tokenize(raw string) []string {
	var tokens []string
	var buf strings.Builder
	started := false

	rs := []rune(raw)
	for i := 0; i < len(rs); i++ {
		switch rs[i] {
		case '\\':
			started = true
			if i+1 < len(rs) {
				i++
				buf.WriteRune(rs[i])
			}
		case '"':
			started = true
			for i++; i < len(rs); i++ {
				if rs[i] == '\\' && i+1 < len(rs) && rs[i+1] == '"' {
					buf.WriteRune('"')
					i++
					continue
				}
				if rs[i] == '"' {
					break
				}
				buf.WriteRune(rs[i])
			}
		case ' ':
			tokens = append(tokens, buf.String())
			buf.Reset()
			started = false
		default:
			buf.WriteRune(rs[i])
		}
	}

	if buf.Len() > 0 || started {
		tokens = append(tokens, buf.String())
	}
	return tokens
}
