package csv

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader converts arbitrary header text into a lowercase ASCII
// identifier usable as a SQL column name:
//  1. lowercase and trim
//  2. strip accents (NFD → remove Mn → NFC)
//  3. whitespace and '/' become '_'; a run of them yields a single '_'
//  4. anything outside [a-z0-9_] is dropped
//
// The result may be empty; NormalizeHeaders supplies a positional fallback.
// NormalizeHeader(NormalizeHeader(s)) == NormalizeHeader(s).
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Decompose → remove nonspacing marks (accents) → recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, err := transform.String(t, s)
	if err != nil {
		ascii = s
	}

	var b strings.Builder
	b.Grow(len(ascii))
	prevSep := false
	for _, r := range ascii {
		switch {
		case unicode.IsSpace(r) || r == '/':
			if !prevSep {
				b.WriteByte('_')
				prevSep = true
			}
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			prevSep = false
		default:
			// drop anything else
		}
	}
	return b.String()
}

// NormalizeHeaders normalizes every header cell. An empty normalized name is
// replaced by "col_<index>".
func NormalizeHeaders(h []string) []string {
	out := make([]string, len(h))
	for i, col := range h {
		name := NormalizeHeader(col)
		if name == "" {
			name = fmt.Sprintf("col_%d", i)
		}
		out[i] = name
	}
	return out
}
