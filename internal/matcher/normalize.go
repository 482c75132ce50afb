package matcher

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// punctuation is the fixed ASCII punctuation set removed during normalization.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Normalize lowercases s and strips ASCII punctuation. Whitespace is kept as-is,
// so Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	// A Caser carries state and must not be shared between goroutines.
	lowered := cases.Lower(language.Und).String(s)

	return strings.Map(func(r rune) rune {
		if r < 0x80 && strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, lowered)
}

// Tokenize normalizes s and splits it on whitespace.
func Tokenize(s string) []string {
	return strings.Fields(Normalize(s))
}
