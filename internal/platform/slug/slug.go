package slug

import (
	"strings"
	"unicode"
)

// FromWords builds a lowercase, dash-separated file name fragment from the
// first maxWords words of input. Letters outside ASCII are kept. maxWords <= 0
// keeps every word.
func FromWords(input string, maxWords int) string {
	words := strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	if len(words) == 0 {
		return "untitled"
	}
	return strings.Join(words, "-")
}
