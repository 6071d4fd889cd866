package checklist

import (
	"strings"
	"unicode"
)

// Tokenize splits instructional text into the word tokens that can be struck
// out. It is the only tokenizer: rendering and strike toggles both go through
// it so a token never differs between the two.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, isTokenSeparator)
}

func isTokenSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '/', '(', ')', '-', '.':
		return true
	}
	return false
}

func hasToken(text, word string) bool {
	if word == "" {
		return false
	}
	for _, tok := range Tokenize(text) {
		if tok == word {
			return true
		}
	}
	return false
}
