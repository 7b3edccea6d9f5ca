// Package tokenizer splits text into surface tokens. A token is a
// whitespace-delimited word with its leading and trailing non-alphanumeric
// characters removed; case is preserved so callers decide when to fold.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize returns the tokens of text in order, skipping words that consist
// only of punctuation.
func Tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if tok := StripNonAlnum(word); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Lower tokenizes the lower-cased text.
func Lower(text string) []string {
	return Tokenize(strings.ToLower(text))
}

// StripNonAlnum removes leading and trailing runes that are neither letters
// nor numbers.
func StripNonAlnum(word string) string {
	return strings.TrimFunc(word, notAlnum)
}

// Bounds returns the byte offsets of the stripped core of word, with
// start == end when nothing alphanumeric remains.
func Bounds(word string) (start, end int) {
	start = strings.IndexFunc(word, isAlnum)
	if start < 0 {
		return len(word), len(word)
	}
	end = strings.LastIndexFunc(word, isAlnum)
	_, size := utf8.DecodeRuneInString(word[end:])
	return start, end + size
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func notAlnum(r rune) bool {
	return !isAlnum(r)
}
