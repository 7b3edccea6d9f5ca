package lemma

import (
	"github.com/kljensen/snowball"
)

// Stemmer resolves tokens to their Snowball stem. Languages are the ones the
// snowball package supports (english, spanish, french, russian, swedish,
// norwegian, hungarian).
type Stemmer struct {
	Language string
}

func NewStemmer(language string) *Stemmer {
	return &Stemmer{Language: language}
}

func (s *Stemmer) Lemmatize(token string) []string {
	stemmed, err := snowball.Stem(token, s.Language, true)
	if err != nil || stemmed == "" {
		return []string{token}
	}
	return []string{stemmed}
}
