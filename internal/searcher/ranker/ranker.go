// Package ranker orders candidate documents by how well their titles and
// bodies match a query and optionally highlights the matching words.
package ranker

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/lemma"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/tokenizer"
)

// ScoredDoc is a candidate document with its two ranking signals.
type ScoredDoc struct {
	index.Document
	TitleMatches int `json:"title_matching"`
	ExactMatches int `json:"exact_matching"`
}

// Marker wraps highlighted words.
type Marker struct {
	Open  string
	Close string
}

// ANSIRed is the default terminal highlight.
var ANSIRed = Marker{Open: "\x1b[31m", Close: "\x1b[0m"}

// Rank scores docs against query and returns them sorted by descending
// (TitleMatches, ExactMatches); equal scores keep their input order.
//
// TitleMatches counts title tokens sharing a lemma with the query.
// ExactMatches counts title and content tokens equal to a query token after
// lower-casing. When marker is non-nil every word of title and content that
// shares a lemma with the query is wrapped in it. docs is not modified.
func Rank(docs []index.Document, query string, resolver lemma.Resolver, marker *Marker) []ScoredDoc {
	qtokens := tokenizer.Lower(query)
	qlemmas := lemma.Set(resolver, qtokens)
	exact := make(map[string]struct{}, len(qtokens))
	for _, t := range qtokens {
		exact[t] = struct{}{}
	}

	m := matcher{resolver: resolver, lemmas: qlemmas}
	scored := make([]ScoredDoc, 0, len(docs))
	for _, doc := range docs {
		sd := ScoredDoc{Document: doc}
		for _, tok := range tokenizer.Lower(doc.Title) {
			if m.matches(tok) {
				sd.TitleMatches++
			}
			if _, ok := exact[tok]; ok {
				sd.ExactMatches++
			}
		}
		for _, tok := range tokenizer.Lower(doc.Content) {
			if _, ok := exact[tok]; ok {
				sd.ExactMatches++
			}
		}
		if marker != nil && len(qlemmas) > 0 {
			sd.Title = m.highlight(sd.Title, *marker)
			sd.Content = m.highlight(sd.Content, *marker)
		}
		scored = append(scored, sd)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].TitleMatches != scored[j].TitleMatches {
			return scored[i].TitleMatches > scored[j].TitleMatches
		}
		return scored[i].ExactMatches > scored[j].ExactMatches
	})
	return scored
}

type matcher struct {
	resolver lemma.Resolver
	lemmas   map[string]struct{}
}

// matches reports whether the lower-cased token shares a lemma with the
// query.
func (m matcher) matches(token string) bool {
	for _, l := range lemma.Terms(m.resolver, token) {
		if _, ok := m.lemmas[l]; ok {
			return true
		}
	}
	return false
}

// highlight wraps the alphanumeric core of each matching whitespace-separated
// word, leaving surrounding punctuation and spacing as they were. Each word
// is visited once, so repeated words are never wrapped twice.
func (m matcher) highlight(text string, marker Marker) string {
	var b strings.Builder
	b.Grow(len(text))
	for len(text) > 0 {
		ws := strings.IndexFunc(text, func(r rune) bool { return !unicode.IsSpace(r) })
		if ws < 0 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:ws])
		text = text[ws:]

		end := strings.IndexFunc(text, unicode.IsSpace)
		if end < 0 {
			end = len(text)
		}
		word := text[:end]
		text = text[end:]

		start, stop := tokenizer.Bounds(word)
		if start == stop || !m.matches(strings.ToLower(word[start:stop])) {
			b.WriteString(word)
			continue
		}
		b.WriteString(word[:start])
		b.WriteString(marker.Open)
		b.WriteString(word[start:stop])
		b.WriteString(marker.Close)
		b.WriteString(word[stop:])
	}
	return b.String()
}
