package ranker

import (
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/lemma"
)

var pets = lemma.NewDictionaryFrom(map[string][]string{
	"cats": {"cat"},
	"dogs": {"dog"},
})

func order(docs []ScoredDoc) []int {
	out := make([]int, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestRankTitleFirst(t *testing.T) {
	docs := []index.Document{
		{ID: 0, Title: "Dogs", Content: "Dogs bark loudly at cats."},
		{ID: 1, Title: "Cats", Content: "Cats purr softly."},
	}
	got := Rank(docs, "cats", pets, nil)
	if !reflect.DeepEqual(order(got), []int{1, 0}) {
		t.Fatalf("order = %v, want [1 0]", order(got))
	}
	if got[0].TitleMatches != 1 || got[0].ExactMatches != 2 {
		t.Errorf("Cats scores = (%d, %d), want (1, 2)", got[0].TitleMatches, got[0].ExactMatches)
	}
	if got[1].TitleMatches != 0 || got[1].ExactMatches != 1 {
		t.Errorf("Dogs scores = (%d, %d), want (0, 1)", got[1].TitleMatches, got[1].ExactMatches)
	}
}

func TestRankExactBreaksTies(t *testing.T) {
	docs := []index.Document{
		{ID: 0, Title: "A cat", Content: "nothing here"},
		{ID: 1, Title: "Cats", Content: "cats cats"},
	}
	got := Rank(docs, "cats", pets, nil)
	// Both titles match once; doc 1 has three literal "cats".
	if !reflect.DeepEqual(order(got), []int{1, 0}) {
		t.Errorf("order = %v, want [1 0]", order(got))
	}
	if got[1].ExactMatches != 0 {
		t.Errorf("lemma-only match counted as exact: %d", got[1].ExactMatches)
	}
}

func TestRankStable(t *testing.T) {
	docs := []index.Document{
		{ID: 3, Title: "x", Content: "word"},
		{ID: 1, Title: "y", Content: "word"},
		{ID: 2, Title: "z", Content: "word"},
	}
	got := Rank(docs, "word", lemma.Identity, nil)
	if !reflect.DeepEqual(order(got), []int{3, 1, 2}) {
		t.Errorf("order = %v, want input order", order(got))
	}
}

func TestRankDoesNotModifyInput(t *testing.T) {
	docs := []index.Document{{ID: 0, Title: "Cats", Content: "cats"}}
	Rank(docs, "cats", pets, &ANSIRed)
	if docs[0].Title != "Cats" || docs[0].Content != "cats" {
		t.Errorf("input modified: %+v", docs[0])
	}
}

func TestHighlight(t *testing.T) {
	mark := &Marker{Open: "[", Close: "]"}
	tests := []struct {
		name    string
		content string
		query   string
		want    string
	}{
		{"lemma match", "Dogs bark loudly at cats.", "cat", "Dogs bark loudly at [cats]."},
		{"repeated word", "cats and cats", "cats", "[cats] and [cats]"},
		{"case preserved", "CATS rule", "cats", "[CATS] rule"},
		{"punctuation outside", "(cat), cat!", "cat", "([cat]), [cat]!"},
		{"whole words only", "concatenate cat", "cat", "concatenate [cat]"},
		{"spacing kept", "  a\tcat \n", "cat", "  a\t[cat] \n"},
		{"no match", "nothing", "cat", "nothing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank([]index.Document{{Content: tt.content}}, tt.query, pets, mark)
			if got[0].Content != tt.want {
				t.Errorf("Content = %q, want %q", got[0].Content, tt.want)
			}
		})
	}
}

func TestHighlightTitleDefaultMarker(t *testing.T) {
	got := Rank([]index.Document{{Title: "Cats", Content: "x"}}, "cat", pets, &ANSIRed)
	want := "\x1b[31mCats\x1b[0m"
	if got[0].Title != want {
		t.Errorf("Title = %q, want %q", got[0].Title, want)
	}
}

func TestRankEmptyQuery(t *testing.T) {
	docs := []index.Document{{ID: 0, Title: "a", Content: "b"}}
	got := Rank(docs, "", lemma.Identity, &ANSIRed)
	if len(got) != 1 || got[0].TitleMatches != 0 || got[0].Title != "a" {
		t.Errorf("Rank = %+v", got)
	}
}

func BenchmarkRank(b *testing.B) {
	docs := make([]index.Document, 100)
	for i := range docs {
		docs[i] = index.Document{ID: i, Title: "distributed search", Content: "search engine with distributed indexing and query processing"}
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Rank(docs, "search indexing", lemma.Identity, &ANSIRed)
	}
}
