package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/lemma"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/segment"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

var petDocs = []Document{
	{Title: "Cats", Content: "Cats purr softly."},
	{Title: "Dogs", Content: "Dogs bark loudly at cats."},
}

var petLemmas = lemma.NewDictionaryFrom(map[string][]string{
	"cats": {"cat"},
	"dogs": {"dog"},
})

func ids(docs []Document) []int {
	out := make([]int, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func setIDs(set map[int]struct{}) []int {
	return sortedIDs(set)
}

func TestMemoryIndexMatch(t *testing.T) {
	mi := NewMemoryIndex(petLemmas)
	for _, d := range petDocs {
		mi.Add(d)
	}

	tests := []struct {
		query string
		want  []int
	}{
		{"cats", []int{0, 1}},
		{"cat", []int{0, 1}},
		{"bark", []int{1}},
		{"purr bark", []int{}},
		{"Dogs, CATS!", []int{1}},
		{"", []int{}},
		{"   ...  ", []int{}},
		{"elephant", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := setIDs(mi.Match(tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Match(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestMemoryIndexAssignsDenseIDs(t *testing.T) {
	mi := NewMemoryIndex(lemma.Identity)
	for i := 0; i < 3; i++ {
		mi.Add(Document{ID: 99, Title: "same", Content: "same"})
	}
	if mi.Len() != 3 {
		t.Fatalf("Len = %d, want 3", mi.Len())
	}
	for i := 0; i < 3; i++ {
		d, ok := mi.Document(i)
		if !ok || d.ID != i {
			t.Errorf("Document(%d) = %+v, %v", i, d, ok)
		}
	}
	if got := setIDs(mi.Match("same")); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("Match = %v", got)
	}
	if mi.Terms() != 1 {
		t.Errorf("Terms = %d, want 1", mi.Terms())
	}
}

// AND semantics: the result is the intersection of the single-token results.
func TestMemoryIndexIntersection(t *testing.T) {
	mi := NewMemoryIndex(lemma.Identity)
	words := []string{"alpha", "beta", "gamma", "delta"}
	for i := 0; i < 40; i++ {
		content := ""
		for j, w := range words {
			if i%(j+2) == 0 {
				content += w + " "
			}
		}
		mi.Add(Document{Title: fmt.Sprintf("doc %d", i), Content: content})
	}

	a := mi.Match("alpha")
	g := mi.Match("gamma")
	want := make(map[int]struct{})
	for id := range a {
		if _, ok := g[id]; ok {
			want[id] = struct{}{}
		}
	}
	got := mi.Match("alpha gamma")
	if !reflect.DeepEqual(setIDs(got), setIDs(want)) {
		t.Errorf("Match(alpha gamma) = %v, want %v", setIDs(got), setIDs(want))
	}
}

func TestMemoryIndexSearchReturnsDocuments(t *testing.T) {
	mi := NewMemoryIndex(petLemmas)
	for _, d := range petDocs {
		mi.Add(d)
	}
	docs, err := mi.Search(context.Background(), "cat")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids(docs), []int{0, 1}) {
		t.Fatalf("ids = %v", ids(docs))
	}
	if docs[1].Title != "Dogs" {
		t.Errorf("docs[1] = %+v", docs[1])
	}
}

func TestPositionalIndexPhrase(t *testing.T) {
	pi := NewPositionalIndex(lemma.Identity)
	pi.Add(Document{Title: "Fox", Content: "the quick brown fox"})
	pi.Add(Document{Title: "Other", Content: "brown quick fox"})

	tests := []struct {
		query string
		want  []int
	}{
		{"quick brown", []int{0}},
		{"brown quick", []int{1}},
		{"fox", []int{0, 1}},
		{"quick", []int{0, 1}},
		{"the quick brown fox", []int{0}},
		{"fox brown", []int{}},
		{"fox the", []int{0}},
		{"", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := pi.MatchIDs(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MatchIDs(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestPositionalIndexNoMatchAcrossBoundary(t *testing.T) {
	pi := NewPositionalIndex(lemma.Identity)
	pi.Add(Document{Title: "A", Content: "ends with red"})
	pi.Add(Document{Title: "car", Content: "starts the second"})

	if got := pi.MatchIDs("red car"); len(got) != 0 {
		t.Errorf("phrase spanning documents matched %v", got)
	}
	if got := pi.MatchIDs("a ends"); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("title-to-content phrase = %v, want [0]", got)
	}
}

func TestPositionalIndexBoundaries(t *testing.T) {
	pi := NewPositionalIndex(lemma.Identity)
	pi.Add(Document{Title: "one two", Content: "three"})
	pi.Add(Document{Title: "", Content: ""})
	pi.Add(Document{Title: "x", Content: "y"})

	// 3 tokens + gap, 0 tokens + gap, 2 tokens.
	want := []int{0, 4, 5}
	if got := pi.Boundaries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Boundaries = %v, want %v", got, want)
	}
	if got := pi.MatchIDs("x y"); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("MatchIDs(x y) = %v", got)
	}
}

func TestPositionalIndexLemmaFormsSharePosition(t *testing.T) {
	r := lemma.NewDictionaryFrom(map[string][]string{"ran": {"run", "ran"}})
	pi := NewPositionalIndex(r)
	pi.Add(Document{Title: "", Content: "she ran home"})

	for _, q := range []string{"she run home", "she ran home", "ran home"} {
		if got := pi.MatchIDs(q); !reflect.DeepEqual(got, []int{0}) {
			t.Errorf("MatchIDs(%q) = %v, want [0]", q, got)
		}
	}
}

func TestDiskIndexRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mi := NewMemoryIndex(petLemmas)
	for _, d := range petDocs {
		mi.Add(d)
	}
	mi.Add(Document{Title: "Birds", Content: "Birds sing; cats watch."})
	if err := mi.Save(ctx, dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	di := OpenDiskIndex(dir, petLemmas, nil)
	defer di.Close()
	for _, q := range []string{"cats", "cat watch", "bark", "dogs birds", "nothing", ""} {
		want := setIDs(mi.Match(q))
		got, err := di.Match(ctx, q)
		if err != nil {
			t.Fatalf("Match(%q): %v", q, err)
		}
		if !reflect.DeepEqual(setIDs(got), want) {
			t.Errorf("disk Match(%q) = %v, memory = %v", q, setIDs(got), want)
		}
	}

	doc, err := di.LoadDoc(2)
	if err != nil {
		t.Fatal(err)
	}
	if doc.ID != 2 || doc.Title != "Birds" || doc.Content != "Birds sing; cats watch." {
		t.Errorf("LoadDoc(2) = %+v", doc)
	}
	docs, err := di.Search(ctx, "cats")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids(docs), []int{0, 1, 2}) {
		t.Errorf("Search ids = %v", ids(docs))
	}
}

func TestDiskIndexMissingShardIsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := segment.MkdirAll(dir); err != nil {
		t.Fatal(err)
	}
	di := OpenDiskIndex(dir, lemma.Identity, nil)
	got, err := di.Match(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Match = %v, want empty", got)
	}
}

func TestDiskIndexMissingDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mi := NewMemoryIndex(lemma.Identity)
	mi.Add(Document{Title: "t", Content: "word"})
	if err := mi.Save(ctx, dir); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(segment.DocPath(dir, 0)); err != nil {
		t.Fatal(err)
	}

	di := OpenDiskIndex(dir, lemma.Identity, nil)
	_, err := di.Search(ctx, "word")
	if !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("Search err = %v, want ErrDocumentNotFound", err)
	}
	if _, err := di.LoadDoc(7); !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("LoadDoc(7) err = %v", err)
	}
}

func TestDiskIndexCorruptShard(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mi := NewMemoryIndex(lemma.Identity)
	mi.Add(Document{Title: "t", Content: "word"})
	if err := mi.Save(ctx, dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(segment.ShardPath(dir, "word"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	di := OpenDiskIndex(dir, lemma.Identity, nil)
	if _, err := di.Match(ctx, "word"); !errors.Is(err, apperrors.ErrCorruptRecord) {
		t.Errorf("Match err = %v, want ErrCorruptRecord", err)
	}
}

func TestDiskPositionalRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	pi := NewPositionalIndex(lemma.Identity)
	pi.Add(Document{Title: "Fox", Content: "the quick brown fox"})
	pi.Add(Document{Title: "Other", Content: "brown quick fox"})
	pi.Add(Document{Title: "Third", Content: "a quick brown dog"})
	if err := pi.Save(ctx, dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dp, err := OpenDiskPositionalIndex(dir, lemma.Identity, nil)
	if err != nil {
		t.Fatalf("OpenDiskPositionalIndex: %v", err)
	}
	defer dp.Close()
	if dp.Len() != 3 {
		t.Errorf("Len = %d, want 3", dp.Len())
	}
	for _, q := range []string{"quick brown", "brown quick", "fox", "third a", "other brown", "missing words", ""} {
		want := pi.MatchIDs(q)
		got, err := dp.MatchIDs(ctx, q)
		if err != nil {
			t.Fatalf("MatchIDs(%q): %v", q, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("disk MatchIDs(%q) = %v, memory = %v", q, got, want)
		}
	}
	docs, err := dp.Search(ctx, "quick brown")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids(docs), []int{0, 2}) || docs[1].Title != "Third" {
		t.Errorf("Search = %+v", docs)
	}
}

func TestDiskPositionalMissingBoundaries(t *testing.T) {
	dir := t.TempDir()
	mi := NewMemoryIndex(lemma.Identity)
	mi.Add(Document{Title: "t", Content: "c"})
	if err := mi.Save(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	_, err := OpenDiskPositionalIndex(dir, lemma.Identity, nil)
	if !errors.Is(err, apperrors.ErrBoundariesMissing) {
		t.Errorf("err = %v, want ErrBoundariesMissing", err)
	}
}

func TestSaveIntoSubdirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "idx")
	pi := NewPositionalIndex(lemma.Identity)
	pi.Add(Document{Title: "t", Content: "c"})
	if err := pi.Save(context.Background(), dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	for _, p := range []string{segment.BoundariesFile, segment.IndexDir, segment.DocsDir} {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}

func BenchmarkMemoryIndexAdd(b *testing.B) {
	mi := NewMemoryIndex(lemma.Identity)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mi.Add(Document{Title: "benchmark title", Content: "this is a benchmark document with several terms for indexing"})
	}
}

func BenchmarkPositionalMatch(b *testing.B) {
	pi := NewPositionalIndex(lemma.Identity)
	for i := 0; i < 5000; i++ {
		pi.Add(Document{Title: "distributed search", Content: "search engine with distributed indexing and query processing"})
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = pi.MatchIDs("distributed indexing")
	}
}
