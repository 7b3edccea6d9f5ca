package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/lemma"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/metrics"
)

const dump = `TITLE: 1
Cats
Cats purr
  softly.

TITLE: 2
Dogs
Dogs bark loudly at cats.

TITLE: 3
Empty

`

func collect(t *testing.T, text string) []index.Document {
	t.Helper()
	var docs []index.Document
	err := ReadDump(context.Background(), strings.NewReader(text), func(d index.Document) error {
		docs = append(docs, d)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadDump: %v", err)
	}
	return docs
}

func TestReadDump(t *testing.T) {
	got := collect(t, dump)
	want := []index.Document{
		{Title: "Cats", Content: "Cats purr softly."},
		{Title: "Dogs", Content: "Dogs bark loudly at cats."},
		{Title: "Empty", Content: ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadDump =\n%+v\nwant\n%+v", got, want)
	}
}

func TestReadDumpStops(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"no marker", "just text\n", 0},
		{"junk after record", "TITLE: a\nA\nbody\n\nnot a marker\nTITLE: b\nB\nbody\n", 1},
		{"marker at eof", "TITLE: a\n", 0},
		{"marker without space", "TITLE: a\nA\nbody\n\nTITLE:b\nB\nbody\n", 1},
		{"record ends at eof", "TITLE: a\nA\nlast line", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(collect(t, tt.text)); got != tt.want {
				t.Errorf("documents = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReadDumpCallbackError(t *testing.T) {
	stop := errors.New("stop")
	err := ReadDump(context.Background(), strings.NewReader(dump), func(index.Document) error { return stop })
	if !errors.Is(err, stop) {
		t.Errorf("err = %v, want stop", err)
	}
}

func TestBuildFromDumpFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wiki.txt")
	if err := os.WriteFile(path, []byte(dump), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{Ingest: config.IngestConfig{Source: config.SourceDump, DumpPath: path}}
	src, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}

	m := metrics.New(prometheus.NewRegistry())
	mi := index.NewMemoryIndex(lemma.Identity)
	n, err := Build(context.Background(), src, mi, m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n != 3 || mi.Len() != 3 {
		t.Errorf("added %d, Len %d, want 3", n, mi.Len())
	}
	if got := testutil.ToFloat64(m.DocsIndexedTotal); got != 3 {
		t.Errorf("docs_indexed_total = %v", got)
	}
	if ids := mi.Match("cats"); len(ids) != 2 {
		t.Errorf("Match(cats) = %v", ids)
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := NewDumpSource(filepath.Join(t.TempDir(), "missing.txt"))
	if _, err := Build(ctx, src, index.NewMemoryIndex(lemma.Identity), nil); err == nil {
		t.Error("expected error")
	}
}

func TestHandleMessage(t *testing.T) {
	var got []index.Document
	h := HandleMessage(func(d index.Document) error {
		got = append(got, d)
		return nil
	})
	ctx := context.Background()
	if err := h(ctx, nil, []byte(`{"title":"T","content":"C"}`)); err != nil {
		t.Fatal(err)
	}
	if err := h(ctx, []byte("k"), []byte(`not json`)); err != nil {
		t.Errorf("malformed message should be skipped, got %v", err)
	}
	if len(got) != 1 || got[0].Title != "T" || got[0].Content != "C" {
		t.Errorf("documents = %+v", got)
	}
}
