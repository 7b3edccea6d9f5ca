package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
)

// TitleMarker opens every record of a wiki dump.
const TitleMarker = "TITLE: "

// DumpSource reads a plain-text wiki dump. Each record is a marker line
// starting with TitleMarker, the title on the following line, then content
// lines up to the next blank line. Content lines are trimmed and joined with
// single spaces. Reading stops at EOF or at a line where a marker was
// expected but something else was found.
type DumpSource struct {
	path string
}

func NewDumpSource(path string) *DumpSource {
	return &DumpSource{path: path}
}

func (s *DumpSource) Each(ctx context.Context, fn func(index.Document) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("opening dump %s: %w", s.path, err)
	}
	defer f.Close()
	return ReadDump(ctx, f, fn)
}

// ReadDump parses dump records from r.
func ReadDump(ctx context.Context, r io.Reader, fn func(index.Document) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !strings.HasPrefix(sc.Text(), TitleMarker) {
			break
		}
		if !sc.Scan() {
			break
		}
		doc := index.Document{Title: strings.TrimSpace(sc.Text())}
		var content []string
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				break
			}
			content = append(content, line)
		}
		doc.Content = strings.Join(content, " ")
		if err := fn(doc); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scanning dump: %w", err)
	}
	return nil
}
