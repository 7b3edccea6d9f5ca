package segment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oarkflow/json"

	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

// Layout of an index directory.
const (
	IndexDir       = "index"
	DocsDir        = "docs"
	BoundariesFile = "boundaries"
	GenerationFile = "generation"
	docSuffix      = ".json"
)

// DocRecord is the stored form of a document; the id lives in the filename.
type DocRecord struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ShardPath is the file holding term's shard under root.
func ShardPath(root, term string) string {
	return filepath.Join(root, IndexDir, ShardKey(term))
}

// DocPath is the record file for document id under root.
func DocPath(root string, id int) string {
	return filepath.Join(root, DocsDir, strconv.Itoa(id)+docSuffix)
}

// WriteFile writes data to path.tmp and renames it over path, so a reader
// never observes a half-written record.
func WriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}

// ReadShard returns the entries of the shard file at path. A missing file is
// not an error: it yields no entries.
func ReadShard(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading shard %s: %w", path, err)
	}
	entries, err := Decode(ShardMagic, data)
	if err != nil {
		return nil, fmt.Errorf("shard %s: %w", path, err)
	}
	return entries, nil
}

// WriteBoundaries stores the boundary table as one record under root.
func WriteBoundaries(root string, boundaries []int) error {
	data := Encode(BoundaryMagic, []Entry{{Postings: boundaries}})
	return WriteFile(filepath.Join(root, BoundariesFile), data)
}

// ReadBoundaries loads the boundary table. Unlike shards, a missing table is
// an error wrapping ErrBoundariesMissing.
func ReadBoundaries(root string) ([]int, error) {
	path := filepath.Join(root, BoundariesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v: %w", path, err, apperrors.ErrBoundariesMissing)
	}
	entries, err := Decode(BoundaryMagic, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if len(entries) != 1 {
		return nil, fmt.Errorf("boundary table holds %d records: %w", len(entries), apperrors.ErrCorruptRecord)
	}
	return entries[0].Postings, nil
}

// WriteGeneration records the posting generation the index under root reads.
func WriteGeneration(root, generation string) error {
	return WriteFile(filepath.Join(root, GenerationFile), []byte(generation))
}

// ReadGeneration returns the posting generation recorded under root, or ""
// for an index saved without one.
func ReadGeneration(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, GenerationFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading generation: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteDoc stores one document record.
func WriteDoc(root string, id int, rec DocRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding document %d: %w", id, err)
	}
	return WriteFile(DocPath(root, id), data)
}

// ReadDoc loads the record of document id. A missing file wraps
// ErrDocumentNotFound and an undecodable one ErrCorruptRecord.
func ReadDoc(root string, id int) (DocRecord, error) {
	var rec DocRecord
	data, err := os.ReadFile(DocPath(root, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rec, fmt.Errorf("document %d: %w", id, apperrors.ErrDocumentNotFound)
		}
		return rec, fmt.Errorf("reading document %d: %w", id, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decoding document %d: %v: %w", id, err, apperrors.ErrCorruptRecord)
	}
	return rec, nil
}

// MkdirAll creates root and its index and docs subdirectories.
func MkdirAll(root string) error {
	for _, dir := range []string{filepath.Join(root, IndexDir), filepath.Join(root, DocsDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
