package lemma

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oarkflow/json"
	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

// Dictionary is a surface-word to lemma table such as the Polimorfologik
// morphological dictionary.
type Dictionary struct {
	words map[string][]string
}

func NewDictionary() *Dictionary {
	return &Dictionary{words: make(map[string][]string)}
}

// NewDictionaryFrom wraps an existing table. The map is used as is.
func NewDictionaryFrom(words map[string][]string) *Dictionary {
	if words == nil {
		words = make(map[string][]string)
	}
	return &Dictionary{words: words}
}

// Add records lemma as a canonical form of word. Both are lower-cased and a
// lemma already listed for word is ignored.
func (d *Dictionary) Add(word, lemma string) {
	word = strings.ToLower(word)
	lemma = strings.ToLower(lemma)
	for _, l := range d.words[word] {
		if l == lemma {
			return
		}
	}
	d.words[word] = append(d.words[word], lemma)
}

func (d *Dictionary) Lookup(word string) ([]string, bool) {
	terms, ok := d.words[word]
	if !ok || len(terms) == 0 {
		return nil, false
	}
	return terms, true
}

func (d *Dictionary) Lemmatize(token string) []string {
	if terms, ok := d.Lookup(token); ok {
		return terms
	}
	return []string{token}
}

func (d *Dictionary) Len() int {
	return len(d.words)
}

// Load reads a dictionary, choosing the decoder from the file suffix:
// .json and .yaml/.yml hold a word -> lemmas object, .txt/.csv hold a
// Polimorfologik dump with one "lemma;word[;tags]" entry per line.
func Load(path string) (*Dictionary, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".yaml", ".yml", ".txt", ".csv":
	default:
		return nil, fmt.Errorf("loading lemma dictionary %s: %w (%q)", path, apperrors.ErrUnsupportedFormat, ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening lemma dictionary: %w", err)
	}
	defer f.Close()

	switch ext {
	case ".txt", ".csv":
		return ReadPolimorfologik(f)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading lemma dictionary %s: %w", path, err)
	}
	words := make(map[string][]string)
	if ext == ".json" {
		err = json.Unmarshal(data, &words)
	} else {
		err = yaml.Unmarshal(data, &words)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing lemma dictionary %s: %w", path, err)
	}
	return NewDictionaryFrom(words), nil
}

// ReadPolimorfologik parses "lemma;word[;tags]" lines. Blank lines are
// skipped; a line without a separator is an error.
func ReadPolimorfologik(r io.Reader) (*Dictionary, error) {
	d := NewDictionary()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.SplitN(text, ";", 3)
		if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
			return nil, fmt.Errorf("line %d: expected lemma;word: %w", line, apperrors.ErrInvalidInput)
		}
		d.Add(fields[1], fields[0])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning dictionary: %w", err)
	}
	return d, nil
}

// Save writes the dictionary as .json or .yaml/.yml.
func (d *Dictionary) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.Marshal(d.words)
	case ".yaml", ".yml":
		data, err = yaml.Marshal(d.words)
	default:
		return fmt.Errorf("saving lemma dictionary %s: %w (%q)", path, apperrors.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("encoding lemma dictionary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing lemma dictionary: %w", err)
	}
	return nil
}

// FromConfig builds the resolver selected by cfg.Mode.
func FromConfig(cfg config.LemmaConfig) (Resolver, error) {
	switch cfg.Mode {
	case config.LemmaIdentity, "":
		return Identity, nil
	case config.LemmaStemmer:
		return NewStemmer(cfg.Language), nil
	case config.LemmaDictionary, config.LemmaCombined:
		dict, err := Load(cfg.Path)
		if err != nil {
			return nil, err
		}
		if cfg.Mode == config.LemmaCombined {
			return WithFallback(dict, NewStemmer(cfg.Language)), nil
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("lemma mode %q: %w", cfg.Mode, apperrors.ErrInvalidInput)
	}
}
