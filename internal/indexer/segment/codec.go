// Package segment defines the on-disk records of a saved index: per-term
// posting shards named by a hash of the term, the positional boundary table,
// and per-document JSON records.
package segment

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/crc32"
	"sort"

	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

// Magic numbers identify the record kind; both share the layout below.
const (
	ShardMagic     uint32 = 0x44535348 // "DSSH"
	BoundaryMagic  uint32 = 0x44534244 // "DSBD"
	FormatVersion  uint32 = 1
	HeaderSize     int    = 16
	shardKeyLength int    = 16
)

// Entry is one term and its posting list: document ids for the unordered
// index, global word positions for the positional index.
type Entry struct {
	Term     string
	Postings []int
}

// ShardKey names the shard holding term: the first 16 bytes of its SHA-256
// digest as lowercase hex. Terms with equal keys share a shard file and are
// told apart by the literal term stored in each entry.
func ShardKey(term string) string {
	sum := sha256.Sum256([]byte(term))
	return hex.EncodeToString(sum[:shardKeyLength])
}

// Encode serialises entries behind a 16-byte little-endian header:
//
//	magic | version | entry count | crc32(body)
//
// Each entry is uvarint(len(term)) term uvarint(len(postings)) followed by
// zig-zag varint deltas, so ascending lists stay small and any order still
// round-trips. Entries are written sorted by term.
func Encode(magic uint32, entries []Entry) []byte {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Term < sorted[j].Term })

	body := make([]byte, 0, 64)
	for _, e := range sorted {
		body = binary.AppendUvarint(body, uint64(len(e.Term)))
		body = append(body, e.Term...)
		body = binary.AppendUvarint(body, uint64(len(e.Postings)))
		prev := 0
		for _, p := range e.Postings {
			body = binary.AppendVarint(body, int64(p-prev))
			prev = p
		}
	}

	out := make([]byte, HeaderSize, HeaderSize+len(body))
	binary.LittleEndian.PutUint32(out[0:4], magic)
	binary.LittleEndian.PutUint32(out[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(sorted)))
	binary.LittleEndian.PutUint32(out[12:16], crc32.ChecksumIEEE(body))
	return append(out, body...)
}

// Decode parses a record written by Encode with the same magic.
func Decode(magic uint32, data []byte) ([]Entry, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("record of %d bytes shorter than header: %w", len(data), apperrors.ErrCorruptRecord)
	}
	if got := binary.LittleEndian.Uint32(data[0:4]); got != magic {
		return nil, fmt.Errorf("bad magic bytes %x: %w", got, apperrors.ErrCorruptRecord)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != FormatVersion {
		return nil, fmt.Errorf("unsupported format version %d: %w", v, apperrors.ErrCorruptRecord)
	}
	count := binary.LittleEndian.Uint32(data[8:12])
	body := data[HeaderSize:]
	if sum := crc32.ChecksumIEEE(body); sum != binary.LittleEndian.Uint32(data[12:16]) {
		return nil, fmt.Errorf("checksum mismatch: %w", apperrors.ErrCorruptRecord)
	}

	r := reader{buf: body}
	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		termLen := r.uvarint()
		term := r.bytes(termLen)
		n := r.uvarint()
		if r.err != nil {
			break
		}
		if n > uint64(len(r.buf)) {
			// every posting takes at least one byte
			r.err = errTruncated
			break
		}
		postings := make([]int, 0, n)
		prev := 0
		for j := uint64(0); j < n; j++ {
			prev += int(r.varint())
			postings = append(postings, prev)
		}
		if r.err != nil {
			break
		}
		entries = append(entries, Entry{Term: string(term), Postings: postings})
	}
	if r.err != nil {
		return nil, fmt.Errorf("decoding entry %d: %v: %w", len(entries), r.err, apperrors.ErrCorruptRecord)
	}
	if len(r.buf) != 0 {
		return nil, fmt.Errorf("%d trailing bytes: %w", len(r.buf), apperrors.ErrCorruptRecord)
	}
	return entries, nil
}

// EncodePostings is Encode for a single term shard.
func EncodePostings(term string, postings []int) []byte {
	return Encode(ShardMagic, []Entry{{Term: term, Postings: postings}})
}

// Lookup returns the postings stored for term, or nil when the record holds
// other terms only.
func Lookup(entries []Entry, term string) []int {
	for _, e := range entries {
		if e.Term == term {
			return e.Postings
		}
	}
	return nil
}

type reader struct {
	buf []byte
	err error
}

var errTruncated = errors.New("truncated record")

func (r *reader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.buf)
	if n <= 0 {
		r.err = errTruncated
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

func (r *reader) varint() int64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Varint(r.buf)
	if n <= 0 {
		r.err = errTruncated
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

func (r *reader) bytes(n uint64) []byte {
	if r.err != nil {
		return nil
	}
	if n > uint64(len(r.buf)) {
		r.err = errTruncated
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}
