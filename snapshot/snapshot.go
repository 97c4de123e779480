// Package snapshot captures the contents of a dispatch queue as a JSON
// document and restores it into a queue with the same dispatch order.
//
// Entries are written in dispatch order (priority ascending, FIFO within a
// priority), so replaying them through InsertIfAbsent rebuilds every bucket
// in its original order. Each document carries a Keccak-256 checksum of the
// entries bytes exactly as they appear in the document.
package snapshot

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/crypto/sha3"

	"pdq/constants"
	"pdq/dispatchq"
)

var (
	ErrVersion      = errors.New("snapshot: unsupported version")
	ErrChecksum     = errors.New("snapshot: checksum mismatch")
	ErrCorrupt      = errors.New("snapshot: inconsistent document")
	ErrMaskMismatch = errors.New("snapshot: restored mask differs from document")
	ErrLossy        = errors.New("snapshot: element does not survive encoding")
)

// Entry is one queued element and its priority.
type Entry[T comparable] struct {
	Element  T                  `json:"element"`
	Priority dispatchq.Priority `json:"priority"`
}

// Document is the serialized form of a queue.
type Document[T comparable] struct {
	Version  int        `json:"version"`
	Size     int        `json:"size"`
	Mask     uint64     `json:"mask"`
	Entries  []Entry[T] `json:"entries"`
	Checksum string     `json:"checksum"`
}

// Capture copies q into a document. q is not modified.
func Capture[T comparable](q *dispatchq.Queue[T]) Document[T] {
	doc := Document[T]{
		Version: constants.SnapshotVersion,
		Size:    q.Size(),
		Mask:    q.Mask(),
		Entries: make([]Entry[T], 0, q.Size()),
	}
	q.Each(func(e T, p dispatchq.Priority) bool {
		doc.Entries = append(doc.Entries, Entry[T]{Element: e, Priority: p})
		return true
	})
	return doc
}

// wireDocument is Document as written: entries stay raw so the checksum
// covers the exact bytes in the file.
type wireDocument struct {
	Version  int               `json:"version"`
	Size     int               `json:"size"`
	Mask     uint64            `json:"mask"`
	Entries  sonnet.RawMessage `json:"entries"`
	Checksum string            `json:"checksum"`
}

// checksum returns the hex Keccak-256 of raw.
func checksum(raw []byte) string {
	sum := sha3.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// encodeEntries encodes entries and checks that decoding the bytes gives
// back the same elements. Strings with invalid UTF-8, for one, are rewritten
// by the encoder and would restore as different elements.
func encodeEntries[T comparable](entries []Entry[T]) ([]byte, error) {
	raw, err := sonnet.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode entries: %w", err)
	}
	var back []Entry[T]
	if err := sonnet.Unmarshal(raw, &back); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLossy, err)
	}
	if len(back) != len(entries) {
		return nil, fmt.Errorf("%w: %d entries decode as %d", ErrLossy, len(entries), len(back))
	}
	for i := range entries {
		if back[i] != entries[i] {
			return nil, fmt.Errorf("%w: entry %d", ErrLossy, i)
		}
	}
	return raw, nil
}

// Encode stamps doc with its checksum and returns the JSON bytes.
// Documents whose elements would not decode back unchanged fail with ErrLossy.
func Encode[T comparable](doc Document[T]) ([]byte, error) {
	raw, err := encodeEntries(doc.Entries)
	if err != nil {
		return nil, err
	}
	if doc.Version == 0 {
		doc.Version = constants.SnapshotVersion
	}
	out, err := sonnet.Marshal(wireDocument{
		Version:  doc.Version,
		Size:     doc.Size,
		Mask:     doc.Mask,
		Entries:  raw,
		Checksum: checksum(raw),
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode document: %w", err)
	}
	return out, nil
}

// Decode parses and verifies a document produced by Encode.
func Decode[T comparable](data []byte) (Document[T], error) {
	var w wireDocument
	if err := sonnet.Unmarshal(data, &w); err != nil {
		return Document[T]{}, fmt.Errorf("snapshot: decode: %w", err)
	}
	if w.Version != constants.SnapshotVersion {
		return Document[T]{}, fmt.Errorf("%w: %d", ErrVersion, w.Version)
	}
	if checksum(w.Entries) != w.Checksum {
		return Document[T]{}, ErrChecksum
	}
	doc := Document[T]{
		Version:  w.Version,
		Size:     w.Size,
		Mask:     w.Mask,
		Checksum: w.Checksum,
	}
	if err := sonnet.Unmarshal(w.Entries, &doc.Entries); err != nil {
		return Document[T]{}, fmt.Errorf("%w: entries: %w", ErrCorrupt, err)
	}
	if err := doc.validate(); err != nil {
		return Document[T]{}, err
	}
	return doc, nil
}

// validate checks size, mask and priority range against the entries.
func (d *Document[T]) validate() error {
	if d.Size != len(d.Entries) {
		return fmt.Errorf("%w: size %d, %d entries", ErrCorrupt, d.Size, len(d.Entries))
	}
	var mask uint64
	last := dispatchq.Priority(0)
	for i, e := range d.Entries {
		if e.Priority >= dispatchq.Levels {
			return fmt.Errorf("%w: entry %d: %w", ErrCorrupt, i, dispatchq.ErrInvalidPriority)
		}
		if e.Priority < last {
			return fmt.Errorf("%w: entry %d out of dispatch order", ErrCorrupt, i)
		}
		last = e.Priority
		mask |= 1 << uint(e.Priority)
	}
	if mask != d.Mask {
		return fmt.Errorf("%w: mask %#x, entries imply %#x", ErrCorrupt, d.Mask, mask)
	}
	return nil
}

// Restore replaces the contents of q with the document's entries.
// On failure q is left empty.
func Restore[T comparable](doc Document[T], q *dispatchq.Queue[T]) error {
	q.Clear()
	for i, e := range doc.Entries {
		if err := q.InsertIfAbsent(e.Element, e.Priority); err != nil {
			q.Clear()
			return fmt.Errorf("snapshot: restore entry %d: %w", i, err)
		}
	}
	if q.Size() != doc.Size {
		q.Clear()
		return fmt.Errorf("%w: restored %d of %d entries", ErrCorrupt, q.Size(), doc.Size)
	}
	if q.Mask() != doc.Mask {
		q.Clear()
		return ErrMaskMismatch
	}
	return nil
}

// Marshal captures and encodes q in one step.
func Marshal[T comparable](q *dispatchq.Queue[T]) ([]byte, error) {
	return Encode(Capture(q))
}

// Unmarshal decodes data and restores it into q.
func Unmarshal[T comparable](data []byte, q *dispatchq.Queue[T]) error {
	doc, err := Decode[T](data)
	if err != nil {
		return err
	}
	return Restore(doc, q)
}
