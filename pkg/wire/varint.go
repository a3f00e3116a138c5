// Package wire implements paperback's deterministic, self-describing binary
// encoding: unsigned LEB128 varints, multicodec-style tag prefixes,
// multihash digests, and multibase string rendering. Every on-disk/on-paper
// artifact (main documents, key shards, the internal shard-secret envelope)
// is built from these primitives.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Writer accumulates wire-encoded bytes.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Raw appends b verbatim, with no length prefix.
func (w *Writer) Raw(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

// Uvarint appends v as an unsigned LEB128 varint.
func (w *Writer) Uvarint(v uint64) *Writer {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return w.Raw(tmp[:n])
}

// Tagged appends tag as a varint followed by data verbatim (no length
// prefix) — the layout used for every fixed-size tagged field (keys,
// nonces, public keys, signatures).
func (w *Writer) Tagged(tag uint64, data []byte) *Writer {
	return w.Uvarint(tag).Raw(data)
}

// LengthPrefixed appends tag as a varint, then len(data) as a varint, then
// data — the layout used for variable-length tagged fields (ciphertexts).
func (w *Writer) LengthPrefixed(tag uint64, data []byte) *Writer {
	return w.Uvarint(tag).Uvarint(uint64(len(data))).Raw(data)
}

// Reader consumes wire-encoded bytes left to right.
type Reader struct {
	buf []byte
}

// NewReader wraps b for sequential decoding.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining returns the bytes not yet consumed.
func (r *Reader) Remaining() []byte {
	return r.buf
}

// Len reports how many bytes are left.
func (r *Reader) Len() int {
	return len(r.buf)
}

// Uvarint consumes and returns an unsigned LEB128 varint.
func (r *Reader) Uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf)
	if n <= 0 {
		return 0, fmt.Errorf("wire: malformed or truncated varint")
	}
	r.buf = r.buf[n:]
	return v, nil
}

// Take consumes exactly n bytes.
func (r *Reader) Take(n int) ([]byte, error) {
	if len(r.buf) < n {
		return nil, fmt.Errorf("wire: need %d bytes but only %d remain", n, len(r.buf))
	}
	out := r.buf[:n]
	r.buf = r.buf[n:]
	return out, nil
}

// ExpectTag consumes a varint and errors unless it equals tag.
func (r *Reader) ExpectTag(tag uint64) error {
	got, err := r.Uvarint()
	if err != nil {
		return err
	}
	if got != tag {
		return fmt.Errorf("wire: expected tag 0x%x, got 0x%x", tag, got)
	}
	return nil
}

// TaggedFixed consumes an expected tag, then exactly n bytes.
func (r *Reader) TaggedFixed(tag uint64, n int) ([]byte, error) {
	if err := r.ExpectTag(tag); err != nil {
		return nil, err
	}
	return r.Take(n)
}

// TaggedLengthPrefixed consumes an expected tag, a length varint, then that
// many bytes.
func (r *Reader) TaggedLengthPrefixed(tag uint64) ([]byte, error) {
	if err := r.ExpectTag(tag); err != nil {
		return nil, err
	}
	length, err := r.Uvarint()
	if err != nil {
		return nil, err
	}
	return r.Take(int(length))
}

// Done errors if any bytes remain unconsumed, used to reject trailing
// garbage after a top-level decode.
func (r *Reader) Done() error {
	if len(r.buf) != 0 {
		return fmt.Errorf("wire: %d trailing bytes after decoding", len(r.buf))
	}
	return nil
}
