// Package shamir implements a (k, N) threshold secret-sharing scheme over
// GF(2^32) (see pkg/gf32): the secret is split into 4-byte chunks, each
// chunk becomes the constant term of an independent degree-(k-1) random
// polynomial, and a shard is one (x, [y_0, y_1, ...]) point evaluated
// across every chunk's polynomial at the same x.
//
// Security: like the reference implementation this is modelled on, this
// package makes no constant-time guarantees and has not been reviewed by a
// cryptographer.
package shamir

import (
	"fmt"

	"github.com/cyphar-go/paperback/pkg/gf32"
	"github.com/cyphar-go/paperback/pkg/perr"
	"github.com/cyphar-go/paperback/pkg/wire"
)

// ID is a shard's human-rendered identifier: the multibase(Base32Z)
// encoding of its x-value. Two shards sharing an ID cannot be used together
// for recovery (they're the same point).
type ID = string

// idLength is the byte width of a shard's x-value, fixed by gf32.Elem.
const idLength = 4

// Shard is one point of every per-chunk polynomial, evaluated at a common
// x-value.
type Shard struct {
	X         gf32.Elem
	Ys        []gf32.Elem
	Threshold uint32
	SecretLen uint64
}

// ID returns the shard's multibase-encoded identifier.
func (s Shard) ID() ID {
	return wire.ToMultibase(s.X.Bytes())
}

// ParseID recovers the x-value embedded in a shard identifier string.
func ParseID(id ID) (gf32.Elem, error) {
	b, err := wire.FromMultibase(id)
	if err != nil {
		return 0, fmt.Errorf("shamir: decoding shard id: %w", err)
	}
	if len(b) != idLength {
		return 0, fmt.Errorf("shamir: shard id decodes to %d bytes, want %d", len(b), idLength)
	}
	x := gf32.FromBytes(b)
	if x == gf32.Zero {
		return 0, fmt.Errorf("shamir: decoding shard id: %w: x=0", perr.ErrInvariantViolation)
	}
	return x, nil
}

// EncodeWire writes x, length-prefixed ys, threshold, then secret_len.
func (s Shard) EncodeWire(w *wire.Writer) {
	w.Uvarint(uint64(s.X))
	w.Uvarint(uint64(len(s.Ys)))
	for _, y := range s.Ys {
		w.Uvarint(uint64(y))
	}
	w.Uvarint(uint64(s.Threshold))
	w.Uvarint(s.SecretLen)
}

// Bytes returns the shard's wire encoding.
func (s Shard) Bytes() []byte {
	return wire.Encode(s)
}

// DecodeShard reads a Shard from r.
func DecodeShard(r *wire.Reader) (Shard, error) {
	x, err := r.Uvarint()
	if err != nil {
		return Shard{}, fmt.Errorf("shamir: decoding shard x: %w", err)
	}
	ysLen, err := r.Uvarint()
	if err != nil {
		return Shard{}, fmt.Errorf("shamir: decoding shard ys length: %w", err)
	}
	ys := make([]gf32.Elem, ysLen)
	for i := range ys {
		y, err := r.Uvarint()
		if err != nil {
			return Shard{}, fmt.Errorf("shamir: decoding shard ys[%d]: %w", i, err)
		}
		ys[i] = gf32.Elem(y)
	}
	threshold, err := r.Uvarint()
	if err != nil {
		return Shard{}, fmt.Errorf("shamir: decoding shard threshold: %w", err)
	}
	secretLen, err := r.Uvarint()
	if err != nil {
		return Shard{}, fmt.Errorf("shamir: decoding shard secret_len: %w", err)
	}
	// x=0 is forbidden: (0, y) is the polynomial's constant term, i.e. the
	// raw secret chunk, readable without any quorum. Reject it here rather
	// than relying on it incidentally tripping ErrNonInvertiblePoint later
	// during recovery, since a shard holder can read s.Ys directly.
	if gf32.Elem(x) == gf32.Zero {
		return Shard{}, fmt.Errorf("shamir: decoding shard: %w: x=0", perr.ErrInvariantViolation)
	}
	return Shard{
		X:         gf32.Elem(x),
		Ys:        ys,
		Threshold: uint32(threshold),
		SecretLen: secretLen,
	}, nil
}
