package wire

import (
	"fmt"

	"github.com/cyphar-go/paperback/pkg/config"
	"golang.org/x/crypto/blake2b"
)

// HashCode identifies a hash function by its multicodec code.
type HashCode uint64

// CodeBlake2b256 is the real multicodec registry value for Blake2b-256, the
// only hash function paperback uses (for document and key-shard checksums),
// resolved from config.ChecksumAlgorithmBlake2b256 rather than hardcoded so
// the two can never drift apart.
var CodeBlake2b256 = func() HashCode {
	code, err := config.ChecksumAlgorithmBlake2b256.MultihashCode()
	if err != nil {
		panic(fmt.Sprintf("wire: %v", err))
	}
	return HashCode(code)
}()

// Multihash is a self-describing digest: a hash function code, a length,
// and the digest bytes, per the multihash spec.
type Multihash struct {
	Code   HashCode
	Digest []byte
}

// EncodeWire writes code‖length‖digest, each of the first two as a varint.
func (m Multihash) EncodeWire(w *Writer) {
	w.Uvarint(uint64(m.Code)).Uvarint(uint64(len(m.Digest))).Raw(m.Digest)
}

// Bytes returns the multihash's wire encoding.
func (m Multihash) Bytes() []byte {
	return Encode(m)
}

// Equal reports whether two multihashes carry the same code and digest.
func (m Multihash) Equal(other Multihash) bool {
	if m.Code != other.Code || len(m.Digest) != len(other.Digest) {
		return false
	}
	for i := range m.Digest {
		if m.Digest[i] != other.Digest[i] {
			return false
		}
	}
	return true
}

// SumBlake2b256 returns the Blake2b-256 multihash of data, the only checksum
// algorithm paperback uses (for document and key-shard checksums).
func SumBlake2b256(data []byte) Multihash {
	digest := blake2b.Sum256(data)
	return Multihash{Code: CodeBlake2b256, Digest: digest[:]}
}

// ShortID renders hash as a multibase string and returns its last length
// characters. The *suffix*, not the prefix, is the short ID: multibase's
// leading byte is just the base-encoding tag, not content.
func ShortID(hash Multihash, length int) string {
	encoded := ToMultibase(hash.Bytes())
	if len(encoded) <= length {
		return encoded
	}
	return encoded[len(encoded)-length:]
}

// DecodeMultihash reads a Multihash from r.
func DecodeMultihash(r *Reader) (Multihash, error) {
	code, err := r.Uvarint()
	if err != nil {
		return Multihash{}, fmt.Errorf("wire: decoding multihash code: %w", err)
	}
	length, err := r.Uvarint()
	if err != nil {
		return Multihash{}, fmt.Errorf("wire: decoding multihash length: %w", err)
	}
	digest, err := r.Take(int(length))
	if err != nil {
		return Multihash{}, fmt.Errorf("wire: decoding multihash digest: %w", err)
	}
	return Multihash{Code: HashCode(code), Digest: digest}, nil
}
