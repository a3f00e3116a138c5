// Package envelope implements the ShardSecret: the bundle of key material
// Shamir-shares itself carry, recovered from a quorum of key shards and used
// to decrypt the main document. This package knows nothing about Shamir,
// quorums, or documents — it only encodes/decodes the small, fixed-shape
// wire record.
package envelope

import (
	"crypto/ed25519"
	"fmt"

	"github.com/cyphar-go/paperback/pkg/wire"
)

// DocKeySize is the width of the ChaCha20-Poly1305 key used to encrypt the
// main document.
const DocKeySize = 32

// ShardSecret is the secret Shamir-shares: the main document's AEAD key,
// plus (unless the backup is sealed) the Ed25519 private key used to sign
// new key shards.
type ShardSecret struct {
	DocKey [DocKeySize]byte
	// IDPrivateKey is nil for a sealed backup: no further key shards can
	// ever be minted, since nothing can sign them.
	IDPrivateKey ed25519.PrivateKey
}

// Sealed reports whether this secret carries no signing key.
func (s ShardSecret) Sealed() bool {
	return s.IDPrivateKey == nil
}

// EncodeWire writes the tagged doc key, then either the tagged seed of the
// signing key or, for a sealed secret, the "sealed" tag over 32 zero bytes.
func (s ShardSecret) EncodeWire(w *wire.Writer) {
	w.Tagged(wire.TagChaCha20Poly1305Key, s.DocKey[:])
	if s.IDPrivateKey == nil {
		var zero [ed25519.SeedSize]byte
		w.Tagged(wire.TagEd25519SecretKeySealed, zero[:])
		return
	}
	seed := s.IDPrivateKey.Seed()
	w.Tagged(wire.TagEd25519SecretKey, seed)
}

// Bytes returns s's wire encoding.
func (s ShardSecret) Bytes() []byte {
	return wire.Encode(s)
}

// Decode reads a ShardSecret from r.
func Decode(r *wire.Reader) (ShardSecret, error) {
	docKey, err := r.TaggedFixed(wire.TagChaCha20Poly1305Key, DocKeySize)
	if err != nil {
		return ShardSecret{}, fmt.Errorf("envelope: decoding doc key: %w", err)
	}

	tag, err := r.Uvarint()
	if err != nil {
		return ShardSecret{}, fmt.Errorf("envelope: decoding id key tag: %w", err)
	}

	secret := ShardSecret{}
	copy(secret.DocKey[:], docKey)

	switch tag {
	case wire.TagEd25519SecretKey:
		seed, err := r.Take(ed25519.SeedSize)
		if err != nil {
			return ShardSecret{}, fmt.Errorf("envelope: decoding id secret key: %w", err)
		}
		secret.IDPrivateKey = ed25519.NewKeyFromSeed(seed)
	case wire.TagEd25519SecretKeySealed:
		zero, err := r.Take(ed25519.SeedSize)
		if err != nil {
			return ShardSecret{}, fmt.Errorf("envelope: decoding sealed marker: %w", err)
		}
		for _, b := range zero {
			if b != 0 {
				return ShardSecret{}, fmt.Errorf("envelope: sealed marker must be all-zero")
			}
		}
		secret.IDPrivateKey = nil
	default:
		return ShardSecret{}, fmt.Errorf("envelope: unrecognised id key tag 0x%x", tag)
	}

	return secret, nil
}
