// Package keyshard implements key shards: signed Shamir shares of a main
// document's envelope, and the password-protected (BIP-39 codeword) wrapper
// used to print them safely.
package keyshard

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/cyphar-go/paperback/pkg/document"
	"github.com/cyphar-go/paperback/pkg/identity"
	"github.com/cyphar-go/paperback/pkg/mnemonic"
	"github.com/cyphar-go/paperback/pkg/perr"
	"github.com/cyphar-go/paperback/pkg/shamir"
	"github.com/cyphar-go/paperback/pkg/wire"
	"golang.org/x/crypto/chacha20poly1305"
)

// Version is the only key-shard wire version this package produces or
// accepts.
const Version uint32 = 0

// builder is the unsigned key shard body.
type builder struct {
	version   uint32
	docChksum wire.Multihash
	shard     shamir.Shard
}

func (b builder) EncodeWire(w *wire.Writer) {
	w.Uvarint(uint64(b.version))
	b.docChksum.EncodeWire(w)
	b.shard.EncodeWire(w)
}

func (b builder) Bytes() []byte {
	return wire.Encode(b)
}

func decodeBuilder(r *wire.Reader) (builder, error) {
	version, err := r.Uvarint()
	if err != nil {
		return builder{}, fmt.Errorf("keyshard: decoding version: %w", err)
	}
	docChksum, err := wire.DecodeMultihash(r)
	if err != nil {
		return builder{}, fmt.Errorf("keyshard: decoding document checksum: %w", err)
	}
	shard, err := shamir.DecodeShard(r)
	if err != nil {
		return builder{}, fmt.Errorf("keyshard: decoding shard: %w", err)
	}
	return builder{version: uint32(version), docChksum: docChksum, shard: shard}, nil
}

// KeyShard is a signed Shamir share, tied to a specific main document by its
// checksum.
type KeyShard struct {
	inner    builder
	Identity identity.Identity
}

// New signs a fresh key shard over shard, binding it to docChksum.
func New(docChksum wire.Multihash, shard shamir.Shard, priv ed25519.PrivateKey) KeyShard {
	inner := builder{version: Version, docChksum: docChksum, shard: shard}
	return KeyShard{inner: inner, Identity: identity.Sign(inner.Bytes(), priv)}
}

// ID returns the shard's own ID (a multibase encoding of its Shamir x
// value).
func (k KeyShard) ID() shamir.ID {
	return k.inner.shard.ID()
}

// Shard returns the underlying Shamir share.
func (k KeyShard) Shard() shamir.Shard {
	return k.inner.shard
}

// DocumentChecksum returns the checksum of the main document this shard
// belongs to.
func (k KeyShard) DocumentChecksum() wire.Multihash {
	return k.inner.docChksum
}

// DocumentID returns the short, human-presentable ID of the main document
// this shard belongs to — the same value as that document's own ID().
func (k KeyShard) DocumentID() string {
	return wire.ShortID(k.inner.docChksum, document.IDLength)
}

// QuorumSize returns the number of shards required to recover the backup
// this shard belongs to.
func (k KeyShard) QuorumSize() uint32 {
	return k.inner.shard.Threshold
}

// Verify reports whether the shard's signature validates.
func (k KeyShard) Verify() bool {
	return k.Identity.Verify(k.inner.Bytes())
}

// EncodeWire writes the unsigned inner shard followed by its identity.
func (k KeyShard) EncodeWire(w *wire.Writer) {
	k.inner.EncodeWire(w)
	k.Identity.EncodeWire(w)
}

// Bytes returns the shard's full wire encoding.
func (k KeyShard) Bytes() []byte {
	return wire.Encode(k)
}

// Decode reads a KeyShard from r.
func Decode(r *wire.Reader) (KeyShard, error) {
	inner, err := decodeBuilder(r)
	if err != nil {
		return KeyShard{}, err
	}
	id, err := identity.Decode(r)
	if err != nil {
		return KeyShard{}, fmt.Errorf("keyshard: decoding identity: %w", err)
	}
	if inner.version != Version {
		return KeyShard{}, fmt.Errorf("keyshard: %w: version must be %d, got %d", perr.ErrWireParse, Version, inner.version)
	}
	return KeyShard{inner: inner, Identity: id}, nil
}

// Codewords is the 24-English-word BIP-39 mnemonic encoding of an
// EncryptedKeyShard's wrapping key.
type Codewords = []string

// Encrypt wraps k under a freshly generated key, returning the encrypted
// shard and the codewords needed to later decrypt it. The key exists only
// transiently: callers must print the codewords (the key's only durable
// form) and discard the raw key.
func (k KeyShard) Encrypt() (EncryptedKeyShard, Codewords, error) {
	var key [mnemonic.EntropySize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return EncryptedKeyShard{}, nil, fmt.Errorf("keyshard: drawing wrapping key: %w", err)
	}
	var nonce [chacha20poly1305.NonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return EncryptedKeyShard{}, nil, fmt.Errorf("keyshard: drawing nonce: %w", err)
	}

	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return EncryptedKeyShard{}, nil, fmt.Errorf("keyshard: %w: %v", perr.ErrAeadEncryption, err)
	}
	ciphertext := aead.Seal(nil, nonce[:], k.Bytes(), nil)

	words, err := mnemonic.Encode(key[:])
	if err != nil {
		return EncryptedKeyShard{}, nil, fmt.Errorf("keyshard: encoding wrapping key: %w", err)
	}

	return EncryptedKeyShard{nonce: nonce, ciphertext: ciphertext}, words, nil
}

// EncryptedKeyShard is a key shard sealed behind a BIP-39 codeword phrase,
// suitable for printing on paper alongside its checksum.
type EncryptedKeyShard struct {
	nonce      [chacha20poly1305.NonceSize]byte
	ciphertext []byte
}

func (e EncryptedKeyShard) EncodeWire(w *wire.Writer) {
	w.Tagged(wire.TagChaCha20Poly1305Nonce, e.nonce[:])
	w.LengthPrefixed(wire.TagChaCha20Poly1305Ciphertext, e.ciphertext)
}

// Bytes returns the encrypted shard's wire encoding.
func (e EncryptedKeyShard) Bytes() []byte {
	return wire.Encode(e)
}

// Checksum returns the Blake2b-256 multihash over the encrypted shard's
// wire bytes, used to let a human verify they've transcribed a printed
// shard correctly without needing the codewords.
func (e EncryptedKeyShard) Checksum() wire.Multihash {
	return wire.SumBlake2b256(e.Bytes())
}

// ChecksumString renders Checksum as a multibase string.
func (e EncryptedKeyShard) ChecksumString() string {
	return wire.ToMultibase(e.Checksum().Bytes())
}

// Decrypt recovers the KeyShard wrapped inside e, given its codewords.
func (e EncryptedKeyShard) Decrypt(codewords Codewords) (KeyShard, error) {
	key, err := mnemonic.Decode(codewords)
	if err != nil {
		return KeyShard{}, fmt.Errorf("keyshard: decoding codewords: %w", err)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return KeyShard{}, fmt.Errorf("keyshard: %w: %v", perr.ErrAeadDecryption, err)
	}
	plaintext, err := aead.Open(nil, e.nonce[:], e.ciphertext, nil)
	if err != nil {
		return KeyShard{}, fmt.Errorf("keyshard: %w: %v", perr.ErrAeadDecryption, err)
	}

	r := wire.NewReader(plaintext)
	shard, err := Decode(r)
	if err != nil {
		return KeyShard{}, err
	}
	if err := r.Done(); err != nil {
		return KeyShard{}, fmt.Errorf("keyshard: %w: %v", perr.ErrWireParse, err)
	}
	return shard, nil
}

// DecodeEncryptedKeyShard reads an EncryptedKeyShard from r.
func DecodeEncryptedKeyShard(r *wire.Reader) (EncryptedKeyShard, error) {
	nonce, err := r.TaggedFixed(wire.TagChaCha20Poly1305Nonce, chacha20poly1305.NonceSize)
	if err != nil {
		return EncryptedKeyShard{}, fmt.Errorf("keyshard: decoding nonce: %w", err)
	}
	ciphertext, err := r.TaggedLengthPrefixed(wire.TagChaCha20Poly1305Ciphertext)
	if err != nil {
		return EncryptedKeyShard{}, fmt.Errorf("keyshard: decoding ciphertext: %w", err)
	}
	out := EncryptedKeyShard{ciphertext: append([]byte(nil), ciphertext...)}
	copy(out.nonce[:], nonce)
	return out, nil
}
