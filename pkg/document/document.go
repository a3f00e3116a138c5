// Package document implements the main document: the AEAD-encrypted,
// Ed25519-signed envelope around the backed-up secret. A main document by
// itself is inert — it can only be opened by a quorum of key shards that
// recover its decryption key (see pkg/quorum).
package document

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/cyphar-go/paperback/pkg/envelope"
	"github.com/cyphar-go/paperback/pkg/identity"
	"github.com/cyphar-go/paperback/pkg/perr"
	"github.com/cyphar-go/paperback/pkg/wire"
	"golang.org/x/crypto/chacha20poly1305"
)

// Version is the only main-document wire version this package produces or
// accepts.
const Version uint32 = 0

// IDLength is the number of trailing multibase characters used as a main
// document's short, human-presentable ID.
const IDLength = 8

// Meta is the main document's unencrypted header: version and quorum size.
// It is never exposed on its own — it's folded into MainDocument — but its
// wire form is also the prefix of the AEAD's associated data.
type Meta struct {
	Version    uint32
	QuorumSize uint32
}

// EncodeWire writes version then quorum size, each a varint.
func (m Meta) EncodeWire(w *wire.Writer) {
	w.Uvarint(uint64(m.Version)).Uvarint(uint64(m.QuorumSize))
}

func decodeMeta(r *wire.Reader) (Meta, error) {
	version, err := r.Uvarint()
	if err != nil {
		return Meta{}, fmt.Errorf("document: decoding version: %w", err)
	}
	quorumSize, err := r.Uvarint()
	if err != nil {
		return Meta{}, fmt.Errorf("document: decoding quorum size: %w", err)
	}
	return Meta{Version: uint32(version), QuorumSize: uint32(quorumSize)}, nil
}

// aad computes the meta's associated-authenticated-data contribution: the
// wire-encoded meta followed by a literal 'k' byte and the signer's raw
// public key. The 'k' byte is not a tag varint — it's a historical,
// deliberately minimal domain separator between "this is the meta" and
// "this is the key that will end up signing the whole thing".
func (m Meta) aad(publicKey ed25519.PublicKey) []byte {
	w := wire.NewWriter()
	m.EncodeWire(w)
	w.Raw([]byte{'k'})
	w.Raw(publicKey)
	return w.Bytes()
}

// builder is the unsigned main document: metadata, AEAD nonce, and
// ciphertext. It is kept unexported inside MainDocument — callers only ever
// see the signed MainDocument.
type builder struct {
	meta       Meta
	nonce      [chacha20poly1305.NonceSize]byte
	ciphertext []byte
}

func (b builder) EncodeWire(w *wire.Writer) {
	b.meta.EncodeWire(w)
	w.Tagged(wire.TagChaCha20Poly1305Nonce, b.nonce[:])
	w.LengthPrefixed(wire.TagChaCha20Poly1305Ciphertext, b.ciphertext)
}

func (b builder) Bytes() []byte {
	return wire.Encode(b)
}

func decodeBuilder(r *wire.Reader) (builder, error) {
	meta, err := decodeMeta(r)
	if err != nil {
		return builder{}, err
	}
	nonce, err := r.TaggedFixed(wire.TagChaCha20Poly1305Nonce, chacha20poly1305.NonceSize)
	if err != nil {
		return builder{}, fmt.Errorf("document: decoding nonce: %w", err)
	}
	ciphertext, err := r.TaggedLengthPrefixed(wire.TagChaCha20Poly1305Ciphertext)
	if err != nil {
		return builder{}, fmt.Errorf("document: decoding ciphertext: %w", err)
	}
	out := builder{meta: meta, ciphertext: append([]byte(nil), ciphertext...)}
	copy(out.nonce[:], nonce)
	return out, nil
}

// MainDocument is the signed, encrypted backup artifact.
type MainDocument struct {
	inner    builder
	Identity identity.Identity
}

// New encrypts plaintext under docKey with a freshly drawn nonce and signs
// the result with priv. The returned MainDocument's Identity.PublicKey is
// priv's public counterpart.
func New(quorumSize uint32, plaintext []byte, docKey [envelope.DocKeySize]byte, priv ed25519.PrivateKey) (MainDocument, error) {
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return MainDocument{}, fmt.Errorf("document: %w: private key has no Ed25519 public counterpart", perr.ErrInvariantViolation)
	}

	meta := Meta{Version: Version, QuorumSize: quorumSize}

	var nonce [chacha20poly1305.NonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return MainDocument{}, fmt.Errorf("document: drawing nonce: %w", err)
	}

	aead, err := chacha20poly1305.New(docKey[:])
	if err != nil {
		return MainDocument{}, fmt.Errorf("document: %w: %v", perr.ErrAeadEncryption, err)
	}
	ciphertext := aead.Seal(nil, nonce[:], plaintext, meta.aad(pub))

	inner := builder{meta: meta, nonce: nonce, ciphertext: ciphertext}
	id := identity.Sign(inner.Bytes(), priv)

	return MainDocument{inner: inner, Identity: id}, nil
}

// Decrypt recovers the original plaintext given the document's AEAD key. It
// does not itself verify the signature — callers that haven't already
// verified the document (e.g. via a quorum's forgery detection) should call
// Verify first.
func (d MainDocument) Decrypt(docKey [envelope.DocKeySize]byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(docKey[:])
	if err != nil {
		return nil, fmt.Errorf("document: %w: %v", perr.ErrAeadDecryption, err)
	}
	plaintext, err := aead.Open(nil, d.inner.nonce[:], d.inner.ciphertext, d.inner.meta.aad(d.Identity.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("document: %w: %v", perr.ErrAeadDecryption, err)
	}
	return plaintext, nil
}

// Verify reports whether the document's signature validates.
func (d MainDocument) Verify() bool {
	return d.Identity.Verify(d.inner.Bytes())
}

// Checksum returns the Blake2b-256 multihash over the document's full wire
// encoding (including its signature) — the value a quorum uses to group
// documents and key shards that belong together.
func (d MainDocument) Checksum() wire.Multihash {
	return wire.SumBlake2b256(d.Bytes())
}

// ChecksumString renders Checksum as a multibase string.
func (d MainDocument) ChecksumString() string {
	return wire.ToMultibase(d.Checksum().Bytes())
}

// ID returns the document's short, human-presentable ID: the last IDLength
// characters of ChecksumString.
func (d MainDocument) ID() string {
	return wire.ShortID(d.Checksum(), IDLength)
}

// QuorumSize returns the number of key shards required to recover this
// document.
func (d MainDocument) QuorumSize() uint32 {
	return d.inner.meta.QuorumSize
}

// Version returns the document's wire version.
func (d MainDocument) Version() uint32 {
	return d.inner.meta.Version
}

// EncodeWire writes the unsigned inner document followed by its identity.
func (d MainDocument) EncodeWire(w *wire.Writer) {
	d.inner.EncodeWire(w)
	d.Identity.EncodeWire(w)
}

// Bytes returns the document's full wire encoding.
func (d MainDocument) Bytes() []byte {
	return wire.Encode(d)
}

// Decode reads a MainDocument from r and rejects anything but Version.
func Decode(r *wire.Reader) (MainDocument, error) {
	inner, err := decodeBuilder(r)
	if err != nil {
		return MainDocument{}, err
	}
	id, err := identity.Decode(r)
	if err != nil {
		return MainDocument{}, fmt.Errorf("document: decoding identity: %w", err)
	}
	if inner.meta.Version != Version {
		return MainDocument{}, fmt.Errorf("document: %w: version must be %d, got %d", perr.ErrWireParse, Version, inner.meta.Version)
	}
	return MainDocument{inner: inner, Identity: id}, nil
}

// DecodeMultibase decodes a document previously rendered with
// ToMultibase.
func DecodeMultibase(s string) (MainDocument, error) {
	raw, err := wire.FromMultibase(s)
	if err != nil {
		return MainDocument{}, fmt.Errorf("document: %w: %v", perr.ErrWireParse, err)
	}
	r := wire.NewReader(raw)
	doc, err := Decode(r)
	if err != nil {
		return MainDocument{}, err
	}
	if err := r.Done(); err != nil {
		return MainDocument{}, fmt.Errorf("document: %w: %v", perr.ErrWireParse, err)
	}
	return doc, nil
}

// ToMultibase renders the document's wire bytes as a multibase string,
// suitable for printing or embedding in a QR code.
func (d MainDocument) ToMultibase() string {
	return wire.ToMultibase(d.Bytes())
}
