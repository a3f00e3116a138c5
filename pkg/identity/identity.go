// Package identity carries the Ed25519 signing identity attached to every
// main document and key shard: a public key plus a signature over that
// document's signable bytes.
package identity

import (
	"crypto/ed25519"
	"fmt"

	"github.com/cyphar-go/paperback/pkg/wire"
)

// Identity is a public key and the signature it produced over some signable
// byte string (the document/shard it's attached to plus its own public key,
// see SignableBytes).
type Identity struct {
	PublicKey ed25519.PublicKey
	Signature []byte
}

// SignableBytes appends an Ed25519-public-key-tagged field to body. Every
// signed artifact in paperback signs this, not body alone, so a signature
// can never be replayed against a different signer's public key.
func SignableBytes(body []byte, publicKey ed25519.PublicKey) []byte {
	w := wire.NewWriter()
	w.Raw(body)
	w.Tagged(wire.TagEd25519PublicKey, publicKey)
	return w.Bytes()
}

// Sign builds the Identity for body, signed by priv.
func Sign(body []byte, priv ed25519.PrivateKey) Identity {
	pub := priv.Public().(ed25519.PublicKey)
	sig := ed25519.Sign(priv, SignableBytes(body, pub))
	return Identity{PublicKey: pub, Signature: sig}
}

// Verify reports whether id's signature validates against body. The
// standard library's ed25519.Verify already rejects non-canonical (s, R)
// encodings, giving us RFC 8032 "strict" verification with no extra work.
func (id Identity) Verify(body []byte) bool {
	return ed25519.Verify(id.PublicKey, SignableBytes(body, id.PublicKey), id.Signature)
}

// EncodeWire writes the tagged public key then the tagged signature.
func (id Identity) EncodeWire(w *wire.Writer) {
	w.Tagged(wire.TagEd25519PublicKey, id.PublicKey)
	w.Tagged(wire.TagEd25519Signature, id.Signature)
}

// Bytes returns id's wire encoding.
func (id Identity) Bytes() []byte {
	return wire.Encode(id)
}

// Decode reads an Identity from r.
func Decode(r *wire.Reader) (Identity, error) {
	pub, err := r.TaggedFixed(wire.TagEd25519PublicKey, ed25519.PublicKeySize)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: decoding public key: %w", err)
	}
	sig, err := r.TaggedFixed(wire.TagEd25519Signature, ed25519.SignatureSize)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: decoding signature: %w", err)
	}
	pubCopy := make(ed25519.PublicKey, len(pub))
	copy(pubCopy, pub)
	sigCopy := make([]byte, len(sig))
	copy(sigCopy, sig)
	return Identity{PublicKey: pubCopy, Signature: sigCopy}, nil
}
