package wire

// Tag prefixes are multicodec-style varint values prepended to every field
// in the wire format so that a byte blob is self-describing. Most of these
// are not real upstream multicodec entries (paperback predates any registry
// slot for them); the ed25519/ChaCha20-Poly1305 values below were chosen, as
// upstream did, to spell out a recognisable hex pattern rather than take an
// arbitrary low number.
const (
	// TagEd25519PublicKey is the (real, upstream) multicodec value for an
	// Ed25519 public key.
	TagEd25519PublicKey uint64 = 0xed

	// TagEd25519Signature has no real upstream slot
	// (multiformats/multicodec#142 was never merged); paperback reserves it
	// anyway for self-description.
	TagEd25519Signature uint64 = 0xef

	// TagEd25519SecretKey and TagEd25519SecretKeySealed are entirely
	// paperback's own and not upstreamable: 0xff is never a valid leading
	// multicodec byte, which keeps them from colliding with any real tag.
	TagEd25519SecretKey       uint64 = 0xff_ed25519_536b
	TagEd25519SecretKeySealed uint64 = 0xff_ed25519_0000

	// ChaCha20-Poly1305 key/nonce/ciphertext tags, also paperback's own.
	TagChaCha20Poly1305Key        uint64 = 0xff_caca20_1305
	TagChaCha20Poly1305Nonce      uint64 = 0xfe_caca20_1305
	TagChaCha20Poly1305Ciphertext uint64 = 0xfc_caca20_1305
)

// Encoder is implemented by every wire-codec type, matching the teacher's
// convention of small, single-purpose interfaces (see pkg/persistence's
// Marshal/Unmarshal free functions) adapted to this package's binary format.
type Encoder interface {
	EncodeWire(w *Writer)
}

// Encode runs v's EncodeWire against a fresh Writer and returns the result.
func Encode(v Encoder) []byte {
	w := NewWriter()
	v.EncodeWire(w)
	return w.Bytes()
}
