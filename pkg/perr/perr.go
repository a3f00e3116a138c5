// Package perr defines the error-kind taxonomy shared across paperback's
// core packages. Sentinels are wrapped with context via fmt.Errorf's %w and
// inspected with errors.Is. This package holds only sentinels; the one kind
// that carries a structured payload, pkg/quorum's InconsistentQuorumError,
// is a concrete type discoverable via errors.As that also matches
// ErrInconsistentQuorum via errors.Is.
package perr

import "errors"

// Sentinel errors, one per taxonomy entry in the error-handling design.
// Wrap these with fmt.Errorf("...: %w", perr.X) for context; callers that
// need to distinguish kinds use errors.Is.
var (
	// ErrInvariantViolation marks a broken programmer/crypto contract: a
	// private key that disagrees with its claimed public key, a shard
	// requested at x=0, and similar conditions that should never arise from
	// valid input.
	ErrInvariantViolation = errors.New("paperback: security invariant violated")

	// ErrMissingCapability marks an operation that needs data the caller
	// doesn't have: recovering a document from a quorum with no main
	// document, or minting a new shard from a sealed backup.
	ErrMissingCapability = errors.New("paperback: missing necessary capability")

	// ErrAeadEncryption and ErrAeadDecryption mark ChaCha20-Poly1305
	// failures: the former essentially never happens (no cause to fail
	// encrypting well-formed input), the latter signals tampering, a wrong
	// key, or wrong codewords.
	ErrAeadEncryption = errors.New("paperback: aead encryption failure")
	ErrAeadDecryption = errors.New("paperback: aead decryption failure")

	// ErrShamir marks a structural failure in Shamir interpolation inputs
	// (point count mismatch, non-invertible point).
	ErrShamir = errors.New("paperback: shamir algorithm error")

	// ErrMalformedSecret marks a blob that decrypted successfully (so the
	// AEAD tag checked out) but whose plaintext isn't a valid encoding —
	// shard secret, private key, or shard ID. This is a stronger signal of
	// tampering than a wire-parse failure, since it implies an attacker with
	// a valid key still produced garbage.
	ErrMalformedSecret = errors.New("paperback: malformed secret after successful decryption")

	// ErrWireParse marks a structural decode failure: bad varint, wrong
	// tag, truncated input, trailing bytes, or unsupported version.
	ErrWireParse = errors.New("paperback: wire parse error")

	// ErrForgedDocument marks an Ed25519 signature that failed to verify.
	ErrForgedDocument = errors.New("paperback: forged document, signature verification failed")
)

// ErrInconsistentQuorum is the sentinel pkg/quorum's InconsistentQuorumError
// matches against via Is, for callers that only care about the error kind
// and don't need the grouping payload.
var ErrInconsistentQuorum = errors.New("paperback: inconsistent quorum")
