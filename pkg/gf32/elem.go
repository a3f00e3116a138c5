// Package gf32 implements arithmetic in GF(2^32), the finite field paperback
// uses to split secrets into 4-byte chunks for Shamir secret sharing.
//
// This is a from-scratch implementation: there is no well-known, widely used
// Go package for GF(2^n) arithmetic with 32-bit elements, and GF(2^8) (the
// field most crypto libraries implement for AES/Reed-Solomon) is too small
// for paperback's x-values, which must range over the full 32-bit space to
// keep shard identifiers collision-resistant.
//
// NOTE: Add, Sub and Mul do not branch on operand values, but Inverse (and
// therefore Div) is not constant-time. It has not been reviewed by a
// cryptographer. Do not use it outside of paperback.
package gf32

import (
	"encoding/binary"
)

// Elem is an element of GF(2^32) with characteristic polynomial
// x^32 + x^22 + x^2 + x + 1, a sparse (five-term) degree-32 polynomial that
// is both irreducible and primitive over GF(2).
type Elem uint32

const (
	// polynomial is the field's characteristic polynomial, with the
	// implicit x^32 term represented by bit 32.
	polynomial uint64 = 0b1_0000_0000_0100_0000_0000_0000_0000_0111
	// truncPolynomial is polynomial with the top bit (x^32) cleared.
	truncPolynomial uint32 = 0b0000_0000_0100_0000_0000_0000_0000_0111
)

// Zero is the additive identity.
const Zero Elem = 0

// One is the multiplicative identity.
const One Elem = 1

// FromBytesPartial consumes up to 4 bytes from b (little-endian, zero padded
// if fewer than 4 remain) and returns the resulting element along with
// whatever of b was not consumed.
func FromBytesPartial(b []byte) (Elem, []byte) {
	n := len(b)
	if n > 4 {
		n = 4
	}
	var padded [4]byte
	copy(padded[:], b[:n])
	return Elem(binary.LittleEndian.Uint32(padded[:])), b[n:]
}

// FromBytes converts exactly 4 bytes (little-endian) into an element. It
// panics if len(b) != 4; callers that may have a short tail must use
// FromBytesPartial instead.
func FromBytes(b []byte) Elem {
	if len(b) != 4 {
		panic("gf32: FromBytes requires exactly 4 bytes")
	}
	return Elem(binary.LittleEndian.Uint32(b))
}

// Bytes encodes the element as 4 little-endian bytes.
func (e Elem) Bytes() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(e))
	return b
}

// Add returns e+rhs. Addition in GF(2^n) is XOR.
func (e Elem) Add(rhs Elem) Elem {
	return e ^ rhs
}

// Sub returns e-rhs. Subtraction is identical to addition in GF(2^n).
func (e Elem) Sub(rhs Elem) Elem {
	return e ^ rhs
}

// Neg returns -e. Every element of GF(2^n) is its own additive inverse.
func (e Elem) Neg() Elem {
	return e
}

// Mul returns e*rhs via Russian Peasant multiplication over GF(2), reducing
// modulo the field's characteristic polynomial whenever the shifted operand
// overflows 32 bits.
func (e Elem) Mul(rhs Elem) Elem {
	return Elem(mulRaw(uint32(e), uint32(rhs)))
}

// mulRaw multiplies two raw field elements. It always runs all 32 rounds and
// uses masks instead of branches, so its timing does not depend on a or b.
func mulRaw(a, b uint32) uint32 {
	var p uint32
	for i := 0; i < 32; i++ {
		p ^= b & -(a & 1)
		a >>= 1
		carry := -(b >> 31)
		b = (b << 1) ^ (truncPolynomial & carry)
	}
	return p
}

// Inverse returns the multiplicative inverse of e and true, or (0, false) if
// e is zero (which has no inverse).
func (e Elem) Inverse() (Elem, bool) {
	if e == Zero {
		return Zero, false
	}
	v, ok := polynomialInv(uint32(e))
	return Elem(v), ok
}

// Div returns e/rhs. It panics if rhs is zero: callers must never divide by
// an element that hasn't already been checked for invertibility, since an
// uninvertible divisor in this scheme always indicates a programmer error
// (e.g. an x-coordinate of zero slipping into interpolation).
func (e Elem) Div(rhs Elem) Elem {
	inv, ok := rhs.Inverse()
	if !ok {
		panic("gf32: division by a non-invertible (zero) element")
	}
	return e.Mul(inv)
}
