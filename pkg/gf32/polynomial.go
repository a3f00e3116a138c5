package gf32

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Point is an (x, y) pair in GF(2^32).
type Point struct {
	X Elem
	Y Elem
}

// Polynomial is a polynomial over GF(2^32), with coefficients stored in
// increasing degree: Polynomial[0] is the constant term.
type Polynomial []Elem

// ErrNoPoints is returned when an empty slice is passed somewhere at least
// one coefficient or point is required.
var ErrNoPoints = fmt.Errorf("gf32: at least one point or coefficient is required")

// NewRandomPolynomial returns a degree-n polynomial (n+1 coefficients) with
// every coefficient drawn independently from rnd. None of the coefficients
// are allowed to be zero: this is not required for correctness, but matches
// the reference implementation's abundance of caution against accidentally
// collapsing the polynomial's effective degree.
func NewRandomPolynomial(n int, rnd io.Reader) (Polynomial, error) {
	if n < 0 {
		return nil, fmt.Errorf("gf32: polynomial degree must be non-negative, got %d", n)
	}
	poly := make(Polynomial, n+1)
	var buf [4]byte
	for i := range poly {
		elem := Zero
		for elem == Zero {
			if _, err := io.ReadFull(rnd, buf[:]); err != nil {
				return nil, fmt.Errorf("gf32: drawing random coefficient: %w", err)
			}
			elem = Elem(binary.LittleEndian.Uint32(buf[:]))
		}
		poly[i] = elem
	}
	return poly, nil
}

// Degree returns the polynomial's degree (len(p)-1). It panics on an empty
// polynomial, which should never be constructible through this package.
func (p Polynomial) Degree() int {
	if len(p) == 0 {
		panic("gf32: polynomial must have at least one coefficient")
	}
	return len(p) - 1
}

// Constant returns the polynomial's constant term.
func (p Polynomial) Constant() Elem {
	if len(p) == 0 {
		panic("gf32: polynomial must have at least one coefficient")
	}
	return p[0]
}

// SetConstant overwrites the polynomial's constant term in place.
func (p Polynomial) SetConstant(v Elem) {
	if len(p) == 0 {
		panic("gf32: polynomial must have at least one coefficient")
	}
	p[0] = v
}

// Evaluate computes p(x) using Horner's method, run from the highest degree
// term down so the whole evaluation costs O(n) additions and multiplications.
func (p Polynomial) Evaluate(x Elem) Elem {
	acc := Zero
	for i := len(p) - 1; i >= 0; i-- {
		acc = p[i].Add(x.Mul(acc))
	}
	return acc
}
