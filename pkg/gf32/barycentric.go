package gf32

import "fmt"

// ErrNonInvertiblePoint is returned when a point's x-coordinate is zero,
// which cannot be inverted and must never appear as a shard's x-value.
var ErrNonInvertiblePoint = fmt.Errorf("gf32: point has a non-invertible (zero) x value")

// ErrPointCountMismatch is returned when the number of points handed to an
// interpolation routine doesn't match the polynomial degree it was asked to
// reconstruct.
type ErrPointCountMismatch struct {
	Needed int
	Got    int
}

func (e *ErrPointCountMismatch) Error() string {
	return fmt.Sprintf("gf32: interpolation needs %d points but was given %d", e.Needed, e.Got)
}

// Barycentric is the barycentric form of a degree-n interpolating polynomial:
// rather than expanding the polynomial's coefficients, it keeps the original
// points and a per-point weight, and evaluates via the barycentric Lagrange
// formula. This is cheaper to build than full coefficient expansion and is
// what a recovered (as opposed to freshly generated) Dealer keeps internally,
// since recovery only ever needs to evaluate the polynomial at new points
// (to mint additional shards), never to inspect its coefficients directly.
type Barycentric struct {
	points  []Point
	weights []Elem
}

// NewBarycentric builds the barycentric form of the unique degree-(n-1)
// polynomial passing through the first n of points. It requires exactly n
// points and that every x-coordinate be distinct and nonzero.
func NewBarycentric(n int, points []Point) (Barycentric, error) {
	if len(points) != n {
		return Barycentric{}, &ErrPointCountMismatch{Needed: n, Got: len(points)}
	}
	pts := make([]Point, n)
	copy(pts, points)

	weights := make([]Elem, n)
	for j := 0; j < n; j++ {
		if pts[j].X == Zero {
			return Barycentric{}, ErrNonInvertiblePoint
		}
		w := One
		for m := 0; m < n; m++ {
			if m == j {
				continue
			}
			diff := pts[j].X.Sub(pts[m].X)
			if diff == Zero {
				return Barycentric{}, fmt.Errorf("gf32: duplicate x value %d in interpolation points", pts[j].X)
			}
			w = w.Mul(diff)
		}
		inv, ok := w.Inverse()
		if !ok {
			return Barycentric{}, ErrNonInvertiblePoint
		}
		weights[j] = inv
	}
	return Barycentric{points: pts, weights: weights}, nil
}

// Evaluate computes the interpolated polynomial's value at x using the
// barycentric Lagrange formula. If x coincides with one of the original
// points, that point's y value is returned directly (the formula has a
// removable singularity there).
func (b Barycentric) Evaluate(x Elem) Elem {
	for _, p := range b.points {
		if p.X == x {
			return p.Y
		}
	}

	num, den := Zero, Zero
	for j, p := range b.points {
		// term_j = weights[j] / (x - x_j)
		term := b.weights[j].Div(x.Sub(p.X))
		num = num.Add(term.Mul(p.Y))
		den = den.Add(term)
	}
	return num.Div(den)
}

// Constant returns the interpolated polynomial's value at x=0, i.e. the
// shared secret chunk. This is exactly Evaluate(Zero), exposed separately
// because it's the operation recovery actually needs on the hot path.
func (b Barycentric) Constant() Elem {
	return b.Evaluate(Zero)
}

// LagrangeConstant interpolates only the constant term (x=0) of the unique
// degree-(n-1) polynomial through the given n points, without building an
// intermediate Barycentric value. It implements the same simplified
// Lagrange-at-zero identity as the reference implementation's
// lagrange_constant: by pre-inverting every x value once, each term of the
// sum needs only a single division.
func LagrangeConstant(n int, points []Point) (Elem, error) {
	if len(points) != n {
		return Zero, &ErrPointCountMismatch{Needed: n, Got: len(points)}
	}

	xsInv := make([]Elem, n)
	for i, p := range points {
		inv, ok := p.X.Inverse()
		if !ok {
			return Zero, ErrNonInvertiblePoint
		}
		xsInv[i] = inv
	}

	acc := Zero
	for j := 0; j < n; j++ {
		linv := One
		for m := 0; m < n; m++ {
			if m == j {
				continue
			}
			// (1 - x_j/x_m) == (1 - x_j * x_m^-1)
			linv = linv.Mul(One.Sub(points[j].X.Mul(xsInv[m])))
		}
		acc = acc.Add(points[j].Y.Div(linv))
	}
	return acc, nil
}
