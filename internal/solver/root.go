// Package solver provides the bounded numerical iterations used by the leaf
// gas-exchange model. Every routine has a hard iteration cap and returns its
// best estimate alongside any error.
package solver

import (
	"errors"
	"math"
)

const epsilon = 2.220446049250313e-16

// DefaultMaxIterations caps every iteration in this package unless the
// caller asks otherwise.
const DefaultMaxIterations = 200

var (
	// ErrNotBracketed means f has the same sign at both ends of the interval.
	ErrNotBracketed = errors.New("solver: root not bracketed")

	// ErrMaxIterations means the tolerance was not reached within the cap.
	// The accompanying estimate is still the best one found.
	ErrMaxIterations = errors.New("solver: iteration limit reached")
)

// Root is the outcome of a scalar root search.
type Root struct {
	X          float64
	F          float64
	Iterations int
}

// Brent finds a root of f in [a, b] with Brent's method, stopping when the
// bracket is narrower than tol or f is exactly zero.
func Brent(f func(float64) float64, a, b, tol float64, maxIter int) (Root, error) {
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	fa, fb := f(a), f(b)
	if fa == 0 {
		return Root{X: a, F: fa}, nil
	}
	if fb == 0 {
		return Root{X: b, F: fb}, nil
	}
	if math.Signbit(fa) == math.Signbit(fb) {
		if math.Abs(fa) < math.Abs(fb) {
			return Root{X: a, F: fa}, ErrNotBracketed
		}
		return Root{X: b, F: fb}, ErrNotBracketed
	}

	c, fc := a, fa
	d := b - a
	e := d
	for i := 1; i <= maxIter; i++ {
		if math.Signbit(fb) == math.Signbit(fc) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol1 := 2*epsilon*math.Abs(b) + 0.5*tol
		m := 0.5 * (c - b)
		if math.Abs(m) <= tol1 || fb == 0 {
			return Root{X: b, F: fb, Iterations: i}, nil
		}

		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			// inverse quadratic interpolation, or secant when a == c
			var p, q float64
			s := fb / fa
			if a == c {
				p = 2 * m * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*m*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			} else {
				p = -p
			}
			if 2*p < math.Min(3*m*q-math.Abs(tol1*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = m
				e = d
			}
		} else {
			d = m
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, m)
		}
		fb = f(b)
	}
	return Root{X: b, F: fb, Iterations: maxIter}, ErrMaxIterations
}

// Bracket widens [a, b] geometrically around its midpoint until f changes
// sign, giving up after maxIter expansions.
func Bracket(f func(float64) float64, a, b float64, maxIter int) (float64, float64, error) {
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	const grow = 1.6
	fa, fb := f(a), f(b)
	for i := 0; i < maxIter; i++ {
		if math.Signbit(fa) != math.Signbit(fb) || fa == 0 || fb == 0 {
			return a, b, nil
		}
		if math.Abs(fa) < math.Abs(fb) {
			a += grow * (a - b)
			fa = f(a)
		} else {
			b += grow * (b - a)
			fb = f(b)
		}
	}
	return a, b, ErrNotBracketed
}

// FixedPoint iterates x = g(x) from x0 until successive iterates differ by
// less than tol. It is the fallback when a bracket cannot be found.
func FixedPoint(g func(float64) float64, x0, tol float64, maxIter int) (Root, error) {
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	x := x0
	best := Root{X: x0, F: math.Inf(1)}
	for i := 1; i <= maxIter; i++ {
		next := g(x)
		residual := next - x
		if math.Abs(residual) < math.Abs(best.F) {
			best = Root{X: next, F: residual, Iterations: i}
		}
		if math.Abs(residual) < tol {
			return Root{X: next, F: residual, Iterations: i}, nil
		}
		x = next
	}
	best.Iterations = maxIter
	return best, ErrMaxIterations
}
