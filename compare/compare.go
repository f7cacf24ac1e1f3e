/*Package compare checks matrices for element-wise agreement within absolute
and relative tolerances. An element of a agrees with the matching element of
b when |a - b| <= atol + rtol*|b|, so b is treated as the reference.
*/
package compare

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/phil-mansfield/golbm/io"
)

// Report summarizes the element-wise differences between two matrices.
type Report struct {
	Rows, Cols int
	// MaxAbs and MaxRel are the largest absolute and relative differences.
	// Elements whose reference value is zero do not contribute to MaxRel.
	MaxAbs, MaxRel float64
	// Failures is the number of elements outside tolerance. FirstRow and
	// FirstCol locate the first of them in row-major order, and are -1 if
	// there are none.
	Failures           int
	FirstRow, FirstCol int
}

// OK returns true if every element is within tolerance.
func (r *Report) OK() bool { return r.Failures == 0 }

func (r *Report) String() string {
	if r.OK() {
		return fmt.Sprintf(
			"%d x %d matrices agree: max abs diff %g, max rel diff %g.",
			r.Rows, r.Cols, r.MaxAbs, r.MaxRel,
		)
	}
	return fmt.Sprintf(
		"%d of %d elements differ, first at (%d, %d): "+
			"max abs diff %g, max rel diff %g.",
		r.Failures, r.Rows*r.Cols, r.FirstRow, r.FirstCol, r.MaxAbs, r.MaxRel,
	)
}

func checkTolerances(rtol, atol float64) error {
	if rtol < 0 || atol < 0 || math.IsNaN(rtol) || math.IsNaN(atol) {
		return fmt.Errorf(
			"Tolerances must be non-negative, but are rtol = %g, atol = %g.",
			rtol, atol,
		)
	}
	return nil
}

// Compare compares a against the reference b.
func Compare(a, b mat.Matrix, rtol, atol float64) (*Report, error) {
	if err := checkTolerances(rtol, atol); err != nil {
		return nil, err
	}
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return nil, fmt.Errorf(
			"Cannot compare a %d x %d matrix to a %d x %d matrix.",
			ar, ac, br, bc,
		)
	}

	r := &Report{Rows: ar, Cols: ac, FirstRow: -1, FirstCol: -1}
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			x, ref := a.At(i, j), b.At(i, j)
			diff := math.Abs(x - ref)

			r.MaxAbs = math.Max(r.MaxAbs, diff)
			if ref != 0 {
				r.MaxRel = math.Max(r.MaxRel, diff/math.Abs(ref))
			}

			if within(x, ref, rtol, atol) {
				continue
			}
			if r.Failures == 0 {
				r.FirstRow, r.FirstCol = i, j
			}
			r.Failures++
		}
	}
	return r, nil
}

func within(x, ref, rtol, atol float64) bool {
	if x == ref {
		return true
	}
	return scalar.EqualWithinAbs(x, ref, atol+rtol*math.Abs(ref))
}

// AllClose returns true if a and b have the same dimensions and every
// element of a is within tolerance of b.
func AllClose(a, b mat.Matrix, rtol, atol float64) bool {
	r, err := Compare(a, b, rtol, atol)
	return err == nil && r.OK()
}

// Slices compares two flattened fields.
func Slices(a, b []float64, rtol, atol float64) (*Report, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("Cannot compare empty slices.")
	}
	return Compare(
		mat.NewVecDense(len(a), a), mat.NewVecDense(len(b), b), rtol, atol,
	)
}

// Files compares the text matrix in file a against the one in file b.
func Files(a, b string, rtol, atol float64) (*Report, error) {
	ma, err := io.ReadMatrix(a)
	if err != nil {
		return nil, err
	}
	mb, err := io.ReadMatrix(b)
	if err != nil {
		return nil, err
	}
	r, err := Compare(ma, mb, rtol, atol)
	if err != nil {
		return nil, fmt.Errorf("Comparing %s to %s: %w", a, b, err)
	}
	return r, nil
}
