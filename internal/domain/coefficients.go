// Package domain implements the spherical-harmonic gravity field evaluation
// core: coefficient storage, normalization conversions, the recursive
// evaluation kernels and the gravity model facades built on top of them.
package domain

import "fmt"

// CoefficientTable is the immutable triangular storage of Stokes coefficients
// C[n][m] and S[n][m] with 0 <= m <= n <= Degree(). A table may be truncated in
// order (Order() < Degree()); coefficients above the declared order are
// implicitly zero. Tables are deep-copied at construction and never mutated.
type CoefficientTable struct {
	c, s   [][]float64
	degree int
	order  int
}

// NewCoefficientTable builds a table from triangular C/S arrays. Row n must
// hold min(n, order)+1 entries in both arrays.
func NewCoefficientTable(c, s [][]float64, order int) (*CoefficientTable, error) {
	if len(c) == 0 {
		return nil, fmt.Errorf("coefficient table must have at least the degree-0 row")
	}
	if len(c) != len(s) {
		return nil, fmt.Errorf("C and S arrays differ in degree: %d rows vs %d rows", len(c), len(s))
	}
	degree := len(c) - 1
	if order < 0 {
		return nil, fmt.Errorf("order must be non-negative, got %d", order)
	}
	if order > degree {
		return nil, fmt.Errorf("order %d exceeds degree %d", order, degree)
	}

	cc := make([][]float64, degree+1)
	ss := make([][]float64, degree+1)
	for n := 0; n <= degree; n++ {
		want := minInt(n, order) + 1
		if len(c[n]) != want || len(s[n]) != want {
			return nil, fmt.Errorf("row %d must hold %d entries, got C:%d S:%d", n, want, len(c[n]), len(s[n]))
		}
		cc[n] = append([]float64(nil), c[n]...)
		ss[n] = append([]float64(nil), s[n]...)
	}

	return &CoefficientTable{c: cc, s: ss, degree: degree, order: order}, nil
}

// Degree returns the maximum degree stored in the table.
func (t *CoefficientTable) Degree() int { return t.degree }

// Order returns the maximum order stored in the table.
func (t *CoefficientTable) Order() int { return t.order }

// C returns the cosine coefficient of degree n and order m. Entries above the
// declared order (but within the triangle) are implicitly zero.
func (t *CoefficientTable) C(n, m int) (float64, error) {
	if err := t.check(n, m); err != nil {
		return 0, err
	}
	return t.cAt(n, m), nil
}

// S returns the sine coefficient of degree n and order m.
func (t *CoefficientTable) S(n, m int) (float64, error) {
	if err := t.check(n, m); err != nil {
		return 0, err
	}
	return t.sAt(n, m), nil
}

func (t *CoefficientTable) check(n, m int) error {
	if n < 0 || m < 0 || m > n || n > t.degree {
		return fmt.Errorf("coefficient (%d,%d) outside table of degree %d", n, m, t.degree)
	}
	return nil
}

// cAt is the unchecked accessor used by the kernels on every recursion step.
func (t *CoefficientTable) cAt(n, m int) float64 {
	if m >= len(t.c[n]) {
		return 0
	}
	return t.c[n][m]
}

func (t *CoefficientTable) sAt(n, m int) float64 {
	if m >= len(t.s[n]) {
		return 0
	}
	return t.s[n][m]
}

// CopyC returns a degree-indexed, row-major copy of the C coefficients
// truncated to the given degree and order, for diagnostic and regression use.
func (t *CoefficientTable) CopyC(degree, order int) ([][]float64, error) {
	return t.copyTriangle(t.c, degree, order)
}

// CopyS returns a degree-indexed, row-major copy of the S coefficients
// truncated to the given degree and order.
func (t *CoefficientTable) CopyS(degree, order int) ([][]float64, error) {
	return t.copyTriangle(t.s, degree, order)
}

func (t *CoefficientTable) copyTriangle(src [][]float64, degree, order int) ([][]float64, error) {
	if degree < 0 || order < 0 || order > degree {
		return nil, fmt.Errorf("invalid truncation degree %d order %d", degree, order)
	}
	if degree > t.degree {
		return nil, fmt.Errorf("truncation degree %d exceeds table degree %d", degree, t.degree)
	}
	out := make([][]float64, degree+1)
	for n := 0; n <= degree; n++ {
		cols := minInt(n, order) + 1
		out[n] = make([]float64, cols)
		for m := 0; m < cols; m++ {
			if m < len(src[n]) {
				out[n][m] = src[n][m]
			}
		}
	}
	return out, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
