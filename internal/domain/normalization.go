package domain

import "math"

// Conversion between the two Stokes coefficient scaling conventions.
//
// An unnormalized coefficient is the fully normalized one multiplied by
//
//	N(n,m) = sqrt((2 - δ_m0) (2n+1) (n-m)! / (n+m)!)
//
// The factorial ratio is never evaluated from raw factorials: each factor is
// derived from its left neighbor in the same degree row. The factor itself is
// carried as a mantissa and a binary exponent, because beyond degree ~157 it
// drops below the float64 subnormal floor in the high-order corner even
// though the per-entry products may still be representable. Only the final
// product is rounded to a plain float64.

// Denormalize converts a fully normalized table to the unnormalized convention
// consumed by the Cunningham and Droziner kernels.
func Denormalize(t *CoefficientTable) (*CoefficientTable, error) {
	return rescale(t, false)
}

// Normalize converts an unnormalized table to the fully normalized convention
// consumed by the Balmino kernel.
func Normalize(t *CoefficientTable) (*CoefficientTable, error) {
	return rescale(t, true)
}

func rescale(t *CoefficientTable, toNormalized bool) (*CoefficientTable, error) {
	c := make([][]float64, t.degree+1)
	s := make([][]float64, t.degree+1)
	for n := 0; n <= t.degree; n++ {
		cols := minInt(n, t.order) + 1
		c[n] = make([]float64, cols)
		s[n] = make([]float64, cols)

		// Walk the row left to right, updating N(n,m) incrementally as
		// frac·2^exp with frac renormalized into [0.5, 1) at every step.
		frac := math.Sqrt(2*float64(n) + 1)
		exp := 0
		for m := 0; m < cols; m++ {
			if m > 0 {
				step := float64(n-m+1) * float64(n+m)
				if m == 1 {
					frac *= math.Sqrt(2 / step)
				} else {
					frac /= math.Sqrt(step)
				}
				var e int
				frac, e = math.Frexp(frac)
				exp += e
			}
			if toNormalized {
				c[n][m] = math.Ldexp(t.cAt(n, m)/frac, -exp)
				s[n][m] = math.Ldexp(t.sAt(n, m)/frac, -exp)
			} else {
				c[n][m] = math.Ldexp(t.cAt(n, m)*frac, exp)
				s[n][m] = math.Ldexp(t.sAt(n, m)*frac, exp)
			}
		}
	}
	return NewCoefficientTable(c, s, t.order)
}

// normalizationFactorLgamma is an independently derived computation of N(n,m)
// through log-gamma, kept as the reference the incremental row walk is checked
// against in the regression tests.
func normalizationFactorLgamma(n, m int) float64 {
	delta := 2.0
	if m == 0 {
		delta = 1.0
	}
	lgNum, _ := math.Lgamma(float64(n-m) + 1)
	lgDen, _ := math.Lgamma(float64(n+m) + 1)
	return math.Exp(0.5 * (math.Log(delta) + math.Log(2*float64(n)+1) + lgNum - lgDen))
}
