package domain

import "math"

// Fully normalized Helmholtz polynomials.
//
// With u = sin φ the polynomials relate to fully normalized associated
// Legendre functions by
//
//	P̄_nm(u) = (1-u²)^(m/2) · Ā_nm(u)
//
// so the triangular recursion below carries the same overflow-safe incremental
// factors as the normalized Legendre recursion and stays finite to very high
// degree. Derivatives stay inside the same triangle:
//
//	Ā'_nm  = χ(n,m) Ā_n,m+1
//	Ā''_nm = χ(n,m) χ(n,m+1) Ā_n,m+2
//
// with χ(n,0) = sqrt(n(n+1)/2) and χ(n,m) = sqrt((n-m)(n+m+1)) for m > 0.

// helmholtzSet holds polynomial values and their first two derivatives with
// respect to u, evaluated at a fixed argument.
type helmholtzSet struct {
	a   [][]float64
	da  [][]float64
	d2a [][]float64
}

// evalHelmholtz computes Ā, Ā' and Ā'' up to the given degree and order. The
// value triangle is carried two orders beyond the requested order (capped at
// the degree) because the derivative relations shift in order.
func evalHelmholtz(u float64, degree, order int) *helmholtzSet {
	vOrd := order + 2

	a := make([][]float64, degree+1)
	for n := 0; n <= degree; n++ {
		a[n] = make([]float64, minInt(n, vOrd)+1)
	}

	a[0][0] = 1
	if degree >= 1 && vOrd >= 1 {
		a[1][1] = math.Sqrt(3)
	}
	for m := 2; m <= minInt(degree, vOrd); m++ {
		a[m][m] = math.Sqrt((2*float64(m)+1)/(2*float64(m))) * a[m-1][m-1]
	}
	for m := 0; m <= vOrd; m++ {
		for n := m + 1; n <= degree; n++ {
			fn := float64(n)
			fm := float64(m)
			if n == m+1 {
				a[n][m] = u * math.Sqrt(2*fm+3) * a[m][m]
				continue
			}
			alpha := math.Sqrt((2*fn - 1) * (2*fn + 1) / ((fn - fm) * (fn + fm)))
			beta := math.Sqrt((2*fn + 1) * (fn + fm - 1) * (fn - fm - 1) / ((fn - fm) * (fn + fm) * (2*fn - 3)))
			a[n][m] = alpha*u*a[n-1][m] - beta*a[n-2][m]
		}
	}

	da := make([][]float64, degree+1)
	d2a := make([][]float64, degree+1)
	for n := 0; n <= degree; n++ {
		cols := minInt(n, order) + 1
		da[n] = make([]float64, cols)
		d2a[n] = make([]float64, cols)
		for m := 0; m < cols; m++ {
			if m+1 <= n {
				da[n][m] = chi(n, m) * a[n][m+1]
			}
			if m+2 <= n {
				d2a[n][m] = chi(n, m) * chi(n, m+1) * a[n][m+2]
			}
		}
	}

	return &helmholtzSet{a: a, da: da, d2a: d2a}
}

func chi(n, m int) float64 {
	if m == 0 {
		return math.Sqrt(float64(n) * float64(n+1) / 2)
	}
	return math.Sqrt(float64(n-m) * float64(n+m+1))
}
