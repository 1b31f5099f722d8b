package domain

import "math"

// CunninghamKernel evaluates the expansion through the Cunningham V/W
// recursion in body-fixed Cartesian coordinates, on unnormalized coefficients.
//
// The auxiliary functions are
//
//	V_nm + i W_nm = (ae/r)^(n+1) P_nm(sin φ) e^(imλ)
//
// built directly from x, y, z without ever evaluating latitude or longitude.
// The acceleration of each (n,m) term is a weighted sum of the degree-(n+1)
// functions, so the recursion runs one degree and one order beyond the
// truncation. The method has no analytic position Jacobian; it serves as the
// cross-validation reference for the other two methods.
type CunninghamKernel struct{}

// Name implements Kernel.
func (CunninghamKernel) Name() string { return "cunningham" }

// RequiresNormalized implements Kernel.
func (CunninghamKernel) RequiresNormalized() bool { return false }

// PotentialGradient implements Kernel.
func (k CunninghamKernel) PotentialGradient(pos Vector3, tbl *CoefficientTable, ae, mu float64, nMax, mMax int, central bool) (Vector3, float64, error) {
	return k.accumulate(pos, tbl, ae, mu, nMax, mMax, central, false)
}

// AeGradient implements Kernel. Every degree-n term scales as ae^n, so the
// derivative weights each term by n/ae.
func (k CunninghamKernel) AeGradient(pos Vector3, tbl *CoefficientTable, ae, mu float64, nMax, mMax int) (Vector3, error) {
	acc, _, err := k.accumulate(pos, tbl, ae, mu, nMax, mMax, false, true)
	return acc, err
}

func (CunninghamKernel) accumulate(pos Vector3, tbl *CoefficientTable, ae, mu float64, nMax, mMax int, central, aeWeighted bool) (Vector3, float64, error) {
	if err := checkTruncation(tbl, nMax, mMax); err != nil {
		return Vector3{}, 0, err
	}
	if pos.IsZero() {
		return Vector3{}, 0, ErrSingularGeometry
	}
	r2 := pos.Dot(pos)

	// V and W one degree and one order beyond the truncation.
	vDeg := nMax + 1
	vOrd := minInt(vDeg, mMax+1)
	v := make([][]float64, vDeg+1)
	w := make([][]float64, vDeg+1)
	for n := 0; n <= vDeg; n++ {
		cols := minInt(n, vOrd) + 1
		v[n] = make([]float64, cols)
		w[n] = make([]float64, cols)
	}

	rho := ae * ae / r2
	xf := pos.X * ae / r2
	yf := pos.Y * ae / r2
	zf := pos.Z * ae / r2

	v[0][0] = ae / math.Sqrt(r2)
	w[0][0] = 0
	for m := 1; m <= vOrd; m++ {
		// Diagonal step.
		d := float64(2*m - 1)
		v[m][m] = d * (xf*v[m-1][m-1] - yf*w[m-1][m-1])
		w[m][m] = d * (xf*w[m-1][m-1] + yf*v[m-1][m-1])
	}
	for m := 0; m <= vOrd; m++ {
		for n := m + 1; n <= vDeg; n++ {
			// Vertical step; the degree-(n-2) term is absent on the first row
			// above the diagonal.
			f1 := float64(2*n-1) * zf
			f2 := float64(n+m-1) * rho
			if n == m+1 {
				v[n][m] = f1 * v[n-1][m] / float64(n-m)
				w[n][m] = f1 * w[n-1][m] / float64(n-m)
			} else {
				v[n][m] = (f1*v[n-1][m] - f2*v[n-2][m]) / float64(n-m)
				w[n][m] = (f1*w[n-1][m] - f2*w[n-2][m]) / float64(n-m)
			}
		}
	}

	var ax, ay, az, pot float64
	nMin := 1
	if central {
		nMin = 0
	}
	for n := nMin; n <= nMax; n++ {
		weight := 1.0
		if aeWeighted {
			weight = float64(n) / ae
		}
		for m := 0; m <= minInt(n, mMax); m++ {
			cnm := tbl.cAt(n, m)
			snm := tbl.sAt(n, m)
			if cnm == 0 && snm == 0 {
				continue
			}
			if m == 0 {
				ax += weight * (-cnm * v[n+1][1])
				ay += weight * (-cnm * w[n+1][1])
			} else {
				f := float64(n-m+1) * float64(n-m+2)
				ax += weight * 0.5 * ((-cnm*v[n+1][m+1] - snm*w[n+1][m+1]) + f*(cnm*v[n+1][m-1]+snm*w[n+1][m-1]))
				ay += weight * 0.5 * ((-cnm*w[n+1][m+1] + snm*v[n+1][m+1]) + f*(-cnm*w[n+1][m-1]+snm*v[n+1][m-1]))
			}
			az += weight * float64(n-m+1) * (-cnm*v[n+1][m] - snm*w[n+1][m])
			pot += weight * (cnm*v[n][m] + snm*w[n][m])
		}
	}

	scale := mu / (ae * ae)
	return Vector3{X: ax * scale, Y: ay * scale, Z: az * scale}, pot * mu / ae, nil
}
