package domain

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// BalminoKernel evaluates the expansion on fully normalized coefficients,
// driving the Helmholtz polynomial recursion. The potential is assembled in
// the direction-cosine variables s = x/r, t = y/r, u = z/r as
//
//	V = (mu/r) Σ (ae/r)^n Ā_nm(u) (C̄_nm R_m + S̄_nm I_m)
//
// with R_m + i I_m = (s + i t)^m, which is free of polar singularities and
// numerically stable beyond degree 150. It is the only method with analytic
// partials: the position Jacobian from the second polynomial derivatives, and
// the reference-radius derivative from a degree-weighted accumulation.
type BalminoKernel struct{}

// Name implements Kernel.
func (BalminoKernel) Name() string { return "balmino" }

// RequiresNormalized implements Kernel.
func (BalminoKernel) RequiresNormalized() bool { return true }

// balminoGeometry holds the direction-cosine decomposition of a position and
// the longitude harmonics shared by the gradient and Jacobian accumulations.
type balminoGeometry struct {
	r       float64
	s, t, u float64
	re, im  []float64 // R_m, I_m up to the working order
}

func newBalminoGeometry(pos Vector3, mMax int) (*balminoGeometry, error) {
	if pos.IsZero() {
		return nil, ErrSingularGeometry
	}
	r := pos.Norm()
	g := &balminoGeometry{
		r: r,
		s: pos.X / r,
		t: pos.Y / r,
		u: pos.Z / r,
		re: make([]float64, mMax+1),
		im: make([]float64, mMax+1),
	}
	g.re[0] = 1
	for m := 1; m <= mMax; m++ {
		g.re[m] = g.s*g.re[m-1] - g.t*g.im[m-1]
		g.im[m] = g.s*g.im[m-1] + g.t*g.re[m-1]
	}
	return g, nil
}

// PotentialGradient implements Kernel.
func (k BalminoKernel) PotentialGradient(pos Vector3, tbl *CoefficientTable, ae, mu float64, nMax, mMax int, central bool) (Vector3, float64, error) {
	return k.accumulate(pos, tbl, ae, mu, nMax, mMax, central, false)
}

// AeGradient implements Kernel.
func (k BalminoKernel) AeGradient(pos Vector3, tbl *CoefficientTable, ae, mu float64, nMax, mMax int) (Vector3, error) {
	acc, _, err := k.accumulate(pos, tbl, ae, mu, nMax, mMax, false, true)
	return acc, err
}

func (BalminoKernel) accumulate(pos Vector3, tbl *CoefficientTable, ae, mu float64, nMax, mMax int, central, aeWeighted bool) (Vector3, float64, error) {
	if err := checkTruncation(tbl, nMax, mMax); err != nil {
		return Vector3{}, 0, err
	}
	g, err := newBalminoGeometry(pos, mMax)
	if err != nil {
		return Vector3{}, 0, err
	}
	h := evalHelmholtz(g.u, nMax, mMax)

	// Partials of V with respect to (r, s, t, u), s/t/u treated as
	// independent variables; the dependence is restored below.
	var vr, vs, vt, vu, pot float64

	nMin := 1
	if central {
		nMin = 0
	}
	tn := mu / g.r * math.Pow(ae/g.r, float64(nMin))
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
			a := h.a[n][m]
			da := h.da[n][m]
			d := cnm*g.re[m] + snm*g.im[m]
			w := tn * weight

			pot += w * a * d
			vr -= w * float64(n+1) / g.r * a * d
			vu += w * da * d
			if m > 0 {
				e := cnm*g.re[m-1] + snm*g.im[m-1]
				f := snm*g.re[m-1] - cnm*g.im[m-1]
				vs += w * a * float64(m) * e
				vt += w * a * float64(m) * f
			}
		}
		tn *= ae / g.r
	}

	// acc_i = V_s-type direct terms plus the radial correction that restores
	// the r-dependence of s, t, u.
	g4 := vr - (g.s*vs+g.t*vt+g.u*vu)/g.r
	acc := Vector3{
		X: vs/g.r + g.s*g4,
		Y: vt/g.r + g.t*g4,
		Z: vu/g.r + g.u*g4,
	}
	return acc, pot, nil
}

// Jacobian implements JacobianKernel. It accumulates the full 4x4 matrix of
// second partials in (r, s, t, u) and maps it back to Cartesian axes through
// the chain rule, so the result is exact for the requested truncation, which
// may be lower than the acceleration truncation of the owning model.
func (BalminoKernel) Jacobian(pos Vector3, tbl *CoefficientTable, ae, mu float64, nMax, mMax int, central bool) (*mat.Dense, error) {
	if err := checkTruncation(tbl, nMax, mMax); err != nil {
		return nil, err
	}
	geo, err := newBalminoGeometry(pos, mMax)
	if err != nil {
		return nil, err
	}
	h := evalHelmholtz(geo.u, nMax, mMax)
	r := geo.r

	// grad[c] = V_c and hess[c][d] = V_cd over c, d in (r, s, t, u).
	var grad [4]float64
	var hess [4][4]float64

	nMin := 1
	if central {
		nMin = 0
	}
	tn := mu / r * math.Pow(ae/r, float64(nMin))
	for n := nMin; n <= nMax; n++ {
		np1 := float64(n + 1)
		for m := 0; m <= minInt(n, mMax); m++ {
			cnm := tbl.cAt(n, m)
			snm := tbl.sAt(n, m)
			if cnm == 0 && snm == 0 {
				continue
			}
			a := h.a[n][m]
			da := h.da[n][m]
			d2a := h.d2a[n][m]
			d := cnm*geo.re[m] + snm*geo.im[m]
			fm := float64(m)

			grad[0] -= tn * np1 / r * a * d
			grad[3] += tn * da * d
			hess[0][0] += tn * np1 * (np1 + 1) / (r * r) * a * d
			hess[0][3] -= tn * np1 / r * da * d
			hess[3][3] += tn * d2a * d

			if m > 0 {
				e := cnm*geo.re[m-1] + snm*geo.im[m-1]
				f := snm*geo.re[m-1] - cnm*geo.im[m-1]
				grad[1] += tn * a * fm * e
				grad[2] += tn * a * fm * f
				hess[0][1] -= tn * np1 / r * a * fm * e
				hess[0][2] -= tn * np1 / r * a * fm * f
				hess[1][3] += tn * da * fm * e
				hess[2][3] += tn * da * fm * f
			}
			if m > 1 {
				e2 := cnm*geo.re[m-2] + snm*geo.im[m-2]
				f2 := snm*geo.re[m-2] - cnm*geo.im[m-2]
				mm1 := fm * (fm - 1)
				hess[1][1] += tn * a * mm1 * e2
				hess[1][2] += tn * a * mm1 * f2
				hess[2][2] -= tn * a * mm1 * e2
			}
		}
		tn *= ae / r
	}
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			hess[j][i] = hess[i][j]
		}
	}

	// First and second derivatives of (r, s, t, u) with respect to position.
	p := [3]float64{geo.s, geo.t, geo.u}
	var jc [4][3]float64
	var hc [4][3][3]float64
	for i := 0; i < 3; i++ {
		jc[0][i] = p[i]
		for j := 0; j < 3; j++ {
			hc[0][i][j] = (delta(i, j) - p[i]*p[j]) / r
		}
	}
	for k := 0; k < 3; k++ {
		for i := 0; i < 3; i++ {
			jc[k+1][i] = (delta(i, k) - p[i]*p[k]) / r
			for j := 0; j < 3; j++ {
				hc[k+1][i][j] = (-delta(i, k)*p[j] - delta(i, j)*p[k] - delta(j, k)*p[i] + 3*p[i]*p[j]*p[k]) / (r * r)
			}
		}
	}

	jac := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var v float64
			for c := 0; c < 4; c++ {
				for e := 0; e < 4; e++ {
					v += hess[c][e] * jc[c][i] * jc[e][j]
				}
				v += grad[c] * hc[c][i][j]
			}
			jac.Set(i, j, v)
		}
	}
	return jac, nil
}

func delta(i, j int) float64 {
	if i == j {
		return 1
	}
	return 0
}
