package domain

import (
	"fmt"
	"math"
)

// DrozinerKernel evaluates the expansion on unnormalized coefficients through
// an associated-Legendre recursion in spherical coordinates, mapped back to
// Cartesian axes through the chain rule. The recursion order differs from the
// Cunningham V/W scheme, so the two methods accumulate round-off differently
// and cross-check each other.
//
// The method produces the acceleration only: it has no analytic Jacobian, and
// the longitude gradient degenerates on the polar axis, which is rejected as a
// singular geometry rather than silently extrapolated.
type DrozinerKernel struct{}

// Name implements Kernel.
func (DrozinerKernel) Name() string { return "droziner" }

// RequiresNormalized implements Kernel.
func (DrozinerKernel) RequiresNormalized() bool { return false }

// PotentialGradient implements Kernel.
func (k DrozinerKernel) PotentialGradient(pos Vector3, tbl *CoefficientTable, ae, mu float64, nMax, mMax int, central bool) (Vector3, float64, error) {
	return k.accumulate(pos, tbl, ae, mu, nMax, mMax, central, false)
}

// AeGradient implements Kernel.
func (k DrozinerKernel) AeGradient(pos Vector3, tbl *CoefficientTable, ae, mu float64, nMax, mMax int) (Vector3, error) {
	acc, _, err := k.accumulate(pos, tbl, ae, mu, nMax, mMax, false, true)
	return acc, err
}

func (DrozinerKernel) accumulate(pos Vector3, tbl *CoefficientTable, ae, mu float64, nMax, mMax int, central, aeWeighted bool) (Vector3, float64, error) {
	if err := checkTruncation(tbl, nMax, mMax); err != nil {
		return Vector3{}, 0, err
	}
	if pos.IsZero() {
		return Vector3{}, 0, ErrSingularGeometry
	}
	r := pos.Norm()
	rxy := math.Hypot(pos.X, pos.Y)
	if rxy == 0 {
		return Vector3{}, 0, fmt.Errorf("position on the polar axis: %w", ErrSingularGeometry)
	}

	// Geocentric latitude and longitude, kept as sines and cosines.
	sinPhi := pos.Z / r
	cosPhi := rxy / r
	tanPhi := pos.Z / rxy
	cosLam := pos.X / rxy
	sinLam := pos.Y / rxy

	// Unnormalized associated Legendre functions P[n][m](sin φ), one order
	// beyond the truncation for the latitude derivative
	//
	//	dP_nm/dφ = P_n,m+1 - m tan(φ) P_nm
	pDeg := nMax
	pOrd := minInt(pDeg, mMax+1)
	p := make([][]float64, pDeg+1)
	for n := 0; n <= pDeg; n++ {
		p[n] = make([]float64, minInt(n, pOrd)+1)
	}
	p[0][0] = 1
	for m := 1; m <= pOrd; m++ {
		p[m][m] = float64(2*m-1) * cosPhi * p[m-1][m-1]
	}
	for m := 0; m <= pOrd; m++ {
		for n := m + 1; n <= pDeg; n++ {
			if n == m+1 {
				p[n][m] = float64(2*n-1) * sinPhi * p[n-1][m]
			} else {
				p[n][m] = (float64(2*n-1)*sinPhi*p[n-1][m] - float64(n+m-1)*p[n-2][m]) / float64(n-m)
			}
		}
	}

	// Longitude harmonics cos(mλ), sin(mλ) by angle addition.
	cosM := make([]float64, mMax+1)
	sinM := make([]float64, mMax+1)
	cosM[0] = 1
	for m := 1; m <= mMax; m++ {
		cosM[m] = cosM[m-1]*cosLam - sinM[m-1]*sinLam
		sinM[m] = sinM[m-1]*cosLam + cosM[m-1]*sinLam
	}

	var dUdr, dUdphi, dUdlam, pot float64
	nMin := 1
	if central {
		nMin = 0
	}
	aeOverR := ae / r
	rhoN := math.Pow(aeOverR, float64(nMin))
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
			trig := cnm*cosM[m] + snm*sinM[m]
			pnm := p[n][m]
			var pUp float64
			if m+1 <= minInt(n, pOrd) {
				pUp = p[n][m+1]
			}
			dp := pUp - float64(m)*tanPhi*pnm

			term := rhoN * weight
			pot += term * pnm * trig
			dUdr -= term * float64(n+1) * pnm * trig
			dUdphi += term * dp * trig
			dUdlam += term * float64(m) * pnm * (snm*cosM[m] - cnm*sinM[m])
		}
		rhoN *= aeOverR
	}

	muOverR := mu / r
	pot *= muOverR
	dUdr *= muOverR / r
	dUdphi *= muOverR
	dUdlam *= muOverR

	// Chain rule back to Cartesian axes.
	gradPhiX := -pos.X * pos.Z / (r * r * rxy)
	gradPhiY := -pos.Y * pos.Z / (r * r * rxy)
	gradPhiZ := rxy / (r * r)
	gradLamX := -pos.Y / (rxy * rxy)
	gradLamY := pos.X / (rxy * rxy)

	acc := Vector3{
		X: dUdr*pos.X/r + dUdphi*gradPhiX + dUdlam*gradLamX,
		Y: dUdr*pos.Y/r + dUdphi*gradPhiY + dUdlam*gradLamY,
		Z: dUdr*pos.Z/r + dUdphi*gradPhiZ,
	}
	return acc, pot, nil
}
