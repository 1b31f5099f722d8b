package domain

import (
	"errors"
	"math"
	"testing"
)

// Reference constants of the EGM96 model.
const (
	testMu = 3.986004415e14 // m^3/s^2
	testAe = 6378136.3      // m
)

// testTable returns the fully normalized EGM96 coefficients up to degree and
// order 4.
func testTable(t *testing.T) *CoefficientTable {
	t.Helper()
	c := [][]float64{
		{1.0},
		{0.0, 0.0},
		{-4.84165371736e-4, -1.86987635955e-10, 2.43914352398e-6},
		{9.57254173792e-7, 2.02998882184e-6, 9.04627768605e-7, 7.21072657057e-7},
		{5.39873863789e-7, -5.36321616971e-7, 3.50694105785e-7, 9.90771803829e-7, -1.88560802735e-7},
	}
	s := [][]float64{
		{0.0},
		{0.0, 0.0},
		{0.0, 1.19528012031e-9, -1.40016683654e-6},
		{0.0, 2.48513158716e-7, -6.19025944205e-7, 1.41435626958e-6},
		{0.0, -4.73440265853e-7, 6.62671572540e-7, -2.00928369177e-7, 3.08853169333e-7},
	}
	tbl, err := NewCoefficientTable(c, s, 4)
	if err != nil {
		t.Fatalf("Failed to build test table: %v", err)
	}
	return tbl
}

// testPosition is a low-orbit position away from the axes and the equator.
func testPosition() Vector3 {
	return Vector3{X: 3.5e6, Y: 4.2e6, Z: 3.9e6}
}

func allKernels() []Kernel {
	return []Kernel{BalminoKernel{}, CunninghamKernel{}, DrozinerKernel{}}
}

// kernelTable converts the normalized test table to the convention a kernel
// consumes.
func kernelTable(t *testing.T, k Kernel) *CoefficientTable {
	t.Helper()
	tbl := testTable(t)
	if k.RequiresNormalized() {
		return tbl
	}
	un, err := Denormalize(tbl)
	if err != nil {
		t.Fatalf("Failed to denormalize table for %s: %v", k.Name(), err)
	}
	return un
}

// TestKernels_PointMassLimit truncates the expansion at degree 0, where every
// method must reproduce the Newtonian point mass exactly.
func TestKernels_PointMassLimit(t *testing.T) {
	pos := testPosition()
	r := pos.Norm()
	wantAcc := pos.Scale(-testMu / (r * r * r))
	wantPot := testMu / r

	for _, k := range allKernels() {
		tbl := kernelTable(t, k)
		acc, pot, err := k.PotentialGradient(pos, tbl, testAe, testMu, 0, 0, true)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", k.Name(), err)
		}
		if math.Abs(acc.X-wantAcc.X) > 1e-9 ||
			math.Abs(acc.Y-wantAcc.Y) > 1e-9 ||
			math.Abs(acc.Z-wantAcc.Z) > 1e-9 {
			t.Errorf("%s: point-mass acceleration: expected %+v, got %+v", k.Name(), wantAcc, acc)
		}
		if math.Abs(pot-wantPot)/wantPot > 1e-12 {
			t.Errorf("%s: point-mass potential: expected %.6e, got %.6e", k.Name(), wantPot, pot)
		}
	}
}

// TestKernels_CentralTermOff checks that with the central term disabled the
// truncations carrying no non-zero coefficients return the exact zero vector.
// The degree-1 coefficients are zero by the choice of origin, so both the
// (0,0) and the (1,1) truncation qualify.
func TestKernels_CentralTermOff(t *testing.T) {
	pos := testPosition()
	truncations := []struct {
		degree, order int
	}{
		{0, 0},
		{1, 0},
		{1, 1},
	}
	for _, k := range allKernels() {
		tbl := kernelTable(t, k)
		for _, tr := range truncations {
			acc, pot, err := k.PotentialGradient(pos, tbl, testAe, testMu, tr.degree, tr.order, false)
			if err != nil {
				t.Fatalf("%s (%d,%d): unexpected error: %v", k.Name(), tr.degree, tr.order, err)
			}
			if acc.X != 0 || acc.Y != 0 || acc.Z != 0 {
				t.Errorf("%s (%d,%d): expected zero acceleration, got %+v", k.Name(), tr.degree, tr.order, acc)
			}
			if pot != 0 {
				t.Errorf("%s (%d,%d): expected zero potential, got %g", k.Name(), tr.degree, tr.order, pot)
			}
		}
	}
}

// TestKernels_AgreeOnAcceleration compares the three recursion schemes on the
// same truncation. They follow different recursion orders, so agreement is a
// genuine cross-check of all three.
func TestKernels_AgreeOnAcceleration(t *testing.T) {
	positions := []Vector3{
		{X: 3.5e6, Y: 4.2e6, Z: 3.9e6},
		{X: 7.2e6, Y: -0.8e6, Z: 1.1e6},
		{X: -2.0e6, Y: -5.5e6, Z: -3.3e6},
		{X: 6.9e6, Y: 0.3e6, Z: -0.2e6},
	}

	for _, pos := range positions {
		var accs []Vector3
		var pots []float64
		for _, k := range allKernels() {
			tbl := kernelTable(t, k)
			acc, pot, err := k.PotentialGradient(pos, tbl, testAe, testMu, 4, 4, true)
			if err != nil {
				t.Fatalf("%s at %+v: unexpected error: %v", k.Name(), pos, err)
			}
			accs = append(accs, acc)
			pots = append(pots, pot)
		}

		for i := 1; i < len(accs); i++ {
			diff := accs[i].Sub(accs[0]).Norm()
			if diff/accs[0].Norm() > 1e-9 {
				t.Errorf("kernel %d disagrees at %+v: relative spread %.3e", i, pos, diff/accs[0].Norm())
			}
			if math.Abs(pots[i]-pots[0])/math.Abs(pots[0]) > 1e-9 {
				t.Errorf("kernel %d potential disagrees at %+v: %.15e vs %.15e", i, pos, pots[i], pots[0])
			}
		}
	}
}

// TestKernels_TruncationValidation checks the shared degree/order validation.
func TestKernels_TruncationValidation(t *testing.T) {
	pos := testPosition()
	tests := []struct {
		name       string
		nMax, mMax int
	}{
		{"negative degree", -1, 0},
		{"negative order", 2, -1},
		{"order above degree", 2, 3},
		{"degree above table", 5, 0},
	}

	for _, k := range allKernels() {
		tbl := kernelTable(t, k)
		for _, tt := range tests {
			if _, _, err := k.PotentialGradient(pos, tbl, testAe, testMu, tt.nMax, tt.mMax, true); err == nil {
				t.Errorf("%s: expected error for %s", k.Name(), tt.name)
			}
		}
	}
}

// TestKernels_OriginIsSingular checks that the origin is rejected.
func TestKernels_OriginIsSingular(t *testing.T) {
	for _, k := range allKernels() {
		tbl := kernelTable(t, k)
		_, _, err := k.PotentialGradient(Vector3{}, tbl, testAe, testMu, 4, 4, true)
		if !errors.Is(err, ErrSingularGeometry) {
			t.Errorf("%s: expected ErrSingularGeometry at origin, got %v", k.Name(), err)
		}
	}
}

// TestDroziner_PolarAxisIsSingular checks that the spherical-coordinate
// recursion rejects positions on the polar axis, where the longitude is
// undefined.
func TestDroziner_PolarAxisIsSingular(t *testing.T) {
	k := DrozinerKernel{}
	tbl := kernelTable(t, k)
	_, _, err := k.PotentialGradient(Vector3{Z: 7e6}, tbl, testAe, testMu, 4, 4, true)
	if !errors.Is(err, ErrSingularGeometry) {
		t.Errorf("Expected ErrSingularGeometry on polar axis, got %v", err)
	}
}

// TestCunninghamBalmino_PolarAxisIsRegular checks that the Cartesian
// recursions evaluate cleanly on the polar axis.
func TestCunninghamBalmino_PolarAxisIsRegular(t *testing.T) {
	pos := Vector3{Z: 7e6}
	for _, k := range []Kernel{BalminoKernel{}, CunninghamKernel{}} {
		tbl := kernelTable(t, k)
		acc, _, err := k.PotentialGradient(pos, tbl, testAe, testMu, 4, 4, true)
		if err != nil {
			t.Fatalf("%s on polar axis: unexpected error: %v", k.Name(), err)
		}
		// A dominated central term points the acceleration down the axis.
		if acc.Z >= 0 {
			t.Errorf("%s on polar axis: expected negative z acceleration, got %+v", k.Name(), acc)
		}
	}
}

// TestKernels_AeGradientMatchesFiniteDifferences validates the analytic
// derivative of the acceleration with respect to the reference radius.
func TestKernels_AeGradientMatchesFiniteDifferences(t *testing.T) {
	pos := testPosition()
	const h = 0.5 // meters

	for _, k := range allKernels() {
		tbl := kernelTable(t, k)
		grad, err := k.AeGradient(pos, tbl, testAe, testMu, 4, 4)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", k.Name(), err)
		}

		plus, _, err := k.PotentialGradient(pos, tbl, testAe+h, testMu, 4, 4, true)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", k.Name(), err)
		}
		minus, _, err := k.PotentialGradient(pos, tbl, testAe-h, testMu, 4, 4, true)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", k.Name(), err)
		}
		fd := plus.Sub(minus).Scale(1 / (2 * h))

		scale := math.Max(fd.Norm(), grad.Norm())
		if scale == 0 {
			t.Fatalf("%s: degenerate ae gradient", k.Name())
		}
		if grad.Sub(fd).Norm()/scale > 1e-6 {
			t.Errorf("%s: ae gradient %+v does not match finite differences %+v", k.Name(), grad, fd)
		}
	}
}

// TestKernelByName resolves every method name plus the default.
func TestKernelByName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"", "balmino"},
		{"balmino", "balmino"},
		{"cunningham", "cunningham"},
		{"droziner", "droziner"},
	}
	for _, tt := range tests {
		k, err := KernelByName(tt.name)
		if err != nil {
			t.Fatalf("KernelByName(%q): unexpected error: %v", tt.name, err)
		}
		if k.Name() != tt.expected {
			t.Errorf("KernelByName(%q): expected %s, got %s", tt.name, tt.expected, k.Name())
		}
	}

	if _, err := KernelByName("legendre"); err == nil {
		t.Error("Expected error for unknown method name")
	}
}
