package domain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Kernel is one of the interchangeable recursive evaluators of the truncated
// spherical-harmonic expansion. The set is closed: Cunningham and Droziner
// consume unnormalized coefficients, Balmino consumes fully normalized ones.
//
// All methods are pure functions of their inputs; repeated calls with
// identical inputs return bit-identical results.
type Kernel interface {
	// Name identifies the method, e.g. "cunningham".
	Name() string

	// RequiresNormalized reports which coefficient convention the kernel
	// consumes. The model facade converts the table at construction when the
	// supplied convention mismatches.
	RequiresNormalized() bool

	// PotentialGradient evaluates the acceleration and the potential at a
	// body-fixed position, truncated at degree nMax and order mMax. The
	// central (degree-0) term is included only when central is true; with
	// central false and nMax == 0 the result is the exact zero vector.
	PotentialGradient(pos Vector3, tbl *CoefficientTable, ae, mu float64, nMax, mMax int, central bool) (Vector3, float64, error)

	// AeGradient evaluates the analytic derivative of the acceleration with
	// respect to the reference radius ae. The central term does not depend on
	// ae, so its contribution is always zero.
	AeGradient(pos Vector3, tbl *CoefficientTable, ae, mu float64, nMax, mMax int) (Vector3, error)
}

// JacobianKernel is implemented by the single kernel (Balmino) able to produce
// the analytic 3x3 derivative of the acceleration with respect to position.
type JacobianKernel interface {
	Kernel

	// Jacobian evaluates dAcc/dPos at its own, possibly lower, truncation.
	Jacobian(pos Vector3, tbl *CoefficientTable, ae, mu float64, nMax, mMax int, central bool) (*mat.Dense, error)
}

// KernelByName resolves a method name to its kernel. The empty string selects
// Balmino, the only method with analytic partials.
func KernelByName(name string) (Kernel, error) {
	switch name {
	case "", "balmino":
		return BalminoKernel{}, nil
	case "cunningham":
		return CunninghamKernel{}, nil
	case "droziner":
		return DrozinerKernel{}, nil
	}
	return nil, fmt.Errorf("unknown evaluation method: %q (use balmino, cunningham or droziner)", name)
}

// checkTruncation validates a requested truncation against a table; shared by
// every kernel entry point.
func checkTruncation(tbl *CoefficientTable, nMax, mMax int) error {
	if nMax < 0 || mMax < 0 {
		return fmt.Errorf("degree %d and order %d must be non-negative", nMax, mMax)
	}
	if mMax > nMax {
		return fmt.Errorf("order %d exceeds degree %d", mMax, nMax)
	}
	if nMax > tbl.Degree() {
		return fmt.Errorf("degree %d exceeds coefficient table degree %d", nMax, tbl.Degree())
	}
	return nil
}
