package domain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ModelConfig gathers everything a gravity model is built from. Use
// DefaultModelConfig and override the fields that matter; zero degree/order
// pairs are valid and mean "no contribution" for the part they control.
type ModelConfig struct {
	Kernel Kernel

	// Table in the convention declared by TableNormalized; converted at
	// construction when the kernel consumes the other convention.
	Table           *CoefficientTable
	TableNormalized bool

	// Mu and Ae are the fixed values used when the corresponding Parameter is
	// nil. A model built from fixed values owns no parameters.
	Mu, Ae           float64
	MuParam, AeParam *Parameter

	// Acceleration truncation.
	Degree, Order int

	// Jacobian truncation, independent from the acceleration truncation but
	// bounded by it. Both zero deactivates the Jacobian silently.
	JacobianDegree, JacobianOrder int

	// CentralTerm controls whether the degree-0 term contributes. Set it to
	// false when the model is composed with a separate Newtonian point-mass
	// force, to avoid counting the central attraction twice.
	CentralTerm bool

	// Factor linearly scales the acceleration and every partial.
	Factor float64
}

// DefaultModelConfig returns a config with the central term enabled and a
// unit multiplicative factor.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{CentralTerm: true, Factor: 1}
}

// Model is the gravity model facade: a recursion kernel bound to a coefficient
// table, reference constants, truncation limits and composition policy. It is
// immutable after construction except for the values held by its Parameters,
// which are read fresh at every call.
type Model struct {
	kernel           Kernel
	table            *CoefficientTable
	mu, ae           float64
	muParam, aeParam *Parameter
	degree, order    int
	jacDeg, jacOrd   int
	central          bool
	factor           float64
}

// NewModel validates the configuration and builds a model. Truncation
// mistakes (order above degree, negative bounds, Jacobian above acceleration,
// table smaller than requested) are programmer errors and fail immediately;
// they are never clamped.
func NewModel(cfg ModelConfig) (*Model, error) {
	if cfg.Kernel == nil {
		return nil, fmt.Errorf("a recursion kernel is required")
	}
	if cfg.Table == nil {
		return nil, fmt.Errorf("a coefficient table is required")
	}
	if cfg.Degree < 0 || cfg.Order < 0 {
		return nil, fmt.Errorf("acceleration degree %d and order %d must be non-negative", cfg.Degree, cfg.Order)
	}
	if cfg.Order > cfg.Degree {
		return nil, fmt.Errorf("acceleration order %d exceeds degree %d", cfg.Order, cfg.Degree)
	}
	if cfg.JacobianDegree < 0 || cfg.JacobianOrder < 0 {
		return nil, fmt.Errorf("jacobian degree %d and order %d must be non-negative", cfg.JacobianDegree, cfg.JacobianOrder)
	}
	if cfg.JacobianOrder > cfg.JacobianDegree {
		return nil, fmt.Errorf("jacobian order %d exceeds jacobian degree %d", cfg.JacobianOrder, cfg.JacobianDegree)
	}
	if cfg.JacobianDegree > cfg.Degree {
		return nil, fmt.Errorf("jacobian degree %d exceeds acceleration degree %d", cfg.JacobianDegree, cfg.Degree)
	}
	if cfg.JacobianOrder > cfg.Order {
		return nil, fmt.Errorf("jacobian order %d exceeds acceleration order %d", cfg.JacobianOrder, cfg.Order)
	}
	if cfg.Degree > cfg.Table.Degree() {
		return nil, fmt.Errorf("acceleration degree %d exceeds table degree %d", cfg.Degree, cfg.Table.Degree())
	}
	if cfg.Order > cfg.Table.Order() {
		return nil, fmt.Errorf("acceleration order %d exceeds table order %d", cfg.Order, cfg.Table.Order())
	}

	table := cfg.Table
	var err error
	if cfg.TableNormalized != cfg.Kernel.RequiresNormalized() {
		if cfg.Kernel.RequiresNormalized() {
			table, err = Normalize(table)
		} else {
			table, err = Denormalize(table)
		}
		if err != nil {
			return nil, fmt.Errorf("converting coefficient convention for %s: %w", cfg.Kernel.Name(), err)
		}
	}

	return &Model{
		kernel:  cfg.Kernel,
		table:   table,
		mu:      cfg.Mu,
		ae:      cfg.Ae,
		muParam: cfg.MuParam,
		aeParam: cfg.AeParam,
		degree:  cfg.Degree,
		order:   cfg.Order,
		jacDeg:  cfg.JacobianDegree,
		jacOrd:  cfg.JacobianOrder,
		central: cfg.CentralTerm,
		factor:  cfg.Factor,
	}, nil
}

// Mu returns the current gravitational constant, reading the backing
// parameter when one is bound.
func (m *Model) Mu() float64 {
	if m.muParam != nil {
		return m.muParam.Value()
	}
	return m.mu
}

// Ae returns the current reference radius.
func (m *Model) Ae() float64 {
	if m.aeParam != nil {
		return m.aeParam.Value()
	}
	return m.ae
}

// Degree returns the acceleration truncation degree.
func (m *Model) Degree() int { return m.degree }

// Order returns the acceleration truncation order.
func (m *Model) Order() int { return m.order }

// Table exposes the coefficient table in the kernel's convention, for
// diagnostic and regression use.
func (m *Model) Table() *CoefficientTable { return m.table }

// MethodName returns the name of the bound recursion kernel.
func (m *Model) MethodName() string { return m.kernel.Name() }

// Acceleration computes the body-fixed acceleration at a body-fixed position,
// scaled by the multiplicative factor. Frame conversion is the caller's
// responsibility.
func (m *Model) Acceleration(pos Vector3) (Vector3, error) {
	acc, _, err := m.kernel.PotentialGradient(pos, m.table, m.Ae(), m.Mu(), m.degree, m.order, m.central)
	if err != nil {
		return Vector3{}, err
	}
	return acc.Scale(m.factor), nil
}

// Potential computes the scalar potential through the same recursion.
func (m *Model) Potential(pos Vector3) (float64, error) {
	_, pot, err := m.kernel.PotentialGradient(pos, m.table, m.Ae(), m.Mu(), m.degree, m.order, m.central)
	if err != nil {
		return 0, err
	}
	return pot * m.factor, nil
}

// AddDAccDState adds the factor-scaled position Jacobian into dAccDPos; callers
// accumulate contributions from several force models into the same matrices.
// dAccDVel is never touched: central-body gravity is conservative and carries
// no velocity dependence.
//
// A Jacobian truncation of (0,0) is the valid "deactivated at construction"
// state and contributes exactly zero without error. An active truncation on a
// kernel without analytic partials fails with ErrJacobianUnavailable.
func (m *Model) AddDAccDState(pos Vector3, dAccDPos, dAccDVel *mat.Dense) error {
	_ = dAccDVel
	if m.jacDeg == 0 && m.jacOrd == 0 {
		return nil
	}
	jk, ok := m.kernel.(JacobianKernel)
	if !ok {
		return fmt.Errorf("%s method: %w", m.kernel.Name(), ErrJacobianUnavailable)
	}
	jac, err := jk.Jacobian(pos, m.table, m.Ae(), m.Mu(), m.jacDeg, m.jacOrd, m.central)
	if err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dAccDPos.Set(i, j, dAccDPos.At(i, j)+m.factor*jac.At(i, j))
		}
	}
	return nil
}

// AddDAccDParam adds the factor-scaled derivative of the acceleration with
// respect to mu or ae into out. The parameter must be reference-identical to
// one the model owns; a different Parameter carrying the same name and value
// is rejected with ErrUnsupportedParameter.
func (m *Model) AddDAccDParam(pos Vector3, param *Parameter, out *[3]float64) error {
	switch {
	case param != nil && param == m.muParam:
		// The whole expansion is linear in mu.
		acc, err := m.Acceleration(pos)
		if err != nil {
			return err
		}
		mu := m.Mu()
		if mu == 0 {
			return fmt.Errorf("mu is zero, derivative undefined")
		}
		out[0] += acc.X / mu
		out[1] += acc.Y / mu
		out[2] += acc.Z / mu
		return nil
	case param != nil && param == m.aeParam:
		grad, err := m.kernel.AeGradient(pos, m.table, m.Ae(), m.Mu(), m.degree, m.order)
		if err != nil {
			return err
		}
		out[0] += m.factor * grad.X
		out[1] += m.factor * grad.Y
		out[2] += m.factor * grad.Z
		return nil
	}
	name := "<nil>"
	if param != nil {
		name = param.Name()
	}
	return fmt.Errorf("parameter %q: %w", name, ErrUnsupportedParameter)
}

// Parameters returns exactly the Parameter instances the model owns: zero, one
// or two entries depending on how it was constructed.
func (m *Model) Parameters() []*Parameter {
	var out []*Parameter
	if m.muParam != nil {
		out = append(out, m.muParam)
	}
	if m.aeParam != nil {
		out = append(out, m.aeParam)
	}
	return out
}
