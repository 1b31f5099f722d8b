package domain

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Time-variable gravity fields publish, next to the static Stokes
// coefficients, per-coefficient secular drifts and annual/semiannual harmonics.
// VariableCoefficientsProvider resolves those corrections for an elapsed time
// since the field epoch, in the normalized convention.
type VariableCoefficientsProvider interface {
	// Corrections returns triangular dC, dS windows of the requested degree
	// and order for an elapsed time in years.
	Corrections(elapsedYears float64, degree, order int) (dc, ds [][]float64, err error)
}

// CoefficientDrift holds the correction model of a single (n,m) coefficient:
//
//	ΔC(t) = Ċ·t + Cc1 cos(2πt) + Cs1 sin(2πt) + Cc2 cos(4πt) + Cs2 sin(4πt)
//
// with t in years since the epoch, and the same shape for S.
type CoefficientDrift struct {
	N, M                   int
	TrendC, TrendS         float64
	CosAnnualC, SinAnnualC float64
	CosAnnualS, SinAnnualS float64
	CosSemiC, SinSemiC     float64
	CosSemiS, SinSemiS     float64
}

// HarmonicVariations is the concrete provider backed by a list of drift terms.
type HarmonicVariations struct {
	epoch  time.Time
	degree int
	order  int
	terms  []CoefficientDrift
}

// NewHarmonicVariations validates the drift terms against the declared window.
func NewHarmonicVariations(epoch time.Time, degree, order int, terms []CoefficientDrift) (*HarmonicVariations, error) {
	if degree < 0 || order < 0 || order > degree {
		return nil, fmt.Errorf("invalid variation window degree %d order %d", degree, order)
	}
	for _, t := range terms {
		if t.N < 0 || t.M < 0 || t.M > t.N || t.N > degree || t.M > order {
			return nil, fmt.Errorf("drift term (%d,%d) outside window degree %d order %d", t.N, t.M, degree, order)
		}
	}
	return &HarmonicVariations{epoch: epoch, degree: degree, order: order, terms: terms}, nil
}

// Epoch returns the reference epoch of the variations.
func (h *HarmonicVariations) Epoch() time.Time { return h.epoch }

// Corrections implements VariableCoefficientsProvider.
func (h *HarmonicVariations) Corrections(elapsedYears float64, degree, order int) ([][]float64, [][]float64, error) {
	if degree < 0 || order < 0 || order > degree {
		return nil, nil, fmt.Errorf("invalid correction window degree %d order %d", degree, order)
	}
	if degree > h.degree {
		return nil, nil, fmt.Errorf("correction degree %d exceeds provider degree %d", degree, h.degree)
	}
	dc := make([][]float64, degree+1)
	ds := make([][]float64, degree+1)
	for n := 0; n <= degree; n++ {
		dc[n] = make([]float64, minInt(n, order)+1)
		ds[n] = make([]float64, minInt(n, order)+1)
	}

	annual := 2 * math.Pi * elapsedYears
	cosA, sinA := math.Cos(annual), math.Sin(annual)
	cosS, sinS := math.Cos(2*annual), math.Sin(2*annual)
	for _, t := range h.terms {
		if t.N > degree || t.M > minInt(t.N, order) {
			continue
		}
		dc[t.N][t.M] += t.TrendC*elapsedYears + t.CosAnnualC*cosA + t.SinAnnualC*sinA + t.CosSemiC*cosS + t.SinSemiC*sinS
		ds[t.N][t.M] += t.TrendS*elapsedYears + t.CosAnnualS*cosA + t.SinAnnualS*sinA + t.CosSemiS*cosS + t.SinSemiS*sinS
	}
	return dc, ds, nil
}

// VariableModelConfig configures a time-varying gravity model. The static and
// dynamic parts carry independent acceleration and Jacobian truncations, each
// obeying the same "Jacobian within acceleration" rule as the static facade.
type VariableModelConfig struct {
	// Table is the static reference table in the normalized convention.
	Table           *CoefficientTable
	TableNormalized bool

	Provider VariableCoefficientsProvider
	Epoch    time.Time

	Mu, Ae           float64
	MuParam, AeParam *Parameter

	StaticDegree, StaticOrder                 int
	StaticJacobianDegree, StaticJacobianOrder int

	DynamicDegree, DynamicOrder                 int
	DynamicJacobianDegree, DynamicJacobianOrder int

	CentralTerm bool
	Factor      float64
}

// DefaultVariableModelConfig mirrors DefaultModelConfig.
func DefaultVariableModelConfig() VariableModelConfig {
	return VariableModelConfig{CentralTerm: true, Factor: 1}
}

// VariableModel combines a static normalized table with time-indexed
// corrections and feeds the result to the Balmino kernel, the only one with
// analytic partials.
type VariableModel struct {
	cfg    VariableModelConfig
	table  *CoefficientTable
	kernel BalminoKernel
}

// NewVariableModel validates the four degree/order pairs and the table bounds.
func NewVariableModel(cfg VariableModelConfig) (*VariableModel, error) {
	if cfg.Table == nil {
		return nil, fmt.Errorf("a coefficient table is required")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("a variable coefficients provider is required")
	}
	pairs := []struct {
		name       string
		deg, ord   int
		jdeg, jord int
	}{
		{"static", cfg.StaticDegree, cfg.StaticOrder, cfg.StaticJacobianDegree, cfg.StaticJacobianOrder},
		{"dynamic", cfg.DynamicDegree, cfg.DynamicOrder, cfg.DynamicJacobianDegree, cfg.DynamicJacobianOrder},
	}
	for _, p := range pairs {
		if p.deg < 0 || p.ord < 0 || p.jdeg < 0 || p.jord < 0 {
			return nil, fmt.Errorf("%s part: negative degree or order", p.name)
		}
		if p.ord > p.deg {
			return nil, fmt.Errorf("%s part: order %d exceeds degree %d", p.name, p.ord, p.deg)
		}
		if p.jord > p.jdeg {
			return nil, fmt.Errorf("%s part: jacobian order %d exceeds jacobian degree %d", p.name, p.jord, p.jdeg)
		}
		if p.jdeg > p.deg || p.jord > p.ord {
			return nil, fmt.Errorf("%s part: jacobian truncation (%d,%d) exceeds acceleration truncation (%d,%d)",
				p.name, p.jdeg, p.jord, p.deg, p.ord)
		}
	}
	if cfg.StaticDegree > cfg.Table.Degree() {
		return nil, fmt.Errorf("static degree %d exceeds table degree %d", cfg.StaticDegree, cfg.Table.Degree())
	}

	table := cfg.Table
	var err error
	if !cfg.TableNormalized {
		table, err = Normalize(table)
		if err != nil {
			return nil, fmt.Errorf("normalizing static table: %w", err)
		}
	}
	return &VariableModel{cfg: cfg, table: table}, nil
}

// Mu returns the current gravitational constant.
func (m *VariableModel) Mu() float64 {
	if m.cfg.MuParam != nil {
		return m.cfg.MuParam.Value()
	}
	return m.cfg.Mu
}

// Ae returns the current reference radius.
func (m *VariableModel) Ae() float64 {
	if m.cfg.AeParam != nil {
		return m.cfg.AeParam.Value()
	}
	return m.cfg.Ae
}

// combinedTable resolves the corrections at the given date and adds them to
// the static window.
func (m *VariableModel) combinedTable(date time.Time, deg, ord, dynDeg, dynOrd int) (*CoefficientTable, int, int, error) {
	elapsed := date.Sub(m.cfg.Epoch).Hours() / (24 * 365.25)
	dc, ds, err := m.cfg.Provider.Corrections(elapsed, dynDeg, dynOrd)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("resolving variable corrections: %w", err)
	}

	totalDeg := maxInt(deg, dynDeg)
	totalOrd := maxInt(ord, dynOrd)
	c := make([][]float64, totalDeg+1)
	s := make([][]float64, totalDeg+1)
	for n := 0; n <= totalDeg; n++ {
		cols := minInt(n, totalOrd) + 1
		c[n] = make([]float64, cols)
		s[n] = make([]float64, cols)
		for mm := 0; mm < cols; mm++ {
			if n <= deg && mm <= ord {
				c[n][mm] = m.table.cAt(n, mm)
				s[n][mm] = m.table.sAt(n, mm)
			}
			if n <= dynDeg && mm <= minInt(n, dynOrd) {
				c[n][mm] += dc[n][mm]
				s[n][mm] += ds[n][mm]
			}
		}
	}
	tbl, err := NewCoefficientTable(c, s, totalOrd)
	if err != nil {
		return nil, 0, 0, err
	}
	return tbl, totalDeg, totalOrd, nil
}

// Acceleration evaluates the combined field at a body-fixed position and date.
func (m *VariableModel) Acceleration(pos Vector3, date time.Time) (Vector3, error) {
	tbl, deg, ord, err := m.combinedTable(date, m.cfg.StaticDegree, m.cfg.StaticOrder, m.cfg.DynamicDegree, m.cfg.DynamicOrder)
	if err != nil {
		return Vector3{}, err
	}
	acc, _, err := m.kernel.PotentialGradient(pos, tbl, m.Ae(), m.Mu(), deg, ord, m.cfg.CentralTerm)
	if err != nil {
		return Vector3{}, err
	}
	return acc.Scale(m.cfg.Factor), nil
}

// Potential evaluates the combined potential.
func (m *VariableModel) Potential(pos Vector3, date time.Time) (float64, error) {
	tbl, deg, ord, err := m.combinedTable(date, m.cfg.StaticDegree, m.cfg.StaticOrder, m.cfg.DynamicDegree, m.cfg.DynamicOrder)
	if err != nil {
		return 0, err
	}
	_, pot, err := m.kernel.PotentialGradient(pos, tbl, m.Ae(), m.Mu(), deg, ord, m.cfg.CentralTerm)
	if err != nil {
		return 0, err
	}
	return pot * m.cfg.Factor, nil
}

// AddDAccDState accumulates the position Jacobian at the Jacobian truncations
// of the two parts. Both pairs at zero is the silent deactivated state.
func (m *VariableModel) AddDAccDState(pos Vector3, date time.Time, dAccDPos, dAccDVel *mat.Dense) error {
	_ = dAccDVel
	if m.cfg.StaticJacobianDegree == 0 && m.cfg.StaticJacobianOrder == 0 &&
		m.cfg.DynamicJacobianDegree == 0 && m.cfg.DynamicJacobianOrder == 0 {
		return nil
	}
	tbl, deg, ord, err := m.combinedTable(date,
		m.cfg.StaticJacobianDegree, m.cfg.StaticJacobianOrder,
		m.cfg.DynamicJacobianDegree, m.cfg.DynamicJacobianOrder)
	if err != nil {
		return err
	}
	jac, err := m.kernel.Jacobian(pos, tbl, m.Ae(), m.Mu(), deg, ord, m.cfg.CentralTerm)
	if err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dAccDPos.Set(i, j, dAccDPos.At(i, j)+m.cfg.Factor*jac.At(i, j))
		}
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
