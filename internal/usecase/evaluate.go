package usecase

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"go.ngs.io/gravity-api/internal/adapter/store"
	"go.ngs.io/gravity-api/internal/domain"
)

// EvaluationRequest encapsulates a gravity field evaluation request
type EvaluationRequest struct {
	// Model is the coefficient model name (e.g., "EGM96")
	Model string

	// Method selects the recursion kernel; empty means Balmino
	Method string

	// Body-fixed position in meters
	X, Y, Z float64

	// Acceleration truncation
	Degree, Order int

	// Jacobian truncation; both zero disables the Jacobian
	JacobianDegree, JacobianOrder int

	// CentralTerm includes the degree-0 point-mass term (default true)
	CentralTerm bool

	// Factor scales the acceleration and all partials (default 1)
	Factor float64

	// FiniteDifferenceStep, when positive and a Jacobian is requested,
	// cross-checks the analytic Jacobian with central differences of this
	// step in meters
	FiniteDifferenceStep float64
}

// DefaultEvaluationRequest returns a request with the central term enabled
// and a unit factor.
func DefaultEvaluationRequest() EvaluationRequest {
	return EvaluationRequest{CentralTerm: true, Factor: 1}
}

// Validate checks if the request is valid
func (r *EvaluationRequest) Validate() error {
	if r.Model == "" {
		return fmt.Errorf("model name must be provided")
	}
	if r.Degree < 0 || r.Order < 0 {
		return fmt.Errorf("degree and order must be non-negative")
	}
	if r.Order > r.Degree {
		return fmt.Errorf("order %d exceeds degree %d", r.Order, r.Degree)
	}
	if r.JacobianDegree < 0 || r.JacobianOrder < 0 {
		return fmt.Errorf("jacobian degree and order must be non-negative")
	}
	if r.JacobianOrder > r.JacobianDegree {
		return fmt.Errorf("jacobian order %d exceeds jacobian degree %d", r.JacobianOrder, r.JacobianDegree)
	}
	if r.JacobianDegree > r.Degree || r.JacobianOrder > r.Order {
		return fmt.Errorf("jacobian truncation (%d,%d) exceeds acceleration truncation (%d,%d)",
			r.JacobianDegree, r.JacobianOrder, r.Degree, r.Order)
	}
	if r.X == 0 && r.Y == 0 && r.Z == 0 {
		return fmt.Errorf("position must not be the origin")
	}
	if r.FiniteDifferenceStep < 0 {
		return fmt.Errorf("finite difference step must be non-negative")
	}
	return nil
}

// EvaluationResponse contains the field evaluation results
type EvaluationResponse struct {
	Model        string         `json:"model"`
	Method       string         `json:"method"`
	Degree       int            `json:"degree"`
	Order        int            `json:"order"`
	Mu           float64        `json:"mu"`
	Ae           float64        `json:"ae"`
	Acceleration [3]float64     `json:"acceleration_ms2"`
	Potential    float64        `json:"potential_m2s2"`
	Jacobian     *[3][3]float64 `json:"jacobian_s2,omitempty"`

	// FiniteDifferenceError is the max relative deviation between the
	// analytic and finite-difference Jacobian entries, when requested.
	FiniteDifferenceError *float64 `json:"finite_difference_error,omitempty"`
}

// ComparisonResponse contains per-method accelerations and their spread
type ComparisonResponse struct {
	Model        string                `json:"model"`
	Degree       int                   `json:"degree"`
	Order        int                   `json:"order"`
	Methods      map[string][3]float64 `json:"methods"`
	MaxRelSpread float64               `json:"max_relative_spread"`
}

// Evaluator orchestrates gravity field evaluation
type Evaluator struct {
	source store.CoefficientSource
}

// NewEvaluator creates a new evaluation use case
func NewEvaluator(source store.CoefficientSource) *Evaluator {
	return &Evaluator{source: source}
}

// Models lists the coefficient models available from the bound source.
func (e *Evaluator) Models() ([]string, error) {
	return e.source.List()
}

func (e *Evaluator) buildModel(req *EvaluationRequest, kernel domain.Kernel) (*domain.Model, *store.Coefficients, error) {
	coeffs, err := e.source.Load(req.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load model %s: %w", req.Model, err)
	}
	cfg := domain.DefaultModelConfig()
	cfg.Kernel = kernel
	cfg.Table = coeffs.Table
	cfg.TableNormalized = coeffs.Normalized
	cfg.Mu = coeffs.Mu
	cfg.Ae = coeffs.Ae
	cfg.Degree = req.Degree
	cfg.Order = req.Order
	cfg.JacobianDegree = req.JacobianDegree
	cfg.JacobianOrder = req.JacobianOrder
	cfg.CentralTerm = req.CentralTerm
	cfg.Factor = req.Factor
	model, err := domain.NewModel(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build model: %w", err)
	}
	return model, coeffs, nil
}

// Evaluate computes acceleration, potential and the optional Jacobian.
func (e *Evaluator) Evaluate(req *EvaluationRequest) (*EvaluationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	kernel, err := domain.KernelByName(req.Method)
	if err != nil {
		return nil, err
	}
	model, coeffs, err := e.buildModel(req, kernel)
	if err != nil {
		return nil, err
	}

	pos := domain.Vector3{X: req.X, Y: req.Y, Z: req.Z}
	acc, err := model.Acceleration(pos)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate acceleration: %w", err)
	}
	pot, err := model.Potential(pos)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate potential: %w", err)
	}

	resp := &EvaluationResponse{
		Model:        req.Model,
		Method:       kernel.Name(),
		Degree:       req.Degree,
		Order:        req.Order,
		Mu:           coeffs.Mu,
		Ae:           coeffs.Ae,
		Acceleration: [3]float64{acc.X, acc.Y, acc.Z},
		Potential:    pot,
	}

	if req.JacobianDegree > 0 || req.JacobianOrder > 0 {
		dAccDPos := mat.NewDense(3, 3, nil)
		dAccDVel := mat.NewDense(3, 3, nil)
		if err := model.AddDAccDState(pos, dAccDPos, dAccDVel); err != nil {
			return nil, fmt.Errorf("failed to evaluate jacobian: %w", err)
		}
		var jac [3][3]float64
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				jac[i][j] = dAccDPos.At(i, j)
			}
		}
		resp.Jacobian = &jac

		if req.FiniteDifferenceStep > 0 {
			fdErr, err := e.finiteDifferenceError(req, dAccDPos)
			if err != nil {
				return nil, err
			}
			resp.FiniteDifferenceError = &fdErr
		}
	}
	return resp, nil
}

// finiteDifferenceError validates the analytic Jacobian against central
// differences of the acceleration at the Jacobian truncation.
func (e *Evaluator) finiteDifferenceError(req *EvaluationRequest, analytic *mat.Dense) (float64, error) {
	fdReq := *req
	fdReq.Degree = req.JacobianDegree
	fdReq.Order = req.JacobianOrder
	kernel, err := domain.KernelByName(req.Method)
	if err != nil {
		return 0, err
	}
	model, _, err := e.buildModel(&fdReq, kernel)
	if err != nil {
		return 0, err
	}

	h := req.FiniteDifferenceStep
	fd := mat.NewDense(3, 3, nil)
	base := domain.Vector3{X: req.X, Y: req.Y, Z: req.Z}
	for j := 0; j < 3; j++ {
		step := domain.Vector3{}
		switch j {
		case 0:
			step.X = h
		case 1:
			step.Y = h
		case 2:
			step.Z = h
		}
		plus, err := model.Acceleration(base.Add(step))
		if err != nil {
			return 0, err
		}
		minus, err := model.Acceleration(base.Sub(step))
		if err != nil {
			return 0, err
		}
		diff := plus.Sub(minus).Scale(1 / (2 * h))
		fd.Set(0, j, diff.X)
		fd.Set(1, j, diff.Y)
		fd.Set(2, j, diff.Z)
	}

	var residual mat.Dense
	residual.Sub(analytic, fd)
	scale := mat.Norm(analytic, 2)
	if scale == 0 {
		return mat.Norm(&residual, 2), nil
	}
	return mat.Norm(&residual, 2) / scale, nil
}

// Compare evaluates the same truncation through all three kernels and
// reports the maximum pairwise relative spread of the accelerations.
func (e *Evaluator) Compare(req *EvaluationRequest) (*ComparisonResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	pos := domain.Vector3{X: req.X, Y: req.Y, Z: req.Z}
	methods := map[string][3]float64{}
	var accs []domain.Vector3
	for _, name := range []string{"cunningham", "droziner", "balmino"} {
		kernel, err := domain.KernelByName(name)
		if err != nil {
			return nil, err
		}
		model, _, err := e.buildModel(req, kernel)
		if err != nil {
			return nil, err
		}
		acc, err := model.Acceleration(pos)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		methods[name] = [3]float64{acc.X, acc.Y, acc.Z}
		accs = append(accs, acc)
	}

	var spread float64
	for i := 0; i < len(accs); i++ {
		for j := i + 1; j < len(accs); j++ {
			diff := accs[i].Sub(accs[j]).Norm()
			norm := math.Max(accs[i].Norm(), accs[j].Norm())
			if norm > 0 && diff/norm > spread {
				spread = diff / norm
			}
		}
	}

	return &ComparisonResponse{
		Model:        req.Model,
		Degree:       req.Degree,
		Order:        req.Order,
		Methods:      methods,
		MaxRelSpread: spread,
	}, nil
}
