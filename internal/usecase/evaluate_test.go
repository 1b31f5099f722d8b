package usecase

import (
	"fmt"
	"math"
	"testing"

	"go.ngs.io/gravity-api/internal/adapter/store"
	"go.ngs.io/gravity-api/internal/domain"
)

// memorySource serves a fixed coefficient set from memory.
type memorySource struct {
	models map[string]*store.Coefficients
}

func (m *memorySource) Load(name string) (*store.Coefficients, error) {
	coeffs, ok := m.models[name]
	if !ok {
		return nil, fmt.Errorf("model %s not found", name)
	}
	return coeffs, nil
}

func (m *memorySource) List() ([]string, error) {
	names := make([]string, 0, len(m.models))
	for name := range m.models {
		names = append(names, name)
	}
	return names, nil
}

func testSource(t *testing.T) *memorySource {
	t.Helper()
	c := [][]float64{
		{1.0},
		{0.0, 0.0},
		{-4.84165371736e-4, -1.86987635955e-10, 2.43914352398e-6},
		{9.57254173792e-7, 2.02998882184e-6, 9.04627768605e-7, 7.21072657057e-7},
	}
	s := [][]float64{
		{0.0},
		{0.0, 0.0},
		{0.0, 1.19528012031e-9, -1.40016683654e-6},
		{0.0, 2.48513158716e-7, -6.19025944205e-7, 1.41435626958e-6},
	}
	tbl, err := domain.NewCoefficientTable(c, s, 3)
	if err != nil {
		t.Fatalf("Failed to build test table: %v", err)
	}
	return &memorySource{models: map[string]*store.Coefficients{
		"TESTMODEL": {
			Name:       "TESTMODEL",
			Table:      tbl,
			Mu:         3.986004415e14,
			Ae:         6378136.3,
			Normalized: true,
		},
	}}
}

func testRequest() EvaluationRequest {
	req := DefaultEvaluationRequest()
	req.Model = "TESTMODEL"
	req.X = 3.5e6
	req.Y = 4.2e6
	req.Z = 3.9e6
	req.Degree = 3
	req.Order = 3
	return req
}

// TestEvaluationRequest_Validate covers the request validation table.
func TestEvaluationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*EvaluationRequest)
		wantErr bool
	}{
		{"valid", func(r *EvaluationRequest) {}, false},
		{"missing model", func(r *EvaluationRequest) { r.Model = "" }, true},
		{"negative degree", func(r *EvaluationRequest) { r.Degree = -1 }, true},
		{"order above degree", func(r *EvaluationRequest) { r.Order = 4 }, true},
		{"negative jacobian order", func(r *EvaluationRequest) { r.JacobianOrder = -1 }, true},
		{"jacobian order above jacobian degree", func(r *EvaluationRequest) { r.JacobianDegree = 1; r.JacobianOrder = 2 }, true},
		{"jacobian above acceleration", func(r *EvaluationRequest) { r.JacobianDegree = 4; r.JacobianOrder = 3 }, true},
		{"origin position", func(r *EvaluationRequest) { r.X = 0; r.Y = 0; r.Z = 0 }, true},
		{"negative fd step", func(r *EvaluationRequest) { r.FiniteDifferenceStep = -1 }, true},
		{"jacobian within acceleration", func(r *EvaluationRequest) { r.JacobianDegree = 2; r.JacobianOrder = 2 }, false},
	}

	for _, tt := range tests {
		req := testRequest()
		tt.modify(&req)
		err := req.Validate()
		if tt.wantErr && err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}
}

// TestEvaluator_Evaluate runs a plain acceleration/potential evaluation.
func TestEvaluator_Evaluate(t *testing.T) {
	e := NewEvaluator(testSource(t))
	req := testRequest()

	resp, err := e.Evaluate(&req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if resp.Model != "TESTMODEL" || resp.Method != "balmino" {
		t.Errorf("Expected TESTMODEL/balmino, got %s/%s", resp.Model, resp.Method)
	}
	if resp.Jacobian != nil {
		t.Error("Expected no Jacobian without a Jacobian truncation")
	}

	// The acceleration magnitude at ~6.7e3 km is close to the point-mass
	// value; the harmonics perturb it at the 1e-3 level.
	pos := domain.Vector3{X: req.X, Y: req.Y, Z: req.Z}
	r := pos.Norm()
	norm := math.Sqrt(resp.Acceleration[0]*resp.Acceleration[0] +
		resp.Acceleration[1]*resp.Acceleration[1] +
		resp.Acceleration[2]*resp.Acceleration[2])
	newton := 3.986004415e14 / (r * r)
	if math.Abs(norm-newton)/newton > 1e-2 {
		t.Errorf("Acceleration magnitude %.6e too far from the Newtonian %.6e", norm, newton)
	}
	if resp.Potential <= 0 {
		t.Errorf("Expected a positive potential, got %.6e", resp.Potential)
	}
}

// TestEvaluator_EvaluateJacobian requests the analytic Jacobian with a
// finite-difference cross-check.
func TestEvaluator_EvaluateJacobian(t *testing.T) {
	e := NewEvaluator(testSource(t))
	req := testRequest()
	req.JacobianDegree = 3
	req.JacobianOrder = 3
	req.FiniteDifferenceStep = 1.0

	resp, err := e.Evaluate(&req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Jacobian == nil {
		t.Fatal("Expected a Jacobian in the response")
	}
	if resp.FiniteDifferenceError == nil {
		t.Fatal("Expected a finite-difference error in the response")
	}
	if *resp.FiniteDifferenceError > 1e-6 {
		t.Errorf("Finite-difference residual too large: %.3e", *resp.FiniteDifferenceError)
	}

	// Conservative field: symmetric Jacobian.
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if resp.Jacobian[i][j] != resp.Jacobian[j][i] {
				t.Errorf("Jacobian not symmetric at (%d,%d)", i, j)
			}
		}
	}
}

// TestEvaluator_EvaluateLowerJacobianTruncation uses a Jacobian truncation
// below the acceleration one.
func TestEvaluator_EvaluateLowerJacobianTruncation(t *testing.T) {
	e := NewEvaluator(testSource(t))
	req := testRequest()
	req.JacobianDegree = 2
	req.JacobianOrder = 2

	resp, err := e.Evaluate(&req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Jacobian == nil {
		t.Fatal("Expected a Jacobian in the response")
	}
}

// TestEvaluator_EvaluateErrors covers the failure paths.
func TestEvaluator_EvaluateErrors(t *testing.T) {
	e := NewEvaluator(testSource(t))

	req := testRequest()
	req.Model = "MISSING"
	if _, err := e.Evaluate(&req); err == nil {
		t.Error("Expected error for an unknown model")
	}

	req = testRequest()
	req.Method = "legendre"
	if _, err := e.Evaluate(&req); err == nil {
		t.Error("Expected error for an unknown method")
	}

	req = testRequest()
	req.Degree = 5
	req.Order = 5
	if _, err := e.Evaluate(&req); err == nil {
		t.Error("Expected error for a truncation above the table")
	}

	// Methods without analytic partials reject an active Jacobian truncation.
	req = testRequest()
	req.Method = "cunningham"
	req.JacobianDegree = 2
	req.JacobianOrder = 2
	if _, err := e.Evaluate(&req); err == nil {
		t.Error("Expected error for a Jacobian from the cunningham method")
	}
}

// TestEvaluator_Compare cross-checks the three methods on the same request.
func TestEvaluator_Compare(t *testing.T) {
	e := NewEvaluator(testSource(t))
	req := testRequest()

	resp, err := e.Compare(&req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(resp.Methods) != 3 {
		t.Fatalf("Expected 3 methods, got %d", len(resp.Methods))
	}
	for _, name := range []string{"balmino", "cunningham", "droziner"} {
		if _, ok := resp.Methods[name]; !ok {
			t.Errorf("Missing method %s in comparison", name)
		}
	}
	if resp.MaxRelSpread > 1e-9 {
		t.Errorf("Methods disagree beyond round-off: spread %.3e", resp.MaxRelSpread)
	}
}

// TestEvaluator_Models lists the bound source.
func TestEvaluator_Models(t *testing.T) {
	e := NewEvaluator(testSource(t))
	models, err := e.Models()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(models) != 1 || models[0] != "TESTMODEL" {
		t.Errorf("Expected [TESTMODEL], got %v", models)
	}
}
