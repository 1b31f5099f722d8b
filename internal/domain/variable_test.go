package domain

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"
)

func testEpoch() time.Time {
	return time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
}

// TestNewHarmonicVariations_Validation rejects terms outside the declared
// window.
func TestNewHarmonicVariations_Validation(t *testing.T) {
	epoch := testEpoch()

	if _, err := NewHarmonicVariations(epoch, 2, 3, nil); err == nil {
		t.Error("Expected error for order above degree")
	}
	if _, err := NewHarmonicVariations(epoch, -1, 0, nil); err == nil {
		t.Error("Expected error for negative degree")
	}

	terms := []CoefficientDrift{{N: 3, M: 0}}
	if _, err := NewHarmonicVariations(epoch, 2, 2, terms); err == nil {
		t.Error("Expected error for term outside the window")
	}
}

// TestHarmonicVariations_TrendAndHarmonics checks the correction model at
// characteristic elapsed times.
func TestHarmonicVariations_TrendAndHarmonics(t *testing.T) {
	terms := []CoefficientDrift{
		{N: 2, M: 0, TrendC: 1e-11, CosAnnualC: 2e-10, SinAnnualC: 3e-10, CosSemiC: 4e-10, SinSemiC: 5e-10, TrendS: -1e-11},
	}
	variations, err := NewHarmonicVariations(testEpoch(), 2, 2, terms)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// At one full year, both harmonics complete whole cycles.
	dc, ds, err := variations.Corrections(1.0, 2, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	wantC := 1e-11 + 2e-10 + 4e-10 // trend*1 + cos(2π) + cos(4π)
	if math.Abs(dc[2][0]-wantC) > 1e-24 {
		t.Errorf("dC(2,0) at 1 year: expected %.6e, got %.6e", wantC, dc[2][0])
	}
	if math.Abs(ds[2][0]-(-1e-11)) > 1e-24 {
		t.Errorf("dS(2,0) at 1 year: expected %.6e, got %.6e", -1e-11, ds[2][0])
	}

	// At half a year the annual cosine flips sign and the semiannual one is
	// back to a full cycle.
	dc, _, err = variations.Corrections(0.5, 2, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	wantC = 0.5e-11 - 2e-10 + 4e-10
	if math.Abs(dc[2][0]-wantC) > 1e-24 {
		t.Errorf("dC(2,0) at half a year: expected %.6e, got %.6e", wantC, dc[2][0])
	}

	// Corrections outside the requested window are dropped.
	dc, ds, err = variations.Corrections(1.0, 1, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for n := range dc {
		for m := range dc[n] {
			if dc[n][m] != 0 || ds[n][m] != 0 {
				t.Errorf("Correction (%d,%d) leaked outside the window", n, m)
			}
		}
	}

	if _, _, err := variations.Corrections(1.0, 3, 3); err == nil {
		t.Error("Expected error for window above the provider degree")
	}
}

func testVariableConfig(t *testing.T, provider VariableCoefficientsProvider) VariableModelConfig {
	t.Helper()
	cfg := DefaultVariableModelConfig()
	cfg.Table = testTable(t)
	cfg.TableNormalized = true
	cfg.Provider = provider
	cfg.Epoch = testEpoch()
	cfg.Mu = testMu
	cfg.Ae = testAe
	cfg.StaticDegree = 4
	cfg.StaticOrder = 4
	cfg.DynamicDegree = 2
	cfg.DynamicOrder = 2
	return cfg
}

// TestNewVariableModel_Validation rejects inconsistent truncation pairs.
func TestNewVariableModel_Validation(t *testing.T) {
	provider, err := NewHarmonicVariations(testEpoch(), 2, 2, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*VariableModelConfig)
	}{
		{"missing table", func(c *VariableModelConfig) { c.Table = nil }},
		{"missing provider", func(c *VariableModelConfig) { c.Provider = nil }},
		{"static order above degree", func(c *VariableModelConfig) { c.StaticDegree = 2; c.StaticOrder = 3 }},
		{"dynamic order above degree", func(c *VariableModelConfig) { c.DynamicDegree = 1; c.DynamicOrder = 2 }},
		{"static jacobian above acceleration", func(c *VariableModelConfig) { c.StaticJacobianDegree = 5; c.StaticJacobianOrder = 4 }},
		{"dynamic jacobian above acceleration", func(c *VariableModelConfig) { c.DynamicJacobianDegree = 3; c.DynamicJacobianOrder = 2 }},
		{"static degree above table", func(c *VariableModelConfig) { c.StaticDegree = 9; c.StaticOrder = 0 }},
	}
	for _, tt := range tests {
		cfg := testVariableConfig(t, provider)
		tt.modify(&cfg)
		if _, err := NewVariableModel(cfg); err == nil {
			t.Errorf("%s: expected construction error", tt.name)
		}
	}
}

// TestVariableModel_MatchesStaticAtEpoch checks that with trend-only drifts
// the combined field at the epoch equals the static model.
func TestVariableModel_MatchesStaticAtEpoch(t *testing.T) {
	terms := []CoefficientDrift{{N: 2, M: 0, TrendC: 1e-10}}
	provider, err := NewHarmonicVariations(testEpoch(), 2, 2, terms)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	varModel, err := NewVariableModel(testVariableConfig(t, provider))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	staticModel, err := NewModel(testModelConfig(t, BalminoKernel{}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	pos := testPosition()
	got, err := varModel.Acceleration(pos, testEpoch())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want, err := staticModel.Acceleration(pos)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Sub(want).Norm() > 1e-15*want.Norm() {
		t.Errorf("At the epoch: expected the static field %+v, got %+v", want, got)
	}

	gotPot, err := varModel.Potential(pos, testEpoch())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	wantPot, err := staticModel.Potential(pos)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(gotPot-wantPot) > 1e-15*math.Abs(wantPot) {
		t.Errorf("At the epoch: expected potential %.17e, got %.17e", wantPot, gotPot)
	}
}

// TestVariableModel_DriftShiftsField checks that a secular C20 drift shows up
// after a year, matching a static model built from shifted coefficients.
func TestVariableModel_DriftShiftsField(t *testing.T) {
	const trend = 1e-9
	terms := []CoefficientDrift{{N: 2, M: 0, TrendC: trend}}
	provider, err := NewHarmonicVariations(testEpoch(), 2, 2, terms)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	varModel, err := NewVariableModel(testVariableConfig(t, provider))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// A Julian year after the epoch.
	date := testEpoch().Add(time.Duration(365.25 * 24 * float64(time.Hour)))

	// Static reference with C20 shifted by one year of drift.
	base := testTable(t)
	c, err := base.CopyC(4, 4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s, err := base.CopyS(4, 4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	c[2][0] += trend
	shifted, err := NewCoefficientTable(c, s, 4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	cfg := testModelConfig(t, BalminoKernel{})
	cfg.Table = shifted
	staticModel, err := NewModel(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	pos := testPosition()
	got, err := varModel.Acceleration(pos, date)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want, err := staticModel.Acceleration(pos)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Sub(want).Norm() > 1e-12*want.Norm() {
		t.Errorf("One year of drift: expected %+v, got %+v", want, got)
	}
}

// TestVariableModel_Jacobian checks the deactivated state and an active
// truncation against the static facade.
func TestVariableModel_Jacobian(t *testing.T) {
	provider, err := NewHarmonicVariations(testEpoch(), 2, 2, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Both Jacobian pairs at zero: silent no-op.
	varModel, err := NewVariableModel(testVariableConfig(t, provider))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	pos := testPosition()
	dPos := mat.NewDense(3, 3, nil)
	if err := varModel.AddDAccDState(pos, testEpoch(), dPos, mat.NewDense(3, 3, nil)); err != nil {
		t.Fatalf("Deactivated Jacobian must not fail: %v", err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if dPos.At(i, j) != 0 {
				t.Fatal("Deactivated Jacobian contributed a non-zero entry")
			}
		}
	}

	// Active static truncation, empty provider: matches the static facade.
	cfg := testVariableConfig(t, provider)
	cfg.StaticJacobianDegree = 4
	cfg.StaticJacobianOrder = 4
	varModel, err = NewVariableModel(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := varModel.AddDAccDState(pos, testEpoch(), dPos, mat.NewDense(3, 3, nil)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	staticCfg := testModelConfig(t, BalminoKernel{})
	staticCfg.JacobianDegree = 4
	staticCfg.JacobianOrder = 4
	staticModel, err := NewModel(staticCfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := mat.NewDense(3, 3, nil)
	if err := staticModel.AddDAccDState(pos, want, mat.NewDense(3, 3, nil)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(dPos.At(i, j)-want.At(i, j)) > 1e-15*math.Abs(want.At(i, j))+1e-30 {
				t.Errorf("Jacobian (%d,%d): expected %.17e, got %.17e", i, j, want.At(i, j), dPos.At(i, j))
			}
		}
	}
}
