package store

import "go.ngs.io/gravity-api/internal/domain"

// Coefficients bundles a loaded potential model: the Stokes coefficient table
// together with the reference constants it was published with.
type Coefficients struct {
	Name       string
	Table      *domain.CoefficientTable
	Mu         float64 // Gravitational constant in m³/s².
	Ae         float64 // Reference radius in m.
	Normalized bool    // Convention of the table entries.
	TideSystem string  // E.g., "tide_free", "zero_tide".
}

// CoefficientSource is the interface for loading potential coefficient models
type CoefficientSource interface {
	// Load loads the named model (e.g., "EGM96")
	Load(name string) (*Coefficients, error)

	// List returns the model names available from this source
	List() ([]string, error)
}
