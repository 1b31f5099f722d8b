// Package grid provides the gravity model backed by precomputed acceleration
// and potential samples, interpolated from a Cartesian cube or a spherical
// shell grid, with an analytic backup model outside the grid bounds.
package grid

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"go.ngs.io/gravity-api/internal/adapter/interp"
	"go.ngs.io/gravity-api/internal/domain"
)

// Interpolation selects how samples are blended inside a cell.
type Interpolation int

const (
	// Trilinear blends the eight corner values of the enclosing cell.
	Trilinear Interpolation = iota
	// Spline uses a cubic Catmull-Rom stencil of four nodes per axis.
	Spline
)

// BackupModel is the analytic model consulted for positions outside the grid
// bounding volume, typically a low-degree Balmino or Cunningham model.
type BackupModel interface {
	Acceleration(pos domain.Vector3) (domain.Vector3, error)
	Potential(pos domain.Vector3) (float64, error)
}

// SphericalGrid holds samples on a radius/latitude/longitude shell. Axes are
// strictly increasing; longitudes are degrees in [0, 360) and the grid is
// closed by a wrap column at construction so queries on either side of the
// seam address the same nodes.
type SphericalGrid struct {
	mu   float64
	accX *interp.Grid3D
	accY *interp.Grid3D
	accZ *interp.Grid3D
	pot  *interp.Grid3D
}

// CartesianGrid holds samples on a regular x/y/z cube.
type CartesianGrid struct {
	mu   float64
	accX *interp.Grid3D
	accY *interp.Grid3D
	accZ *interp.Grid3D
	pot  *interp.Grid3D
}

// SphericalGridData is the raw sample set a spherical grid is built from.
// Acc[c][i][j][k] and Pot[i][j][k] are indexed radius, latitude, longitude.
type SphericalGridData struct {
	Mu      float64
	RadiusM []float64
	LatDeg  []float64
	LonDeg  []float64
	Acc     [3][][][]float64
	Pot     [][][]float64
}

// NewSphericalGrid validates the sample set and closes the longitude seam.
func NewSphericalGrid(data SphericalGridData) (*SphericalGrid, error) {
	if data.Mu <= 0 {
		return nil, fmt.Errorf("grid mu must be positive, got %g", data.Mu)
	}
	for _, lon := range data.LonDeg {
		if lon < 0 || lon >= 360 {
			return nil, fmt.Errorf("grid longitudes must lie in [0, 360), got %g", lon)
		}
	}

	wrap := len(data.LonDeg) >= 2 && data.LonDeg[0] == 0
	build := func(v [][][]float64) (*interp.Grid3D, error) {
		values := v
		lon := data.LonDeg
		if wrap {
			// Duplicate the 0° column at 360° so the seam cell exists.
			lon = append(append([]float64(nil), data.LonDeg...), 360)
			values = make([][][]float64, len(v))
			for i := range v {
				values[i] = make([][]float64, len(v[i]))
				for j := range v[i] {
					values[i][j] = append(append([]float64(nil), v[i][j]...), v[i][j][0])
				}
			}
		}
		g := &interp.Grid3D{X: data.RadiusM, Y: data.LatDeg, Z: lon, Values: values}
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("invalid spherical grid: %w", err)
		}
		return g, nil
	}

	var err error
	out := &SphericalGrid{mu: data.Mu}
	if out.accX, err = build(data.Acc[0]); err != nil {
		return nil, err
	}
	if out.accY, err = build(data.Acc[1]); err != nil {
		return nil, err
	}
	if out.accZ, err = build(data.Acc[2]); err != nil {
		return nil, err
	}
	if out.pot, err = build(data.Pot); err != nil {
		return nil, err
	}
	return out, nil
}

// NewCartesianGrid validates a cube sample set sharing axes across components.
func NewCartesianGrid(mu float64, x, y, z []float64, acc [3][][][]float64, pot [][][]float64) (*CartesianGrid, error) {
	if mu <= 0 {
		return nil, fmt.Errorf("grid mu must be positive, got %g", mu)
	}
	out := &CartesianGrid{mu: mu}
	targets := []**interp.Grid3D{&out.accX, &out.accY, &out.accZ, &out.pot}
	sources := [][][][]float64{acc[0], acc[1], acc[2], pot}
	for i, v := range targets {
		g := &interp.Grid3D{X: x, Y: y, Z: z, Values: sources[i]}
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("invalid cartesian grid: %w", err)
		}
		*v = g
	}
	return out, nil
}

// Model sources acceleration and potential from a loaded grid, falling back
// to the analytic backup model outside the grid bounds. It carries no cache:
// every call is a pure function of the inputs.
type Model struct {
	sph           *SphericalGrid
	cart          *CartesianGrid
	interpolation Interpolation
	backup        BackupModel
}

// NewSphericalModel binds a spherical grid to an interpolation scheme and a
// backup model.
func NewSphericalModel(g *SphericalGrid, interpolation Interpolation, backup BackupModel) (*Model, error) {
	if g == nil {
		return nil, fmt.Errorf("a spherical grid is required")
	}
	if backup == nil {
		return nil, fmt.Errorf("a backup model is required for positions outside the grid")
	}
	return &Model{sph: g, interpolation: interpolation, backup: backup}, nil
}

// NewCartesianModel binds a Cartesian cube grid.
func NewCartesianModel(g *CartesianGrid, interpolation Interpolation, backup BackupModel) (*Model, error) {
	if g == nil {
		return nil, fmt.Errorf("a cartesian grid is required")
	}
	if backup == nil {
		return nil, fmt.Errorf("a backup model is required for positions outside the grid")
	}
	return &Model{cart: g, interpolation: interpolation, backup: backup}, nil
}

// Mu returns the gravitational constant embedded in the grid.
func (m *Model) Mu() float64 {
	if m.sph != nil {
		return m.sph.mu
	}
	return m.cart.mu
}

// coords maps a body-fixed position onto the grid axes.
func (m *Model) coords(pos domain.Vector3) (a, b, c float64, inside bool, err error) {
	if m.cart != nil {
		return pos.X, pos.Y, pos.Z, m.cart.pot.Contains(pos.X, pos.Y, pos.Z), nil
	}
	r := pos.Norm()
	if r == 0 {
		return 0, 0, 0, false, domain.ErrSingularGeometry
	}
	lat := radToDeg(math.Asin(pos.Z / r))
	lon := normalizeLon360(radToDeg(math.Atan2(pos.Y, pos.X)))
	return r, lat, lon, m.sph.pot.Contains(r, lat, lon), nil
}

func (m *Model) grids() []*interp.Grid3D {
	if m.cart != nil {
		return []*interp.Grid3D{m.cart.accX, m.cart.accY, m.cart.accZ}
	}
	return []*interp.Grid3D{m.sph.accX, m.sph.accY, m.sph.accZ}
}

func (m *Model) potGrid() *interp.Grid3D {
	if m.cart != nil {
		return m.cart.pot
	}
	return m.sph.pot
}

// Acceleration interpolates the sampled acceleration at a body-fixed position.
// The date tag keeps the signature uniform with the time-varying models; the
// stored samples themselves are static.
func (m *Model) Acceleration(pos domain.Vector3, _ time.Time) (domain.Vector3, error) {
	a, b, c, inside, err := m.coords(pos)
	if err != nil {
		return domain.Vector3{}, err
	}
	if !inside {
		return m.backup.Acceleration(pos)
	}
	vals, err := interp.InterpolateComponents(m.grids(), a, b, c, m.interpolation == Spline)
	if err != nil {
		return domain.Vector3{}, err
	}
	return domain.Vector3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// Potential interpolates the sampled potential.
func (m *Model) Potential(pos domain.Vector3, _ time.Time) (float64, error) {
	a, b, c, inside, err := m.coords(pos)
	if err != nil {
		return 0, err
	}
	if !inside {
		return m.backup.Potential(pos)
	}
	vals, err := interp.InterpolateComponents([]*interp.Grid3D{m.potGrid()}, a, b, c, m.interpolation == Spline)
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

// AddDAccDState always fails: grid models provide no analytic Jacobian.
func (m *Model) AddDAccDState(_ domain.Vector3, _ time.Time, _, _ *mat.Dense) error {
	return fmt.Errorf("grid model: %w", domain.ErrJacobianUnavailable)
}

// normalizeLon360 maps arbitrary degree longitudes into the [0, 360) range so
// that 190° and -170° address the same grid node.
func normalizeLon360(lon float64) float64 {
	lon = math.Mod(lon, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	return lon
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
