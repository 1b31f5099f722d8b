package interp

import (
	"fmt"
	"math"
	"sort"
)

// GridCell represents a cell in a regular 3D grid with eight corner values.
type GridCell struct {
	// Corner coordinates (forming a box).
	X0, X1 float64
	Y0, Y1 float64
	Z0, Z1 float64

	// Values at the eight corners, indexed V[i][j][k] for (Xi, Yj, Zk).
	V [2][2][2]float64
}

// TrilinearInterpolate blends the eight corner values of a cell
// Formula:
//
//	f(x,y,z) ≈ Σ w_i(t) w_j(u) w_k(v) · V[i][j][k]
//
// where t, u, v are the fractional cell coordinates and w_0(t) = 1-t,
// w_1(t) = t.
func TrilinearInterpolate(cell GridCell, x, y, z float64) (float64, error) {
	if cell.X1 <= cell.X0 || cell.Y1 <= cell.Y0 || cell.Z1 <= cell.Z0 {
		return 0, fmt.Errorf("invalid grid cell: upper bounds must exceed lower bounds")
	}

	// Check if point is within cell (with small tolerance for floating point).
	const epsilon = 1e-9
	if x < cell.X0-epsilon || x > cell.X1+epsilon {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid cell [%.6f, %.6f]", x, cell.X0, cell.X1)
	}
	if y < cell.Y0-epsilon || y > cell.Y1+epsilon {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid cell [%.6f, %.6f]", y, cell.Y0, cell.Y1)
	}
	if z < cell.Z0-epsilon || z > cell.Z1+epsilon {
		return 0, fmt.Errorf("z coordinate %.6f is outside grid cell [%.6f, %.6f]", z, cell.Z0, cell.Z1)
	}

	t := (x - cell.X0) / (cell.X1 - cell.X0)
	u := (y - cell.Y0) / (cell.Y1 - cell.Y0)
	v := (z - cell.Z0) / (cell.Z1 - cell.Z0)

	// Clamp to [0, 1] to handle edge cases with floating point precision.
	t = math.Max(0, math.Min(1, t))
	u = math.Max(0, math.Min(1, u))
	v = math.Max(0, math.Min(1, v))

	wt := [2]float64{1 - t, t}
	wu := [2]float64{1 - u, u}
	wv := [2]float64{1 - v, v}

	var result float64
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				result += wt[i] * wu[j] * wv[k] * cell.V[i][j][k]
			}
		}
	}
	return result, nil
}

// Grid3D represents a regular 3D grid for interpolation.
type Grid3D struct {
	X      []float64     // First axis (e.g., radius).
	Y      []float64     // Second axis (e.g., latitude).
	Z      []float64     // Third axis (e.g., longitude).
	Values [][][]float64 // Values[i][j][k] corresponds to (X[i], Y[j], Z[k]).
}

// Validate checks if the grid is valid.
func (g *Grid3D) Validate() error {
	for _, axis := range []struct {
		name   string
		coords []float64
	}{{"X", g.X}, {"Y", g.Y}, {"Z", g.Z}} {
		if len(axis.coords) < 2 {
			return fmt.Errorf("grid must have at least 2 %s coordinates", axis.name)
		}
		for i := 1; i < len(axis.coords); i++ {
			if axis.coords[i] <= axis.coords[i-1] {
				return fmt.Errorf("%s coordinates must be strictly increasing", axis.name)
			}
		}
	}
	if len(g.Values) != len(g.X) {
		return fmt.Errorf("number of value planes (%d) must match X coordinates (%d)", len(g.Values), len(g.X))
	}
	for i, plane := range g.Values {
		if len(plane) != len(g.Y) {
			return fmt.Errorf("plane %d has %d rows, expected %d", i, len(plane), len(g.Y))
		}
		for j, row := range plane {
			if len(row) != len(g.Z) {
				return fmt.Errorf("plane %d row %d has %d values, expected %d", i, j, len(row), len(g.Z))
			}
		}
	}
	return nil
}

// Contains reports whether a point lies inside the grid's bounding volume.
func (g *Grid3D) Contains(x, y, z float64) bool {
	return x >= g.X[0] && x <= g.X[len(g.X)-1] &&
		y >= g.Y[0] && y <= g.Y[len(g.Y)-1] &&
		z >= g.Z[0] && z <= g.Z[len(g.Z)-1]
}

// cellIndex locates the cell along one axis so that coords[i] <= c <= coords[i+1].
func cellIndex(coords []float64, c float64) (int, error) {
	if c < coords[0] || c > coords[len(coords)-1] {
		return 0, fmt.Errorf("coordinate %.6f is outside grid range [%.6f, %.6f]", c, coords[0], coords[len(coords)-1])
	}
	idx := sort.SearchFloat64s(coords, c)
	if idx > 0 {
		idx--
	}
	if idx > len(coords)-2 {
		idx = len(coords) - 2
	}
	return idx, nil
}

// InterpolateAt performs trilinear interpolation at a given point.
func (g *Grid3D) InterpolateAt(x, y, z float64) (float64, error) {
	xi, err := cellIndex(g.X, x)
	if err != nil {
		return 0, fmt.Errorf("x: %w", err)
	}
	yi, err := cellIndex(g.Y, y)
	if err != nil {
		return 0, fmt.Errorf("y: %w", err)
	}
	zi, err := cellIndex(g.Z, z)
	if err != nil {
		return 0, fmt.Errorf("z: %w", err)
	}

	cell := GridCell{
		X0: g.X[xi], X1: g.X[xi+1],
		Y0: g.Y[yi], Y1: g.Y[yi+1],
		Z0: g.Z[zi], Z1: g.Z[zi+1],
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				cell.V[i][j][k] = g.Values[xi+i][yi+j][zi+k]
			}
		}
	}
	return TrilinearInterpolate(cell, x, y, z)
}

// InterpolateCubicAt performs tricubic interpolation with a Catmull-Rom
// stencil of four nodes per axis, duplicating edge nodes where the stencil
// leaves the grid. At grid nodes the result reduces to the stored value.
func (g *Grid3D) InterpolateCubicAt(x, y, z float64) (float64, error) {
	xi, err := cellIndex(g.X, x)
	if err != nil {
		return 0, fmt.Errorf("x: %w", err)
	}
	yi, err := cellIndex(g.Y, y)
	if err != nil {
		return 0, fmt.Errorf("y: %w", err)
	}
	zi, err := cellIndex(g.Z, z)
	if err != nil {
		return 0, fmt.Errorf("z: %w", err)
	}

	t := (x - g.X[xi]) / (g.X[xi+1] - g.X[xi])
	u := (y - g.Y[yi]) / (g.Y[yi+1] - g.Y[yi])
	v := (z - g.Z[zi]) / (g.Z[zi+1] - g.Z[zi])

	clamp := func(i, n int) int {
		if i < 0 {
			return 0
		}
		if i > n-1 {
			return n - 1
		}
		return i
	}

	// Collapse axis by axis: z first, then y, then x.
	var px [4]float64
	for a := 0; a < 4; a++ {
		i := clamp(xi-1+a, len(g.X))
		var py [4]float64
		for b := 0; b < 4; b++ {
			j := clamp(yi-1+b, len(g.Y))
			var pz [4]float64
			for c := 0; c < 4; c++ {
				k := clamp(zi-1+c, len(g.Z))
				pz[c] = g.Values[i][j][k]
			}
			py[b] = catmullRom(pz, v)
		}
		px[a] = catmullRom(py, u)
	}
	return catmullRom(px, t), nil
}

// catmullRom evaluates the Catmull-Rom cubic through four uniformly spaced
// samples at fractional position t in [0,1] between p[1] and p[2].
func catmullRom(p [4]float64, t float64) float64 {
	return p[1] + 0.5*t*(p[2]-p[0]+t*(2*p[0]-5*p[1]+4*p[2]-p[3]+t*(3*(p[1]-p[2])+p[3]-p[0])))
}

// InterpolateComponents interpolates several grids sharing the same axes at
// the same point (e.g., the three acceleration components and the potential).
func InterpolateComponents(grids []*Grid3D, x, y, z float64, cubic bool) ([]float64, error) {
	out := make([]float64, len(grids))
	for i, grid := range grids {
		var (
			val float64
			err error
		)
		if cubic {
			val, err = grid.InterpolateCubicAt(x, y, z)
		} else {
			val, err = grid.InterpolateAt(x, y, z)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to interpolate component %d: %w", i, err)
		}
		out[i] = val
	}
	return out, nil
}
