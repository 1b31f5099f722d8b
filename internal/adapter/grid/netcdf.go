package grid

import (
	"fmt"

	"github.com/fhs/go-netcdf/netcdf"
)

// NetCDF layout produced by cmd/grid-generator: 1D coordinate variables
// radius/latitude/longitude, 3D sample variables potential and acc_x/y/z
// dimensioned (radius, latitude, longitude), and a scalar mu variable.
const (
	radiusVarName    = "radius"
	latVarName       = "latitude"
	lonVarName       = "longitude"
	potentialVarName = "potential"
	muVarName        = "mu"
)

var accVarNames = [3]string{"acc_x", "acc_y", "acc_z"}

// LoadSpherical reads a spherical sample grid from a NetCDF file.
func LoadSpherical(path string) (*SphericalGrid, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	data := SphericalGridData{}
	if data.RadiusM, err = readAxis(nc, radiusVarName); err != nil {
		return nil, err
	}
	if data.LatDeg, err = readAxis(nc, latVarName); err != nil {
		return nil, err
	}
	if data.LonDeg, err = readAxis(nc, lonVarName); err != nil {
		return nil, err
	}

	nr, nlat, nlon := len(data.RadiusM), len(data.LatDeg), len(data.LonDeg)
	if data.Pot, err = read3D(nc, potentialVarName, nr, nlat, nlon); err != nil {
		return nil, err
	}
	for c, name := range accVarNames {
		if data.Acc[c], err = read3D(nc, name, nr, nlat, nlon); err != nil {
			return nil, err
		}
	}

	muVar, err := nc.Var(muVarName)
	if err != nil {
		return nil, fmt.Errorf("mu variable not found: %w", err)
	}
	mu := make([]float64, 1)
	if err := muVar.ReadFloat64s(mu); err != nil {
		return nil, fmt.Errorf("failed to read mu: %w", err)
	}
	data.Mu = mu[0]

	return NewSphericalGrid(data)
}

// readAxis reads a 1D float64 coordinate variable.
func readAxis(nc netcdf.Dataset, name string) ([]float64, error) {
	v, err := nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("coordinate variable %s not found: %w", name, err)
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions of %s: %w", name, err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D coordinate %s, got %dD", name, len(dims))
	}
	length, err := dims[0].Len()
	if err != nil {
		return nil, err
	}
	return readFloat64s(v, int(length), name)
}

// read3D reads a (radius, latitude, longitude) sample variable.
func read3D(nc netcdf.Dataset, name string, nr, nlat, nlon int) ([][][]float64, error) {
	v, err := nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("sample variable %s not found: %w", name, err)
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions of %s: %w", name, err)
	}
	if len(dims) != 3 {
		return nil, fmt.Errorf("expected 3D samples in %s, got %dD", name, len(dims))
	}
	want := [3]int{nr, nlat, nlon}
	for i, d := range dims {
		n, err := d.Len()
		if err != nil {
			return nil, err
		}
		if int(n) != want[i] {
			return nil, fmt.Errorf("dimension %d of %s is %d, expected %d", i, name, n, want[i])
		}
	}

	flat, err := readFloat64s(v, nr*nlat*nlon, name)
	if err != nil {
		return nil, err
	}
	out := make([][][]float64, nr)
	for i := 0; i < nr; i++ {
		out[i] = make([][]float64, nlat)
		for j := 0; j < nlat; j++ {
			offset := (i*nlat + j) * nlon
			out[i][j] = flat[offset : offset+nlon]
		}
	}
	return out, nil
}

// readFloat64s reads a variable stored as DOUBLE or FLOAT.
func readFloat64s(v netcdf.Var, length int, name string) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get type of %s: %w", name, err)
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, length)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, length)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		out := make([]float64, length)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type for %s: %v", name, t)
	}
}
