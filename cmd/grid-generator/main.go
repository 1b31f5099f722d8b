// Command grid-generator samples a spherical-harmonic field onto a regular
// (radius, latitude, longitude) grid and writes it as a NetCDF file suitable
// for the grid adapter.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/gravity-api/internal/adapter/store/icgem"
	"go.ngs.io/gravity-api/internal/domain"
)

// sampleGrid defines the radial and angular bounds and resolution.
type sampleGrid struct {
	RMin, RMax   float64 // meters
	NRadius      int
	LatMin       float64 // degrees
	LatMax       float64
	LonMin       float64 // degrees, [0, 360)
	LonMax       float64
	ResolutionDg float64
}

func main() {
	// Command line flags
	dataDir := flag.String("data", "./data", "Directory with ICGEM .gfc files")
	modelName := flag.String("model", "", "Coefficient file name (without .gfc)")
	outPath := flag.String("out", "./data/grid.nc", "Output NetCDF file")
	degree := flag.Int("degree", 30, "Truncation degree")
	order := flag.Int("order", 30, "Truncation order")
	rMin := flag.Float64("r-min", 6578137.0, "Minimum radius in meters")
	rMax := flag.Float64("r-max", 7378137.0, "Maximum radius in meters")
	nRadius := flag.Int("n-radius", 9, "Number of radial shells")
	latMin := flag.Float64("lat-min", -89.0, "Minimum latitude in degrees")
	latMax := flag.Float64("lat-max", 89.0, "Maximum latitude in degrees")
	lonMin := flag.Float64("lon-min", 0.0, "Minimum longitude in degrees")
	lonMax := flag.Float64("lon-max", 355.0, "Maximum longitude in degrees")
	resolution := flag.Float64("resolution", 5.0, "Angular resolution in degrees")

	flag.Parse()

	if *modelName == "" {
		log.Fatal("-model is required")
	}

	grid := sampleGrid{
		RMin:         *rMin,
		RMax:         *rMax,
		NRadius:      *nRadius,
		LatMin:       *latMin,
		LatMax:       *latMax,
		LonMin:       *lonMin,
		LonMax:       *lonMax,
		ResolutionDg: *resolution,
	}
	if grid.NRadius < 2 {
		log.Fatalf("need at least 2 radial shells, got %d", grid.NRadius)
	}

	// Load coefficients and build the evaluation model.
	coeffs, err := icgem.NewStore(*dataDir).Load(*modelName)
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}

	cfg := domain.DefaultModelConfig()
	cfg.Kernel = domain.BalminoKernel{}
	cfg.Table = coeffs.Table
	cfg.TableNormalized = coeffs.Normalized
	cfg.Mu = coeffs.Mu
	cfg.Ae = coeffs.Ae
	cfg.Degree = *degree
	cfg.Order = *order
	model, err := domain.NewModel(cfg)
	if err != nil {
		log.Fatalf("Failed to build model: %v", err)
	}

	log.Printf("Loaded %s (degree %d, order %d, mu=%.6e, ae=%.1f)",
		*modelName, coeffs.Table.Degree(), coeffs.Table.Order(), coeffs.Mu, coeffs.Ae)
	log.Printf("Sampling at truncation (%d, %d)", *degree, *order)
	log.Printf("Grid: r %.0f-%.0f m (%d shells), lat %.1f°-%.1f°, lon %.1f°-%.1f°, resolution %.2f°",
		grid.RMin, grid.RMax, grid.NRadius, grid.LatMin, grid.LatMax, grid.LonMin, grid.LonMax, grid.ResolutionDg)

	radius, lat, lon := axes(grid)
	pot, acc, err := sample(model, radius, lat, lon)
	if err != nil {
		log.Fatalf("Sampling failed: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	if err := writeNetCDF(*outPath, model.Mu(), radius, lat, lon, pot, acc); err != nil {
		log.Fatalf("Failed to write NetCDF: %v", err)
	}

	nSamples := len(radius) * len(lat) * len(lon)
	log.Printf("✓ Wrote %s (%d samples, ~%.1f MB)",
		*outPath, nSamples, float64(nSamples*4*8)/1024/1024)
}

// axes builds the three coordinate arrays.
func axes(grid sampleGrid) (radius, lat, lon []float64) {
	radius = make([]float64, grid.NRadius)
	step := (grid.RMax - grid.RMin) / float64(grid.NRadius-1)
	for i := range radius {
		radius[i] = grid.RMin + float64(i)*step
	}

	nLat := int((grid.LatMax-grid.LatMin)/grid.ResolutionDg) + 1
	lat = make([]float64, nLat)
	for i := range lat {
		lat[i] = grid.LatMin + float64(i)*grid.ResolutionDg
	}

	nLon := int((grid.LonMax-grid.LonMin)/grid.ResolutionDg) + 1
	lon = make([]float64, nLon)
	for i := range lon {
		lon[i] = grid.LonMin + float64(i)*grid.ResolutionDg
	}
	return radius, lat, lon
}

// sample evaluates potential and acceleration at every grid node. The
// returned slices are flattened in (radius, latitude, longitude) order.
func sample(model *domain.Model, radius, lat, lon []float64) (pot []float64, acc [3][]float64, err error) {
	nLat, nLon := len(lat), len(lon)
	total := len(radius) * nLat * nLon
	pot = make([]float64, total)
	for c := range acc {
		acc[c] = make([]float64, total)
	}

	for i, r := range radius {
		for j, la := range lat {
			sinLat := math.Sin(la * math.Pi / 180)
			cosLat := math.Cos(la * math.Pi / 180)
			for k, lo := range lon {
				pos := domain.Vector3{
					X: r * cosLat * math.Cos(lo*math.Pi/180),
					Y: r * cosLat * math.Sin(lo*math.Pi/180),
					Z: r * sinLat,
				}
				idx := (i*nLat+j)*nLon + k

				a, aerr := model.Acceleration(pos)
				if aerr != nil {
					return nil, acc, fmt.Errorf("acceleration at r=%.0f lat=%.1f lon=%.1f: %w", r, la, lo, aerr)
				}
				p, perr := model.Potential(pos)
				if perr != nil {
					return nil, acc, fmt.Errorf("potential at r=%.0f lat=%.1f lon=%.1f: %w", r, la, lo, perr)
				}

				pot[idx] = p
				acc[0][idx] = a.X
				acc[1][idx] = a.Y
				acc[2][idx] = a.Z
			}
		}
	}
	return pot, acc, nil
}

// writeNetCDF writes the sampled grid in the layout the grid adapter reads.
func writeNetCDF(path string, mu float64, radius, lat, lon, pot []float64, acc [3][]float64) error {
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer ds.Close()

	// Create dimensions.
	rDim, err := ds.AddDim("radius", uint64(len(radius)))
	if err != nil {
		return err
	}
	latDim, err := ds.AddDim("latitude", uint64(len(lat)))
	if err != nil {
		return err
	}
	lonDim, err := ds.AddDim("longitude", uint64(len(lon)))
	if err != nil {
		return err
	}

	// Create coordinate variables.
	for _, axis := range []struct {
		name   string
		dim    netcdf.Dim
		values []float64
	}{
		{"radius", rDim, radius},
		{"latitude", latDim, lat},
		{"longitude", lonDim, lon},
	} {
		v, err := ds.AddVar(axis.name, netcdf.DOUBLE, []netcdf.Dim{axis.dim})
		if err != nil {
			return err
		}
		if err := v.WriteFloat64s(axis.values); err != nil {
			return err
		}
	}

	// Create sample variables.
	sampleDims := []netcdf.Dim{rDim, latDim, lonDim}
	for _, sv := range []struct {
		name   string
		values []float64
	}{
		{"potential", pot},
		{"acc_x", acc[0]},
		{"acc_y", acc[1]},
		{"acc_z", acc[2]},
	} {
		v, err := ds.AddVar(sv.name, netcdf.DOUBLE, sampleDims)
		if err != nil {
			return err
		}
		if err := v.WriteFloat64s(sv.values); err != nil {
			return err
		}
	}

	// Scalar mu.
	muVar, err := ds.AddVar("mu", netcdf.DOUBLE, nil)
	if err != nil {
		return err
	}
	return muVar.WriteFloat64s([]float64{mu})
}
