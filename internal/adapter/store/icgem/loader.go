// Package icgem provides ICGEM ".gfc" gravity field coefficient loading.
package icgem

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.ngs.io/gravity-api/internal/adapter/store"
	"go.ngs.io/gravity-api/internal/domain"
)

// Store provides access to ICGEM coefficient files in a data directory.
type Store struct {
	dataDir string
}

// NewStore creates a new ICGEM-based coefficient store.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// List returns the model names available in the data directory.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory %s: %w", s.dataDir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".gfc") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	return names, nil
}

// Load implements store.CoefficientSource.
func (s *Store) Load(name string) (*store.Coefficients, error) {
	filename := filepath.Join(s.dataDir, name+".gfc")

	//nolint:gosec // G304: File path constructed from dataDir (config) and a validated model name.
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open ICGEM file for model %s: %w", name, err)
	}
	defer func() { _ = file.Close() }()

	return parse(file, name)
}

type header struct {
	mu        float64
	ae        float64
	maxDegree int
	norm      string
	tide      string
	hasMu     bool
	hasAe     bool
	hasDeg    bool
}

//nolint:gocyclo // Linear scan over the documented ICGEM header keys and data records.
func parse(r io.Reader, name string) (*store.Coefficients, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var hdr header
	inHead := true
	var c, s [][]float64

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		if inHead {
			switch fields[0] {
			case "begin_of_head":
				continue
			case "end_of_head":
				if err := hdr.validate(); err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				c, s = emptyTriangle(hdr.maxDegree)
				inHead = false
				continue
			case "earth_gravity_constant", "gravity_constant":
				v, err := parseFortranFloat(fields[1])
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid gravity constant: %w", lineNo, err)
				}
				hdr.mu, hdr.hasMu = v, true
			case "radius":
				v, err := parseFortranFloat(fields[1])
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid radius: %w", lineNo, err)
				}
				hdr.ae, hdr.hasAe = v, true
			case "max_degree":
				v, err := strconv.Atoi(fields[1])
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid max_degree: %w", lineNo, err)
				}
				hdr.maxDegree, hdr.hasDeg = v, true
			case "norm":
				hdr.norm = fields[1]
			case "tide_system":
				hdr.tide = fields[1]
			}
			continue
		}

		// Data records: gfc n m C S [sigma_C sigma_S].
		if fields[0] != "gfc" {
			continue
		}
		if len(fields) < 5 {
			return nil, fmt.Errorf("line %d: gfc record needs degree, order, C and S", lineNo)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid degree: %w", lineNo, err)
		}
		m, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid order: %w", lineNo, err)
		}
		if n < 0 || m < 0 || m > n || n > hdr.maxDegree {
			return nil, fmt.Errorf("line %d: coefficient (%d,%d) outside declared degree %d", lineNo, n, m, hdr.maxDegree)
		}
		cnm, err := parseFortranFloat(fields[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid C coefficient: %w", lineNo, err)
		}
		snm, err := parseFortranFloat(fields[4])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid S coefficient: %w", lineNo, err)
		}
		c[n][m] = cnm
		s[n][m] = snm
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ICGEM file: %w", err)
	}
	if inHead {
		return nil, fmt.Errorf("%s: missing end_of_head marker", name)
	}

	table, err := domain.NewCoefficientTable(c, s, hdr.maxDegree)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid coefficient table: %w", name, err)
	}
	return &store.Coefficients{
		Name:       name,
		Table:      table,
		Mu:         hdr.mu,
		Ae:         hdr.ae,
		Normalized: hdr.norm != "unnormalized",
		TideSystem: hdr.tide,
	}, nil
}

func (h *header) validate() error {
	if !h.hasMu {
		return fmt.Errorf("header is missing earth_gravity_constant")
	}
	if !h.hasAe {
		return fmt.Errorf("header is missing radius")
	}
	if !h.hasDeg {
		return fmt.Errorf("header is missing max_degree")
	}
	if h.maxDegree < 0 {
		return fmt.Errorf("max_degree must be non-negative, got %d", h.maxDegree)
	}
	return nil
}

// emptyTriangle allocates full triangular C/S arrays; the degree-0 cosine
// entry defaults to one so that files omitting the trivial central record
// still carry the point-mass term.
func emptyTriangle(degree int) ([][]float64, [][]float64) {
	c := make([][]float64, degree+1)
	s := make([][]float64, degree+1)
	for n := 0; n <= degree; n++ {
		c[n] = make([]float64, n+1)
		s[n] = make([]float64, n+1)
	}
	c[0][0] = 1
	return c, s
}

// parseFortranFloat accepts both C-style and Fortran-style exponents
// (1.23e-4, 1.23D-04, 1.23d-04), which ICGEM files mix freely.
func parseFortranFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.ReplaceAll(s, "D", "e"), "d", "e")
	return strconv.ParseFloat(s, 64)
}
