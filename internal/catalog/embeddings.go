package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sbinet/npyio"

	"medbud/internal/domain"
)

// Matrix is a dense row-major (rows × cols) float64 matrix. Row i holds the
// embedding of catalog record i. Read-only after load.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// Row returns the i-th row. The returned slice aliases the matrix storage.
func (m *Matrix) Row(i int) []float64 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// LoadEmbeddings reads the five per-field NumPy arrays and attaches them to
// the store. Every matrix must have exactly one row per catalog record and a
// single shared dimension; any violation is a fatal LoadError.
func (s *Store) LoadEmbeddings(paths map[domain.Field]string) error {
	matrices := make(map[domain.Field]*Matrix, len(paths))
	dim := 0
	for _, field := range domain.Fields() {
		path, ok := paths[field]
		if !ok || path == "" {
			return &LoadError{Path: string(field), Err: fmt.Errorf("no embedding file configured for field %q", field)}
		}
		m, err := readNpy(path)
		if err != nil {
			return err
		}
		if m.Rows != len(s.records) {
			return &LoadError{Path: path, Err: fmt.Errorf("row count mismatch: %d embeddings for %d records", m.Rows, len(s.records))}
		}
		if dim == 0 {
			dim = m.Cols
		} else if m.Cols != dim {
			return &LoadError{Path: path, Err: fmt.Errorf("dimension mismatch: %d, want %d", m.Cols, dim)}
		}
		matrices[field] = m
	}
	s.matrices = matrices
	return nil
}

// BuildEmbeddings computes the five matrices by encoding every record field
// with the given encoder. The encoder must already be prepared.
func (s *Store) BuildEmbeddings(ctx context.Context, enc domain.Encoder) error {
	dim := enc.Dimension()
	if dim <= 0 {
		return &LoadError{Path: enc.Name(), Err: fmt.Errorf("encoder %q reports dimension %d", enc.Name(), dim)}
	}
	matrices := make(map[domain.Field]*Matrix, len(domain.Fields()))
	for _, field := range domain.Fields() {
		m := &Matrix{Rows: len(s.records), Cols: dim, Data: make([]float64, len(s.records)*dim)}
		for i, rec := range s.records {
			vec, err := enc.Encode(ctx, rec.Value(field))
			if err != nil {
				return &LoadError{Path: string(field), Err: fmt.Errorf("encode row %d: %w", i, err)}
			}
			if len(vec) != dim {
				return &LoadError{Path: string(field), Err: fmt.Errorf("encode row %d: got %d dims, want %d", i, len(vec), dim)}
			}
			copy(m.Row(i), vec)
		}
		matrices[field] = m
	}
	s.matrices = matrices
	return nil
}

func readNpy(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	shape := r.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("want a 2-D array, got shape %v", shape)}
	}
	if r.Header.Descr.Fortran {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("fortran-ordered arrays are not supported")}
	}
	rows, cols := shape[0], shape[1]

	m := &Matrix{Rows: rows, Cols: cols}
	switch {
	case strings.Contains(r.Header.Descr.Type, "f8"):
		if err := r.Read(&m.Data); err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
	case strings.Contains(r.Header.Descr.Type, "f4"):
		var data32 []float32
		if err := r.Read(&data32); err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		m.Data = make([]float64, len(data32))
		for i, v := range data32 {
			m.Data[i] = float64(v)
		}
	default:
		return nil, &LoadError{Path: path, Err: fmt.Errorf("unsupported dtype %q", r.Header.Descr.Type)}
	}
	if len(m.Data) != rows*cols {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("short array: %d values for shape %v", len(m.Data), shape)}
	}
	return m, nil
}
