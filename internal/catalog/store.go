package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"medbud/internal/domain"
)

// LoadError reports a fatal problem with the catalog or embedding inputs.
// The process must not serve queries after one.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog: load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Store is the in-memory, read-only medicine catalog: one record per row plus
// one embedding matrix per textual field, row-aligned with the records.
// All accessors are safe for concurrent use once loading is complete.
type Store struct {
	records  []domain.ProductRecord
	names    []string
	matrices map[domain.Field]*Matrix
}

// Load reads the catalog CSV. The header must name the five catalog columns;
// extra columns are ignored. Embeddings are attached separately with
// LoadEmbeddings or BuildEmbeddings.
func Load(csvPath string) (*Store, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, &LoadError{Path: csvPath, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, &LoadError{Path: csvPath, Err: fmt.Errorf("read header: %w", err)}
	}
	cols := make(map[domain.Field]int, len(header))
	for i, name := range header {
		cols[domain.Field(name)] = i
	}
	for _, field := range domain.Fields() {
		if _, ok := cols[field]; !ok {
			return nil, &LoadError{Path: csvPath, Err: fmt.Errorf("missing column %q", field)}
		}
	}

	s := &Store{matrices: make(map[domain.Field]*Matrix)}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &LoadError{Path: csvPath, Err: err}
		}
		rec := domain.ProductRecord{
			ProductName:      row[cols[domain.FieldProductName]],
			SaltComposition:  row[cols[domain.FieldSaltComposition]],
			MedicineDesc:     row[cols[domain.FieldMedicineDesc]],
			SideEffects:      row[cols[domain.FieldSideEffects]],
			DrugInteractions: row[cols[domain.FieldDrugInteractions]],
		}
		s.records = append(s.records, rec)
		s.names = append(s.names, rec.ProductName)
	}
	if len(s.records) == 0 {
		return nil, &LoadError{Path: csvPath, Err: errors.New("catalog has no rows")}
	}
	return s, nil
}

// Len returns the number of catalog records.
func (s *Store) Len() int { return len(s.records) }

// RecordAt returns the record at the given row index.
func (s *Store) RecordAt(index int) domain.ProductRecord {
	return s.records[index]
}

// ByName returns the first record whose product name equals name.
func (s *Store) ByName(name string) (domain.ProductRecord, bool) {
	for i, n := range s.names {
		if n == name {
			return s.records[i], true
		}
	}
	return domain.ProductRecord{}, false
}

// Sample returns a uniformly random record.
func (s *Store) Sample() domain.ProductRecord {
	return s.records[rand.IntN(len(s.records))]
}

// ProductNames returns all product names in row order. Callers must not
// mutate the returned slice.
func (s *Store) ProductNames() []string { return s.names }

// Matrix returns the embedding matrix for the given field, or nil when
// embeddings have not been attached.
func (s *Store) Matrix(field domain.Field) *Matrix {
	return s.matrices[field]
}
