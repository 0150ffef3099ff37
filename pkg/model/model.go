// Package model serializes fitted PCA reducers for huginn.
//
// A Model is the on-disk JSON representation of a fitted transform:
// the full basis as one row per principal axis, the per-feature mean,
// the eigenvalue spectrum and a little metadata. The layout matches what
// downstream inference clients consume (components + mean), extended
// with the spectrum so explained-variance reporting survives a reload.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/orneryd/huginn/pkg/pca"
)

// ErrNotFitted indicates an attempt to export an unfitted reducer.
var ErrNotFitted = errors.New("reducer is not fitted")

// Model is the serializable form of a fitted PCA transform.
//
// Components holds the full n x n basis with one row per principal axis,
// ordered by descending eigenvalue. NumComponents records how many of
// those axes the reducer keeps when projecting.
type Model struct {
	ID            string      `json:"id"`
	CreatedAt     time.Time   `json:"created_at"`
	NumComponents int         `json:"n_components"`
	NumFeatures   int         `json:"n_features"`
	Components    [][]float64 `json:"components"`
	Mean          []float64   `json:"mean"`
	Eigenvalues   []float64   `json:"eigenvalues"`
}

// FromReducer exports the fitted state of a reducer, assigning a fresh
// model ID and creation timestamp.
func FromReducer(r *pca.Reducer) (*Model, error) {
	if !r.IsFitted() {
		return nil, ErrNotFitted
	}
	n := r.NumFeatures()
	basis := r.Components()
	components := make([][]float64, n)
	for axis := 0; axis < n; axis++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = basis.At(j, axis) // column axis of U becomes row axis
		}
		components[axis] = row
	}
	return &Model{
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		NumComponents: r.NumComponents(),
		NumFeatures:   n,
		Components:    components,
		Mean:          r.Mean(),
		Eigenvalues:   r.Eigenvalues(),
	}, nil
}

// ToReducer rebuilds a fitted reducer from the model.
func (m *Model) ToReducer() (*pca.Reducer, error) {
	n := m.NumFeatures
	if n == 0 {
		n = len(m.Mean)
	}
	if len(m.Components) != n {
		return nil, fmt.Errorf("model has %d component rows for %d features: %w", len(m.Components), n, pca.ErrInvalidInput)
	}
	basis := mat.NewDense(n, n, nil)
	for axis, row := range m.Components {
		if len(row) != n {
			return nil, fmt.Errorf("component row %d has %d entries, want %d: %w", axis, len(row), n, pca.ErrInvalidInput)
		}
		for j := 0; j < n; j++ {
			basis.Set(j, axis, row[j])
		}
	}
	return pca.Restore(m.NumComponents, m.Mean, basis, m.Eigenvalues)
}

// Save writes the model as indented JSON.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Load reads a model written by Save.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &m, nil
}
