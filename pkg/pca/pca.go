// Package pca implements principal component analysis for huginn.
//
// A Reducer learns an orthonormal basis from an observation matrix, ranked
// by explained variance, and maps data into and out of the reduced
// subspace. The numerical pipeline is: mean-center, form the biased
// covariance matrix, decompose it into eigenvectors and eigenvalues,
// truncate to the requested number of components.
//
// The input matrix is never modified; Fit operates on an internal copy.
//
// Project and Inverse operate on the data exactly as given: Project does
// not subtract the fitted mean and Inverse does not add it back. Callers
// that want mean handling should use ProjectCentered and InverseCentered
// instead.
//
// Example:
//
//	r, err := pca.New(2)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if _, err := r.Fit(observations); err != nil {
//		log.Fatal(err)
//	}
//	reduced, err := r.ProjectCentered(observations)
//	if err != nil {
//		log.Fatal(err)
//	}
//	ratio, _ := r.ExplainedVariance()
//	fmt.Printf("kept %.1f%% of the variance\n", 100*ratio)
package pca

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/orneryd/huginn/pkg/math/vector"
)

var (
	// ErrInvalidConfig indicates a non-positive component count.
	ErrInvalidConfig = errors.New("invalid reducer configuration")
	// ErrDimensionMismatch indicates a shape conflict between the input
	// and the reducer's component count or fitted feature count.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrNotFitted indicates Project, Inverse or ExplainedVariance was
	// called before a successful Fit.
	ErrNotFitted = errors.New("reducer is not fitted")
	// ErrInvalidInput indicates a degenerate input matrix (zero rows or
	// zero columns).
	ErrInvalidInput = errors.New("invalid input matrix")
	// ErrDegenerateVariance indicates the fitted data carries no variance
	// at all, so no explained-variance ratio exists.
	ErrDegenerateVariance = errors.New("zero total variance")
	// ErrDecompositionFailed indicates the eigen/SVD factorization did
	// not converge. The reducer never returns NaN-filled results instead.
	ErrDecompositionFailed = errors.New("decomposition failed")
)

// Reducer computes and applies a PCA transform.
//
// A Reducer starts unfitted. Fit derives the mean vector, the orthonormal
// basis and the eigenvalue spectrum from an observation matrix; the three
// are replaced together on every successful Fit and a failed Fit leaves
// the previous fitted state untouched.
//
// A Reducer is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
type Reducer struct {
	components int
	dec        Decomposer

	// Fitted state. All three are set together by Fit.
	mean        []float64
	basis       *mat.Dense // n x n, columns are unit eigenvectors
	eigenvalues []float64  // descending, non-negative
	features    int
}

// New creates an unfitted Reducer that will keep the given number of
// principal components.
//
// The component count is validated against the feature count at Fit time,
// since the feature count is unknown until data arrives.
func New(components int) (*Reducer, error) {
	return NewWithDecomposer(components, EigenDecomposer{})
}

// NewWithDecomposer creates a Reducer using a specific decomposition
// backend. Most callers want New, which uses EigenDecomposer.
func NewWithDecomposer(components int, dec Decomposer) (*Reducer, error) {
	if components <= 0 {
		return nil, fmt.Errorf("component count must be positive, got %d: %w", components, ErrInvalidConfig)
	}
	if dec == nil {
		return nil, fmt.Errorf("decomposer must not be nil: %w", ErrInvalidConfig)
	}
	return &Reducer{components: components, dec: dec}, nil
}

// Restore rebuilds a fitted Reducer from previously exported state.
//
// basis must be the full n x n orthonormal basis with eigenvector columns,
// eigenvalues the matching descending spectrum and mean the per-feature
// mean of the original fit. Used by the model package to revive saved fits.
func Restore(components int, mean []float64, basis *mat.Dense, eigenvalues []float64) (*Reducer, error) {
	r, err := New(components)
	if err != nil {
		return nil, err
	}
	if basis == nil {
		return nil, fmt.Errorf("basis must not be nil: %w", ErrInvalidInput)
	}
	rows, cols := basis.Dims()
	if rows != cols {
		return nil, fmt.Errorf("basis must be square, got %dx%d: %w", rows, cols, ErrInvalidInput)
	}
	if len(mean) != rows || len(eigenvalues) != rows {
		return nil, fmt.Errorf("mean and eigenvalues must have %d entries: %w", rows, ErrDimensionMismatch)
	}
	if components > rows {
		return nil, fmt.Errorf("component count %d exceeds feature count %d: %w", components, rows, ErrDimensionMismatch)
	}
	for i, v := range eigenvalues {
		if v < 0 {
			return nil, fmt.Errorf("eigenvalue %d is negative: %w", i, ErrInvalidInput)
		}
		if i > 0 && eigenvalues[i-1] < v {
			return nil, fmt.Errorf("eigenvalues not sorted descending at %d: %w", i, ErrInvalidInput)
		}
	}
	r.mean = append([]float64(nil), mean...)
	r.basis = mat.DenseCopyOf(basis)
	r.eigenvalues = append([]float64(nil), eigenvalues...)
	r.features = rows
	return r, nil
}

// Fit learns the PCA transform from an m x n observation matrix, with
// rows as records and columns as features. Returns the Reducer itself so
// calls can be chained.
//
// The caller's matrix is left untouched; centering happens on a copy.
func (r *Reducer) Fit(x mat.Matrix) (*Reducer, error) {
	m, n := x.Dims()
	if m == 0 || n == 0 {
		return nil, fmt.Errorf("observation matrix is %dx%d: %w", m, n, ErrInvalidInput)
	}
	if r.components > n {
		return nil, fmt.Errorf("component count %d exceeds feature count %d: %w", r.components, n, ErrDimensionMismatch)
	}

	// Center a copy of the input. DenseCopyOf yields a tight row-major
	// buffer, so rows are contiguous stride-n slices.
	centered := mat.DenseCopyOf(x)
	raw := centered.RawMatrix()
	mean := vector.ColumnMeans(raw.Data, m, n)
	for i := 0; i < m; i++ {
		vector.SubInPlace(raw.Data[i*raw.Stride:i*raw.Stride+n], mean)
	}

	// Biased covariance: C = X'^T X' / m.
	var cov mat.Dense
	cov.Mul(centered.T(), centered)
	cov.Scale(1/float64(m), &cov)
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, cov.At(i, j))
		}
	}

	basis, eigenvalues, err := r.dec.DecomposeSymmetric(sym)
	if err != nil {
		return nil, err
	}

	// Replace fitted state only after the decomposition succeeded, so a
	// failed re-fit keeps the previous fit usable.
	r.mean = mean
	r.basis = basis
	r.eigenvalues = eigenvalues
	r.features = n
	return r, nil
}

// Project maps a k x n matrix onto the first p principal components,
// producing a k x p matrix.
//
// The fitted mean is NOT subtracted here; pass data that is already
// centered, or use ProjectCentered.
func (r *Reducer) Project(x mat.Matrix) (*mat.Dense, error) {
	if !r.IsFitted() {
		return nil, ErrNotFitted
	}
	_, n := x.Dims()
	if n != r.features {
		return nil, fmt.Errorf("input has %d columns, fitted on %d features: %w", n, r.features, ErrDimensionMismatch)
	}
	var out mat.Dense
	out.Mul(x, r.reducedBasis())
	return &out, nil
}

// ProjectCentered subtracts the fitted mean from every row of x and then
// projects, matching the centering applied during Fit. The caller's
// matrix is left untouched.
func (r *Reducer) ProjectCentered(x mat.Matrix) (*mat.Dense, error) {
	if !r.IsFitted() {
		return nil, ErrNotFitted
	}
	_, n := x.Dims()
	if n != r.features {
		return nil, fmt.Errorf("input has %d columns, fitted on %d features: %w", n, r.features, ErrDimensionMismatch)
	}
	centered := mat.DenseCopyOf(x)
	raw := centered.RawMatrix()
	rows, _ := centered.Dims()
	for i := 0; i < rows; i++ {
		vector.SubInPlace(raw.Data[i*raw.Stride:i*raw.Stride+n], r.mean)
	}
	return r.Project(centered)
}

// Inverse maps a k x p reduced matrix back to the original k x n feature
// space using the transpose of the reduced basis. Reconstruction is exact
// only when the component count equals the feature count; lossy otherwise.
//
// The fitted mean is NOT added back; use InverseCentered for that.
func (r *Reducer) Inverse(xr mat.Matrix) (*mat.Dense, error) {
	if !r.IsFitted() {
		return nil, ErrNotFitted
	}
	_, p := xr.Dims()
	if p != r.components {
		return nil, fmt.Errorf("input has %d columns, reducer keeps %d components: %w", p, r.components, ErrDimensionMismatch)
	}
	var out mat.Dense
	out.Mul(xr, r.reducedBasis().T())
	return &out, nil
}

// InverseCentered reconstructs like Inverse and then adds the fitted mean
// back to every row, returning data in the original coordinate frame.
func (r *Reducer) InverseCentered(xr mat.Matrix) (*mat.Dense, error) {
	out, err := r.Inverse(xr)
	if err != nil {
		return nil, err
	}
	raw := out.RawMatrix()
	rows, n := out.Dims()
	for i := 0; i < rows; i++ {
		vector.AddInPlace(raw.Data[i*raw.Stride:i*raw.Stride+n], r.mean)
	}
	return out, nil
}

// ExplainedVariance reports the fraction of total variance captured by
// the retained components, in [0, 1].
func (r *Reducer) ExplainedVariance() (float64, error) {
	if !r.IsFitted() {
		return 0, ErrNotFitted
	}
	total := vector.Sum(r.eigenvalues)
	if total == 0 {
		return 0, fmt.Errorf("fitted data has no variance: %w", ErrDegenerateVariance)
	}
	return vector.Sum(r.eigenvalues[:r.components]) / total, nil
}

// IsFitted reports whether a successful Fit has happened.
func (r *Reducer) IsFitted() bool {
	return r.basis != nil
}

// NumComponents returns the configured number of retained components.
func (r *Reducer) NumComponents() int {
	return r.components
}

// NumFeatures returns the feature count of the fitted data, or 0 before Fit.
func (r *Reducer) NumFeatures() int {
	return r.features
}

// Mean returns a copy of the fitted per-feature mean, or nil before Fit.
func (r *Reducer) Mean() []float64 {
	if r.mean == nil {
		return nil
	}
	return append([]float64(nil), r.mean...)
}

// Eigenvalues returns a copy of the descending eigenvalue spectrum, or
// nil before Fit.
func (r *Reducer) Eigenvalues() []float64 {
	if r.eigenvalues == nil {
		return nil
	}
	return append([]float64(nil), r.eigenvalues...)
}

// Components returns a copy of the full n x n basis matrix, eigenvector
// columns ordered by descending eigenvalue. Returns nil before Fit.
func (r *Reducer) Components() *mat.Dense {
	if r.basis == nil {
		return nil
	}
	return mat.DenseCopyOf(r.basis)
}

// reducedBasis returns the first p columns of the basis as a view.
func (r *Reducer) reducedBasis() mat.Matrix {
	return r.basis.Slice(0, r.features, 0, r.components)
}
