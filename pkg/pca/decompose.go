package pca

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Decomposer factors a symmetric matrix C into an orthonormal eigenvector
// basis U and a non-negative eigenvalue vector S such that
// C = U * diag(S) * U^T, with S sorted descending and the columns of U
// matching the order of S.
//
// Implementations must be deterministic up to the sign of individual
// eigenvectors.
type Decomposer interface {
	DecomposeSymmetric(c *mat.SymDense) (*mat.Dense, []float64, error)
}

// EigenDecomposer factors via gonum's symmetric eigen-decomposition.
// This is the default backend.
type EigenDecomposer struct{}

// DecomposeSymmetric implements Decomposer.
func (EigenDecomposer) DecomposeSymmetric(c *mat.SymDense) (*mat.Dense, []float64, error) {
	var es mat.EigenSym
	if !es.Factorize(c, true) {
		return nil, nil, fmt.Errorf("symmetric eigen-decomposition did not converge: %w", ErrDecompositionFailed)
	}

	// gonum reports eigenvalues in ascending order; reverse values and
	// vector columns together to get the descending spectrum.
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	n := len(vals)
	basis := mat.NewDense(n, n, nil)
	eigenvalues := make([]float64, n)
	for j := 0; j < n; j++ {
		src := n - 1 - j
		v := vals[src]
		// Covariance matrices are positive semi-definite; tiny negative
		// values are rounding noise.
		if v < 0 {
			v = 0
		}
		eigenvalues[j] = v
		for i := 0; i < n; i++ {
			basis.Set(i, j, vecs.At(i, src))
		}
	}
	return basis, eigenvalues, nil
}

// SVDDecomposer factors via a full singular value decomposition of the
// symmetric matrix. For a positive semi-definite input the singular
// values equal the eigenvalues and the left singular vectors form the
// eigenvector basis, already sorted descending.
type SVDDecomposer struct{}

// DecomposeSymmetric implements Decomposer.
func (SVDDecomposer) DecomposeSymmetric(c *mat.SymDense) (*mat.Dense, []float64, error) {
	var svd mat.SVD
	if !svd.Factorize(c, mat.SVDFull) {
		return nil, nil, fmt.Errorf("singular value decomposition did not converge: %w", ErrDecompositionFailed)
	}
	var u mat.Dense
	svd.UTo(&u)
	return mat.DenseCopyOf(&u), svd.Values(nil), nil
}
