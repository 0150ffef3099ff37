// Package vector provides float64 vector math operations for huginn.
//
// This package consolidates the vector and column-statistics calculations
// used throughout the codebase. Use these functions instead of implementing
// your own to ensure consistency and correctness.
//
// Main Functions:
//   - Sum, Mean, Dot, Norm: scalar reductions over a vector
//   - Sub, SubInPlace, AddInPlace, Scale: elementwise arithmetic
//   - ColumnMeans: per-column mean of a row-major matrix buffer
//   - CosineSimilarity: angle-based similarity with zero-vector guard
//
// All functions delegate to github.com/viterin/vek, which dispatches to
// AVX2/NEON SIMD where available and falls back to optimized pure Go.
package vector

import (
	"math"

	"github.com/viterin/vek"
)

// Sum returns the sum of all elements of v. Returns 0 for an empty vector.
func Sum(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return vek.Sum(v)
}

// Mean returns the arithmetic mean of v. Returns 0 for an empty vector.
func Mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return vek.Mean(v)
}

// Dot computes the dot product of two float64 vectors.
//
// Requirements:
//   - Both vectors must have the same length
//   - Returns 0 if vectors are empty or have different lengths
func Dot(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return vek.Dot(a, b)
}

// Norm returns the Euclidean (L2) norm of v. Returns 0 for an empty vector.
func Norm(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return vek.Norm(v)
}

// Sub returns a new vector holding a - b elementwise.
// Returns nil if the lengths differ.
func Sub(a, b []float64) []float64 {
	if len(a) != len(b) || len(a) == 0 {
		return nil
	}
	return vek.Sub(a, b)
}

// SubInPlace subtracts b from a elementwise, modifying a.
// No-op if the lengths differ.
func SubInPlace(a, b []float64) {
	if len(a) != len(b) || len(a) == 0 {
		return
	}
	vek.Sub_Inplace(a, b)
}

// AddInPlace adds b to a elementwise, modifying a.
// No-op if the lengths differ.
func AddInPlace(a, b []float64) {
	if len(a) != len(b) || len(a) == 0 {
		return
	}
	vek.Add_Inplace(a, b)
}

// Scale returns a new vector holding v scaled by s.
func Scale(v []float64, s float64) []float64 {
	if len(v) == 0 {
		return nil
	}
	return vek.MulNumber(v, s)
}

// ColumnMeans computes the per-column mean of a row-major matrix buffer.
//
// data holds rows*cols values laid out row by row. The result has one
// entry per column. Returns nil when rows or cols is zero or the buffer
// is too short.
//
// Example:
//
//	data := []float64{1, 10, 3, 30} // two rows of two columns
//	means := vector.ColumnMeans(data, 2, 2) // [2, 20]
func ColumnMeans(data []float64, rows, cols int) []float64 {
	if rows <= 0 || cols <= 0 || len(data) < rows*cols {
		return nil
	}
	means := make([]float64, cols)
	for i := 0; i < rows; i++ {
		vek.Add_Inplace(means, data[i*cols:(i+1)*cols])
	}
	vek.DivNumber_Inplace(means, float64(rows))
	return means
}

// CosineSimilarity calculates cosine similarity between two float64 vectors.
// Returns value in range [-1, 1] where 1 = identical, 0 = orthogonal,
// -1 = opposite.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	// vek.CosineSimilarity returns NaN for zero vectors, we want 0
	result := vek.CosineSimilarity(a, b)
	if math.IsNaN(result) {
		return 0
	}
	return result
}
