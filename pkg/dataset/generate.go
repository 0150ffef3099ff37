package dataset

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Random generates a rows x cols matrix of uniform values in [-1, 1].
// The same seed always produces the same matrix.
func Random(rows, cols int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64()*2 - 1
	}
	return mat.NewDense(rows, cols, data)
}

// Clustered generates a rows x cols matrix whose rows fall into the given
// number of natural clusters, plus a parallel cluster label per row.
// Centroids are uniform in [-1, 1] per coordinate; points scatter around
// them with Gaussian noise. The same seed always produces the same data.
//
// Clustered data exercises dimensionality reduction well: most variance
// concentrates along the directions separating the centroids.
func Clustered(rows, cols, clusters int, seed int64) (*mat.Dense, []int) {
	rng := rand.New(rand.NewSource(seed))

	centroids := make([][]float64, clusters)
	for i := range centroids {
		centroid := make([]float64, cols)
		for j := range centroid {
			centroid[j] = rng.Float64()*2 - 1
		}
		centroids[i] = centroid
	}

	const stdDev = 0.15
	pointsPerCluster := rows / clusters

	data := make([]float64, 0, rows*cols)
	labels := make([]int, rows)
	idx := 0
	for clusterID := 0; clusterID < clusters; clusterID++ {
		clusterSize := pointsPerCluster
		if clusterID == clusters-1 {
			clusterSize = rows - idx
		}
		for i := 0; i < clusterSize && idx < rows; i++ {
			for j := 0; j < cols; j++ {
				data = append(data, centroids[clusterID][j]+rng.NormFloat64()*stdDev)
			}
			labels[idx] = clusterID
			idx++
		}
	}
	return mat.NewDense(rows, cols, data), labels
}
