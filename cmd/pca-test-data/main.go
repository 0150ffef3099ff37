// PCA Test Data Generator for huginn
//
// This tool generates synthetic datasets for exercising the PCA pipeline.
//
// Usage:
//
//	go run cmd/pca-test-data/main.go [options]
//
// Options:
//
//	-mode       Generation mode: random, clusters (default: clusters)
//	-count      Number of rows to generate (default: 5000)
//	-dims       Number of feature columns (default: 16)
//	-clusters   Number of natural clusters for 'clusters' mode (default: 8)
//	-output     Output CSV path (default: ./data/pca-test.csv)
//	-labels     Also write a parallel label column file (clusters mode)
//	-seed       Random seed for reproducibility (default: 42)
//
// Examples:
//
//	# Generate 5000 random rows
//	go run cmd/pca-test-data/main.go -mode random -count 5000
//
//	# Generate 10000 rows in 20 natural clusters (best for PCA plots)
//	go run cmd/pca-test-data/main.go -mode clusters -count 10000 -clusters 20
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/orneryd/huginn/pkg/dataset"
)

func main() {
	mode := flag.String("mode", "clusters", "Generation mode: random, clusters")
	count := flag.Int("count", 5000, "Number of rows to generate")
	dims := flag.Int("dims", 16, "Number of feature columns")
	numClusters := flag.Int("clusters", 8, "Number of natural clusters (for clusters mode)")
	output := flag.String("output", "./data/pca-test.csv", "Output CSV path")
	labelsPath := flag.String("labels", "", "Optional label column output path (clusters mode)")
	seed := flag.Int64("seed", 42, "Random seed for reproducibility")
	flag.Parse()

	log.Printf("PCA Test Data Generator")
	log.Printf("   Mode: %s", *mode)
	log.Printf("   Seed: %d", *seed)
	log.Printf("   Count: %d", *count)
	log.Printf("   Dimensions: %d", *dims)

	var m *mat.Dense
	var labels []int
	switch *mode {
	case "random":
		log.Printf("Generating %d random rows...", *count)
		m = dataset.Random(*count, *dims, *seed)

	case "clusters":
		log.Printf("Generating %d rows in %d natural clusters...", *count, *numClusters)
		m, labels = dataset.Clustered(*count, *dims, *numClusters, *seed)

	default:
		log.Fatalf("Unknown mode: %s", *mode)
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		log.Fatalf("Creating output directory: %v", err)
	}
	if err := dataset.SaveCSV(*output, m, nil); err != nil {
		log.Fatalf("Writing dataset: %v", err)
	}
	log.Printf("Wrote %s", *output)

	if *labelsPath != "" && labels != nil {
		if err := writeLabels(*labelsPath, labels); err != nil {
			log.Fatalf("Writing labels: %v", err)
		}
		log.Printf("Wrote %s", *labelsPath)
	}
}

func writeLabels(path string, labels []int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, label := range labels {
		if err := w.Write([]string{fmt.Sprintf("Cluster%d", label)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
