// Package dataset loads and saves observation matrices for huginn.
//
// Datasets are plain CSV files: one row per record, one column per
// feature, all cells numeric. An optional header row of column names is
// detected automatically on load.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrRaggedData indicates rows with differing column counts.
	ErrRaggedData = errors.New("ragged csv data")
	// ErrBadCell indicates a non-numeric cell in the data body.
	ErrBadCell = errors.New("non-numeric cell")
	// ErrEmptyData indicates a file with no data rows.
	ErrEmptyData = errors.New("no data rows")
)

// LoadCSV reads a numeric matrix from a CSV file.
//
// If every cell of the first row parses as a number, the file is treated
// as headerless and the returned header slice is nil. Otherwise the first
// row becomes the header and the remaining rows form the matrix.
func LoadCSV(path string) (*mat.Dense, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
			return nil, nil, fmt.Errorf("reading %s: %w", path, ErrRaggedData)
		}
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", path, ErrEmptyData)
	}

	var header []string
	body := records
	if !numericRow(records[0]) {
		header = records[0]
		body = records[1:]
	}
	if len(body) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", path, ErrEmptyData)
	}

	rows, cols := len(body), len(body[0])
	data := make([]float64, 0, rows*cols)
	for i, record := range body {
		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d column %d (%q): %w", i, j, cell, ErrBadCell)
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(rows, cols, data), header, nil
}

// SaveCSV writes a matrix to a CSV file, with an optional header row.
// A nil header writes data rows only.
func SaveCSV(path string, m mat.Matrix, header []string) error {
	rows, cols := m.Dims()
	if header != nil && len(header) != cols {
		return fmt.Errorf("header has %d names for %d columns: %w", len(header), cols, ErrRaggedData)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if header != nil {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	record := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			record[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

func numericRow(record []string) bool {
	for _, cell := range record {
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return false
		}
	}
	return len(record) > 0
}
