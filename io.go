// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Robust Wavelet Regression for Irregularly Sampled Time Series
// Class: 02-613 at Caregie Mellon University

package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Longest line the readers accept; a basis row with many columns can be long.
const maxLineBytes = 16 << 20

// splitFields splits a line on tabs, spaces and commas, dropping empty fields.
func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		switch r {
		case '\t', ' ', ',', '\r', '\n':
			return true
		}
		return false
	})
}

// scanRows calls fn with the fields of every data line of r. Comment lines
// (starting with '#') and blank lines are skipped. fn returns false to stop.
func scanRows(r io.Reader, fn func(fields []string) (bool, error)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields := splitFields(line)
		if len(fields) == 0 {
			continue
		}
		more, err := fn(fields)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return scanner.Err()
}

// ReadMatrix reads the first nRows data lines and first nCols fields of
// path into an nRows x nCols matrix.
func ReadMatrix(path string, nRows, nCols int) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := readMatrix(f, nRows, nCols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func readMatrix(r io.Reader, nRows, nCols int) (*mat.Dense, error) {
	data := make([]float64, nRows*nCols)
	row := 0

	err := scanRows(r, func(fields []string) (bool, error) {
		if len(fields) < nCols {
			return false, fmt.Errorf("row %d: expected %d columns, got %d", row+1, nCols, len(fields))
		}
		for j := 0; j < nCols; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return false, fmt.Errorf("parse float at row %d col %d (%q): %w", row+1, j+1, fields[j], err)
			}
			data[row*nCols+j] = v
		}
		row++
		return row < nRows, nil
	})
	if err != nil {
		return nil, err
	}
	if row < nRows {
		return nil, fmt.Errorf("expected %d rows, read %d", nRows, row)
	}
	return mat.NewDense(nRows, nCols, data), nil
}

// ReadColumns reads the given 0-based columns of every data line of path.
// startRows only sizes the initial buffers; they grow as needed. A missing or
// unparseable field is read as NaN, so the returned columns always have the
// same length.
func ReadColumns(path string, startRows int, cols ...int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	out, err := readColumns(f, startRows, 0, cols...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// readColumns stops after maxRows lines when maxRows > 0.
func readColumns(r io.Reader, startRows, maxRows int, cols ...int) ([][]float64, error) {
	if startRows < 0 {
		startRows = 0
	}
	out := make([][]float64, len(cols))
	for c := range out {
		out[c] = make([]float64, 0, startRows)
	}

	rows := 0
	err := scanRows(r, func(fields []string) (bool, error) {
		for c, col := range cols {
			v := math.NaN()
			if col < len(fields) {
				if parsed, err := strconv.ParseFloat(fields[col], 64); err == nil {
					v = parsed
				}
			}
			out[c] = append(out[c], v)
		}
		rows++
		return maxRows <= 0 || rows < maxRows, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadObservations reads the time and value columns of the data file. Both
// must be valid in the first row.
func LoadObservations(path string, startRows, timeCol, valueCol int) (times, values []float64, err error) {
	cols, err := ReadColumns(path, startRows, timeCol, valueCol)
	if err != nil {
		return nil, nil, err
	}
	times, values = cols[0], cols[1]

	if len(times) == 0 {
		return nil, nil, fmt.Errorf("no data rows in %s", path)
	}
	if math.IsNaN(times[0]) {
		return nil, nil, fmt.Errorf("%s: NaN at first time", path)
	}
	if math.IsNaN(values[0]) {
		return nil, nil, fmt.Errorf("%s: NaN at first observation", path)
	}
	return times, values, nil
}

// LoadPrior reads n prior precisions from the first column of path.
func LoadPrior(path string, n int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if n <= 0 {
		return []float64{}, nil
	}
	cols, err := readColumns(f, n, n, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	prior := cols[0]
	if len(prior) < n {
		return nil, fmt.Errorf("%s: expected %d prior entries, read %d", path, n, len(prior))
	}
	for i, v := range prior {
		if math.IsNaN(v) || v < 0 {
			return nil, fmt.Errorf("%s: prior entry %d is %v", path, i, v)
		}
	}
	return prior, nil
}

// FilterMissing keeps the observations whose value is not the missing code
// and whose time and value are not NaN. It fails when fewer than minObs
// remain.
func FilterMissing(times, values []float64, missingCode float64, minObs int) ([]float64, []float64, error) {
	if len(times) != len(values) {
		return nil, nil, fmt.Errorf("differing number of entries in time (%d) and data (%d) columns", len(times), len(values))
	}

	keptTimes := make([]float64, 0, len(values))
	keptValues := make([]float64, 0, len(values))
	for i, v := range values {
		if v == missingCode || math.IsNaN(v) || math.IsNaN(times[i]) {
			continue
		}
		keptTimes = append(keptTimes, times[i])
		keptValues = append(keptValues, v)
	}

	if len(keptValues) < minObs {
		return nil, nil, fmt.Errorf("read %d obs, minimum to process is %d", len(keptValues), minObs)
	}
	return keptTimes, keptValues, nil
}
