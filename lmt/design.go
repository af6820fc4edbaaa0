// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Robust Wavelet Regression for Irregularly Sampled Time Series
// Class: 02-613 at Caregie Mellon University

package lmt

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RescaleTimes maps times affinely onto [0, basisRows-1] using their observed
// min and max. The input is not modified.
func RescaleTimes(times []float64, basisRows int) ([]float64, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("no observation times: %w", ErrDimension)
	}
	if basisRows < 1 {
		return nil, fmt.Errorf("basis has %d rows: %w", basisRows, ErrDimension)
	}
	if !allFinite(times) {
		return nil, fmt.Errorf("times: %w", ErrNonFinite)
	}

	minTime, maxTime := floats.Min(times), floats.Max(times)
	span := maxTime - minTime
	if span <= 0 {
		return nil, fmt.Errorf("time range [%g, %g]: %w", minTime, maxTime, ErrDegenerateTimeRange)
	}

	scaled := make([]float64, len(times))
	for i, t := range times {
		scaled[i] = (t - minTime) / span * float64(basisRows-1)
	}
	return scaled, nil
}

// TimeBins snaps rescaled times to the nearest basis row, clamped to
// [0, basisRows-1].
func TimeBins(scaled []float64, basisRows int) []int {
	bins := make([]int, len(scaled))
	for i, t := range scaled {
		row := int(math.Floor(t + 0.5))
		if row < 0 {
			row = 0
		}
		if row > basisRows-1 {
			row = basisRows - 1
		}
		bins[i] = row
	}
	return bins
}

// AssembleDesign builds the augmented design for a k-coefficient model.
// Rows 0..n-1 are the basis rows picked by nearest time bin (first k
// columns), rows n..n+k-2 are an identity block shifted one column right so
// the prior never touches coefficient 0. The response is the observed values
// followed by k-1 zeros.
func AssembleDesign(basis mat.Matrix, times, values, prior []float64, k int) (*Design, error) {
	basisRows, basisCols := basis.Dims()
	n := len(values)

	if len(times) != n {
		return nil, fmt.Errorf("%d times but %d values: %w", len(times), n, ErrDimension)
	}
	if n == 0 {
		return nil, fmt.Errorf("no observations: %w", ErrDimension)
	}
	if k < 1 || k > basisCols {
		return nil, fmt.Errorf("numCoeffs %d outside [1, %d]: %w", k, basisCols, ErrDimension)
	}
	if len(prior) < k-1 {
		return nil, fmt.Errorf("prior has %d entries, need %d: %w", len(prior), k-1, ErrPriorLength)
	}
	if !allFinite(values) {
		return nil, fmt.Errorf("values: %w", ErrNonFinite)
	}

	scaled, err := RescaleTimes(times, basisRows)
	if err != nil {
		return nil, err
	}
	bins := TimeBins(scaled, basisRows)

	m := n + k - 1
	X := mat.NewDense(m, k, nil)
	Y := mat.NewVecDense(m, nil)

	// Observation rows
	for i, row := range bins {
		for j := 0; j < k; j++ {
			X.Set(i, j, basis.At(row, j))
		}
		Y.SetVec(i, values[i])
	}

	// Prior rows: identity without the first column, response 0
	for i := n; i < m; i++ {
		X.Set(i, i-n+1, 1)
	}

	return &Design{X: X, Y: Y, N: n, K: k, M: m}, nil
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
