// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Robust Wavelet Regression for Irregularly Sampled Time Series
// Class: 02-613 at Caregie Mellon University

package main

import (
	"fmt"
	"math"
	"time"

	"rowavedt/lmt"
)

// Config holds everything the command line controls.
type Config struct {
	// Positional arguments
	BasisFile string
	BasisRows int
	BasisCols int
	DataFile  string
	DataRows  int // starting buffer size, the reader grows past it
	PriorFile string

	// Columns of DATAFILE, 0-based
	TimeCol  int
	ValueCol int

	// Model
	DF      float64 // t degrees of freedom
	KSmooth int     // dimension of the smooth basis
	MaxIter int
	Tol     float64

	// Data handling
	ID          string  // first field of the output; DATAFILE if empty
	MissingCode float64 // values equal to this are dropped
	MinObs      int

	// Time budget for both fits, 0 for none
	Timeout time.Duration

	Verbose bool
}

// DefaultConfig returns the command-line defaults.
func DefaultConfig() Config {
	return Config{
		TimeCol:     0,
		ValueCol:    1,
		DF:          lmt.DefaultDF,
		KSmooth:     8,
		MaxIter:     lmt.DefaultMaxIter,
		Tol:         lmt.DefaultTol,
		MissingCode: 99.999,
		MinObs:      10,
	}
}

// Normalize applies the same clamps the option parser always applied:
// df >= 1, negative value column -> 0, negative time column -> 1, smooth
// dimension rounded down to a power of two, and a default ID.
func (c *Config) Normalize() {
	c.DF = ClampDF(c.DF)
	if c.ValueCol < 0 {
		c.ValueCol = 0
	}
	if c.TimeCol < 0 {
		c.TimeCol = 1
	}
	c.KSmooth = SmoothDimension(c.KSmooth)
	if c.ID == "" {
		c.ID = c.DataFile
	}
}

// Validate checks the dimensions once the config has been normalized.
func (c *Config) Validate() error {
	if c.BasisRows < 1 || c.BasisCols < 1 {
		return fmt.Errorf("basis must be at least 1 x 1, got %d x %d", c.BasisRows, c.BasisCols)
	}
	if c.DataRows < 1 {
		return fmt.Errorf("DATAROWS must be > 0, got %d", c.DataRows)
	}
	if c.KSmooth < 1 || c.KSmooth > c.BasisCols {
		return fmt.Errorf("smooth dimension %d must be in [1, %d]", c.KSmooth, c.BasisCols)
	}
	if c.MaxIter < 1 {
		return fmt.Errorf("max-iter must be > 0, got %d", c.MaxIter)
	}
	if !(c.Tol > 0) {
		return fmt.Errorf("tol must be > 0, got %v", c.Tol)
	}
	if c.TimeCol == c.ValueCol {
		return fmt.Errorf("time and value columns are both %d", c.TimeCol)
	}
	return nil
}

// ClampDF keeps the degrees of freedom at 1 or above.
func ClampDF(df float64) float64 {
	if math.IsNaN(df) || df < 1 {
		return 1
	}
	return df
}

// SmoothDimension rounds k down to a power of two. Values below 1 become 1.
func SmoothDimension(k int) int {
	if k < 1 {
		return 1
	}
	p := 1
	for p*2 <= k {
		p *= 2
	}
	return p
}

// fitOptions returns the EM options for a k-coefficient model.
func (c *Config) fitOptions(k int) lmt.Options {
	return lmt.Options{
		DF:        c.DF,
		NumCoeffs: k,
		MaxIter:   c.MaxIter,
		Tol:       c.Tol,
	}
}
