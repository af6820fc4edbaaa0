// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Robust Wavelet Regression for Irregularly Sampled Time Series
// Class: 02-613 at Caregie Mellon University

// Package lmt fits a wavelet-basis regression with Student-t residuals and a
// Gaussian shrinkage prior on the high-resolution coefficients by EM.
package lmt

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// Defaults used when the corresponding Options field is left at zero.
const (
	DefaultDF      = 5.0
	DefaultMaxIter = 1000
	DefaultTol     = 1e-9
)

// Options controls a single fit.
type Options struct {
	// Degrees of freedom of the t residual distribution, clamped to >= 1
	DF float64

	// Number of basis columns to use (k). Full model: basisCols.
	NumCoeffs int

	// Upper bound on EM iterations
	MaxIter int

	// Relative change in log-posterior below which the loop stops
	Tol float64

	// Optional, receives per-iteration debug messages
	Logger logrus.FieldLogger
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.DF <= 0 {
		o.DF = DefaultDF
	}
	if o.DF < 1 {
		o.DF = 1
	}
	if o.MaxIter <= 0 {
		o.MaxIter = DefaultMaxIter
	}
	if o.Tol <= 0 {
		o.Tol = DefaultTol
	}
	return o
}

// Result holds the outcome of one EM fit.
type Result struct {
	Coefficients  []float64 // MAP coefficients, length k
	Scale         float64   // tau, the residual variance scale
	LogLikelihood float64   // unnormalized t log-likelihood of the observations
	LogPosterior  float64   // log-likelihood plus unnormalized log-prior
	Iterations    int       // number of completed E/M passes
	Converged     bool      // true if the tolerance was met before MaxIter
}

// Design is the augmented regression problem: n observation rows followed by
// k-1 prior pseudo-rows.
type Design struct {
	X *mat.Dense    // m x k
	Y *mat.VecDense // m
	N int           // observation rows
	K int           // coefficients
	M int           // n + k - 1
}

// emState is one iteration's worth of estimates. Each step builds a new one.
type emState struct {
	coef    *mat.VecDense
	resid   *mat.VecDense
	weights []float64
	tau     float64
	logLik  float64
	logPost float64
}

// Comparison holds the test statistics between the full and smooth models.
type Comparison struct {
	LLR float64 // 2 * (logLik_full - logLik_smooth)
	LPR float64 // logPost_full - logPost_smooth
}

// PairResult is the joined output of fitting both models.
type PairResult struct {
	Full   *Result
	Smooth *Result
	Comparison
}
