// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Robust Wavelet Regression for Irregularly Sampled Time Series
// Class: 02-613 at Caregie Mellon University

package lmt

import "errors"

// Errors returned by the estimation core. They are wrapped with context,
// so match them with errors.Is.
var (
	// Degenerate input
	ErrDegenerateTimeRange = errors.New("lmt: all observation times are equal")
	ErrPriorLength         = errors.New("lmt: prior vector shorter than numCoeffs-1")
	ErrPriorScale          = errors.New("lmt: prior precision scale must be > 0")
	ErrDimension           = errors.New("lmt: inconsistent dimensions")
	ErrNonFinite           = errors.New("lmt: input contains NaN or Inf")
	ErrZeroWeights         = errors.New("lmt: all weights are zero")
	ErrInvalidWeight       = errors.New("lmt: weights must be finite and nonnegative")

	// Numerical failure
	ErrSolveFailed     = errors.New("lmt: weighted Gram matrix is not positive definite")
	ErrDegenerateScale = errors.New("lmt: residual scale is zero or not finite")
)
