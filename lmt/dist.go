// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Robust Wavelet Regression for Irregularly Sampled Time Series
// Class: 02-613 at Caregie Mellon University

package lmt

import "math"

// NormalLogDensity returns the summed normal log-density of x without the
// -0.5*log(2*pi) constant. Only differences of these sums are meaningful.
func NormalLogDensity(x []float64, location, scale float64) float64 {
	logScale := math.Log(scale)

	logDensity := 0.0
	for _, v := range x {
		z := (v - location) / scale
		logDensity += -0.5*z*z - logScale
	}
	return logDensity
}

// StudentTLogDensity returns the summed t log-density of x with df degrees of
// freedom, omitting the Beta-function normalizing constant.
func StudentTLogDensity(x []float64, df, location, scale float64) float64 {
	logScale := math.Log(scale)
	c := -(df + 1) / 2

	logDensity := 0.0
	for _, v := range x {
		z := (v - location) / scale
		logDensity += c*math.Log1p(z*z/df) - logScale
	}
	return logDensity
}
