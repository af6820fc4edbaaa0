// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Robust Wavelet Regression for Irregularly Sampled Time Series
// Class: 02-613 at Caregie Mellon University

package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"rowavedt/lmt"
)

// Report is the single result record of one run.
type Report struct {
	ID        string
	NObs      int     // valid observations after filtering
	BasisCols int     // k of the full model
	KSmooth   int     // k of the smooth model
	DF        float64 // t degrees of freedom
	LLR       float64
	LPR       float64
	Scale     float64   // sqrt(tau) of the full model
	Coef      []float64 // full-model coefficients
}

// NewReport builds the record from a pair fit.
func NewReport(cfg Config, nObs int, pair *lmt.PairResult) Report {
	return Report{
		ID:        cfg.ID,
		NObs:      nObs,
		BasisCols: cfg.BasisCols,
		KSmooth:   cfg.KSmooth,
		DF:        cfg.DF,
		LLR:       pair.LLR,
		LPR:       pair.LPR,
		Scale:     math.Sqrt(pair.Full.Scale),
		Coef:      pair.Full.Coefficients,
	}
}

// formatG mimics C's %g.
func formatG(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// String returns the space-separated line:
// ID nObs basisCols kSmooth df llr lpr scale coef...
func (r Report) String() string {
	fields := []string{
		r.ID,
		strconv.Itoa(r.NObs),
		strconv.Itoa(r.BasisCols),
		strconv.Itoa(r.KSmooth),
		formatG(r.DF),
		formatG(r.LLR),
		formatG(r.LPR),
		formatG(r.Scale),
	}
	for _, c := range r.Coef {
		fields = append(fields, formatG(c))
	}
	return strings.Join(fields, " ")
}

// WriteLine writes the record followed by a newline.
func (r Report) WriteLine(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.String())
	return err
}
