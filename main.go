// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Robust Wavelet Regression for Irregularly Sampled Time Series
// Class: 02-613 at Caregie Mellon University

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rowavedt/lmt"
)

// rowavedt fits the Student-t wavelet model to one irregularly sampled
// series twice, with the full basis and with a smooth power-of-two prefix of
// it, and prints one line comparing the two:
//
//	ID nObs basisCols kSmooth df llr lpr scale coef_1 ... coef_basisCols
//
// llr is 2 * the difference of maximized log-likelihoods between the full and
// smooth models, lpr the difference of log-posteriors, scale the estimated
// residual scale of the full model and the coefficients are the MAP
// estimates of the full model.

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if err := newRootCmd(log, os.Stdout).ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Error("rowavedt failed")
		os.Exit(1)
	}
}

func newRootCmd(log *logrus.Logger, stdout io.Writer) *cobra.Command {
	cfg := DefaultConfig()

	cmd := &cobra.Command{
		Use:   "rowavedt [flags] BASISFILE BASISROWS BASISCOLS DATAFILE DATAROWS PRIORFILE",
		Short: "Compare full and smooth wavelet fits of an irregularly sampled series",
		Long: `Fits a wavelet-basis regression with Student-t residuals and a Gaussian
shrinkage prior on the high-resolution coefficients, once with all BASISCOLS
basis functions and once with the smooth (low-resolution) partial basis, and
prints a single space-delimited line with 8 + BASISCOLS entries:
ID, number of non-missing observations, BASISCOLS, smooth dimension, df,
2 * log-likelihood difference, log-posterior difference, estimated residual
scale of the full model, and the full model's coefficients.`,
		Args:          cobra.ExactArgs(6),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := parsePositional(&cfg, args); err != nil {
				return err
			}
			cfg.Normalize()
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			report, err := run(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			return report.WriteLine(stdout)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&cfg.ValueCol, "value-col", "c", cfg.ValueCol, "column number for values (0-based)")
	flags.IntVarP(&cfg.TimeCol, "time-col", "t", cfg.TimeCol, "column number for times (0-based)")
	flags.Float64VarP(&cfg.DF, "df", "d", cfg.DF, "degrees of freedom of the t residual distribution")
	flags.StringVarP(&cfg.ID, "id", "i", "", "ID used as the first output field (default DATAFILE)")
	flags.Float64VarP(&cfg.MissingCode, "missing", "m", cfg.MissingCode, "numeric code for missing values")
	flags.IntVarP(&cfg.MinObs, "min-obs", "n", cfg.MinObs, "minimum number of observations required")
	flags.IntVarP(&cfg.KSmooth, "smooth", "s", cfg.KSmooth, "dimension of the smooth partial basis (power of 2)")
	flags.IntVar(&cfg.MaxIter, "max-iter", cfg.MaxIter, "maximum number of EM iterations")
	flags.Float64Var(&cfg.Tol, "tol", cfg.Tol, "relative log-posterior change at which EM stops")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "time budget for both fits (0 for none)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "log EM iterations to stderr")

	return cmd
}

func parsePositional(cfg *Config, args []string) error {
	ints := []struct {
		pos int
		dst *int
	}{
		{1, &cfg.BasisRows},
		{2, &cfg.BasisCols},
		{4, &cfg.DataRows},
	}
	for _, a := range ints {
		v, err := strconv.Atoi(args[a.pos])
		if err != nil {
			return fmt.Errorf("argument %d (%q) is not an integer", a.pos+1, args[a.pos])
		}
		*a.dst = v
	}
	cfg.BasisFile = args[0]
	cfg.DataFile = args[3]
	cfg.PriorFile = args[5]
	return nil
}

// run loads the inputs, fits both models and builds the report.
func run(ctx context.Context, cfg Config, log logrus.FieldLogger) (Report, error) {
	basis, err := ReadMatrix(cfg.BasisFile, cfg.BasisRows, cfg.BasisCols)
	if err != nil {
		return Report{}, err
	}

	rawTimes, rawValues, err := LoadObservations(cfg.DataFile, cfg.DataRows, cfg.TimeCol, cfg.ValueCol)
	if err != nil {
		return Report{}, err
	}

	prior, err := LoadPrior(cfg.PriorFile, cfg.BasisCols-1)
	if err != nil {
		return Report{}, err
	}

	times, values, err := FilterMissing(rawTimes, rawValues, cfg.MissingCode, cfg.MinObs)
	if err != nil {
		return Report{}, err
	}

	log.WithFields(logrus.Fields{
		"id":        cfg.ID,
		"read":      len(rawValues),
		"valid":     len(values),
		"basisCols": cfg.BasisCols,
		"kSmooth":   cfg.KSmooth,
		"df":        cfg.DF,
	}).Debug("loaded inputs")

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	full := cfg.fitOptions(cfg.BasisCols)
	full.Logger = log.WithField("model", "full")
	smooth := cfg.fitOptions(cfg.KSmooth)
	smooth.Logger = log.WithField("model", "smooth")

	pair, err := lmt.FitPair(ctx, basis, times, values, prior, full, smooth)
	if err != nil {
		return Report{}, err
	}

	log.WithFields(logrus.Fields{
		"fullIter":        pair.Full.Iterations,
		"fullConverged":   pair.Full.Converged,
		"smoothIter":      pair.Smooth.Iterations,
		"smoothConverged": pair.Smooth.Converged,
		"llr":             pair.LLR,
		"lpr":             pair.LPR,
	}).Debug("fits done")

	return NewReport(cfg, len(values), pair), nil
}
