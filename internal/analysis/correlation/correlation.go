// Package correlation computes Pearson and Spearman coefficients and
// pairwise correlation matrices.
package correlation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"statbench/domain/core"
	"statbench/domain/stats"
	"statbench/internal/analysis/descriptive"
	"statbench/internal/analysis/distributions"
)

const minPairs = 3

// Pearson tests H0: ρ = 0 using t = r√((n-2)/(1-r²)) with df = n - 2.
// A perfect correlation (|r| = 1) reports p = 0.
func Pearson(x, y []float64, alpha float64) (*stats.CorrelationResult, error) {
	return correlate(stats.CorrelationPearson, x, y, alpha, "")
}

// Spearman is Pearson's r computed on ranks. An empty method ranks ties positionally.
func Spearman(x, y []float64, alpha float64, method stats.RankMethod) (*stats.CorrelationResult, error) {
	return correlate(stats.CorrelationSpearman, x, y, alpha, method)
}

// Compute dispatches on kind.
func Compute(kind stats.CorrelationMethod, x, y []float64, alpha float64) (*stats.CorrelationResult, error) {
	switch kind {
	case stats.CorrelationPearson, "":
		return Pearson(x, y, alpha)
	case stats.CorrelationSpearman:
		return Spearman(x, y, alpha, stats.RankPositional)
	}
	return nil, core.NewInvalidConfigError("method", fmt.Sprintf("unknown correlation method %q", kind))
}

func correlate(kind stats.CorrelationMethod, x, y []float64, alpha float64, method stats.RankMethod) (*stats.CorrelationResult, error) {
	if err := stats.ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	if len(x) != len(y) {
		return nil, core.NewInvalidConfigError(string(kind), "x and y must have equal length")
	}
	xs, ys := finitePairs(x, y)
	if len(xs) < minPairs {
		return nil, core.NewInsufficientDataError(string(kind)+" correlation", len(xs), minPairs)
	}
	if kind == stats.CorrelationSpearman {
		xs, ys = descriptive.Rank(xs, method), descriptive.Rank(ys, method)
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return nil, core.NewDegeneracyError(string(kind)+" correlation", "a variable has zero variance")
	}

	r := math.Max(-1, math.Min(1, stat.Correlation(xs, ys, nil)))
	n := len(xs)
	df := float64(n - 2)

	var t, p float64
	if math.Abs(r) >= 1 {
		// t is unbounded; report the coefficient itself and a zero p-value.
		t, p = r, 0
	} else {
		t = r * math.Sqrt(df/(1-r*r))
		p = distributions.TTwoTailedP(t, df)
	}

	res := &stats.CorrelationResult{
		TestResult:  stats.NewTestResult(t, p, alpha),
		Method:      kind,
		Coefficient: r,
		N:           n,
	}
	res.DegreesOfFreedom = df
	res.EffectSize = r
	return res, nil
}

func finitePairs(x, y []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// Matrix correlates every pair of columns. Each pair is truncated to the
// shorter column. The diagonal is 1; pairs that cannot be computed keep r = 0,
// p = 1 and Valid = false. Only an invalid alpha or method fails the call.
func Matrix(columns []stats.Column, kind stats.CorrelationMethod, alpha float64) (*stats.CorrelationMatrix, error) {
	if err := stats.ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	if kind == "" {
		kind = stats.CorrelationPearson
	}
	if kind != stats.CorrelationPearson && kind != stats.CorrelationSpearman {
		return nil, core.NewInvalidConfigError("method", fmt.Sprintf("unknown correlation method %q", kind))
	}
	k := len(columns)
	m := &stats.CorrelationMatrix{
		Method:       kind,
		Alpha:        alpha,
		Columns:      make([]string, k),
		Coefficients: square[float64](k),
		PValues:      square[float64](k),
		N:            square[int](k),
		Valid:        square[bool](k),
	}

	for i, c := range columns {
		m.Columns[i] = c.Name
		m.Coefficients[i][i] = 1
		m.PValues[i][i] = 0
		m.N[i][i] = len(descriptive.Clean(c.Values))
		m.Valid[i][i] = true
	}

	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			x, y := columns[i].Values, columns[j].Values
			n := min(len(x), len(y))

			r, p, valid := 0.0, 1.0, false
			res, err := Compute(kind, x[:n], y[:n], alpha)
			switch {
			case err == nil:
				r, p, valid = res.Coefficient, res.PValue, true
				n = res.N
			case !core.IsPreconditionError(err) || errors.Is(err, core.ErrInvalidConfiguration):
				return nil, err
			}

			m.Coefficients[i][j], m.Coefficients[j][i] = r, r
			m.PValues[i][j], m.PValues[j][i] = p, p
			m.N[i][j], m.N[j][i] = n, n
			m.Valid[i][j], m.Valid[j][i] = valid, valid
		}
	}
	return m, nil
}

func square[T any](k int) [][]T {
	out := make([][]T, k)
	for i := range out {
		out[i] = make([]T, k)
	}
	return out
}
