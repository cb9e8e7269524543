// Package categorical builds contingency tables and runs the chi-square test
// of independence.
package categorical

import (
	"math"
	"sort"

	"statbench/domain/core"
	"statbench/domain/stats"
	"statbench/internal/analysis/distributions"
	"statbench/internal/dataset"
)

// residualThreshold flags cells whose standardized residual exceeds it in magnitude.
const residualThreshold = 2.0

// BuildTable cross-tabulates two equal-length label vectors. Categories are
// sorted lexicographically and every (row, col) pair gets a count, zero included.
func BuildTable(a, b []string) (*stats.ContingencyTable, error) {
	if len(a) != len(b) {
		return nil, core.NewInvalidConfigError("contingency table", "variables must have equal length")
	}
	rows := distinct(a)
	cols := distinct(b)
	rowIdx := index(rows)
	colIdx := index(cols)

	t := &stats.ContingencyTable{
		RowCategories: rows,
		ColCategories: cols,
		Counts:        make([][]int, len(rows)),
		RowTotals:     make([]int, len(rows)),
		ColTotals:     make([]int, len(cols)),
	}
	for i := range t.Counts {
		t.Counts[i] = make([]int, len(cols))
	}
	for k := range a {
		i, j := rowIdx[a[k]], colIdx[b[k]]
		t.Counts[i][j]++
		t.RowTotals[i]++
		t.ColTotals[j]++
		t.Total++
	}
	return t, nil
}

// BuildTableFromRaw coerces raw values to labels first; null and empty values
// become stats.MissingLabel.
func BuildTableFromRaw(a, b []any) (*stats.ContingencyTable, error) {
	return BuildTable(dataset.CategoryLabels(a), dataset.CategoryLabels(b))
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func index(values []string) map[string]int {
	m := make(map[string]int, len(values))
	for i, v := range values {
		m[v] = i
	}
	return m
}

// Expected returns E_ij = R_i·C_j / N for every cell.
func Expected(t *stats.ContingencyTable) [][]float64 {
	out := make([][]float64, len(t.RowTotals))
	for i := range out {
		out[i] = make([]float64, len(t.ColTotals))
		for j := range out[i] {
			if t.Total > 0 {
				out[i][j] = float64(t.RowTotals[i]) * float64(t.ColTotals[j]) / float64(t.Total)
			}
		}
	}
	return out
}

// ChiSquare tests independence of the table's two variables with
// χ² = Σ(O-E)²/E and df = (r-1)(c-1). EffectSize is Cramér's V.
func ChiSquare(t *stats.ContingencyTable, alpha float64) (*stats.ChiSquareResult, error) {
	if err := stats.ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	r, c := t.Dims()
	if r < 2 || c < 2 {
		return nil, core.NewInsufficientDataError("chi-square categories", min(r, c), 2)
	}

	expected := Expected(t)
	residuals := make([][]float64, r)
	var deviations []stats.CellDeviation
	chi2 := 0.0
	low := 0
	for i := 0; i < r; i++ {
		residuals[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			e := expected[i][j]
			if e == 0 {
				return nil, core.NewDegeneracyError("chi-square", "expected frequency is zero")
			}
			if e < 5 {
				low++
			}
			o := float64(t.Counts[i][j])
			chi2 += (o - e) * (o - e) / e
			res := (o - e) / math.Sqrt(e)
			residuals[i][j] = res
			if math.Abs(res) > residualThreshold {
				deviations = append(deviations, stats.CellDeviation{
					Row:      t.RowCategories[i],
					Col:      t.ColCategories[j],
					Observed: t.Counts[i][j],
					Expected: e,
					Residual: res,
				})
			}
		}
	}

	df := float64((r - 1) * (c - 1))
	v := math.Sqrt(chi2 / (float64(t.Total) * float64(min(r, c)-1)))

	out := &stats.ChiSquareResult{
		TestResult:       stats.NewTestResult(chi2, distributions.ChiSquareSurvival(chi2, df), alpha),
		Table:            t,
		Expected:         expected,
		Residuals:        residuals,
		Deviations:       deviations,
		CramersV:         math.Min(1, v),
		LowExpectedShare: float64(low) / float64(r*c),
	}
	out.DegreesOfFreedom = df
	out.EffectSize = out.CramersV
	return out, nil
}
