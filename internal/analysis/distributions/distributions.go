// Package distributions exposes the CDFs, tail probabilities and critical values
// every test in the engine shares. All functions are pure and clamp their output
// to [0, 1] (or ±Inf for inverse CDFs at the boundaries).
package distributions

import (
	"math"

	"github.com/aclements/go-moremath/mathx"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

func clamp01(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 0
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// NormalCDF is Φ(x) for the standard normal.
func NormalCDF(x float64) float64 {
	return clamp01(distuv.UnitNormal.CDF(x))
}

// NormalInverseCDF is the left inverse of NormalCDF.
// p <= 0 returns -Inf and p >= 1 returns +Inf.
func NormalInverseCDF(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return math.NaN()
	case p <= 0:
		return math.Inf(-1)
	case p >= 1:
		return math.Inf(1)
	}
	return distuv.UnitNormal.Quantile(p)
}

// ChiSquareCDF is P(X <= x) for X ~ χ²(df), the regularized lower incomplete gamma P(df/2, x/2).
func ChiSquareCDF(x, df float64) float64 {
	if df <= 0 || x <= 0 || math.IsNaN(x) {
		return 0
	}
	if math.IsInf(x, 1) {
		return 1
	}
	return clamp01(mathx.GammaInc(df/2, x/2))
}

// ChiSquareSurvival is P(X > x) for X ~ χ²(df). Computed directly from the
// complementary incomplete gamma so small tail probabilities keep their precision.
func ChiSquareSurvival(x, df float64) float64 {
	if df <= 0 || math.IsNaN(x) {
		return 1
	}
	if x <= 0 {
		return 1
	}
	if math.IsInf(x, 1) {
		return 0
	}
	return clamp01(mathx.GammaIncComp(df/2, x/2))
}

// StudentTCDF is P(T <= t) for Student's t with df degrees of freedom.
func StudentTCDF(t, df float64) float64 {
	if df <= 0 || math.IsNaN(t) {
		return 0
	}
	return clamp01(distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.CDF(t))
}

// TTwoTailedP is the two-tailed p-value for a t statistic.
func TTwoTailedP(t, df float64) float64 {
	if df <= 0 || math.IsNaN(t) {
		return 1
	}
	if math.IsInf(t, 0) {
		return 0
	}
	tail := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(math.Abs(t))
	return clamp01(2 * tail)
}

// FCDF is P(X <= f) for X ~ F(d1, d2).
func FCDF(f, d1, d2 float64) float64 {
	if d1 <= 0 || d2 <= 0 || f <= 0 || math.IsNaN(f) {
		return 0
	}
	if math.IsInf(f, 1) {
		return 1
	}
	return clamp01(distuv.F{D1: d1, D2: d2}.CDF(f))
}

// FSurvival is P(X > f) for X ~ F(d1, d2), the p-value of an F test.
func FSurvival(f, d1, d2 float64) float64 {
	if d1 <= 0 || d2 <= 0 || math.IsNaN(f) || f <= 0 {
		return 1
	}
	if math.IsInf(f, 1) {
		return 0
	}
	// 1 - I_x(d1/2, d2/2) == I_{1-x}(d2/2, d1/2)
	x := d2 / (d2 + d1*f)
	return clamp01(mathext.RegIncBeta(d2/2, d1/2, x))
}

// TCritical is the two-tailed critical value t* with P(|T| > t*) = alpha.
func TCritical(alpha, df float64) float64 {
	if df <= 0 || alpha <= 0 || alpha >= 1 {
		return math.NaN()
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(1 - alpha/2)
}

// FCritical is the upper-tail critical value f* with P(F > f*) = alpha.
func FCritical(alpha, d1, d2 float64) float64 {
	if d1 <= 0 || d2 <= 0 || alpha <= 0 || alpha >= 1 {
		return math.NaN()
	}
	y := mathext.InvRegIncBeta(d1/2, d2/2, 1-alpha)
	if y >= 1 {
		return math.Inf(1)
	}
	return d2 * y / (d1 * (1 - y))
}
