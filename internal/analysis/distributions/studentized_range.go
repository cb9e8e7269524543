package distributions

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate/quad"
)

const (
	// rangeNodes is the Gauss-Legendre order used on every panel.
	rangeNodes = 16
	// Above this many error degrees of freedom s = sqrt(chi2/df) is treated as exactly 1.
	rangeLargeDF = 25000
)

func legendre(f func(float64) float64, a, b float64) float64 {
	if b <= a {
		return 0
	}
	return quad.Fixed(f, a, b, rangeNodes, quad.Legendre{}, 0)
}

// panels integrates f piecewise over the sorted, de-duplicated breakpoints.
func panels(f func(float64) float64, points []float64) float64 {
	sort.Float64s(points)
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += legendre(f, points[i-1], points[i])
	}
	return total
}

// rangeProbability is P(range of k standard normals <= w):
// k ∫ φ(z) [Φ(z) - Φ(z-w)]^(k-1) dz.
func rangeProbability(w float64, k int) float64 {
	if w <= 0 {
		return 0
	}
	km1 := float64(k - 1)
	f := func(z float64) float64 {
		d := NormalCDF(z) - NormalCDF(z-w)
		if d <= 0 {
			return 0
		}
		return math.Exp(-z*z/2) / math.Sqrt(2*math.Pi) * math.Pow(d, km1)
	}
	points := []float64{-8, -6, -4, -2, 0, 2, 4, 6, 8}
	if w/2 < 8 {
		points = append(points, w/2)
	}
	return clamp01(float64(k) * panels(f, points))
}

// StudentizedRangeCDF is P(Q <= q) for the Studentized range distribution with
// k means and df error degrees of freedom. The outer integral runs over the
// density of s = sqrt(chi2_df / df).
func StudentizedRangeCDF(q float64, k int, df float64) float64 {
	if k < 2 || df <= 0 || math.IsNaN(q) || q <= 0 {
		return 0
	}
	if math.IsInf(q, 1) {
		return 1
	}
	if df > rangeLargeDF {
		return rangeProbability(q, k)
	}

	half := df / 2
	lg, _ := math.Lgamma(half)
	logC := half*math.Log(df) - lg - (half-1)*math.Ln2
	density := func(s float64) float64 {
		if s <= 0 {
			return 0
		}
		return math.Exp(logC + (df-1)*math.Log(s) - df*s*s/2)
	}
	f := func(s float64) float64 {
		return density(s) * rangeProbability(q*s, k)
	}

	spread := 12 / math.Sqrt(2*df)
	lo := math.Max(0, 1-spread)
	hi := 1 + spread

	points := []float64{lo, hi}
	for i := 1; i < 8; i++ {
		points = append(points, lo+(hi-lo)*float64(i)/8)
	}
	// W(q·s) climbs from 0 to 1 on s ≈ c/q; resolve that region for large q.
	for _, c := range []float64{0.25, 0.5, 1, 2, 4, 8} {
		if s := c / q; s > lo && s < hi {
			points = append(points, s)
		}
	}
	return clamp01(panels(f, points))
}

// StudentizedRangeCritical is q* with P(Q > q*) = alpha, found by bisection.
func StudentizedRangeCritical(alpha float64, k int, df float64) float64 {
	if k < 2 || df <= 0 || alpha <= 0 || alpha >= 1 {
		return math.NaN()
	}
	target := 1 - alpha
	lo, hi := 0.0, 8.0
	for StudentizedRangeCDF(hi, k, df) < target {
		lo = hi
		hi *= 2
		if hi > 1e4 {
			return math.Inf(1)
		}
	}
	for i := 0; i < 60 && hi-lo > 1e-7; i++ {
		mid := (lo + hi) / 2
		if StudentizedRangeCDF(mid, k, df) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
