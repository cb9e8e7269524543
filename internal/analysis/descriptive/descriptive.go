// Package descriptive computes summary statistics, quantiles and ranks.
package descriptive

import (
	"fmt"
	"math"
	"sort"

	"github.com/dgryski/go-onlinestats"
	mstats "github.com/montanaflynn/stats"

	"statbench/domain/core"
	"statbench/domain/stats"
)

// Clean drops NaN and ±Inf values, preserving order.
func Clean(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Describe summarises a sample. Non-finite values are dropped first.
// Std and Variance are sample (n-1) statistics and are 0 for a single value.
func Describe(sample []float64) (*stats.Summary, error) {
	data := Clean(sample)
	if len(data) == 0 {
		return nil, core.NewInsufficientDataError("describe", 0, 1)
	}

	mean, err := mstats.Mean(data)
	if err != nil {
		return nil, fmt.Errorf("mean: %w", err)
	}
	median, err := mstats.Median(data)
	if err != nil {
		return nil, fmt.Errorf("median: %w", err)
	}
	min, err := mstats.Min(data)
	if err != nil {
		return nil, fmt.Errorf("min: %w", err)
	}
	max, err := mstats.Max(data)
	if err != nil {
		return nil, fmt.Errorf("max: %w", err)
	}

	variance := SampleVariance(data)

	sorted := sortedCopy(data)
	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	skew, kurt := Shape(data)

	return &stats.Summary{
		Count:    len(data),
		Mean:     mean,
		Median:   median,
		Std:      math.Sqrt(variance),
		Variance: variance,
		Min:      min,
		Max:      max,
		Q1:       q1,
		Q3:       q3,
		IQR:      q3 - q1,
		Skewness: skew,
		Kurtosis: kurt,
		Range:    max - min,
	}, nil
}

// Mean returns the arithmetic mean, or 0 for an empty sample.
func Mean(data []float64) float64 {
	m, err := mstats.Mean(data)
	if err != nil {
		return 0
	}
	return m
}

// SampleVariance is the n-1 variance; fewer than two values yield 0.
func SampleVariance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	v, err := mstats.SampleVariance(data)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// Shape returns population skewness m3/m2^1.5 and excess kurtosis m4/m2²-3.
// A sample with no spread has skewness and kurtosis 0.
func Shape(data []float64) (skewness, kurtosis float64) {
	if len(data) < 2 || !hasSpread(data) {
		return 0, 0
	}
	r := onlinestats.NewRunning()
	for _, x := range data {
		r.Push(x)
	}
	skewness, kurtosis = r.Skewness(), r.Kurtosis()
	if math.IsNaN(skewness) || math.IsInf(skewness, 0) {
		skewness = 0
	}
	if math.IsNaN(kurtosis) || math.IsInf(kurtosis, 0) {
		kurtosis = 0
	}
	return skewness, kurtosis
}

func hasSpread(data []float64) bool {
	for _, v := range data[1:] {
		if v != data[0] {
			return true
		}
	}
	return false
}

func sortedCopy(data []float64) []float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return sorted
}

// Quantile interpolates linearly between order statistics at position (n-1)p
// (Hyndman-Fan type 7). sorted must be ascending; p is clamped to [0, 1] and an
// empty slice yields 0.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	pos := float64(n-1) * p
	lo := int(math.Floor(pos))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Percentile returns the pct-th percentile (0-100) of an unsorted sample.
func Percentile(sample []float64, pct float64) (float64, error) {
	data := Clean(sample)
	if len(data) == 0 {
		return 0, core.NewInsufficientDataError("percentile", 0, 1)
	}
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return 0, core.NewInvalidConfigError("percentile", fmt.Sprintf("must be in [0, 100], got %v", pct))
	}
	return Quantile(sortedCopy(data), pct/100), nil
}
