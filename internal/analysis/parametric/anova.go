package parametric

import (
	"math"

	"statbench/domain/core"
	"statbench/domain/stats"
	"statbench/internal/analysis/descriptive"
	"statbench/internal/analysis/distributions"
)

// GroupSummaries cleans every group and returns its size, mean and sample
// variance. Each group needs at least minN values.
func GroupSummaries(test string, groups []stats.Group, minN int) ([]stats.GroupStats, [][]float64, error) {
	summaries := make([]stats.GroupStats, 0, len(groups))
	cleaned := make([][]float64, 0, len(groups))
	for _, g := range groups {
		data := descriptive.Clean(g.Values)
		if len(data) < minN {
			return nil, nil, core.NewInsufficientDataError(test+" group "+g.Label, len(data), minN)
		}
		v := descriptive.SampleVariance(data)
		summaries = append(summaries, stats.GroupStats{
			Label:    g.Label,
			N:        len(data),
			Mean:     descriptive.Mean(data),
			Variance: v,
			Std:      math.Sqrt(v),
		})
		cleaned = append(cleaned, data)
	}
	return summaries, cleaned, nil
}

// OneWayANOVA partitions total variation into between- and within-group sums
// of squares. F = MS_between / MS_within; EffectSize is η² = SS_between / SS_total.
func OneWayANOVA(groups []stats.Group, alpha float64) (*stats.ANOVAResult, error) {
	if err := stats.ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	if len(groups) < 2 {
		return nil, core.NewInsufficientDataError("one-way ANOVA groups", len(groups), 2)
	}
	summaries, data, err := GroupSummaries("one-way ANOVA", groups, minGroupSize)
	if err != nil {
		return nil, err
	}

	total := 0
	sum := 0.0
	for _, g := range summaries {
		total += g.N
		sum += g.Mean * float64(g.N)
	}
	grand := sum / float64(total)

	var ssBetween, ssWithin, ssTotal float64
	for i, g := range summaries {
		d := g.Mean - grand
		ssBetween += float64(g.N) * d * d
		for _, v := range data[i] {
			w := v - g.Mean
			ssWithin += w * w
			t := v - grand
			ssTotal += t * t
		}
	}

	dfBetween := len(summaries) - 1
	dfWithin := total - len(summaries)
	msBetween := ssBetween / float64(dfBetween)
	msWithin := ssWithin / float64(dfWithin)
	if msWithin == 0 {
		return nil, core.NewDegeneracyError("one-way ANOVA", "within-group variance is zero")
	}

	f := msBetween / msWithin
	res := &stats.ANOVAResult{
		TestResult: stats.NewTestResult(f, distributions.FSurvival(f, float64(dfBetween), float64(dfWithin)), alpha),
		Groups:     summaries,
		SSBetween:  ssBetween,
		SSWithin:   ssWithin,
		SSTotal:    ssTotal,
		DFBetween:  dfBetween,
		DFWithin:   dfWithin,
		MSBetween:  msBetween,
		MSWithin:   msWithin,
	}
	res.DegreesOfFreedom = float64(dfBetween)
	if ssTotal > 0 {
		res.EffectSize = ssBetween / ssTotal
	}
	return res, nil
}
