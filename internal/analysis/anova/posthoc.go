package anova

import (
	"fmt"
	"math"

	"statbench/domain/core"
	"statbench/domain/stats"
	"statbench/internal/analysis/distributions"
	"statbench/internal/analysis/parametric"
)

const (
	minPostHocGroups    = 3
	minPostHocGroupSize = 2
)

// PostHoc holds the group statistics and the pooled error term of a one-way
// layout. It is fitted once; every Compare call reuses the same MSE and
// df_within so results from different methods line up.
type PostHoc struct {
	groups   []stats.GroupStats
	mse      float64
	dfWithin int
}

// NewPostHoc summarises groups and pools their within-group variance.
func NewPostHoc(groups []stats.Group) (*PostHoc, error) {
	if len(groups) < minPostHocGroups {
		return nil, core.NewInsufficientDataError("post-hoc groups", len(groups), minPostHocGroups)
	}
	summaries, _, err := parametric.GroupSummaries("post-hoc", groups, minPostHocGroupSize)
	if err != nil {
		return nil, err
	}
	total := 0
	ss := 0.0
	for _, g := range summaries {
		total += g.N
		ss += float64(g.N-1) * g.Variance
	}
	df := total - len(summaries)
	if df < 1 {
		return nil, core.NewInsufficientDataError("post-hoc error degrees of freedom", df, 1)
	}
	mse := ss / float64(df)
	if mse == 0 {
		return nil, core.NewDegeneracyError("post-hoc", "pooled within-group variance is zero")
	}
	return &PostHoc{groups: summaries, mse: mse, dfWithin: df}, nil
}

// MSE is the pooled within-group mean square.
func (p *PostHoc) MSE() float64 { return p.mse }

// DFWithin is the error degrees of freedom, N - k.
func (p *PostHoc) DFWithin() int { return p.dfWithin }

// Groups returns a copy of the fitted group statistics.
func (p *PostHoc) Groups() []stats.GroupStats {
	return append([]stats.GroupStats(nil), p.groups...)
}

// Compare runs method over every pair of groups, in input order.
func (p *PostHoc) Compare(method stats.PostHocMethod, alpha float64) (*stats.PostHocResult, error) {
	if err := stats.ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	k := len(p.groups)
	m := k * (k - 1) / 2
	df := float64(p.dfWithin)

	var critical, adjusted float64
	switch method {
	case stats.PostHocTukey:
		critical = distributions.StudentizedRangeCritical(alpha, k, df)
		adjusted = alpha
	case stats.PostHocBonferroni:
		adjusted = alpha / float64(m)
		critical = distributions.TCritical(adjusted, df)
	case stats.PostHocScheffe:
		critical = math.Sqrt(float64(k-1) * distributions.FCritical(alpha, float64(k-1), df))
		adjusted = alpha
	case stats.PostHocFisherLSD:
		critical = distributions.TCritical(alpha, df)
		adjusted = alpha
	default:
		return nil, core.NewInvalidConfigError("post-hoc method", fmt.Sprintf("unknown method %q", method))
	}
	if math.IsNaN(critical) || math.IsInf(critical, 0) {
		return nil, core.NewDegeneracyError("post-hoc", "critical value could not be computed")
	}

	res := &stats.PostHocResult{
		Method:      method,
		Alpha:       alpha,
		K:           k,
		MSE:         p.mse,
		DFWithin:    p.dfWithin,
		Groups:      p.Groups(),
		Comparisons: make([]stats.PairwiseComparison, 0, m),
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			res.Comparisons = append(res.Comparisons, p.pair(method, i, j, critical, adjusted, alpha, m))
		}
	}
	return res, nil
}

func (p *PostHoc) pair(method stats.PostHocMethod, i, j int, critical, adjusted, alpha float64, m int) stats.PairwiseComparison {
	a, b := p.groups[i], p.groups[j]
	diff := a.Mean - b.Mean
	se := math.Sqrt(p.mse * (1/float64(a.N) + 1/float64(b.N)))
	t := diff / se
	df := float64(p.dfWithin)
	k := len(p.groups)

	c := stats.PairwiseComparison{
		GroupA:        a.Label,
		GroupB:        b.Label,
		MeanA:         a.Mean,
		MeanB:         b.Mean,
		MeanDiff:      diff,
		StdErr:        se,
		T:             t,
		Statistic:     t,
		CriticalValue: critical,
		AdjustedAlpha: adjusted,
	}

	margin := critical * se
	switch method {
	case stats.PostHocTukey:
		// q uses SE/√2
		c.Statistic = math.Abs(t) * math.Sqrt2
		c.PValue = 1 - distributions.StudentizedRangeCDF(c.Statistic, k, df)
		margin = critical / math.Sqrt2 * se
	case stats.PostHocBonferroni:
		c.PValue = math.Min(1, distributions.TTwoTailedP(t, df)*float64(m))
	case stats.PostHocScheffe:
		c.PValue = distributions.FSurvival(t*t/float64(k-1), float64(k-1), df)
	case stats.PostHocFisherLSD:
		c.PValue = distributions.TTwoTailedP(t, df)
	}
	c.PValue = stats.ClampProbability(c.PValue)
	c.CILower = diff - margin
	c.CIUpper = diff + margin
	c.Significant = c.PValue < alpha
	return c
}
