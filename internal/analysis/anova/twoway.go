// Package anova implements the factorial two-way ANOVA and the pairwise
// post-hoc procedures that follow a one-way omnibus test.
package anova

import (
	"math"
	"sort"

	"statbench/domain/core"
	"statbench/domain/stats"
	"statbench/internal/analysis/distributions"
)

// TwoWayConfig names the two factors and the significance level.
type TwoWayConfig struct {
	FactorAName string  `json:"factor_a"`
	FactorBName string  `json:"factor_b"`
	Alpha       float64 `json:"alpha"`
}

type cellKey struct{ a, b string }

type accumulator struct {
	n   int
	sum float64
}

func (c *accumulator) add(v float64) {
	c.n++
	c.sum += v
}

func (c accumulator) mean() float64 {
	if c.n == 0 {
		return 0
	}
	return c.sum / float64(c.n)
}

// TwoWay decomposes the variation of obs into factor A, factor B, their
// interaction and the pooled within-cell error. The interaction sum of squares
// is whatever the other three leave of the total.
//
// Levels are reported in lexicographic order. Non-finite values are skipped.
// When the design leaves no within-cell degrees of freedom the decomposition
// is still returned, with ErrorTermDefined false and every F = 0, p = 1.
func TwoWay(obs []stats.Observation, cfg TwoWayConfig) (*stats.TwoWayResult, error) {
	if err := stats.ValidateAlpha(cfg.Alpha); err != nil {
		return nil, err
	}
	if cfg.FactorAName != "" && cfg.FactorAName == cfg.FactorBName {
		return nil, core.NewInvalidConfigError("two-way ANOVA", "factor A and factor B must be different columns")
	}

	cells := make(map[cellKey]*accumulator)
	marginA := make(map[string]*accumulator)
	marginB := make(map[string]*accumulator)
	var grand accumulator
	var kept []stats.Observation
	for _, o := range obs {
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			continue
		}
		kept = append(kept, o)
		key := cellKey{o.A, o.B}
		if cells[key] == nil {
			cells[key] = &accumulator{}
		}
		cells[key].add(o.Value)
		if marginA[o.A] == nil {
			marginA[o.A] = &accumulator{}
		}
		marginA[o.A].add(o.Value)
		if marginB[o.B] == nil {
			marginB[o.B] = &accumulator{}
		}
		marginB[o.B].add(o.Value)
		grand.add(o.Value)
	}

	levelsA := sortedKeys(marginA)
	levelsB := sortedKeys(marginB)
	if len(levelsA) < 2 {
		return nil, core.NewInsufficientDataError("two-way ANOVA levels of "+factorName(cfg.FactorAName, "A"), len(levelsA), 2)
	}
	if len(levelsB) < 2 {
		return nil, core.NewInsufficientDataError("two-way ANOVA levels of "+factorName(cfg.FactorBName, "B"), len(levelsB), 2)
	}

	gm := grand.mean()
	var ssTotal, ssWithin float64
	for _, o := range kept {
		d := o.Value - gm
		ssTotal += d * d
		w := o.Value - cells[cellKey{o.A, o.B}].mean()
		ssWithin += w * w
	}
	if ssTotal == 0 {
		return nil, core.NewDegeneracyError("two-way ANOVA", "all observations are identical")
	}

	ssA := marginalSS(marginA, gm)
	ssB := marginalSS(marginB, gm)
	ssAB := ssTotal - ssA - ssB - ssWithin

	n := grand.n
	dfA := len(levelsA) - 1
	dfB := len(levelsB) - 1
	dfAB := dfA * dfB
	dfWithin := n - len(levelsA)*len(levelsB)

	res := &stats.TwoWayResult{
		FactorAName:      cfg.FactorAName,
		FactorBName:      cfg.FactorBName,
		LevelsA:          levelsA,
		LevelsB:          levelsB,
		GrandMean:        gm,
		N:                n,
		Alpha:            cfg.Alpha,
		ErrorTermDefined: dfWithin > 0,
		Total:            stats.Variation{Source: "Total", SS: ssTotal, DF: n - 1},
	}
	for _, a := range levelsA {
		for _, b := range levelsB {
			if c, ok := cells[cellKey{a, b}]; ok {
				res.Cells = append(res.Cells, stats.CellStats{A: a, B: b, N: c.n, Mean: c.mean()})
			}
		}
	}

	msWithin := 0.0
	if res.ErrorTermDefined {
		msWithin = ssWithin / float64(dfWithin)
		if msWithin == 0 {
			return nil, core.NewDegeneracyError("two-way ANOVA", "within-cell variance is zero")
		}
	}
	res.Within = stats.Variation{Source: "Within", SS: ssWithin, DF: max(dfWithin, 0), MS: msWithin}

	effect := func(source string, ss float64, df int) stats.Effect {
		e := stats.Effect{Source: source, SS: ss, DF: df, PValue: 1, EtaSquared: ss / ssTotal}
		if df > 0 {
			e.MS = ss / float64(df)
		}
		if msWithin > 0 && df > 0 {
			e.F = e.MS / msWithin
			e.PValue = stats.ClampProbability(distributions.FSurvival(e.F, float64(df), float64(dfWithin)))
			e.Significant = e.PValue < cfg.Alpha
		}
		return e
	}
	res.FactorA = effect(factorName(cfg.FactorAName, "A"), ssA, dfA)
	res.FactorB = effect(factorName(cfg.FactorBName, "B"), ssB, dfB)
	res.Interaction = effect("Interaction", ssAB, dfAB)
	return res, nil
}

func marginalSS(margin map[string]*accumulator, grand float64) float64 {
	ss := 0.0
	for _, m := range margin {
		d := m.mean() - grand
		ss += float64(m.n) * d * d
	}
	return ss
}

func sortedKeys(m map[string]*accumulator) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func factorName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
