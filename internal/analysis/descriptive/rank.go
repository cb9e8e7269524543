package descriptive

import (
	"sort"

	"statbench/domain/stats"
)

// Rank assigns 1-based ranks to values in their original order.
//
// RankPositional breaks ties by order of appearance (stable sort), so equal
// values get consecutive distinct ranks. RankAverage gives each tied run the
// mean of the positions it spans. An empty method means RankPositional.
func Rank(values []float64, method stats.RankMethod) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]float64, n)
	if method != stats.RankAverage {
		for pos, idx := range order {
			ranks[idx] = float64(pos + 1)
		}
		return ranks
	}

	for start := 0; start < n; {
		end := start + 1
		for end < n && values[order[end]] == values[order[start]] {
			end++
		}
		// positions start+1 .. end
		avg := float64(start+1+end) / 2
		for _, idx := range order[start:end] {
			ranks[idx] = avg
		}
		start = end
	}
	return ranks
}

// TieSum returns Σ(t³ - t) over every run of t tied values.
func TieSum(values []float64) float64 {
	sorted := sortedCopy(values)
	total := 0.0
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end] == sorted[start] {
			end++
		}
		t := float64(end - start)
		total += t*t*t - t
		start = end
	}
	return total
}
