package stats

// ContingencyTable cross-tabulates two categorical variables.
// INVARIANTS:
// - Counts has len(RowCategories) rows and len(ColCategories) columns
// - sum of all cells == Total == sum(RowTotals) == sum(ColTotals)
type ContingencyTable struct {
	RowCategories []string `json:"row_categories"`
	ColCategories []string `json:"col_categories"`
	Counts        [][]int  `json:"counts"`
	RowTotals     []int    `json:"row_totals"`
	ColTotals     []int    `json:"col_totals"`
	Total         int      `json:"total"`
}

// Count returns the observed count for a (row, col) category pair.
func (t *ContingencyTable) Count(row, col string) int {
	i, j := indexOf(t.RowCategories, row), indexOf(t.ColCategories, col)
	if i < 0 || j < 0 {
		return 0
	}
	return t.Counts[i][j]
}

// Dims returns the number of row and column categories.
func (t *ContingencyTable) Dims() (rows, cols int) {
	return len(t.RowCategories), len(t.ColCategories)
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}

// CellDeviation flags a cell whose standardized residual exceeds |2|.
type CellDeviation struct {
	Row      string  `json:"row"`
	Col      string  `json:"col"`
	Observed int     `json:"observed"`
	Expected float64 `json:"expected"`
	Residual float64 `json:"residual"`
}

// ChiSquareResult is the outcome of a chi-square test of independence.
// EffectSize holds Cramér's V.
type ChiSquareResult struct {
	TestResult
	Table            *ContingencyTable `json:"table"`
	Expected         [][]float64       `json:"expected"`
	Residuals        [][]float64       `json:"residuals"`
	Deviations       []CellDeviation   `json:"deviations"`
	CramersV         float64           `json:"cramers_v"`
	LowExpectedShare float64           `json:"low_expected_share"`
}
