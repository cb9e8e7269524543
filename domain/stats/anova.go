package stats

// Effect is a tested row of an ANOVA table.
type Effect struct {
	Source      string  `json:"source"`
	SS          float64 `json:"ss"`
	DF          int     `json:"df"`
	MS          float64 `json:"ms"`
	F           float64 `json:"f"`
	PValue      float64 `json:"p_value"`
	EtaSquared  float64 `json:"eta_squared"`
	Significant bool    `json:"significant"`
}

// Variation is an untested row of an ANOVA table (within, total).
type Variation struct {
	Source string  `json:"source"`
	SS     float64 `json:"ss"`
	DF     int     `json:"df"`
	MS     float64 `json:"ms"`
}

// CellStats summarises one (A, B) cell of a two-way design.
type CellStats struct {
	A    string  `json:"a"`
	B    string  `json:"b"`
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
}

// TwoWayResult is a factorial decomposition.
// SS_A + SS_B + SS_interaction + SS_within == SS_total by construction: the
// interaction term is the residual.
//
// When df_within <= 0 (for example one observation per cell) ErrorTermDefined is
// false, MSWithin is 0 and every effect reports F = 0, p = 1.
type TwoWayResult struct {
	FactorAName      string      `json:"factor_a_name"`
	FactorBName      string      `json:"factor_b_name"`
	LevelsA          []string    `json:"levels_a"`
	LevelsB          []string    `json:"levels_b"`
	Cells            []CellStats `json:"cells"`
	GrandMean        float64     `json:"grand_mean"`
	N                int         `json:"n"`
	Alpha            float64     `json:"alpha"`
	FactorA          Effect      `json:"factor_a"`
	FactorB          Effect      `json:"factor_b"`
	Interaction      Effect      `json:"interaction"`
	Within           Variation   `json:"within"`
	Total            Variation   `json:"total"`
	ErrorTermDefined bool        `json:"error_term_defined"`
}

// PostHocMethod names a pairwise multiple-comparison procedure.
type PostHocMethod string

const (
	PostHocTukey      PostHocMethod = "tukey"
	PostHocBonferroni PostHocMethod = "bonferroni"
	PostHocScheffe    PostHocMethod = "scheffe"
	PostHocFisherLSD  PostHocMethod = "fisher_lsd"
)

// ParsePostHocMethod validates a method name.
func ParsePostHocMethod(s string) (PostHocMethod, bool) {
	switch m := PostHocMethod(s); m {
	case PostHocTukey, PostHocBonferroni, PostHocScheffe, PostHocFisherLSD:
		return m, true
	}
	return "", false
}

// PairwiseComparison is one pair of a post-hoc procedure.
// Statistic is the method's test statistic (q for Tukey, t otherwise).
type PairwiseComparison struct {
	GroupA        string  `json:"group_a"`
	GroupB        string  `json:"group_b"`
	MeanA         float64 `json:"mean_a"`
	MeanB         float64 `json:"mean_b"`
	MeanDiff      float64 `json:"mean_diff"`
	StdErr        float64 `json:"std_err"`
	T             float64 `json:"t"`
	Statistic     float64 `json:"statistic"`
	CriticalValue float64 `json:"critical_value"`
	PValue        float64 `json:"p_value"`
	AdjustedAlpha float64 `json:"adjusted_alpha"`
	CILower       float64 `json:"ci_lower"`
	CIUpper       float64 `json:"ci_upper"`
	Significant   bool    `json:"significant"`
}

// PostHocResult holds all C(k,2) comparisons under one method.
// MSE and DFWithin are shared by every comparison.
type PostHocResult struct {
	Method      PostHocMethod        `json:"method"`
	Alpha       float64              `json:"alpha"`
	K           int                  `json:"k"`
	MSE         float64              `json:"mse"`
	DFWithin    int                  `json:"df_within"`
	Groups      []GroupStats         `json:"groups"`
	Comparisons []PairwiseComparison `json:"comparisons"`
}
