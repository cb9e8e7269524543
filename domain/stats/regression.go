package stats

import "math"

// LinearRegressionResult is a closed-form simple least-squares fit.
type LinearRegressionResult struct {
	Slope       float64 `json:"slope"`
	Intercept   float64 `json:"intercept"`
	RSquared    float64 `json:"r_squared"`
	N           int     `json:"n"`
	SlopeStdErr float64 `json:"slope_std_err"`
	TStatistic  float64 `json:"t_statistic"`
	PValue      float64 `json:"p_value"`
	RMSE        float64 `json:"rmse"`
	MAE         float64 `json:"mae"`
}

// Predict evaluates the fitted line at x.
func (r *LinearRegressionResult) Predict(x float64) float64 {
	return r.Intercept + r.Slope*x
}

// LogisticModel holds fitted parameters for binary logistic regression.
// Created once per training call and never mutated afterwards; prediction must
// reuse FeatureMeans and FeatureStds from the training split.
type LogisticModel struct {
	Features      []string       `json:"features"`
	Weights       []float64      `json:"weights"`
	Bias          float64        `json:"bias"`
	FeatureMeans  []float64      `json:"feature_means"`
	FeatureStds   []float64      `json:"feature_stds"`
	TargetMapping map[string]int `json:"target_mapping"`
	Threshold     float64        `json:"threshold"`
}

// Sigmoid is the logistic function 1/(1+e^-z).
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	// Same value, without overflowing exp for large negative z.
	e := math.Exp(z)
	return e / (1 + e)
}

// Standardize scales a raw feature row with the training-split parameters.
func (m *LogisticModel) Standardize(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - m.FeatureMeans[j]) / m.FeatureStds[j]
	}
	return out
}

// PredictProba returns P(y=1) for a raw (unstandardized) feature row.
func (m *LogisticModel) PredictProba(row []float64) float64 {
	return m.probaStandardized(m.Standardize(row))
}

func (m *LogisticModel) probaStandardized(z []float64) float64 {
	s := m.Bias
	for j, v := range z {
		s += m.Weights[j] * v
	}
	return Sigmoid(s)
}

// Predict classifies a raw feature row as 0 or 1 using the model threshold.
func (m *LogisticModel) Predict(row []float64) int {
	if m.PredictProba(row) >= m.Threshold {
		return 1
	}
	return 0
}

// Label maps a binary prediction back to its original class label.
func (m *LogisticModel) Label(class int) string {
	for label, c := range m.TargetMapping {
		if c == class {
			return label
		}
	}
	return ""
}

// ConfusionMatrix counts binary prediction outcomes.
type ConfusionMatrix struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	TN int `json:"tn"`
	FN int `json:"fn"`
}

// NewConfusionMatrix tallies predicted against actual 0/1 labels.
// Extra elements of the longer slice are ignored.
func NewConfusionMatrix(predicted, actual []int) ConfusionMatrix {
	var cm ConfusionMatrix
	n := len(predicted)
	if len(actual) < n {
		n = len(actual)
	}
	for i := 0; i < n; i++ {
		switch {
		case predicted[i] == 1 && actual[i] == 1:
			cm.TP++
		case predicted[i] == 1 && actual[i] == 0:
			cm.FP++
		case predicted[i] == 0 && actual[i] == 0:
			cm.TN++
		default:
			cm.FN++
		}
	}
	return cm
}

// Total is the number of classified rows.
func (c ConfusionMatrix) Total() int {
	return c.TP + c.FP + c.TN + c.FN
}

// ratio returns num/den with 0/0 -> 0.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func (c ConfusionMatrix) Accuracy() float64 {
	return ratio(float64(c.TP+c.TN), float64(c.Total()))
}

func (c ConfusionMatrix) Precision() float64 {
	return ratio(float64(c.TP), float64(c.TP+c.FP))
}

func (c ConfusionMatrix) Recall() float64 {
	return ratio(float64(c.TP), float64(c.TP+c.FN))
}

func (c ConfusionMatrix) Specificity() float64 {
	return ratio(float64(c.TN), float64(c.TN+c.FP))
}

// F1 is the harmonic mean of precision and recall.
func (c ConfusionMatrix) F1() float64 {
	p, r := c.Precision(), c.Recall()
	return ratio(2*p*r, p+r)
}

// ClassificationMetrics is the flattened view of a ConfusionMatrix.
type ClassificationMetrics struct {
	Confusion   ConfusionMatrix `json:"confusion"`
	Accuracy    float64         `json:"accuracy"`
	Precision   float64         `json:"precision"`
	Recall      float64         `json:"recall"`
	F1          float64         `json:"f1"`
	Specificity float64         `json:"specificity"`
}

// Metrics derives every score from the matrix.
func (c ConfusionMatrix) Metrics() ClassificationMetrics {
	return ClassificationMetrics{
		Confusion:   c,
		Accuracy:    c.Accuracy(),
		Precision:   c.Precision(),
		Recall:      c.Recall(),
		F1:          c.F1(),
		Specificity: c.Specificity(),
	}
}

// LogisticFit is the outcome of one training call.
type LogisticFit struct {
	Model     *LogisticModel        `json:"model"`
	TrainSize int                   `json:"train_size"`
	TestSize  int                   `json:"test_size"`
	Train     ClassificationMetrics `json:"train"`
	Test      ClassificationMetrics `json:"test"`
	FinalLoss float64               `json:"final_loss"`
	Seeded    bool                  `json:"seeded"`
}
