package regression

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"statbench/domain/core"
	"statbench/domain/stats"
)

const minLogisticRows = 10

// LogisticConfig tunes TrainLogistic. A nil Seed shuffles with a time-based
// source, so repeated runs differ; set it for reproducible splits.
type LogisticConfig struct {
	TestSize     float64 `json:"test_size"`
	LearningRate float64 `json:"learning_rate"`
	Iterations   int     `json:"iterations"`
	Threshold    float64 `json:"threshold"`
	Seed         *int64  `json:"seed,omitempty"`
}

// DefaultLogisticConfig returns a 80/20 split trained for 1000 iterations.
func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{
		TestSize:     0.2,
		LearningRate: 0.1,
		Iterations:   1000,
		Threshold:    0.5,
	}
}

func (c LogisticConfig) validate() error {
	switch {
	case math.IsNaN(c.TestSize) || c.TestSize <= 0 || c.TestSize >= 1:
		return core.NewInvalidConfigError("test_size", fmt.Sprintf("must be in (0, 1), got %v", c.TestSize))
	case !(c.LearningRate > 0):
		return core.NewInvalidConfigError("learning_rate", "must be positive")
	case c.Iterations <= 0:
		return core.NewInvalidConfigError("iterations", "must be positive")
	case math.IsNaN(c.Threshold) || c.Threshold <= 0 || c.Threshold >= 1:
		return core.NewInvalidConfigError("threshold", fmt.Sprintf("must be in (0, 1), got %v", c.Threshold))
	}
	return nil
}

func (c LogisticConfig) rng() *rand.Rand {
	if c.Seed != nil {
		return rand.New(rand.NewSource(*c.Seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// TrainTestSplit shuffles row indices and holds out round(n·testSize) of them,
// clamped so both sides keep at least one row.
func TrainTestSplit(n int, testSize float64, rng *rand.Rand) (train, test []int) {
	perm := rng.Perm(n)
	testCount := int(math.Round(float64(n) * testSize))
	if testCount < 1 {
		testCount = 1
	}
	if testCount > n-1 {
		testCount = n - 1
	}
	return perm[testCount:], perm[:testCount]
}

// TrainLogistic fits a binary logistic regression by batch gradient descent on
// the log-loss. Rows with a non-finite feature or an empty target are dropped.
// Target labels are sorted and mapped to 0 and 1; features are standardized with
// the training split's mean and population standard deviation (0 becomes 1),
// and the same parameters are stored on the model for prediction.
func TrainLogistic(x [][]float64, target []string, features []string, cfg LogisticConfig) (*stats.LogisticFit, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(x) != len(target) {
		return nil, core.NewInvalidConfigError("logistic regression", "features and target differ in length")
	}
	width := len(features)
	if width == 0 {
		return nil, core.NewInvalidConfigError("features", "at least one feature is required")
	}

	var rows [][]float64
	var labels []string
	for i, row := range x {
		if len(row) != width {
			return nil, core.NewInvalidConfigError("features", fmt.Sprintf("row %d has %d values, want %d", i, len(row), width))
		}
		if target[i] == "" || !allFinite(row) {
			continue
		}
		rows = append(rows, row)
		labels = append(labels, target[i])
	}
	if len(rows) < minLogisticRows {
		return nil, core.NewInsufficientDataError("logistic regression", len(rows), minLogisticRows)
	}

	mapping, err := binaryMapping(labels)
	if err != nil {
		return nil, err
	}
	y := make([]float64, len(labels))
	for i, l := range labels {
		y[i] = float64(mapping[l])
	}

	rng := cfg.rng()
	trainIdx, testIdx := TrainTestSplit(len(rows), cfg.TestSize, rng)

	model := &stats.LogisticModel{
		Features:      append([]string(nil), features...),
		TargetMapping: mapping,
		Threshold:     cfg.Threshold,
	}
	model.FeatureMeans, model.FeatureStds = standardization(rows, trainIdx, width)

	trainX := make([][]float64, len(trainIdx))
	trainY := make([]float64, len(trainIdx))
	for k, i := range trainIdx {
		trainX[k] = model.Standardize(rows[i])
		trainY[k] = y[i]
	}
	model.Weights, model.Bias = gradientDescent(trainX, trainY, cfg.LearningRate, cfg.Iterations)

	return &stats.LogisticFit{
		Model:     model,
		TrainSize: len(trainIdx),
		TestSize:  len(testIdx),
		Train:     evaluate(model, rows, y, trainIdx).Metrics(),
		Test:      evaluate(model, rows, y, testIdx).Metrics(),
		FinalLoss: logLoss(trainX, trainY, model.Weights, model.Bias),
		Seeded:    cfg.Seed != nil,
	}, nil
}

func allFinite(row []float64) bool {
	for _, v := range row {
		if !finite(v) {
			return false
		}
	}
	return true
}

func binaryMapping(labels []string) (map[string]int, error) {
	seen := make(map[string]struct{})
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	if len(seen) != 2 {
		return nil, core.NewInvalidConfigError("target", fmt.Sprintf("must have exactly 2 classes, found %d", len(seen)))
	}
	unique := make([]string, 0, 2)
	for l := range seen {
		unique = append(unique, l)
	}
	sort.Strings(unique)
	return map[string]int{unique[0]: 0, unique[1]: 1}, nil
}

func standardization(rows [][]float64, idx []int, width int) (means, stds []float64) {
	means = make([]float64, width)
	stds = make([]float64, width)
	col := make([]float64, len(idx))
	for j := 0; j < width; j++ {
		for k, i := range idx {
			col[k] = rows[i][j]
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		means[j], stds[j] = mean, math.Sqrt(variance)
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return means, stds
}

func linear(row, w []float64, b float64) float64 {
	s := b
	for j, v := range row {
		s += w[j] * v
	}
	return s
}

func gradientDescent(x [][]float64, y []float64, rate float64, iterations int) ([]float64, float64) {
	width := len(x[0])
	w := make([]float64, width)
	b := 0.0
	m := float64(len(x))
	grad := make([]float64, width)
	for it := 0; it < iterations; it++ {
		for j := range grad {
			grad[j] = 0
		}
		gradB := 0.0
		for i, row := range x {
			e := stats.Sigmoid(linear(row, w, b)) - y[i]
			for j, v := range row {
				grad[j] += e * v
			}
			gradB += e
		}
		for j := range w {
			w[j] -= rate * grad[j] / m
		}
		b -= rate * gradB / m
	}
	return w, b
}

func logLoss(x [][]float64, y []float64, w []float64, b float64) float64 {
	const eps = 1e-15
	loss := 0.0
	for i, row := range x {
		p := math.Min(math.Max(stats.Sigmoid(linear(row, w, b)), eps), 1-eps)
		loss -= y[i]*math.Log(p) + (1-y[i])*math.Log(1-p)
	}
	return loss / float64(len(x))
}

func evaluate(model *stats.LogisticModel, rows [][]float64, y []float64, idx []int) stats.ConfusionMatrix {
	predicted := make([]int, len(idx))
	actual := make([]int, len(idx))
	for k, i := range idx {
		predicted[k] = model.Predict(rows[i])
		actual[k] = int(y[i])
	}
	return stats.NewConfusionMatrix(predicted, actual)
}
