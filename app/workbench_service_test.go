package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"statbench/domain/core"
	"statbench/domain/stats"
	"statbench/internal/analysis/normality"
	"statbench/internal/dataset"
	"statbench/internal/errors"
	"statbench/models"
	"statbench/ports"
)

type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) SaveRun(ctx context.Context, run *models.AnalysisRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) GetRun(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.AnalysisRun), args.Error(1)
}

func (m *MockRunRepository) ListRuns(ctx context.Context, filter models.RunFilter) ([]*models.AnalysisRun, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.AnalysisRun), args.Error(1)
}

func (m *MockRunRepository) DeleteRun(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAssumptionChecker struct {
	mock.Mock
}

func (m *MockAssumptionChecker) Check(ctx context.Context, req ports.AssumptionRequest) (*ports.AssumptionReport, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*ports.AssumptionReport), args.Error(1)
}

// scoresTable has three groups of four rows with shifted scores
func scoresTable() *dataset.Table {
	headers := []string{"group", "score", "before", "after", "label"}
	bumps := []int{1, 2, 1, 3}
	var records [][]string
	for i := 0; i < 12; i++ {
		score := i + 1
		label := "low"
		if score > 6 {
			label = "high"
		}
		records = append(records, []string{
			string(rune('A' + i/4)),
			fmt.Sprint(score),
			fmt.Sprint(10 + i),
			fmt.Sprint(10 + i + bumps[i%4]),
			label,
		})
	}
	return dataset.NewTable("scores.csv", headers, records)
}

func newTestService(runs ports.RunRepository, checker ports.AssumptionChecker) (*WorkbenchService, string) {
	store := NewDatasetStore(nil, nil)
	info := store.Add(scoresTable())
	return NewWorkbenchService(store, runs, checker, DefaultEngineDefaults()), info.ID
}

func TestDescribeRecordsRun(t *testing.T) {
	repo := &MockRunRepository{}
	repo.On("SaveRun", mock.Anything, mock.MatchedBy(func(run *models.AnalysisRun) bool {
		return run.Kind == KindDescribe && len(run.Result) > 0
	})).Return(nil)

	svc, id := newTestService(repo, nil)
	out, err := svc.Describe(context.Background(), DescribeRequest{DatasetID: id, Column: "score"})
	require.NoError(t, err)

	summary, ok := out.Result.(*stats.Summary)
	require.True(t, ok)
	assert.Equal(t, 12, summary.Count)
	assert.InDelta(t, 6.5, summary.Mean, 1e-12)
	assert.Equal(t, id, out.DatasetID)
	assert.NotEqual(t, uuid.Nil, out.RunID)
	repo.AssertExpectations(t)
}

func TestSaveFailureDoesNotFailAnalysis(t *testing.T) {
	repo := &MockRunRepository{}
	repo.On("SaveRun", mock.Anything, mock.Anything).Return(assert.AnError)

	svc, id := newTestService(repo, nil)
	out, err := svc.OneSample(context.Background(), OneSampleRequest{DatasetID: id, Column: "score", Mu: 6.5})
	require.NoError(t, err)

	res := out.Result.(*stats.TTestResult)
	assert.InDelta(t, 0, res.Statistic, 1e-12)
	assert.Equal(t, 0.05, res.Alpha)
	repo.AssertExpectations(t)
}

func TestUnknownDatasetAndColumn(t *testing.T) {
	svc, id := newTestService(nil, nil)
	ctx := context.Background()

	_, err := svc.Describe(ctx, DescribeRequest{DatasetID: "missing", Column: "score"})
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = svc.Describe(ctx, DescribeRequest{DatasetID: id, Column: "nope"})
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.ErrorIs(t, err, core.ErrColumnNotFound)

	_, err = svc.Describe(ctx, DescribeRequest{DatasetID: id, Column: "group"})
	assert.Equal(t, errors.CodeInsufficientData, errors.GetCode(err))
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestNormalityReportsSkippedDiagnostics(t *testing.T) {
	svc, id := newTestService(nil, nil)
	out, err := svc.Normality(context.Background(), NormalityRequest{DatasetID: id, Column: "score"})
	require.NoError(t, err)

	report := out.Result.(*NormalityReport)
	assert.Contains(t, report.Results, normality.TestShapiroWilk)
	assert.Contains(t, report.Results, normality.TestAndersonDarling)
	assert.NotContains(t, report.Results, normality.TestDAgostinoK2)
	assert.Contains(t, report.Messages, normality.TestDAgostinoK2)
}

func TestNormalityFailsWhenNothingRuns(t *testing.T) {
	store := NewDatasetStore(nil, nil)
	info := store.Add(dataset.NewTable("tiny", []string{"v"}, [][]string{{"1"}, {"2"}}))
	svc := NewWorkbenchService(store, nil, nil, DefaultEngineDefaults())

	_, err := svc.Normality(context.Background(), NormalityRequest{DatasetID: info.ID, Column: "v"})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestGroupTestNeedsTwoGroups(t *testing.T) {
	svc, id := newTestService(nil, nil)
	ctx := context.Background()

	_, err := svc.GroupTest(ctx, GroupTestRequest{DatasetID: id, GroupColumn: "group", ValueColumn: "score", TestMethod: GroupTestWelch})
	assert.Equal(t, errors.CodeInvalidConfiguration, errors.GetCode(err))

	out, err := svc.GroupTest(ctx, GroupTestRequest{
		DatasetID: id, GroupColumn: "group", ValueColumn: "score",
		TestMethod: GroupTestWelch, Groups: []string{"A", "C"},
	})
	require.NoError(t, err)
	res := out.Result.(*stats.TTestResult)
	assert.InDelta(t, -8, res.MeanDifference, 1e-12)
	assert.True(t, res.Significant)

	_, err = svc.GroupTest(ctx, GroupTestRequest{
		DatasetID: id, GroupColumn: "group", ValueColumn: "score",
		TestMethod: GroupTestWelch, Groups: []string{"A", "Z"},
	})
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)

	_, err = svc.GroupTest(ctx, GroupTestRequest{DatasetID: id, GroupColumn: "group", ValueColumn: "score", TestMethod: "kruskal"})
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestGroupTestOrdersGroupsByLabel(t *testing.T) {
	store := NewDatasetStore(nil, nil)
	info := store.Add(dataset.NewTable("order.csv", []string{"arm", "y"}, [][]string{
		{"treated", "9"}, {"treated", "11"}, {"control", "1"}, {"control", "3"}, {"treated", "10"}, {"control", "2"},
	}))
	svc := NewWorkbenchService(store, nil, nil, DefaultEngineDefaults())

	out, err := svc.GroupTest(context.Background(), GroupTestRequest{
		DatasetID: info.ID, GroupColumn: "arm", ValueColumn: "y", TestMethod: GroupTestStudent,
	})
	require.NoError(t, err)
	res := out.Result.(*stats.TTestResult)
	assert.InDelta(t, -8, res.MeanDifference, 1e-12)
}

func TestGroupTestConsultsChecker(t *testing.T) {
	checker := &MockAssumptionChecker{}
	checker.On("Check", mock.Anything, mock.MatchedBy(func(req ports.AssumptionRequest) bool {
		return req.TestType == string(GroupTestANOVA) && len(req.GroupedData) == 3
	})).Return(&ports.AssumptionReport{
		CanProceed: false,
		Violations: []ports.AssumptionViolation{{Assumption: "normality", Severity: "warning", Message: "small groups"}},
	}, nil)

	svc, id := newTestService(nil, checker)
	out, err := svc.GroupTest(context.Background(), GroupTestRequest{
		DatasetID: id, GroupColumn: "group", ValueColumn: "score", TestMethod: GroupTestANOVA,
	})
	require.NoError(t, err)

	require.NotNil(t, out.Assumptions)
	assert.False(t, out.Assumptions.CanProceed)
	assert.NotEmpty(t, out.Message)
	res := out.Result.(*stats.ANOVAResult)
	assert.Equal(t, 2, res.DFBetween)
	assert.Equal(t, 9, res.DFWithin)
	checker.AssertExpectations(t)
}

func TestGroupTestIgnoresCheckerFailure(t *testing.T) {
	checker := &MockAssumptionChecker{}
	checker.On("Check", mock.Anything, mock.Anything).Return((*ports.AssumptionReport)(nil), assert.AnError)

	svc, id := newTestService(nil, checker)
	out, err := svc.GroupTest(context.Background(), GroupTestRequest{
		DatasetID: id, GroupColumn: "group", ValueColumn: "score",
		TestMethod: GroupTestMannWhitney, Groups: []string{"A", "B"},
	})
	require.NoError(t, err)
	assert.Nil(t, out.Assumptions)
	assert.IsType(t, &stats.MannWhitneyResult{}, out.Result)
	checker.AssertExpectations(t)
}

func TestPostHocRunsAllMethodsByDefault(t *testing.T) {
	svc, id := newTestService(nil, nil)
	out, err := svc.PostHoc(context.Background(), PostHocRequest{DatasetID: id, GroupColumn: "group", ValueColumn: "score"})
	require.NoError(t, err)

	report := out.Result.(*PostHocReport)
	assert.Len(t, report.Results, 4)
	assert.Equal(t, 9, report.DFWithin)
	for method, res := range report.Results {
		assert.Len(t, res.Comparisons, 3, string(method))
	}

	_, err = svc.PostHoc(context.Background(), PostHocRequest{DatasetID: id, GroupColumn: "group", ValueColumn: "score", Methods: []string{"duncan"}})
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestPairedAndCorrelation(t *testing.T) {
	svc, id := newTestService(nil, nil)
	ctx := context.Background()

	out, err := svc.Paired(ctx, PairedRequest{DatasetID: id, ColumnA: "before", ColumnB: "after"})
	require.NoError(t, err)
	assert.InDelta(t, -1.75, out.Result.(*stats.TTestResult).MeanDifference, 1e-12)

	out, err = svc.Correlation(ctx, CorrelationRequest{DatasetID: id, Columns: []string{"score", "before"}})
	require.NoError(t, err)
	report := out.Result.(*CorrelationReport)
	require.NotNil(t, report.Pair)
	assert.InDelta(t, 1, report.Pair.Coefficient, 1e-12)
	assert.Equal(t, []string{"score", "before"}, report.Matrix.Columns)

	out, err = svc.Correlation(ctx, CorrelationRequest{DatasetID: id, Columns: []string{"score", "before", "after"}, Method: stats.CorrelationSpearman})
	require.NoError(t, err)
	assert.Nil(t, out.Result.(*CorrelationReport).Pair)
}

func TestIndependenceAndTwoWay(t *testing.T) {
	svc, id := newTestService(nil, nil)
	ctx := context.Background()

	out, err := svc.Independence(ctx, IndependenceRequest{DatasetID: id, RowColumn: "group", ColColumn: "label"})
	require.NoError(t, err)
	res := out.Result.(*stats.ChiSquareResult)
	assert.InDelta(t, 2, res.DegreesOfFreedom, 1e-12)

	twoway, err := svc.TwoWay(ctx, TwoWayRequest{DatasetID: id, FactorA: "group", FactorB: "label", ValueColumn: "score"})
	require.NoError(t, err)
	assert.IsType(t, &stats.TwoWayResult{}, twoway.Result)

	_, err = svc.TwoWay(ctx, TwoWayRequest{DatasetID: id, FactorA: "group", FactorB: "group", ValueColumn: "score"})
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestLinearAndLogistic(t *testing.T) {
	svc, id := newTestService(nil, nil)
	ctx := context.Background()

	out, err := svc.Linear(ctx, LinearRequest{DatasetID: id, XColumn: "score", YColumn: "before"})
	require.NoError(t, err)
	lin := out.Result.(*stats.LinearRegressionResult)
	assert.InDelta(t, 1, lin.Slope, 1e-9)
	assert.InDelta(t, 9, lin.Intercept, 1e-9)

	seed := int64(3)
	out, err = svc.Logistic(ctx, LogisticRequest{DatasetID: id, Features: []string{"score"}, Target: "label", Seed: &seed, TestSize: 0.25})
	require.NoError(t, err)
	fit := out.Result.(*stats.LogisticFit)
	assert.True(t, fit.Seeded)
	assert.Equal(t, 12, fit.TrainSize+fit.TestSize)
	assert.Equal(t, []string{"score"}, fit.Model.Features)

	params := out.Params.(LogisticRequest)
	assert.Equal(t, 1000, params.Iterations)
}

func TestRunsWithoutRepository(t *testing.T) {
	svc, _ := newTestService(nil, nil)
	runs, err := svc.Runs(context.Background(), models.RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = svc.Run(context.Background(), uuid.New())
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestRunsDelegatesToRepository(t *testing.T) {
	repo := &MockRunRepository{}
	id := uuid.New()
	stored := &models.AnalysisRun{ID: id, Kind: KindLinear}
	repo.On("GetRun", mock.Anything, id).Return(stored, nil)
	repo.On("ListRuns", mock.Anything, models.RunFilter{Kind: KindLinear}).Return([]*models.AnalysisRun{stored}, nil)

	svc, _ := newTestService(repo, nil)
	got, err := svc.Run(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	list, err := svc.Runs(context.Background(), models.RunFilter{Kind: KindLinear})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	repo.AssertExpectations(t)
}
