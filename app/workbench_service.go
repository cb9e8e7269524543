package app

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"statbench/domain/core"
	"statbench/domain/stats"
	"statbench/internal"
	"statbench/internal/analysis/anova"
	"statbench/internal/analysis/categorical"
	"statbench/internal/analysis/correlation"
	"statbench/internal/analysis/descriptive"
	"statbench/internal/analysis/nonparametric"
	"statbench/internal/analysis/normality"
	"statbench/internal/analysis/parametric"
	"statbench/internal/analysis/regression"
	"statbench/internal/dataset"
	"statbench/internal/errors"
	"statbench/models"
	"statbench/ports"
)

// EngineDefaults fill request fields left at their zero value
type EngineDefaults struct {
	Alpha            float64
	NumericThreshold float64
	MaxCategories    int
	TestSize         float64
	LearningRate     float64
	Iterations       int
}

// DefaultEngineDefaults mirrors the engine's own defaults
func DefaultEngineDefaults() EngineDefaults {
	lc := regression.DefaultLogisticConfig()
	cc := dataset.DefaultClassifyConfig()
	return EngineDefaults{
		Alpha:            0.05,
		NumericThreshold: cc.NumericThreshold,
		MaxCategories:    cc.MaxCategories,
		TestSize:         lc.TestSize,
		LearningRate:     lc.LearningRate,
		Iterations:       lc.Iterations,
	}
}

// WorkbenchService pulls columns out of loaded datasets, runs the statistical
// engine on them and records each outcome. The run repository and the
// assumption checker are optional.
type WorkbenchService struct {
	datasets *DatasetStore
	runs     ports.RunRepository
	checker  ports.AssumptionChecker
	defaults EngineDefaults
	logger   *internal.Logger
}

// NewWorkbenchService creates the service
func NewWorkbenchService(datasets *DatasetStore, runs ports.RunRepository, checker ports.AssumptionChecker, defaults EngineDefaults) *WorkbenchService {
	return &WorkbenchService{
		datasets: datasets,
		runs:     runs,
		checker:  checker,
		defaults: defaults,
		logger:   internal.DefaultLogger.With("component", "workbench"),
	}
}

// Datasets exposes the dataset store
func (s *WorkbenchService) Datasets() *DatasetStore {
	return s.datasets
}

func (s *WorkbenchService) alpha(a float64) float64 {
	if a == 0 {
		return s.defaults.Alpha
	}
	return a
}

func (s *WorkbenchService) table(id string) (*dataset.Table, error) {
	t, err := s.datasets.Table(id)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return t, nil
}

func numericColumn(t *dataset.Table, name string) ([]float64, error) {
	values, err := t.NumericColumn(name)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return values, nil
}

func rawColumn(t *dataset.Table, name string) ([]any, error) {
	values, err := t.Column(name)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return values, nil
}

// record stores a successful outcome when a repository is configured. A
// storage failure is logged and does not fail the analysis.
func (s *WorkbenchService) record(ctx context.Context, kind, datasetID string, params, result interface{}, assumptions *ports.AssumptionReport) *Outcome {
	out := &Outcome{
		RunID:       uuid.New(),
		Kind:        kind,
		DatasetID:   datasetID,
		Params:      params,
		Result:      result,
		Assumptions: assumptions,
		CreatedAt:   time.Now().UTC(),
	}
	if assumptions != nil && !assumptions.CanProceed {
		out.Message = "The assumption checker reported violations; interpret the result with care"
	}
	if s.runs == nil {
		return out
	}

	run := &models.AnalysisRun{ID: out.RunID, Kind: kind, DatasetID: datasetID, Message: out.Message, CreatedAt: out.CreatedAt}
	var err error
	if run.Params, err = models.NewJSONDocument(params); err == nil {
		run.Result, err = models.NewJSONDocument(result)
	}
	if err == nil {
		err = s.runs.SaveRun(ctx, run)
	}
	if err != nil {
		s.logger.Warn("failed to record %s run %s: %v", kind, out.RunID, err)
	}
	return out
}

// Columns classifies every column of a dataset
func (s *WorkbenchService) Columns(ctx context.Context, datasetID string) ([]stats.ColumnProfile, error) {
	t, err := s.table(datasetID)
	if err != nil {
		return nil, err
	}
	cfg := dataset.DefaultClassifyConfig()
	cfg.NumericThreshold = s.defaults.NumericThreshold
	cfg.MaxCategories = s.defaults.MaxCategories
	return t.Profile(cfg), nil
}

// Describe summarises one numeric column
func (s *WorkbenchService) Describe(ctx context.Context, req DescribeRequest) (*Outcome, error) {
	t, err := s.table(req.DatasetID)
	if err != nil {
		return nil, err
	}
	sample, err := numericColumn(t, req.Column)
	if err != nil {
		return nil, err
	}
	summary, err := descriptive.Describe(sample)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return s.record(ctx, KindDescribe, req.DatasetID, req, summary, nil), nil
}

type normalityTest struct {
	name string
	run  func([]float64, float64) (*stats.NormalityResult, error)
}

var normalityTests = []normalityTest{
	{normality.TestShapiroWilk, normality.ShapiroWilk},
	{normality.TestAndersonDarling, normality.AndersonDarling},
	{normality.TestDAgostinoK2, normality.DAgostinoK2},
}

// Normality runs the three diagnostics concurrently. A diagnostic whose
// preconditions fail is reported in Messages; the call fails only when none
// of them can run.
func (s *WorkbenchService) Normality(ctx context.Context, req NormalityRequest) (*Outcome, error) {
	t, err := s.table(req.DatasetID)
	if err != nil {
		return nil, err
	}
	sample, err := numericColumn(t, req.Column)
	if err != nil {
		return nil, err
	}
	alpha := s.alpha(req.Alpha)
	req.Alpha = alpha

	report := &NormalityReport{
		Results:  make(map[string]*stats.NormalityResult, len(normalityTests)),
		Messages: make(map[string]string),
	}
	var mu sync.Mutex
	var lastErr error
	g, _ := errgroup.WithContext(ctx)
	for _, nt := range normalityTests {
		g.Go(func() error {
			res, err := nt.run(sample, alpha)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if !core.IsPreconditionError(err) {
					return err
				}
				report.Messages[nt.name] = err.Error()
				lastErr = err
				return nil
			}
			report.Results[nt.name] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "normality diagnostics failed")
	}
	if len(report.Results) == 0 {
		return nil, errors.FromDomain(lastErr)
	}
	return s.record(ctx, KindNormality, req.DatasetID, req, report, nil), nil
}

func selectGroups(groups []stats.Group, labels []string) ([]stats.Group, error) {
	if len(labels) == 0 {
		return groups, nil
	}
	byLabel := make(map[string]stats.Group, len(groups))
	for _, g := range groups {
		byLabel[g.Label] = g
	}
	out := make([]stats.Group, 0, len(labels))
	for _, l := range labels {
		g, ok := byLabel[l]
		if !ok {
			return nil, core.NewInvalidConfigError("groups", fmt.Sprintf("group %q not found", l))
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *WorkbenchService) groups(t *dataset.Table, groupColumn, valueColumn string) ([]stats.Group, error) {
	gc, err := rawColumn(t, groupColumn)
	if err != nil {
		return nil, err
	}
	vc, err := rawColumn(t, valueColumn)
	if err != nil {
		return nil, err
	}
	groups, err := dataset.GroupBy(gc, vc)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return groups, nil
}

func (s *WorkbenchService) checkAssumptions(ctx context.Context, groups []stats.Group, test string, alpha float64) *ports.AssumptionReport {
	if s.checker == nil {
		return nil
	}
	data := make(map[string][]float64, len(groups))
	for _, g := range groups {
		data[g.Label] = g.Values
	}
	report, err := s.checker.Check(ctx, ports.AssumptionRequest{GroupedData: data, TestType: test, Alpha: alpha})
	if err != nil {
		s.logger.Warn("assumption checker unavailable, continuing without it: %v", err)
		return nil
	}
	return report
}

// GroupTest compares a numeric column across the groups of a categorical one
func (s *WorkbenchService) GroupTest(ctx context.Context, req GroupTestRequest) (*Outcome, error) {
	t, err := s.table(req.DatasetID)
	if err != nil {
		return nil, err
	}
	all, err := s.groups(t, req.GroupColumn, req.ValueColumn)
	if err != nil {
		return nil, err
	}
	groups, err := selectGroups(all, req.Groups)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	alpha := s.alpha(req.Alpha)
	req.Alpha = alpha

	var result interface{}
	switch req.TestMethod {
	case GroupTestStudent, GroupTestWelch, GroupTestMannWhitney:
		if len(groups) != 2 {
			return nil, errors.FromDomain(core.NewInvalidConfigError("groups",
				fmt.Sprintf("%s compares exactly 2 groups, found %d; select two with groups", req.TestMethod, len(groups))))
		}
	case GroupTestANOVA:
	default:
		return nil, errors.FromDomain(core.NewInvalidConfigError("test_method", fmt.Sprintf("unknown method %q", req.TestMethod)))
	}

	assumptions := s.checkAssumptions(ctx, groups, string(req.TestMethod), alpha)

	switch req.TestMethod {
	case GroupTestStudent:
		result, err = parametric.IndependentTTest(groups[0].Values, groups[1].Values, alpha)
	case GroupTestWelch:
		result, err = parametric.WelchTTest(groups[0].Values, groups[1].Values, alpha)
	case GroupTestMannWhitney:
		tie := req.TieMethod
		if tie == "" {
			tie = stats.RankPositional
		}
		result, err = nonparametric.MannWhitneyU(groups[0].Values, groups[1].Values, alpha, nonparametric.Options{TieMethod: tie})
	case GroupTestANOVA:
		result, err = parametric.OneWayANOVA(groups, alpha)
	}
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return s.record(ctx, KindGroupTest, req.DatasetID, req, result, assumptions), nil
}

// Paired runs a paired t-test on rows where both columns are numeric
func (s *WorkbenchService) Paired(ctx context.Context, req PairedRequest) (*Outcome, error) {
	t, err := s.table(req.DatasetID)
	if err != nil {
		return nil, err
	}
	a, b, err := s.pairedColumns(t, req.ColumnA, req.ColumnB)
	if err != nil {
		return nil, err
	}
	req.Alpha = s.alpha(req.Alpha)
	res, err := parametric.PairedTTest(a, b, req.Alpha)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return s.record(ctx, KindPaired, req.DatasetID, req, res, nil), nil
}

func (s *WorkbenchService) pairedColumns(t *dataset.Table, colA, colB string) ([]float64, []float64, error) {
	ra, err := rawColumn(t, colA)
	if err != nil {
		return nil, nil, err
	}
	rb, err := rawColumn(t, colB)
	if err != nil {
		return nil, nil, err
	}
	a, b, err := dataset.Paired(ra, rb)
	if err != nil {
		return nil, nil, errors.FromDomain(err)
	}
	return a, b, nil
}

// OneSample tests a column mean against a hypothesised value
func (s *WorkbenchService) OneSample(ctx context.Context, req OneSampleRequest) (*Outcome, error) {
	t, err := s.table(req.DatasetID)
	if err != nil {
		return nil, err
	}
	sample, err := numericColumn(t, req.Column)
	if err != nil {
		return nil, err
	}
	req.Alpha = s.alpha(req.Alpha)
	res, err := parametric.OneSampleTTest(sample, req.Mu, req.Alpha)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return s.record(ctx, KindOneSample, req.DatasetID, req, res, nil), nil
}

// PostHoc fits the groups once and runs every requested method on the same
// pooled error term
func (s *WorkbenchService) PostHoc(ctx context.Context, req PostHocRequest) (*Outcome, error) {
	t, err := s.table(req.DatasetID)
	if err != nil {
		return nil, err
	}
	methods := make([]stats.PostHocMethod, 0, 4)
	for _, name := range req.Methods {
		m, ok := stats.ParsePostHocMethod(name)
		if !ok {
			return nil, errors.FromDomain(core.NewInvalidConfigError("methods", fmt.Sprintf("unknown post-hoc method %q", name)))
		}
		methods = append(methods, m)
	}
	if len(methods) == 0 {
		methods = []stats.PostHocMethod{stats.PostHocTukey, stats.PostHocBonferroni, stats.PostHocScheffe, stats.PostHocFisherLSD}
	}

	groups, err := s.groups(t, req.GroupColumn, req.ValueColumn)
	if err != nil {
		return nil, err
	}
	ph, err := anova.NewPostHoc(groups)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	req.Alpha = s.alpha(req.Alpha)

	report := &PostHocReport{
		MSE:      ph.MSE(),
		DFWithin: ph.DFWithin(),
		Groups:   ph.Groups(),
		Results:  make(map[stats.PostHocMethod]*stats.PostHocResult, len(methods)),
	}
	for _, m := range methods {
		res, err := ph.Compare(m, req.Alpha)
		if err != nil {
			return nil, errors.FromDomain(err)
		}
		report.Results[m] = res
	}
	return s.record(ctx, KindPostHoc, req.DatasetID, req, report, nil), nil
}

// TwoWay runs a factorial ANOVA of a numeric column on two categorical ones
func (s *WorkbenchService) TwoWay(ctx context.Context, req TwoWayRequest) (*Outcome, error) {
	t, err := s.table(req.DatasetID)
	if err != nil {
		return nil, err
	}
	if req.FactorA == req.FactorB {
		return nil, errors.FromDomain(core.NewInvalidConfigError("factors", "factor A and factor B must be different columns"))
	}
	fa, err := rawColumn(t, req.FactorA)
	if err != nil {
		return nil, err
	}
	fb, err := rawColumn(t, req.FactorB)
	if err != nil {
		return nil, err
	}
	vc, err := rawColumn(t, req.ValueColumn)
	if err != nil {
		return nil, err
	}

	obs := make([]stats.Observation, 0, len(vc))
	for i, raw := range vc {
		v, ok := dataset.ParseNumber(raw)
		if !ok {
			continue
		}
		obs = append(obs, stats.Observation{A: dataset.CategoryLabel(fa[i]), B: dataset.CategoryLabel(fb[i]), Value: v})
	}

	req.Alpha = s.alpha(req.Alpha)
	res, err := anova.TwoWay(obs, anova.TwoWayConfig{FactorAName: req.FactorA, FactorBName: req.FactorB, Alpha: req.Alpha})
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	out := s.record(ctx, KindTwoWay, req.DatasetID, req, res, nil)
	if !res.ErrorTermDefined {
		out.Message = "No within-cell degrees of freedom: F statistics and p-values are not defined"
	}
	return out, nil
}

// Correlation builds the correlation matrix of the requested columns. With
// exactly two columns it also runs the pairwise test on complete rows.
func (s *WorkbenchService) Correlation(ctx context.Context, req CorrelationRequest) (*Outcome, error) {
	t, err := s.table(req.DatasetID)
	if err != nil {
		return nil, err
	}
	if len(req.Columns) < 2 {
		return nil, errors.FromDomain(core.NewInsufficientDataError("correlation columns", len(req.Columns), 2))
	}
	if req.Method == "" {
		req.Method = stats.CorrelationPearson
	}
	if req.TieMethod == "" {
		req.TieMethod = stats.RankPositional
	}
	req.Alpha = s.alpha(req.Alpha)

	columns := make([]stats.Column, 0, len(req.Columns))
	for _, name := range req.Columns {
		values, err := numericColumn(t, name)
		if err != nil {
			return nil, err
		}
		columns = append(columns, stats.Column{Name: name, Values: values})
	}
	matrix, err := correlation.Matrix(columns, req.Method, req.Alpha)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	report := &CorrelationReport{Matrix: matrix}

	if len(req.Columns) == 2 {
		x, y, err := s.pairedColumns(t, req.Columns[0], req.Columns[1])
		if err != nil {
			return nil, err
		}
		if req.Method == stats.CorrelationSpearman {
			report.Pair, err = correlation.Spearman(x, y, req.Alpha, req.TieMethod)
		} else {
			report.Pair, err = correlation.Compute(req.Method, x, y, req.Alpha)
		}
		if err != nil {
			return nil, errors.FromDomain(err)
		}
	}
	return s.record(ctx, KindCorrelation, req.DatasetID, req, report, nil), nil
}

// Independence runs a chi-square test on two categorical columns
func (s *WorkbenchService) Independence(ctx context.Context, req IndependenceRequest) (*Outcome, error) {
	t, err := s.table(req.DatasetID)
	if err != nil {
		return nil, err
	}
	rows, err := rawColumn(t, req.RowColumn)
	if err != nil {
		return nil, err
	}
	cols, err := rawColumn(t, req.ColColumn)
	if err != nil {
		return nil, err
	}
	table, err := categorical.BuildTableFromRaw(rows, cols)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	req.Alpha = s.alpha(req.Alpha)
	res, err := categorical.ChiSquare(table, req.Alpha)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	out := s.record(ctx, KindIndependence, req.DatasetID, req, res, nil)
	if res.LowExpectedShare > 0.2 {
		out.Message = fmt.Sprintf("%.0f%% of cells have an expected count below 5; the chi-square approximation may be unreliable", res.LowExpectedShare*100)
	}
	return out, nil
}

// Linear regresses one numeric column on another
func (s *WorkbenchService) Linear(ctx context.Context, req LinearRequest) (*Outcome, error) {
	t, err := s.table(req.DatasetID)
	if err != nil {
		return nil, err
	}
	x, y, err := s.pairedColumns(t, req.XColumn, req.YColumn)
	if err != nil {
		return nil, err
	}
	res, err := regression.Linear(x, y)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return s.record(ctx, KindLinear, req.DatasetID, req, res, nil), nil
}

// Logistic trains a binary classifier on numeric feature columns. Cells that
// are not numeric become NaN so the engine drops their rows.
func (s *WorkbenchService) Logistic(ctx context.Context, req LogisticRequest) (*Outcome, error) {
	t, err := s.table(req.DatasetID)
	if err != nil {
		return nil, err
	}
	features := make([][]any, len(req.Features))
	for j, name := range req.Features {
		if features[j], err = rawColumn(t, name); err != nil {
			return nil, err
		}
	}
	targetCol, err := rawColumn(t, req.Target)
	if err != nil {
		return nil, err
	}

	x := make([][]float64, t.Len())
	target := make([]string, t.Len())
	for i := range x {
		row := make([]float64, len(features))
		for j := range features {
			v, ok := dataset.ParseNumber(features[j][i])
			if !ok {
				v = math.NaN()
			}
			row[j] = v
		}
		x[i] = row
		if !dataset.IsEmpty(targetCol[i]) {
			target[i] = dataset.CategoryLabel(targetCol[i])
		}
	}

	cfg := regression.DefaultLogisticConfig()
	cfg.TestSize = s.defaults.TestSize
	cfg.LearningRate = s.defaults.LearningRate
	cfg.Iterations = s.defaults.Iterations
	if req.TestSize != 0 {
		cfg.TestSize = req.TestSize
	}
	if req.LearningRate != 0 {
		cfg.LearningRate = req.LearningRate
	}
	if req.Iterations != 0 {
		cfg.Iterations = req.Iterations
	}
	if req.Threshold != 0 {
		cfg.Threshold = req.Threshold
	}
	cfg.Seed = req.Seed
	req.TestSize, req.LearningRate, req.Iterations, req.Threshold = cfg.TestSize, cfg.LearningRate, cfg.Iterations, cfg.Threshold

	fit, err := regression.TrainLogistic(x, target, req.Features, cfg)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return s.record(ctx, KindLogistic, req.DatasetID, req, fit, nil), nil
}

// Runs lists stored outcomes
func (s *WorkbenchService) Runs(ctx context.Context, filter models.RunFilter) ([]*models.AnalysisRun, error) {
	if s.runs == nil {
		return []*models.AnalysisRun{}, nil
	}
	runs, err := s.runs.ListRuns(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	return runs, nil
}

// Run fetches one stored outcome
func (s *WorkbenchService) Run(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error) {
	if s.runs == nil {
		return nil, errors.NotFound("run history")
	}
	run, err := s.runs.GetRun(ctx, id)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return run, nil
}
