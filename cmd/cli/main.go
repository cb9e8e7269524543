package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"statbench/adapters/excel"
	"statbench/app"
	"statbench/domain/stats"
	"statbench/internal/config"
	"statbench/internal/container"
	"statbench/internal/errors"
)

// globalFlags are shared by every analysis command
type globalFlags struct {
	alpha   float64
	sheet   string
	maxRows int
	history bool
}

func main() {
	var flags globalFlags
	rootCmd := &cobra.Command{
		Use:           "statbench-cli",
		Short:         "Run statistical analyses on CSV and XLSX files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Float64Var(&flags.alpha, "alpha", 0, "Significance level (0 uses DEFAULT_ALPHA)")
	rootCmd.PersistentFlags().StringVar(&flags.sheet, "sheet", "", "XLSX sheet name (default first sheet)")
	rootCmd.PersistentFlags().IntVar(&flags.maxRows, "max-rows", 0, "Read at most this many data rows")
	rootCmd.PersistentFlags().BoolVar(&flags.history, "history", false, "Record runs in the configured database")

	rootCmd.AddCommand(
		newColumnsCmd(&flags),
		newDescribeCmd(&flags),
		newNormalityCmd(&flags),
		newGroupTestCmd(&flags),
		newPairedCmd(&flags),
		newOneSampleCmd(&flags),
		newPostHocCmd(&flags),
		newTwoWayCmd(&flags),
		newCorrelateCmd(&flags),
		newIndependenceCmd(&flags),
		newLinearCmd(&flags),
		newLogisticCmd(&flags),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n  %v\n", errors.UserMessage(err), err)
		os.Exit(1)
	}
}

// run loads the file, hands the dataset ID to fn and prints its result as JSON
func run(ctx context.Context, flags *globalFlags, path string, fn func(context.Context, *app.WorkbenchService, string) (interface{}, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !flags.history {
		cfg.Database.URL = ""
	}
	cfg.Storage.UploadDir = ""

	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	if err := c.Init(ctx); err != nil {
		return err
	}
	defer c.Shutdown(ctx)

	table, err := excel.NewDataReaderWithConfig(path, excel.ReaderConfig{Sheet: flags.sheet, MaxRows: flags.maxRows}).ReadData()
	if err != nil {
		return err
	}
	info := c.Datasets.Add(table)

	result, err := fn(ctx, c.Workbench, info.ID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func newColumnsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "columns [file]",
		Short: "Classify every column as numeric, categorical, empty or unknown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, args[0], func(ctx context.Context, svc *app.WorkbenchService, id string) (interface{}, error) {
				return svc.Columns(ctx, id)
			})
		},
	}
}

func newDescribeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [file] [column]",
		Short: "Descriptive statistics of a numeric column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, args[0], func(ctx context.Context, svc *app.WorkbenchService, id string) (interface{}, error) {
				return svc.Describe(ctx, app.DescribeRequest{DatasetID: id, Column: args[1]})
			})
		},
	}
}

func newNormalityCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "normality [file] [column]",
		Short: "Shapiro-Wilk, Anderson-Darling and D'Agostino K² on one column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, args[0], func(ctx context.Context, svc *app.WorkbenchService, id string) (interface{}, error) {
				return svc.Normality(ctx, app.NormalityRequest{DatasetID: id, Column: args[1], Alpha: flags.alpha})
			})
		},
	}
}

func newGroupTestCmd(flags *globalFlags) *cobra.Command {
	var method, tie string
	var groups []string

	cmd := &cobra.Command{
		Use:   "group-test [file] [group-column] [value-column]",
		Short: "Compare a numeric column across groups",
		Long: `Compare a numeric column across the groups of a categorical column.

Methods: ttest, welch, mannwhitney (exactly two groups) and anova.

Example: statbench-cli group-test scores.csv class score --method welch --groups a,b`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, args[0], func(ctx context.Context, svc *app.WorkbenchService, id string) (interface{}, error) {
				return svc.GroupTest(ctx, app.GroupTestRequest{
					DatasetID:   id,
					GroupColumn: args[1],
					ValueColumn: args[2],
					TestMethod:  app.GroupTestMethod(method),
					Groups:      groups,
					TieMethod:   stats.RankMethod(tie),
					Alpha:       flags.alpha,
				})
			})
		},
	}

	cmd.Flags().StringVar(&method, "method", string(app.GroupTestWelch), "ttest, welch, mannwhitney or anova")
	cmd.Flags().StringSliceVar(&groups, "groups", nil, "Group labels to compare")
	cmd.Flags().StringVar(&tie, "ties", string(stats.RankPositional), "Tie ranking for mannwhitney: positional or average")

	return cmd
}

func newPairedCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "paired [file] [column-a] [column-b]",
		Short: "Paired t-test on two columns of the same rows",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, args[0], func(ctx context.Context, svc *app.WorkbenchService, id string) (interface{}, error) {
				return svc.Paired(ctx, app.PairedRequest{DatasetID: id, ColumnA: args[1], ColumnB: args[2], Alpha: flags.alpha})
			})
		},
	}
}

func newOneSampleCmd(flags *globalFlags) *cobra.Command {
	var mu float64

	cmd := &cobra.Command{
		Use:   "one-sample [file] [column]",
		Short: "One-sample t-test of a column mean",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, args[0], func(ctx context.Context, svc *app.WorkbenchService, id string) (interface{}, error) {
				return svc.OneSample(ctx, app.OneSampleRequest{DatasetID: id, Column: args[1], Mu: mu, Alpha: flags.alpha})
			})
		},
	}

	cmd.Flags().Float64Var(&mu, "mu", 0, "Hypothesised population mean")

	return cmd
}

func newPostHocCmd(flags *globalFlags) *cobra.Command {
	var methods []string

	cmd := &cobra.Command{
		Use:   "posthoc [file] [group-column] [value-column]",
		Short: "Pairwise post-hoc comparisons after a one-way ANOVA",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, args[0], func(ctx context.Context, svc *app.WorkbenchService, id string) (interface{}, error) {
				return svc.PostHoc(ctx, app.PostHocRequest{DatasetID: id, GroupColumn: args[1], ValueColumn: args[2], Methods: methods, Alpha: flags.alpha})
			})
		},
	}

	cmd.Flags().StringSliceVar(&methods, "methods", nil, "tukey, bonferroni, scheffe, fisher_lsd (default all)")

	return cmd
}

func newTwoWayCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "twoway [file] [factor-a] [factor-b] [value-column]",
		Short: "Two-way ANOVA with interaction",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, args[0], func(ctx context.Context, svc *app.WorkbenchService, id string) (interface{}, error) {
				return svc.TwoWay(ctx, app.TwoWayRequest{DatasetID: id, FactorA: args[1], FactorB: args[2], ValueColumn: args[3], Alpha: flags.alpha})
			})
		},
	}
}

func newCorrelateCmd(flags *globalFlags) *cobra.Command {
	var method, tie string

	cmd := &cobra.Command{
		Use:   "correlate [file] [column] [column...]",
		Short: "Correlation matrix of two or more numeric columns",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, args[0], func(ctx context.Context, svc *app.WorkbenchService, id string) (interface{}, error) {
				return svc.Correlation(ctx, app.CorrelationRequest{
					DatasetID: id,
					Columns:   args[1:],
					Method:    stats.CorrelationMethod(method),
					TieMethod: stats.RankMethod(tie),
					Alpha:     flags.alpha,
				})
			})
		},
	}

	cmd.Flags().StringVar(&method, "method", string(stats.CorrelationPearson), "pearson or spearman")
	cmd.Flags().StringVar(&tie, "ties", string(stats.RankPositional), "Tie ranking for spearman: positional or average")

	return cmd
}

func newIndependenceCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "independence [file] [row-column] [col-column]",
		Short: "Chi-square test of independence of two categorical columns",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, args[0], func(ctx context.Context, svc *app.WorkbenchService, id string) (interface{}, error) {
				return svc.Independence(ctx, app.IndependenceRequest{DatasetID: id, RowColumn: args[1], ColColumn: args[2], Alpha: flags.alpha})
			})
		},
	}
}

func newLinearCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "linear [file] [x-column] [y-column]",
		Short: "Simple linear regression of y on x",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, args[0], func(ctx context.Context, svc *app.WorkbenchService, id string) (interface{}, error) {
				return svc.Linear(ctx, app.LinearRequest{DatasetID: id, XColumn: args[1], YColumn: args[2]})
			})
		},
	}
}

func newLogisticCmd(flags *globalFlags) *cobra.Command {
	var features []string
	var testSize, learningRate, threshold float64
	var iterations int
	var seed int64

	cmd := &cobra.Command{
		Use:   "logistic [file] [target-column]",
		Short: "Train a binary logistic regression classifier",
		Long: `Train a binary logistic regression classifier on numeric feature columns.

Example: statbench-cli logistic patients.csv outcome --features age,bmi --seed 42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.LogisticRequest{
				Features:     features,
				Target:       args[1],
				TestSize:     testSize,
				LearningRate: learningRate,
				Iterations:   iterations,
				Threshold:    threshold,
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}
			return run(cmd.Context(), flags, args[0], func(ctx context.Context, svc *app.WorkbenchService, id string) (interface{}, error) {
				req.DatasetID = id
				return svc.Logistic(ctx, req)
			})
		},
	}

	cmd.Flags().StringSliceVar(&features, "features", nil, "Numeric feature columns")
	cmd.Flags().Float64Var(&testSize, "test-size", 0, "Held-out fraction (0 uses DEFAULT_TEST_SIZE)")
	cmd.Flags().Float64Var(&learningRate, "learning-rate", 0, "Gradient descent step (0 uses DEFAULT_LEARNING_RATE)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Gradient descent iterations (0 uses DEFAULT_ITERATIONS)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Decision threshold (default 0.5)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for a reproducible split")
	_ = cmd.MarkFlagRequired("features")

	return cmd
}
