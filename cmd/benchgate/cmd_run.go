package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benchgate/benchgate/internal/engine"
	"github.com/benchgate/benchgate/internal/models"
	"github.com/benchgate/benchgate/internal/reporting"
	"github.com/benchgate/benchgate/internal/statistics"
)

var (
	runOutputPath string
	runVerbose    bool
	runsOverride  int
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <benchmark.yaml>",
		Short: "Run a benchmark suite and print per-group statistics",
		Long: `Run a benchmark suite from a spec file.

Every task runs against every provider for the configured number of
repetitions. Results are aggregated per (provider, task, scorer) group into
mean, standard deviation, and a 95% confidence interval.`,
		Args: cobra.ExactArgs(1),
		RunE: runCommandE,
	}

	cmd.Flags().StringVarP(&runOutputPath, "output", "o", "", "Output JSON file for raw results")
	cmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print each cell as it completes")
	cmd.Flags().IntVar(&runsOverride, "runs", 0, "Override runs per cell from the spec")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	s, err := loadSuite(args[0])
	if err != nil {
		return err
	}

	runs := s.spec.Config.RunsPerCell
	if runsOverride > 0 {
		runs = runsOverride
	}

	fmt.Printf("Running benchmark: %s\n", s.spec.Name)
	fmt.Printf("Providers: %d  Tasks: %d  Runs per cell: %d\n\n", len(s.providers), len(s.tasks), runs)

	results, err := runMatrix(cmd.Context(), s, runs)
	if err != nil {
		return err
	}

	stats := statistics.Compute(results)
	fmt.Println()
	fmt.Print(reporting.StatsTable(stats))

	if errs := reporting.ErrorSummary(results); errs != "" {
		fmt.Println("\nErrors:")
		fmt.Print(errs)
	}

	if runOutputPath != "" {
		if err := reporting.WriteJSON(runOutputPath, models.NewBaselineData(results)); err != nil {
			return fmt.Errorf("failed to save output: %w", err)
		}
		fmt.Printf("\nResults saved to: %s\n", runOutputPath)
	}

	return nil
}

// runMatrix executes the suite with an optional progress listener.
func runMatrix(ctx context.Context, s *suite, runs int) ([]models.BenchmarkResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := engine.Options{
		RunsPerCell: runs,
		Timeout:     s.timeout,
	}

	var drained chan struct{}
	if runVerbose {
		progress := make(chan models.BenchmarkResult)
		opts.Progress = progress
		drained = make(chan struct{})
		go func() {
			defer close(drained)
			for r := range progress {
				status := "✓"
				if r.Failed() {
					status = "✗"
				}
				fmt.Printf("%s %s × %s (run %d)\n", status, r.ProviderID, r.TaskName, r.Run)
			}
		}()
	}

	results, err := engine.Run(ctx, s.providers, s.tasks, s.pipeline, opts)
	if drained != nil {
		<-drained
	}
	if err != nil {
		return nil, fmt.Errorf("benchmark failed: %w", err)
	}
	return results, nil
}
