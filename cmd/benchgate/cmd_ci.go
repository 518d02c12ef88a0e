package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benchgate/benchgate/internal/baseline"
	"github.com/benchgate/benchgate/internal/gate"
	"github.com/benchgate/benchgate/internal/models"
	"github.com/benchgate/benchgate/internal/reporting"
	"github.com/benchgate/benchgate/internal/statistics"
)

var (
	ciBaselinePath  string
	ciSaveBaseline  bool
	ciFormat        string
	ciOutputPath    string
	ciBlobURL       string
	ciBlobContainer string
	ciBlobName      string
)

func newCICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ci <benchmark.yaml>",
		Short: "Run a benchmark suite and gate on regressions against a baseline",
		Long: `Run a benchmark suite and compare the results against a persisted
baseline. The command fails when any gated scorer regressed beyond its
threshold or total spend exceeded the budget.

The baseline lives in a local JSON file by default. Set --blob-url to load
and save it from Azure Blob Storage instead.`,
		Args: cobra.ExactArgs(1),
		RunE: ciCommandE,
	}

	cmd.Flags().StringVar(&ciBaselinePath, "baseline", ".benchgate/baseline.json", "Baseline file path")
	cmd.Flags().BoolVar(&ciSaveBaseline, "save-baseline", false, "Persist current results as the new baseline when the gate passes")
	cmd.Flags().StringVar(&ciFormat, "format", "default", "Output format: default, github-comment")
	cmd.Flags().StringVarP(&ciOutputPath, "output", "o", "", "Output JSON file for the gate report")
	cmd.Flags().StringVar(&ciBlobURL, "blob-url", "", "Azure Blob service URL for baseline storage (e.g. https://acct.blob.core.windows.net)")
	cmd.Flags().StringVar(&ciBlobContainer, "blob-container", "benchgate", "Blob container for baseline storage")
	cmd.Flags().StringVar(&ciBlobName, "blob-name", "baseline.json", "Blob name for baseline storage")

	return cmd
}

func ciCommandE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch ciFormat {
	case "default", "github-comment":
	default:
		return fmt.Errorf("unknown output format: %s (supported: default, github-comment)", ciFormat)
	}

	s, err := loadSuite(args[0])
	if err != nil {
		return err
	}

	var store *baseline.BlobStore
	if ciBlobURL != "" {
		store, err = baseline.NewBlobStore(ciBlobURL, ciBlobContainer)
		if err != nil {
			return fmt.Errorf("failed to open baseline store: %w", err)
		}
	}

	base, err := loadBaseline(ctx, store)
	if err != nil {
		return err
	}
	if base == nil {
		fmt.Println("No baseline found; this run establishes one.")
	} else {
		fmt.Printf("Baseline from %s\n", base.Timestamp)
	}

	fmt.Printf("Running benchmark: %s\n\n", s.spec.Name)

	results, err := runMatrix(ctx, s, s.spec.Config.RunsPerCell)
	if err != nil {
		return err
	}

	currentStats := statistics.Compute(results)
	var baselineStats map[string]statistics.ScorerStats
	if base != nil {
		baselineStats = statistics.Compute(base.Results)
	}

	report := gate.Compare(baselineStats, currentStats, s.spec.Gate.Thresholds, s.spec.Gate.BudgetUSD, results)

	switch ciFormat {
	case "github-comment":
		fmt.Print(reporting.GitHubComment(report))
	case "default":
		fmt.Print(reporting.StatsTable(currentStats))
		if errs := reporting.ErrorSummary(results); errs != "" {
			fmt.Println("\nErrors:")
			fmt.Print(errs)
		}
		fmt.Println()
		fmt.Print(reporting.Verdict(report))
	}

	if ciOutputPath != "" {
		if err := reporting.WriteJSON(ciOutputPath, report); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		fmt.Printf("Report saved to: %s\n", ciOutputPath)
	}

	if report.Failed {
		return &GateFailureError{Message: fmt.Sprintf("gate failed: %d reason(s)", len(report.Reasons))}
	}
	if allCellsFailed(results) {
		return &GateFailureError{Message: "every benchmark cell errored; no scores were produced"}
	}

	if ciSaveBaseline {
		if err := saveBaseline(ctx, store, results); err != nil {
			return fmt.Errorf("failed to save baseline: %w", err)
		}
		fmt.Println("Baseline updated.")
	}

	return nil
}

func loadBaseline(ctx context.Context, store *baseline.BlobStore) (*models.BaselineData, error) {
	if store != nil {
		return store.Load(ctx, ciBlobName)
	}
	return baseline.Load(ciBaselinePath), nil
}

func saveBaseline(ctx context.Context, store *baseline.BlobStore, results []models.BenchmarkResult) error {
	if store != nil {
		return store.Save(ctx, ciBlobName, results)
	}
	return baseline.Save(ciBaselinePath, results)
}

func allCellsFailed(results []models.BenchmarkResult) bool {
	for _, r := range results {
		if !r.Failed() {
			return false
		}
	}
	return len(results) > 0
}
