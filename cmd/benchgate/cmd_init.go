package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/benchgate/benchgate/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new benchmark suite",
		Long: `Initialize a new benchmark suite directory.

Creates a benchmark.yaml spec file and a tasks/ directory with an example
task. Use --interactive to run a guided wizard that collects the suite
configuration instead of writing defaults.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args, interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run the guided setup wizard")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string, interactive bool) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	spec := &wizard.InitSpec{
		Name:         "my-benchmark",
		Description:  "Benchmark suite for my-benchmark.",
		ProviderKind: "mock",
		Model:        "gpt-4o-mini",
		RunsPerCell:  3,
		TimeoutMs:    30000,
	}

	if interactive {
		collected, err := wizard.RunInitWizard(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("wizard failed: %w", err)
		}
		spec = collected
	}

	specContent, err := wizard.GenerateBenchmarkYAML(spec)
	if err != nil {
		return fmt.Errorf("failed to generate benchmark.yaml: %w", err)
	}

	specPath := filepath.Join(dir, "benchmark.yaml")
	if err := os.WriteFile(specPath, []byte(specContent), 0o644); err != nil {
		return fmt.Errorf("failed to write benchmark.yaml: %w", err)
	}

	tasksDir := filepath.Join(dir, "tasks")
	if err := os.MkdirAll(tasksDir, 0o755); err != nil {
		return fmt.Errorf("failed to create tasks directory: %w", err)
	}

	taskPath := filepath.Join(tasksDir, "greeting.yaml")
	if err := os.WriteFile(taskPath, []byte(wizard.GenerateExampleTask()), 0o644); err != nil {
		return fmt.Errorf("failed to write example task: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Initialized benchmark suite:") //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", specPath)              //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", taskPath)              //nolint:errcheck

	return nil
}
