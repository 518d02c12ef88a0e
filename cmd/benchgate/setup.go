package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/benchgate/benchgate/internal/models"
	"github.com/benchgate/benchgate/internal/pricing"
	"github.com/benchgate/benchgate/internal/providers"
	"github.com/benchgate/benchgate/internal/scorers"
)

// suite is everything a command needs to execute a loaded benchmark.
type suite struct {
	spec      *models.BenchmarkSpec
	providers []providers.Provider
	tasks     []*models.Task
	pipeline  []scorers.Scorer
	timeout   time.Duration
}

// loadSuite loads and validates a benchmark spec and builds its providers,
// tasks, and scorer pipeline. Task globs resolve relative to the spec file.
func loadSuite(specPath string) (*suite, error) {
	spec, err := models.LoadBenchmarkSpec(specPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load spec: %w", err)
	}

	specDir := filepath.Dir(specPath)
	if abs, err := filepath.Abs(specDir); err == nil {
		specDir = abs
	}

	provs, err := providers.BuildAll(spec.Providers)
	if err != nil {
		return nil, fmt.Errorf("failed to build providers: %w", err)
	}

	tasks, err := models.LoadTasks(specDir, spec.Tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	deps := scorers.Deps{
		Pricing: pricing.FromSpec(spec.Pricing),
	}
	if spec.Config.JudgeID != "" {
		judge := findProvider(provs, spec.Config.JudgeID)
		if judge == nil {
			return nil, fmt.Errorf("judge provider %q is not declared in providers", spec.Config.JudgeID)
		}
		deps.Judge = judge
	}

	pipeline, err := scorers.CreateAll(spec.Scorers, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to build scorers: %w", err)
	}

	return &suite{
		spec:      spec,
		providers: provs,
		tasks:     tasks,
		pipeline:  pipeline,
		timeout:   time.Duration(spec.Config.TimeoutMs) * time.Millisecond,
	}, nil
}

func findProvider(provs []providers.Provider, id string) providers.Provider {
	for _, p := range provs {
		if p.ID() == id {
			return p
		}
	}
	return nil
}
