// Package engine executes the task × provider × run benchmark matrix.
//
// Combinations of (task, provider) run concurrently with no engine-imposed
// cap; callers control fan-out by the size of their task and provider lists.
// The runs within one combination execute sequentially to keep per-repetition
// jitter isolated. Every cell resolves to exactly one immutable
// BenchmarkResult: provider failures, scorer failures, and timeouts are
// contained in that cell's record and never abort siblings.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/benchgate/benchgate/internal/models"
	"github.com/benchgate/benchgate/internal/providers"
	"github.com/benchgate/benchgate/internal/scorers"
)

// Options configures one benchmark sweep.
type Options struct {
	// RunsPerCell is the number of repetitions per (task, provider) pair.
	RunsPerCell int

	// Timeout bounds each individual provider invocation.
	Timeout time.Duration

	// Progress, when set, receives each cell as soon as it completes, in
	// completion order rather than the canonical order of the returned
	// list. The caller must keep draining it until Run returns; Run closes
	// it before returning.
	Progress chan<- models.BenchmarkResult
}

// Run executes the full matrix and returns one result per cell in canonical
// order: task-declaration order, then provider-declaration order, then run
// index ascending. Configuration errors are reported before any execution
// begins; per-cell failures always surface as result records, never as an
// error from Run.
func Run(ctx context.Context, provs []providers.Provider, tasks []*models.Task, pipeline []scorers.Scorer, opts Options) ([]models.BenchmarkResult, error) {
	if opts.Progress != nil {
		defer close(opts.Progress)
	}

	if len(provs) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("no tasks configured")
	}
	if opts.RunsPerCell < 1 {
		return nil, fmt.Errorf("runs per cell must be at least 1, got %d", opts.RunsPerCell)
	}
	if opts.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %v", opts.Timeout)
	}

	r := &runner{
		pipeline: pipeline,
		opts:     opts,
	}

	// Each worker owns a disjoint slice range, so canonical order falls out
	// of indexed placement and the WaitGroup is the only synchronization on
	// the output.
	results := make([]models.BenchmarkResult, len(tasks)*len(provs)*opts.RunsPerCell)

	var wg sync.WaitGroup
	for ti, task := range tasks {
		for pi, prov := range provs {
			wg.Add(1)
			base := (ti*len(provs) + pi) * opts.RunsPerCell
			go func(task *models.Task, prov providers.Provider, base int) {
				defer wg.Done()
				for run := 1; run <= opts.RunsPerCell; run++ {
					cell := r.executeCell(ctx, prov, task, run)
					results[base+run-1] = cell
					r.notify(cell)
				}
			}(task, prov, base)
		}
	}
	wg.Wait()

	return results, nil
}

type runner struct {
	pipeline []scorers.Scorer
	opts     Options
}

func (r *runner) notify(cell models.BenchmarkResult) {
	if r.opts.Progress != nil {
		r.opts.Progress <- cell
	}
}

// executeCell runs one (task, provider, run) cell to completion. Every
// failure path returns a record with Error set and no scores.
func (r *runner) executeCell(ctx context.Context, prov providers.Provider, task *models.Task, run int) models.BenchmarkResult {
	cell := models.BenchmarkResult{
		ProviderID: prov.ID(),
		TaskName:   task.Name,
		Run:        run,
	}

	res, err := r.invokeWithTimeout(ctx, prov, task)
	if err != nil {
		cell.Error = err.Error()
		return cell
	}

	cell.Raw = models.RawResult{
		Output:     res.Output,
		LatencyMs:  res.LatencyMs,
		TokenUsage: res.TokenUsage,
		ToolCalls:  res.ToolCalls,
	}

	scores, err := r.scoreCell(ctx, task, res, prov.ID())
	if err != nil {
		cell.Error = err.Error()
		cell.Scores = nil
		return cell
	}
	cell.Scores = scores

	return cell
}

// invokeWithTimeout wraps one provider call in a cancellable timeout. The
// cancellation is advisory to the provider: on timeout the engine records the
// failure immediately instead of waiting for the in-flight call to unwind.
func (r *runner) invokeWithTimeout(ctx context.Context, prov providers.Provider, task *models.Task) (*models.TaskResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	type outcome struct {
		res *models.TaskResult
		err error
	}

	done := make(chan outcome, 1)
	go func() {
		res, err := prov.Invoke(callCtx, &providers.InvokeRequest{
			Prompt: task.Prompt,
			Schema: task.OutputSchema,
			Tools:  task.Tools,
		})
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, r.timeoutError()
			}
			return nil, out.err
		}
		return out.res, nil
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			slog.Debug("provider call timed out", "provider", prov.ID(), "task", task.Name)
			return nil, r.timeoutError()
		}
		// The sweep itself was cancelled.
		return nil, ctx.Err()
	}
}

func (r *runner) timeoutError() error {
	return fmt.Errorf("Request timed out after %dms", r.opts.Timeout.Milliseconds())
}

// scoreCell runs every configured scorer over one result. Scorers are
// independent and run concurrently; their results land in configured-scorer
// order. One scorer error fails the whole cell.
func (r *runner) scoreCell(ctx context.Context, task *models.Task, res *models.TaskResult, providerID string) ([]models.ScoreResult, error) {
	if len(r.pipeline) == 0 {
		return []models.ScoreResult{}, nil
	}

	sc := &scorers.Context{Task: task, Result: res}
	collected := make([]models.ScoreResult, len(r.pipeline))

	g, gctx := errgroup.WithContext(ctx)
	for i, scorer := range r.pipeline {
		g.Go(func() error {
			score, err := scorer.Score(gctx, sc, providerID)
			if err != nil {
				return fmt.Errorf("scorer %s: %w", scorer.Name(), err)
			}
			collected[i] = *score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return collected, nil
}
