package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/benchgate/benchgate/internal/models"
	"github.com/benchgate/benchgate/internal/providers"
	"github.com/benchgate/benchgate/internal/scorers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTasks(names ...string) []*models.Task {
	tasks := make([]*models.Task, 0, len(names))
	for _, name := range names {
		expected := models.StringValue("42")
		tasks = append(tasks, &models.Task{
			Name:     name,
			Prompt:   "prompt for " + name,
			Expected: &expected,
		})
	}
	return tasks
}

// staticScorer returns a fixed value for every cell.
type staticScorer struct {
	name  string
	value float64
	err   error
}

func (s *staticScorer) Name() string              { return s.name }
func (s *staticScorer) Kind() scorers.Kind        { return scorers.KindExactMatch }
func (s *staticScorer) Score(ctx context.Context, sc *scorers.Context, providerID string) (*models.ScoreResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.ScoreResult{Name: s.name, Value: s.value}, nil
}

func defaultOpts() Options {
	return Options{RunsPerCell: 1, Timeout: 5 * time.Second}
}

func TestRun_ConfigurationErrors(t *testing.T) {
	provs := []providers.Provider{providers.NewMockProvider("mock/a")}
	tasks := makeTasks("t1")

	_, err := Run(context.Background(), nil, tasks, nil, defaultOpts())
	require.ErrorContains(t, err, "no providers")

	_, err = Run(context.Background(), provs, nil, nil, defaultOpts())
	require.ErrorContains(t, err, "no tasks")

	_, err = Run(context.Background(), provs, tasks, nil, Options{RunsPerCell: 0, Timeout: time.Second})
	require.ErrorContains(t, err, "runs per cell")

	_, err = Run(context.Background(), provs, tasks, nil, Options{RunsPerCell: 1})
	require.ErrorContains(t, err, "timeout")
}

func TestRun_CanonicalOrderAndRunDensity(t *testing.T) {
	provs := []providers.Provider{
		providers.NewMockProvider("mock/a"),
		providers.NewMockProvider("mock/b"),
	}
	tasks := makeTasks("t1", "t2", "t3")

	opts := defaultOpts()
	opts.RunsPerCell = 3

	results, err := Run(context.Background(), provs, tasks, nil, opts)
	require.NoError(t, err)
	require.Len(t, results, 3*2*3)

	i := 0
	for _, task := range tasks {
		for _, prov := range provs {
			for run := 1; run <= 3; run++ {
				r := results[i]
				assert.Equal(t, task.Name, r.TaskName, "index %d", i)
				assert.Equal(t, prov.ID(), r.ProviderID, "index %d", i)
				assert.Equal(t, run, r.Run, "index %d", i)
				i++
			}
		}
	}
}

func TestRun_FailingProviderIsIsolated(t *testing.T) {
	provs := []providers.Provider{
		providers.NewMockProvider("mock/broken", providers.WithFailure(errors.New("always down"))),
		providers.NewMockProvider("mock/healthy"),
	}
	tasks := makeTasks("t1", "t2")
	pipeline := []scorers.Scorer{&staticScorer{name: "correctness", value: 1.0}}

	opts := defaultOpts()
	opts.RunsPerCell = 2

	results, err := Run(context.Background(), provs, tasks, pipeline, opts)
	require.NoError(t, err)

	for _, r := range results {
		switch r.ProviderID {
		case "mock/broken":
			assert.Equal(t, "always down", r.Error)
			assert.Empty(t, r.Scores)
		case "mock/healthy":
			assert.Empty(t, r.Error)
			require.Len(t, r.Scores, 1)
			assert.Equal(t, 1.0, r.Scores[0].Value)
		}
	}
}

func TestRun_Timeout(t *testing.T) {
	provs := []providers.Provider{
		providers.NewMockProvider("mock/slow", providers.WithDelay(5*time.Second)),
	}
	tasks := makeTasks("t1")

	opts := Options{RunsPerCell: 1, Timeout: 50 * time.Millisecond}

	start := time.Now()
	results, err := Run(context.Background(), provs, tasks, nil, opts)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "Request timed out after 50ms", results[0].Error)
	assert.Empty(t, results[0].Scores)
	// The engine records the timeout without waiting for the provider to unwind.
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRun_TimeoutDoesNotDependOnProviderCooperation(t *testing.T) {
	stubborn := providers.NewMockProvider("mock/stubborn")
	stubborn.InvokeFn = func(ctx context.Context, req *providers.InvokeRequest) (*models.TaskResult, error) {
		// Ignores cancellation entirely.
		time.Sleep(3 * time.Second)
		out := models.StringValue("late")
		return &models.TaskResult{Output: out}, nil
	}

	opts := Options{RunsPerCell: 1, Timeout: 50 * time.Millisecond}

	start := time.Now()
	results, err := Run(context.Background(), []providers.Provider{stubborn}, makeTasks("t1"), nil, opts)
	require.NoError(t, err)
	assert.Equal(t, "Request timed out after 50ms", results[0].Error)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRun_ScorerErrorFailsCell(t *testing.T) {
	provs := []providers.Provider{providers.NewMockProvider("mock/a")}
	pipeline := []scorers.Scorer{
		&staticScorer{name: "ok", value: 0.5},
		&staticScorer{name: "broken", err: errors.New("judge exploded")},
	}

	results, err := Run(context.Background(), provs, makeTasks("t1"), pipeline, defaultOpts())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, "scorer broken")
	assert.Contains(t, results[0].Error, "judge exploded")
	assert.Empty(t, results[0].Scores)
}

func TestRun_ScoresInConfiguredOrder(t *testing.T) {
	provs := []providers.Provider{providers.NewMockProvider("mock/a")}
	pipeline := []scorers.Scorer{
		&staticScorer{name: "first", value: 0.1},
		&staticScorer{name: "second", value: 0.2},
		&staticScorer{name: "third", value: 0.3},
	}

	results, err := Run(context.Background(), provs, makeTasks("t1"), pipeline, defaultOpts())
	require.NoError(t, err)
	require.Len(t, results[0].Scores, 3)
	assert.Equal(t, "first", results[0].Scores[0].Name)
	assert.Equal(t, "second", results[0].Scores[1].Name)
	assert.Equal(t, "third", results[0].Scores[2].Name)
}

func TestRun_ProgressStreamsEveryCell(t *testing.T) {
	provs := []providers.Provider{
		providers.NewMockProvider("mock/a"),
		providers.NewMockProvider("mock/b"),
	}
	tasks := makeTasks("t1", "t2")

	progress := make(chan models.BenchmarkResult)
	seen := make(map[string]int)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for r := range progress {
			seen[fmt.Sprintf("%s/%s/%d", r.ProviderID, r.TaskName, r.Run)]++
		}
	}()

	opts := defaultOpts()
	opts.RunsPerCell = 2
	opts.Progress = progress

	_, err := Run(context.Background(), provs, tasks, nil, opts)
	require.NoError(t, err)
	<-drained

	assert.Len(t, seen, 2*2*2)
	for key, count := range seen {
		assert.Equal(t, 1, count, "cell %s streamed %d times", key, count)
	}
}

func TestRun_ParentCancellation(t *testing.T) {
	provs := []providers.Provider{
		providers.NewMockProvider("mock/slow", providers.WithDelay(5*time.Second)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	opts := Options{RunsPerCell: 1, Timeout: time.Minute}
	results, err := Run(ctx, provs, makeTasks("t1"), nil, opts)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, "context canceled")
}
