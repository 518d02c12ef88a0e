package models

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Task is one benchmark case: a prompt sent to every provider, plus the
// optional material scorers use to judge the answer. Tasks are immutable once
// loaded and are identified by Name within a run.
type Task struct {
	Name         string         `yaml:"name" json:"name"`
	Description  string         `yaml:"description,omitempty" json:"description,omitempty"`
	Prompt       string         `yaml:"prompt" json:"prompt"`
	Expected     *Value         `yaml:"expected,omitempty" json:"expected,omitempty"`
	OutputSchema map[string]any `yaml:"output_schema,omitempty" json:"output_schema,omitempty"`
	Tools        []ToolSpec     `yaml:"tools,omitempty" json:"tools,omitempty"`
}

// ToolSpec describes a tool a provider may call while answering a task.
type ToolSpec struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Parameters  map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// Validate checks the minimal task invariants.
func (t *Task) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("task is missing a name")
	}
	if t.Prompt == "" {
		return fmt.Errorf("task %q is missing a prompt", t.Name)
	}
	return nil
}

// LoadTaskFile loads a single task definition from a YAML file.
func LoadTaskFile(path string) (*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var task Task
	if err := yaml.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("parsing task file %s: %w", path, err)
	}

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("task file %s: %w", path, err)
	}

	return &task, nil
}

// LoadTasks expands glob patterns relative to baseDir and loads every matched
// task file. Duplicate task names across files are an error since results are
// grouped by name.
func LoadTasks(baseDir string, patterns []string) ([]*Task, error) {
	var files []string
	for _, pattern := range patterns {
		fullPattern := pattern
		if !filepath.IsAbs(fullPattern) {
			fullPattern = filepath.Join(baseDir, pattern)
		}
		matches, err := filepath.Glob(fullPattern)
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no task files matched patterns %v in directory %s", patterns, baseDir)
	}

	seen := make(map[string]string)
	tasks := make([]*Task, 0, len(files))
	for _, path := range files {
		task, err := LoadTaskFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading task %s: %w", path, err)
		}
		if prev, ok := seen[task.Name]; ok {
			return nil, fmt.Errorf("duplicate task name %q (defined in %s and %s)", task.Name, prev, path)
		}
		seen[task.Name] = path
		tasks = append(tasks, task)
	}

	return tasks, nil
}
