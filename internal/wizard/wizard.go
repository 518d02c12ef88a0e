// Package wizard collects the answers needed to scaffold a new benchmark
// suite, interactively when attached to a terminal and from plain line input
// otherwise.
package wizard

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// InitSpec holds all fields collected during the interactive wizard.
type InitSpec struct {
	Name         string
	Description  string
	ProviderKind string
	Model        string
	RunsPerCell  int
	TimeoutMs    int
}

const benchmarkYAMLTemplate = `name: {{ .Name }}
description: >
  {{ .Description }}

config:
  runs_per_cell: {{ .RunsPerCell }}
  timeout_ms: {{ .TimeoutMs }}

providers:
  - id: {{ .ProviderKind }}-default
    kind: {{ .ProviderKind }}
{{- if eq .ProviderKind "openai" }}
    model: {{ .Model }}
    api_key_env: OPENAI_API_KEY
{{- else }}
    responses:
      "": "mock response"
{{- end }}

scorers:
  - kind: exact_match
  - kind: latency

tasks:
  - tasks/*.yaml

gate:
  thresholds:
    exact_match: 0.05
`

const exampleTaskYAML = `name: greeting
description: Answer with a fixed greeting.
prompt: |
  Reply with exactly the word "hello" and nothing else.
expected: hello
`

// RunInitWizard collects an InitSpec from the user. When in is a terminal it
// presents a huh form; otherwise it reads one answer per line, which keeps
// tests and piped input deterministic.
func RunInitWizard(in io.Reader, out io.Writer) (*InitSpec, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return runForm(in, out)
	}
	return runPlain(in, out)
}

func runForm(in io.Reader, out io.Writer) (*InitSpec, error) {
	var (
		name         string
		description  string
		providerKind string
		model        = "gpt-4o-mini"
		runsRaw      = "3"
		timeoutRaw   = "30000"
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Benchmark name").
				Description("A short name for this suite").
				Placeholder("my-benchmark").
				Value(&name).
				Validate(validateName),
			huh.NewInput().
				Title("Description").
				Description("What does this benchmark measure?").
				Placeholder("Describe your benchmark").
				Value(&description).
				Validate(validateDescription),
			huh.NewSelect[string]().
				Title("Provider kind").
				Options(
					huh.NewOption("openai", "openai"),
					huh.NewOption("mock", "mock"),
				).
				Value(&providerKind),
			huh.NewInput().
				Title("Model").
				Description("Model name when using an OpenAI-compatible provider").
				Value(&model),
			huh.NewInput().
				Title("Runs per cell").
				Value(&runsRaw).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Timeout (ms)").
				Value(&timeoutRaw).
				Validate(validatePositiveInt),
		),
	).
		WithInput(in).
		WithOutput(out)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	runs, _ := strconv.Atoi(strings.TrimSpace(runsRaw))
	timeout, _ := strconv.Atoi(strings.TrimSpace(timeoutRaw))

	return &InitSpec{
		Name:         strings.TrimSpace(name),
		Description:  strings.TrimSpace(description),
		ProviderKind: providerKind,
		Model:        strings.TrimSpace(model),
		RunsPerCell:  runs,
		TimeoutMs:    timeout,
	}, nil
}

// plain-input order: name, description, provider kind, model, runs, timeout.
func runPlain(in io.Reader, out io.Writer) (*InitSpec, error) {
	scanner := bufio.NewScanner(in)
	read := func(prompt string) (string, bool) {
		fmt.Fprintf(out, "%s: ", prompt)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	name, ok := read("Benchmark name")
	if !ok || name == "" {
		return nil, fmt.Errorf("benchmark name is required")
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	description, ok := read("Description")
	if !ok || description == "" {
		return nil, fmt.Errorf("description is required")
	}

	providerKind, ok := read("Provider kind (openai/mock)")
	if !ok {
		return nil, fmt.Errorf("unexpected end of input")
	}
	if providerKind != "openai" && providerKind != "mock" {
		return nil, fmt.Errorf("invalid provider kind %q", providerKind)
	}

	model, ok := read("Model")
	if !ok {
		return nil, fmt.Errorf("unexpected end of input")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	runsRaw, ok := read("Runs per cell")
	if !ok {
		return nil, fmt.Errorf("unexpected end of input")
	}
	runs, err := parsePositiveInt(runsRaw, 3)
	if err != nil {
		return nil, fmt.Errorf("runs per cell: %w", err)
	}

	timeoutRaw, ok := read("Timeout (ms)")
	if !ok {
		return nil, fmt.Errorf("unexpected end of input")
	}
	timeout, err := parsePositiveInt(timeoutRaw, 30000)
	if err != nil {
		return nil, fmt.Errorf("timeout: %w", err)
	}

	return &InitSpec{
		Name:         name,
		Description:  description,
		ProviderKind: providerKind,
		Model:        model,
		RunsPerCell:  runs,
		TimeoutMs:    timeout,
	}, nil
}

// GenerateBenchmarkYAML renders the starter benchmark.yaml from the spec.
func GenerateBenchmarkYAML(spec *InitSpec) (string, error) {
	tmpl, err := template.New("benchmark").Parse(benchmarkYAMLTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, spec); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

// GenerateExampleTask returns a starter task file.
func GenerateExampleTask() string {
	return exampleTaskYAML
}

func validateName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("benchmark name is required")
	}
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			continue
		}
		return fmt.Errorf("name must be lowercase letters, digits, hyphens, or underscores")
	}
	return nil
}

func validateDescription(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("description is required")
	}
	return nil
}

func validatePositiveInt(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func parsePositiveInt(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("must be a positive integer, got %q", s)
	}
	return n, nil
}
