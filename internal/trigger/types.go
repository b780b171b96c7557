// Package trigger runs trigger tests: scenarios asserting whether a
// skill should or should not activate for a given prompt, verified by
// executing a real agent session and analyzing its trace.
package trigger

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Type classifies a trigger scenario. The type never changes the
// pass/fail rule; it only drives reporting breakdowns.
type Type string

// Trigger types.
const (
	Explicit   Type = "explicit"
	Implicit   Type = "implicit"
	Contextual Type = "contextual"
	Negative   Type = "negative"
)

// Valid reports whether t is a known trigger type.
func (t Type) Valid() bool {
	switch t {
	case Explicit, Implicit, Contextual, Negative:
		return true
	}
	return false
}

// Status tracks a test case through its lifecycle.
type Status string

// Test case states. A case starts pending, moves to running when the
// adapter is invoked, and ends in exactly one terminal state.
const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusErrored Status = "errored"
)

// Expectation declares what a test case expects from the session.
// SkillTriggered is the core assertion; the rest are optional extras
// all folded into pass/fail.
type Expectation struct {
	SkillTriggered  bool     `yaml:"skill_triggered"`
	ExitCode        *int     `yaml:"exit_code,omitempty"`
	CommandsInclude []string `yaml:"commands_include,omitempty"`
	FilesCreated    []string `yaml:"files_created,omitempty"`
	NoLoops         bool     `yaml:"no_loops,omitempty"`
}

// UnmarshalYAML accepts both the shorthand scalar form the generator
// emits (`expected: trigger` / `expected: no_trigger`) and the full
// mapping form.
func (e *Expectation) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		switch value.Value {
		case "trigger":
			e.SkillTriggered = true
			return nil
		case "no_trigger":
			e.SkillTriggered = false
			return nil
		default:
			return fmt.Errorf("invalid expected value %q (want trigger, no_trigger, or a mapping)", value.Value)
		}
	}

	type plain Expectation
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*e = Expectation(p)
	return nil
}

// MarshalYAML emits the scalar shorthand when no optional assertions
// are set, matching what the generator writes.
func (e Expectation) MarshalYAML() (interface{}, error) {
	if e.ExitCode == nil && len(e.CommandsInclude) == 0 && len(e.FilesCreated) == 0 && !e.NoLoops {
		if e.SkillTriggered {
			return "trigger", nil
		}
		return "no_trigger", nil
	}
	type plain Expectation
	return plain(e), nil
}

// TestCase declares one expected-behavior scenario. Cases are loaded
// once from YAML and read-only for the run.
type TestCase struct {
	ID        string      `yaml:"id"`
	Name      string      `yaml:"name,omitempty"`
	Type      Type        `yaml:"type"`
	Prompt    string      `yaml:"prompt"`
	Expected  Expectation `yaml:"expected"`
	SkillName string      `yaml:"-"`
}

// Result is the immutable outcome of one trigger test.
type Result struct {
	TestID          string           `json:"test_id"`
	TestName        string           `json:"test_name"`
	Type            Type             `json:"trigger_type"`
	Status          Status           `json:"status"`
	Passed          bool             `json:"passed"`
	SkillTriggered  bool             `json:"skill_triggered"`
	ExpectedTrigger bool             `json:"expected_trigger"`
	Message         string           `json:"message"`
	TracePath       string           `json:"trace_path,omitempty"`
	EventCount      int              `json:"event_count"`
	DroppedRecords  int              `json:"dropped_records,omitempty"`
	ExitCode        int              `json:"exit_code"`
	TimedOut        bool             `json:"timed_out,omitempty"`
	Analysis        *FailureAnalysis `json:"failure_analysis,omitempty"`
}

// TypeSummary counts results for one trigger type.
type TypeSummary struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// Report aggregates a full trigger run for one skill. A report always
// carries a result for every requested case, including errored ones.
type Report struct {
	SkillPath   string               `json:"skill_path"`
	SkillName   string               `json:"skill_name"`
	Runtime     string               `json:"runtime"`
	Timestamp   string               `json:"timestamp"`
	DurationMS  float64              `json:"duration_ms"`
	TestsRun    int                  `json:"tests_run"`
	TestsPassed int                  `json:"tests_passed"`
	TestsFailed int                  `json:"tests_failed"`
	OverallPass bool                 `json:"overall_pass"`
	PassRate    float64              `json:"pass_rate"`
	Results     []Result             `json:"results"`
	ByType      map[Type]TypeSummary `json:"summary_by_type"`
}

// FailingCaseIDs returns the IDs of all non-passing cases, for
// postmortem pointers into the trace directory.
func (r *Report) FailingCaseIDs() []string {
	var ids []string
	for _, result := range r.Results {
		if !result.Passed {
			ids = append(ids, result.TestID)
		}
	}
	return ids
}
