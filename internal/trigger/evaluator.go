package trigger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/8ddieHu0314/skill-lab/internal/logger"
	"github.com/8ddieHu0314/skill-lab/internal/runtime"
	"github.com/8ddieHu0314/skill-lab/internal/skill"
)

// Options configures a batch trigger run.
type Options struct {
	// Adapter, when set, is used directly and Runtime is ignored.
	// Tests inject fakes here.
	Adapter runtime.Adapter

	// Runtime selects the adapter by name; empty auto-detects.
	Runtime string

	// TraceDir is where traces and per-case working directories are
	// created. Empty defaults to <skill>/.skill-lab/traces.
	TraceDir string

	// Timeout bounds each individual agent execution.
	Timeout time.Duration

	// Workers caps concurrent test cases. Zero or one runs serially.
	Workers int

	// TypeFilter restricts the run to one trigger type when set.
	TypeFilter Type

	// AnalyzeFailures attaches rule-based fix suggestions to failed
	// results.
	AnalyzeFailures bool
}

// Evaluator orchestrates a batch of trigger tests against one skill.
// Each case is independent: one adapter invocation, one session, its
// own working directory. Cases never share mutable state, so the
// batch can run them concurrently up to the worker limit.
type Evaluator struct {
	opts Options
}

// NewEvaluator creates a batch evaluator.
func NewEvaluator(opts Options) *Evaluator {
	return &Evaluator{opts: opts}
}

// Evaluate runs all trigger tests for the skill at skillDir.
//
// Only batch-level setup failures (no adapter, cannot create the trace
// or work directories) return an error. Per-case failures, including
// launch errors, are isolated to that case's result: the batch always
// finishes and reports a result for every requested case.
func (e *Evaluator) Evaluate(ctx context.Context, skillDir string) (*Report, error) {
	start := time.Now()

	adapter := e.opts.Adapter
	if adapter == nil {
		var err error
		adapter, err = runtime.ForName(e.opts.Runtime)
		if err != nil {
			return nil, err
		}
	}

	cases, loadErrors, err := LoadTests(skillDir)
	if err != nil {
		return nil, err
	}

	if e.opts.TypeFilter != "" {
		filtered := cases[:0]
		for _, tc := range cases {
			if tc.Type == e.opts.TypeFilter {
				filtered = append(filtered, tc)
			}
		}
		cases = filtered
	}

	skillName := skillNameFor(skillDir, cases)

	traceDir := e.opts.TraceDir
	if traceDir == "" {
		traceDir = filepath.Join(skillDir, ".skill-lab", "traces")
	}
	if err := os.MkdirAll(traceDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}

	var analyzer *FailureAnalyzer
	if e.opts.AnalyzeFailures {
		parsed, err := skill.Parse(skillDir)
		if err == nil {
			analyzer = NewFailureAnalyzer(parsed)
		}
	}

	results := make([]Result, 0, len(cases)+len(loadErrors))
	for _, loadErr := range loadErrors {
		results = append(results, Result{
			TestID:   "load-error",
			TestName: "Test Loading",
			Type:     Explicit,
			Status:   StatusErrored,
			Message:  loadErr,
		})
	}

	runResults, err := e.runCases(ctx, adapter, cases, skillDir, traceDir)
	if err != nil {
		return nil, err
	}
	for i := range runResults {
		if analyzer != nil && runResults[i].Status == StatusFailed {
			runResults[i].Analysis = analyzer.Analyze(cases[i], runResults[i])
		}
		results = append(results, runResults[i])
	}

	return buildReport(skillDir, skillName, adapter.Name(), start, results), nil
}

// runCases executes the cases through a bounded worker pool. Results
// come back indexed so report order matches declaration order no
// matter how the workers interleave.
func (e *Evaluator) runCases(ctx context.Context, adapter runtime.Adapter, cases []TestCase, skillDir, traceDir string) ([]Result, error) {
	if len(cases) == 0 {
		return nil, nil
	}

	// Every case gets a fresh working directory so concurrent cases
	// never observe each other's filesystem side effects.
	workRoot := filepath.Join(traceDir, "work")
	for _, tc := range cases {
		if err := prepareWorkDir(workRoot, tc, skillDir); err != nil {
			return nil, err
		}
	}

	workers := e.opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(cases) {
		workers = len(cases)
	}

	runner := NewRunner(adapter, e.opts.Timeout)
	results := make([]Result, len(cases))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				tc := cases[i]
				results[i] = runner.Run(ctx, tc, caseWorkDir(workRoot, tc), traceDir)
			}
		}()
	}

	for i := range cases {
		select {
		case indexes <- i:
		case <-ctx.Done():
			// Cancellation: stop handing out work. In-flight cases
			// see the same context and terminate their children.
			close(indexes)
			wg.Wait()
			return fillCancelled(results, cases), nil
		}
	}
	close(indexes)
	wg.Wait()

	return results, nil
}

// fillCancelled marks never-started cases so the report still carries
// a result for every requested case.
func fillCancelled(results []Result, cases []TestCase) []Result {
	for i := range results {
		if results[i].Status == "" {
			results[i] = Result{
				TestID:          cases[i].ID,
				TestName:        cases[i].Name,
				Type:            cases[i].Type,
				Status:          StatusErrored,
				ExpectedTrigger: cases[i].Expected.SkillTriggered,
				Message:         "batch cancelled before this case ran",
			}
		}
	}
	return results
}

// caseWorkDir returns the isolated working directory for one case.
func caseWorkDir(workRoot string, tc TestCase) string {
	return filepath.Join(workRoot, tc.ID)
}

// prepareWorkDir creates a fresh working directory for one case and
// exposes the skill inside it at .claude/skills/<name>, so the agent
// can discover the skill while its filesystem side effects stay
// isolated from every other case.
func prepareWorkDir(workRoot string, tc TestCase, skillDir string) error {
	dir := caseWorkDir(workRoot, tc)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to reset work directory for %s: %w", tc.ID, err)
	}

	skillsDir := filepath.Join(dir, ".claude", "skills")
	if err := os.MkdirAll(skillsDir, 0755); err != nil {
		return fmt.Errorf("failed to create work directory for %s: %w", tc.ID, err)
	}

	absSkill, err := filepath.Abs(skillDir)
	if err != nil {
		return fmt.Errorf("failed to resolve skill directory: %w", err)
	}
	link := filepath.Join(skillsDir, tc.SkillName)
	if err := os.Symlink(absSkill, link); err != nil {
		return fmt.Errorf("failed to link skill into work directory for %s: %w", tc.ID, err)
	}

	return nil
}

// skillNameFor extracts the skill name from the loaded cases, falling
// back to the directory name.
func skillNameFor(skillDir string, cases []TestCase) string {
	for _, tc := range cases {
		if tc.SkillName != "" {
			return tc.SkillName
		}
	}
	return filepath.Base(filepath.Clean(skillDir))
}

func buildReport(skillDir, skillName, runtimeName string, start time.Time, results []Result) *Report {
	report := &Report{
		SkillPath:  skillDir,
		SkillName:  skillName,
		Runtime:    runtimeName,
		Timestamp:  start.UTC().Format(time.RFC3339),
		DurationMS: float64(time.Since(start).Microseconds()) / 1000.0,
		TestsRun:   len(results),
		Results:    results,
		ByType:     make(map[Type]TypeSummary),
	}

	for _, result := range results {
		summary := report.ByType[result.Type]
		summary.Total++
		if result.Passed {
			report.TestsPassed++
			summary.Passed++
		} else {
			report.TestsFailed++
			summary.Failed++
		}
		report.ByType[result.Type] = summary
	}

	report.OverallPass = report.TestsFailed == 0
	if len(results) > 0 {
		report.PassRate = float64(report.TestsPassed) / float64(len(results))
	}

	if report.TestsFailed > 0 {
		logger.Info().
			Int("failed", report.TestsFailed).
			Strs("failing_cases", report.FailingCaseIDs()).
			Msg("Trigger run finished with failures")
	}

	return report
}
