package trigger

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/8ddieHu0314/skill-lab/internal/logger"
	"github.com/8ddieHu0314/skill-lab/internal/runtime"
	"github.com/8ddieHu0314/skill-lab/internal/trace"
)

// Runner executes a single trigger test case: one adapter invocation,
// one session, one result. Cases share nothing, so independent runners
// can execute concurrently.
type Runner struct {
	adapter runtime.Adapter
	timeout time.Duration
}

// NewRunner creates a single-case runner over a runtime adapter.
func NewRunner(adapter runtime.Adapter, timeout time.Duration) *Runner {
	return &Runner{adapter: adapter, timeout: timeout}
}

// Run executes one test case in workDir, writing the trace under
// traceDir. A launch failure errors the case; everything else,
// including a timed-out session, resolves to passed or failed.
func (r *Runner) Run(ctx context.Context, tc TestCase, workDir, traceDir string) Result {
	result := Result{
		TestID:          tc.ID,
		TestName:        tc.Name,
		Type:            tc.Type,
		Status:          StatusPending,
		ExpectedTrigger: tc.Expected.SkillTriggered,
		TracePath:       filepath.Join(traceDir, tc.ID+".jsonl"),
	}

	result.Status = StatusRunning
	logger.Debug().
		Str("test", tc.ID).
		Str("type", string(tc.Type)).
		Str("runtime", r.adapter.Name()).
		Msg("Running trigger test")

	req := runtime.ExecRequest{
		Prompt:    tc.Prompt,
		WorkDir:   workDir,
		TracePath: result.TracePath,
		Timeout:   r.timeout,
	}
	// Positive cases stop as soon as the trigger is observed; the rest
	// of the session cannot change the outcome.
	if tc.Expected.SkillTriggered {
		req.StopOnSkill = tc.SkillName
	}

	execResult, err := r.adapter.Execute(ctx, req)
	if err != nil {
		result.Status = StatusErrored
		result.Message = fmt.Sprintf("runtime launch failed: %v", err)
		return result
	}

	events, dropped, err := r.adapter.ParseTrace(result.TracePath)
	if err != nil {
		result.Status = StatusErrored
		result.Message = fmt.Sprintf("failed to parse trace: %v", err)
		return result
	}
	if dropped > 0 {
		logger.Warn().
			Str("test", tc.ID).
			Int("dropped", dropped).
			Msg("Dropped unparseable trace records")
	}

	session := &trace.Session{
		Events:         events,
		ExitCode:       execResult.ExitCode,
		WorkDir:        workDir,
		TimedOut:       execResult.TimedOut,
		DroppedRecords: dropped,
	}
	analyzer := trace.NewAnalyzer(session)

	// Partial evidence is still evidence: a timed-out session that
	// already shows the invocation counts as triggered.
	observed := analyzer.HasInvocationOf(tc.SkillName) || analyzer.HasScriptExecution(tc.SkillName)

	result.SkillTriggered = observed
	result.EventCount = analyzer.EventCount()
	result.DroppedRecords = dropped
	result.ExitCode = execResult.ExitCode
	result.TimedOut = execResult.TimedOut

	passed, message := checkExpectations(tc, analyzer, observed, execResult)
	result.Passed = passed
	result.Message = message
	if passed {
		result.Status = StatusPassed
	} else {
		result.Status = StatusFailed
	}

	return result
}

// checkExpectations folds every declared expectation into one verdict.
func checkExpectations(tc TestCase, analyzer *trace.Analyzer, observed bool, execResult *runtime.ExecResult) (bool, string) {
	expected := tc.Expected

	if observed != expected.SkillTriggered {
		expectedStr := "trigger"
		if !expected.SkillTriggered {
			expectedStr = "no trigger"
		}
		actualStr := "not triggered"
		if observed {
			actualStr = "triggered"
		}
		msg := fmt.Sprintf("expected %s, but skill was %s", expectedStr, actualStr)
		if execResult.TimedOut {
			msg += " (session timed out)"
		}
		return false, msg
	}

	// Forced termination makes the exit status meaningless, so the
	// exit code expectation only applies to runs that completed.
	if expected.ExitCode != nil && !execResult.TimedOut && !execResult.Stopped {
		if execResult.ExitCode != *expected.ExitCode {
			return false, fmt.Sprintf("expected exit code %d, got %d", *expected.ExitCode, execResult.ExitCode)
		}
	}

	for _, cmd := range expected.CommandsInclude {
		if !analyzer.HasCommandMatching(cmd) {
			return false, fmt.Sprintf("expected command %q was not executed", cmd)
		}
	}

	for _, path := range expected.FilesCreated {
		if !analyzer.FileExists(path, "") {
			return false, fmt.Sprintf("expected file %q was not created", path)
		}
	}

	if expected.NoLoops {
		for cmd, count := range analyzer.RepeatCounts() {
			if count > DefaultLoopThreshold {
				return false, fmt.Sprintf("command repeated %d times: %s", count, cmd)
			}
		}
	}

	return true, "test passed: " + tc.Name
}

// DefaultLoopThreshold is the repeat count above which the no_loops
// expectation fails.
const DefaultLoopThreshold = 3
