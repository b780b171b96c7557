// Package runtime launches external agent CLIs and converts their
// structured log output into canonical trace events.
//
// Each supported runtime gets one Adapter implementation. Adapters own
// the mapping from their runtime's native record shape to the
// canonical one; the trigger evaluator and check runners never see a
// native record. Adding a runtime means adding one implementation.
package runtime

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/8ddieHu0314/skill-lab/internal/logger"
	"github.com/8ddieHu0314/skill-lab/internal/trace"
)

// ErrRuntimeNotFound indicates the runtime binary is not installed or
// not on PATH. Distinct from a timeout and from a non-zero exit code:
// a missing binary errors the test case, the other two do not.
var ErrRuntimeNotFound = errors.New("runtime binary not found")

// DefaultTimeout bounds a single agent execution when the caller does
// not set one.
const DefaultTimeout = 5 * time.Minute

// killGracePeriod is how long a terminated process gets to exit before
// it is killed outright.
const killGracePeriod = 5 * time.Second

// ExecRequest describes one agent execution.
type ExecRequest struct {
	// Prompt is the user prompt to send to the agent.
	Prompt string

	// WorkDir is the directory the agent process runs in. The child
	// process may mutate it; that is expected and is itself an input
	// to file-creation checks.
	WorkDir string

	// TracePath is where the captured raw output is written.
	TracePath string

	// Timeout bounds the wall-clock run time. Zero means DefaultTimeout.
	Timeout time.Duration

	// StopOnSkill, when non-empty, terminates the run early once the
	// named skill is seen triggering in the stream. Positive trigger
	// tests use this to avoid paying for the rest of the session.
	StopOnSkill string
}

// ExecResult is the outcome of one agent execution.
type ExecResult struct {
	ExitCode int

	// TimedOut means the wall-clock limit was hit and the process was
	// forcibly terminated. Partial output was still captured.
	TimedOut bool

	// Stopped means the run was cut short because StopOnSkill matched.
	Stopped bool
}

// Adapter is the capability contract one agent runtime fulfills.
type Adapter interface {
	// Name returns the runtime identifier (e.g. "codex", "claude").
	Name() string

	// Available reports whether the runtime binary is installed.
	Available() bool

	// Execute launches the runtime with the given prompt, streams its
	// structured output to req.TracePath, and blocks until the process
	// exits, the timeout fires, or StopOnSkill matches. A launch
	// failure returns ErrRuntimeNotFound; timeout and non-zero exit
	// are reported on the result, not as errors.
	Execute(ctx context.Context, req ExecRequest) (*ExecResult, error)

	// ParseTrace reads a captured trace and produces the session's
	// ordered canonical events. Unmappable records are dropped and
	// counted, never fatal.
	ParseTrace(tracePath string) ([]trace.Event, int, error)
}

// ForName returns the adapter for an explicit runtime name, or
// auto-detects one when name is empty (codex preferred, matching the
// cheaper default). Auto-detection falls back to codex even when
// nothing is installed so the launch failure carries a useful name.
func ForName(name string) (Adapter, error) {
	switch name {
	case "codex":
		return NewCodexAdapter(), nil
	case "claude":
		return NewClaudeAdapter(), nil
	case "":
		codex := NewCodexAdapter()
		if codex.Available() {
			return codex, nil
		}
		claude := NewClaudeAdapter()
		if claude.Available() {
			return claude, nil
		}
		return codex, nil
	default:
		return nil, fmt.Errorf("unknown runtime %q (want codex or claude)", name)
	}
}

// lineFilter inspects one raw output line and reports whether the run
// should stop early.
type lineFilter func(line string) (stop bool)

// runStreaming launches the command, streams stdout line by line into
// the trace file, and enforces the timeout. It is the shared engine
// behind both adapters; only argv construction and normalization
// differ per runtime.
func runStreaming(ctx context.Context, binPath string, args []string, req ExecRequest, filter lineFilter) (*ExecResult, error) {
	timeout := req.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	if err := os.MkdirAll(filepath.Dir(req.TracePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, binPath, args...)
	cmd.Dir = req.WorkDir
	cmd.Env = os.Environ()
	cmd.WaitDelay = killGracePeriod

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRuntimeNotFound, binPath, err)
	}

	var (
		mu      sync.Mutex
		lines   []string
		stopped bool
	)

	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			mu.Lock()
			lines = append(lines, line)
			mu.Unlock()

			if filter != nil && !stopped && filter(line) {
				stopped = true
				// Triggering skill observed, no need to finish the turn.
				if cmd.Process != nil {
					_ = cmd.Process.Signal(os.Interrupt)
				}
				cancel()
			}
		}
	}()

	<-scanDone
	waitErr := cmd.Wait()

	result := &ExecResult{Stopped: stopped}
	if !stopped && runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		logger.Warn().
			Str("binary", binPath).
			Dur("timeout", timeout).
			Msg("Runtime execution timed out, keeping partial trace")
	}

	switch {
	case waitErr == nil:
		result.ExitCode = 0
	case stopped || result.TimedOut:
		// Forced termination; the exit status of a killed process
		// carries no signal.
		result.ExitCode = 0
	default:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
		}
	}

	mu.Lock()
	raw := strings.Join(lines, "\n")
	mu.Unlock()

	if err := os.WriteFile(req.TracePath, []byte(trace.FormatRaw(raw)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write trace: %w", err)
	}

	return result, nil
}
