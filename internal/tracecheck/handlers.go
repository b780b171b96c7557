package tracecheck

import (
	"fmt"
	"strings"

	"github.com/8ddieHu0314/skill-lab/internal/trace"
)

// Handler implements one check type against an analyzed session.
// baseDir backs filesystem checks when the session has no working
// directory of its own.
type Handler interface {
	Run(def Definition, analyzer *trace.Analyzer, baseDir string) Result
}

// CommandPresenceHandler passes when some executed command contains
// the declared pattern as a substring.
type CommandPresenceHandler struct{}

func (CommandPresenceHandler) Run(def Definition, analyzer *trace.Analyzer, _ string) Result {
	if def.Pattern == "" {
		return missingField(def, "pattern")
	}
	if analyzer.HasCommandMatching(def.Pattern) {
		return pass(def, fmt.Sprintf("command matching %q was executed", def.Pattern))
	}
	return fail(def, fmt.Sprintf("no command matching %q was executed", def.Pattern))
}

// FileCreationHandler passes when the declared path exists under the
// session's working directory after the run.
type FileCreationHandler struct{}

func (FileCreationHandler) Run(def Definition, analyzer *trace.Analyzer, baseDir string) Result {
	if def.Path == "" {
		return missingField(def, "path")
	}
	if analyzer.FileExists(def.Path, baseDir) {
		return pass(def, fmt.Sprintf("file %q was created", def.Path))
	}
	return fail(def, fmt.Sprintf("file %q was not created", def.Path))
}

// EventSequenceHandler passes when every declared string appears, in
// the same relative order, as a subsequence of the executed commands.
// Gaps are allowed: intervening unrelated commands do not break the
// match, only relative order of the named ones is mandatory.
type EventSequenceHandler struct{}

func (EventSequenceHandler) Run(def Definition, analyzer *trace.Analyzer, _ string) Result {
	if len(def.Sequence) == 0 {
		return missingField(def, "sequence")
	}

	commands := analyzer.OrderedCommands()
	next := 0
	for _, cmd := range commands {
		if next >= len(def.Sequence) {
			break
		}
		if strings.Contains(cmd, def.Sequence[next]) {
			next++
		}
	}

	if next == len(def.Sequence) {
		return pass(def, fmt.Sprintf("all %d sequence steps observed in order", len(def.Sequence)))
	}
	return failWithDetails(def,
		fmt.Sprintf("sequence broke at step %d: %q not observed after earlier steps", next+1, def.Sequence[next]),
		map[string]interface{}{
			"matched_steps": next,
			"total_steps":   len(def.Sequence),
			"command_count": len(commands),
		})
}

// LoopDetectionHandler fails when any distinct command repeats more
// than the allowed number of times.
type LoopDetectionHandler struct{}

func (LoopDetectionHandler) Run(def Definition, analyzer *trace.Analyzer, _ string) Result {
	maxRetries := DefaultMaxRetries
	if def.MaxRetries != nil {
		maxRetries = *def.MaxRetries
	}

	for cmd, count := range analyzer.RepeatCounts() {
		if count > maxRetries {
			return failWithDetails(def,
				fmt.Sprintf("command repeated %d times (max %d): %s", count, maxRetries, cmd),
				map[string]interface{}{
					"command":     cmd,
					"count":       count,
					"max_retries": maxRetries,
				})
		}
	}
	return pass(def, fmt.Sprintf("no command repeated more than %d times", maxRetries))
}

// EfficiencyHandler fails when the session executed more commands than
// the declared budget.
type EfficiencyHandler struct{}

func (EfficiencyHandler) Run(def Definition, analyzer *trace.Analyzer, _ string) Result {
	if def.MaxCommands == nil {
		return missingField(def, "max_commands")
	}

	count := len(analyzer.OrderedCommands())
	if count <= *def.MaxCommands {
		return pass(def, fmt.Sprintf("executed %d commands (max %d)", count, *def.MaxCommands))
	}
	return failWithDetails(def,
		fmt.Sprintf("executed %d commands, exceeding the limit of %d", count, *def.MaxCommands),
		map[string]interface{}{
			"command_count": count,
			"max_commands":  *def.MaxCommands,
		})
}
