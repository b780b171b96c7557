package trace

import (
	"os"
	"path/filepath"
	"strings"
)

// Analyzer is a read-only query layer over one Session's events.
// It holds no state beyond the session it was built over and is safe
// for concurrent use.
type Analyzer struct {
	session *Session
}

// NewAnalyzer creates an analyzer over a captured session.
func NewAnalyzer(session *Session) *Analyzer {
	return &Analyzer{session: session}
}

// Session returns the session this analyzer was built over.
func (a *Analyzer) Session() *Session {
	return a.session
}

// EventCount returns the number of canonical events in the session.
func (a *Analyzer) EventCount() int {
	return len(a.session.Events)
}

// HasInvocationOf reports whether any item-started or item-completed
// event with item kind skill-invocation mentions skillName in its
// command text. The match is a case-sensitive substring check: skill
// identifiers are lowercase-normalized upstream.
func (a *Analyzer) HasInvocationOf(skillName string) bool {
	if skillName == "" {
		return false
	}
	for _, ev := range a.session.Events {
		if ev.Kind != ItemStarted && ev.Kind != ItemCompleted {
			continue
		}
		if ev.ItemKind != ItemSkillInvocation {
			continue
		}
		if strings.Contains(ev.Command, skillName) {
			return true
		}
	}
	return false
}

// skillScriptPatterns builds the substring patterns that indicate a
// skill's bundled scripts are being executed. Shared between real-time
// detection in the adapters and post-hoc analysis here.
func skillScriptPatterns(skillName string) []string {
	return []string{
		"scripts/" + skillName,
		"/" + skillName + "/scripts/",
		"skills/" + skillName,
	}
}

// HasScriptExecution reports whether any command in the session runs a
// script bundled with the named skill. Script execution counts as
// trigger evidence even when the runtime never emits an explicit
// skill-invocation item.
func (a *Analyzer) HasScriptExecution(skillName string) bool {
	if skillName == "" {
		return false
	}
	patterns := skillScriptPatterns(skillName)
	for _, cmd := range a.OrderedCommands() {
		for _, p := range patterns {
			if strings.Contains(cmd, p) {
				return true
			}
		}
	}
	return false
}

// HasCommandMatching reports whether any command-execution item's
// command text contains pattern as a substring.
func (a *Analyzer) HasCommandMatching(pattern string) bool {
	for _, cmd := range a.OrderedCommands() {
		if strings.Contains(cmd, pattern) {
			return true
		}
	}
	return false
}

// OrderedCommands returns the command strings from item-completed
// command-execution events, in emission order. This is the sequence
// all ordering checks operate on.
func (a *Analyzer) OrderedCommands() []string {
	var commands []string
	for _, ev := range a.session.Events {
		if ev.Kind != ItemCompleted {
			continue
		}
		if ev.ItemKind != ItemCommandExecution {
			continue
		}
		if ev.Command == "" {
			continue
		}
		commands = append(commands, ev.Command)
	}
	return commands
}

// RepeatCounts returns a mapping from distinct command string to its
// occurrence count across the whole session.
func (a *Analyzer) RepeatCounts() map[string]int {
	counts := make(map[string]int)
	for _, cmd := range a.OrderedCommands() {
		counts[cmd]++
	}
	return counts
}

// FileExists checks whether path exists relative to the session's
// working directory (or baseDir when the session has none). This is a
// filesystem check evaluated after the process has fully exited, not a
// trace query.
func (a *Analyzer) FileExists(path string, baseDir string) bool {
	base := a.session.WorkDir
	if base == "" {
		base = baseDir
	}
	full := path
	if !filepath.IsAbs(path) {
		full = filepath.Join(base, path)
	}
	_, err := os.Stat(full)
	return err == nil
}
