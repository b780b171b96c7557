package runtime

import (
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/8ddieHu0314/skill-lab/internal/trace"
)

// CodexAdapter executes prompts through the OpenAI Codex CLI and
// normalizes its JSONL event stream.
//
// Codex emits one JSON object per line when run with --json:
//
//	{"type":"item.started","item":{"type":"command_execution","command":"ls"}}
//	{"type":"item.completed","item":{"type":"command_execution","command":"ls","output":"..."}}
//	{"type":"turn.started",...} / {"type":"turn.completed",...}
type CodexAdapter struct {
	binaryPath string
}

// NewCodexAdapter creates a Codex adapter, resolving the binary from
// PATH. A missing binary is not an error until Execute is called.
func NewCodexAdapter() *CodexAdapter {
	path, err := exec.LookPath("codex")
	if err != nil {
		path = ""
	}
	return &CodexAdapter{binaryPath: path}
}

// Name returns the runtime identifier.
func (a *CodexAdapter) Name() string {
	return "codex"
}

// Available reports whether the codex binary was found on PATH.
func (a *CodexAdapter) Available() bool {
	return a.binaryPath != ""
}

// Execute runs `codex exec --json --full-auto <prompt>` in the request
// working directory. --json forces structured events; --full-auto
// allows filesystem changes without an approval prompt, which is what
// keeps the run non-interactive.
func (a *CodexAdapter) Execute(ctx context.Context, req ExecRequest) (*ExecResult, error) {
	if a.binaryPath == "" {
		return nil, ErrRuntimeNotFound
	}

	args := []string{
		"exec",
		"--json",
		"--full-auto",
		req.Prompt,
	}

	var filter lineFilter
	if req.StopOnSkill != "" {
		skill := req.StopOnSkill
		filter = func(line string) bool {
			return codexLineTriggersSkill(line, skill)
		}
	}

	return runStreaming(ctx, a.binaryPath, args, req, filter)
}

// codexLineTriggersSkill reports whether a raw JSONL line shows the
// named skill triggering.
func codexLineTriggersSkill(line, skillName string) bool {
	var event map[string]interface{}
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return false
	}

	if item, ok := event["item"].(map[string]interface{}); ok {
		if itemType, _ := item["type"].(string); itemType == "skill_invocation" {
			command, _ := item["command"].(string)
			if strings.Contains(command, skillName) {
				return true
			}
		}
	}

	// Explicit $skill-name or skill:skill-name mentions anywhere in
	// the record also count.
	return strings.Contains(line, "$"+skillName) || strings.Contains(line, "skill:"+skillName)
}

// ParseTrace reads a captured Codex trace and normalizes each record.
func (a *CodexAdapter) ParseTrace(tracePath string) ([]trace.Event, int, error) {
	records, dropped, err := trace.ReadRecords(tracePath)
	if err != nil {
		return nil, 0, err
	}

	events := make([]trace.Event, 0, len(records))
	for _, raw := range records {
		events = append(events, normalizeCodexEvent(raw))
	}
	return events, dropped, nil
}

// normalizeCodexEvent converts one Codex record to the canonical form.
// Codex uses dotted event types and underscored item types; both map
// onto the hyphenated canonical vocabulary.
func normalizeCodexEvent(raw map[string]interface{}) trace.Event {
	eventType, _ := raw["type"].(string)
	if eventType == "" {
		eventType = "unknown"
	}

	ev := trace.Event{
		Kind: trace.EventKind(strings.ReplaceAll(eventType, ".", "-")),
		Raw:  raw,
	}

	if ts, ok := raw["timestamp"].(string); ok {
		ev.Timestamp = ts
	}

	if item, ok := raw["item"].(map[string]interface{}); ok {
		if itemType, ok := item["type"].(string); ok {
			ev.ItemKind = strings.ReplaceAll(itemType, "_", "-")
		}
		if command, ok := item["command"].(string); ok {
			ev.Command = command
		}
		if output, ok := item["output"].(string); ok {
			ev.Output = output
		}
	}

	return ev
}
