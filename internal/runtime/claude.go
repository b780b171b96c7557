package runtime

import (
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/8ddieHu0314/skill-lab/internal/trace"
)

// ClaudeAdapter executes prompts through the Claude Code CLI and
// normalizes its stream-json output.
//
// Claude Code's record shapes differ from Codex's: tool calls arrive
// as tool_use blocks, usually nested inside assistant messages, and
// the stream interleaves stream_event text deltas that carry no
// actions. The adapter flattens nested tool_use blocks into their own
// canonical events and skips the deltas.
type ClaudeAdapter struct {
	binaryPath string
}

// NewClaudeAdapter creates a Claude Code adapter, resolving the binary
// from PATH.
func NewClaudeAdapter() *ClaudeAdapter {
	path, err := exec.LookPath("claude")
	if err != nil {
		path = ""
	}
	return &ClaudeAdapter{binaryPath: path}
}

// Name returns the runtime identifier.
func (a *ClaudeAdapter) Name() string {
	return "claude"
}

// Available reports whether the claude binary was found on PATH.
func (a *ClaudeAdapter) Available() bool {
	return a.binaryPath != ""
}

// Execute runs Claude Code in non-interactive print mode.
// --verbose is required for stream-json output to include tool events.
func (a *ClaudeAdapter) Execute(ctx context.Context, req ExecRequest) (*ExecResult, error) {
	if a.binaryPath == "" {
		return nil, ErrRuntimeNotFound
	}

	args := []string{
		"--print",
		"--verbose",
		"--output-format", "stream-json",
		"-p", req.Prompt,
	}

	var filter lineFilter
	if req.StopOnSkill != "" {
		skill := req.StopOnSkill
		filter = func(line string) bool {
			return claudeLineTriggersSkill(line, skill)
		}
	}

	return runStreaming(ctx, a.binaryPath, args, req, filter)
}

// claudeLineTriggersSkill reports whether a raw stream-json line shows
// a Skill tool invocation for the named skill.
func claudeLineTriggersSkill(line, skillName string) bool {
	var event map[string]interface{}
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return false
	}

	// System init events list available skills; they are not triggers.
	if t, _ := event["type"].(string); t == "system" {
		return false
	}

	if isSkillToolUse(event, skillName) {
		return true
	}

	// Tool calls usually nest inside assistant message content.
	if message, ok := event["message"].(map[string]interface{}); ok {
		if content, ok := message["content"].([]interface{}); ok {
			for _, block := range content {
				if b, ok := block.(map[string]interface{}); ok && isSkillToolUse(b, skillName) {
					return true
				}
			}
		}
	}

	return false
}

// isSkillToolUse checks a single block for a Skill tool call targeting
// the named skill.
func isSkillToolUse(block map[string]interface{}, skillName string) bool {
	if name, _ := block["name"].(string); name != "Skill" {
		return false
	}
	input, ok := block["input"].(map[string]interface{})
	if !ok {
		return false
	}
	skill, _ := input["skill"].(string)
	return skill == skillName
}

// ParseTrace reads a captured Claude trace and normalizes each record.
// Assistant messages expand into one event per tool_use content block;
// stream_event text deltas are dropped from the canonical stream (they
// carry no actions), without counting as malformed.
func (a *ClaudeAdapter) ParseTrace(tracePath string) ([]trace.Event, int, error) {
	records, dropped, err := trace.ReadRecords(tracePath)
	if err != nil {
		return nil, 0, err
	}

	var events []trace.Event
	for _, raw := range records {
		eventType, _ := raw["type"].(string)
		if eventType == "stream_event" {
			continue
		}

		if eventType == "assistant" {
			expanded := expandAssistantMessage(raw)
			if len(expanded) > 0 {
				events = append(events, expanded...)
				continue
			}
		}

		events = append(events, normalizeClaudeEvent(raw))
	}
	return events, dropped, nil
}

// claudeKindMapping maps Claude stream-json event types onto the
// canonical vocabulary.
var claudeKindMapping = map[string]trace.EventKind{
	"assistant":   trace.ItemCompleted,
	"tool_use":    trace.ItemStarted,
	"tool_result": trace.ItemCompleted,
	"message":     trace.TurnCompleted,
	"result":      trace.TurnCompleted,
	"system":      trace.SessionStarted,
}

// expandAssistantMessage pulls tool_use blocks out of an assistant
// message's content and returns one canonical event per block. The
// assistant event wraps completed work, so the blocks land as
// item-completed events carrying the tool's command text.
func expandAssistantMessage(raw map[string]interface{}) []trace.Event {
	message, ok := raw["message"].(map[string]interface{})
	if !ok {
		return nil
	}
	content, ok := message["content"].([]interface{})
	if !ok {
		return nil
	}

	var events []trace.Event
	for _, block := range content {
		b, ok := block.(map[string]interface{})
		if !ok {
			continue
		}
		if t, _ := b["type"].(string); t != "tool_use" {
			continue
		}
		ev := trace.Event{
			Kind: trace.ItemCompleted,
			Raw:  raw,
		}
		ev.ItemKind, ev.Command = classifyClaudeTool(b)
		if ts, ok := raw["timestamp"].(string); ok {
			ev.Timestamp = ts
		}
		events = append(events, ev)
	}
	return events
}

// normalizeClaudeEvent converts one top-level Claude record to the
// canonical form.
func normalizeClaudeEvent(raw map[string]interface{}) trace.Event {
	eventType, _ := raw["type"].(string)
	if eventType == "" {
		eventType = "unknown"
	}

	kind, ok := claudeKindMapping[eventType]
	if !ok {
		kind = trace.EventKind(eventType)
	}

	ev := trace.Event{
		Kind: kind,
		Raw:  raw,
	}
	if ts, ok := raw["timestamp"].(string); ok {
		ev.Timestamp = ts
	}

	switch eventType {
	case "tool_use":
		ev.ItemKind, ev.Command = classifyClaudeTool(raw)
	case "tool_result":
		ev.ItemKind = trace.ItemToolResult
		switch content := raw["content"].(type) {
		case string:
			ev.Output = content
		case []interface{}:
			// Content blocks; keep a flat text rendering for checks.
			var parts []string
			for _, c := range content {
				if b, ok := c.(map[string]interface{}); ok {
					if text, ok := b["text"].(string); ok {
						parts = append(parts, text)
					}
				}
			}
			ev.Output = strings.Join(parts, "\n")
		}
	}

	return ev
}

// classifyClaudeTool maps a tool_use block to a canonical item kind
// and command text. Bash carries the shell command; file tools carry
// the file path; the Skill tool carries the skill name.
func classifyClaudeTool(block map[string]interface{}) (itemKind, command string) {
	toolName, _ := block["name"].(string)
	input, _ := block["input"].(map[string]interface{})

	switch toolName {
	case "Bash":
		command, _ = input["command"].(string)
		return trace.ItemCommandExecution, command
	case "Write", "Edit":
		command, _ = input["file_path"].(string)
		return trace.ItemFileWrite, command
	case "Read":
		command, _ = input["file_path"].(string)
		return trace.ItemFileRead, command
	case "Skill":
		skill, _ := input["skill"].(string)
		return trace.ItemSkillInvocation, skill
	default:
		if toolName == "" {
			return "", ""
		}
		// Glob, Grep, WebFetch and friends: lowercased tool name, the
		// primary argument rendered best-effort.
		if pattern, ok := input["pattern"].(string); ok {
			command = pattern
		} else if len(input) > 0 {
			if b, err := json.Marshal(input); err == nil {
				command = string(b)
			}
		}
		return strings.ToLower(toolName), command
	}
}
