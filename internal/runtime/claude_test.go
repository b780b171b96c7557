package runtime

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/8ddieHu0314/skill-lab/internal/trace"
)

func TestClassifyClaudeTool(t *testing.T) {
	tests := []struct {
		name     string
		block    map[string]interface{}
		wantItem string
		wantCmd  string
	}{
		{
			name: "bash carries shell command",
			block: map[string]interface{}{
				"name":  "Bash",
				"input": map[string]interface{}{"command": "npm test"},
			},
			wantItem: trace.ItemCommandExecution,
			wantCmd:  "npm test",
		},
		{
			name: "write carries file path",
			block: map[string]interface{}{
				"name":  "Write",
				"input": map[string]interface{}{"file_path": "/tmp/out.md"},
			},
			wantItem: trace.ItemFileWrite,
			wantCmd:  "/tmp/out.md",
		},
		{
			name: "edit maps to file write",
			block: map[string]interface{}{
				"name":  "Edit",
				"input": map[string]interface{}{"file_path": "main.go"},
			},
			wantItem: trace.ItemFileWrite,
			wantCmd:  "main.go",
		},
		{
			name: "read carries file path",
			block: map[string]interface{}{
				"name":  "Read",
				"input": map[string]interface{}{"file_path": "README.md"},
			},
			wantItem: trace.ItemFileRead,
			wantCmd:  "README.md",
		},
		{
			name: "skill carries skill name",
			block: map[string]interface{}{
				"name":  "Skill",
				"input": map[string]interface{}{"skill": "git-commit"},
			},
			wantItem: trace.ItemSkillInvocation,
			wantCmd:  "git-commit",
		},
		{
			name: "unknown tool lowercased with pattern",
			block: map[string]interface{}{
				"name":  "Grep",
				"input": map[string]interface{}{"pattern": "func main"},
			},
			wantItem: "grep",
			wantCmd:  "func main",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, cmd := classifyClaudeTool(tt.block)
			if item != tt.wantItem {
				t.Errorf("itemKind = %q, want %q", item, tt.wantItem)
			}
			if cmd != tt.wantCmd {
				t.Errorf("command = %q, want %q", cmd, tt.wantCmd)
			}
		})
	}
}

func TestClaudeLineTriggersSkill(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{
			name: "skill tool use nested in assistant message",
			line: `{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Skill","input":{"skill":"git-commit"}}]}}`,
			want: true,
		},
		{
			name: "top-level skill tool use",
			line: `{"type":"tool_use","name":"Skill","input":{"skill":"git-commit"}}`,
			want: true,
		},
		{
			name: "system init listing skills is not a trigger",
			line: `{"type":"system","name":"Skill","input":{"skill":"git-commit"}}`,
			want: false,
		},
		{
			name: "different skill",
			line: `{"type":"tool_use","name":"Skill","input":{"skill":"pdf-export"}}`,
			want: false,
		},
		{
			name: "bash tool mentioning name",
			line: `{"type":"tool_use","name":"Bash","input":{"command":"git-commit"}}`,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := claudeLineTriggersSkill(tt.line, "git-commit"); got != tt.want {
				t.Errorf("claudeLineTriggersSkill = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClaudeParseTrace_ExpandsAssistantToolUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	content := `{"type":"system","subtype":"init"}
{"type":"stream_event","event":{"delta":"thinking..."}}
{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Bash","input":{"command":"git add ."}},{"type":"tool_use","name":"Bash","input":{"command":"git commit -m 'x'"}}]}}
{"type":"result","subtype":"success"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	adapter := &ClaudeAdapter{}
	events, dropped, err := adapter.ParseTrace(path)
	if err != nil {
		t.Fatal(err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}

	// system + two expanded tool_use blocks + result; the stream_event
	// delta is skipped.
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4: %+v", len(events), events)
	}
	if events[0].Kind != trace.SessionStarted {
		t.Errorf("events[0].Kind = %q, want %q", events[0].Kind, trace.SessionStarted)
	}

	a := trace.NewAnalyzer(&trace.Session{Events: events})
	commands := a.OrderedCommands()
	if len(commands) != 2 || commands[0] != "git add ." || commands[1] != "git commit -m 'x'" {
		t.Errorf("OrderedCommands = %v", commands)
	}
}

func TestNormalizeClaudeEvent_ToolResult(t *testing.T) {
	ev := normalizeClaudeEvent(map[string]interface{}{
		"type": "tool_result",
		"content": []interface{}{
			map[string]interface{}{"type": "text", "text": "line one"},
			map[string]interface{}{"type": "text", "text": "line two"},
		},
	})
	if ev.Kind != trace.ItemCompleted {
		t.Errorf("Kind = %q, want %q", ev.Kind, trace.ItemCompleted)
	}
	if ev.ItemKind != trace.ItemToolResult {
		t.Errorf("ItemKind = %q, want %q", ev.ItemKind, trace.ItemToolResult)
	}
	if ev.Output != "line one\nline two" {
		t.Errorf("Output = %q", ev.Output)
	}

	ev = normalizeClaudeEvent(map[string]interface{}{
		"type":    "tool_result",
		"content": "plain output",
	})
	if ev.Output != "plain output" {
		t.Errorf("Output = %q, want plain output", ev.Output)
	}
}
