package trace

import (
	"os"
	"path/filepath"
	"testing"
)

func commandEvent(kind EventKind, command string) Event {
	return Event{Kind: kind, ItemKind: ItemCommandExecution, Command: command}
}

func TestAnalyzer_EventCount(t *testing.T) {
	a := NewAnalyzer(&Session{Events: []Event{
		{Kind: SessionStarted},
		commandEvent(ItemCompleted, "ls"),
		{Kind: SessionCompleted},
	}})
	if got := a.EventCount(); got != 3 {
		t.Errorf("EventCount() = %d, want 3", got)
	}
	if got := NewAnalyzer(&Session{}).EventCount(); got != 0 {
		t.Errorf("EventCount() on empty session = %d, want 0", got)
	}
}

func TestAnalyzer_HasInvocationOf(t *testing.T) {
	tests := []struct {
		name      string
		events    []Event
		skillName string
		want      bool
	}{
		{
			name: "invocation in item-completed",
			events: []Event{
				{Kind: ItemCompleted, ItemKind: ItemSkillInvocation, Command: "git-commit"},
			},
			skillName: "git-commit",
			want:      true,
		},
		{
			name: "invocation in item-started",
			events: []Event{
				{Kind: ItemStarted, ItemKind: ItemSkillInvocation, Command: "run skill git-commit"},
			},
			skillName: "git-commit",
			want:      true,
		},
		{
			name: "command execution does not count",
			events: []Event{
				commandEvent(ItemCompleted, "git-commit"),
			},
			skillName: "git-commit",
			want:      false,
		},
		{
			name: "different skill",
			events: []Event{
				{Kind: ItemCompleted, ItemKind: ItemSkillInvocation, Command: "pdf-export"},
			},
			skillName: "git-commit",
			want:      false,
		},
		{
			name: "session event with matching text does not count",
			events: []Event{
				{Kind: SessionStarted, ItemKind: ItemSkillInvocation, Command: "git-commit"},
			},
			skillName: "git-commit",
			want:      false,
		},
		{
			name:      "empty skill name never matches",
			events:    []Event{{Kind: ItemCompleted, ItemKind: ItemSkillInvocation, Command: "x"}},
			skillName: "",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(&Session{Events: tt.events})
			if got := a.HasInvocationOf(tt.skillName); got != tt.want {
				t.Errorf("HasInvocationOf(%q) = %v, want %v", tt.skillName, got, tt.want)
			}
		})
	}
}

func TestAnalyzer_HasScriptExecution(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    bool
	}{
		{"scripts dir under skill", "python scripts/git-commit/run.py", true},
		{"skill scripts path", "bash /home/u/git-commit/scripts/go.sh", true},
		{"skills registry path", "cat .claude/skills/git-commit/SKILL.md", true},
		{"unrelated command", "ls -la", false},
		{"other skill scripts", "bash /home/u/pdf-export/scripts/go.sh", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(&Session{Events: []Event{commandEvent(ItemCompleted, tt.command)}})
			if got := a.HasScriptExecution("git-commit"); got != tt.want {
				t.Errorf("HasScriptExecution(git-commit) with %q = %v, want %v", tt.command, got, tt.want)
			}
		})
	}
}

func TestAnalyzer_OrderedCommands(t *testing.T) {
	session := &Session{Events: []Event{
		commandEvent(ItemStarted, "git add ."),
		commandEvent(ItemCompleted, "git add ."),
		{Kind: TurnCompleted},
		commandEvent(ItemCompleted, "git commit -m 'x'"),
		{Kind: ItemCompleted, ItemKind: ItemFileWrite, Command: "notes.md"},
		commandEvent(ItemCompleted, ""),
		commandEvent(ItemCompleted, "git push"),
	}}

	got := NewAnalyzer(session).OrderedCommands()
	want := []string{"git add .", "git commit -m 'x'", "git push"}

	if len(got) != len(want) {
		t.Fatalf("got %d commands %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAnalyzer_RepeatCounts(t *testing.T) {
	session := &Session{Events: []Event{
		commandEvent(ItemCompleted, "npm test"),
		commandEvent(ItemCompleted, "npm test"),
		commandEvent(ItemCompleted, "npm test"),
		commandEvent(ItemCompleted, "git status"),
	}}

	counts := NewAnalyzer(session).RepeatCounts()
	if counts["npm test"] != 3 {
		t.Errorf("counts[npm test] = %d, want 3", counts["npm test"])
	}
	if counts["git status"] != 1 {
		t.Errorf("counts[git status] = %d, want 1", counts["git status"])
	}
}

func TestAnalyzer_HasCommandMatching(t *testing.T) {
	session := &Session{Events: []Event{
		commandEvent(ItemCompleted, "git commit -m 'initial'"),
	}}
	a := NewAnalyzer(session)

	if !a.HasCommandMatching("git commit") {
		t.Error("expected substring match on 'git commit'")
	}
	if a.HasCommandMatching("git push") {
		t.Error("unexpected match on 'git push'")
	}
}

func TestAnalyzer_FileExists(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "out.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := NewAnalyzer(&Session{WorkDir: dir})
	if !a.FileExists("out.txt", "") {
		t.Error("expected relative path to resolve against WorkDir")
	}
	if a.FileExists("missing.txt", "") {
		t.Error("unexpected hit for missing file")
	}
	if !a.FileExists(filepath.Join(dir, "out.txt"), "") {
		t.Error("expected absolute path to resolve directly")
	}

	// Sessions without a workdir fall back to the caller's base dir.
	b := NewAnalyzer(&Session{})
	if !b.FileExists("out.txt", dir) {
		t.Error("expected fallback to baseDir")
	}
}
