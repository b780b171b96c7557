package trigger

import (
	"strings"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no fences untouched",
			input: "skill: x\ntest_cases: []",
			want:  "skill: x\ntest_cases: []",
		},
		{
			name:  "yaml fence stripped",
			input: "```yaml\nskill: x\n```",
			want:  "skill: x",
		},
		{
			name:  "bare fence stripped",
			input: "```\nskill: x\n```",
			want:  "skill: x",
		},
		{
			name:  "unclosed fence keeps content",
			input: "```yaml\nskill: x",
			want:  "skill: x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.input); got != tt.want {
				t.Errorf("stripFences = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseGeneratedYAML(t *testing.T) {
	text := `skill: whatever-the-model-said
test_cases:
  - id: exp-1
    name: Direct request
    type: explicit
    prompt: Use the git-commit skill to commit my changes
    expected: trigger
  - id: neg-1
    type: negative
    prompt: What does git commit do?
    expected: no_trigger
`
	file, err := parseGeneratedYAML(text, "git-commit")
	if err != nil {
		t.Fatal(err)
	}

	// The declared skill name wins over whatever the model wrote.
	if file.Skill != "git-commit" {
		t.Errorf("Skill = %q, want git-commit", file.Skill)
	}
	if len(file.TestCases) != 2 {
		t.Fatalf("got %d cases, want 2", len(file.TestCases))
	}
	if !file.TestCases[0].Expected.SkillTriggered {
		t.Error("exp-1 should expect trigger")
	}
	if file.TestCases[1].Expected.SkillTriggered {
		t.Error("neg-1 should expect no_trigger")
	}
}

func TestParseGeneratedYAML_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{
			name:    "not yaml",
			text:    "{{{{",
			wantErr: "invalid YAML",
		},
		{
			name:    "no test cases",
			text:    "skill: x\ntest_cases: []",
			wantErr: "no test cases",
		},
		{
			name:    "missing id",
			text:    "test_cases:\n  - type: explicit\n    prompt: x\n    expected: trigger",
			wantErr: "missing 'id'",
		},
		{
			name:    "missing prompt",
			text:    "test_cases:\n  - id: t1\n    type: explicit\n    expected: trigger",
			wantErr: "missing 'prompt'",
		},
		{
			name:    "invalid type",
			text:    "test_cases:\n  - id: t1\n    type: sideways\n    prompt: x\n    expected: trigger",
			wantErr: "invalid type",
		},
		{
			name:    "invalid expected",
			text:    "test_cases:\n  - id: t1\n    type: explicit\n    prompt: x\n    expected: maybe",
			wantErr: "invalid YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseGeneratedYAML(tt.text, "git-commit")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestGenerationUsage_TotalCost(t *testing.T) {
	usage := &GenerationUsage{InputTokens: 1_000_000, OutputTokens: 500_000, Model: "claude-haiku-4-5-20251001"}
	cost, ok := usage.TotalCost()
	if !ok {
		t.Fatal("known model should have pricing")
	}
	if cost != 0.80+2.00 {
		t.Errorf("cost = %v, want 2.80", cost)
	}
	if usage.TotalTokens() != 1_500_000 {
		t.Errorf("TotalTokens = %d", usage.TotalTokens())
	}

	unknown := &GenerationUsage{Model: "someone-elses-model"}
	if _, ok := unknown.TotalCost(); ok {
		t.Error("unknown model should report no pricing")
	}
}
