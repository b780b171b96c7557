package static

import (
	"strings"
	"testing"

	"github.com/8ddieHu0314/skill-lab/internal/skill"
)

func skillWithFrontmatter(raw map[string]interface{}) *skill.Skill {
	name, _ := raw["name"].(string)
	desc, _ := raw["description"].(string)
	return &skill.Skill{
		Path:     "/tmp/skills/commit-helper",
		Metadata: &skill.Metadata{Name: name, Description: desc, Raw: raw},
		Body:     "Stub body.",
	}
}

func runCheck(t *testing.T, id string, s *skill.Skill) Result {
	t.Helper()
	c := NewRegistry().Get(id)
	if c == nil {
		t.Fatalf("check %q not registered", id)
	}
	return c.Run(s)
}

func TestNameFormat(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		pass    bool
		wantMsg string
	}{
		{"simple", "commit-helper", true, ""},
		{"single char", "x", true, ""},
		{"digits", "pdf2text", true, ""},
		{"uppercase", "CommitHelper", false, "lowercase"},
		{"leading hyphen", "-helper", false, "lowercase"},
		{"trailing hyphen", "helper-", false, "lowercase"},
		{"underscore", "commit_helper", false, "lowercase"},
		{"consecutive hyphens", "commit--helper", false, "consecutive"},
		{"too long", strings.Repeat("a", 65), false, "64 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := skillWithFrontmatter(map[string]interface{}{"name": tt.value})
			result := runCheck(t, "naming.format", s)
			if result.Passed != tt.pass {
				t.Fatalf("Passed = %v, want %v (message: %s)", result.Passed, tt.pass, result.Message)
			}
			if tt.wantMsg != "" && !strings.Contains(result.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want it to mention %q", result.Message, tt.wantMsg)
			}
		})
	}
}

func TestNameFormatAccumulatesErrors(t *testing.T) {
	s := skillWithFrontmatter(map[string]interface{}{"name": strings.Repeat("A", 70) + "--x"})
	result := runCheck(t, "naming.format", s)
	if result.Passed {
		t.Fatal("expected failure")
	}
	for _, want := range []string{"64 characters", "lowercase", "consecutive"} {
		if !strings.Contains(result.Message, want) {
			t.Errorf("Message = %q, missing %q", result.Message, want)
		}
	}
}

func TestNameRequired(t *testing.T) {
	if r := runCheck(t, "naming.required", skillWithFrontmatter(map[string]interface{}{"name": "x"})); !r.Passed {
		t.Errorf("present name should pass: %s", r.Message)
	}
	if r := runCheck(t, "naming.required", skillWithFrontmatter(map[string]interface{}{})); r.Passed {
		t.Error("missing name should fail")
	}
}

func TestDescriptionRules(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		value interface{}
		pass  bool
	}{
		{"required present", "description.required", "Use when committing.", true},
		{"required missing", "description.required", nil, false},
		{"not-empty ok", "description.not-empty", "Use when committing.", true},
		{"not-empty whitespace", "description.not-empty", "   \t", false},
		{"max-length ok", "description.max-length", strings.Repeat("d", 1024), true},
		{"max-length over", "description.max-length", strings.Repeat("d", 1025), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]interface{}{"name": "x"}
			if tt.value != nil {
				raw["description"] = tt.value
			}
			result := runCheck(t, tt.id, skillWithFrontmatter(raw))
			if result.Passed != tt.pass {
				t.Errorf("Passed = %v, want %v (message: %s)", result.Passed, tt.pass, result.Message)
			}
		})
	}
}

func TestCompatibilityLength(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
		pass bool
	}{
		{"absent", map[string]interface{}{}, true},
		{"valid", map[string]interface{}{"compatibility": "claude-code >= 1.0"}, true},
		{"blank", map[string]interface{}{"compatibility": "  "}, false},
		{"too long", map[string]interface{}{"compatibility": strings.Repeat("c", 501)}, false},
		{"wrong type", map[string]interface{}{"compatibility": 7}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := runCheck(t, "frontmatter.compatibility-length", skillWithFrontmatter(tt.raw))
			if result.Passed != tt.pass {
				t.Errorf("Passed = %v, want %v (message: %s)", result.Passed, tt.pass, result.Message)
			}
		})
	}
}

func TestMetadataFormat(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		pass  bool
	}{
		{"string-keyed map", map[string]interface{}{"author": "dev"}, true},
		{"interface-keyed map", map[interface{}]interface{}{"author": "dev"}, true},
		{"non-string value", map[string]interface{}{"version": 2}, false},
		{"not a map", "author=dev", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := skillWithFrontmatter(map[string]interface{}{"metadata": tt.value})
			result := runCheck(t, "frontmatter.metadata-format", s)
			if result.Passed != tt.pass {
				t.Errorf("Passed = %v, want %v (message: %s)", result.Passed, tt.pass, result.Message)
			}
		})
	}

	if r := runCheck(t, "frontmatter.metadata-format", skillWithFrontmatter(map[string]interface{}{})); !r.Passed {
		t.Errorf("absent metadata should pass: %s", r.Message)
	}
}

func TestAllowedToolsFormat(t *testing.T) {
	s := skillWithFrontmatter(map[string]interface{}{
		"allowed-tools": []interface{}{"Bash", "Read"},
	})
	result := runCheck(t, "frontmatter.allowed-tools-format", s)
	if result.Passed {
		t.Fatal("YAML list should fail")
	}
	if !strings.Contains(result.Message, "space-delimited") {
		t.Errorf("Message = %q, want format hint", result.Message)
	}

	s = skillWithFrontmatter(map[string]interface{}{"allowed-tools": "Bash Read Write"})
	if r := runCheck(t, "frontmatter.allowed-tools-format", s); !r.Passed {
		t.Errorf("space-delimited string should pass: %s", r.Message)
	}
}

func TestLicenseFormat(t *testing.T) {
	if r := runCheck(t, "frontmatter.license-format", skillWithFrontmatter(map[string]interface{}{"license": "MIT"})); !r.Passed {
		t.Errorf("string license should pass: %s", r.Message)
	}
	if r := runCheck(t, "frontmatter.license-format", skillWithFrontmatter(map[string]interface{}{"license": 2024})); r.Passed {
		t.Error("non-string license should fail")
	}
}

func TestSchemaChecksWithoutFrontmatter(t *testing.T) {
	s := &skill.Skill{Path: "/tmp/skills/x", Body: "body"}
	for _, id := range []string{"naming.required", "description.required", "frontmatter.metadata-format"} {
		if r := runCheck(t, id, s); r.Passed {
			t.Errorf("%s should fail without frontmatter", id)
		}
	}
}
