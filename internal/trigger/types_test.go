package trigger

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestType_Valid(t *testing.T) {
	for _, valid := range []Type{Explicit, Implicit, Contextual, Negative} {
		if !valid.Valid() {
			t.Errorf("%q should be valid", valid)
		}
	}
	for _, invalid := range []Type{"", "positive", "EXPLICIT"} {
		if invalid.Valid() {
			t.Errorf("%q should be invalid", invalid)
		}
	}
}

func TestExpectation_UnmarshalYAML_Scalar(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"expected: trigger", true},
		{"expected: no_trigger", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var tc TestCase
			if err := yaml.Unmarshal([]byte("id: t1\nprompt: x\ntype: explicit\n"+tt.input), &tc); err != nil {
				t.Fatal(err)
			}
			if tc.Expected.SkillTriggered != tt.want {
				t.Errorf("SkillTriggered = %v, want %v", tc.Expected.SkillTriggered, tt.want)
			}
		})
	}
}

func TestExpectation_UnmarshalYAML_Mapping(t *testing.T) {
	input := `id: t1
prompt: commit my changes
type: explicit
expected:
  skill_triggered: true
  exit_code: 0
  commands_include:
    - git commit
  files_created:
    - report.md
  no_loops: true
`
	var tc TestCase
	if err := yaml.Unmarshal([]byte(input), &tc); err != nil {
		t.Fatal(err)
	}

	e := tc.Expected
	if !e.SkillTriggered {
		t.Error("SkillTriggered should be true")
	}
	if e.ExitCode == nil || *e.ExitCode != 0 {
		t.Errorf("ExitCode = %v, want 0", e.ExitCode)
	}
	if len(e.CommandsInclude) != 1 || e.CommandsInclude[0] != "git commit" {
		t.Errorf("CommandsInclude = %v", e.CommandsInclude)
	}
	if len(e.FilesCreated) != 1 || e.FilesCreated[0] != "report.md" {
		t.Errorf("FilesCreated = %v", e.FilesCreated)
	}
	if !e.NoLoops {
		t.Error("NoLoops should be true")
	}
}

func TestExpectation_UnmarshalYAML_BadScalar(t *testing.T) {
	var tc TestCase
	err := yaml.Unmarshal([]byte("id: t1\nexpected: maybe"), &tc)
	if err == nil {
		t.Fatal("expected error for invalid scalar expectation")
	}
}

func TestExpectation_MarshalYAML_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		e    Expectation
		want string
	}{
		{"trigger shorthand", Expectation{SkillTriggered: true}, "trigger\n"},
		{"no_trigger shorthand", Expectation{SkillTriggered: false}, "no_trigger\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := yaml.Marshal(tt.e)
			if err != nil {
				t.Fatal(err)
			}
			if string(out) != tt.want {
				t.Errorf("marshal = %q, want %q", out, tt.want)
			}
		})
	}

	// Optional assertions force the mapping form.
	out, err := yaml.Marshal(Expectation{SkillTriggered: true, NoLoops: true})
	if err != nil {
		t.Fatal(err)
	}
	var back Expectation
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if !back.SkillTriggered || !back.NoLoops {
		t.Errorf("round trip lost fields: %+v", back)
	}
}

func TestReport_FailingCaseIDs(t *testing.T) {
	report := &Report{Results: []Result{
		{TestID: "a", Passed: true},
		{TestID: "b", Passed: false},
		{TestID: "c", Passed: false},
	}}

	ids := report.FailingCaseIDs()
	if len(ids) != 2 || ids[0] != "b" || ids[1] != "c" {
		t.Errorf("FailingCaseIDs = %v, want [b c]", ids)
	}
}
