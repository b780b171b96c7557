package trigger

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TestsFile is the on-disk shape of a trigger test definition file.
type TestsFile struct {
	Skill     string     `yaml:"skill"`
	TestCases []TestCase `yaml:"test_cases"`
}

// TestsPath returns where a skill's trigger tests live:
// <skill>/.skill-lab/tests/triggers.yaml.
func TestsPath(skillDir string) string {
	return filepath.Join(skillDir, ".skill-lab", "tests", "triggers.yaml")
}

// LoadTests reads trigger test cases for a skill. Individual invalid
// cases are reported as load errors alongside the valid ones, so one
// bad case never blocks the rest of the suite. Case IDs must be
// unique: they key the per-case working directories and trace files,
// so a duplicate would make two cases share both.
func LoadTests(skillDir string) (cases []TestCase, loadErrors []string, err error) {
	path := TestsPath(skillDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("no trigger tests found at %s (run 'sklab generate' to create them)", path)
		}
		return nil, nil, fmt.Errorf("failed to read trigger tests: %w", err)
	}

	var file TestsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	skillName := file.Skill
	if skillName == "" {
		skillName = filepath.Base(filepath.Clean(skillDir))
	}

	seen := make(map[string]bool, len(file.TestCases))
	for i, tc := range file.TestCases {
		if problem := validateCase(tc, i); problem != "" {
			loadErrors = append(loadErrors, problem)
			continue
		}
		if seen[tc.ID] {
			loadErrors = append(loadErrors, fmt.Sprintf("test case %q is declared more than once", tc.ID))
			continue
		}
		seen[tc.ID] = true
		tc.SkillName = skillName
		if tc.Name == "" {
			tc.Name = tc.ID
		}
		cases = append(cases, tc)
	}

	return cases, loadErrors, nil
}

func validateCase(tc TestCase, index int) string {
	if tc.ID == "" {
		return fmt.Sprintf("test case %d is missing an id", index+1)
	}
	if tc.Prompt == "" {
		return fmt.Sprintf("test case %q is missing a prompt", tc.ID)
	}
	if !tc.Type.Valid() {
		return fmt.Sprintf("test case %q has invalid type %q", tc.ID, tc.Type)
	}
	return ""
}
