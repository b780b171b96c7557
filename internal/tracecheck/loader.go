package tracecheck

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ChecksFile is the on-disk shape of a trace check definition file.
type ChecksFile struct {
	Checks []Definition `yaml:"checks"`
}

// DefinitionsPath returns where a skill's trace check definitions
// live: <skill>/.skill-lab/tests/trace_checks.yaml.
func DefinitionsPath(skillDir string) string {
	return filepath.Join(skillDir, ".skill-lab", "tests", "trace_checks.yaml")
}

// LoadDefinitions reads check definitions for a skill. A missing file
// is not an error: a skill without trace checks simply has none.
func LoadDefinitions(skillDir string) ([]Definition, error) {
	path := DefinitionsPath(skillDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read trace checks: %w", err)
	}

	var file ChecksFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for i, def := range file.Checks {
		if def.ID == "" {
			return nil, fmt.Errorf("%s: check %d is missing an id", path, i+1)
		}
		if def.Type == "" {
			return nil, fmt.Errorf("%s: check %q is missing a type", path, def.ID)
		}
	}

	return file.Checks, nil
}
