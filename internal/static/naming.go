package static

import (
	"path/filepath"

	"github.com/8ddieHu0314/skill-lab/internal/skill"
)

// NameMatchesDirectory verifies the declared name matches the skill's
// directory name, which is what runtimes use for discovery.
type NameMatchesDirectory struct{}

func (NameMatchesDirectory) Meta() Meta {
	return Meta{
		ID:          "naming.matches-directory",
		Name:        "Name Matches Directory",
		Description: "Name must match the parent directory name",
		Severity:    SeverityError,
		Dimension:   DimNaming,
	}
}

func (c NameMatchesDirectory) Run(s *skill.Skill) Result {
	m := c.Meta()
	location := skillFileLocation(s)

	if s.Metadata == nil || s.Metadata.Name == "" {
		return m.fail(location, "No name to validate")
	}

	name := s.Metadata.Name
	dir := filepath.Base(s.Path)
	if name != dir {
		return m.failWithDetails(location,
			"Name '"+name+"' does not match directory name '"+dir+"'",
			map[string]interface{}{"name": name, "directory": dir})
	}
	return m.pass(location, "Name '%s' matches directory name", name)
}
