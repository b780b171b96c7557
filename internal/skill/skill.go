// Package skill parses agent skill definitions (SKILL.md plus
// supporting directories) into an immutable record consumed by the
// static checks and the trigger evaluator.
package skill

// Metadata holds the fields extracted from SKILL.md frontmatter.
type Metadata struct {
	Name        string
	Description string

	// Raw keeps every frontmatter field as parsed, for checks that
	// validate optional fields like compatibility or license.
	Raw map[string]interface{}
}

// Skill is a parsed skill. It is read-only for the duration of a run.
type Skill struct {
	Path          string
	Metadata      *Metadata
	Body          string
	HasScripts    bool
	HasReferences bool
	HasAssets     bool
	ParseErrors   []string
}

// Name returns the declared skill name, falling back to the directory
// name when frontmatter is missing or incomplete.
func (s *Skill) Name() string {
	if s.Metadata != nil && s.Metadata.Name != "" {
		return s.Metadata.Name
	}
	return baseName(s.Path)
}

// Description returns the declared description, or empty.
func (s *Skill) Description() string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata.Description
}
