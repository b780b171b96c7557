package static

import (
	"regexp"

	"github.com/8ddieHu0314/skill-lab/internal/skill"
)

// Patterns that suggest the description says when to use the skill.
var triggerPhrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwhen\b`),
	regexp.MustCompile(`(?i)\bif\b`),
	regexp.MustCompile(`(?i)\btrigger(s|ed)?\b`),
	regexp.MustCompile(`(?i)\bactivate(s|d)?\b`),
	regexp.MustCompile(`(?i)\binvoke(s|d)?\b`),
	regexp.MustCompile(`(?i)\buse(s|d)?\s+(when|for|to)\b`),
}

// DescriptionIncludesTriggers flags descriptions that never say when
// the skill applies. These are the ones agents fail to invoke.
type DescriptionIncludesTriggers struct{}

func (DescriptionIncludesTriggers) Meta() Meta {
	return Meta{
		ID:          "description.includes-triggers",
		Name:        "Includes Triggers",
		Description: "Description describes when to use the skill",
		Severity:    SeverityInfo,
		Dimension:   DimDescription,
	}
}

func (c DescriptionIncludesTriggers) Run(s *skill.Skill) Result {
	m := c.Meta()
	location := skillFileLocation(s)

	desc := s.Description()
	if desc == "" {
		return m.fail(location, "No description to check")
	}

	for _, p := range triggerPhrasePatterns {
		if p.MatchString(desc) {
			return m.pass(location, "Description includes trigger information")
		}
	}

	return m.failWithDetails(location,
		"Description should describe when to use the skill",
		map[string]interface{}{
			"suggestion": "Add context about when this skill should be triggered (e.g., 'Use when...', 'Activates if...')",
		})
}
