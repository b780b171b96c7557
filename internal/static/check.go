// Package static analyzes a skill definition without running an
// agent: frontmatter schema validation, naming rules, description
// quality, and body content checks, rolled up into a weighted
// quality score.
package static

import (
	"fmt"

	"github.com/8ddieHu0314/skill-lab/internal/skill"
)

// Severity grades a failing check.
type Severity string

const (
	SeverityError   Severity = "error"   // must fix
	SeverityWarning Severity = "warning" // should fix
	SeverityInfo    Severity = "info"    // suggestion
)

// Dimension groups checks for scoring.
type Dimension string

const (
	DimStructure   Dimension = "structure"
	DimNaming      Dimension = "naming"
	DimDescription Dimension = "description"
	DimContent     Dimension = "content"
)

// Meta identifies a check and fixes its severity and dimension.
type Meta struct {
	ID          string
	Name        string
	Description string
	Severity    Severity
	Dimension   Dimension
}

// Result is the outcome of one check against one skill.
type Result struct {
	CheckID   string                 `json:"check_id"`
	CheckName string                 `json:"check_name"`
	Passed    bool                   `json:"passed"`
	Severity  Severity               `json:"severity"`
	Dimension Dimension              `json:"dimension"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Location  string                 `json:"location,omitempty"`
}

// Check is one static rule. Implementations are stateless; Run may be
// called for many skills.
type Check interface {
	Meta() Meta
	Run(s *skill.Skill) Result
}

func (m Meta) pass(location, format string, args ...interface{}) Result {
	return Result{
		CheckID:   m.ID,
		CheckName: m.Name,
		Passed:    true,
		Severity:  m.Severity,
		Dimension: m.Dimension,
		Message:   fmt.Sprintf(format, args...),
		Location:  location,
	}
}

func (m Meta) fail(location, format string, args ...interface{}) Result {
	return Result{
		CheckID:   m.ID,
		CheckName: m.Name,
		Passed:    false,
		Severity:  m.Severity,
		Dimension: m.Dimension,
		Message:   fmt.Sprintf(format, args...),
		Location:  location,
	}
}

func (m Meta) failWithDetails(location, message string, details map[string]interface{}) Result {
	r := m.fail(location, "%s", message)
	r.Details = details
	return r
}

func skillFileLocation(s *skill.Skill) string {
	return s.Path + "/SKILL.md"
}
