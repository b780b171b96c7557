package static

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/8ddieHu0314/skill-lab/internal/skill"
)

const (
	minBodyChars      = 50
	maxBodyLines      = 500
	maxReferenceDepth = 1
)

var windowsPathPattern = regexp.MustCompile(`[A-Za-z]:\\|\\\\`)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
	regexp.MustCompile(`\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{4}\b`),
}

var codeExamplePatterns = []*regexp.Regexp{
	regexp.MustCompile("```"),
	regexp.MustCompile(`(?m)^\s{4,}\S`),
	regexp.MustCompile(`<example>`),
}

// Markdown links and inline references to files bundled with the
// skill, e.g. [usage](references/usage.md) or scripts/run.sh.
var localRefPattern = regexp.MustCompile(`\]\(((?:scripts|references|assets)/[^)#?\s]+)\)`)

// BodyNotEmpty requires the SKILL.md body to carry real content.
type BodyNotEmpty struct{}

func (BodyNotEmpty) Meta() Meta {
	return Meta{
		ID:          "content.body-not-empty",
		Name:        "Body Not Empty",
		Description: "SKILL.md body has meaningful content",
		Severity:    SeverityError,
		Dimension:   DimContent,
	}
}

func (c BodyNotEmpty) Run(s *skill.Skill) Result {
	m := c.Meta()
	location := skillFileLocation(s)

	body := strings.TrimSpace(s.Body)
	if body == "" {
		return m.fail(location, "SKILL.md body is empty")
	}
	if len(body) < minBodyChars {
		return m.failWithDetails(location,
			fmt.Sprintf("SKILL.md body is too short (%d characters)", len(body)),
			map[string]interface{}{"length": len(body), "minimum": minBodyChars})
	}
	return m.pass(location, "SKILL.md body has content (%d characters)", len(body))
}

// LineBudget warns when the body exceeds the line budget runtimes load
// into context.
type LineBudget struct{}

func (LineBudget) Meta() Meta {
	return Meta{
		ID:          "content.line-budget",
		Name:        "Line Budget",
		Description: fmt.Sprintf("Body is under %d lines", maxBodyLines),
		Severity:    SeverityWarning,
		Dimension:   DimContent,
	}
}

func (c LineBudget) Run(s *skill.Skill) Result {
	m := c.Meta()
	location := skillFileLocation(s)

	count := len(strings.Split(s.Body, "\n"))
	if count > maxBodyLines {
		return m.failWithDetails(location,
			fmt.Sprintf("Body exceeds %d lines (got %d)", maxBodyLines, count),
			map[string]interface{}{"line_count": count, "max_lines": maxBodyLines})
	}
	return m.pass(location, "Body within line budget (%d/%d)", count, maxBodyLines)
}

// HasExamples suggests adding code examples when none are present.
type HasExamples struct{}

func (HasExamples) Meta() Meta {
	return Meta{
		ID:          "content.has-examples",
		Name:        "Has Examples",
		Description: "Content contains code examples",
		Severity:    SeverityInfo,
		Dimension:   DimContent,
	}
}

func (c HasExamples) Run(s *skill.Skill) Result {
	m := c.Meta()
	location := skillFileLocation(s)

	for _, p := range codeExamplePatterns {
		if p.MatchString(s.Body) {
			return m.pass(location, "Content contains code examples")
		}
	}
	return m.failWithDetails(location,
		"Content does not contain code examples",
		map[string]interface{}{"suggestion": "Add code examples using fenced code blocks (```)"})
}

// NoWindowsPaths flags backslash paths that break on POSIX runtimes.
type NoWindowsPaths struct{}

func (NoWindowsPaths) Meta() Meta {
	return Meta{
		ID:          "content.no-windows-paths",
		Name:        "No Windows Paths",
		Description: "Content does not contain Windows-style paths",
		Severity:    SeverityWarning,
		Dimension:   DimContent,
	}
}

func (c NoWindowsPaths) Run(s *skill.Skill) Result {
	m := c.Meta()
	location := skillFileLocation(s)

	matches := windowsPathPattern.FindAllString(s.Body, 5)
	if len(matches) > 0 {
		return m.failWithDetails(location,
			"Content contains Windows-style paths",
			map[string]interface{}{
				"found":      matches,
				"suggestion": "Use forward slashes (/) for cross-platform compatibility",
			})
	}
	return m.pass(location, "No Windows-style paths found")
}

// NoTimeSensitive flags hardcoded dates that go stale.
type NoTimeSensitive struct{}

func (NoTimeSensitive) Meta() Meta {
	return Meta{
		ID:          "content.no-time-sensitive",
		Name:        "No Time-Sensitive Content",
		Description: "Content does not contain hardcoded dates",
		Severity:    SeverityWarning,
		Dimension:   DimContent,
	}
}

var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func (c NoTimeSensitive) Run(s *skill.Skill) Result {
	m := c.Meta()
	location := skillFileLocation(s)

	var found []string
	for _, p := range datePatterns {
		for _, match := range p.FindAllString(s.Body, -1) {
			if !semverPattern.MatchString(match) {
				found = append(found, match)
			}
		}
	}
	if len(found) > 0 {
		if len(found) > 5 {
			found = found[:5]
		}
		return m.failWithDetails(location,
			"Content contains hardcoded dates",
			map[string]interface{}{
				"found":      found,
				"suggestion": "Avoid hardcoded dates that may become stale",
			})
	}
	return m.pass(location, "No hardcoded dates found")
}

// ReferenceDepth keeps the references folder flat so runtimes can load
// files without walking a tree.
type ReferenceDepth struct{}

func (ReferenceDepth) Meta() Meta {
	return Meta{
		ID:          "content.reference-depth",
		Name:        "Reference Depth",
		Description: fmt.Sprintf("References are max %d level deep", maxReferenceDepth),
		Severity:    SeverityWarning,
		Dimension:   DimContent,
	}
}

func (c ReferenceDepth) Run(s *skill.Skill) Result {
	m := c.Meta()
	refDir := filepath.Join(s.Path, "references")

	info, err := os.Stat(refDir)
	if err != nil || !info.IsDir() {
		return m.pass("", "No references folder to check")
	}

	// Directories more than maxReferenceDepth below references/ hold
	// files the loader will not reach.
	pattern := strings.Repeat("*/", maxReferenceDepth+1) + "*"
	deep, err := doublestar.Glob(os.DirFS(refDir), pattern)
	if err != nil {
		return m.fail(refDir, "Failed to scan references: %v", err)
	}
	if len(deep) > 0 {
		if len(deep) > 5 {
			deep = deep[:5]
		}
		return m.failWithDetails(refDir,
			fmt.Sprintf("References nested too deeply (max %d level)", maxReferenceDepth),
			map[string]interface{}{"deep_paths": deep})
	}
	return m.pass(refDir, "References within depth limit (%d level max)", maxReferenceDepth)
}

// ReferencedFilesExist resolves relative links in the body against the
// skill directory and fails on broken ones.
type ReferencedFilesExist struct{}

func (ReferencedFilesExist) Meta() Meta {
	return Meta{
		ID:          "content.referenced-files-exist",
		Name:        "Referenced Files Exist",
		Description: "Files linked from SKILL.md exist in the skill directory",
		Severity:    SeverityError,
		Dimension:   DimContent,
	}
}

func (c ReferencedFilesExist) Run(s *skill.Skill) Result {
	m := c.Meta()
	location := skillFileLocation(s)

	var missing []string
	seen := map[string]bool{}
	for _, match := range localRefPattern.FindAllStringSubmatch(s.Body, -1) {
		rel := match[1]
		if seen[rel] {
			continue
		}
		seen[rel] = true
		if _, err := os.Stat(filepath.Join(s.Path, rel)); err != nil {
			missing = append(missing, rel)
		}
	}
	if len(missing) > 0 {
		return m.failWithDetails(location,
			fmt.Sprintf("SKILL.md links to %d missing file(s)", len(missing)),
			map[string]interface{}{"missing": missing})
	}
	if len(seen) == 0 {
		return m.pass(location, "No local file references to check")
	}
	return m.pass(location, "All %d referenced files exist", len(seen))
}
