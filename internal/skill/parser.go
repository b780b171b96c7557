package skill

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

const skillFileName = "SKILL.md"

// Parse loads a skill from its directory. Parse failures are recorded
// on the returned Skill rather than aborting: the static checks report
// them as findings, and a skill with a broken SKILL.md can still have
// its directory structure inspected.
func Parse(skillDir string) (*Skill, error) {
	info, err := os.Stat(skillDir)
	if err != nil {
		return nil, fmt.Errorf("skill directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("skill path is not a directory: %s", skillDir)
	}

	s := &Skill{
		Path:          skillDir,
		HasScripts:    dirExists(filepath.Join(skillDir, "scripts")),
		HasReferences: dirExists(filepath.Join(skillDir, "references")),
		HasAssets:     dirExists(filepath.Join(skillDir, "assets")),
	}

	content, err := os.ReadFile(filepath.Join(skillDir, skillFileName))
	if err != nil {
		s.ParseErrors = append(s.ParseErrors, "SKILL.md not found")
		return s, nil
	}

	metadata, body, err := parseSkillFile(content)
	if err != nil {
		s.ParseErrors = append(s.ParseErrors, err.Error())
	}
	s.Metadata = metadata
	s.Body = body

	return s, nil
}

// parseSkillFile extracts YAML frontmatter and the markdown body.
func parseSkillFile(content []byte) (*Metadata, string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, string(content), fmt.Errorf("failed to parse markdown: %w", err)
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, string(content), fmt.Errorf("missing frontmatter")
	}

	metadata := &Metadata{
		Raw: make(map[string]interface{}, len(metaData)),
	}
	for k, v := range metaData {
		metadata.Raw[k] = v
	}
	metadata.Name, _ = metaData["name"].(string)
	metadata.Description, _ = metaData["description"].(string)

	return metadata, stripFrontmatter(string(content)), nil
}

// stripFrontmatter returns the body after the closing frontmatter
// delimiter. goldmark renders the body to HTML; the checks want the
// raw markdown, so the split is done on the source text.
func stripFrontmatter(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}
	rest := content[3:]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return content
	}
	body := rest[idx+4:]
	return strings.TrimPrefix(body, "\n")
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func baseName(path string) string {
	return filepath.Base(filepath.Clean(path))
}
