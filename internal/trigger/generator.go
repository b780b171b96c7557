package trigger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"gopkg.in/yaml.v3"

	"github.com/8ddieHu0314/skill-lab/internal/skill"
)

// DefaultGenerationModel is the model used for test generation unless
// overridden by config or flag.
const DefaultGenerationModel = "claude-haiku-4-5-20251001"

const maxSkillBodyChars = 4000

const generationSystemPrompt = `You generate trigger test cases for an agent skill.
Output ONLY valid YAML with no markdown fences, no explanations, no commentary.

Given a skill's name, description, and SKILL.md body, produce roughly 13 test
cases spread across four types:

- explicit: the prompt names the skill or its core action directly. Expected: trigger.
- implicit: the prompt describes the task without naming the skill. Expected: trigger.
- contextual: the prompt describes a situation where the skill applies. Expected: trigger.
- negative: the prompt looks superficially related but should NOT invoke the
  skill (informational questions, adjacent tasks, inline content already
  provided). Expected: no_trigger.

Output schema:

skill: <skill-name>
test_cases:
  - id: <short-kebab-case-id>
    name: <human readable name>
    type: explicit|implicit|contextual|negative
    prompt: <the user prompt to send to the agent>
    expected: trigger|no_trigger

Every test case must have id, type, prompt, and expected. IDs must be unique.
Prompts should read like real user requests, one or two sentences each.`

// GenerationUsage reports token usage and estimated cost for one
// generation call. Cost fields are nil when the model's pricing is
// unknown.
type GenerationUsage struct {
	InputTokens  int64
	OutputTokens int64
	Model        string
}

// modelPricing maps model IDs to (input, output) USD per million tokens.
var modelPricing = map[string][2]float64{
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
}

// TotalTokens returns input plus output tokens.
func (u *GenerationUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

// TotalCost returns the estimated USD cost, or false when pricing for
// the model is unknown.
func (u *GenerationUsage) TotalCost() (float64, bool) {
	pricing, ok := modelPricing[u.Model]
	if !ok {
		return 0, false
	}
	input := float64(u.InputTokens) * pricing[0] / 1e6
	output := float64(u.OutputTokens) * pricing[1] / 1e6
	return input + output, true
}

// Generator produces trigger test YAML for a skill via the Anthropic
// API. The client reads ANTHROPIC_API_KEY from the environment.
type Generator struct {
	client anthropic.Client
	model  string

	// LastUsage holds token usage from the most recent Generate call.
	LastUsage *GenerationUsage
}

// NewGenerator creates a generator using the given model, or
// DefaultGenerationModel when model is empty.
func NewGenerator(model string) *Generator {
	if model == "" {
		model = DefaultGenerationModel
	}
	return &Generator{
		client: anthropic.NewClient(),
		model:  model,
	}
}

// Generate produces validated trigger test YAML for the skill at
// skillDir.
func (g *Generator) Generate(ctx context.Context, skillDir string) (string, error) {
	s, err := skill.Parse(skillDir)
	if err != nil {
		return "", err
	}
	if len(s.ParseErrors) > 0 {
		return "", fmt.Errorf("cannot generate tests for %s: %s", skillDir, strings.Join(s.ParseErrors, "; "))
	}

	prompt := buildGenerationPrompt(s)
	text, err := g.callAPI(ctx, prompt)
	if err != nil {
		return "", err
	}

	file, err := parseGeneratedYAML(text, s.Name())
	if err != nil {
		return "", err
	}

	out, err := yaml.Marshal(file)
	if err != nil {
		return "", fmt.Errorf("marshaling generated tests: %w", err)
	}
	return string(out), nil
}

// GenerateAndWrite generates tests and writes them to the skill's
// triggers file. Refuses to overwrite an existing file unless force
// is set.
func (g *Generator) GenerateAndWrite(ctx context.Context, skillDir string, force bool) (string, error) {
	outPath := TestsPath(skillDir)
	if !force {
		if _, err := os.Stat(outPath); err == nil {
			return "", fmt.Errorf("trigger tests already exist at %s (use --force to overwrite)", outPath)
		}
	}

	content, err := g.Generate(ctx, skillDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("creating tests directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}
	return outPath, nil
}

func buildGenerationPrompt(s *skill.Skill) string {
	body := s.Body
	if len(body) > maxSkillBodyChars {
		body = body[:maxSkillBodyChars] + "\n\n[... content truncated ...]"
	}
	return fmt.Sprintf(
		"Generate trigger test cases for this skill:\n\nSkill Name: %s\nDescription: %s\n\n--- SKILL.md content ---\n%s",
		s.Name(), s.Description(), body)
}

func (g *Generator) callAPI(ctx context.Context, prompt string) (string, error) {
	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: 2048,
		System: []anthropic.TextBlockParam{
			{Text: generationSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("generation API call failed (check ANTHROPIC_API_KEY): %w", err)
	}

	g.LastUsage = &GenerationUsage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
		Model:        g.model,
	}

	var parts []string
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			parts = append(parts, text.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("generation API returned no text content")
	}
	return strings.Join(parts, "\n"), nil
}

// parseGeneratedYAML strips markdown fences, parses the model output,
// and validates every test case. The skill name in the output is
// forced to match the parsed skill.
func parseGeneratedYAML(text, skillName string) (*TestsFile, error) {
	text = stripFences(text)

	var file TestsFile
	if err := yaml.Unmarshal([]byte(text), &file); err != nil {
		return nil, fmt.Errorf("model returned invalid YAML: %w", err)
	}

	if len(file.TestCases) == 0 {
		return nil, fmt.Errorf("model returned no test cases")
	}
	for i, tc := range file.TestCases {
		n := i + 1
		if tc.ID == "" {
			return nil, fmt.Errorf("generated test case %d missing 'id'", n)
		}
		if tc.Prompt == "" {
			return nil, fmt.Errorf("generated test case %d missing 'prompt'", n)
		}
		if !tc.Type.Valid() {
			return nil, fmt.Errorf("generated test case %d has invalid type %q", n, tc.Type)
		}
	}

	file.Skill = skillName
	return &file, nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
