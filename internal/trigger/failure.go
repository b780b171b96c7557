package trigger

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/8ddieHu0314/skill-lab/internal/skill"
)

// FixSuggestion is one concrete remediation for a failed trigger test.
type FixSuggestion struct {
	Category    string  `json:"category"` // description, test
	Action      string  `json:"action"`   // add, update, change_expectation
	Description string  `json:"description"`
	CodeSnippet string  `json:"code_snippet,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// FailureAnalysis explains why a trigger test likely failed and what
// to change. Produced by rule-based heuristics, not by a model.
type FailureAnalysis struct {
	FailureType      string          `json:"failure_type"` // false_positive, false_negative
	Analysis         string          `json:"analysis"`
	RootCause        string          `json:"root_cause"`
	MatchingKeywords []string        `json:"matching_keywords,omitempty"`
	Suggestions      []FixSuggestion `json:"suggestions"`
	IsLikelyTestBug  bool            `json:"is_likely_test_bug,omitempty"`
}

// Verbs indicating execution (DO something).
var executionVerbs = wordSet(
	"run", "execute", "do", "perform", "make", "create",
	"commit", "push", "deploy", "install", "build", "start",
	"stop", "delete", "remove", "update", "apply",
)

// Verbs indicating drafting/writing (WRITE something).
var draftingVerbs = wordSet(
	"write", "draft", "compose", "help", "suggest", "generate",
	"prepare", "phrase", "word", "formulate",
)

var informationalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^how (do|can|should|would) (i|we|you)`),
	regexp.MustCompile(`^what (is|are|was|were|does|do)`),
	regexp.MustCompile(`^why (is|are|does|do|did)`),
	regexp.MustCompile(`^explain`),
	regexp.MustCompile(`^describe`),
	regexp.MustCompile(`^show me`),
	regexp.MustCompile(`^list`),
	regexp.MustCompile(`^tell me about`),
}

var inlineContentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`-m\s+['"]`),
	regexp.MustCompile(`--message\s+['"]`),
	regexp.MustCompile(`-m\s+\S+`),
}

var stopWords = wordSet(
	"the", "a", "an", "is", "are", "was", "were", "be", "been",
	"being", "have", "has", "had", "do", "does", "did", "will",
	"would", "could", "should", "may", "might", "must", "shall",
	"can", "need", "to", "of", "in", "for", "on", "with", "at",
	"by", "from", "as", "into", "through", "during", "before",
	"after", "above", "below", "between", "under", "over", "again",
	"further", "then", "once", "here", "there", "when", "where",
	"why", "how", "all", "each", "every", "both", "few", "more",
	"most", "other", "some", "such", "no", "nor", "not", "only",
	"own", "same", "so", "than", "too", "very", "just", "i",
	"you", "he", "she", "it", "we", "they", "me", "him", "her",
	"us", "them", "my", "your", "his", "its", "our", "their",
	"this", "that", "these", "those", "what", "which", "who",
	"whom", "use", "using", "used",
)

var synonyms = map[string][]string{
	"commit":  {"save", "store", "record"},
	"message": {"text", "note", "content"},
	"create":  {"make", "generate", "build", "scaffold"},
	"write":   {"draft", "compose", "prepare"},
	"fix":     {"repair", "resolve", "solve", "debug", "patch"},
	"update":  {"modify", "change", "edit", "revise"},
	"delete":  {"remove", "drop", "clear"},
	"test":    {"spec", "check", "verify", "validate"},
}

var wordPattern = regexp.MustCompile(`[a-z]+`)

// FailureAnalyzer explains trigger test failures with rule-based
// heuristics over the prompt and the skill's description.
type FailureAnalyzer struct {
	skill *skill.Skill
}

// NewFailureAnalyzer creates an analyzer for one parsed skill.
func NewFailureAnalyzer(s *skill.Skill) *FailureAnalyzer {
	return &FailureAnalyzer{skill: s}
}

// Analyze explains a failed trigger test. Returns nil for passed
// results and for failures that are not trigger mismatches.
func (a *FailureAnalyzer) Analyze(tc TestCase, result Result) *FailureAnalysis {
	if result.Passed {
		return nil
	}

	switch {
	case result.ExpectedTrigger && !result.SkillTriggered:
		return a.analyzeFalseNegative(tc)
	case !result.ExpectedTrigger && result.SkillTriggered:
		return a.analyzeFalsePositive(tc)
	default:
		return nil
	}
}

// analyzeFalsePositive explains why the skill triggered when it
// should not have.
func (a *FailureAnalyzer) analyzeFalsePositive(tc TestCase) *FailureAnalysis {
	prompt := strings.ToLower(tc.Prompt)
	description := strings.ToLower(a.skill.Description())

	promptKeywords := extractKeywords(prompt)
	descKeywords := extractKeywords(description)
	matching := intersect(promptKeywords, descKeywords)

	var (
		suggestions []FixSuggestion
		parts       []string
	)
	rootCause := "unknown"
	isTestBug := false

	if len(matching) > 0 {
		parts = append(parts, fmt.Sprintf(
			"Triggered because prompt contains keywords matching skill description: %s.",
			strings.Join(firstN(matching, 5), ", ")))
		rootCause = "keyword_overlap"
	}

	hasExecution := hasAnyWord(prompt, executionVerbs)
	hasDrafting := hasAnyWord(prompt, draftingVerbs)
	if hasExecution && !hasDrafting {
		parts = append(parts, "However, this prompt asks to EXECUTE an action, not DRAFT/WRITE content.")
		rootCause = "missing_exclusion"
		suggestions = append(suggestions, FixSuggestion{
			Category:    "description",
			Action:      "add",
			Description: "Add exclusion clause for execution requests",
			CodeSnippet: "Do NOT use when user asks to execute/run commands.",
			Confidence:  0.8,
		})
	}

	if matchesAny(prompt, inlineContentPatterns) {
		parts = append(parts, "The prompt provides inline content, indicating the user already has what they need.")
		rootCause = "inline_content"
		suggestions = append(suggestions, FixSuggestion{
			Category:    "description",
			Action:      "add",
			Description: "Add exclusion for inline content",
			CodeSnippet: "Do NOT use when user provides content inline.",
			Confidence:  0.85,
		})
	}

	if matchesAny(prompt, informationalPatterns) {
		parts = append(parts, "This is an informational query (asking ABOUT something), not a request to use the skill.")
		rootCause = "informational_query"
		suggestions = append(suggestions, FixSuggestion{
			Category:    "description",
			Action:      "add",
			Description: "Add exclusion for informational questions",
			CodeSnippet: "Do NOT use for questions about how to use tools.",
			Confidence:  0.75,
		})
	}

	if tc.Type == Negative && len(matching) > 0 && (len(matching) >= 2 || (hasExecution && hasDrafting)) {
		isTestBug = true
		suggestions = append(suggestions, FixSuggestion{
			Category:    "test",
			Action:      "change_expectation",
			Description: "Consider changing expectation to 'trigger' if this prompt genuinely falls within skill scope",
			Confidence:  0.5,
		})
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, FixSuggestion{
			Category:    "description",
			Action:      "update",
			Description: "Narrow the skill description to be more specific",
			Confidence:  0.4,
		})
	}

	analysis := "Skill triggered unexpectedly; description may be too broad"
	if len(parts) > 0 {
		analysis = strings.Join(parts, " ")
	}

	return &FailureAnalysis{
		FailureType:      "false_positive",
		Analysis:         analysis,
		RootCause:        rootCause,
		MatchingKeywords: firstN(matching, 10),
		Suggestions:      sortByConfidence(suggestions),
		IsLikelyTestBug:  isTestBug,
	}
}

// analyzeFalseNegative explains why the skill did not trigger when it
// should have.
func (a *FailureAnalyzer) analyzeFalseNegative(tc TestCase) *FailureAnalysis {
	prompt := strings.ToLower(tc.Prompt)
	description := strings.ToLower(a.skill.Description())

	promptKeywords := extractKeywords(prompt)
	descKeywords := extractKeywords(description)
	matching := intersect(promptKeywords, descKeywords)
	missingFromDesc := subtract(promptKeywords, descKeywords)

	var (
		suggestions []FixSuggestion
		parts       []string
	)
	rootCause := "unknown"
	isTestBug := false

	if len(matching) == 0 {
		parts = append(parts, "No keywords from the skill description appear in the prompt.")
		rootCause = "no_overlap"

		if tc.Type == Implicit || tc.Type == Contextual {
			parts = append(parts, "This implicit/contextual test may be too indirect.")
			isTestBug = true
			rootCause = "test_too_indirect"
			suggestions = append(suggestions, FixSuggestion{
				Category:    "test",
				Action:      "update",
				Description: "Make test prompt more explicit about the task",
				Confidence:  0.6,
			})
		}
	}

	var importantMissing []string
	for _, k := range missingFromDesc {
		if len(k) > 3 {
			importantMissing = append(importantMissing, k)
		}
		if len(importantMissing) == 5 {
			break
		}
	}
	if len(importantMissing) > 0 {
		parts = append(parts, "Prompt uses words not in description: "+strings.Join(importantMissing, ", ")+".")
		if rootCause == "unknown" {
			rootCause = "missing_keywords"
		}
		suggestions = append(suggestions, FixSuggestion{
			Category:    "description",
			Action:      "add",
			Description: "Add missing trigger keywords to description",
			CodeSnippet: "Consider adding: " + strings.Join(importantMissing, ", "),
			Confidence:  0.7,
		})
	}

	if gaps := findSynonymGaps(promptKeywords, description); len(gaps) > 0 {
		parts = append(parts, "Prompt may use synonyms not in description.")
		if rootCause == "unknown" {
			rootCause = "synonym_gap"
		}
		suggestions = append(suggestions, FixSuggestion{
			Category:    "description",
			Action:      "add",
			Description: "Add synonym phrases that users might use",
			CodeSnippet: "Consider adding: " + strings.Join(firstN(gaps, 5), ", "),
			Confidence:  0.6,
		})
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, FixSuggestion{
			Category:    "description",
			Action:      "update",
			Description: "Broaden the skill description to match user intent",
			Confidence:  0.4,
		})
	}

	analysis := "Skill did not trigger; description may need broadening"
	if len(parts) > 0 {
		analysis = strings.Join(parts, " ")
	}

	return &FailureAnalysis{
		FailureType:      "false_negative",
		Analysis:         analysis,
		RootCause:        rootCause,
		MatchingKeywords: firstN(missingFromDesc, 10),
		Suggestions:      sortByConfidence(suggestions),
		IsLikelyTestBug:  isTestBug,
	}
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// extractKeywords pulls significant words out of text, filtering stop
// words and short tokens. Returned sorted for deterministic output.
func extractKeywords(text string) []string {
	seen := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(w) > 2 && !stopWords[w] {
			seen[w] = true
		}
	}
	keywords := make([]string, 0, len(seen))
	for w := range seen {
		keywords = append(keywords, w)
	}
	sort.Strings(keywords)
	return keywords
}

func hasAnyWord(text string, set map[string]bool) bool {
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if set[w] {
			return true
		}
	}
	return false
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, w := range b {
		set[w] = true
	}
	var out []string
	for _, w := range a {
		if set[w] {
			out = append(out, w)
		}
	}
	return out
}

func subtract(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, w := range b {
		set[w] = true
	}
	var out []string
	for _, w := range a {
		if !set[w] {
			out = append(out, w)
		}
	}
	return out
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func findSynonymGaps(promptKeywords []string, description string) []string {
	var out []string
	for _, keyword := range promptKeywords {
		for _, synonym := range synonyms[keyword] {
			if !strings.Contains(description, synonym) && !contains(out, synonym) {
				out = append(out, synonym)
			}
		}
	}
	return out
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func sortByConfidence(suggestions []FixSuggestion) []FixSuggestion {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	return suggestions
}
