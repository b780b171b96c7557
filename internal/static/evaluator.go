package static

import (
	"time"

	"github.com/8ddieHu0314/skill-lab/internal/logger"
	"github.com/8ddieHu0314/skill-lab/internal/skill"
)

// Report is the full outcome of a static evaluation.
type Report struct {
	SkillPath    string    `json:"skill_path"`
	SkillName    string    `json:"skill_name,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	DurationMS   float64   `json:"duration_ms"`
	QualityScore float64   `json:"quality_score"`
	OverallPass  bool      `json:"overall_pass"`
	ChecksRun    int       `json:"checks_run"`
	ChecksPassed int       `json:"checks_passed"`
	ChecksFailed int       `json:"checks_failed"`
	Results      []Result  `json:"results"`
	Summary      Summary   `json:"summary"`
}

// Evaluator runs static checks against skills.
type Evaluator struct {
	registry *Registry
	checkIDs []string
}

// NewEvaluator creates an evaluator. When checkIDs is non-empty only
// those checks run; unknown IDs are skipped with a warning.
func NewEvaluator(registry *Registry, checkIDs []string) *Evaluator {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Evaluator{registry: registry, checkIDs: checkIDs}
}

func (e *Evaluator) selectedChecks() []Check {
	if len(e.checkIDs) == 0 {
		return e.registry.All()
	}
	var checks []Check
	for _, id := range e.checkIDs {
		c := e.registry.Get(id)
		if c == nil {
			logger.Warn().Str("check_id", id).Msg("unknown check id, skipping")
			continue
		}
		checks = append(checks, c)
	}
	return checks
}

// Evaluate parses the skill at skillDir and runs the selected checks.
// Parse errors surface through the checks themselves (missing
// frontmatter fails the schema checks), so this only errors on an
// unreadable path.
func (e *Evaluator) Evaluate(skillDir string) (*Report, error) {
	start := time.Now()

	s, err := skill.Parse(skillDir)
	if err != nil {
		return nil, err
	}
	for _, msg := range s.ParseErrors {
		logger.Warn().Str("skill", skillDir).Msg(msg)
	}

	checks := e.selectedChecks()
	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		results = append(results, c.Run(s))
	}

	report := &Report{
		SkillPath:  s.Path,
		Timestamp:  start.UTC(),
		DurationMS: float64(time.Since(start).Microseconds()) / 1000,
		ChecksRun:  len(results),
		Results:    results,
	}
	if s.Metadata != nil {
		report.SkillName = s.Metadata.Name
	}
	for _, r := range results {
		if r.Passed {
			report.ChecksPassed++
		} else {
			report.ChecksFailed++
		}
	}
	report.OverallPass = !hasErrorFailure(results)
	report.QualityScore = CalculateScore(results)
	report.Summary = BuildSummary(results)

	logger.Debug().
		Str("skill", s.Path).
		Int("checks", report.ChecksRun).
		Int("failed", report.ChecksFailed).
		Float64("score", report.QualityScore).
		Msg("static evaluation complete")

	return report, nil
}

// Validate runs the checks and returns only error-severity failures.
func (e *Evaluator) Validate(skillDir string) (bool, []Result, error) {
	report, err := e.Evaluate(skillDir)
	if err != nil {
		return false, nil, err
	}
	var errors []Result
	for _, r := range report.Results {
		if !r.Passed && r.Severity == SeverityError {
			errors = append(errors, r)
		}
	}
	return report.OverallPass, errors, nil
}

func hasErrorFailure(results []Result) bool {
	for _, r := range results {
		if !r.Passed && r.Severity == SeverityError {
			return true
		}
	}
	return false
}
