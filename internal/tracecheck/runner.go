package tracecheck

import (
	"time"

	"github.com/8ddieHu0314/skill-lab/internal/logger"
	"github.com/8ddieHu0314/skill-lab/internal/trace"
)

// TypeSummary counts results for one check type.
type TypeSummary struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// Report is the aggregate outcome of one trace check run.
type Report struct {
	TracePath    string                 `json:"trace_path"`
	SkillDir     string                 `json:"skill_dir"`
	Timestamp    string                 `json:"timestamp"`
	DurationMS   float64                `json:"duration_ms"`
	ChecksRun    int                    `json:"checks_run"`
	ChecksPassed int                    `json:"checks_passed"`
	ChecksFailed int                    `json:"checks_failed"`
	OverallPass  bool                   `json:"overall_pass"`
	Results      []Result               `json:"results"`
	ByType       map[string]TypeSummary `json:"by_type"`
}

// Runner dispatches check definitions to their handlers. The registry
// is injected so tests can run with a reduced or extended handler set.
type Runner struct {
	registry *Registry
}

// NewRunner creates a check runner over a registry.
func NewRunner(registry *Registry) *Runner {
	return &Runner{registry: registry}
}

// Run evaluates every definition against one analyzed session.
// Every definition yields a result: an unknown check type or a
// definition missing a required field fails that one check and the
// run continues.
func (r *Runner) Run(defs []Definition, analyzer *trace.Analyzer, skillDir, tracePath string) *Report {
	start := time.Now()

	results := make([]Result, 0, len(defs))
	for _, def := range defs {
		handler, ok := r.registry.Get(def.Type)
		if !ok {
			results = append(results, fail(def, "unknown check type: "+def.Type))
			continue
		}
		result := handler.Run(def, analyzer, skillDir)
		if !result.Passed {
			logger.Debug().
				Str("check", def.ID).
				Str("type", def.Type).
				Str("message", result.Message).
				Msg("Trace check failed")
		}
		results = append(results, result)
	}

	report := &Report{
		TracePath:  tracePath,
		SkillDir:   skillDir,
		Timestamp:  start.UTC().Format(time.RFC3339),
		DurationMS: float64(time.Since(start).Microseconds()) / 1000.0,
		ChecksRun:  len(results),
		Results:    results,
		ByType:     make(map[string]TypeSummary),
	}

	for _, result := range results {
		summary := report.ByType[result.CheckType]
		summary.Total++
		if result.Passed {
			report.ChecksPassed++
			summary.Passed++
		} else {
			report.ChecksFailed++
			summary.Failed++
		}
		report.ByType[result.CheckType] = summary
	}
	report.OverallPass = report.ChecksFailed == 0

	return report
}
