// Package report renders evaluation reports for the terminal and for
// machine consumption. Reports go to stdout; logs stay on stderr.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/8ddieHu0314/skill-lab/internal/static"
	"github.com/8ddieHu0314/skill-lab/internal/tracecheck"
	"github.com/8ddieHu0314/skill-lab/internal/trigger"
)

// FormatStaticText renders a static evaluation report as
// human-readable text.
func FormatStaticText(r *static.Report) string {
	var b strings.Builder

	name := r.SkillName
	if name == "" {
		name = r.SkillPath
	}
	header := fmt.Sprintf("Static evaluation: %s — score %.1f/100", name, r.QualityScore)
	fmt.Fprintln(&b, header)
	fmt.Fprintln(&b, strings.Repeat("═", len(header)))

	for _, dim := range []static.Dimension{static.DimStructure, static.DimNaming, static.DimDescription, static.DimContent} {
		ds, ok := r.Summary.ByDimension[dim]
		if !ok {
			continue
		}
		status := "PASS"
		if ds.Failed > 0 {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "  %-14s %d/%-4d %s\n", dim, ds.Passed, ds.Passed+ds.Failed, status)
	}

	failures := failedResults(r.Results)
	if len(failures) > 0 {
		fmt.Fprintln(&b)
		for _, res := range failures {
			fmt.Fprintf(&b, "  %-7s %-36s %s\n", strings.ToUpper(string(res.Severity)), res.CheckID, res.Message)
		}
	}

	fmt.Fprintln(&b, strings.Repeat("─", len(header)))
	status := "PASS"
	if !r.OverallPass {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "Result: %s (%d/%d checks)\n", status, r.ChecksPassed, r.ChecksRun)

	return b.String()
}

// FormatTriggerText renders a trigger test report as human-readable
// text.
func FormatTriggerText(r *trigger.Report) string {
	var b strings.Builder

	header := fmt.Sprintf("Trigger tests: %s — runtime: %s", r.SkillName, r.Runtime)
	fmt.Fprintln(&b, header)
	fmt.Fprintln(&b, strings.Repeat("═", len(header)))

	for _, t := range []trigger.Type{trigger.Explicit, trigger.Implicit, trigger.Contextual, trigger.Negative} {
		ts, ok := r.ByType[t]
		if !ok {
			continue
		}
		status := "PASS"
		if ts.Failed > 0 {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "  %-12s %d/%-4d %s\n", t, ts.Passed, ts.Total, status)
	}

	for _, res := range r.Results {
		if res.Passed {
			continue
		}
		label := strings.ToUpper(string(res.Status))
		fmt.Fprintf(&b, "  %-7s %-24s %s\n", label, res.TestID, res.Message)
		if res.TracePath != "" {
			fmt.Fprintf(&b, "          trace: %s\n", res.TracePath)
		}
		if res.Analysis != nil {
			fmt.Fprintf(&b, "          cause: %s — %s\n", res.Analysis.RootCause, res.Analysis.Analysis)
			for _, sug := range res.Analysis.Suggestions {
				fmt.Fprintf(&b, "          fix [%.0f%%]: %s\n", sug.Confidence*100, sug.Description)
			}
		}
	}

	fmt.Fprintln(&b, strings.Repeat("─", len(header)))
	status := "PASS"
	if !r.OverallPass {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "Result: %s (%d/%d, %.0f%%)\n", status, r.TestsPassed, r.TestsRun, r.PassRate*100)

	return b.String()
}

// FormatTraceText renders a trace check report as human-readable text.
func FormatTraceText(r *tracecheck.Report) string {
	var b strings.Builder

	header := fmt.Sprintf("Trace checks: %s", r.TracePath)
	fmt.Fprintln(&b, header)
	fmt.Fprintln(&b, strings.Repeat("═", len(header)))

	types := make([]string, 0, len(r.ByType))
	for t := range r.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		ts := r.ByType[t]
		status := "PASS"
		if ts.Failed > 0 {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "  %-20s %d/%-4d %s\n", t, ts.Passed, ts.Total, status)
	}

	for _, res := range r.Results {
		if !res.Passed {
			fmt.Fprintf(&b, "  FAIL  %-24s %s\n", res.CheckID, res.Message)
		}
	}

	fmt.Fprintln(&b, strings.Repeat("─", len(header)))
	status := "PASS"
	if !r.OverallPass {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "Result: %s (%d/%d checks)\n", status, r.ChecksPassed, r.ChecksRun)

	return b.String()
}

func failedResults(results []static.Result) []static.Result {
	var out []static.Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
