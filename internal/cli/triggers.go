package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/8ddieHu0314/skill-lab/internal/report"
	"github.com/8ddieHu0314/skill-lab/internal/trigger"
)

var (
	triggersRuntime string
	triggersTimeout time.Duration
	triggersWorkers int
	triggersType    string
	triggersTrace   string
	triggersAnalyze bool
)

var triggersCmd = &cobra.Command{
	Use:   "triggers <skill-dir>",
	Short: "Run trigger tests against a skill",
	Long: `Run trigger tests against a skill.

Loads test cases from <skill-dir>/.skill-lab/tests/triggers.yaml, runs
each prompt through the agent runtime in an isolated working
directory, captures the session trace, and verifies whether the skill
triggered as expected.

Tests run concurrently up to the worker limit. Ctrl-C cancels the
batch; cases already finished keep their results.`,
	Args: cobra.ExactArgs(1),
	RunE: runTriggers,
}

func init() {
	triggersCmd.Flags().StringVarP(&triggersRuntime, "runtime", "r", "", "Agent runtime: codex or claude (default: auto-detect)")
	triggersCmd.Flags().DurationVarP(&triggersTimeout, "timeout", "t", 0, "Per-test timeout (default from config)")
	triggersCmd.Flags().IntVarP(&triggersWorkers, "workers", "w", 0, "Concurrent test sessions (default from config)")
	triggersCmd.Flags().StringVar(&triggersType, "type", "", "Only run tests of one type: explicit, implicit, contextual, negative")
	triggersCmd.Flags().StringVar(&triggersTrace, "trace-dir", "", "Directory for traces and work dirs (default: <skill>/.skill-lab/traces)")
	triggersCmd.Flags().BoolVar(&triggersAnalyze, "analyze", false, "Attach failure analysis with fix suggestions to failed tests")
	rootCmd.AddCommand(triggersCmd)
}

func runTriggers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	typeFilter := trigger.Type(triggersType)
	if triggersType != "" && !typeFilter.Valid() {
		return fmt.Errorf("invalid trigger type %q", triggersType)
	}

	opts := trigger.Options{
		Runtime:         firstNonEmpty(triggersRuntime, cfg.Settings.Runtime),
		TraceDir:        firstNonEmpty(triggersTrace, cfg.Settings.TraceDir),
		Timeout:         cfg.Settings.Timeout,
		Workers:         cfg.Settings.Workers,
		TypeFilter:      typeFilter,
		AnalyzeFailures: triggersAnalyze,
	}
	if triggersTimeout > 0 {
		opts.Timeout = triggersTimeout
	}
	if triggersWorkers > 0 {
		opts.Workers = triggersWorkers
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := trigger.NewEvaluator(opts).Evaluate(ctx, args[0])
	if err != nil {
		return err
	}

	if err := printReport(rep, func() string { return report.FormatTriggerText(rep) }); err != nil {
		return err
	}

	recordRun(cfg, &runRecord{
		SkillPath: rep.SkillPath,
		SkillName: rep.SkillName,
		Kind:      "triggers",
		Runtime:   rep.Runtime,
		Duration:  rep.DurationMS,
		Passed:    rep.OverallPass,
		Score:     rep.PassRate * 100,
		TestsRun:  rep.TestsRun,
		TestsFail: rep.TestsFailed,
	}, rep)

	if !rep.OverallPass {
		return fmt.Errorf("trigger tests failed (%d of %d)", rep.TestsFailed, rep.TestsRun)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
