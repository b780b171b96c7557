package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/8ddieHu0314/skill-lab/internal/report"
	"github.com/8ddieHu0314/skill-lab/internal/runtime"
	"github.com/8ddieHu0314/skill-lab/internal/trace"
	"github.com/8ddieHu0314/skill-lab/internal/tracecheck"
)

var traceRuntime string

var traceCmd = &cobra.Command{
	Use:   "trace <skill-dir> <trace-file>",
	Short: "Run trace checks against a captured session",
	Long: `Run trace checks against a captured session trace.

Loads check definitions from <skill-dir>/.skill-lab/tests/trace_checks.yaml,
normalizes the trace into canonical events, and evaluates each check:
command presence, file creation, event sequences, loop detection, and
efficiency limits.

The trace file is one produced by 'sklab triggers' (or a raw agent
JSONL stream). Pass --runtime when the producing runtime cannot be
auto-detected.`,
	Args: cobra.ExactArgs(2),
	RunE: runTrace,
}

func init() {
	traceCmd.Flags().StringVarP(&traceRuntime, "runtime", "r", "", "Runtime that produced the trace: codex or claude")
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	skillDir, tracePath := args[0], args[1]

	// ParseTrace treats a missing file as an empty trace, which is right
	// for runner-produced paths but not for one named on the command line.
	if _, err := os.Stat(tracePath); err != nil {
		return fmt.Errorf("cannot read trace file: %w", err)
	}

	defs, err := tracecheck.LoadDefinitions(skillDir)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		return fmt.Errorf("no trace checks defined at %s", tracecheck.DefinitionsPath(skillDir))
	}

	adapter, err := runtime.ForName(firstNonEmpty(traceRuntime, cfg.Settings.Runtime))
	if err != nil {
		return err
	}

	events, dropped, err := adapter.ParseTrace(tracePath)
	if err != nil {
		return err
	}
	session := &trace.Session{
		Events:         events,
		WorkDir:        skillDir,
		DroppedRecords: dropped,
	}

	runner := tracecheck.NewRunner(tracecheck.NewRegistry())
	rep := runner.Run(defs, trace.NewAnalyzer(session), skillDir, tracePath)

	if err := printReport(rep, func() string { return report.FormatTraceText(rep) }); err != nil {
		return err
	}

	recordRun(cfg, &runRecord{
		SkillPath: skillDir,
		Kind:      "trace",
		Runtime:   adapter.Name(),
		Duration:  rep.DurationMS,
		Passed:    rep.OverallPass,
		TestsRun:  rep.ChecksRun,
		TestsFail: rep.ChecksFailed,
	}, rep)

	if !rep.OverallPass {
		return fmt.Errorf("trace checks failed (%d of %d)", rep.ChecksFailed, rep.ChecksRun)
	}
	return nil
}
