package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/8ddieHu0314/skill-lab/internal/config"
	"github.com/8ddieHu0314/skill-lab/internal/logger"
	"github.com/8ddieHu0314/skill-lab/internal/report"
	"github.com/8ddieHu0314/skill-lab/internal/store"
)

var (
	historyLimit   int
	historySkill   string
	historyCleanup time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past evaluation runs",
	Long: `Show past evaluation runs recorded in the history database.

Every evaluate, triggers, and trace invocation records its outcome so
skill quality can be compared across revisions.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to show")
	historyCmd.Flags().StringVar(&historySkill, "skill", "", "Only show runs for this skill path")
	historyCmd.Flags().DurationVar(&historyCleanup, "cleanup", 0, "Delete runs older than this duration and exit")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if historyCleanup > 0 {
		deleted, err := st.CleanupOldRuns(historyCleanup)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d runs older than %s\n", deleted, historyCleanup)
		return nil
	}

	runs, err := st.ListRuns(historySkill, historyLimit)
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := report.FormatJSON(runs)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	fmt.Printf("%-36s  %-8s  %-19s  %-6s  %s\n", "RUN", "KIND", "STARTED", "RESULT", "SKILL")
	for _, run := range runs {
		result := "PASS"
		if !run.Passed {
			result = "FAIL"
		}
		fmt.Printf("%-36s  %-8s  %-19s  %-6s  %s\n",
			run.ID, run.Kind, run.StartedAt.Format("2006-01-02 15:04:05"), result, run.SkillPath)
	}
	return nil
}

// runRecord is the subset of a run the commands fill in before
// persisting.
type runRecord struct {
	SkillPath string
	SkillName string
	Kind      string
	Runtime   string
	Duration  float64
	Passed    bool
	Score     float64
	TestsRun  int
	TestsFail int
}

// openHistory opens the run-history store for the configured path.
// Callers only see the RunStore interface, so the backing store can
// change without touching the commands.
func openHistory(cfg *config.Config) (store.RunStore, error) {
	return store.NewSQLiteStore(cfg.Settings.HistoryDB)
}

// recordRun persists a run to the history store. History is best
// effort: failures are logged, never fatal to the evaluation itself.
func recordRun(cfg *config.Config, rec *runRecord, fullReport interface{}) {
	st, err := openHistory(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("could not open history store")
		return
	}
	defer func() { _ = st.Close() }()

	run := &store.Run{
		SkillPath:  rec.SkillPath,
		SkillName:  rec.SkillName,
		Kind:       rec.Kind,
		Runtime:    rec.Runtime,
		DurationMS: rec.Duration,
		Passed:     rec.Passed,
		Score:      rec.Score,
		TestsRun:   rec.TestsRun,
		TestsFail:  rec.TestsFail,
	}
	if err := st.SaveReport(run, fullReport); err != nil {
		logger.Warn().Err(err).Msg("could not record run history")
	}
}
