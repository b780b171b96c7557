package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/8ddieHu0314/skill-lab/internal/report"
	"github.com/8ddieHu0314/skill-lab/internal/static"
)

var evaluateCheckIDs []string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <skill-dir>",
	Short: "Run static checks against a skill",
	Long: `Run static checks against a skill directory.

Validates SKILL.md frontmatter (name, description, optional fields),
naming conventions, description quality, and body content, and prints
a weighted quality score. The command exits non-zero when any
error-severity check fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringSliceVar(&evaluateCheckIDs, "check", nil, "Run only the named check IDs (repeatable)")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	evaluator := static.NewEvaluator(static.NewRegistry(), evaluateCheckIDs)
	rep, err := evaluator.Evaluate(args[0])
	if err != nil {
		return err
	}

	if err := printReport(rep, func() string { return report.FormatStaticText(rep) }); err != nil {
		return err
	}

	recordRun(cfg, &runRecord{
		SkillPath: rep.SkillPath,
		SkillName: rep.SkillName,
		Kind:      "static",
		Duration:  rep.DurationMS,
		Passed:    rep.OverallPass,
		Score:     rep.QualityScore,
		TestsRun:  rep.ChecksRun,
		TestsFail: rep.ChecksFailed,
	}, rep)

	if !rep.OverallPass {
		return fmt.Errorf("static evaluation failed (%d of %d checks)", rep.ChecksFailed, rep.ChecksRun)
	}
	return nil
}

// printReport writes either the JSON or the text rendering to stdout.
func printReport(rep interface{}, text func() string) error {
	if jsonOutput {
		out, err := report.FormatJSON(rep)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	fmt.Print(text())
	return nil
}
