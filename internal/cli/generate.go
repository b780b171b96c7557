package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/8ddieHu0314/skill-lab/internal/trigger"
)

var (
	generateModel string
	generateForce bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <skill-dir>",
	Short: "Generate trigger tests for a skill",
	Long: `Generate trigger tests for a skill using the Anthropic API.

Reads the skill's SKILL.md, asks a model for roughly 13 test cases
across all four trigger types, validates the output, and writes it to
<skill-dir>/.skill-lab/tests/triggers.yaml.

Requires ANTHROPIC_API_KEY in the environment.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateModel, "model", "m", "", "Model ID for generation (default: "+trigger.DefaultGenerationModel+")")
	generateCmd.Flags().BoolVarP(&generateForce, "force", "f", false, "Overwrite an existing triggers.yaml")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := trigger.NewGenerator(firstNonEmpty(generateModel, cfg.Settings.GenerationModel))
	outPath, err := gen.GenerateAndWrite(ctx, args[0], generateForce)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote trigger tests: %s\n", outPath)
	if usage := gen.LastUsage; usage != nil {
		fmt.Printf("  tokens: %d in, %d out\n", usage.InputTokens, usage.OutputTokens)
		if cost, ok := usage.TotalCost(); ok {
			fmt.Printf("  cost:   $%.4f\n", cost)
		}
	}
	fmt.Println("\nReview the generated cases, then run 'sklab triggers' to execute them.")
	return nil
}
