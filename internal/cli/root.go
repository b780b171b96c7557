// Package cli defines the sklab command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/8ddieHu0314/skill-lab/internal/config"
	"github.com/8ddieHu0314/skill-lab/internal/logger"
)

// Version information set via ldflags
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	verbose    bool
	configFile string
	projectDir string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "sklab",
	Short: "Test and evaluate agent skills",
	Long: `sklab evaluates agent skills (SKILL.md packages) in two ways:

Static analysis checks the skill definition itself: frontmatter schema,
naming rules, description quality, and body content.

Trigger tests run a real agent CLI (codex or claude) against prompts
that should or should not invoke the skill, capture the session trace,
and verify what actually happened.

Configure defaults in:
  - ~/.sklab/config.yaml (global)
  - .sklab/config.yaml (project-specific)`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sklab %s\n", Version)
		fmt.Printf("  commit: %s\n", Commit)
		fmt.Printf("  built:  %s\n", Date)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Override config file path")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", "", "Override project directory")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of text")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig merges config sources and initializes logging. Every
// subcommand that does real work calls this first.
func loadConfig() (*config.Config, error) {
	loader, err := config.NewLoader(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}

	var cfg *config.Config
	if configFile != "" {
		cfg, err = loader.LoadFromFile(configFile)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return nil, err
	}

	level := cfg.Settings.LogLevel
	if verbose {
		level = "debug"
	}
	if err := logger.Init(level, cfg.Settings.LogFile); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	return cfg, nil
}
