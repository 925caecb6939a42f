package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/intervue/internal/config"
	"github.com/abhisek/intervue/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "intervue",
	Short: "Practice job interviews in your terminal",
	Long: `Intervue runs mock interviews in the terminal. Each question has a countdown;
answer by typing or by speaking, and get a graded summary at the end.

Run without a subcommand to resume the interview in progress.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResume(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides INTERVUE_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides INTERVUE_CONFIG env var)")
	rootCmd.Flags().String("audio-file", "", "Replay this WAV file instead of recording from the microphone")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(abandonCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then INTERVUE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolveConfigPath returns the --config flag or the default location.
func resolveConfigPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the config file, applies environment overrides and
// validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := resolveConfigPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
