// Package cli implements the attend command and its interactive loop.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/attend-io/attend/internal/config"
	"github.com/attend-io/attend/internal/dates"
	"github.com/attend-io/attend/internal/logging"
	"github.com/attend-io/attend/internal/tracker"
)

var rootCmd = &cobra.Command{
	Use:   "attend",
	Short: "Track tasks and projects from an interactive prompt",
	Long: `Attend is a single-user activity tracker. It keeps tasks, projects,
due dates, and notes in memory during a session and saves them to a
directory of JSON files on request.`,
	RunE:         runRoot,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to prepare config directory: %w", err)
	}

	settings, err := config.Load(viper.New())
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level in settings: %w", err)
	}
	log := logging.New(os.Stderr, level)

	loc := time.Local
	if settings.Timezone != "" {
		loc, err = time.LoadLocation(settings.Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone %q in settings: %w", settings.Timezone, err)
		}
	}

	keywords, err := config.LoadKeywords(settings.KeywordsFile)
	if err != nil {
		return fmt.Errorf("failed to load keyword rules: %w", err)
	}

	manager := tracker.NewManager(dates.NewResolver(loc), keywords, log)
	interp := NewInterpreter(manager, log, settings.DataDir, os.Stdin, os.Stdout)
	defer interp.Close()

	return interp.Run()
}
