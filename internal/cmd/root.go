package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taskrunners/launcher/internal/config"
	"github.com/taskrunners/launcher/internal/launcher"
	"github.com/taskrunners/launcher/internal/log"
	"github.com/taskrunners/launcher/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "task-runner-launcher",
	Short: "Run task runners under their configured identity",
	Long: `task-runner-launcher reads the task runner configuration, drops to the
uid and gid configured for a runner and then either replaces itself with the
runner's command or sends SIGTERM to a runner process.

It is meant to be installed with elevated rights; the configuration file is
the trust boundary.`,
	Example: `  # Start the javascript task runner
  task-runner-launcher launch javascript

  # Stop a javascript task runner started earlier
  task-runner-launcher kill javascript 4242`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := log.Setup(log.Options{Level: os.Getenv(log.LevelEnv)})
		return err
	},
}

func init() {
	rootCmd.AddCommand(launchCmd, killCmd, schemaCmd)
}

// newLauncher builds a launcher for the mode this binary was built with.
// The mode is deliberately not a flag: callers of a privileged binary must
// not be able to point it at another config.
func newLauncher() (*launcher.Launcher, error) {
	mode, err := launcher.ParseMode(version.BuildMode)
	if err != nil {
		return nil, err
	}
	settings, err := launcher.SettingsFor(mode)
	if err != nil {
		return nil, err
	}
	return launcher.New(&launcher.Options{
		Settings:       settings,
		OnConfigLoaded: setupFileLogging,
	}), nil
}

// setupFileLogging opens the configured log file before the identity drop,
// so it is created and held with the launcher's own rights.
func setupFileLogging(cfg *config.LauncherConfig) error {
	if cfg.LogFile == "" {
		return nil
	}
	_, err := log.Setup(log.Options{
		Level: os.Getenv(log.LevelEnv),
		File:  cfg.LogFile,
	})
	return err
}

func Execute() {
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s (%s)", version.Version, version.BuildMode)),
	)
	_ = log.Close()
	if err != nil {
		os.Exit(1)
	}
}
