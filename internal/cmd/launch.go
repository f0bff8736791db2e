package cmd

import (
	"github.com/spf13/cobra"

	"github.com/taskrunners/launcher/internal/launcher"
)

var launchCmd = &cobra.Command{
	Use:   "launch <runner-type>",
	Short: "Drop privileges and exec a task runner",
	Long: `Drop to the runner's uid and gid, change into its working directory and
replace this process with the runner's command. Only LANG, PATH, TZ, TERM and
the runner's allowed-env variables are passed on.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLauncher()
		if err != nil {
			return err
		}
		return l.Run(launcher.Request{
			Action:     launcher.ActionLaunch,
			RunnerType: args[0],
		})
	},
}
