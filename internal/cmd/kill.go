package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taskrunners/launcher/internal/launcher"
)

var killCmd = &cobra.Command{
	Use:   "kill <runner-type> <pid>",
	Short: "Send SIGTERM to a task runner as its identity",
	Long: `Drop to the runner's uid and gid and send SIGTERM to pid. The kernel only
allows the signal if the process belongs to that identity.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// pid_t is 32 bits; wider values would be truncated by kill(2).
		pid, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid pid %q: %w", args[1], err)
		}

		l, err := newLauncher()
		if err != nil {
			return err
		}
		return l.Run(launcher.Request{
			Action:     launcher.ActionKill,
			RunnerType: args[0],
			PID:        int(pid),
		})
	},
}
