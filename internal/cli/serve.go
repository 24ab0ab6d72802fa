package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command: poll all configured sources
// on a schedule until interrupted.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Poll all configured topic sources until interrupted",
		Long: `Poll all configured topic sources until interrupted.

Each (topic, type) source polls independently on the configured interval.
SIGINT/SIGTERM stop scheduling; an in-flight cycle finishes its current
step so watermarks are never left partially advanced.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.close()

			sched, err := a.newScheduler()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.log.Info("scheduler starting",
				"sources", len(a.cfg.Topics),
				"interval", a.cfg.PollInterval)
			if err := sched.Run(ctx); err != nil {
				return WrapExitError(ExitFailure, "scheduler stopped", err)
			}
			a.log.Info("scheduler stopped")
			return nil
		},
	}
}
