package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewPollCommand creates the poll command: run one cycle per source.
func NewPollCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Run a single poll cycle for every configured source",
		Args:  cobra.NoArgs,
		Example: `  signalcore poll
  signalcore poll --format json`,
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

			results, pollErr := sched.RunOnce(cmd.Context())

			var text strings.Builder
			for key, stats := range results {
				fmt.Fprintf(&text, "%s: accepted=%d duplicates=%d parse_failures=%d watermark=%d\n",
					key, stats.Accepted, stats.Duplicates, stats.ParseFailures, stats.Watermark)
			}
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if err := f.Emit(results, strings.TrimRight(text.String(), "\n")); err != nil {
				return err
			}

			if pollErr != nil {
				return WrapExitError(ExitFailure, "poll cycle failed", pollErr)
			}
			return nil
		},
	}
}
