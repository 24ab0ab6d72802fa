package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/trust"
)

// NewDeriveCommand creates the derive command: compute a participant's
// trust circle from the stored signal log.
func NewDeriveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "derive <participant>",
		Short: "Derive the trust circle for a participant",
		Args:  cobra.ExactArgs(1),
		Example: `  signalcore derive 0.0.12345
  signalcore derive 0.0.12345 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.close()

			engine := trust.NewEngine(a.store)
			state, err := engine.Derive(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "derive trust circle", err)
			}

			var text strings.Builder
			fmt.Fprintf(&text, "outbound: %d used, %d available\n", state.OutboundUsed, state.OutboundAvailable)
			fmt.Fprintf(&text, "inbound top %d:\n", trust.CircleSize)
			if len(state.InboundTop9) == 0 {
				text.WriteString("  (none)\n")
			}
			for i, id := range state.InboundTop9 {
				fmt.Fprintf(&text, "  %d. %s\n", i+1, id)
			}
			if state.LastConsensusISO != "" {
				fmt.Fprintf(&text, "last consensus: %s", state.LastConsensusISO)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Emit(state, strings.TrimRight(text.String(), "\n"))
		},
	}
}
