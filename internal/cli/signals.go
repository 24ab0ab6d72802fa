package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/ledger"
	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/store"
)

// SignalsOptions holds flags for the signals command.
type SignalsOptions struct {
	*RootOptions
	Type  string
	Actor string
	Role  string
}

// NewSignalsCommand creates the signals command: query the stored event
// log by type or actor.
func NewSignalsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SignalsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Query stored signals by type or actor",
		Example: `  signalcore signals --type TRUST_ALLOCATE
  signalcore signals --actor 0.0.12345 --role either`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.Type == "") == (opts.Actor == "") {
				return WrapExitError(ExitCommandError, "exactly one of --type or --actor is required", nil)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.close()

			var events []ledger.SignalEvent
			if opts.Type != "" {
				events, err = a.store.SignalsByType(cmd.Context(), ledger.CanonicalType(opts.Type))
			} else {
				events, err = a.store.SignalsByActor(cmd.Context(), opts.Actor, store.ActorRole(opts.Role))
			}
			if err != nil {
				return WrapExitError(ExitFailure, "query signals", err)
			}

			var text strings.Builder
			for _, ev := range events {
				fmt.Fprintf(&text, "%s  %s  %s -> %s  ts=%s\n",
					ev.ID, ev.Type, ev.Actors.From, ev.Actors.To, ledger.ToISO(ev.TS))
			}
			if len(events) == 0 {
				text.WriteString("(no signals)")
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Emit(events, strings.TrimRight(text.String(), "\n"))
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "signal type to query")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "participant id to query")
	cmd.Flags().StringVar(&opts.Role, "role", string(store.RoleEither), "actor role (from|to|either)")

	return cmd
}
