package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/ledger"
	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/recognition"
)

// RecognitionsOptions holds flags for the recognitions add subcommand.
type RecognitionsOptions struct {
	*RootOptions
	Label string
	Emoji string
	Lens  string
	From  string
	To    string
	Note  string
}

// NewRecognitionsCommand creates the recognitions command tree.
func NewRecognitionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recognitions",
		Short: "List or mint recognition signals",
	}
	cmd.AddCommand(newRecognitionsListCommand(rootOpts))
	cmd.AddCommand(newRecognitionsAddCommand(rootOpts))
	return cmd
}

func newRecognitionsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <account>",
		Short:         "List recognition signals for an account, most recent first",
		Args:          cobra.ExactArgs(1),
		Example:       `  signalcore recognitions list 0.0.12345`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.close()

			recs := recognition.NewStore(a.store)
			signals, err := recs.ListForUser(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "list recognitions", err)
			}

			var text strings.Builder
			for _, sig := range signals {
				fmt.Fprintf(&text, "%s %s  %s -> %s  %s\n",
					sig.Emoji, sig.Label, sig.From, sig.To, ledger.ToISO(sig.Timestamp))
			}
			if len(signals) == 0 {
				text.WriteString("(no recognitions)")
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Emit(signals, strings.TrimRight(text.String(), "\n"))
		},
	}
}

func newRecognitionsAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecognitionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "add",
		Short:         "Mint a recognition signal",
		Args:          cobra.NoArgs,
		Example:       `  signalcore recognitions add --label Truth --emoji 💎 --from 0.0.100 --to 0.0.200`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.close()

			recs := recognition.NewStore(a.store)
			sig, err := recs.Add(cmd.Context(), ledger.RecognitionSignal{
				Label: opts.Label,
				Emoji: opts.Emoji,
				Lens:  opts.Lens,
				From:  opts.From,
				To:    opts.To,
				Note:  opts.Note,
			})
			if err != nil {
				return WrapExitError(ExitFailure, "mint recognition", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Emit(sig, fmt.Sprintf("minted %s (%s %s)", sig.ID, sig.Emoji, sig.Label))
		},
	}

	cmd.Flags().StringVar(&opts.Label, "label", "", "recognition label (required)")
	cmd.Flags().StringVar(&opts.Emoji, "emoji", "", "recognition emoji")
	cmd.Flags().StringVar(&opts.Lens, "lens", "", "lens the presentation was chosen from")
	cmd.Flags().StringVar(&opts.From, "from", "", "sender account id (required)")
	cmd.Flags().StringVar(&opts.To, "to", "", "recipient account id (required)")
	cmd.Flags().StringVar(&opts.Note, "note", "", "free-form note")

	return cmd
}
