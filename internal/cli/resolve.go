package cli

import (
	"github.com/spf13/cobra"
)

// NewResolveCommand creates the resolve command: map a DID to a ledger
// account id, provisioning it if never seen.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "resolve <issuer>",
		Short:         "Resolve a decentralized identifier to a ledger account id",
		Args:          cobra.ExactArgs(1),
		Example:       `  signalcore resolve did:hedera:testnet:z6Mk...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.close()

			resolver, err := a.newResolver()
			if err != nil {
				return err
			}

			accountID, err := resolver.Resolve(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "resolve identity", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Emit(map[string]string{"accountId": accountID}, accountID)
		},
	}
}
