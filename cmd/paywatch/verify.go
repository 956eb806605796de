package main

import (
	"fmt"

	"github.com/ariefcatur/go-storefront.git/internal/poller"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func verifyCmd(client func() *poller.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [invoice-id] [transaction-hash]",
		Short: "Submit a transaction hash for manual verification",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := client().Verify(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status:         %s\n", res.Status)
			fmt.Fprintf(out, "Confirmations:  %d\n", res.Confirmations)
			if !res.Verified {
				fmt.Fprintf(out, "Not verified:   %s\n", res.Error)
				return errors.Wrap(ErrNotConfirmed, args[0])
			}
			fmt.Fprintf(out, "Verified:       %s\n", res.TransactionHash)
			return nil
		},
	}
}
