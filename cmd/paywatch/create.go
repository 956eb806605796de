package main

import (
	"fmt"

	"github.com/ariefcatur/go-storefront.git/internal/poller"
	"github.com/spf13/cobra"
)

func createCmd(client func() *poller.Client) *cobra.Command {
	var (
		p     poller.CreateInvoiceParams
		watch bool
		wf    watchFlags
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a crypto invoice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client()
			inv, err := c.CreateInvoice(cmd.Context(), p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Invoice:  %s\n", inv.InvoiceID)
			fmt.Fprintf(out, "Order:    %s\n", inv.OrderID)
			fmt.Fprintf(out, "Send:     %s %s\n", inv.TotalAmount, inv.Coin)
			fmt.Fprintf(out, "Address:  %s\n", inv.Address)
			fmt.Fprintf(out, "QR:       %s\n", inv.QRCode)
			fmt.Fprintf(out, "Expires:  %s\n", inv.ExpireAt.Local().Format("15:04:05"))
			if !watch {
				return nil
			}
			return runWatch(cmd, c, inv.InvoiceID, wf)
		},
	}
	cmd.Flags().StringVarP(&p.Amount, "amount", "a", "", "Fiat amount, e.g. 130.00")
	cmd.Flags().StringVarP(&p.Crypto, "coin", "c", "BTC", "Coin symbol")
	cmd.Flags().StringVar(&p.Currency, "currency", "", "Fiat currency (server default when empty)")
	cmd.Flags().StringVar(&p.OrderID, "order-id", "", "Order id (generated when empty)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Watch the invoice after creating it")
	wf.register(cmd)
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
