package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/poller"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type watchFlags struct {
	interval time.Duration
	tick     time.Duration
	quiet    bool
}

func (f *watchFlags) register(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&f.interval, "interval", 30*time.Second, "Status query interval")
	cmd.Flags().DurationVar(&f.tick, "tick", time.Second, "Countdown resolution")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Only print the final status")
}

func watchCmd(client func() *poller.Client) *cobra.Command {
	var wf watchFlags
	cmd := &cobra.Command{
		Use:   "watch [invoice-id]",
		Short: "Poll an invoice until it is confirmed or expires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, client(), args[0], wf)
		},
	}
	wf.register(cmd)
	return cmd
}

// ErrNotConfirmed makes the process exit non-zero when the invoice did not settle.
var ErrNotConfirmed = errors.New("invoice not confirmed")

func runWatch(cmd *cobra.Command, c poller.StatusClient, invoiceID string, wf watchFlags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	out := cmd.OutOrStdout()

	cfg := poller.Config{Interval: wf.interval, Tick: wf.tick}
	if !wf.quiet {
		cfg.OnStatus = func(s poller.Snapshot) { printStatus(out, s) }
		cfg.OnTick = func(d time.Duration) { fmt.Fprintf(out, "\r  expires in %s ", formatRemaining(d)) }
		cfg.OnError = func(err error) { fmt.Fprintf(out, "\n  query failed: %v\n", err) }
	}

	res, err := poller.New(c, cfg).Run(ctx, invoiceID)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintln(out)
	switch {
	case res.Reason == poller.StopCanceled:
		fmt.Fprintln(out, "Stopped.")
		return nil
	case res.Last.Status == "confirmed":
		fmt.Fprintf(out, "Confirmed: %s\n", res.Last.TransactionHash)
		return nil
	default:
		msg := res.Last.Status
		if res.Last.FailureReason != "" {
			msg += ": " + res.Last.FailureReason
		}
		fmt.Fprintf(out, "Not confirmed (%s)\n", msg)
		return errors.Wrap(ErrNotConfirmed, invoiceID)
	}
}

func printStatus(out io.Writer, s poller.Snapshot) {
	line := fmt.Sprintf("\n[%s] %s  confirmations %d/%d  attempts %d",
		time.Now().Format("15:04:05"), s.Status, s.Confirmations, s.ConfirmationsRequired, s.VerificationAttempts)
	if s.FailureReason != "" {
		line += "  (" + s.FailureReason + ")"
	}
	fmt.Fprintln(out, line)
}

// formatRemaining renders mm:ss like the checkout page countdown.
func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
