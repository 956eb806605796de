package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/logx"
	"github.com/ariefcatur/go-storefront.git/internal/poller"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		baseURL  string
		timeout  time.Duration
		logLevel string
	)
	rootCmd := &cobra.Command{
		Use:           "paywatch",
		Short:         "Create, watch and verify storefront crypto invoices",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := logx.New(logLevel, true)
			return err
		},
	}
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", envOr("STOREFRONT_URL", "http://localhost:8080"), "Storefront base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level")

	client := func() *poller.Client { return poller.NewClient(baseURL, timeout) }
	rootCmd.AddCommand(createCmd(client))
	rootCmd.AddCommand(watchCmd(client))
	rootCmd.AddCommand(verifyCmd(client))
	return rootCmd
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
