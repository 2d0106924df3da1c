package main

import (
	"fmt"
	"os"
	"time"

	"minesite/internal/client"
	"minesite/internal/common"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	server  string
	timeout time.Duration
}

var rootCmd = &cobra.Command{
	Use:   "minesite-cli",
	Short: "Query and inspect mining site prediction models",
	Long:  "minesite-cli talks to a running minesite server, inspects model\nartifacts locally and reads the prediction journal.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.server, "server", common.DefaultServerURL, "Base URL of the minesite server")
	pf.DurationVar(&rootFlags.timeout, "timeout", 5*time.Second, "Request timeout")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.Version = version
}

func newClient() *client.Client {
	return client.New(rootFlags.server, rootFlags.timeout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
