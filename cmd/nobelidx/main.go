package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	env        string
	configPath string
}

func rootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   "nobelidx",
		Short: "Nobel prize search index",
		Long: `nobelidx loads Nobel prize awards into Redis search indexes and serves
read-only queries over them as JSON RPCs.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&g.env, "env", "",
		"Environment name selecting config/<env>.yaml and the log format (default: $ENV or local)")
	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Explicit config file path")

	cmd.AddCommand(serveCmd(&g))
	cmd.AddCommand(ingestCmd(&g))
	cmd.AddCommand(versionCmd())

	return cmd
}
