// Package cmd holds the linkscout command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Without a subcommand it serves the API.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkscout",
		Short: "Assess how trustworthy a URL is",
		Long: `linkscout renders a URL in headless Chrome, enriches it with WHOIS,
PageRank and Safe Browsing data, scores it with local heuristics and, when a
model is configured, a generative assessment.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServeCmd,
	}

	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: config.yaml in ., ./configs or $HOME/.linkscout)")
	addServeFlags(cmd)

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configPath(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return ""
	}
	return path
}
