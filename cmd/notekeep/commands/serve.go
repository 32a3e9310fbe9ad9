package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/notekeep/internal/app"
)

func (c *CLI) newServeCmd() *cobra.Command {
	var opts app.ServeOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the meeting tools over stdio",
		Long: "Answer JSON-RPC tool requests read line by line from stdin. Logs are " +
			"written to stderr so stdout carries protocol messages only.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.AutoBackup, "auto-backup", false, "Watch the cache file and back it up on change")

	return cmd
}
