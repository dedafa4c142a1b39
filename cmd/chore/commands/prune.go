package commands

import "github.com/spf13/cobra"

func (c *CLI) newPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Forget which commands are already satisfied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Prune(cmd.Context())
		},
	}
}
