package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/chore/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [commands...]",
		Short: "Run commands and their prerequisites",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			noCache, _ := cmd.Flags().GetBool("no-cache")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			inspect, _ := cmd.Flags().GetBool("inspect")
			outputMode, _ := cmd.Flags().GetString("output-mode")
			ci, _ := cmd.Flags().GetBool("ci")
			watch, _ := cmd.Flags().GetBool("watch")

			// If --ci is set, override output-mode to "linear"
			if ci {
				outputMode = "linear"
			}

			opts := app.RunOptions{
				NoCache:    noCache,
				DryRun:     dryRun,
				Inspect:    inspect,
				OutputMode: outputMode,
			}
			if watch {
				return c.app.Watch(cmd.Context(), args, opts)
			}
			return c.app.Run(cmd.Context(), args, opts)
		},
	}
	cmd.Flags().BoolP("no-cache", "n", false, "Run commands even when they are already satisfied")
	cmd.Flags().Bool("dry-run", false, "Print the steps without executing them")
	cmd.Flags().BoolP("inspect", "i", false, "Keep the TUI open after the run completes")
	cmd.Flags().StringP("output-mode", "o", "auto", "Output mode: auto, tui, or linear")
	cmd.Flags().Bool("ci", false, "Use linear output mode (shorthand for --output-mode=linear)")
	cmd.Flags().BoolP("watch", "w", false, "Run again whenever an input changes")
	return cmd
}
