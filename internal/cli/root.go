package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shorts",
	Short: "Human-gated YouTube Shorts production workflow",
	Long: `shorts walks a request for a YouTube Short through theme, research, script and
image generation, stopping for your approval after the theme and after the script.

Every invocation reloads the session from disk, so a conversation can be
continued with 'shorts run --session <id> <reply>' or interactively with
'shorts resume --session <id>'.

Running 'shorts' without a subcommand is equivalent to 'shorts resume'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return resumeCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to shorts.yaml config file (default: search up directory tree)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default: config log_level)")
	rootCmd.PersistentFlags().StringP("session", "s", "", "Session ID")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
