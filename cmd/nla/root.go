package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nla",
		Short: "nla - batch answers for numerical linear algebra questions",
		Long: `nla sends a list of numerical linear algebra questions to a chat-completion
endpoint, one at a time, and saves the answers as it goes.

Every request is recorded in an append-only activity log, and the answers file
is rewritten after every few questions so an interrupted run loses little.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newAnswerCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newCheckCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
