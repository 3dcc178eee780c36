package main

import (
	"io"
	"os"

	"trend-finder/infrastructure/logger"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "ytresearch",
		Short: "Find fast growing videos of small YouTube channels",
		Long: `ytresearch searches YouTube for each keyword, looks up the video and channel
statistics and prints the videos that pass the subscriber, view and duration filters.
Results go to stdout; logs go to stderr.

Examples:
  ytresearch research "chess, chess openings"
  ytresearch research "cooking" --max-subs 50000 --video-type Shorts --output csv > cooking.csv
  ytresearch token --subject ops --ttl 24h`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(cmd.ErrOrStderr(), verbose)
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
	cmd.AddCommand(newResearchCmd())
	cmd.AddCommand(newTokenCmd())
	return cmd
}

// configureLogging keeps stdout for command output. Only warnings are logged unless verbose.
func configureLogging(w io.Writer, verbose bool) {
	logger.SetOutput(w)
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
