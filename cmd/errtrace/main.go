package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/errtrace/pkg/common/logger"
)

var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
	CommitSHA = "unknown"
)

var (
	logLevel  string
	logFormat string
	verbose   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "errtrace",
		Short:   "errtrace - trace errors through instrumented calls",
		Long:    getBanner(),
		Version: fmt.Sprintf("%s (built: %s, commit: %s)", Version, BuildTime, CommitSHA),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output (sets log level to debug)")

	rootCmd.AddCommand(newDemoCmd())
	rootCmd.AddCommand(newMethodsCmd())

	return rootCmd
}

func getBanner() string {
	return `
  errtrace annotates errors with every instrumented call they cross.

  Run a scenario:   errtrace demo nested
  List scenarios:   errtrace demo --list
  Inspect classes:  errtrace methods
`
}

func setupLogging() {
	level := logger.ParseLevel(logLevel)
	if verbose {
		level = logger.LevelDebug
	}

	logger.Default = logger.New(logger.Config{
		Level:  level,
		Format: logger.ParseFormat(logFormat),
		Output: os.Stderr,
	})
}
