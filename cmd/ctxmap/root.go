package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is stamped at release time via ldflags; default stays dev for local builds.
var version = "0.0.0-dev"

var logger = zap.NewNop()

func newRootCommand() *cobra.Command {
	var verbose bool

	rootCommand := &cobra.Command{
		Use:     "ctxmap",
		Short:   "Capture and render context maps for LLM generation rounds",
		Version: version,
		Long: `ctxmap records how each generation's prompt was assembled (includes, shell
and web fetches, variables, few-shot examples) and how the model responded,
persists the result as a retained JSON sequence next to the generated
artifact, and renders it as a summary grid or a detailed bar breakdown.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			built, err := config.Build()
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			logger = built
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCommand.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	rootCommand.AddCommand(newSampleCommand())
	rootCommand.AddCommand(newViewCommand())
	rootCommand.AddCommand(newVerifyCommand())
	return rootCommand
}
