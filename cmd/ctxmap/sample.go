package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidahmann/ctxmap/core/contextmap"
	"github.com/davidahmann/ctxmap/core/fsx"
)

func newSampleCommand() *cobra.Command {
	var outputPath string

	sampleCommand := &cobra.Command{
		Use:   "sample",
		Short: "Emit a deterministic example context map as JSON",
		Long: `Emit a fixed, schema-valid context map with illustrative values. The output
is identical on every run, so it doubles as a reference document for the wire
format and as input for viewer testing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			encoded, err := contextmap.Encode(contextmap.GenerateSample())
			if err != nil {
				return err
			}
			if outputPath != "" {
				if err := fsx.WriteFileAtomic(outputPath, encoded, 0o644); err != nil {
					return fmt.Errorf("write sample: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sample context map written to %s\n", outputPath)
				return nil
			}
			_, _ = cmd.OutOrStdout().Write(encoded)
			return nil
		},
	}

	sampleCommand.Flags().StringVar(&outputPath, "output", "", "write to a file instead of stdout")
	return sampleCommand
}
