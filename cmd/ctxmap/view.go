package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/davidahmann/ctxmap/core/contextmap"
	coreerrors "github.com/davidahmann/ctxmap/core/errors"
	"github.com/davidahmann/ctxmap/core/render"
	schemacontextmap "github.com/davidahmann/ctxmap/core/schema/v1/contextmap"
)

func newViewCommand() *cobra.Command {
	var detailed bool

	viewCommand := &cobra.Command{
		Use:   "view [file]",
		Short: "Render a context map file as text",
		Long: `Render a persisted context map as a 10x10 composition grid (the default) or
as a detailed bar-chart breakdown (--detailed). Reads the given file, or
standard input when no file is named.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var m schemacontextmap.ContextMap
			var err error
			if len(args) == 1 {
				m, err = contextmap.Load(args[0])
			} else {
				m, err = parseFromReader(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Render(m, detailed))
			return nil
		},
	}

	viewCommand.Flags().BoolVar(&detailed, "detailed", false, "show the detailed breakdown instead of the summary grid")
	return viewCommand
}

func parseFromReader(reader io.Reader) (schemacontextmap.ContextMap, error) {
	payload, err := io.ReadAll(reader)
	if err != nil {
		return schemacontextmap.ContextMap{}, coreerrors.Wrap(
			fmt.Errorf("read stdin: %w", err),
			coreerrors.CategoryIOFailure,
			"stdin_read_failed",
			"pipe a context map JSON document or pass a file path",
			false,
		)
	}
	return contextmap.Parse(payload)
}
