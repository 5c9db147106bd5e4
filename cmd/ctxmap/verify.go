package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davidahmann/ctxmap/core/contextmap"
	"github.com/davidahmann/ctxmap/core/projectconfig"
	"github.com/davidahmann/ctxmap/core/retention"
)

func newVerifyCommand() *cobra.Command {
	var configPath string

	verifyCommand := &cobra.Command{
		Use:   "verify <artifact>",
		Short: "Check the retained context maps for a generated artifact",
		Long: `Audit the hidden context directory next to a generated artifact: every
retained file must parse, satisfy the schema invariants, carry a unique
generation id, and the file count must stay within the retention window.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configuration, err := projectconfig.Load(configPath, configPath == projectconfig.DefaultPath)
			if err != nil {
				return err
			}
			settings := configuration.Resolve(os.LookupEnv)

			store := retention.NewStore(args[0], settings.MaxSamples, logger)
			entries, err := store.List()
			if err != nil {
				return err
			}
			digests := make(map[string]string, len(entries))
			for _, entry := range entries {
				m, loadErr := contextmap.Load(entry.Path)
				if loadErr != nil {
					return loadErr
				}
				digest, digestErr := contextmap.CanonicalDigest(m)
				if digestErr != nil {
					return digestErr
				}
				if prior, seen := digests[digest]; seen {
					logger.Warn("identical context map retained twice",
						zap.String("first", prior),
						zap.String("second", entry.Path),
					)
				}
				digests[digest] = entry.Path
				logger.Debug("verified context map",
					zap.String("path", entry.Path),
					zap.String("digest", digest),
				)
			}
			if err := store.VerifyGenerationIDs(); err != nil {
				return err
			}
			if len(entries) > settings.MaxSamples {
				logger.Warn("retained files exceed the configured window",
					zap.Int("retained", len(entries)),
					zap.Int("max_samples", settings.MaxSamples),
				)
				if pruneErr := store.Prune(); pruneErr != nil {
					return pruneErr
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d context map(s) for %s\n", len(entries), store.Basename())
			return nil
		},
	}

	verifyCommand.Flags().StringVar(&configPath, "config", projectconfig.DefaultPath, "project config path")
	return verifyCommand
}
