package main

import (
	"fmt"

	"github.com/lychee-technology/eureka"
	"github.com/lychee-technology/eureka/factory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRenderCmd(opts *cliOptions) *cobra.Command {
	var (
		include     string
		driver      string
		recordsFile string
	)
	cmd := &cobra.Command{
		Use:   "render <schema> <id>",
		Short: "Render a stored record as a JSON-API document",
		Long: `Render a stored record as a JSON-API document. --records loads a JSON
array of records (as written by the fixture command) into the store
first; with the memory driver it is the only source of records. The store
defaults to the configured one (DB_DRIVER, or duckdb when DUCKDB_ENABLED).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			registry, err := loadRegistry(ctx, opts)
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(ctx, opts, registry, driver)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					zap.S().Warnw("failed to close record store", "driver", driver, "error", err)
				}
			}()

			if recordsFile != "" {
				records, err := readRecords(recordsFile)
				if err != nil {
					return err
				}
				n, err := saveRecords(ctx, store, records)
				if err != nil {
					return err
				}
				zap.S().Debugw("records loaded", "driver", driver, "count", n)
			}

			instance, err := store.Fetch(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("fetch %s/%s: %w", args[0], args[1], err)
			}
			builder := factory.NewJSONAPIBuilder(store, opts.config.API.BaseURI, eureka.ParseInclude(include))
			doc, err := builder.Build(ctx, instance)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().StringVar(&include, "include", opts.config.API.Include, `relations to side-load: "all" or a relation name`)
	cmd.Flags().StringVar(&driver, "driver", opts.config.StoreDriver(), "record store: memory, pgx, postgres or duckdb")
	cmd.Flags().StringVar(&recordsFile, "records", "", "JSON file of records to load before rendering")
	cmd.Flags().StringVar(&opts.config.API.BaseURI, "base-uri", opts.config.API.BaseURI, "absolute base URI for links")
	return cmd
}
