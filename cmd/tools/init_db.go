package main

import (
	"fmt"

	"github.com/lychee-technology/eureka"
	"github.com/lychee-technology/eureka/factory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newInitDBCmd(opts *cliOptions) *cobra.Command {
	var (
		recordsFile string
		driver      string
	)
	db := &opts.config.Database
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the record table and optionally seed it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var registry eureka.SchemaRegistry
			if recordsFile != "" {
				var err error
				if registry, err = loadRegistry(ctx, opts); err != nil {
					return err
				}
			}

			enableDriver(opts, driver)
			store, closeStore, err := factory.InitRecordStore(ctx, registry, opts.config, driver)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					zap.S().Warnw("failed to close record store", "driver", driver, "error", err)
				}
			}()
			table := db.RecordTable
			if driver == "duckdb" {
				table = opts.config.DuckDB.RecordTable
			}
			fmt.Fprintf(out, "Created record table: %s (%s)\n", table, driver)

			if recordsFile == "" {
				return nil
			}
			records, err := readRecords(recordsFile)
			if err != nil {
				return err
			}
			n, err := saveRecords(ctx, store, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Seeded records, count: %d, file: %s\n", n, recordsFile)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&driver, "driver", opts.config.StoreDriver(), "record store: pgx, postgres or duckdb")
	flags.StringVar(&db.Host, "db-host", db.Host, "database host")
	flags.IntVar(&db.Port, "db-port", db.Port, "database port")
	flags.StringVar(&db.Database, "db-name", db.Database, "database name")
	flags.StringVar(&db.Username, "db-user", db.Username, "database user")
	flags.StringVar(&db.Password, "db-password", db.Password, "database password")
	flags.StringVar(&db.SSLMode, "db-ssl-mode", db.SSLMode, "database sslmode")
	flags.StringVar(&db.RecordTable, "record-table", db.RecordTable, "record table name")
	flags.StringVar(&recordsFile, "records", "", "JSON file of records to insert after creating the table (optional)")
	return cmd
}
