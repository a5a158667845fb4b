package main

import (
	"github.com/lychee-technology/eureka"
	"github.com/lychee-technology/eureka/factory"
	"github.com/spf13/cobra"
)

func newFixtureCmd(opts *cliOptions) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "fixture <schema>",
		Short: "Generate synthetic records for a schema",
		Long: `Generate synthetic records for a schema. Relation properties are left
out. With --seed the output is reproducible.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry(cmd.Context(), opts)
			if err != nil {
				return err
			}
			schema, err := lookupSchema(registry, args[0])
			if err != nil {
				return err
			}

			source := factory.NewFixtureSource(opts.config.Fixture)
			records := make([]eureka.DataRecord, 0, count)
			for range count {
				records = append(records, eureka.DataRecord{
					SchemaName: schema.Name(),
					Attributes: source.Schema(schema),
				})
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().IntVar(&count, "count", 1, "number of records to generate")
	cmd.Flags().Int64Var(&opts.config.Fixture.Seed, "seed", opts.config.Fixture.Seed, "random seed, 0 for a random one")
	cmd.Flags().IntVar(&opts.config.Fixture.MaxItems, "max-items", opts.config.Fixture.MaxItems, "upper bound for multi-valued properties")
	return cmd
}
