package main

import (
	"github.com/spf13/cobra"
)

func newJSONSchemaCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "jsonschema <schema>",
		Short: "Export a schema as a JSON Schema document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry(cmd.Context(), opts)
			if err != nil {
				return err
			}
			schema, err := lookupSchema(registry, args[0])
			if err != nil {
				return err
			}
			doc, err := schema.JSONSchema()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), doc)
		},
	}
}
