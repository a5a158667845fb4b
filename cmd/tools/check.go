package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load every schema and verify that relation targets resolve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			names := registry.ListSchemas()
			for _, name := range names {
				schema, _ := registry.Schema(name)
				relations := 0
				for _, p := range schema.Properties() {
					if p.IsRelation() {
						relations++
					}
				}
				fmt.Fprintf(out, "%s: %d properties, %d relations\n", name, len(schema.Properties()), relations)
			}
			fmt.Fprintf(out, "%d schemas ok\n", len(names))
			return nil
		},
	}
}
