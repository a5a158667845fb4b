package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/lychee-technology/eureka"
	"github.com/lychee-technology/eureka/factory"
	"github.com/spf13/cobra"
)

func newValidateCmd(opts *cliOptions) *cobra.Command {
	var (
		jsonAPI   bool
		noConvert bool
	)
	validation := &opts.config.Validation
	cmd := &cobra.Command{
		Use:   "validate <schema> <file>",
		Short: "Validate a JSON object against a schema",
		Long: `Validate a JSON object against a schema and print the converted value.
With --jsonapi the file is an inbound JSON-API document whose attributes
and relationships are validated.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry(cmd.Context(), opts)
			if err != nil {
				return err
			}
			schema, err := lookupSchema(registry, args[0])
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			var pojo map[string]any
			if jsonAPI {
				if pojo, err = factory.DecodePayload(data); err != nil {
					return err
				}
			} else if err := json.Unmarshal(data, &pojo); err != nil {
				return fmt.Errorf("decode %s: %w", args[1], err)
			}

			validateOpts := validation.Options()
			validateOpts.Convert = !noConvert
			value, err := schema.Validate(pojo, validateOpts)
			if ve, ok := eureka.AsValidationError(err); ok {
				fmt.Fprintln(cmd.ErrOrStderr(), ve.Summary())
				return fmt.Errorf("%s: %d validation errors", args[1], len(ve.Details))
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), value)
		},
	}
	cmd.Flags().BoolVar(&jsonAPI, "jsonapi", false, "treat the file as a JSON-API document")
	cmd.Flags().BoolVar(&validation.AbortEarly, "abort-early", validation.AbortEarly, "stop at the first failing field")
	cmd.Flags().BoolVar(&noConvert, "no-convert", !validation.Convert, "reject values that would need conversion")
	cmd.Flags().BoolVar(&validation.AllowUnknown, "allow-unknown", validation.AllowUnknown, "accept undeclared keys")
	return cmd
}
