package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	handlers "docgate/internal/http/handler"
	"docgate/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Work with schema files offline",
	}
	cmd.AddCommand(newSchemaCheckCmd(), newSchemaValidateCmd())
	return cmd
}

func newSchemaCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Parse and compile schema files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				v, err := compileFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "ok   %s (%s)\n", path, v.Name())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d schema files are invalid", failed, len(args))
			}
			return nil
		},
	}
}

func newSchemaValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate SCHEMA_FILE DOCUMENT_JSON",
		Short: "Validate a JSON document against a schema file",
		Long:  "Validate a JSON document against a schema file and print the document that would be stored. Use - to read the document from stdin.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := compileFile(args[0])
			if err != nil {
				return err
			}

			raw, err := readInput(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			var doc map[string]any
			if err := handlers.DecodeJSON(raw, &doc); err != nil || doc == nil {
				return fmt.Errorf("document must be a JSON object")
			}

			out, err := v.Validate(doc)
			if err != nil {
				var ve *schema.ValidationError
				if errors.As(err, &ve) {
					for _, f := range ve.Fields {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", f.Field, f.Reason)
					}
				}
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func compileFile(path string) (*schema.Validator, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	def, err := schema.Parse(filepath.Base(path), raw)
	if err != nil {
		return nil, err
	}
	return schema.Compile(def)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
