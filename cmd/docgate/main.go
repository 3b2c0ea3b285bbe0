package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

// @title Document Gateway API
// @version 1.0
// @description HTTP gateway in front of a document database with per-collection schema validation.
// @BasePath /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docgate",
		Short: "Document database gateway with schema validation",
		Long: `docgate exposes a document database over HTTP. Each collection can carry
YAML schemas; when DATA_VALIDATION is enabled, inserted documents are checked
against the first schema of their collection and missing defaults are filled in.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newSchemaCmd())
	return root
}
