package cmd

import (
	"fmt"
	"os"

	"github.com/forgekit/forge-engine/pkg/schema"
	"github.com/spf13/cobra"
)

var schemaOutputPath string

var schemaCmd = &cobra.Command{
	Use:   "schema [file]",
	Short: "Validate and pretty-print a schema document",
	Long: `Reads a schema document, parses it (validating its shape against the
reader), and re-emits it as deterministic, pretty-printed JSON.

If no file is provided, reads from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().StringVarP(&schemaOutputPath, "output", "o", "", "write the result to this file instead of stdout")
}

func runSchema(cmd *cobra.Command, args []string) error {
	data, err := readSourceArg(false, args)
	if err != nil {
		return err
	}

	doc, err := schema.Read([]byte(data))
	if err != nil {
		return fmt.Errorf("invalid schema document: %w", err)
	}

	output, err := doc.MarshalIndent()
	if err != nil {
		return fmt.Errorf("failed to render schema document: %w", err)
	}

	if schemaOutputPath == "" {
		fmt.Println(output)
		return nil
	}
	if err := os.WriteFile(schemaOutputPath, []byte(output+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", schemaOutputPath, err)
	}
	return nil
}
