package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/forgekit/forge-engine/pkg/schema"
	"github.com/forgekit/forge-engine/pkg/sourceparser"
	"github.com/spf13/cobra"
)

var (
	parseExpression bool
	parseProjectID  string
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse Forge widget-tree source into a schema document",
	Long: `Parse Forge widget-tree source code and print the resulting screens as a
schema document.

If no file is provided, reads from stdin. Use -e to parse an inline source
snippet instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseExpression, "expression", "e", false, "parse an inline snippet from the command line")
	parseCmd.Flags().StringVar(&parseProjectID, "project-id", "parsed", "project id stamped into the output document")
}

func runParse(cmd *cobra.Command, args []string) error {
	source, err := readSourceArg(parseExpression, args)
	if err != nil {
		return err
	}

	screens := sourceparser.BuildGraphsFromSource(source)
	doc := schema.Write(schema.NewProject(parseProjectID, parseProjectID), screens)

	output, err := doc.MarshalIndent()
	if err != nil {
		return fmt.Errorf("failed to render schema document: %w", err)
	}
	fmt.Println(output)
	return nil
}

func readSourceArg(inline bool, args []string) (string, error) {
	if inline {
		if len(args) == 0 {
			return "", fmt.Errorf("no inline source provided")
		}
		return args[0], nil
	}
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("error reading file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("error reading stdin: %w", err)
	}
	return string(data), nil
}
