package cmd

import (
	"fmt"
	"os"

	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/merge"
	"github.com/forgekit/forge-engine/pkg/schema"
	"github.com/spf13/cobra"
)

var (
	mergeBasePath  string
	mergeLeftPath  string
	mergeRightPath string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Three-way merge the first screen of three schema documents",
	Long: `Reads base/left/right schema documents and three-way merges the first
screen of each, printing the merged screen and any conflicts as JSON.

Exits with code 2 (not a hard failure) when conflicts were recorded, so
callers can distinguish a clean merge from a reconciled one.`,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVar(&mergeBasePath, "base", "", "path to the common-ancestor schema document")
	mergeCmd.Flags().StringVar(&mergeLeftPath, "left", "", "path to the left schema document")
	mergeCmd.Flags().StringVar(&mergeRightPath, "right", "", "path to the right schema document")
	_ = mergeCmd.MarkFlagRequired("base")
	_ = mergeCmd.MarkFlagRequired("left")
	_ = mergeCmd.MarkFlagRequired("right")
}

func runMerge(cmd *cobra.Command, args []string) error {
	base, err := firstScreenFromPath(mergeBasePath)
	if err != nil {
		return err
	}
	left, err := firstScreenFromPath(mergeLeftPath)
	if err != nil {
		return err
	}
	right, err := firstScreenFromPath(mergeRightPath)
	if err != nil {
		return err
	}

	outcome := merge.MergeScreenGraphs(base, left, right)

	data, err := outcome.ToValue().MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to render merge result: %w", err)
	}
	fmt.Println(string(data))

	if len(outcome.Conflicts) > 0 {
		return &ExitCodeError{Code: 2, Err: fmt.Errorf("merge produced %d conflict(s)", len(outcome.Conflicts))}
	}
	return nil
}

func firstScreenFromPath(path string) (graph.ScreenGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return graph.ScreenGraph{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := schema.Read(data)
	if err != nil {
		return graph.ScreenGraph{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(doc.Screens) == 0 {
		return graph.ScreenGraph{}, fmt.Errorf("%s contains no screens", path)
	}
	return doc.Screens[0], nil
}
