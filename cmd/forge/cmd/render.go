package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/render"
	"github.com/forgekit/forge-engine/pkg/schema"
	"github.com/forgekit/forge-engine/pkg/stateadapter"
	"github.com/spf13/cobra"
)

var (
	renderDocPath  string
	renderScreenID string
	renderTarget   string
	renderDialect  string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a schema document's screen to a target framework",
	Long: `Reads a schema document, locates the named screen, and renders its widget
tree via the chosen renderer adapter: flutter, react, or angular.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderDocPath, "doc", "", "path to the schema document")
	renderCmd.Flags().StringVar(&renderScreenID, "screen", "", "id of the screen to render")
	renderCmd.Flags().StringVar(&renderTarget, "target", "flutter", "renderer to use: flutter, react, or angular")
	renderCmd.Flags().StringVar(&renderDialect, "dialect", "jsx", "react dialect: jsx or tsx (ignored for other targets)")
	_ = renderCmd.MarkFlagRequired("doc")
	_ = renderCmd.MarkFlagRequired("screen")
}

func runRender(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(renderDocPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", renderDocPath, err)
	}
	doc, err := schema.Read(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", renderDocPath, err)
	}

	screen, ok := findScreen(doc.Screens, renderScreenID)
	if !ok {
		return fmt.Errorf("screen %q not found in %s", renderScreenID, renderDocPath)
	}

	renderer, options, err := resolveRenderer(renderTarget, renderDialect)
	if err != nil {
		return err
	}

	ctx := render.Context{
		StateAdapter: stateadapter.NewRiverpodAdapter(),
		Options:      options,
	}

	unit, err := render.RenderTree(renderer, screen.Root, ctx)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	for _, imp := range unit.Imports {
		fmt.Println(imp)
	}
	fmt.Println(unit.Code)
	return nil
}

func findScreen(screens []graph.ScreenGraph, id string) (graph.ScreenGraph, bool) {
	for _, s := range screens {
		if s.ID == id {
			return s, true
		}
	}
	return graph.ScreenGraph{}, false
}

func resolveRenderer(target, dialect string) (render.RendererAdapter, render.Options, error) {
	options := render.DefaultOptions()
	switch strings.ToLower(target) {
	case "flutter":
		options.Dialect = render.DialectDart
		return render.FlutterRenderer{}, options, nil
	case "react":
		switch strings.ToLower(dialect) {
		case "tsx":
			options.Dialect = render.DialectTsx
		default:
			options.Dialect = render.DialectJsx
		}
		return render.ReactRenderer{}, options, nil
	case "angular":
		options.Dialect = render.DialectHTML
		return render.AngularRenderer{}, options, nil
	default:
		return nil, render.Options{}, fmt.Errorf("unknown render target %q (want flutter, react, or angular)", target)
	}
}
