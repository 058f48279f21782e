package cmd

import (
	"fmt"
	"os"

	"github.com/forgekit/forge-engine/pkg/jsonvalue"
	"github.com/forgekit/forge-engine/pkg/logicflow"
	"github.com/forgekit/forge-engine/pkg/schema"
	"github.com/spf13/cobra"
)

var (
	simulateDocPath       string
	simulateFlowID        string
	simulateEntry         string
	simulateProvidersPath string
	simulateMaxSteps      int
	simulateMaxTrace      int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the logic flow simulator against a schema document",
	Long: `Reads a schema document, simulates the named flow of its first logic
graph to completion or failure, and prints the run's trace, diagnostics, and
final provider state as JSON.`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simulateDocPath, "doc", "", "path to the schema document containing the logic graph")
	simulateCmd.Flags().StringVar(&simulateFlowID, "flow", "", "id of the flow to simulate")
	simulateCmd.Flags().StringVar(&simulateEntry, "entry", "", "explicit entry node id (overrides the flow's entry_nodes list)")
	simulateCmd.Flags().StringVar(&simulateProvidersPath, "providers", "", "path to a JSON object of seed provider state")
	simulateCmd.Flags().IntVar(&simulateMaxSteps, "max-steps", 0, "override the default step fuel (0 keeps the default)")
	simulateCmd.Flags().IntVar(&simulateMaxTrace, "max-trace", 0, "override the default trace cap (0 keeps the default)")
	_ = simulateCmd.MarkFlagRequired("doc")
	_ = simulateCmd.MarkFlagRequired("flow")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(simulateDocPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", simulateDocPath, err)
	}
	doc, err := schema.Read(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", simulateDocPath, err)
	}
	if len(doc.Logic) == 0 {
		return fmt.Errorf("%s contains no logic graphs", simulateDocPath)
	}

	seedProviders, err := loadSeedProviders(simulateProvidersPath)
	if err != nil {
		return err
	}

	config := logicflow.DefaultEvalConfig()
	if simulateMaxSteps > 0 {
		config.MaxSteps = simulateMaxSteps
	}
	if simulateMaxTrace > 0 {
		config.MaxTrace = simulateMaxTrace
	}

	result, err := logicflow.SimulateFlow(doc.Logic[0], simulateFlowID, simulateEntry, simulateEntry != "", seedProviders, config)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	out := evalResultToValue(result)
	rendered, err := out.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to render simulation result: %w", err)
	}
	fmt.Println(string(rendered))
	return nil
}

func loadSeedProviders(path string) (map[string]*jsonvalue.Value, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	value := jsonvalue.NewNull()
	if err := value.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if value.Kind() != jsonvalue.KindObject {
		return nil, fmt.Errorf("%s must contain a JSON object", path)
	}
	providers := make(map[string]*jsonvalue.Value, len(value.ObjectKeys()))
	for _, key := range value.ObjectKeys() {
		providers[key] = value.ObjectGet(key)
	}
	return providers, nil
}

func evalResultToValue(result logicflow.EvalResult) *jsonvalue.Value {
	out := jsonvalue.NewObject()
	out.ObjectSet("run_id", jsonvalue.NewString(result.RunID))
	out.ObjectSet("success", jsonvalue.NewBoolean(result.Success))
	if result.ReturnValue != nil {
		out.ObjectSet("return_value", result.ReturnValue)
	} else {
		out.ObjectSet("return_value", jsonvalue.NewNull())
	}

	diagnostics := jsonvalue.NewArray()
	for _, d := range result.Diagnostics {
		diagnostics.ArrayAppend(jsonvalue.NewString(d))
	}
	out.ObjectSet("diagnostics", diagnostics)

	traces := jsonvalue.NewArray()
	for _, t := range result.Traces {
		entry := jsonvalue.NewObject()
		entry.ObjectSet("node_id", jsonvalue.NewString(t.NodeID))
		if t.HasNodeKind {
			entry.ObjectSet("node_kind", jsonvalue.NewString(string(t.NodeKind)))
		} else {
			entry.ObjectSet("node_kind", jsonvalue.NewString(t.CustomKind))
		}
		if t.Error != "" {
			entry.ObjectSet("error", jsonvalue.NewString(t.Error))
		}
		entry.ObjectSet("duration_ms", jsonvalue.NewInt64(int64(t.DurationMs)))
		traces.ArrayAppend(entry)
	}
	out.ObjectSet("traces", traces)

	providerState := jsonvalue.NewObject()
	for key, value := range result.ProviderState {
		providerState.ObjectSet(key, value)
	}
	out.ObjectSet("provider_state", providerState)

	return out
}
