package logicflow_test

import (
	"testing"

	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/jsonvalue"
	"github.com/forgekit/forge-engine/pkg/logicflow"
)

func propsFromString(key, value string) *jsonvalue.Value {
	obj := jsonvalue.NewObject()
	obj.ObjectSet(key, jsonvalue.NewString(value))
	return obj
}

func TestSimulateFlow_EventEntryFansOutToAllOutgoingEdges(t *testing.T) {
	flow := graph.Flow{
		ID: "flow1",
		Nodes: []graph.LogicNode{
			{ID: "start", Kind: graph.KindEventEntry, HasKind: true},
			{ID: "a", Kind: graph.KindReturn, HasKind: true},
			{ID: "b", Kind: graph.KindReturn, HasKind: true},
		},
		Edges: []graph.LogicEdge{
			{FromNode: "start", ToNode: "a"},
			{FromNode: "start", ToNode: "b"},
		},
		EntryNodes: []string{"start"},
	}
	g := graph.LogicGraph{Flows: []graph.Flow{flow}}

	result, err := logicflow.SimulateFlow(g, "flow1", "", false, nil, logicflow.DefaultEvalConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, diagnostics=%v", result.Diagnostics)
	}
	if result.RunID == "" {
		t.Fatalf("expected a populated run id")
	}
	if len(result.Traces) != 2 {
		t.Fatalf("expected 2 traces (start then first return reached), got %d", len(result.Traces))
	}
}

func TestSimulateFlow_TransformAppliesExpression(t *testing.T) {
	flow := graph.Flow{
		ID: "flow1",
		Nodes: []graph.LogicNode{
			{ID: "start", Kind: graph.KindEventEntry, HasKind: true},
			{ID: "double", Kind: graph.KindTransform, HasKind: true, Props: propsFromString("expression", "21 * 2")},
			{ID: "finish", Kind: graph.KindReturn, HasKind: true},
		},
		Edges: []graph.LogicEdge{
			{FromNode: "start", ToNode: "double"},
			{FromNode: "double", ToNode: "finish"},
		},
		EntryNodes: []string{"start"},
	}
	g := graph.LogicGraph{Flows: []graph.Flow{flow}}

	result, err := logicflow.SimulateFlow(g, "flow1", "", false, nil, logicflow.DefaultEvalConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, diagnostics=%v", result.Diagnostics)
	}
	if result.ReturnValue == nil || result.ReturnValue.NumberValue() != 42 {
		t.Fatalf("expected transform output to carry through as the return value 42, got %+v", result.ReturnValue)
	}
}

func TestSimulateFlow_ConditionBranchesOnTruthiness(t *testing.T) {
	flow := graph.Flow{
		ID: "flow1",
		Nodes: []graph.LogicNode{
			{ID: "start", Kind: graph.KindEventEntry, HasKind: true},
			{ID: "check", Kind: graph.KindCondition, HasKind: true, Props: propsFromString("expression", "1 < 2")},
			{ID: "thenNode", Kind: graph.KindReturn, HasKind: true, Props: propsFromString("expression", "\"then\"")},
			{ID: "elseNode", Kind: graph.KindReturn, HasKind: true, Props: propsFromString("expression", "\"else\"")},
		},
		Edges: []graph.LogicEdge{
			{FromNode: "start", ToNode: "check"},
			{FromNode: "check", FromPort: "then", HasFrom: true, ToNode: "thenNode"},
			{FromNode: "check", FromPort: "else", HasFrom: true, ToNode: "elseNode"},
		},
		EntryNodes: []string{"start"},
	}
	g := graph.LogicGraph{Flows: []graph.Flow{flow}}

	result, err := logicflow.SimulateFlow(g, "flow1", "", false, nil, logicflow.DefaultEvalConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ReturnValue == nil || result.ReturnValue.StringValue() != "then" {
		t.Fatalf("expected the true branch to be taken, got %+v", result.ReturnValue)
	}
}

func TestSimulateFlow_ActionSetStateMutatesNestedProviderPath(t *testing.T) {
	props := jsonvalue.NewObject()
	props.ObjectSet("provider_id", jsonvalue.NewString("counterProvider"))
	props.ObjectSet("path", jsonvalue.NewString("state.count"))
	props.ObjectSet("expression", jsonvalue.NewString("42"))

	flow := graph.Flow{
		ID: "flow1",
		Nodes: []graph.LogicNode{
			{ID: "start", Kind: graph.KindEventEntry, HasKind: true},
			{ID: "setState", Kind: graph.KindActionSetState, HasKind: true, Props: props},
		},
		Edges: []graph.LogicEdge{
			{FromNode: "start", ToNode: "setState"},
		},
		EntryNodes: []string{"start"},
	}
	g := graph.LogicGraph{Flows: []graph.Flow{flow}}

	result, err := logicflow.SimulateFlow(g, "flow1", "", false, nil, logicflow.DefaultEvalConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, diagnostics=%v", result.Diagnostics)
	}
	providerState, ok := result.ProviderState["counterProvider"]
	if !ok {
		t.Fatalf("expected counterProvider to be seeded in provider state")
	}
	stateObj := providerState.ObjectGet("state")
	if stateObj == nil {
		t.Fatalf("expected nested state object, got %+v", providerState)
	}
	count := stateObj.ObjectGet("count")
	if count == nil || count.NumberValue() != 42 {
		t.Fatalf("expected state.count == 42, got %+v", count)
	}
}

func TestSimulateFlow_ReturnHaltsTraversal(t *testing.T) {
	flow := graph.Flow{
		ID: "flow1",
		Nodes: []graph.LogicNode{
			{ID: "start", Kind: graph.KindEventEntry, HasKind: true},
			{ID: "stop", Kind: graph.KindReturn, HasKind: true, Props: propsFromString("expression", "\"done\"")},
			{ID: "unreachable", Kind: graph.KindReturn, HasKind: true, Props: propsFromString("expression", "\"nope\"")},
		},
		Edges: []graph.LogicEdge{
			{FromNode: "start", ToNode: "stop"},
			{FromNode: "stop", ToNode: "unreachable"},
		},
		EntryNodes: []string{"start"},
	}
	g := graph.LogicGraph{Flows: []graph.Flow{flow}}

	result, err := logicflow.SimulateFlow(g, "flow1", "", false, nil, logicflow.DefaultEvalConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ReturnValue == nil || result.ReturnValue.StringValue() != "done" {
		t.Fatalf("expected return value 'done', got %+v", result.ReturnValue)
	}
	if len(result.Traces) != 2 {
		t.Fatalf("expected exactly 2 traces (start, stop), got %d", len(result.Traces))
	}
}

func TestSimulateFlow_UnsupportedKindRecordsDiagnosticAndContinues(t *testing.T) {
	flow := graph.Flow{
		ID: "flow1",
		Nodes: []graph.LogicNode{
			{ID: "start", Kind: graph.KindEventEntry, HasKind: true},
			{ID: "mystery", CustomKind: "experimentalWidget", HasKind: false},
		},
		Edges: []graph.LogicEdge{
			{FromNode: "start", ToNode: "mystery"},
		},
		EntryNodes: []string{"start"},
	}
	g := graph.LogicGraph{Flows: []graph.Flow{flow}}

	result, err := logicflow.SimulateFlow(g, "flow1", "", false, nil, logicflow.DefaultEvalConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("an unsupported kind should not fail the whole run, diagnostics=%v", result.Diagnostics)
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", result.Diagnostics)
	}
}

func TestSimulateFlow_MaxStepsExceededReturnsError(t *testing.T) {
	flow := graph.Flow{
		ID: "flow1",
		Nodes: []graph.LogicNode{
			{ID: "a", Kind: graph.KindEventEntry, HasKind: true},
			{ID: "b", Kind: graph.KindEventEntry, HasKind: true},
		},
		Edges: []graph.LogicEdge{
			{FromNode: "a", ToNode: "b"},
			{FromNode: "b", ToNode: "a"},
		},
		EntryNodes: []string{"a"},
	}
	g := graph.LogicGraph{Flows: []graph.Flow{flow}}

	_, err := logicflow.SimulateFlow(g, "flow1", "", false, nil, logicflow.EvalConfig{MaxSteps: 5, MaxTrace: 100})
	if err == nil {
		t.Fatalf("expected a max-steps error for an infinite loop")
	}
	logicErr, ok := err.(*logicflow.LogicError)
	if !ok {
		t.Fatalf("expected *logicflow.LogicError, got %T", err)
	}
	if logicErr.Kind != logicflow.ErrMaxStepsExceeded {
		t.Fatalf("expected ErrMaxStepsExceeded, got %v", logicErr.Kind)
	}
}

func TestSimulateFlow_MissingEntryNodeErrors(t *testing.T) {
	flow := graph.Flow{
		ID:    "flow1",
		Nodes: []graph.LogicNode{{ID: "a", Kind: graph.KindReturn, HasKind: true}},
	}
	g := graph.LogicGraph{Flows: []graph.Flow{flow}}

	_, err := logicflow.SimulateFlow(g, "flow1", "", false, nil, logicflow.DefaultEvalConfig())
	if err == nil {
		t.Fatalf("expected an error when no entry node can be resolved")
	}
	logicErr, ok := err.(*logicflow.LogicError)
	if !ok || logicErr.Kind != logicflow.ErrMissingEntryNode {
		t.Fatalf("expected ErrMissingEntryNode, got %v", err)
	}
}

func TestSimulateFlow_FlowNotFoundErrors(t *testing.T) {
	g := graph.LogicGraph{}

	_, err := logicflow.SimulateFlow(g, "missing", "", false, nil, logicflow.DefaultEvalConfig())
	if err == nil {
		t.Fatalf("expected an error for an unknown flow id")
	}
	logicErr, ok := err.(*logicflow.LogicError)
	if !ok || logicErr.Kind != logicflow.ErrFlowNotFound {
		t.Fatalf("expected ErrFlowNotFound, got %v", err)
	}
}

func TestSimulateFlow_NodeNotFoundErrors(t *testing.T) {
	flow := graph.Flow{
		ID:         "flow1",
		Nodes:      []graph.LogicNode{{ID: "start", Kind: graph.KindEventEntry, HasKind: true}},
		Edges:      []graph.LogicEdge{{FromNode: "start", ToNode: "ghost"}},
		EntryNodes: []string{"start"},
	}
	g := graph.LogicGraph{Flows: []graph.Flow{flow}}

	_, err := logicflow.SimulateFlow(g, "flow1", "", false, nil, logicflow.DefaultEvalConfig())
	if err == nil {
		t.Fatalf("expected an error when an edge targets a missing node")
	}
	logicErr, ok := err.(*logicflow.LogicError)
	if !ok || logicErr.Kind != logicflow.ErrNodeNotFound {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestSimulateFlow_ExplicitEntryOverridesEntryNodesList(t *testing.T) {
	flow := graph.Flow{
		ID: "flow1",
		Nodes: []graph.LogicNode{
			{ID: "a", Kind: graph.KindReturn, HasKind: true, Props: propsFromString("expression", "\"a\"")},
			{ID: "b", Kind: graph.KindReturn, HasKind: true, Props: propsFromString("expression", "\"b\"")},
		},
		EntryNodes: []string{"a"},
	}
	g := graph.LogicGraph{Flows: []graph.Flow{flow}}

	result, err := logicflow.SimulateFlow(g, "flow1", "b", true, nil, logicflow.DefaultEvalConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ReturnValue == nil || result.ReturnValue.StringValue() != "b" {
		t.Fatalf("expected explicit entry 'b' to run, got %+v", result.ReturnValue)
	}
}
