package logicflow

import (
	"strings"

	"github.com/forgekit/forge-engine/pkg/exprlang"
	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/jsonvalue"
	"github.com/google/uuid"
)

type activation struct {
	nodeID string
	input  *jsonvalue.Value
}

type nodeExecution struct {
	outputs         []portValue
	returnValue     *jsonvalue.Value
	hasReturn       bool
	diagnostics     []string
	err             string
	output          *jsonvalue.Value
	providerUpdates []providerUpdate
}

type portValue struct {
	port    string
	hasPort bool
	value   *jsonvalue.Value
}

type providerUpdate struct {
	providerID string
	path       string
	hasPath    bool
	value      *jsonvalue.Value
}

// SimulateFlow runs the flow identified by flowID within graph to
// completion, bounded by config. entry/hasEntry selects an explicit entry
// node id; seedProviders seeds the providers map before the run starts.
func SimulateFlow(g graph.LogicGraph, flowID string, entry string, hasEntry bool, seedProviders map[string]*jsonvalue.Value, config EvalConfig) (EvalResult, error) {
	flow, ok := g.FindFlow(flowID)
	if !ok {
		return EvalResult{}, &LogicError{Kind: ErrFlowNotFound, FlowID: flowID}
	}

	entryNodes, err := resolveEntryNodes(flow, entry, hasEntry)
	if err != nil {
		return EvalResult{}, err
	}

	queue := make([]activation, 0, len(entryNodes))
	for _, id := range entryNodes {
		queue = append(queue, activation{nodeID: id, input: jsonvalue.NewNull()})
	}

	providers := make(map[string]*jsonvalue.Value, len(seedProviders))
	for k, v := range seedProviders {
		providers[k] = jsonvalue.Clone(v)
	}

	var diagnostics []string
	var traces []EvalTraceEntry
	success := true
	var returnValue *jsonvalue.Value
	steps := 0

	for len(queue) > 0 {
		act := queue[0]
		queue = queue[1:]

		steps++
		if steps > config.MaxSteps {
			return EvalResult{}, &LogicError{Kind: ErrMaxStepsExceeded, MaxSteps: config.MaxSteps}
		}

		node, ok := flow.FindNode(act.nodeID)
		if !ok {
			return EvalResult{}, &LogicError{Kind: ErrNodeNotFound, FlowID: flow.ID, NodeID: act.nodeID}
		}

		execution, err := executeNode(node, act.input, providers)
		if err != nil {
			return EvalResult{}, err
		}

		recordTrace(&traces, node, act.input, execution, config.MaxTrace)
		diagnostics = append(diagnostics, execution.diagnostics...)

		if execution.err != "" {
			success = false
			diagnostics = append(diagnostics, execution.err)
			break
		}

		if execution.hasReturn {
			returnValue = execution.returnValue
			break
		}

		for _, update := range execution.providerUpdates {
			setProviderValue(providers, update.providerID, update.path, update.hasPath, update.value)
		}

		for _, out := range execution.outputs {
			for _, edge := range matchingEdges(flow, node.ID, out.port, out.hasPort) {
				queue = append(queue, activation{nodeID: edge.ToNode, input: out.value})
			}
		}
	}

	return EvalResult{
		RunID:         uuid.NewString(),
		Success:       success,
		ReturnValue:   returnValue,
		Traces:        traces,
		Diagnostics:   diagnostics,
		ProviderState: providers,
	}, nil
}

func resolveEntryNodes(flow graph.Flow, explicit string, hasExplicit bool) ([]string, error) {
	if hasExplicit {
		return []string{explicit}, nil
	}
	if len(flow.EntryNodes) > 0 {
		return append([]string(nil), flow.EntryNodes...), nil
	}
	for _, node := range flow.Nodes {
		if node.HasKind && node.Kind == graph.KindEventEntry {
			return []string{node.ID}, nil
		}
	}
	return nil, &LogicError{Kind: ErrMissingEntryNode, FlowID: flow.ID}
}

func matchingEdges(flow graph.Flow, fromNode string, fromPort string, hasPort bool) []graph.LogicEdge {
	var out []graph.LogicEdge
	for _, edge := range flow.Edges {
		if edge.FromNode != fromNode {
			continue
		}
		switch {
		case !edge.HasFrom:
			out = append(out, edge)
		case hasPort && edge.FromPort == fromPort:
			out = append(out, edge)
		}
	}
	return out
}

func executeNode(node graph.LogicNode, input *jsonvalue.Value, providers map[string]*jsonvalue.Value) (nodeExecution, error) {
	if !node.HasKind {
		return nodeExecution{diagnostics: []string{unsupportedKindDiagnostic(node.ID)}}, nil
	}

	switch node.Kind {
	case graph.KindEventEntry:
		return nodeExecution{
			outputs: defaultOutputs(node, input),
			output:  input,
		}, nil
	case graph.KindTransform:
		expression, err := stringProp(node.Props, "expression", node.ID)
		if err != nil {
			return nodeExecution{}, err
		}
		value, err := evaluateExpression(expression, input, providers, node.ID)
		if err != nil {
			return nodeExecution{}, err
		}
		return nodeExecution{
			outputs: defaultOutputs(node, value),
			output:  value,
		}, nil
	case graph.KindCondition:
		expression, err := stringProp(node.Props, "expression", node.ID)
		if err != nil {
			return nodeExecution{}, err
		}
		result, err := evaluateExpression(expression, input, providers, node.ID)
		if err != nil {
			return nodeExecution{}, err
		}
		truePort := optionalStringProp(node.Props, "true_port", "then")
		falsePort := optionalStringProp(node.Props, "false_port", "else")
		port := falsePort
		if result.Truthy() {
			port = truePort
		}
		return nodeExecution{
			outputs: []portValue{{port: port, hasPort: true, value: input}},
			output:  result,
		}, nil
	case graph.KindReturn:
		var value *jsonvalue.Value
		if expr, ok := optionalStringPropPresent(node.Props, "expression"); ok {
			evaluated, err := evaluateExpression(expr, input, providers, node.ID)
			if err != nil {
				return nodeExecution{}, err
			}
			value = evaluated
		} else {
			value = input
		}
		return nodeExecution{
			returnValue: value,
			hasReturn:   true,
			output:      value,
		}, nil
	case graph.KindActionSetState:
		providerID, err := stringProp(node.Props, "provider_id", node.ID)
		if err != nil {
			return nodeExecution{}, err
		}
		path, hasPath := optionalStringPropPresent(node.Props, "path")
		expression, err := stringProp(node.Props, "expression", node.ID)
		if err != nil {
			return nodeExecution{}, err
		}
		value, err := evaluateExpression(expression, input, providers, node.ID)
		if err != nil {
			return nodeExecution{}, err
		}
		return nodeExecution{
			outputs:     defaultOutputs(node, input),
			output:      value,
			providerUpdates: []providerUpdate{{
				providerID: providerID,
				path:       path,
				hasPath:    hasPath,
				value:      value,
			}},
		}, nil
	default:
		return nodeExecution{diagnostics: []string{unsupportedKindDiagnostic(node.ID)}}, nil
	}
}

func unsupportedKindDiagnostic(nodeID string) string {
	return "unsupported node kind on '" + nodeID + "'; skipping"
}

func defaultOutputs(node graph.LogicNode, value *jsonvalue.Value) []portValue {
	if len(node.Outputs) == 0 {
		return []portValue{{value: value}}
	}
	outputs := make([]portValue, len(node.Outputs))
	for i, port := range node.Outputs {
		outputs[i] = portValue{port: port, hasPort: true, value: value}
	}
	return outputs
}

func evaluateExpression(expression string, input *jsonvalue.Value, providers map[string]*jsonvalue.Value, nodeID string) (*jsonvalue.Value, error) {
	expr, err := exprlang.ParseExpression(expression)
	if err != nil {
		return nil, &LogicError{Kind: ErrExpressionFailure, NodeID: nodeID, Message: err.Error(), Err: err}
	}

	root := buildEvalRoot(input, providers)
	ctx := exprlang.NewEvalContextWithNow(root)
	value, err := exprlang.Eval(expr, ctx)
	if err != nil {
		return nil, &LogicError{Kind: ErrExpressionFailure, NodeID: nodeID, Message: err.Error(), Err: err}
	}
	return value, nil
}

func buildEvalRoot(input *jsonvalue.Value, providers map[string]*jsonvalue.Value) *jsonvalue.Value {
	root := jsonvalue.NewObject()
	if input != nil {
		root.ObjectSet("input", input)
	} else {
		root.ObjectSet("input", jsonvalue.NewNull())
	}
	providersValue := jsonvalue.NewObject()
	for k, v := range providers {
		providersValue.ObjectSet(k, v)
	}
	root.ObjectSet("providers", providersValue)
	return root
}

func stringProp(props *jsonvalue.Value, key, nodeID string) (string, error) {
	if props == nil || props.Kind() != jsonvalue.KindObject {
		return "", &LogicError{Kind: ErrExpressionFailure, NodeID: nodeID, Message: "missing property container for '" + key + "'"}
	}
	value := props.ObjectGet(key)
	if value == nil || value.Kind() != jsonvalue.KindString {
		return "", &LogicError{Kind: ErrExpressionFailure, NodeID: nodeID, Message: "missing string property '" + key + "'"}
	}
	return value.StringValue(), nil
}

func optionalStringProp(props *jsonvalue.Value, key, fallback string) string {
	if value, ok := optionalStringPropPresent(props, key); ok {
		return value
	}
	return fallback
}

func optionalStringPropPresent(props *jsonvalue.Value, key string) (string, bool) {
	if props == nil || props.Kind() != jsonvalue.KindObject {
		return "", false
	}
	value := props.ObjectGet(key)
	if value == nil || value.Kind() != jsonvalue.KindString {
		return "", false
	}
	return value.StringValue(), true
}

func recordTrace(traces *[]EvalTraceEntry, node graph.LogicNode, input *jsonvalue.Value, execution nodeExecution, maxTrace int) {
	if len(*traces) >= maxTrace {
		return
	}
	entry := EvalTraceEntry{
		NodeID:      node.ID,
		NodeKind:    node.Kind,
		HasNodeKind: node.HasKind,
		CustomKind:  node.CustomKind,
		Input:       input,
		Output:      execution.output,
	}
	if execution.err != "" {
		entry.Error = execution.err
	}
	*traces = append(*traces, entry)
}

func setProviderValue(providers map[string]*jsonvalue.Value, providerID, path string, hasPath bool, value *jsonvalue.Value) {
	current, ok := providers[providerID]
	if !ok {
		current = jsonvalue.NewNull()
	}

	if !hasPath {
		providers[providerID] = value
		return
	}

	segments := nonEmptySegments(path)
	if len(segments) == 0 {
		providers[providerID] = value
		return
	}

	providers[providerID] = setNestedValue(current, segments, value)
}

func nonEmptySegments(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, ".") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

func setNestedValue(target *jsonvalue.Value, segments []string, value *jsonvalue.Value) *jsonvalue.Value {
	if len(segments) == 0 {
		return value
	}
	obj := asObject(target)
	key := segments[0]
	if len(segments) == 1 {
		obj.ObjectSet(key, value)
		return obj
	}
	child := obj.ObjectGet(key)
	if child == nil {
		child = jsonvalue.NewNull()
	}
	obj.ObjectSet(key, setNestedValue(child, segments[1:], value))
	return obj
}

func asObject(value *jsonvalue.Value) *jsonvalue.Value {
	if value == nil || value.Kind() != jsonvalue.KindObject {
		return jsonvalue.NewObject()
	}
	return value
}
