package graph

import (
	"fmt"

	"github.com/forgekit/forge-engine/pkg/jsonvalue"
)

// ToValue lowers a ScreenGraph into its canonical jsonvalue.Value encoding:
// {"id": string, "root": WidgetNode}. Unlike the Rust schema writer this
// never duplicates id into a redundant "name" field.
func (s ScreenGraph) ToValue() *jsonvalue.Value {
	out := jsonvalue.NewObject()
	out.ObjectSet("id", jsonvalue.NewString(s.ID))
	out.ObjectSet("root", s.Root.ToValue())
	return out
}

// ToValue lowers a WidgetNode into {"widget","props","children"}, iterating
// props in sorted key order for deterministic output. Empty props/children
// serialize as {} and [] respectively.
func (w WidgetNode) ToValue() *jsonvalue.Value {
	out := jsonvalue.NewObject()
	out.ObjectSet("widget", jsonvalue.NewString(w.Widget))

	props := jsonvalue.NewObject()
	for _, key := range w.PropKeys() {
		props.ObjectSet(key, w.Props[key].ToValue())
	}
	out.ObjectSet("props", props)

	children := jsonvalue.NewArray()
	for _, child := range w.Children {
		children.ArrayAppend(child.ToValue())
	}
	out.ObjectSet("children", children)
	return out
}

// ToValue lowers a PropValue per its discriminant: literal/expression/binding.
func (p PropValue) ToValue() *jsonvalue.Value {
	out := jsonvalue.NewObject()
	switch p.Kind {
	case PropLiteral:
		out.ObjectSet("type", jsonvalue.NewString("literal"))
		if p.Literal != nil {
			out.ObjectSet("value", jsonvalue.Clone(p.Literal))
		} else {
			out.ObjectSet("value", jsonvalue.NewNull())
		}
	case PropExpression:
		out.ObjectSet("type", jsonvalue.NewString("expression"))
		out.ObjectSet("expression", jsonvalue.NewString(p.Expression))
	case PropBinding:
		out.ObjectSet("type", jsonvalue.NewString("binding"))
		out.ObjectSet("binding", p.Binding.ToValue())
	}
	return out
}

// ToValue lowers a BindingReference into
// {"type","ref","provider_id"?,"path"?,"type_hint"?}.
func (b BindingReference) ToValue() *jsonvalue.Value {
	out := jsonvalue.NewObject()
	out.ObjectSet("type", jsonvalue.NewString(string(b.Target)))
	out.ObjectSet("ref", jsonvalue.NewString(b.Reference))
	if b.ProviderID != "" {
		out.ObjectSet("provider_id", jsonvalue.NewString(b.ProviderID))
	}
	if b.Path != "" {
		out.ObjectSet("path", jsonvalue.NewString(b.Path))
	}
	if b.TypeHint != "" {
		out.ObjectSet("type_hint", jsonvalue.NewString(b.TypeHint))
	}
	return out
}

// ToValue lowers a LogicGraph into {"flows": [...], "metadata"?}.
func (g LogicGraph) ToValue() *jsonvalue.Value {
	out := jsonvalue.NewObject()
	flows := jsonvalue.NewArray()
	for _, f := range g.Flows {
		flows.ArrayAppend(f.ToValue())
	}
	out.ObjectSet("flows", flows)
	if g.Metadata != nil {
		out.ObjectSet("metadata", jsonvalue.Clone(g.Metadata))
	}
	return out
}

// ToValue lowers a Flow into {"id","name"?,"nodes","edges","entry_nodes","metadata"?}.
func (f Flow) ToValue() *jsonvalue.Value {
	out := jsonvalue.NewObject()
	out.ObjectSet("id", jsonvalue.NewString(f.ID))
	if f.Name != "" {
		out.ObjectSet("name", jsonvalue.NewString(f.Name))
	}
	nodes := jsonvalue.NewArray()
	for _, n := range f.Nodes {
		nodes.ArrayAppend(n.ToValue())
	}
	out.ObjectSet("nodes", nodes)

	edges := jsonvalue.NewArray()
	for _, e := range f.Edges {
		edges.ArrayAppend(e.ToValue())
	}
	out.ObjectSet("edges", edges)

	entries := jsonvalue.NewArray()
	for _, id := range f.EntryNodes {
		entries.ArrayAppend(jsonvalue.NewString(id))
	}
	out.ObjectSet("entry_nodes", entries)

	if f.Metadata != nil {
		out.ObjectSet("metadata", jsonvalue.Clone(f.Metadata))
	}
	return out
}

// ToValue lowers a LogicNode into its camelCase-kind JSON shape.
func (n LogicNode) ToValue() *jsonvalue.Value {
	out := jsonvalue.NewObject()
	out.ObjectSet("id", jsonvalue.NewString(n.ID))
	if n.Name != "" {
		out.ObjectSet("name", jsonvalue.NewString(n.Name))
	}
	if n.HasKind {
		out.ObjectSet("kind", jsonvalue.NewString(string(n.Kind)))
	}
	if n.CustomKind != "" {
		out.ObjectSet("custom_kind", jsonvalue.NewString(n.CustomKind))
	}
	if n.Props != nil {
		out.ObjectSet("props", jsonvalue.Clone(n.Props))
	} else {
		out.ObjectSet("props", jsonvalue.NewObject())
	}
	inputs := jsonvalue.NewArray()
	for _, i := range n.Inputs {
		inputs.ArrayAppend(jsonvalue.NewString(i))
	}
	out.ObjectSet("inputs", inputs)

	outputs := jsonvalue.NewArray()
	for _, o := range n.Outputs {
		outputs.ArrayAppend(jsonvalue.NewString(o))
	}
	out.ObjectSet("outputs", outputs)

	if n.Metadata != nil {
		out.ObjectSet("metadata", jsonvalue.Clone(n.Metadata))
	}
	return out
}

// ToValue lowers a LogicEdge into {"from_node","from_port"?,"to_node","to_port"?,"metadata"?}.
func (e LogicEdge) ToValue() *jsonvalue.Value {
	out := jsonvalue.NewObject()
	out.ObjectSet("from_node", jsonvalue.NewString(e.FromNode))
	if e.HasFrom {
		out.ObjectSet("from_port", jsonvalue.NewString(e.FromPort))
	}
	out.ObjectSet("to_node", jsonvalue.NewString(e.ToNode))
	if e.HasTo {
		out.ObjectSet("to_port", jsonvalue.NewString(e.ToPort))
	}
	if e.Metadata != nil {
		out.ObjectSet("metadata", jsonvalue.Clone(e.Metadata))
	}
	return out
}

// ScreenGraphFromValue parses the canonical ScreenGraph JSON shape back into
// a ScreenGraph, the inverse of ToValue, powering the schema reader's
// round-trip guarantee (spec invariant 7).
func ScreenGraphFromValue(v *jsonvalue.Value) (ScreenGraph, error) {
	if v.Kind() != jsonvalue.KindObject {
		return ScreenGraph{}, fmt.Errorf("graph: expected object for ScreenGraph, got %s", v.Kind())
	}
	root := v.ObjectGet("root")
	node, err := WidgetNodeFromValue(root)
	if err != nil {
		return ScreenGraph{}, err
	}
	return ScreenGraph{ID: v.ObjectGet("id").StringValue(), Root: node}, nil
}

// WidgetNodeFromValue parses the canonical WidgetNode JSON shape.
func WidgetNodeFromValue(v *jsonvalue.Value) (WidgetNode, error) {
	if v.Kind() != jsonvalue.KindObject {
		return WidgetNode{}, fmt.Errorf("graph: expected object for WidgetNode, got %s", v.Kind())
	}
	node := WidgetNode{Widget: v.ObjectGet("widget").StringValue(), Props: map[string]PropValue{}}

	if props := v.ObjectGet("props"); props != nil {
		for _, key := range props.ObjectKeys() {
			prop, err := PropValueFromValue(props.ObjectGet(key))
			if err != nil {
				return WidgetNode{}, fmt.Errorf("graph: prop %q: %w", key, err)
			}
			node.Props[key] = prop
		}
	}

	if children := v.ObjectGet("children"); children != nil {
		for _, child := range children.ArrayElements() {
			childNode, err := WidgetNodeFromValue(child)
			if err != nil {
				return WidgetNode{}, err
			}
			node.Children = append(node.Children, childNode)
		}
	}
	return node, nil
}

// PropValueFromValue parses the discriminated PropValue JSON shape.
func PropValueFromValue(v *jsonvalue.Value) (PropValue, error) {
	if v.Kind() != jsonvalue.KindObject {
		return PropValue{}, fmt.Errorf("graph: expected object for PropValue, got %s", v.Kind())
	}
	switch v.ObjectGet("type").StringValue() {
	case "literal":
		return NewLiteralProp(jsonvalue.Clone(v.ObjectGet("value"))), nil
	case "expression":
		return NewExpressionProp(v.ObjectGet("expression").StringValue()), nil
	case "binding":
		binding, err := BindingReferenceFromValue(v.ObjectGet("binding"))
		if err != nil {
			return PropValue{}, err
		}
		return NewBindingProp(binding), nil
	default:
		return PropValue{}, fmt.Errorf("graph: unknown prop type %q", v.ObjectGet("type").StringValue())
	}
}

// BindingReferenceFromValue parses the BindingReference JSON shape.
func BindingReferenceFromValue(v *jsonvalue.Value) (BindingReference, error) {
	if v.Kind() != jsonvalue.KindObject {
		return BindingReference{}, fmt.Errorf("graph: expected object for BindingReference, got %s", v.Kind())
	}
	return BindingReference{
		Target:     BindingTarget(v.ObjectGet("type").StringValue()),
		Reference:  v.ObjectGet("ref").StringValue(),
		ProviderID: v.ObjectGet("provider_id").StringValue(),
		Path:       v.ObjectGet("path").StringValue(),
		TypeHint:   v.ObjectGet("type_hint").StringValue(),
	}, nil
}

// LogicGraphFromValue parses the LogicGraph JSON shape.
func LogicGraphFromValue(v *jsonvalue.Value) (LogicGraph, error) {
	if v.Kind() != jsonvalue.KindObject {
		return LogicGraph{}, fmt.Errorf("graph: expected object for LogicGraph, got %s", v.Kind())
	}
	g := LogicGraph{}
	if flows := v.ObjectGet("flows"); flows != nil {
		for _, fv := range flows.ArrayElements() {
			flow, err := FlowFromValue(fv)
			if err != nil {
				return LogicGraph{}, err
			}
			g.Flows = append(g.Flows, flow)
		}
	}
	if meta := v.ObjectGet("metadata"); meta != nil {
		g.Metadata = jsonvalue.Clone(meta)
	}
	return g, nil
}

// FlowFromValue parses the Flow JSON shape.
func FlowFromValue(v *jsonvalue.Value) (Flow, error) {
	if v.Kind() != jsonvalue.KindObject {
		return Flow{}, fmt.Errorf("graph: expected object for Flow, got %s", v.Kind())
	}
	f := Flow{ID: v.ObjectGet("id").StringValue(), Name: v.ObjectGet("name").StringValue()}
	if nodes := v.ObjectGet("nodes"); nodes != nil {
		for _, nv := range nodes.ArrayElements() {
			node, err := LogicNodeFromValue(nv)
			if err != nil {
				return Flow{}, err
			}
			f.Nodes = append(f.Nodes, node)
		}
	}
	if edges := v.ObjectGet("edges"); edges != nil {
		for _, ev := range edges.ArrayElements() {
			edge, err := LogicEdgeFromValue(ev)
			if err != nil {
				return Flow{}, err
			}
			f.Edges = append(f.Edges, edge)
		}
	}
	if entries := v.ObjectGet("entry_nodes"); entries != nil {
		for _, idv := range entries.ArrayElements() {
			f.EntryNodes = append(f.EntryNodes, idv.StringValue())
		}
	}
	if meta := v.ObjectGet("metadata"); meta != nil {
		f.Metadata = jsonvalue.Clone(meta)
	}
	return f, nil
}

// LogicNodeFromValue parses the LogicNode JSON shape.
func LogicNodeFromValue(v *jsonvalue.Value) (LogicNode, error) {
	if v.Kind() != jsonvalue.KindObject {
		return LogicNode{}, fmt.Errorf("graph: expected object for LogicNode, got %s", v.Kind())
	}
	n := LogicNode{
		ID:         v.ObjectGet("id").StringValue(),
		Name:       v.ObjectGet("name").StringValue(),
		CustomKind: v.ObjectGet("custom_kind").StringValue(),
	}
	if kind := v.ObjectGet("kind"); kind != nil && kind.Kind() == jsonvalue.KindString {
		n.Kind = BuiltinLogicNodeKind(kind.StringValue())
		n.HasKind = true
	}
	if props := v.ObjectGet("props"); props != nil {
		n.Props = jsonvalue.Clone(props)
	}
	if inputs := v.ObjectGet("inputs"); inputs != nil {
		for _, iv := range inputs.ArrayElements() {
			n.Inputs = append(n.Inputs, iv.StringValue())
		}
	}
	if outputs := v.ObjectGet("outputs"); outputs != nil {
		for _, ov := range outputs.ArrayElements() {
			n.Outputs = append(n.Outputs, ov.StringValue())
		}
	}
	if meta := v.ObjectGet("metadata"); meta != nil {
		n.Metadata = jsonvalue.Clone(meta)
	}
	return n, nil
}

// LogicEdgeFromValue parses the LogicEdge JSON shape.
func LogicEdgeFromValue(v *jsonvalue.Value) (LogicEdge, error) {
	if v.Kind() != jsonvalue.KindObject {
		return LogicEdge{}, fmt.Errorf("graph: expected object for LogicEdge, got %s", v.Kind())
	}
	e := LogicEdge{
		FromNode: v.ObjectGet("from_node").StringValue(),
		ToNode:   v.ObjectGet("to_node").StringValue(),
	}
	if p := v.ObjectGet("from_port"); p != nil && p.Kind() == jsonvalue.KindString {
		e.FromPort = p.StringValue()
		e.HasFrom = true
	}
	if p := v.ObjectGet("to_port"); p != nil && p.Kind() == jsonvalue.KindString {
		e.ToPort = p.StringValue()
		e.HasTo = true
	}
	if meta := v.ObjectGet("metadata"); meta != nil {
		e.Metadata = jsonvalue.Clone(meta)
	}
	return e, nil
}
