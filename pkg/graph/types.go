// Package graph defines the Forge data model: ScreenGraph, WidgetNode,
// PropValue, BindingReference, and the LogicGraph family, along with their
// canonical JSON encoding (spec section 6, "External Interfaces").
package graph

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/forgekit/forge-engine/pkg/jsonvalue"
)

// BindingTarget is the reactive source a BindingReference points at.
type BindingTarget string

const (
	BindingTargetProvider BindingTarget = "provider"
	BindingTargetWidget   BindingTarget = "widget"
	BindingTargetLogic    BindingTarget = "logic"
	BindingTargetExternal BindingTarget = "external"
)

// BindingReference is a reactive reference recovered by the source parser or
// authored directly in a schema document.
type BindingReference struct {
	Target     BindingTarget
	Reference  string
	ProviderID string // empty means absent
	Path       string // empty means absent
	TypeHint   string // empty means absent
}

var providerReferencePattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)
var pathSegmentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Valid reports whether the binding upholds spec section 3's invariant:
// when Target is provider, Reference matches [A-Za-z0-9_.]+, ProviderID
// equals Reference when that holds, and Path (if present) is a dot-joined
// sequence of identifiers with no empty segment.
func (b BindingReference) Valid() bool {
	if b.Target == BindingTargetProvider {
		if !providerReferencePattern.MatchString(b.Reference) {
			return false
		}
		if b.ProviderID != "" && b.ProviderID != b.Reference {
			return false
		}
	}
	if b.Path != "" {
		for _, seg := range strings.Split(b.Path, ".") {
			if !pathSegmentPattern.MatchString(seg) {
				return false
			}
		}
	}
	return true
}

// PropKind discriminates the PropValue tagged union.
type PropKind uint8

const (
	PropLiteral PropKind = iota
	PropExpression
	PropBinding
)

// PropValue is a tagged variant: a literal JSON value, an opaque expression
// fragment preserved verbatim, or a reactive binding.
type PropValue struct {
	Kind       PropKind
	Literal    *jsonvalue.Value
	Expression string
	Binding    BindingReference
}

// NewLiteralProp builds a literal PropValue.
func NewLiteralProp(v *jsonvalue.Value) PropValue {
	return PropValue{Kind: PropLiteral, Literal: v}
}

// NewExpressionProp builds an expression PropValue.
func NewExpressionProp(expr string) PropValue {
	return PropValue{Kind: PropExpression, Expression: expr}
}

// NewBindingProp builds a binding PropValue.
func NewBindingProp(b BindingReference) PropValue {
	return PropValue{Kind: PropBinding, Binding: b}
}

// WidgetNode is one widget with properties and ordered children. Props keys
// are kept sorted on read so every consumer (renderer, schema writer,
// merge engine) observes the same deterministic order.
type WidgetNode struct {
	Widget   string
	Props    map[string]PropValue
	Children []WidgetNode
}

// PropKeys returns the node's prop keys in lexicographic byte order.
func (w WidgetNode) PropKeys() []string {
	keys := make([]string, 0, len(w.Props))
	for k := range w.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the node, used by the merge engine to avoid
// aliasing inputs into the freshly allocated merged tree.
func (w WidgetNode) Clone() WidgetNode {
	props := make(map[string]PropValue, len(w.Props))
	for k, v := range w.Props {
		cp := v
		if v.Literal != nil {
			cp.Literal = jsonvalue.Clone(v.Literal)
		}
		props[k] = cp
	}
	children := make([]WidgetNode, len(w.Children))
	for i, c := range w.Children {
		children[i] = c.Clone()
	}
	return WidgetNode{Widget: w.Widget, Props: props, Children: children}
}

// Equal reports whether two widget nodes are structurally identical,
// underpinning the merge engine's scalar-equality checks.
func Equal(a, b WidgetNode) bool {
	if a.Widget != b.Widget {
		return false
	}
	if len(a.Props) != len(b.Props) {
		return false
	}
	for k, av := range a.Props {
		bv, ok := b.Props[k]
		if !ok || !PropEqual(av, bv) {
			return false
		}
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// PropEqual reports structural equality between two PropValues.
func PropEqual(a, b PropValue) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case PropLiteral:
		return jsonvalue.Equal(a.Literal, b.Literal)
	case PropExpression:
		return a.Expression == b.Expression
	case PropBinding:
		return a.Binding == b.Binding
	default:
		return false
	}
}

// ScreenGraph is a discovered stateless screen: an id mirroring the class
// name, and its recovered widget tree.
type ScreenGraph struct {
	ID   string
	Root WidgetNode
}

// Clone returns a deep copy of the screen graph.
func (s ScreenGraph) Clone() ScreenGraph {
	return ScreenGraph{ID: s.ID, Root: s.Root.Clone()}
}

// BuiltinLogicNodeKind enumerates the logic node kinds the simulator
// natively understands.
type BuiltinLogicNodeKind string

const (
	KindEventEntry     BuiltinLogicNodeKind = "eventEntry"
	KindActionSetState BuiltinLogicNodeKind = "actionSetState"
	KindActionEmitEvt  BuiltinLogicNodeKind = "actionEmitEvent"
	KindCondition      BuiltinLogicNodeKind = "condition"
	KindDelay          BuiltinLogicNodeKind = "delay"
	KindHTTPRequest    BuiltinLogicNodeKind = "httpRequest"
	KindTransform      BuiltinLogicNodeKind = "transform"
	KindReturn         BuiltinLogicNodeKind = "return"
)

// LogicNode is one node of computation in a Flow.
type LogicNode struct {
	ID         string
	Name       string // empty means absent
	Kind       BuiltinLogicNodeKind
	HasKind    bool
	CustomKind string // empty means absent
	Props      *jsonvalue.Value
	Inputs     []string
	Outputs    []string
	Metadata   *jsonvalue.Value
}

// LogicEdge connects two logic nodes via named ports; an absent FromPort
// matches any output port during dispatch.
type LogicEdge struct {
	FromNode string
	FromPort string // empty means "matches any port"
	HasFrom  bool
	ToNode   string
	ToPort   string
	HasTo    bool
	Metadata *jsonvalue.Value
}

// Flow is a directed graph of LogicNodes connected by LogicEdges.
type Flow struct {
	ID         string
	Name       string
	Nodes      []LogicNode
	Edges      []LogicEdge
	EntryNodes []string
	Metadata   *jsonvalue.Value
}

// LogicGraph is a collection of Flows plus optional metadata.
type LogicGraph struct {
	Flows    []Flow
	Metadata *jsonvalue.Value
}

// FindFlow returns the flow with the given id, or ok=false.
func (g LogicGraph) FindFlow(id string) (Flow, bool) {
	for _, f := range g.Flows {
		if f.ID == id {
			return f, true
		}
	}
	return Flow{}, false
}

// FindNode returns the node with the given id within the flow, or ok=false.
func (f Flow) FindNode(id string) (LogicNode, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return LogicNode{}, false
}

// String implements fmt.Stringer for debugging/test failure output.
func (s ScreenGraph) String() string {
	return fmt.Sprintf("ScreenGraph{id=%q, root=%s}", s.ID, s.Root.Widget)
}
