// Package merge implements the three-way merge engine for ScreenGraphs: a
// structural diff3 over widget trees that prefers the right-hand side on
// irreconcilable conflicts while recording every conflict it resolves, per
// spec section 4.3.
package merge

import (
	"fmt"
	"sort"

	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/jsonvalue"
	"github.com/samber/lo"
)

// MergeConflict records one irreconcilable three-way difference. A nil
// field means that side had no value at this path.
type MergeConflict struct {
	Path  string
	Base  *jsonvalue.Value
	Left  *jsonvalue.Value
	Right *jsonvalue.Value
}

// MergeOutcome is the merged screen plus every conflict encountered while
// producing it.
type MergeOutcome struct {
	Screen    graph.ScreenGraph
	Conflicts []MergeConflict
}

// MergeScreenGraphs merges left and right against their common ancestor
// base, taking the right-hand side whenever a conflict cannot be resolved
// structurally.
func MergeScreenGraphs(base, left, right graph.ScreenGraph) MergeOutcome {
	var conflicts []MergeConflict

	mergedID := mergeScalarString("screen.id", base.ID, left.ID, right.ID, &conflicts)

	// This additional check intentionally duplicates merge_scalar's own
	// conflict bookkeeping: a one-sided id change still gets reported here
	// even though merge_scalar resolved it without recording one itself.
	if left.ID != right.ID && (left.ID == base.ID || right.ID == base.ID) {
		recordConflict("screen.id", jsonvalue.NewString(base.ID), jsonvalue.NewString(left.ID), jsonvalue.NewString(right.ID), &conflicts)
	}

	mergedRoot := mergeWidgetNode("screen.root", base.Root, left.Root, right.Root, &conflicts)

	return MergeOutcome{
		Screen:    graph.ScreenGraph{ID: mergedID, Root: mergedRoot},
		Conflicts: conflicts,
	}
}

func mergeWidgetNode(path string, base, left, right graph.WidgetNode, conflicts *[]MergeConflict) graph.WidgetNode {
	widget := mergeScalarString(path+".widget", base.Widget, left.Widget, right.Widget, conflicts)
	props := mergeProps(path+".props", base.Props, left.Props, right.Props, conflicts)
	children := mergeChildren(path+".children", base.Children, left.Children, right.Children, conflicts)
	return graph.WidgetNode{Widget: widget, Props: props, Children: children}
}

func mergeProps(path string, base, left, right map[string]graph.PropValue, conflicts *[]MergeConflict) map[string]graph.PropValue {
	keys := lo.Union(lo.Keys(base), lo.Keys(left), lo.Keys(right))
	sort.Strings(keys)
	merged := make(map[string]graph.PropValue)

	for _, key := range keys {
		baseVal, hasBase := base[key]
		leftVal, hasLeft := left[key]
		rightVal, hasRight := right[key]

		value, ok := mergeOptionalProp(fmt.Sprintf("%s.%s", path, key),
			optionalProp(baseVal, hasBase), optionalProp(leftVal, hasLeft), optionalProp(rightVal, hasRight), conflicts)
		if ok {
			merged[key] = value
		}
	}
	return merged
}

type optionalPropValue struct {
	value   graph.PropValue
	present bool
}

func optionalProp(v graph.PropValue, present bool) optionalPropValue {
	return optionalPropValue{value: v, present: present}
}

func mergeChildren(path string, base, left, right []graph.WidgetNode, conflicts *[]MergeConflict) []graph.WidgetNode {
	if widgetSlicesEqual(left, right) {
		return cloneWidgetSlice(left)
	}
	if widgetSlicesEqual(left, base) {
		return cloneWidgetSlice(right)
	}
	if widgetSlicesEqual(right, base) {
		return cloneWidgetSlice(left)
	}

	maxLen := len(base)
	if len(left) > maxLen {
		maxLen = len(left)
	}
	if len(right) > maxLen {
		maxLen = len(right)
	}

	merged := make([]graph.WidgetNode, 0, maxLen)
	for idx := 0; idx < maxLen; idx++ {
		childPath := fmt.Sprintf("%s[%d]", path, idx)
		baseChild, hasBase := widgetAt(base, idx)
		leftChild, hasLeft := widgetAt(left, idx)
		rightChild, hasRight := widgetAt(right, idx)

		switch {
		case hasBase && hasLeft && hasRight:
			merged = append(merged, mergeWidgetNode(childPath, baseChild, leftChild, rightChild, conflicts))
		case !hasBase && hasLeft && hasRight:
			if graph.Equal(leftChild, rightChild) {
				merged = append(merged, leftChild.Clone())
			} else {
				recordConflictNode(childPath, nil, &leftChild, &rightChild, conflicts)
				merged = append(merged, rightChild.Clone())
			}
		case hasBase && hasLeft && !hasRight:
			recordConflictNode(childPath, &baseChild, &leftChild, nil, conflicts)
			// the right side deleted this child; honor the deletion by
			// skipping it in the merged result.
		case hasBase && !hasLeft && hasRight:
			recordConflictNode(childPath, &baseChild, nil, &rightChild, conflicts)
			merged = append(merged, rightChild.Clone())
		case !hasBase && hasLeft && !hasRight:
			merged = append(merged, leftChild.Clone())
		case !hasBase && !hasLeft && hasRight:
			merged = append(merged, rightChild.Clone())
		default:
			// (Some, None, None) or (None, None, None): node absent from the merge.
		}
	}
	return merged
}

func widgetAt(nodes []graph.WidgetNode, idx int) (graph.WidgetNode, bool) {
	if idx < 0 || idx >= len(nodes) {
		return graph.WidgetNode{}, false
	}
	return nodes[idx], true
}

func widgetSlicesEqual(a, b []graph.WidgetNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !graph.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func cloneWidgetSlice(nodes []graph.WidgetNode) []graph.WidgetNode {
	out := make([]graph.WidgetNode, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

func mergeScalarString(path string, base, left, right string, conflicts *[]MergeConflict) string {
	if left == right {
		return left
	}
	if left == base {
		return right
	}
	if right == base {
		return left
	}
	recordConflict(path, jsonvalue.NewString(base), jsonvalue.NewString(left), jsonvalue.NewString(right), conflicts)
	return right
}

func mergeOptionalProp(path string, base, left, right optionalPropValue, conflicts *[]MergeConflict) (graph.PropValue, bool) {
	if propOptEqual(left, right) {
		return left.value, left.present
	}
	if propOptEqual(left, base) {
		return right.value, right.present
	}
	if propOptEqual(right, base) {
		return left.value, left.present
	}

	if !left.present && !right.present {
		return graph.PropValue{}, false
	}

	recordConflictProp(path, base, left, right, conflicts)
	return right.value, right.present
}

func propOptEqual(a, b optionalPropValue) bool {
	if a.present != b.present {
		return false
	}
	if !a.present {
		return true
	}
	return graph.PropEqual(a.value, b.value)
}

// ToValue lowers a MergeOutcome into {"screen","conflicts","total_conflicts"},
// the shape both the merge CLI subcommand and the analyzer report embed.
func (o MergeOutcome) ToValue() *jsonvalue.Value {
	out := jsonvalue.NewObject()
	out.ObjectSet("screen", o.Screen.ToValue())

	conflicts := jsonvalue.NewArray()
	for _, c := range o.Conflicts {
		conflicts.ArrayAppend(c.ToValue())
	}
	out.ObjectSet("conflicts", conflicts)
	out.ObjectSet("total_conflicts", jsonvalue.NewInt64(int64(len(o.Conflicts))))
	return out
}

// ToValue lowers a MergeConflict into {"path","base","left","right"}, with
// nil sides encoded as JSON null.
func (c MergeConflict) ToValue() *jsonvalue.Value {
	out := jsonvalue.NewObject()
	out.ObjectSet("path", jsonvalue.NewString(c.Path))
	out.ObjectSet("base", valueOrNull(c.Base))
	out.ObjectSet("left", valueOrNull(c.Left))
	out.ObjectSet("right", valueOrNull(c.Right))
	return out
}

func valueOrNull(v *jsonvalue.Value) *jsonvalue.Value {
	if v == nil {
		return jsonvalue.NewNull()
	}
	return v
}

func recordConflict(path string, base, left, right *jsonvalue.Value, conflicts *[]MergeConflict) {
	*conflicts = append(*conflicts, MergeConflict{Path: path, Base: base, Left: left, Right: right})
}

func recordConflictNode(path string, base, left, right *graph.WidgetNode, conflicts *[]MergeConflict) {
	*conflicts = append(*conflicts, MergeConflict{
		Path:  path,
		Base:  widgetNodeToValuePtr(base),
		Left:  widgetNodeToValuePtr(left),
		Right: widgetNodeToValuePtr(right),
	})
}

func widgetNodeToValuePtr(n *graph.WidgetNode) *jsonvalue.Value {
	if n == nil {
		return nil
	}
	v := n.ToValue()
	return v
}

func recordConflictProp(path string, base, left, right optionalPropValue, conflicts *[]MergeConflict) {
	*conflicts = append(*conflicts, MergeConflict{
		Path:  path,
		Base:  propOptToValuePtr(base),
		Left:  propOptToValuePtr(left),
		Right: propOptToValuePtr(right),
	})
}

func propOptToValuePtr(p optionalPropValue) *jsonvalue.Value {
	if !p.present {
		return nil
	}
	return p.value.ToValue()
}
