package graph

import (
	"testing"

	"github.com/forgekit/forge-engine/pkg/jsonvalue"
)

func sampleScreen() ScreenGraph {
	return ScreenGraph{
		ID: "SimpleScreen",
		Root: WidgetNode{
			Widget: "Column",
			Props:  map[string]PropValue{},
			Children: []WidgetNode{
				{Widget: "Text", Props: map[string]PropValue{"data": NewLiteralProp(jsonvalue.NewString("One"))}},
				{Widget: "Text", Props: map[string]PropValue{"data": NewLiteralProp(jsonvalue.NewString("Two"))}},
			},
		},
	}
}

func TestScreenGraph_ToValueRoundTripsThroughFromValue(t *testing.T) {
	screen := sampleScreen()
	value := screen.ToValue()

	decoded, err := ScreenGraphFromValue(value)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(decoded.Root, screen.Root) || decoded.ID != screen.ID {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", decoded, screen)
	}
}

func TestScreenGraph_ToValueOmitsRedundantNameField(t *testing.T) {
	value := sampleScreen().ToValue()
	if value.ObjectGet("name") != nil {
		t.Fatal("expected no redundant 'name' field duplicating 'id'")
	}
	if value.ObjectGet("id").StringValue() != "SimpleScreen" {
		t.Fatal("expected id to be preserved")
	}
}

func TestWidgetNode_EmptyPropsAndChildrenSerializeAsEmptyCollections(t *testing.T) {
	node := WidgetNode{Widget: "Spacer", Props: map[string]PropValue{}}
	value := node.ToValue()

	props := value.ObjectGet("props")
	if props.Kind() != jsonvalue.KindObject || len(props.ObjectKeys()) != 0 {
		t.Fatalf("expected empty object for props, got %v", props)
	}
	children := value.ObjectGet("children")
	if children.Kind() != jsonvalue.KindArray || children.ArrayLen() != 0 {
		t.Fatalf("expected empty array for children, got %v", children)
	}
}

func TestBindingReference_ToValueUsesProviderIdKey(t *testing.T) {
	binding := BindingReference{
		Target:     BindingTargetProvider,
		Reference:  "balanceProvider",
		ProviderID: "balanceProvider",
		Path:       "value",
	}
	value := binding.ToValue()
	if value.ObjectGet("provider_id").StringValue() != "balanceProvider" {
		t.Fatal("expected provider_id key per spec.md section 6, not the Rust source's 'provider' key")
	}
	if value.ObjectGet("provider") != nil {
		t.Fatal("did not expect a 'provider' key")
	}
}

func TestBindingReference_ValidEnforcesProviderInvariants(t *testing.T) {
	valid := BindingReference{Target: BindingTargetProvider, Reference: "balanceProvider", ProviderID: "balanceProvider", Path: "value"}
	if !valid.Valid() {
		t.Fatal("expected valid binding to pass")
	}

	mismatched := BindingReference{Target: BindingTargetProvider, Reference: "a", ProviderID: "b"}
	if mismatched.Valid() {
		t.Fatal("expected mismatched provider_id/reference to fail")
	}

	badPath := BindingReference{Target: BindingTargetProvider, Reference: "a", Path: "x..y"}
	if badPath.Valid() {
		t.Fatal("expected empty path segment to fail")
	}
}

func TestWidgetNode_CloneIsIndependent(t *testing.T) {
	original := sampleScreen().Root
	clone := original.Clone()
	clone.Children[0].Props["data"] = NewLiteralProp(jsonvalue.NewString("Changed"))

	if Equal(original, clone) {
		t.Fatal("expected clone mutation not to affect original")
	}
}
