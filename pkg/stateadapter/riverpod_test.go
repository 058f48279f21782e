package stateadapter_test

import (
	"testing"

	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/stateadapter"
)

func makeBinding(reference, path string) graph.BindingReference {
	return graph.BindingReference{
		Target:     graph.BindingTargetProvider,
		Reference:  reference,
		ProviderID: reference,
		Path:       path,
	}
}

func TestRiverpodAdapter_MatchesProviderSuffix(t *testing.T) {
	adapter := stateadapter.NewRiverpodAdapter()
	binding := makeBinding("balanceProvider", "")
	if !adapter.CanResolve(binding) {
		t.Fatalf("expected CanResolve to accept %q", binding.Reference)
	}
	resolved, ok := adapter.Resolve(binding)
	if !ok {
		t.Fatalf("expected Resolve to succeed")
	}
	if resolved.ProviderID != "balanceProvider" || resolved.Path != "" || resolved.TypeHint != "" || resolved.Adapter != "riverpod" {
		t.Fatalf("unexpected resolved binding: %+v", resolved)
	}
}

func TestRiverpodAdapter_RejectsNonProviderTarget(t *testing.T) {
	adapter := stateadapter.NewRiverpodAdapter()
	binding := makeBinding("balanceProvider", "")
	binding.Target = graph.BindingTargetWidget
	if adapter.CanResolve(binding) {
		t.Fatalf("expected CanResolve to reject a widget-target binding")
	}
	if _, ok := adapter.Resolve(binding); ok {
		t.Fatalf("expected Resolve to fail for a widget-target binding")
	}
}

func TestRiverpodAdapter_SupportsPaths(t *testing.T) {
	adapter := stateadapter.NewRiverpodAdapter()
	binding := makeBinding("userProvider", "state.name")
	binding.TypeHint = "User"
	resolved, ok := adapter.Resolve(binding)
	if !ok {
		t.Fatalf("expected Resolve to succeed")
	}
	if resolved.Path != "state.name" {
		t.Fatalf("expected path state.name, got %q", resolved.Path)
	}
	if resolved.TypeHint != "User" {
		t.Fatalf("expected type hint User, got %q", resolved.TypeHint)
	}
}

func TestRiverpodAdapter_IgnoresMalformedIdentifiers(t *testing.T) {
	adapter := stateadapter.NewRiverpodAdapter()
	binding := makeBinding("invalid-provider", "")
	if adapter.CanResolve(binding) {
		t.Fatalf("expected CanResolve to reject a hyphenated identifier")
	}
}
