// Package stateadapter resolves BindingReferences recovered by the source
// parser into concrete state-backend entries, per spec section 4.2's
// binding-resolution contract.
package stateadapter

import "github.com/forgekit/forge-engine/pkg/graph"

// StateAdapter resolves state bindings that appear inside widget properties.
type StateAdapter interface {
	// Name is the adapter's canonical identifier (e.g. "riverpod").
	Name() string

	// CanResolve reports whether this adapter understands binding.
	CanResolve(binding graph.BindingReference) bool

	// Resolve resolves binding into a ResolvedBinding, or ok=false when this
	// adapter cannot resolve it.
	Resolve(binding graph.BindingReference) (ResolvedBinding, bool)
}

// ResolvedBinding is the concrete binding information an adapter produces.
type ResolvedBinding struct {
	ProviderID string
	Path       string // empty means absent
	TypeHint   string // empty means absent
	Adapter    string
}
