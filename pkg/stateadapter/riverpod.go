package stateadapter

import (
	"strings"
	"unicode"

	"github.com/forgekit/forge-engine/pkg/graph"
)

// RiverpodAdapter resolves Riverpod provider bindings detected by the
// source parser.
type RiverpodAdapter struct{}

// NewRiverpodAdapter constructs a RiverpodAdapter.
func NewRiverpodAdapter() RiverpodAdapter {
	return RiverpodAdapter{}
}

func (RiverpodAdapter) Name() string { return "riverpod" }

// CanResolve accepts provider-target bindings whose reference is made of
// alphanumerics, '_', and '.', and ends in "Provider" -- narrow enough to
// avoid matching arbitrary provider-like strings.
func (RiverpodAdapter) CanResolve(binding graph.BindingReference) bool {
	if binding.Target != graph.BindingTargetProvider {
		return false
	}
	reference := strings.TrimSpace(binding.Reference)
	if reference == "" {
		return false
	}
	for _, ch := range reference {
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '_' && ch != '.' {
			return false
		}
	}
	return strings.HasSuffix(reference, "Provider")
}

func (a RiverpodAdapter) Resolve(binding graph.BindingReference) (ResolvedBinding, bool) {
	if !a.CanResolve(binding) {
		return ResolvedBinding{}, false
	}
	providerID := binding.ProviderID
	if providerID == "" {
		providerID = binding.Reference
	}
	return ResolvedBinding{
		ProviderID: providerID,
		Path:       binding.Path,
		TypeHint:   binding.TypeHint,
		Adapter:    a.Name(),
	}, true
}
