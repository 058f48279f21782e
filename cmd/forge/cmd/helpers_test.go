package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/jsonvalue"
	"github.com/forgekit/forge-engine/pkg/logicflow"
)

func TestFindScreen_LocatesByID(t *testing.T) {
	screens := []graph.ScreenGraph{{ID: "A"}, {ID: "B"}}
	screen, ok := findScreen(screens, "B")
	if !ok || screen.ID != "B" {
		t.Fatalf("expected to find screen B, got %+v ok=%v", screen, ok)
	}
	if _, ok := findScreen(screens, "missing"); ok {
		t.Fatalf("expected not to find missing screen")
	}
}

func TestResolveRenderer_KnownTargets(t *testing.T) {
	for _, target := range []string{"flutter", "react", "angular"} {
		renderer, _, err := resolveRenderer(target, "jsx")
		if err != nil {
			t.Fatalf("unexpected error for target %q: %v", target, err)
		}
		if renderer == nil {
			t.Fatalf("expected non-nil renderer for target %q", target)
		}
	}
}

func TestResolveRenderer_RejectsUnknownTarget(t *testing.T) {
	if _, _, err := resolveRenderer("vue", "jsx"); err == nil {
		t.Fatalf("expected error for unknown target")
	}
}

func TestLoadSeedProviders_ParsesObjectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.json")
	if err := os.WriteFile(path, []byte(`{"counter":{"value":1}}`), 0o644); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	providers, err := loadSeedProviders(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	counter, ok := providers["counter"]
	if !ok {
		t.Fatalf("expected counter provider to be present")
	}
	if counter.ObjectGet("value").NumberValue() != 1 {
		t.Fatalf("unexpected counter value: %+v", counter)
	}
}

func TestLoadSeedProviders_EmptyPathReturnsNil(t *testing.T) {
	providers, err := loadSeedProviders("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if providers != nil {
		t.Fatalf("expected nil providers for empty path, got %+v", providers)
	}
}

func TestEvalResultToValue_IncludesCoreFields(t *testing.T) {
	result := logicflow.EvalResult{
		RunID:       "run-1",
		Success:     true,
		ReturnValue: jsonvalue.NewInt64(42),
		Diagnostics: []string{"note"},
	}
	value := evalResultToValue(result)
	if value.ObjectGet("run_id").StringValue() != "run-1" {
		t.Fatalf("unexpected run_id: %+v", value.ObjectGet("run_id"))
	}
	if !value.ObjectGet("success").BoolValue() {
		t.Fatalf("expected success=true")
	}
	if value.ObjectGet("return_value").Int64Value() != 42 {
		t.Fatalf("unexpected return_value: %+v", value.ObjectGet("return_value"))
	}
	if value.ObjectGet("diagnostics").ArrayLen() != 1 {
		t.Fatalf("expected one diagnostic, got %+v", value.ObjectGet("diagnostics"))
	}
}
