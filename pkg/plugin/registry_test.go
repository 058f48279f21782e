package plugin_test

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/forgekit/forge-engine/pkg/plugin"
)

const sampleRegistry = `
- id: inspector.v1
  name: "AI Inspector"
  entry: "./plugins/inspector/inspector.wasm"
  inputSchema: "schemas/inspector_input.json"
  outputSchema: "schemas/inspector_output.json"
  runtimes: ["local", "cloud"]
  description: "Analyzes widget tree for potential issues"
- id: layout.optimize.v1
  name: "Layout Optimizer"
  entry: "./plugins/layout/layout.wasm"
  inputSchema: "schemas/layout_input.json"
  outputSchema: "schemas/layout_output.json"
  runtimes:
    - "local"
`

func TestFromYAMLString_ParsesSampleRegistry(t *testing.T) {
	registry, err := plugin.FromYAMLString(sampleRegistry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(registry.Plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(registry.Plugins))
	}
	inspector := registry.Plugins[0]
	if inspector.ID != "inspector.v1" {
		t.Fatalf("unexpected id: %q", inspector.ID)
	}
	if inspector.Entry != "./plugins/inspector/inspector.wasm" {
		t.Fatalf("unexpected entry: %q", inspector.Entry)
	}
	if len(inspector.Runtimes) != 2 || inspector.Runtimes[0] != "local" || inspector.Runtimes[1] != "cloud" {
		t.Fatalf("unexpected runtimes: %v", inspector.Runtimes)
	}
	if inspector.Description != "Analyzes widget tree for potential issues" {
		t.Fatalf("unexpected description: %q", inspector.Description)
	}
}

func TestFromYAMLString_RejectsDuplicateIDs(t *testing.T) {
	doc := `
- id: duplicate
  name: A
  entry: a
  inputSchema: a.json
  outputSchema: b.json
  runtimes: ["local"]
- id: duplicate
  name: B
  entry: b
  inputSchema: c.json
  outputSchema: d.json
  runtimes: ["cloud"]
`
	_, err := plugin.FromYAMLString(doc)
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestFromYAMLString_RejectsMissingFields(t *testing.T) {
	doc := `
- id: missing
  entry: only
  runtimes: ["local"]
`
	_, err := plugin.FromYAMLString(doc)
	if err == nil {
		t.Fatalf("expected missing-field error")
	}
}

func TestFromYAMLString_RejectsEmptyRegistry(t *testing.T) {
	_, err := plugin.FromYAMLString("[]")
	if err == nil {
		t.Fatalf("expected empty-registry error")
	}
}

func TestValidateSignatures_AcceptsMatchingDigest(t *testing.T) {
	dir := t.TempDir()
	pluginPath := filepath.Join(dir, "plugin.wasm")
	if err := os.WriteFile(pluginPath, []byte("plugin-bytes"), 0o644); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	digest := sha256.Sum256([]byte("plugin-bytes"))
	expected := hex.EncodeToString(digest[:])

	doc := "- id: sig\n  name: Sig\n  entry: " + pluginPath +
		"\n  inputSchema: a.json\n  outputSchema: b.json\n  runtimes: [\"local\"]\n  signature: \"sha256:" + expected + "\"\n"

	registry, err := plugin.FromYAMLString(doc)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := registry.ValidateSignatures(dir); err != nil {
		t.Fatalf("expected signature to validate, got: %v", err)
	}
}

func TestValidateSignatures_ReportsMismatch(t *testing.T) {
	dir := t.TempDir()
	pluginPath := filepath.Join(dir, "plugin.wasm")
	if err := os.WriteFile(pluginPath, []byte("plugin-bytes"), 0o644); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	doc := "- id: sig\n  name: Sig\n  entry: " + pluginPath +
		"\n  inputSchema: a.json\n  outputSchema: b.json\n  runtimes: [\"local\"]\n  signature: \"sha256:deadbeef\"\n"

	registry, err := plugin.FromYAMLString(doc)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := registry.ValidateSignatures(dir); err == nil {
		t.Fatalf("expected signature mismatch error")
	}
}
