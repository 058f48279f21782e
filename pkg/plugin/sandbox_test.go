package plugin_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/forgekit/forge-engine/pkg/plugin"
)

func makeDescriptor(entry string) plugin.Descriptor {
	return plugin.Descriptor{
		ID:           "plugin",
		Name:         "Plugin",
		Entry:        entry,
		InputSchema:  "in.json",
		OutputSchema: "out.json",
		Runtimes:     []string{"local"},
	}
}

func TestSandbox_ResolvesRelativeFileInsideSandbox(t *testing.T) {
	base := filepath.Join(t.TempDir(), "sandbox")
	if err := os.MkdirAll(filepath.Join(base, "plugins"), 0o755); err != nil {
		t.Fatalf("unexpected mkdir error: %v", err)
	}
	pluginFile := filepath.Join(base, "plugins", "plugin.wasm")
	if err := os.WriteFile(pluginFile, []byte("wasm"), 0o644); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	sandbox, err := plugin.NewSandbox(base)
	if err != nil {
		t.Fatalf("unexpected sandbox error: %v", err)
	}
	resolved, err := sandbox.ResolveEntry(makeDescriptor("plugins/plugin.wasm"))
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	expected, _ := filepath.EvalSymlinks(pluginFile)
	expected, _ = filepath.Abs(expected)
	if resolved != expected {
		t.Fatalf("expected %q, got %q", expected, resolved)
	}
}

func TestSandbox_RejectsMissingFiles(t *testing.T) {
	base := filepath.Join(t.TempDir(), "sandbox")
	if err := os.MkdirAll(base, 0o755); err != nil {
		t.Fatalf("unexpected mkdir error: %v", err)
	}

	sandbox, err := plugin.NewSandbox(base)
	if err != nil {
		t.Fatalf("unexpected sandbox error: %v", err)
	}
	if _, err := sandbox.ResolveEntry(makeDescriptor("plugins/missing.wasm")); err == nil {
		t.Fatalf("expected missing-entry error")
	}
}

func TestSandbox_RejectsEscapeOutsideSandbox(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "sandbox")
	outside := filepath.Join(root, "outside")
	if err := os.MkdirAll(base, 0o755); err != nil {
		t.Fatalf("unexpected mkdir error: %v", err)
	}
	if err := os.MkdirAll(outside, 0o755); err != nil {
		t.Fatalf("unexpected mkdir error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(outside, "plugin.wasm"), []byte("wasm"), 0o644); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	sandbox, err := plugin.NewSandbox(base)
	if err != nil {
		t.Fatalf("unexpected sandbox error: %v", err)
	}
	if _, err := sandbox.ResolveEntry(makeDescriptor("../outside/plugin.wasm")); err == nil {
		t.Fatalf("expected entry-outside-sandbox error")
	}
}

func TestSandbox_AbsolutePathsRequireExplicitOptIn(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "sandbox")
	if err := os.MkdirAll(base, 0o755); err != nil {
		t.Fatalf("unexpected mkdir error: %v", err)
	}
	absolutePlugin := filepath.Join(root, "plugin.wasm")
	if err := os.WriteFile(absolutePlugin, []byte("wasm"), 0o644); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	sandbox, err := plugin.NewSandbox(base)
	if err != nil {
		t.Fatalf("unexpected sandbox error: %v", err)
	}
	if _, err := sandbox.ResolveEntry(makeDescriptor(absolutePlugin)); err == nil {
		t.Fatalf("expected absolute-path-disallowed error")
	}

	permissive, err := plugin.NewSandboxWithOptions(base, true)
	if err != nil {
		t.Fatalf("unexpected sandbox error: %v", err)
	}
	resolved, err := permissive.ResolveEntry(makeDescriptor(absolutePlugin))
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	expected, _ := filepath.EvalSymlinks(absolutePlugin)
	expected, _ = filepath.Abs(expected)
	if resolved != expected {
		t.Fatalf("expected %q, got %q", expected, resolved)
	}
}

func TestSandbox_BaseDirectoryMustExist(t *testing.T) {
	base := filepath.Join(t.TempDir(), "missing")
	if _, err := plugin.NewSandbox(base); err == nil {
		t.Fatalf("expected base-directory-missing error")
	}
}
