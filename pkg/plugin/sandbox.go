package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sandbox resolves plugin entry paths against a base directory, rejecting
// entries that escape it unless absolute paths are explicitly allowed.
type Sandbox struct {
	baseDir            string
	allowAbsolutePaths bool
}

// NewSandbox constructs a Sandbox rooted at baseDir, disallowing absolute
// entry paths.
func NewSandbox(baseDir string) (Sandbox, error) {
	return NewSandboxWithOptions(baseDir, false)
}

// NewSandboxWithOptions constructs a Sandbox rooted at baseDir, optionally
// allowing plugins to declare absolute entry paths.
func NewSandboxWithOptions(baseDir string, allowAbsolutePaths bool) (Sandbox, error) {
	info, err := os.Stat(baseDir)
	if errors.Is(err, os.ErrNotExist) {
		return Sandbox{}, fmt.Errorf("plugin: sandbox base directory not found: %s", baseDir)
	}
	if err != nil {
		return Sandbox{}, fmt.Errorf("plugin: failed to access sandbox base directory %s: %w", baseDir, err)
	}
	if !info.IsDir() {
		return Sandbox{}, fmt.Errorf("plugin: sandbox base directory is not a directory: %s", baseDir)
	}

	canonical, err := filepath.EvalSymlinks(baseDir)
	if err != nil {
		return Sandbox{}, fmt.Errorf("plugin: failed to access sandbox base directory %s: %w", baseDir, err)
	}
	canonical, err = filepath.Abs(canonical)
	if err != nil {
		return Sandbox{}, fmt.Errorf("plugin: failed to access sandbox base directory %s: %w", baseDir, err)
	}

	return Sandbox{baseDir: canonical, allowAbsolutePaths: allowAbsolutePaths}, nil
}

// BaseDir returns the sandbox's canonical base directory.
func (s Sandbox) BaseDir() string {
	return s.baseDir
}

// ResolveEntry resolves a plugin's entry path within the sandbox, ensuring
// it exists, is a regular file, and (unless absolute paths are allowed)
// stays within the base directory.
func (s Sandbox) ResolveEntry(p Descriptor) (string, error) {
	var candidate string
	if filepath.IsAbs(p.Entry) {
		if !s.allowAbsolutePaths {
			return "", fmt.Errorf("plugin: plugin %q entry path uses absolute path but sandbox forbids it: %s", p.ID, p.Entry)
		}
		candidate = p.Entry
	} else {
		candidate = filepath.Join(s.baseDir, p.Entry)
	}

	info, err := os.Stat(candidate)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("plugin: plugin %q entry not found at %s", p.ID, candidate)
	}
	if err != nil {
		return "", fmt.Errorf("plugin: failed to access plugin %q entry %s: %w", p.ID, candidate, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("plugin: plugin %q entry is not a file: %s", p.ID, candidate)
	}

	canonical, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", fmt.Errorf("plugin: failed to access plugin %q entry %s: %w", p.ID, candidate, err)
	}
	canonical, err = filepath.Abs(canonical)
	if err != nil {
		return "", fmt.Errorf("plugin: failed to access plugin %q entry %s: %w", p.ID, candidate, err)
	}

	if !s.allowAbsolutePaths && !withinBase(canonical, s.baseDir) {
		return "", fmt.Errorf("plugin: plugin %q entry escapes sandbox (base: %s): %s", p.ID, s.baseDir, canonical)
	}

	return canonical, nil
}

func withinBase(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}
