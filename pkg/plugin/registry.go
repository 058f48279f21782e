// Package plugin loads and validates YAML plugin descriptor registries:
// the AI-task plugins Forge can dispatch to, per spec section 6's plugin
// sandbox surface.
package plugin

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry is a fully validated set of plugin descriptors loaded from YAML.
type Registry struct {
	Plugins []Descriptor
}

// Descriptor is a validated plugin entry describing how the engine should
// load an AI task.
type Descriptor struct {
	ID           string
	Name         string
	Entry        string
	InputSchema  string
	OutputSchema string
	Runtimes     []string
	Description  string // empty means absent
	Signature    string // empty means absent
}

type rawDescriptor struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Entry        string   `yaml:"entry"`
	InputSchema  string   `yaml:"inputSchema"`
	OutputSchema string   `yaml:"outputSchema"`
	Runtimes     []string `yaml:"runtimes"`
	Description  string   `yaml:"description"`
	Signature    string   `yaml:"signature"`
}

// LoadFromPath reads and parses a plugin registry YAML file at path.
func LoadFromPath(path string) (Registry, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Registry{}, fmt.Errorf("plugin: failed to read registry file %s: %w", path, err)
	}
	return FromYAMLString(string(contents))
}

// FromYAMLString parses a plugin registry from its YAML document text.
func FromYAMLString(doc string) (Registry, error) {
	var raws []rawDescriptor
	if err := yaml.Unmarshal([]byte(doc), &raws); err != nil {
		return Registry{}, fmt.Errorf("plugin: failed to parse registry yaml: %w", err)
	}
	if len(raws) == 0 {
		return Registry{}, fmt.Errorf("plugin: registry is empty")
	}

	seenIDs := make(map[string]struct{}, len(raws))
	plugins := make([]Descriptor, 0, len(raws))

	for _, raw := range raws {
		descriptor, err := descriptorFromRaw(raw)
		if err != nil {
			return Registry{}, err
		}
		if _, exists := seenIDs[descriptor.ID]; exists {
			return Registry{}, fmt.Errorf("plugin: duplicate plugin id %q detected", descriptor.ID)
		}
		seenIDs[descriptor.ID] = struct{}{}
		plugins = append(plugins, descriptor)
	}

	return Registry{Plugins: plugins}, nil
}

func descriptorFromRaw(raw rawDescriptor) (Descriptor, error) {
	id, err := requireNonEmpty("id", raw.ID, "")
	if err != nil {
		return Descriptor{}, err
	}
	name, err := requireNonEmpty("name", raw.Name, id)
	if err != nil {
		return Descriptor{}, err
	}
	entry, err := requireNonEmpty("entry", raw.Entry, id)
	if err != nil {
		return Descriptor{}, err
	}
	inputSchema, err := requireNonEmpty("inputSchema", raw.InputSchema, id)
	if err != nil {
		return Descriptor{}, err
	}
	outputSchema, err := requireNonEmpty("outputSchema", raw.OutputSchema, id)
	if err != nil {
		return Descriptor{}, err
	}

	runtimes := make([]string, 0, len(raw.Runtimes))
	for _, rt := range raw.Runtimes {
		rt = strings.TrimSpace(rt)
		if rt != "" {
			runtimes = append(runtimes, rt)
		}
	}
	if len(runtimes) == 0 {
		return Descriptor{}, fmt.Errorf("plugin: invalid plugin entry %q: runtimes must contain at least one entry", id)
	}

	return Descriptor{
		ID:           id,
		Name:         name,
		Entry:        entry,
		InputSchema:  inputSchema,
		OutputSchema: outputSchema,
		Runtimes:     runtimes,
		Description:  strings.TrimSpace(raw.Description),
		Signature:    strings.TrimSpace(raw.Signature),
	}, nil
}

func requireNonEmpty(field, value, id string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed != "" {
		return trimmed, nil
	}
	reportedID := id
	if reportedID == "" {
		reportedID = "<unknown>"
	}
	return "", fmt.Errorf("plugin: invalid plugin entry %q: missing or empty field %q", reportedID, field)
}

// ValidateSignatures verifies every plugin's optional sha256 signature
// against the file stored under baseDir, resolving relative entry paths
// against it.
func (r Registry) ValidateSignatures(baseDir string) error {
	for _, p := range r.Plugins {
		if p.Signature == "" {
			continue
		}

		algorithm, expectedHex, ok := strings.Cut(p.Signature, ":")
		if !ok {
			return fmt.Errorf("plugin: invalid signature format for plugin %q: %s", p.ID, p.Signature)
		}
		if !strings.EqualFold(algorithm, "sha256") {
			return fmt.Errorf("plugin: unsupported signature algorithm %q for plugin %q", algorithm, p.ID)
		}
		expectedHex = strings.TrimSpace(expectedHex)
		if expectedHex == "" {
			return fmt.Errorf("plugin: invalid signature format for plugin %q: %s", p.ID, p.Signature)
		}

		resolved := p.Entry
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(baseDir, resolved)
		}

		data, err := os.ReadFile(resolved)
		if err != nil {
			return fmt.Errorf("plugin: failed to read entry %q for plugin %q: %w", resolved, p.ID, err)
		}

		digest := sha256.Sum256(data)
		actualHex := hex.EncodeToString(digest[:])

		if !constantTimeEqualFold(actualHex, expectedHex) {
			return fmt.Errorf("plugin: signature mismatch for plugin %q: expected %s, computed %s",
				p.ID, strings.ToLower(expectedHex), actualHex)
		}
	}
	return nil
}

func constantTimeEqualFold(actual, expected string) bool {
	expectedLower := strings.ToLower(expected)
	if len(actual) != len(expectedLower) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expectedLower)) == 1
}
