package registry

import (
	"fmt"
	"sort"
	"sync"
)

// ThemeData is a named bundle of design tokens: colors, typography, and
// shape styles.
type ThemeData struct {
	Name       string
	Colors     map[string]string
	Typography map[string]string
	Shapes     map[string]string
}

// NewThemeData constructs an empty ThemeData with the given name.
func NewThemeData(name string) ThemeData {
	return ThemeData{
		Name:       name,
		Colors:     map[string]string{},
		Typography: map[string]string{},
		Shapes:     map[string]string{},
	}
}

// ThemeRegistryError reports a theme-registry operation that could not be
// completed.
type ThemeRegistryError struct {
	Op   string
	Name string
}

func (e *ThemeRegistryError) Error() string {
	switch e.Op {
	case "already_registered":
		return fmt.Sprintf("theme %q is already registered", e.Name)
	case "not_found":
		return fmt.Sprintf("theme %q not found", e.Name)
	default:
		return fmt.Sprintf("theme registry error for %q", e.Name)
	}
}

// ThemeRegistry is a concurrency-safe store of ThemeData keyed by name.
type ThemeRegistry struct {
	mu     sync.RWMutex
	themes map[string]ThemeData
}

// NewThemeRegistry constructs an empty registry.
func NewThemeRegistry() *ThemeRegistry {
	return &ThemeRegistry{themes: make(map[string]ThemeData)}
}

// Register adds theme to the registry, failing if its name is already taken.
func (r *ThemeRegistry) Register(theme ThemeData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.themes[theme.Name]; exists {
		return &ThemeRegistryError{Op: "already_registered", Name: theme.Name}
	}
	r.themes[theme.Name] = theme
	return nil
}

// Get returns a copy of the registered theme with the given name.
func (r *ThemeRegistry) Get(name string) (ThemeData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	theme, ok := r.themes[name]
	return theme, ok
}

// List returns every registered theme, sorted by name.
func (r *ThemeRegistry) List() []ThemeData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	themes := make([]ThemeData, 0, len(r.themes))
	for _, theme := range r.themes {
		themes = append(themes, theme)
	}
	sort.Slice(themes, func(i, j int) bool { return themes[i].Name < themes[j].Name })
	return themes
}

// Clear empties the registry. Intended for tests.
func (r *ThemeRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.themes = make(map[string]ThemeData)
}

var (
	globalThemeRegistry     *ThemeRegistry
	globalThemeRegistryOnce sync.Once
)

// Themes returns the process-wide theme registry singleton.
func Themes() *ThemeRegistry {
	globalThemeRegistryOnce.Do(func() {
		globalThemeRegistry = NewThemeRegistry()
	})
	return globalThemeRegistry
}

// RegisterTheme registers theme with the global registry.
func RegisterTheme(theme ThemeData) error {
	return Themes().Register(theme)
}

// GetTheme looks up a theme by name in the global registry.
func GetTheme(name string) (ThemeData, bool) {
	return Themes().Get(name)
}

// ListThemes lists every theme in the global registry, sorted by name.
func ListThemes() []ThemeData {
	return Themes().List()
}

// ClearThemes empties the global theme registry. Intended for tests.
func ClearThemes() {
	Themes().Clear()
}
