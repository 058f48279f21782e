// Package schema assembles Forge in-memory graphs into deterministic schema
// documents and reads them back, per spec section 6's external interface.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/jsonvalue"
)

// SchemaVersion is the forge_schema_version stamped into every document
// this writer produces.
const SchemaVersion = "1.0.0"

// Project is the canonical project metadata embedded in serialized Forge
// documents.
type Project struct {
	ID          string
	Name        string
	Description string // empty means absent
}

// NewProject constructs a Project with no description.
func NewProject(id, name string) Project {
	return Project{ID: id, Name: name}
}

func (p Project) toValue() *jsonvalue.Value {
	out := jsonvalue.NewObject()
	out.ObjectSet("id", jsonvalue.NewString(p.ID))
	out.ObjectSet("name", jsonvalue.NewString(p.Name))
	if p.Description != "" {
		out.ObjectSet("description", jsonvalue.NewString(p.Description))
	}
	return out
}

func projectFromValue(v *jsonvalue.Value) Project {
	return Project{
		ID:          v.ObjectGet("id").StringValue(),
		Name:        v.ObjectGet("name").StringValue(),
		Description: v.ObjectGet("description").StringValue(),
	}
}

// ForgeGraph aggregates screens, logic flows, and project metadata prior to
// being stamped with a schema version.
type ForgeGraph struct {
	Project  Project
	Screens  []graph.ScreenGraph
	Logic    []graph.LogicGraph
	Metadata *jsonvalue.Value // nil means absent
}

// NewForgeGraph constructs an empty ForgeGraph for the given project.
func NewForgeGraph(project Project) ForgeGraph {
	return ForgeGraph{Project: project}
}

func (g ForgeGraph) WithScreens(screens []graph.ScreenGraph) ForgeGraph {
	g.Screens = screens
	return g
}

func (g ForgeGraph) WithLogic(logic []graph.LogicGraph) ForgeGraph {
	g.Logic = logic
	return g
}

func (g ForgeGraph) WithMetadata(metadata *jsonvalue.Value) ForgeGraph {
	g.Metadata = metadata
	return g
}

// Document is the high-level Forge document representation the writer
// produces and the reader consumes.
type Document struct {
	Version  string
	Project  Project
	Screens  []graph.ScreenGraph
	Logic    []graph.LogicGraph
	Metadata *jsonvalue.Value // nil means absent
}

// ToValue lowers the document into its canonical jsonvalue.Value shape.
func (d Document) ToValue() *jsonvalue.Value {
	root := jsonvalue.NewObject()
	root.ObjectSet("forge_schema_version", jsonvalue.NewString(d.Version))
	root.ObjectSet("project", d.Project.toValue())

	screens := jsonvalue.NewArray()
	for _, s := range d.Screens {
		screens.ArrayAppend(s.ToValue())
	}
	root.ObjectSet("screens", screens)

	logic := jsonvalue.NewArray()
	for _, l := range d.Logic {
		logic.ArrayAppend(l.ToValue())
	}
	root.ObjectSet("logic", logic)

	if d.Metadata != nil {
		root.ObjectSet("metadata", jsonvalue.Clone(d.Metadata))
	}
	return root
}

// MarshalIndent renders the document as pretty-printed JSON. json.Indent
// reformats the already-serialized bytes in place, so the writer's
// deterministic key order (insertion order for the document's own fields,
// lexicographic for prop maps) survives untouched.
func (d Document) MarshalIndent() (string, error) {
	data, err := d.ToValue().MarshalJSON()
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}

// Write builds the canonical schema document for a set of screens, stamping
// the current SchemaVersion, with no logic flows or metadata.
func Write(project Project, screens []graph.ScreenGraph) Document {
	return FromGraph(NewForgeGraph(project).WithScreens(screens))
}

// FromGraph stamps g with SchemaVersion to produce a Document.
func FromGraph(g ForgeGraph) Document {
	return Document{
		Version:  SchemaVersion,
		Project:  g.Project,
		Screens:  g.Screens,
		Logic:    g.Logic,
		Metadata: g.Metadata,
	}
}

// BuildDocument constructs a Document directly from its constituent parts.
func BuildDocument(project Project, screens []graph.ScreenGraph, logic []graph.LogicGraph, metadata *jsonvalue.Value) Document {
	return FromGraph(ForgeGraph{Project: project, Screens: screens, Logic: logic, Metadata: metadata})
}

// Read parses serialized JSON back into a Document, the inverse of
// MarshalIndent/ToValue.
func Read(data []byte) (Document, error) {
	value := jsonvalue.NewNull()
	if err := value.UnmarshalJSON(data); err != nil {
		return Document{}, fmt.Errorf("schema: invalid document: %w", err)
	}
	if value.Kind() != jsonvalue.KindObject {
		return Document{}, fmt.Errorf("schema: expected a JSON object at the document root")
	}

	doc := Document{
		Version: value.ObjectGet("forge_schema_version").StringValue(),
		Project: projectFromValue(value.ObjectGet("project")),
	}

	if screens := value.ObjectGet("screens"); screens != nil {
		for _, sv := range screens.ArrayElements() {
			screen, err := graph.ScreenGraphFromValue(sv)
			if err != nil {
				return Document{}, fmt.Errorf("schema: screen: %w", err)
			}
			doc.Screens = append(doc.Screens, screen)
		}
	}

	if logic := value.ObjectGet("logic"); logic != nil {
		for _, lv := range logic.ArrayElements() {
			lg, err := graph.LogicGraphFromValue(lv)
			if err != nil {
				return Document{}, fmt.Errorf("schema: logic graph: %w", err)
			}
			doc.Logic = append(doc.Logic, lg)
		}
	}

	if meta := value.ObjectGet("metadata"); meta != nil {
		doc.Metadata = jsonvalue.Clone(meta)
	}

	return doc, nil
}
