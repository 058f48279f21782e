// Package render turns ScreenGraphs back into target-framework source code
// through a common RendererAdapter contract (spec section 4.5).
package render

import (
	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/stateadapter"
)

// Dialect is a rendering dialect supported by the engine.
type Dialect uint8

const (
	DialectDart Dialect = iota
	DialectJsx
	DialectTsx
	DialectHTML
)

// Options are rendering options shared across adapters.
type Options struct {
	Pretty          bool
	IncludeComments bool
	Dialect         Dialect
}

// DefaultOptions mirrors the Dart/pretty default a renderer falls back to
// when the caller supplies none.
func DefaultOptions() Options {
	return Options{Pretty: true, Dialect: DialectDart}
}

// Context is supplied to renderer implementations for one render call.
type Context struct {
	Indent       int
	StateAdapter stateadapter.StateAdapter
	Options      Options
}

// WithIndent returns a copy of ctx at the given indentation level.
func (ctx Context) WithIndent(indent int) Context {
	ctx.Indent = indent
	return ctx
}

// Severity classifies a RenderError.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Error is a structured rendering failure.
type Error struct {
	NodeID   string // empty means absent
	Message  string
	Severity Severity
}

func (e *Error) Error() string { return e.Message }

// Unit is a successful render output enriched with metadata.
type Unit struct {
	Code         string
	Imports      []string
	Dependencies map[string]string
}

// RendererAdapter is the interface every framework renderer implements.
type RendererAdapter interface {
	Name() string
	RenderPrelude(ctx Context) string
	RenderPostlude(ctx Context) string
	RenderNode(node graph.WidgetNode, ctx Context) (Unit, error)
	Dependencies() map[string]string
}

// RenderTree renders a complete tree with prelude/postlude wrapped around
// the root node's output.
func RenderTree(renderer RendererAdapter, root graph.WidgetNode, ctx Context) (Unit, error) {
	unit, err := renderer.RenderNode(root, ctx)
	if err != nil {
		return Unit{}, err
	}
	if prelude := renderer.RenderPrelude(ctx); prelude != "" {
		unit.Code = prelude + unit.Code
	}
	if postlude := renderer.RenderPostlude(ctx); postlude != "" {
		unit.Code += postlude
	}
	return unit, nil
}
