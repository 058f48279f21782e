package render

import (
	"strconv"
	"strings"

	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/jsonvalue"
)

var reactDependencies = [][2]string{
	{"react", "^18.0.0"},
	{"react-dom", "^18.0.0"},
}

// ReactRenderer renders WidgetNodes into React (JSX/TSX) source code.
type ReactRenderer struct{}

func (ReactRenderer) Name() string { return "react" }

func (ReactRenderer) RenderPrelude(ctx Context) string {
	switch ctx.Options.Dialect {
	case DialectJsx:
		return "import React from 'react';\n"
	case DialectTsx:
		return "import * as React from 'react';\n"
	default:
		return ""
	}
}

func (ReactRenderer) RenderPostlude(ctx Context) string { return "" }

func (r ReactRenderer) RenderNode(node graph.WidgetNode, ctx Context) (Unit, error) {
	unit := Unit{Code: renderReactElement(node, ctx, ctx.Indent), Dependencies: r.Dependencies()}
	if imports := reactImports(ctx.Options.Dialect); len(imports) > 0 {
		unit.Imports = imports
	}
	return unit, nil
}

func (ReactRenderer) Dependencies() map[string]string {
	deps := make(map[string]string, len(reactDependencies))
	for _, d := range reactDependencies {
		deps[d[0]] = d[1]
	}
	return deps
}

func reactImports(dialect Dialect) []string {
	switch dialect {
	case DialectJsx:
		return []string{"import React from 'react';"}
	case DialectTsx:
		return []string{"import * as React from 'react';"}
	default:
		return nil
	}
}

func renderReactElement(node graph.WidgetNode, ctx Context, indent int) string {
	pad := strings.Repeat(" ", indent)
	props := renderReactProps(node, ctx)

	if len(node.Children) == 0 {
		return pad + "<" + node.Widget + props + " />"
	}

	var b strings.Builder
	b.WriteString(pad)
	b.WriteString("<")
	b.WriteString(node.Widget)
	b.WriteString(props)
	b.WriteString(">\n")

	for _, child := range node.Children {
		b.WriteString(renderReactElement(child, ctx, indent+2))
		b.WriteByte('\n')
	}

	b.WriteString(pad)
	b.WriteString("</")
	b.WriteString(node.Widget)
	b.WriteString(">")
	return b.String()
}

func renderReactProps(node graph.WidgetNode, ctx Context) string {
	if len(node.Props) == 0 {
		return ""
	}
	var b strings.Builder
	for _, key := range node.PropKeys() {
		value := node.Props[key]
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		if value.Kind == graph.PropLiteral {
			b.WriteString(renderReactLiteralProp(value.Literal))
		} else {
			b.WriteByte('{')
			b.WriteString(renderReactPropValue(value, ctx))
			b.WriteByte('}')
		}
	}
	return b.String()
}

func renderReactPropValue(value graph.PropValue, ctx Context) string {
	switch value.Kind {
	case graph.PropLiteral:
		return serializeReactLiteral(value.Literal)
	case graph.PropExpression:
		return value.Expression
	case graph.PropBinding:
		return renderStateBinding(value.Binding, ctx)
	default:
		return "null"
	}
}

func serializeReactLiteral(value *jsonvalue.Value) string {
	if value == nil {
		return "null"
	}
	switch value.Kind() {
	case jsonvalue.KindString:
		return "\"" + escapeAttr(value.StringValue()) + "\""
	case jsonvalue.KindBoolean:
		if value.BoolValue() {
			return "true"
		}
		return "false"
	case jsonvalue.KindNull, jsonvalue.KindUndefined:
		return "null"
	case jsonvalue.KindNumber:
		return strconv.FormatFloat(value.NumberValue(), 'g', -1, 64)
	case jsonvalue.KindInt64:
		return strconv.FormatInt(value.Int64Value(), 10)
	default:
		data, err := value.MarshalJSON()
		if err != nil {
			return "null"
		}
		return string(data)
	}
}

func renderReactLiteralProp(value *jsonvalue.Value) string {
	if value == nil {
		return "{null}"
	}
	switch value.Kind() {
	case jsonvalue.KindString:
		return "\"" + escapeAttr(value.StringValue()) + "\""
	default:
		return "{" + serializeReactLiteral(value) + "}"
	}
}

func renderStateBinding(binding graph.BindingReference, ctx Context) string {
	if ctx.StateAdapter != nil {
		if resolved, ok := ctx.StateAdapter.Resolve(binding); ok {
			expr := resolved.ProviderID
			if resolved.Path != "" {
				expr += "." + resolved.Path
			}
			return expr
		}
	}
	expr := binding.Reference
	if binding.Path != "" {
		expr += "." + binding.Path
	}
	return expr
}

func escapeAttr(value string) string {
	return strings.ReplaceAll(value, "\"", "\\\"")
}
