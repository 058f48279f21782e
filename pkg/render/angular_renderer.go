package render

import (
	"strconv"
	"strings"

	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/jsonvalue"
)

var angularDependencies = [][2]string{
	{"@angular/core", "^17.0.0"},
}

// AngularRenderer renders WidgetNodes into Angular-compatible HTML
// templates.
type AngularRenderer struct{}

func (AngularRenderer) Name() string { return "angular" }

func (AngularRenderer) RenderPrelude(ctx Context) string  { return "" }
func (AngularRenderer) RenderPostlude(ctx Context) string { return "" }

func (r AngularRenderer) RenderNode(node graph.WidgetNode, ctx Context) (Unit, error) {
	return Unit{Code: renderAngularElement(node, ctx, ctx.Indent), Dependencies: r.Dependencies()}, nil
}

func (AngularRenderer) Dependencies() map[string]string {
	deps := make(map[string]string, len(angularDependencies))
	for _, d := range angularDependencies {
		deps[d[0]] = d[1]
	}
	return deps
}

func renderAngularElement(node graph.WidgetNode, ctx Context, indent int) string {
	pad := strings.Repeat(" ", indent)
	props := renderAngularProps(node, ctx)

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
		b.WriteString(renderAngularElement(child, ctx, indent+2))
		b.WriteByte('\n')
	}

	b.WriteString(pad)
	b.WriteString("</")
	b.WriteString(node.Widget)
	b.WriteString(">")
	return b.String()
}

func renderAngularProps(node graph.WidgetNode, ctx Context) string {
	if len(node.Props) == 0 {
		return ""
	}
	var b strings.Builder
	for _, key := range node.PropKeys() {
		value := node.Props[key]
		switch value.Kind {
		case graph.PropLiteral:
			b.WriteByte(' ')
			b.WriteString(key)
			b.WriteString("=\"")
			b.WriteString(escapeAngularAttr(angularLiteralToString(value.Literal)))
			b.WriteString("\"")
		case graph.PropExpression:
			b.WriteByte(' ')
			b.WriteByte('[')
			b.WriteString(key)
			b.WriteByte(']')
			b.WriteString("=\"")
			b.WriteString(escapeAngularAttr(value.Expression))
			b.WriteString("\"")
		case graph.PropBinding:
			b.WriteByte(' ')
			b.WriteByte('[')
			b.WriteString(key)
			b.WriteByte(']')
			b.WriteString("=\"")
			b.WriteString(escapeAngularAttr(renderStateBinding(value.Binding, ctx)))
			b.WriteString("\"")
		}
	}
	return b.String()
}

func angularLiteralToString(value *jsonvalue.Value) string {
	if value == nil {
		return ""
	}
	switch value.Kind() {
	case jsonvalue.KindString:
		return value.StringValue()
	case jsonvalue.KindBoolean:
		if value.BoolValue() {
			return "true"
		}
		return "false"
	case jsonvalue.KindNumber:
		return strconv.FormatFloat(value.NumberValue(), 'g', -1, 64)
	case jsonvalue.KindInt64:
		return strconv.FormatInt(value.Int64Value(), 10)
	case jsonvalue.KindNull, jsonvalue.KindUndefined:
		return ""
	default:
		data, err := value.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func escapeAngularAttr(value string) string {
	var b strings.Builder
	for _, ch := range value {
		switch ch {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#39;")
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}
