package render

import (
	"strconv"
	"strings"

	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/jsonvalue"
)

// FlutterRenderer renders WidgetNodes into Flutter (Dart) source code.
type FlutterRenderer struct{}

func (FlutterRenderer) Name() string { return "flutter" }

func (FlutterRenderer) RenderPrelude(ctx Context) string  { return "" }
func (FlutterRenderer) RenderPostlude(ctx Context) string { return "" }

func (r FlutterRenderer) RenderNode(node graph.WidgetNode, ctx Context) (Unit, error) {
	return Unit{
		Code:         renderFlutterWidget(node, ctx.Indent),
		Dependencies: r.Dependencies(),
	}, nil
}

func (FlutterRenderer) Dependencies() map[string]string {
	return map[string]string{"flutter": "sdk: flutter"}
}

// GenerateStatelessWidget emits a complete Dart stateless-widget class for
// the given screen.
func GenerateStatelessWidget(screen graph.ScreenGraph) string {
	body := renderFlutterWidget(screen.Root, 6)
	var b strings.Builder
	b.WriteString("class ")
	b.WriteString(screen.ID)
	b.WriteString(" extends StatelessWidget {\n  const ")
	b.WriteString(screen.ID)
	b.WriteString("({ super.key });\n\n  @override\n  Widget build(BuildContext context) {\n    return ")
	b.WriteString(body)
	b.WriteString("\n  }\n}\n")
	return b.String()
}

// GenerateDartModule emits a Dart file containing every screen's widget.
func GenerateDartModule(screens []graph.ScreenGraph) string {
	var b strings.Builder
	b.WriteString("import 'package:flutter/widgets.dart';\n\n")
	for _, screen := range screens {
		b.WriteString(GenerateStatelessWidget(screen))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderFlutterWidget(node graph.WidgetNode, indent int) string {
	var b strings.Builder
	pad := strings.Repeat(" ", indent)
	b.WriteString(pad)
	b.WriteString(node.Widget)
	b.WriteString("(\n")

	props := renderFlutterProps(node, indent+2)
	if props != "" {
		b.WriteString(props)
		if !strings.HasSuffix(props, "\n") {
			b.WriteString(",\n")
		} else {
			b.WriteString(",")
		}
		b.WriteByte('\n')
	}

	children := renderFlutterChildren(node.Children, indent+2)
	if children != "" {
		b.WriteString(children)
		b.WriteByte('\n')
	}

	b.WriteString(pad)
	b.WriteString(")")
	return b.String()
}

func renderFlutterChildren(children []graph.WidgetNode, indent int) string {
	if len(children) == 0 {
		return ""
	}
	pad := strings.Repeat(" ", indent)
	var b strings.Builder
	b.WriteString(pad)
	b.WriteString("children: [\n")
	for _, child := range children {
		b.WriteString(renderFlutterWidget(child, indent+2))
		b.WriteString(",\n")
	}
	b.WriteString(pad)
	b.WriteString("]")
	return b.String()
}

func renderFlutterProps(node graph.WidgetNode, indent int) string {
	if len(node.Props) == 0 {
		return ""
	}
	pad := strings.Repeat(" ", indent)
	var b strings.Builder
	first := true
	for _, key := range node.PropKeys() {
		if !first {
			b.WriteString(",\n")
		}
		first = false
		b.WriteString(pad)
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(renderFlutterPropValue(node.Props[key]))
	}
	return b.String()
}

func renderFlutterPropValue(value graph.PropValue) string {
	switch value.Kind {
	case graph.PropLiteral:
		return literalToDartCode(value.Literal)
	case graph.PropExpression:
		return value.Expression
	case graph.PropBinding:
		return renderFlutterBinding(value.Binding)
	default:
		return "null"
	}
}

func literalToDartCode(value *jsonvalue.Value) string {
	if value == nil {
		return "null"
	}
	switch value.Kind() {
	case jsonvalue.KindString:
		return "\"" + value.StringValue() + "\""
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

func renderFlutterBinding(binding graph.BindingReference) string {
	if binding.Target != graph.BindingTargetProvider {
		return "<unsupported binding>"
	}
	var b strings.Builder
	b.WriteString("ref.watch(")
	b.WriteString(binding.Reference)
	b.WriteString(")")
	if binding.Path != "" {
		b.WriteString(".")
		b.WriteString(binding.Path)
	}
	return b.String()
}
