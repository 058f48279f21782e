// Package sourceparser recovers ScreenGraphs from free-form UI source text by
// bracket/paren-depth scanning rather than a real language grammar, per spec
// section 4.2. It never errors: unparsable fragments are either skipped or
// preserved verbatim as expression props.
package sourceparser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/jsonvalue"
)

// ParsedScreen is a stateless widget class discovered in source text, before
// its build() body is reconstructed into a widget tree.
type ParsedScreen struct {
	Name string
	Body string
}

// singleChildProps is the recognized set of single-child property keys,
// checked in this order when no children: key is present.
var singleChildProps = []string{"child", "body", "appBar", "floatingActionButton"}

var classRegexp = regexp.MustCompile(`(?s)class\s+([A-Za-z0-9_]+)\s+extends\s+StatelessWidget\s*\{.*?Widget\s+build\s*\([^)]*\)\s*\{(.*?)\n\s*\}\s*\}`)

// ParseStatelessScreens scans source for `class X extends StatelessWidget { ... Widget build(...) { <body> } }`
// regions and returns one ParsedScreen per match.
func ParseStatelessScreens(source string) []ParsedScreen {
	matches := classRegexp.FindAllStringSubmatch(source, -1)
	screens := make([]ParsedScreen, 0, len(matches))
	for _, m := range matches {
		screens = append(screens, ParsedScreen{Name: m[1], Body: m[2]})
	}
	return screens
}

// ParseWidgetTree converts the body of a build() method into a WidgetNode.
// ok is false when the body is empty or does not resolve to a widget
// constructor expression.
func ParseWidgetTree(body string) (graph.WidgetNode, bool) {
	trimmed := strings.TrimSpace(body)
	trimmed = strings.TrimRight(trimmed, ";")
	trimmed = strings.TrimRight(trimmed, ",")
	trimmed = strings.TrimSpace(trimmed)
	if stripped, ok := strings.CutPrefix(trimmed, "return"); ok {
		trimmed = strings.TrimSpace(stripped)
	}
	if trimmed == "" {
		return graph.WidgetNode{}, false
	}

	widget, rest, ok := splitWidgetSignature(trimmed)
	if !ok {
		return graph.WidgetNode{}, false
	}
	inner, _, ok := extractParenthesizedBlock(rest)
	if !ok {
		return graph.WidgetNode{}, false
	}
	inner = strings.TrimSpace(inner)

	props := make(map[string]graph.PropValue)
	var children []graph.WidgetNode

	if rawChildren, ok := extractChildrenBlock(inner); ok {
		for _, childSrc := range splitChildren(rawChildren) {
			if childNode, ok := ParseWidgetTree(childSrc); ok {
				children = append(children, childNode)
			}
		}
	} else {
		for _, childExpr := range extractSingleChildExpressions(inner, singleChildProps) {
			if childNode, ok := ParseWidgetTree(childExpr); ok {
				children = append(children, childNode)
			}
		}
	}

	positionalIndex := 0
	for _, entry := range splitTopLevelEntries(inner) {
		if key, value, ok := splitKeyValue(entry); ok {
			if key == "children" || isSingleChildKey(key) {
				continue
			}
			props[key] = parsePropValue(strings.TrimSpace(value))
			continue
		}
		trimmedEntry := strings.TrimSpace(entry)
		if name, ok := mapPositionalProp(widget, positionalIndex); ok {
			props[name] = parsePropValue(trimmedEntry)
		} else if trimmedEntry != "" {
			props["positional"+strconv.Itoa(positionalIndex)] = parsePropValue(trimmedEntry)
		}
		positionalIndex++
	}

	return graph.WidgetNode{Widget: widget, Props: props, Children: children}, true
}

// BuildGraphsFromSource parses source and returns one ScreenGraph per
// stateless widget whose build() body resolves to a widget tree.
func BuildGraphsFromSource(source string) []graph.ScreenGraph {
	var graphs []graph.ScreenGraph
	for _, screen := range ParseStatelessScreens(source) {
		root, ok := ParseWidgetTree(screen.Body)
		if !ok {
			continue
		}
		graphs = append(graphs, graph.ScreenGraph{ID: screen.Name, Root: root})
	}
	return graphs
}

func isSingleChildKey(key string) bool {
	for _, candidate := range singleChildProps {
		if candidate == key {
			return true
		}
	}
	return false
}

// skipGenericBlock consumes a leading `<...>` generic-type annotation using
// angle-bracket depth counting, returning the remainder after the closing
// `>`. ok is false if input does not start with `<` or the block never
// closes.
func skipGenericBlock(input string) (string, bool) {
	depth := 0
	first := true
	for idx, ch := range input {
		if first {
			if ch != '<' {
				return "", false
			}
			depth = 1
			first = false
			continue
		}
		switch ch {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return input[idx+len(string(ch)):], true
			}
		}
	}
	return "", false
}

// extractParenthesizedBlock extracts the balanced contents of a leading
// `(...)` block, returning (contents, remainder-after-close, ok).
func extractParenthesizedBlock(input string) (string, string, bool) {
	depth := 0
	first := true
	var result strings.Builder
	for idx, ch := range input {
		if first {
			if ch != '(' {
				return "", "", false
			}
			depth = 1
			first = false
			continue
		}
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return result.String(), input[idx+1:], true
			}
		}
		result.WriteRune(ch)
	}
	return "", "", false
}

// splitWidgetSignature splits input at its first `(`, returning the last
// whitespace-separated token before it as the widget name (supports dotted
// names like Image.network) plus the remainder starting at `(`.
func splitWidgetSignature(input string) (string, string, bool) {
	idx := strings.IndexByte(input, '(')
	if idx < 0 {
		return "", "", false
	}
	widgetPart := strings.TrimSpace(input[:idx])
	fields := strings.Fields(widgetPart)
	if len(fields) == 0 {
		return "", "", false
	}
	return fields[len(fields)-1], input[idx:], true
}

// extractChildrenBlock finds a `children:` key in inner that is outside any
// nested parens, brackets, or braces and returns the contents of its
// bracketed list, skipping an optional `const` keyword and generic-type
// annotation.
func extractChildrenBlock(inner string) (string, bool) {
	depth := 0
	for idx := 0; idx < len(inner); idx++ {
		switch inner[idx] {
		case '(', '[', '{':
			depth++
			continue
		case ')', ']', '}':
			depth--
			continue
		}
		if depth != 0 || inner[idx] != 'c' || !strings.HasPrefix(inner[idx:], "children") {
			continue
		}
		rest := strings.TrimLeft(inner[idx+len("children"):], " \t\r\n")
		if !strings.HasPrefix(rest, ":") {
			continue
		}
		rest = strings.TrimLeft(rest[1:], " \t\r\n")
		if stripped, ok := strings.CutPrefix(rest, "const"); ok {
			rest = strings.TrimLeft(stripped, " \t\r\n")
		}
		if strings.HasPrefix(rest, "<") {
			afterGeneric, ok := skipGenericBlock(rest)
			if !ok {
				continue
			}
			rest = strings.TrimLeft(afterGeneric, " \t\r\n")
		}
		if !strings.HasPrefix(rest, "[") {
			continue
		}
		if block, ok := extractBracketBlock(rest); ok {
			return block, true
		}
	}
	return "", false
}

func extractSingleChildExpressions(inner string, keys []string) []string {
	var results []string
	index := 0
	for index < len(inner) {
		expr, consumed, ok := matchSingleChildProp(inner, index, keys)
		if ok {
			results = append(results, expr)
			index += consumed
		} else {
			index++
		}
	}
	return results
}

func matchSingleChildProp(inner string, start int, keys []string) (string, int, bool) {
	slice := inner[start:]
	for _, key := range keys {
		if !strings.HasPrefix(slice, key) {
			continue
		}
		if len(slice) > len(key) {
			next := slice[len(key)]
			if isIdentChar(rune(next)) {
				continue
			}
		}
		if start > 0 {
			if prev, ok := lastNonSpaceRune(inner[:start]); ok && isIdentChar(prev) {
				continue
			}
		}

		afterKey := slice[len(key):]
		trimmedAfterKey := strings.TrimLeft(afterKey, " \t\r\n")
		offset := len(key) + (len(afterKey) - len(trimmedAfterKey))
		if !strings.HasPrefix(trimmedAfterKey, ":") {
			continue
		}
		offset++
		afterColon := trimmedAfterKey[1:]
		trimmedAfterColon := strings.TrimLeft(afterColon, " \t\r\n")
		offset += len(afterColon) - len(trimmedAfterColon)

		exprSlice := trimmedAfterColon
		consumed := offset
		if strings.HasPrefix(exprSlice, "const") {
			var boundaryOK bool
			if len(exprSlice) == len("const") {
				boundaryOK = true
			} else {
				boundaryOK = !isIdentChar(rune(exprSlice[len("const")]))
			}
			if boundaryOK {
				exprSlice = exprSlice[len("const"):]
				trimmedAfterConst := strings.TrimLeft(exprSlice, " \t\r\n")
				consumed += len("const") + (len(exprSlice) - len(trimmedAfterConst))
				exprSlice = trimmedAfterConst
			}
		}

		if expr, exprLen, ok := takeWidgetExpression(exprSlice); ok {
			consumed += exprLen
			return expr, consumed, true
		}
	}
	return "", 0, false
}

func lastNonSpaceRune(s string) (rune, bool) {
	runes := []rune(s)
	for i := len(runes) - 1; i >= 0; i-- {
		if !isSpaceRune(runes[i]) {
			return runes[i], true
		}
	}
	return 0, false
}

func isSpaceRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isIdentChar(r rune) bool {
	return r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func extractBracketBlock(input string) (string, bool) {
	depth := 0
	startContent := -1
	for idx, ch := range input {
		switch ch {
		case '[':
			depth++
			if depth == 1 {
				startContent = idx + 1
			}
		case ']':
			depth--
			if depth == 0 {
				if startContent < 0 {
					return "", false
				}
				return strings.TrimSpace(input[startContent:idx]), true
			}
		}
	}
	return "", false
}

func takeWidgetExpression(input string) (string, int, bool) {
	_, rest, ok := splitWidgetSignature(input)
	if !ok {
		return "", 0, false
	}
	_, remaining, ok := extractParenthesizedBlock(rest)
	if !ok {
		return "", 0, false
	}
	consumed := len(input) - len(remaining)
	expr := strings.TrimSpace(strings.TrimRight(input[:consumed], ","))
	if expr == "" {
		return "", 0, false
	}
	return expr, consumed, true
}

// splitTopLevelEntries splits input at top-level commas, tracking paren,
// bracket, brace, and angle-bracket depth.
func splitTopLevelEntries(input string) []string {
	var entries []string
	paren, bracket, brace, angle := 0, 0, 0, 0
	start := 0
	for idx, ch := range input {
		switch ch {
		case '(':
			paren++
		case ')':
			paren--
		case '[':
			bracket++
		case ']':
			bracket--
		case '{':
			brace++
		case '}':
			brace--
		case '<':
			angle++
		case '>':
			if angle > 0 {
				angle--
			}
		case ',':
			if paren == 0 && bracket == 0 && brace == 0 && angle == 0 {
				segment := strings.TrimSpace(input[start:idx])
				if segment != "" {
					entries = append(entries, segment)
				}
				start = idx + 1
			}
		}
	}
	if start < len(input) {
		segment := strings.TrimSpace(input[start:])
		if segment != "" {
			entries = append(entries, segment)
		}
	}
	return entries
}

// splitKeyValue splits entry at its first top-level `:`, tracking bracket
// depth and quoted strings with backslash escapes. ok is false if no
// top-level colon exists or the key would be empty.
func splitKeyValue(entry string) (string, string, bool) {
	paren, bracket, brace, angle := 0, 0, 0, 0
	singleQuote, doubleQuote, escape := false, false, false
	for idx, ch := range entry {
		if escape {
			escape = false
			continue
		}
		switch {
		case ch == '\\' && (singleQuote || doubleQuote):
			escape = true
		case ch == '\'' && !doubleQuote:
			singleQuote = !singleQuote
		case ch == '"' && !singleQuote:
			doubleQuote = !doubleQuote
		case ch == '(' && !singleQuote && !doubleQuote:
			paren++
		case ch == ')' && !singleQuote && !doubleQuote:
			paren--
		case ch == '[' && !singleQuote && !doubleQuote:
			bracket++
		case ch == ']' && !singleQuote && !doubleQuote:
			bracket--
		case ch == '{' && !singleQuote && !doubleQuote:
			brace++
		case ch == '}' && !singleQuote && !doubleQuote:
			brace--
		case ch == '<' && !singleQuote && !doubleQuote:
			angle++
		case ch == '>' && !singleQuote && !doubleQuote:
			if angle > 0 {
				angle--
			}
		case ch == ':' && !singleQuote && !doubleQuote && paren == 0 && bracket == 0 && brace == 0 && angle == 0:
			key := strings.TrimSpace(entry[:idx])
			if key == "" {
				return "", "", false
			}
			value := strings.TrimSpace(entry[idx+1:])
			return key, value, true
		}
	}
	return "", "", false
}

func parsePropValue(raw string) graph.PropValue {
	if binding, ok := parseBinding(raw); ok {
		return binding
	}
	if literal, ok := parseLiteral(raw); ok {
		return literal
	}
	return graph.NewExpressionProp(raw)
}

func parseBinding(raw string) (graph.PropValue, bool) {
	trimmed := strings.TrimSpace(raw)
	const prefix = "ref.watch("
	if !strings.HasPrefix(trimmed, prefix) {
		return graph.PropValue{}, false
	}

	afterPrefix := trimmed[len(prefix):]
	depth := 1
	closingRel := -1
	for idx, ch := range afterPrefix {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				closingRel = idx
			}
		}
		if closingRel >= 0 {
			break
		}
	}
	if closingRel < 0 {
		return graph.PropValue{}, false
	}

	providerExpr := strings.TrimSpace(afterPrefix[:closingRel])
	if providerExpr == "" {
		return graph.PropValue{}, false
	}

	remainder := strings.TrimSpace(afterPrefix[closingRel+1:])
	var path string
	hasPath := false

	if strings.HasPrefix(remainder, ".") {
		runes := []rune(remainder)
		idx := 1
		for idx < len(runes) {
			ch := runes[idx]
			if isIdentChar(ch) || ch == '.' {
				idx++
			} else {
				break
			}
		}

		candidate := string(runes[1:idx])
		if candidate == "" || strings.HasSuffix(candidate, ".") || !validDottedPath(candidate) {
			return graph.PropValue{}, false
		}

		path = candidate
		hasPath = true
		remainder = strings.TrimSpace(string(runes[idx:]))
	}

	if remainder != "" {
		return graph.PropValue{}, false
	}

	reference := providerExpr
	providerID, _ := extractProviderIdentifier(providerExpr)

	binding := graph.BindingReference{
		Target:     graph.BindingTargetProvider,
		Reference:  reference,
		ProviderID: providerID,
	}
	if hasPath {
		binding.Path = path
	}
	return graph.NewBindingProp(binding), true
}

func validDottedPath(candidate string) bool {
	for _, segment := range strings.Split(candidate, ".") {
		if segment == "" {
			return false
		}
		for i, ch := range segment {
			if i == 0 {
				if !(ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')) {
					return false
				}
			} else if !isIdentChar(ch) {
				return false
			}
		}
	}
	return true
}

func extractProviderIdentifier(reference string) (string, bool) {
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return "", false
	}
	for _, ch := range trimmed {
		if !(isIdentChar(ch) || ch == '.') {
			return "", false
		}
	}
	return trimmed, true
}

func parseLiteral(raw string) (graph.PropValue, bool) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) >= 2 {
		if (strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`)) ||
			(strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'")) {
			inner := trimmed[1 : len(trimmed)-1]
			return graph.NewLiteralProp(jsonvalue.NewString(inner)), true
		}
	}

	switch trimmed {
	case "true":
		return graph.NewLiteralProp(jsonvalue.NewBoolean(true)), true
	case "false":
		return graph.NewLiteralProp(jsonvalue.NewBoolean(false)), true
	case "null":
		return graph.NewLiteralProp(jsonvalue.NewNull()), true
	}

	if value, ok := jsonvalue.ParseNumericLiteral(trimmed); ok {
		return graph.NewLiteralProp(value), true
	}

	return graph.PropValue{}, false
}

func mapPositionalProp(widget string, index int) (string, bool) {
	switch widget {
	case "Text":
		if index == 0 {
			return "data", true
		}
	case "Icon":
		if index == 0 {
			return "icon", true
		}
	case "Image.network", "Image":
		if index == 0 {
			return "src", true
		}
	}
	return "", false
}

// splitChildren splits src (the inner contents of a children: [...] list)
// at top-level commas, tracking paren/bracket/brace depth, and drops empty
// segments.
func splitChildren(src string) []string {
	var segments []string
	depth := 0
	start := 0
	for idx, ch := range src {
		switch ch {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				segments = append(segments, strings.TrimSpace(src[start:idx]))
				start = idx + 1
			}
		}
	}
	if start < len(src) {
		segments = append(segments, strings.TrimSpace(src[start:]))
	}
	out := segments[:0]
	for _, s := range segments {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
