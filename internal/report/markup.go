package report

import (
	"fmt"
	"strings"

	"consultabot/internal/lookup"
)

// Markup renders a tree as a Telegram Markdown message: bold
// title-case keys, values in backticks, nested blocks indented two
// spaces per level.
func Markup(tree any) string {
	var b strings.Builder
	writeMarkup(&b, tree, 0)
	return strings.TrimRight(b.String(), "\n")
}

func writeMarkup(b *strings.Builder, tree any, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	switch v := tree.(type) {
	case *lookup.Object:
		for _, k := range v.Keys() {
			val, _ := v.Get(k)
			title := titleCase(k)
			switch {
			case scalarList(val):
				fmt.Fprintf(b, "%s*%s*: %s\n", indent, title, joinMarkupScalars(val.([]any)))
			case lookup.IsScalar(val):
				fmt.Fprintf(b, "%s*%s*: `%s`\n", indent, title, scalarString(val))
			default:
				fmt.Fprintf(b, "%s*%s*:\n", indent, title)
				writeMarkup(b, val, depth+1)
			}
		}
	case []any:
		for i, el := range v {
			if lookup.IsScalar(el) {
				fmt.Fprintf(b, "%s- `%s`\n", indent, scalarString(el))
				continue
			}
			fmt.Fprintf(b, "%s*Item %d*:\n", indent, i+1)
			writeMarkup(b, el, depth+1)
		}
	default:
		if v != nil {
			fmt.Fprintf(b, "%s`%s`\n", indent, scalarString(v))
		}
	}
}

func joinMarkupScalars(arr []any) string {
	parts := make([]string, len(arr))
	for i, el := range arr {
		parts[i] = "`" + scalarString(el) + "`"
	}
	return strings.Join(parts, ", ")
}
