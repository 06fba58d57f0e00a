// Package report renders cleaned lookup trees as plain text, Telegram
// markup, and downloadable report files.
package report

import (
	"fmt"
	"strings"
	"unicode"

	"consultabot/internal/lookup"
)

const indentUnit = "  "

// PlainText renders a tree as an indented text report. Keys are shown
// sentence-case with underscores replaced by spaces; scalar lists are
// joined with " | " on one line; lists holding nested values become
// "- Item N:" blocks. Output is deterministic because cleaned trees
// preserve insertion order.
func PlainText(tree any) string {
	var b strings.Builder
	writePlain(&b, tree, 0)
	return strings.TrimRight(b.String(), "\n")
}

func writePlain(b *strings.Builder, tree any, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	switch v := tree.(type) {
	case *lookup.Object:
		for _, k := range v.Keys() {
			val, _ := v.Get(k)
			key := sentenceCase(k)
			switch {
			case scalarList(val):
				fmt.Fprintf(b, "%s%s: %s\n", indent, key, joinScalars(val.([]any)))
			case lookup.IsScalar(val):
				fmt.Fprintf(b, "%s%s: %s\n", indent, key, scalarString(val))
			default:
				fmt.Fprintf(b, "%s%s:\n", indent, key)
				writePlain(b, val, depth+1)
			}
		}
	case []any:
		for i, el := range v {
			if lookup.IsScalar(el) {
				fmt.Fprintf(b, "%s- Item %d: %s\n", indent, i+1, scalarString(el))
				continue
			}
			fmt.Fprintf(b, "%s- Item %d:\n", indent, i+1)
			writePlain(b, el, depth+1)
		}
	default:
		if v != nil {
			fmt.Fprintf(b, "%s%s\n", indent, scalarString(v))
		}
	}
}

func scalarList(v any) bool {
	arr, ok := v.([]any)
	if !ok {
		return false
	}
	for _, el := range arr {
		if !lookup.IsScalar(el) {
			return false
		}
	}
	return true
}

func joinScalars(arr []any) string {
	parts := make([]string, len(arr))
	for i, el := range arr {
		parts[i] = scalarString(el)
	}
	return strings.Join(parts, " | ")
}

func scalarString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// sentenceCase turns "nome_mae" into "Nome mae".
func sentenceCase(key string) string {
	key = strings.ReplaceAll(key, "_", " ")
	if key == "" {
		return key
	}
	key = strings.ToLower(key)
	r := []rune(key)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// titleCase turns "nome_mae" into "Nome Mae".
func titleCase(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
