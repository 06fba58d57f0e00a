package lookup

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// noiseKeys are upstream envelope fields that carry no personal data
// and are stripped from every response, case-insensitively.
var noiseKeys = map[string]struct{}{
	"status":    {},
	"message":   {},
	"mensagem":  {},
	"source":    {},
	"token":     {},
	"timestamp": {},
	"limit":     {},
	"success":   {},
	"code":      {},
	"error":     {},
}

func isNoiseKey(key string) bool {
	_, ok := noiseKeys[strings.ToLower(key)]
	return ok
}

// boilerplatePatterns match self-attribution and advertising phrases
// some upstreams embed inside string values. Matches are deleted
// before whitespace is collapsed.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)consulta\s+(realizada|gerada)\s+por\s+\S+`),
	regexp.MustCompile(`(?i)@[a-z0-9_]*bot\b`),
	regexp.MustCompile(`(?i)t\.me/\S+`),
	regexp.MustCompile(`(?i)adquira\s+(j[aá]\s+)?seu\s+acesso\S*`),
	regexp.MustCompile(`(?i)\bapi\s+by\s+\S+`),
	regexp.MustCompile(`(?i)painel\s+de\s+consultas?\s+\S+`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

func strictHTMLPolicy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// Clean recursively strips noise fields, empty branches and unwanted
// phrases from a response tree. It is pure and idempotent:
// Clean(Clean(x)) == Clean(x). A tree that cleans down to nothing
// yields nil, which callers must treat as "no data", not an error.
func Clean(tree any) any {
	switch v := tree.(type) {
	case *Object:
		out := NewObject()
		for _, k := range v.Keys() {
			if isNoiseKey(k) {
				continue
			}
			raw, _ := v.Get(k)
			cleaned := Clean(raw)
			if isEmptyValue(cleaned) {
				continue
			}
			out.Set(k, cleaned)
		}
		if out.Len() == 0 {
			return nil
		}
		return out
	case []any:
		var out []any
		for _, el := range v {
			cleaned := Clean(el)
			if isEmptyValue(cleaned) {
				continue
			}
			if containsEqual(out, cleaned) {
				continue
			}
			out = append(out, cleaned)
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case string:
		s := cleanString(v)
		if isEmptyString(s) {
			return nil
		}
		return s
	default:
		// numbers, booleans, nil pass through
		return v
	}
}

func cleanString(s string) string {
	// Unescape down to the literal text before sanitizing, so markup
	// hidden behind entity encoding is stripped in the same pass.
	// Sanitize re-escapes entities, so unescape once more after it.
	for {
		u := html.UnescapeString(s)
		if u == s {
			break
		}
		s = u
	}
	s = html.UnescapeString(strictHTMLPolicy().Sanitize(s))
	for _, p := range boilerplatePatterns {
		s = p.ReplaceAllString(s, "")
	}
	s = whitespaceRun.ReplaceAllLiteralString(s, " ")
	return strings.TrimSpace(s)
}

func isEmptyString(s string) bool {
	return s == "" || s == "null" || s == "None"
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return isEmptyString(t)
	case []any:
		return len(t) == 0
	case *Object:
		return t.Len() == 0
	}
	return false
}

func containsEqual(list []any, v any) bool {
	for _, el := range list {
		if Equal(el, v) {
			return true
		}
	}
	return false
}
