package lookup

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind is the semantic type of a user-supplied query.
type Kind string

const (
	KindCPF     Kind = "cpf"
	KindName    Kind = "nome"
	KindPlate   Kind = "placa"
	KindChassis Kind = "chassi"
	KindIP      Kind = "ip"
	KindMAC     Kind = "mac"
	KindEmail   Kind = "email"
	KindPhone   Kind = "telefone"
)

// Source describes one upstream lookup endpoint. URL holds exactly one
// {query} placeholder; everything else (tokens, param names) is baked
// in at startup. Sources are immutable after registry construction.
type Source struct {
	Key   string
	Label string
	Kind  Kind
	URL   string
}

const queryPlaceholder = "{query}"

// ResolveURL substitutes the query into the template placeholder,
// escaped for use in a query string.
func (s Source) ResolveURL(query string) string {
	return strings.ReplaceAll(s.URL, queryPlaceholder, url.QueryEscape(query))
}

// Registry is the fixed set of sources known to the bot, addressable
// by key and by query kind. Built once at startup, read-only after.
type Registry struct {
	sources []Source
	byKey   map[string]Source
}

func NewRegistry(sources []Source) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Source, len(sources))}
	for _, s := range sources {
		if s.Key == "" {
			return nil, fmt.Errorf("source %q: empty key", s.Label)
		}
		if !strings.Contains(s.URL, queryPlaceholder) {
			return nil, fmt.Errorf("source %s: url template missing %s placeholder", s.Key, queryPlaceholder)
		}
		if _, dup := r.byKey[s.Key]; dup {
			return nil, fmt.Errorf("duplicate source key %s", s.Key)
		}
		r.byKey[s.Key] = s
		r.sources = append(r.sources, s)
	}
	return r, nil
}

func (r *Registry) Get(key string) (Source, bool) {
	s, ok := r.byKey[key]
	return s, ok
}

// ByKind returns the sources for a query kind in registration order.
func (r *Registry) ByKind(kind Kind) []Source {
	var out []Source
	for _, s := range r.sources {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

func (r *Registry) All() []Source {
	return r.sources
}

// Normalize canonicalises a raw user query for its kind: digits only
// for CPF and phone numbers, upper-case without separators for plates,
// chassis and MAC addresses, lower-case for emails. Unknown kinds are
// just trimmed.
func Normalize(kind Kind, raw string) string {
	raw = strings.TrimSpace(raw)
	switch kind {
	case KindCPF, KindPhone:
		return digitsOnly(raw)
	case KindPlate, KindChassis, KindMAC:
		return strings.ToUpper(stripSeparators(raw))
	case KindEmail:
		return strings.ToLower(raw)
	case KindName:
		return strings.Join(strings.Fields(raw), " ")
	default:
		return raw
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', ':', '.':
			return -1
		}
		return r
	}, s)
}
