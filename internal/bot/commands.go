package bot

import (
	"strings"

	"consultabot/internal/lookup"
)

// Command binds one chat command to a query kind. The same menu
// handler serves every entry; adding a lookup type is one table row.
type Command struct {
	Name         string
	Title        string
	Usage        string
	Kind         lookup.Kind
	Consolidated bool
}

var commands = []Command{
	{Name: "cpf", Title: "CPF", Usage: "/cpf 12345678901", Kind: lookup.KindCPF, Consolidated: true},
	{Name: "nome_completo", Title: "Nome", Usage: "/nome_completo Maria da Silva", Kind: lookup.KindName, Consolidated: true},
	{Name: "placa", Title: "Placa", Usage: "/placa ABC1D23", Kind: lookup.KindPlate},
	{Name: "chassi", Title: "Chassi", Usage: "/chassi 9BWZZZ377VT004251", Kind: lookup.KindChassis},
	{Name: "ip", Title: "IP", Usage: "/ip 200.160.2.3", Kind: lookup.KindIP},
	{Name: "mac", Title: "MAC", Usage: "/mac 00:1A:2B:3C:4D:5E", Kind: lookup.KindMAC},
	{Name: "email", Title: "Email", Usage: "/email fulano@example.com", Kind: lookup.KindEmail},
	{Name: "telefone", Title: "Telefone", Usage: "/telefone 11999990000", Kind: lookup.KindPhone},
}

func commandByName(name string) (Command, bool) {
	for _, c := range commands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

func commandByKind(kind lookup.Kind) (Command, bool) {
	for _, c := range commands {
		if c.Kind == kind {
			return c, true
		}
	}
	return Command{}, false
}

func helpText() string {
	var b strings.Builder
	b.WriteString("🤖 *Bot de Consultas*\n\nComandos disponíveis:\n")
	for _, c := range commands {
		b.WriteString("`" + c.Usage + "`\n")
	}
	b.WriteString("\n/status mostra a saúde das fontes.")
	return b.String()
}

// Route is a parsed callback button payload: either one source key or
// a consolidated lookup over every source of a kind.
type Route struct {
	Merged    bool
	Kind      lookup.Kind
	SourceKey string
}

const (
	sourceRoutePrefix = "src:"
	mergedRoutePrefix = "all:"
)

func sourceRoute(sourceKey string) string {
	return sourceRoutePrefix + sourceKey
}

func mergedRoute(kind lookup.Kind) string {
	return mergedRoutePrefix + string(kind)
}

func parseRoute(data string) (Route, bool) {
	switch {
	case strings.HasPrefix(data, sourceRoutePrefix):
		key := strings.TrimPrefix(data, sourceRoutePrefix)
		if key == "" {
			return Route{}, false
		}
		return Route{SourceKey: key}, true
	case strings.HasPrefix(data, mergedRoutePrefix):
		kind := strings.TrimPrefix(data, mergedRoutePrefix)
		if kind == "" {
			return Route{}, false
		}
		return Route{Merged: true, Kind: lookup.Kind(kind)}, true
	}
	return Route{}, false
}
