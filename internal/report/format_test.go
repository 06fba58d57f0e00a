package report

import (
	"strings"
	"testing"

	"consultabot/internal/lookup"
)

func mustDecode(t *testing.T, data string) any {
	t.Helper()
	tree, err := lookup.DecodeJSON([]byte(data))
	if err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return tree
}

func TestPlainText_ScalarsAndNesting(t *testing.T) {
	tree := mustDecode(t, `{"nome_completo":"JOAO DA SILVA","endereco":{"cidade":"SP","cep":"01000"}}`)
	got := PlainText(tree)
	want := "Nome completo: JOAO DA SILVA\nEndereco:\n  Cidade: SP\n  Cep: 01000"
	if got != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestPlainText_ScalarListJoined(t *testing.T) {
	tree := mustDecode(t, `{"telefones":["111","222"]}`)
	got := PlainText(tree)
	if got != "Telefones: 111 | 222" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestPlainText_NonScalarListUsesItemBlocks(t *testing.T) {
	tree := mustDecode(t, `{"veiculos":[{"placa":"ABC1234"},{"placa":"XYZ9876"}]}`)
	got := PlainText(tree)
	if !strings.Contains(got, "- Item 1:") || !strings.Contains(got, "- Item 2:") {
		t.Fatalf("expected item blocks, got:\n%s", got)
	}
	if !strings.Contains(got, "Placa: ABC1234") {
		t.Fatalf("nested values missing:\n%s", got)
	}
}

func TestPlainText_Deterministic(t *testing.T) {
	tree := mustDecode(t, `{"b":"1","a":"2","c":{"y":"3","x":"4"}}`)
	first := PlainText(tree)
	for i := 0; i < 10; i++ {
		if got := PlainText(tree); got != first {
			t.Fatal("output not deterministic across calls")
		}
	}
	// insertion order, not sorted order
	if strings.Index(first, "B:") > strings.Index(first, "A:") {
		t.Fatalf("insertion order lost:\n%s", first)
	}
}

func TestMarkup_BoldTitleCaseKeys(t *testing.T) {
	tree := mustDecode(t, `{"nome_mae":"MARIA","tels":["1","2"]}`)
	got := Markup(tree)
	if !strings.Contains(got, "*Nome Mae*: `MARIA`") {
		t.Fatalf("expected bold title-case key, got:\n%s", got)
	}
	if !strings.Contains(got, "*Tels*: `1`, `2`") {
		t.Fatalf("expected joined scalar list, got:\n%s", got)
	}
}

func TestMarkup_NestedIndent(t *testing.T) {
	tree := mustDecode(t, `{"endereco":{"cidade":"SP"}}`)
	got := Markup(tree)
	want := "*Endereco*:\n  *Cidade*: `SP`"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSentenceAndTitleCase(t *testing.T) {
	if got := sentenceCase("nome_da_mae"); got != "Nome da mae" {
		t.Fatalf("sentenceCase: %q", got)
	}
	if got := titleCase("nome_da_mae"); got != "Nome Da Mae" {
		t.Fatalf("titleCase: %q", got)
	}
	if got := titleCase("CPF"); got != "Cpf" {
		t.Fatalf("titleCase upper input: %q", got)
	}
}
