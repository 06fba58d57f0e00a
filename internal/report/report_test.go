package report

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteText_HeaderBodyFooter(t *testing.T) {
	tree := mustDecode(t, `{"nome":"JOAO"}`)
	var buf bytes.Buffer
	if err := WriteText(&buf, "Serasa CPF", tree); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Relatório de Consulta: Serasa CPF") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "Nome: JOAO") {
		t.Fatalf("missing body:\n%s", out)
	}
	if !strings.Contains(out, "Fim do relatório.") {
		t.Fatalf("missing footer:\n%s", out)
	}
}

func TestWritePDF_ProducesPDF(t *testing.T) {
	tree := mustDecode(t, `{"nome":"JOÃO","endereco":{"cidade":"SÃO PAULO"}}`)
	var buf bytes.Buffer
	if err := WritePDF(&buf, "Consolidado CPF", tree); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output is not a PDF, starts with %q", buf.Bytes()[:8])
	}
}

func TestFileName(t *testing.T) {
	name := FileName("Serasa CPF", "pdf")
	if !strings.HasPrefix(name, "consulta-serasa-cpf-") || !strings.HasSuffix(name, ".pdf") {
		t.Fatalf("unexpected name %q", name)
	}
	if another := FileName("Serasa CPF", "pdf"); another == name {
		t.Fatal("file names must be unique")
	}
	if got := FileName("///", "txt"); !strings.HasPrefix(got, "consulta-consulta-") {
		t.Fatalf("empty slug not defaulted: %q", got)
	}
}
