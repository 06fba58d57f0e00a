package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

const separator = "============================================================"

// WriteText writes the downloadable text report: a titled header with
// the generation time, the plain-text rendering of the tree, and a
// closing footer. UTF-8, no fixed layout beyond human readability.
func WriteText(w io.Writer, title string, tree any) error {
	_, err := fmt.Fprintf(w, "%s\nRelatório de Consulta: %s\nGerado em: %s\n%s\n\n%s\n\n%s\nFim do relatório.\n",
		separator, title, time.Now().Format("2006-01-02 15:04:05"), separator, PlainText(tree), separator)
	return err
}

// FileName builds a safe, unique report file name such as
// "consulta-serasa-cpf-1a2b3c4d.txt".
func FileName(title, ext string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '_', r == '-':
			return '-'
		}
		return -1
	}, title)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "consulta"
	}
	return fmt.Sprintf("consulta-%s-%s.%s", slug, uuid.NewString()[:8], ext)
}
