package report

import (
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// WritePDF renders the report as an A4 PDF: bold title, generation
// time, then the plain-text body line by line. Core fonts are CP1252,
// so text goes through the unicode translator to keep the accented
// Portuguese field names readable.
func WritePDF(w io.Writer, title string, tree any) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Relatório de Consulta: "+title), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 8, tr("Relatório de Consulta: "+title), "", "L", false)
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5, tr("Gerado em: "+time.Now().Format("2006-01-02 15:04:05")), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range strings.Split(PlainText(tree), "\n") {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}

	return pdf.Output(w)
}
