package uploads

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// SampleCoA is the content of a generated demo certificate.
type SampleCoA struct {
	Title      string
	PartNumber string
	LotID      string
	PlantID    string
	Pages      int
}

// RenderSamplePDF produces a plain certificate-of-analysis PDF used to seed demo stores.
func RenderSamplePDF(s SampleCoA) ([]byte, error) {
	pages := max(1, s.Pages)
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(s.Title, true)
	pdf.SetCreator("ecoa seed", true)

	for i := range pages {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 18)
		pdf.Cell(0, 10, "Certificate of Analysis")
		pdf.Ln(14)

		pdf.SetFont("Helvetica", "", 12)
		for _, line := range []string{
			s.Title,
			"Part number: " + s.PartNumber,
			"Lot: " + s.LotID,
			"Plant: " + s.PlantID,
			fmt.Sprintf("Page %d of %d", i+1, pages),
		} {
			pdf.Cell(0, 7, line)
			pdf.Ln(8)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render sample PDF: %w", err)
	}
	return buf.Bytes(), nil
}
