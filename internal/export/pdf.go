package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"merry/internal/domain/models"
)

// renderPDF renders either document kind to pdf bytes. Word documents render
// as headed prose, excel documents as simple tables.
func renderPDF(doc *models.Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 10, doc.Title, "", "C", false)
	pdf.Ln(4)

	switch doc.Kind {
	case models.KindWord:
		for _, section := range doc.Content.Sections {
			pdfSection(pdf, &section)
		}
	case models.KindExcel:
		for _, sheet := range doc.Content.Sheets {
			pdfSheet(pdf, &sheet)
		}
	}

	if len(doc.Content.Sources) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 7, "Sources", "", "L", false)
		pdf.SetFont("Helvetica", "", 9)
		for _, src := range doc.Content.Sources {
			line := src.Title
			if src.URL != "" {
				line = fmt.Sprintf("%s (%s)", src.Title, src.URL)
			}
			pdf.MultiCell(0, 5, line, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pdfSection(pdf *gofpdf.Fpdf, section *models.Section) {
	size := 16.0 - float64(section.Level)*2
	if size < 11 {
		size = 11
	}
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, 8, section.Heading, "", "L", false)

	if section.Content != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, section.Content, "", "L", false)
	}
	pdf.Ln(3)

	for _, child := range section.Children {
		pdfSection(pdf, &child)
	}
}

func pdfSheet(pdf *gofpdf.Fpdf, sheet *models.Sheet) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.MultiCell(0, 8, sheet.Name, "", "L", false)

	if len(sheet.Columns) == 0 {
		return
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(sheet.Columns))

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)
	for _, column := range sheet.Columns {
		pdf.CellFormat(colWidth, 7, column.Name, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range sheet.Rows {
		for _, column := range sheet.Columns {
			pdf.CellFormat(colWidth, 6, cellString(row.Cells[column.ID]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}
