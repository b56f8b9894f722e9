// Package report renders the personalized LifeClock report to PDF bytes.
package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Document is the content model of one report. Validation happens upstream;
// the renderer assumes a complete document.
type Document struct {
	UserName    string
	FinalReport string
	Forces      []string
	Revelations []string
}

// PDFRenderer renders Documents with a fixed A4 layout.
type PDFRenderer struct{}

// Render produces the report as PDF bytes.
func (PDFRenderer) Render(_ context.Context, doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("LifeClock Report - %s", doc.UserName), true)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetMargins(20, 20, 20)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 24)
	pdf.MultiCell(0, 12, fmt.Sprintf("LifeClock Report for %s", doc.UserName), "", "C", false)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, doc.FinalReport, "", "L", false)

	pdf.AddPage()
	heading(pdf, "Your Forces")
	for _, force := range doc.Forces {
		bullet(pdf, force)
	}

	pdf.AddPage()
	heading(pdf, "The 47 Revelations")
	for i, rev := range doc.Revelations {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("Revelation %d", i+1), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, rev, "", "L", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 9, text, "", "L", false)
	pdf.Ln(4)
}

func bullet(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, "- "+text, "", "L", false)
	pdf.Ln(1)
}
