package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter exports sessions to PDF format.
type PDFExporter struct{}

// Export writes the session as PDF.
func (e *PDFExporter) Export(b *Bundle, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(0, 10, e.sanitizeText("Session "+b.Session.Name), "", "C", false)
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Session Information")
	pdf.Ln(8)

	e.addMetadataRow(pdf, "ID:", b.Session.ID)
	e.addMetadataRow(pdf, "Case:", string(b.Session.Case))
	e.addMetadataRow(pdf, "Participants:", fmt.Sprintf("%d", len(b.Participants)))
	e.addMetadataRow(pdf, "Games:", fmt.Sprintf("%d", len(b.Games)))
	e.addMetadataRow(pdf, "Created:", b.local(b.Session.CreatedAt).Format("January 2, 2006 at 3:04 PM"))
	pdf.Ln(5)

	if len(b.Games) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "No games scheduled.")
		pdf.Ln(6)
	}

	for i, r := range b.Games {
		if pdf.GetY() > 230 {
			pdf.AddPage()
		}

		pdf.SetFillColor(220, 220, 220)
		pdf.SetFont("Arial", "B", 11)
		pdf.MultiCell(0, 7, e.sanitizeText(fmt.Sprintf("%d. %s", i+1, r.Name())), "", "", true)

		e.addMetadataRow(pdf, "State:", fmt.Sprintf("%s / %s", r.Game.Context, r.Game.Turn))
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, e.sanitizeText("Rule: "+ruleName(r.Game)), "", "", false)
		pdf.Ln(2)

		e.addSeatBox(pdf, "Advocate", r.Advocate, 200, 230, 255) // Light blue
		e.addSeatBox(pdf, "Critic", r.Critic, 255, 220, 200)     // Light orange
		pdf.Ln(2)

		if len(r.Facts) > 0 {
			pdf.SetFont("Arial", "B", 10)
			pdf.Cell(0, 6, "Facts")
			pdf.Ln(6)
			pdf.SetFont("Arial", "", 9)
			for _, f := range r.Facts {
				pdf.MultiCell(0, 5, e.sanitizeText("- "+f.Source+" | "+f.Target), "", "", false)
			}
			pdf.Ln(2)
		}

		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Moves")
		pdf.Ln(6)
		if len(r.Moves) == 0 {
			pdf.SetFont("Arial", "I", 9)
			pdf.Cell(0, 5, "No moves recorded.")
			pdf.Ln(5)
		}
		for _, m := range r.Moves {
			if pdf.GetY() > 260 {
				pdf.AddPage()
			}
			who := b.participantName(m.ParticipantID)
			if who == "" {
				who = "System"
			}
			pdf.SetFont("Arial", "B", 9)
			header := fmt.Sprintf("%d. %s - %s (%s)", m.Number, m.Code, who, b.local(m.CreatedAt).Format("3:04 PM"))
			pdf.CellFormat(0, 5, e.sanitizeText(header), "", 1, "", false, 0, "")
			pdf.SetFont("Arial", "", 9)
			pdf.MultiCell(0, 5, e.sanitizeText(m.Text), "", "", false)
		}

		for _, rep := range r.Reports {
			if rep.Resolved {
				pdf.SetFillColor(200, 255, 200) // Light green
			} else {
				pdf.SetFillColor(255, 200, 200) // Light red
			}
			pdf.SetFont("Arial", "B", 9)
			pdf.CellFormat(0, 6, "Report", "", 1, "", true, 0, "")
			pdf.SetFont("Arial", "", 9)
			text := rep.Text
			if rep.Resolved {
				text += "\nReviewed: " + rep.Note + " (returned to " + rep.Returned.String() + ")"
			}
			pdf.MultiCell(0, 5, e.sanitizeText(text), "", "", false)
		}
		pdf.Ln(5)
	}

	// Footer
	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 10, "Exported from warrant", "", 0, "C", false, 0, "")

	return pdf.Output(w)
}

// FileExtension returns the file extension for PDF.
func (e *PDFExporter) FileExtension() string {
	return "pdf"
}

func (e *PDFExporter) addMetadataRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(30, 5, label)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, e.sanitizeText(value))
	pdf.Ln(5)
}

func (e *PDFExporter) addSeatBox(pdf *gofpdf.Fpdf, title string, s *Seat, r, g, b int) {
	pdf.SetFillColor(r, g, b)
	pdf.SetFont("Arial", "B", 9)
	if s == nil || s.Slot == nil {
		pdf.CellFormat(0, 6, title+": detached", "", 1, "", true, 0, "")
		return
	}
	line := fmt.Sprintf("%s: %s (%s on task)", title, seatName(s), formatDuration(s.Slot.Seconds))
	pdf.CellFormat(0, 6, e.sanitizeText(line), "", 1, "", true, 0, "")
	pdf.SetFillColor(255, 255, 255)
}

// sanitizeText maps characters outside Windows-1252 that gofpdf cannot render.
func (e *PDFExporter) sanitizeText(text string) string {
	replacer := strings.NewReplacer(
		"\u2018", "'",   // Left single quote
		"\u2019", "'",   // Right single quote
		"\u201C", "\"",  // Left double quote
		"\u201D", "\"",  // Right double quote
		"\u2013", "-",   // En dash
		"\u2014", "--",  // Em dash
		"\u2026", "...", // Ellipsis
		"\u2022", "*",   // Bullet
		"\u00A0", " ",   // Non-breaking space
	)
	return replacer.Replace(text)
}
