package services

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/huangang/venturelink/internal/models"
)

// PDFRenderer turns a timely report into the PDF mailed to investors.
type PDFRenderer struct {
	currency string
}

func NewPDFRenderer(currency string) *PDFRenderer {
	return &PDFRenderer{currency: currency}
}

func (r *PDFRenderer) RenderTimelyReport(report *models.TimelyReport, startupName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.SetTitle(report.Title, true)
	pdf.SetAuthor(startupName, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(startupName), "", "L", false)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 8, tr(report.Title), "", "L", false)
	if report.ReportingPeriod != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, tr("Reporting period: "+report.ReportingPeriod), "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Key figures", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	figures := [][2]string{
		{"Monthly revenue", r.money(report.MonthlyRevenue)},
		{"Monthly burn", r.money(report.MonthlyBurn)},
		{"Cash runway", fmt.Sprintf("%s months", strconv.FormatFloat(report.CashRunway, 'f', -1, 64))},
		{"Team size", strconv.Itoa(report.TeamSize)},
	}
	for _, f := range figures {
		pdf.CellFormat(60, 7, f[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(f[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	sections := []struct{ title, body string }{
		{"Key metrics", report.KeyMetrics},
		{"Key achievements", report.KeyAchievements},
		{"Challenges and learnings", report.ChallengesAndLearnings},
		{"Other key metrics", report.OtherKeyMetrics},
		{"Asks from investors", report.AsksFromInvestors},
	}
	for _, sec := range sections {
		if sec.body == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, sec.title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(sec.body), "", "L", false)
		pdf.Ln(3)
	}

	if len(report.Attachments) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Attachments", "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, a := range report.Attachments {
			pdf.MultiCell(0, 6, tr("- "+a.FileName), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) money(v float64) string {
	return r.currency + strconv.FormatFloat(v, 'f', 2, 64)
}
