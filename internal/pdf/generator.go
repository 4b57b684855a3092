package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/ecologics/collection-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(report model.ActivityReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	// Core fonts are cp1252; categories and names carry accents, so every
	// drawn string goes through the UTF-8 translator.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Completed collections report"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Period: %s to %s", formatDate(report.PeriodStart), formatDate(report.PeriodEnd))), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Collections: %d    Total collected: %.2f kg", len(report.Entries), report.TotalKg)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("By category"), "", 1, "L", false, 0, "")

	categoryWidths := []float64{80, 40, 40}
	drawTableRow(pdf, g.fontName, tr, []string{"Category", "Collections", "Collected, kg"}, categoryWidths, true)
	for _, category := range sortedCategories(report.Categories) {
		stat := report.Categories[category]
		drawTableRow(pdf, g.fontName, tr, []string{
			category,
			fmt.Sprintf("%d", stat.Count),
			fmt.Sprintf("%.2f", stat.Kg),
		}, categoryWidths, false)
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Collections"), "", 1, "L", false, 0, "")

	headers := []string{"Finalized", "Category", "Mass, kg", "Requester", "Collector", "Evidence"}
	colWidths := []float64{38, 36, 22, 58, 58, 55}
	drawTableRow(pdf, g.fontName, tr, headers, colWidths, true)

	for _, entry := range report.Entries {
		row := []string{
			formatDateTime(entry.FinalizedAt),
			entry.Category,
			fmt.Sprintf("%.2f", entry.MassKg),
			safeValue(entry.RequesterName),
			safeValue(entry.CollectorName),
			string(entry.Evidence),
		}
		drawTableRow(pdf, g.fontName, tr, row, colWidths, false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i == 2 && !header {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func sortedCategories(categories map[string]model.CategoryStat) []string {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
