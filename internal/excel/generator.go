package excel

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ecologics/collection-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.ActivityReport) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, report); err != nil {
		return nil, err
	}

	detailSheet := "Collections"
	file.NewSheet(detailSheet)
	if err := g.writeDetail(file, detailSheet, report); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.ActivityReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Report")
	set("B1", "Completed collections")
	set("A2", "Period start")
	set("B2", formatDate(report.PeriodStart))
	set("A3", "Period end")
	set("B3", formatDate(report.PeriodEnd))
	set("A4", "Collections")
	set("B4", len(report.Entries))
	set("A5", "Total collected, kg")
	set("B5", formatKg(report.TotalKg))

	tableRow := 7
	set(fmt.Sprintf("A%d", tableRow), "Category")
	set(fmt.Sprintf("B%d", tableRow), "Collections")
	set(fmt.Sprintf("C%d", tableRow), "Collected, kg")

	for i, category := range sortedCategories(report.Categories) {
		stat := report.Categories[category]
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), category)
		set(fmt.Sprintf("B%d", row), stat.Count)
		set(fmt.Sprintf("C%d", row), formatKg(stat.Kg))
	}

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "B", 16)
	_ = file.SetColWidth(sheet, "C", "C", 16)
	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, report model.ActivityReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Finalized",
		"Started",
		"Category",
		"Mass, kg",
		"Requester",
		"Collector",
		"Evidence",
		"Duration, h",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, entry := range report.Entries {
		row := 2 + i
		set(fmt.Sprintf("A%d", row), formatDateTime(entry.FinalizedAt))
		set(fmt.Sprintf("B%d", row), formatDateTime(entry.StartedAt))
		set(fmt.Sprintf("C%d", row), entry.Category)
		set(fmt.Sprintf("D%d", row), formatKg(entry.MassKg))
		set(fmt.Sprintf("E%d", row), entry.RequesterName)
		set(fmt.Sprintf("F%d", row), entry.CollectorName)
		set(fmt.Sprintf("G%d", row), string(entry.Evidence))
		set(fmt.Sprintf("H%d", row), formatFloat(entry.DurationHours))
	}

	_ = file.SetColWidth(sheet, "A", "B", 20)
	_ = file.SetColWidth(sheet, "C", "C", 18)
	_ = file.SetColWidth(sheet, "D", "D", 12)
	_ = file.SetColWidth(sheet, "E", "F", 28)
	_ = file.SetColWidth(sheet, "G", "G", 22)
	_ = file.SetColWidth(sheet, "H", "H", 12)
	return nil
}

func sortedCategories(categories map[string]model.CategoryStat) []string {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *value)
}

func formatKg(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
