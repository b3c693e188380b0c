// Package exporter renders a validation report as a downloadable file. The
// XLSX export carries a summary sheet, an all-anomalies sheet and one sheet
// per anomaly kind, with the cells that caused each anomaly highlighted; the
// CSV export mirrors the delimiter of the uploaded file.
package exporter

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Kolique/controle-tele/internal/model"
)

const (
	summarySheet   = "Synthèse"
	anomaliesSheet = "Anomalies"

	// anomalyColumnTitle is appended after the original columns, as in the
	// historical reports.
	anomalyColumnTitle = "Anomalie"
)

// Exporter writes XLSX reports. Styles are created per workbook and cached.
type Exporter struct{}

// New creates an exporter.
func New() *Exporter {
	return &Exporter{}
}

type workbookStyles struct {
	header    int
	highlight int
	label     int
}

// ExportXLSX builds the styled workbook for one validation pass.
func (e *Exporter) ExportXLSX(inv *model.Inventory, report *model.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	styles, err := buildStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := e.writeSummary(f, styles, report); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := e.writeRecordsSheet(f, styles, anomaliesSheet, inv, report.Anomalous); err != nil {
		_ = f.Close()
		return nil, err
	}
	for i, kc := range report.Counts {
		rows := recordsWithKind(report.Anomalous, kc.Kind)
		if err := e.writeRecordsSheet(f, styles, kindSheetName(i), inv, rows); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	// Drop the default sheet and land the user on the summary.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		_ = f.Close()
		return nil, err
	}
	idx, err := f.GetSheetIndex(summarySheet)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

func buildStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Style: 1, Color: "#4472C4"},
		},
	})
	if err != nil {
		return s, fmt.Errorf("style en-tête: %w", err)
	}

	s.highlight, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
		Font: &excelize.Font{Color: "#9C0006"},
	})
	if err != nil {
		return s, fmt.Errorf("style surbrillance: %w", err)
	}

	s.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Italic: true, Color: "#9C0006"},
	})
	if err != nil {
		return s, fmt.Errorf("style libellé: %w", err)
	}

	return s, nil
}

// writeSummary fills the Synthèse sheet: one row per anomaly kind with its
// occurrence count and a hyperlink to the matching per-kind sheet.
func (e *Exporter) writeSummary(f *excelize.File, styles workbookStyles, report *model.Report) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("feuille %s: %w", summarySheet, err)
	}

	if err := f.SetSheetRow(summarySheet, "A1", &[]any{
		"Anomalie", "Occurrences", "Feuille",
	}); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "C1", styles.header); err != nil {
		return err
	}

	for i, kc := range report.Counts {
		row := i + 2
		sheet := kindSheetName(i)
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &[]any{
			string(kc.Kind), kc.Count, sheet,
		}); err != nil {
			return err
		}
		link := fmt.Sprintf("'%s'!A1", sheet)
		if err := f.SetCellHyperLink(summarySheet, fmt.Sprintf("C%d", row), link, "Location"); err != nil {
			return err
		}
	}

	totalRow := len(report.Counts) + 3
	if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", totalRow), &[]any{
		"Lignes contrôlées", report.TotalRecords,
	}); err != nil {
		return err
	}
	if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", totalRow+1), &[]any{
		"Lignes en anomalie", len(report.Anomalous),
	}); err != nil {
		return err
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 70); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "B", "C", 16)
}

// writeRecordsSheet writes one sheet of annotated records: the original
// columns plus the Anomalie column, implicated cells highlighted.
func (e *Exporter) writeRecordsSheet(
	f *excelize.File,
	styles workbookStyles,
	sheet string,
	inv *model.Inventory,
	records []model.AnnotatedRecord,
) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("feuille %s: %w", sheet, err)
	}

	header := make([]any, 0, len(inv.Header)+1)
	for _, h := range inv.Header {
		header = append(header, h)
	}
	header = append(header, anomalyColumnTitle)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, styles.header); err != nil {
		return err
	}

	for i, rec := range records {
		rowNum := i + 2

		cells := make([]any, 0, len(inv.Header)+1)
		for c := range inv.Header {
			v := ""
			if c < len(rec.Cells) {
				v = rec.Cells[c]
			}
			cells = append(cells, v)
		}
		cells = append(cells, joinKinds(rec.Kinds))
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &cells); err != nil {
			return err
		}

		labelCell, err := excelize.CoordinatesToCellName(len(cells), rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, labelCell, labelCell, styles.label); err != nil {
			return err
		}

		for _, col := range implicatedColumns(inv, rec.Kinds) {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, styles.highlight); err != nil {
				return err
			}
		}
	}

	return nil
}

// implicatedColumns resolves the file columns to highlight for a kind set.
func implicatedColumns(inv *model.Inventory, kinds []model.AnomalyKind) []int {
	seen := map[int]bool{}
	var cols []int
	for _, k := range kinds {
		for _, field := range model.KindFields[k] {
			idx, ok := inv.FieldColumns[field]
			if !ok || seen[idx] {
				continue
			}
			seen[idx] = true
			cols = append(cols, idx)
		}
	}
	return cols
}

// recordsWithKind filters the annotated records carrying one kind.
func recordsWithKind(records []model.AnnotatedRecord, kind model.AnomalyKind) []model.AnnotatedRecord {
	var out []model.AnnotatedRecord
	for _, rec := range records {
		for _, k := range rec.Kinds {
			if k == kind {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// kindSheetName names the per-kind sheets. The labels themselves hold
// characters Excel forbids in sheet names, so sheets are numbered and the
// summary carries the label.
func kindSheetName(i int) string {
	return fmt.Sprintf("Anomalie %02d", i+1)
}

// joinKinds renders the label list the way the historical reports did.
func joinKinds(kinds []model.AnomalyKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, "; ")
}
