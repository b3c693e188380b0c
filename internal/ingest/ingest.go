// Package ingest turns an uploaded CSV or XLSX file into a model.Inventory:
// it sniffs the CSV delimiter, maps the header onto the canonical fields and
// materializes one Record per data row. It performs no validation beyond the
// file being readable; rule evaluation belongs to the engine.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Kolique/controle-tele/internal/model"
)

// Result is one parsed upload. Delimiter is only meaningful for CSV input
// (the CSV download mirrors it); Sheet only for XLSX input.
type Result struct {
	Inventory *model.Inventory
	Delimiter rune
	Sheet     string
}

// Parse dispatches on the file extension. Unsupported extensions are an
// error, matching the upload endpoint's accepted formats.
func Parse(filename string, data []byte) (*Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(filename, data)
	case ".xlsx", ".xls":
		return ParseXLSX(filename, data)
	default:
		return nil, fmt.Errorf("format non pris en charge: %s (csv/xlsx attendus)", filepath.Ext(filename))
	}
}

// buildInventory materializes records from a header plus data rows. Rows
// whose cells are all blank are skipped; every other row is kept, whatever
// its content, so that no record silently escapes validation.
func buildInventory(filename string, header []string, rows [][]string) *model.Inventory {
	fieldByCol := MapHeader(header)

	fieldColumns := make(map[string]int, len(fieldByCol))
	for idx, field := range fieldByCol {
		fieldColumns[field] = idx
	}

	inv := &model.Inventory{
		Filename:     filename,
		Header:       header,
		Columns:      columnsOf(fieldByCol),
		Records:      make([]model.Record, 0, len(rows)),
		FieldColumns: fieldColumns,
	}

	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		rec := model.Record{RowNum: i + 1, Cells: row}
		for idx, field := range fieldByCol {
			if idx < len(row) {
				rec.SetField(field, row[idx])
			}
		}
		inv.Records = append(inv.Records, rec)
	}

	return inv
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
