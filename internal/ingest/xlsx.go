package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads a workbook into an inventory. When the workbook holds
// several sheets, the one whose first row maps the most canonical fields is
// taken as the inventory sheet; ties go to sheet order.
func ParseXLSX(filename string, data []byte) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ouverture du classeur: %w", err)
	}
	defer f.Close()

	sheet, rows, err := pickInventorySheet(f)
	if err != nil {
		return nil, err
	}

	return &Result{
		Inventory: buildInventory(filename, rows[0], rows[1:]),
		Sheet:     sheet,
	}, nil
}

// pickInventorySheet scores every sheet by how many canonical fields its
// header row binds.
func pickInventorySheet(f *excelize.File) (string, [][]string, error) {
	var (
		bestSheet string
		bestRows  [][]string
		bestScore = -1
	)

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		score := len(MapHeader(rows[0]))
		if score > bestScore {
			bestSheet = name
			bestRows = rows
			bestScore = score
		}
	}

	if bestScore < 0 {
		return "", nil, fmt.Errorf("classeur sans feuille exploitable")
	}
	return bestSheet, bestRows, nil
}
