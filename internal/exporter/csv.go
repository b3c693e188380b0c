package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/Kolique/controle-tele/internal/model"
)

// ExportCSV writes the anomalous rows as CSV, original cells untouched plus
// the Anomalie column, using the delimiter the upload was sniffed with.
func (e *Exporter) ExportCSV(inv *model.Inventory, report *model.Report, delimiter rune) ([]byte, error) {
	if delimiter == 0 {
		delimiter = ','
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delimiter

	header := append(append([]string{}, inv.Header...), anomalyColumnTitle)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("écriture en-tête: %w", err)
	}

	for _, rec := range report.Anomalous {
		row := make([]string, 0, len(inv.Header)+1)
		for c := range inv.Header {
			v := ""
			if c < len(rec.Cells) {
				v = rec.Cells[c]
			}
			row = append(row, v)
		}
		row = append(row, joinKinds(rec.Kinds))
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("écriture ligne %d: %w", rec.RowNum, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
