package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Kolique/controle-tele/internal/engine"
	"github.com/Kolique/controle-tele/internal/ingest"
	"github.com/Kolique/controle-tele/internal/model"
)

const fixtureCSV = `Protocole Radio;Marque;Numéro de compteur;Numéro de tête;Latitude;Longitude;Millésime;Diamètre;Traité;Mode de relève
SGX;KAMSTRUP;12345678;;48.85;2.35;2015;40;750001;TELERELEVE
SGX;SAPPEL (C);PASBON;1234567890123456;45.76;4.83;2015;25;750001;TELERELEVE
SGX;KAMSTRUP;12345678;;nord;2.35;2015;40;750001;TELERELEVE
`

func fixture(t *testing.T) (*ingest.Result, *model.Report) {
	t.Helper()
	res, err := ingest.ParseCSV("inventaire.csv", []byte(fixtureCSV))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	report, err := engine.New().Validate(res.Inventory)
	if err != nil {
		t.Fatalf("validate fixture: %v", err)
	}
	return res, report
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	res, report := fixture(t)
	out, err := New().ExportCSV(res.Inventory, report, res.Delimiter)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	// Header plus the two anomalous rows; the conforming row is excluded.
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3\n%s", len(lines), out)
	}
	if !strings.HasSuffix(lines[0], ";Anomalie") {
		t.Fatalf("header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "PASBON") {
		t.Fatalf("first anomalous row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "nord") {
		t.Fatalf("second anomalous row: %q", lines[2])
	}
}

func TestExportXLSX_SheetsAndHighlighting(t *testing.T) {
	t.Parallel()

	res, report := fixture(t)
	f, err := New().ExportXLSX(res.Inventory, report)
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	_ = f.Close()

	re, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer re.Close()

	sheets := re.GetSheetList()
	joined := strings.Join(sheets, "|")
	if !strings.Contains(joined, "Synthèse") || !strings.Contains(joined, "Anomalies") {
		t.Fatalf("sheets = %v", sheets)
	}
	// One numbered sheet per kind in the summary.
	wantSheets := 2 + len(report.Counts)
	if len(sheets) != wantSheets {
		t.Fatalf("sheet count = %d, want %d (%v)", len(sheets), wantSheets, sheets)
	}

	// Summary row 2 carries the most frequent kind and its count.
	label, err := re.GetCellValue("Synthèse", "A2")
	if err != nil || label == "" {
		t.Fatalf("summary label: %q err=%v", label, err)
	}

	// The anomalies sheet keeps original cells and appends the label column.
	serial, err := re.GetCellValue("Anomalies", "C2")
	if err != nil {
		t.Fatalf("anomalies cell: %v", err)
	}
	if serial != "PASBON" {
		t.Fatalf("anomalies C2 = %q", serial)
	}
	labelCol, err := excelize.CoordinatesToCellName(len(res.Inventory.Header)+1, 2)
	if err != nil {
		t.Fatalf("label cell name: %v", err)
	}
	labels, err := re.GetCellValue("Anomalies", labelCol)
	if err != nil || labels == "" {
		t.Fatalf("label cell %s = %q err=%v", labelCol, labels, err)
	}
	if !strings.Contains(labels, "FP2E") {
		t.Fatalf("labels = %q", labels)
	}
}
