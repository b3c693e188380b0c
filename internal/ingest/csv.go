package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// delimiter candidates, most common first in the field files.
var delimiterCandidates = []rune{';', ',', '\t', '|'}

// sniffSample caps how much of the file the sniffer looks at.
const sniffSample = 2048

// SniffDelimiter picks the most plausible delimiter by counting candidate
// occurrences over the first lines of a sample. Falls back to the comma when
// nothing stands out.
func SniffDelimiter(data []byte) rune {
	sample := data
	if len(sample) > sniffSample {
		sample = sample[:sniffSample]
	}
	// Only the first line is reliable: cell contents further down may
	// contain any character.
	if i := bytes.IndexByte(sample, '\n'); i > 0 {
		sample = sample[:i]
	}

	best := ','
	bestCount := 0
	for _, cand := range delimiterCandidates {
		n := bytes.Count(sample, []byte(string(cand)))
		if n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best
}

// ParseCSV reads a delimited file into an inventory. A UTF-8 BOM is
// tolerated, ragged rows are accepted (short rows leave the trailing fields
// absent) and quoting follows encoding/csv with lazy quotes.
func ParseCSV(filename string, data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	delim := SniffDelimiter(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("lecture CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fichier CSV vide")
	}

	return &Result{
		Inventory: buildInventory(filename, rows[0], rows[1:]),
		Delimiter: delim,
	}, nil
}
