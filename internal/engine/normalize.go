package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Kolique/controle-tele/internal/model"
)

// missingMarkers are textual stand-ins for an absent value, as exported by
// the usual upstream tools. Compared upper-cased after trimming.
var missingMarkers = map[string]struct{}{
	"NULL": {},
	"N/A":  {},
	"NA":   {},
	"NAN":  {},
}

// coordinate is a parsed latitude or longitude. present is false when the
// cell was absent; numeric is false when the cell held something that does
// not parse as a number (absent counts as non-numeric for rule purposes).
type coordinate struct {
	present bool
	numeric bool
	value   float64
}

// normRecord is the canonical typed view of one record. Built per record by
// normalize; a pure transform of the raw cells, the Record itself is never
// touched.
type normRecord struct {
	radioProtocol string // upper-cased, "" when absent
	family        string // manufacturer family key, "" when absent
	meterSerial   string
	headSerial    string
	lat, lon      coordinate
	year          string // two digits, zero-padded, "" when missing
	diameter      int
	diameterOK    bool
	networkCode   string
	manual        bool
}

// cleanString trims a raw cell and collapses the textual missing markers to
// the empty string.
func cleanString(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if _, ok := missingMarkers[strings.ToUpper(s)]; ok {
		return ""
	}
	return s
}

// parseCoordinate parses a latitude or longitude cell. A comma decimal
// separator is accepted, the source files being French exports.
func parseCoordinate(raw string) coordinate {
	s := cleanString(raw)
	if s == "" {
		return coordinate{}
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return coordinate{present: true}
	}
	return coordinate{present: true, numeric: true, value: v}
}

// normalizeYear reduces a manufacture year to its two-digit form: a 4-digit
// year keeps its last two digits, anything shorter is zero-padded to width 2
// (2008 -> "08", 8 -> "08"). Unparsable input means the year is missing.
func normalizeYear(raw string) string {
	s := cleanString(raw)
	if s == "" {
		return ""
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 0 {
		return ""
	}
	return fmt.Sprintf("%02d", y%100)
}

// manufacturerFamily maps a raw manufacturer cell onto its dispatch key:
// upper-cased with all whitespace removed, so the "(C)" spacing variants
// collapse together. Unrecognized values keep their key and simply fail to
// match any family.
func manufacturerFamily(raw string) string {
	s := cleanString(raw)
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToUpper(s)), "")
}

// normalize builds the canonical view of one record.
func normalize(r *model.Record) normRecord {
	n := normRecord{
		radioProtocol: strings.ToUpper(cleanString(r.RadioProtocol)),
		family:        manufacturerFamily(r.Manufacturer),
		meterSerial:   cleanString(r.MeterSerial),
		headSerial:    cleanString(r.HeadSerial),
		lat:           parseCoordinate(r.Latitude),
		lon:           parseCoordinate(r.Longitude),
		year:          normalizeYear(r.ManufactureYear),
		networkCode:   cleanString(r.NetworkCode),
		manual:        strings.EqualFold(cleanString(r.ReadingMode), modeManual),
	}
	if d := cleanString(r.Diameter); d != "" {
		if v, err := strconv.Atoi(d); err == nil {
			n.diameter = v
			n.diameterOK = true
		}
	}
	return n
}

// allDigits reports whether s is non-empty and made of ASCII digits only.
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
