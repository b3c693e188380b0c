package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Kolique/controle-tele/internal/model"
)

// fieldAliases maps a canonical field to the header spellings seen in the
// field files, in normalized form (lower case, accents stripped, spacing and
// punctuation removed). Order matters: the first alias that matches wins.
var fieldAliases = map[string][]string{
	model.FieldRadioProtocol:   {"protocoleradio", "protocole"},
	model.FieldManufacturer:    {"marque", "fabricant", "constructeur"},
	model.FieldMeterSerial:     {"numerodecompteur", "numcompteur", "ndecompteur", "compteur"},
	model.FieldHeadSerial:      {"numerodetete", "numtete", "ndetete", "tete"},
	model.FieldLatitude:        {"latitude", "lat"},
	model.FieldLongitude:       {"longitude", "long", "lng"},
	model.FieldManufactureYear: {"millesime", "anneedefabrication", "annee"},
	model.FieldDiameter:        {"diametre", "diametrenominal", "dn"},
	model.FieldNetworkCode:     {"traite", "reseau"},
	model.FieldReadingMode:     {"modedereleve", "modereleve", "releve"},
}

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeColumnName folds a header cell into its comparable form: accents
// stripped, lower case, letters and digits only.
func NormalizeColumnName(name string) string {
	folded, _, err := transform.String(deaccent, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MapHeader binds header columns to canonical fields. Each canonical field
// binds to at most one column and each column to at most one field; exact
// alias matches are tried for the whole header before the looser
// contains-match fallback, so "Numéro de compteur" never steals the column
// of "Numéro de tête".
func MapHeader(header []string) map[int]string {
	normalized := make([]string, len(header))
	for i, col := range header {
		normalized[i] = NormalizeColumnName(col)
	}

	fieldByCol := make(map[int]string)
	bound := make(map[string]bool)

	match := func(exact bool) {
		for _, field := range model.AllFields {
			if bound[field] {
				continue
			}
			for _, alias := range fieldAliases[field] {
				done := false
				for idx, col := range normalized {
					if col == "" {
						continue
					}
					if _, taken := fieldByCol[idx]; taken {
						continue
					}
					ok := col == alias
					if !exact {
						ok = strings.Contains(col, alias)
					}
					if ok {
						fieldByCol[idx] = field
						bound[field] = true
						done = true
						break
					}
				}
				if done {
					break
				}
			}
		}
	}

	match(true)
	match(false)
	return fieldByCol
}

// columnsOf lists the canonical fields present in a header mapping, in
// canonical display order.
func columnsOf(fieldByCol map[int]string) []string {
	present := make(map[string]bool, len(fieldByCol))
	for _, f := range fieldByCol {
		present[f] = true
	}
	out := make([]string, 0, len(present))
	for _, f := range model.AllFields {
		if present[f] {
			out = append(out, f)
		}
	}
	return out
}
