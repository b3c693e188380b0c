package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Kolique/controle-tele/internal/model"
)

// Validator evaluates the fixed rule catalogue against an inventory. It is
// stateless across passes and safe for concurrent use; each record is
// evaluated independently of every other record.
type Validator struct{}

// New creates a validator. The catalogue itself is package data built at
// process start, so this is cheap.
func New() *Validator {
	return &Validator{}
}

// Validate runs one full pass. A missing required column is a structural
// failure: the pass aborts with an error and no partial results. Per-record
// problems never abort the pass; they become anomaly kinds on the record.
func (v *Validator) Validate(inv *model.Inventory) (*model.Report, error) {
	if err := checkRequiredColumns(inv); err != nil {
		return nil, err
	}

	report := &model.Report{TotalRecords: len(inv.Records)}
	counts := make(map[model.AnomalyKind]int)
	var firstSeen []model.AnomalyKind

	for i := range inv.Records {
		rec := &inv.Records[i]
		kinds := v.evaluate(rec)
		if len(kinds) == 0 {
			continue
		}
		report.Anomalous = append(report.Anomalous, model.AnnotatedRecord{
			Record: *rec,
			Kinds:  kinds,
		})
		for _, k := range kinds {
			if counts[k] == 0 {
				firstSeen = append(firstSeen, k)
			}
			counts[k]++
		}
	}

	report.Counts = summarize(counts, firstSeen)
	return report, nil
}

// Evaluate returns the anomaly kinds of a single record, in rule order and
// deduplicated. Exposed for the preview endpoint and tests.
func (v *Validator) Evaluate(rec *model.Record) []model.AnomalyKind {
	return v.evaluate(rec)
}

func (v *Validator) evaluate(rec *model.Record) []model.AnomalyKind {
	n := normalize(rec)
	rr := &rowResult{}

	checkPresence(n, rr)
	checkCoordinates(n, rr)
	checkKamstrup(n, rr)
	checkSappel(n, rr)
	checkItron(n, rr)
	checkSerialPrefix(n, rr)
	checkFP2E(n, rr)
	checkNetworkProtocol(n, rr)

	return rr.kinds
}

// rowResult accumulates anomaly kinds for one record. Kinds are recorded at
// most once each, in the order the rules fired.
type rowResult struct {
	kinds []model.AnomalyKind
	seen  map[model.AnomalyKind]struct{}
}

func (rr *rowResult) add(k model.AnomalyKind) {
	if rr.seen == nil {
		rr.seen = make(map[model.AnomalyKind]struct{})
	}
	if _, dup := rr.seen[k]; dup {
		return
	}
	rr.seen[k] = struct{}{}
	rr.kinds = append(rr.kinds, k)
}

// checkRequiredColumns is the structural precondition of the whole pass.
func checkRequiredColumns(inv *model.Inventory) error {
	var missing []string
	for _, col := range RequiredColumns {
		if !inv.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("colonnes requises absentes: %s", strings.Join(missing, ", "))
	}
	return nil
}

// checkPresence covers the general empty-field rules. Manual readings need
// neither a radio protocol nor a head serial; KAMSTRUP meters carry no head
// unit at all.
func checkPresence(n normRecord, rr *rowResult) {
	if n.radioProtocol == "" && !n.manual {
		rr.add(model.KindRadioProtocolMissing)
	}
	if n.family == "" {
		rr.add(model.KindManufacturerMissing)
	}
	if n.meterSerial == "" {
		rr.add(model.KindMeterSerialMissing)
	}
	if !n.diameterOK {
		rr.add(model.KindDiameterMissing)
	}
	if n.year == "" {
		rr.add(model.KindYearMissing)
	}
	if n.headSerial == "" && n.family != famKamstrup && !n.manual {
		rr.add(model.KindHeadSerialMissing)
	}
}

// checkCoordinates runs the two coordinate rules per field, independently:
// one coordinate can be non-numeric while the other is out of range, and
// both kinds then fire on the record. Zero is treated as invalid even
// though it is inside the nominal range.
func checkCoordinates(n normRecord, rr *rowResult) {
	if !n.lat.numeric || !n.lon.numeric {
		rr.add(model.KindCoordsNotNumeric)
	}
	invalid := func(c coordinate, limit float64) bool {
		return c.numeric && (c.value == 0 || c.value < -limit || c.value > limit)
	}
	if invalid(n.lat, 90) || invalid(n.lon, 180) {
		rr.add(model.KindCoordsInvalid)
	}
}

// checkKamstrup: 8-digit meter serial, identical to the head serial when a
// head serial is present, diameter within [15,80]. Length and digit rules
// only apply to present values; absence is already covered by checkPresence.
func checkKamstrup(n normRecord, rr *rowResult) {
	if n.family != famKamstrup {
		return
	}
	if n.meterSerial != "" && len(n.meterSerial) != 8 {
		rr.add(model.KindKamstrupSerialLength)
	}
	if n.headSerial != "" {
		if n.meterSerial != n.headSerial {
			rr.add(model.KindKamstrupHeadMismatch)
		}
		if !allDigits(n.meterSerial) || !allDigits(n.headSerial) {
			rr.add(model.KindKamstrupNotNumeric)
		}
	}
	if n.diameterOK && (n.diameter < 15 || n.diameter > 80) {
		rr.add(model.KindKamstrupDiameter)
	}
}

// checkSappel: 16-character head serial when present, FP2E-conforming meter
// serial. The C/H prefix consistency is handled by checkSerialPrefix, which
// applies to every manufacturer.
func checkSappel(n normRecord, rr *rowResult) {
	if n.family != famSappelC && n.family != famSappelH {
		return
	}
	if n.headSerial != "" && len(n.headSerial) != 16 {
		rr.add(model.KindSappelHeadLength)
	}
	if n.meterSerial != "" && !fp2ePattern.MatchString(n.meterSerial) {
		rr.add(model.KindSappelSerialFormat)
	}
}

// checkItron: 8-character head serial when present. The I/D prefix rule is
// only meaningful for manually read meters whose serial already follows the
// FP2E grammar; auto-read ITRON serials use a different convention and are
// not checked this way.
func checkItron(n normRecord, rr *rowResult) {
	if n.family != famItron {
		return
	}
	if n.headSerial != "" && len(n.headSerial) != 8 {
		rr.add(model.KindItronHeadLength)
	}
	if n.manual && fp2ePattern.MatchString(n.meterSerial) {
		if n.meterSerial[0] != 'I' && n.meterSerial[0] != 'D' {
			rr.add(model.KindItronSerialPrefix)
		}
	}
}

// checkSerialPrefix enforces the cross-manufacturer C/H serial-prefix
// convention regardless of the recognized family.
func checkSerialPrefix(n normRecord, rr *rowResult) {
	if n.meterSerial == "" {
		return
	}
	switch n.meterSerial[0] {
	case 'C':
		if n.family != famSappelC {
			rr.add(model.KindSerialPrefixC)
		}
	case 'H':
		if n.family != famSappelH {
			rr.add(model.KindSerialPrefixH)
		}
	}
}

// checkFP2E verifies the metadata the FP2E grammar embeds in the serial:
// positions [1:3] carry the two-digit manufacture year, position [4] the
// diameter class letter. Applies to the SAPPEL and ITRON families; manual
// records only when the serial is already grammar-compliant. The year and
// diameter steps are independent and can both fire.
func checkFP2E(n normRecord, rr *rowResult) {
	switch n.family {
	case famSappelC, famSappelH, famItron:
	default:
		return
	}
	if n.meterSerial == "" {
		return
	}

	compliant := fp2ePattern.MatchString(n.meterSerial)
	if n.manual && !compliant {
		return
	}
	if !compliant {
		rr.add(model.KindFP2EFormat)
		return
	}

	if n.year == "" {
		rr.add(model.KindFP2EYearMissing)
	} else if n.meterSerial[1:3] != n.year {
		rr.add(model.KindFP2EYearMismatch)
	}

	letters, known := "", false
	if n.diameterOK {
		letters, known = fp2eDiameterLetters[n.diameter]
	}
	if !known || !strings.ContainsRune(letters, rune(n.meterSerial[4])) {
		rr.add(model.KindFP2EDiameterMismatch)
	}
}

// checkNetworkProtocol ties the radio protocol to the Traité prefix: 903/863
// networks are LRA, everything else is SGX. Suppressed for manual readings
// and when the protocol is absent (already flagged by checkPresence).
func checkNetworkProtocol(n normRecord, rr *rowResult) {
	if n.manual || n.radioProtocol == "" {
		return
	}
	lra := false
	for _, p := range networkLRAPrefixes {
		if strings.HasPrefix(n.networkCode, p) {
			lra = true
			break
		}
	}
	if lra {
		if n.radioProtocol != protocolLRA {
			rr.add(model.KindNetworkRequiresLRA)
		}
		return
	}
	if n.radioProtocol != protocolSGX {
		rr.add(model.KindNetworkRequiresSGX)
	}
}

// summarize orders the frequency table by descending count, ties broken by
// first-encountered kind.
func summarize(counts map[model.AnomalyKind]int, firstSeen []model.AnomalyKind) []model.KindCount {
	out := make([]model.KindCount, 0, len(firstSeen))
	for _, k := range firstSeen {
		out = append(out, model.KindCount{Kind: k, Count: counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
