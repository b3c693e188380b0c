// Package engine evaluates the télérelève business rules over an inventory
// of meter records and reports which rows violate which rules.
//
// The rule catalogue is fixed data built once at process start: evaluation
// never raises for any input value, and every unparsable or missing field is
// surfaced as a specific anomaly kind on the record instead of aborting it.
package engine

import (
	"regexp"

	"github.com/Kolique/controle-tele/internal/model"
)

// Manufacturer family keys after normalization (upper case, spaces removed,
// so "SAPPEL (C)" and "SAPPEL(C)" land on the same key).
const (
	famKamstrup = "KAMSTRUP"
	famSappelC  = "SAPPEL(C)"
	famSappelH  = "SAPPEL(H)"
	famItron    = "ITRON"
)

// Radio protocols and the manual reading mode marker.
const (
	protocolLRA = "LRA"
	protocolSGX = "SGX"
	modeManual  = "MANUELLE"
)

// fp2ePattern is the FP2E serial grammar: one uppercase letter, two digits,
// two uppercase letters, six digits. Position [1:3] encodes the two-digit
// manufacture year, position [4] the diameter class letter.
var fp2ePattern = regexp.MustCompile(`^[A-Z][0-9]{2}[A-Z]{2}[0-9]{6}$`)

// fp2eDiameterLetters maps a nominal diameter (mm) to the set of class
// letters the serial may carry at position 4. Canonical revision; an earlier
// revision also accepted Y and Z for 15 mm.
var fp2eDiameterLetters = map[int]string{
	15:  "AUV",
	20:  "B",
	25:  "C",
	30:  "D",
	40:  "E",
	50:  "F",
	60:  "G",
	65:  "G",
	80:  "H",
	100: "I",
	125: "J",
	150: "K",
}

// networkLRAPrefixes are the Traité prefixes that mandate the LRA protocol.
// Any other (or missing) network code mandates SGX.
var networkLRAPrefixes = []string{"903", "863"}

// RequiredColumns are the canonical columns that must be present in the
// header for a pass to run at all. Their absence is a structural failure of
// the whole pass, not a per-record anomaly.
var RequiredColumns = []string{
	model.FieldRadioProtocol,
	model.FieldManufacturer,
	model.FieldMeterSerial,
	model.FieldHeadSerial,
	model.FieldLatitude,
	model.FieldLongitude,
}
