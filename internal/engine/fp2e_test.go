package engine

import (
	"testing"

	"github.com/Kolique/controle-tele/internal/model"
)

func TestFP2E_SpecFixture_DiameterLetterMismatch(t *testing.T) {
	t.Parallel()

	// "C23AB123456": embedded year "23", diameter letter 'B' at index 4.
	// Diameter 25 expects 'C', so only the diameter step fires.
	rec := conformingSappelC()
	rec.MeterSerial = "C23AB123456"
	rec.ManufactureYear = "2023"
	rec.Diameter = "25"

	kinds := kindsOf(t, rec)
	if !hasKind(kinds, model.KindFP2EDiameterMismatch) {
		t.Fatalf("expected diameter mismatch: %v", kinds)
	}
	if hasKind(kinds, model.KindFP2EYearMismatch) || hasKind(kinds, model.KindFP2EFormat) {
		t.Fatalf("unexpected FP2E kinds: %v", kinds)
	}
}

func TestFP2E_YearSteps(t *testing.T) {
	t.Parallel()

	mismatch := conformingSappelC()
	mismatch.ManufactureYear = "2019" // serial embeds "15"
	if kinds := kindsOf(t, mismatch); !hasKind(kinds, model.KindFP2EYearMismatch) {
		t.Fatalf("year mismatch: %v", kinds)
	}

	missing := conformingSappelC()
	missing.ManufactureYear = "inconnu"
	kinds := kindsOf(t, missing)
	if !hasKind(kinds, model.KindFP2EYearMissing) {
		t.Fatalf("year missing/invalid: %v", kinds)
	}
	// The general missing-year rule fires as well; the two kinds are distinct.
	if !hasKind(kinds, model.KindYearMissing) {
		t.Fatalf("general year rule should also fire: %v", kinds)
	}
	if hasKind(kinds, model.KindFP2EYearMismatch) {
		t.Fatalf("mismatch must not fire when the year is missing: %v", kinds)
	}
}

func TestFP2E_YearAndDiameterIndependent(t *testing.T) {
	t.Parallel()

	rec := conformingSappelC()
	rec.ManufactureYear = "2019" // serial embeds "15"
	rec.Diameter = "40"          // expects 'E', serial carries 'C'
	kinds := kindsOf(t, rec)
	if !hasKind(kinds, model.KindFP2EYearMismatch) || !hasKind(kinds, model.KindFP2EDiameterMismatch) {
		t.Fatalf("both steps must fire independently: %v", kinds)
	}
}

func TestFP2E_DiameterFifteenLetterSet(t *testing.T) {
	t.Parallel()

	// 15 mm accepts A, U and V per the canonical table revision.
	for _, letter := range []string{"A", "U", "V"} {
		rec := conformingSappelC()
		rec.MeterSerial = "C15A" + letter + "123456"
		rec.Diameter = "15"
		if kinds := kindsOf(t, rec); hasKind(kinds, model.KindFP2EDiameterMismatch) {
			t.Fatalf("letter %s must be accepted for 15 mm: %v", letter, kinds)
		}
	}
	rec := conformingSappelC()
	rec.MeterSerial = "C15AY123456" // Y was only in the older table revision
	rec.Diameter = "15"
	if kinds := kindsOf(t, rec); !hasKind(kinds, model.KindFP2EDiameterMismatch) {
		t.Fatalf("letter Y must be rejected for 15 mm: %v", kinds)
	}
}

func TestFP2E_UnknownDiameter(t *testing.T) {
	t.Parallel()

	rec := conformingSappelC()
	rec.Diameter = "17" // not a class in the table
	if kinds := kindsOf(t, rec); !hasKind(kinds, model.KindFP2EDiameterMismatch) {
		t.Fatalf("unknown diameter class: %v", kinds)
	}
}

func TestFP2E_ManualModeGate(t *testing.T) {
	t.Parallel()

	// Manual + non-compliant serial: all FP2E steps are skipped, only the
	// SAPPEL grammar rule reports the serial.
	manual := conformingSappelC()
	manual.ReadingMode = "MANUELLE"
	manual.MeterSerial = "PASBON"
	kinds := kindsOf(t, manual)
	if hasKind(kinds, model.KindFP2EFormat) {
		t.Fatalf("manual non-compliant must skip FP2E: %v", kinds)
	}
	if !hasKind(kinds, model.KindSappelSerialFormat) {
		t.Fatalf("grammar rule still applies: %v", kinds)
	}

	// Manual + compliant serial: the cross-field steps do run.
	compliant := conformingSappelC()
	compliant.ReadingMode = "MANUELLE"
	compliant.ManufactureYear = "2019"
	if kinds := kindsOf(t, compliant); !hasKind(kinds, model.KindFP2EYearMismatch) {
		t.Fatalf("manual compliant must be checked: %v", kinds)
	}

	// Telemetric + non-compliant: format kind fires and the rest is skipped.
	tele := conformingSappelC()
	tele.MeterSerial = "PASBON"
	tele.ManufactureYear = "2019"
	kinds = kindsOf(t, tele)
	if !hasKind(kinds, model.KindFP2EFormat) {
		t.Fatalf("telemetric non-compliant: %v", kinds)
	}
	if hasKind(kinds, model.KindFP2EYearMismatch) {
		t.Fatalf("steps after format must be skipped: %v", kinds)
	}
}

func TestItron_HeadLengthAndPrefix(t *testing.T) {
	t.Parallel()

	itron := func() model.Record {
		r := conformingSappelC()
		r.Manufacturer = "ITRON"
		r.MeterSerial = "I15AC123456"
		r.HeadSerial = "12345678"
		return r
	}

	if kinds := kindsOf(t, itron()); len(kinds) != 0 {
		t.Fatalf("conforming ITRON: %v", kinds)
	}

	head := itron()
	head.HeadSerial = "123456"
	if kinds := kindsOf(t, head); !hasKind(kinds, model.KindItronHeadLength) {
		t.Fatalf("6-char head serial: %v", kinds)
	}

	// Manual + FP2E-compliant serial not starting with I or D.
	manual := itron()
	manual.ReadingMode = "MANUELLE"
	manual.MeterSerial = "A15AC123456"
	if kinds := kindsOf(t, manual); !hasKind(kinds, model.KindItronSerialPrefix) {
		t.Fatalf("manual A-prefixed serial: %v", kinds)
	}

	// D prefix is accepted.
	manual.MeterSerial = "D15AC123456"
	if kinds := kindsOf(t, manual); hasKind(kinds, model.KindItronSerialPrefix) {
		t.Fatalf("D prefix is allowed: %v", kinds)
	}

	// Telemetric: the prefix rule is suppressed.
	auto := itron()
	auto.MeterSerial = "A15AC123456"
	if kinds := kindsOf(t, auto); hasKind(kinds, model.KindItronSerialPrefix) {
		t.Fatalf("telemetric serials use another convention: %v", kinds)
	}

	// Manual non-compliant serial: suppressed as well.
	odd := itron()
	odd.ReadingMode = "MANUELLE"
	odd.MeterSerial = "12345"
	if kinds := kindsOf(t, odd); hasKind(kinds, model.KindItronSerialPrefix) {
		t.Fatalf("non-FP2E manual serial is not prefix-checked: %v", kinds)
	}
}
