package model

// AnomalyKind identifies one business-rule violation. The values are the
// fixed French labels shown to the user; the engine treats them as opaque
// identifiers and never builds labels dynamically.
type AnomalyKind string

// General field rules.
const (
	KindRadioProtocolMissing AnomalyKind = "Protocole Radio manquant"
	KindManufacturerMissing  AnomalyKind = "Marque manquante"
	KindMeterSerialMissing   AnomalyKind = "Numéro de compteur manquant"
	KindDiameterMissing      AnomalyKind = "Diamètre manquant"
	KindYearMissing          AnomalyKind = "Millésime manquant"
	KindHeadSerialMissing    AnomalyKind = "Numéro de tête manquant"
	KindCoordsNotNumeric     AnomalyKind = "Coordonnées GPS non numériques"
	KindCoordsInvalid        AnomalyKind = "Latitude ou Longitude invalide"
)

// KAMSTRUP rules.
const (
	KindKamstrupSerialLength AnomalyKind = "Marque KAMSTRUP : 'Numéro de compteur' n'a pas 8 caractères"
	KindKamstrupHeadMismatch AnomalyKind = "Marque KAMSTRUP : 'Numéro de compteur' différent du 'Numéro de tête'"
	KindKamstrupNotNumeric   AnomalyKind = "Marque KAMSTRUP : 'Numéro de compteur' ou 'Numéro de tête' non numérique"
	KindKamstrupDiameter     AnomalyKind = "Marque KAMSTRUP : Diamètre hors plage 15-80"
)

// SAPPEL rules. The serial-prefix pair applies to every manufacturer, not
// only the SAPPEL families.
const (
	KindSappelHeadLength   AnomalyKind = "Marque SAPPEL : 'Numéro de tête' n'a pas 16 caractères"
	KindSappelSerialFormat AnomalyKind = "Marque SAPPEL : 'Numéro de compteur' non conforme FP2E"
	KindSerialPrefixC      AnomalyKind = "Numéro de compteur en C : Marque différente de SAPPEL (C)"
	KindSerialPrefixH      AnomalyKind = "Numéro de compteur en H : Marque différente de SAPPEL (H)"
)

// ITRON rules.
const (
	KindItronHeadLength   AnomalyKind = "Marque ITRON : 'Numéro de tête' n'a pas 8 caractères"
	KindItronSerialPrefix AnomalyKind = "Marque ITRON : 'Numéro de compteur' doit commencer par I ou D"
)

// FP2E cross-field rules (year and diameter encoded in the serial).
const (
	KindFP2EFormat           AnomalyKind = "Format non-FP2E"
	KindFP2EYearMissing      AnomalyKind = "Millésime manquant ou invalide"
	KindFP2EYearMismatch     AnomalyKind = "Millésime incohérent avec le numéro de compteur"
	KindFP2EDiameterMismatch AnomalyKind = "Diamètre incohérent avec le numéro de compteur"
)

// Radio protocol vs network code rules.
const (
	KindNetworkRequiresLRA AnomalyKind = "Traité 903/863 : 'Protocole Radio' doit être LRA"
	KindNetworkRequiresSGX AnomalyKind = "'Protocole Radio' doit être SGX"
)

// AllKinds lists the full catalogue in rule order.
var AllKinds = []AnomalyKind{
	KindRadioProtocolMissing,
	KindManufacturerMissing,
	KindMeterSerialMissing,
	KindDiameterMissing,
	KindYearMissing,
	KindHeadSerialMissing,
	KindCoordsNotNumeric,
	KindCoordsInvalid,
	KindKamstrupSerialLength,
	KindKamstrupHeadMismatch,
	KindKamstrupNotNumeric,
	KindKamstrupDiameter,
	KindSappelHeadLength,
	KindSappelSerialFormat,
	KindSerialPrefixC,
	KindSerialPrefixH,
	KindItronHeadLength,
	KindItronSerialPrefix,
	KindFP2EFormat,
	KindFP2EYearMissing,
	KindFP2EYearMismatch,
	KindFP2EDiameterMismatch,
	KindNetworkRequiresLRA,
	KindNetworkRequiresSGX,
}

// KindFields maps each anomaly kind to the canonical fields that caused it.
// The exporter uses it to decide which cells to highlight.
var KindFields = map[AnomalyKind][]string{
	KindRadioProtocolMissing: {FieldRadioProtocol},
	KindManufacturerMissing:  {FieldManufacturer},
	KindMeterSerialMissing:   {FieldMeterSerial},
	KindDiameterMissing:      {FieldDiameter},
	KindYearMissing:          {FieldManufactureYear},
	KindHeadSerialMissing:    {FieldHeadSerial},
	KindCoordsNotNumeric:     {FieldLatitude, FieldLongitude},
	KindCoordsInvalid:        {FieldLatitude, FieldLongitude},

	KindKamstrupSerialLength: {FieldMeterSerial},
	KindKamstrupHeadMismatch: {FieldMeterSerial, FieldHeadSerial},
	KindKamstrupNotNumeric:   {FieldMeterSerial, FieldHeadSerial},
	KindKamstrupDiameter:     {FieldDiameter},

	KindSappelHeadLength:   {FieldHeadSerial},
	KindSappelSerialFormat: {FieldMeterSerial},
	KindSerialPrefixC:      {FieldMeterSerial, FieldManufacturer},
	KindSerialPrefixH:      {FieldMeterSerial, FieldManufacturer},

	KindItronHeadLength:   {FieldHeadSerial},
	KindItronSerialPrefix: {FieldMeterSerial},

	KindFP2EFormat:           {FieldMeterSerial},
	KindFP2EYearMissing:      {FieldManufactureYear},
	KindFP2EYearMismatch:     {FieldMeterSerial, FieldManufactureYear},
	KindFP2EDiameterMismatch: {FieldMeterSerial, FieldDiameter},

	KindNetworkRequiresLRA: {FieldRadioProtocol, FieldNetworkCode},
	KindNetworkRequiresSGX: {FieldRadioProtocol, FieldNetworkCode},
}
