package model

// Canonical field keys. Ingestion maps the file's header (whatever its
// accents, case or spacing) onto these keys; the engine and the exporter
// only ever see canonical keys.
const (
	FieldRadioProtocol   = "radio_protocol"
	FieldManufacturer    = "manufacturer"
	FieldMeterSerial     = "meter_serial"
	FieldHeadSerial      = "head_serial"
	FieldLatitude        = "latitude"
	FieldLongitude       = "longitude"
	FieldManufactureYear = "manufacture_year"
	FieldDiameter        = "diameter"
	FieldNetworkCode     = "network_code"
	FieldReadingMode     = "reading_mode"
)

// AllFields lists every canonical field in display order.
var AllFields = []string{
	FieldRadioProtocol,
	FieldManufacturer,
	FieldMeterSerial,
	FieldHeadSerial,
	FieldLatitude,
	FieldLongitude,
	FieldManufactureYear,
	FieldDiameter,
	FieldNetworkCode,
	FieldReadingMode,
}

// Record is one inventory row. All fields keep the raw cell text exactly as
// read from the file; the engine normalizes internally and never writes back,
// so reporting can re-display original values.
type Record struct {
	RowNum int      `json:"rowNum"` // 1-based data row (header excluded)
	Cells  []string `json:"cells"`  // original cells, file column order

	RadioProtocol   string `json:"radioProtocol"`
	Manufacturer    string `json:"manufacturer"`
	MeterSerial     string `json:"meterSerial"`
	HeadSerial      string `json:"headSerial"`
	Latitude        string `json:"latitude"`
	Longitude       string `json:"longitude"`
	ManufactureYear string `json:"manufactureYear"`
	Diameter        string `json:"diameter"`
	NetworkCode     string `json:"networkCode"`
	ReadingMode     string `json:"readingMode"`
}

// Field returns the raw value of a canonical field.
func (r *Record) Field(key string) string {
	switch key {
	case FieldRadioProtocol:
		return r.RadioProtocol
	case FieldManufacturer:
		return r.Manufacturer
	case FieldMeterSerial:
		return r.MeterSerial
	case FieldHeadSerial:
		return r.HeadSerial
	case FieldLatitude:
		return r.Latitude
	case FieldLongitude:
		return r.Longitude
	case FieldManufactureYear:
		return r.ManufactureYear
	case FieldDiameter:
		return r.Diameter
	case FieldNetworkCode:
		return r.NetworkCode
	case FieldReadingMode:
		return r.ReadingMode
	}
	return ""
}

// SetField sets the raw value of a canonical field. Used by ingestion only.
func (r *Record) SetField(key, value string) {
	switch key {
	case FieldRadioProtocol:
		r.RadioProtocol = value
	case FieldManufacturer:
		r.Manufacturer = value
	case FieldMeterSerial:
		r.MeterSerial = value
	case FieldHeadSerial:
		r.HeadSerial = value
	case FieldLatitude:
		r.Latitude = value
	case FieldLongitude:
		r.Longitude = value
	case FieldManufactureYear:
		r.ManufactureYear = value
	case FieldDiameter:
		r.Diameter = value
	case FieldNetworkCode:
		r.NetworkCode = value
	case FieldReadingMode:
		r.ReadingMode = value
	}
}

// Inventory is one parsed file: the canonical columns that were actually
// present in the header, plus every data row. Records are read-only inputs
// for the duration of one validation pass.
type Inventory struct {
	Filename string   `json:"filename"`
	Header   []string `json:"header"`  // original header cells, file order
	Columns  []string `json:"columns"` // canonical fields found in the header
	Records  []Record `json:"records"`

	// FieldColumns maps each canonical field found in the header to its
	// column index, for cell-level highlighting in the export.
	FieldColumns map[string]int `json:"fieldColumns"`
}

// HasColumn reports whether a canonical field was present in the header.
func (inv *Inventory) HasColumn(key string) bool {
	for _, c := range inv.Columns {
		if c == key {
			return true
		}
	}
	return false
}
