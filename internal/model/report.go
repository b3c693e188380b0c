package model

// AnnotatedRecord is a record with the anomalies found on it, in the order
// the rules fired. Kinds is deduplicated (a kind appears at most once).
type AnnotatedRecord struct {
	Record
	Kinds []AnomalyKind `json:"kinds"`
}

// KindCount is one entry of the frequency summary.
type KindCount struct {
	Kind  AnomalyKind `json:"kind"`
	Count int         `json:"count"`
}

// Report is the result of one validation pass. Derived fresh on every pass,
// never persisted.
type Report struct {
	TotalRecords int `json:"totalRecords"`

	// Anomalous holds only the records with at least one anomaly, in input
	// order. Conforming records are excluded here but were still evaluated.
	Anomalous []AnnotatedRecord `json:"anomalous"`

	// Counts maps each kind to the number of distinct records exhibiting it,
	// ordered by descending count, ties by first-encountered kind.
	Counts []KindCount `json:"counts"`
}
