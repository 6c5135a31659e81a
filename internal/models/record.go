package models

import "time"

// RecordType identifies one of the field record schemas captured by the client
type RecordType string

const (
	TreeSample         RecordType = "tree"
	SoilSample         RecordType = "soil"
	ClimateObservation RecordType = "climate"
	ManagementPractice RecordType = "management"
)

// Record is a locally captured observation together with its sync state.
// Fields holds the validated, type-specific payload (float64 for numeric fields, string otherwise)
type Record struct {
	ID        string         `json:"id"`
	PlotID    string         `json:"plotId"`
	CreatedAt time.Time      `json:"createdAt"`
	Synced    bool           `json:"synced"`
	Fields    map[string]any `json:"fields"`
}

// Input carries raw user-entered values keyed by wire field name
type Input map[string]string

// Counts summarizes the sync state of one record type
type Counts struct {
	Total   int `json:"total"`
	Synced  int `json:"synced"`
	Pending int `json:"pending"`
}

// CountRecords tallies synced and pending records of a sequence
func CountRecords(records []Record) Counts {
	c := Counts{Total: len(records)}
	for _, r := range records {
		if r.Synced {
			c.Synced++
		} else {
			c.Pending++
		}
	}
	return c
}

// Number returns the numeric field value, if present
func (r Record) Number(field string) (float64, bool) {
	v, ok := r.Fields[field].(float64)
	return v, ok
}

// Text returns the text field value, if present
func (r Record) Text(field string) (string, bool) {
	v, ok := r.Fields[field].(string)
	return v, ok
}
