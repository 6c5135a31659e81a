package models

import "fmt"

type FieldKind int

const (
	KindNumber FieldKind = iota
	KindText
	KindEnum
)

// FieldSpec describes one payload field of a record type
type FieldSpec struct {
	Name     string
	Kind     FieldKind
	Required bool

	// Numeric bounds. Exclusive bounds reject the boundary value itself
	Min, Max     float64
	MinExclusive bool

	Options []string // KindEnum only
}

// Descriptor binds a record type to its local namespace, its schema and its ingest contract
type Descriptor struct {
	Type RecordType

	// StoreKey is the namespace of the type's sequence in the local store
	StoreKey string

	Fields []FieldSpec

	// IngestPath is the remote bulk endpoint; {plotId} is substituted per group
	IngestPath string

	// ArrayKey names the array of records inside the batch body
	ArrayKey string
}

// FieldNames lists the payload field names in schema order
func (d Descriptor) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Registry is the ordered set of record types handled by the client.
// Sync passes walk it in order
type Registry []Descriptor

// Lookup finds the descriptor for t
func (r Registry) Lookup(t RecordType) (Descriptor, error) {
	for _, d := range r {
		if d.Type == t {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownRecordType, t)
}

// Types lists the registered record types in order
func (r Registry) Types() []RecordType {
	out := make([]RecordType, 0, len(r))
	for _, d := range r {
		out = append(out, d.Type)
	}
	return out
}

// PracticeTypes enumerates the accepted management practice categories
var PracticeTypes = []string{"irrigation", "fertilization", "pruning", "pest_control", "harvesting"}

// DefaultRegistry returns the four field record types in sync order
func DefaultRegistry() Registry {
	return Registry{
		{
			Type:     TreeSample,
			StoreKey: "treeSamples",
			Fields: []FieldSpec{
				{Name: "species", Kind: KindText},
				{Name: "dbh_cm", Kind: KindNumber, Required: true, Min: 0, MinExclusive: true, Max: 1000},
			},
			IngestPath: "/plots/{plotId}/trees",
			ArrayKey:   "trees",
		},
		{
			Type:     SoilSample,
			StoreKey: "soilSamples",
			Fields: []FieldSpec{
				{Name: "depth_cm", Kind: KindNumber, Required: true, Min: 0, MinExclusive: true, Max: 1000},
				{Name: "organic_carbon_percent", Kind: KindNumber, Required: true, Min: 0, Max: 100},
				{Name: "bulk_density_g_cm3", Kind: KindNumber, Required: true, Min: 0, MinExclusive: true, Max: 3},
				{Name: "ph_value", Kind: KindNumber, Required: true, Min: 0, Max: 14},
			},
			IngestPath: "/soil-samples/plot/{plotId}/bulk",
			ArrayKey:   "samples",
		},
		{
			Type:     ClimateObservation,
			StoreKey: "climateData",
			Fields: []FieldSpec{
				{Name: "temperature_celsius", Kind: KindNumber, Required: true, Min: -90, Max: 60},
				{Name: "humidity_percent", Kind: KindNumber, Required: true, Min: 0, Max: 100},
				{Name: "rainfall_mm", Kind: KindNumber, Required: true, Min: 0, Max: 5000},
				{Name: "wind_speed_m_s", Kind: KindNumber, Required: true, Min: 0, Max: 150},
			},
			IngestPath: "/climate-data/plot/{plotId}/bulk",
			ArrayKey:   "observations",
		},
		{
			Type:     ManagementPractice,
			StoreKey: "managementPractices",
			Fields: []FieldSpec{
				{Name: "practiceType", Kind: KindEnum, Required: true, Options: PracticeTypes},
				{Name: "description", Kind: KindText, Required: true},
			},
			IngestPath: "/management-practices/plot/{plotId}/bulk",
			ArrayKey:   "practices",
		},
	}
}
