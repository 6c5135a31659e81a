package models

import (
	"errors"
	"testing"
)

func mustLookup(t *testing.T, rt RecordType) Descriptor {
	t.Helper()

	d, err := DefaultRegistry().Lookup(rt)
	if err != nil {
		t.Fatalf("lookup %s: %v", rt, err)
	}
	return d
}

func TestValidateAcceptsValidInput(t *testing.T) {
	tests := []struct {
		name  string
		rt    RecordType
		input Input
		check map[string]any
	}{
		{
			name:  "tree with species",
			rt:    TreeSample,
			input: Input{"species": " Eucalyptus grandis ", "dbh_cm": "23.5"},
			check: map[string]any{"species": "Eucalyptus grandis", "dbh_cm": 23.5},
		},
		{
			name:  "tree without optional species",
			rt:    TreeSample,
			input: Input{"dbh_cm": "10"},
			check: map[string]any{"dbh_cm": 10.0},
		},
		{
			name:  "soil",
			rt:    SoilSample,
			input: Input{"depth_cm": "30", "organic_carbon_percent": "2.1", "bulk_density_g_cm3": "1.3", "ph_value": "6.5"},
			check: map[string]any{"depth_cm": 30.0, "ph_value": 6.5},
		},
		{
			name:  "climate allows sub-zero temperature",
			rt:    ClimateObservation,
			input: Input{"temperature_celsius": "-4.5", "humidity_percent": "80", "rainfall_mm": "0", "wind_speed_m_s": "3"},
			check: map[string]any{"temperature_celsius": -4.5, "rainfall_mm": 0.0},
		},
		{
			name:  "management normalizes practice spelling",
			rt:    ManagementPractice,
			input: Input{"practiceType": "Pest Control", "description": "neem spray on rows 1-4"},
			check: map[string]any{"practiceType": "pest_control", "description": "neem spray on rows 1-4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, fields, err := mustLookup(t, tt.rt).Validate("P1", tt.input)
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			for k, want := range tt.check {
				if got := fields[k]; got != want {
					t.Errorf("field %s = %v, want %v", k, got, want)
				}
			}
		})
	}
}

func TestValidateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		rt    RecordType
		plot  string
		input Input
		field string
	}{
		{"missing plot", TreeSample, "  ", Input{"dbh_cm": "10"}, "plotId"},
		{"plot blank after decoding", TreeSample, "\xa0", Input{"dbh_cm": "10"}, "plotId"},
		{"dbh blank after decoding", TreeSample, "P1", Input{"dbh_cm": "\xa0\xa0"}, "dbh_cm"},
		{"missing dbh", TreeSample, "P1", Input{"species": "pine"}, "dbh_cm"},
		{"zero dbh", TreeSample, "P1", Input{"dbh_cm": "0"}, "dbh_cm"},
		{"non-numeric depth", SoilSample, "P1", Input{"depth_cm": "abc", "organic_carbon_percent": "2", "bulk_density_g_cm3": "1.2", "ph_value": "6"}, "depth_cm"},
		{"NaN ph", SoilSample, "P1", Input{"depth_cm": "10", "organic_carbon_percent": "2", "bulk_density_g_cm3": "1.2", "ph_value": "NaN"}, "ph_value"},
		{"infinite rainfall", ClimateObservation, "P1", Input{"temperature_celsius": "20", "humidity_percent": "50", "rainfall_mm": "+Inf", "wind_speed_m_s": "1"}, "rainfall_mm"},
		{"humidity above 100", ClimateObservation, "P1", Input{"temperature_celsius": "20", "humidity_percent": "120", "rainfall_mm": "3", "wind_speed_m_s": "1"}, "humidity_percent"},
		{"unknown practice", ManagementPractice, "P1", Input{"practiceType": "mowing", "description": "x"}, "practiceType"},
		{"blank description", ManagementPractice, "P1", Input{"practiceType": "pruning", "description": "   "}, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := mustLookup(t, tt.rt).Validate(tt.plot, tt.input)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q (%v)", tt.field, verr.Field, err)
			}
		})
	}
}

func TestValidateReturnsNormalizedPlot(t *testing.T) {
	plot, fields, err := mustLookup(t, TreeSample).Validate(" Ca\xe7ador 3\xa0", Input{"dbh_cm": "10", "species": "\xa0"})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if plot != "Ca\u00e7ador 3" {
		t.Errorf("expected decoded and trimmed plot, got %q", plot)
	}
	if _, ok := fields["species"]; ok {
		t.Errorf("blank optional species should be omitted, got %q", fields["species"])
	}
}

func TestRegistryLookupUnknown(t *testing.T) {
	_, err := DefaultRegistry().Lookup("weather")
	if !errors.Is(err, ErrUnknownRecordType) {
		t.Fatalf("expected ErrUnknownRecordType, got %v", err)
	}
}

func TestCountRecords(t *testing.T) {
	c := CountRecords([]Record{{Synced: true}, {}, {}})
	if c.Total != 3 || c.Synced != 1 || c.Pending != 2 {
		t.Errorf("unexpected counts: %+v", c)
	}
}
