package models

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/Guizzs26/go-field-sync/pkg/encoding"
)

// Validate checks plotID and input against the descriptor schema. It returns the
// normalized plot id and the typed payload; both are exactly what must be stored.
// Values are normalized before the emptiness checks, so input that normalizes
// to nothing counts as missing. Unknown input keys are ignored
func (d Descriptor) Validate(plotID string, input Input) (string, map[string]any, error) {
	plot := encoding.NormalizeText(plotID)
	if plot == "" {
		return "", nil, &ValidationError{RecordType: d.Type, Field: "plotId", Reason: "is required"}
	}

	fields := make(map[string]any, len(d.Fields))
	for _, spec := range d.Fields {
		raw := encoding.NormalizeText(input[spec.Name])
		if raw == "" {
			if spec.Required {
				return "", nil, &ValidationError{RecordType: d.Type, Field: spec.Name, Reason: "is required"}
			}
			continue
		}

		v, reason := spec.parse(raw)
		if reason != "" {
			return "", nil, &ValidationError{RecordType: d.Type, Field: spec.Name, Reason: reason}
		}
		fields[spec.Name] = v
	}

	return plot, fields, nil
}

// parse converts a raw value; a non-empty reason means rejection
func (f FieldSpec) parse(raw string) (any, string) {
	switch f.Kind {
	case KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, "must be a number"
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, "must be a finite number"
		}
		if f.MinExclusive && n <= f.Min {
			return nil, "must be greater than " + formatBound(f.Min)
		}
		if !f.MinExclusive && n < f.Min {
			return nil, "must be at least " + formatBound(f.Min)
		}
		if n > f.Max {
			return nil, "must be at most " + formatBound(f.Max)
		}
		return n, ""

	case KindEnum:
		token := encoding.NormalizeToken(raw)
		if !slices.Contains(f.Options, token) {
			return nil, "must be one of " + strings.Join(f.Options, ", ")
		}
		return token, ""

	default:
		return raw, ""
	}
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
