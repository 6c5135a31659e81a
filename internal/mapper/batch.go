package mapper

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/Guizzs26/go-field-sync/internal/models"
)

// Batch is the wire form of one plot group of one record type.
// RecordIDs is kept on the client to mark the group once the remote confirms it
type Batch struct {
	RecordType models.RecordType
	PlotID     string
	Path       string
	ArrayKey   string
	RecordIDs  []string
	Items      []map[string]any
}

// BuildBatch translates a plot group into its ingest payload. Only schema fields
// travel; id, synced and createdAt stay local
func BuildBatch(desc models.Descriptor, plotID string, records []models.Record) (Batch, error) {
	if len(records) == 0 {
		return Batch{}, fmt.Errorf("no records provided for %s batch of plot %s", desc.Type, plotID)
	}

	b := Batch{
		RecordType: desc.Type,
		PlotID:     plotID,
		Path:       strings.ReplaceAll(desc.IngestPath, "{plotId}", url.PathEscape(plotID)),
		ArrayKey:   desc.ArrayKey,
		RecordIDs:  make([]string, 0, len(records)),
		Items:      make([]map[string]any, 0, len(records)),
	}

	for _, r := range records {
		if r.PlotID != plotID {
			return Batch{}, fmt.Errorf("record %s belongs to plot %s, not %s", r.ID, r.PlotID, plotID)
		}

		item := make(map[string]any, len(desc.Fields))
		for _, f := range desc.Fields {
			if v, ok := r.Fields[f.Name]; ok {
				item[f.Name] = v
			}
		}

		b.RecordIDs = append(b.RecordIDs, r.ID)
		b.Items = append(b.Items, item)
	}

	return b, nil
}

// Body is the JSON document sent to the collector: {"plotId": ..., "<arrayKey>": [...]}
func (b Batch) Body() map[string]any {
	return map[string]any{
		"plotId":   b.PlotID,
		b.ArrayKey: b.Items,
	}
}

func (b Batch) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Body())
}
