package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/Guizzs26/go-field-sync/internal/models"
)

type GroupStatus string

const (
	StatusSucceeded GroupStatus = "succeeded"
	StatusFailed    GroupStatus = "failed"
	StatusSkipped   GroupStatus = "skipped"
)

// GroupResult is the outcome of one plot group in a sync pass
type GroupResult struct {
	Type     models.RecordType
	PlotID   string
	Count    int
	Attempts int
	Status   GroupStatus
	Err      error
}

// Report aggregates a sync pass. Stats is taken after the pass and may be nil
// when the pass was aborted by a store failure
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Groups     []GroupResult
	Stats      map[models.RecordType]models.Counts
}

func (r *Report) Succeeded() []GroupResult { return r.filter(StatusSucceeded) }
func (r *Report) Failed() []GroupResult    { return r.filter(StatusFailed) }
func (r *Report) Skipped() []GroupResult   { return r.filter(StatusSkipped) }

func (r *Report) HasFailures() bool {
	for _, g := range r.Groups {
		if g.Status == StatusFailed {
			return true
		}
	}
	return false
}

// SyncedRecords counts the records confirmed during the pass
func (r *Report) SyncedRecords() int {
	n := 0
	for _, g := range r.Succeeded() {
		n += g.Count
	}
	return n
}

func (r *Report) filter(s GroupStatus) []GroupResult {
	var out []GroupResult
	for _, g := range r.Groups {
		if g.Status == s {
			out = append(out, g)
		}
	}
	return out
}

// Summary renders the report for the person in the field: counts per type,
// then one line per failed group
func (r *Report) Summary(types []models.RecordType) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Sync finished in %s: %d group(s) sent, %d failed, %d skipped, %d record(s) synced\n",
		r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
		len(r.Succeeded()), len(r.Failed()), len(r.Skipped()), r.SyncedRecords(),
	)

	if r.Stats != nil {
		for _, t := range types {
			c := r.Stats[t]
			fmt.Fprintf(&b, "  %-10s synced %d, pending %d\n", t, c.Synced, c.Pending)
		}
	}

	for _, g := range r.Failed() {
		fmt.Fprintf(&b, "  FAILED %s plot %s (%d record(s), %d attempt(s)): %v\n",
			g.Type, g.PlotID, g.Count, g.Attempts, g.Err)
	}

	return b.String()
}
