package service

import "github.com/Guizzs26/go-field-sync/internal/models"

// Group is the unit of transmission: the pending records of one plot for one type
type Group struct {
	PlotID  string
	Records []models.Record
}

// IDs lists the record ids of the group in order
func (g Group) IDs() []string {
	ids := make([]string, 0, len(g.Records))
	for _, r := range g.Records {
		ids = append(ids, r.ID)
	}
	return ids
}

type Plan []Group

// PlanGroups partitions the unsynced records of a sequence by plot. Groups
// follow the first appearance of their plot and keep relative record order;
// synced records never appear
func PlanGroups(records []models.Record) Plan {
	index := make(map[string]int)
	var plan Plan

	for _, r := range records {
		if r.Synced {
			continue
		}
		i, ok := index[r.PlotID]
		if !ok {
			i = len(plan)
			index[r.PlotID] = i
			plan = append(plan, Group{PlotID: r.PlotID})
		}
		plan[i].Records = append(plan[i].Records, r)
	}

	return plan
}

// ByPlot returns the mapping view of the plan
func (p Plan) ByPlot() map[string][]models.Record {
	out := make(map[string][]models.Record, len(p))
	for _, g := range p {
		out[g.PlotID] = g.Records
	}
	return out
}

// Pending is the number of records across all groups
func (p Plan) Pending() int {
	n := 0
	for _, g := range p {
		n += len(g.Records)
	}
	return n
}
