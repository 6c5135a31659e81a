package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Guizzs26/go-field-sync/internal/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:       "list <" + typeArgHelp() + ">",
		Short:     "List captured records of one type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: recordTypeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := models.RecordType(args[0])
			desc, err := a.repo.Registry().Lookup(t)
			if err != nil {
				return err
			}

			records, err := a.repo.LoadAll(cmd.Context(), t)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "No %s records captured yet\n", t)
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				if pendingOnly && r.Synced {
					continue
				}
				status := "pending"
				if r.Synced {
					status = "synced"
				}
				rows = append(rows, []string{
					r.ID,
					r.PlotID,
					r.CreatedAt.Local().Format(time.DateTime),
					status,
					formatFields(desc, r),
				})
			}

			tbl := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "PLOT", "CREATED", "STATUS", "FIELDS").
				Rows(rows...)
			fmt.Fprintln(out, tbl.Render())

			c := models.CountRecords(records)
			fmt.Fprintf(out, "%d record(s), %d synced, %d pending\n", c.Total, c.Synced, c.Pending)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "only show records waiting for sync")
	return cmd
}

// formatFields renders the payload in schema order
func formatFields(desc models.Descriptor, r models.Record) string {
	parts := make([]string, 0, len(desc.Fields))
	for _, f := range desc.Fields {
		v, ok := r.Fields[f.Name]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", f.Name, v))
	}
	return strings.Join(parts, " ")
}
