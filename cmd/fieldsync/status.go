package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show synced and pending counts per record type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.repo.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			pending := 0
			for _, t := range a.repo.Registry().Types() {
				c := stats[t]
				pending += c.Pending

				badge := renderPass("✓")
				if c.Pending > 0 {
					badge = renderWarn("●")
				}
				fmt.Fprintf(out, "%s %-10s %4d total %4d synced %4d pending\n", badge, t, c.Total, c.Synced, c.Pending)
			}

			if pending == 0 {
				fmt.Fprintln(out, renderMuted("Everything is synced"))
			} else {
				fmt.Fprintf(out, "%d record(s) waiting for sync. Run 'fieldsync sync' when online\n", pending)
			}
			return nil
		},
	}
}
