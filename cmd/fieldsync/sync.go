package main

import (
	"errors"
	"fmt"

	"github.com/Guizzs26/go-field-sync/pkg/metrics"
	"github.com/spf13/cobra"
)

// exitSyncFailures is returned when the pass completed but some groups were not accepted
const exitSyncFailures = 2

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send pending records to the collector, one batch per plot",
		Long: `Run one sync pass over every record type. Each plot group is sent as one
batch; a group the collector does not confirm stays pending and is retried on
the next pass. Exit status is 2 when at least one group failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			tx, release, err := a.transmitter(ctx)
			if err != nil {
				return err
			}
			defer release()

			report, syncErr := a.syncService(tx).SyncAll(ctx)

			out := cmd.OutOrStdout()
			if report != nil {
				fmt.Fprint(out, report.Summary(a.repo.Registry().Types()))
			}

			if path := a.cfg.MetricsTextfile; path != "" {
				if err := metrics.WriteTextfile(path); err != nil {
					a.logger.Warn("Could not write metrics textfile", "path", path, "error", err)
				}
			}

			if syncErr != nil {
				return fmt.Errorf("sync pass aborted: %w", syncErr)
			}
			if report.HasFailures() {
				fmt.Fprintf(out, "%s Some groups were not accepted and stay pending\n", renderFail("✗"))
				return &exitCodeError{
					code: exitSyncFailures,
					err:  errors.New("sync finished with failed groups"),
				}
			}

			fmt.Fprintf(out, "%s All pending records synced\n", renderPass("✓"))
			return nil
		},
	}
}
