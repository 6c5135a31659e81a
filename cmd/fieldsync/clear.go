package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/Guizzs26/go-field-sync/internal/models"
	"github.com/spf13/cobra"
)

func newClearCmd(a *app) *cobra.Command {
	var (
		all bool
		yes bool
	)

	cmd := &cobra.Command{
		Use:   "clear [" + typeArgHelp() + "]",
		Short: "Delete captured records of one type, or of every type with --all",
		Long: `Delete captured records. Pending records are lost as well; run
'fieldsync sync' first if they still have to reach the collector.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("give either a record type or --all, not both")
			}
			if !all && len(args) != 1 {
				return errors.New("a record type is required unless --all is set")
			}
			return nil
		},
		ValidArgs: recordTypeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			target := "all record types"
			if !all {
				target = args[0] + " records"
			}

			if !yes {
				fmt.Fprintf(out, "This deletes %s from this device. Type 'yes' to continue: ", target)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.TrimSpace(strings.ToLower(answer)) != "yes" {
					fmt.Fprintln(out, "Aborted")
					return nil
				}
			}

			if all {
				if err := a.repo.Purge(ctx); err != nil {
					return err
				}
			} else if err := a.repo.ClearAll(ctx, models.RecordType(args[0])); err != nil {
				return err
			}

			fmt.Fprintf(out, "%s Cleared %s\n", renderPass("✓"), target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "clear every record type")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
