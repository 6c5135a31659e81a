package main

import (
	"fmt"
	"strings"

	"github.com/Guizzs26/go-field-sync/internal/models"
	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		plotID string
		pairs  []string
	)

	cmd := &cobra.Command{
		Use:   "add <" + typeArgHelp() + ">",
		Short: "Capture one record in the local store",
		Long: `Capture one record. Values are given as name=value pairs and are
validated against the record type before anything is stored.

Examples:
  fieldsync add tree --plot P1 -f species="Araucaria angustifolia" -f dbh_cm=32.5
  fieldsync add soil --plot P1 -f depth_cm=30 -f organic_carbon_percent=2.1 \
      -f bulk_density_g_cm3=1.3 -f ph_value=5.9
  fieldsync add management --plot P2 -f practiceType=irrigation -f description="Drip line"`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: recordTypeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := parseFields(pairs)
			if err != nil {
				return err
			}

			rec, err := a.repo.Append(cmd.Context(), models.RecordType(args[0]), plotID, input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Saved %s record %s for plot %s %s\n",
				renderPass("✓"), args[0], rec.ID, rec.PlotID, renderMuted("(pending sync)"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&plotID, "plot", "p", "", "plot the record belongs to")
	cmd.Flags().StringArrayVarP(&pairs, "field", "f", nil, "field value as name=value (repeatable)")
	return cmd
}

// parseFields turns name=value pairs into raw input. The first '=' splits,
// so values may contain '=' and ','
func parseFields(pairs []string) (models.Input, error) {
	input := make(models.Input, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("field %q must be written as name=value", p)
		}
		input[name] = value
	}
	return input, nil
}
