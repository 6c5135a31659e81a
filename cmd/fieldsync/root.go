package main

import (
	"strings"

	"github.com/Guizzs26/go-field-sync/internal/models"
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "fieldsync",
		Short: "Offline-first capture and sync of field records",
		Long: `fieldsync captures tree, soil, climate and management records on the
device, keeps them in a local durable store, and sends pending records to the
collector grouped by plot when a connection is available.

Configuration is read from the environment and from a .env file in the
working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newStatusCmd(a),
		newSyncCmd(a),
		newClearCmd(a),
	)
	return root
}

func recordTypeNames() []string {
	types := models.DefaultRegistry().Types()
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}
	return names
}

func typeArgHelp() string {
	return strings.Join(recordTypeNames(), "|")
}
