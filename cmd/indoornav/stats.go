package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newStatsCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Load the map and print graph statistics as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := offlineEngine(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer eng.Shutdown()

			st, err := eng.Stats()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		},
	}
}
