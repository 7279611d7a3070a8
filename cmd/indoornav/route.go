package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/indoornav/internal/route"
)

func newRouteCmd(cfgPath *string) *cobra.Command {
	var (
		req      route.Request
		maxDepth int
		allow    bool
	)

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Find a route between two nodes and print it as JSON",
		Example: `  indoornav route --from di_box_1 --to col_3_cab_1
  indoornav route --from wp_001 --to fossil_trex --alternatives 3 --exclude wp_002`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("max-depth") {
				req.MaxDepth = &maxDepth
			}
			if cmd.Flags().Changed("allow-direct") {
				req.AllowDirectFixtureConnections = &allow
			}

			eng, err := offlineEngine(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer eng.Shutdown()

			res, err := eng.Route(cmd.Context(), &req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.From, "from", "", "source node id (required)")
	f.StringVar(&req.To, "to", "", "target node id (required)")
	f.IntVar(&maxDepth, "max-depth", 0, "maximum BFS iterations (default from config)")
	f.StringSliceVar(&req.ExcludeNodes, "exclude", nil, "node ids the route must avoid")
	f.BoolVar(&allow, "allow-direct", false, "let fixtures connect through Unknown-typed nodes")
	f.IntVar(&req.Alternatives, "alternatives", 1, "number of interior-disjoint paths to return")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
