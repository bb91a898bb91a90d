package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mobilitylabs/evsim/config"
	"github.com/mobilitylabs/evsim/infra/geoload"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize the configured road network without running",
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	net, err := geoload.LoadRoadNetwork(cfg.Network.RoadsFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "nodes: %d\nedges: %d\n", net.NumNodes(), net.NumEdges())
	ids := net.NodeIDs()
	if len(ids) > 0 {
		first, _ := net.NodeLocation(ids[0])
		fmt.Fprintf(cmd.OutOrStdout(), "first node: %d at (%.5f, %.5f)\n", ids[0], first.Lat, first.Lon)
	}
	return nil
}
