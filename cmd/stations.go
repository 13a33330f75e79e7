package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfleet/ridehail/config"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "Charging station related commands",
}

var stationsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List configured charging stations",
	RunE:  runStationsLs,
}

func init() {
	stationsCmd.AddCommand(stationsLsCmd)
	rootCmd.AddCommand(stationsCmd)
}

func runStationsLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	for _, st := range cfg.Charging.DomainStations() {
		fmt.Printf("%s zone=%s stalls=%d plug=%.1fkW (%.5f, %.5f)\n",
			st.ID, st.ZoneID, st.Stalls, st.PlugPowerKW, st.Loc.Lat, st.Loc.Lon)
	}
	return nil
}
