package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openfleet/ridehail/config"
	"github.com/openfleet/ridehail/core/model"
	"github.com/openfleet/ridehail/core/pooling"
	"github.com/openfleet/ridehail/infra/logger"
	infrarouting "github.com/openfleet/ridehail/infra/routing"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Run one pooled matching cycle over a demo batch",
	RunE:  runPool,
}

func init() {
	rootCmd.AddCommand(poolCmd)
}

func runPool(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New("pool-command")
	skim := infrarouting.NewHaversineSkim(cfg.Routing.SpeedMps)
	matcher := pooling.NewMatcher(cfg.Pooling, skim, logg)

	requests := []model.Request{
		{ID: "r1", RiderIDs: []string{"a"}, Pickup: model.Coord{Lat: 48.851, Lon: 2.350}, Dropoff: model.Coord{Lat: 48.870, Lon: 2.350}, MaxWaitSec: 300, MaxDetourSec: 300, ValueOfTime: 1},
		{ID: "r2", RiderIDs: []string{"b"}, Pickup: model.Coord{Lat: 48.852, Lon: 2.351}, Dropoff: model.Coord{Lat: 48.871, Lon: 2.351}, MaxWaitSec: 300, MaxDetourSec: 300, ValueOfTime: 1},
		{ID: "r3", RiderIDs: []string{"c"}, Pickup: model.Coord{Lat: 48.830, Lon: 2.300}, Dropoff: model.Coord{Lat: 48.820, Lon: 2.290}, MaxWaitSec: 300, MaxDetourSec: 300, ValueOfTime: 1},
	}
	vehicles := []model.Vehicle{
		{ID: "v1", Where: model.Spacetime{Loc: model.Coord{Lat: 48.850, Lon: 2.350}}, State: model.StateAvailable, SeatCapacity: 4},
		{ID: "v2", Where: model.Spacetime{Loc: model.Coord{Lat: 48.831, Lon: 2.301}}, State: model.StateAvailable, SeatCapacity: 4},
	}

	res := matcher.Match(requests, vehicles)
	for _, a := range res.Assignments {
		logg.Infof("vehicle %s takes [%s] (cost %.1f)", a.VehicleID, strings.Join(a.RequestIDs, ", "), a.Cost)
	}
	if len(res.Unmatched) > 0 {
		logg.Warnf("unmatched: %s", strings.Join(res.Unmatched, ", "))
	}
	return nil
}
