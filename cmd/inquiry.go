package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfleet/ridehail/config"
	"github.com/openfleet/ridehail/core/fleet"
	"github.com/openfleet/ridehail/core/model"
	"github.com/openfleet/ridehail/infra/logger"
	infrarouting "github.com/openfleet/ridehail/infra/routing"
	"github.com/openfleet/ridehail/internal/eventbus"
)

var inquiryCmd = &cobra.Command{
	Use:   "inquiry",
	Short: "Run a test inquiry and reservation against a demo vehicle",
	RunE:  runInquiry,
}

func init() {
	rootCmd.AddCommand(inquiryCmd)
}

func runInquiry(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New("inquiry-command")
	bus := eventbus.New()
	defer bus.Close()
	router := infrarouting.NewFreeFlowRouter(cfg.Routing.SpeedMps)
	pricing := fleet.NewSurgePricing(cfg.Pricing)

	mgr, err := fleet.NewManager(cfg.Fleet, router, pricing, bus, logg)
	if err != nil {
		return fmt.Errorf("fleet manager: %w", err)
	}

	veh := model.Vehicle{
		ID:           "demo-vehicle",
		Where:        model.Spacetime{Loc: model.Coord{Lat: 48.8566, Lon: 2.3522}},
		State:        model.StateAvailable,
		SeatCapacity: 4,
	}
	if err := mgr.AddVehicle(veh); err != nil {
		return fmt.Errorf("add vehicle: %w", err)
	}

	req := model.Request{
		ID:           "demo-request",
		RiderIDs:     []string{"demo-rider"},
		Pickup:       model.Coord{Lat: 48.8606, Lon: 2.3376},
		Dropoff:      model.Coord{Lat: 48.8738, Lon: 2.2950},
		MaxWaitSec:   600,
		MaxDetourSec: 600,
		ValueOfTime:  1,
	}
	prop, err := mgr.Inquiry(req)
	if err != nil {
		return fmt.Errorf("inquiry: %w", err)
	}
	logg.Infof("proposal %s: vehicle=%s pickup=%ds travel=%ds fare=%.2f",
		prop.ID, prop.VehicleID, prop.TimeToPickupSec, prop.TravelTimeSec, prop.Fare)

	conf, err := mgr.Reserve(req.ID)
	if err != nil {
		return fmt.Errorf("reserve: %w", err)
	}
	logg.Infof("reserved: vehicle=%s pickup=%d dropoff=%d fare=%.2f",
		conf.VehicleID, conf.PickupTime, conf.DropoffTime, conf.Fare)
	return nil
}
