package config

import (
	"fmt"

	"github.com/openfleet/ridehail/core/charging"
	"github.com/openfleet/ridehail/core/model"
)

// StationConfig describes one charging station.
type StationConfig struct {
	ID          string  `json:"id"`
	ZoneID      string  `json:"zone_id"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Stalls      int     `json:"stalls"`
	PlugPowerKW float64 `json:"plug_power_kw"`
}

// ChargingConfig describes the charging network.
type ChargingConfig struct {
	Stations []StationConfig `json:"stations"`
}

// Validate checks every station definition.
func (c ChargingConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.Stations))
	for _, s := range c.Stations {
		st := s.Station()
		if err := st.Validate(); err != nil {
			return err
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("duplicate station id %s", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// Station converts the config entry to the domain type.
func (s StationConfig) Station() charging.Station {
	return charging.Station{
		ID:          s.ID,
		ZoneID:      s.ZoneID,
		Loc:         model.Coord{Lat: s.Lat, Lon: s.Lon},
		Stalls:      s.Stalls,
		PlugPowerKW: s.PlugPowerKW,
	}
}

// DomainStations converts all configured stations.
func (c ChargingConfig) DomainStations() []charging.Station {
	out := make([]charging.Station, len(c.Stations))
	for i, s := range c.Stations {
		out[i] = s.Station()
	}
	return out
}
