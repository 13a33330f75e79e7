package config

import "github.com/openfleet/ridehail/infra/routing"

// RoutingConfig parameterizes the free-flow router and skim.
type RoutingConfig struct {
	SpeedMps float64 `json:"speed_mps"`
}

// SetDefaults applies sane defaults.
func (c *RoutingConfig) SetDefaults() {
	if c.SpeedMps <= 0 {
		c.SpeedMps = routing.DefaultSpeedMps
	}
}
