package config

import (
	"fmt"

	"github.com/openfleet/ridehail/core/power"
	"github.com/openfleet/ridehail/infra/grid"
)

// CurtailmentWindowConfig caps station power to a fraction of estimated
// demand during [start_tick, end_tick).
type CurtailmentWindowConfig struct {
	StartTick int64   `json:"start_tick"`
	EndTick   int64   `json:"end_tick"`
	Fraction  float64 `json:"fraction"`
}

// PowerConfig selects the grid bounds provider.
type PowerConfig struct {
	// Provider is one of "unlimited", "static" or "curtailment".
	Provider         string                    `json:"provider"`
	CeilingsKW       map[string]float64        `json:"ceilings_kw"`
	DefaultCeilingKW float64                   `json:"default_ceiling_kw"`
	Windows          []CurtailmentWindowConfig `json:"windows"`
}

// SetDefaults applies sane defaults.
func (c *PowerConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "unlimited"
	}
}

// Validate checks the provider selection.
func (c PowerConfig) Validate() error {
	switch c.Provider {
	case "unlimited", "static":
		return nil
	case "curtailment":
		for _, w := range c.Windows {
			if w.EndTick <= w.StartTick {
				return fmt.Errorf("curtailment window [%d, %d) is empty", w.StartTick, w.EndTick)
			}
			if w.Fraction < 0 || w.Fraction > 1 {
				return fmt.Errorf("curtailment fraction %.2f out of [0, 1]", w.Fraction)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown power provider %s", c.Provider)
	}
}

// BoundsProvider builds the configured grid provider.
func (c PowerConfig) BoundsProvider() power.BoundsProvider {
	switch c.Provider {
	case "static":
		return grid.StaticProvider{CeilingsKW: c.CeilingsKW, DefaultCeilingKW: c.DefaultCeilingKW}
	case "curtailment":
		windows := make([]grid.CurtailmentWindow, len(c.Windows))
		for i, w := range c.Windows {
			windows[i] = grid.CurtailmentWindow{StartTick: w.StartTick, EndTick: w.EndTick, Fraction: w.Fraction}
		}
		inner := power.BoundsProvider(grid.UnlimitedProvider{})
		if len(c.CeilingsKW) > 0 || c.DefaultCeilingKW > 0 {
			inner = grid.StaticProvider{CeilingsKW: c.CeilingsKW, DefaultCeilingKW: c.DefaultCeilingKW}
		}
		return grid.CurtailmentProvider{Inner: inner, Windows: windows}
	default:
		return grid.UnlimitedProvider{}
	}
}
