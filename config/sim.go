package config

import "fmt"

// SimConfig controls the discrete-event loop.
type SimConfig struct {
	// HorizonSec is the last simulated tick.
	HorizonSec int64 `json:"horizon_sec"`
	// MatchIntervalSec is the period of the pooling matching cycle.
	MatchIntervalSec int64 `json:"match_interval_sec"`
	// ChargeStepSec is the charging dispatch planning step.
	ChargeStepSec int64 `json:"charge_step_sec"`
}

// SetDefaults applies sane defaults.
func (c *SimConfig) SetDefaults() {
	if c.HorizonSec <= 0 {
		c.HorizonSec = 24 * 3600
	}
	if c.MatchIntervalSec <= 0 {
		c.MatchIntervalSec = 30
	}
	if c.ChargeStepSec <= 0 {
		c.ChargeStepSec = 300
	}
}

// Validate checks the step sizes against the horizon.
func (c SimConfig) Validate() error {
	if c.MatchIntervalSec > c.HorizonSec {
		return fmt.Errorf("match interval %d exceeds horizon %d", c.MatchIntervalSec, c.HorizonSec)
	}
	if c.ChargeStepSec > c.HorizonSec {
		return fmt.Errorf("charge step %d exceeds horizon %d", c.ChargeStepSec, c.HorizonSec)
	}
	return nil
}
