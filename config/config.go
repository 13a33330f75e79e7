// Package config loads and validates the service configuration from YAML or
// JSON files, with environment variable overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/openfleet/ridehail/core/fleet"
	"github.com/openfleet/ridehail/core/metrics"
	"github.com/openfleet/ridehail/core/pooling"
	"github.com/openfleet/ridehail/infra/mqtt"
)

type Config struct {
	Fleet      fleet.Config        `json:"fleet"`
	Pricing    fleet.PricingConfig `json:"pricing"`
	Pooling    pooling.Config      `json:"pooling"`
	Charging   ChargingConfig      `json:"charging"`
	Power      PowerConfig         `json:"power"`
	Routing    RoutingConfig       `json:"routing"`
	Sim        SimConfig           `json:"sim"`
	MQTT       mqtt.Config         `json:"mqtt"`
	Metrics    metrics.Config      `json:"metrics"`
	SessionLog SessionLogConfig    `json:"session_log"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("RH_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "rh_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Fleet.SetDefaults()
	cfg.Pricing.SetDefaults()
	cfg.Pooling.SetDefaults()
	cfg.Power.SetDefaults()
	cfg.Routing.SetDefaults()
	cfg.Sim.SetDefaults()
	cfg.SessionLog.SetDefaults()
	if err := cfg.Charging.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Power.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Sim.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.SessionLog.Validate(); err != nil {
		return nil, err
	}
	if cfg.MQTT.Enabled {
		if err := cfg.MQTT.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
