package config

import (
	"fmt"

	"github.com/openfleet/ridehail/infra/sessionlog"
)

// SessionLogConfig defines settings for session log storage.
type SessionLogConfig struct {
	// Backend selects the store type: "jsonl", "sqlite" or "none".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *SessionLogConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "sessions.jsonl"
	}
}

// Validate checks mandatory fields.
func (c SessionLogConfig) Validate() error {
	switch c.Backend {
	case "jsonl", "sqlite", "none":
	default:
		return fmt.Errorf("unknown session log backend %s", c.Backend)
	}
	if c.Backend != "none" && c.Path == "" {
		return fmt.Errorf("session log path is required")
	}
	return nil
}

// Open builds the configured store; a "none" backend returns nil.
func (c SessionLogConfig) Open() (sessionlog.Store, error) {
	switch c.Backend {
	case "jsonl":
		return sessionlog.NewJSONLStore(c.Path)
	case "sqlite":
		return sessionlog.NewSQLiteStore(c.Path)
	default:
		return nil, nil
	}
}
