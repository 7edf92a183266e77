package session

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/gwillem/finch/pkg/device"
	"github.com/gwillem/finch/pkg/runner"
	"github.com/gwillem/finch/pkg/store"
)

const DefaultConfigFile = "finch.json"

// Config holds the finch configuration
type Config struct {
	Device     device.Config `json:"device"`
	StorePath  string        `json:"store_path,omitempty"`
	Params     runner.Params `json:"params"`
	AlertColor string        `json:"alert_color,omitempty"`
	// ConnectAttempts caps the connect loop; 0 retries forever.
	ConnectAttempts int `json:"connect_attempts,omitempty"`
}

// DefaultConfig is used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Device:     device.Config{Kind: device.KindSim},
		StorePath:  store.DefaultPath,
		AlertColor: runner.DefaultAlertColor,
	}
}

// LoadConfigFrom loads configuration from a specific file. A missing file
// yields the defaults.
func LoadConfigFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "read config")
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if _, _, _, err := runner.ParseColor(cfg.AlertColor); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the config file at path exists
func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
