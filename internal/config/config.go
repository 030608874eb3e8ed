// Package config provides configuration management for the CDP-MCP server.
//
// Configuration controls:
//   - Session limits: maximum concurrent sessions and the inactivity
//     threshold after which idle sessions are reaped
//   - Logpoint behavior: default execution ceiling and the size of the
//     captured-log ring kept per logpoint
//   - Timing: expression-validation wait, location-search radius and
//     per-candidate timeout
//
// Configuration can be loaded from a JSON file or use sensible defaults.
// Durations in the JSON file are expressed in seconds.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config holds the server configuration
type Config struct {
	// Session limits
	MaxSessions      int `json:"maxSessions"`
	ReapIntervalSec  int `json:"reapIntervalSeconds"`
	ReapThresholdSec int `json:"reapThresholdSeconds"`

	// Logpoint behavior
	DefaultCeiling int `json:"defaultExecutionCeiling"`
	LogRingSize    int `json:"logRingSize"`

	// Timing
	ValidationTimeoutSec float64 `json:"validationTimeoutSeconds"`
	SearchRadius         int     `json:"searchRadiusLines"`
	SearchTimeoutSec     float64 `json:"searchCandidateTimeoutSeconds"`
	CommandTimeoutSec    float64 `json:"commandTimeoutSeconds"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MaxSessions:          10,
		ReapIntervalSec:      120,
		ReapThresholdSec:     600,
		DefaultCeiling:       10,
		LogRingSize:          20,
		ValidationTimeoutSec: 3,
		SearchRadius:         2,
		SearchTimeoutSec:     2,
		CommandTimeoutSec:    10,
	}
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	if c.MaxSessions < 1 {
		return fmt.Errorf("maxSessions must be at least 1, got %d", c.MaxSessions)
	}
	if c.DefaultCeiling < 1 {
		return fmt.Errorf("defaultExecutionCeiling must be at least 1, got %d", c.DefaultCeiling)
	}
	if c.LogRingSize < 1 {
		return fmt.Errorf("logRingSize must be at least 1, got %d", c.LogRingSize)
	}
	if c.SearchRadius < 0 {
		return fmt.Errorf("searchRadiusLines must not be negative, got %d", c.SearchRadius)
	}
	return nil
}

// ReapInterval returns the reaper tick interval
func (c *Config) ReapInterval() time.Duration {
	return time.Duration(c.ReapIntervalSec) * time.Second
}

// ReapThreshold returns the inactivity age after which a session is reaped
func (c *Config) ReapThreshold() time.Duration {
	return time.Duration(c.ReapThresholdSec) * time.Second
}

// ValidationTimeout returns the bounded wait for logpoint expression validation
func (c *Config) ValidationTimeout() time.Duration {
	return time.Duration(c.ValidationTimeoutSec * float64(time.Second))
}

// SearchTimeout returns the per-candidate wait used by the location search
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeoutSec * float64(time.Second))
}

// CommandTimeout returns the default timeout for protocol commands
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutSec * float64(time.Second))
}
