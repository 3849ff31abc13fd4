// Package config holds the runtime configuration for console-sync.
// Values come from flags bound through viper, with environment variables
// (prefix CONSOLE_SYNC) and built-in defaults as fallbacks.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"console-sync/internal/notify"
)

// Config holds all configuration for console-sync.
type Config struct {
	// Console connection
	Endpoint   string // Base URL of the management console, e.g. http://console:5000
	StreamPath string // Path of the push-stream endpoint

	// Reconnect behaviour
	ReconnectDelay time.Duration // Fixed wait after a transport error
	RestartDelay   time.Duration // Shorter wait for operator-triggered restarts
	SettleDelay    time.Duration // Wait between row removal and list refresh

	// Notification store
	StoreCapacity int

	// Logging
	LogLevel string // DEBUG, INFO, WARN, ERROR
}

// SetDefaults registers default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("stream-path", "/notifications/stream")
	v.SetDefault("reconnect-delay", 3*time.Second)
	v.SetDefault("restart-delay", time.Second)
	v.SetDefault("settle-delay", time.Second)
	v.SetDefault("capacity", notify.DefaultCapacity)
	v.SetDefault("log-level", "INFO")
}

// Load reads configuration from the given viper instance and validates
// that all required values are present.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("CONSOLE_SYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	endpoint := strings.TrimRight(v.GetString("endpoint"), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required (--endpoint or CONSOLE_SYNC_ENDPOINT)")
	}

	cfg := &Config{
		Endpoint:       endpoint,
		StreamPath:     v.GetString("stream-path"),
		ReconnectDelay: v.GetDuration("reconnect-delay"),
		RestartDelay:   v.GetDuration("restart-delay"),
		SettleDelay:    v.GetDuration("settle-delay"),
		StoreCapacity:  v.GetInt("capacity"),
		LogLevel:       v.GetString("log-level"),
	}
	if cfg.ReconnectDelay <= 0 || cfg.RestartDelay <= 0 || cfg.SettleDelay <= 0 {
		return nil, fmt.Errorf("delays must be positive")
	}
	return cfg, nil
}

// StreamURL derives the websocket URL of the push stream from the HTTP
// endpoint.
func (c *Config) StreamURL() string {
	u := c.Endpoint + c.StreamPath
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
