// Package config loads the environment-driven defaults for a GameClient:
// the discovery/connect endpoints, default timeouts, and demo-harness
// overrides. None of it is required — every field has a constructor
// default — it only exists so the demo CLI and integration tests don't
// hardcode hosts.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// default network tunables, overridable via environment for local testing
// against a non-production Interactive host.
const (
	DefaultHostDiscoveryURL = "https://interactive.example.com/api/v1/interactive/hosts"
	DefaultConnectTimeout   = 15 * time.Second
	DefaultRequestTimeout   = 15 * time.Second
)

// Config holds process-wide overrides read from the environment. It is
// optional: a GameClient constructed without it uses the package defaults.
type Config struct {
	// HostDiscoveryURL overrides the well-known hosts endpoint.
	HostDiscoveryURL string

	// HostURL, if set, skips discovery entirely.
	HostURL string

	// Sharecode, if set, is sent as X-Interactive-Sharecode on the
	// WebSocket upgrade.
	Sharecode string

	// ConnectTimeout bounds the WebSocket handshake.
	ConnectTimeout time.Duration

	// RequestTimeout bounds each correlator round-trip.
	RequestTimeout time.Duration

	// Environment holds ENVIRONMENT as read at load time. The logger does
	// not consult this field: internal/logger reads ENVIRONMENT itself at
	// package init to choose its output format ("production" or "").
	Environment string
}

// LoadEnvironmentVariables reads INTERACTIVE_* environment variables,
// falling back to package defaults for anything unset. A missing .env
// file is not an error — production deployments rarely ship one.
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // optional in production
	}

	cfg := &Config{
		HostDiscoveryURL: DefaultHostDiscoveryURL,
		ConnectTimeout:   DefaultConnectTimeout,
		RequestTimeout:   DefaultRequestTimeout,
		Environment:      os.Getenv("ENVIRONMENT"),
	}

	if v := os.Getenv("INTERACTIVE_HOST_DISCOVERY_URL"); v != "" {
		cfg.HostDiscoveryURL = v
	}

	if v := os.Getenv("INTERACTIVE_HOST_URL"); v != "" {
		cfg.HostURL = v
	}

	if v := os.Getenv("INTERACTIVE_SHARECODE"); v != "" {
		cfg.Sharecode = v
	}

	if v := os.Getenv("INTERACTIVE_CONNECT_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.ConnectTimeout = time.Duration(secs) * time.Second
		}
	}

	if v := os.Getenv("INTERACTIVE_REQUEST_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.RequestTimeout = time.Duration(secs) * time.Second
		}
	}

	return cfg, nil
}
