// Package config loads markerlock settings from defaults, an optional
// YAML or JSON file and MARKERLOCK_ environment variables.
package config

import "time"

// AppConfig represents the complete configuration
type AppConfig struct {
	Lock     LockConfig     `koanf:"lock"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Identity IdentityConfig `koanf:"identity"`
}

// LockConfig holds marker lock settings. Keys are single words so they map
// cleanly from environment variables (MARKERLOCK_LOCK_TIMEOUT -> lock.timeout).
type LockConfig struct {
	Dir      string        `koanf:"dir"`      // directory for relative lock names
	Strategy string        `koanf:"strategy"` // "timestamp" or "retention"
	Timeout  time.Duration `koanf:"timeout"`  // staleness timeout
	Elapsed  string        `koanf:"elapsed"`  // "absolute" or "forward"
	Renew    time.Duration `koanf:"renew"`    // heartbeat interval, 0 means timeout/3
	Wait     time.Duration `koanf:"wait"`     // how long run keeps retrying, 0 means one attempt
	Retry    time.Duration `koanf:"retry"`    // delay between attempts while waiting
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig holds the optional metrics listener
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// IdentityConfig overrides parts of the process identity
type IdentityConfig struct {
	Host string `koanf:"host"`
}
