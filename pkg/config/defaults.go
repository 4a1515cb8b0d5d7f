package config

import "time"

// DefaultAppConfig returns an AppConfig with default values
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Lock: LockConfig{
			Dir:      "",
			Strategy: "timestamp",
			Timeout:  30 * time.Second,
			Elapsed:  "absolute",
			Renew:    0,
			Wait:     0,
			Retry:    250 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
	}
}
