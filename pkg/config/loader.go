package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pixperk/markerlock/pkg/identity"
	"github.com/pixperk/markerlock/pkg/lock"
	mltime "github.com/pixperk/markerlock/pkg/time"
	"github.com/pixperk/markerlock/pkg/types"
	"go.uber.org/zap"
)

const envPrefix = "MARKERLOCK_"

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Load loads configuration with the following priority:
// 1. Environment variables (highest priority)
// 2. The config file at path, or markerlock.yaml/.yml/.json in the working directory
// 3. Defaults (lowest priority)
func Load(path string) (AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultAppConfig(), "koanf"), nil); err != nil {
		return AppConfig{}, fmt.Errorf("failed to load default config: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return AppConfig{}, fmt.Errorf("config file %s not found: %w", path, err)
		}
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return AppConfig{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else {
		for _, candidate := range []string{"markerlock.yaml", "markerlock.yml", "markerlock.json"} {
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if err := k.Load(file.Provider(candidate), parserFor(candidate)); err != nil {
				return AppConfig{}, fmt.Errorf("failed to load config file %s: %w", candidate, err)
			}
			break
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return AppConfig{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func parserFor(path string) koanf.Parser {
	if strings.HasSuffix(path, ".json") {
		return json.Parser()
	}
	return yaml.Parser()
}

// Validate checks that every setting is usable
func Validate(cfg AppConfig) error {
	if _, err := lock.ParseStrategy(cfg.Lock.Strategy); err != nil {
		return fmt.Errorf("%w: lock.strategy: %w", ErrInvalidConfig, err)
	}
	if _, err := mltime.ParseElapsedPolicy(cfg.Lock.Elapsed); err != nil {
		return fmt.Errorf("%w: lock.elapsed: %w: %w", ErrInvalidConfig, types.ErrUnknownElapsedMode, err)
	}
	if cfg.Lock.Timeout <= 0 {
		return fmt.Errorf("%w: lock.timeout must be positive, got %s", ErrInvalidConfig, cfg.Lock.Timeout)
	}

	durations := map[string]time.Duration{
		"lock.renew": cfg.Lock.Renew,
		"lock.wait":  cfg.Lock.Wait,
		"lock.retry": cfg.Lock.Retry,
	}
	for key, d := range durations {
		if d < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidConfig, key, d)
		}
	}
	if cfg.Lock.Wait > 0 && cfg.Lock.Retry == 0 {
		return fmt.Errorf("%w: lock.retry must be set when lock.wait is", ErrInvalidConfig)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, cfg.Log.Format)
	}

	return nil
}

// LockPath resolves a lock name against lock.dir. Absolute names and an
// empty dir leave the name unchanged.
func (c AppConfig) LockPath(name string) string {
	if c.Lock.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Lock.Dir, name)
}

// RenewInterval is the heartbeat period for held locks
func (c AppConfig) RenewInterval() time.Duration {
	if c.Lock.Renew > 0 {
		return c.Lock.Renew
	}
	return c.Lock.Timeout / 3
}

// LockOptions turns the lock and identity sections into handle options.
// The config must have passed Validate.
func (c AppConfig) LockOptions(logger *zap.Logger) []lock.Option {
	strategy, _ := lock.ParseStrategy(c.Lock.Strategy)
	elapsed, _ := mltime.ParseElapsedPolicy(c.Lock.Elapsed)

	return []lock.Option{
		lock.WithStrategy(strategy),
		lock.WithTimeout(c.Lock.Timeout),
		lock.WithElapsedPolicy(elapsed),
		lock.WithIdentity(identity.System{HostName: c.Identity.Host}),
		lock.WithLogger(logger),
	}
}
