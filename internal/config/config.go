// Package config loads runtime settings for the linsolve binaries from
// defaults, LINSOLVE_* environment variables and explicit overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable the loader reads.
// LINSOLVE_SERVER_PORT maps to server.port.
const EnvPrefix = "LINSOLVE_"

type Config struct {
	Server ServerConfig `koanf:"server"`
	Log    LogConfig    `koanf:"log"`
	Cache  CacheConfig  `koanf:"cache"`
}

type ServerConfig struct {
	Port              int           `koanf:"port"                validate:"min=1,max=65535"`
	MaxBodyBytes      int64         `koanf:"max_body_bytes"      validate:"gt=0"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	ReadTimeout       time.Duration `koanf:"read_timeout"        validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout"       validate:"gt=0"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"        validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"    validate:"gt=0"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

type CacheConfig struct {
	// Size is the number of parsed equations kept by the server; 0 disables
	// the cache.
	Size int `koanf:"size" validate:"gte=0"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:              8080,
			MaxBodyBytes:      1 << 20,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Log:   LogConfig{Level: "info"},
		Cache: CacheConfig{Size: 1024},
	}
}

// Load layers defaults, environment and overrides, in that order of
// precedence, and validates the result. Override keys use the dotted koanf
// path, e.g. "server.port".
func Load(overrides map[string]any) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return transformEnvKey(key), value
		},
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return Config{}, fmt.Errorf("failed to apply override %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints declared in struct tags.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// transformEnvKey maps LINSOLVE_SERVER_MAX_BODY_BYTES to
// server.max_body_bytes: the first segment is the section, the rest is the
// field name.
func transformEnvKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, found := strings.Cut(key, "_")
	if !found {
		return section
	}
	return section + "." + field
}
