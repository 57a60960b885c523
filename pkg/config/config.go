// Package config loads bubblecap settings: built-in defaults, then a YAML
// file, then BUBBLECAP_* environment overrides. Command-line flags are
// applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "bubblecap.yaml"

// EnvPrefix prefixes environment overrides. A double underscore separates
// nested keys: BUBBLECAP_SERVER__ADDR sets server.addr.
const EnvPrefix = "BUBBLECAP_"

// Config is the top-level bubblecap configuration.
type Config struct {
	Dataset        string        `yaml:"dataset" koanf:"dataset"`
	Padding        float64       `yaml:"padding" koanf:"padding"`
	LabelThreshold float64       `yaml:"label_threshold" koanf:"label_threshold"`
	Debounce       time.Duration `yaml:"debounce" koanf:"debounce"`
	Transition     time.Duration `yaml:"transition" koanf:"transition"`
	Server         ServerConfig  `yaml:"server" koanf:"server"`
	Log            LogConfig     `yaml:"log" koanf:"log"`
}

// ServerConfig holds HTTP endpoint settings.
type ServerConfig struct {
	Addr            string `yaml:"addr" koanf:"addr"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// LogConfig holds logger settings. File is only used by the terminal UI.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Pretty bool   `yaml:"pretty" koanf:"pretty"`
	File   string `yaml:"file" koanf:"file"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Padding:        3,
		LabelThreshold: 30,
		Debounce:       300 * time.Millisecond,
		Transition:     600 * time.Millisecond,
		Server: ServerConfig{
			Addr:            ":8080",
			AllowAllOrigins: true,
		},
		Log: LogConfig{
			Level: "info",
			File:  "bubblecap.log",
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.Dataset = expandHome(cfg.Dataset)
	cfg.Log.File = expandHome(cfg.Log.File)
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// fileConfig is the on-disk shape; durations are written as strings such
// as "300ms".
type fileConfig struct {
	Dataset        string       `yaml:"dataset"`
	Padding        float64      `yaml:"padding"`
	LabelThreshold float64      `yaml:"label_threshold"`
	Debounce       string       `yaml:"debounce"`
	Transition     string       `yaml:"transition"`
	Server         ServerConfig `yaml:"server"`
	Log            LogConfig    `yaml:"log"`
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(fileConfig{
		Dataset:        c.Dataset,
		Padding:        c.Padding,
		LabelThreshold: c.LabelThreshold,
		Debounce:       c.Debounce.String(),
		Transition:     c.Transition.String(),
		Server:         c.Server,
		Log:            c.Log,
	})
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Padding < 0 {
		return fmt.Errorf("padding must be non-negative")
	}
	if c.LabelThreshold <= 0 {
		return fmt.Errorf("label_threshold must be positive")
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive")
	}
	if c.Transition < 0 {
		return fmt.Errorf("transition must be non-negative")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log.level %q: must be one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}
