// Package config loads the YAML settings shared by the CLI and the web host.
// A file only needs the keys it overrides; everything else comes from the
// embedded defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDocument []byte

// Renderer names accepted by the renderer key.
var renderers = map[string]bool{"html": true, "text": true}

// Config is the full settings document.
type Config struct {
	Camps    []string `yaml:"camps"`
	Renderer string   `yaml:"renderer"`
	Log      Log      `yaml:"log"`
	Server   Server   `yaml:"server"`
	Theme    Theme    `yaml:"theme"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Server struct {
	Addr      string `yaml:"addr"`
	AssetsDir string `yaml:"assetsDir"`
}

// Theme selects the certificate look. Background is a file name under
// AssetPrefix or an absolute URL.
type Theme struct {
	Name        string            `yaml:"name"`
	Variant     string            `yaml:"variant"`
	AssetPrefix string            `yaml:"assetPrefix"`
	Background  string            `yaml:"background"`
	Tokens      map[string]string `yaml:"tokens"`
}

// Default returns the embedded defaults.
func Default() Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultDocument, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse defaults: %w", err)
	}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse: %w", err)
		}
	}
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var errs []error
	if len(c.Camps) == 0 {
		errs = append(errs, errors.New("camps: at least one camp is required"))
	}
	seen := make(map[string]bool, len(c.Camps))
	for _, camp := range c.Camps {
		if camp == "" {
			errs = append(errs, errors.New("camps: empty camp name"))
			continue
		}
		if seen[camp] {
			errs = append(errs, fmt.Errorf("camps: duplicate camp %q", camp))
		}
		seen[camp] = true
	}
	if !renderers[c.Renderer] {
		errs = append(errs, fmt.Errorf("renderer: unknown renderer %q", c.Renderer))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr: address is required"))
	}
	if c.Theme.Name == "" {
		errs = append(errs, errors.New("theme.name: name is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}

// LogLevel returns the parsed log level, defaulting to info.
func (c Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func (c *Config) normalise() {
	camps := c.Camps[:0]
	for _, camp := range c.Camps {
		camps = append(camps, strings.TrimSpace(camp))
	}
	c.Camps = camps
	c.Renderer = strings.ToLower(strings.TrimSpace(c.Renderer))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	c.Theme.Name = strings.TrimSpace(c.Theme.Name)
	c.Theme.Variant = strings.TrimSpace(c.Theme.Variant)
}
