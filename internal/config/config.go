// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/xonecas/clong/internal/constants"
)

// Config is the root configuration structure.
type Config struct {
	OutputDir string       `toml:"output_dir"`
	LogLevel  string       `toml:"log_level"`
	Source    SourceConfig `toml:"source"`
	Render    RenderConfig `toml:"render"`
}

// SourceConfig controls which files are parsed and how.
type SourceConfig struct {
	Extensions       []string `toml:"extensions"`
	Exclude          []string `toml:"exclude"`
	RespectGitignore bool     `toml:"respect_gitignore"`
	MaxFileBytes     int64    `toml:"max_file_bytes"`
	// Workers bounds concurrent parsing. 0 means one per CPU.
	Workers int `toml:"workers"`
}

// RenderConfig holds terminal output settings.
type RenderConfig struct {
	// Theme is the Chroma theme for highlighted signatures. Guide and comment
	// colours are derived from it via highlight.ThemePalette.
	Theme string `toml:"theme"`
	Color string `toml:"color"`
	Width int    `toml:"width"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		OutputDir: constants.OutputDir,
		LogLevel:  constants.LogLevel,
		Source: SourceConfig{
			Extensions:       slices.Clone(constants.Extensions),
			RespectGitignore: true,
			MaxFileBytes:     constants.MaxFileBytes,
		},
		Render: RenderConfig{
			Theme: constants.SyntaxTheme,
			Color: constants.ColorAuto,
		},
	}
}

// Load reads configuration from a TOML file on top of the defaults and applies
// environment variable overrides. An empty path loads the optional
// constants.ConfigFile from the working directory; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = constants.ConfigFile
	}

	if _, err := os.Stat(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
	} else if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level=%q is invalid: %v", c.LogLevel, err))
	}

	if len(c.Source.Extensions) == 0 {
		errs = append(errs, errors.New("source.extensions: at least one extension is required"))
	}
	for _, ext := range c.Source.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, fmt.Errorf("source.extensions: %q must start with a dot", ext))
		}
	}
	if c.Source.MaxFileBytes < 0 {
		errs = append(errs, fmt.Errorf("source.max_file_bytes=%d must not be negative", c.Source.MaxFileBytes))
	}
	if c.Source.Workers < 0 {
		errs = append(errs, fmt.Errorf("source.workers=%d must not be negative", c.Source.Workers))
	}

	switch c.Render.Color {
	case constants.ColorAuto, constants.ColorAlways, constants.ColorNever:
	default:
		errs = append(errs, fmt.Errorf("render.color=%q must be one of auto, always, never", c.Render.Color))
	}
	if c.Render.Width < 0 {
		errs = append(errs, fmt.Errorf("render.width=%d must not be negative", c.Render.Width))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// ThemeOrDefault returns the configured theme or constants.SyntaxTheme if unset.
func (r RenderConfig) ThemeOrDefault() string {
	if r.Theme == "" {
		return constants.SyntaxTheme
	}
	return r.Theme
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"CLONG_OUTPUT_DIR", func(v string) { cfg.OutputDir = v }},
		{"CLONG_LOG_LEVEL", func(v string) { cfg.LogLevel = v }},
		{"CLONG_THEME", func(v string) { cfg.Render.Theme = v }},
	} {
		if v := os.Getenv(setter.env); v != "" {
			setter.apply(v)
		}
	}
}
