package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xonecas/clong/internal/constants"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clong.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CLONG_OUTPUT_DIR", "CLONG_LOG_LEVEL", "CLONG_THEME"} {
		t.Setenv(k, "")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
output_dir = "site"
log_level = "debug"

[source]
extensions = [".hpp", ".cpp"]
exclude = ["build/"]
respect_gitignore = false
workers = 4

[render]
theme = "dracula"
color = "never"
width = 100
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "site", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{".hpp", ".cpp"}, cfg.Source.Extensions)
	assert.Equal(t, []string{"build/"}, cfg.Source.Exclude)
	assert.False(t, cfg.Source.RespectGitignore)
	assert.Equal(t, 4, cfg.Source.Workers)
	// Unset keys keep their defaults.
	assert.Equal(t, int64(constants.MaxFileBytes), cfg.Source.MaxFileBytes)
	assert.Equal(t, RenderConfig{Theme: "dracula", Color: "never", Width: 100}, cfg.Render)
}

func TestLoadImplicitMissingUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadImplicitFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, constants.ConfigFile), []byte(`output_dir = "docs"`), 0o644))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "docs", cfg.OutputDir)
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(writeConfig(t, "output_dir = "))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLONG_OUTPUT_DIR", "env_out")
	t.Setenv("CLONG_LOG_LEVEL", "info")
	t.Setenv("CLONG_THEME", "nord")

	cfg, err := Load(writeConfig(t, `output_dir = "file_out"`))
	require.NoError(t, err)
	assert.Equal(t, "env_out", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "nord", cfg.Render.Theme)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errs   []string
	}{
		{"defaults", func(*Config) {}, nil},
		{"bad color", func(c *Config) { c.Render.Color = "sometimes" }, []string{"render.color"}},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, []string{"log_level"}},
		{"no dot", func(c *Config) { c.Source.Extensions = []string{"cpp"} }, []string{`"cpp" must start with a dot`}},
		{"no extensions", func(c *Config) { c.Source.Extensions = nil }, []string{"at least one extension"}},
		{"negatives", func(c *Config) {
			c.Render.Width = -1
			c.Source.Workers = -2
			c.Source.MaxFileBytes = -3
		}, []string{"render.width", "source.workers", "source.max_file_bytes"}},
		{"empty output", func(c *Config) { c.OutputDir = "" }, []string{"output_dir"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if len(tt.errs) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.errs {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestThemeOrDefault(t *testing.T) {
	assert.Equal(t, constants.SyntaxTheme, RenderConfig{}.ThemeOrDefault())
	assert.Equal(t, "nord", RenderConfig{Theme: "nord"}.ThemeOrDefault())
}
