package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CHROMALABEL_CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 5000, cfg.Server.Port)
	require.Equal(t, "static/uploads", cfg.Storage.ImageRoot)
	require.Equal(t, "trial", cfg.Experiment.WarmupCategory)
	require.Equal(t, 252, cfg.Experiment.TotalCap())
	require.Len(t, cfg.Palette, 13)

	fun := cfg.Experiment.Categories[3]
	require.Equal(t, "fun", fun.Name)
	require.Equal(t, NoCap, fun.Cap)
	require.True(t, fun.Optional)
	require.Equal(t, CatchConfig{Category: "catch", Screening: 5, Interval: 20}, cfg.Experiment.Catch)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
storage:
  image_root: /data/images
experiment:
  warmup_category: practice
  categories:
    - name: practice
      cap: 1
    - name: train
      cap: 10
      policy: balanced
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("CHROMALABEL_CONFIG_PATH", path)
	t.Setenv("CHROMALABEL_SERVER_PORT", "7070")
	t.Setenv("CHROMALABEL_RESULTS_DIR", "/data/results")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "/data/images", cfg.Storage.ImageRoot)
	require.Equal(t, "/data/results", cfg.Storage.ResultsDir)
	require.Len(t, cfg.Experiment.Categories, 2)
	require.Equal(t, PolicyBalanced, cfg.Experiment.Categories[1].Policy)
	require.Equal(t, 11, cfg.Experiment.TotalCap())
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("CHROMALABEL_SERVER_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no categories", func(c *Config) { c.Experiment.Categories = nil }},
		{"negative cap", func(c *Config) { c.Experiment.Categories[1].Cap = -2 }},
		{"catch is a trial category", func(c *Config) { c.Experiment.Catch.Category = "train" }},
		{"negative catch interval", func(c *Config) { c.Experiment.Catch.Interval = -1 }},
		{"duplicate category", func(c *Config) { c.Experiment.Categories[2].Name = "test" }},
		{"unknown policy", func(c *Config) { c.Experiment.Categories[0].Policy = "weighted" }},
		{"unknown warmup", func(c *Config) { c.Experiment.WarmupCategory = "practice" }},
		{"empty palette", func(c *Config) { c.Palette = nil }},
		{"channel out of range", func(c *Config) { c.Palette[0].RGB[1] = 256 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	require.NoError(t, Default().Validate())
}
