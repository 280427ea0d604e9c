// internal/config/config_test.go
package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "reflow", cfg.Logger.ServiceName)
	assert.Equal(t, "reflow.log", cfg.Logger.LogFile)
	assert.Equal(t, 800.0, cfg.Render.ViewportWidth)
	assert.Equal(t, 1, cfg.Render.Parallelism)
	assert.Equal(t, "text", cfg.Render.Format)
	assert.Equal(t, "-", cfg.Render.Output)

	assert.NoError(t, cfg.Validate(), "defaults must validate")
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("zero viewport width", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Render.ViewportWidth = 0
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "render.viewport_width must be a positive number")
	})

	t.Run("negative parallelism", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Render.Parallelism = -1
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "render.parallelism must be a positive integer")
	})

	t.Run("unknown format", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Render.Format = "yaml"
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "render.format must be one of text, json, xml")
	})

	t.Run("all formats accepted", func(t *testing.T) {
		for _, format := range []string{"text", "json", "xml"} {
			cfg := DefaultConfig()
			cfg.Render.Format = format
			assert.NoError(t, cfg.Validate(), format)
		}
	})
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("successful load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
logger:
  level: debug
  log_file: /var/log/reflow.log
render:
  viewport_width: 1024
  parallelism: 4
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.Logger.Level)
		assert.Equal(t, "/var/log/reflow.log", cfg.Logger.LogFile)
		assert.Equal(t, 1024.0, cfg.Render.ViewportWidth)
		assert.Equal(t, 4, cfg.Render.Parallelism)
		// Values absent from the file keep their defaults.
		assert.Equal(t, "text", cfg.Render.Format)
	})

	t.Run("validation failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("render.parallelism", 0)

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "render.parallelism must be a positive integer")
	})
}
