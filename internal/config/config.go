// internal/config/config.go

// Package config defines the runtime configuration for the reflow engine
// and its CLI, loaded through viper from defaults, config file, flags,
// and environment.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the root configuration shared by the CLI and the engine.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Render RenderConfig `mapstructure:"render" yaml:"render"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// RenderConfig controls a render pass: the viewport the layout is solved
// for, how many sibling subtrees may be styled concurrently, and where and
// how the resulting trees are reported.
type RenderConfig struct {
	ViewportWidth float64 `mapstructure:"viewport_width" yaml:"viewport_width"`
	Parallelism   int     `mapstructure:"parallelism" yaml:"parallelism"`
	Format        string  `mapstructure:"format" yaml:"format"`
	Output        string  `mapstructure:"output" yaml:"output"`
	UserAgentCSS  string  `mapstructure:"user_agent_css" yaml:"user_agent_css"`
}

// SetDefaults initializes default values for every configuration parameter.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "reflow")
	v.SetDefault("logger.log_file", "reflow.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "red")

	// -- Render --
	v.SetDefault("render.viewport_width", 800.0)
	v.SetDefault("render.parallelism", 1)
	v.SetDefault("render.format", "text")
	v.SetDefault("render.output", "-")
	v.SetDefault("render.user_agent_css", "")
}

// DefaultConfig returns a configuration populated purely from defaults.
func DefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults always unmarshal; reaching this means the defaults and
		// the struct drifted apart.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Render.ViewportWidth <= 0 {
		return fmt.Errorf("render.viewport_width must be a positive number")
	}
	if c.Render.Parallelism <= 0 {
		return fmt.Errorf("render.parallelism must be a positive integer")
	}
	switch c.Render.Format {
	case "text", "json", "xml":
	default:
		return fmt.Errorf("render.format must be one of text, json, xml (got %q)", c.Render.Format)
	}
	return nil
}
