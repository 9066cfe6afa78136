// Package config provides configuration management for the prerender CLI
// using Viper for loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with the PRERENDER_ prefix, defaults, and validation. It
// controls engine options (slot fallback, nesting depth), the session's
// theme and message catalog, logging, and metrics output.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/prerender/internal/expand"
)

// EnvPrefix is the environment variable prefix.
const EnvPrefix = "PRERENDER"

// ConfigName is the default config file name, without extension.
const ConfigName = ".prerender"

type Config struct {
	Render  RenderConfig  `mapstructure:"render" yaml:"render"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

type RenderConfig struct {
	SlotFallback bool `mapstructure:"slot_fallback" yaml:"slot_fallback"`
	MaxDepth     int  `mapstructure:"max_depth" yaml:"max_depth"`
	Pretty       bool `mapstructure:"pretty" yaml:"pretty"`
}

type SessionConfig struct {
	ThemeFile string `mapstructure:"theme_file" yaml:"theme_file"`
	I18nFile  string `mapstructure:"i18n_file" yaml:"i18n_file"`
	Locale    string `mapstructure:"locale" yaml:"locale"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v, applies defaults, and validates it.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Render.MaxDepth == 0 {
		config.Render.MaxDepth = expand.DefaultMaxDepth
	}
	if config.Session.Locale == "" {
		config.Session.Locale = "en"
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Bind points v at the config file and the PRERENDER_ environment.
// An explicit file wins over PRERENDER_CONFIG_FILE, which wins over
// .prerender.yml in the working directory.
func Bind(v *viper.Viper, file string) {
	if file == "" {
		file = os.Getenv(EnvPrefix + "_CONFIG_FILE")
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(ConfigName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{
		"render.slot_fallback", "render.max_depth", "render.pretty",
		"session.theme_file", "session.i18n_file", "session.locale",
		"log.level", "log.format", "metrics.textfile",
	} {
		// AutomaticEnv only covers keys viper already knows about.
		_ = v.BindEnv(key)
	}
}

// LoadTheme reads the configured theme file. It returns nil when no
// theme file is configured.
func (c *Config) LoadTheme() (map[string]interface{}, error) {
	if c.Session.ThemeFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.Session.ThemeFile)
	if err != nil {
		return nil, fmt.Errorf("read theme file: %w", err)
	}
	var theme map[string]interface{}
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return nil, fmt.Errorf("parse theme file %s: %w", c.Session.ThemeFile, err)
	}
	return theme, nil
}

// EngineOptions translates the render section into engine options.
func (c *Config) EngineOptions() []expand.Option {
	return []expand.Option{
		expand.WithSlotFallback(c.Render.SlotFallback),
		expand.WithMaxDepth(c.Render.MaxDepth),
	}
}

// validateConfig validates configuration values for correctness
func validateConfig(config *Config) error {
	if config.Render.MaxDepth < 0 {
		return fmt.Errorf("render config: max_depth %d must not be negative", config.Render.MaxDepth)
	}

	if err := validateSessionConfig(&config.Session); err != nil {
		return fmt.Errorf("session config: %w", err)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	if config.Metrics.Textfile != "" {
		if err := validatePath(config.Metrics.Textfile); err != nil {
			return fmt.Errorf("metrics config: invalid textfile '%s': %w", config.Metrics.Textfile, err)
		}
	}

	return nil
}

func validateSessionConfig(config *SessionConfig) error {
	for name, path := range map[string]string{
		"theme_file": config.ThemeFile,
		"i18n_file":  config.I18nFile,
	} {
		if path == "" {
			continue
		}
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, path, err)
		}
	}

	if _, err := language.Parse(config.Locale); err != nil {
		return fmt.Errorf("invalid locale '%s': %w", config.Locale, err)
	}

	return nil
}

func validateLogConfig(config *LogConfig) error {
	switch strings.ToLower(config.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown level %q", config.Level)
	}
	switch config.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q (supported: text, json)", config.Format)
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
