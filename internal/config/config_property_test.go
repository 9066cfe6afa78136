//go:build property
// +build property

package config

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/viper"
)

// TestConfigurationProperties tests configuration loading and validation properties
func TestConfigurationProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property: Any non-negative depth loads and is kept, zero means default
	properties.Property("max depth round trip", prop.ForAll(
		func(depth int) bool {
			v := viper.New()
			v.Set("render.max_depth", depth)
			cfg, err := LoadFrom(v)
			if err != nil {
				return false
			}
			if depth == 0 {
				return cfg.Render.MaxDepth > 0
			}
			return cfg.Render.MaxDepth == depth
		},
		gen.IntRange(0, 10000),
	))

	// Property: Path validation should be consistent
	properties.Property("path validation consistency", prop.ForAll(
		func(path string) bool {
			first := validatePath(path) == nil
			second := validatePath(path) == nil
			return first == second
		},
		gen.AnyString(),
	))

	// Property: Paths with shell metacharacters are always rejected
	properties.Property("unsafe paths rejected", prop.ForAll(
		func(base, bad string) bool {
			return validatePath(base+bad) != nil
		},
		gen.RegexMatch(`^[a-z]{1,8}/`),
		gen.OneConstOf(";x", "|x", "$x", "`x", "<x"),
	))

	// Property: Simple relative paths are always accepted
	properties.Property("safe paths accepted", prop.ForAll(
		func(path string) bool {
			return validatePath(path) == nil
		},
		gen.RegexMatch(`^[a-zA-Z0-9_]+(/[a-zA-Z0-9_]+)*\.ya?ml$`),
	))

	// Property: Detailed validation agrees with validateConfig on errors
	properties.Property("detailed validation agreement", prop.ForAll(
		func(depth int, level, format string) bool {
			cfg := &Config{
				Render:  RenderConfig{MaxDepth: depth},
				Session: SessionConfig{Locale: "en"},
				Log:     LogConfig{Level: level, Format: format},
			}
			simple := validateConfig(cfg) == nil
			detailed := ValidateConfigWithDetails(cfg).Valid
			return simple == detailed
		},
		gen.IntRange(-5, 100),
		gen.OneConstOf("debug", "info", "warn", "error", "loud", strings.ToUpper("info")),
		gen.OneConstOf("text", "json", "xml"),
	))

	properties.TestingRun(t)
}
