package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/conneroisu/prerender/internal/expand"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateRenderConfigDetails(&config.Render, result)
	validateSessionConfigDetails(&config.Session, result)
	validateLogConfigDetails(&config.Log, result)
	validateMetricsConfigDetails(&config.Metrics, result)

	result.Valid = !result.HasErrors()

	return result
}

func validateRenderConfigDetails(config *RenderConfig, result *ValidationResult) {
	if config.MaxDepth < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "render.max_depth",
			Value:   config.MaxDepth,
			Message: "max_depth must not be negative",
			Suggestions: []string{
				fmt.Sprintf("Leave unset to use the default of %d", expand.DefaultMaxDepth),
			},
		})
	} else if config.MaxDepth > 0 && config.MaxDepth < 4 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "render.max_depth",
			Value:   config.MaxDepth,
			Message: "very small max_depth rejects ordinary component nesting",
			Suggestions: []string{
				"Raise max_depth unless you are debugging runaway recursion",
			},
		})
	}
}

func validateSessionConfigDetails(config *SessionConfig, result *ValidationResult) {
	files := []struct {
		field string
		path  string
	}{
		{"session.theme_file", config.ThemeFile},
		{"session.i18n_file", config.I18nFile},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if err := validatePath(f.path); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   f.field,
				Value:   f.path,
				Message: err.Error(),
				Suggestions: []string{
					"Use a path relative to the project directory",
					"Avoid parent directory references (..)",
				},
			})
			continue
		}
		if !pathExists(f.path) {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   f.field,
				Value:   f.path,
				Message: "file does not exist",
				Suggestions: []string{
					"Create the file or remove the setting",
				},
			})
		}
	}

	if config.Locale != "" {
		if _, err := language.Parse(config.Locale); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "session.locale",
				Value:   config.Locale,
				Message: err.Error(),
				Suggestions: []string{
					"Use a BCP 47 tag such as 'en', 'en-US' or 'de-CH'",
				},
			})
		}
	}

	if config.Locale != "" && config.Locale != "en" && config.I18nFile == "" {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "session.locale",
			Value:   config.Locale,
			Message: "locale is set but no i18n_file is configured",
			Suggestions: []string{
				"Set session.i18n_file to a YAML message catalog",
			},
		})
	}
}

func validateLogConfigDetails(config *LogConfig, result *ValidationResult) {
	if err := validateLogConfig(config); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "log",
			Value:   *config,
			Message: err.Error(),
			Suggestions: []string{
				"Levels: debug, info, warn, error",
				"Formats: text, json",
			},
		})
	}
}

func validateMetricsConfigDetails(config *MetricsConfig, result *ValidationResult) {
	if config.Textfile == "" {
		return
	}
	if err := validatePath(config.Textfile); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "metrics.textfile",
			Value:   config.Textfile,
			Message: err.Error(),
		})
		return
	}
	if !strings.HasSuffix(config.Textfile, ".prom") {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "metrics.textfile",
			Value:   config.Textfile,
			Message: "textfile collectors only read files ending in .prom",
			Suggestions: []string{
				"Rename the file to end in .prom",
			},
		})
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
