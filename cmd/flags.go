package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Component flags
	Props     string
	PropsFile string

	// Output flags
	Format  string
	Verbose bool
}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "component":
			addComponentFlags(cmd, flags)
		case "output":
			addOutputFlags(cmd, flags)
		}
	}

	return flags
}

func addComponentFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVar(&flags.Props, "props", "", "Root properties (JSON or @file.json)")
	cmd.Flags().StringVar(&flags.PropsFile, "props-file", "", "Root properties file (JSON)")
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.Format, "format", "f", "table", "Output format (table|json|yaml|csv)")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output")
}

// ParseProps parses root properties with support for file references
func (f *StandardFlags) ParseProps() (map[string]interface{}, error) {
	if f.Props != "" && f.PropsFile != "" {
		return nil, fmt.Errorf("cannot specify both --props and --props-file")
	}

	source, inline := f.PropsFile, ""
	switch {
	case source != "":
	case strings.HasPrefix(f.Props, "@"):
		source = strings.TrimPrefix(f.Props, "@")
	default:
		inline = f.Props
	}

	props := make(map[string]interface{})
	if source != "" {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read props file %s: %w", source, err)
		}
		if err := json.Unmarshal(data, &props); err != nil {
			return nil, fmt.Errorf("invalid JSON in props file %s: %w", source, err)
		}
		return props, nil
	}

	if inline != "" {
		if err := json.Unmarshal([]byte(inline), &props); err != nil {
			return nil, fmt.Errorf("invalid JSON in props: %w", err)
		}
	}
	return props, nil
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	originalSet := flag.Value.Set

	flag.Value = &validatingValue{
		Value:       flag.Value,
		validator:   validator,
		originalSet: originalSet,
	}
}

type validatingValue struct {
	pflag.Value
	validator   func(string) error
	originalSet func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.originalSet(val)
}

// ValidateFormat checks format against the supported list
func ValidateFormat(format string, supported []string) error {
	for _, s := range supported {
		if strings.EqualFold(format, s) {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (supported: %s)", format, strings.Join(supported, ", "))
}
