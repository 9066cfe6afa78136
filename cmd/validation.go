package cmd

import (
	"fmt"
	"strings"

	"github.com/conneroisu/prerender/internal/dom"
)

// validateTagArgument checks a tag named on the command line.
func validateTagArgument(tag string) error {
	if tag == "" {
		return fmt.Errorf("tag cannot be empty")
	}
	if tag != strings.ToLower(tag) {
		return fmt.Errorf("tag %q must be lowercase", tag)
	}
	if !dom.IsCustomName(tag) {
		return fmt.Errorf("tag %q is not a custom element name (it needs a hyphen)", tag)
	}
	return nil
}

// validateAttributeName rejects names that cannot be written as HTML
// attributes. Binding prefixes (?, @, .) are allowed.
func validateAttributeName(name string) error {
	if name == "" {
		return fmt.Errorf("attribute name cannot be empty")
	}
	bare := strings.TrimLeft(name, "?@.")
	if bare == "" {
		return fmt.Errorf("attribute name %q has only a binding prefix", name)
	}
	if i := strings.IndexAny(bare, " \t\n\r\"'<>/=`"); i >= 0 {
		return fmt.Errorf("attribute name %q contains invalid character %q", name, bare[i])
	}
	return nil
}

// parseAttributes merges --props JSON with repeated --attr name=value
// flags; --attr wins. A bare --attr name sets a boolean true.
func parseAttributes(base map[string]interface{}, pairs []string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(base)+len(pairs))
	for k, v := range base {
		out[k] = v
	}
	for _, pair := range pairs {
		name, value, hasValue := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if err := validateAttributeName(name); err != nil {
			return nil, fmt.Errorf("invalid --attr %q: %w", pair, err)
		}
		if !hasValue {
			out[name] = true
			continue
		}
		out[name] = value
	}
	return out, nil
}
