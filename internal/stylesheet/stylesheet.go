// Package stylesheet adapts a CSS parser to the operations the scoping
// engine needs: parse, prefix every selector with a scoping class, and
// print the result back to text.
package stylesheet

import (
	"fmt"
	"strings"
)

// ChangeScope declares what makes a stylesheet template re-render.
type ChangeScope uint8

const (
	// ChangeImmutable stylesheets never change after first render.
	ChangeImmutable ChangeScope = 0
	// ChangeTheme stylesheets depend on the session theme only.
	ChangeTheme ChangeScope = 1 << 0
	// ChangeProps stylesheets depend on instance properties.
	ChangeProps ChangeScope = 1 << 1
	// ChangeI18n stylesheets depend on localized messages.
	ChangeI18n ChangeScope = 1 << 2
)

// TypeScoped reports whether a sheet is shared by every instance of a
// component type: immutable or theme-driven only.
func (s ChangeScope) TypeScoped() bool {
	return s&^ChangeTheme == 0
}

// String returns the scope as a "|"-separated list.
func (s ChangeScope) String() string {
	if s == ChangeImmutable {
		return "immutable"
	}
	var parts []string
	if s&ChangeTheme != 0 {
		parts = append(parts, "theme")
	}
	if s&ChangeProps != 0 {
		parts = append(parts, "props")
	}
	if s&ChangeI18n != 0 {
		parts = append(parts, "i18n")
	}
	return strings.Join(parts, "|")
}

// ParseChangeScope reads a scope written as String does.
func ParseChangeScope(s string) (ChangeScope, error) {
	var scope ChangeScope
	for _, part := range strings.Split(s, "|") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "", "immutable":
		case "theme":
			scope |= ChangeTheme
		case "props", "instance":
			scope |= ChangeProps
		case "i18n":
			scope |= ChangeI18n
		default:
			return 0, fmt.Errorf("unknown change scope %q", part)
		}
	}
	return scope, nil
}

// Sheet is a parsed stylesheet.
type Sheet interface {
	// AddPrefix returns a copy whose selectors only match elements
	// carrying the class prefix.
	AddPrefix(prefix string) Sheet
	// Selectors lists every qualified-rule selector, nested rules included.
	Selectors() []string
	String() string
}

// Parser turns CSS text into a Sheet.
type Parser interface {
	Parse(cssText string) (Sheet, error)
}

// DefaultParser is the parser used when none is configured.
var DefaultParser Parser = DouceurParser{}
