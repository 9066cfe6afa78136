// Package component defines the static description of a custom element
// and the per-expansion instance its templates render against.
package component

import (
	"fmt"

	prerrors "github.com/conneroisu/prerender/internal/errors"
	"github.com/conneroisu/prerender/internal/props"
	"github.com/conneroisu/prerender/internal/stylesheet"
	"github.com/conneroisu/prerender/internal/tmpl"
)

// RenderFunc renders a template against an instance.
type RenderFunc func(inst *Instance) (tmpl.Template, error)

// Style is one stylesheet template of a component.
type Style struct {
	// Scope declares what the sheet depends on. Immutable and theme-only
	// sheets are shared by every instance of the type.
	Scope  stylesheet.ChangeScope
	Render RenderFunc
}

// Descriptor is the static definition of a component. Descriptors are
// compared by pointer identity.
type Descriptor struct {
	// TagName is the custom element name. Empty descriptors get a
	// session-unique anonymous name when expanded.
	TagName      string
	Markup       RenderFunc
	Styles       []Style
	Dependencies []*Descriptor
	Properties   props.Schema
}

// Validate checks that the descriptor can be expanded.
func (d *Descriptor) Validate() error {
	if d == nil {
		return prerrors.ErrInvalidDescriptor("descriptor is nil")
	}
	if d.Markup == nil {
		return prerrors.ErrInvalidDescriptor(fmt.Sprintf("descriptor %q has no markup template", d.Name()))
	}
	for i, s := range d.Styles {
		if s.Render == nil {
			return prerrors.ErrInvalidDescriptor(fmt.Sprintf("descriptor %q: style %d has no template", d.Name(), i))
		}
	}
	return nil
}

// Name returns the tag name, or a placeholder for anonymous descriptors.
func (d *Descriptor) Name() string {
	if d.TagName == "" {
		return "<anonymous>"
	}
	return d.TagName
}

// Static wraps a template that does not depend on the instance.
func Static(t tmpl.Template) RenderFunc {
	return func(*Instance) (tmpl.Template, error) { return t, nil }
}

// StaticCSS wraps fixed CSS text.
func StaticCSS(css string) RenderFunc {
	return Static(tmpl.Lit(css))
}

// FromSource compiles ${expr} source into a render function.
func FromSource(src string) (RenderFunc, error) {
	render, err := tmpl.Compile(src)
	if err != nil {
		return nil, err
	}
	return func(inst *Instance) (tmpl.Template, error) {
		return render(inst)
	}, nil
}
