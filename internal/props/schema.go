package props

import (
	"strings"
	"unicode"
)

// Spec declares one component property.
type Spec struct {
	// Name is the property name used by templates.
	Name string
	// Attribute overrides the reflected attribute name (default: kebab-case of Name).
	Attribute string
	// Reflect writes the property back onto the host element as an attribute.
	Reflect bool
	// Private properties are never exposed on the host element.
	Private bool
	// Default applies when the property is absent from the inbound bag.
	Default Value
}

// AttributeName returns the attribute a property reflects to.
func (s Spec) AttributeName() string {
	if s.Attribute != "" {
		return s.Attribute
	}
	return KebabCase(s.Name)
}

// Schema is the ordered list of properties a component declares.
type Schema []Spec

// Find resolves an inbound attribute or property name to its declaration.
func (s Schema) Find(name string) (Spec, bool) {
	for _, spec := range s {
		if strings.EqualFold(spec.Name, name) || strings.EqualFold(spec.AttributeName(), name) {
			return spec, true
		}
	}
	return Spec{}, false
}

// Partition is the result of splitting a bag against a schema.
type Partition struct {
	// Attributes are undeclared entries, passed through as plain attributes.
	Attributes *Bag
	// Public holds reflected properties keyed by attribute name.
	Public *Bag
	// Properties holds every declared property keyed by property name,
	// including private and non-reflected ones.
	Properties *Bag
}

// Split classifies a merged attribute/property bag. Declared properties
// that are absent receive their default.
func (s Schema) Split(in *Bag) Partition {
	p := Partition{Attributes: &Bag{}, Public: &Bag{}, Properties: &Bag{}}

	for _, e := range in.Entries() {
		spec, ok := s.Find(e.Name)
		if !ok {
			p.Attributes.Set(e.Name, e.Value)
			continue
		}
		p.Properties.Set(spec.Name, e.Value)
	}

	for _, spec := range s {
		v, ok := p.Properties.Get(spec.Name)
		if !ok {
			if spec.Default.IsNull() {
				continue
			}
			v = spec.Default
			p.Properties.Set(spec.Name, v)
		}
		if spec.Reflect && !spec.Private {
			p.Public.Set(spec.AttributeName(), v)
		}
	}
	return p
}

// KebabCase converts camelCase property names to attribute names.
func KebabCase(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
