// Package manifest loads component definitions from YAML into
// descriptors the engine can expand.
//
// A manifest lists components by tag. Markup and styles use the ${expr}
// template source form; dependencies name other tags in the same
// manifest and may form cycles.
//
//	components:
//	  - tag: x-card
//	    properties:
//	      - name: heading
//	        reflect: true
//	    markup: <h2>${heading}</h2><slot></slot>
//	    styles:
//	      - scope: theme
//	        css: "h2 { color: ${theme.colors.primary}; }"
//	    dependencies: [x-badge]
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/prerender/internal/component"
	"github.com/conneroisu/prerender/internal/dom"
	prerrors "github.com/conneroisu/prerender/internal/errors"
	"github.com/conneroisu/prerender/internal/props"
	"github.com/conneroisu/prerender/internal/session"
	"github.com/conneroisu/prerender/internal/stylesheet"
)

// File is the YAML document.
type File struct {
	Components []Definition `yaml:"components"`
}

// Definition is one component entry.
type Definition struct {
	Tag          string     `yaml:"tag"`
	Description  string     `yaml:"description,omitempty"`
	Properties   []Property `yaml:"properties,omitempty"`
	Markup       string     `yaml:"markup"`
	Styles       []Style    `yaml:"styles,omitempty"`
	Dependencies []string   `yaml:"dependencies,omitempty"`
}

// Property declares one component property.
type Property struct {
	Name      string      `yaml:"name"`
	Attribute string      `yaml:"attribute,omitempty"`
	Reflect   bool        `yaml:"reflect,omitempty"`
	Private   bool        `yaml:"private,omitempty"`
	Default   interface{} `yaml:"default,omitempty"`
}

// Style is one stylesheet template.
type Style struct {
	Scope string `yaml:"scope,omitempty"`
	CSS   string `yaml:"css"`
}

// Manifest is a loaded set of descriptors.
type Manifest struct {
	defs  []Definition
	byTag map[string]*component.Descriptor
}

// Summary describes a component for listings.
type Summary struct {
	Tag          string   `json:"tag" yaml:"tag"`
	DisplayName  string   `json:"display_name" yaml:"display_name"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Properties   []string `json:"properties,omitempty" yaml:"properties,omitempty"`
	Styles       []string `json:"styles,omitempty" yaml:"styles,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Load reads and builds a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, prerrors.WrapConfig(err, "read manifest")
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse builds a manifest from YAML. Unknown fields are rejected.
func Parse(data []byte) (*Manifest, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, prerrors.WrapConfig(err, "parse manifest")
	}
	return Build(file)
}

// Build turns definitions into descriptors, wiring dependencies by tag.
func Build(file File) (*Manifest, error) {
	m := &Manifest{
		defs:  file.Components,
		byTag: make(map[string]*component.Descriptor, len(file.Components)),
	}

	// Allocate every descriptor first so dependencies can point anywhere.
	for _, def := range file.Components {
		if !dom.IsCustomName(def.Tag) {
			return nil, prerrors.ErrInvalidTagName(def.Tag)
		}
		if _, dup := m.byTag[def.Tag]; dup {
			return nil, configError(def.Tag, "duplicate component definition")
		}
		m.byTag[def.Tag] = &component.Descriptor{TagName: def.Tag}
	}

	for _, def := range file.Components {
		if err := m.fill(m.byTag[def.Tag], def); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Manifest) fill(desc *component.Descriptor, def Definition) error {
	markup, err := component.FromSource(def.Markup)
	if err != nil {
		return configError(def.Tag, "markup: "+err.Error())
	}
	desc.Markup = markup

	for i, s := range def.Styles {
		scope, err := stylesheet.ParseChangeScope(s.Scope)
		if err != nil {
			return configError(def.Tag, fmt.Sprintf("style %d: %v", i, err))
		}
		render, err := component.FromSource(s.CSS)
		if err != nil {
			return configError(def.Tag, fmt.Sprintf("style %d: %v", i, err))
		}
		desc.Styles = append(desc.Styles, component.Style{Scope: scope, Render: render})
	}

	for _, p := range def.Properties {
		if p.Name == "" {
			return configError(def.Tag, "property without a name")
		}
		desc.Properties = append(desc.Properties, props.Spec{
			Name:      p.Name,
			Attribute: p.Attribute,
			Reflect:   p.Reflect,
			Private:   p.Private,
			Default:   props.Of(p.Default),
		})
	}

	for _, dep := range def.Dependencies {
		target, ok := m.byTag[dep]
		if !ok {
			return configError(def.Tag, fmt.Sprintf("unknown dependency %q", dep))
		}
		desc.Dependencies = append(desc.Dependencies, target)
	}
	return nil
}

func configError(tag, msg string) error {
	return prerrors.NewConfigError(prerrors.ErrCodeConfigInvalid, msg).WithComponent(tag)
}

// Lookup returns the descriptor for tag.
func (m *Manifest) Lookup(tag string) (*component.Descriptor, bool) {
	d, ok := m.byTag[tag]
	return d, ok
}

// Tags returns the defined tags in manifest order.
func (m *Manifest) Tags() []string {
	tags := make([]string, len(m.defs))
	for i, def := range m.defs {
		tags[i] = def.Tag
	}
	return tags
}

// Register adds every descriptor to sess.
func (m *Manifest) Register(sess *session.Session) error {
	for _, def := range m.defs {
		if err := sess.Register(m.byTag[def.Tag]); err != nil {
			return err
		}
	}
	return nil
}

// Summaries describes each component, sorted by tag.
func (m *Manifest) Summaries() []Summary {
	title := cases.Title(language.English)
	out := make([]Summary, 0, len(m.defs))
	for _, def := range m.defs {
		s := Summary{
			Tag:          def.Tag,
			DisplayName:  title.String(strings.ReplaceAll(def.Tag, "-", " ")),
			Description:  def.Description,
			Dependencies: def.Dependencies,
		}
		for _, p := range m.byTag[def.Tag].Properties {
			s.Properties = append(s.Properties, p.Name)
		}
		for _, st := range m.byTag[def.Tag].Styles {
			s.Styles = append(s.Styles, st.Scope.String())
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}
