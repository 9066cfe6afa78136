// Package dom is the minimal node tree the expansion engine operates on.
//
// Nodes are values by convention: once built they are never mutated in
// place. Structural edits go through Copy/WithChildren/WithAttr, which
// return shallow copies, so one node may safely appear in several
// branches of a rewritten tree.
package dom

import (
	"strings"
)

// Node is an element, text, fragment, or style node.
type Node interface {
	node()
}

// Attr is a single attribute.
type Attr struct {
	Name  string
	Value string
}

// Tag is an element node.
type Tag struct {
	Name        string
	Attrs       []Attr
	Children    []Node
	SelfClosing bool
}

// Text is a terminal text node.
type Text struct {
	Content string
}

// Fragment groups nodes without an enclosing element. Walk splices
// fragments into their parent's child list.
type Fragment struct {
	Children []Node
}

func (*Tag) node()      {}
func (*Text) node()     {}
func (*Fragment) node() {}

// NewTag builds an element.
func NewTag(name string, attrs []Attr, children ...Node) *Tag {
	return &Tag{Name: name, Attrs: attrs, Children: children}
}

// NewText builds a text node.
func NewText(content string) *Text {
	return &Text{Content: content}
}

// Copy returns a shallow copy with its own attribute and child slices.
func (t *Tag) Copy() *Tag {
	c := *t
	c.Attrs = append([]Attr(nil), t.Attrs...)
	c.Children = append([]Node(nil), t.Children...)
	return &c
}

// WithChildren returns a copy whose children are replaced.
func (t *Tag) WithChildren(children []Node) *Tag {
	c := *t
	c.Attrs = append([]Attr(nil), t.Attrs...)
	c.Children = children
	return &c
}

// WithAttrs returns a copy whose attributes are replaced.
func (t *Tag) WithAttrs(attrs []Attr) *Tag {
	c := *t
	c.Attrs = attrs
	c.Children = append([]Node(nil), t.Children...)
	return &c
}

// Attr returns the value of the named attribute.
func (t *Tag) Attr(name string) (string, bool) {
	for _, a := range t.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// WithAttr returns a copy with name set, keeping the attribute position
// when it already exists.
func (t *Tag) WithAttr(name, value string) *Tag {
	attrs := append([]Attr(nil), t.Attrs...)
	for i := range attrs {
		if attrs[i].Name == name {
			attrs[i].Value = value
			return t.WithAttrs(attrs)
		}
	}
	return t.WithAttrs(append(attrs, Attr{Name: name, Value: value}))
}

// WithoutAttr returns a copy without the named attribute.
func (t *Tag) WithoutAttr(name string) *Tag {
	attrs := make([]Attr, 0, len(t.Attrs))
	for _, a := range t.Attrs {
		if a.Name != name {
			attrs = append(attrs, a)
		}
	}
	return t.WithAttrs(attrs)
}

// AddClass appends class names to the class attribute, skipping ones
// already present.
func (t *Tag) AddClass(names ...string) *Tag {
	current, _ := t.Attr("class")
	fields := strings.Fields(current)
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f] = true
	}
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		fields = append(fields, n)
	}
	return t.WithAttr("class", strings.Join(fields, " "))
}

// IsCustomElement reports whether the tag name contains the structural
// separator that marks a custom element.
func (t *Tag) IsCustomElement() bool {
	return IsCustomName(t.Name)
}

// IsCustomName reports whether name is a custom element name.
func IsCustomName(name string) bool {
	return strings.Contains(name, "-")
}

// Flatten expands fragments in place of themselves.
func Flatten(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if f, ok := n.(*Fragment); ok {
			out = append(out, Flatten(f.Children)...)
			continue
		}
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
