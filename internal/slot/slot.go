// Package slot distributes the light children of a custom element into
// the slot receivers of its expanded markup.
package slot

import (
	"github.com/conneroisu/prerender/internal/dom"
)

// TagName is the receiver element name.
const TagName = "slot"

// Options tune projection.
type Options struct {
	// Fallback keeps a receiver's own children when no light content
	// matches it. By default unmatched receivers render empty.
	Fallback bool
}

// Slottables is light content grouped by target receiver.
type Slottables struct {
	Named   map[string]dom.Node
	Unnamed []dom.Node
}

// Classify groups top-level light nodes. A node carrying a slot attribute
// targets that name (the first per name wins); everything else goes to
// the unnamed receiver, in document order.
func Classify(light []dom.Node) Slottables {
	s := Slottables{Named: make(map[string]dom.Node)}
	for _, n := range dom.Flatten(light) {
		if tag, ok := n.(*dom.Tag); ok {
			if name, _ := tag.Attr("slot"); name != "" {
				if _, taken := s.Named[name]; !taken {
					s.Named[name] = tag
				}
				continue
			}
		}
		s.Unnamed = append(s.Unnamed, n)
	}
	return s
}

// IsReceiver reports whether n is a slot receiver, returning its name.
func IsReceiver(n dom.Node) (name string, ok bool) {
	tag, isTag := n.(*dom.Tag)
	if !isTag || tag.Name != TagName {
		return "", false
	}
	name, _ = tag.Attr("name")
	return name, true
}

// HasUnnamedReceiver reports whether any top-level node is an unnamed
// receiver.
func HasUnnamedReceiver(nodes []dom.Node) bool {
	for _, n := range dom.Flatten(nodes) {
		if name, ok := IsReceiver(n); ok && name == "" {
			return true
		}
	}
	return false
}

// Project replaces the receivers found in shadow with the matching light
// content. Only the first unnamed receiver and the first receiver per name
// take content; the walk does not descend into a receiver.
func Project(shadow, light []dom.Node, opts Options) []dom.Node {
	slottables := Classify(light)
	filled := make(map[string]bool)

	return dom.Walk(shadow, func(n dom.Node) *dom.Replacement {
		name, ok := IsReceiver(n)
		if !ok {
			return nil
		}

		var content []dom.Node
		if !filled[name] {
			filled[name] = true
			if name == "" {
				content = slottables.Unnamed
			} else if node, found := slottables.Named[name]; found {
				content = []dom.Node{node}
			}
		}

		if len(content) == 0 && opts.Fallback {
			content = n.(*dom.Tag).Children
		}
		return &dom.Replacement{Node: &dom.Fragment{Children: content}, Stop: true}
	})
}
