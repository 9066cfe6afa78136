package expand

import (
	"strings"

	"github.com/conneroisu/prerender/internal/component"
	"github.com/conneroisu/prerender/internal/dom"
	"github.com/conneroisu/prerender/internal/marker"
	"github.com/conneroisu/prerender/internal/props"
)

// decodeAttrs turns the attributes of a nested custom element into the
// inbound bag of its expansion. Markers decode to the values they were
// written from, and parent references resolve against the instance whose
// template produced them.
func (x *expansion) decodeAttrs(tag *dom.Tag) *props.Bag {
	bag := &props.Bag{}
	for _, a := range tag.Attrs {
		name := a.Name
		var v props.Value

		switch {
		case a.Name == "class":
			v = props.String(x.table.ResolveClass(a.Value))
		default:
			v = x.decodeValue(a.Value)
		}

		switch {
		case strings.HasPrefix(name, marker.TogglePrefix):
			name = strings.TrimPrefix(name, marker.TogglePrefix)
			if x.table.HasMarkers(a.Value) {
				v = props.Bool(v.Truthy())
			} else {
				v = props.Bool(true)
			}
		case strings.HasPrefix(name, marker.PropertyPrefix):
			name = strings.TrimPrefix(name, marker.PropertyPrefix)
		}
		if name == "" {
			continue
		}
		bag.Set(name, v)
	}
	return bag
}

func (x *expansion) decodeValue(raw string) props.Value {
	d := x.table.Decode(raw)
	if !d.Marked {
		return props.String(raw)
	}
	v := props.Of(d.Value)
	if ref, ok := d.Value.(props.ParentRef); ok {
		if owner, isInst := d.Owner.(*component.Instance); isInst {
			v = owner.Get(ref.Name)
		} else {
			v = props.Null
		}
	}
	return v
}

// finalizeAttrs resolves the attributes of an element that is not
// expanded: plain elements and unregistered custom elements. Listener and
// property bindings are dropped, toggles keep a bare attribute when
// truthy, and remaining markers become text.
func (x *expansion) finalizeAttrs(tag *dom.Tag) *dom.Tag {
	changed := false
	attrs := make([]dom.Attr, 0, len(tag.Attrs))

	for _, a := range tag.Attrs {
		marked := x.table.HasMarkers(a.Value)
		switch {
		case strings.HasPrefix(a.Name, marker.ListenerPrefix), strings.HasPrefix(a.Name, marker.PropertyPrefix):
			changed = true
			continue
		case strings.HasPrefix(a.Name, marker.TogglePrefix):
			changed = true
			name := strings.TrimPrefix(a.Name, marker.TogglePrefix)
			if name == "" {
				continue
			}
			if !marked || x.decodeValue(a.Value).Truthy() {
				attrs = append(attrs, dom.Attr{Name: name})
			}
			continue
		case !marked:
			attrs = append(attrs, a)
			continue
		}

		changed = true
		if a.Name == "class" {
			attrs = append(attrs, dom.Attr{Name: a.Name, Value: x.table.ResolveClass(a.Value)})
			continue
		}
		if d := x.table.Decode(a.Value); !d.Whole {
			attrs = append(attrs, dom.Attr{Name: a.Name, Value: d.Value.(string)})
			continue
		}
		if text, keep := x.decodeValue(a.Value).AttrText(); keep {
			attrs = append(attrs, dom.Attr{Name: a.Name, Value: text})
		}
	}

	if !changed {
		return tag
	}
	return tag.WithAttrs(attrs)
}
