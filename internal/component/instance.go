package component

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/conneroisu/prerender/internal/props"
)

// Environment is what an instance reads from its document session.
type Environment interface {
	Theme() interface{}
	Message(key string, args ...interface{}) string
}

// Instance is the ephemeral context one expansion renders against.
type Instance struct {
	desc      *Descriptor
	tagName   string
	inbound   *props.Bag
	partition props.Partition
	env       Environment
	exposed   *props.Bag
}

// NewInstance builds the instance for one expansion of desc. The inbound
// bag is split against the descriptor's property schema.
func NewInstance(desc *Descriptor, tagName string, inbound *props.Bag, env Environment) *Instance {
	if inbound == nil {
		inbound = &props.Bag{}
	}
	return &Instance{
		desc:      desc,
		tagName:   tagName,
		inbound:   inbound,
		partition: desc.Properties.Split(inbound),
		env:       env,
		exposed:   &props.Bag{},
	}
}

// TagName is the resolved element name, anonymous names included.
func (i *Instance) TagName() string { return i.tagName }

// Descriptor returns the component this instance expands.
func (i *Instance) Descriptor() *Descriptor { return i.desc }

// Partition returns the inbound bag split into passthrough attributes,
// public properties, and all declared properties.
func (i *Instance) Partition() props.Partition { return i.partition }

// Inbound returns the merged attribute/property bag as received.
func (i *Instance) Inbound() *props.Bag { return i.inbound }

// Get returns a declared property, falling back to a raw inbound entry.
func (i *Instance) Get(name string) props.Value {
	if spec, ok := i.desc.Properties.Find(name); ok {
		v, _ := i.partition.Properties.Get(spec.Name)
		return v
	}
	v, _ := i.inbound.Lookup(name)
	return v
}

// Has reports whether name was received or defaulted.
func (i *Instance) Has(name string) bool {
	if spec, ok := i.desc.Properties.Find(name); ok {
		_, found := i.partition.Properties.Get(spec.Name)
		return found
	}
	_, ok := i.inbound.Lookup(name)
	return ok
}

// String returns the text form of a property.
func (i *Instance) String(name string) string {
	return i.Get(name).Text()
}

// Bool returns the truthiness of a property.
func (i *Instance) Bool(name string) bool {
	return i.Get(name).Truthy()
}

// Attr returns the raw inbound value for name, ignoring the schema.
func (i *Instance) Attr(name string) props.Value {
	v, _ := i.inbound.Lookup(name)
	return v
}

// Decode copies the instance's attributes and properties into out, a
// pointer to a struct or map. Fields are matched case-insensitively or by
// their `prop` tag, and strings are converted to numbers and booleans.
func (i *Instance) Decode(out interface{}) error {
	input := i.partition.Attributes.Map()
	for k, v := range i.partition.Properties.Map() {
		input[k] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "prop",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("decode properties of %s: %w", i.tagName, err)
	}
	return nil
}

// Theme returns the session theme.
func (i *Instance) Theme() interface{} {
	if i.env == nil {
		return nil
	}
	return i.env.Theme()
}

// ThemeValue looks up a dotted path in the session theme. Maps are
// indexed by key and structs by field name.
func (i *Instance) ThemeValue(path string) interface{} {
	return lookupPath(i.Theme(), path)
}

// Msg resolves a localized message through the session.
func (i *Instance) Msg(key string, args ...interface{}) string {
	if i.env == nil {
		return key
	}
	return i.env.Message(key, args...)
}

// Expose publishes a value as an attribute of the host element.
func (i *Instance) Expose(name string, v interface{}) {
	i.exposed.Set(name, props.Of(v))
}

// Exposed returns the values published with Expose.
func (i *Instance) Exposed() *props.Bag { return i.exposed }

// Ref refers to one of this instance's properties from a nested element's
// attribute. It resolves to the property's value when the nested element
// is expanded.
func (i *Instance) Ref(name string) props.ParentRef {
	return props.ParentRef{Name: name}
}

// Resolve evaluates a template source expression:
//
//	name          property or attribute
//	attr.name     raw inbound attribute
//	theme.a.b     theme lookup
//	msg.key       localized message
//	ref.name      parent reference for a nested element
func (i *Instance) Resolve(expr string) (interface{}, error) {
	head, rest, _ := strings.Cut(expr, ".")
	switch head {
	case "theme":
		return i.ThemeValue(rest), nil
	case "msg":
		if rest == "" {
			return nil, fmt.Errorf("missing message key in %q", expr)
		}
		return i.Msg(rest), nil
	case "attr":
		return i.Attr(rest).Interface(), nil
	case "ref":
		if rest == "" {
			return nil, fmt.Errorf("missing property name in %q", expr)
		}
		return i.Ref(rest), nil
	}
	v := i.Get(head)
	if rest == "" {
		return v.Interface(), nil
	}
	return lookupPath(v.Interface(), rest), nil
}

func lookupPath(root interface{}, path string) interface{} {
	cur := root
	if path == "" {
		return cur
	}
	for _, key := range strings.Split(path, ".") {
		if cur == nil {
			return nil
		}
		rv := reflect.ValueOf(cur)
		for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
			if rv.IsNil() {
				return nil
			}
			rv = rv.Elem()
		}
		switch rv.Kind() {
		case reflect.Map:
			if rv.Type().Key().Kind() != reflect.String {
				return nil
			}
			v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
			if !v.IsValid() {
				return nil
			}
			cur = v.Interface()
		case reflect.Struct:
			f := rv.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, key) })
			if !f.IsValid() || !f.CanInterface() {
				return nil
			}
			cur = f.Interface()
		default:
			return nil
		}
	}
	return cur
}
