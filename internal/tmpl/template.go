// Package tmpl holds the (segments, values) template representation shared
// by markup and stylesheet templates, the class-name composition rule, and
// a small ${expr} source form used by component manifests.
package tmpl

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/conneroisu/prerender/internal/props"
)

// Template is a template result: literal segments interleaved with
// interpolated values. len(Strings) is always len(Values)+1.
type Template struct {
	Strings []string
	Values  []interface{}
}

// New builds a template. Missing trailing segments are filled with empty
// strings so the segment/value invariant holds.
func New(strings []string, values ...interface{}) Template {
	segs := append([]string(nil), strings...)
	for len(segs) < len(values)+1 {
		segs = append(segs, "")
	}
	return Template{Strings: segs[:len(values)+1], Values: values}
}

// Lit builds a template without interpolations.
func Lit(s string) Template {
	return Template{Strings: []string{s}}
}

// Build interleaves literal strings and values: every even argument must
// be a string literal, every odd argument a value.
//
//	tmpl.Build("<p class=\"", cls, "\">", name, "</p>")
func Build(parts ...interface{}) Template {
	t := Template{Strings: []string{""}}
	for i, p := range parts {
		if i%2 == 0 {
			s, ok := p.(string)
			if !ok {
				panic(fmt.Sprintf("tmpl.Build: argument %d must be a string literal, got %T", i, p))
			}
			t.Strings[len(t.Strings)-1] += s
			continue
		}
		t.Values = append(t.Values, p)
		t.Strings = append(t.Strings, "")
	}
	return t
}

// IsZero reports whether the template has no content at all.
func (t Template) IsZero() bool {
	return len(t.Values) == 0 && strings.Join(t.Strings, "") == ""
}

// Join is the direct string join of segments and the plain text of every
// value. Nested templates are joined recursively.
func (t Template) Join() string {
	var sb strings.Builder
	for i, s := range t.Strings {
		sb.WriteString(s)
		if i < len(t.Values) {
			sb.WriteString(TextOf(t.Values[i]))
		}
	}
	return sb.String()
}

// String implements fmt.Stringer.
func (t Template) String() string {
	return t.Join()
}

// TextOf is the plain string form of an interpolated value. Slices are
// concatenated, templates joined.
func TextOf(v interface{}) string {
	switch x := v.(type) {
	case Template:
		return x.Join()
	case *Template:
		if x == nil {
			return ""
		}
		return x.Join()
	case []Template:
		var sb strings.Builder
		for _, item := range x {
			sb.WriteString(item.Join())
		}
		return sb.String()
	case nil:
		return ""
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		var sb strings.Builder
		for i := 0; i < rv.Len(); i++ {
			sb.WriteString(TextOf(rv.Index(i).Interface()))
		}
		return sb.String()
	}
	return props.Of(v).Text()
}

// ClassNames composes a class attribute: strings and numbers pass
// through, slices are flattened, and maps contribute their keys whose
// values are truthy, in sorted key order. Falsy and empty entries are
// skipped.
func ClassNames(values ...interface{}) string {
	var out []string
	for _, v := range values {
		out = appendClasses(out, v)
	}
	return strings.Join(out, " ")
}

func appendClasses(out []string, v interface{}) []string {
	switch x := v.(type) {
	case nil:
		return out
	case string:
		if s := strings.TrimSpace(x); s != "" {
			out = append(out, s)
		}
		return out
	case props.Value:
		if x.Kind() == props.KindRef {
			return appendClasses(out, x.Interface())
		}
		if x.Truthy() {
			out = append(out, x.Text())
		}
		return out
	case Template:
		return appendClasses(out, x.Join())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			out = appendClasses(out, rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return out
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			if props.Of(rv.MapIndex(k).Interface()).Truthy() {
				keys = append(keys, k.String())
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = appendClasses(out, k)
		}
		return out
	case reflect.Func:
		return out
	}

	if val := props.Of(v); val.Truthy() {
		out = append(out, val.Text())
	}
	return out
}
