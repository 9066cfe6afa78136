// Package props models the attribute/property bag handed to a component
// expansion. Values are a tagged union so that the marker codec can decide,
// per kind, how a value is written into markup.
package props

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindRef
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Value is one entry of an attribute/property bag. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	ref  interface{}
}

// Null is the empty value.
var Null = Value{}

// String builds a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number builds a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool builds a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Ref wraps an arbitrary host value (functions, nested templates, objects).
func Ref(v interface{}) Value {
	if v == nil {
		return Null
	}
	return Value{kind: KindRef, ref: v}
}

// Of converts a Go value into the matching variant.
func Of(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Null
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Number(float64(x))
	case int8:
		return Number(float64(x))
	case int16:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint8:
		return Number(float64(x))
	case uint16:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case float32:
		return Number(float64(x))
	case float64:
		return Number(x)
	default:
		return Ref(v)
	}
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v holds no value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the numeric payload and whether v is a number.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// Boolean returns the bool payload and whether v is a bool.
func (v Value) Boolean() (bool, bool) { return v.b, v.kind == KindBool }

// Interface returns the underlying Go value.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindRef:
		return v.ref
	default:
		return nil
	}
}

// Truthy applies the usual scripting truthiness rules.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindBool:
		return v.b
	case KindRef:
		rv := reflect.ValueOf(v.ref)
		switch rv.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
			return !rv.IsNil()
		}
		return true
	default:
		return false
	}
}

// Text returns the plain string form of v. Functions render as empty text.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return FormatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindRef:
		if s, ok := v.ref.(fmt.Stringer); ok {
			return s.String()
		}
		if reflect.TypeOf(v.ref).Kind() == reflect.Func {
			return ""
		}
		return fmt.Sprint(v.ref)
	default:
		return ""
	}
}

// AttrText returns the attribute form of v and whether the attribute
// should be written at all. true renders as a bare attribute, false,
// null, and functions drop it.
func (v Value) AttrText() (string, bool) {
	switch v.kind {
	case KindNull:
		return "", false
	case KindBool:
		return "", v.b
	case KindRef:
		if reflect.TypeOf(v.ref).Kind() == reflect.Func {
			return "", false
		}
		return v.Text(), true
	default:
		return v.Text(), true
	}
}

// Equal compares two values. Refs compare by identity where possible.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindRef:
		a, b := reflect.ValueOf(v.ref), reflect.ValueOf(o.ref)
		if a.Type() != b.Type() {
			return false
		}
		if a.Type().Comparable() {
			return v.ref == o.ref
		}
		switch a.Kind() {
		case reflect.Map, reflect.Slice, reflect.Func:
			return a.Pointer() == b.Pointer()
		}
		return reflect.DeepEqual(v.ref, o.ref)
	default:
		return true
	}
}

// GoString implements fmt.GoStringer for debugging.
func (v Value) GoString() string {
	return fmt.Sprintf("props.Value{%s:%q}", v.kind, v.Text())
}

// FormatNumber renders integers without a fractional part.
func FormatNumber(n float64) string {
	if n == math.Trunc(n) && !math.IsInf(n, 0) && math.Abs(n) < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// ParentRef points at a property of the instance whose template produced
// it. It resolves when it reaches a nested element's inbound props.
type ParentRef struct {
	Name string
}

// String implements fmt.Stringer.
func (r ParentRef) String() string { return "ref:" + r.Name }
