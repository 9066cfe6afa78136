package tmpl

import (
	"fmt"
	"strings"
)

// Source is a template written as text with ${expr} interpolations.
type Source struct {
	Strings []string
	Exprs   []string
}

// Scope resolves the expressions of a compiled source.
type Scope interface {
	Resolve(expr string) (interface{}, error)
}

// ScopeFunc adapts a function to Scope.
type ScopeFunc func(expr string) (interface{}, error)

// Resolve implements Scope.
func (f ScopeFunc) Resolve(expr string) (interface{}, error) { return f(expr) }

// Parse splits src on ${...} interpolations. A backslash before the dollar
// sign keeps the sequence literal.
func Parse(src string) (Source, error) {
	out := Source{}
	var seg strings.Builder

	for i := 0; i < len(src); i++ {
		switch {
		case src[i] == '\\' && strings.HasPrefix(src[i+1:], "${"):
			seg.WriteString("${")
			i += 2
		case strings.HasPrefix(src[i:], "${"):
			end := strings.IndexByte(src[i+2:], '}')
			if end < 0 {
				return Source{}, fmt.Errorf("unterminated interpolation at offset %d", i)
			}
			expr := strings.TrimSpace(src[i+2 : i+2+end])
			if expr == "" {
				return Source{}, fmt.Errorf("empty interpolation at offset %d", i)
			}
			out.Strings = append(out.Strings, seg.String())
			out.Exprs = append(out.Exprs, expr)
			seg.Reset()
			i += 2 + end
		default:
			seg.WriteByte(src[i])
		}
	}
	out.Strings = append(out.Strings, seg.String())
	return out, nil
}

// MustParse is Parse that panics on error, for package-level templates.
func MustParse(src string) Source {
	s, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return s
}

// Execute resolves every expression against scope.
func (s Source) Execute(scope Scope) (Template, error) {
	values := make([]interface{}, len(s.Exprs))
	for i, expr := range s.Exprs {
		v, err := scope.Resolve(expr)
		if err != nil {
			return Template{}, fmt.Errorf("resolve ${%s}: %w", expr, err)
		}
		values[i] = v
	}
	return Template{Strings: append([]string(nil), s.Strings...), Values: values}, nil
}

// Compile parses src and returns a function rendering it against a scope.
func Compile(src string) (func(Scope) (Template, error), error) {
	s, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return s.Execute, nil
}
