// Package scoping turns a component's rendered stylesheets into style
// tags whose selectors only match that component's markup, and adds the
// matching classes to the markup.
package scoping

import (
	"strconv"
	"strings"

	"github.com/conneroisu/prerender/internal/dom"
	prerrors "github.com/conneroisu/prerender/internal/errors"
	"github.com/conneroisu/prerender/internal/stylesheet"
)

// IDs are the two scoping class names of one expansion.
type IDs struct {
	// Type is shared by every instance of a component type.
	Type string
	// Instance is unique to one expansion within a session.
	Instance string
}

// NewIDs computes the scoping ids for the n-th instance of tagName.
func NewIDs(tagName string, n int) IDs {
	typeID := "css-" + tagName
	return IDs{Type: typeID, Instance: typeID + "-" + strconv.Itoa(n)}
}

// Classes returns the ids in class attribute order.
func (ids IDs) Classes() []string {
	return []string{ids.Type, ids.Instance}
}

// For picks the id a sheet with the given change scope is prefixed with.
func (ids IDs) For(scope stylesheet.ChangeScope) string {
	if IsTypeScoped(scope) {
		return ids.Type
	}
	return ids.Instance
}

// IsTypeScoped reports whether a sheet is rendered once per component
// type rather than once per instance.
func IsTypeScoped(scope stylesheet.ChangeScope) bool {
	return scope.TypeScoped()
}

// Rendered is the text of one stylesheet template after rendering.
type Rendered struct {
	Scope stylesheet.ChangeScope
	Text  string
}

// Result holds the scoped style tags of one expansion in emission order.
type Result struct {
	Type     []*dom.StyleTag
	Instance []*dom.StyleTag
}

// Nodes returns type-scoped tags followed by instance-scoped tags.
func (r Result) Nodes() []dom.Node {
	out := make([]dom.Node, 0, len(r.Type)+len(r.Instance))
	for _, t := range r.Type {
		out = append(out, t)
	}
	for _, t := range r.Instance {
		out = append(out, t)
	}
	return out
}

// ScopeSheets parses every rendered sheet and prefixes its selectors with
// the id matching its scope. Type-scoped sheets are skipped unless
// includeType is set; they are still parsed so that a broken sheet fails
// every expansion, not only the first.
func ScopeSheets(component string, sheets []Rendered, ids IDs, includeType bool, parser stylesheet.Parser) (Result, error) {
	var res Result
	for i, s := range sheets {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		text := dom.NewStyleText(s.Text, s.Scope, parser)
		if _, err := text.Sheet(); err != nil {
			return Result{}, prerrors.NewStylesheetError(component, i, s.Text, err)
		}

		typeScoped := IsTypeScoped(s.Scope)
		if typeScoped && !includeType {
			continue
		}
		scoped, err := text.AddPrefix(ids.For(s.Scope))
		if err != nil {
			return Result{}, prerrors.NewStylesheetError(component, i, s.Text, err)
		}
		tag := dom.NewStyleTag(scoped)
		if typeScoped {
			res.Type = append(res.Type, tag)
		} else {
			res.Instance = append(res.Instance, tag)
		}
	}
	return res, nil
}

// InjectClasses appends classes to every element of the forest. Elements
// for which boundary returns true receive the classes but are not
// descended into: their subtree belongs to another component.
func InjectClasses(nodes []dom.Node, classes []string, boundary func(*dom.Tag) bool) []dom.Node {
	if len(classes) == 0 {
		return nodes
	}
	return dom.Walk(nodes, func(n dom.Node) *dom.Replacement {
		tag, ok := n.(*dom.Tag)
		if !ok {
			return nil
		}
		stop := boundary != nil && boundary(tag)
		return &dom.Replacement{Node: tag.AddClass(classes...), Stop: stop}
	})
}
