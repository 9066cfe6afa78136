package scoping

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/prerender/internal/dom"
	prerrors "github.com/conneroisu/prerender/internal/errors"
	"github.com/conneroisu/prerender/internal/stylesheet"
)

type failingParser struct{}

func (failingParser) Parse(string) (stylesheet.Sheet, error) {
	return nil, errors.New("unexpected token")
}

func TestNewIDs(t *testing.T) {
	ids := NewIDs("x-card", 3)
	assert.Equal(t, "css-x-card", ids.Type)
	assert.Equal(t, "css-x-card-3", ids.Instance)
	assert.Equal(t, []string{"css-x-card", "css-x-card-3"}, ids.Classes())

	assert.Equal(t, ids.Type, ids.For(stylesheet.ChangeImmutable))
	assert.Equal(t, ids.Type, ids.For(stylesheet.ChangeTheme))
	assert.Equal(t, ids.Instance, ids.For(stylesheet.ChangeProps))
	assert.Equal(t, ids.Instance, ids.For(stylesheet.ChangeTheme|stylesheet.ChangeI18n))
}

func TestScopeSheets(t *testing.T) {
	sheets := []Rendered{
		{Scope: stylesheet.ChangeProps, Text: "p { color: blue; }"},
		{Scope: stylesheet.ChangeImmutable, Text: "span { color: red; }"},
		{Scope: stylesheet.ChangeTheme, Text: "   "},
	}
	ids := NewIDs("x-a", 0)

	res, err := ScopeSheets("x-a", sheets, ids, true, nil)
	require.NoError(t, err)
	require.Len(t, res.Type, 1)
	require.Len(t, res.Instance, 1)
	assert.Contains(t, res.Type[0].Text.Content, "span.css-x-a ")
	assert.Contains(t, res.Instance[0].Text.Content, "p.css-x-a-0")
	assert.Equal(t, stylesheet.ChangeProps, res.Instance[0].Scope)

	nodes := res.Nodes()
	require.Len(t, nodes, 2)
	assert.Same(t, res.Type[0], nodes[0])

	res, err = ScopeSheets("x-a", sheets, ids, false, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Type)
	assert.Len(t, res.Instance, 1)
}

func TestScopeSheetsParseError(t *testing.T) {
	sheets := []Rendered{{Scope: stylesheet.ChangeImmutable, Text: "p {"}}

	_, err := ScopeSheets("x-bad", sheets, NewIDs("x-bad", 1), false, failingParser{})
	require.Error(t, err)
	assert.True(t, prerrors.IsStylesheetError(err))

	pe, ok := prerrors.AsPrerenderError(err)
	require.True(t, ok)
	assert.Equal(t, "p {", pe.Context["css"])
	assert.Equal(t, "x-bad", pe.Component)

	truncated := []Rendered{{Scope: stylesheet.ChangeProps, Text: "p { color: red"}}
	_, err = ScopeSheets("x-bad", truncated, NewIDs("x-bad", 1), true, nil)
	require.Error(t, err)
	assert.True(t, prerrors.IsStylesheetError(err))
}

func TestInjectClassesStopsAtBoundary(t *testing.T) {
	nested := dom.NewTag("x-inner", []dom.Attr{{Name: "class", Value: "css-x-inner css-x-inner-1"}},
		dom.NewTag("b", nil, dom.NewText("inside")))
	nodes := []dom.Node{
		dom.NewTag("div", nil, dom.NewTag("span", nil), nested),
		dom.NewText("text"),
	}

	out := InjectClasses(nodes, []string{"css-x", "css-x-0"}, func(tag *dom.Tag) bool {
		return tag.Name == "x-inner"
	})

	assert.Equal(t,
		`<div class="css-x css-x-0"><span class="css-x css-x-0"></span>`+
			`<x-inner class="css-x-inner css-x-inner-1 css-x css-x-0"><b>inside</b></x-inner></div>text`,
		dom.String(out...))

	// input forest is untouched
	assert.Equal(t, `<div><span></span><x-inner class="css-x-inner css-x-inner-1"><b>inside</b></x-inner></div>text`,
		dom.String(nodes...))
}
