package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/prerender/internal/component"
	prerrors "github.com/conneroisu/prerender/internal/errors"
	"github.com/conneroisu/prerender/internal/expand"
	"github.com/conneroisu/prerender/internal/stylesheet"
	"github.com/conneroisu/prerender/internal/tmpl"
)

var _ expand.Observer = (*Collector)(nil)

func textfile(t *testing.T, c *Collector) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prerender.prom")
	require.NoError(t, c.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCollectorObservesEngine(t *testing.T) {
	inner := &component.Descriptor{
		TagName: "x-inner",
		Markup:  component.Static(tmpl.Lit("<i>in</i>")),
		Styles:  []component.Style{{Scope: stylesheet.ChangeImmutable, Render: component.StaticCSS("i { color: red; }")}},
	}
	outer := &component.Descriptor{
		TagName:      "x-outer",
		Markup:       component.Static(tmpl.Lit("<x-inner></x-inner><x-inner></x-inner>")),
		Dependencies: []*component.Descriptor{inner},
	}

	c := New()
	engine := expand.New(expand.WithObserver(c))
	_, err := engine.RenderElement(context.Background(), outer, expand.Request{})
	require.NoError(t, err)

	out := textfile(t, c)
	assert.Contains(t, out, `prerender_element_expansions_total{tag="x-outer"} 1`)
	assert.Contains(t, out, `prerender_element_expansions_total{tag="x-inner"} 2`)
	assert.Contains(t, out, `prerender_type_stylesheets_total{tag="x-inner"} 1`)
	assert.Contains(t, out, `prerender_renders_total{outcome="ok",root="x-outer"} 1`)
	assert.Contains(t, out, `prerender_expansion_depth_count 3`)
	assert.Contains(t, out, `prerender_render_duration_seconds_count{root="x-outer"} 1`)
}

func TestRenderOutcomes(t *testing.T) {
	c := New()
	c.RenderCompleted("x-a", time.Millisecond, nil)
	c.RenderCompleted("x-a", time.Millisecond, prerrors.NewRenderError("x-a", errors.New("boom")))
	c.RenderCompleted("x-a", time.Millisecond, errors.New("plain"))

	out := textfile(t, c)
	assert.Contains(t, out, `prerender_renders_total{outcome="ok",root="x-a"} 1`)
	assert.Contains(t, out, `prerender_renders_total{outcome="render",root="x-a"} 1`)
	assert.Contains(t, out, `prerender_renders_total{outcome="error",root="x-a"} 1`)
}

func TestRegistryGathers(t *testing.T) {
	c := New()
	c.ElementExpanded("x-a", 0)

	families, err := c.Registry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["prerender_element_expansions_total"])
	assert.True(t, names["prerender_expansion_depth"])
}
