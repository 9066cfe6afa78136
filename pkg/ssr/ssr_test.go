package ssr

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderElementGreeter(t *testing.T) {
	greeter := &Descriptor{
		TagName: "greeter",
		Markup:  Static(Lit("<span>Hello <slot></slot></span>")),
	}

	out, err := RenderElement(greeter, Options{Children: "World"})
	require.NoError(t, err)
	assert.Equal(t, `<greeter class="css-greeter css-greeter-0"><span>Hello World</span></greeter>`, out)
}

func TestSharedSession(t *testing.T) {
	badge := &Descriptor{
		TagName: "x-badge",
		Markup: func(inst *Instance) (Template, error) {
			return Build("<b>", inst.String("label"), "</b>"), nil
		},
		Styles: []Style{{Scope: ChangeImmutable, Render: StaticCSS("b { font-weight: 700; }")}},
	}
	sess := CreateSession(SessionConfig{})

	first, err := RenderElement(badge, Options{Session: sess, Attributes: map[string]interface{}{"label": "one"}})
	require.NoError(t, err)
	second, err := RenderElement(badge, Options{Session: sess, Attributes: map[string]interface{}{"label": "two"}})
	require.NoError(t, err)

	assert.Contains(t, first, "<style>")
	assert.NotContains(t, second, "<style>")
	assert.Contains(t, second, `class="css-x-badge css-x-badge-1"`)
	assert.Contains(t, second, "<b class=\"css-x-badge css-x-badge-1\">two</b>")
}

func TestFromSourceDescriptor(t *testing.T) {
	markup, err := FromSource(`<p title="${attr.title}">${msg.hello} ${name}</p>`)
	require.NoError(t, err)
	desc := &Descriptor{
		TagName:    "x-hello",
		Markup:     markup,
		Properties: Schema{{Name: "name"}},
	}

	out, err := RenderElement(desc, Options{
		Attributes: map[string]interface{}{"title": "t", "name": "Ada"},
		I18nData:   map[string]string{"hello": "Hello"},
		MessageResolver: func(data interface{}, key string, _ ...interface{}) string {
			return data.(map[string]string)[key]
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `<x-hello title="t" class="css-x-hello css-x-hello-0"><p title="t">Hello Ada</p></x-hello>`, out)
}

func TestTemplComponent(t *testing.T) {
	desc := &Descriptor{TagName: "x-card", Markup: Static(Lit("<p>card</p>"))}

	var buf bytes.Buffer
	require.NoError(t, Component(desc, Options{}).Render(context.Background(), &buf))
	assert.Equal(t, `<x-card class="css-x-card css-x-card-0"><p>card</p></x-card>`, buf.String())

	broken := &Descriptor{TagName: "x-broken"}
	assert.Error(t, Component(broken, Options{}).Render(context.Background(), &buf))
}
