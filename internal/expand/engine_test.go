package expand

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/conneroisu/prerender/internal/component"
	"github.com/conneroisu/prerender/internal/dom"
	prerrors "github.com/conneroisu/prerender/internal/errors"
	"github.com/conneroisu/prerender/internal/props"
	"github.com/conneroisu/prerender/internal/session"
	"github.com/conneroisu/prerender/internal/stylesheet"
	"github.com/conneroisu/prerender/internal/tmpl"
)

func static(markup string) component.RenderFunc {
	return component.Static(tmpl.Lit(markup))
}

func TestGreeter(t *testing.T) {
	greeter := &component.Descriptor{
		TagName: "greeter",
		Markup:  static("<span>Hello <slot></slot></span>"),
	}

	out, err := New().RenderElement(context.Background(), greeter, Request{
		Children: []dom.Node{dom.NewText("World")},
	})
	require.NoError(t, err)
	assert.Equal(t, `<greeter class="css-greeter css-greeter-0"><span>Hello World</span></greeter>`, out)
}

func TestTypeSheetsEmittedOncePerSession(t *testing.T) {
	card := &component.Descriptor{
		TagName: "x-card",
		Markup:  static(`<p class="title">card</p>`),
		Styles: []component.Style{
			{Scope: stylesheet.ChangeImmutable, Render: component.StaticCSS("p { color: red; }")},
			{Scope: stylesheet.ChangeProps, Render: func(inst *component.Instance) (tmpl.Template, error) {
				return tmpl.Build("p { width: ", inst.String("w"), "px; }"), nil
			}},
		},
	}

	engine := New()
	sess := session.New(session.Config{})
	render := func(w int) string {
		out, err := engine.RenderElement(context.Background(), card, Request{
			Session:    sess,
			Attributes: props.NewBag(props.Entry{Name: "w", Value: props.Number(float64(w))}),
		})
		require.NoError(t, err)
		return out
	}

	first, second := render(1), render(2)

	assert.Equal(t, 1, strings.Count(first+second, "color: red;"))
	assert.Contains(t, first, "p.css-x-card {")
	assert.Contains(t, first, "p.css-x-card-0 {")
	assert.Contains(t, second, "p.css-x-card-1 {")
	assert.NotContains(t, second, "css-x-card-0")

	typeAt := strings.Index(first, "color: red;")
	instAt := strings.Index(first, "width: 1px;")
	markupAt := strings.Index(first, "<p ")
	assert.True(t, typeAt < instAt && instAt < markupAt, "style order: %s", first)

	assert.Contains(t, first, `<x-card w="1" class="css-x-card css-x-card-0">`)
	assert.Contains(t, first, `<p class="title css-x-card css-x-card-0">card</p>`)
	assert.Contains(t, second, `<p class="title css-x-card css-x-card-1">card</p>`)
}

func TestScopingBoundary(t *testing.T) {
	child := &component.Descriptor{
		TagName: "x-child",
		Markup:  static("<section><slot></slot></section>"),
		Styles:  []component.Style{{Render: component.StaticCSS("em { color: blue; }")}},
	}
	parent := &component.Descriptor{
		TagName:      "x-parent",
		Markup:       static("<div><x-child><em>light</em></x-child></div>"),
		Styles:       []component.Style{{Render: component.StaticCSS("div { margin: 0; }")}},
		Dependencies: []*component.Descriptor{child},
	}

	out, err := New().RenderElement(context.Background(), parent, Request{})
	require.NoError(t, err)

	doc, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)
	count := func(sel string) int {
		return len(cascadia.MustCompile(sel).MatchAll(doc))
	}

	assert.Equal(t, 1, count("div.css-x-parent.css-x-parent-0"))
	assert.Equal(t, 1, count("x-child.css-x-child.css-x-child-0.css-x-parent"))
	assert.Equal(t, 1, count("section.css-x-child.css-x-child-0"))
	assert.Equal(t, 0, count("section.css-x-parent"))
	assert.Equal(t, 1, count("section > em.css-x-child.css-x-child-0"))
	assert.Equal(t, 0, count("em.css-x-parent"))
	assert.Contains(t, out, "em.css-x-child {")
}

func TestSlottedContentScopedByReceiver(t *testing.T) {
	child := &component.Descriptor{
		TagName: "x-child",
		Markup:  static("<section><slot></slot></section>"),
		Styles: []component.Style{
			{Scope: stylesheet.ChangeImmutable, Render: component.StaticCSS("em { color: blue; }")},
		},
	}
	parent := &component.Descriptor{
		TagName:      "x-parent",
		Markup:       static("<x-child><em>light</em></x-child>"),
		Dependencies: []*component.Descriptor{child},
	}

	out, err := New().RenderElement(context.Background(), parent, Request{})
	require.NoError(t, err)

	assert.Contains(t, out, "em.css-x-child {")
	assert.Contains(t, out, `<section class="css-x-child css-x-child-0"><em class="css-x-child css-x-child-0">light</em></section>`)
}

func TestNestedNumberingIsPreOrder(t *testing.T) {
	item := &component.Descriptor{TagName: "x-item", Markup: static("<i></i>")}
	list := &component.Descriptor{
		TagName:      "x-list",
		Markup:       static("<x-item></x-item><x-item></x-item>"),
		Dependencies: []*component.Descriptor{item},
	}

	out, err := New().RenderElement(context.Background(), list, Request{})
	require.NoError(t, err)
	assert.Equal(t,
		`<x-list class="css-x-list css-x-list-0">`+
			`<x-item class="css-x-item css-x-item-0"><i></i></x-item>`+
			`<x-item class="css-x-item css-x-item-1"><i></i></x-item>`+
			`</x-list>`,
		out)
}

func TestPassthroughProperties(t *testing.T) {
	list := &component.Descriptor{
		TagName: "x-list",
		Properties: props.Schema{
			{Name: "items"},
			{Name: "label", Reflect: true},
		},
		Markup: func(inst *component.Instance) (tmpl.Template, error) {
			items, _ := inst.Get("items").Interface().([]string)
			lis := make([]tmpl.Template, len(items))
			for i, item := range items {
				lis[i] = tmpl.Build("<li>", item, "</li>")
			}
			return tmpl.Build("<ul>", lis, "</ul>"), nil
		},
	}
	root := &component.Descriptor{
		TagName: "x-root",
		Markup: component.Static(tmpl.Build(
			"<x-list .items=", []string{"a", "b"}, ` label="`, "L", `" @select=`, func() {}, "></x-list>")),
		Dependencies: []*component.Descriptor{list},
	}

	out, err := New().RenderElement(context.Background(), root, Request{})
	require.NoError(t, err)
	assert.Equal(t,
		`<x-root class="css-x-root css-x-root-0">`+
			`<x-list label="L" class="css-x-list css-x-list-0"><ul><li>a</li><li>b</li></ul></x-list>`+
			`</x-root>`,
		out)
}

func TestToggles(t *testing.T) {
	box := &component.Descriptor{
		TagName:    "x-box",
		Properties: props.Schema{{Name: "open", Reflect: true}},
		Markup: func(inst *component.Instance) (tmpl.Template, error) {
			return tmpl.Build(`<div ?hidden="`, !inst.Bool("open"), `">box</div>`), nil
		},
	}
	root := &component.Descriptor{
		TagName:      "x-root",
		Markup:       component.Static(tmpl.Build("<x-box ?open=", true, "></x-box><x-box ?open=", false, "></x-box>")),
		Dependencies: []*component.Descriptor{box},
	}

	out, err := New().RenderElement(context.Background(), root, Request{})
	require.NoError(t, err)
	assert.Equal(t,
		`<x-root class="css-x-root css-x-root-0">`+
			`<x-box open class="css-x-box css-x-box-0"><div>box</div></x-box>`+
			`<x-box class="css-x-box css-x-box-1"><div hidden>box</div></x-box>`+
			`</x-root>`,
		out)
}

func TestParentReferences(t *testing.T) {
	label := &component.Descriptor{
		TagName:    "x-label",
		Properties: props.Schema{{Name: "text"}},
		Markup: func(inst *component.Instance) (tmpl.Template, error) {
			return tmpl.Build("<b>", inst.String("text"), "</b>"), nil
		},
	}
	root := &component.Descriptor{
		TagName: "x-root",
		Properties: props.Schema{
			{Name: "title", Reflect: true},
			{Name: "caption", Reflect: true},
		},
		Markup: func(inst *component.Instance) (tmpl.Template, error) {
			return tmpl.Build("<x-label text=", inst.Ref("title"), "></x-label>"), nil
		},
		Dependencies: []*component.Descriptor{label},
	}

	out, err := New().RenderElement(context.Background(), root, Request{
		Attributes: props.NewBag(
			props.Entry{Name: "title", Value: props.String("Hi")},
			props.Entry{Name: "caption", Value: props.Ref(props.ParentRef{Name: "title"})},
		),
	})
	require.NoError(t, err)
	assert.Equal(t,
		`<x-root title="Hi" caption="Hi" class="css-x-root css-x-root-0">`+
			`<x-label class="css-x-label css-x-label-0"><b>Hi</b></x-label>`+
			`</x-root>`,
		out)
}

func TestUnregisteredCustomTagsPassThrough(t *testing.T) {
	root := &component.Descriptor{
		TagName: "x-root",
		Markup: component.Static(tmpl.Build(
			`<x-unknown data-n="`, 3, `" .prop=`, "p", ` ?on=`, true, ` class="a `, []string{"b"}, `">`, "t", `</x-unknown>`)),
	}

	out, err := New().RenderElement(context.Background(), root, Request{})
	require.NoError(t, err)
	assert.Equal(t,
		`<x-root class="css-x-root css-x-root-0"><x-unknown data-n="3" on class="a b">t</x-unknown></x-root>`,
		out)
}

func TestLightChildrenExpandInParentContext(t *testing.T) {
	badge := &component.Descriptor{TagName: "x-badge", Markup: static("<b>!</b>")}
	frame := &component.Descriptor{
		TagName: "x-frame",
		Markup:  static(`<header><slot name="head"></slot></header><main><slot></slot></main>`),
	}
	page := &component.Descriptor{
		TagName: "x-page",
		Markup: component.Static(tmpl.Build(
			`<x-frame><h1 slot="head">`, "Title", `</h1><x-badge></x-badge>body</x-frame>`)),
		Dependencies: []*component.Descriptor{frame, badge},
	}

	out, err := New().RenderElement(context.Background(), page, Request{})
	require.NoError(t, err)
	assert.Equal(t,
		`<x-page class="css-x-page css-x-page-0"><x-frame class="css-x-frame css-x-frame-0">`+
			`<header><h1 slot="head">Title</h1></header>`+
			`<main><x-badge class="css-x-badge css-x-badge-0"><b>!</b></x-badge>body</main>`+
			`</x-frame></x-page>`,
		out)
}

func TestSlotFallback(t *testing.T) {
	card := &component.Descriptor{
		TagName: "x-card",
		Markup:  static(`<p><slot name="title">Untitled</slot></p>`),
	}

	out, err := New().RenderElement(context.Background(), card, Request{})
	require.NoError(t, err)
	assert.Equal(t, `<x-card class="css-x-card css-x-card-0"><p></p></x-card>`, out)

	out, err = New(WithSlotFallback(true)).RenderElement(context.Background(), card, Request{})
	require.NoError(t, err)
	assert.Equal(t, `<x-card class="css-x-card css-x-card-0"><p>Untitled</p></x-card>`, out)
}

func TestAnonymousDescriptor(t *testing.T) {
	anon := &component.Descriptor{Markup: static("<i></i>")}
	sess := session.New(session.Config{})

	first, err := New().RenderElement(context.Background(), anon, Request{Session: sess})
	require.NoError(t, err)
	second, err := New().RenderElement(context.Background(), anon, Request{Session: sess})
	require.NoError(t, err)

	assert.Equal(t, `<anon-element-0 class="css-anon-element-0 css-anon-element-0-0"><i></i></anon-element-0>`, first)
	assert.Equal(t, `<anon-element-1 class="css-anon-element-1 css-anon-element-1-1"><i></i></anon-element-1>`, second)
}

func TestRootUnnamedSlotIsRejected(t *testing.T) {
	root := &component.Descriptor{TagName: "x-root", Markup: static("<slot></slot><p></p>")}

	_, err := New().RenderElement(context.Background(), root, Request{})
	require.Error(t, err)
	assert.True(t, prerrors.IsValidationError(err))
	assert.True(t, prerrors.HasErrorCode(err, prerrors.ErrCodeRootUnnamedSlot))

	// the same component nested below a root is fine
	outer := &component.Descriptor{
		TagName:      "x-outer",
		Markup:       static("<x-root>x</x-root>"),
		Dependencies: []*component.Descriptor{{TagName: "x-root", Markup: static("<slot></slot><p></p>")}},
	}
	out, err := New().RenderElement(context.Background(), outer, Request{})
	require.NoError(t, err)
	assert.Contains(t, out, "x<p></p>")
}

func TestTemplateFailuresAreFatal(t *testing.T) {
	boom := errors.New("boom")
	failing := &component.Descriptor{
		TagName: "x-fail",
		Markup: func(*component.Instance) (tmpl.Template, error) {
			return tmpl.Template{}, boom
		},
	}
	panicking := &component.Descriptor{
		TagName: "x-panic",
		Markup: func(*component.Instance) (tmpl.Template, error) {
			panic("kaput")
		},
	}
	root := &component.Descriptor{
		TagName:      "x-root",
		Markup:       static("<p>ok</p><div><x-fail></x-fail></div><x-panic></x-panic>"),
		Dependencies: []*component.Descriptor{failing, panicking},
	}

	host, err := New().Render(context.Background(), root, Request{})
	require.Error(t, err)
	assert.Nil(t, host)
	assert.True(t, prerrors.IsRenderError(err))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "boom")

	pe, ok := prerrors.AsPrerenderError(err)
	require.True(t, ok)
	assert.Equal(t, "x-fail", pe.Component)

	_, err = New().RenderElement(context.Background(), panicking, Request{})
	require.Error(t, err)
	pe, ok = prerrors.AsPrerenderError(err)
	require.True(t, ok)
	assert.Equal(t, prerrors.ErrorTypeRender, pe.Type)
	assert.Contains(t, err.Error(), "kaput")
	assert.NotEmpty(t, pe.Stack)
}

func TestStylesheetErrorsAreFatal(t *testing.T) {
	for _, cssText := range []string{"p {", "p { color: red", "p { color: ; }", "}}}"} {
		t.Run(cssText, func(t *testing.T) {
			card := &component.Descriptor{
				TagName: "x-card",
				Markup:  static("<p></p>"),
				Styles:  []component.Style{{Render: component.StaticCSS(cssText)}},
			}

			out, err := New().RenderElement(context.Background(), card, Request{})
			require.Error(t, err)
			assert.Empty(t, out)
			assert.True(t, prerrors.IsStylesheetError(err))
			pe, _ := prerrors.AsPrerenderError(err)
			assert.Equal(t, cssText, pe.Context["css"])
		})
	}
}

func TestSelfNestingIsBounded(t *testing.T) {
	loop := &component.Descriptor{TagName: "x-loop", Markup: static("<x-loop></x-loop>")}
	loop.Dependencies = []*component.Descriptor{loop}

	_, err := New(WithMaxDepth(4)).RenderElement(context.Background(), loop, Request{})
	require.Error(t, err)
	assert.True(t, prerrors.IsRenderError(err))
	assert.Contains(t, err.Error(), "deeper than 4 levels")

	pe, ok := prerrors.AsPrerenderError(err)
	require.True(t, ok)
	assert.Equal(t, "x-loop", pe.Component)
	assert.Equal(t, 5, pe.Context["depth"])
}

func TestExpandWithoutSession(t *testing.T) {
	badge := &component.Descriptor{TagName: "x-badge", Markup: static("<b>!</b>")}
	card := &component.Descriptor{
		TagName:      "x-card",
		Markup:       static("<x-badge></x-badge>"),
		Dependencies: []*component.Descriptor{badge},
	}

	var host *dom.Tag
	var err error
	require.NotPanics(t, func() {
		host, err = New().Expand(context.Background(), card, nil, nil, nil, true)
	})
	require.NoError(t, err)
	assert.Equal(t,
		`<x-card class="css-x-card css-x-card-0"><x-badge class="css-x-badge css-x-badge-0"><b>!</b></x-badge></x-card>`,
		dom.String(host))
}

func TestNonCustomDependenciesAreIgnored(t *testing.T) {
	anonymous := &component.Descriptor{Markup: static("<i></i>")}
	plain := &component.Descriptor{TagName: "plain", Markup: static("<u></u>")}
	root := &component.Descriptor{
		TagName:      "x-root",
		Markup:       static("<plain>kept</plain>"),
		Dependencies: []*component.Descriptor{anonymous, plain},
	}

	out, err := New().RenderElement(context.Background(), root, Request{})
	require.NoError(t, err)
	assert.Equal(t, `<x-root class="css-x-root css-x-root-0"><plain>kept</plain></x-root>`, out)
}

func TestSessionConfigReachesTemplates(t *testing.T) {
	hello := &component.Descriptor{
		TagName: "x-hello",
		Markup: func(inst *component.Instance) (tmpl.Template, error) {
			return tmpl.Build(`<p style="color: `, inst.ThemeValue("color"), `">`, inst.Msg("greeting", "Ada"), "</p>"), nil
		},
	}

	out, err := New().RenderElement(context.Background(), hello, Request{
		Config: session.Config{
			Theme:    map[string]interface{}{"color": "teal"},
			I18nData: map[string]string{"greeting": "Hi, "},
			MessageResolver: func(data interface{}, key string, args ...interface{}) string {
				return data.(map[string]string)[key] + args[0].(string)
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `<x-hello class="css-x-hello css-x-hello-0"><p style="color: teal">Hi, Ada</p></x-hello>`, out)
}

type recordingObserver struct {
	mu       sync.Mutex
	expanded []string
	sheets   map[string]int
	renders  int
	errs     int
}

func (o *recordingObserver) ElementExpanded(tag string, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.expanded = append(o.expanded, tag)
}

func (o *recordingObserver) TypeSheetsEmitted(tag string, count int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sheets == nil {
		o.sheets = make(map[string]int)
	}
	o.sheets[tag] += count
}

func (o *recordingObserver) RenderCompleted(_ string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.renders++
	if err != nil {
		o.errs++
	}
}

func TestObserver(t *testing.T) {
	item := &component.Descriptor{
		TagName: "x-item",
		Markup:  static("<i></i>"),
		Styles:  []component.Style{{Render: component.StaticCSS("i { color: red; }")}},
	}
	list := &component.Descriptor{
		TagName:      "x-list",
		Markup:       static("<x-item></x-item><x-item></x-item>"),
		Dependencies: []*component.Descriptor{item},
	}

	obs := &recordingObserver{}
	_, err := New(WithObserver(obs)).RenderElement(context.Background(), list, Request{})
	require.NoError(t, err)

	assert.Equal(t, []string{"x-list", "x-item", "x-item"}, obs.expanded)
	assert.Equal(t, map[string]int{"x-item": 1}, obs.sheets)
	assert.Equal(t, 1, obs.renders)
	assert.Equal(t, 0, obs.errs)
}
