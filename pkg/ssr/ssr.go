// Package ssr renders custom-element component trees to static markup.
//
// A component is described by a Descriptor: a markup template, optional
// stylesheet templates, and the components it uses. RenderElement expands
// the descriptor and every nested custom element it references, projects
// slot content, and scopes stylesheets to the rendered markup.
//
//	greeter := &ssr.Descriptor{
//		TagName: "x-greeter",
//		Markup:  ssr.Static(ssr.Lit("<span>Hello <slot></slot></span>")),
//	}
//	html, err := ssr.RenderElement(greeter, ssr.Options{Children: "World"})
package ssr

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/conneroisu/prerender/internal/component"
	"github.com/conneroisu/prerender/internal/dom"
	"github.com/conneroisu/prerender/internal/expand"
	"github.com/conneroisu/prerender/internal/props"
	"github.com/conneroisu/prerender/internal/session"
	"github.com/conneroisu/prerender/internal/stylesheet"
	"github.com/conneroisu/prerender/internal/tmpl"
)

type (
	// Descriptor is the static definition of a component.
	Descriptor = component.Descriptor
	// Style is one stylesheet template of a component.
	Style = component.Style
	// Instance is what templates render against.
	Instance = component.Instance
	// RenderFunc renders a template for an instance.
	RenderFunc = component.RenderFunc
	// Template is a template result.
	Template = tmpl.Template
	// Session is shared numbering and presentation state.
	Session = session.Session
	// SessionConfig is the presentation part of a session.
	SessionConfig = session.Config
	// MessageResolver resolves localized messages.
	MessageResolver = session.MessageResolver
	// PropSpec declares one component property.
	PropSpec = props.Spec
	// Schema is a component's property list.
	Schema = props.Schema
	// ChangeScope declares what a stylesheet depends on.
	ChangeScope = stylesheet.ChangeScope
)

// Stylesheet change scopes.
const (
	ChangeImmutable = stylesheet.ChangeImmutable
	ChangeTheme     = stylesheet.ChangeTheme
	ChangeProps     = stylesheet.ChangeProps
	ChangeI18n      = stylesheet.ChangeI18n
)

// Template helpers.
var (
	Build      = tmpl.Build
	Lit        = tmpl.Lit
	ClassNames = tmpl.ClassNames
	Static     = component.Static
	StaticCSS  = component.StaticCSS
	FromSource = component.FromSource
)

// Options configure one render.
type Options struct {
	// Attributes are the root's external attributes and properties.
	Attributes map[string]interface{}
	// Children is markup projected into the root's slots.
	Children string
	// Session shares numbering with other renders. A new session is
	// created when nil.
	Session *Session

	Theme           interface{}
	I18nData        interface{}
	MessageResolver MessageResolver

	// Engine overrides the default engine.
	Engine *expand.Engine
}

var defaultEngine = expand.New()

// CreateSession creates a session for a group of related renders.
func CreateSession(cfg SessionConfig) *Session {
	return session.New(cfg)
}

// RenderElement renders desc as a root element.
func RenderElement(desc *Descriptor, opts Options) (string, error) {
	return RenderElementContext(context.Background(), desc, opts)
}

// RenderElementContext is RenderElement with a context for logging.
func RenderElementContext(ctx context.Context, desc *Descriptor, opts Options) (string, error) {
	req, err := opts.request()
	if err != nil {
		return "", err
	}
	return opts.engine().RenderElement(ctx, desc, req)
}

// Component exposes a render as a templ.Component, so a prerendered
// element can be placed in any templ page.
func Component(desc *Descriptor, opts Options) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := RenderElementContext(ctx, desc, opts)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	})
}

func (o Options) engine() *expand.Engine {
	if o.Engine != nil {
		return o.Engine
	}
	return defaultEngine
}

func (o Options) request() (expand.Request, error) {
	req := expand.Request{
		Attributes: props.FromMap(o.Attributes),
		Session:    o.Session,
		Config: session.Config{
			Theme:           o.Theme,
			I18nData:        o.I18nData,
			MessageResolver: o.MessageResolver,
		},
	}
	if o.Children != "" {
		children, err := dom.DefaultParser.Parse(o.Children)
		if err != nil {
			return expand.Request{}, err
		}
		req.Children = children
	}
	return req, nil
}
