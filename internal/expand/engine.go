// Package expand is the tree expansion engine: it renders a component's
// templates, recursively expands nested custom elements, projects slot
// content, and scopes stylesheets, producing one static element tree.
package expand

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/conneroisu/prerender/internal/component"
	"github.com/conneroisu/prerender/internal/dom"
	prerrors "github.com/conneroisu/prerender/internal/errors"
	"github.com/conneroisu/prerender/internal/logging"
	"github.com/conneroisu/prerender/internal/marker"
	"github.com/conneroisu/prerender/internal/props"
	"github.com/conneroisu/prerender/internal/scoping"
	"github.com/conneroisu/prerender/internal/session"
	"github.com/conneroisu/prerender/internal/slot"
	"github.com/conneroisu/prerender/internal/stylesheet"
	"github.com/conneroisu/prerender/internal/tmpl"
)

// DefaultMaxDepth bounds nested expansion so a component that contains
// itself fails instead of recursing forever.
const DefaultMaxDepth = 64

// Observer receives expansion events. Implementations must be safe for
// concurrent use.
type Observer interface {
	ElementExpanded(tag string, depth int)
	TypeSheetsEmitted(tag string, count int)
	RenderCompleted(root string, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ElementExpanded(string, int)                   {}
func (nopObserver) TypeSheetsEmitted(string, int)                 {}
func (nopObserver) RenderCompleted(string, time.Duration, error) {}

// Engine expands component descriptors. An Engine holds no render state
// and may be shared.
type Engine struct {
	markup   dom.Parser
	css      stylesheet.Parser
	logger   logging.Logger
	observer Observer
	fallback bool
	maxDepth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMarkupParser replaces the markup parser.
func WithMarkupParser(p dom.Parser) Option {
	return func(e *Engine) { e.markup = p }
}

// WithStylesheetParser replaces the stylesheet parser.
func WithStylesheetParser(p stylesheet.Parser) Option {
	return func(e *Engine) { e.css = p }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l.WithComponent("expand") }
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithSlotFallback keeps the default children of slot receivers that no
// light content matched.
func WithSlotFallback(enabled bool) Option {
	return func(e *Engine) { e.fallback = enabled }
}

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) { e.maxDepth = depth }
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		markup:   dom.DefaultParser,
		css:      stylesheet.DefaultParser,
		logger:   logging.NopLogger{},
		observer: nopObserver{},
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request is one top-level render.
type Request struct {
	// Attributes are the external attributes and properties of the root.
	Attributes *props.Bag
	// Children is the light content projected into the root's slots.
	Children []dom.Node
	// Session carries numbering across renders. A fresh session is used
	// when nil.
	Session *session.Session
	// Config is merged into the session before rendering.
	Config session.Config
}

// Render expands desc as a root element and returns the resulting tree.
// Errors are fatal: no partial tree is returned.
func (e *Engine) Render(ctx context.Context, desc *component.Descriptor, req Request) (*dom.Tag, error) {
	start := time.Now()
	perf := logging.StartOperation(e.logger, "render_element")

	host, err := e.render(ctx, desc, req)
	if err != nil {
		perf.EndWithError(ctx, err)
		prerrors.NewErrorHandler(e.logger).Handle(ctx, err)
	} else {
		perf.End(ctx)
	}

	name := ""
	if desc != nil {
		name = desc.Name()
	}
	e.observer.RenderCompleted(name, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return host, nil
}

// RenderElement is Render followed by serialization.
func (e *Engine) RenderElement(ctx context.Context, desc *component.Descriptor, req Request) (string, error) {
	host, err := e.Render(ctx, desc, req)
	if err != nil {
		return "", err
	}
	return dom.String(host), nil
}

func (e *Engine) render(ctx context.Context, desc *component.Descriptor, req Request) (*dom.Tag, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	sess := req.Session
	if sess == nil {
		sess = session.New(req.Config)
	} else {
		sess.MergeConfig(req.Config)
	}
	if err := sess.Register(desc); err != nil {
		return nil, err
	}
	e.logger.Debug(ctx, "Registered component graph", "root", desc.Name(), "tags", len(sess.Tags()))

	x := &expansion{
		engine: e,
		ctx:    ctx,
		sess:   sess,
		table:  marker.NewTable(e.markup),
	}
	return x.expand(desc, req.Attributes, req.Children, true, 0)
}

// Expand expands desc within sess. Light children are projected into the
// expansion's slots. It is the recursive step of Render, exposed for hosts
// that manage registration themselves. A nil sess expands in a fresh
// session holding only desc and its dependencies.
func (e *Engine) Expand(ctx context.Context, desc *component.Descriptor, attrs *props.Bag, light []dom.Node, sess *session.Session, isRoot bool) (*dom.Tag, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if sess == nil {
		sess = session.New(session.Config{})
		if err := sess.Register(desc); err != nil {
			return nil, err
		}
	}
	x := &expansion{engine: e, ctx: ctx, sess: sess, table: marker.NewTable(e.markup)}
	return x.expand(desc, attrs, light, isRoot, 0)
}

// expansion is the state of one top-level render. The marker table is
// shared by every nested expansion so that values passed from a parent
// template to a nested element survive the text round trip.
type expansion struct {
	engine *Engine
	ctx    context.Context
	sess   *session.Session
	table  *marker.Table
}

// frame is an expansion whose name and scoping ids are reserved.
type frame struct {
	desc        *component.Descriptor
	tagName     string
	ids         scoping.IDs
	firstOfType bool
	depth       int
}

// begin reserves the name, instance number, and type-sheet emission of
// one expansion. Numbering therefore follows document order even though
// light children are expanded before the element that receives them.
func (x *expansion) begin(desc *component.Descriptor, depth int) (*frame, error) {
	e := x.engine
	if depth > e.maxDepth {
		return nil, prerrors.NewRenderError(desc.Name(),
			fmt.Errorf("nested expansion deeper than %d levels", e.maxDepth)).WithContext("depth", depth)
	}

	f := &frame{desc: desc, tagName: desc.TagName, depth: depth}
	if f.tagName == "" {
		f.tagName = x.sess.NextAnonymousName()
	}
	f.ids = scoping.NewIDs(f.tagName, x.sess.NextInstance(desc))
	f.firstOfType = x.sess.MarkTypeEmitted(desc)
	e.observer.ElementExpanded(f.tagName, depth)
	e.logger.Debug(x.ctx, "Expanding element", "tag", f.tagName, "instance", f.ids.Instance, "depth", depth)
	return f, nil
}

func (x *expansion) expand(desc *component.Descriptor, inbound *props.Bag, light []dom.Node, isRoot bool, depth int) (*dom.Tag, error) {
	f, err := x.begin(desc, depth)
	if err != nil {
		return nil, err
	}
	return x.run(f, inbound, light, isRoot)
}

func (x *expansion) run(f *frame, inbound *props.Bag, light []dom.Node, isRoot bool) (*dom.Tag, error) {
	e := x.engine
	desc, tagName, ids := f.desc, f.tagName, f.ids

	if inbound == nil {
		inbound = &props.Bag{}
	}
	if isRoot {
		inbound = resolveOwnRefs(desc, tagName, inbound, x.sess)
	}
	inst := component.NewInstance(desc, tagName, inbound, x.sess)

	tpl, err := callTemplate(desc.Markup, inst)
	if err != nil {
		return nil, err
	}
	text, err := x.table.Render(tpl, inst)
	if err != nil {
		return nil, asMarkupError(tagName, err)
	}
	nodes, err := e.markup.Parse(text)
	if err != nil {
		return nil, prerrors.NewMarkupError(tagName, err)
	}

	if isRoot && slot.HasUnnamedReceiver(nodes) {
		return nil, prerrors.ErrRootUnnamedSlot(tagName)
	}

	var inner []string
	if len(desc.Styles) > 0 {
		inner = ids.Classes()
	}

	markup, err := x.expandNested(nodes, f.depth)
	if err != nil {
		return nil, err
	}

	sheets, err := x.renderStyles(desc, inst, tagName, ids, f.firstOfType)
	if err != nil {
		return nil, err
	}

	markup = slot.Project(markup, light, slot.Options{Fallback: e.fallback})
	markup = scoping.InjectClasses(markup, inner, x.isExpandedHost)

	children := append(sheets.Nodes(), markup...)
	host := &dom.Tag{Name: tagName, Attrs: hostAttrs(inst), Children: children}
	return host.AddClass(ids.Classes()...), nil
}

// expandNested replaces every registered custom element below nodes with
// its expansion. Light children of a nested element are expanded in the
// current context and scoped by the element they are projected into.
func (x *expansion) expandNested(nodes []dom.Node, depth int) ([]dom.Node, error) {
	var walkErr error
	var visit dom.Visitor
	visit = func(n dom.Node) *dom.Replacement {
		tag, ok := n.(*dom.Tag)
		if !ok {
			return nil
		}
		if walkErr != nil {
			return &dom.Replacement{Node: tag, Stop: true}
		}

		desc, registered := x.lookup(tag)
		if !registered {
			return &dom.Replacement{Node: x.finalizeAttrs(tag)}
		}

		f, err := x.begin(desc, depth+1)
		if err != nil {
			walkErr = err
			return &dom.Replacement{Node: tag, Stop: true}
		}
		light := dom.Walk(tag.Children, visit)
		if walkErr != nil {
			return &dom.Replacement{Node: tag, Stop: true}
		}
		host, err := x.run(f, x.decodeAttrs(tag), light, false)
		if err != nil {
			walkErr = err
			return &dom.Replacement{Node: tag, Stop: true}
		}
		return &dom.Replacement{Node: host, Stop: true}
	}

	out := dom.Walk(nodes, visit)
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}

func (x *expansion) lookup(tag *dom.Tag) (*component.Descriptor, bool) {
	if !tag.IsCustomElement() {
		return nil, false
	}
	return x.sess.Lookup(tag.Name)
}

func (x *expansion) isExpandedHost(tag *dom.Tag) bool {
	_, ok := x.lookup(tag)
	return ok
}

func (x *expansion) renderStyles(desc *component.Descriptor, inst *component.Instance, tagName string, ids scoping.IDs, firstOfType bool) (scoping.Result, error) {
	if len(desc.Styles) == 0 {
		return scoping.Result{}, nil
	}
	rendered := make([]scoping.Rendered, 0, len(desc.Styles))
	for _, style := range desc.Styles {
		tpl, err := callTemplate(style.Render, inst)
		if err != nil {
			return scoping.Result{}, err
		}
		text, err := x.table.RenderText(tpl, inst)
		if err != nil {
			return scoping.Result{}, prerrors.NewRenderError(tagName, err)
		}
		rendered = append(rendered, scoping.Rendered{Scope: style.Scope, Text: text})
	}

	res, err := scoping.ScopeSheets(tagName, rendered, ids, firstOfType, x.engine.css)
	if err != nil {
		return scoping.Result{}, err
	}
	if len(res.Type) > 0 {
		x.engine.observer.TypeSheetsEmitted(tagName, len(res.Type))
		x.engine.logger.Debug(x.ctx, "Emitted type-scoped stylesheets", "tag", tagName, "count", len(res.Type))
	}
	return res, nil
}

// callTemplate evaluates a template function, turning returned errors and
// panics into render errors.
func callTemplate(fn component.RenderFunc, inst *component.Instance) (tpl tmpl.Template, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = prerrors.NewRenderError(inst.TagName(), fmt.Errorf("panic: %v", r)).WithStack(debug.Stack())
		}
	}()

	tpl, err = fn(inst)
	if err != nil {
		if _, ok := prerrors.AsPrerenderError(err); ok {
			return tmpl.Template{}, err
		}
		return tmpl.Template{}, prerrors.NewRenderError(inst.TagName(), err)
	}
	return tpl, nil
}

func asMarkupError(tagName string, err error) error {
	if _, ok := prerrors.AsPrerenderError(err); ok {
		return err
	}
	return prerrors.NewMarkupError(tagName, err)
}

// resolveOwnRefs resolves parent references handed to a root element
// against the root's own properties.
func resolveOwnRefs(desc *component.Descriptor, tagName string, in *props.Bag, env component.Environment) *props.Bag {
	hasRef := false
	for _, entry := range in.Entries() {
		if _, ok := entry.Value.Interface().(props.ParentRef); ok {
			hasRef = true
			break
		}
	}
	if !hasRef {
		return in
	}

	self := component.NewInstance(desc, tagName, in, env)
	out := in.Clone()
	for _, entry := range in.Entries() {
		ref, ok := entry.Value.Interface().(props.ParentRef)
		if !ok {
			continue
		}
		v := self.Get(ref.Name)
		if _, chained := v.Interface().(props.ParentRef); chained {
			v = props.Null
		}
		out.Set(entry.Name, v)
	}
	return out
}

// hostAttrs composes the host element's attributes: passthrough
// attributes, reflected public properties, then exposed values. Values
// that cannot be written as attributes are skipped.
func hostAttrs(inst *component.Instance) []dom.Attr {
	part := inst.Partition()
	merged := part.Attributes.Clone()
	merged.Merge(part.Public)
	merged.Merge(inst.Exposed())

	var attrs []dom.Attr
	for _, entry := range merged.Entries() {
		if entry.Value.Kind() == props.KindRef || strings.HasPrefix(entry.Name, marker.ListenerPrefix) {
			continue
		}
		if text, ok := entry.Value.AttrText(); ok {
			attrs = append(attrs, dom.Attr{Name: entry.Name, Value: text})
		}
	}
	return attrs
}
