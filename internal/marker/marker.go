// Package marker round-trips template values through text-based markup
// processing. Each interpolated value is replaced by a unique token, the
// marked text is parsed to learn where every token landed, and the
// original segments are then reassembled with each value resolved for
// its context.
package marker

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"

	"github.com/conneroisu/prerender/internal/dom"
	prerrors "github.com/conneroisu/prerender/internal/errors"
	"github.com/conneroisu/prerender/internal/props"
	"github.com/conneroisu/prerender/internal/tmpl"
)

// Context is where a marker was found in the parsed markup.
type Context uint8

const (
	// ContextUnknown markers were never observed; they resolve to their
	// plain string form.
	ContextUnknown Context = iota
	ContextText
	ContextRawText
	ContextAttr
	ContextClass
	ContextToggle
	ContextListener
	ContextProperty
	// ContextPassthrough markers sit in attributes of custom elements and
	// keep their token so the raw value reaches the nested expansion.
	ContextPassthrough
)

var contextNames = [...]string{
	"unknown", "text", "raw-text", "attr", "class", "toggle", "listener", "property", "passthrough",
}

// String returns the context name.
func (c Context) String() string {
	if int(c) < len(contextNames) {
		return contextNames[c]
	}
	return "context(" + strconv.Itoa(int(c)) + ")"
}

// Binding prefixes recognized on attribute names.
const (
	TogglePrefix   = "?"
	ListenerPrefix = "@"
	PropertyPrefix = "."
)

// Entry is one marked value.
type Entry struct {
	Token   string
	Value   interface{}
	Owner   interface{}
	Context Context
	// Attr and Tag record where an attribute marker was found.
	Attr string
	Tag  string
}

// Marked is a template after marking.
type Marked struct {
	Text    string
	Strings []string
	Tokens  []string
	Owner   interface{}
}

// Table tracks every marker issued during one expansion, nested
// templates included.
type Table struct {
	parser  dom.Parser
	entries map[string]*Entry
	order   []*Entry
}

const maxNonceAttempts = 16

var tokenPattern = regexp.MustCompile(`\{\{ssr:[0-9a-f]+:[0-9]+\}\}`)

// NewTable returns an empty table that parses markup with parser.
func NewTable(parser dom.Parser) *Table {
	if parser == nil {
		parser = dom.DefaultParser
	}
	return &Table{parser: parser, entries: make(map[string]*Entry)}
}

// Len returns the number of issued markers.
func (t *Table) Len() int { return len(t.order) }

// Lookup returns the entry for token.
func (t *Table) Lookup(token string) (*Entry, bool) {
	e, ok := t.entries[token]
	return e, ok
}

// Entries returns the issued entries in order.
func (t *Table) Entries() []*Entry {
	return append([]*Entry(nil), t.order...)
}

// HasMarkers reports whether s contains a token issued by this table.
func (t *Table) HasMarkers(s string) bool {
	for _, tok := range tokenPattern.FindAllString(s, -1) {
		if _, ok := t.entries[tok]; ok {
			return true
		}
	}
	return false
}

// Mark joins the template segments with one fresh token per value. The
// token prefix is chosen so that no literal segment contains it.
func (t *Table) Mark(tpl tmpl.Template, owner interface{}) (*Marked, error) {
	nonce, err := pickNonce(tpl.Strings)
	if err != nil {
		return nil, err
	}

	m := &Marked{
		Strings: append([]string(nil), tpl.Strings...),
		Tokens:  make([]string, len(tpl.Values)),
		Owner:   owner,
	}
	var sb strings.Builder
	for i, seg := range tpl.Strings {
		sb.WriteString(seg)
		if i >= len(tpl.Values) {
			continue
		}
		tok := "{{ssr:" + nonce + ":" + strconv.Itoa(len(t.order)) + "}}"
		e := &Entry{Token: tok, Value: tpl.Values[i], Owner: owner}
		t.entries[tok] = e
		t.order = append(t.order, e)
		m.Tokens[i] = tok
		sb.WriteString(tok)
	}
	m.Text = sb.String()
	return m, nil
}

func pickNonce(segments []string) (string, error) {
	h := fnv.New32a()
	for _, s := range segments {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	seed := h.Sum32()

	for salt := uint32(0); salt < maxNonceAttempts; salt++ {
		nonce := strconv.FormatUint(uint64(seed+salt*0x9e3779b9), 16)
		prefix := "{{ssr:" + nonce + ":"
		collides := false
		for _, s := range segments {
			if strings.Contains(s, prefix) {
				collides = true
				break
			}
		}
		if !collides {
			return nonce, nil
		}
	}
	return "", prerrors.NewInternalError(prerrors.ErrCodeMarkerCollision,
		"template literals collide with every marker prefix", nil)
}

// Analyze walks a parsed marked tree and records the context of every
// marker it finds.
func (t *Table) Analyze(nodes []dom.Node) {
	t.analyze(nodes, false)
}

func (t *Table) analyze(nodes []dom.Node, raw bool) {
	for _, n := range nodes {
		switch node := n.(type) {
		case *dom.Text:
			ctx := ContextText
			if raw {
				ctx = ContextRawText
			}
			for _, tok := range tokenPattern.FindAllString(node.Content, -1) {
				if e, ok := t.entries[tok]; ok {
					e.Context = ctx
				}
			}
		case *dom.Fragment:
			t.analyze(node.Children, raw)
		case *dom.Tag:
			for _, a := range node.Attrs {
				ctx := attrContext(node, a.Name)
				for _, tok := range tokenPattern.FindAllString(a.Value, -1) {
					if e, ok := t.entries[tok]; ok {
						e.Context, e.Attr, e.Tag = ctx, a.Name, node.Name
					}
				}
			}
			t.analyze(node.Children, dom.IsRawText(node.Name))
		}
	}
}

func attrContext(tag *dom.Tag, name string) Context {
	switch {
	case tag.IsCustomElement():
		return ContextPassthrough
	case strings.HasPrefix(name, TogglePrefix):
		return ContextToggle
	case strings.HasPrefix(name, ListenerPrefix):
		return ContextListener
	case strings.HasPrefix(name, PropertyPrefix):
		return ContextProperty
	case name == "class":
		return ContextClass
	default:
		return ContextAttr
	}
}

// bindingTail matches the end of a literal segment that opens a bound
// attribute value: whitespace, the attribute name, "=", and an optional
// opening quote.
var bindingTail = regexp.MustCompile(`(\s+)([^\s"'<>/=]+)\s*=\s*(["']?)$`)

// openValue matches a segment ending right after "=" of an unquoted value.
var openValue = regexp.MustCompile(`=\s*$`)

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `'`, "&#39;")

// Unmark reassembles m from its original segments, replacing each token
// with the value resolved for the context Analyze recorded.
func (t *Table) Unmark(m *Marked) (string, error) {
	segs := append([]string(nil), m.Strings...)
	var sb strings.Builder

	for i := range segs {
		if i >= len(m.Tokens) {
			sb.WriteString(segs[i])
			break
		}
		e := t.entries[m.Tokens[i]]

		switch e.Context {
		case ContextToggle, ContextListener, ContextProperty:
			loc := bindingTail.FindStringSubmatchIndex(segs[i])
			if loc == nil {
				sb.WriteString(segs[i])
				sb.WriteString(attrEscaper.Replace(tmpl.TextOf(e.Value)))
				continue
			}
			name := segs[i][loc[4]:loc[5]]
			quote := segs[i][loc[6]:loc[7]]
			sb.WriteString(segs[i][:loc[0]])
			if e.Context == ContextToggle && props.Of(e.Value).Truthy() {
				sb.WriteString(segs[i][loc[2]:loc[3]])
				sb.WriteString(strings.TrimPrefix(name, TogglePrefix))
			}
			if quote != "" && i+1 < len(segs) {
				segs[i+1] = strings.TrimPrefix(segs[i+1], quote)
			}
			continue
		}

		sb.WriteString(segs[i])
		out, err := t.resolve(e, m.Owner)
		if err != nil {
			return "", err
		}
		if (e.Context == ContextAttr || e.Context == ContextClass) && openValue.MatchString(segs[i]) {
			out = `"` + out + `"`
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

func (t *Table) resolve(e *Entry, owner interface{}) (string, error) {
	switch e.Context {
	case ContextText:
		return t.renderContent(e.Value, owner)
	case ContextRawText, ContextUnknown:
		return tmpl.TextOf(e.Value), nil
	case ContextClass:
		return attrEscaper.Replace(tmpl.ClassNames(e.Value)), nil
	case ContextAttr:
		return attrEscaper.Replace(tmpl.TextOf(e.Value)), nil
	case ContextPassthrough:
		return e.Token, nil
	default:
		return "", nil
	}
}

// renderContent renders a value found in text content. Nested templates
// become markup of their own; everything else is escaped text.
func (t *Table) renderContent(v interface{}, owner interface{}) (string, error) {
	switch x := v.(type) {
	case tmpl.Template:
		return t.Render(x, owner)
	case *tmpl.Template:
		if x == nil {
			return "", nil
		}
		return t.Render(*x, owner)
	case []tmpl.Template:
		var sb strings.Builder
		for _, item := range x {
			s, err := t.Render(item, owner)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		}
		return sb.String(), nil
	case []interface{}:
		var sb strings.Builder
		for _, item := range x {
			s, err := t.renderContent(item, owner)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		}
		return sb.String(), nil
	}
	return dom.EscapeText(tmpl.TextOf(v)), nil
}

// Render marks tpl, parses the marked text to learn the context of each
// marker, and returns the resolved markup text. Markers of custom-element
// attributes are kept in the output for Decode.
func (t *Table) Render(tpl tmpl.Template, owner interface{}) (string, error) {
	m, err := t.Mark(tpl, owner)
	if err != nil {
		return "", err
	}
	if len(m.Tokens) > 0 {
		nodes, err := t.parser.Parse(m.Text)
		if err != nil {
			return "", fmt.Errorf("parse marked markup: %w", err)
		}
		t.Analyze(nodes)
	}
	return t.Unmark(m)
}

// RenderText renders a template whose output is not markup, such as a
// stylesheet. Every value resolves to its plain string form.
func (t *Table) RenderText(tpl tmpl.Template, owner interface{}) (string, error) {
	m, err := t.Mark(tpl, owner)
	if err != nil {
		return "", err
	}
	for _, tok := range m.Tokens {
		t.entries[tok].Context = ContextRawText
	}
	return t.Unmark(m)
}

// Decoded is an attribute value with its markers resolved.
type Decoded struct {
	// Value is the raw interpolated value when the attribute consisted of
	// exactly one marker, otherwise the concatenated string.
	Value interface{}
	// Owner is the owner of the single marker, if any.
	Owner interface{}
	// Marked reports whether any marker was found.
	Marked bool
	// Whole reports whether the value consisted of exactly one marker.
	Whole bool
}

// Decode turns an attribute value back into the value it was written
// from.
func (t *Table) Decode(s string) Decoded {
	if e, ok := t.entries[s]; ok {
		return Decoded{Value: e.Value, Owner: e.Owner, Marked: true, Whole: true}
	}
	marked := false
	out := tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		e, ok := t.entries[tok]
		if !ok {
			return tok
		}
		marked = true
		return tmpl.TextOf(e.Value)
	})
	return Decoded{Value: out, Marked: marked}
}

// Resolve replaces every known marker in s with its plain string form.
func (t *Table) Resolve(s string) string {
	return t.Decode(s).stringValue()
}

// ResolveClass replaces markers in a class attribute using the class-name
// composition rule.
func (t *Table) ResolveClass(s string) string {
	out := tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		if e, ok := t.entries[tok]; ok {
			return tmpl.ClassNames(e.Value)
		}
		return tok
	})
	return strings.Join(strings.Fields(out), " ")
}

func (d Decoded) stringValue() string {
	if s, ok := d.Value.(string); ok {
		return s
	}
	return tmpl.TextOf(d.Value)
}
