package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parser turns markup text into a node forest.
type Parser interface {
	Parse(markup string) ([]Node, error)
}

// HTMLParser parses markup as an HTML body fragment using x/net/html.
// Comments and doctypes are dropped.
type HTMLParser struct{}

// DefaultParser is the parser used when none is configured.
var DefaultParser Parser = HTMLParser{}

var bodyContext = &html.Node{
	Type:     html.ElementNode,
	Data:     "body",
	DataAtom: atom.Body,
}

// Parse implements Parser.
func (HTMLParser) Parse(markup string) ([]Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), bodyContext)
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if converted := convert(n); converted != nil {
			out = append(out, converted)
		}
	}
	return out, nil
}

func convert(n *html.Node) Node {
	switch n.Type {
	case html.TextNode:
		return &Text{Content: n.Data}
	case html.ElementNode:
		tag := &Tag{Name: n.Data, SelfClosing: IsVoid(n.Data)}
		if len(n.Attr) > 0 {
			tag.Attrs = make([]Attr, 0, len(n.Attr))
			for _, a := range n.Attr {
				name := a.Key
				if a.Namespace != "" {
					name = a.Namespace + ":" + a.Key
				}
				tag.Attrs = append(tag.Attrs, Attr{Name: name, Value: a.Val})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := convert(c); child != nil {
				tag.Children = append(tag.Children, child)
			}
		}
		return tag
	default:
		return nil
	}
}
