package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html/atom"
)

var voidElements = map[atom.Atom]bool{
	atom.Area:   true,
	atom.Base:   true,
	atom.Br:     true,
	atom.Col:    true,
	atom.Embed:  true,
	atom.Hr:     true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Link:   true,
	atom.Meta:   true,
	atom.Param:  true,
	atom.Source: true,
	atom.Track:  true,
	atom.Wbr:    true,
}

var rawTextElements = map[atom.Atom]bool{
	atom.Style:  true,
	atom.Script: true,
}

// IsVoid reports whether name is an HTML void element.
func IsVoid(name string) bool {
	return voidElements[atom.Lookup([]byte(name))]
}

// IsRawText reports whether the content of name is not entity-escaped.
func IsRawText(name string) bool {
	return rawTextElements[atom.Lookup([]byte(name))]
}

var (
	attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;")
	textEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")
)

// EscapeAttr escapes an attribute value for a double-quoted context.
func EscapeAttr(s string) string { return attrEscaper.Replace(s) }

// EscapeText escapes character data.
func EscapeText(s string) string { return textEscaper.Replace(s) }

// Render writes the serialized forest to w.
func Render(w io.Writer, nodes ...Node) error {
	var sb strings.Builder
	for _, n := range nodes {
		if err := writeNode(&sb, n, false); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// String serializes the forest.
func String(nodes ...Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		_ = writeNode(&sb, n, false)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n Node, raw bool) error {
	switch node := n.(type) {
	case nil:
		return nil
	case *Text:
		if raw {
			sb.WriteString(node.Content)
		} else {
			sb.WriteString(EscapeText(node.Content))
		}
	case *StyleText:
		sb.WriteString(node.Content)
	case *Fragment:
		for _, c := range node.Children {
			if err := writeNode(sb, c, raw); err != nil {
				return err
			}
		}
	case *StyleTag:
		sb.WriteString("<style")
		writeAttrs(sb, node.Attrs)
		sb.WriteByte('>')
		if node.Text != nil {
			sb.WriteString(node.Text.Content)
		}
		sb.WriteString("</style>")
	case *Tag:
		sb.WriteByte('<')
		sb.WriteString(node.Name)
		writeAttrs(sb, node.Attrs)
		sb.WriteByte('>')
		if node.SelfClosing || (IsVoid(node.Name) && len(node.Children) == 0) {
			return nil
		}
		childRaw := IsRawText(node.Name)
		for _, c := range node.Children {
			if err := writeNode(sb, c, childRaw); err != nil {
				return err
			}
		}
		sb.WriteString("</")
		sb.WriteString(node.Name)
		sb.WriteByte('>')
	}
	return nil
}

func writeAttrs(sb *strings.Builder, attrs []Attr) {
	for _, a := range attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		if a.Value == "" {
			continue
		}
		sb.WriteString(`="`)
		sb.WriteString(EscapeAttr(a.Value))
		sb.WriteByte('"')
	}
}
