package dom

import (
	"sync"

	"github.com/conneroisu/prerender/internal/stylesheet"
)

// StyleTag is a <style> element produced from a component stylesheet. It
// carries the change scope of the template it was rendered from.
type StyleTag struct {
	Scope stylesheet.ChangeScope
	Attrs []Attr
	Text  *StyleText
}

func (*StyleTag) node() {}

// StyleText is the CSS body of a StyleTag. The parsed sheet is computed on
// first access and memoized; it is safe to recompute if discarded.
type StyleText struct {
	Scope   stylesheet.ChangeScope
	Content string

	parser stylesheet.Parser
	once   sync.Once
	sheet  stylesheet.Sheet
	err    error
}

func (*StyleText) node() {}

// NewStyleText wraps rendered CSS text. The parser is used lazily.
func NewStyleText(content string, scope stylesheet.ChangeScope, parser stylesheet.Parser) *StyleText {
	return &StyleText{Scope: scope, Content: content, parser: parser}
}

// NewStyleTag builds a style element around text.
func NewStyleTag(text *StyleText) *StyleTag {
	return &StyleTag{Scope: text.Scope, Text: text}
}

// Sheet parses Content on first use.
func (s *StyleText) Sheet() (stylesheet.Sheet, error) {
	s.once.Do(func() {
		parser := s.parser
		if parser == nil {
			parser = stylesheet.DefaultParser
		}
		s.sheet, s.err = parser.Parse(s.Content)
	})
	return s.sheet, s.err
}

// AddPrefix returns a new StyleText whose selectors are scoped to the
// class name prefix.
func (s *StyleText) AddPrefix(prefix string) (*StyleText, error) {
	sheet, err := s.Sheet()
	if err != nil {
		return nil, err
	}
	scoped := sheet.AddPrefix(prefix)
	out := &StyleText{Scope: s.Scope, Content: scoped.String(), parser: s.parser}
	out.once.Do(func() { out.sheet = scoped })
	return out, nil
}

// Serialize prints the parsed sheet back to CSS text.
func (s *StyleText) Serialize() (string, error) {
	sheet, err := s.Sheet()
	if err != nil {
		return "", err
	}
	return sheet.String(), nil
}
