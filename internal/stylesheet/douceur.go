package stylesheet

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/gorilla/css/scanner"
)

// DouceurParser parses CSS with github.com/aymerick/douceur.
type DouceurParser struct{}

// Parse implements Parser. Input douceur would silently repair, such as
// an unterminated block or a declaration without a value, is rejected.
func (DouceurParser) Parse(cssText string) (Sheet, error) {
	if err := checkBlocks(cssText); err != nil {
		return nil, err
	}
	parsed, err := parser.Parse(cssText)
	if err != nil {
		return nil, err
	}
	if err := checkDeclarations(parsed.Rules); err != nil {
		return nil, err
	}
	return &douceurSheet{css: parsed}, nil
}

// checkBlocks requires every "{" to be closed by a matching "}".
func checkBlocks(cssText string) error {
	var open []*scanner.Token
	s := scanner.New(cssText)
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			if len(open) > 0 {
				last := open[len(open)-1]
				return fmt.Errorf("unterminated block opened at line %d, column %d", last.Line, last.Column)
			}
			return nil
		case scanner.TokenError:
			return fmt.Errorf("invalid token at line %d, column %d: %q", tok.Line, tok.Column, tok.Value)
		case scanner.TokenChar:
			switch tok.Value {
			case "{":
				open = append(open, tok)
			case "}":
				if len(open) == 0 {
					return fmt.Errorf("unexpected } at line %d, column %d", tok.Line, tok.Column)
				}
				open = open[:len(open)-1]
			}
		}
	}
}

func checkDeclarations(rules []*css.Rule) error {
	for _, r := range rules {
		for _, d := range r.Declarations {
			if strings.TrimSpace(d.Value) == "" {
				return fmt.Errorf("declaration %q in %q has no value", d.Property, r.Prelude)
			}
		}
		if err := checkDeclarations(r.Rules); err != nil {
			return err
		}
	}
	return nil
}

type douceurSheet struct {
	css *css.Stylesheet
}

// at-rules whose block holds qualified rules that must be scoped too
var scopedAtRules = map[string]bool{
	"@media":     true,
	"@supports":  true,
	"@document":  true,
	"@container": true,
	"@layer":     true,
}

func (s *douceurSheet) AddPrefix(prefix string) Sheet {
	out := &css.Stylesheet{Rules: make([]*css.Rule, 0, len(s.css.Rules))}
	for _, r := range s.css.Rules {
		out.Rules = append(out.Rules, prefixRule(r, prefix))
	}
	return &douceurSheet{css: out}
}

func prefixRule(r *css.Rule, prefix string) *css.Rule {
	c := *r
	switch {
	case r.Kind == css.QualifiedRule:
		selectors := SplitSelectors(r.Prelude)
		if len(selectors) == 0 {
			selectors = r.Selectors
		}
		c.Selectors = make([]string, len(selectors))
		for i, sel := range selectors {
			c.Selectors[i] = ScopeSelector(strings.TrimSpace(sel), prefix)
		}
		c.Prelude = strings.Join(c.Selectors, ", ")
	case scopedAtRules[strings.ToLower(r.Name)] && len(r.Rules) > 0:
		c.Rules = make([]*css.Rule, len(r.Rules))
		for i, nested := range r.Rules {
			c.Rules[i] = prefixRule(nested, prefix)
		}
	}
	return &c
}

func (s *douceurSheet) Selectors() []string {
	var out []string
	var collect func(rules []*css.Rule)
	collect = func(rules []*css.Rule) {
		for _, r := range rules {
			if r.Kind == css.QualifiedRule {
				out = append(out, r.Selectors...)
				continue
			}
			collect(r.Rules)
		}
	}
	collect(s.css.Rules)
	return out
}

func (s *douceurSheet) String() string {
	return s.css.String()
}
