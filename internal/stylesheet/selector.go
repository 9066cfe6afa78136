package stylesheet

import (
	"strings"
	"unicode"
)

// SplitSelectors splits a selector list on top-level commas.
func SplitSelectors(list string) []string {
	var (
		out   []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(list); i++ {
		ch := list[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '\\':
			i++
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(' || ch == '[':
			depth++
		case ch == ')' || ch == ']':
			depth--
		case ch == ',' && depth == 0:
			if part := strings.TrimSpace(list[start:i]); part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	if part := strings.TrimSpace(list[start:]); part != "" {
		out = append(out, part)
	}
	return out
}

// ScopeSelector restricts a complex selector to elements carrying class
// cls. Every compound gets the class; :host maps to the host element
// itself and ::slotted(x) to x below the host.
func ScopeSelector(selector, cls string) string {
	lead, compounds, combinators := splitCompounds(selector)
	if len(compounds) == 0 {
		return selector
	}

	var sb strings.Builder
	sb.WriteString(lead)
	for i, c := range compounds {
		if i > 0 {
			sb.WriteString(formatCombinator(combinators[i-1]))
		}
		sb.WriteString(scopeCompound(c, cls))
	}
	return sb.String()
}

func formatCombinator(c string) string {
	if c == " " || c == "" {
		return " "
	}
	return " " + c + " "
}

// splitCompounds breaks a complex selector into compound selectors and the
// combinators between them. A leading combinator (relative selector) is
// returned separately.
func splitCompounds(selector string) (lead string, compounds []string, combinators []string) {
	var (
		cur   strings.Builder
		comb  string
		inGap bool
		depth int
		quote rune
		esc   bool
	)

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		compounds = append(compounds, cur.String())
		cur.Reset()
	}

	for _, r := range strings.TrimSpace(selector) {
		if esc {
			cur.WriteRune(r)
			esc = false
			continue
		}
		if quote != 0 {
			cur.WriteRune(r)
			if r == '\\' {
				esc = true
			} else if r == quote {
				quote = 0
			}
			continue
		}

		isComb := depth == 0 && (unicode.IsSpace(r) || r == '>' || r == '+' || r == '~')
		if isComb {
			flush()
			inGap = true
			if r != ' ' && !unicode.IsSpace(r) {
				comb = string(r)
			} else if comb == "" {
				comb = " "
			}
			continue
		}

		if inGap {
			if len(compounds) == 0 {
				lead = strings.TrimSpace(comb) + " "
			} else {
				combinators = append(combinators, comb)
			}
			comb, inGap = "", false
		}

		switch r {
		case '\\':
			esc = true
		case '"', '\'':
			quote = r
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		}
		cur.WriteRune(r)
	}
	flush()
	return lead, compounds, combinators
}

func scopeCompound(c, cls string) string {
	dot := "." + cls
	switch {
	case strings.HasPrefix(c, ":host-context("):
		inner, rest := parenArg(c, len(":host-context"))
		return inner + " " + dot + rest
	case strings.HasPrefix(c, ":host("):
		inner, rest := parenArg(c, len(":host"))
		return dot + inner + rest
	case c == ":host" || strings.HasPrefix(c, ":host:") || strings.HasPrefix(c, ":host."):
		return dot + c[len(":host"):]
	case strings.HasPrefix(c, "::slotted("):
		inner, rest := parenArg(c, len("::slotted"))
		return dot + " " + inner + rest
	}

	idx := firstPseudo(c)
	if idx < 0 {
		return c + dot
	}
	return c[:idx] + dot + c[idx:]
}

// parenArg returns the text inside the parenthesis opening at c[open] and
// whatever follows the matching close.
func parenArg(c string, open int) (inner, rest string) {
	depth := 0
	for i := open; i < len(c); i++ {
		switch c[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return c[open+1 : i], c[i+1:]
			}
		}
	}
	return c[open+1:], ""
}

func firstPseudo(c string) int {
	depth := 0
	for i := 0; i < len(c); i++ {
		switch c[i] {
		case '\\':
			i++
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
