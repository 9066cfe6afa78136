package dom

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"
)

// Dump renders the forest as an indented tree for debugging.
func Dump(nodes ...Node) string {
	tree := treeprint.NewWithRoot("#fragment")
	for _, n := range nodes {
		dumpNode(tree, n)
	}
	return tree.String()
}

func dumpNode(tree treeprint.Tree, n Node) {
	switch node := n.(type) {
	case *Text:
		tree.AddNode(fmt.Sprintf("#text %q", node.Content))
	case *StyleText:
		tree.AddNode(fmt.Sprintf("#css[%s] %q", node.Scope, node.Content))
	case *StyleTag:
		branch := tree.AddBranch(fmt.Sprintf("<style> [%s]", node.Scope))
		if node.Text != nil {
			dumpNode(branch, node.Text)
		}
	case *Fragment:
		branch := tree.AddBranch("#fragment")
		for _, c := range node.Children {
			dumpNode(branch, c)
		}
	case *Tag:
		label := "<" + node.Name + formatAttrs(node.Attrs) + ">"
		if len(node.Children) == 0 {
			tree.AddNode(label)
			return
		}
		branch := tree.AddBranch(label)
		for _, c := range node.Children {
			dumpNode(branch, c)
		}
	}
}

func formatAttrs(attrs []Attr) string {
	var sb strings.Builder
	for _, a := range attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		if a.Value != "" {
			sb.WriteString(`="`)
			sb.WriteString(EscapeAttr(a.Value))
			sb.WriteByte('"')
		}
	}
	return sb.String()
}
