package dom

// Replacement is what a Visitor returns for a node it wants to rewrite.
// When Stop is false the replacement's children are walked in turn.
type Replacement struct {
	Node Node
	Stop bool
}

// Visitor inspects a single node. Returning nil leaves the node as is and
// continues into its children.
type Visitor func(n Node) *Replacement

// Walk applies v to every node of the forest and returns the rewritten
// forest. Input nodes are never modified. Fragments returned by the
// visitor are spliced into the surrounding child list.
func Walk(nodes []Node, v Visitor) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, walkNode(n, v)...)
	}
	return out
}

// WalkNode is Walk for a single root.
func WalkNode(n Node, v Visitor) []Node {
	return walkNode(n, v)
}

func walkNode(n Node, v Visitor) []Node {
	if n == nil {
		return nil
	}
	if f, ok := n.(*Fragment); ok {
		return Walk(f.Children, v)
	}

	current, stop := n, false
	if r := v(n); r != nil {
		current, stop = r.Node, r.Stop
	}
	if current == nil {
		return nil
	}

	switch node := current.(type) {
	case *Fragment:
		if stop {
			return Flatten(node.Children)
		}
		return Walk(node.Children, v)
	case *Tag:
		if stop || len(node.Children) == 0 {
			return []Node{node}
		}
		return []Node{node.WithChildren(Walk(node.Children, v))}
	default:
		return []Node{current}
	}
}

// Find returns the first node in document order for which match is true.
// Descent stops below nodes for which descend returns false.
func Find(nodes []Node, match func(*Tag) bool, descend func(*Tag) bool) *Tag {
	for _, n := range Flatten(nodes) {
		t, ok := n.(*Tag)
		if !ok {
			continue
		}
		if match(t) {
			return t
		}
		if descend != nil && !descend(t) {
			continue
		}
		if found := Find(t.Children, match, descend); found != nil {
			return found
		}
	}
	return nil
}
