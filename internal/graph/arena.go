package graph

import (
	"slices"
	"strings"
)

// Graph is the arena owning every Node and Comment of one script. All links
// between entries are handles into these slices.
type Graph struct {
	Nodes    []Node    `json:"nodes"`
	Comments []Comment `json:"comments"`
}

// RootID is the handle of the synthetic root node of every Graph.
const RootID NodeID = 0

// NewGraph returns a graph holding only the root node, whose scope is itself.
func NewGraph() *Graph {
	g := &Graph{}
	root := g.NewNode(KindRoot, "", Position{Line: 0, Offset: 0})
	g.Node(root).Scope = root
	return g
}

// Node returns the node addressed by id. The pointer is invalidated by the
// next NewNode call.
func (g *Graph) Node(id NodeID) *Node {
	return &g.Nodes[id]
}

// Comment returns the comment addressed by id.
func (g *Graph) Comment(id CommentID) *Comment {
	return &g.Comments[id]
}

// NewNode allocates a detached node.
func (g *Graph) NewNode(kind Kind, name string, pos Position) NodeID {
	id := NodeID(len(g.Nodes))
	g.Nodes = append(g.Nodes, Node{
		ID:          id,
		Kind:        kind,
		Name:        name,
		Pos:         pos,
		Parent:      NoNode,
		Scope:       NoNode,
		FirstChild:  NoNode,
		PrevSibling: NoNode,
		NextSibling: NoNode,
		PrevComment: NoComment,
		NextComment: NoComment,
	})
	if kind.IsCallable() {
		g.Nodes[id].Callable = &Callable{}
	}
	return id
}

// SetKind changes a node's kind in place, allocating or keeping the callable
// payload as needed. Children are never touched.
func (g *Graph) SetKind(id NodeID, kind Kind) {
	n := g.Node(id)
	n.Kind = kind
	if kind.IsCallable() && n.Callable == nil {
		n.Callable = &Callable{}
	}
}

// AddChild attaches child under parent. A named child replaces any existing
// child of the same name; anonymous children never collide.
func (g *Graph) AddChild(parent, child NodeID) {
	if name := g.Node(child).Name; name != "" {
		if old := g.FindChild(parent, name); old != NoNode && old != child {
			g.detach(parent, old)
		}
	}

	p := g.Node(parent)
	if !slices.Contains(p.Children, child) {
		p.Children = append(p.Children, child)
	}

	c := g.Node(child)
	c.Parent = parent
	if g.Node(parent).Kind.IsScope() {
		c.Scope = parent
	} else {
		c.Scope = g.Node(parent).Scope
	}
	g.rebuildSiblings(parent)
}

// RemoveChild detaches child from parent and relinks the remaining siblings.
func (g *Graph) RemoveChild(parent, child NodeID) {
	g.detach(parent, child)
	g.rebuildSiblings(parent)
}

func (g *Graph) detach(parent, child NodeID) {
	p := g.Node(parent)
	p.Children = slices.DeleteFunc(p.Children, func(id NodeID) bool { return id == child })
	c := g.Node(child)
	c.Parent = NoNode
	c.PrevSibling = NoNode
	c.NextSibling = NoNode
}

// rebuildSiblings relinks the sibling chain of parent in ascending offset
// order. Children sharing an offset keep their insertion order.
func (g *Graph) rebuildSiblings(parent NodeID) {
	ordered := slices.Clone(g.Node(parent).Children)
	slices.SortStableFunc(ordered, func(a, b NodeID) int {
		return g.Nodes[a].Pos.Offset - g.Nodes[b].Pos.Offset
	})

	prev := NoNode
	for _, id := range ordered {
		n := g.Node(id)
		n.PrevSibling = prev
		n.NextSibling = NoNode
		if prev != NoNode {
			g.Node(prev).NextSibling = id
		}
		prev = id
	}

	first := NoNode
	if len(ordered) > 0 {
		first = ordered[0]
	}
	g.Node(parent).FirstChild = first
}

// OrderedChildren walks the sibling chain of id.
func (g *Graph) OrderedChildren(id NodeID) []NodeID {
	var out []NodeID
	for c := g.Node(id).FirstChild; c != NoNode; c = g.Node(c).NextSibling {
		out = append(out, c)
	}
	return out
}

// FindChild returns the direct child of parent named name, or NoNode.
func (g *Graph) FindChild(parent NodeID, name string) NodeID {
	if name == "" {
		return NoNode
	}
	for _, id := range g.Node(parent).Children {
		if g.Nodes[id].Name == name {
			return id
		}
	}
	return NoNode
}

// FindParam returns the parameter of a callable node named name, or NoNode.
func (g *Graph) FindParam(fn NodeID, name string) NodeID {
	c := g.Node(fn).Callable
	if c == nil {
		return NoNode
	}
	for _, id := range c.Params {
		if g.Nodes[id].Name == name {
			return id
		}
	}
	return NoNode
}

// Lookup resolves name along the scope chain starting at scope: each scope's
// children, then its parameters when it is callable.
func (g *Graph) Lookup(scope NodeID, name string) NodeID {
	if name == "" {
		return NoNode
	}
	for s := scope; s != NoNode; {
		if id := g.FindChild(s, name); id != NoNode {
			return id
		}
		if id := g.FindParam(s, name); id != NoNode {
			return id
		}
		if s == RootID {
			break
		}
		s = g.enclosingScope(s)
	}
	return NoNode
}

// enclosingScope steps from a scope to the next one outward. Detached nodes
// fall back to the root.
func (g *Graph) enclosingScope(id NodeID) NodeID {
	n := g.Node(id)
	if n.Scope != NoNode && n.Scope != id {
		return n.Scope
	}
	return RootID
}

// AddParam appends a parameter node to a callable node.
func (g *Graph) AddParam(fn NodeID, name string) NodeID {
	id := g.NewNode(KindParameter, name, NoPosition)
	if g.Node(fn).Callable == nil {
		g.Node(fn).Callable = &Callable{}
	}
	p := g.Node(id)
	p.Parent = fn
	p.Scope = fn
	c := g.Node(fn).Callable
	c.Params = append(c.Params, id)
	return id
}

// ParamNames lists the parameter names of a callable node.
func (g *Graph) ParamNames(id NodeID) []string {
	c := g.Node(id).Callable
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Params))
	for _, p := range c.Params {
		names = append(names, g.Nodes[p].Name)
	}
	return names
}

// Adopt moves every child of src onto dst, replacing same-named children.
// Parameters and returned shapes move too when both nodes are callable.
func (g *Graph) Adopt(dst, src NodeID) {
	for _, child := range slices.Clone(g.Node(src).Children) {
		g.detach(src, child)
		g.AddChild(dst, child)
	}
	g.rebuildSiblings(src)

	sc := g.Node(src).Callable
	dc := g.Node(dst).Callable
	if sc == nil || dc == nil {
		return
	}
	if len(sc.Params) > 0 {
		for _, p := range sc.Params {
			g.Node(p).Parent = dst
			g.Node(p).Scope = dst
		}
		dc.Params = sc.Params
	}
	for _, r := range sc.Returns {
		g.Node(r).Parent = dst
	}
	dc.Returns = append(dc.Returns, sc.Returns...)
	sc.Params = nil
	sc.Returns = nil
}

// QualifiedName joins the names of id and its named ancestors up to the
// root, e.g. "a.b.c". Anonymous ancestors are skipped.
func (g *Graph) QualifiedName(id NodeID) string {
	var parts []string
	for cur := id; cur != NoNode && cur != RootID; cur = g.Node(cur).Parent {
		if name := g.Node(cur).Name; name != "" {
			parts = append(parts, name)
		}
	}
	slices.Reverse(parts)
	return strings.Join(parts, ".")
}

// ObjectChain returns the ancestors of id from the outermost non-root node
// down to its parent.
func (g *Graph) ObjectChain(id NodeID) []NodeID {
	var chain []NodeID
	for cur := g.Node(id).Parent; cur != NoNode && cur != RootID; cur = g.Node(cur).Parent {
		chain = append(chain, cur)
	}
	slices.Reverse(chain)
	return chain
}
