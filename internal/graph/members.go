package graph

import (
	"slices"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// assignment handles `name = value` and `a.b.c = value`. Other targets
// (destructuring, subscripts) are skipped; only the value is searched for
// nested functions.
func (b *builder) assignment(n *tree_sitter.Node, scope NodeID) {
	left := unwrapParens(n.ChildByFieldName("left"))
	right := n.ChildByFieldName("right")
	if left == nil || right == nil {
		return
	}
	switch left.Kind() {
	case "identifier":
		b.assignName(n, b.text(left), right, scope)
	case "member_expression":
		b.assignMember(n, left, right, scope)
	default:
		b.visit(right, scope)
	}
}

// assignName mutates the symbol name resolves to. An unresolved name leaks
// to the root as an implicit global.
func (b *builder) assignName(at *tree_sitter.Node, name string, value *tree_sitter.Node, scope NodeID) {
	found := b.lookup(scope, name)

	// The value is classified before attaching so that a function body
	// still resolves names through the scope it is written in.
	id := b.newNode(KindVariable, name, at, scope)
	b.classify(id, value, scope)

	if found == NoNode {
		b.g.Node(id).ImplicitGlobal = true
		b.g.AddChild(RootID, id)
		return
	}
	b.merge(found, id)
}

// merge folds a freshly classified value node into an existing symbol. The
// existing node keeps its position; value-like kinds are promoted in place.
func (b *builder) merge(dst, src NodeID) {
	s := b.g.Node(src)
	d := b.g.Node(dst)
	d.Literals |= s.Literals
	if s.Constructor {
		d.Constructor = true
	}
	if d.Kind == KindParameter {
		return
	}

	kind := s.Kind
	if d.Kind == KindVariable || d.Kind == KindProperty {
		switch {
		case kind.IsCallable() && d.Kind == KindProperty:
			b.g.SetKind(dst, KindMethod)
		case kind.IsCallable():
			b.g.SetKind(dst, KindFunction)
		case kind == KindObject:
			b.g.SetKind(dst, KindObject)
		}
	} else if d.Kind == KindObject && kind.IsCallable() {
		// the object's members stay on the function
		if p := d.Parent; p != NoNode && b.g.Node(p).Kind == KindObject {
			b.g.SetKind(dst, KindMethod)
		} else {
			b.g.SetKind(dst, KindFunction)
		}
	}
	if kind.IsCallable() || kind == KindObject {
		b.g.Adopt(dst, src)
	}
}

// assignMember resolves the owner chain of `a.b.c = value`, synthesizing
// implicit objects for missing segments, and attaches c to its owner.
// A `prototype` segment marks its owner as a constructor instead of
// creating a node.
func (b *builder) assignMember(at, left, value *tree_sitter.Node, scope NodeID) {
	base, names, ok := b.memberChain(left)
	if !ok {
		b.visit(value, scope)
		return
	}

	owner := NoNode
	if base.Kind() == "this" {
		owner = b.thisOwner(scope)
	} else {
		names = append([]string{b.text(base)}, names...)
	}

	for _, seg := range names[:len(names)-1] {
		if seg == "prototype" {
			if owner != NoNode && owner != RootID {
				b.promoteConstructor(owner)
			}
			continue
		}

		var next NodeID
		if owner == NoNode {
			next = b.lookup(scope, seg)
		} else {
			next = b.g.FindChild(owner, seg)
		}

		switch {
		case next == NoNode:
			parent := owner
			if parent == NoNode {
				parent = RootID
			}
			next = b.newNode(KindObject, seg, at, parent)
			b.g.Node(next).ImplicitObject = true
			b.g.AddChild(parent, next)
		case b.g.Node(next).Kind == KindParameter:
			b.visit(value, scope)
			return
		case b.g.Node(next).Kind == KindVariable || b.g.Node(next).Kind == KindProperty:
			b.g.SetKind(next, KindObject)
		}
		owner = next
	}

	last := names[len(names)-1]
	if owner == NoNode {
		b.visit(value, scope)
		return
	}

	if last == "prototype" {
		b.promoteConstructor(owner)
		if obj := unwrapParens(value); obj.Kind() == "object" {
			b.object(owner, obj)
		} else {
			b.visit(value, scope)
		}
		return
	}

	if existing := b.g.FindChild(owner, last); existing != NoNode {
		tmp := b.newNode(KindProperty, last, at, scope)
		b.g.Node(tmp).Parent = owner
		b.memberValue(tmp, value, scope)
		b.merge(existing, tmp)
		return
	}
	b.member(owner, last, at, value, scope)
}

// memberChain decomposes `a.b.c` into its base expression and the property
// names outermost-first. Only identifier and `this` bases qualify.
func (b *builder) memberChain(n *tree_sitter.Node) (*tree_sitter.Node, []string, bool) {
	var props []string
	for n != nil && n.Kind() == "member_expression" {
		prop := n.ChildByFieldName("property")
		if prop == nil {
			return nil, nil, false
		}
		props = append(props, b.text(prop))
		n = unwrapParens(n.ChildByFieldName("object"))
	}
	if n == nil || len(props) == 0 {
		return nil, nil, false
	}
	slices.Reverse(props)
	switch n.Kind() {
	case "identifier", "this":
		return n, props, true
	}
	return nil, nil, false
}

// thisOwner resolves `this` inside scope. In a plain function it is the
// function itself, which becomes a constructor; in a method it is the
// method's owner. Arrow functions and object literals are skipped for the
// scope they are written in.
func (b *builder) thisOwner(scope NodeID) NodeID {
	for scope != RootID && (b.arrows[scope] || b.g.Node(scope).Kind == KindObject) {
		scope = b.outerScope(scope)
	}
	n := b.g.Node(scope)
	switch n.Kind {
	case KindFunction:
		n.Constructor = true
		return scope
	case KindMethod:
		if n.Parent != NoNode {
			return n.Parent
		}
	}
	return scope
}

// promoteConstructor upgrades id to a constructor Function in place,
// keeping its children.
func (b *builder) promoteConstructor(id NodeID) {
	b.g.SetKind(id, KindFunction)
	b.g.Node(id).Constructor = true
}
