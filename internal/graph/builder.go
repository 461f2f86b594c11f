package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// builder carries the state of one build pass over a parse tree.
type builder struct {
	g   *Graph
	src []byte

	// outer maps each created node to the scope it textually appears in.
	// Name lookups follow it rather than Node.Scope, which is structural.
	outer map[NodeID]NodeID

	// arrows holds the scopes built from arrow functions, which take `this`
	// from the scope around them.
	arrows map[NodeID]bool
}

// BuildGraph walks a JavaScript (or TypeScript) parse tree in a single
// top-down pass and returns the symbol graph rooted at RootID.
func BuildGraph(root *tree_sitter.Node, src []byte) *Graph {
	b := &builder{
		g:      NewGraph(),
		src:    src,
		outer:  make(map[NodeID]NodeID),
		arrows: make(map[NodeID]bool),
	}
	if root != nil {
		b.walk(root, RootID)
	}
	return b.g
}

func (b *builder) walk(n *tree_sitter.Node, scope NodeID) {
	for _, c := range namedChildren(n) {
		b.visit(c, scope)
	}
}

// visit classifies one construct. Anything it does not model is descended
// into so that nested functions are still scoped.
func (b *builder) visit(n *tree_sitter.Node, scope NodeID) {
	switch n.Kind() {
	case "comment":
	case "variable_declaration", "lexical_declaration":
		b.declaration(n, scope)
	case "function_declaration", "generator_function_declaration":
		b.functionDeclaration(n, scope)
	case "class_declaration", "abstract_class_declaration":
		b.classDeclaration(n, scope)
	case "return_statement":
		b.returnStatement(n, scope)
	case "assignment_expression":
		b.assignment(n, scope)
	case "function_expression", "function", "generator_function", "arrow_function":
		b.anonymousFunction(n, scope)
	case "class":
		b.anonymousClass(n, scope)
	default:
		b.walk(n, scope)
	}
}

// newNode allocates a detached node that resolves names through scope until
// it is attached.
func (b *builder) newNode(kind Kind, name string, n *tree_sitter.Node, scope NodeID) NodeID {
	id := b.g.NewNode(kind, name, b.pos(n))
	b.g.Node(id).Scope = scope
	b.outer[id] = scope
	return id
}

// lookup resolves name through the lexical chain of scope: children, then
// parameters, then the enclosing scope, up to the root.
func (b *builder) lookup(scope NodeID, name string) NodeID {
	for s := scope; ; {
		if id := b.g.FindChild(s, name); id != NoNode {
			return id
		}
		if id := b.g.FindParam(s, name); id != NoNode {
			return id
		}
		if s == RootID {
			return NoNode
		}
		s = b.outerScope(s)
	}
}

// outerScope is the scope s is written in.
func (b *builder) outerScope(s NodeID) NodeID {
	next, ok := b.outer[s]
	if !ok || next == NoNode || next == s {
		next = b.g.enclosingScope(s)
	}
	return next
}

// ---------- Declarations ----------

// declaration splits `var a, b = 1` into one Variable per declarator. Each
// is attached before its value is classified so the value can refer to it.
func (b *builder) declaration(n *tree_sitter.Node, scope NodeID) {
	for _, d := range namedChildren(n) {
		if d.Kind() != "variable_declarator" {
			continue
		}
		name := d.ChildByFieldName("name")
		value := d.ChildByFieldName("value")
		if name == nil || name.Kind() != "identifier" {
			if value != nil {
				b.visit(value, scope)
			}
			continue
		}

		id := b.newNode(KindVariable, b.text(name), d, scope)
		b.g.Node(id).Private = scope != RootID
		b.g.AddChild(scope, id)
		if value != nil {
			b.classify(id, value, scope)
		}
	}
}

func (b *builder) functionDeclaration(n *tree_sitter.Node, scope NodeID) {
	name := n.ChildByFieldName("name")
	if name == nil {
		b.anonymousFunction(n, scope)
		return
	}
	id := b.newNode(KindFunction, b.text(name), n, scope)
	b.g.Node(id).Private = scope != RootID
	b.g.AddChild(scope, id)
	b.function(id, n)
}

func (b *builder) anonymousFunction(n *tree_sitter.Node, scope NodeID) {
	var name string
	if nm := n.ChildByFieldName("name"); nm != nil {
		name = b.text(nm)
	}
	id := b.newNode(KindFunction, name, n, scope)
	node := b.g.Node(id)
	node.Anonymous = name == ""
	node.Private = scope != RootID
	b.g.AddChild(scope, id)
	b.function(id, n)
}

// function records the parameters of fn on target and walks the body with
// target as the scope.
func (b *builder) function(target NodeID, fn *tree_sitter.Node) {
	if fn.Kind() == "arrow_function" {
		b.arrows[target] = true
	}
	b.params(target, fn)

	body := fn.ChildByFieldName("body")
	if body == nil {
		return
	}
	if body.Kind() != "statement_block" {
		// arrow function with an expression body
		b.returnValue(target, body)
		return
	}
	b.walk(body, target)
}

func (b *builder) params(target NodeID, fn *tree_sitter.Node) {
	if p := fn.ChildByFieldName("parameter"); p != nil {
		b.param(target, p)
		return
	}
	ps := fn.ChildByFieldName("parameters")
	if ps == nil {
		return
	}
	for _, p := range namedChildren(ps) {
		b.param(target, p)
	}
}

func (b *builder) param(fn NodeID, p *tree_sitter.Node) {
	switch p.Kind() {
	case "identifier":
		b.g.AddParam(fn, b.text(p))
	case "assignment_pattern":
		if left := p.ChildByFieldName("left"); left != nil {
			b.param(fn, left)
		}
	case "rest_pattern":
		for _, c := range namedChildren(p) {
			b.param(fn, c)
		}
	case "required_parameter", "optional_parameter":
		if pat := p.ChildByFieldName("pattern"); pat != nil {
			b.param(fn, pat)
		}
	}
}

// ---------- Returns ----------

func (b *builder) returnStatement(n *tree_sitter.Node, scope NodeID) {
	for _, c := range namedChildren(n) {
		if c.Kind() == "comment" {
			continue
		}
		if !b.g.Node(scope).Kind.IsCallable() {
			b.visit(c, scope)
			continue
		}
		b.returnValue(scope, c)
	}
}

// returnValue records what fn returns: object literals become returned
// shapes, other literals become literal kinds of fn.
func (b *builder) returnValue(fn NodeID, v *tree_sitter.Node) {
	v = unwrapParens(v)
	if v.Kind() == "object" {
		shape := b.newNode(KindObject, "", v, fn)
		b.g.Node(shape).Parent = fn
		b.object(shape, v)
		c := b.g.Node(fn).Callable
		c.Returns = append(c.Returns, shape)
		b.g.AddLiteral(fn, LiteralObject)
		return
	}
	if k, ok := b.literalKind(v); ok {
		b.g.AddLiteral(fn, k)
		return
	}
	b.visit(v, fn)
}

// ---------- Values ----------

// classify shapes target after the value assigned to it: functions and
// classes make it a Function, object literals an Object, literals add a
// literal kind. Anything else is only searched for nested functions.
func (b *builder) classify(target NodeID, value *tree_sitter.Node, scope NodeID) {
	value = unwrapParens(value)
	switch value.Kind() {
	case "function_expression", "function", "generator_function", "arrow_function":
		b.g.SetKind(target, KindFunction)
		b.function(target, value)
	case "class":
		b.g.SetKind(target, KindFunction)
		b.class(target, value)
	case "object":
		if !b.g.Node(target).Constructor {
			b.g.SetKind(target, KindObject)
		}
		b.object(target, value)
	case "call_expression":
		if callee := unwrapParens(value.ChildByFieldName("function")); callee != nil && isFunction(callee) {
			b.absorbCall(target, callee, value, scope)
			return
		}
		b.visit(value, scope)
	case "assignment_expression":
		// a = b = 1
		b.assignment(value, scope)
		if right := value.ChildByFieldName("right"); right != nil {
			if k, ok := b.literalKind(unwrapParens(right)); ok {
				b.g.AddLiteral(target, k)
			}
		}
	default:
		if k, ok := b.literalKind(value); ok {
			b.g.AddLiteral(target, k)
			return
		}
		b.visit(value, scope)
	}
}

// absorbCall handles `x = (function(){ ... return {...} })()`: the callee's
// members and the returned object's members move onto target, which becomes
// an Object. Without exactly one returned shape only the callee's return
// literal kind is kept.
func (b *builder) absorbCall(target NodeID, callee, call *tree_sitter.Node, scope NodeID) {
	tmp := b.newNode(KindFunction, "", callee, scope)
	b.g.Node(tmp).Anonymous = true
	b.function(tmp, callee)
	if args := call.ChildByFieldName("arguments"); args != nil {
		b.visit(args, scope)
	}

	returns := b.g.Node(tmp).Callable.Returns
	if len(returns) != 1 {
		if lits := b.g.Node(tmp).Literals; lits.Len() == 1 {
			b.g.AddLiteral(target, lits.Inferred())
		}
		return
	}
	if !b.g.Node(target).Constructor {
		b.g.SetKind(target, KindObject)
	}
	// Locals are adopted last so `return { f: f }` keeps the function f.
	b.g.Adopt(target, returns[0])
	b.g.Adopt(target, tmp)
}

// object adds the members of an object literal to owner.
func (b *builder) object(owner NodeID, obj *tree_sitter.Node) {
	for _, m := range namedChildren(obj) {
		switch m.Kind() {
		case "pair":
			value := m.ChildByFieldName("value")
			name, ok := b.propertyName(m.ChildByFieldName("key"))
			if !ok {
				if value != nil {
					b.visit(value, owner)
				}
				continue
			}
			b.member(owner, name, m, value, owner)
		case "method_definition":
			name, ok := b.propertyName(m.ChildByFieldName("name"))
			if !ok {
				continue
			}
			id := b.newNode(KindMethod, name, m, owner)
			b.g.AddChild(owner, id)
			b.function(id, m)
		case "shorthand_property_identifier":
			id := b.newNode(KindProperty, b.text(m), m, owner)
			b.g.AddChild(owner, id)
		default:
			b.visit(m, owner)
		}
	}
}

// member attaches a named member to owner and classifies its value:
// functions become Methods, object literals Objects, the rest Properties.
// lex is the scope the value textually appears in.
func (b *builder) member(owner NodeID, name string, at, value *tree_sitter.Node, lex NodeID) NodeID {
	id := b.newNode(KindProperty, name, at, lex)
	b.g.AddChild(owner, id)
	if value != nil {
		b.memberValue(id, value, lex)
	}
	return id
}

// memberValue classifies the value of a member. A function value makes id a
// Method before its body is walked, so `this` inside resolves to the owner.
func (b *builder) memberValue(id NodeID, value *tree_sitter.Node, lex NodeID) {
	if v := unwrapParens(value); isFunction(v) {
		b.g.SetKind(id, KindMethod)
		b.function(id, v)
		return
	}
	b.classify(id, value, lex)
}

// ---------- Classes ----------

func (b *builder) classDeclaration(n *tree_sitter.Node, scope NodeID) {
	name := n.ChildByFieldName("name")
	if name == nil {
		b.anonymousClass(n, scope)
		return
	}
	id := b.newNode(KindFunction, b.text(name), n, scope)
	b.g.Node(id).Private = scope != RootID
	b.g.AddChild(scope, id)
	b.class(id, n)
}

func (b *builder) anonymousClass(n *tree_sitter.Node, scope NodeID) {
	var name string
	if nm := n.ChildByFieldName("name"); nm != nil {
		name = b.text(nm)
	}
	id := b.newNode(KindFunction, name, n, scope)
	b.g.Node(id).Anonymous = name == ""
	b.g.AddChild(scope, id)
	b.class(id, n)
}

// class builds a constructor Function. The `constructor` method lends its
// parameters and body to the class itself.
func (b *builder) class(target NodeID, n *tree_sitter.Node) {
	b.g.SetKind(target, KindFunction)
	b.g.Node(target).Constructor = true

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for _, m := range namedChildren(body) {
		switch m.Kind() {
		case "method_definition":
			name, ok := b.propertyName(m.ChildByFieldName("name"))
			if !ok {
				continue
			}
			if name == "constructor" {
				b.function(target, m)
				continue
			}
			id := b.newNode(KindMethod, name, m, target)
			b.g.AddChild(target, id)
			b.function(id, m)
		case "field_definition", "public_field_definition":
			key := m.ChildByFieldName("property")
			if key == nil {
				key = m.ChildByFieldName("name")
			}
			name, ok := b.propertyName(key)
			if !ok {
				continue
			}
			b.member(target, name, m, m.ChildByFieldName("value"), target)
		}
	}
}

// ---------- Helpers ----------

// literalKind maps a literal expression to its literal kind.
func (b *builder) literalKind(n *tree_sitter.Node) (LiteralKind, bool) {
	switch n.Kind() {
	case "string", "template_string":
		return LiteralString, true
	case "number":
		return LiteralNumber, true
	case "true", "false":
		return LiteralBoolean, true
	case "null":
		return LiteralNull, true
	case "this":
		return LiteralThis, true
	case "regex":
		return LiteralRegExp, true
	case "unary_expression":
		arg := n.ChildByFieldName("argument")
		op := n.ChildByFieldName("operator")
		if arg == nil || op == nil {
			return "", false
		}
		switch b.text(op) {
		case "-", "+":
			if arg.Kind() == "number" {
				return LiteralNumber, true
			}
		case "!":
			return LiteralBoolean, true
		}
	}
	return "", false
}

// propertyName resolves an object key or member name. Computed keys have
// no usable name.
func (b *builder) propertyName(n *tree_sitter.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind() {
	case "property_identifier", "identifier", "private_property_identifier",
		"shorthand_property_identifier", "number":
		return b.text(n), true
	case "string":
		s := strings.Trim(b.text(n), "\"'")
		return s, s != ""
	}
	return "", false
}

func (b *builder) text(n *tree_sitter.Node) string {
	return n.Utf8Text(b.src)
}

func (b *builder) pos(n *tree_sitter.Node) Position {
	return Position{Line: int(n.StartPosition().Row) + 1, Offset: int(n.StartByte())}
}

func namedChildren(n *tree_sitter.Node) []*tree_sitter.Node {
	count := n.NamedChildCount()
	out := make([]*tree_sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func unwrapParens(n *tree_sitter.Node) *tree_sitter.Node {
	for n != nil && n.Kind() == "parenthesized_expression" {
		inner := firstNamed(n)
		if inner == nil {
			break
		}
		n = inner
	}
	return n
}

func firstNamed(n *tree_sitter.Node) *tree_sitter.Node {
	for _, c := range namedChildren(n) {
		if c.Kind() != "comment" {
			return c
		}
	}
	return nil
}

func isFunction(n *tree_sitter.Node) bool {
	switch n.Kind() {
	case "function_expression", "function", "generator_function", "arrow_function":
		return true
	}
	return false
}
