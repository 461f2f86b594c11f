package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func parseJS(t *testing.T, src string) *ScriptFile {
	t.Helper()
	return parseLang(t, src, LangJavaScript)
}

func parseLang(t *testing.T, src string, lang Language) *ScriptFile {
	t.Helper()
	sf, err := NewTreeSitterParser().Parse(context.Background(), "test.js", []byte(src), lang)
	require.NoError(t, err)
	return sf
}

// mustChild returns the child of parent named name, failing the test when
// it is missing.
func mustChild(t *testing.T, g *Graph, parent NodeID, name string) *Node {
	t.Helper()
	id := g.FindChild(parent, name)
	require.NotEqual(t, NoNode, id, "%q should be a child of %q", name, g.Node(parent).Name)
	return g.Node(id)
}

func childNames(g *Graph, id NodeID) []string {
	var names []string
	for _, c := range g.OrderedChildren(id) {
		names = append(names, g.Node(c).Name)
	}
	return names
}

// ---------------------------------------------------------------------------
// Behaviour scenarios
// ---------------------------------------------------------------------------

func TestBuild_RedefinitionUnionsLiterals(t *testing.T) {
	sf := parseJS(t, `var x = "a"; x = 5;`)
	g := sf.Graph

	assert.Len(t, g.Node(RootID).Children, 1)
	x := mustChild(t, g, RootID, "x")
	assert.Equal(t, KindVariable, x.Kind)
	assert.Equal(t, []LiteralKind{LiteralString, LiteralNumber}, x.Literals.Kinds())
	assert.Equal(t, LiteralUnknown, x.InferredKind())
	assert.Equal(t, 4, x.Pos.Offset, "the declaration site is kept")
	assert.False(t, x.ImplicitGlobal)
}

func TestBuild_PrototypeMethod(t *testing.T) {
	sf := parseJS(t, "function Foo(){}\nFoo.prototype.bar = function(){};")
	g := sf.Graph

	foo := mustChild(t, g, RootID, "Foo")
	assert.Equal(t, KindFunction, foo.Kind)
	assert.True(t, foo.Constructor)

	bar := mustChild(t, g, foo.ID, "bar")
	assert.Equal(t, KindMethod, bar.Kind)
	assert.Equal(t, foo.ID, bar.Scope)
	assert.Equal(t, NoNode, g.FindChild(foo.ID, "prototype"))
}

func TestBuild_ImplicitGlobal(t *testing.T) {
	sf := parseJS(t, "function outer() {\n  function inner() {\n    y = 1;\n  }\n}\n")
	g := sf.Graph

	y := mustChild(t, g, RootID, "y")
	assert.Equal(t, KindVariable, y.Kind)
	assert.True(t, y.ImplicitGlobal)
	assert.Equal(t, RootID, y.Parent)
	assert.Equal(t, RootID, y.Scope)
	assert.Equal(t, LiteralNumber, y.InferredKind())
	assert.Equal(t, 3, y.Pos.Line)

	outer := mustChild(t, g, RootID, "outer")
	inner := mustChild(t, g, outer.ID, "inner")
	assert.True(t, inner.Private)
	assert.Empty(t, inner.Children)
}

func TestBuild_ImplicitObjects(t *testing.T) {
	sf := parseJS(t, `a.b.c = "x";`)
	g := sf.Graph

	a := mustChild(t, g, RootID, "a")
	assert.Equal(t, KindObject, a.Kind)
	assert.True(t, a.ImplicitObject)

	b := mustChild(t, g, a.ID, "b")
	assert.Equal(t, KindObject, b.Kind)
	assert.True(t, b.ImplicitObject)
	assert.Equal(t, "a.b", g.QualifiedName(b.ID))

	c := mustChild(t, g, b.ID, "c")
	assert.Equal(t, KindProperty, c.Kind)
	assert.Equal(t, []LiteralKind{LiteralString}, c.Literals.Kinds())
	assert.Equal(t, "a.b.c", g.QualifiedName(c.ID))
}

func TestBuild_LeadingCommentBindsToFunction(t *testing.T) {
	sf := parseJS(t, "/* Adds two numbers. */\nfunction add(a, b) { return a + b; }\n")
	g := sf.Graph

	require.Len(t, sf.Comments, 1)
	c := g.Comment(sf.Comments[0])
	add := mustChild(t, g, RootID, "add")

	assert.Equal(t, "/* Adds two numbers. */", c.Text)
	assert.Equal(t, Position{Line: 1, Offset: 0}, c.Pos)
	assert.Equal(t, c.ID, add.PrevComment)
	assert.Equal(t, add.ID, c.NextSibling)
	assert.Equal(t, NoNode, c.PrevSibling)

	doc, ok := g.DocFor(add.ID)
	require.True(t, ok)
	assert.Equal(t, "Adds two numbers.", doc.Body())
}

func TestBuild_EmptyFile(t *testing.T) {
	sf := parseJS(t, "")
	g := sf.Graph

	root := g.Node(sf.Root)
	assert.Equal(t, KindRoot, root.Kind)
	assert.Equal(t, RootID, root.Scope)
	assert.Empty(t, root.Children)
	assert.Equal(t, NoNode, root.FirstChild)
	assert.Empty(t, sf.Comments)
	assert.Empty(t, g.Flatten(sf.Root))
}

// ---------------------------------------------------------------------------
// Structural invariants
// ---------------------------------------------------------------------------

const mixedSource = `
var counter = 0;
var App = function(el) {
  this.el = el;
  var local = "x";
  leaked = true;
};
App.prototype.render = function() { return this.el; };
App.VERSION = "1.0";
var config = { debug: false, nested: { level: 2 }, handler: function(evt) {} };
function util(a, b) { return { sum: a + b }; }
`

func TestBuild_Invariants(t *testing.T) {
	sf := parseJS(t, mixedSource)
	g := sf.Graph

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.ID == RootID || n.Parent == NoNode || n.Kind == KindParameter {
			continue
		}

		// Named children are unique per parent.
		if n.Name != "" {
			assert.Equal(t, n.ID, g.FindChild(n.Parent, n.Name), "duplicate child %q", n.Name)
		}
		if n.ImplicitGlobal {
			assert.Equal(t, RootID, n.Parent, "%s leaks to the root", n.Name)
		}

		parent := g.Node(n.Parent)
		if parent.Kind.IsScope() {
			assert.Equal(t, n.Parent, n.Scope, "%s scope", n.Name)
		} else {
			assert.Equal(t, parent.Scope, n.Scope, "%s inherits scope", n.Name)
		}
	}

	for i := range g.Nodes {
		kids := g.OrderedChildren(NodeID(i))
		for j := 1; j < len(kids); j++ {
			assert.LessOrEqual(t, g.Node(kids[j-1]).Pos.Offset, g.Node(kids[j]).Pos.Offset)
		}
	}

	flat := g.Flatten(sf.Root)
	for i := 1; i < len(flat); i++ {
		assert.LessOrEqual(t, g.Node(flat[i-1]).Pos.Offset, g.Node(flat[i]).Pos.Offset)
	}
	assert.Equal(t, g.Descendants(sf.Root), len(flat))
}

func TestBuild_MixedSource(t *testing.T) {
	sf := parseJS(t, mixedSource)
	g := sf.Graph

	assert.Equal(t, []string{"counter", "App", "leaked", "config", "util"}, childNames(g, RootID))

	app := mustChild(t, g, RootID, "App")
	assert.Equal(t, KindFunction, app.Kind)
	assert.True(t, app.Constructor)
	assert.Equal(t, []string{"el"}, g.ParamNames(app.ID))
	assert.Equal(t, []string{"el", "local", "render", "VERSION"}, childNames(g, app.ID))
	assert.True(t, mustChild(t, g, app.ID, "local").Private)
	assert.Equal(t, KindMethod, mustChild(t, g, app.ID, "render").Kind)
	assert.Equal(t, LiteralString, mustChild(t, g, app.ID, "VERSION").InferredKind())
	assert.Equal(t, "App.render", g.QualifiedName(mustChild(t, g, app.ID, "render").ID))

	leaked := mustChild(t, g, RootID, "leaked")
	assert.True(t, leaked.ImplicitGlobal)
	assert.Equal(t, LiteralBoolean, leaked.InferredKind())

	config := mustChild(t, g, RootID, "config")
	assert.Equal(t, KindObject, config.Kind)
	assert.False(t, config.Private)
	assert.Equal(t, LiteralBoolean, mustChild(t, g, config.ID, "debug").InferredKind())
	nested := mustChild(t, g, config.ID, "nested")
	assert.Equal(t, KindObject, nested.Kind)
	assert.Equal(t, LiteralNumber, mustChild(t, g, nested.ID, "level").InferredKind())
	handler := mustChild(t, g, config.ID, "handler")
	assert.Equal(t, KindMethod, handler.Kind)
	assert.Equal(t, []string{"evt"}, g.ParamNames(handler.ID))

	util := mustChild(t, g, RootID, "util")
	assert.Equal(t, []string{"a", "b"}, g.ParamNames(util.ID))
	require.Len(t, util.Callable.Returns, 1)
	shape := g.Node(util.Callable.Returns[0])
	assert.Equal(t, KindObject, shape.Kind)
	assert.Equal(t, util.ID, shape.Parent)
	assert.Equal(t, []string{"sum"}, childNames(g, shape.ID))
	assert.True(t, util.Literals.Has(LiteralObject))
}

func TestBuild_Deterministic(t *testing.T) {
	first := BuildRecords(parseJS(t, mixedSource))
	second := BuildRecords(parseJS(t, mixedSource))
	assert.Equal(t, first, second)
}

// ---------------------------------------------------------------------------
// Declarations and assignments
// ---------------------------------------------------------------------------

func TestBuild_RedeclarationReplaces(t *testing.T) {
	sf := parseJS(t, `var a = 1; var a = "s";`)
	g := sf.Graph

	assert.Len(t, g.Node(RootID).Children, 1)
	assert.Equal(t, LiteralString, mustChild(t, g, RootID, "a").InferredKind())
}

func TestBuild_MultipleDeclarators(t *testing.T) {
	sf := parseJS(t, `let a = 1, b = null, c = /re/g, d = -2, e = !0, f;`)
	g := sf.Graph

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, childNames(g, RootID))
	assert.Equal(t, LiteralNumber, mustChild(t, g, RootID, "a").InferredKind())
	assert.Equal(t, LiteralNull, mustChild(t, g, RootID, "b").InferredKind())
	assert.Equal(t, LiteralRegExp, mustChild(t, g, RootID, "c").InferredKind())
	assert.Equal(t, LiteralNumber, mustChild(t, g, RootID, "d").InferredKind())
	assert.Equal(t, LiteralBoolean, mustChild(t, g, RootID, "e").InferredKind())
	assert.Equal(t, 0, mustChild(t, g, RootID, "f").Literals.Len())
}

func TestBuild_ClosureAssignmentResolvesLexically(t *testing.T) {
	src := `
function outer() {
  var local = 1;
  window.handler = function() { local = 2; other = 3; };
}
`
	sf := parseJS(t, src)
	g := sf.Graph

	outer := mustChild(t, g, RootID, "outer")
	local := mustChild(t, g, outer.ID, "local")
	assert.Equal(t, []LiteralKind{LiteralNumber}, local.Literals.Kinds())
	assert.Equal(t, NoNode, g.FindChild(RootID, "local"))

	window := mustChild(t, g, RootID, "window")
	assert.True(t, window.ImplicitObject)
	assert.Equal(t, KindMethod, mustChild(t, g, window.ID, "handler").Kind)

	assert.True(t, mustChild(t, g, RootID, "other").ImplicitGlobal)
}

func TestBuild_ParameterAssignment(t *testing.T) {
	sf := parseJS(t, `function f(a, b = 1, ...rest) { a = "s"; a.x = 1; }`)
	g := sf.Graph

	f := mustChild(t, g, RootID, "f")
	assert.Equal(t, []string{"a", "b", "rest"}, g.ParamNames(f.ID))
	a := g.Node(g.FindParam(f.ID, "a"))
	assert.Equal(t, KindParameter, a.Kind)
	assert.Equal(t, LiteralString, a.InferredKind())
	assert.Equal(t, NoPosition, a.Pos)
	assert.Empty(t, f.Children)
	assert.Empty(t, g.Node(RootID).Children[1:])
}

func TestBuild_AssignmentPromotesVariable(t *testing.T) {
	src := `
var ns;
ns = { a: 1 };
var handler;
handler = function(x) { return x; };
var holder = 1;
holder.child = "c";
`
	sf := parseJS(t, src)
	g := sf.Graph

	ns := mustChild(t, g, RootID, "ns")
	assert.Equal(t, KindObject, ns.Kind)
	assert.Equal(t, []string{"a"}, childNames(g, ns.ID))
	assert.Equal(t, 5, ns.Pos.Offset)

	handler := mustChild(t, g, RootID, "handler")
	assert.Equal(t, KindFunction, handler.Kind)
	assert.Equal(t, []string{"x"}, g.ParamNames(handler.ID))

	holder := mustChild(t, g, RootID, "holder")
	assert.Equal(t, KindObject, holder.Kind)
	assert.Equal(t, LiteralString, mustChild(t, g, holder.ID, "child").InferredKind())
}

func TestBuild_MemberReassignmentAddsLiteral(t *testing.T) {
	sf := parseJS(t, `var o = { n: 1 }; o.n = "one";`)
	g := sf.Graph

	o := mustChild(t, g, RootID, "o")
	n := mustChild(t, g, o.ID, "n")
	assert.Equal(t, []LiteralKind{LiteralString, LiteralNumber}, n.Literals.Kinds())
	assert.Len(t, o.Children, 1)
}

// ---------------------------------------------------------------------------
// Functions, constructors and classes
// ---------------------------------------------------------------------------

func TestBuild_PrototypeObject(t *testing.T) {
	src := `
function Widget() { this.size = 1; }
Widget.prototype = {
  show: function() {},
  hide() { this.visible = false; },
  kind: "widget"
};
`
	sf := parseJS(t, src)
	g := sf.Graph

	w := mustChild(t, g, RootID, "Widget")
	assert.True(t, w.Constructor)
	assert.Equal(t, []string{"size", "show", "hide", "visible", "kind"}, childNames(g, w.ID))
	assert.Equal(t, KindMethod, mustChild(t, g, w.ID, "show").Kind)
	assert.Equal(t, KindMethod, mustChild(t, g, w.ID, "hide").Kind)
	assert.Equal(t, LiteralBoolean, mustChild(t, g, w.ID, "visible").InferredKind())
	assert.Equal(t, LiteralString, mustChild(t, g, w.ID, "kind").InferredKind())
}

func TestBuild_ThisInMethodShorthand(t *testing.T) {
	sf := parseJS(t, `var store = { init() { this.ready = true; } };`)
	g := sf.Graph

	store := mustChild(t, g, RootID, "store")
	assert.Equal(t, []string{"init", "ready"}, childNames(g, store.ID))
	assert.False(t, mustChild(t, g, store.ID, "init").Constructor)
}

func TestBuild_Class(t *testing.T) {
	src := `
class Shape {
  sides = 4;
  constructor(w, h) { this.w = w; }
  area() { return this.w * this.h; }
  static create() { return new Shape(1, 1); }
}
`
	sf := parseJS(t, src)
	g := sf.Graph

	shape := mustChild(t, g, RootID, "Shape")
	assert.Equal(t, KindFunction, shape.Kind)
	assert.True(t, shape.Constructor)
	assert.Equal(t, []string{"w", "h"}, g.ParamNames(shape.ID))
	assert.Equal(t, []string{"sides", "w", "area", "create"}, childNames(g, shape.ID))
	assert.Equal(t, LiteralNumber, mustChild(t, g, shape.ID, "sides").InferredKind())
	assert.Equal(t, KindProperty, mustChild(t, g, shape.ID, "sides").Kind)
	assert.Equal(t, KindMethod, mustChild(t, g, shape.ID, "area").Kind)
}

func TestBuild_ClassExpression(t *testing.T) {
	sf := parseJS(t, `var Point = class { move(dx) {} };`)
	g := sf.Graph

	p := mustChild(t, g, RootID, "Point")
	assert.Equal(t, KindFunction, p.Kind)
	assert.True(t, p.Constructor)
	assert.Equal(t, []string{"dx"}, g.ParamNames(mustChild(t, g, p.ID, "move").ID))
}

func TestBuild_ArrowFunctions(t *testing.T) {
	sf := parseJS(t, "var double = x => x * 2;\nvar answer = () => 42;\nvar make = () => ({ id: 1 });\n")
	g := sf.Graph

	double := mustChild(t, g, RootID, "double")
	assert.Equal(t, KindFunction, double.Kind)
	assert.Equal(t, []string{"x"}, g.ParamNames(double.ID))

	assert.Equal(t, LiteralNumber, mustChild(t, g, RootID, "answer").InferredKind())

	maker := mustChild(t, g, RootID, "make")
	require.Len(t, maker.Callable.Returns, 1)
	assert.Equal(t, []string{"id"}, childNames(g, maker.Callable.Returns[0]))
}

func TestBuild_ReturnLiteralKinds(t *testing.T) {
	sf := parseJS(t, `function pick(f) { if (f) { return "a"; } return 1; }`)
	g := sf.Graph

	pick := mustChild(t, g, RootID, "pick")
	assert.Equal(t, []LiteralKind{LiteralString, LiteralNumber}, pick.Literals.Kinds())
	assert.Empty(t, pick.Callable.Returns)
}

func TestBuild_IIFEModule(t *testing.T) {
	src := `
var mod = (function() {
  var hidden = 1;
  function helper() {}
  return { api: helper, version: "1" };
})();
`
	sf := parseJS(t, src)
	g := sf.Graph

	mod := mustChild(t, g, RootID, "mod")
	assert.Equal(t, KindObject, mod.Kind)
	assert.Equal(t, []string{"hidden", "helper", "api", "version"}, childNames(g, mod.ID))
	assert.Equal(t, LiteralString, mustChild(t, g, mod.ID, "version").InferredKind())
	for _, c := range g.Node(mod.ID).Children {
		assert.Equal(t, mod.ID, g.Node(c).Parent)
	}
}

func TestBuild_IIFEReturningLiteral(t *testing.T) {
	sf := parseJS(t, `var v = (function() { return "x"; })();`)
	g := sf.Graph

	v := mustChild(t, g, RootID, "v")
	assert.Equal(t, KindVariable, v.Kind)
	assert.Equal(t, LiteralString, v.InferredKind())
	assert.Empty(t, v.Children)
}

func TestBuild_AnonymousCallbacks(t *testing.T) {
	sf := parseJS(t, "setTimeout(function() { var t = 1; }, 10);\nitems.forEach(function(item) {});\n")
	g := sf.Graph

	kids := g.OrderedChildren(RootID)
	require.Len(t, kids, 2)
	for _, id := range kids {
		n := g.Node(id)
		assert.Equal(t, KindFunction, n.Kind)
		assert.True(t, n.Anonymous)
		assert.Empty(t, n.Name)
	}
	assert.Equal(t, []string{"t"}, childNames(g, kids[0]))
	assert.Equal(t, []string{"item"}, g.ParamNames(kids[1]))
}

func TestBuild_TypeScript(t *testing.T) {
	src := `
interface Opts { verbose: boolean }
function greet(name: string, opts?: Opts): string { return "hi " + name; }
class Greeter {
  private count: number = 0;
  constructor(public prefix: string) {}
  greet(who: string): void {}
}
`
	sf := parseLang(t, src, LangTypeScript)
	g := sf.Graph

	greet := mustChild(t, g, RootID, "greet")
	assert.Equal(t, []string{"name", "opts"}, g.ParamNames(greet.ID))

	greeter := mustChild(t, g, RootID, "Greeter")
	assert.True(t, greeter.Constructor)
	assert.Equal(t, []string{"count", "greet"}, childNames(g, greeter.ID))
	assert.Equal(t, LiteralNumber, mustChild(t, g, greeter.ID, "count").InferredKind())
}

func TestBuild_ThisInArrowIsLexical(t *testing.T) {
	t.Run("inside a function", func(t *testing.T) {
		sf := parseJS(t, `function f() { var g = () => { this.y = 2; }; }`)
		g := sf.Graph

		f := mustChild(t, g, RootID, "f")
		assert.True(t, f.Constructor)
		assert.Equal(t, []string{"g", "y"}, childNames(g, f.ID))
		assert.Equal(t, KindProperty, mustChild(t, g, f.ID, "y").Kind)

		arrow := mustChild(t, g, f.ID, "g")
		assert.False(t, arrow.Constructor)
		assert.Empty(t, arrow.Children)
	})

	t.Run("inside a method", func(t *testing.T) {
		sf := parseJS(t, `var o = { m: function() { var h = () => { this.z = 1; }; } };`)
		g := sf.Graph

		o := mustChild(t, g, RootID, "o")
		assert.Equal(t, []string{"m", "z"}, childNames(g, o.ID))
		assert.Equal(t, LiteralNumber, mustChild(t, g, o.ID, "z").InferredKind())

		m := mustChild(t, g, o.ID, "m")
		assert.False(t, m.Constructor)
		h := mustChild(t, g, m.ID, "h")
		assert.False(t, h.Constructor)
		assert.Empty(t, h.Children)
	})

	t.Run("nested arrows", func(t *testing.T) {
		sf := parseJS(t, `function Box() { var a = () => () => { this.w = 1; }; }`)
		g := sf.Graph

		box := mustChild(t, g, RootID, "Box")
		assert.True(t, box.Constructor)
		assert.Contains(t, childNames(g, box.ID), "w")
	})
}

func TestBuild_ObjectReassignedFunction(t *testing.T) {
	src := `
var a = { k: 1 };
a = function(p) { return p; };
var ns = { inner: {} };
ns.inner = function(q) {};
`
	sf := parseJS(t, src)
	g := sf.Graph

	a := mustChild(t, g, RootID, "a")
	assert.Equal(t, KindFunction, a.Kind)
	assert.Equal(t, []string{"p"}, g.ParamNames(a.ID))
	assert.Equal(t, []string{"k"}, childNames(g, a.ID))
	assert.Equal(t, 5, a.Pos.Offset, "the declaration site is kept")

	ns := mustChild(t, g, RootID, "ns")
	inner := mustChild(t, g, ns.ID, "inner")
	assert.Equal(t, KindMethod, inner.Kind)
	assert.Equal(t, []string{"q"}, g.ParamNames(inner.ID))
}
