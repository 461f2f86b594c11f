package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddChildScopes(t *testing.T) {
	g := NewGraph()
	fn := g.NewNode(KindFunction, "fn", Position{Line: 1, Offset: 0})
	g.AddChild(RootID, fn)

	prop := g.NewNode(KindProperty, "p", Position{Line: 1, Offset: 5})
	g.AddChild(fn, prop)
	assert.Equal(t, fn, g.Node(prop).Scope)

	// A Property is not a scope, so its members resolve in fn.
	inner := g.NewNode(KindProperty, "q", Position{Line: 1, Offset: 6})
	g.AddChild(prop, inner)
	assert.Equal(t, fn, g.Node(inner).Scope)
	assert.Equal(t, prop, g.Node(inner).Parent)
}

func TestGraph_AddChildReplacesByName(t *testing.T) {
	g := NewGraph()
	first := g.NewNode(KindVariable, "a", Position{Line: 1, Offset: 10})
	g.AddChild(RootID, first)
	anon1 := g.NewNode(KindFunction, "", Position{Line: 1, Offset: 20})
	anon2 := g.NewNode(KindFunction, "", Position{Line: 1, Offset: 30})
	g.AddChild(RootID, anon1)
	g.AddChild(RootID, anon2)

	second := g.NewNode(KindFunction, "a", Position{Line: 2, Offset: 40})
	g.AddChild(RootID, second)

	assert.Equal(t, []NodeID{anon1, anon2, second}, g.Node(RootID).Children)
	assert.Equal(t, NoNode, g.Node(first).Parent)
	assert.Equal(t, second, g.FindChild(RootID, "a"))
}

func TestGraph_SiblingsFollowOffsets(t *testing.T) {
	g := NewGraph()
	c := g.NewNode(KindVariable, "c", Position{Line: 3, Offset: 30})
	a := g.NewNode(KindVariable, "a", Position{Line: 1, Offset: 10})
	b1 := g.NewNode(KindVariable, "b1", Position{Line: 2, Offset: 20})
	b2 := g.NewNode(KindVariable, "b2", Position{Line: 2, Offset: 20})
	for _, id := range []NodeID{c, a, b1, b2} {
		g.AddChild(RootID, id)
	}

	assert.Equal(t, []NodeID{a, b1, b2, c}, g.OrderedChildren(RootID))
	assert.Equal(t, a, g.Node(RootID).FirstChild)
	assert.Equal(t, NoNode, g.Node(a).PrevSibling)
	assert.Equal(t, NoNode, g.Node(c).NextSibling)
	assert.Equal(t, b1, g.Node(b2).PrevSibling)

	g.RemoveChild(RootID, b1)
	assert.Equal(t, []NodeID{a, b2, c}, g.OrderedChildren(RootID))
	assert.Equal(t, NoNode, g.Node(b1).NextSibling)
}

func TestGraph_Lookup(t *testing.T) {
	g := NewGraph()
	outer := g.NewNode(KindFunction, "outer", Position{Line: 1, Offset: 0})
	g.AddChild(RootID, outer)
	g.AddParam(outer, "arg")
	x := g.NewNode(KindVariable, "x", Position{Line: 1, Offset: 2})
	g.AddChild(RootID, x)
	obj := g.NewNode(KindObject, "obj", Position{Line: 2, Offset: 5})
	g.AddChild(outer, obj)

	assert.Equal(t, x, g.Lookup(obj, "x"))
	assert.Equal(t, g.FindParam(outer, "arg"), g.Lookup(obj, "arg"))
	assert.Equal(t, NoNode, g.Lookup(obj, "missing"))
	assert.Equal(t, NoNode, g.Lookup(obj, ""))
}

func TestGraph_AddParamAndSetKind(t *testing.T) {
	g := NewGraph()
	v := g.NewNode(KindVariable, "v", Position{Line: 1, Offset: 0})
	assert.Nil(t, g.Node(v).Callable)

	g.SetKind(v, KindFunction)
	require.NotNil(t, g.Node(v).Callable)

	p := g.AddParam(v, "x")
	assert.Equal(t, []string{"x"}, g.ParamNames(v))
	assert.Equal(t, v, g.Node(p).Parent)
	assert.Equal(t, NoPosition, g.Node(p).Pos)
	assert.Nil(t, g.ParamNames(RootID))
}

func TestGraph_Adopt(t *testing.T) {
	g := NewGraph()
	dst := g.NewNode(KindFunction, "dst", Position{Line: 1, Offset: 0})
	g.AddChild(RootID, dst)
	keep := g.NewNode(KindProperty, "keep", Position{Line: 1, Offset: 1})
	clash := g.NewNode(KindProperty, "same", Position{Line: 1, Offset: 2})
	g.AddChild(dst, keep)
	g.AddChild(dst, clash)

	src := g.NewNode(KindFunction, "", Position{Line: 2, Offset: 10})
	g.AddParam(src, "p")
	moved := g.NewNode(KindMethod, "same", Position{Line: 2, Offset: 12})
	g.AddChild(src, moved)

	g.Adopt(dst, src)

	assert.Empty(t, g.Node(src).Children)
	assert.Equal(t, NoNode, g.Node(src).FirstChild)
	assert.Equal(t, []NodeID{keep, moved}, g.OrderedChildren(dst))
	assert.Equal(t, dst, g.Node(moved).Parent)
	assert.Equal(t, []string{"p"}, g.ParamNames(dst))
	assert.Empty(t, g.ParamNames(src))
}

func TestGraph_QualifiedNameAndChain(t *testing.T) {
	g := NewGraph()
	a := g.NewNode(KindObject, "a", Position{Line: 1, Offset: 0})
	g.AddChild(RootID, a)
	anon := g.NewNode(KindFunction, "", Position{Line: 1, Offset: 1})
	g.AddChild(a, anon)
	c := g.NewNode(KindVariable, "c", Position{Line: 1, Offset: 2})
	g.AddChild(anon, c)

	assert.Equal(t, "a.c", g.QualifiedName(c))
	assert.Equal(t, "", g.QualifiedName(RootID))
	assert.Equal(t, []NodeID{a, anon}, g.ObjectChain(c))
	assert.Empty(t, g.ObjectChain(a))
}

func TestLiteralSet(t *testing.T) {
	var s LiteralSet
	assert.Equal(t, LiteralUnknown, s.Inferred())

	s = s.Add(LiteralNumber).Add(LiteralNumber)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, LiteralNumber, s.Inferred())

	s = s.Add(LiteralString)
	assert.True(t, s.Has(LiteralString))
	assert.False(t, s.Has(LiteralNull))
	assert.False(t, s.Has("bogus"))
	assert.Equal(t, LiteralUnknown, s.Inferred())
	assert.Equal(t, []LiteralKind{LiteralString, LiteralNumber}, s.Kinds())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["string","number"]`, string(data))

	var back LiteralSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)

	data, err = json.Marshal(LiteralSet(0))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestKind_Predicates(t *testing.T) {
	assert.True(t, KindMethod.IsCallable())
	assert.False(t, KindObject.IsCallable())
	assert.True(t, KindObject.IsScope())
	assert.True(t, KindRoot.IsScope())
	assert.False(t, KindProperty.IsScope())
	assert.False(t, KindVariable.IsScope())
}
