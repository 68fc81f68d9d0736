package vfs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRoot assembles a small graph used across resolver tests:
//
//	{ docs: { <index>: "default", b: "hello", sub: { x: "deep" } },
//	  "a/b": "hi",
//	  <global>: "X" }
func buildRoot() (*Root, *Folder) {
	docs := NewFolder()
	docs.Set(Index, Scalar("default"))
	docs.Set(K("b"), Scalar("hello"))
	sub := NewFolder()
	sub.Set(K("x"), Scalar("deep"))
	docs.Set(K("sub"), sub)

	top := NewFolder()
	top.Set(K("docs"), docs)
	top.Set(K("a/b"), Scalar("hi"))
	top.Set(Global, Scalar("X"))
	return NewRoot(top), docs
}

func TestResolveIdentity(t *testing.T) {
	root, docs := buildRoot()

	n, err := root.GetPath(Path{K("docs")}, false)
	require.NoError(t, err)
	// Resolution views the graph value itself, never a copy.
	assert.Same(t, docs, n.Value)
	assert.Empty(t, n.Leftover)
}

func TestResolveAssociativity(t *testing.T) {
	root, _ := buildRoot()

	p1, p2 := Keys("docs"), Keys("sub", "x")
	left, err := root.GetPath(p1, false)
	require.NoError(t, err)
	left, err = left.Resolve(p2, false)
	require.NoError(t, err)

	right, err := root.GetPath(append(append(Path{}, p1...), p2...), false)
	require.NoError(t, err)

	assert.Equal(t, left.Value, right.Value)
	assert.Equal(t, left.Leftover, right.Leftover)
}

func TestResolveEmptyPathReturnsSameNode(t *testing.T) {
	root, _ := buildRoot()

	top := root.Top()
	n, err := top.Resolve(nil, false)
	require.NoError(t, err)
	assert.Same(t, top, n)
}

func TestSelfReferenceCycle(t *testing.T) {
	top := NewFolder()
	top.Set(K("k"), Scalar("v"))
	top.Set(K("self"), top)
	root := NewRoot(top)

	n, err := root.GetPath(Keys("self", "self", "self", "k"), false)
	require.NoError(t, err)
	assert.Equal(t, Scalar("v"), n.Value)
}

func TestParentStep(t *testing.T) {
	root, docs := buildRoot()

	n, err := root.GetPath(Path{K("docs"), K("sub"), Parent}, false)
	require.NoError(t, err)
	assert.Same(t, docs, n.Value)
}

func TestParentAtAbsoluteRoot(t *testing.T) {
	root, _ := buildRoot()

	_, err := root.Top().Item(Parent, false)
	require.Error(t, err)
	assert.ErrorAs(t, err, &NoParentError{})
	assert.True(t, errors.Is(err, ErrNoParent))
}

func TestGlobalRedirectsFromDepth(t *testing.T) {
	root, _ := buildRoot()

	n, err := root.GetPath(Path{K("docs"), K("sub"), Global}, false)
	require.NoError(t, err)
	assert.Equal(t, Scalar("X"), n.Value)
}

func TestFallbackIndex(t *testing.T) {
	root, _ := buildRoot()

	n, err := root.GetPath(Keys("docs", "missing"), false)
	require.NoError(t, err)
	assert.Equal(t, Scalar("default"), n.Value)
	assert.Equal(t, Keys("missing"), n.Leftover)
}

func TestFallbackGlobalWithoutIndex(t *testing.T) {
	top := NewFolder()
	a := NewFolder()
	top.Set(K("a"), a)
	top.Set(Global, Scalar("X"))
	root := NewRoot(top)

	n, err := root.GetPath(Keys("a", "missing"), false)
	require.NoError(t, err)

	got, err := n.Read()
	require.NoError(t, err)
	assert.Equal(t, Binary("X"), got)
}

func TestFallbackMissing(t *testing.T) {
	top := NewFolder()
	root := NewRoot(top)

	n, err := root.GetPath(Keys("nope"), false)
	require.NoError(t, err)
	assert.Nil(t, n.Value)

	got, err := n.Read()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLeftoverAccumulates(t *testing.T) {
	root, _ := buildRoot()

	n, err := root.GetPath(Keys("docs", "b", "c", "d"), false)
	require.NoError(t, err)
	assert.Equal(t, Scalar("hello"), n.Value)
	assert.Equal(t, Keys("c", "d"), n.Leftover)
}

func TestLeftoverNeverReinterpreted(t *testing.T) {
	// The fallback value is a folder, but keys past the fallback stay on
	// the leftover path instead of descending into it.
	idx := NewFolder()
	idx.Set(K("x"), Scalar("inner"))
	top := NewFolder()
	top.Set(Index, idx)
	root := NewRoot(top)

	n, err := root.GetPath(Keys("missing", "x"), false)
	require.NoError(t, err)
	assert.Same(t, idx, n.Value)
	assert.Equal(t, Keys("missing", "x"), n.Leftover)
}

func TestFolderModeIndexesLists(t *testing.T) {
	top := NewFolder()
	top.Set(K("list"), NewList(Scalar("zero"), Scalar("one")))
	root := NewRoot(top)

	n, err := root.GetPath(Keys("list", "1"), true)
	require.NoError(t, err)
	assert.Equal(t, Scalar("one"), n.Value)

	// Without folder mode the index joins the leftover path instead.
	n, err = root.GetPath(Keys("list", "1"), false)
	require.NoError(t, err)
	assert.IsType(t, &List{}, n.Value)
	assert.Equal(t, Keys("1"), n.Leftover)
}

func TestScenarioEscapedVersusSplit(t *testing.T) {
	root, _ := buildRoot()

	n, err := root.Get("docs/b", false)
	require.NoError(t, err)
	got, err := n.Read()
	require.NoError(t, err)
	assert.Equal(t, Binary("hello"), got)

	n, err = root.Get(`a\/b`, false)
	require.NoError(t, err)
	got, err = n.Read()
	require.NoError(t, err)
	assert.Equal(t, Binary("hi"), got)

	n, err = root.Get("docs/b/c", false)
	require.NoError(t, err)
	assert.Equal(t, Keys("c"), n.Leftover)
	got, err = n.Read()
	require.NoError(t, err)
	assert.Equal(t, Binary("hello"), got)
}

func TestURLGet(t *testing.T) {
	root, _ := buildRoot()

	n, err := root.URLGet("/docs/b?ignored=1")
	require.NoError(t, err)
	got, err := n.Read()
	require.NoError(t, err)
	assert.Equal(t, Binary("hello"), got)
	assert.Equal(t, Keys("docs", "b"), root.LastPath())
}

func TestEmbeddedRootResolution(t *testing.T) {
	innerTop := NewFolder()
	innerTop.Set(K("x"), Scalar("nested"))
	inner := NewRoot(innerTop)

	top := NewFolder()
	top.Set(K("sub"), inner)
	root := NewRoot(top)

	n, err := root.GetPath(Keys("sub", "x"), false)
	require.NoError(t, err)
	assert.Same(t, inner, n.Value)
	assert.Equal(t, Keys("x"), n.Leftover)

	got, err := n.Read()
	require.NoError(t, err)
	assert.Equal(t, Binary("nested"), got)
}
