package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AFatNiBBa/config-fs/internal/vfs"
)

func roundTrip(t *testing.T, top *vfs.Folder) *vfs.Folder {
	t.Helper()
	c := New(Names{})
	data, err := c.Encode(top)
	require.NoError(t, err)
	restored, err := c.Decode(data)
	require.NoError(t, err)
	return restored
}

func TestRoundTripScalars(t *testing.T) {
	top := vfs.NewFolder()
	top.Set(vfs.K("s"), vfs.Scalar("text"))
	top.Set(vfs.K("n"), vfs.Number(4.5))
	top.Set(vfs.K("b"), vfs.Bool(true))
	top.Set(vfs.K("nil"), nil)

	restored := roundTrip(t, top)
	v, _ := restored.Get(vfs.K("s"))
	assert.Equal(t, vfs.Scalar("text"), v)
	v, _ = restored.Get(vfs.K("n"))
	assert.Equal(t, vfs.Number(4.5), v)
	v, _ = restored.Get(vfs.K("b"))
	assert.Equal(t, vfs.Bool(true), v)
	v, ok := restored.Get(vfs.K("nil"))
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestRoundTripBinary(t *testing.T) {
	top := vfs.NewFolder()
	top.Set(vfs.K("raw"), vfs.Binary{0x00, 0x01, 0xfe})

	restored := roundTrip(t, top)
	v, _ := restored.Get(vfs.K("raw"))
	assert.Equal(t, vfs.Binary{0x00, 0x01, 0xfe}, v)
}

func TestRoundTripSentinelKeys(t *testing.T) {
	top := vfs.NewFolder()
	top.Set(vfs.Index, vfs.Scalar("idx"))
	top.Set(vfs.Global, vfs.Scalar("glob"))
	top.Set(vfs.K("$index"), vfs.Scalar("ordinary"))

	restored := roundTrip(t, top)
	v, _ := restored.Get(vfs.Index)
	assert.Equal(t, vfs.Scalar("idx"), v)
	v, _ = restored.Get(vfs.Global)
	assert.Equal(t, vfs.Scalar("glob"), v)
	// An ordinary key spelled like a sentinel survives unescaped.
	v, _ = restored.Get(vfs.K("$index"))
	assert.Equal(t, vfs.Scalar("ordinary"), v)
}

func TestRoundTripPreservesOrder(t *testing.T) {
	top := vfs.NewFolder()
	top.Set(vfs.K("z"), vfs.Scalar("1"))
	top.Set(vfs.K("a"), vfs.Scalar("2"))
	top.Set(vfs.K("m"), vfs.Scalar("3"))

	restored := roundTrip(t, top)
	assert.Equal(t, []string{"z", "a", "m"}, restored.Keys())
}

func TestRoundTripCycle(t *testing.T) {
	top := vfs.NewFolder()
	top.Set(vfs.K("name"), vfs.Scalar("cyclic"))
	top.Set(vfs.K("self"), top)

	restored := roundTrip(t, top)
	v, ok := restored.Get(vfs.K("self"))
	require.True(t, ok)
	assert.Same(t, restored, v)
}

func TestRoundTripAliasing(t *testing.T) {
	shared := vfs.NewList(vfs.Scalar("x"))
	top := vfs.NewFolder()
	top.Set(vfs.K("one"), shared)
	top.Set(vfs.K("two"), shared)

	restored := roundTrip(t, top)
	a, _ := restored.Get(vfs.K("one"))
	b, _ := restored.Get(vfs.K("two"))
	require.IsType(t, &vfs.List{}, a)
	assert.Same(t, a, b)
}

func TestRoundTripNestedContainers(t *testing.T) {
	inner := vfs.NewFolder()
	inner.Set(vfs.K("deep"), vfs.Scalar("v"))
	top := vfs.NewFolder()
	top.Set(vfs.K("folder"), inner)
	top.Set(vfs.K("list"), vfs.NewList(vfs.Scalar("a"), vfs.NewList(vfs.Number(1))))

	restored := roundTrip(t, top)
	root := vfs.NewRoot(restored)
	n, err := root.GetPath(vfs.Keys("folder", "deep"), false)
	require.NoError(t, err)
	assert.Equal(t, vfs.Scalar("v"), n.Value)

	n, err = root.GetPath(vfs.Keys("list"), false)
	require.NoError(t, err)
	got, err := n.Read()
	require.NoError(t, err)
	assert.Equal(t, vfs.Binary("a1"), got)
}

func TestRoundTripRealDelegate(t *testing.T) {
	top := vfs.NewFolder()
	top.Set(vfs.K("real"), vfs.Static("site", vfs.StaticOptions{
		Ctx:       "/srv",
		Ext:       ".html",
		IndexFile: "index.html",
		IsFolder:  true,
	}))

	restored := roundTrip(t, top)
	v, _ := restored.Get(vfs.K("real"))
	d, ok := v.(*vfs.RealDelegate)
	require.True(t, ok)
	assert.Equal(t, "site", d.Path)
	assert.Equal(t, "/srv", d.Opts.Ctx)
	assert.Equal(t, ".html", d.Opts.Ext)
	assert.Equal(t, "index.html", d.Opts.IndexFile)
	assert.True(t, d.Opts.IsFolder)
}

func TestRoundTripEmbeddedRoot(t *testing.T) {
	innerTop := vfs.NewFolder()
	innerTop.Set(vfs.K("x"), vfs.Scalar("nested"))
	top := vfs.NewFolder()
	top.Set(vfs.K("sub"), vfs.NewRoot(innerTop))

	restored := roundTrip(t, top)
	v, _ := restored.Get(vfs.K("sub"))
	sub, ok := v.(*vfs.Root)
	require.True(t, ok)
	inner, _ := sub.TopFolder().Get(vfs.K("x"))
	assert.Equal(t, vfs.Scalar("nested"), inner)
}

func TestHandlerEncodesAsOpaqueMarker(t *testing.T) {
	top := vfs.NewFolder()
	top.Set(vfs.K("h"), vfs.HandlerFunc(func(n *vfs.Node, op vfs.Op, leftover vfs.Path, data vfs.Value) (vfs.Value, error) {
		return nil, nil
	}))

	restored := roundTrip(t, top)
	v, ok := restored.Get(vfs.K("h"))
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestDecodeBareArray(t *testing.T) {
	c := New(Names{})
	top, err := c.Decode([]byte(`{"$folder":0,"$entries":[["l",["a","b"]]]}`))
	require.NoError(t, err)

	root := vfs.NewRoot(top)
	n, err := root.GetPath(vfs.Keys("l"), false)
	require.NoError(t, err)
	got, err := n.Read()
	require.NoError(t, err)
	assert.Equal(t, vfs.Binary("ab"), got)
}

func TestDecodeErrors(t *testing.T) {
	c := New(Names{})
	_, err := c.Decode([]byte(`not json`))
	assert.Error(t, err)
	_, err = c.Decode([]byte(`"just a string"`))
	assert.Error(t, err)
	_, err = c.Decode([]byte(`{"$folder":0,"$entries":[["x",{"$ref":99}]]}`))
	assert.Error(t, err)
}

func TestCustomSentinelNames(t *testing.T) {
	c := New(Names{Index: "@default", Global: "@global", Parent: "@up"})
	top := vfs.NewFolder()
	top.Set(vfs.Index, vfs.Scalar("d"))

	data, err := c.Encode(top)
	require.NoError(t, err)
	assert.Contains(t, string(data), "@default")

	restored, err := c.Decode(data)
	require.NoError(t, err)
	v, _ := restored.Get(vfs.Index)
	assert.Equal(t, vfs.Scalar("d"), v)
}
