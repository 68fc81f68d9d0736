package origin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AFatNiBBa/config-fs/internal/codec"
	"github.com/AFatNiBBa/config-fs/internal/vfs"
)

func writeDefinition(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newLoader() *Loader {
	return NewLoader(codec.New(codec.Names{}))
}

func TestLoadYAMLDefinition(t *testing.T) {
	path := writeDefinition(t, "graph.yaml", `
docs:
  $index: default page
  readme: hello
tags:
  - go
  - vfs
count: 3
enabled: true
`)
	root, err := newLoader().Load(path, "", false)
	require.NoError(t, err)

	n, err := root.Get("docs/readme", false)
	require.NoError(t, err)
	got, err := n.Read()
	require.NoError(t, err)
	assert.Equal(t, vfs.Binary("hello"), got)

	// $index becomes the folder's Index sentinel.
	n, err = root.Get("docs/anything-else", false)
	require.NoError(t, err)
	got, err = n.Read()
	require.NoError(t, err)
	assert.Equal(t, vfs.Binary("default page"), got)

	n, err = root.Get("tags", false)
	require.NoError(t, err)
	got, err = n.Read()
	require.NoError(t, err)
	assert.Equal(t, vfs.Binary("govfs"), got)

	n, err = root.Get("count", false)
	require.NoError(t, err)
	assert.Equal(t, vfs.Number(3), n.Value)
}

func TestLoadPreservesMappingOrder(t *testing.T) {
	path := writeDefinition(t, "graph.yaml", `
zebra: 1
alpha: 2
mid: 3
`)
	root, err := newLoader().Load(path, "", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"zebra", "alpha", "mid"}, root.TopFolder().Keys())
}

func TestLoadYAMLDelegates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.txt"), []byte("disk"), 0o644))

	path := writeDefinition(t, "graph.yaml", `
file:
  $reference: real.txt
site:
  $static: pages
  $ext: .html
  $is_folder: true
`)
	root, err := newLoader().Load(path, dir, false)
	require.NoError(t, err)

	n, err := root.Get("file", false)
	require.NoError(t, err)
	got, err := n.Read()
	require.NoError(t, err)
	assert.Equal(t, vfs.Binary("disk"), got)

	n, err = root.Get("site", false)
	require.NoError(t, err)
	d, ok := n.Value.(*vfs.RealDelegate)
	require.True(t, ok)
	assert.Equal(t, "pages", d.Path)
	assert.Equal(t, dir, d.Opts.Ctx)
	assert.Equal(t, ".html", d.Opts.Ext)
	assert.True(t, d.Opts.IsFolder)
}

func TestLoadEmbeddedRoot(t *testing.T) {
	path := writeDefinition(t, "graph.yaml", `
sub:
  $root:
    x: nested
`)
	root, err := newLoader().Load(path, "", false)
	require.NoError(t, err)

	n, err := root.Get("sub/x", false)
	require.NoError(t, err)
	got, err := n.Read()
	require.NoError(t, err)
	assert.Equal(t, vfs.Binary("nested"), got)
}

func TestLoadCachesUntilReload(t *testing.T) {
	path := writeDefinition(t, "graph.yaml", "k: first\n")
	l := newLoader()

	root, err := l.Load(path, "", false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("k: second\n"), 0o644))

	cached, err := l.Load(path, "", false)
	require.NoError(t, err)
	assert.Same(t, root, cached)

	fresh, err := l.Load(path, "", true)
	require.NoError(t, err)
	assert.NotSame(t, root, fresh)

	n, err := fresh.Get("k", false)
	require.NoError(t, err)
	assert.Equal(t, vfs.Scalar("second"), n.Value)
}

func TestStoreAndReloadSnapshot(t *testing.T) {
	top := vfs.NewFolder()
	top.Set(vfs.K("name"), vfs.Scalar("snapshot"))
	top.Set(vfs.K("self"), top)
	root := vfs.NewRoot(top)

	l := newLoader()
	root.SetSerializer(codec.New(codec.Names{}))

	for _, name := range []string{"snap.json", "snap.json.gz"} {
		location := filepath.Join(t.TempDir(), name)
		require.NoError(t, l.Store(root, location))

		restored, err := l.Load(location, "", true)
		require.NoError(t, err)

		n, err := restored.Get("name", false)
		require.NoError(t, err)
		assert.Equal(t, vfs.Scalar("snapshot"), n.Value)

		// The cycle survives the round trip.
		v, _ := restored.TopFolder().Get(vfs.K("self"))
		assert.Same(t, restored.TopFolder(), v)
	}
}

func TestStoreOriginNeverOverwritesYAML(t *testing.T) {
	path := writeDefinition(t, "graph.yaml", "k: v\n")
	l := newLoader()

	root, err := l.Load(path, "", false)
	require.NoError(t, err)

	location, err := l.StoreOrigin(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "graph.json"), location)

	// The YAML definition is untouched.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "k: v\n", string(data))
	assert.FileExists(t, location)
}

func TestLoadUnknownFormat(t *testing.T) {
	path := writeDefinition(t, "graph.toml", "k = 1\n")
	_, err := newLoader().Load(path, "", false)
	assert.Error(t, err)
}
