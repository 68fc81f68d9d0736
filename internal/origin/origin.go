// Package origin loads graph definitions into roots and persists snapshots
// back out.
//
// Two on-disk forms are understood. YAML definitions (.yaml/.yml) are the
// hand-written form: mappings become folders, sequences become lists, and a
// handful of $-directives declare sentinels, real-filesystem delegates and
// embedded roots. JSON snapshots (.json, optionally .gz) are the codec's
// cycle-preserving encoding, written by Store and restored verbatim. YAML
// aliases decode by copy, so aliasing survives only through snapshots.
package origin

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/gzip"

	"github.com/AFatNiBBa/config-fs/internal/codec"
	"github.com/AFatNiBBa/config-fs/internal/vfs"
)

// Loader builds roots from definition files, caching per location until a
// reload is requested.
type Loader struct {
	codec *codec.Codec

	mu    sync.Mutex
	cache map[string]*vfs.Root
}

// NewLoader creates a loader serializing through the given codec.
func NewLoader(c *codec.Codec) *Loader {
	return &Loader{
		codec: c,
		cache: make(map[string]*vfs.Root),
	}
}

// Load reads the definition at location and returns a root over it, with
// dir as the context directory for real delegates. A cached root is reused
// unless reload is set.
func (l *Loader) Load(location, dir string, reload bool) (*vfs.Root, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !reload {
		if root, ok := l.cache[location]; ok {
			return root, nil
		}
	}

	data, err := readMaybeGzip(location)
	if err != nil {
		return nil, fmt.Errorf("origin: reading %s: %w", location, err)
	}

	var top *vfs.Folder
	switch definitionKind(location) {
	case kindSnapshot:
		top, err = l.codec.Decode(data)
	case kindYAML:
		top, err = l.parseYAML(data, dir)
	default:
		err = fmt.Errorf("origin: unsupported definition format %q", filepath.Ext(location))
	}
	if err != nil {
		return nil, err
	}

	root := vfs.NewRoot(top)
	root.SetOrigin(&vfs.Origin{Location: location, Dir: dir})
	root.SetSerializer(l.codec)
	l.cache[location] = root
	return root, nil
}

// Store persists the root's graph to location through the codec, gzipped
// when the location ends in .gz.
func (l *Loader) Store(root *vfs.Root, location string) error {
	data, err := root.Save()
	if err != nil {
		return err
	}
	if strings.HasSuffix(location, ".gz") {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return fmt.Errorf("origin: compressing snapshot: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("origin: compressing snapshot: %w", err)
		}
		data = buf.Bytes()
	}
	if err := os.WriteFile(location, data, 0o644); err != nil {
		return fmt.Errorf("origin: writing %s: %w", location, err)
	}
	return nil
}

// StoreOrigin persists the root back to the location it was loaded from.
// YAML definitions are never overwritten; the snapshot lands alongside them
// with a .json suffix.
func (l *Loader) StoreOrigin(root *vfs.Root) (string, error) {
	o := root.Origin()
	if o == nil {
		return "", fmt.Errorf("origin: root has no recorded origin")
	}
	location := o.Location
	if definitionKind(location) == kindYAML {
		location = strings.TrimSuffix(location, filepath.Ext(location)) + ".json"
	}
	return location, l.Store(root, location)
}

type kind int

const (
	kindUnknown kind = iota
	kindYAML
	kindSnapshot
)

func definitionKind(location string) kind {
	trimmed := strings.TrimSuffix(location, ".gz")
	switch filepath.Ext(trimmed) {
	case ".yaml", ".yml":
		return kindYAML
	case ".json":
		return kindSnapshot
	}
	return kindUnknown
}

func readMaybeGzip(location string) ([]byte, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(location, ".gz") {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// Directives understood in YAML definitions, beyond the sentinel spellings
// shared with the codec.
const (
	dirStatic    = "$static"
	dirReference = "$reference"
	dirRoot      = "$root"
	dirBinary    = "$binary"
	dirCtx       = "$ctx"
	dirExt       = "$ext"
	dirIndexFile = "$index_file"
	dirIsFolder  = "$is_folder"
)

func (l *Loader) parseYAML(data []byte, dir string) (*vfs.Folder, error) {
	var doc interface{}
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("origin: malformed definition: %w", err)
	}
	v, err := l.yamlValue(doc, dir)
	if err != nil {
		return nil, err
	}
	top, ok := v.(*vfs.Folder)
	if !ok {
		return nil, fmt.Errorf("origin: definition top level must be a mapping")
	}
	return top, nil
}

func (l *Loader) yamlValue(doc interface{}, dir string) (vfs.Value, error) {
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case string:
		return vfs.Scalar(v), nil
	case bool:
		return vfs.Bool(v), nil
	case int:
		return vfs.Number(v), nil
	case int64:
		return vfs.Number(v), nil
	case uint64:
		return vfs.Number(v), nil
	case float64:
		return vfs.Number(v), nil
	case []byte:
		return vfs.Binary(v), nil
	case []interface{}:
		list := vfs.NewList()
		for _, item := range v {
			iv, err := l.yamlValue(item, dir)
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, iv)
		}
		return list, nil
	case yaml.MapSlice:
		return l.yamlMapping(v, dir)
	}
	return nil, fmt.Errorf("origin: unsupported definition node %T", doc)
}

func (l *Loader) yamlMapping(m yaml.MapSlice, dir string) (vfs.Value, error) {
	fields := make(map[string]interface{}, len(m))
	for _, item := range m {
		fields[fmt.Sprint(item.Key)] = item.Value
	}

	if path, ok := fields[dirStatic]; ok {
		return l.yamlDelegate(path, fields, dir)
	}
	if path, ok := fields[dirReference]; ok {
		p, ok := path.(string)
		if !ok {
			return nil, fmt.Errorf("origin: %s wants a path string", dirReference)
		}
		return vfs.Reference(p, dir), nil
	}
	if sub, ok := fields[dirRoot]; ok {
		inner, err := l.yamlValue(sub, dir)
		if err != nil {
			return nil, err
		}
		top, ok := inner.(*vfs.Folder)
		if !ok {
			return nil, fmt.Errorf("origin: %s wants a mapping", dirRoot)
		}
		return vfs.NewRoot(top), nil
	}
	if raw, ok := fields[dirBinary]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("origin: %s wants a base64 string", dirBinary)
		}
		return decodeBase64(s)
	}

	folder := vfs.NewFolder()
	for _, item := range m {
		v, err := l.yamlValue(item.Value, dir)
		if err != nil {
			return nil, err
		}
		folder.Set(l.codec.ParseKey(fmt.Sprint(item.Key)), v)
	}
	return folder, nil
}

func decodeBase64(s string) (vfs.Value, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("origin: malformed %s value: %w", dirBinary, err)
	}
	return vfs.Binary(raw), nil
}

func (l *Loader) yamlDelegate(path interface{}, fields map[string]interface{}, dir string) (vfs.Value, error) {
	p, ok := path.(string)
	if !ok {
		return nil, fmt.Errorf("origin: %s wants a path string", dirStatic)
	}
	opts := vfs.StaticOptions{Ctx: dir}
	if s, ok := fields[dirCtx].(string); ok {
		opts.Ctx = s
	}
	if s, ok := fields[dirExt].(string); ok {
		opts.Ext = s
	}
	if s, ok := fields[dirIndexFile].(string); ok {
		opts.IndexFile = s
	}
	if b, ok := fields[dirIsFolder].(bool); ok {
		opts.IsFolder = b
	}
	return vfs.Static(p, opts), nil
}
