// Package codec serializes value graphs to a textual, cycle and aliasing
// preserving encoding, and restores them.
//
// Containers are numbered in first-visit order; every later visit encodes
// as a back-reference to that number, so shared identity and cycles survive
// a round trip. Folders encode their entries as ordered pairs to keep
// insertion order, which plain JSON objects would lose. Binary values and
// real-filesystem delegates are special-cased; arbitrary handlers encode as
// an opaque marker and do not restore.
package codec

import (
	"encoding/base64"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/AFatNiBBa/config-fs/internal/vfs"
)

// Directive keys of the encoding.
const (
	keyFolder    = "$folder"
	keyEntries   = "$entries"
	keyList      = "$list"
	keyItems     = "$items"
	keyRef       = "$ref"
	keyRoot      = "$root"
	keyBinary    = "$binary"
	keyStatic    = "$static"
	keyCtx       = "$ctx"
	keyExt       = "$ext"
	keyIndexFile = "$index_file"
	keyIsFolder  = "$is_folder"
	keyHandler   = "$handler"
)

// Names holds the display spellings of the three sentinel keys.
type Names struct {
	Index  string
	Global string
	Parent string
}

// DefaultNames returns the spellings the origin loader understands.
func DefaultNames() Names {
	return Names{Index: "$index", Global: "$global", Parent: "$parent"}
}

// Codec encodes and decodes value graphs. The zero value is not usable;
// use New.
type Codec struct {
	names Names
}

// New creates a codec with the given sentinel spellings; zero fields fall
// back to the defaults.
func New(names Names) *Codec {
	def := DefaultNames()
	if names.Index == "" {
		names.Index = def.Index
	}
	if names.Global == "" {
		names.Global = def.Global
	}
	if names.Parent == "" {
		names.Parent = def.Parent
	}
	return &Codec{names: names}
}

// Encode implements vfs.Serializer.
func (c *Codec) Encode(top *vfs.Folder) ([]byte, error) {
	enc := &encoder{codec: c, ids: make(map[vfs.Value]int)}
	doc, err := enc.value(top)
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(doc)
}

// Decode restores a graph encoded by Encode.
func (c *Codec) Decode(data []byte) (*vfs.Folder, error) {
	var doc interface{}
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("codec: malformed document: %w", err)
	}
	dec := &decoder{codec: c, refs: make(map[int]vfs.Value)}
	v, err := dec.value(doc)
	if err != nil {
		return nil, err
	}
	top, ok := v.(*vfs.Folder)
	if !ok {
		return nil, fmt.Errorf("codec: document top is not a folder")
	}
	return top, nil
}

type encoder struct {
	codec *Codec
	ids   map[vfs.Value]int
}

func (e *encoder) value(v vfs.Value) (interface{}, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case vfs.Scalar:
		return string(val), nil
	case vfs.Number:
		return float64(val), nil
	case vfs.Bool:
		return bool(val), nil
	case vfs.Binary:
		return map[string]interface{}{keyBinary: base64.StdEncoding.EncodeToString(val)}, nil
	case *vfs.RealDelegate:
		return map[string]interface{}{
			keyStatic:    val.Path,
			keyCtx:       val.Opts.Ctx,
			keyExt:       val.Opts.Ext,
			keyIndexFile: val.Opts.IndexFile,
			keyIsFolder:  val.Opts.IsFolder,
		}, nil
	case *vfs.Folder:
		if id, seen := e.ids[v]; seen {
			return map[string]interface{}{keyRef: id}, nil
		}
		id := len(e.ids)
		e.ids[v] = id
		var (
			entries = make([]interface{}, 0, val.Len())
			encErr  error
		)
		val.Each(func(k vfs.Key, entry vfs.Value) bool {
			ev, err := e.value(entry)
			if err != nil {
				encErr = err
				return false
			}
			entries = append(entries, []interface{}{e.codec.keyName(k), ev})
			return true
		})
		if encErr != nil {
			return nil, encErr
		}
		return map[string]interface{}{keyFolder: id, keyEntries: entries}, nil
	case *vfs.List:
		if id, seen := e.ids[v]; seen {
			return map[string]interface{}{keyRef: id}, nil
		}
		id := len(e.ids)
		e.ids[v] = id
		items := make([]interface{}, len(val.Items))
		for i, item := range val.Items {
			ev, err := e.value(item)
			if err != nil {
				return nil, err
			}
			items[i] = ev
		}
		return map[string]interface{}{keyList: id, keyItems: items}, nil
	case *vfs.Root:
		top, err := e.value(val.TopFolder())
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{keyRoot: top}, nil
	case vfs.Handler:
		return map[string]interface{}{keyHandler: true}, nil
	}
	return nil, fmt.Errorf("codec: unsupported value kind %T", v)
}

// keyName spells a key for the document. Ordinary names that would collide
// with a directive or sentinel spelling get an extra leading dollar.
func (c *Codec) keyName(k vfs.Key) string {
	switch k.Sym {
	case vfs.SymIndex:
		return c.names.Index
	case vfs.SymGlobal:
		return c.names.Global
	case vfs.SymParent:
		return c.names.Parent
	}
	if len(k.Name) > 0 && k.Name[0] == '$' {
		return "$" + k.Name
	}
	return k.Name
}

// ParseKey reverses keyName: sentinel spellings map to sentinel keys, an
// escaped dollar unescapes, everything else is an ordinary key.
func (c *Codec) ParseKey(name string) vfs.Key {
	switch name {
	case c.names.Index:
		return vfs.Index
	case c.names.Global:
		return vfs.Global
	case c.names.Parent:
		return vfs.Parent
	}
	if len(name) > 1 && name[0] == '$' && name[1] == '$' {
		return vfs.K(name[1:])
	}
	return vfs.K(name)
}
