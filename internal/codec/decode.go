package codec

import (
	"encoding/base64"
	"fmt"

	"github.com/AFatNiBBa/config-fs/internal/vfs"
)

type decoder struct {
	codec *Codec
	refs  map[int]vfs.Value
}

func (d *decoder) value(doc interface{}) (vfs.Value, error) {
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case string:
		return vfs.Scalar(v), nil
	case float64:
		return vfs.Number(v), nil
	case bool:
		return vfs.Bool(v), nil
	case []interface{}:
		// Bare arrays appear in hand-written documents; they carry no
		// identity number and decode as fresh lists.
		list := vfs.NewList()
		for _, item := range v {
			iv, err := d.value(item)
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, iv)
		}
		return list, nil
	case map[string]interface{}:
		return d.object(v)
	}
	return nil, fmt.Errorf("codec: unsupported document node %T", doc)
}

func (d *decoder) object(obj map[string]interface{}) (vfs.Value, error) {
	if ref, ok := obj[keyRef]; ok {
		id, ok := asID(ref)
		if !ok {
			return nil, fmt.Errorf("codec: malformed back-reference %v", ref)
		}
		target, ok := d.refs[id]
		if !ok {
			return nil, fmt.Errorf("codec: dangling back-reference %d", id)
		}
		return target, nil
	}
	if b, ok := obj[keyBinary]; ok {
		s, ok := b.(string)
		if !ok {
			return nil, fmt.Errorf("codec: malformed binary value")
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("codec: malformed binary value: %w", err)
		}
		return vfs.Binary(raw), nil
	}
	if path, ok := obj[keyStatic]; ok {
		return d.delegate(path, obj)
	}
	if top, ok := obj[keyRoot]; ok {
		folder, err := d.value(top)
		if err != nil {
			return nil, err
		}
		f, ok := folder.(*vfs.Folder)
		if !ok {
			return nil, fmt.Errorf("codec: embedded root top is not a folder")
		}
		return vfs.NewRoot(f), nil
	}
	if obj[keyHandler] != nil {
		// Handlers do not restore; the marker only records one was here.
		return nil, nil
	}
	if id, ok := obj[keyFolder]; ok {
		return d.folder(id, obj[keyEntries])
	}
	if id, ok := obj[keyList]; ok {
		return d.list(id, obj[keyItems])
	}
	return nil, fmt.Errorf("codec: object carries no known directive")
}

func (d *decoder) delegate(path interface{}, obj map[string]interface{}) (vfs.Value, error) {
	p, ok := path.(string)
	if !ok {
		return nil, fmt.Errorf("codec: malformed delegate path %v", path)
	}
	opts := vfs.StaticOptions{}
	if s, ok := obj[keyCtx].(string); ok {
		opts.Ctx = s
	}
	if s, ok := obj[keyExt].(string); ok {
		opts.Ext = s
	}
	if s, ok := obj[keyIndexFile].(string); ok {
		opts.IndexFile = s
	}
	if b, ok := obj[keyIsFolder].(bool); ok {
		opts.IsFolder = b
	}
	return vfs.Static(p, opts), nil
}

// folder registers the folder before filling its entries so cyclic
// references resolve to the instance under construction.
func (d *decoder) folder(id interface{}, entries interface{}) (vfs.Value, error) {
	n, ok := asID(id)
	if !ok {
		return nil, fmt.Errorf("codec: malformed folder id %v", id)
	}
	f := vfs.NewFolder()
	d.refs[n] = f

	pairs, ok := entries.([]interface{})
	if !ok && entries != nil {
		return nil, fmt.Errorf("codec: malformed folder entries")
	}
	for _, raw := range pairs {
		pair, ok := raw.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("codec: malformed folder entry %v", raw)
		}
		name, ok := pair[0].(string)
		if !ok {
			return nil, fmt.Errorf("codec: malformed folder key %v", pair[0])
		}
		v, err := d.value(pair[1])
		if err != nil {
			return nil, err
		}
		f.Set(d.codec.ParseKey(name), v)
	}
	return f, nil
}

func (d *decoder) list(id interface{}, items interface{}) (vfs.Value, error) {
	n, ok := asID(id)
	if !ok {
		return nil, fmt.Errorf("codec: malformed list id %v", id)
	}
	list := vfs.NewList()
	d.refs[n] = list

	raw, ok := items.([]interface{})
	if !ok && items != nil {
		return nil, fmt.Errorf("codec: malformed list items")
	}
	for _, item := range raw {
		v, err := d.value(item)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, v)
	}
	return list, nil
}

func asID(v interface{}) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) || f < 0 {
		return 0, false
	}
	return int(f), true
}
