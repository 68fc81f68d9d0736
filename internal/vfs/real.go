package vfs

import (
	"os"
	"path/filepath"
)

// StaticOptions configures a real-filesystem delegate.
type StaticOptions struct {
	// Ctx is the real directory the delegate path is joined under.
	Ctx string
	// Ext is appended to the resolved target path.
	Ext string
	// IndexFile is appended when the target is a real directory and the
	// operation needs a file.
	IndexFile string
	// IsFolder expands the leftover path into real sub-paths.
	IsFolder bool
}

// RealDelegate is a handler bound to a real filesystem location. Virtual
// operations become real file operations; any I/O failure degrades to the
// global-fallback read instead of surfacing.
type RealDelegate struct {
	Path string
	Opts StaticOptions
}

func (*RealDelegate) value() {}

// Static builds a delegate rooted at path under opts.Ctx. With IsFolder set
// the leftover path keys expand into sub-paths of the location.
func Static(path string, opts StaticOptions) *RealDelegate {
	return &RealDelegate{Path: path, Opts: opts}
}

// Reference builds a single-file delegate with no sub-path expansion.
func Reference(path, ctx string) *RealDelegate {
	return Static(path, StaticOptions{Ctx: ctx})
}

// Target resolves the real path an operation would touch.
func (d *RealDelegate) Target(op Op, leftover Path) string {
	target := filepath.Join(d.Opts.Ctx, d.Path)
	if d.Opts.IsFolder {
		parts := make([]string, 0, len(leftover)+1)
		parts = append(parts, target)
		for _, key := range leftover {
			parts = append(parts, key.Name)
		}
		target = filepath.Join(parts...)
	}
	if op != OpList && op != OpDelete {
		if info, err := os.Stat(target); err == nil && info.IsDir() {
			target = filepath.Join(target, d.Opts.IndexFile)
		}
	}
	return target + d.Opts.Ext
}

// Invoke implements Handler. Failures never propagate: the reply degrades
// to reading the root's global entry.
func (d *RealDelegate) Invoke(n *Node, op Op, leftover Path, data Value) (Value, error) {
	res, err := d.dispatch(op, leftover, data)
	if err != nil {
		return n.Root.Top().globalRead()
	}
	return res, nil
}

func (d *RealDelegate) dispatch(op Op, leftover Path, data Value) (Value, error) {
	target := d.Target(op, leftover)
	switch op {
	case OpList:
		entries, err := os.ReadDir(target)
		if err != nil {
			return nil, err
		}
		items := make([]Value, len(entries))
		for i, e := range entries {
			items[i] = Scalar(e.Name())
		}
		return &List{Items: items}, nil
	case OpAppend:
		f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		_, err = f.Write(Bytes(data))
		return nil, err
	case OpWrite:
		return nil, os.WriteFile(target, Bytes(data), 0o644)
	case OpDelete:
		// The real file goes only when the effective delete-real flag is
		// set; the virtual entry is removed either way.
		if Truthy(data) {
			if err := os.Remove(target); err != nil {
				return nil, err
			}
		}
		return nil, nil
	default:
		b, err := os.ReadFile(target)
		if err != nil {
			return nil, err
		}
		return Binary(b), nil
	}
}

// globalRead reads the root top's global entry, the shared degrade target
// for failed delegations.
func (n *Node) globalRead() (Value, error) {
	g, err := n.Item(Global, false)
	if err != nil {
		return nil, nil
	}
	return g.Read()
}
