package vfs

import "strconv"

// List returns the keys under the node as a list of scalars. Folders list
// their ordinary keys in insertion order, handlers are invoked with the
// list operation, embedded roots delegate into the nested graph, and every
// other kind is not listable and yields nil.
func (n *Node) List() (Value, error) {
	switch v := n.Value.(type) {
	case Handler:
		return v.Invoke(n, OpList, n.Leftover, nil)
	case *Folder:
		names := v.Keys()
		items := make([]Value, len(names))
		for i, name := range names {
			items[i] = Scalar(name)
		}
		return &List{Items: items}, nil
	case *Root:
		target, err := v.Top().Resolve(n.Leftover, false)
		if err != nil {
			return nil, err
		}
		return target.List()
	}
	return nil, nil
}

// Read renders the node's content. Scalars coerce to bytes, binaries pass
// through, lists concatenate the rendering of every element, handlers are
// invoked with the read operation and embedded roots delegate into the
// nested graph. A missing node reads as nil.
func (n *Node) Read() (Value, error) {
	return n.read(n.Value, -1)
}

func (n *Node) read(v Value, arrayIndex int) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case Handler:
		return val.Invoke(n, OpRead, n.Leftover, nil)
	case Binary:
		return val, nil
	case *List:
		var out Binary
		for i, item := range val.Items {
			r, err := n.read(item, i)
			if err != nil {
				return nil, err
			}
			out = append(out, Bytes(r)...)
		}
		return out, nil
	case *Root:
		target, err := val.Top().Resolve(n.Leftover, false)
		if err != nil {
			return nil, err
		}
		return target.Read()
	case *Folder:
		return n.readFolder(val, arrayIndex)
	}
	return Bytes(v), nil
}

// readFolder handles a folder reached inside read. Inside a list element the
// folder is re-resolved as the entry at its position so the leftover path
// can descend into it; reached directly, reading falls through to the
// folder's Index entry. The two branches intentionally diverge.
func (n *Node) readFolder(f *Folder, arrayIndex int) (Value, error) {
	if arrayIndex >= 0 {
		elem := n.child(K(strconv.Itoa(arrayIndex)), f)
		target, err := elem.Resolve(n.Leftover, false)
		if err != nil {
			return nil, err
		}
		return target.Read()
	}
	idx, _ := f.Get(Index)
	sub := &Node{Value: idx, Owner: n, Key: Index, Root: n.Root}
	return sub.Read()
}

// Append adds data after the node's current content.
func (n *Node) Append(data Value) error {
	return n.set(data, true)
}

// Write overwrites the node's current content.
func (n *Node) Write(data Value) error {
	return n.set(data, false)
}

func (n *Node) set(data Value, appendMode bool) error {
	switch v := n.Value.(type) {
	case Handler:
		op := OpWrite
		if appendMode {
			op = OpAppend
		}
		_, err := v.Invoke(n, op, n.Leftover, data)
		return err
	case *List:
		// Shared mutation: every alias of the list sees the push. Writes do
		// not overwrite containers in place.
		if appendMode {
			v.Items = append(v.Items, data)
		}
		return nil
	case Binary:
		// Binaries are immutable leaves; only a write replaces one.
		if !appendMode {
			n.refSet(data)
		}
		return nil
	case *Root:
		target, err := v.Top().Resolve(n.Leftover, false)
		if err != nil {
			return err
		}
		return target.set(data, appendMode)
	case *Folder:
		if len(n.Leftover) > 0 {
			base := &Node{Value: v, Owner: n.Owner, Key: n.Key, Root: n.Root}
			target, err := base.Resolve(n.Leftover, false)
			if err != nil {
				return err
			}
			return target.set(data, appendMode)
		}
		idx, _ := v.Get(Index)
		sub := &Node{Value: idx, Owner: n, Key: Index, Root: n.Root}
		return sub.set(data, appendMode)
	}
	// Scalar, Number, Bool or missing.
	if appendMode && n.Value != nil {
		n.refSet(NewList(n.Value, data))
	} else {
		n.refSet(data)
	}
	return nil
}

// refSet replaces the node's value and, when the owning container holds an
// entry under the node's key, that entry too, keeping the node view and the
// graph consistent. At the absolute root only the view changes.
func (n *Node) refSet(v Value) {
	if n.Owner != nil {
		switch owner := n.Owner.Value.(type) {
		case *Folder:
			owner.Set(n.Key, v)
		case *List:
			if i, ok := n.Key.index(); ok && i < len(owner.Items) {
				owner.Items[i] = v
			}
		}
	}
	n.Value = v
}

// Delete removes the node's entry from its owning container and reports
// whether anything was removed. A handler is consulted first with the
// effective delete-real flag as data; a defined falsy reply vetoes the
// removal. Deleting the absolute root reports false, never an error.
func (n *Node) Delete(deleteReal, ignorePath bool) (bool, error) {
	effective := deleteReal && (ignorePath || len(n.Leftover) == 0)
	if h, ok := n.Value.(Handler); ok {
		res, err := h.Invoke(n, OpDelete, n.Leftover, Bool(effective))
		if err != nil {
			return false, err
		}
		if res != nil && !Truthy(res) {
			return false, nil
		}
	}
	if n.Owner == nil {
		return false, nil
	}
	switch owner := n.Owner.Value.(type) {
	case *Folder:
		return owner.Delete(n.Key), nil
	case *List:
		if i, ok := n.Key.index(); ok && i < len(owner.Items) {
			owner.Items = append(owner.Items[:i], owner.Items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
