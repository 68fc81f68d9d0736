package vfs

// Node is a transient view produced by resolving a path. It is never
// persisted: only the underlying value graph survives across calls, and a
// node simply points into it.
type Node struct {
	// Value is the graph value the node currently views; nil for a missing
	// resolution.
	Value Value
	// Owner is the node this one was produced from. Navigational only; the
	// graph itself owns the values.
	Owner *Node
	// Key is the key used to reach this node from its owner.
	Key Key
	// Leftover holds the keys not consumed by graph descent. Once non-empty
	// it only ever grows for the rest of the chain.
	Leftover Path
	// Root is the owning root.
	Root *Root
}

// NoParentError reports a Parent step attempted from the absolute root.
type NoParentError struct{}

func (NoParentError) Error() string {
	return "vfs: absolute root has no parent"
}

// ErrNoParent is the sentinel form of NoParentError for errors.Is checks.
var ErrNoParent error = NoParentError{}

// Item performs a single navigation step from n.
//
// Parent returns the owner, Global redirects to the root top's global entry,
// and ordinary keys descend the graph while n views a folder. Descent stops
// on the first non-folder value: the step then returns a node with the same
// value and the key pushed onto the leftover path. In folder mode a list is
// navigable by numeric index. An absent folder key falls back to the
// folder's Index entry, then to the root's Global entry, then to a missing
// node; absence is never an error.
func (n *Node) Item(key Key, folderMode bool) (*Node, error) {
	switch key.Sym {
	case SymParent:
		if n.Owner == nil {
			return nil, NoParentError{}
		}
		return n.Owner, nil
	case SymGlobal:
		if n.Owner != nil {
			return n.Root.Top().Item(Global, false)
		}
	}

	if len(n.Leftover) > 0 {
		return n.leftoverStep(key), nil
	}

	switch v := n.Value.(type) {
	case *Folder:
		if val, ok := v.Get(key); ok {
			return n.child(key, val), nil
		}
		return n.fallback(key), nil
	case *List:
		if !folderMode {
			return n.leftoverStep(key), nil
		}
		if i, ok := key.index(); ok && i < len(v.Items) {
			return n.child(key, v.Items[i]), nil
		}
		return n.fallback(key), nil
	case Binary, *Root:
		if !folderMode {
			return n.leftoverStep(key), nil
		}
		return n.fallback(key), nil
	}
	return n.leftoverStep(key), nil
}

// Resolve folds Item over the key sequence left to right. An empty sequence
// returns n unchanged. Resolution reads the graph as it stands at call time;
// nothing is cached across calls.
func (n *Node) Resolve(path Path, folderMode bool) (*Node, error) {
	cur := n
	for _, key := range path {
		next, err := cur.Item(key, folderMode)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// child produces the node for a value found under key. Graph descent
// continues, so the leftover path starts fresh.
func (n *Node) child(key Key, v Value) *Node {
	return &Node{Value: v, Owner: n, Key: key, Root: n.Root}
}

// leftoverStep carries the current value forward with key pushed onto the
// leftover path. Off-graph keys are never reinterpreted as descent.
func (n *Node) leftoverStep(key Key) *Node {
	leftover := make(Path, 0, len(n.Leftover)+1)
	leftover = append(append(leftover, n.Leftover...), key)
	return &Node{Value: n.Value, Owner: n, Key: key, Leftover: leftover, Root: n.Root}
}

// fallback produces the substitute node for an absent key: the folder's
// Index entry if declared, else the root top's Global entry, else a missing
// node with a nil value.
func (n *Node) fallback(key Key) *Node {
	var val Value
	if f, ok := n.Value.(*Folder); ok {
		if idx, found := f.Get(Index); found {
			val = idx
		}
	}
	if val == nil {
		if g, found := n.Root.top.Get(Global); found {
			val = g
		}
	}
	return &Node{Value: val, Owner: n, Key: key, Leftover: Path{key}, Root: n.Root}
}
