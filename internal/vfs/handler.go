package vfs

// Op is the operation kind dispatched over a node.
type Op string

const (
	OpList   Op = "list"
	OpRead   Op = "read"
	OpAppend Op = "append"
	OpWrite  Op = "write"
	OpDelete Op = "delete"
)

// Handler is a callable value standing in for a node. It intercepts every
// operation dispatched at the node it occupies, receiving the unconsumed
// leftover path, the operation's data (if any) and the node itself for
// parent/root/request access.
type Handler interface {
	Value
	Invoke(n *Node, op Op, leftover Path, data Value) (Value, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(n *Node, op Op, leftover Path, data Value) (Value, error)

func (HandlerFunc) value() {}

// Invoke calls the function.
func (f HandlerFunc) Invoke(n *Node, op Op, leftover Path, data Value) (Value, error) {
	return f(n, op, leftover, data)
}
