package vfs

import (
	"fmt"
	"net/http"
)

// Serializer encodes a graph for persistence. The encoding must preserve
// cycles and aliasing so the origin loader can restore shared identity.
type Serializer interface {
	Encode(top *Folder) ([]byte, error)
}

// Origin describes where a graph was loaded from, for reload and save.
type Origin struct {
	// Location is the definition or snapshot the graph came from.
	Location string
	// Dir is the context directory real delegates resolve against.
	Dir string
}

// Root owns a top-level graph and the public entry points over it. A root
// is itself a value, so graphs can embed other roots for composition.
type Root struct {
	top        *Folder
	origin     *Origin
	serializer Serializer

	// Advisory request/response pair for handler invocations. Never affects
	// resolution.
	req *http.Request
	res http.ResponseWriter

	lastPath Path
}

func (*Root) value() {}

// NewRoot creates a root over the given top folder. A nil top starts an
// empty graph. The Global sentinel, if used, belongs on this folder.
func NewRoot(top *Folder) *Root {
	if top == nil {
		top = NewFolder()
	}
	return &Root{top: top}
}

// Top returns a fresh node viewing the top-level folder.
func (r *Root) Top() *Node {
	return &Node{Value: r.top, Root: r}
}

// TopFolder exposes the top-level folder for serialization collaborators.
func (r *Root) TopFolder() *Folder {
	return r.top
}

// SetOrigin records the external origin the graph was loaded from.
func (r *Root) SetOrigin(o *Origin) {
	r.origin = o
}

// Origin returns the recorded origin, nil when the graph was built in
// memory.
func (r *Root) Origin() *Origin {
	return r.origin
}

// SetSerializer wires the external serializer Save delegates to.
func (r *Root) SetSerializer(s Serializer) {
	r.serializer = s
}

// SetContext attaches an advisory request/response pair readable by handler
// invocations through the node they receive.
func (r *Root) SetContext(req *http.Request, res http.ResponseWriter) {
	r.req = req
	r.res = res
}

// Request returns the attached request, if any.
func (r *Root) Request() *http.Request {
	return r.req
}

// Response returns the attached response writer, if any.
func (r *Root) Response() http.ResponseWriter {
	return r.res
}

// Get tokenizes a path string and resolves it from the top.
func (r *Root) Get(path string, folderMode bool) (*Node, error) {
	return r.GetPath(Tokenize(path), folderMode)
}

// GetPath resolves a pre-split key sequence from the top. The sequence is
// recorded as the last requested path for diagnostics.
func (r *Root) GetPath(path Path, folderMode bool) (*Node, error) {
	r.lastPath = path
	return r.Top().Resolve(path, folderMode)
}

// URLGet resolves the virtual path embedded in a URL: percent-decoded, with
// the leading separator stripped and query/fragment ignored.
func (r *Root) URLGet(rawURL string) (*Node, error) {
	return r.Get(PathFromURL(rawURL), false)
}

// LastPath returns the most recently requested path.
func (r *Root) LastPath() Path {
	return r.lastPath
}

// Save delegates the whole graph to the configured serializer.
func (r *Root) Save() ([]byte, error) {
	if r.serializer == nil {
		return nil, fmt.Errorf("vfs: no serializer configured")
	}
	return r.serializer.Encode(r.top)
}
