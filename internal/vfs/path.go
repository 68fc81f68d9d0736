package vfs

import (
	"net/url"
	"strconv"
	"strings"
)

// Path syntax characters.
const (
	Separator = '/'
	Escape    = '\\'
)

// Symbol distinguishes the out-of-band sentinel keys from ordinary keys.
type Symbol int

const (
	SymNone Symbol = iota
	SymIndex
	SymGlobal
	SymParent
)

// Key addresses one entry of a folder. Ordinary keys carry a name; sentinel
// keys carry only their symbol and compare distinct from every ordinary key.
type Key struct {
	Name string
	Sym  Symbol
}

// The three sentinel identities.
var (
	Index  = Key{Sym: SymIndex}
	Global = Key{Sym: SymGlobal}
	Parent = Key{Sym: SymParent}
)

// K builds an ordinary key.
func K(name string) Key {
	return Key{Name: name}
}

func (k Key) String() string {
	switch k.Sym {
	case SymIndex:
		return "<index>"
	case SymGlobal:
		return "<global>"
	case SymParent:
		return "<parent>"
	}
	return k.Name
}

// index parses the key as a non-negative list position.
func (k Key) index() (int, bool) {
	if k.Sym != SymNone {
		return 0, false
	}
	i, err := strconv.Atoi(k.Name)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// Path is an ordered key sequence.
type Path []Key

// Keys builds a path of ordinary keys.
func Keys(names ...string) Path {
	p := make(Path, len(names))
	for i, name := range names {
		p[i] = K(name)
	}
	return p
}

// Strings renders the path's keys for display.
func (p Path) Strings() []string {
	out := make([]string, len(p))
	for i, k := range p {
		out[i] = k.String()
	}
	return out
}

func (p Path) String() string {
	return strings.Join(p.Strings(), string(Separator))
}

// Tokenize splits a raw path string into an ordered key sequence. The
// separator splits keys unless escaped; an escape character is consumed and
// makes the following character literal. Empty input denotes the current
// node and yields an empty sequence.
func Tokenize(path string) Path {
	if path == "" {
		return nil
	}
	var (
		keys Path
		cur  strings.Builder
	)
	for i := 0; i < len(path); i++ {
		switch c := path[i]; {
		case c == Escape && i+1 < len(path):
			i++
			cur.WriteByte(path[i])
		case c == Separator:
			keys = append(keys, K(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(keys, K(cur.String()))
}

// PathFromURL extracts the virtual path from a URL: the percent-decoded
// path component with its leading separator stripped. Query and fragment
// are ignored. Malformed input degrades to a best-effort raw path rather
// than failing.
func PathFromURL(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else {
		if i := strings.IndexAny(p, "?#"); i >= 0 {
			p = p[:i]
		}
		if dec, err := url.PathUnescape(p); err == nil {
			p = dec
		}
	}
	return strings.TrimPrefix(p, string(Separator))
}
