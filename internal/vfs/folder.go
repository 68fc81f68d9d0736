package vfs

// Folder maps keys to values, acting as a directory node of the graph.
// Entries keep insertion order for listing; sentinel keys share the table
// but never appear in listings. Folders are held by pointer so aliased and
// cyclic references mutate a single slot.
type Folder struct {
	entries map[Key]Value
	order   []Key
}

func (*Folder) value() {}

// NewFolder creates an empty folder.
func NewFolder() *Folder {
	return &Folder{entries: make(map[Key]Value)}
}

// Get looks up a key.
func (f *Folder) Get(key Key) (Value, bool) {
	v, ok := f.entries[key]
	return v, ok
}

// Has reports whether the key is present.
func (f *Folder) Has(key Key) bool {
	_, ok := f.entries[key]
	return ok
}

// Set stores a value under key, preserving the position of existing keys.
func (f *Folder) Set(key Key, v Value) {
	if _, ok := f.entries[key]; !ok {
		f.order = append(f.order, key)
	}
	f.entries[key] = v
}

// Delete removes a key and reports whether it was present.
func (f *Folder) Delete(key Key) bool {
	if _, ok := f.entries[key]; !ok {
		return false
	}
	delete(f.entries, key)
	for i, k := range f.order {
		if k == key {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the ordinary key names in insertion order. Sentinel entries
// are excluded, matching directory listing semantics.
func (f *Folder) Keys() []string {
	names := make([]string, 0, len(f.order))
	for _, k := range f.order {
		if k.Sym == SymNone {
			names = append(names, k.Name)
		}
	}
	return names
}

// Len returns the number of entries, sentinels included.
func (f *Folder) Len() int {
	return len(f.entries)
}

// Each visits every entry in insertion order, sentinels included, until the
// visitor returns false.
func (f *Folder) Each(visit func(Key, Value) bool) {
	for _, k := range f.order {
		if !visit(k, f.entries[k]) {
			return
		}
	}
}
