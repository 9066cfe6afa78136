package props

import (
	"sort"
	"strings"
)

// Entry is a named Value inside a Bag.
type Entry struct {
	Name  string
	Value Value
}

// Bag is an insertion-ordered attribute/property map. The zero Bag is ready
// to use. Setting an existing name keeps its original position.
type Bag struct {
	entries []Entry
	index   map[string]int
}

// NewBag builds a bag from name/value pairs in order.
func NewBag(entries ...Entry) *Bag {
	b := &Bag{}
	for _, e := range entries {
		b.Set(e.Name, e.Value)
	}
	return b
}

// FromMap builds a bag from a Go map. Keys are sorted so the result is
// deterministic.
func FromMap(m map[string]interface{}) *Bag {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := &Bag{}
	for _, k := range keys {
		b.Set(k, Of(m[k]))
	}
	return b
}

// Set inserts or replaces name.
func (b *Bag) Set(name string, v Value) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[name]; ok {
		b.entries[i].Value = v
		return
	}
	b.index[name] = len(b.entries)
	b.entries = append(b.entries, Entry{Name: name, Value: v})
}

// Get returns the value stored under name.
func (b *Bag) Get(name string) (Value, bool) {
	if b == nil || b.index == nil {
		return Null, false
	}
	i, ok := b.index[name]
	if !ok {
		return Null, false
	}
	return b.entries[i].Value, true
}

// Lookup finds name ignoring ASCII case, which is how attribute names
// compare after a markup parser lowercased them.
func (b *Bag) Lookup(name string) (Value, bool) {
	if v, ok := b.Get(name); ok {
		return v, true
	}
	if b == nil {
		return Null, false
	}
	for _, e := range b.entries {
		if strings.EqualFold(e.Name, name) {
			return e.Value, true
		}
	}
	return Null, false
}

// Delete removes name, keeping the order of the remaining entries.
func (b *Bag) Delete(name string) {
	if b == nil || b.index == nil {
		return
	}
	i, ok := b.index[name]
	if !ok {
		return
	}
	b.entries = append(b.entries[:i], b.entries[i+1:]...)
	delete(b.index, name)
	for j := i; j < len(b.entries); j++ {
		b.index[b.entries[j].Name] = j
	}
}

// Len returns the number of entries.
func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Entries returns a copy of the entries in insertion order.
func (b *Bag) Entries() []Entry {
	if b == nil {
		return nil
	}
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Clone returns an independent copy.
func (b *Bag) Clone() *Bag {
	out := &Bag{}
	if b == nil {
		return out
	}
	for _, e := range b.entries {
		out.Set(e.Name, e.Value)
	}
	return out
}

// Merge copies every entry of other into b; other wins on conflicts.
func (b *Bag) Merge(other *Bag) {
	for _, e := range other.Entries() {
		b.Set(e.Name, e.Value)
	}
}

// Map returns the bag as a plain Go map of underlying values.
func (b *Bag) Map() map[string]interface{} {
	out := make(map[string]interface{}, b.Len())
	if b == nil {
		return out
	}
	for _, e := range b.entries {
		out[e.Name] = e.Value.Interface()
	}
	return out
}
