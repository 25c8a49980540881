package appmanifest

// FlatEntry is one path-value pair produced by Flatten.
type FlatEntry struct {
	// Path is the dot-joined location of the leaf.
	Path string
	// Value is the leaf itself. Arrays are leaves, never decomposed by index.
	Value *Value
}

// Flatten walks the document depth-first and emits a dot-joined path for
// every leaf. Objects are recursed into; arrays and scalars are emitted
// whole, so callers can test for presence of a list without caring about
// its elements.
func (d *Document) Flatten() []FlatEntry {
	var entries []FlatEntry

	flattenInto(&entries, "", d.root)

	return entries
}

// FlatMap returns Flatten's entries keyed by path for direct lookup.
func (d *Document) FlatMap() map[string]*Value {
	entries := d.Flatten()

	flat := make(map[string]*Value, len(entries))
	for _, entry := range entries {
		flat[entry.Path] = entry.Value
	}

	return flat
}

// flattenInto appends leaves below v, prefixing their paths with prefix.
func flattenInto(entries *[]FlatEntry, prefix string, v *Value) {
	if v.Kind() != KindObject {
		*entries = append(*entries, FlatEntry{Path: prefix, Value: v})
		return
	}

	for _, member := range v.Members() {
		path := member.Key
		if prefix != "" {
			path = prefix + "." + member.Key
		}

		flattenInto(entries, path, member.Value)
	}
}
