package chart

import (
	"maps"
	"slices"
)

// Attributes holds the open set of named string fields of a record (name,
// title, nation, headOf, ...). Any field may be absent.
type Attributes map[string]string

// Clone returns a copy of a. The copy of a nil map is an empty map.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	maps.Copy(out, a)
	return out
}

// Names returns the attribute names in sorted order.
func (a Attributes) Names() []string {
	return slices.Sorted(maps.Keys(a))
}

// Record is one node of the chart.
//
// Records are treated as values. Code that needs a changed record builds a
// new one with [Record.With] or [Record.WithParent]; the attribute map of an
// existing record is never written in place once the record is shared.
type Record struct {
	Key    Key        // Stable, unique identifier
	Parent Key        // Key of the record this one reports to; zero for roots
	Attrs  Attributes // Open field set; may be nil
}

// HasParent reports whether the record names a parent.
func (r Record) HasParent() bool { return !r.Parent.IsZero() }

// Get returns the named attribute and whether it is present.
func (r Record) Get(name string) (string, bool) {
	v, ok := r.Attrs[name]
	return v, ok
}

// Value returns the named attribute, or "" when absent.
func (r Record) Value(name string) string { return r.Attrs[name] }

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	r.Attrs = r.Attrs.Clone()
	return r
}

// With returns a copy of r with the named attribute set to value.
func (r Record) With(name, value string) Record {
	out := r.Clone()
	out.Attrs[name] = value
	return out
}

// Without returns a copy of r with the named attribute removed.
func (r Record) Without(name string) Record {
	out := r.Clone()
	delete(out.Attrs, name)
	return out
}

// WithParent returns a copy of r reporting to parent. A zero parent makes the
// record a root.
func (r Record) WithParent(parent Key) Record {
	out := r.Clone()
	out.Parent = parent
	return out
}

// Equal reports whether r and o carry the same key, parent, and attributes.
// A nil attribute map equals an empty one.
func (r Record) Equal(o Record) bool {
	return r.Key == o.Key && r.Parent == o.Parent && maps.Equal(r.Attrs, o.Attrs)
}

// CloneRecords deep-copies a record slice.
func CloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// Keys extracts the key of each record, in order.
func Keys(records []Record) []Key {
	keys := make([]Key, len(records))
	for i, r := range records {
		keys[i] = r.Key
	}
	return keys
}
