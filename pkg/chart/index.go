package chart

import (
	"fmt"
	"maps"
)

// Index maps record keys to their position in an ordered collection.
//
// The zero value is an empty, usable index. An Index is not safe for
// concurrent mutation; owners that share an index between snapshots clone it
// before writing.
type Index struct {
	pos map[Key]int
}

// BuildIndex returns an index over records.
func BuildIndex(records []Record) *Index {
	x := &Index{}
	x.Rebuild(records)
	return x
}

// Rebuild clears the index and repopulates it in one pass over records.
// After Rebuild every key in records maps to exactly its position and no other
// key is present. If a key appears twice, the later position wins.
func (x *Index) Rebuild(records []Record) {
	x.pos = make(map[Key]int, len(records))
	for i, r := range records {
		x.pos[r.Key] = i
	}
}

// Lookup returns the position of k.
func (x *Index) Lookup(k Key) (int, bool) {
	i, ok := x.pos[k]
	return i, ok
}

// Contains reports whether k is indexed.
func (x *Index) Contains(k Key) bool {
	_, ok := x.pos[k]
	return ok
}

// Set registers k at pos. Callers use it for appends, which do not shift the
// positions of other records.
func (x *Index) Set(k Key, pos int) {
	if x.pos == nil {
		x.pos = make(map[Key]int)
	}
	x.pos[k] = pos
}

// Len returns the number of indexed keys.
func (x *Index) Len() int { return len(x.pos) }

// Clone returns an independent copy of x.
func (x *Index) Clone() *Index {
	return &Index{pos: maps.Clone(x.pos)}
}

// Verify checks that x indexes exactly the keys of records at their true
// positions. It returns the first inconsistency found.
func (x *Index) Verify(records []Record) error {
	if len(x.pos) != len(records) {
		return fmt.Errorf("index has %d keys, collection has %d records", len(x.pos), len(records))
	}
	for i, r := range records {
		got, ok := x.pos[r.Key]
		if !ok {
			return fmt.Errorf("key %#v at position %d is not indexed", r.Key, i)
		}
		if got != i {
			return fmt.Errorf("key %#v indexed at %d, found at %d", r.Key, got, i)
		}
	}
	return nil
}
