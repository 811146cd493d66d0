package chart

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey is returned by [Validate] when a record has the zero key.
	ErrInvalidKey = errors.New("record key must not be empty")

	// ErrDuplicateKey is returned by [Validate] when two records share a key.
	ErrDuplicateKey = errors.New("duplicate record key")

	// ErrSelfParent is returned by [Validate] when a record reports to itself.
	ErrSelfParent = errors.New("record reports to itself")

	// ErrCycle is returned by [Validate] when following parent keys loops back
	// to a record already on the path.
	ErrCycle = errors.New("reporting lines contain a cycle")
)

// Validate checks the forest invariant of records: non-empty unique keys and
// an acyclic parent relation. Parent keys that do not resolve are allowed.
// Errors are wrapped with the offending key; use errors.Is to test the kind.
func Validate(records []Record) error {
	seen := make(map[Key]int, len(records))
	for i, r := range records {
		if r.Key.IsZero() {
			return fmt.Errorf("record %d: %w", i, ErrInvalidKey)
		}
		if _, dup := seen[r.Key]; dup {
			return fmt.Errorf("record %#v: %w", r.Key, ErrDuplicateKey)
		}
		seen[r.Key] = i
		if r.Parent == r.Key {
			return fmt.Errorf("record %#v: %w", r.Key, ErrSelfParent)
		}
	}
	return detectCycles(records, seen)
}

func detectCycles(records []Record, pos map[Key]int) error {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(records))

	for start := range records {
		if color[start] != white {
			continue
		}
		var path []int
		i, ok := start, true
		for ok && color[i] == white {
			color[i] = gray
			path = append(path, i)
			i, ok = pos[records[i].Parent]
		}
		if ok && color[i] == gray {
			return fmt.Errorf("record %#v: %w", records[i].Key, ErrCycle)
		}
		for _, p := range path {
			color[p] = black
		}
	}
	return nil
}

// Tree is a navigable view of a record forest. It does not copy the records;
// build a new Tree after the collection changes.
type Tree struct {
	records  []Record
	index    *Index
	children map[Key][]int
	roots    []int
}

// NewTree indexes records for navigation. Records whose parent key does not
// resolve are treated as roots. Sibling order follows collection order.
func NewTree(records []Record) *Tree {
	t := &Tree{
		records:  records,
		index:    BuildIndex(records),
		children: make(map[Key][]int),
	}
	for i, r := range records {
		if r.HasParent() && t.index.Contains(r.Parent) {
			t.children[r.Parent] = append(t.children[r.Parent], i)
			continue
		}
		t.roots = append(t.roots, i)
	}
	return t
}

// Len returns the number of records.
func (t *Tree) Len() int { return len(t.records) }

// Record returns the record with key k.
func (t *Tree) Record(k Key) (Record, bool) {
	i, ok := t.index.Lookup(k)
	if !ok {
		return Record{}, false
	}
	return t.records[i], true
}

// Roots returns the root records in collection order.
func (t *Tree) Roots() []Record { return t.pick(t.roots) }

// Children returns the direct reports of k in collection order.
func (t *Tree) Children(k Key) []Record { return t.pick(t.children[k]) }

// IsLeaf reports whether k has no direct reports.
func (t *Tree) IsLeaf(k Key) bool { return len(t.children[k]) == 0 }

// Parent returns the resolved parent record of k.
func (t *Tree) Parent(k Key) (Record, bool) {
	r, ok := t.Record(k)
	if !ok || !r.HasParent() {
		return Record{}, false
	}
	return t.Record(r.Parent)
}

// Dangling returns the records whose parent key names no record.
func (t *Tree) Dangling() []Record {
	var out []Record
	for _, i := range t.roots {
		if t.records[i].HasParent() {
			out = append(out, t.records[i])
		}
	}
	return out
}

// IsAncestor reports whether a is k or lies on the reporting line above k.
// Reparenting k under a would create a cycle exactly when IsAncestor(k, a).
func (t *Tree) IsAncestor(a, k Key) bool {
	seen := make(map[Key]bool)
	for cur := k; !cur.IsZero() && !seen[cur]; {
		if cur == a {
			return true
		}
		seen[cur] = true
		r, ok := t.Record(cur)
		if !ok {
			return false
		}
		cur = r.Parent
	}
	return false
}

// Walk visits every record depth-first, parents before their reports, with
// its depth below its root. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(r Record, depth int) bool) {
	var visit func(i, depth int) bool
	visit = func(i, depth int) bool {
		r := t.records[i]
		if !fn(r, depth) {
			return false
		}
		for _, c := range t.children[r.Key] {
			if !visit(c, depth+1) {
				return false
			}
		}
		return true
	}
	for _, i := range t.roots {
		if !visit(i, 0) {
			return
		}
	}
}

// Depth returns the number of levels in the forest; 0 when empty.
func (t *Tree) Depth() int {
	max := 0
	t.Walk(func(_ Record, depth int) bool {
		if depth+1 > max {
			max = depth + 1
		}
		return true
	})
	return max
}

func (t *Tree) pick(idx []int) []Record {
	if len(idx) == 0 {
		return nil
	}
	out := make([]Record, len(idx))
	for i, j := range idx {
		out[i] = t.records[j]
	}
	return out
}
