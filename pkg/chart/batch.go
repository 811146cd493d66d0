package chart

// ChangeKind tags a single entry of a [Batch].
type ChangeKind int

const (
	// ChangeModify carries the full new value of a record.
	ChangeModify ChangeKind = iota
	// ChangeInsert names a key that was created. The record value travels as a
	// ChangeModify entry in the same batch.
	ChangeInsert
	// ChangeRemove names a key that was deleted.
	ChangeRemove
)

// String returns the lower-case name of the kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeModify:
		return "modify"
	case ChangeInsert:
		return "insert"
	case ChangeRemove:
		return "remove"
	}
	return "unknown"
}

// Change is one tagged entry of a batch. Record is set for ChangeModify only.
type Change struct {
	Kind   ChangeKind
	Key    Key
	Record Record
}

// Batch is the incremental diff a diagram emits after a transaction. All three
// lists may be empty.
//
// A newly created record appears twice: its key in Inserted and its value in
// Modified. Consumers must fold the batch in the order modified, inserted,
// removed so that removal wins over insertion of the same key.
type Batch struct {
	Inserted []Key
	Modified []Record
	Removed  []Key
}

// IsEmpty reports whether the batch carries no changes.
func (b Batch) IsEmpty() bool {
	return len(b.Inserted) == 0 && len(b.Modified) == 0 && len(b.Removed) == 0
}

// Len returns the total number of entries.
func (b Batch) Len() int { return len(b.Inserted) + len(b.Modified) + len(b.Removed) }

// Changes flattens the batch into tagged entries in processing order:
// modifications, then insertions, then removals.
func (b Batch) Changes() []Change {
	out := make([]Change, 0, b.Len())
	for _, r := range b.Modified {
		out = append(out, Change{Kind: ChangeModify, Key: r.Key, Record: r})
	}
	for _, k := range b.Inserted {
		out = append(out, Change{Kind: ChangeInsert, Key: k})
	}
	for _, k := range b.Removed {
		out = append(out, Change{Kind: ChangeRemove, Key: k})
	}
	return out
}

// Add appends c to the matching list. A later modification of a key already
// present in Modified replaces the earlier value, so a batch built across a
// transaction carries each record's final state once.
func (b *Batch) Add(c Change) {
	switch c.Kind {
	case ChangeModify:
		for i, r := range b.Modified {
			if r.Key == c.Record.Key {
				b.Modified[i] = c.Record
				return
			}
		}
		b.Modified = append(b.Modified, c.Record)
	case ChangeInsert:
		b.Inserted = appendUnique(b.Inserted, c.Key)
	case ChangeRemove:
		b.Removed = appendUnique(b.Removed, c.Key)
	}
}

func appendUnique(keys []Key, k Key) []Key {
	for _, have := range keys {
		if have == k {
			return keys
		}
	}
	return append(keys, k)
}
