// Package chart provides the data model of an organizational chart: keyed
// records linked by a "reports to" relation, the position index over an
// ordered record collection, and the change batches a diagram emits when the
// user edits its copy of the data.
//
// # Records
//
// A [Record] is one position or person. It carries a stable [Key], an optional
// parent key, and an open set of string attributes (name, title, nation, and
// so on). Records are values: methods such as [Record.With] return modified
// copies and never touch the receiver's attribute map.
//
//	boss := chart.Record{Key: chart.IntKey(0), Attrs: chart.Attributes{"name": "Ban Ki-moon"}}
//	aide := chart.Record{Key: chart.IntKey(1), Parent: boss.Key, Attrs: chart.Attributes{"name": "Patricia O'Brien"}}
//
// # Keys
//
// Keys are numeric or string. The two are distinct: IntKey(1) and
// StringKey("1") never compare equal, matching how the JSON input spells them.
// The zero Key means "no key" and is used for the parent of a root record.
//
// # Index
//
// [Index] maps keys to positions in an ordered collection. It is rebuilt in a
// single pass with [Index.Rebuild] whenever positions shift (removals) and
// updated directly with [Index.Set] when a record is appended.
//
// # Batches
//
// A [Batch] is the incremental diff a diagram emits after a transaction:
// inserted keys, modified records, and removed keys. [Batch.Changes] flattens
// it into tagged [Change] values in processing order.
//
// # Forests
//
// The parent relation must form a forest. [Validate] checks for empty and
// duplicate keys, self-parenting, and cycles. A parent key that does not
// resolve (for example after its record was removed) is allowed; [NewTree]
// treats such records as roots.
//
// # Concurrency
//
// Record and Batch values are safe to share once built. [Index] and [Tree]
// are not safe for concurrent mutation.
package chart
