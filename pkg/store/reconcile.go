package store

import (
	"slices"
	"time"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/observability"
)

// Result describes what [Store.Apply] did with a batch.
type Result struct {
	Modified int // records replaced in place
	Inserted int // records appended
	Removed  int // records filtered out

	// Ignored lists keys that did not resolve: modified records with no
	// indexed entry, inserted keys with no record value, removed keys that
	// were not present, and zero keys anywhere in the batch.
	Ignored []chart.Key

	SelectionRefreshed bool // the selected record was replaced by a modified value
	SelectionCleared   bool // the selected record was removed

	Version uint64 // version of the snapshot the batch produced
}

// Apply folds a change batch emitted by the diagram into the collection.
//
// The batch is processed in a fixed order:
//
//  1. Each modified record whose key is indexed replaces the record at that
//     position. If it is the selected record, the selection is refreshed to
//     the new value. Every modified record is remembered by key.
//  2. Each inserted key that is not yet indexed is appended, using the value
//     remembered in step 1, and registered at its new position. Keys already
//     present are skipped, so a record listed in both Modified and Inserted
//     is stored once.
//  3. If any keys were removed, the collection is filtered and the index
//     rebuilt. A removed selection is cleared. Removal runs last and therefore
//     wins over an insertion of the same key.
//  4. The redraw-suppression flag is set: the diagram produced this batch and
//     already shows it.
//
// Records with the zero key are never stored; they are reported as ignored.
//
// Apply always publishes a new snapshot, even for an empty batch, because the
// suppression flag changes meaning. Every Apply advances the collection
// generation.
func (s *Store) Apply(b chart.Batch) Result {
	start := time.Now()

	s.mu.Lock()
	cur := s.cur
	next := cur.derive()
	var res Result

	records := slices.Clone(cur.records)
	index := cur.index
	modified := make(map[chart.Key]chart.Record, len(b.Modified))

	for _, r := range b.Modified {
		if r.Key.IsZero() {
			continue
		}
		r = r.Clone()
		modified[r.Key] = r
		i, ok := index.Lookup(r.Key)
		if !ok {
			continue
		}
		records[i] = r
		res.Modified++
		if next.selected != nil && next.selected.Key == r.Key {
			sel := r
			next.selected = &sel
			res.SelectionRefreshed = true
		}
	}

	for _, k := range b.Inserted {
		if index.Contains(k) {
			continue
		}
		r, ok := modified[k]
		if !ok {
			res.Ignored = append(res.Ignored, k)
			continue
		}
		if index == cur.index {
			index = index.Clone()
		}
		index.Set(k, len(records))
		records = append(records, r)
		res.Inserted++
	}

	missed := make(map[chart.Key]bool)
	for _, k := range res.Ignored {
		missed[k] = true
	}
	for _, r := range b.Modified {
		if !index.Contains(r.Key) && !missed[r.Key] {
			missed[r.Key] = true
			res.Ignored = append(res.Ignored, r.Key)
		}
	}

	if len(b.Removed) > 0 {
		gone := make(map[chart.Key]bool, len(b.Removed))
		for _, k := range b.Removed {
			gone[k] = true
			if !index.Contains(k) {
				res.Ignored = append(res.Ignored, k)
			}
		}
		before := len(records)
		records = slices.DeleteFunc(records, func(r chart.Record) bool { return gone[r.Key] })
		res.Removed = before - len(records)
		index = chart.BuildIndex(records)

		if next.selected != nil && gone[next.selected.Key] {
			next.selected = nil
			res.SelectionCleared = true
			res.SelectionRefreshed = false
		}
	}

	next.records = records
	next.index = index
	next.skip = true
	next.generation++
	res.Version = next.version

	s.logger.Debug("applied change batch",
		"modified", res.Modified,
		"inserted", res.Inserted,
		"removed", res.Removed,
		"ignored", len(res.Ignored),
		"version", res.Version)

	s.publish(next)

	observability.Sync().OnBatchApplied(observability.BatchStats{
		Modified: res.Modified,
		Inserted: res.Inserted,
		Removed:  res.Removed,
		Ignored:  len(res.Ignored),
	}, time.Since(start))
	if res.SelectionCleared {
		observability.Sync().OnSelectionChanged("")
	}
	return res
}
