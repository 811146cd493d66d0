package diagram

import (
	"slices"

	"github.com/matzehuels/orgchart/pkg/bridge"
	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/config"
	"github.com/matzehuels/orgchart/pkg/errors"
)

// Tx is an open transaction on an [Engine]. Its operations work on a private
// copy of the records and record every change in a batch. The copy replaces
// the engine's records only when the transaction function returns nil.
type Tx struct {
	tpl     *config.Template
	records []chart.Record
	index   *chart.Index
	batch   chart.Batch
	newKey  func() chart.Key
}

// Transact runs fn in a transaction. When fn returns nil, the changes are
// committed and, if there are any, delivered as one batch to the model-change
// handler after the engine's lock is released. When fn returns an error,
// nothing changes and no batch is emitted.
//
// If the transaction removes the selected node, selection listeners receive
// an empty selection after the batch.
func (e *Engine) Transact(fn func(tx *Tx) error) (chart.Batch, error) {
	e.mu.Lock()
	records := chart.CloneRecords(e.records)
	tx := &Tx{
		tpl:     e.tpl,
		records: records,
		index:   chart.BuildIndex(records),
		newKey:  e.newKey,
	}
	if err := fn(tx); err != nil {
		e.mu.Unlock()
		e.logger.Debug("transaction rolled back", "err", err)
		return chart.Batch{}, err
	}

	e.records = tx.records
	e.index.Rebuild(e.records)
	for k := range e.collapsed {
		if !e.index.Contains(k) {
			delete(e.collapsed, k)
		}
	}
	lost := !e.selected.IsZero() && !e.index.Contains(e.selected)
	if lost {
		e.selected = chart.Key{}
	}
	handler := e.onChange
	obs := slices.Clone(e.listeners)
	e.mu.Unlock()

	batch := tx.batch
	e.logger.Debug("transaction committed",
		"inserted", len(batch.Inserted), "modified", len(batch.Modified), "removed", len(batch.Removed))
	if handler != nil && !batch.IsEmpty() {
		handler(batch)
	}
	if lost {
		notify(obs, bridge.SelectionEvent{Part: bridge.PartNone})
	}
	return batch, nil
}

// Record returns the current value of the record with key k.
func (tx *Tx) Record(k chart.Key) (chart.Record, bool) {
	i, ok := tx.index.Lookup(k)
	if !ok {
		return chart.Record{}, false
	}
	return tx.records[i], true
}

func (tx *Tx) lookup(k chart.Key) (int, error) {
	i, ok := tx.index.Lookup(k)
	if !ok {
		return 0, errors.New(errors.ErrCodeLookupMiss, "no node with key %#v", k)
	}
	return i, nil
}

func (tx *Tx) replace(i int, r chart.Record) {
	tx.records[i] = r
	tx.batch.Add(chart.Change{Kind: chart.ChangeModify, Key: r.Key, Record: r.Clone()})
}

// SetField sets an attribute of node k, as in-place text editing does. The
// key and parent properties cannot be set this way.
func (tx *Tx) SetField(k chart.Key, name, value string) error {
	if err := errors.ValidateFieldName(name); err != nil {
		return err
	}
	for _, reserved := range tx.tpl.Reserved() {
		if name == reserved {
			return errors.New(errors.ErrCodeInvalidField, "field %q cannot be edited", name)
		}
	}
	i, err := tx.lookup(k)
	if err != nil {
		return err
	}
	if v, ok := tx.records[i].Get(name); ok && v == value {
		return nil
	}
	tx.replace(i, tx.records[i].With(name, value))
	return nil
}

// Reparent moves node k under parent, as dropping a node onto another does.
// A zero parent makes k a root. Moving a node under itself or one of its own
// reports returns an error with code CYCLE.
func (tx *Tx) Reparent(k, parent chart.Key) error {
	i, err := tx.lookup(k)
	if err != nil {
		return err
	}
	if !parent.IsZero() {
		if _, err := tx.lookup(parent); err != nil {
			return err
		}
		if chart.NewTree(tx.records).IsAncestor(k, parent) {
			return errors.New(errors.ErrCodeCycle, "%#v cannot report to %#v", k, parent)
		}
	}
	if tx.records[i].Parent == parent {
		return nil
	}
	tx.replace(i, tx.records[i].WithParent(parent))
	return nil
}

// CreateChild adds a new node reporting to parent and returns its key. A zero
// parent creates a root. attrs may be nil.
func (tx *Tx) CreateChild(parent chart.Key, attrs chart.Attributes) (chart.Key, error) {
	if !parent.IsZero() {
		if _, err := tx.lookup(parent); err != nil {
			return chart.Key{}, err
		}
	}
	k := tx.newKey()
	if k.IsZero() || tx.index.Contains(k) {
		return chart.Key{}, errors.New(errors.ErrCodeDuplicateKey, "generated key %#v is not unique", k)
	}
	r := chart.Record{Key: k, Parent: parent, Attrs: attrs.Clone()}
	tx.records = append(tx.records, r)
	tx.index.Set(k, len(tx.records)-1)
	tx.batch.Add(chart.Change{Kind: chart.ChangeInsert, Key: k})
	tx.batch.Add(chart.Change{Kind: chart.ChangeModify, Key: k, Record: r.Clone()})
	return k, nil
}

// Delete removes node k. Its reports keep their parent key and become roots.
func (tx *Tx) Delete(k chart.Key) error {
	if _, err := tx.lookup(k); err != nil {
		return err
	}
	tx.remove(map[chart.Key]bool{k: true})
	return nil
}

// DeleteTree removes node k together with everyone reporting to it, directly
// or indirectly.
func (tx *Tx) DeleteTree(k chart.Key) error {
	if _, err := tx.lookup(k); err != nil {
		return err
	}
	tree := chart.NewTree(tx.records)
	gone := make(map[chart.Key]bool)
	var mark func(chart.Key)
	mark = func(k chart.Key) {
		gone[k] = true
		for _, c := range tree.Children(k) {
			mark(c.Key)
		}
	}
	mark(k)
	tx.remove(gone)
	return nil
}

func (tx *Tx) remove(gone map[chart.Key]bool) {
	for _, r := range tx.records {
		if !gone[r.Key] {
			continue
		}
		// A node created and removed in the same transaction was never seen
		// outside it.
		if slices.Contains(tx.batch.Inserted, r.Key) {
			tx.batch.Inserted = slices.DeleteFunc(tx.batch.Inserted, func(k chart.Key) bool { return k == r.Key })
			continue
		}
		tx.batch.Add(chart.Change{Kind: chart.ChangeRemove, Key: r.Key})
	}
	tx.batch.Modified = slices.DeleteFunc(tx.batch.Modified, func(r chart.Record) bool { return gone[r.Key] })
	tx.records = slices.DeleteFunc(tx.records, func(r chart.Record) bool { return gone[r.Key] })
	tx.index.Rebuild(tx.records)
}
