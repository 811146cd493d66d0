// Package store holds the authoritative copy of an organizational chart and
// keeps it consistent with the edits a diagram makes to its own copy.
//
// A [Store] owns the ordered record collection, the key index over it, the
// current selection, and the redraw-suppression flag. Its state is exposed as
// immutable [Snapshot] values: every change builds a new snapshot, and a
// snapshot handed out earlier never changes.
//
// Three operations change state:
//
//   - [Store.Apply] folds a change batch emitted by the diagram.
//   - [Store.Select] and [Store.ClearSelection] track the diagram selection.
//   - [Store.EditField] applies side-panel edits to the selected record.
//
// Observers registered with [Store.Subscribe] receive each new snapshot
// synchronously on the goroutine that caused it, after the store's lock has
// been released, so an observer may call back into the store.
package store

import (
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/errors"
)

// Snapshot is one consistent state of the store. It is never modified after
// the store publishes it.
type Snapshot struct {
	records  []chart.Record
	index    *chart.Index
	selected *chart.Record
	skip     bool
	version  uint64

	// generation advances only when records change: on Apply and on a
	// committed field edit.
	generation uint64
}

// Records returns a copy of the authoritative collection.
func (s *Snapshot) Records() []chart.Record { return slices.Clone(s.records) }

// Len returns the number of records.
func (s *Snapshot) Len() int { return len(s.records) }

// At returns the record at position i.
func (s *Snapshot) At(i int) chart.Record { return s.records[i] }

// Lookup returns the record with key k and its position.
func (s *Snapshot) Lookup(k chart.Key) (chart.Record, int, bool) {
	i, ok := s.index.Lookup(k)
	if !ok {
		return chart.Record{}, -1, false
	}
	return s.records[i], i, true
}

// Selected returns the selected record, including live edits that have not
// been committed to the collection yet.
func (s *Snapshot) Selected() (chart.Record, bool) {
	if s.selected == nil {
		return chart.Record{}, false
	}
	return *s.selected, true
}

// SelectedRef returns the identity of the selection. A new pointer is
// published whenever the selected record changes, so observers can detect
// edits by comparing references. Nil means nothing is selected.
func (s *Snapshot) SelectedRef() *chart.Record { return s.selected }

// SkipsDiagramUpdate reports whether the diagram already reflects this
// snapshot and should not re-synchronize from it.
func (s *Snapshot) SkipsDiagramUpdate() bool { return s.skip }

// Version increases by one with every published snapshot.
func (s *Snapshot) Version() uint64 { return s.version }

// Generation identifies the collection. Selection changes and live edits
// publish snapshots with the generation of their predecessor, so observers
// that only draw records can skip them.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Verify checks that the index matches the collection exactly.
func (s *Snapshot) Verify() error { return s.index.Verify(s.records) }

// derive returns a shallow copy of s with the next version number. The copy
// shares the record slice and index; callers replace them before writing.
func (s *Snapshot) derive() *Snapshot {
	next := *s
	next.version++
	return &next
}

type observer struct {
	id int
	fn func(*Snapshot)
}

// Store is the authoritative state container.
//
// All writes hold an internal mutex, so notifications raised from several
// goroutines are applied one at a time.
type Store struct {
	mu        sync.Mutex
	cur       *Snapshot
	observers []observer
	nextID    int

	logger   *log.Logger
	reserved map[string]bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output. The default is
// log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReservedFields names attributes the side panel may not edit, typically
// the key and parent properties of the data format.
func WithReservedFields(names ...string) Option {
	return func(s *Store) {
		for _, n := range names {
			s.reserved[n] = true
		}
	}
}

// New creates a store over a deep copy of records. It returns an error when
// records violate the forest invariant.
func New(records []chart.Record, opts ...Option) (*Store, error) {
	if err := chart.Validate(records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "initial collection")
	}
	s := &Store{
		logger:   log.Default(),
		reserved: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	owned := chart.CloneRecords(records)
	s.cur = &Snapshot{records: owned, index: chart.BuildIndex(owned)}
	return s, nil
}

// Snapshot returns the current state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Subscribe registers fn to receive every snapshot the store publishes from
// now on. The returned function removes the registration; calling it more
// than once has no further effect.
func (s *Store) Subscribe(fn func(*Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.observers = slices.DeleteFunc(s.observers, func(o observer) bool { return o.id == id })
		})
	}
}

// Observers returns the number of registered observers.
func (s *Store) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// publish installs next as the current snapshot and releases the lock before
// notifying observers. It must be called with s.mu held.
func (s *Store) publish(next *Snapshot) {
	s.cur = next
	obs := slices.Clone(s.observers)
	s.mu.Unlock()
	for _, o := range obs {
		o.fn(next)
	}
}
