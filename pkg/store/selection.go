package store

import (
	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/observability"
)

// Select makes the record with key k the selection.
//
// If k does not resolve, the selection is cleared and an error with code
// INVALID_SELECTION is returned. Selecting the record that is already
// selected, with no pending live edits, publishes nothing. Reselecting a
// record with pending live edits discards them.
func (s *Store) Select(k chart.Key) error {
	s.mu.Lock()
	cur := s.cur
	r, i, ok := cur.Lookup(k)
	if !ok {
		s.mu.Unlock()
		s.ClearSelection()
		return errors.New(errors.ErrCodeInvalidSelection, "no record with key %#v", k)
	}
	if cur.selected != nil && cur.selected.Key == k && cur.selected.Equal(r) {
		s.mu.Unlock()
		return nil
	}

	next := cur.derive()
	sel := cur.records[i]
	next.selected = &sel
	s.logger.Debug("selection changed", "key", k, "position", i)
	s.publish(next)

	observability.Sync().OnSelectionChanged(k.String())
	return nil
}

// ClearSelection empties the selection. It publishes nothing when nothing is
// selected.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	cur := s.cur
	if cur.selected == nil {
		s.mu.Unlock()
		return
	}
	next := cur.derive()
	next.selected = nil
	s.logger.Debug("selection cleared")
	s.publish(next)

	observability.Sync().OnSelectionChanged("")
}
