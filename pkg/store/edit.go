package store

import (
	"slices"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/observability"
)

// EditField sets attribute field of the selected record to value.
//
// Every call updates the selection, so observers of the selected record see
// the edit while it is being typed. When commit is true the edited record is
// also written into the collection at its indexed position and the
// redraw-suppression flag is cleared, because the diagram has not seen the
// edit yet. When commit is false the collection and the flag are untouched.
//
// EditField with nothing selected changes nothing and returns an error with
// code STALE_REFERENCE. Empty or reserved field names return INVALID_FIELD.
func (s *Store) EditField(field, value string, commit bool) error {
	err := s.editField(field, value, commit)
	observability.Sync().OnFieldEdit(field, commit, err)
	return err
}

func (s *Store) editField(field, value string, commit bool) error {
	if err := errors.ValidateFieldName(field); err != nil {
		return err
	}

	s.mu.Lock()
	if s.reserved[field] {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeInvalidField, "field %q cannot be edited", field)
	}
	cur := s.cur
	if cur.selected == nil {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeStaleReference, "no record selected")
	}

	staged := cur.selected.With(field, value)
	next := cur.derive()
	next.selected = &staged

	if commit {
		i, ok := cur.index.Lookup(staged.Key)
		if !ok {
			s.mu.Unlock()
			return errors.New(errors.ErrCodeLookupMiss, "selected record %#v is not in the collection", staged.Key)
		}
		records := slices.Clone(cur.records)
		records[i] = staged
		next.records = records
		next.skip = false
		next.generation++
	}

	s.logger.Debug("field edited", "key", staged.Key, "field", field, "commit", commit)
	s.publish(next)
	return nil
}
