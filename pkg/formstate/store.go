package formstate

import (
	"github.com/goliatone/go-formsync/pkg/field"
)

// Store holds the baseline snapshots and the authoritative row of one form.
// It is not safe for concurrent use; the controller serialises access.
type Store struct {
	keys      Keys
	snapshots []field.Snapshot
	row       Row
}

// NewStore seeds a store with the row mapping and the initial row, which may
// be nil for forms that have not loaded a record.
func NewStore(keys Keys, row Row) *Store {
	return &Store{
		keys: keys.withDefaults(),
		row:  row.Clone(),
	}
}

// Keys returns the row key mapping.
func (s *Store) Keys() Keys {
	return s.keys
}

// Snapshot returns the baseline for the (name, id) pair.
func (s *Store) Snapshot(name, id string) (field.Snapshot, bool) {
	if s == nil {
		return field.Snapshot{}, false
	}
	for _, snap := range s.snapshots {
		if snap.Matches(name, id) {
			return snap, true
		}
	}
	return field.Snapshot{}, false
}

// SnapshotOf returns the baseline for a live input.
func (s *Store) SnapshotOf(in field.Input) (field.Snapshot, bool) {
	if in == nil {
		return field.Snapshot{}, false
	}
	return s.Snapshot(field.NameOf(in), in.ID())
}

// Snapshots returns a copy of the baseline set.
func (s *Store) Snapshots() []field.Snapshot {
	if s == nil {
		return nil
	}
	return append([]field.Snapshot(nil), s.snapshots...)
}

// ReplaceSnapshots swaps the whole baseline set.
func (s *Store) ReplaceSnapshots(set []field.Snapshot) {
	s.snapshots = append([]field.Snapshot(nil), set...)
}

// HasRow reports whether a row is loaded.
func (s *Store) HasRow() bool {
	return s != nil && s.row != nil
}

// Row returns a copy of the current row.
func (s *Store) Row() Row {
	if s == nil {
		return nil
	}
	return s.row.Clone()
}

// RowValue returns the value under key, or false when no row is loaded or
// the key is absent.
func (s *Store) RowValue(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	return s.row.Get(key)
}

// ReplaceRow swaps the whole row.
func (s *Store) ReplaceRow(row Row) {
	s.row = row.Clone()
}

// SetRowValue updates a single entry, creating the row when none is loaded.
func (s *Store) SetRowValue(key string, value any) {
	if s.row == nil {
		s.row = Row{}
	}
	s.row[key] = value
}

// AlwaysEditable reports whether any baseline input is marked always
// editable.
func (s *Store) AlwaysEditable() bool {
	if s == nil {
		return false
	}
	for _, snap := range s.snapshots {
		if snap.Editability == field.EditAlways {
			return true
		}
	}
	return false
}

// View returns the row-level predicates for the current row.
func (s *Store) View() View {
	if s == nil {
		return View{keys: DefaultKeys()}
	}
	return View{row: s.row, keys: s.keys}
}
