// Package changeset implements the in-memory edit tracking used by the
// table-editing surfaces: rows loaded from the database are tagged with a
// flag bitmask as the user stages inserts, updates and deletes, and a save
// flushes the staged rows in a fixed order through a Saver.
package changeset

import (
	"context"
	"errors"
)

// Flag is the per-row edit state bitmask. New and Changed may combine with
// Deleted while staged; a plain zero value means the row is untouched.
type Flag uint8

const (
	Original Flag = 0
	New      Flag = 1
	Changed  Flag = 2
	Deleted  Flag = 4
)

// Has reports whether f carries all bits of other.
func (f Flag) Has(other Flag) bool {
	return f&other == other && other != 0
}

func (f Flag) String() string {
	if f == Original {
		return "original"
	}
	s := ""
	if f.Has(New) {
		s += "new|"
	}
	if f.Has(Changed) {
		s += "changed|"
	}
	if f.Has(Deleted) {
		s += "deleted|"
	}
	if s == "" {
		return "unknown"
	}
	return s[:len(s)-1]
}

var (
	ErrRowNotFound = errors.New("changeset: row not found")
	ErrRowDeleted  = errors.New("changeset: cannot edit a deleted row")
)

// Saver flushes staged rows to the backing store. Save calls Delete first,
// then Insert, then Update.
type Saver[T any] interface {
	Delete(ctx context.Context, ids []int) error
	Insert(ctx context.Context, rows []T) error
	Update(ctx context.Context, rows []T) error
}

type entry[T any] struct {
	data     T
	snapshot T // value as loaded, for change detection
	flag     Flag
}

// Tracker holds rows of one table together with their edit flags.
type Tracker[T any] struct {
	id    func(T) int
	equal func(a, b T) bool
	rows  []*entry[T]
}

// NewTracker builds a Tracker using id to key rows and equal to detect
// whether an edit actually changed a row against its loaded snapshot.
func NewTracker[T any](id func(T) int, equal func(a, b T) bool) *Tracker[T] {
	return &Tracker[T]{id: id, equal: equal}
}

// Load resets the tracker with rows fresh from the database. All flags
// are cleared.
func (t *Tracker[T]) Load(rows []T) {
	t.rows = make([]*entry[T], 0, len(rows))
	for _, r := range rows {
		t.rows = append(t.rows, &entry[T]{data: r, snapshot: r})
	}
}

func (t *Tracker[T]) find(id int) *entry[T] {
	for _, e := range t.rows {
		if t.id(e.data) == id {
			return e
		}
	}
	return nil
}

// Append stages a brand-new row.
func (t *Tracker[T]) Append(row T) {
	t.rows = append(t.rows, &entry[T]{data: row, snapshot: row, flag: New})
}

// Stage adds a row carrying an externally assigned flag, as received from a
// batch-save request. Rows flagged New keep their staged values as snapshot.
func (t *Tracker[T]) Stage(row T, flag Flag) {
	t.rows = append(t.rows, &entry[T]{data: row, snapshot: row, flag: flag})
}

// Set replaces the row with the given id. Deleted rows reject edits. A row
// that is not New picks up the Changed flag, but only when the new value
// actually differs from the loaded snapshot.
func (t *Tracker[T]) Set(id int, row T) error {
	e := t.find(id)
	if e == nil {
		return ErrRowNotFound
	}
	if e.flag.Has(Deleted) {
		return ErrRowDeleted
	}
	e.data = row
	if !e.flag.Has(New) && !t.equal(e.snapshot, row) {
		e.flag |= Changed
	}
	return nil
}

// ToggleDelete marks the row deleted, or restores it when already marked.
// A New row is simply removed: it never reached the database.
func (t *Tracker[T]) ToggleDelete(id int) error {
	for i, e := range t.rows {
		if t.id(e.data) != id {
			continue
		}
		if e.flag.Has(New) {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return nil
		}
		e.flag ^= Deleted
		return nil
	}
	return ErrRowNotFound
}

// DropNew removes all staged New rows (the cancel operation) and returns
// how many were dropped.
func (t *Tracker[T]) DropNew() int {
	kept := t.rows[:0]
	dropped := 0
	for _, e := range t.rows {
		if e.flag.Has(New) {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	t.rows = kept
	return dropped
}

// Rows returns the visible rows: everything except those staged for delete.
func (t *Tracker[T]) Rows() []T {
	out := make([]T, 0, len(t.rows))
	for _, e := range t.rows {
		if e.flag.Has(Deleted) {
			continue
		}
		out = append(out, e.data)
	}
	return out
}

// FlagOf returns the flag of the row with the given id.
func (t *Tracker[T]) FlagOf(id int) (Flag, bool) {
	e := t.find(id)
	if e == nil {
		return Original, false
	}
	return e.flag, true
}

// Dirty reports whether any row is staged for insert, update or delete.
func (t *Tracker[T]) Dirty() bool {
	for _, e := range t.rows {
		if e.flag != Original {
			return true
		}
	}
	return false
}

// Save flushes the staged rows through the saver: deletes first, then
// inserts, then updates. On success deleted rows are removed and every
// remaining flag is cleared; on error the tracker is left untouched so the
// batch can be re-attempted.
func (t *Tracker[T]) Save(ctx context.Context, s Saver[T]) error {
	var (
		delIDs  []int
		inserts []T
		updates []T
	)
	for _, e := range t.rows {
		switch {
		case e.flag.Has(Deleted):
			delIDs = append(delIDs, t.id(e.data))
		case e.flag.Has(New):
			inserts = append(inserts, e.data)
		case e.flag.Has(Changed):
			updates = append(updates, e.data)
		}
	}

	if len(delIDs) > 0 {
		if err := s.Delete(ctx, delIDs); err != nil {
			return err
		}
	}
	if len(inserts) > 0 {
		if err := s.Insert(ctx, inserts); err != nil {
			return err
		}
	}
	if len(updates) > 0 {
		if err := s.Update(ctx, updates); err != nil {
			return err
		}
	}

	kept := t.rows[:0]
	for _, e := range t.rows {
		if e.flag.Has(Deleted) {
			continue
		}
		e.flag = Original
		e.snapshot = e.data
		kept = append(kept, e)
	}
	t.rows = kept
	return nil
}
