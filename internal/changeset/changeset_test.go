package changeset_test

import (
	"context"
	"errors"
	"testing"

	"go-inventory-core/internal/changeset"
)

type row struct {
	ID   int
	Name string
	Qty  int
}

func newTracker() *changeset.Tracker[row] {
	return changeset.NewTracker(
		func(r row) int { return r.ID },
		func(a, b row) bool { return a == b },
	)
}

// recordingSaver records the order of Delete/Insert/Update calls and can be
// told to fail on a given step.
type recordingSaver struct {
	calls   []string
	deleted []int
	inserts []row
	updates []row
	failOn  string
}

func (s *recordingSaver) Delete(_ context.Context, ids []int) error {
	s.calls = append(s.calls, "delete")
	s.deleted = append(s.deleted, ids...)
	if s.failOn == "delete" {
		return errors.New("delete failed")
	}
	return nil
}

func (s *recordingSaver) Insert(_ context.Context, rows []row) error {
	s.calls = append(s.calls, "insert")
	s.inserts = append(s.inserts, rows...)
	if s.failOn == "insert" {
		return errors.New("insert failed")
	}
	return nil
}

func (s *recordingSaver) Update(_ context.Context, rows []row) error {
	s.calls = append(s.calls, "update")
	s.updates = append(s.updates, rows...)
	if s.failOn == "update" {
		return errors.New("update failed")
	}
	return nil
}

func TestTracker_LoadClearsFlags(t *testing.T) {
	tr := newTracker()
	tr.Append(row{ID: -1, Name: "staged"})
	tr.Load([]row{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})

	if tr.Dirty() {
		t.Error("expected tracker to be clean after Load")
	}
	if got := len(tr.Rows()); got != 2 {
		t.Errorf("expected 2 rows, got %d", got)
	}
	flag, ok := tr.FlagOf(1)
	if !ok || flag != changeset.Original {
		t.Errorf("expected Original flag for loaded row, got %v (found=%v)", flag, ok)
	}
}

func TestTracker_SetMarksChangedOnlyOnRealChange(t *testing.T) {
	tr := newTracker()
	tr.Load([]row{{ID: 1, Name: "a", Qty: 5}})

	// Writing back the identical value must not dirty the row.
	if err := tr.Set(1, row{ID: 1, Name: "a", Qty: 5}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if flag, _ := tr.FlagOf(1); flag != changeset.Original {
		t.Errorf("expected Original after no-op edit, got %v", flag)
	}

	if err := tr.Set(1, row{ID: 1, Name: "a", Qty: 7}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if flag, _ := tr.FlagOf(1); !flag.Has(changeset.Changed) {
		t.Errorf("expected Changed after real edit, got %v", flag)
	}
	if !tr.Dirty() {
		t.Error("expected tracker to be dirty")
	}
}

func TestTracker_SetOnNewRowStaysNew(t *testing.T) {
	tr := newTracker()
	tr.Append(row{ID: -1, Name: "draft"})

	if err := tr.Set(-1, row{ID: -1, Name: "edited draft"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	flag, _ := tr.FlagOf(-1)
	if flag != changeset.New {
		t.Errorf("expected New flag to stay plain New, got %v", flag)
	}
}

func TestTracker_SetRejectsDeletedRow(t *testing.T) {
	tr := newTracker()
	tr.Load([]row{{ID: 1, Name: "a"}})
	if err := tr.ToggleDelete(1); err != nil {
		t.Fatalf("ToggleDelete: %v", err)
	}

	err := tr.Set(1, row{ID: 1, Name: "b"})
	if !errors.Is(err, changeset.ErrRowDeleted) {
		t.Errorf("expected ErrRowDeleted, got %v", err)
	}
}

func TestTracker_SetUnknownRow(t *testing.T) {
	tr := newTracker()
	if err := tr.Set(99, row{ID: 99}); !errors.Is(err, changeset.ErrRowNotFound) {
		t.Errorf("expected ErrRowNotFound, got %v", err)
	}
}

func TestTracker_ToggleDelete(t *testing.T) {
	tr := newTracker()
	tr.Load([]row{{ID: 1, Name: "a"}})

	if err := tr.ToggleDelete(1); err != nil {
		t.Fatalf("ToggleDelete: %v", err)
	}
	if flag, _ := tr.FlagOf(1); !flag.Has(changeset.Deleted) {
		t.Errorf("expected Deleted flag, got %v", flag)
	}
	if got := len(tr.Rows()); got != 0 {
		t.Errorf("deleted row must not be visible, got %d rows", got)
	}

	// Toggling again restores the row.
	if err := tr.ToggleDelete(1); err != nil {
		t.Fatalf("ToggleDelete: %v", err)
	}
	if flag, _ := tr.FlagOf(1); flag.Has(changeset.Deleted) {
		t.Errorf("expected Deleted cleared, got %v", flag)
	}
	if got := len(tr.Rows()); got != 1 {
		t.Errorf("restored row must be visible, got %d rows", got)
	}
}

func TestTracker_ToggleDeleteRemovesNewRow(t *testing.T) {
	tr := newTracker()
	tr.Append(row{ID: -1, Name: "draft"})

	if err := tr.ToggleDelete(-1); err != nil {
		t.Fatalf("ToggleDelete: %v", err)
	}
	if _, ok := tr.FlagOf(-1); ok {
		t.Error("expected New row to be removed entirely")
	}
	if tr.Dirty() {
		t.Error("expected tracker clean after dropping its only staged row")
	}
}

func TestTracker_ChangedThenDeletedSaveAsDelete(t *testing.T) {
	tr := newTracker()
	tr.Load([]row{{ID: 1, Name: "a"}})

	if err := tr.Set(1, row{ID: 1, Name: "b"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := tr.ToggleDelete(1); err != nil {
		t.Fatalf("ToggleDelete: %v", err)
	}

	saver := &recordingSaver{}
	if err := tr.Save(context.Background(), saver); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(saver.deleted) != 1 || saver.deleted[0] != 1 {
		t.Errorf("expected delete of row 1, got %v", saver.deleted)
	}
	if len(saver.updates) != 0 {
		t.Errorf("deleted row must not also be updated, got %v", saver.updates)
	}
}

func TestTracker_DropNew(t *testing.T) {
	tr := newTracker()
	tr.Load([]row{{ID: 1, Name: "a"}})
	tr.Append(row{ID: -1, Name: "draft1"})
	tr.Append(row{ID: -2, Name: "draft2"})
	if err := tr.Set(1, row{ID: 1, Name: "changed"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if dropped := tr.DropNew(); dropped != 2 {
		t.Errorf("expected 2 dropped, got %d", dropped)
	}
	rows := tr.Rows()
	if len(rows) != 1 || rows[0].Name != "changed" {
		t.Errorf("expected only the edited loaded row to remain, got %v", rows)
	}
	// Cancel drops drafts but keeps pending edits.
	if !tr.Dirty() {
		t.Error("expected Changed row to survive DropNew")
	}
}

func TestTracker_SaveOrderAndFlagReset(t *testing.T) {
	tr := newTracker()
	tr.Load([]row{
		{ID: 1, Name: "keep"},
		{ID: 2, Name: "edit"},
		{ID: 3, Name: "drop"},
	})
	if err := tr.Set(2, row{ID: 2, Name: "edited"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := tr.ToggleDelete(3); err != nil {
		t.Fatalf("ToggleDelete: %v", err)
	}
	tr.Append(row{ID: -1, Name: "fresh"})

	saver := &recordingSaver{}
	if err := tr.Save(context.Background(), saver); err != nil {
		t.Fatalf("Save: %v", err)
	}

	wantOrder := []string{"delete", "insert", "update"}
	if len(saver.calls) != len(wantOrder) {
		t.Fatalf("expected calls %v, got %v", wantOrder, saver.calls)
	}
	for i, call := range wantOrder {
		if saver.calls[i] != call {
			t.Fatalf("expected calls %v, got %v", wantOrder, saver.calls)
		}
	}
	if len(saver.deleted) != 1 || saver.deleted[0] != 3 {
		t.Errorf("expected delete of row 3, got %v", saver.deleted)
	}
	if len(saver.inserts) != 1 || saver.inserts[0].Name != "fresh" {
		t.Errorf("expected insert of fresh row, got %v", saver.inserts)
	}
	if len(saver.updates) != 1 || saver.updates[0].Name != "edited" {
		t.Errorf("expected update of edited row, got %v", saver.updates)
	}

	// After a successful save everything is clean and deletes are gone.
	if tr.Dirty() {
		t.Error("expected tracker clean after save")
	}
	if got := len(tr.Rows()); got != 3 {
		t.Errorf("expected 3 remaining rows, got %d", got)
	}
	if _, ok := tr.FlagOf(3); ok {
		t.Error("expected deleted row to be gone from the tracker")
	}

	// The snapshot was refreshed, so re-setting the saved value is a no-op.
	if err := tr.Set(2, row{ID: 2, Name: "edited"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if flag, _ := tr.FlagOf(2); flag != changeset.Original {
		t.Errorf("expected Original after re-setting saved value, got %v", flag)
	}
}

func TestTracker_SaveErrorLeavesTrackerUntouched(t *testing.T) {
	tr := newTracker()
	tr.Load([]row{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	if err := tr.Set(1, row{ID: 1, Name: "edited"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := tr.ToggleDelete(2); err != nil {
		t.Fatalf("ToggleDelete: %v", err)
	}

	saver := &recordingSaver{failOn: "insert"}
	tr.Append(row{ID: -1, Name: "fresh"})

	if err := tr.Save(context.Background(), saver); err == nil {
		t.Fatal("expected save error")
	}

	// All staged state survives for a retry.
	if flag, _ := tr.FlagOf(1); !flag.Has(changeset.Changed) {
		t.Errorf("expected Changed preserved, got %v", flag)
	}
	if flag, _ := tr.FlagOf(2); !flag.Has(changeset.Deleted) {
		t.Errorf("expected Deleted preserved, got %v", flag)
	}
	if flag, _ := tr.FlagOf(-1); !flag.Has(changeset.New) {
		t.Errorf("expected New preserved, got %v", flag)
	}
}

func TestTracker_SaveSkipsEmptyBatches(t *testing.T) {
	tr := newTracker()
	tr.Load([]row{{ID: 1, Name: "a"}})

	saver := &recordingSaver{}
	if err := tr.Save(context.Background(), saver); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(saver.calls) != 0 {
		t.Errorf("expected no saver calls for a clean tracker, got %v", saver.calls)
	}
}

func TestFlag_String(t *testing.T) {
	tests := []struct {
		flag changeset.Flag
		want string
	}{
		{changeset.Original, "original"},
		{changeset.New, "new"},
		{changeset.Changed, "changed"},
		{changeset.Deleted, "deleted"},
		{changeset.Changed | changeset.Deleted, "changed|deleted"},
		{changeset.New | changeset.Deleted, "new|deleted"},
	}
	for _, tt := range tests {
		if got := tt.flag.String(); got != tt.want {
			t.Errorf("Flag(%d).String() = %q, want %q", tt.flag, got, tt.want)
		}
	}
}
