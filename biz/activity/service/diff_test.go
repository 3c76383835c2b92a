package service

import (
	"testing"
	"time"

	"github.com/ncobase/todox/biz/activity/structs"
)

func strp(s string) *string { return &s }

func timep(t time.Time) *time.Time { return &t }

func baseSnapshot() *Snapshot {
	return &Snapshot{
		Status:      "PENDING",
		AssigneeID:  nil,
		DueDate:     nil,
		Description: nil,
		Labels:      nil,
	}
}

func TestDiffNoChanges(t *testing.T) {
	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	before := &Snapshot{
		Status:      "PENDING",
		AssigneeID:  strp("user-1"),
		DueDate:     timep(due),
		Description: strp("write the report"),
		Labels:      []string{"l1", "l2"},
	}
	after := &Snapshot{
		Status:      "PENDING",
		AssigneeID:  strp("user-1"),
		DueDate:     timep(due),
		Description: strp("write the report"),
		Labels:      []string{"l2", "l1"},
	}

	if got := Diff(before, after); len(got) != 0 {
		t.Errorf("Diff() emitted %d changes, want 0: %+v", len(got), got)
	}
}

func TestDiffNilEqualsNil(t *testing.T) {
	if got := Diff(baseSnapshot(), baseSnapshot()); len(got) != 0 {
		t.Errorf("Diff() emitted %d changes for identical nil fields, want 0", len(got))
	}
}

func TestDiffStatusChanged(t *testing.T) {
	before := baseSnapshot()
	after := baseSnapshot()
	after.Status = "COMPLETED"

	got := Diff(before, after)
	if len(got) != 1 {
		t.Fatalf("Diff() emitted %d changes, want 1", len(got))
	}
	ch := got[0]
	if ch.Action != structs.ActionStatusChanged {
		t.Errorf("action = %q, want %q", ch.Action, structs.ActionStatusChanged)
	}
	if ch.Field == nil || *ch.Field != "status" {
		t.Errorf("field = %v, want %q", ch.Field, "status")
	}
	if ch.Old == nil || *ch.Old != "PENDING" {
		t.Errorf("old = %v, want %q", ch.Old, "PENDING")
	}
	if ch.New == nil || *ch.New != "COMPLETED" {
		t.Errorf("new = %v, want %q", ch.New, "COMPLETED")
	}
}

func TestDiffAssigneeChanged(t *testing.T) {
	tests := []struct {
		name    string
		before  *string
		after   *string
		wantOld *string
		wantNew *string
	}{
		{"assigned", nil, strp("user-2"), nil, strp("user-2")},
		{"reassigned", strp("user-1"), strp("user-2"), strp("user-1"), strp("user-2")},
		{"cleared", strp("user-1"), nil, strp("user-1"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := baseSnapshot()
			before.AssigneeID = tt.before
			after := baseSnapshot()
			after.AssigneeID = tt.after

			got := Diff(before, after)
			if len(got) != 1 {
				t.Fatalf("Diff() emitted %d changes, want 1", len(got))
			}
			ch := got[0]
			if ch.Action != structs.ActionAssigneeChanged {
				t.Errorf("action = %q, want %q", ch.Action, structs.ActionAssigneeChanged)
			}
			if !eqStrPtr(ch.Old, tt.wantOld) {
				t.Errorf("old = %v, want %v", ch.Old, tt.wantOld)
			}
			if !eqStrPtr(ch.New, tt.wantNew) {
				t.Errorf("new = %v, want %v", ch.New, tt.wantNew)
			}
		})
	}
}

func TestDiffDueDateFormat(t *testing.T) {
	before := baseSnapshot()
	after := baseSnapshot()
	after.DueDate = timep(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))

	got := Diff(before, after)
	if len(got) != 1 {
		t.Fatalf("Diff() emitted %d changes, want 1", len(got))
	}
	ch := got[0]
	if ch.Action != structs.ActionDueDateChanged {
		t.Errorf("action = %q, want %q", ch.Action, structs.ActionDueDateChanged)
	}
	if ch.Old != nil {
		t.Errorf("old = %v, want nil", ch.Old)
	}
	if ch.New == nil || *ch.New != "2026-03-01T09:30:00Z" {
		t.Errorf("new = %v, want %q", ch.New, "2026-03-01T09:30:00Z")
	}
}

func TestDiffDueDateSameInstantDifferentZone(t *testing.T) {
	utc := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	offset := utc.In(time.FixedZone("UTC+2", 2*60*60))

	before := baseSnapshot()
	before.DueDate = timep(utc)
	after := baseSnapshot()
	after.DueDate = timep(offset)

	if got := Diff(before, after); len(got) != 0 {
		t.Errorf("Diff() emitted %d changes for the same instant, want 0", len(got))
	}
}

func TestDiffDescriptionValuesNotRetained(t *testing.T) {
	before := baseSnapshot()
	before.Description = strp("old text")
	after := baseSnapshot()
	after.Description = strp("new text")

	got := Diff(before, after)
	if len(got) != 1 {
		t.Fatalf("Diff() emitted %d changes, want 1", len(got))
	}
	ch := got[0]
	if ch.Action != structs.ActionDescriptionChanged {
		t.Errorf("action = %q, want %q", ch.Action, structs.ActionDescriptionChanged)
	}
	if ch.Old != nil || ch.New != nil {
		t.Errorf("old/new = %v/%v, want nil/nil", ch.Old, ch.New)
	}
}

func TestDiffLabelsAddedThenRemoved(t *testing.T) {
	before := baseSnapshot()
	before.Labels = []string{"keep", "zap", "drop"}
	after := baseSnapshot()
	after.Labels = []string{"keep", "bbb", "aaa"}

	got := Diff(before, after)
	if len(got) != 4 {
		t.Fatalf("Diff() emitted %d changes, want 4", len(got))
	}

	type row struct {
		old, new string
	}
	want := []row{
		{"", "aaa"},
		{"", "bbb"},
		{"drop", ""},
		{"zap", ""},
	}
	for i, ch := range got {
		if ch.Action != structs.ActionLabelsChanged {
			t.Errorf("changes[%d].action = %q, want %q", i, ch.Action, structs.ActionLabelsChanged)
		}
		var old, new string
		if ch.Old != nil {
			old = *ch.Old
		}
		if ch.New != nil {
			new = *ch.New
		}
		if old != want[i].old || new != want[i].new {
			t.Errorf("changes[%d] = %q->%q, want %q->%q", i, old, new, want[i].old, want[i].new)
		}
	}
}

func TestDiffEmissionOrder(t *testing.T) {
	before := &Snapshot{
		Status:      "PENDING",
		AssigneeID:  nil,
		DueDate:     nil,
		Description: nil,
		Labels:      []string{"old-label"},
	}
	after := &Snapshot{
		Status:      "COMPLETED",
		AssigneeID:  strp("user-2"),
		DueDate:     timep(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)),
		Description: strp("now with text"),
		Labels:      []string{"new-label"},
	}

	got := Diff(before, after)
	want := []structs.Action{
		structs.ActionStatusChanged,
		structs.ActionAssigneeChanged,
		structs.ActionDueDateChanged,
		structs.ActionDescriptionChanged,
		structs.ActionLabelsChanged,
		structs.ActionLabelsChanged,
	}
	if len(got) != len(want) {
		t.Fatalf("Diff() emitted %d changes, want %d", len(got), len(want))
	}
	for i, action := range want {
		if got[i].Action != action {
			t.Errorf("changes[%d].action = %q, want %q", i, got[i].Action, action)
		}
	}
}
