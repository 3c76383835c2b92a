package service

import (
	"sort"
	"time"

	"github.com/ncobase/todox/biz/activity/structs"
)

// Snapshot captures the tracked fields of a todo at one point in time.
// Nil pointers mean the field is unset; Labels holds attached label ids
// in any order.
type Snapshot struct {
	Status      string
	AssigneeID  *string
	DueDate     *time.Time
	Description *string
	Labels      []string
}

// Change is one audit row waiting to be written. Field, Old and New are
// nil for event-only actions.
type Change struct {
	Action structs.Action
	Field  *string
	Old    *string
	New    *string
}

var (
	fieldStatus      = "status"
	fieldAssignee    = "assigneeId"
	fieldDueDate     = "dueDate"
	fieldDescription = "description"
	fieldLabels      = "labels"
)

// Diff compares two snapshots and returns one Change per tracked field
// that actually differs. Unchanged fields (including nil == nil) emit
// nothing. Emission order is fixed: status, assignee, due date,
// description, then labels (added ids sorted, then removed ids sorted),
// so a batch written together reads back deterministically.
func Diff(before, after *Snapshot) []Change {
	var changes []Change

	if before.Status != after.Status {
		changes = append(changes, Change{
			Action: structs.ActionStatusChanged,
			Field:  &fieldStatus,
			Old:    strPtr(before.Status),
			New:    strPtr(after.Status),
		})
	}

	if !eqStrPtr(before.AssigneeID, after.AssigneeID) {
		changes = append(changes, Change{
			Action: structs.ActionAssigneeChanged,
			Field:  &fieldAssignee,
			Old:    copyStrPtr(before.AssigneeID),
			New:    copyStrPtr(after.AssigneeID),
		})
	}

	if !eqTimePtr(before.DueDate, after.DueDate) {
		changes = append(changes, Change{
			Action: structs.ActionDueDateChanged,
			Field:  &fieldDueDate,
			Old:    timeStr(before.DueDate),
			New:    timeStr(after.DueDate),
		})
	}

	// Description content is deliberately not retained; only the fact
	// of the change is recorded.
	if !eqStrPtr(before.Description, after.Description) {
		changes = append(changes, Change{
			Action: structs.ActionDescriptionChanged,
			Field:  &fieldDescription,
		})
	}

	added, removed := diffLabels(before.Labels, after.Labels)
	for _, id := range added {
		changes = append(changes, Change{
			Action: structs.ActionLabelsChanged,
			Field:  &fieldLabels,
			New:    strPtr(id),
		})
	}
	for _, id := range removed {
		changes = append(changes, Change{
			Action: structs.ActionLabelsChanged,
			Field:  &fieldLabels,
			Old:    strPtr(id),
		})
	}

	return changes
}

func diffLabels(before, after []string) (added, removed []string) {
	old := make(map[string]struct{}, len(before))
	for _, id := range before {
		old[id] = struct{}{}
	}
	cur := make(map[string]struct{}, len(after))
	for _, id := range after {
		cur[id] = struct{}{}
		if _, ok := old[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range before {
		if _, ok := cur[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func strPtr(s string) *string { return &s }

func copyStrPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func eqStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func timeStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
