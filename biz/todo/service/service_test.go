package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	activityrepo "github.com/ncobase/todox/biz/activity/data/repository"
	activityservice "github.com/ncobase/todox/biz/activity/service"
	"github.com/ncobase/todox/biz/activity/structs"
	"github.com/ncobase/todox/biz/todo/data/repository"
	todostructs "github.com/ncobase/todox/biz/todo/structs"
	"github.com/ncobase/todox/config"
	"github.com/ncobase/todox/logging/logger"
)

const (
	tenantA = "tenant-a"
	tenantB = "tenant-b"
	alice   = "user-alice"
	bob     = "user-bob"
	carol   = "user-carol"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log := logger.StdLogger()
	if _, err := log.Init(&config.Logger{Level: 2, Format: "json", Output: "stderr"}); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return log
}

// passthroughTx runs the transactional closure directly; the memory
// repositories have no transaction support to exercise.
type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeDirectory struct {
	members map[string]string
}

func (d *fakeDirectory) InTenant(_ context.Context, userID, tenantID string) (bool, error) {
	return d.members[userID] == tenantID, nil
}

var errUnknownLabel = errors.New("one or more labels not found")

type fakeLabels struct {
	known map[string]bool
}

func (l *fakeLabels) ValidateIDs(_ context.Context, _ string, ids []string) error {
	for _, id := range ids {
		if !l.known[id] {
			return errUnknownLabel
		}
	}
	return nil
}

type assignedCall struct {
	actorID    string
	assigneeID string
	todoID     string
}

type recordingNotifier struct {
	assigned []assignedCall
}

func (n *recordingNotifier) TodoAssigned(_ context.Context, actorID, assigneeID, todoID, _ string) error {
	n.assigned = append(n.assigned, assignedCall{actorID: actorID, assigneeID: assigneeID, todoID: todoID})
	return nil
}

type fixture struct {
	svc      *Service
	repo     *repository.MemoryTodoRepository
	subtasks *repository.MemorySubtaskRepository
	links    *repository.MemoryTodoLabelRepository
	audit    *activityrepo.MemoryActivityRepository
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := newTestLogger(t)
	f := &fixture{
		repo:     repository.NewMemoryTodoRepository(),
		subtasks: repository.NewMemorySubtaskRepository(),
		links:    repository.NewMemoryTodoLabelRepository(),
		audit:    activityrepo.NewMemoryActivityRepository(),
		notifier: &recordingNotifier{},
	}
	users := &fakeDirectory{members: map[string]string{alice: tenantA, bob: tenantA, carol: tenantB}}
	labels := &fakeLabels{known: map[string]bool{"label-work": true, "label-home": true}}
	recorder := activityservice.NewService(f.audit, log)
	f.svc = NewService(log, passthroughTx{}, f.repo, f.subtasks, f.links, labels, users, recorder, f.notifier, nil)
	return f
}

func (f *fixture) create(t *testing.T, req *todostructs.CreateTodoRequest) *todostructs.Todo {
	t.Helper()
	todo, err := f.svc.Create(context.Background(), tenantA, alice, req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return todo
}

// auditRows returns every activity row for the todo, newest first.
func (f *fixture) auditRows(t *testing.T, todoID string) []*structs.Activity {
	t.Helper()
	rows, err := f.audit.ListByTodo(context.Background(), todoID, time.Time{}, 0, false, 100)
	if err != nil {
		t.Fatalf("ListByTodo() error = %v", err)
	}
	return rows
}

func (f *fixture) auditActions(t *testing.T, todoID string) []structs.Action {
	t.Helper()
	rows := f.auditRows(t, todoID)
	actions := make([]structs.Action, len(rows))
	for i, row := range rows {
		actions[i] = row.Action
	}
	return actions
}

func timePtr(v time.Time) *time.Time { return &v }
func strPtrT(v string) *string       { return &v }

func TestCreateRecordsCreation(t *testing.T) {
	f := newFixture(t)
	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	todo := f.create(t, &todostructs.CreateTodoRequest{
		Title:    "  pay rent  ",
		DueDate:  &due,
		LabelIDs: []string{"label-work", "label-home", "label-work"},
	})

	if todo.Title != "pay rent" {
		t.Errorf("Title = %q, want %q", todo.Title, "pay rent")
	}
	if todo.Status != todostructs.StatusPending {
		t.Errorf("Status = %q, want %q", todo.Status, todostructs.StatusPending)
	}
	if todo.RecurrenceType != todostructs.RecurrenceNone {
		t.Errorf("RecurrenceType = %q, want NONE", todo.RecurrenceType)
	}
	if todo.TenantID != tenantA || todo.CreatedByID != alice {
		t.Errorf("owner = (%q, %q), want (%q, %q)", todo.TenantID, todo.CreatedByID, tenantA, alice)
	}
	if len(todo.LabelIDs) != 2 {
		t.Fatalf("LabelIDs = %v, want deduplicated pair", todo.LabelIDs)
	}

	actions := f.auditActions(t, todo.ID)
	if len(actions) != 1 || actions[0] != structs.ActionCreated {
		t.Errorf("audit actions = %v, want [CREATED]", actions)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), tenantA, alice, &todostructs.CreateTodoRequest{Title: "   "})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Create() error = %v, want ValidationError", err)
	}
	if _, ok := verr.Fields["title"]; !ok {
		t.Errorf("Fields = %v, want title entry", verr.Fields)
	}
}

func TestCreateRejectsUnknownLabelBeforeWriting(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), tenantA, alice, &todostructs.CreateTodoRequest{
		Title:    "tagged",
		LabelIDs: []string{"label-work", "label-nope"},
	})
	if !errors.Is(err, errUnknownLabel) {
		t.Fatalf("Create() error = %v, want unknown label", err)
	}

	todos, err := f.repo.ListByTenant(context.Background(), tenantA, repository.TodoFilter{Limit: 10})
	if err != nil {
		t.Fatalf("ListByTenant() error = %v", err)
	}
	if len(todos) != 0 {
		t.Errorf("stored todos = %d, want 0 after failed create", len(todos))
	}
}

func TestCreateRejectsAssigneeOutsideTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), tenantA, alice, &todostructs.CreateTodoRequest{
		Title:      "misassigned",
		AssigneeID: carol,
	})
	if !errors.Is(err, ErrAssigneeNotInTenant) {
		t.Errorf("Create() error = %v, want ErrAssigneeNotInTenant", err)
	}
}

func TestTenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "secret"})

	if _, err := f.svc.Get(ctx, tenantB, todo.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("Get() from other tenant error = %v, want ErrTodoNotFound", err)
	}
	if _, err := f.svc.Update(ctx, tenantB, carol, todo.ID, &todostructs.UpdateTodoRequest{Title: strPtrT("stolen")}); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("Update() from other tenant error = %v, want ErrTodoNotFound", err)
	}
	if _, err := f.svc.Archive(ctx, tenantB, carol, todo.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("Archive() from other tenant error = %v, want ErrTodoNotFound", err)
	}
	if err := f.svc.Purge(ctx, tenantB, carol, todo.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("Purge() from other tenant error = %v, want ErrTodoNotFound", err)
	}

	got, err := f.svc.Get(ctx, tenantA, todo.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "secret" {
		t.Errorf("Title = %q after cross-tenant attempts, want unchanged", got.Title)
	}
}

func TestUpdateEmitsOneRowPerChangedField(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "report"})

	due := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	_, err := f.svc.Update(ctx, tenantA, alice, todo.ID, &todostructs.UpdateTodoRequest{
		Description: strPtrT("quarterly numbers"),
		DueDate:     &due,
		AssigneeID:  strPtrT(bob),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	actions := f.auditActions(t, todo.ID)
	want := map[structs.Action]bool{
		structs.ActionDescriptionChanged: true,
		structs.ActionDueDateChanged:     true,
		structs.ActionAssigneeChanged:    true,
	}
	if len(actions) != 4 {
		t.Fatalf("audit rows = %d (%v), want 4", len(actions), actions)
	}
	for _, action := range actions[:3] {
		if !want[action] {
			t.Errorf("unexpected audit action %q", action)
		}
		delete(want, action)
	}
	if actions[3] != structs.ActionCreated {
		t.Errorf("oldest action = %q, want CREATED", actions[3])
	}

	if len(f.notifier.assigned) != 1 {
		t.Fatalf("assignment notifications = %d, want 1", len(f.notifier.assigned))
	}
	if call := f.notifier.assigned[0]; call.actorID != alice || call.assigneeID != bob {
		t.Errorf("notification = %+v, want alice -> bob", call)
	}
}

func TestUpdateIdenticalValuesWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "stable", Description: "same", DueDate: &due})

	updated, err := f.svc.Update(ctx, tenantA, alice, todo.ID, &todostructs.UpdateTodoRequest{
		Title:       strPtrT("stable"),
		Description: strPtrT("same"),
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.UpdatedAt.Equal(todo.UpdatedAt) {
		t.Errorf("UpdatedAt moved on identical update")
	}

	if actions := f.auditActions(t, todo.ID); len(actions) != 1 {
		t.Errorf("audit rows = %d (%v), want only CREATED", len(actions), actions)
	}
	if len(f.notifier.assigned) != 0 {
		t.Errorf("notifications = %d, want 0", len(f.notifier.assigned))
	}
}

func TestUpdateRejectsEmptyTitle(t *testing.T) {
	f := newFixture(t)
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "named"})

	_, err := f.svc.Update(context.Background(), tenantA, alice, todo.ID, &todostructs.UpdateTodoRequest{Title: strPtrT("  ")})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Update() error = %v, want ValidationError", err)
	}
}

func TestUpdateTrashedTodoRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "doomed"})

	if _, err := f.svc.Trash(ctx, tenantA, alice, todo.ID); err != nil {
		t.Fatalf("Trash() error = %v", err)
	}
	if _, err := f.svc.Update(ctx, tenantA, alice, todo.ID, &todostructs.UpdateTodoRequest{Title: strPtrT("revived")}); !errors.Is(err, ErrTodoDeleted) {
		t.Errorf("Update() on trashed error = %v, want ErrTodoDeleted", err)
	}
	if _, _, err := f.svc.Toggle(ctx, tenantA, alice, todo.ID); !errors.Is(err, ErrTodoDeleted) {
		t.Errorf("Toggle() on trashed error = %v, want ErrTodoDeleted", err)
	}
}

func TestToggleSpawnsRecurringSuccessor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

	todo := f.create(t, &todostructs.CreateTodoRequest{
		Title:      "water plants",
		DueDate:    &due,
		AssigneeID: bob,
		LabelIDs:   []string{"label-home"},
	})
	if _, err := f.svc.UpdateRecurrence(ctx, tenantA, alice, todo.ID, todostructs.RecurrenceWeekly); err != nil {
		t.Fatalf("UpdateRecurrence() error = %v", err)
	}

	done, successor, err := f.svc.Toggle(ctx, tenantA, alice, todo.ID)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if done.Status != todostructs.StatusCompleted {
		t.Errorf("original Status = %q, want COMPLETED", done.Status)
	}
	if successor == nil {
		t.Fatal("Toggle() successor = nil, want spawned todo")
	}
	if successor.ID == done.ID {
		t.Error("successor shares id with original")
	}
	if successor.Status != todostructs.StatusPending {
		t.Errorf("successor Status = %q, want PENDING", successor.Status)
	}
	wantDue := time.Date(2026, 1, 22, 8, 0, 0, 0, time.UTC)
	if successor.DueDate == nil || !successor.DueDate.Equal(wantDue) {
		t.Errorf("successor DueDate = %v, want %v", successor.DueDate, wantDue)
	}
	if successor.Title != done.Title || successor.AssigneeID != bob {
		t.Errorf("successor carries (%q, %q), want title and assignee copied", successor.Title, successor.AssigneeID)
	}
	if successor.RecurrenceType != todostructs.RecurrenceWeekly {
		t.Errorf("successor RecurrenceType = %q, want WEEKLY", successor.RecurrenceType)
	}
	if len(successor.LabelIDs) != 1 || successor.LabelIDs[0] != "label-home" {
		t.Errorf("successor LabelIDs = %v, want [label-home]", successor.LabelIDs)
	}

	stored, err := f.svc.Get(ctx, tenantA, successor.ID)
	if err != nil {
		t.Fatalf("Get(successor) error = %v", err)
	}
	if len(stored.LabelIDs) != 1 {
		t.Errorf("stored successor labels = %v, want copied set", stored.LabelIDs)
	}

	subs, err := f.svc.ListSubtasks(ctx, tenantA, successor.ID)
	if err != nil {
		t.Fatalf("ListSubtasks(successor) error = %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("successor subtasks = %d, want 0", len(subs))
	}

	if actions := f.auditActions(t, successor.ID); len(actions) != 1 || actions[0] != structs.ActionCreated {
		t.Errorf("successor audit = %v, want [CREATED]", actions)
	}
	actions := f.auditActions(t, todo.ID)
	if len(actions) != 2 || actions[0] != structs.ActionStatusChanged {
		t.Errorf("original audit = %v, want [STATUS_CHANGED CREATED]", actions)
	}

	// Exactly one successor: the tenant now holds the completed
	// original and one pending copy.
	todos, err := f.repo.ListByTenant(ctx, tenantA, repository.TodoFilter{Limit: 10})
	if err != nil {
		t.Fatalf("ListByTenant() error = %v", err)
	}
	if len(todos) != 2 {
		t.Errorf("tenant todos = %d, want 2", len(todos))
	}
}

func TestToggleUncompleteNeverSpawns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "recurring", DueDate: &due})
	if _, err := f.svc.UpdateRecurrence(ctx, tenantA, alice, todo.ID, todostructs.RecurrenceDaily); err != nil {
		t.Fatalf("UpdateRecurrence() error = %v", err)
	}

	if _, _, err := f.svc.Toggle(ctx, tenantA, alice, todo.ID); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	back, successor, err := f.svc.Toggle(ctx, tenantA, alice, todo.ID)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if back.Status != todostructs.StatusPending {
		t.Errorf("Status = %q after second toggle, want PENDING", back.Status)
	}
	if successor != nil {
		t.Errorf("un-complete spawned successor %q", successor.ID)
	}
}

func TestToggleNonRecurringNoSuccessor(t *testing.T) {
	f := newFixture(t)
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "one-shot"})

	done, successor, err := f.svc.Toggle(context.Background(), tenantA, alice, todo.ID)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if done.Status != todostructs.StatusCompleted {
		t.Errorf("Status = %q, want COMPLETED", done.Status)
	}
	if successor != nil {
		t.Errorf("non-recurring toggle spawned successor %q", successor.ID)
	}
}

func TestToggleRecurringWithClearedDueDateIsInert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "recurring", DueDate: &due})
	if _, err := f.svc.UpdateRecurrence(ctx, tenantA, alice, todo.ID, todostructs.RecurrenceMonthly); err != nil {
		t.Fatalf("UpdateRecurrence() error = %v", err)
	}
	if _, err := f.svc.Update(ctx, tenantA, alice, todo.ID, &todostructs.UpdateTodoRequest{DueDate: timePtr(time.Time{})}); err != nil {
		t.Fatalf("Update() clearing due date error = %v", err)
	}

	_, successor, err := f.svc.Toggle(ctx, tenantA, alice, todo.ID)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if successor != nil {
		t.Errorf("recurring todo without due date spawned successor %q", successor.ID)
	}
}

func TestUpdateRecurrenceRequiresDueDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "no due date"})

	if _, err := f.svc.UpdateRecurrence(ctx, tenantA, alice, todo.ID, todostructs.RecurrenceWeekly); !errors.Is(err, ErrDueDateRequired) {
		t.Errorf("UpdateRecurrence(WEEKLY) error = %v, want ErrDueDateRequired", err)
	}
	if _, err := f.svc.UpdateRecurrence(ctx, tenantA, alice, todo.ID, todostructs.RecurrenceNone); err != nil {
		t.Errorf("UpdateRecurrence(NONE) error = %v, want nil", err)
	}
	if actions := f.auditActions(t, todo.ID); len(actions) != 1 {
		t.Errorf("audit rows = %v, recurrence changes must not add rows", actions)
	}
}

func TestReplaceLabelsAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "tagged", LabelIDs: []string{"label-work"}})

	updated, err := f.svc.ReplaceLabels(ctx, tenantA, alice, todo.ID, []string{"label-home"})
	if err != nil {
		t.Fatalf("ReplaceLabels() error = %v", err)
	}
	if len(updated.LabelIDs) != 1 || updated.LabelIDs[0] != "label-home" {
		t.Errorf("LabelIDs = %v, want [label-home]", updated.LabelIDs)
	}

	rows := f.auditRows(t, todo.ID)
	var added, removed int
	for _, row := range rows {
		if row.Action != structs.ActionLabelsChanged {
			continue
		}
		switch {
		case row.NewValue != nil && row.OldValue == nil:
			added++
		case row.OldValue != nil && row.NewValue == nil:
			removed++
		default:
			t.Errorf("labels row has old=%v new=%v, want exactly one side set", row.OldValue, row.NewValue)
		}
	}
	if added != 1 || removed != 1 {
		t.Errorf("labels rows added=%d removed=%d, want 1 and 1", added, removed)
	}

	before := len(f.auditRows(t, todo.ID))
	if _, err := f.svc.ReplaceLabels(ctx, tenantA, alice, todo.ID, []string{"label-home"}); err != nil {
		t.Fatalf("ReplaceLabels() same set error = %v", err)
	}
	if after := len(f.auditRows(t, todo.ID)); after != before {
		t.Errorf("audit rows grew from %d to %d on identical label set", before, after)
	}
}

func TestArchiveTrashRestoreReturnsToArchive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "filed"})

	archived, err := f.svc.Archive(ctx, tenantA, alice, todo.ID)
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if archived.ArchivedAt == nil {
		t.Fatal("ArchivedAt = nil after archive")
	}
	if _, err := f.svc.Archive(ctx, tenantA, alice, todo.ID); !errors.Is(err, ErrAlreadyArchived) {
		t.Errorf("Archive() twice error = %v, want ErrAlreadyArchived", err)
	}

	trashed, err := f.svc.Trash(ctx, tenantA, alice, todo.ID)
	if err != nil {
		t.Fatalf("Trash() error = %v", err)
	}
	if trashed.DeletedAt == nil || !trashed.WasArchived {
		t.Fatalf("trashed = {DeletedAt: %v, WasArchived: %v}, want deleted and flagged", trashed.DeletedAt, trashed.WasArchived)
	}

	restored, err := f.svc.Restore(ctx, tenantA, alice, todo.ID)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored.DeletedAt != nil {
		t.Error("DeletedAt still set after restore")
	}
	if restored.ArchivedAt == nil {
		t.Error("ArchivedAt = nil, want restored into the archive")
	}

	actions := f.auditActions(t, todo.ID)
	want := []structs.Action{structs.ActionRestored, structs.ActionTrashed, structs.ActionArchived, structs.ActionCreated}
	if len(actions) != len(want) {
		t.Fatalf("audit actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("actions[%d] = %q, want %q", i, actions[i], want[i])
		}
	}
}

func TestRestoreNeverArchivedReturnsToActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "active"})

	if _, err := f.svc.Trash(ctx, tenantA, alice, todo.ID); err != nil {
		t.Fatalf("Trash() error = %v", err)
	}
	restored, err := f.svc.Restore(ctx, tenantA, alice, todo.ID)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored.ArchivedAt != nil || restored.DeletedAt != nil {
		t.Errorf("restored = {ArchivedAt: %v, DeletedAt: %v}, want active", restored.ArchivedAt, restored.DeletedAt)
	}
}

func TestRestoreRequiresTrash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "standing"})

	if _, err := f.svc.Restore(ctx, tenantA, alice, todo.ID); !errors.Is(err, ErrNotTrashed) {
		t.Errorf("Restore() on active error = %v, want ErrNotTrashed", err)
	}
	if err := f.svc.Purge(ctx, tenantA, alice, todo.ID); !errors.Is(err, ErrNotTrashed) {
		t.Errorf("Purge() on active error = %v, want ErrNotTrashed", err)
	}
}

func TestArchiveTrashedRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "gone"})

	if _, err := f.svc.Trash(ctx, tenantA, alice, todo.ID); err != nil {
		t.Fatalf("Trash() error = %v", err)
	}
	if _, err := f.svc.Archive(ctx, tenantA, alice, todo.ID); !errors.Is(err, ErrTodoDeleted) {
		t.Errorf("Archive() on trashed error = %v, want ErrTodoDeleted", err)
	}
}

func TestPurgeCascadesAndKeepsAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "condemned", LabelIDs: []string{"label-work"}})

	if _, err := f.svc.CreateSubtask(ctx, tenantA, alice, todo.ID, &todostructs.CreateSubtaskRequest{Title: "step"}); err != nil {
		t.Fatalf("CreateSubtask() error = %v", err)
	}
	if _, err := f.svc.Trash(ctx, tenantA, alice, todo.ID); err != nil {
		t.Fatalf("Trash() error = %v", err)
	}
	if err := f.svc.Purge(ctx, tenantA, alice, todo.ID); err != nil {
		t.Fatalf("Purge() error = %v", err)
	}

	if _, err := f.svc.Get(ctx, tenantA, todo.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("Get() after purge error = %v, want ErrTodoNotFound", err)
	}
	count, err := f.subtasks.CountByTodo(ctx, todo.ID)
	if err != nil {
		t.Fatalf("CountByTodo() error = %v", err)
	}
	if count != 0 {
		t.Errorf("subtasks after purge = %d, want 0", count)
	}
	ids, err := f.links.ListIDsByTodo(ctx, todo.ID)
	if err != nil {
		t.Fatalf("ListIDsByTodo() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("label links after purge = %v, want none", ids)
	}
	if rows := f.auditRows(t, todo.ID); len(rows) == 0 {
		t.Error("audit rows removed by purge, want retained")
	}
}

func TestSubtaskCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "checklist"})

	for i := 0; i < 20; i++ {
		if _, err := f.svc.CreateSubtask(ctx, tenantA, alice, todo.ID, &todostructs.CreateSubtaskRequest{Title: "item"}); err != nil {
			t.Fatalf("CreateSubtask() #%d error = %v", i+1, err)
		}
	}
	if _, err := f.svc.CreateSubtask(ctx, tenantA, alice, todo.ID, &todostructs.CreateSubtaskRequest{Title: "overflow"}); !errors.Is(err, ErrSubtaskLimit) {
		t.Errorf("CreateSubtask() #21 error = %v, want ErrSubtaskLimit", err)
	}

	subs, err := f.svc.ListSubtasks(ctx, tenantA, todo.ID)
	if err != nil {
		t.Fatalf("ListSubtasks() error = %v", err)
	}
	if len(subs) != 20 {
		t.Errorf("subtasks = %d, want 20", len(subs))
	}
}

func TestSubtaskDeleteClosesOrderGap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "ordered"})

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		sub, err := f.svc.CreateSubtask(ctx, tenantA, alice, todo.ID, &todostructs.CreateSubtaskRequest{Title: title})
		if err != nil {
			t.Fatalf("CreateSubtask(%q) error = %v", title, err)
		}
		ids = append(ids, sub.ID)
	}

	if err := f.svc.DeleteSubtask(ctx, tenantA, alice, todo.ID, ids[1]); err != nil {
		t.Fatalf("DeleteSubtask() error = %v", err)
	}

	subs, err := f.svc.ListSubtasks(ctx, tenantA, todo.ID)
	if err != nil {
		t.Fatalf("ListSubtasks() error = %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("subtasks = %d, want 2", len(subs))
	}
	for i, sub := range subs {
		if sub.Order != i {
			t.Errorf("subs[%d].Order = %d, want %d", i, sub.Order, i)
		}
	}
	if subs[0].Title != "first" || subs[1].Title != "third" {
		t.Errorf("titles = [%q %q], want [first third]", subs[0].Title, subs[1].Title)
	}
}

func TestSubtaskTitleRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "strict"})

	if _, err := f.svc.CreateSubtask(ctx, tenantA, alice, todo.ID, &todostructs.CreateSubtaskRequest{Title: "  "}); !errors.Is(err, ErrSubtaskTitleRequired) {
		t.Errorf("empty title error = %v, want ErrSubtaskTitleRequired", err)
	}
	long := strings.Repeat("x", 201)
	if _, err := f.svc.CreateSubtask(ctx, tenantA, alice, todo.ID, &todostructs.CreateSubtaskRequest{Title: long}); !errors.Is(err, ErrSubtaskTitleTooLong) {
		t.Errorf("long title error = %v, want ErrSubtaskTitleTooLong", err)
	}
	if _, err := f.svc.CreateSubtask(ctx, tenantA, alice, todo.ID, &todostructs.CreateSubtaskRequest{Title: strings.Repeat("y", 200)}); err != nil {
		t.Errorf("200-rune title error = %v, want nil", err)
	}
}

func TestAssignSelfDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "mine"})

	if _, err := f.svc.UpdateAssignee(ctx, tenantA, alice, todo.ID, strPtrT(alice)); err != nil {
		t.Fatalf("UpdateAssignee(self) error = %v", err)
	}
	if len(f.notifier.assigned) != 0 {
		t.Errorf("self-assignment notified %d times, want 0", len(f.notifier.assigned))
	}

	if _, err := f.svc.UpdateAssignee(ctx, tenantA, alice, todo.ID, strPtrT(bob)); err != nil {
		t.Fatalf("UpdateAssignee(bob) error = %v", err)
	}
	if len(f.notifier.assigned) != 1 {
		t.Errorf("assignment notified %d times, want 1", len(f.notifier.assigned))
	}
}

func TestUpdateAssigneeClearAndNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "handed off", AssigneeID: bob})

	cleared, err := f.svc.UpdateAssignee(ctx, tenantA, alice, todo.ID, nil)
	if err != nil {
		t.Fatalf("UpdateAssignee(nil) error = %v", err)
	}
	if cleared.AssigneeID != "" {
		t.Errorf("AssigneeID = %q after clear, want empty", cleared.AssigneeID)
	}

	before := len(f.auditRows(t, todo.ID))
	if _, err := f.svc.UpdateAssignee(ctx, tenantA, alice, todo.ID, nil); err != nil {
		t.Fatalf("UpdateAssignee(nil) twice error = %v", err)
	}
	if after := len(f.auditRows(t, todo.ID)); after != before {
		t.Errorf("audit rows grew from %d to %d on no-op clear", before, after)
	}
}

func TestToggleAllowedOnArchived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.create(t, &todostructs.CreateTodoRequest{Title: "shelved"})

	if _, err := f.svc.Archive(ctx, tenantA, alice, todo.ID); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	done, _, err := f.svc.Toggle(ctx, tenantA, alice, todo.ID)
	if err != nil {
		t.Fatalf("Toggle() on archived error = %v", err)
	}
	if done.Status != todostructs.StatusCompleted {
		t.Errorf("Status = %q, want COMPLETED", done.Status)
	}
	if done.ArchivedAt == nil {
		t.Error("ArchivedAt cleared by toggle, want kept")
	}
}
