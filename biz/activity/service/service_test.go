package service

import (
	"context"
	"testing"
	"time"

	"github.com/ncobase/todox/biz/activity/data/repository"
	"github.com/ncobase/todox/biz/activity/structs"
	"github.com/ncobase/todox/config"
	"github.com/ncobase/todox/logging/logger"
	"github.com/ncobase/todox/paging"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log := logger.StdLogger()
	if _, err := log.Init(&config.Logger{Level: 2, Format: "json", Output: "stderr"}); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return log
}

func newTestService(t *testing.T) (*Service, *repository.MemoryActivityRepository) {
	t.Helper()
	repo := repository.NewMemoryActivityRepository()
	return NewService(repo, newTestLogger(t)), repo
}

func TestCreatedSingleRow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Created(ctx, "todo-1", "user-1"); err != nil {
		t.Fatalf("Created() error = %v", err)
	}

	result, err := svc.ListByTodo(ctx, "todo-1", paging.Params{Limit: 10})
	if err != nil {
		t.Fatalf("ListByTodo() error = %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(result.Items))
	}
	row := result.Items[0]
	if row.Action != structs.ActionCreated {
		t.Errorf("action = %q, want %q", row.Action, structs.ActionCreated)
	}
	if row.Field != nil || row.OldValue != nil || row.NewValue != nil {
		t.Errorf("field/old/new = %v/%v/%v, want all nil", row.Field, row.OldValue, row.NewValue)
	}
	if row.ActorID != "user-1" {
		t.Errorf("actor = %q, want %q", row.ActorID, "user-1")
	}
}

func TestRecordBatchSharesTimestamp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	before := &Snapshot{Status: "PENDING"}
	after := &Snapshot{Status: "COMPLETED", AssigneeID: strp("user-2")}
	changes := Diff(before, after)
	if len(changes) != 2 {
		t.Fatalf("Diff() emitted %d changes, want 2", len(changes))
	}

	if err := svc.Record(ctx, "todo-1", "user-1", changes); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	result, err := svc.ListByTodo(ctx, "todo-1", paging.Params{Limit: 10})
	if err != nil {
		t.Fatalf("ListByTodo() error = %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(result.Items))
	}
	if !result.Items[0].CreatedAt.Equal(result.Items[1].CreatedAt) {
		t.Errorf("batch timestamps differ: %v vs %v", result.Items[0].CreatedAt, result.Items[1].CreatedAt)
	}
	// Newest-first with seq as tiebreaker: the later change of the
	// batch comes back first.
	if result.Items[0].Seq != 1 || result.Items[1].Seq != 0 {
		t.Errorf("seq order = %d,%d, want 1,0", result.Items[0].Seq, result.Items[1].Seq)
	}
	if result.Items[0].Action != structs.ActionAssigneeChanged {
		t.Errorf("items[0].action = %q, want %q", result.Items[0].Action, structs.ActionAssigneeChanged)
	}
}

func TestRecordEmptyBatchIsNoop(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if err := svc.Record(ctx, "todo-1", "user-1", nil); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	n, err := repo.CountByTodo(ctx, "todo-1")
	if err != nil {
		t.Fatalf("CountByTodo() error = %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestListByTodoCursorWalk(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Three batches at distinct instants, each with two rows, plus the
	// creation row. Small sleeps keep wall-clock timestamps distinct.
	if err := svc.Created(ctx, "todo-1", "user-1"); err != nil {
		t.Fatalf("Created() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		time.Sleep(2 * time.Millisecond)
		changes := []Change{
			{Action: structs.ActionStatusChanged, Field: &fieldStatus, Old: strp("PENDING"), New: strp("COMPLETED")},
			{Action: structs.ActionStatusChanged, Field: &fieldStatus, Old: strp("COMPLETED"), New: strp("PENDING")},
		}
		if err := svc.Record(ctx, "todo-1", "user-1", changes); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	var seen []*structs.Activity
	cursor := ""
	for {
		result, err := svc.ListByTodo(ctx, "todo-1", paging.Params{Cursor: cursor, Limit: 3})
		if err != nil {
			t.Fatalf("ListByTodo() error = %v", err)
		}
		if result.Total != 7 {
			t.Errorf("total = %d, want 7", result.Total)
		}
		seen = append(seen, result.Items...)
		if !result.HasNextPage {
			break
		}
		if result.NextCursor == "" {
			t.Fatal("HasNextPage = true but NextCursor is empty")
		}
		cursor = result.NextCursor
	}

	if len(seen) != 7 {
		t.Fatalf("walked %d rows, want 7", len(seen))
	}
	for i := 1; i < len(seen); i++ {
		prev, cur := seen[i-1], seen[i]
		if cur.CreatedAt.After(prev.CreatedAt) {
			t.Errorf("rows[%d] newer than rows[%d]: %v > %v", i, i-1, cur.CreatedAt, prev.CreatedAt)
		}
		if cur.CreatedAt.Equal(prev.CreatedAt) && cur.Seq >= prev.Seq {
			t.Errorf("rows[%d] seq %d not below rows[%d] seq %d at equal timestamp", i, cur.Seq, i-1, prev.Seq)
		}
	}
	if seen[len(seen)-1].Action != structs.ActionCreated {
		t.Errorf("oldest row action = %q, want %q", seen[len(seen)-1].Action, structs.ActionCreated)
	}
}

func TestEventRow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Event(ctx, "todo-1", "user-1", structs.ActionArchived); err != nil {
		t.Fatalf("Event() error = %v", err)
	}

	result, err := svc.ListByTodo(ctx, "todo-1", paging.Params{Limit: 10})
	if err != nil {
		t.Fatalf("ListByTodo() error = %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(result.Items))
	}
	if result.Items[0].Action != structs.ActionArchived {
		t.Errorf("action = %q, want %q", result.Items[0].Action, structs.ActionArchived)
	}
}
