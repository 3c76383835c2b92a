// Package service implements the todo lifecycle state machine. Every
// operation takes the caller's tenant and actor ids explicitly, reads
// the row through a tenant-guarded lookup, applies the transition, and
// writes row + audit entries inside one transaction. Validation always
// happens before the first write so a failed operation leaves no
// partial side effects.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ncobase/todox/biz/activity"
	"github.com/ncobase/todox/biz/todo/data/repository"
	"github.com/ncobase/todox/biz/todo/structs"
	"github.com/ncobase/todox/internal/event"
	"github.com/ncobase/todox/logging/logger"
	"github.com/ncobase/todox/nanoid"
	"github.com/ncobase/todox/paging"
	"github.com/ncobase/todox/validator"
)

var (
	ErrTodoNotFound        = errors.New("todo not found")
	ErrTodoDeleted         = errors.New("todo is deleted")
	ErrAlreadyArchived     = errors.New("todo is already archived")
	ErrNotTrashed          = errors.New("todo is not in the trash")
	ErrDueDateRequired     = errors.New("due date required for recurring todos")
	ErrAssigneeNotInTenant = errors.New("assignee not found in tenant")

	ErrSubtaskNotFound      = errors.New("subtask not found")
	ErrSubtaskTitleRequired = errors.New("title is required")
	ErrSubtaskTitleTooLong  = errors.New("title must be 200 characters or less")
	ErrSubtaskLimit         = errors.New("maximum 20 subtasks per todo")
)

// ValidationError carries field-scoped messages across the service
// boundary; handlers render it as a 422 with an errors map.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// TxRunner runs a function inside a database transaction. *data.Data
// satisfies it; tests use a passthrough.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Directory resolves users for assignee validation.
type Directory interface {
	InTenant(ctx context.Context, userID, tenantID string) (bool, error)
}

// LabelValidator checks that a batch of label ids belongs to a tenant.
type LabelValidator interface {
	ValidateIDs(ctx context.Context, tenantID string, ids []string) error
}

// Notifier creates notification rows for cross-user side effects. The
// notification plugin satisfies it; calls run after the mutation commits
// and failures never propagate to the caller.
type Notifier interface {
	TodoAssigned(ctx context.Context, actorID, assigneeID, todoID, title string) error
}

// CommentStore removes a todo's comments during purge. Set after
// construction to break the wiring cycle with the comment module.
type CommentStore interface {
	DeleteByTodo(ctx context.Context, todoID string) error
}

var primaryKey = nanoid.PrimaryKey()

// Service orchestrates todo mutations.
type Service struct {
	repo       repository.TodoRepository
	subtasks   repository.SubtaskRepository
	todoLabels repository.TodoLabelRepository
	labels     LabelValidator
	users      Directory
	recorder   *activity.Service
	notifier   Notifier
	comments   CommentStore
	tx         TxRunner
	bus        *event.Bus
	logger     *logger.Logger
}

func NewService(
	log *logger.Logger,
	tx TxRunner,
	repo repository.TodoRepository,
	subtasks repository.SubtaskRepository,
	todoLabels repository.TodoLabelRepository,
	labels LabelValidator,
	users Directory,
	recorder *activity.Service,
	notifier Notifier,
	bus *event.Bus,
) *Service {
	return &Service{
		repo:       repo,
		subtasks:   subtasks,
		todoLabels: todoLabels,
		labels:     labels,
		users:      users,
		recorder:   recorder,
		notifier:   notifier,
		tx:         tx,
		bus:        bus,
		logger:     log,
	}
}

// SetCommentStore wires the purge cascade for comments.
func (s *Service) SetCommentStore(store CommentStore) {
	s.comments = store
}

// Create inserts a new PENDING todo and its CREATED audit row. Labels,
// when supplied, are validated as a batch and attached in the same
// transaction. Recurrence always starts at NONE; it is set through
// UpdateRecurrence.
func (s *Service) Create(ctx context.Context, tenantID, actorID string, req *structs.CreateTodoRequest) (*structs.Todo, error) {
	req.Title = strings.TrimSpace(req.Title)
	if fields := validator.ValidateStruct(req); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if req.AssigneeID != "" {
		if err := s.checkAssignee(ctx, req.AssigneeID, tenantID); err != nil {
			return nil, err
		}
	}

	labelIDs := dedupe(req.LabelIDs)
	if len(labelIDs) > 0 {
		if err := s.labels.ValidateIDs(ctx, tenantID, labelIDs); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	todo := &structs.Todo{
		ID:             primaryKey(),
		TenantID:       tenantID,
		CreatedByID:    actorID,
		AssigneeID:     req.AssigneeID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         structs.StatusPending,
		RecurrenceType: structs.RecurrenceNone,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.DueDate != nil {
		due := *req.DueDate
		todo.DueDate = &due
	}

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, todo); err != nil {
			return err
		}
		if len(labelIDs) > 0 {
			if err := s.todoLabels.Attach(txCtx, todo.ID, labelIDs); err != nil {
				return err
			}
		}
		return s.recorder.Created(txCtx, todo.ID, actorID)
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to create todo", "error", err, "tenant_id", tenantID)
		return nil, fmt.Errorf("create todo: %w", err)
	}

	sort.Strings(labelIDs)
	todo.LabelIDs = labelIDs

	s.publish(ctx, event.EventTypeTodoCreated, todo, actorID, nil)
	s.logger.Info(ctx, "Todo created", "todo_id", todo.ID, "tenant_id", tenantID, "actor_id", actorID)
	return todo, nil
}

// Get returns a todo with its label set, guarded by tenant.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*structs.Todo, error) {
	return s.find(ctx, id, tenantID)
}

// List returns the tenant's todos for one lifecycle view.
func (s *Service) List(ctx context.Context, tenantID string, filter repository.TodoFilter) ([]*structs.Todo, error) {
	todos, err := s.repo.ListByTenant(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error(ctx, "Failed to list todos", "error", err, "tenant_id", tenantID)
		return nil, err
	}
	for _, todo := range todos {
		if err := s.hydrateLabels(ctx, todo); err != nil {
			return nil, err
		}
	}
	return todos, nil
}

// Update applies partial field changes, emits one audit row per tracked
// field that actually changed, and runs the assignment trigger when the
// assignee moved to a new user. Identical values write nothing.
func (s *Service) Update(ctx context.Context, tenantID, actorID, id string, req *structs.UpdateTodoRequest) (*structs.Todo, error) {
	todo, err := s.find(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if todo.Trashed() {
		return nil, ErrTodoDeleted
	}

	before := snapshot(todo, nil)
	prevAssignee := todo.AssigneeID
	dirty := false

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, &ValidationError{Fields: map[string]string{"title": "The field 'title' is required."}}
		}
		if title != todo.Title {
			todo.Title = title
			dirty = true
		}
	}
	if req.Description != nil && *req.Description != todo.Description {
		todo.Description = *req.Description
		dirty = true
	}
	if req.DueDate != nil {
		if req.DueDate.IsZero() {
			if todo.DueDate != nil {
				todo.DueDate = nil
				dirty = true
			}
		} else if todo.DueDate == nil || !todo.DueDate.Equal(*req.DueDate) {
			due := *req.DueDate
			todo.DueDate = &due
			dirty = true
		}
	}
	if req.AssigneeID != nil && *req.AssigneeID != todo.AssigneeID {
		if *req.AssigneeID != "" {
			if err := s.checkAssignee(ctx, *req.AssigneeID, tenantID); err != nil {
				return nil, err
			}
		}
		todo.AssigneeID = *req.AssigneeID
		dirty = true
	}

	if !dirty {
		return todo, nil
	}

	changes := activity.Diff(before, snapshot(todo, nil))
	todo.UpdatedAt = time.Now()

	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, todo); err != nil {
			return err
		}
		return s.recorder.Record(txCtx, todo.ID, actorID, changes)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTodoNotFound
		}
		s.logger.Error(ctx, "Failed to update todo", "error", err, "todo_id", id, "tenant_id", tenantID)
		return nil, fmt.Errorf("update todo: %w", err)
	}

	if todo.AssigneeID != "" && todo.AssigneeID != prevAssignee {
		s.notifyAssigned(ctx, actorID, todo)
		s.publish(ctx, event.EventTypeTodoAssigned, todo, actorID, map[string]any{"assignee_id": todo.AssigneeID})
	}
	return todo, nil
}

// Toggle flips PENDING and COMPLETED. Completing a recurring todo with
// a due date atomically spawns the successor: same title, description,
// assignee, creator, recurrence and labels, due date advanced by the
// interval, fresh empty subtasks and comments. Un-completing never
// spawns.
func (s *Service) Toggle(ctx context.Context, tenantID, actorID, id string) (*structs.Todo, *structs.Todo, error) {
	todo, err := s.find(ctx, id, tenantID)
	if err != nil {
		return nil, nil, err
	}
	if todo.Trashed() {
		return nil, nil, ErrTodoDeleted
	}

	before := snapshot(todo, nil)
	completing := todo.Status == structs.StatusPending
	if completing {
		todo.Status = structs.StatusCompleted
	} else {
		todo.Status = structs.StatusPending
	}
	changes := activity.Diff(before, snapshot(todo, nil))

	now := time.Now()
	todo.UpdatedAt = now

	var successor *structs.Todo
	successorLabels := todo.LabelIDs
	if completing && todo.RecurrenceType != structs.RecurrenceNone && todo.DueDate != nil {
		next := NextDueDate(*todo.DueDate, todo.RecurrenceType)
		successor = &structs.Todo{
			ID:             primaryKey(),
			TenantID:       todo.TenantID,
			CreatedByID:    todo.CreatedByID,
			AssigneeID:     todo.AssigneeID,
			Title:          todo.Title,
			Description:    todo.Description,
			Status:         structs.StatusPending,
			DueDate:        &next,
			RecurrenceType: todo.RecurrenceType,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}

	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, todo); err != nil {
			return err
		}
		if err := s.recorder.Record(txCtx, todo.ID, actorID, changes); err != nil {
			return err
		}
		if successor == nil {
			return nil
		}
		if err := s.repo.Create(txCtx, successor); err != nil {
			return err
		}
		if len(successorLabels) > 0 {
			if err := s.todoLabels.Attach(txCtx, successor.ID, successorLabels); err != nil {
				return err
			}
		}
		return s.recorder.Created(txCtx, successor.ID, actorID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrTodoNotFound
		}
		s.logger.Error(ctx, "Failed to toggle todo", "error", err, "todo_id", id, "tenant_id", tenantID)
		return nil, nil, fmt.Errorf("toggle todo: %w", err)
	}

	s.publish(ctx, event.EventTypeTodoStatusChanged, todo, actorID, map[string]any{"status": todo.Status})
	if successor != nil {
		successor.LabelIDs = successorLabels
		s.publish(ctx, event.EventTypeTodoCreated, successor, actorID, map[string]any{"successor_of": todo.ID})
		s.logger.Info(ctx, "Recurring successor spawned",
			"todo_id", todo.ID, "successor_id", successor.ID, "due_date", successor.DueDate)
	}

	return todo, successor, nil
}

// UpdateAssignee sets or clears the assignee. A nil id clears; a new
// non-empty id must resolve inside the tenant and notifies the assignee
// unless they made the change themselves.
func (s *Service) UpdateAssignee(ctx context.Context, tenantID, actorID, id string, assigneeID *string) (*structs.Todo, error) {
	todo, err := s.find(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if todo.Trashed() {
		return nil, ErrTodoDeleted
	}

	next := ""
	if assigneeID != nil {
		next = *assigneeID
	}
	if next == todo.AssigneeID {
		return todo, nil
	}
	if next != "" {
		if err := s.checkAssignee(ctx, next, tenantID); err != nil {
			return nil, err
		}
	}

	before := snapshot(todo, nil)
	todo.AssigneeID = next
	changes := activity.Diff(before, snapshot(todo, nil))
	todo.UpdatedAt = time.Now()

	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, todo); err != nil {
			return err
		}
		return s.recorder.Record(txCtx, todo.ID, actorID, changes)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTodoNotFound
		}
		s.logger.Error(ctx, "Failed to update assignee", "error", err, "todo_id", id, "tenant_id", tenantID)
		return nil, fmt.Errorf("update assignee: %w", err)
	}

	if next != "" {
		s.notifyAssigned(ctx, actorID, todo)
		s.publish(ctx, event.EventTypeTodoAssigned, todo, actorID, map[string]any{"assignee_id": next})
	}
	return todo, nil
}

// UpdateRecurrence sets the recurrence interval. A non-NONE interval
// requires a due date; setting NONE is always permitted. Recurrence is
// not a tracked audit field, so no activity row is emitted.
func (s *Service) UpdateRecurrence(ctx context.Context, tenantID, actorID, id string, interval structs.Recurrence) (*structs.Todo, error) {
	todo, err := s.find(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if todo.Trashed() {
		return nil, ErrTodoDeleted
	}
	if interval != structs.RecurrenceNone && todo.DueDate == nil {
		return nil, ErrDueDateRequired
	}
	if interval == todo.RecurrenceType {
		return todo, nil
	}

	todo.RecurrenceType = interval
	todo.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTodoNotFound
		}
		s.logger.Error(ctx, "Failed to update recurrence", "error", err, "todo_id", id, "tenant_id", tenantID)
		return nil, fmt.Errorf("update recurrence: %w", err)
	}
	return todo, nil
}

// ReplaceLabels swaps the todo's label set for the given one. Every id
// must belong to the tenant or the whole batch aborts; the recorder
// gets one LABELS_CHANGED row per added and removed id.
func (s *Service) ReplaceLabels(ctx context.Context, tenantID, actorID, id string, labelIDs []string) (*structs.Todo, error) {
	todo, err := s.find(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if todo.Trashed() {
		return nil, ErrTodoDeleted
	}

	next := dedupe(labelIDs)
	if err := s.labels.ValidateIDs(ctx, tenantID, next); err != nil {
		return nil, err
	}

	changes := activity.Diff(snapshot(todo, todo.LabelIDs), snapshot(todo, next))
	if len(changes) == 0 {
		return todo, nil
	}

	todo.UpdatedAt = time.Now()
	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.todoLabels.DeleteByTodo(txCtx, todo.ID); err != nil {
			return err
		}
		if len(next) > 0 {
			if err := s.todoLabels.Attach(txCtx, todo.ID, next); err != nil {
				return err
			}
		}
		if err := s.repo.Update(txCtx, todo); err != nil {
			return err
		}
		return s.recorder.Record(txCtx, todo.ID, actorID, changes)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTodoNotFound
		}
		s.logger.Error(ctx, "Failed to replace labels", "error", err, "todo_id", id, "tenant_id", tenantID)
		return nil, fmt.Errorf("replace labels: %w", err)
	}

	sort.Strings(next)
	todo.LabelIDs = next
	return todo, nil
}

// Archive moves an active todo to the archive.
func (s *Service) Archive(ctx context.Context, tenantID, actorID, id string) (*structs.Todo, error) {
	todo, err := s.find(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if todo.Trashed() {
		return nil, ErrTodoDeleted
	}
	if todo.Archived() {
		return nil, ErrAlreadyArchived
	}

	now := time.Now()
	todo.ArchivedAt = &now
	todo.UpdatedAt = now

	if err := s.transition(ctx, todo, actorID, activity.ActionArchived); err != nil {
		return nil, err
	}
	s.publish(ctx, event.EventTypeTodoArchived, todo, actorID, nil)
	return todo, nil
}

// Trash soft-deletes an active or archived todo, remembering which so
// restore can put it back where it was.
func (s *Service) Trash(ctx context.Context, tenantID, actorID, id string) (*structs.Todo, error) {
	todo, err := s.find(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if todo.Trashed() {
		return nil, ErrTodoDeleted
	}

	now := time.Now()
	todo.WasArchived = todo.Archived()
	todo.DeletedAt = &now
	todo.UpdatedAt = now

	if err := s.transition(ctx, todo, actorID, activity.ActionTrashed); err != nil {
		return nil, err
	}
	s.publish(ctx, event.EventTypeTodoTrashed, todo, actorID, nil)
	return todo, nil
}

// Restore returns a trashed todo to the archive when it was archived at
// trash time, otherwise to the active view.
func (s *Service) Restore(ctx context.Context, tenantID, actorID, id string) (*structs.Todo, error) {
	todo, err := s.find(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if !todo.Trashed() {
		return nil, ErrNotTrashed
	}

	todo.DeletedAt = nil
	if !todo.WasArchived {
		todo.ArchivedAt = nil
	}
	todo.WasArchived = false
	todo.UpdatedAt = time.Now()

	if err := s.transition(ctx, todo, actorID, activity.ActionRestored); err != nil {
		return nil, err
	}
	s.publish(ctx, event.EventTypeTodoRestored, todo, actorID, nil)
	return todo, nil
}

// Purge physically deletes a trashed todo together with its subtasks,
// labels and comments. Activity rows are kept; no terminal row is
// written since the todo itself disappears.
func (s *Service) Purge(ctx context.Context, tenantID, actorID, id string) error {
	todo, err := s.find(ctx, id, tenantID)
	if err != nil {
		return err
	}
	if !todo.Trashed() {
		return ErrNotTrashed
	}

	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.subtasks.DeleteByTodo(txCtx, todo.ID); err != nil {
			return err
		}
		if err := s.todoLabels.DeleteByTodo(txCtx, todo.ID); err != nil {
			return err
		}
		if s.comments != nil {
			if err := s.comments.DeleteByTodo(txCtx, todo.ID); err != nil {
				return err
			}
		}
		return s.repo.Delete(txCtx, todo.ID, tenantID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTodoNotFound
		}
		s.logger.Error(ctx, "Failed to purge todo", "error", err, "todo_id", id, "tenant_id", tenantID)
		return fmt.Errorf("purge todo: %w", err)
	}

	s.publish(ctx, event.EventTypeTodoPurged, todo, actorID, nil)
	s.logger.Info(ctx, "Todo purged", "todo_id", id, "tenant_id", tenantID, "actor_id", actorID)
	return nil
}

// Activities returns the todo's audit feed, newest-first. The todo is
// resolved through the tenant guard first so one tenant can never read
// another's trail.
func (s *Service) Activities(ctx context.Context, tenantID, id string, params paging.Params) (*paging.Result[*activity.Activity], error) {
	if _, err := s.find(ctx, id, tenantID); err != nil {
		return nil, err
	}
	return s.recorder.ListByTodo(ctx, id, params)
}

// find resolves a todo through the tenant guard and hydrates its label
// set. Cross-tenant ids surface as the same not-found as missing ones.
func (s *Service) find(ctx context.Context, id, tenantID string) (*structs.Todo, error) {
	todo, err := s.repo.FindByIDInTenant(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTodoNotFound
		}
		s.logger.Error(ctx, "Failed to load todo", "error", err, "todo_id", id, "tenant_id", tenantID)
		return nil, err
	}
	if err := s.hydrateLabels(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// transition persists a lifecycle change and its event-only audit row.
func (s *Service) transition(ctx context.Context, todo *structs.Todo, actorID string, action activity.Action) error {
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, todo); err != nil {
			return err
		}
		return s.recorder.Event(txCtx, todo.ID, actorID, action)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTodoNotFound
		}
		s.logger.Error(ctx, "Failed lifecycle transition",
			"error", err, "todo_id", todo.ID, "action", action)
		return fmt.Errorf("%s todo: %w", strings.ToLower(string(action)), err)
	}
	return nil
}

func (s *Service) checkAssignee(ctx context.Context, userID, tenantID string) error {
	ok, err := s.users.InTenant(ctx, userID, tenantID)
	if err != nil {
		s.logger.Error(ctx, "Failed to resolve assignee", "error", err, "user_id", userID, "tenant_id", tenantID)
		return fmt.Errorf("resolve assignee: %w", err)
	}
	if !ok {
		return ErrAssigneeNotInTenant
	}
	return nil
}

func (s *Service) notifyAssigned(ctx context.Context, actorID string, todo *structs.Todo) {
	if s.notifier == nil || todo.AssigneeID == actorID {
		return
	}
	if err := s.notifier.TodoAssigned(ctx, actorID, todo.AssigneeID, todo.ID, todo.Title); err != nil {
		s.logger.Error(ctx, "Failed to create assignment notification",
			"error", err, "todo_id", todo.ID, "assignee_id", todo.AssigneeID)
	}
}

func (s *Service) hydrateLabels(ctx context.Context, todo *structs.Todo) error {
	ids, err := s.todoLabels.ListIDsByTodo(ctx, todo.ID)
	if err != nil {
		s.logger.Error(ctx, "Failed to load todo labels", "error", err, "todo_id", todo.ID)
		return fmt.Errorf("load todo labels: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	todo.LabelIDs = ids
	return nil
}

func (s *Service) publish(ctx context.Context, eventType event.EventType, todo *structs.Todo, actorID string, payload map[string]any) {
	if s.bus == nil {
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["title"] = todo.Title
	payload["created_by"] = todo.CreatedByID

	if err := s.bus.Publish(ctx, &event.Event{
		Type:     eventType,
		TodoID:   todo.ID,
		TenantID: todo.TenantID,
		ActorID:  actorID,
		Payload:  payload,
	}); err != nil {
		s.logger.Error(ctx, "Failed to publish event", "error", err, "type", eventType, "todo_id", todo.ID)
	}
}

// snapshot projects the tracked audit fields of a todo. Empty strings
// normalize to nil so "unset" compares equal regardless of source.
func snapshot(t *structs.Todo, labels []string) *activity.Snapshot {
	snap := &activity.Snapshot{Status: string(t.Status), Labels: labels}
	if t.AssigneeID != "" {
		v := t.AssigneeID
		snap.AssigneeID = &v
	}
	if t.DueDate != nil {
		v := *t.DueDate
		snap.DueDate = &v
	}
	if t.Description != "" {
		v := t.Description
		snap.Description = &v
	}
	return snap
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
