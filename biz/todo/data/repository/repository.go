// Package repository provides todo data access. Every mutation is
// expressed as a single compound "id AND tenant_id" statement so a
// request scoped to one tenant can never touch another tenant's rows;
// zero rows affected surfaces as ErrNotFound without revealing whether
// the id exists elsewhere.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ncobase/todox/biz/todo/structs"
	"github.com/ncobase/todox/data"
)

var (
	ErrNotFound        = errors.New("todo not found")
	ErrSubtaskNotFound = errors.New("subtask not found")
)

// TodoFilter narrows a tenant listing.
type TodoFilter struct {
	View   structs.View
	Status structs.Status
	Limit  int
	Offset int
}

// TodoRepository defines todo data access operations.
type TodoRepository interface {
	Create(ctx context.Context, todo *structs.Todo) error
	FindByIDInTenant(ctx context.Context, id, tenantID string) (*structs.Todo, error)
	ListByTenant(ctx context.Context, tenantID string, filter TodoFilter) ([]*structs.Todo, error)
	// Update writes all mutable fields guarded by (id, tenant_id).
	Update(ctx context.Context, todo *structs.Todo) error
	// Delete physically removes the row guarded by (id, tenant_id).
	Delete(ctx context.Context, id, tenantID string) error

	// Reminder scan support. Both listings return PENDING, non-archived,
	// non-trashed todos with a due date that have not been stamped yet.
	ListDueSoonPending(ctx context.Context, from, until time.Time, limit int) ([]*structs.Todo, error)
	ListOverduePending(ctx context.Context, now time.Time, limit int) ([]*structs.Todo, error)
	StampDueSoonReminder(ctx context.Context, id string, at time.Time) error
	StampOverdueReminder(ctx context.Context, id string, at time.Time) error
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so repository methods can
// ride a caller transaction placed in the context by data.WithTx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type todoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) (TodoRepository, error) {
	if db == nil {
		return nil, errors.New("database is nil")
	}

	repo := &todoRepository{db: db}
	if err := repo.initSchema(context.Background()); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *todoRepository) initSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS todos (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			created_by TEXT NOT NULL,
			assignee_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			due_date TIMESTAMPTZ NULL,
			recurrence_type TEXT NOT NULL,
			archived_at TIMESTAMPTZ NULL,
			deleted_at TIMESTAMPTZ NULL,
			was_archived BOOLEAN NOT NULL DEFAULT FALSE,
			due_soon_reminder_sent_at TIMESTAMPTZ NULL,
			overdue_reminder_sent_at TIMESTAMPTZ NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_todos_tenant_id ON todos(tenant_id);
	`); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_todos_due_date ON todos(due_date);
	`)
	return err
}

func (r *todoRepository) conn(ctx context.Context) dbtx {
	if tx, err := data.GetTx(ctx); err == nil {
		return tx
	}
	return r.db
}

const todoColumns = `id, tenant_id, created_by, assignee_id, title, description, status, due_date,
		recurrence_type, archived_at, deleted_at, was_archived,
		due_soon_reminder_sent_at, overdue_reminder_sent_at, created_at, updated_at`

func (r *todoRepository) Create(ctx context.Context, todo *structs.Todo) error {
	_, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO todos (`+todoColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, todo.ID, todo.TenantID, todo.CreatedByID, todo.AssigneeID, todo.Title, todo.Description,
		todo.Status, todo.DueDate, todo.RecurrenceType, todo.ArchivedAt, todo.DeletedAt,
		todo.WasArchived, todo.DueSoonReminderSentAt, todo.OverdueReminderSentAt,
		todo.CreatedAt, todo.UpdatedAt)
	return err
}

func (r *todoRepository) FindByIDInTenant(ctx context.Context, id, tenantID string) (*structs.Todo, error) {
	row := r.conn(ctx).QueryRowContext(ctx, `
		SELECT `+todoColumns+`
		FROM todos WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	return scanTodo(row)
}

func (r *todoRepository) ListByTenant(ctx context.Context, tenantID string, filter TodoFilter) ([]*structs.Todo, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	query := `
		SELECT ` + todoColumns + `
		FROM todos WHERE tenant_id = $1`

	switch filter.View {
	case structs.ViewArchived:
		query += ` AND deleted_at IS NULL AND archived_at IS NOT NULL`
	case structs.ViewTrashed:
		query += ` AND deleted_at IS NOT NULL`
	default:
		query += ` AND deleted_at IS NULL AND archived_at IS NULL`
	}

	args := []any{tenantID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTodos(rows)
}

func (r *todoRepository) Update(ctx context.Context, todo *structs.Todo) error {
	result, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE todos
		SET assignee_id = $1, title = $2, description = $3, status = $4, due_date = $5,
			recurrence_type = $6, archived_at = $7, deleted_at = $8, was_archived = $9,
			due_soon_reminder_sent_at = $10, overdue_reminder_sent_at = $11, updated_at = $12
		WHERE id = $13 AND tenant_id = $14
	`, todo.AssigneeID, todo.Title, todo.Description, todo.Status, todo.DueDate,
		todo.RecurrenceType, todo.ArchivedAt, todo.DeletedAt, todo.WasArchived,
		todo.DueSoonReminderSentAt, todo.OverdueReminderSentAt, todo.UpdatedAt,
		todo.ID, todo.TenantID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *todoRepository) Delete(ctx context.Context, id, tenantID string) error {
	result, err := r.conn(ctx).ExecContext(ctx, `
		DELETE FROM todos WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *todoRepository) ListDueSoonPending(ctx context.Context, from, until time.Time, limit int) ([]*structs.Todo, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE status = $1 AND deleted_at IS NULL AND archived_at IS NULL
			AND due_date IS NOT NULL AND due_date > $2 AND due_date <= $3
			AND due_soon_reminder_sent_at IS NULL
		ORDER BY due_date ASC LIMIT $4
	`, structs.StatusPending, from, until, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTodos(rows)
}

func (r *todoRepository) ListOverduePending(ctx context.Context, now time.Time, limit int) ([]*structs.Todo, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE status = $1 AND deleted_at IS NULL AND archived_at IS NULL
			AND due_date IS NOT NULL AND due_date <= $2
			AND overdue_reminder_sent_at IS NULL
		ORDER BY due_date ASC LIMIT $3
	`, structs.StatusPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTodos(rows)
}

func (r *todoRepository) StampDueSoonReminder(ctx context.Context, id string, at time.Time) error {
	result, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE todos SET due_soon_reminder_sent_at = $1, updated_at = $2
		WHERE id = $3 AND due_soon_reminder_sent_at IS NULL
	`, at, at, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *todoRepository) StampOverdueReminder(ctx context.Context, id string, at time.Time) error {
	result, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE todos SET overdue_reminder_sent_at = $1, updated_at = $2
		WHERE id = $3 AND overdue_reminder_sent_at IS NULL
	`, at, at, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTodo(scanner interface{ Scan(dest ...any) error }) (*structs.Todo, error) {
	var dueDate, archivedAt, deletedAt, dueSoonAt, overdueAt sql.NullTime
	t := &structs.Todo{}
	if err := scanner.Scan(
		&t.ID,
		&t.TenantID,
		&t.CreatedByID,
		&t.AssigneeID,
		&t.Title,
		&t.Description,
		&t.Status,
		&dueDate,
		&t.RecurrenceType,
		&archivedAt,
		&deletedAt,
		&t.WasArchived,
		&dueSoonAt,
		&overdueAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if archivedAt.Valid {
		t.ArchivedAt = &archivedAt.Time
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}
	if dueSoonAt.Valid {
		t.DueSoonReminderSentAt = &dueSoonAt.Time
	}
	if overdueAt.Valid {
		t.OverdueReminderSentAt = &overdueAt.Time
	}
	return t, nil
}

func scanTodos(rows *sql.Rows) ([]*structs.Todo, error) {
	var todos []*structs.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// MemoryTodoRepository is an in-memory implementation for tests.
type MemoryTodoRepository struct {
	mu    sync.RWMutex
	todos map[string]*structs.Todo
}

// NewMemoryTodoRepository creates an in-memory todo repository.
func NewMemoryTodoRepository() *MemoryTodoRepository {
	return &MemoryTodoRepository{todos: make(map[string]*structs.Todo)}
}

func (r *MemoryTodoRepository) Create(_ context.Context, todo *structs.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *todo
	cp.LabelIDs = nil
	r.todos[todo.ID] = &cp
	return nil
}

func (r *MemoryTodoRepository) FindByIDInTenant(_ context.Context, id, tenantID string) (*structs.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	todo, ok := r.todos[id]
	if !ok || todo.TenantID != tenantID {
		return nil, ErrNotFound
	}
	cp := *todo
	return &cp, nil
}

func (r *MemoryTodoRepository) ListByTenant(_ context.Context, tenantID string, filter TodoFilter) ([]*structs.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var todos []*structs.Todo
	for _, todo := range r.todos {
		if todo.TenantID != tenantID {
			continue
		}
		switch filter.View {
		case structs.ViewArchived:
			if todo.DeletedAt != nil || todo.ArchivedAt == nil {
				continue
			}
		case structs.ViewTrashed:
			if todo.DeletedAt == nil {
				continue
			}
		default:
			if todo.DeletedAt != nil || todo.ArchivedAt != nil {
				continue
			}
		}
		if filter.Status != "" && todo.Status != filter.Status {
			continue
		}
		cp := *todo
		todos = append(todos, &cp)
	}

	sort.Slice(todos, func(i, j int) bool { return todos[i].CreatedAt.After(todos[j].CreatedAt) })

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if filter.Offset >= len(todos) {
		return nil, nil
	}
	todos = todos[filter.Offset:]
	if len(todos) > limit {
		todos = todos[:limit]
	}
	return todos, nil
}

func (r *MemoryTodoRepository) Update(_ context.Context, todo *structs.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.todos[todo.ID]
	if !ok || existing.TenantID != todo.TenantID {
		return ErrNotFound
	}
	cp := *todo
	cp.LabelIDs = nil
	r.todos[todo.ID] = &cp
	return nil
}

func (r *MemoryTodoRepository) Delete(_ context.Context, id, tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.todos[id]
	if !ok || existing.TenantID != tenantID {
		return ErrNotFound
	}
	delete(r.todos, id)
	return nil
}

func (r *MemoryTodoRepository) ListDueSoonPending(_ context.Context, from, until time.Time, limit int) ([]*structs.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}

	var todos []*structs.Todo
	for _, todo := range r.todos {
		if !scannable(todo) || todo.DueSoonReminderSentAt != nil {
			continue
		}
		if todo.DueDate.After(from) && !todo.DueDate.After(until) {
			cp := *todo
			todos = append(todos, &cp)
		}
	}
	sort.Slice(todos, func(i, j int) bool { return todos[i].DueDate.Before(*todos[j].DueDate) })
	if len(todos) > limit {
		todos = todos[:limit]
	}
	return todos, nil
}

func (r *MemoryTodoRepository) ListOverduePending(_ context.Context, now time.Time, limit int) ([]*structs.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}

	var todos []*structs.Todo
	for _, todo := range r.todos {
		if !scannable(todo) || todo.OverdueReminderSentAt != nil {
			continue
		}
		if !todo.DueDate.After(now) {
			cp := *todo
			todos = append(todos, &cp)
		}
	}
	sort.Slice(todos, func(i, j int) bool { return todos[i].DueDate.Before(*todos[j].DueDate) })
	if len(todos) > limit {
		todos = todos[:limit]
	}
	return todos, nil
}

func scannable(todo *structs.Todo) bool {
	return todo.Status == structs.StatusPending &&
		todo.DeletedAt == nil && todo.ArchivedAt == nil && todo.DueDate != nil
}

func (r *MemoryTodoRepository) StampDueSoonReminder(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	todo, ok := r.todos[id]
	if !ok || todo.DueSoonReminderSentAt != nil {
		return ErrNotFound
	}
	stamp := at
	todo.DueSoonReminderSentAt = &stamp
	todo.UpdatedAt = at
	return nil
}

func (r *MemoryTodoRepository) StampOverdueReminder(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	todo, ok := r.todos[id]
	if !ok || todo.OverdueReminderSentAt != nil {
		return ErrNotFound
	}
	stamp := at
	todo.OverdueReminderSentAt = &stamp
	todo.UpdatedAt = at
	return nil
}
