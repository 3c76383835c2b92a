package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"

	"github.com/ncobase/todox/biz/todo/structs"
	"github.com/ncobase/todox/data"
)

// SubtaskRepository defines subtask data access. Subtasks are guarded
// through their parent: callers resolve the todo in the caller's tenant
// first, then address subtasks by (id, todo_id).
type SubtaskRepository interface {
	Create(ctx context.Context, subtask *structs.Subtask) error
	FindByIDInTodo(ctx context.Context, id, todoID string) (*structs.Subtask, error)
	ListByTodo(ctx context.Context, todoID string) ([]*structs.Subtask, error)
	CountByTodo(ctx context.Context, todoID string) (int, error)
	Update(ctx context.Context, subtask *structs.Subtask) error
	// Delete removes the row and shifts later rows down one position so
	// ordering stays dense. Run inside a transaction.
	Delete(ctx context.Context, id, todoID string) error
	DeleteByTodo(ctx context.Context, todoID string) error
}

type subtaskRepository struct {
	db *sql.DB
}

func NewSubtaskRepository(db *sql.DB) (SubtaskRepository, error) {
	if db == nil {
		return nil, errors.New("database is nil")
	}

	repo := &subtaskRepository{db: db}
	if err := repo.initSchema(context.Background()); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *subtaskRepository) initSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS subtasks (
			id TEXT PRIMARY KEY,
			todo_id TEXT NOT NULL,
			title TEXT NOT NULL,
			is_complete BOOLEAN NOT NULL DEFAULT FALSE,
			position INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
	`); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_subtasks_todo_id ON subtasks(todo_id);
	`)
	return err
}

func (r *subtaskRepository) conn(ctx context.Context) dbtx {
	if tx, err := data.GetTx(ctx); err == nil {
		return tx
	}
	return r.db
}

func (r *subtaskRepository) Create(ctx context.Context, subtask *structs.Subtask) error {
	_, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO subtasks (id, todo_id, title, is_complete, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, subtask.ID, subtask.TodoID, subtask.Title, subtask.IsComplete, subtask.Order, subtask.CreatedAt)
	return err
}

func (r *subtaskRepository) FindByIDInTodo(ctx context.Context, id, todoID string) (*structs.Subtask, error) {
	row := r.conn(ctx).QueryRowContext(ctx, `
		SELECT id, todo_id, title, is_complete, position, created_at
		FROM subtasks WHERE id = $1 AND todo_id = $2
	`, id, todoID)

	s := &structs.Subtask{}
	err := row.Scan(&s.ID, &s.TodoID, &s.Title, &s.IsComplete, &s.Order, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubtaskNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *subtaskRepository) ListByTodo(ctx context.Context, todoID string) ([]*structs.Subtask, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT id, todo_id, title, is_complete, position, created_at
		FROM subtasks WHERE todo_id = $1 ORDER BY position ASC
	`, todoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subtasks []*structs.Subtask
	for rows.Next() {
		s := &structs.Subtask{}
		if err := rows.Scan(&s.ID, &s.TodoID, &s.Title, &s.IsComplete, &s.Order, &s.CreatedAt); err != nil {
			return nil, err
		}
		subtasks = append(subtasks, s)
	}
	return subtasks, rows.Err()
}

func (r *subtaskRepository) CountByTodo(ctx context.Context, todoID string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRowContext(ctx, `
		SELECT COUNT(1) FROM subtasks WHERE todo_id = $1
	`, todoID).Scan(&n)
	return n, err
}

func (r *subtaskRepository) Update(ctx context.Context, subtask *structs.Subtask) error {
	result, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE subtasks SET title = $1, is_complete = $2
		WHERE id = $3 AND todo_id = $4
	`, subtask.Title, subtask.IsComplete, subtask.ID, subtask.TodoID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSubtaskNotFound
	}
	return nil
}

func (r *subtaskRepository) Delete(ctx context.Context, id, todoID string) error {
	c := r.conn(ctx)

	var position int
	err := c.QueryRowContext(ctx, `
		SELECT position FROM subtasks WHERE id = $1 AND todo_id = $2
	`, id, todoID).Scan(&position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSubtaskNotFound
		}
		return err
	}

	if _, err := c.ExecContext(ctx, `
		DELETE FROM subtasks WHERE id = $1 AND todo_id = $2
	`, id, todoID); err != nil {
		return err
	}

	_, err = c.ExecContext(ctx, `
		UPDATE subtasks SET position = position - 1 WHERE todo_id = $1 AND position > $2
	`, todoID, position)
	return err
}

func (r *subtaskRepository) DeleteByTodo(ctx context.Context, todoID string) error {
	_, err := r.conn(ctx).ExecContext(ctx, `
		DELETE FROM subtasks WHERE todo_id = $1
	`, todoID)
	return err
}

// MemorySubtaskRepository is an in-memory implementation for tests.
type MemorySubtaskRepository struct {
	mu       sync.RWMutex
	subtasks map[string]*structs.Subtask
}

// NewMemorySubtaskRepository creates an in-memory subtask repository.
func NewMemorySubtaskRepository() *MemorySubtaskRepository {
	return &MemorySubtaskRepository{subtasks: make(map[string]*structs.Subtask)}
}

func (r *MemorySubtaskRepository) Create(_ context.Context, subtask *structs.Subtask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *subtask
	r.subtasks[subtask.ID] = &cp
	return nil
}

func (r *MemorySubtaskRepository) FindByIDInTodo(_ context.Context, id, todoID string) (*structs.Subtask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.subtasks[id]
	if !ok || s.TodoID != todoID {
		return nil, ErrSubtaskNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MemorySubtaskRepository) ListByTodo(_ context.Context, todoID string) ([]*structs.Subtask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var subtasks []*structs.Subtask
	for _, s := range r.subtasks {
		if s.TodoID == todoID {
			cp := *s
			subtasks = append(subtasks, &cp)
		}
	}
	sort.Slice(subtasks, func(i, j int) bool { return subtasks[i].Order < subtasks[j].Order })
	return subtasks, nil
}

func (r *MemorySubtaskRepository) CountByTodo(_ context.Context, todoID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.subtasks {
		if s.TodoID == todoID {
			n++
		}
	}
	return n, nil
}

func (r *MemorySubtaskRepository) Update(_ context.Context, subtask *structs.Subtask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.subtasks[subtask.ID]
	if !ok || existing.TodoID != subtask.TodoID {
		return ErrSubtaskNotFound
	}
	existing.Title = subtask.Title
	existing.IsComplete = subtask.IsComplete
	return nil
}

func (r *MemorySubtaskRepository) Delete(_ context.Context, id, todoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.subtasks[id]
	if !ok || existing.TodoID != todoID {
		return ErrSubtaskNotFound
	}
	position := existing.Order
	delete(r.subtasks, id)
	for _, s := range r.subtasks {
		if s.TodoID == todoID && s.Order > position {
			s.Order--
		}
	}
	return nil
}

func (r *MemorySubtaskRepository) DeleteByTodo(_ context.Context, todoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.subtasks {
		if s.TodoID == todoID {
			delete(r.subtasks, id)
		}
	}
	return nil
}
