package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"

	"github.com/ncobase/todox/data"
)

// TodoLabelRepository manages the (todo_id, label_id) join. Replacing a
// todo's label set is DeleteByTodo followed by Attach inside one
// transaction; label ids are validated against the tenant by the caller
// before either runs.
type TodoLabelRepository interface {
	ListIDsByTodo(ctx context.Context, todoID string) ([]string, error)
	Attach(ctx context.Context, todoID string, labelIDs []string) error
	DeleteByTodo(ctx context.Context, todoID string) error
}

type todoLabelRepository struct {
	db *sql.DB
}

func NewTodoLabelRepository(db *sql.DB) (TodoLabelRepository, error) {
	if db == nil {
		return nil, errors.New("database is nil")
	}

	repo := &todoLabelRepository{db: db}
	if err := repo.initSchema(context.Background()); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *todoLabelRepository) initSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS todo_labels (
			todo_id TEXT NOT NULL,
			label_id TEXT NOT NULL,
			PRIMARY KEY (todo_id, label_id)
		);
	`)
	return err
}

func (r *todoLabelRepository) conn(ctx context.Context) dbtx {
	if tx, err := data.GetTx(ctx); err == nil {
		return tx
	}
	return r.db
}

func (r *todoLabelRepository) ListIDsByTodo(ctx context.Context, todoID string) ([]string, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT label_id FROM todo_labels WHERE todo_id = $1 ORDER BY label_id ASC
	`, todoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *todoLabelRepository) Attach(ctx context.Context, todoID string, labelIDs []string) error {
	c := r.conn(ctx)
	for _, labelID := range labelIDs {
		if _, err := c.ExecContext(ctx, `
			INSERT INTO todo_labels (todo_id, label_id) VALUES ($1, $2)
		`, todoID, labelID); err != nil {
			return err
		}
	}
	return nil
}

func (r *todoLabelRepository) DeleteByTodo(ctx context.Context, todoID string) error {
	_, err := r.conn(ctx).ExecContext(ctx, `
		DELETE FROM todo_labels WHERE todo_id = $1
	`, todoID)
	return err
}

// MemoryTodoLabelRepository is an in-memory implementation for tests.
type MemoryTodoLabelRepository struct {
	mu     sync.RWMutex
	labels map[string]map[string]struct{} // todoID -> set of labelIDs
}

// NewMemoryTodoLabelRepository creates an in-memory join repository.
func NewMemoryTodoLabelRepository() *MemoryTodoLabelRepository {
	return &MemoryTodoLabelRepository{labels: make(map[string]map[string]struct{})}
}

func (r *MemoryTodoLabelRepository) ListIDsByTodo(_ context.Context, todoID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.labels[todoID]
	if !ok {
		return nil, nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *MemoryTodoLabelRepository) Attach(_ context.Context, todoID string, labelIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.labels[todoID]
	if !ok {
		set = make(map[string]struct{})
		r.labels[todoID] = set
	}
	for _, id := range labelIDs {
		set[id] = struct{}{}
	}
	return nil
}

func (r *MemoryTodoLabelRepository) DeleteByTodo(_ context.Context, todoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.labels, todoID)
	return nil
}
