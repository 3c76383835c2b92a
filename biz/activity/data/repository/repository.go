// Package repository persists the append-only audit trail.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ncobase/todox/biz/activity/structs"
	"github.com/ncobase/todox/data"
)

// ActivityRepository appends and reads audit rows. Rows are immutable:
// there is deliberately no update or delete operation.
type ActivityRepository interface {
	AppendBatch(ctx context.Context, activities []*structs.Activity) error
	// ListByTodo returns rows newest-first by (created_at, seq). When
	// hasCursor is set, only rows strictly before (before, beforeSeq)
	// are returned.
	ListByTodo(ctx context.Context, todoID string, before time.Time, beforeSeq int, hasCursor bool, limit int) ([]*structs.Activity, error)
	CountByTodo(ctx context.Context, todoID string) (int, error)
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so repository methods can
// ride a caller transaction placed in the context by data.WithTx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type activityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) (ActivityRepository, error) {
	if db == nil {
		return nil, errors.New("database is nil")
	}

	repo := &activityRepository{db: db}
	if err := repo.initSchema(context.Background()); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *activityRepository) initSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS todo_activities (
			id TEXT PRIMARY KEY,
			todo_id TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			action TEXT NOT NULL,
			field TEXT NULL,
			old_value TEXT NULL,
			new_value TEXT NULL,
			seq INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
	`); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_todo_activities_todo_created ON todo_activities(todo_id, created_at);
	`)
	return err
}

func (r *activityRepository) conn(ctx context.Context) dbtx {
	if tx, err := data.GetTx(ctx); err == nil {
		return tx
	}
	return r.db
}

func (r *activityRepository) AppendBatch(ctx context.Context, activities []*structs.Activity) error {
	c := r.conn(ctx)
	for _, a := range activities {
		if _, err := c.ExecContext(ctx, `
			INSERT INTO todo_activities (id, todo_id, actor_id, action, field, old_value, new_value, seq, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, a.ID, a.TodoID, a.ActorID, a.Action, a.Field, a.OldValue, a.NewValue, a.Seq, a.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *activityRepository) ListByTodo(ctx context.Context, todoID string, before time.Time, beforeSeq int, hasCursor bool, limit int) ([]*structs.Activity, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, todo_id, actor_id, action, field, old_value, new_value, seq, created_at
		FROM todo_activities WHERE todo_id = $1`
	args := []any{todoID}

	if hasCursor {
		query += ` AND (created_at < $2 OR (created_at = $2 AND seq < $3))`
		args = append(args, before, beforeSeq)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, seq DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*structs.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (r *activityRepository) CountByTodo(ctx context.Context, todoID string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRowContext(ctx, `
		SELECT COUNT(1) FROM todo_activities WHERE todo_id = $1
	`, todoID).Scan(&n)
	return n, err
}

func scanActivity(scanner interface{ Scan(dest ...any) error }) (*structs.Activity, error) {
	var field, oldValue, newValue sql.NullString
	a := &structs.Activity{}
	if err := scanner.Scan(
		&a.ID,
		&a.TodoID,
		&a.ActorID,
		&a.Action,
		&field,
		&oldValue,
		&newValue,
		&a.Seq,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}

	if field.Valid {
		a.Field = &field.String
	}
	if oldValue.Valid {
		a.OldValue = &oldValue.String
	}
	if newValue.Valid {
		a.NewValue = &newValue.String
	}
	return a, nil
}

// MemoryActivityRepository is the in-memory test seam.
type MemoryActivityRepository struct {
	activities []*structs.Activity
	mu         sync.RWMutex
}

func NewMemoryActivityRepository() *MemoryActivityRepository {
	return &MemoryActivityRepository{}
}

func (r *MemoryActivityRepository) AppendBatch(_ context.Context, activities []*structs.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range activities {
		cp := *a
		r.activities = append(r.activities, &cp)
	}
	return nil
}

func (r *MemoryActivityRepository) ListByTodo(_ context.Context, todoID string, before time.Time, beforeSeq int, hasCursor bool, limit int) ([]*structs.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	var matched []*structs.Activity
	for _, a := range r.activities {
		if a.TodoID != todoID {
			continue
		}
		if hasCursor {
			if a.CreatedAt.After(before) {
				continue
			}
			if a.CreatedAt.Equal(before) && a.Seq >= beforeSeq {
				continue
			}
		}
		cp := *a
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Seq > matched[j].Seq
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *MemoryActivityRepository) CountByTodo(_ context.Context, todoID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, a := range r.activities {
		if a.TodoID == todoID {
			n++
		}
	}
	return n, nil
}
