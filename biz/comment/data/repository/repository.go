// Package repository persists comments.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"

	"github.com/ncobase/todox/biz/comment/structs"
	"github.com/ncobase/todox/data"
)

// ErrNotFound marks a missing comment or one outside the given todo.
var ErrNotFound = errors.New("comment not found")

// CommentRepository stores comment rows.
type CommentRepository interface {
	Create(ctx context.Context, comment *structs.Comment) error
	ListByTodo(ctx context.Context, todoID string) ([]*structs.Comment, error)
	// Delete removes one comment guarded by its parent todo. Zero rows
	// affected returns ErrNotFound.
	Delete(ctx context.Context, id, todoID string) error
	// DeleteByTodo removes every comment of a todo; the purge cascade.
	DeleteByTodo(ctx context.Context, todoID string) error
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so repository methods can
// ride a caller transaction placed in the context by data.WithTx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) (CommentRepository, error) {
	if db == nil {
		return nil, errors.New("database is nil")
	}

	repo := &commentRepository{db: db}
	if err := repo.initSchema(context.Background()); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *commentRepository) initSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			todo_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
	`); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_comments_todo_created ON comments(todo_id, created_at);
	`)
	return err
}

func (r *commentRepository) conn(ctx context.Context) dbtx {
	if tx, err := data.GetTx(ctx); err == nil {
		return tx
	}
	return r.db
}

func (r *commentRepository) Create(ctx context.Context, comment *structs.Comment) error {
	_, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO comments (id, todo_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, comment.ID, comment.TodoID, comment.AuthorID, comment.Body, comment.CreatedAt)
	return err
}

func (r *commentRepository) ListByTodo(ctx context.Context, todoID string) ([]*structs.Comment, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT id, todo_id, author_id, body, created_at
		FROM comments WHERE todo_id = $1
		ORDER BY created_at ASC, id ASC
	`, todoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*structs.Comment
	for rows.Next() {
		c := &structs.Comment{}
		if err := rows.Scan(&c.ID, &c.TodoID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *commentRepository) Delete(ctx context.Context, id, todoID string) error {
	result, err := r.conn(ctx).ExecContext(ctx, `
		DELETE FROM comments WHERE id = $1 AND todo_id = $2
	`, id, todoID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *commentRepository) DeleteByTodo(ctx context.Context, todoID string) error {
	_, err := r.conn(ctx).ExecContext(ctx, `
		DELETE FROM comments WHERE todo_id = $1
	`, todoID)
	return err
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MemoryCommentRepository is the in-memory test seam.
type MemoryCommentRepository struct {
	mu       sync.RWMutex
	comments map[string]*structs.Comment
}

func NewMemoryCommentRepository() *MemoryCommentRepository {
	return &MemoryCommentRepository{comments: make(map[string]*structs.Comment)}
}

func (r *MemoryCommentRepository) Create(_ context.Context, comment *structs.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *comment
	r.comments[comment.ID] = &cp
	return nil
}

func (r *MemoryCommentRepository) ListByTodo(_ context.Context, todoID string) ([]*structs.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var comments []*structs.Comment
	for _, c := range r.comments {
		if c.TodoID != todoID {
			continue
		}
		cp := *c
		comments = append(comments, &cp)
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *MemoryCommentRepository) Delete(_ context.Context, id, todoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.comments[id]
	if !ok || existing.TodoID != todoID {
		return ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *MemoryCommentRepository) DeleteByTodo(_ context.Context, todoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.comments {
		if c.TodoID == todoID {
			delete(r.comments, id)
		}
	}
	return nil
}
