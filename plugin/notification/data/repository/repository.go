// Package repository persists notifications.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ncobase/todox/data"
	"github.com/ncobase/todox/plugin/notification/structs"
)

// ErrNotFound marks a missing notification or another user's.
var ErrNotFound = errors.New("notification not found")

// NotificationRepository stores notification rows.
type NotificationRepository interface {
	Create(ctx context.Context, n *structs.Notification) error
	// ListByUser returns rows newest-first by (created_at, id). When
	// hasCursor is set, only rows strictly before (before, beforeID)
	// are returned.
	ListByUser(ctx context.Context, userID string, before time.Time, beforeID string, hasCursor bool, limit int) ([]*structs.Notification, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	// MarkRead flips the read flag guarded by recipient. Zero rows
	// affected returns ErrNotFound.
	MarkRead(ctx context.Context, id, userID string) error
	// MarkAllRead flips every unread row of the recipient and reports
	// how many it touched.
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so repository methods can
// ride a caller transaction placed in the context by data.WithTx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) (NotificationRepository, error) {
	if db == nil {
		return nil, errors.New("database is nil")
	}

	repo := &notificationRepository{db: db}
	if err := repo.initSchema(context.Background()); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *notificationRepository) initSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			message TEXT NOT NULL,
			todo_id TEXT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		);
	`); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
	`)
	return err
}

func (r *notificationRepository) conn(ctx context.Context) dbtx {
	if tx, err := data.GetTx(ctx); err == nil {
		return tx
	}
	return r.db
}

func (r *notificationRepository) Create(ctx context.Context, n *structs.Notification) error {
	var todoID sql.NullString
	if n.TodoID != "" {
		todoID = sql.NullString{String: n.TodoID, Valid: true}
	}
	_, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, message, todo_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, n.ID, n.UserID, n.Type, n.Message, todoID, n.IsRead, n.CreatedAt)
	return err
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, before time.Time, beforeID string, hasCursor bool, limit int) ([]*structs.Notification, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, user_id, type, message, todo_id, is_read, created_at
		FROM notifications WHERE user_id = $1`
	args := []any{userID}

	if hasCursor {
		query += ` AND (created_at < $2 OR (created_at = $2 AND id < $3))`
		args = append(args, before, beforeID)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*structs.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRowContext(ctx, `
		SELECT COUNT(1) FROM notifications WHERE user_id = $1
	`, userID).Scan(&n)
	return n, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	result, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	result, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func scanNotification(scanner interface{ Scan(dest ...any) error }) (*structs.Notification, error) {
	var todoID sql.NullString
	n := &structs.Notification{}
	if err := scanner.Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.Message,
		&todoID,
		&n.IsRead,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}
	if todoID.Valid {
		n.TodoID = todoID.String
	}
	return n, nil
}

// MemoryNotificationRepository is the in-memory test seam.
type MemoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*structs.Notification
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{notifications: make(map[string]*structs.Notification)}
}

func (r *MemoryNotificationRepository) Create(_ context.Context, n *structs.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *MemoryNotificationRepository) ListByUser(_ context.Context, userID string, before time.Time, beforeID string, hasCursor bool, limit int) ([]*structs.Notification, error) {
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	var notifications []*structs.Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if hasCursor {
			if n.CreatedAt.After(before) {
				continue
			}
			if n.CreatedAt.Equal(before) && n.ID >= beforeID {
				continue
			}
		}
		cp := *n
		notifications = append(notifications, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(notifications, func(i, j int) bool {
		if notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].ID > notifications[j].ID
		}
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	if len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (r *MemoryNotificationRepository) CountByUser(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryNotificationRepository) MarkRead(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (r *MemoryNotificationRepository) MarkAllRead(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}
