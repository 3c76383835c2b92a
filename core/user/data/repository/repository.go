// Package repository stores user directory entries.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ncobase/todox/core/user/structs"
	"github.com/ncobase/todox/data/cache"
	"github.com/ncobase/todox/logging/logger"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

const cacheTTL = 10 * time.Minute

type UserRepository interface {
	Create(ctx context.Context, user *structs.User) error
	FindByID(ctx context.Context, id string) (*structs.User, error)
	FindByIDInTenant(ctx context.Context, id, tenantID string) (*structs.User, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*structs.User, error)
}

type userRepository struct {
	db     *sql.DB
	logger *logger.Logger
	cache  cache.ICache[structs.User]
}

// NewUserRepository builds the SQL-backed directory. When rc is non-nil,
// id lookups go through a redis read-through cache.
func NewUserRepository(db *sql.DB, log *logger.Logger, rc *redis.Client) (UserRepository, error) {
	if db == nil {
		return nil, errors.New("database is nil")
	}

	repo := &userRepository{db: db, logger: log}
	if err := repo.initSchema(context.Background()); err != nil {
		return nil, err
	}
	if rc != nil {
		repo.cache = cache.NewCache[structs.User](rc, "users")
	}

	return repo, nil
}

func (r *userRepository) initSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
	`); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_users_tenant_id ON users(tenant_id);
	`); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_tenant_email ON users(tenant_id, email);
	`)
	return err
}

func (r *userRepository) Create(ctx context.Context, user *structs.User) error {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM users WHERE tenant_id = $1 AND email = $2
	`, user.TenantID, user.Email).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrEmailTaken
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, tenant_id, name, email, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.TenantID, user.Name, user.Email, user.CreatedAt)
	if err != nil {
		return err
	}

	if r.cache != nil {
		_ = r.cache.Set(ctx, user.ID, user, cacheTTL)
	}

	r.logger.Debug(ctx, "User created", "user_id", user.ID, "tenant_id", user.TenantID)
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*structs.User, error) {
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, id)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, email, created_at FROM users WHERE id = $1
	`, id)

	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		_ = r.cache.Set(ctx, user.ID, user, cacheTTL)
	}

	return user, nil
}

func (r *userRepository) FindByIDInTenant(ctx context.Context, id, tenantID string) (*structs.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, email, created_at FROM users
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	return scanUser(row)
}

func (r *userRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*structs.User, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tenant_id, name, email, created_at FROM users
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*structs.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (*structs.User, error) {
	item := &structs.User{}
	if err := scanner.Scan(&item.ID, &item.TenantID, &item.Name, &item.Email, &item.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

type MemoryUserRepository struct {
	users map[string]*structs.User
	mu    sync.RWMutex
}

func NewMemoryUserRepository() UserRepository {
	return &MemoryUserRepository{
		users: make(map[string]*structs.User),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *structs.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return fmt.Errorf("user already exists: %s", user.ID)
	}

	for _, u := range r.users {
		if u.TenantID == user.TenantID && u.Email == user.Email {
			return ErrEmailTaken
		}
	}

	r.users[user.ID] = user
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*structs.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, ErrNotFound
	}

	userCopy := *user
	return &userCopy, nil
}

func (r *MemoryUserRepository) FindByIDInTenant(_ context.Context, id, tenantID string) (*structs.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists || user.TenantID != tenantID {
		return nil, ErrNotFound
	}

	userCopy := *user
	return &userCopy, nil
}

func (r *MemoryUserRepository) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*structs.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []*structs.User
	for _, user := range r.users {
		if user.TenantID == tenantID {
			userCopy := *user
			users = append(users, &userCopy)
		}
	}

	if offset >= len(users) {
		return []*structs.User{}, nil
	}

	end := offset + limit
	if end > len(users) {
		end = len(users)
	}

	return users[offset:end], nil
}
