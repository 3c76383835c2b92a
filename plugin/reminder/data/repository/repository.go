// Package repository persists reminder scan jobs.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ncobase/todox/plugin/reminder/structs"
)

// ErrNotFound marks a missing job id.
var ErrNotFound = errors.New("reminder job not found")

// JobRepository stores scan job rows. Jobs are operator-facing and
// never ride a caller transaction.
type JobRepository interface {
	Create(ctx context.Context, job *structs.Job) error
	Update(ctx context.Context, job *structs.Job) error
	FindByID(ctx context.Context, id string) (*structs.Job, error)
	ListRecent(ctx context.Context, limit int) ([]*structs.Job, error)
}

type jobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) (JobRepository, error) {
	if db == nil {
		return nil, errors.New("database is nil")
	}

	repo := &jobRepository{db: db}
	if err := repo.initSchema(context.Background()); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *jobRepository) initSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reminder_jobs (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			due_soon_count INTEGER NOT NULL DEFAULT 0,
			overdue_count INTEGER NOT NULL DEFAULT 0,
			error TEXT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ NULL
		);
	`)
	return err
}

func (r *jobRepository) Create(ctx context.Context, job *structs.Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminder_jobs (id, status, due_soon_count, overdue_count, error, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, job.ID, job.Status, job.DueSoonCount, job.OverdueCount, nullString(job.Error), job.CreatedAt, nullTime(job.CompletedAt))
	return err
}

func (r *jobRepository) Update(ctx context.Context, job *structs.Job) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reminder_jobs
		SET status = $1, due_soon_count = $2, overdue_count = $3, error = $4, completed_at = $5
		WHERE id = $6
	`, job.Status, job.DueSoonCount, job.OverdueCount, nullString(job.Error), nullTime(job.CompletedAt), job.ID)
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

func (r *jobRepository) FindByID(ctx context.Context, id string) (*structs.Job, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, status, due_soon_count, overdue_count, error, created_at, completed_at
		FROM reminder_jobs WHERE id = $1
	`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return job, err
}

func (r *jobRepository) ListRecent(ctx context.Context, limit int) ([]*structs.Job, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, status, due_soon_count, overdue_count, error, created_at, completed_at
		FROM reminder_jobs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*structs.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*structs.Job, error) {
	var jobErr sql.NullString
	var completedAt sql.NullTime
	job := &structs.Job{}
	if err := scanner.Scan(
		&job.ID,
		&job.Status,
		&job.DueSoonCount,
		&job.OverdueCount,
		&jobErr,
		&job.CreatedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}
	if jobErr.Valid {
		job.Error = jobErr.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return job, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// MemoryJobRepository is the in-memory test seam.
type MemoryJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*structs.Job
}

func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{jobs: make(map[string]*structs.Job)}
}

func (r *MemoryJobRepository) Create(_ context.Context, job *structs.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *MemoryJobRepository) Update(_ context.Context, job *structs.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; !ok {
		return ErrNotFound
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *MemoryJobRepository) FindByID(_ context.Context, id string) (*structs.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (r *MemoryJobRepository) ListRecent(_ context.Context, limit int) ([]*structs.Job, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	var jobs []*structs.Job
	for _, job := range r.jobs {
		cp := *job
		jobs = append(jobs, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}
