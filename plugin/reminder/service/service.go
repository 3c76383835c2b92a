// Package service runs due-date reminder scans. A scan finds PENDING
// active todos whose due date entered the due-soon window or went past,
// and for each one stamps the todo and writes the notification row in
// one transaction. The stamp carries an IS NULL guard, so racing scans
// agree on exactly one reminder per todo per threshold.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	todorepo "github.com/ncobase/todox/biz/todo/data/repository"
	todostructs "github.com/ncobase/todox/biz/todo/structs"
	"github.com/ncobase/todox/concurrency/worker"
	"github.com/ncobase/todox/config"
	"github.com/ncobase/todox/internal/event"
	"github.com/ncobase/todox/logging/logger"
	"github.com/ncobase/todox/nanoid"
	"github.com/ncobase/todox/plugin/reminder/data/repository"
	"github.com/ncobase/todox/plugin/reminder/structs"
)

// ErrJobNotFound marks a missing scan job id.
var ErrJobNotFound = errors.New("reminder job not found")

// scanBatch caps how many todos one scan picks up per threshold; the
// next tick collects the remainder.
const scanBatch = 500

// TodoScanner is the slice of the todo repository the scan needs. The
// stamp methods return the repository's not-found sentinel when the
// todo was already stamped, which the scan treats as someone else's win.
type TodoScanner interface {
	ListDueSoonPending(ctx context.Context, from, until time.Time, limit int) ([]*todostructs.Todo, error)
	ListOverduePending(ctx context.Context, now time.Time, limit int) ([]*todostructs.Todo, error)
	StampDueSoonReminder(ctx context.Context, id string, at time.Time) error
	StampOverdueReminder(ctx context.Context, id string, at time.Time) error
}

// Notifier writes the reminder notification rows. The notification
// service satisfies it; the calls ride the stamp transaction.
type Notifier interface {
	TodoDueSoon(ctx context.Context, recipientID, todoID, title string) error
	TodoOverdue(ctx context.Context, recipientID, todoID, title string) error
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var primaryKey = nanoid.PrimaryKey()

// Service owns the scan jobs, the worker pool that fans reminders out,
// and the interval scheduler.
type Service struct {
	jobs     repository.JobRepository
	todos    TodoScanner
	notifier Notifier
	tx       TxRunner
	bus      *event.Bus
	pool     *worker.Pool
	conf     *config.Reminder
	logger   *logger.Logger
}

func NewService(log *logger.Logger, conf *config.Reminder, tx TxRunner, jobs repository.JobRepository, todos TodoScanner, notifier Notifier, bus *event.Bus) *Service {
	if conf == nil {
		conf = &config.Reminder{Interval: 5 * time.Minute, Window: 24 * time.Hour, Workers: 4, QueueSize: 256}
	}
	return &Service{
		jobs:     jobs,
		todos:    todos,
		notifier: notifier,
		tx:       tx,
		bus:      bus,
		conf:     conf,
		logger:   log,
		pool: worker.NewPool(&worker.Config{
			MaxWorkers:  conf.Workers,
			QueueSize:   conf.QueueSize,
			TaskTimeout: time.Minute,
		}),
	}
}

// Start launches the worker pool and, when enabled, the interval
// scheduler. Manual scans through RunScan work either way.
func (s *Service) Start(ctx context.Context) {
	s.pool.Start()
	if !s.conf.Enabled {
		s.logger.Info(ctx, "Reminder scheduler disabled")
		return
	}
	go s.loop(ctx)
	s.logger.Info(ctx, "Reminder scheduler started", "interval", s.conf.Interval, "window", s.conf.Window)
}

// Stop drains the worker pool.
func (s *Service) Stop(ctx context.Context) {
	s.pool.Stop(ctx)
}

func (s *Service) loop(ctx context.Context) {
	ticker := time.NewTicker(s.conf.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunScan(ctx); err != nil {
				s.logger.Error(ctx, "Scheduled reminder scan failed to start", "error", err)
			}
		}
	}
}

// RunScan creates a job row and starts the scan in the background. The
// returned job is still PENDING; callers poll GetJob for the outcome.
func (s *Service) RunScan(ctx context.Context) (*structs.Job, error) {
	job := &structs.Job{
		ID:        primaryKey(),
		Status:    structs.JobPending,
		CreatedAt: time.Now(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		s.logger.Error(ctx, "Failed to create reminder job", "error", err)
		return nil, fmt.Errorf("create reminder job: %w", err)
	}

	go s.execute(job.ID)
	return job, nil
}

// GetJob returns one scan job.
func (s *Service) GetJob(ctx context.Context, id string) (*structs.Job, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// ListJobs returns recent scan jobs, newest first.
func (s *Service) ListJobs(ctx context.Context, limit int) ([]*structs.Job, error) {
	jobs, err := s.jobs.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error(ctx, "Failed to list reminder jobs", "error", err)
		return nil, err
	}
	if jobs == nil {
		jobs = []*structs.Job{}
	}
	return jobs, nil
}

// execute runs one scan to completion on a fresh context; the job row
// records the outcome.
func (s *Service) execute(jobID string) {
	ctx := context.Background()
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		s.logger.Error(ctx, "Failed to load reminder job", "error", err, "job_id", jobID)
		return
	}

	job.Status = structs.JobRunning
	if err := s.jobs.Update(ctx, job); err != nil {
		s.logger.Error(ctx, "Failed to mark reminder job running", "error", err, "job_id", jobID)
		return
	}

	dueSoon, overdue, scanErr := s.scan(ctx)
	now := time.Now()
	job.DueSoonCount = dueSoon
	job.OverdueCount = overdue
	job.CompletedAt = &now
	if scanErr != nil {
		job.Status = structs.JobFailed
		job.Error = scanErr.Error()
		s.logger.Error(ctx, "Reminder scan failed", "error", scanErr, "job_id", jobID)
	} else {
		job.Status = structs.JobCompleted
		s.logger.Info(ctx, "Reminder scan completed",
			"job_id", jobID, "due_soon", dueSoon, "overdue", overdue)
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		s.logger.Error(ctx, "Failed to finalize reminder job", "error", err, "job_id", jobID)
	}
}

// reminderKind bundles the threshold-specific pieces of one scan pass.
type reminderKind struct {
	event  event.EventType
	stamp  func(ctx context.Context, id string, at time.Time) error
	notify func(ctx context.Context, recipientID, todoID, title string) error
}

func (s *Service) scan(ctx context.Context) (int, int, error) {
	now := time.Now()

	dueSoon, err := s.todos.ListDueSoonPending(ctx, now, now.Add(s.conf.Window), scanBatch)
	if err != nil {
		return 0, 0, fmt.Errorf("list due soon: %w", err)
	}
	overdue, err := s.todos.ListOverduePending(ctx, now, scanBatch)
	if err != nil {
		return 0, 0, fmt.Errorf("list overdue: %w", err)
	}

	dueSoonSent := s.fanOut(ctx, dueSoon, reminderKind{
		event:  event.EventTypeTodoDueSoon,
		stamp:  s.todos.StampDueSoonReminder,
		notify: s.notifier.TodoDueSoon,
	})
	overdueSent := s.fanOut(ctx, overdue, reminderKind{
		event:  event.EventTypeTodoOverdue,
		stamp:  s.todos.StampOverdueReminder,
		notify: s.notifier.TodoOverdue,
	})
	return dueSoonSent, overdueSent, nil
}

// fanOut submits one reminder task per todo to the worker pool and
// waits for the batch. A full queue falls back to running the task on
// the scan goroutine, so no reminder is dropped.
func (s *Service) fanOut(ctx context.Context, todos []*todostructs.Todo, kind reminderKind) int {
	var wg sync.WaitGroup
	var sent atomic.Int64

	for _, todo := range todos {
		wg.Add(1)
		task := func() error {
			defer wg.Done()
			reminded, err := s.remind(ctx, todo, kind)
			if err != nil {
				s.logger.Error(ctx, "Failed to send reminder",
					"error", err, "todo_id", todo.ID, "type", kind.event)
				return err
			}
			if reminded {
				sent.Add(1)
			}
			return nil
		}
		if err := s.pool.Submit(task); err != nil {
			task()
		}
	}

	wg.Wait()
	return int(sent.Load())
}

// remind stamps the todo and writes the notification row atomically.
// Losing the stamp race is not an error; it reports reminded=false.
func (s *Service) remind(ctx context.Context, todo *todostructs.Todo, kind reminderKind) (bool, error) {
	now := time.Now()
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := kind.stamp(txCtx, todo.ID, now); err != nil {
			return err
		}
		return kind.notify(txCtx, recipient(todo), todo.ID, todo.Title)
	})
	if err != nil {
		if errors.Is(err, todorepo.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	s.publish(ctx, kind.event, todo)
	return true, nil
}

// recipient picks who the reminder goes to: the assignee when set,
// otherwise the creator.
func recipient(todo *todostructs.Todo) string {
	if todo.AssigneeID != "" {
		return todo.AssigneeID
	}
	return todo.CreatedByID
}

func (s *Service) publish(ctx context.Context, eventType event.EventType, todo *todostructs.Todo) {
	if s.bus == nil {
		return
	}
	payload := map[string]any{
		"recipient_id": recipient(todo),
		"title":        todo.Title,
	}
	if todo.DueDate != nil {
		payload["due_date"] = todo.DueDate.UTC().Format(time.RFC3339)
	}

	err := s.bus.Publish(ctx, &event.Event{
		Type:     eventType,
		TodoID:   todo.ID,
		TenantID: todo.TenantID,
		Payload:  payload,
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to publish event", "error", err, "type", eventType, "todo_id", todo.ID)
	}
}
