// Package service creates and serves notifications. The trigger
// methods satisfy the todo, comment and reminder modules' notifier
// interfaces; row creation rides whatever transaction sits in the
// context, so reminder scans stamp and notify atomically.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ncobase/todox/logging/logger"
	"github.com/ncobase/todox/nanoid"
	"github.com/ncobase/todox/paging"
	"github.com/ncobase/todox/plugin/notification/data/repository"
	"github.com/ncobase/todox/plugin/notification/structs"
)

// ErrNotificationNotFound covers missing ids and other users' rows alike.
var ErrNotificationNotFound = errors.New("notification not found")

// Emails resolves a user id to an email address for message composition.
// The user service satisfies it.
type Emails interface {
	ResolveEmail(ctx context.Context, userID string) (string, error)
}

var primaryKey = nanoid.PrimaryKey()

// Service writes notification rows and serves the recipient-scoped feed.
type Service struct {
	repo   repository.NotificationRepository
	emails Emails
	logger *logger.Logger
}

func NewService(log *logger.Logger, repo repository.NotificationRepository, emails Emails) *Service {
	return &Service{
		repo:   repo,
		emails: emails,
		logger: log,
	}
}

// TodoAssigned notifies the new assignee. The caller has already ruled
// out self-assignment.
func (s *Service) TodoAssigned(ctx context.Context, actorID, assigneeID, todoID, title string) error {
	message := fmt.Sprintf("You were assigned to %q", title)
	if email := s.actorEmail(ctx, actorID); email != "" {
		message = fmt.Sprintf("%s assigned you to %q", email, title)
	}
	return s.create(ctx, assigneeID, structs.TypeTodoAssigned, message, todoID)
}

// CommentCreated notifies the todo's creator about a new comment. The
// caller has already ruled out self-comments.
func (s *Service) CommentCreated(ctx context.Context, actorID, recipientID, todoID, title string) error {
	message := fmt.Sprintf("Someone commented on %q", title)
	if email := s.actorEmail(ctx, actorID); email != "" {
		message = fmt.Sprintf("%s commented on %q", email, title)
	}
	return s.create(ctx, recipientID, structs.TypeTodoCommented, message, todoID)
}

// TodoDueSoon notifies the recipient that a todo enters the due-soon
// window. Called by the reminder scan inside the stamp transaction.
func (s *Service) TodoDueSoon(ctx context.Context, recipientID, todoID, title string) error {
	return s.create(ctx, recipientID, structs.TypeTodoDueSoon, fmt.Sprintf("%q is due soon", title), todoID)
}

// TodoOverdue notifies the recipient that a todo went past its due date.
func (s *Service) TodoOverdue(ctx context.Context, recipientID, todoID, title string) error {
	return s.create(ctx, recipientID, structs.TypeTodoOverdue, fmt.Sprintf("%q is overdue", title), todoID)
}

func (s *Service) create(ctx context.Context, userID string, typ structs.Type, message, todoID string) error {
	n := &structs.Notification{
		ID:        primaryKey(),
		UserID:    userID,
		Type:      typ,
		Message:   message,
		TodoID:    todoID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error(ctx, "Failed to create notification",
			"error", err, "user_id", userID, "type", typ, "todo_id", todoID)
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// actorEmail resolves the actor's address for the message; an empty
// return degrades the message to its generic form.
func (s *Service) actorEmail(ctx context.Context, actorID string) string {
	if s.emails == nil {
		return ""
	}
	email, err := s.emails.ResolveEmail(ctx, actorID)
	if err != nil {
		s.logger.Warn(ctx, "Failed to resolve actor email, degrading message", "actor_id", actorID, "error", err)
		return ""
	}
	return email
}

// List returns the caller's notifications newest-first, cursor-paginated.
func (s *Service) List(ctx context.Context, userID string, params paging.Params) (*paging.Result[*structs.Notification], error) {
	return paging.Paginate(params, func(cursor string, limit int) ([]*structs.Notification, int, string, error) {
		var before time.Time
		beforeID := ""
		hasCursor := false
		if cursor != "" {
			t, key, err := paging.DecodeCursor(cursor)
			if err != nil {
				return nil, 0, "", fmt.Errorf("invalid cursor: %w", err)
			}
			before, beforeID, hasCursor = t, key, true
		}

		items, err := s.repo.ListByUser(ctx, userID, before, beforeID, hasCursor, limit)
		if err != nil {
			return nil, 0, "", err
		}

		total, err := s.repo.CountByUser(ctx, userID)
		if err != nil {
			return nil, 0, "", err
		}

		next := ""
		if len(items) == limit && limit >= 2 {
			last := items[limit-2]
			next = paging.EncodeCursor(last.CreatedAt, last.ID)
		}
		return items, total, next, nil
	})
}

// MarkRead flips one notification's read flag, guarded by recipient.
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		s.logger.Error(ctx, "Failed to mark notification read", "error", err, "notification_id", id)
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead flips every unread notification of the caller.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "Failed to mark notifications read", "error", err, "user_id", userID)
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return count, nil
}
