// Package service implements comment operations. Comments are guarded
// through their parent todo: every operation resolves the todo in the
// caller's tenant first, so a cross-tenant comment id is
// indistinguishable from a missing one.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ncobase/todox/biz/comment/data/repository"
	"github.com/ncobase/todox/biz/comment/structs"
	todoservice "github.com/ncobase/todox/biz/todo/service"
	todostructs "github.com/ncobase/todox/biz/todo/structs"
	"github.com/ncobase/todox/internal/event"
	"github.com/ncobase/todox/logging/logger"
	"github.com/ncobase/todox/nanoid"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrBodyRequired    = errors.New("body is required")
	ErrBodyTooLong     = errors.New("body must be 2000 characters or less")
)

const maxCommentBody = 2000

// Todos resolves the parent todo inside the caller's tenant. The todo
// service satisfies it.
type Todos interface {
	Get(ctx context.Context, tenantID, id string) (*todostructs.Todo, error)
}

// Notifier creates the TODO_COMMENTED notification row. Calls run after
// the comment is stored and failures never propagate to the caller.
type Notifier interface {
	CommentCreated(ctx context.Context, actorID, recipientID, todoID, title string) error
}

var primaryKey = nanoid.PrimaryKey()

// Service orchestrates comment mutations.
type Service struct {
	repo     repository.CommentRepository
	todos    Todos
	notifier Notifier
	bus      *event.Bus
	logger   *logger.Logger
}

func NewService(log *logger.Logger, repo repository.CommentRepository, todos Todos, notifier Notifier, bus *event.Bus) *Service {
	return &Service{
		repo:     repo,
		todos:    todos,
		notifier: notifier,
		bus:      bus,
		logger:   log,
	}
}

// Create stores a comment on the todo and runs the comment trigger:
// the todo's creator gets a notification unless they wrote the comment
// themselves.
func (s *Service) Create(ctx context.Context, tenantID, actorID, todoID string, req *structs.CreateCommentRequest) (*structs.Comment, error) {
	todo, err := s.todos.Get(ctx, tenantID, todoID)
	if err != nil {
		return nil, err
	}
	if todo.Trashed() {
		return nil, todoservice.ErrTodoDeleted
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, ErrBodyRequired
	}
	if utf8.RuneCountInString(body) > maxCommentBody {
		return nil, ErrBodyTooLong
	}

	comment := &structs.Comment{
		ID:        primaryKey(),
		TodoID:    todoID,
		AuthorID:  actorID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		s.logger.Error(ctx, "Failed to create comment", "error", err, "todo_id", todoID)
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if s.notifier != nil && actorID != todo.CreatedByID {
		if err := s.notifier.CommentCreated(ctx, actorID, todo.CreatedByID, todo.ID, todo.Title); err != nil {
			s.logger.Error(ctx, "Failed to create comment notification",
				"error", err, "todo_id", todo.ID, "recipient_id", todo.CreatedByID)
		}
	}
	s.publish(ctx, todo, comment, actorID)

	s.logger.Info(ctx, "Comment created", "comment_id", comment.ID, "todo_id", todoID, "actor_id", actorID)
	return comment, nil
}

// ListByTodo returns the todo's comments oldest-first. Reads stay
// available while the todo sits in the trash.
func (s *Service) ListByTodo(ctx context.Context, tenantID, todoID string) ([]*structs.Comment, error) {
	if _, err := s.todos.Get(ctx, tenantID, todoID); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListByTodo(ctx, todoID)
	if err != nil {
		s.logger.Error(ctx, "Failed to list comments", "error", err, "todo_id", todoID)
		return nil, err
	}
	if comments == nil {
		comments = []*structs.Comment{}
	}
	return comments, nil
}

// Delete removes one comment, guarded through the parent todo.
func (s *Service) Delete(ctx context.Context, tenantID, actorID, todoID, commentID string) error {
	todo, err := s.todos.Get(ctx, tenantID, todoID)
	if err != nil {
		return err
	}
	if todo.Trashed() {
		return todoservice.ErrTodoDeleted
	}

	if err := s.repo.Delete(ctx, commentID, todoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		s.logger.Error(ctx, "Failed to delete comment", "error", err, "comment_id", commentID, "todo_id", todoID)
		return fmt.Errorf("delete comment: %w", err)
	}

	s.logger.Info(ctx, "Comment deleted", "comment_id", commentID, "todo_id", todoID, "actor_id", actorID)
	return nil
}

// DeleteByTodo removes every comment of a todo. The todo service calls
// it inside the purge transaction.
func (s *Service) DeleteByTodo(ctx context.Context, todoID string) error {
	return s.repo.DeleteByTodo(ctx, todoID)
}

func (s *Service) publish(ctx context.Context, todo *todostructs.Todo, comment *structs.Comment, actorID string) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(ctx, &event.Event{
		Type:     event.EventTypeCommentCreated,
		TodoID:   todo.ID,
		TenantID: todo.TenantID,
		ActorID:  actorID,
		Payload: map[string]any{
			"comment_id": comment.ID,
			"title":      todo.Title,
			"created_by": todo.CreatedByID,
		},
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to publish event", "error", err, "type", event.EventTypeCommentCreated, "todo_id", todo.ID)
	}
}
