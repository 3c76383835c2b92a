package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ncobase/todox/biz/todo/data/repository"
	"github.com/ncobase/todox/biz/todo/structs"
)

const (
	maxSubtasks     = 20
	maxSubtaskTitle = 200
)

// CreateSubtask appends a subtask at the end of the todo's list. The
// count check and insert share a transaction so the 20-item cap holds.
func (s *Service) CreateSubtask(ctx context.Context, tenantID, actorID, todoID string, req *structs.CreateSubtaskRequest) (*structs.Subtask, error) {
	todo, err := s.find(ctx, todoID, tenantID)
	if err != nil {
		return nil, err
	}
	if todo.Trashed() {
		return nil, ErrTodoDeleted
	}

	title, err := subtaskTitle(req.Title)
	if err != nil {
		return nil, err
	}

	subtask := &structs.Subtask{
		TodoID:    todo.ID,
		Title:     title,
		CreatedAt: time.Now(),
	}

	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		count, err := s.subtasks.CountByTodo(txCtx, todo.ID)
		if err != nil {
			return err
		}
		if count >= maxSubtasks {
			return ErrSubtaskLimit
		}
		subtask.ID = primaryKey()
		subtask.Order = count
		return s.subtasks.Create(txCtx, subtask)
	})
	if err != nil {
		if errors.Is(err, ErrSubtaskLimit) {
			return nil, ErrSubtaskLimit
		}
		s.logger.Error(ctx, "Failed to create subtask", "error", err, "todo_id", todoID)
		return nil, fmt.Errorf("create subtask: %w", err)
	}

	return subtask, nil
}

// ListSubtasks returns the todo's subtasks in position order.
func (s *Service) ListSubtasks(ctx context.Context, tenantID, todoID string) ([]*structs.Subtask, error) {
	todo, err := s.find(ctx, todoID, tenantID)
	if err != nil {
		return nil, err
	}
	subtasks, err := s.subtasks.ListByTodo(ctx, todo.ID)
	if err != nil {
		s.logger.Error(ctx, "Failed to list subtasks", "error", err, "todo_id", todoID)
		return nil, err
	}
	return subtasks, nil
}

// UpdateSubtask renames a subtask under the same title rules as create.
func (s *Service) UpdateSubtask(ctx context.Context, tenantID, actorID, todoID, subtaskID string, req *structs.UpdateSubtaskRequest) (*structs.Subtask, error) {
	subtask, err := s.findSubtask(ctx, tenantID, todoID, subtaskID)
	if err != nil {
		return nil, err
	}

	title, err := subtaskTitle(req.Title)
	if err != nil {
		return nil, err
	}

	subtask.Title = title
	if err := s.subtasks.Update(ctx, subtask); err != nil {
		if errors.Is(err, repository.ErrSubtaskNotFound) {
			return nil, ErrSubtaskNotFound
		}
		s.logger.Error(ctx, "Failed to update subtask", "error", err, "subtask_id", subtaskID)
		return nil, fmt.Errorf("update subtask: %w", err)
	}
	return subtask, nil
}

// ToggleSubtask flips a subtask's completion flag.
func (s *Service) ToggleSubtask(ctx context.Context, tenantID, actorID, todoID, subtaskID string) (*structs.Subtask, error) {
	subtask, err := s.findSubtask(ctx, tenantID, todoID, subtaskID)
	if err != nil {
		return nil, err
	}

	subtask.IsComplete = !subtask.IsComplete
	if err := s.subtasks.Update(ctx, subtask); err != nil {
		if errors.Is(err, repository.ErrSubtaskNotFound) {
			return nil, ErrSubtaskNotFound
		}
		s.logger.Error(ctx, "Failed to toggle subtask", "error", err, "subtask_id", subtaskID)
		return nil, fmt.Errorf("toggle subtask: %w", err)
	}
	return subtask, nil
}

// DeleteSubtask removes a subtask; the delete and the position reshuffle
// that keeps ordering dense share one transaction.
func (s *Service) DeleteSubtask(ctx context.Context, tenantID, actorID, todoID, subtaskID string) error {
	if _, err := s.findSubtask(ctx, tenantID, todoID, subtaskID); err != nil {
		return err
	}

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		return s.subtasks.Delete(txCtx, subtaskID, todoID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrSubtaskNotFound) {
			return ErrSubtaskNotFound
		}
		s.logger.Error(ctx, "Failed to delete subtask", "error", err, "subtask_id", subtaskID)
		return fmt.Errorf("delete subtask: %w", err)
	}
	return nil
}

// findSubtask re-verifies tenant ownership through the parent todo, then
// resolves the subtask within it. Writes on trashed parents are
// rejected.
func (s *Service) findSubtask(ctx context.Context, tenantID, todoID, subtaskID string) (*structs.Subtask, error) {
	todo, err := s.find(ctx, todoID, tenantID)
	if err != nil {
		return nil, err
	}
	if todo.Trashed() {
		return nil, ErrTodoDeleted
	}

	subtask, err := s.subtasks.FindByIDInTodo(ctx, subtaskID, todo.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSubtaskNotFound) {
			return nil, ErrSubtaskNotFound
		}
		s.logger.Error(ctx, "Failed to load subtask", "error", err, "subtask_id", subtaskID)
		return nil, err
	}
	return subtask, nil
}

func subtaskTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", ErrSubtaskTitleRequired
	}
	if utf8.RuneCountInString(title) > maxSubtaskTitle {
		return "", ErrSubtaskTitleTooLong
	}
	return title, nil
}
