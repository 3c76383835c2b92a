// Package service records and reads the append-only audit trail.
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ncobase/todox/biz/activity/data/repository"
	"github.com/ncobase/todox/biz/activity/structs"
	"github.com/ncobase/todox/logging/logger"
	"github.com/ncobase/todox/nanoid"
	"github.com/ncobase/todox/paging"
)

var primaryKey = nanoid.PrimaryKey()

// Service appends audit rows for todo mutations and serves the feed.
type Service struct {
	repo   repository.ActivityRepository
	logger *logger.Logger
}

func NewService(repo repository.ActivityRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Created appends the single CREATED row for a new todo.
func (s *Service) Created(ctx context.Context, todoID, actorID string) error {
	return s.append(ctx, todoID, actorID, []Change{{Action: structs.ActionCreated}})
}

// Event appends a single event-only row (ARCHIVED, RESTORED, TRASHED).
func (s *Service) Event(ctx context.Context, todoID, actorID string, action structs.Action) error {
	return s.append(ctx, todoID, actorID, []Change{{Action: action}})
}

// Record appends one row per change, preserving the order produced by
// Diff. All rows in the batch share a timestamp; seq keeps them ordered.
func (s *Service) Record(ctx context.Context, todoID, actorID string, changes []Change) error {
	if len(changes) == 0 {
		return nil
	}
	return s.append(ctx, todoID, actorID, changes)
}

func (s *Service) append(ctx context.Context, todoID, actorID string, changes []Change) error {
	now := time.Now()
	rows := make([]*structs.Activity, 0, len(changes))
	for i, ch := range changes {
		rows = append(rows, &structs.Activity{
			ID:        primaryKey(),
			TodoID:    todoID,
			ActorID:   actorID,
			Action:    ch.Action,
			Field:     ch.Field,
			OldValue:  ch.Old,
			NewValue:  ch.New,
			Seq:       i,
			CreatedAt: now,
		})
	}

	if err := s.repo.AppendBatch(ctx, rows); err != nil {
		s.logger.Error(ctx, "Failed to append activities", "error", err, "todo_id", todoID, "rows", len(rows))
		return fmt.Errorf("append activities: %w", err)
	}
	return nil
}

// ListByTodo returns the audit feed for a todo, newest-first,
// cursor-paginated. Callers must have verified tenant ownership of the
// todo before asking for its feed.
func (s *Service) ListByTodo(ctx context.Context, todoID string, params paging.Params) (*paging.Result[*structs.Activity], error) {
	return paging.Paginate(params, func(cursor string, limit int) ([]*structs.Activity, int, string, error) {
		var before time.Time
		beforeSeq := 0
		hasCursor := false
		if cursor != "" {
			t, key, err := paging.DecodeCursor(cursor)
			if err != nil {
				return nil, 0, "", fmt.Errorf("invalid cursor: %w", err)
			}
			seq, err := strconv.Atoi(key)
			if err != nil {
				return nil, 0, "", fmt.Errorf("invalid cursor: %w", err)
			}
			before, beforeSeq, hasCursor = t, seq, true
		}

		items, err := s.repo.ListByTodo(ctx, todoID, before, beforeSeq, hasCursor, limit)
		if err != nil {
			return nil, 0, "", err
		}

		total, err := s.repo.CountByTodo(ctx, todoID)
		if err != nil {
			return nil, 0, "", err
		}

		// limit carries the caller's page size plus one probe row; the
		// next cursor points at the last row that stays on this page.
		next := ""
		if len(items) == limit && limit >= 2 {
			last := items[limit-2]
			next = paging.EncodeCursor(last.CreatedAt, strconv.Itoa(last.Seq))
		}
		return items, total, next, nil
	})
}
