// Package activity provides the append-only audit trail for todos.
// Rows are written by the todo and comment modules; the feed is served
// through the todo routes so tenant ownership is checked before reads.
package activity

import (
	"fmt"

	"github.com/ncobase/todox/biz/activity/data/repository"
	"github.com/ncobase/todox/biz/activity/service"
	"github.com/ncobase/todox/biz/activity/structs"
	"github.com/ncobase/todox/data"
	"github.com/ncobase/todox/logging/logger"
)

// Activity types re-exported for other modules.
type (
	Service  = service.Service
	Snapshot = service.Snapshot
	Change   = service.Change
	Activity = structs.Activity
	Action   = structs.Action
)

// Event-only actions recorded by lifecycle transitions.
const (
	ActionArchived = structs.ActionArchived
	ActionRestored = structs.ActionRestored
	ActionTrashed  = structs.ActionTrashed
)

// Diff re-exports the snapshot comparison for callers outside the
// service package.
var Diff = service.Diff

// Module bundles the activity recorder.
type Module struct {
	service *service.Service
	repo    repository.ActivityRepository
}

// New creates the activity module backed by the master database.
func New(log *logger.Logger, d *data.Data) (*Module, error) {
	repo, err := repository.NewActivityRepository(d.GetMasterDB())
	if err != nil {
		return nil, fmt.Errorf("activity module: %w", err)
	}
	return &Module{
		service: service.NewService(repo, log),
		repo:    repo,
	}, nil
}

// Name returns the module name.
func (m *Module) Name() string { return "activity" }

// Service returns the recorder for inter-module wiring.
func (m *Module) Service() *service.Service { return m.service }
