// Package todo provides the todo lifecycle engine: tenant-guarded
// CRUD, the PENDING/COMPLETED state machine with recurring successor
// spawning, archive/trash/restore/purge, and the subtask and label
// sub-resources.
package todo

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/ncobase/todox/biz/activity"
	"github.com/ncobase/todox/biz/todo/data/repository"
	"github.com/ncobase/todox/biz/todo/service"
	"github.com/ncobase/todox/data"
	"github.com/ncobase/todox/internal/event"
	"github.com/ncobase/todox/logging/logger"
)

// Todo types re-exported for other modules.
type (
	Service      = service.Service
	CommentStore = service.CommentStore
)

// Module bundles todo routes, services and repositories.
type Module struct {
	service *service.Service
	repo    repository.TodoRepository
}

// New creates the todo module. The label and user services back batch
// label validation and assignee checks; the notifier is the
// notification plugin's trigger surface.
func New(
	log *logger.Logger,
	d *data.Data,
	labels service.LabelValidator,
	users service.Directory,
	recorder *activity.Service,
	notifier service.Notifier,
	bus *event.Bus,
) (*Module, error) {
	db := d.GetMasterDB()

	todoRepo, err := repository.NewTodoRepository(db)
	if err != nil {
		return nil, fmt.Errorf("todo module: %w", err)
	}
	subtaskRepo, err := repository.NewSubtaskRepository(db)
	if err != nil {
		return nil, fmt.Errorf("todo module: %w", err)
	}
	todoLabelRepo, err := repository.NewTodoLabelRepository(db)
	if err != nil {
		return nil, fmt.Errorf("todo module: %w", err)
	}

	return &Module{
		service: service.NewService(log, d, todoRepo, subtaskRepo, todoLabelRepo, labels, users, recorder, notifier, bus),
		repo:    todoRepo,
	}, nil
}

// Name returns the module name.
func (m *Module) Name() string { return "todo" }

// RegisterRoutes registers todo endpoints on the given group.
func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/todos", m.service.HandleCreate)
	r.GET("/todos", m.service.HandleList)
	r.GET("/todos/:todo_id", m.service.HandleGet)
	r.PUT("/todos/:todo_id", m.service.HandleUpdate)
	r.DELETE("/todos/:todo_id", m.service.HandlePurge)

	r.POST("/todos/:todo_id/toggle", m.service.HandleToggle)
	r.PUT("/todos/:todo_id/assignee", m.service.HandleUpdateAssignee)
	r.PUT("/todos/:todo_id/recurrence", m.service.HandleUpdateRecurrence)
	r.PUT("/todos/:todo_id/labels", m.service.HandleReplaceLabels)
	r.POST("/todos/:todo_id/archive", m.service.HandleArchive)
	r.POST("/todos/:todo_id/trash", m.service.HandleTrash)
	r.POST("/todos/:todo_id/restore", m.service.HandleRestore)
	r.GET("/todos/:todo_id/activities", m.service.HandleActivities)

	r.POST("/todos/:todo_id/subtasks", m.service.HandleCreateSubtask)
	r.GET("/todos/:todo_id/subtasks", m.service.HandleListSubtasks)
	r.PUT("/todos/:todo_id/subtasks/:subtask_id", m.service.HandleUpdateSubtask)
	r.POST("/todos/:todo_id/subtasks/:subtask_id/toggle", m.service.HandleToggleSubtask)
	r.DELETE("/todos/:todo_id/subtasks/:subtask_id", m.service.HandleDeleteSubtask)
}

// Service returns the todo service for inter-module wiring.
func (m *Module) Service() *service.Service { return m.service }

// Repository returns the todo repository for the reminder scanner.
func (m *Module) Repository() repository.TodoRepository { return m.repo }
