// Package comment provides remarks on todos and the TODO_COMMENTED
// notification trigger.
package comment

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/ncobase/todox/biz/comment/data/repository"
	"github.com/ncobase/todox/biz/comment/service"
	"github.com/ncobase/todox/data"
	"github.com/ncobase/todox/internal/event"
	"github.com/ncobase/todox/logging/logger"
)

// Module bundles comment routes, service and repository.
type Module struct {
	service *service.Service
	repo    repository.CommentRepository
}

// New creates the comment module. The todos dependency is the todo
// service; it guards every comment operation through the parent todo.
func New(log *logger.Logger, d *data.Data, todos service.Todos, notifier service.Notifier, bus *event.Bus) (*Module, error) {
	repo, err := repository.NewCommentRepository(d.GetMasterDB())
	if err != nil {
		return nil, fmt.Errorf("comment module: %w", err)
	}
	return &Module{
		service: service.NewService(log, repo, todos, notifier, bus),
		repo:    repo,
	}, nil
}

// Name returns the module name.
func (m *Module) Name() string { return "comment" }

// RegisterRoutes registers comment endpoints on the given group.
func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/todos/:todo_id/comments", m.service.HandleCreate)
	r.GET("/todos/:todo_id/comments", m.service.HandleList)
	r.DELETE("/todos/:todo_id/comments/:comment_id", m.service.HandleDelete)
}

// Service returns the comment service. It satisfies the todo module's
// purge cascade dependency.
func (m *Module) Service() *service.Service { return m.service }
