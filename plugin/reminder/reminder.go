// Package reminder is the due-date scan plugin: an interval scheduler
// and an operator surface that walk PENDING todos whose due dates
// crossed the due-soon or overdue threshold and notify exactly once.
package reminder

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/ncobase/todox/config"
	"github.com/ncobase/todox/data"
	"github.com/ncobase/todox/internal/event"
	"github.com/ncobase/todox/logging/logger"
	"github.com/ncobase/todox/plugin/reminder/data/repository"
	"github.com/ncobase/todox/plugin/reminder/service"
)

// Module bundles the scan service and its job store.
type Module struct {
	service *service.Service
}

// New creates the reminder module. The todos dependency is the todo
// repository's scan slice; the notifier writes the reminder rows.
func New(log *logger.Logger, d *data.Data, conf *config.Reminder, todos service.TodoScanner, notifier service.Notifier, bus *event.Bus) (*Module, error) {
	jobs, err := repository.NewJobRepository(d.GetMasterDB())
	if err != nil {
		return nil, fmt.Errorf("reminder module: %w", err)
	}
	return &Module{
		service: service.NewService(log, conf, d, jobs, todos, notifier, bus),
	}, nil
}

// Name returns the module name.
func (m *Module) Name() string { return "reminder" }

// RegisterRoutes registers the scan job endpoints on the given group.
func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/jobs/reminders", m.service.HandlePost)
	r.GET("/jobs/reminders", m.service.HandleList)
	r.GET("/jobs/reminders/:job_id", m.service.HandleGet)
}

// Start launches the worker pool and the interval scheduler.
func (m *Module) Start(ctx context.Context) { m.service.Start(ctx) }

// Stop drains the worker pool.
func (m *Module) Stop(ctx context.Context) { m.service.Stop(ctx) }

// Service returns the reminder service.
func (m *Module) Service() *service.Service { return m.service }
