// Package notification is the plugin behind the engine's notification
// triggers: it writes the in-app rows the todo, comment and reminder
// modules request, serves the recipient's feed, and mirrors events to
// email on the bus.
package notification

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/ncobase/todox/data"
	"github.com/ncobase/todox/internal/event"
	"github.com/ncobase/todox/logging/logger"
	"github.com/ncobase/todox/messaging/email"
	"github.com/ncobase/todox/plugin/notification/data/repository"
	"github.com/ncobase/todox/plugin/notification/service"
)

// Notification types re-exported for other modules.
type Service = service.Service

// Module bundles the notification service, repository and dispatcher.
type Module struct {
	service    *service.Service
	dispatcher *service.Dispatcher
	repo       repository.NotificationRepository
}

// New creates the notification module. The sender may be nil (email
// disabled); the dispatcher then drops every event it receives.
func New(log *logger.Logger, d *data.Data, emails service.Emails, sender email.Sender, bus *event.Bus) (*Module, error) {
	repo, err := repository.NewNotificationRepository(d.GetMasterDB())
	if err != nil {
		return nil, fmt.Errorf("notification module: %w", err)
	}

	m := &Module{
		service:    service.NewService(log, repo, emails),
		dispatcher: service.NewDispatcher(log, sender, emails),
		repo:       repo,
	}
	if bus != nil {
		m.dispatcher.Subscribe(bus)
	}
	return m, nil
}

// Name returns the module name.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes registers notification endpoints on the given group.
func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/notifications", m.service.HandleList)
	r.PUT("/notifications/read-all", m.service.HandleMarkAllRead)
	r.PUT("/notifications/:notification_id/read", m.service.HandleMarkRead)
}

// Service returns the notification service. It satisfies the todo and
// comment modules' notifier interfaces and the reminder scan's sink.
func (m *Module) Service() *service.Service { return m.service }
