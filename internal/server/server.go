// Package server wires the application modules and the HTTP surface.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ncobase/todox/biz/activity"
	"github.com/ncobase/todox/biz/comment"
	"github.com/ncobase/todox/biz/label"
	"github.com/ncobase/todox/biz/todo"
	"github.com/ncobase/todox/config"
	"github.com/ncobase/todox/core/auth"
	"github.com/ncobase/todox/core/tenant"
	"github.com/ncobase/todox/core/user"
	"github.com/ncobase/todox/ctxutil"
	"github.com/ncobase/todox/data"
	"github.com/ncobase/todox/internal/event"
	"github.com/ncobase/todox/logging/logger"
	"github.com/ncobase/todox/messaging/email"
	"github.com/ncobase/todox/net/resp"
	"github.com/ncobase/todox/plugin/notification"
	"github.com/ncobase/todox/plugin/reminder"
)

// routeModule is the surface every mountable module exposes.
type routeModule interface {
	Name() string
	RegisterRoutes(r *gin.RouterGroup)
}

// Server holds the wired application. Modules are constructed here in
// dependency order; nothing resolves services at request time.
type Server struct {
	config   *config.Config
	logger   *logger.Logger
	data     *data.Data
	dataStop func(name ...string)
	eventBus *event.Bus
	engine   *gin.Engine

	auth      *auth.Module
	reminders *reminder.Module
	modules   []routeModule
}

// NewServer builds the data layer, the event bus and every module.
func NewServer(cfg *config.Config, log *logger.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	d, dataStop, err := data.New(cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to create data layer: %w", err)
	}
	fail := func(err error) (*Server, error) {
		dataStop()
		return nil, err
	}

	bus := event.NewBus(1000, log, event.NewMemoryStore(log))

	authModule, err := auth.New(log, cfg)
	if err != nil {
		return fail(fmt.Errorf("failed to create auth module: %w", err))
	}
	tenantModule, err := tenant.New(log, d)
	if err != nil {
		return fail(fmt.Errorf("failed to create tenant module: %w", err))
	}
	userModule, err := user.New(log, d, tenantModule.Service())
	if err != nil {
		return fail(fmt.Errorf("failed to create user module: %w", err))
	}
	labelModule, err := label.New(log, d)
	if err != nil {
		return fail(fmt.Errorf("failed to create label module: %w", err))
	}
	activityModule, err := activity.New(log, d)
	if err != nil {
		return fail(fmt.Errorf("failed to create activity module: %w", err))
	}

	sender, err := email.NewSender(cfg.Email)
	if err != nil {
		log.Warn(context.Background(), "Failed to initialize email sender, notifications stay in-app only", "error", err)
		sender = nil
	}

	notificationModule, err := notification.New(log, d, userModule.Service(), sender, bus)
	if err != nil {
		return fail(fmt.Errorf("failed to create notification module: %w", err))
	}
	todoModule, err := todo.New(log, d,
		labelModule.Service(),
		userModule.Service(),
		activityModule.Service(),
		notificationModule.Service(),
		bus,
	)
	if err != nil {
		return fail(fmt.Errorf("failed to create todo module: %w", err))
	}
	commentModule, err := comment.New(log, d, todoModule.Service(), notificationModule.Service(), bus)
	if err != nil {
		return fail(fmt.Errorf("failed to create comment module: %w", err))
	}
	// Purging a todo cascades into comments; the comment module is built
	// after the todo module, so the store is attached here.
	todoModule.Service().SetCommentStore(commentModule.Service())

	reminderModule, err := reminder.New(log, d, cfg.Reminder, todoModule.Repository(), notificationModule.Service(), bus)
	if err != nil {
		return fail(fmt.Errorf("failed to create reminder module: %w", err))
	}

	log.Info(context.Background(), "All modules initialized successfully")

	return &Server{
		config:    cfg,
		logger:    log,
		data:      d,
		dataStop:  dataStop,
		eventBus:  bus,
		auth:      authModule,
		reminders: reminderModule,
		modules: []routeModule{
			tenantModule,
			userModule,
			labelModule,
			todoModule,
			commentModule,
			notificationModule,
			reminderModule,
		},
	}, nil
}

// SetupRouter mounts middleware and every module's routes.
func (s *Server) SetupRouter() *gin.Engine {
	if s.config.RunMode != "" {
		gin.SetMode(s.config.RunMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.traceMiddleware())
	r.Use(s.loggerMiddleware())

	r.GET("/health", s.handleHealth)

	api := r.Group("/api/v1")
	api.Use(s.auth.Middleware().AuthMiddleware())
	api.GET("/events/stats", s.handleEventStats)

	for _, m := range s.modules {
		m.RegisterRoutes(api)
		s.logger.Info(context.Background(), "Registered routes for module", "module", m.Name())
	}

	s.engine = r
	return r
}

// StartEventBus starts the async event workers.
func (s *Server) StartEventBus(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 5
	}
	s.eventBus.Start(ctx, workers)
}

// StartReminder starts the reminder scheduler and its worker pool.
func (s *Server) StartReminder(ctx context.Context) {
	s.reminders.Start(ctx)
}

// Cleanup stops background work and closes connections.
func (s *Server) Cleanup(ctx context.Context) {
	s.reminders.Stop(ctx)
	if err := s.eventBus.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "Failed to shutdown event bus", "error", err)
	}
	s.dataStop()
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.data.Ping(c.Request.Context()); err != nil {
		resp.Fail(c.Writer, resp.InternalServer("unhealthy"))
		return
	}
	resp.Success(c.Writer, map[string]string{"status": "healthy"})
}

func (s *Server) handleEventStats(c *gin.Context) {
	resp.Success(c.Writer, s.eventBus.GetStats())
}

// traceMiddleware opens a span per request and propagates a trace id the
// logger can attach to every line.
func (s *Server) traceMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("todox/http")
	return func(c *gin.Context) {
		ctx, traceID := ctxutil.EnsureTraceID(c.Request.Context())
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+c.FullPath(),
			trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Writer.Header().Set("X-Trace-Id", traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
	}
}

func (s *Server) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info(c.Request.Context(), "HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"duration", duration.String(),
		)
	}
}
