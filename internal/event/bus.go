// Package event provides the in-process domain event bus and event store.
package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ncobase/todox/logging/logger"

	"github.com/google/uuid"
)

// EventType defines event types in the application.
type EventType string

const (
	// Todo lifecycle events
	EventTypeTodoCreated       EventType = "todo.created"
	EventTypeTodoStatusChanged EventType = "todo.status_changed"
	EventTypeTodoAssigned      EventType = "todo.assigned"
	EventTypeTodoArchived      EventType = "todo.archived"
	EventTypeTodoTrashed       EventType = "todo.trashed"
	EventTypeTodoRestored      EventType = "todo.restored"
	EventTypeTodoPurged        EventType = "todo.purged"

	// Comment events
	EventTypeCommentCreated EventType = "comment.created"

	// Reminder events
	EventTypeTodoDueSoon EventType = "todo.due_soon"
	EventTypeTodoOverdue EventType = "todo.overdue"
)

// Event represents a domain event in the system.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	TodoID    string         `json:"todo_id,omitempty"`
	TenantID  string         `json:"tenant_id,omitempty"`
	ActorID   string         `json:"actor_id,omitempty"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
	Version   int            `json:"version"`
}

// EventHandler defines the event handler function type.
type EventHandler func(ctx context.Context, event *Event) error

// Bus is the event bus for inter-module communication. Publishing never
// blocks the caller: when the buffer is full the event is dropped and
// logged, so mutations stay independent of consumer health.
type Bus struct {
	handlers map[EventType][]EventHandler
	buffer   chan *Event
	mu       sync.RWMutex
	logger   *logger.Logger
	store    EventStore

	published atomic.Int64
	dropped   atomic.Int64
}

// NewBus creates a new event bus.
func NewBus(bufferSize int, log *logger.Logger, store EventStore) *Bus {
	return &Bus{
		handlers: make(map[EventType][]EventHandler),
		buffer:   make(chan *Event, bufferSize),
		logger:   log,
		store:    store,
	}
}

// Subscribe subscribes a handler to an event type.
func (b *Bus) Subscribe(eventType EventType, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.logger.Info(context.Background(), "Event handler subscribed",
		"event_type", eventType,
		"total_handlers", len(b.handlers[eventType]))
}

// Publish publishes an event to the bus. It never blocks; a full buffer
// drops the event with a warning.
func (b *Bus) Publish(ctx context.Context, event *Event) error {
	event.Timestamp = time.Now()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Version == 0 {
		event.Version = 1
	}

	if b.store != nil {
		if err := b.store.Save(ctx, event); err != nil {
			b.logger.Error(ctx, "Failed to store event",
				"error", err,
				"event_id", event.ID,
				"event_type", event.Type)
			// Continue even if storage fails
		}
	}

	select {
	case b.buffer <- event:
		b.published.Add(1)
		b.logger.Debug(ctx, "Event published",
			"type", event.Type,
			"id", event.ID,
			"todo_id", event.TodoID)
		return nil
	default:
		b.dropped.Add(1)
		b.logger.Warn(ctx, "Event buffer full, dropping event",
			"type", event.Type,
			"id", event.ID)
		return nil
	}
}

// Start starts the event bus workers.
func (b *Bus) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go b.worker(ctx, i)
	}
	b.logger.Info(ctx, "Event bus started", "workers", numWorkers)
}

// worker processes events from the buffer.
func (b *Bus) worker(ctx context.Context, id int) {
	b.logger.Info(ctx, "Event bus worker started", "worker_id", id)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info(ctx, "Event bus worker stopped", "worker_id", id)
			return
		case event := <-b.buffer:
			b.dispatch(ctx, event)
		}
	}
}

// dispatch dispatches an event to all subscribed handlers.
func (b *Bus) dispatch(ctx context.Context, event *Event) {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Debug(ctx, "No handlers for event", "type", event.Type, "id", event.ID)
		return
	}

	var wg sync.WaitGroup
	for i, handler := range handlers {
		wg.Add(1)
		go func(h EventHandler, idx int) {
			defer wg.Done()

			handlerCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			startTime := time.Now()
			if err := h(handlerCtx, event); err != nil {
				b.logger.Error(ctx, "Event handler failed",
					"type", event.Type,
					"id", event.ID,
					"handler_index", idx,
					"duration", time.Since(startTime),
					"error", err)
			} else {
				b.logger.Debug(ctx, "Event handler completed",
					"type", event.Type,
					"id", event.ID,
					"handler_index", idx,
					"duration", time.Since(startTime))
			}
		}(handler, i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Minute):
		b.logger.Warn(ctx, "Event dispatch timeout", "type", event.Type, "id", event.ID)
	}
}

// GetStats returns event bus statistics.
func (b *Bus) GetStats() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subscribers := make(map[string]int)
	for eventType, handlers := range b.handlers {
		subscribers[string(eventType)] = len(handlers)
	}

	return map[string]any{
		"buffer_size":      cap(b.buffer),
		"buffer_used":      len(b.buffer),
		"event_types":      len(b.handlers),
		"total_handlers":   b.countHandlers(),
		"published_events": b.published.Load(),
		"dropped_events":   b.dropped.Load(),
		"subscribers":      subscribers,
	}
}

func (b *Bus) countHandlers() int {
	count := 0
	for _, handlers := range b.handlers {
		count += len(handlers)
	}
	return count
}

// Shutdown gracefully shuts down the event bus, draining buffered events.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.logger.Info(ctx, "Shutting down event bus", "pending_events", len(b.buffer))

	timeout := time.After(10 * time.Second)
	for {
		select {
		case <-timeout:
			b.logger.Warn(ctx, "Event bus shutdown timeout", "remaining_events", len(b.buffer))
			return fmt.Errorf("shutdown timeout with %d events remaining", len(b.buffer))
		case <-ctx.Done():
			return ctx.Err()
		default:
			if len(b.buffer) == 0 {
				b.logger.Info(ctx, "Event bus shutdown complete")
				return nil
			}
			time.Sleep(100 * time.Millisecond)
		}
	}
}
