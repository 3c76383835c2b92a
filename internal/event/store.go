package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ncobase/todox/logging/logger"
)

// EventStore defines the interface for event persistence.
type EventStore interface {
	Save(ctx context.Context, event *Event) error
	Load(ctx context.Context, eventID string) (*Event, error)
	LoadByTodo(ctx context.Context, todoID string) ([]*Event, error)
	LoadByType(ctx context.Context, eventType EventType) ([]*Event, error)
	LoadSince(ctx context.Context, since time.Time) ([]*Event, error)
}

// MemoryStore is an in-memory implementation of EventStore.
type MemoryStore struct {
	events map[string]*Event
	mu     sync.RWMutex
	logger *logger.Logger
}

// NewMemoryStore creates a new memory-based event store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		events: make(map[string]*Event),
		logger: log,
	}
}

// Save saves an event to memory.
func (s *MemoryStore) Save(ctx context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so later mutations of the published event don't leak in
	eventCopy := *event
	s.events[event.ID] = &eventCopy
	s.logger.Debug(ctx, "Event stored", "id", event.ID, "type", event.Type)
	return nil
}

// Load loads an event by ID.
func (s *MemoryStore) Load(_ context.Context, eventID string) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[eventID]
	if !ok {
		return nil, fmt.Errorf("event not found: %s", eventID)
	}
	return event, nil
}

// LoadByTodo loads events for a specific todo.
func (s *MemoryStore) LoadByTodo(_ context.Context, todoID string) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*Event
	for _, event := range s.events {
		if event.TodoID == todoID {
			events = append(events, event)
		}
	}
	return events, nil
}

// LoadByType loads events of a specific type.
func (s *MemoryStore) LoadByType(_ context.Context, eventType EventType) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*Event
	for _, event := range s.events {
		if event.Type == eventType {
			events = append(events, event)
		}
	}
	return events, nil
}

// LoadSince loads events since a specific time.
func (s *MemoryStore) LoadSince(_ context.Context, since time.Time) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*Event
	for _, event := range s.events {
		if event.Timestamp.After(since) {
			events = append(events, event)
		}
	}
	return events, nil
}
