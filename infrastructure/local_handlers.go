package infrastructure

import (
	"context"
	"sync"

	"cashgame/domain/events"

	log "github.com/sirupsen/logrus"
)

// EventHandler reacts to an event inside this process
type EventHandler func(context.Context, events.Event) error

// LocalHandlers dispatches flushed events to in-process subscribers such as the Discord bot
type LocalHandlers struct {
	mu       sync.RWMutex
	handlers map[events.EventType][]EventHandler
}

// NewLocalHandlers creates an empty handler registry
func NewLocalHandlers() *LocalHandlers {
	return &LocalHandlers{
		handlers: make(map[events.EventType][]EventHandler),
	}
}

// Register adds a handler for eventType
func (h *LocalHandlers) Register(eventType events.EventType, handler EventHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.handlers[eventType] = append(h.handlers[eventType], handler)
	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(h.handlers[eventType]),
	}).Info("Registered local event handler")
}

// Dispatch invokes every handler registered for the event's type.
// Handler errors are logged and do not stop the remaining handlers.
func (h *LocalHandlers) Dispatch(ctx context.Context, event events.Event) {
	if h == nil {
		return
	}

	h.mu.RLock()
	handlers := h.handlers[event.Type()]
	h.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Local event handler failed")
		}
	}
}
