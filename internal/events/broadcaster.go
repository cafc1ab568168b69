package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"carcatalog/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	listenerBuffer  = 10
	cleanupInterval = 30 * time.Second
	staleAfter      = 2 * time.Minute
)

// Broadcaster fans change events out to SSE listeners
type Broadcaster struct {
	mu                  sync.RWMutex
	listeners           map[*Listener]bool            // every collection
	collectionListeners map[string]map[*Listener]bool // collection -> listeners
	logger              *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// Listener represents a single SSE connection
type Listener struct {
	ID     string
	Events chan models.ChangeEvent
	Done   chan struct{}

	mu       sync.Mutex
	lastPing time.Time
	closed   bool
}

// NewBroadcaster creates a new event broadcaster and starts its cleanup loop
func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Broadcaster{
		listeners:           make(map[*Listener]bool),
		collectionListeners: make(map[string]map[*Listener]bool),
		logger:              logger,
		stop:                make(chan struct{}),
	}

	go b.cleanupRoutine()

	return b
}

func newListener() *Listener {
	return &Listener{
		ID:       uuid.NewString(),
		Events:   make(chan models.ChangeEvent, listenerBuffer),
		Done:     make(chan struct{}),
		lastPing: time.Now(),
	}
}

// close marks the listener closed; it is safe to call more than once
func (l *Listener) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.Done)
	}
}

func (l *Listener) stale(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return now.Sub(l.lastPing) > staleAfter
}

// closed reports whether Close has been called
func (b *Broadcaster) closed() bool {
	select {
	case <-b.stop:
		return true
	default:
		return false
	}
}

// Subscribe adds a listener for events of every collection.
// After Close it returns a listener that is already done.
func (b *Broadcaster) Subscribe() *Listener {
	listener := newListener()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed() {
		listener.close()
		return listener
	}
	b.listeners[listener] = true

	return listener
}

// Unsubscribe removes a listener added with Subscribe
func (b *Broadcaster) Unsubscribe(listener *Listener) {
	b.mu.Lock()
	delete(b.listeners, listener)
	b.mu.Unlock()

	listener.close()
}

// SubscribeCollection adds a listener for one collection's events
func (b *Broadcaster) SubscribeCollection(collection string) *Listener {
	listener := newListener()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed() {
		listener.close()
		return listener
	}
	if b.collectionListeners[collection] == nil {
		b.collectionListeners[collection] = make(map[*Listener]bool)
	}
	b.collectionListeners[collection][listener] = true

	return listener
}

// UnsubscribeCollection removes a collection listener
func (b *Broadcaster) UnsubscribeCollection(collection string, listener *Listener) {
	b.mu.Lock()
	if listeners, exists := b.collectionListeners[collection]; exists {
		delete(listeners, listener)
		if len(listeners) == 0 {
			delete(b.collectionListeners, collection)
		}
	}
	b.mu.Unlock()

	listener.close()
}

// Broadcast sends an event to all listeners and to the listeners of its collection
func (b *Broadcaster) Broadcast(event models.ChangeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for listener := range b.listeners {
		b.deliver(listener, event)
	}
	for listener := range b.collectionListeners[event.Collection] {
		b.deliver(listener, event)
	}
}

func (b *Broadcaster) deliver(listener *Listener, event models.ChangeEvent) {
	select {
	case listener.Events <- event:
	default:
		b.logger.Warn("Dropping change event, listener buffer full",
			zap.String("listener_id", listener.ID),
			zap.String("collection", event.Collection),
			zap.String("event_type", event.EventType),
		)
	}
}

// ListenerCount returns the number of active listeners, collection listeners included
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := len(b.listeners)
	for _, listeners := range b.collectionListeners {
		count += len(listeners)
	}
	return count
}

// Close stops the cleanup loop and closes every listener
func (b *Broadcaster) Close() {
	b.stopOnce.Do(func() {
		close(b.stop)

		b.mu.Lock()
		defer b.mu.Unlock()
		for listener := range b.listeners {
			listener.close()
		}
		for _, listeners := range b.collectionListeners {
			for listener := range listeners {
				listener.close()
			}
		}
		b.listeners = make(map[*Listener]bool)
		b.collectionListeners = make(map[string]map[*Listener]bool)
	})
}

// cleanupRoutine periodically removes stale connections
func (b *Broadcaster) cleanupRoutine() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case now := <-ticker.C:
			b.removeStale(now)
		}
	}
}

func (b *Broadcaster) removeStale(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for listener := range b.listeners {
		if listener.stale(now) {
			delete(b.listeners, listener)
			listener.close()
		}
	}

	for collection, listeners := range b.collectionListeners {
		for listener := range listeners {
			if listener.stale(now) {
				delete(listeners, listener)
				listener.close()
			}
		}
		if len(listeners) == 0 {
			delete(b.collectionListeners, collection)
		}
	}
}

// UpdatePing records that the listener's connection is still alive
func (b *Broadcaster) UpdatePing(listener *Listener) {
	listener.mu.Lock()
	listener.lastPing = time.Now()
	listener.mu.Unlock()
}

// FormatSSE formats an event as Server-Sent Events format
func FormatSSE(event models.ChangeEvent) string {
	data, _ := json.Marshal(event)
	return fmt.Sprintf("event: change\ndata: %s\n\n", string(data))
}

// FormatPing formats a ping/heartbeat message
func FormatPing() string {
	return ": ping\n\n"
}
