package broadcast

import (
	"sync"
	"time"

	"github.com/elliotchance/orderedmap/v2"
)

// DefaultListenerBuffer is used when Subscribe is given a non-positive size.
const DefaultListenerBuffer = 64

// Listener receives stamped events from a Hub. Send runs on the publisher's
// goroutine and must not block for long.
type Listener interface {
	Send(env Envelope)
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(env Envelope)

// Send calls f(env).
func (f ListenerFunc) Send(env Envelope) {
	f(env)
}

// Hub stamps published events with their capture time and fans them out to
// every listener in subscription order. It is safe for concurrent use, so
// several engines may publish into one hub.
type Hub struct {
	mu        sync.RWMutex
	listeners *orderedmap.OrderedMap[uint64, Listener]
	nextID    uint64
	now       func() time.Time
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		listeners: orderedmap.NewOrderedMap[uint64, Listener](),
		now:       time.Now,
	}
}

// SetClock replaces the capture-time source. Intended for tests.
func (h *Hub) SetClock(now func() time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = now
}

// Publish delivers evt to all current listeners. With no listeners it does nothing.
func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.listeners.Len() == 0 {
		return
	}
	env := Envelope{Event: evt, At: h.now()}
	for el := h.listeners.Front(); el != nil; el = el.Next() {
		el.Value.Send(env)
	}
}

// Add registers l and returns a function that removes it again.
func (h *Hub) Add(l Listener) (remove func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners.Set(id, l)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			h.listeners.Delete(id)
			h.mu.Unlock()
		})
	}
}

// Subscribe registers a buffered channel listener. Close it to unsubscribe.
func (h *Hub) Subscribe(buffer int) *ChannelListener {
	l := NewChannelListener(buffer)
	l.remove = h.Add(l)
	return l
}

// Count returns the number of registered listeners.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.listeners.Len()
}

// ChannelListener is a Listener backed by a buffered channel.
type ChannelListener struct {
	events   chan Envelope
	done     chan struct{}
	doneOnce sync.Once
	remove   func()
}

// NewChannelListener creates a listener that is not attached to any hub.
func NewChannelListener(buffer int) *ChannelListener {
	if buffer < 1 {
		buffer = DefaultListenerBuffer
	}
	return &ChannelListener{
		events: make(chan Envelope, buffer),
		done:   make(chan struct{}),
	}
}

// Send queues env. If the buffer is full the oldest event is dropped.
func (l *ChannelListener) Send(env Envelope) {
	select {
	case <-l.done:
		return
	default:
	}

	select {
	case l.events <- env:
	default:
		select {
		case <-l.events:
		default:
		}
		select {
		case l.events <- env:
		default:
		}
	}
}

// Events returns the channel events are delivered on.
func (l *ChannelListener) Events() <-chan Envelope {
	return l.events
}

// Done returns a channel closed by Close.
func (l *ChannelListener) Done() <-chan struct{} {
	return l.done
}

// Close detaches the listener from its hub. Safe to call multiple times.
func (l *ChannelListener) Close() {
	l.doneOnce.Do(func() {
		if l.remove != nil {
			l.remove()
		}
		close(l.done)
	})
}
