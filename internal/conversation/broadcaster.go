// ABOUTME: In-memory fan-out of session events to presentation layers
// ABOUTME: Publishes render snapshots and scroll-to-latest signals to every subscriber

package conversation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const (
	// subscriberBufferSize is the channel buffer for each subscriber.
	subscriberBufferSize = 64
)

// EventType distinguishes what a presentation layer should do with an Event.
type EventType string

const (
	// EventRender carries a fresh View to draw.
	EventRender EventType = "render"
	// EventScroll asks the view to scroll to the newest message. It always
	// follows the render event that introduced that message.
	EventScroll EventType = "scroll"
)

// Event is one notification to a presentation layer.
type Event struct {
	Type EventType
	View View
}

// broadcaster provides in-memory pub/sub for session events.
type broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event // subID -> ch
	done        chan struct{}
	closed      bool
	logger      *slog.Logger
}

func newBroadcaster(logger *slog.Logger) *broadcaster {
	return &broadcaster{
		subscribers: make(map[string]chan Event),
		done:        make(chan struct{}),
		logger:      logger.With("component", "broadcaster"),
	}
}

// subscribe registers a subscriber. The subscription is cleaned up when ctx
// is cancelled or the broadcaster is closed.
func (b *broadcaster) subscribe(ctx context.Context) (<-chan Event, string) {
	subID := uuid.New().String()
	ch := make(chan Event, subscriberBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, subID
	}
	b.subscribers[subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "sub_id", subID)

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(subID)
		case <-b.done:
		}
	}()

	return ch, subID
}

// publish sends an event to all subscribers.
// Non-blocking: events are dropped for subscribers whose channels are full.
func (b *broadcaster) publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Debug("dropped event for slow subscriber",
				"sub_id", id,
				"event_type", event.Type)
		}
	}
}

// unsubscribe removes a subscription and closes its channel.
func (b *broadcaster) unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, exists := b.subscribers[subID]
	if !exists {
		return
	}

	delete(b.subscribers, subID)
	close(ch)

	b.logger.Debug("subscriber removed", "sub_id", subID)
}

// close shuts down the broadcaster and closes all subscriber channels.
func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.done)

	for subID, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, subID)
	}
}
