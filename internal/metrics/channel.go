package metrics

import "sync/atomic"

// DefaultCapacity bounds the number of events that can wait between the
// request handlers and the dashboard loop.
const DefaultCapacity = 1024

// Channel is the bounded multi-producer, single-consumer pipe between
// request handlers and the aggregator. Producers never block: when the
// buffer is full the incoming event is dropped and counted.
type Channel struct {
	events  chan Event
	dropped atomic.Uint64
}

func NewChannel(capacity int) *Channel {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Channel{
		events: make(chan Event, capacity),
	}
}

// Send enqueues an event without blocking. It reports false when the
// buffer was full and the event was dropped.
func (c *Channel) Send(event Event) bool {
	select {
	case c.events <- event:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// TryReceive polls for a pending event without blocking. It reports
// false when the buffer is empty.
func (c *Channel) TryReceive() (Event, bool) {
	select {
	case event := <-c.events:
		return event, true
	default:
		return Event{}, false
	}
}

// Len returns the number of events currently buffered.
func (c *Channel) Len() int {
	return len(c.events)
}

// Dropped returns the number of events discarded because the buffer was full.
func (c *Channel) Dropped() uint64 {
	return c.dropped.Load()
}
