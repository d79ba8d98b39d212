// Package events provides a fan-out feed of service activity so connected
// clients can watch verifications, payouts and progress changes as they
// happen.
package events

import (
	"fmt"
	"sync"
	"time"
)

// Event represents a single activity entry published to the feed.
type Event struct {
	Kind    string    `json:"kind"`
	Wallet  string    `json:"wallet,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Feed maintains a mapping of unique id and channels so goroutines
// can register and receive events.
type Feed struct {
	subs map[string]chan Event
	mu   sync.RWMutex
}

// New constructs a feed for registering and receiving events.
func New() *Feed {
	return &Feed{
		subs: make(map[string]chan Event),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (f *Feed) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used
// to receive events.
func (f *Feed) Acquire(id string) chan Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch, exists := f.subs[id]
	if exists {
		return ch
	}

	// Since an event is dropped when the websocket receiver is not ready
	// to receive, this arbitrary buffer gives the receiver enough time to
	// not lose one. Websocket sends could take long.
	const eventBuffer = 100

	f.subs[id] = make(chan Event, eventBuffer)
	return f.subs[id]
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (f *Feed) Release(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch, exists := f.subs[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(f.subs, id)
	close(ch)
	return nil
}

// Send publishes an event to every registered channel. Send will not block
// waiting for a receiver on any given channel.
func (f *Feed) Send(ev Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	for _, ch := range f.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
