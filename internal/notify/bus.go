// Package notify fans out change notifications to connected clients.
//
// Channels are plain strings: one per slot key, one per participant key and
// one per session. Delivery is fire-and-forget; a subscriber that falls
// behind loses events rather than slowing the publisher.
package notify

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Kind is the type of a notification.
type Kind string

const (
	// KindInterface tells a slot client to refresh its game view.
	KindInterface Kind = "update.interface"
	// KindNavigation tells a participant client to refresh its list of games.
	KindNavigation Kind = "update.navigation"
	// KindMessages tells a client a moderator message arrived.
	KindMessages Kind = "update.messages"
)

// Event is a single notification.
type Event struct {
	Kind    Kind      `json:"type"`
	Channel string    `json:"channel"`
	GameID  string    `json:"game_id,omitempty"`
	Text    string    `json:"text,omitempty"`
	At      time.Time `json:"at"`
}

// SlotChannel is the channel of one slot's game view.
func SlotChannel(key string) string { return "slot:" + key }

// ParticipantChannel is the channel of a participant's navigation view.
func ParticipantChannel(key string) string { return "participant:" + key }

// SessionChannel carries session-wide announcements.
func SessionChannel(sessionID string) string { return "session:" + sessionID }

// Publisher is the write side of the bus.
type Publisher interface {
	Publish(channel string, evt Event)
}

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 16

// Bus is an in-process pub/sub hub.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]*Subscription // channel -> id -> subscription
	nextID atomic.Uint64
	buffer int

	dropped atomic.Uint64
}

// NewBus creates a bus whose subscribers queue up to buffer events.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		subs:   make(map[string]map[uint64]*Subscription),
		buffer: buffer,
	}
}

// Subscription receives events published on its channels until closed.
type Subscription struct {
	id       uint64
	channels []string
	ch       chan Event
	bus      *Bus
	once     sync.Once
}

// C returns the receive side. It is closed by Close.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		for _, c := range s.channels {
			delete(s.bus.subs[c], s.id)
			if len(s.bus.subs[c]) == 0 {
				delete(s.bus.subs, c)
			}
		}
		close(s.ch)
	})
}

// Subscribe registers interest in one or more channels.
func (b *Bus) Subscribe(channels ...string) *Subscription {
	sub := &Subscription{
		id:       b.nextID.Add(1),
		channels: channels,
		ch:       make(chan Event, b.buffer),
		bus:      b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range channels {
		if b.subs[c] == nil {
			b.subs[c] = make(map[uint64]*Subscription)
		}
		b.subs[c][sub.id] = sub
	}
	return sub
}

// Publish delivers evt to every current subscriber of channel without blocking.
func (b *Bus) Publish(channel string, evt Event) {
	evt.Channel = channel
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[channel] {
		select {
		case sub.ch <- evt:
		default:
			b.dropped.Add(1)
			slog.Debug("Dropped notification", "channel", channel, "kind", evt.Kind)
		}
	}
}

// SubscriptionCount returns the number of live subscriptions on channel.
func (b *Bus) SubscriptionCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[channel])
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
