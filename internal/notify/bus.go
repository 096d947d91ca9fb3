package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const AdminGroup = "admin"

func UserGroup(username string) string {
	return "user:" + username
}

// Mirror receives a copy of every published event, typically a kafka
// producer. Mirror failures are logged and swallowed.
type Mirror interface {
	PublishEvent(ctx context.Context, key string, event any) error
}

const subscriberBuffer = 16

// Bus fans events out to subscriber groups. Delivery is best-effort:
// publishing to a group with no subscribers drops the event, and a
// subscriber that stops draining its channel misses events rather than
// blocking the publisher.
type Bus struct {
	mu     sync.RWMutex
	groups map[string]map[int]chan Event
	nextID int

	mirror Mirror
	log    *slog.Logger
}

func NewBus(mirror Mirror, log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{groups: make(map[string]map[int]chan Event), mirror: mirror, log: log}
}

// Subscribe attaches a listener to a group. The returned cancel function
// detaches it and closes the channel.
func (b *Bus) Subscribe(group string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	subs, ok := b.groups[group]
	if !ok {
		subs = make(map[int]chan Event)
		b.groups[group] = subs
	}
	subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if subs, ok := b.groups[group]; ok {
			if _, ok := subs[id]; ok {
				delete(subs, id)
				close(ch)
			}
			if len(subs) == 0 {
				delete(b.groups, group)
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of a group. It never
// blocks and never reports failure to the caller.
func (b *Bus) Publish(group string, ev Event) {
	b.mu.RLock()
	for _, ch := range b.groups[group] {
		select {
		case ch <- ev:
		default:
			b.log.Warn("notify: subscriber buffer full, event dropped",
				"group", group, "type", ev.Type)
		}
	}
	b.mu.RUnlock()

	if b.mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.mirror.PublishEvent(ctx, group, ev); err != nil {
			b.log.Warn("notify: mirror publish failed", "group", group, "type", ev.Type, "error", err)
		}
	}
}
