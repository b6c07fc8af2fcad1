package pubsub

import (
	"context"
	"sync"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
)

// Well-known topics. The Orchestrator publishes TopicHintQueued,
// TopicHintMatched and TopicConnectionState; nothing in this module
// publishes TopicPatchApplied or TopicBufferBackpressure.
const (
	TopicPatchApplied     = "patch.applied"
	TopicHintQueued       = "hint.queued"
	TopicHintMatched      = "hint.matched"
	TopicConnectionState  = "connection.state"
	TopicBufferBackpressure = "buffer.backpressure"
)

const subscriberBuffer = 32

// Event is one published item.
type Event struct {
	Topic   string
	Payload any
	At      time.Time
}

type subscription struct {
	topic string
	ch    chan Event
}

// Bus is an in-process, topic-keyed fan-out event bus. Bus is safe for
// concurrent use.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]chan Event
}

// New constructs an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]chan Event)}
}

// Publish delivers payload to every current subscriber of topic. Delivery
// is non-blocking: a subscriber whose buffer is full misses the event
// rather than stalling the publisher, matching vango-go-vango's
// idempotent-update discard policy for slow websocket clients.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.Lock()
	subs := append([]chan Event(nil), b.subs[topic]...)
	b.mu.Unlock()

	evt := Event{Topic: topic, Payload: payload, At: time.Now()}
	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe returns a single merged stream of Events published to any of
// topics, until ctx is done, at which point the returned channel closes
// and the subscription is torn down.
func (b *Bus) Subscribe(ctx context.Context, topics ...string) <-chan Event {
	raw := make([]<-chan Event, 0, len(topics))
	subscribed := make([]subscription, 0, len(topics))

	for _, topic := range topics {
		ch := make(chan Event, subscriberBuffer)
		b.mu.Lock()
		b.subs[topic] = append(b.subs[topic], ch)
		b.mu.Unlock()

		subscribed = append(subscribed, subscription{topic: topic, ch: ch})
		raw = append(raw, channerics.OrDone(ctx.Done(), ch))
	}

	go func() {
		<-ctx.Done()
		for _, s := range subscribed {
			b.unsubscribe(s.topic, s.ch)
		}
	}()

	return channerics.Merge(ctx.Done(), raw...)
}

func (b *Bus) unsubscribe(topic string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[topic]
	for i, c := range subs {
		if c == ch {
			b.subs[topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}
