// Package events fans recipe activity (likes, comments) out to browsers over Server-Sent Events.
// Subscribers are grouped by topic, for example "recipe:<id>". Publishing never blocks:
// a subscriber whose buffer is full misses the event rather than stalling the publisher.
package events

import (
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Event types published by the cooking packages.
const (
	TypeLikeCreated    = "like.created"
	TypeLikeRemoved    = "like.removed"
	TypeCommentCreated = "comment.created"
	TypeCommentDeleted = "comment.deleted"
)

// DefaultBufferSize is the per-subscriber channel capacity.
const DefaultBufferSize = 32

// Event is one message on a topic. Data is JSON-encoded into the SSE data field.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewEvent creates an event with a fresh id.
func NewEvent(eventType string, data any) Event {
	return Event{ID: uuid.NewString(), Type: eventType, Data: data}
}

// RecipeTopic is the topic carrying activity for one recipe.
func RecipeTopic(recipeID string) string {
	return "recipe:" + recipeID
}

// Publisher is what producers depend on.
type Publisher interface {
	Publish(topic string, ev Event) int
}

// Subscription is one listener on a topic. C is closed by Unsubscribe.
type Subscription struct {
	ID    string
	Topic string
	C     <-chan Event
	ch    chan Event
}

// Broadcaster manages subscriptions and delivers published events.
type Broadcaster struct {
	mu         sync.RWMutex
	topics     map[string]map[string]*Subscription
	bufferSize int

	published prometheus.Counter
	dropped   prometheus.Counter
	active    prometheus.Gauge
}

// NewBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewBroadcaster(bufferSize int) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Broadcaster{
		topics:     make(map[string]map[string]*Subscription),
		bufferSize: bufferSize,
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cookbook", Subsystem: "events", Name: "delivered_total",
			Help: "Events delivered to subscribers.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cookbook", Subsystem: "events", Name: "dropped_total",
			Help: "Events dropped because a subscriber buffer was full.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cookbook", Subsystem: "events", Name: "subscribers",
			Help: "Currently connected event subscribers.",
		}),
	}
}

// Collectors returns the broadcaster's metrics for registration.
func (b *Broadcaster) Collectors() []prometheus.Collector {
	return []prometheus.Collector{b.published, b.dropped, b.active}
}

// Subscribe registers a new listener on topic.
func (b *Broadcaster) Subscribe(topic string) *Subscription {
	ch := make(chan Event, b.bufferSize)
	sub := &Subscription{ID: uuid.NewString(), Topic: topic, C: ch, ch: ch}

	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[string]*Subscription)
		b.topics[topic] = subs
	}
	subs[sub.ID] = sub
	b.active.Inc()
	return sub
}

// Unsubscribe removes sub and closes its channel. Calling it twice is harmless.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.topics[sub.Topic]
	if !ok {
		return
	}
	if _, ok := subs[sub.ID]; !ok {
		return
	}
	delete(subs, sub.ID)
	close(sub.ch)
	b.active.Dec()
	if len(subs) == 0 {
		delete(b.topics, sub.Topic)
	}
}

// Publish delivers ev to every subscriber of topic and returns how many received it.
func (b *Broadcaster) Publish(topic string, ev Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, sub := range b.topics[topic] {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			b.dropped.Inc()
		}
	}
	b.published.Add(float64(delivered))
	return delivered
}

// SubscriberCount reports the listeners on topic.
func (b *Broadcaster) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Close unsubscribes everyone, ending all open streams.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for topic, subs := range b.topics {
		for _, sub := range subs {
			close(sub.ch)
			b.active.Dec()
		}
		delete(b.topics, topic)
	}
}
