package live

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Publisher is the capability handed to services that emit live events.
// Publishing is fire-and-forget: it never blocks on subscriber
// presence, and a missing or slow subscriber silently drops the event.
type Publisher interface {
	Publish(topic string, payload interface{})
}

// Subscriber hands out ordered streams of events for a topic, starting
// from the point of subscription. There is no historical replay.
type Subscriber interface {
	Subscribe(topic string) *Subscription
}

// FixtureTopic is the broadcast channel key for one fixture.
func FixtureTopic(fixtureID int) string {
	return fmt.Sprintf("fixture:%d", fixtureID)
}

// Subscription is one consumer's handle on a topic. Events arrive on C
// in publish order; Close detaches the consumer and closes C.
type Subscription struct {
	ID    string
	Topic string
	C     <-chan []byte

	hub *Hub
	ch  chan []byte
}

// Close removes the subscription from its hub. Safe to call once.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// Hub is the in-process publish-subscribe primitive keyed by topic.
// It is constructed once in main and injected wherever a Publisher or
// Subscriber is needed.
type Hub struct {
	logger *slog.Logger

	mu     sync.RWMutex
	topics map[string]map[string]*Subscription
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		topics: make(map[string]map[string]*Subscription),
	}
}

func (h *Hub) Subscribe(topic string) *Subscription {
	ch := make(chan []byte, 256)
	sub := &Subscription{
		ID:    uuid.NewString(),
		Topic: topic,
		C:     ch,
		hub:   h,
		ch:    ch,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[string]*Subscription)
	}
	h.topics[topic][sub.ID] = sub
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[sub.Topic]
	if !ok {
		return
	}
	if _, ok := subs[sub.ID]; !ok {
		return
	}
	delete(subs, sub.ID)
	close(sub.ch)
	if len(subs) == 0 {
		delete(h.topics, sub.Topic)
	}
}

// Publish marshals payload and fans it out to every subscriber of the
// topic. A subscriber whose buffer is full is skipped.
func (h *Hub) Publish(topic string, payload interface{}) {
	message, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal live payload",
			slog.String("topic", topic), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.topics[topic] {
		select {
		case sub.ch <- message:
		default:
			h.logger.Warn("live subscriber buffer full, dropping event",
				slog.String("topic", topic), slog.String("subscription", sub.ID))
		}
	}
}
