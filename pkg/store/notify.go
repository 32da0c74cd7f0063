package store

import (
	"encoding/json"
	"sync"

	"crimewatch/pkg/logger"
)

// Topics the store publishes on. Conversation events are per user; the
// report feed is global.
const TopicFeed = "feed"

// ChatTopic returns the per-user conversation topic.
func ChatTopic(userID string) string { return "chat:" + userID }

// Event is one fanout payload: the stream event name plus its marshaled
// body. Kinds in use: "message", "report", "typing".
type Event struct {
	Kind string
	Data []byte
}

// Broker is an in-process fanout for store writes. Subscribers get a
// buffered channel of events; a slow subscriber drops events rather than
// blocking writers.
type Broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan Event
	closed bool
}

const subBuffer = 64

// NewBroker returns an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[int]chan Event)}
}

// Subscribe registers for a topic. The returned cancel func is idempotent
// and must be called when the subscriber goes away; it closes the channel.
func (b *Broker) Subscribe(topic string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, subBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.nextID++
	id := b.nextID
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan Event)
	}
	b.subs[topic][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if m, ok := b.subs[topic]; ok {
				if c, ok := m[id]; ok {
					delete(m, id)
					close(c)
					if len(m) == 0 {
						delete(b.subs, topic)
					}
				}
			}
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber of topic. Full subscriber
// buffers are skipped.
func (b *Broker) Publish(topic string, ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for id, ch := range b.subs[topic] {
		select {
		case ch <- ev:
		default:
			logger.Warn("fanout_subscriber_lagging", "topic", topic, "sub", id)
		}
	}
}

// Subscribers reports the live subscription count for a topic.
func (b *Broker) Subscribers(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

// Close shuts every subscriber channel and rejects further use.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for topic, m := range b.subs {
		for _, ch := range m {
			close(ch)
		}
		delete(b.subs, topic)
	}
}

// events fans out store writes to live streams. Package-level like the DB
// handle so handlers and the store share one instance.
var events = NewBroker()

// Events returns the broker store writes are published on.
func Events() *Broker { return events }

// PublishTyping publishes the typing indicator on a user's conversation
// topic. Set on bot-reply schedule, cleared on delivery or cancel.
func PublishTyping(userID string, active bool) {
	data, _ := json.Marshal(struct {
		Typing bool `json:"typing"`
	}{Typing: active})
	events.Publish(ChatTopic(userID), Event{Kind: "typing", Data: data})
}
