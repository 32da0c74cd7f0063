// Package chat holds the conversation-side orchestration that sits between
// the HTTP layer and the message store: the delayed bot-reply scheduler.
package chat

import (
	"sync"
	"time"

	"crimewatch/pkg/logger"
)

// DefaultBotDelay is the pause between a user message landing and the bot
// reply being delivered, to mimic typing.
const DefaultBotDelay = 1500 * time.Millisecond

// Typist schedules one pending bot reply per user. Scheduling captures the
// reply text by value; a later Schedule or Cancel for the same user drops
// the pending reply before it fires. Close cancels everything, for server
// shutdown and stream teardown.
type Typist struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

// NewTypist returns a Typist with the given reply delay. Zero or negative
// delay falls back to DefaultBotDelay.
func NewTypist(delay time.Duration) *Typist {
	if delay <= 0 {
		delay = DefaultBotDelay
	}
	return &Typist{delay: delay, pending: make(map[string]*time.Timer)}
}

// Delay reports the configured reply delay.
func (t *Typist) Delay() time.Duration { return t.delay }

// Schedule queues reply text for userID, to be passed to deliver after the
// delay elapses. text is fixed at call time; mutations to whatever buffer
// produced it do not reach deliver. Any reply already pending for the user
// is replaced.
func (t *Typist) Schedule(userID, text string, deliver func(text string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if prev, ok := t.pending[userID]; ok {
		prev.Stop()
	}
	var tm *time.Timer
	tm = time.AfterFunc(t.delay, func() {
		t.mu.Lock()
		// A Stop that loses the race still ends up here; only the timer
		// currently on record is allowed to deliver.
		if t.closed || t.pending[userID] != tm {
			t.mu.Unlock()
			return
		}
		delete(t.pending, userID)
		t.mu.Unlock()
		deliver(text)
	})
	t.pending[userID] = tm
	logger.Debug("bot_reply_scheduled", "user", userID, "delay_ms", t.delay.Milliseconds())
}

// Cancel drops the pending reply for userID, if any. Returns whether a
// reply was pending.
func (t *Typist) Cancel(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	tm, ok := t.pending[userID]
	if !ok {
		return false
	}
	tm.Stop()
	delete(t.pending, userID)
	logger.Debug("bot_reply_canceled", "user", userID)
	return true
}

// Close cancels every pending reply and rejects further scheduling.
func (t *Typist) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	for id, tm := range t.pending {
		tm.Stop()
		delete(t.pending, id)
	}
}
