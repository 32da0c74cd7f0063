package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerSnapshotThenIncremental(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch, cancel := b.Subscribe("t")
	defer cancel()

	b.Publish("t", Event{Kind: "message", Data: []byte("one")})
	b.Publish("t", Event{Kind: "message", Data: []byte("two")})
	assert.Equal(t, "one", string((<-ch).Data))
	assert.Equal(t, "two", string((<-ch).Data))
}

func TestBrokerTopicIsolation(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch, cancel := b.Subscribe("a")
	defer cancel()

	b.Publish("b", Event{Kind: "message", Data: []byte("elsewhere")})
	select {
	case <-ch:
		t.Fatal("received event for another topic")
	default:
	}
}

func TestBrokerCancelClosesChannel(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch, cancel := b.Subscribe("t")
	assert.Equal(t, 1, b.Subscribers("t"))
	cancel()
	cancel() // idempotent
	assert.Zero(t, b.Subscribers("t"))

	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancel reaches nobody and does not panic.
	b.Publish("t", Event{Kind: "message", Data: []byte("late")})
}

func TestBrokerLaggingSubscriberDrops(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch, cancel := b.Subscribe("t")
	defer cancel()

	for i := 0; i < subBuffer+10; i++ {
		b.Publish("t", Event{Kind: "message", Data: []byte("x")})
	}
	require.Len(t, ch, subBuffer)
}

func TestBrokerClose(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe("t")
	b.Close()

	_, open := <-ch
	assert.False(t, open)
	cancel() // safe after close

	// A subscription on a closed broker is already closed.
	ch2, _ := b.Subscribe("t")
	_, open = <-ch2
	assert.False(t, open)
}

func TestPublishTyping(t *testing.T) {
	ch, cancel := Events().Subscribe(ChatTopic("typer"))
	defer cancel()

	PublishTyping("typer", true)
	ev := <-ch
	assert.Equal(t, "typing", ev.Kind)
	assert.JSONEq(t, `{"typing":true}`, string(ev.Data))

	PublishTyping("typer", false)
	ev = <-ch
	assert.JSONEq(t, `{"typing":false}`, string(ev.Data))
}
