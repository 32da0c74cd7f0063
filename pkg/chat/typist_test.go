package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu    sync.Mutex
	texts []string
}

func (c *capture) deliver(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
}

func (c *capture) got() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.texts...)
}

func TestTypistDeliversAfterDelay(t *testing.T) {
	ty := NewTypist(10 * time.Millisecond)
	defer ty.Close()
	var c capture

	ty.Schedule("u1", "hello back", c.deliver)
	assert.Empty(t, c.got())

	require.Eventually(t, func() bool { return len(c.got()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"hello back"}, c.got())
}

func TestTypistCapturesTextAtScheduleTime(t *testing.T) {
	ty := NewTypist(10 * time.Millisecond)
	defer ty.Close()
	var c capture

	text := "first"
	ty.Schedule("u1", text, c.deliver)
	text = "mutated"
	_ = text

	require.Eventually(t, func() bool { return len(c.got()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "first", c.got()[0])
}

func TestTypistCancel(t *testing.T) {
	ty := NewTypist(20 * time.Millisecond)
	defer ty.Close()
	var c capture

	ty.Schedule("u1", "never", c.deliver)
	assert.True(t, ty.Cancel("u1"))
	assert.False(t, ty.Cancel("u1"))

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, c.got())
}

func TestTypistRescheduleReplacesPending(t *testing.T) {
	ty := NewTypist(20 * time.Millisecond)
	defer ty.Close()
	var c capture

	ty.Schedule("u1", "stale", c.deliver)
	ty.Schedule("u1", "fresh", c.deliver)

	require.Eventually(t, func() bool { return len(c.got()) >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, []string{"fresh"}, c.got())
}

func TestTypistPerUserIsolation(t *testing.T) {
	ty := NewTypist(10 * time.Millisecond)
	defer ty.Close()
	var c capture

	ty.Schedule("u1", "for u1", c.deliver)
	ty.Schedule("u2", "for u2", c.deliver)
	assert.True(t, ty.Cancel("u1"))

	require.Eventually(t, func() bool { return len(c.got()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"for u2"}, c.got())
}

func TestTypistCloseCancelsAll(t *testing.T) {
	ty := NewTypist(20 * time.Millisecond)
	var c capture

	ty.Schedule("u1", "a", c.deliver)
	ty.Schedule("u2", "b", c.deliver)
	ty.Close()

	// Scheduling after close is rejected.
	ty.Schedule("u3", "c", c.deliver)

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, c.got())
}

func TestTypistDefaultDelay(t *testing.T) {
	assert.Equal(t, DefaultBotDelay, NewTypist(0).Delay())
	assert.Equal(t, DefaultBotDelay, NewTypist(-time.Second).Delay())
	assert.Equal(t, time.Second, NewTypist(time.Second).Delay())
}
