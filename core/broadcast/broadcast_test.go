package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetBeforeAndAfterPublish(t *testing.T) {
	b := New[int]()

	_, ok := b.Get()
	assert.False(t, ok)

	b.Publish(7)
	v, ok := b.Get()
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestSubscribeReplaysCurrentValue(t *testing.T) {
	b := NewWith("hello")

	ch, cancel := b.Subscribe()
	defer cancel()

	assert.Equal(t, "hello", <-ch)
}

func TestSubscribeReceivesPublishes(t *testing.T) {
	b := New[int]()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish(1)
	assert.Equal(t, 1, <-ch)

	b.Publish(2)
	assert.Equal(t, 2, <-ch)
}

func TestSlowSubscriberCoalescesToLatest(t *testing.T) {
	b := New[int]()
	ch, cancel := b.Subscribe()
	defer cancel()

	// Nothing consumed in between: only the last value should remain.
	b.Publish(1)
	b.Publish(2)
	b.Publish(3)

	assert.Equal(t, 3, <-ch)
	select {
	case v := <-ch:
		t.Fatalf("expected no further value, got %d", v)
	default:
	}
}

func TestCancelClosesChannel(t *testing.T) {
	b := New[int]()
	ch, cancel := b.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancel must not panic.
	b.Publish(9)
}

func TestCloseClosesAllSubscribers(t *testing.T) {
	b := NewWith(1)
	ch1, _ := b.Subscribe()
	ch2, _ := b.Subscribe()

	// Drain replayed values first.
	<-ch1
	<-ch2

	b.Close()

	_, open := <-ch1
	assert.False(t, open)
	_, open = <-ch2
	assert.False(t, open)

	// Subscribe after close yields a closed channel.
	ch3, cancel := b.Subscribe()
	defer cancel()
	_, open = <-ch3
	assert.False(t, open)
}
