package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventQueueOrdering(t *testing.T) {
	var q EventQueue
	var fired []string

	mk := func(name string, timeout uint64) *Event {
		e := &Event{Timeout: timeout}
		e.Callback = func(*Event) { fired = append(fired, name) }
		return e
	}

	q.Add(mk("c", 5), 0)
	q.Add(mk("a", 5), 0)
	q.Add(mk("b", 5), 0)
	q.Add(mk("z", 10), 0)

	assert.Equal(t, uint64(5), q.Jump(0))

	q.Tick(5)
	assert.Equal(t, []string{"c", "a", "b"}, fired)

	q.Tick(10)
	assert.Equal(t, []string{"c", "a", "b", "z"}, fired)
}

func TestEventQueueRemove(t *testing.T) {
	var q EventQueue
	fired := false

	e := &Event{Timeout: 3, Callback: func(*Event) { fired = true }}
	q.Add(e, 0)
	assert.True(t, q.IsPlanned(e))

	q.Remove(e)
	assert.False(t, q.IsPlanned(e))

	q.Tick(3)
	assert.False(t, fired)
	assert.Equal(t, uint64(0), q.Jump(3))
}

func TestEventQueueInsertionMiddle(t *testing.T) {
	var q EventQueue
	var order []int

	mk := func(n int, timeout uint64) *Event {
		return &Event{Timeout: timeout, Callback: func(*Event) { order = append(order, n) }}
	}

	q.Add(mk(1, 10), 0)
	q.Add(mk(3, 30), 0)
	q.Add(mk(2, 20), 0)

	q.Tick(10)
	q.Tick(20)
	q.Tick(30)

	assert.Equal(t, []int{1, 2, 3}, order)
}
