package engine

import (
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_Order(t *testing.T) {
	q := NewEventQueue()
	assert.Nil(t, q.Next())

	first := &PaymentSuccessful{PaymentHash: lntypes.Hash{1}}
	second := &PaymentFailed{PaymentHash: lntypes.Hash{2}}
	q.Push(first)
	q.Push(second)
	assert.Equal(t, 2, q.Len())

	// Next doesn't consume.
	assert.Same(t, first, q.Next())
	assert.Same(t, first, q.Next())

	q.Handled()
	assert.Same(t, second, q.Next())
	q.Handled()
	assert.Nil(t, q.Next())

	// Handled on an empty queue is a no-op.
	q.Handled()
	assert.Equal(t, 0, q.Len())
}

func TestEventQueue_WaitBlocksUntilPush(t *testing.T) {
	q := NewEventQueue()
	got := make(chan Event, 1)
	go func() {
		got <- q.Wait()
	}()

	select {
	case <-got:
		t.Fatal("wait returned on an empty queue")
	case <-time.After(50 * time.Millisecond):
	}

	ev := &ChannelReady{}
	q.Push(ev)
	select {
	case e := <-got:
		assert.Same(t, ev, e)
	case <-time.After(time.Second):
		t.Fatal("wait did not return after push")
	}
	assert.Equal(t, 1, q.Len())
}

func TestEventQueue_CloseReleasesWaiters(t *testing.T) {
	q := NewEventQueue()
	got := make(chan Event, 1)
	go func() {
		got <- q.Wait()
	}()

	q.Close()
	select {
	case e := <-got:
		assert.Nil(t, e)
	case <-time.After(time.Second):
		t.Fatal("wait did not return after close")
	}

	q.Push(&ChannelClosed{})
	require.Equal(t, 0, q.Len())
	assert.Nil(t, q.Wait())
}
