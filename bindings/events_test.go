package bindings

import (
	"testing"
	"time"

	"github.com/breez/lnbind/bindings/codes"
	"github.com/breez/lnbind/bindings/status"
	"github.com/breez/lnbind/engine"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan EventResult) EventResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return EventResult{}
	}
}

// paySelf queues a PaymentReceived and a PaymentSuccessful event.
func paySelf(t *testing.T, node *Node) HexBytes {
	invoice, err := node.ReceivePayment(1000, "", 3600)
	require.NoError(t, err)
	hash, err := node.SendPayment(invoice)
	require.NoError(t, err)
	return hash
}

func TestNextEventIsStableUntilHandled(t *testing.T) {
	node, _ := newRunningNode(t, reachable)

	ev, err := node.NextEvent()
	require.NoError(t, err)
	assert.Nil(t, ev)
	assert.Equal(t, codes.NoEventDelivered, status.Code(node.EventHandled()))

	hash := paySelf(t, node)

	first, err := node.NextEvent()
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, EventPaymentReceived, first.Event.Type)
	assert.Equal(t, hash, *first.Event.PaymentHash)
	require.NotNil(t, first.Event.AmountMsat)
	assert.Equal(t, Amount(1000), *first.Event.AmountMsat)

	again, err := node.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, first.Token, again.Token)
	assert.Equal(t, first.Event, again.Event)

	require.NoError(t, node.EventHandled())
	assert.Equal(t, codes.NoEventDelivered, status.Code(node.EventHandled()))

	second, err := node.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSuccessful, second.Event.Type)
	assert.NotEqual(t, first.Token, second.Token)
	require.NoError(t, node.EventHandled())

	ev, err = node.NextEvent()
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestEventHandledForChecksToken(t *testing.T) {
	node, eng := newRunningNode(t, reachable)
	paySelf(t, node)

	ev, err := node.NextEvent()
	require.NoError(t, err)

	assert.Equal(t, codes.EventMismatch, status.Code(node.EventHandledFor("not-the-token")))
	assert.Equal(t, codes.MalformedValue, status.Code(node.EventHandledFor("")))
	assert.Equal(t, 2, eng.PendingEvents())

	require.NoError(t, node.EventHandledFor(ev.Token))
	assert.Equal(t, 1, eng.PendingEvents())
	assert.Equal(t, codes.NoEventDelivered, status.Code(node.EventHandledFor(ev.Token)))
}

func TestUndeliverableEventIsSkippedByEventHandled(t *testing.T) {
	node, eng := newRunningNode(t, reachable)
	eng.QueueEvent(&engine.PaymentReceived{AmountMsat: uint64(MaxAmount) + 1})
	eng.QueueEvent(&engine.ChannelReady{})

	// The event keeps failing until it is acknowledged.
	_, err := node.NextEvent()
	assert.Equal(t, codes.OutOfRange, status.Code(err))
	r := receive(t, node.WaitNextEvent())
	assert.Equal(t, codes.OutOfRange, status.Code(r.Err))
	assert.Nil(t, r.Event)
	assert.Equal(t, 2, eng.PendingEvents())

	require.NoError(t, node.EventHandled())
	assert.Equal(t, 1, eng.PendingEvents())

	ev, err := node.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, EventChannelReady, ev.Event.Type)
}

func TestWaitNextEventBlocksUntilEvent(t *testing.T) {
	node, _ := newRunningNode(t, reachable)

	ch := node.WaitNextEvent()
	select {
	case r := <-ch:
		t.Fatalf("wait resolved early: %+v", r)
	case <-time.After(50 * time.Millisecond):
	}

	// Other calls make progress while the wait is in flight.
	hash := paySelf(t, node)

	r := receive(t, ch)
	require.NoError(t, r.Err)
	assert.Equal(t, EventPaymentReceived, r.Event.Event.Type)
	assert.Equal(t, hash, *r.Event.Event.PaymentHash)

	next, err := node.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, r.Event.Token, next.Token)
	require.NoError(t, node.EventHandledFor(r.Event.Token))
}

func TestWaitNextEventWithQueuedEvent(t *testing.T) {
	node, _ := newRunningNode(t, reachable)
	paySelf(t, node)

	ev, err := node.NextEvent()
	require.NoError(t, err)

	r := receive(t, node.WaitNextEvent())
	require.NoError(t, r.Err)
	assert.Equal(t, ev.Token, r.Event.Token)
}

func TestSingleWaitInFlight(t *testing.T) {
	node, _ := newRunningNode(t, reachable)

	first := node.WaitNextEvent()
	second := receive(t, node.WaitNextEvent())
	assert.Equal(t, codes.WaitInFlight, status.Code(second.Err))

	paySelf(t, node)
	r := receive(t, first)
	require.NoError(t, r.Err)

	// Once resolved, a new wait may start.
	r = receive(t, node.WaitNextEvent())
	require.NoError(t, r.Err)
}

func TestCloseResolvesWait(t *testing.T) {
	node, _ := newRunningNode(t, reachable)
	ch := node.WaitNextEvent()
	require.NoError(t, node.Close())

	r := receive(t, ch)
	assert.Equal(t, codes.NodeClosed, status.Code(r.Err))

	r = receive(t, node.WaitNextEvent())
	assert.Equal(t, codes.NodeClosed, status.Code(r.Err))
}

func TestEventsAreDeliveredWhileStopped(t *testing.T) {
	node, _ := newRunningNode(t, reachable)
	paySelf(t, node)
	require.NoError(t, node.Stop())

	ev, err := node.NextEvent()
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.NoError(t, node.EventHandled())
}

func TestEventFromEngine(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	var op wire.OutPoint
	op.Index = 1
	var user engine.UserChannelID
	user[15] = 7

	ev, err := EventFromEngine(&engine.ChannelPending{
		UserChannelID:      user,
		CounterpartyNodeID: priv.PubKey(),
		FundingTxo:         op,
	})
	require.NoError(t, err)
	assert.Equal(t, EventChannelPending, ev.Type)
	assert.Equal(t, "7", *ev.UserChannelID)
	assert.Equal(t, uint32(1), ev.FundingTxo.Vout)
	assert.Nil(t, ev.PaymentHash)

	_, err = EventFromEngine(&engine.PaymentReceived{AmountMsat: uint64(MaxAmount) + 1})
	assert.Equal(t, codes.OutOfRange, status.Code(err))

	_, err = EventFromEngine(&engine.ChannelPending{})
	assert.Error(t, err)

	_, err = EventFromEngine(nil)
	assert.Equal(t, codes.MalformedEnum, status.Code(err))
}
