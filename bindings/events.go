package bindings

import (
	"log"
	"sync"

	"github.com/breez/lnbind/bindings/codes"
	"github.com/breez/lnbind/bindings/status"
	"github.com/breez/lnbind/engine"
	"github.com/google/uuid"
)

type EventType string

const (
	EventPaymentSuccessful EventType = "payment_successful"
	EventPaymentFailed     EventType = "payment_failed"
	EventPaymentReceived   EventType = "payment_received"
	EventChannelPending    EventType = "channel_pending"
	EventChannelReady      EventType = "channel_ready"
	EventChannelClosed     EventType = "channel_closed"
)

// Event is a tagged union; only the fields of the given Type are set.
type Event struct {
	Type                     EventType  `json:"type"`
	PaymentHash              *HexBytes  `json:"payment_hash,omitempty"`
	AmountMsat               *Amount    `json:"amount_msat,omitempty"`
	ChannelID                *HexBytes  `json:"channel_id,omitempty"`
	UserChannelID            *string    `json:"user_channel_id,omitempty"`
	FormerTemporaryChannelID *HexBytes  `json:"former_temporary_channel_id,omitempty"`
	CounterpartyNodeID       *PublicKey `json:"counterparty_node_id,omitempty"`
	FundingTxo               *OutPoint  `json:"funding_txo,omitempty"`
}

// DeliveredEvent is an event handed to the host together with the token that
// acknowledges it.
type DeliveredEvent struct {
	Token string `json:"token"`
	Event *Event `json:"event"`
}

type EventResult struct {
	Event *DeliveredEvent
	Err   error
}

func EventFromEngine(ev engine.Event) (*Event, error) {
	switch e := ev.(type) {
	case *engine.PaymentSuccessful:
		h := PaymentHashFromEngine(e.PaymentHash)
		return &Event{Type: EventPaymentSuccessful, PaymentHash: &h}, nil
	case *engine.PaymentFailed:
		h := PaymentHashFromEngine(e.PaymentHash)
		return &Event{Type: EventPaymentFailed, PaymentHash: &h}, nil
	case *engine.PaymentReceived:
		h := PaymentHashFromEngine(e.PaymentHash)
		amount, err := NarrowAmount("amount_msat", e.AmountMsat)
		if err != nil {
			return nil, err
		}
		return &Event{Type: EventPaymentReceived, PaymentHash: &h, AmountMsat: &amount}, nil
	case *engine.ChannelPending:
		id := ChannelIDFromEngine(e.ChannelID)
		former := ChannelIDFromEngine(e.FormerTemporaryChannelID)
		user := UserChannelIDFromEngine(e.UserChannelID)
		counterparty, err := PublicKeyFromEngine(e.CounterpartyNodeID)
		if err != nil {
			return nil, err
		}
		return &Event{
			Type:                     EventChannelPending,
			ChannelID:                &id,
			UserChannelID:            &user,
			FormerTemporaryChannelID: &former,
			CounterpartyNodeID:       &counterparty,
			FundingTxo:               OutPointFromEngine(&e.FundingTxo),
		}, nil
	case *engine.ChannelReady:
		id := ChannelIDFromEngine(e.ChannelID)
		user := UserChannelIDFromEngine(e.UserChannelID)
		return &Event{Type: EventChannelReady, ChannelID: &id, UserChannelID: &user}, nil
	case *engine.ChannelClosed:
		id := ChannelIDFromEngine(e.ChannelID)
		user := UserChannelIDFromEngine(e.UserChannelID)
		return &Event{Type: EventChannelClosed, ChannelID: &id, UserChannelID: &user}, nil
	default:
		return nil, status.Errorf(codes.MalformedEnum, "event: no boundary variant for %T", ev)
	}
}

// delivery is the head event as handed to the host. An event that cannot be
// represented on the boundary is kept with its conversion error so that
// EventHandled can still skip it.
type delivery struct {
	token string
	event *Event
	err   error
}

// eventBridge hands engine events to the host and acknowledges them. The
// head of the engine queue only changes through EventHandled, which only the
// bridge calls, so a delivered and unacknowledged event keeps its token until
// it is acknowledged.
type eventBridge struct {
	mu        sync.Mutex
	engine    engine.Engine
	delivered *delivery
	waiting   bool
	closed    bool
}

func newEventBridge(e engine.Engine) *eventBridge {
	return &eventBridge{engine: e}
}

// deliver must be called with mu held.
func (b *eventBridge) deliver(ev engine.Event) (*DeliveredEvent, error) {
	if b.delivered == nil {
		converted, err := EventFromEngine(ev)
		if err != nil {
			log.Printf("lnbind: event %T cannot be delivered: %v", ev, err)
		}
		b.delivered = &delivery{
			token: uuid.NewString(),
			event: converted,
			err:   err,
		}
	}
	if b.delivered.err != nil {
		return nil, b.delivered.err
	}
	return &DeliveredEvent{
		Token: b.delivered.token,
		Event: b.delivered.event,
	}, nil
}

func (b *eventBridge) next() (*DeliveredEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, status.Errorf(codes.NodeClosed, "node is closed")
	}
	ev := b.engine.NextEvent()
	if ev == nil {
		return nil, nil
	}
	return b.deliver(ev)
}

func (b *eventBridge) wait() <-chan EventResult {
	result := make(chan EventResult, 1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		result <- EventResult{Err: status.Errorf(codes.NodeClosed, "node is closed")}
		close(result)
		return result
	}
	if b.waiting {
		b.mu.Unlock()
		result <- EventResult{Err: status.Errorf(codes.WaitInFlight, "a wait for the next event is already in flight")}
		close(result)
		return result
	}
	b.waiting = true
	b.mu.Unlock()

	go func() {
		defer close(result)
		for {
			if b.engine.WaitNextEvent() == nil {
				b.mu.Lock()
				b.waiting = false
				b.mu.Unlock()
				result <- EventResult{Err: status.Errorf(codes.NodeClosed, "node is closed")}
				return
			}

			// The event returned by the wait may have been acknowledged in
			// the meantime, so deliver whatever is at the head now.
			b.mu.Lock()
			ev := b.engine.NextEvent()
			if ev == nil {
				b.mu.Unlock()
				continue
			}
			b.waiting = false
			d, err := b.deliver(ev)
			b.mu.Unlock()
			result <- EventResult{Event: d, Err: err}
			return
		}
	}()

	return result
}

// handled acknowledges the delivered event. An empty token acknowledges
// whatever event was delivered last, including one that could only be
// reported as an error, which is how the host skips it.
func (b *eventBridge) handled(token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return status.Errorf(codes.NodeClosed, "node is closed")
	}
	if b.delivered == nil {
		return status.Errorf(codes.NoEventDelivered, "no event was delivered since the last acknowledgment")
	}
	if token != "" && token != b.delivered.token {
		log.Printf("lnbind: event acknowledgment for token %s, but delivered event has token %s", token, b.delivered.token)
		return status.Errorf(codes.EventMismatch, "token %s does not belong to the delivered event", token)
	}
	b.engine.EventHandled()
	b.delivered = nil
	return nil
}

func (b *eventBridge) close() {
	b.mu.Lock()
	b.closed = true
	b.delivered = nil
	b.mu.Unlock()
}
