package engine

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
)

// Event is one of PaymentSuccessful, PaymentFailed, PaymentReceived,
// ChannelPending, ChannelReady or ChannelClosed.
type Event interface {
	event()
}

type PaymentSuccessful struct {
	PaymentHash lntypes.Hash
}

type PaymentFailed struct {
	PaymentHash lntypes.Hash
}

type PaymentReceived struct {
	PaymentHash lntypes.Hash
	AmountMsat  uint64
}

type ChannelPending struct {
	ChannelID                lnwire.ChannelID
	UserChannelID            UserChannelID
	FormerTemporaryChannelID lnwire.ChannelID
	CounterpartyNodeID       *btcec.PublicKey
	FundingTxo               wire.OutPoint
}

type ChannelReady struct {
	ChannelID     lnwire.ChannelID
	UserChannelID UserChannelID
}

type ChannelClosed struct {
	ChannelID     lnwire.ChannelID
	UserChannelID UserChannelID
}

func (*PaymentSuccessful) event() {}
func (*PaymentFailed) event()     {}
func (*PaymentReceived) event()   {}
func (*ChannelPending) event()    {}
func (*ChannelReady) event()      {}
func (*ChannelClosed) event()     {}
