package engine

import (
	"net"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
)

// Factory builds an Engine from a fully staged configuration. Errors returned
// by Build are *BuildError.
type Factory interface {
	Build(cfg *Config) (Engine, error)
}

// Engine is a running (or runnable) self-custodial lightning node. All errors
// returned by an Engine after it was built are *NodeError.
type Engine interface {
	Start() error
	Stop() error
	SyncWallets() error
	// Close releases every resource held by the engine. The engine is not
	// usable afterwards.
	Close() error

	NodeID() *btcec.PublicKey
	// ListeningAddress returns nil if the engine does not listen for
	// incoming connections.
	ListeningAddress() net.Addr

	NewOnchainAddress() (btcutil.Address, error)
	SpendableOnchainBalanceSats() (uint64, error)
	TotalOnchainBalanceSats() (uint64, error)

	// ReceivePayment and ReceiveVariableAmountPayment return a bolt11
	// encoded invoice.
	ReceivePayment(amountMsat uint64, description string, expirySecs uint32) (string, error)
	ReceiveVariableAmountPayment(description string, expirySecs uint32) (string, error)
	SendPayment(invoice string) (lntypes.Hash, error)
	SendPaymentUsingAmount(invoice string, amountMsat uint64) (lntypes.Hash, error)
	SendSpontaneousPayment(amountMsat uint64, nodeID *btcec.PublicKey) (lntypes.Hash, error)
	ListPayments() ([]*PaymentDetails, error)
	// Payment returns nil, nil if the payment is unknown.
	Payment(hash lntypes.Hash) (*PaymentDetails, error)
	RemovePayment(hash lntypes.Hash) error

	Connect(nodeID *btcec.PublicKey, address net.Addr, persist bool) error
	Disconnect(nodeID *btcec.PublicKey) error
	ListPeers() ([]*PeerDetails, error)
	ConnectOpenChannel(req *OpenChannelRequest) error
	CloseChannel(channelID lnwire.ChannelID, counterparty *btcec.PublicKey) error
	ListChannels() ([]*ChannelDetails, error)
	UpdateChannelConfig(channelID lnwire.ChannelID, counterparty *btcec.PublicKey, config *ChannelConfig) error

	SignMessage(msg []byte) (string, error)
	VerifySignature(msg []byte, signature string, pubkey *btcec.PublicKey) bool

	// The event methods are safe to call concurrently with each other and
	// with the methods above.

	// NextEvent returns the next queued event without blocking, or nil. The
	// same event is returned until EventHandled is called.
	NextEvent() Event
	// WaitNextEvent blocks until an event is available. It returns nil once
	// the engine is closed.
	WaitNextEvent() Event
	// EventHandled removes the head of the event queue.
	EventHandled()
}

type OpenChannelRequest struct {
	NodeID                 *btcec.PublicKey
	Address                net.Addr
	ChannelAmountSats      uint64
	PushToCounterpartyMsat *uint64
	ChannelConfig          *ChannelConfig
	AnnounceChannel        bool
}
