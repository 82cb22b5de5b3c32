package engine

import (
	"net"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
)

// PaymentSecret is the 32 byte secret included in an invoice to prevent
// probing by intermediate nodes.
type PaymentSecret [32]byte

// UserChannelID is a 128 bit big-endian identifier assigned to a channel by
// the engine's user.
type UserChannelID [16]byte

type ChannelConfig struct {
	ForwardingFeeProportionalMillionths uint32
	ForwardingFeeBaseMsat               uint32
	CltvExpiryDelta                     uint16
	MaxDustHTLCExposureMsat             uint64
	ForceCloseAvoidanceMaxFeeSatoshis   uint64
}

type PaymentDirection int

const (
	PaymentDirectionInbound PaymentDirection = iota
	PaymentDirectionOutbound
)

var AllPaymentDirections = []PaymentDirection{
	PaymentDirectionInbound,
	PaymentDirectionOutbound,
}

type PaymentStatus int

const (
	PaymentStatusPending PaymentStatus = iota
	PaymentStatusSucceeded
	PaymentStatusFailed
)

var AllPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusSucceeded,
	PaymentStatusFailed,
}

type PaymentDetails struct {
	Hash       lntypes.Hash
	Preimage   *lntypes.Preimage
	Secret     *PaymentSecret
	AmountMsat *uint64
	Direction  PaymentDirection
	Status     PaymentStatus
}

type PeerDetails struct {
	NodeID      *btcec.PublicKey
	Address     net.Addr
	IsPersisted bool
	IsConnected bool
}

type ChannelDetails struct {
	ChannelID                    lnwire.ChannelID
	CounterpartyNodeID           *btcec.PublicKey
	FundingTxo                   *wire.OutPoint
	ChannelValueSats             uint64
	UnspendablePunishmentReserve *uint64
	UserChannelID                UserChannelID
	FeerateSatPer1000Weight      uint32
	BalanceMsat                  uint64
	OutboundCapacityMsat         uint64
	InboundCapacityMsat          uint64
	ConfirmationsRequired        *uint32
	Confirmations                *uint32
	IsOutbound                   bool
	IsChannelReady               bool
	IsUsable                     bool
	IsPublic                     bool
	CltvExpiryDelta              *uint16
}
