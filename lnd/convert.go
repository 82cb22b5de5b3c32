package lnd

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"net"
	"net/netip"
	"strings"

	"github.com/breez/lnbind/engine"
	"github.com/breez/lnbind/lightning"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
)

func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return b, nil
}

// lndNetwork returns the network name lnd reports in GetInfo for params.
func lndNetwork(params *chaincfg.Params) (string, error) {
	switch params.Name {
	case chaincfg.MainNetParams.Name:
		return "mainnet", nil
	case chaincfg.TestNet3Params.Name:
		return "testnet", nil
	case chaincfg.RegressionNetParams.Name:
		return "regtest", nil
	case chaincfg.SigNetParams.Name:
		return "signet", nil
	case chaincfg.SimNetParams.Name:
		return "simnet", nil
	default:
		return "", fmt.Errorf("unsupported network %q", params.Name)
	}
}

func channelID(op *wire.OutPoint) lnwire.ChannelID {
	return lnwire.NewChanIDFromOutPoint(op)
}

// userChannelID is derived from the channel point, lnd has no notion of a
// user assigned channel id.
func userChannelID(op *wire.OutPoint) engine.UserChannelID {
	var id engine.UserChannelID
	h := sha256.Sum256([]byte(op.String()))
	copy(id[:], h[:len(id)])
	return id
}

func channelPoint(op *wire.OutPoint) *lnrpc.ChannelPoint {
	return &lnrpc.ChannelPoint{
		FundingTxid: &lnrpc.ChannelPoint_FundingTxidBytes{
			FundingTxidBytes: op.Hash[:],
		},
		OutputIndex: op.Index,
	}
}

// listeningAddress picks the first ip address from lnd's advertised uris,
// falling back to the configured address.
func listeningAddress(uris []string, configured net.Addr) net.Addr {
	for _, uri := range uris {
		_, hostport, found := strings.Cut(uri, "@")
		if !found {
			continue
		}
		addr, err := netip.ParseAddrPort(hostport)
		if err != nil {
			continue
		}
		return net.TCPAddrFromAddrPort(addr)
	}

	return configured
}

func parseNetAddr(s string) (net.Addr, error) {
	addr, err := netip.ParseAddrPort(s)
	if err != nil {
		return nil, err
	}
	return net.TCPAddrFromAddrPort(addr), nil
}

func sats(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}

func spendableMsat(balanceSat, reserveSat int64) uint64 {
	if balanceSat <= reserveSat {
		return 0
	}
	return uint64(balanceSat-reserveSat) * 1000
}

func openChannelDetails(c *lnrpc.Channel) (*engine.ChannelDetails, error) {
	op, err := lightning.NewOutPointFromString(c.ChannelPoint)
	if err != nil {
		return nil, err
	}
	counterparty, err := parsePubKey(c.RemotePubkey)
	if err != nil {
		return nil, err
	}

	var localReserve, remoteReserve int64
	if c.LocalConstraints != nil {
		localReserve = int64(c.LocalConstraints.ChanReserveSat)
	}
	if c.RemoteConstraints != nil {
		remoteReserve = int64(c.RemoteConstraints.ChanReserveSat)
	}
	reserve := uint64(localReserve)

	return &engine.ChannelDetails{
		ChannelID:                    channelID(op),
		CounterpartyNodeID:           counterparty,
		FundingTxo:                   op,
		ChannelValueSats:             sats(c.Capacity),
		UnspendablePunishmentReserve: &reserve,
		UserChannelID:                userChannelID(op),
		FeerateSatPer1000Weight:      uint32(sats(c.FeePerKw)),
		BalanceMsat:                  sats(c.LocalBalance) * 1000,
		OutboundCapacityMsat:         spendableMsat(c.LocalBalance, localReserve),
		InboundCapacityMsat:          spendableMsat(c.RemoteBalance, remoteReserve),
		IsOutbound:                   c.Initiator,
		IsChannelReady:               true,
		IsUsable:                     c.Active,
		IsPublic:                     !c.Private,
	}, nil
}

func pendingChannelDetails(p *lnrpc.PendingChannelsResponse_PendingOpenChannel) (*engine.ChannelDetails, error) {
	c := p.GetChannel()
	if c == nil {
		return nil, fmt.Errorf("pending channel without details")
	}
	op, err := lightning.NewOutPointFromString(c.ChannelPoint)
	if err != nil {
		return nil, err
	}
	counterparty, err := parsePubKey(c.RemoteNodePub)
	if err != nil {
		return nil, err
	}

	reserve := sats(c.LocalChanReserveSat)
	var confirmations uint32
	return &engine.ChannelDetails{
		ChannelID:                    channelID(op),
		CounterpartyNodeID:           counterparty,
		FundingTxo:                   op,
		ChannelValueSats:             sats(c.Capacity),
		UnspendablePunishmentReserve: &reserve,
		UserChannelID:                userChannelID(op),
		FeerateSatPer1000Weight:      uint32(sats(p.FeePerKw)),
		BalanceMsat:                  sats(c.LocalBalance) * 1000,
		Confirmations:                &confirmations,
		IsOutbound:                   c.Initiator == lnrpc.Initiator_INITIATOR_LOCAL,
		IsPublic:                     !c.Private,
	}, nil
}

func inboundPayment(inv *lnrpc.Invoice) (*engine.PaymentDetails, error) {
	hash, err := lntypes.MakeHash(inv.RHash)
	if err != nil {
		return nil, err
	}

	p := &engine.PaymentDetails{
		Hash:      hash,
		Direction: engine.PaymentDirectionInbound,
	}

	switch inv.State {
	case lnrpc.Invoice_SETTLED:
		p.Status = engine.PaymentStatusSucceeded
		preimage, err := lntypes.MakePreimage(inv.RPreimage)
		if err != nil {
			return nil, err
		}
		p.Preimage = &preimage
	case lnrpc.Invoice_CANCELED:
		p.Status = engine.PaymentStatusFailed
	default:
		p.Status = engine.PaymentStatusPending
	}

	if len(inv.PaymentAddr) == len(engine.PaymentSecret{}) {
		var secret engine.PaymentSecret
		copy(secret[:], inv.PaymentAddr)
		p.Secret = &secret
	}

	switch {
	case inv.AmtPaidMsat > 0:
		amount := uint64(inv.AmtPaidMsat)
		p.AmountMsat = &amount
	case inv.ValueMsat > 0:
		amount := uint64(inv.ValueMsat)
		p.AmountMsat = &amount
	}

	return p, nil
}

func outboundPayment(pay *lnrpc.Payment, network *chaincfg.Params) (*engine.PaymentDetails, error) {
	hash, err := lntypes.MakeHashFromStr(pay.PaymentHash)
	if err != nil {
		return nil, err
	}

	p := &engine.PaymentDetails{
		Hash:      hash,
		Direction: engine.PaymentDirectionOutbound,
	}

	switch pay.Status {
	case lnrpc.Payment_SUCCEEDED:
		p.Status = engine.PaymentStatusSucceeded
		preimage, err := lntypes.MakePreimageFromStr(pay.PaymentPreimage)
		if err != nil {
			return nil, err
		}
		p.Preimage = &preimage
	case lnrpc.Payment_FAILED:
		p.Status = engine.PaymentStatusFailed
	default:
		p.Status = engine.PaymentStatusPending
	}

	if pay.ValueMsat > 0 {
		amount := uint64(pay.ValueMsat)
		p.AmountMsat = &amount
	}

	if pay.PaymentRequest != "" {
		inv, err := zpay32.Decode(pay.PaymentRequest, network)
		if err != nil {
			log.Printf("LND: payment %v has an undecodable payment request: %v", hash, err)
		} else if inv.PaymentAddr != nil {
			secret := engine.PaymentSecret(*inv.PaymentAddr)
			p.Secret = &secret
		}
	}

	return p, nil
}
