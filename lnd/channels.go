package lnd

import (
	"context"
	"log"

	"github.com/breez/lnbind/engine"
	"github.com/breez/lnbind/lightning"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnwire"
)

func (e *Engine) ConnectOpenChannel(req *engine.OpenChannelRequest) error {
	if err := e.Connect(req.NodeID, req.Address, true); err != nil {
		return err
	}

	if req.ChannelAmountSats == 0 {
		return engine.NewNodeError(engine.ErrInvalidAmount, "channel amount must be positive")
	}

	var pushSat int64
	if req.PushToCounterpartyMsat != nil {
		push := *req.PushToCounterpartyMsat
		if push%1000 != 0 {
			return engine.NewNodeError(engine.ErrInvalidAmount, "push amount %d msat is not a whole number of satoshis", push)
		}
		if push/1000 > req.ChannelAmountSats {
			return engine.NewNodeError(engine.ErrInvalidAmount, "push amount exceeds the channel amount")
		}
		pushSat = int64(push / 1000)
	}

	lnReq := &lnrpc.OpenChannelRequest{
		NodePubkey:         req.NodeID.SerializeCompressed(),
		LocalFundingAmount: int64(req.ChannelAmountSats),
		PushSat:            pushSat,
		Private:            !req.AnnounceChannel,
	}
	if cfg := req.ChannelConfig; cfg != nil {
		lnReq.BaseFee = uint64(cfg.ForwardingFeeBaseMsat)
		lnReq.UseBaseFee = true
		lnReq.FeeRate = uint64(cfg.ForwardingFeeProportionalMillionths)
		lnReq.UseFeeRate = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	lnReq.SatPerVbyte, lnReq.TargetConf = e.feeRate(ctx)

	stream, err := e.client.OpenChannel(ctx, lnReq)
	if err != nil {
		log.Printf("LND: client.OpenChannel(%x, %v) error: %v", lnReq.NodePubkey, req.ChannelAmountSats, err)
		return nodeError(engine.ErrChannelCreationFailed, err)
	}

	// The first update is sent once the funding transaction is published.
	// The rest of the open is reported by the channel event subscription.
	update, err := stream.Recv()
	if err != nil {
		log.Printf("LND: OpenChannel(%x, %v) stream error: %v", lnReq.NodePubkey, req.ChannelAmountSats, err)
		return nodeError(engine.ErrChannelCreationFailed, err)
	}

	pending := update.GetChanPending()
	if pending == nil {
		return engine.NewNodeError(engine.ErrChannelCreationFailed, "unexpected open channel update %T", update.Update)
	}

	op, err := lightning.NewOutPoint(pending.Txid, pending.OutputIndex)
	if err != nil {
		log.Printf("LND: OpenChannel returned invalid outpoint. error: %v", err)
		return engine.NewNodeError(engine.ErrChannelCreationFailed, "%v", err)
	}

	var tempID lnwire.ChannelID
	copy(tempID[:], update.PendingChanId)
	log.Printf("LND: opened channel %v with %x, %v sat", op, lnReq.NodePubkey, req.ChannelAmountSats)
	e.events.Push(&engine.ChannelPending{
		ChannelID:                channelID(op),
		UserChannelID:            userChannelID(op),
		FormerTemporaryChannelID: tempID,
		CounterpartyNodeID:       req.NodeID,
		FundingTxo:               *op,
	})
	return nil
}

func (e *Engine) CloseChannel(id lnwire.ChannelID, counterparty *btcec.PublicKey) error {
	if err := e.checkRunning(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	ch, err := e.findChannel(ctx, id, counterparty)
	if err != nil {
		log.Printf("LND: client.ListChannels() error: %v", err)
		return nodeError(engine.ErrChannelClosingFailed, err)
	}
	if ch == nil {
		return engine.NewNodeError(engine.ErrChannelClosingFailed, "no channel %v with %x", id, counterparty.SerializeCompressed())
	}

	op, err := lightning.NewOutPointFromString(ch.ChannelPoint)
	if err != nil {
		return engine.NewNodeError(engine.ErrChannelClosingFailed, "%v", err)
	}

	closeReq := &lnrpc.CloseChannelRequest{ChannelPoint: channelPoint(op)}
	closeReq.SatPerVbyte, closeReq.TargetConf = e.feeRate(ctx)
	stream, err := e.client.CloseChannel(ctx, closeReq)
	if err != nil {
		log.Printf("LND: client.CloseChannel(%v) error: %v", op, err)
		return nodeError(engine.ErrChannelClosingFailed, err)
	}

	update, err := stream.Recv()
	if err != nil {
		log.Printf("LND: CloseChannel(%v) stream error: %v", op, err)
		return nodeError(engine.ErrChannelClosingFailed, err)
	}
	if update.GetClosePending() == nil && update.GetChanClose() == nil {
		return engine.NewNodeError(engine.ErrChannelClosingFailed, "unexpected close channel update %T", update.Update)
	}

	log.Printf("LND: closing channel %v (%v)", op, lightning.ShortChannelID(ch.ChanId))
	return nil
}

func (e *Engine) ListChannels() ([]*engine.ChannelDetails, error) {
	if err := e.checkRunning(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	open, err := e.client.ListChannels(ctx, &lnrpc.ListChannelsRequest{})
	if err != nil {
		log.Printf("LND: client.ListChannels() error: %v", err)
		return nil, nodeError(engine.ErrChannelCreationFailed, err)
	}
	pending, err := e.client.PendingChannels(ctx, &lnrpc.PendingChannelsRequest{})
	if err != nil {
		log.Printf("LND: client.PendingChannels() error: %v", err)
		return nil, nodeError(engine.ErrChannelCreationFailed, err)
	}

	var result []*engine.ChannelDetails
	for _, p := range pending.PendingOpenChannels {
		details, err := pendingChannelDetails(p)
		if err != nil {
			return nil, engine.NewNodeError(engine.ErrInvalidChannelID, "lnd returned pending channel %+v: %v", p.GetChannel(), err)
		}
		result = append(result, details)
	}
	for _, c := range open.Channels {
		details, err := openChannelDetails(c)
		if err != nil {
			return nil, engine.NewNodeError(engine.ErrInvalidChannelID, "lnd returned channel %s: %v", c.ChannelPoint, err)
		}
		result = append(result, details)
	}

	return result, nil
}

// UpdateChannelConfig sets the routing policy of a channel. lnd has no per
// channel dust exposure or force close avoidance settings, those fields are
// ignored.
func (e *Engine) UpdateChannelConfig(id lnwire.ChannelID, counterparty *btcec.PublicKey, cfg *engine.ChannelConfig) error {
	if err := e.checkRunning(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	ch, err := e.findChannel(ctx, id, counterparty)
	if err != nil {
		log.Printf("LND: client.ListChannels() error: %v", err)
		return nodeError(engine.ErrChannelConfigUpdateFailed, err)
	}
	if ch == nil {
		return engine.NewNodeError(engine.ErrChannelConfigUpdateFailed, "no channel %v with %x", id, counterparty.SerializeCompressed())
	}

	op, err := lightning.NewOutPointFromString(ch.ChannelPoint)
	if err != nil {
		return engine.NewNodeError(engine.ErrChannelConfigUpdateFailed, "%v", err)
	}

	resp, err := e.client.UpdateChannelPolicy(ctx, &lnrpc.PolicyUpdateRequest{
		Scope:         &lnrpc.PolicyUpdateRequest_ChanPoint{ChanPoint: channelPoint(op)},
		BaseFeeMsat:   int64(cfg.ForwardingFeeBaseMsat),
		FeeRatePpm:    cfg.ForwardingFeeProportionalMillionths,
		TimeLockDelta: uint32(cfg.CltvExpiryDelta),
	})
	if err != nil {
		log.Printf("LND: client.UpdateChannelPolicy(%v) error: %v", op, err)
		return nodeError(engine.ErrChannelConfigUpdateFailed, err)
	}
	if len(resp.FailedUpdates) > 0 {
		f := resp.FailedUpdates[0]
		return engine.NewNodeError(engine.ErrChannelConfigUpdateFailed, "%s (%v)", f.UpdateError, f.Reason)
	}

	return nil
}
