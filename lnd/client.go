package lnd

import (
	"context"
	"crypto/x509"
	"fmt"
	"log"
	"time"

	"github.com/breez/lnbind/config"
	"github.com/breez/lnbind/engine"
	"github.com/breez/lnbind/lightning"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lntypes"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"
)

// dial connects to the lnd grpc api. macaroonHex may be empty, which is only
// useful for the state and wallet unlocker services.
func dial(conf *config.LndConfig, macaroonHex string) (*grpc.ClientConn, error) {
	certPEM, err := conf.CertPEM()
	if err != nil {
		return nil, err
	}

	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(certPEM) {
		return nil, fmt.Errorf("credentials: failed to append certificates")
	}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(credentials.NewClientTLSFromCert(cp, "")),
	}
	if macaroonHex != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(NewMacaroonCredential(macaroonHex)))
	}

	conn, err := grpc.Dial(conf.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LND gRPC: %w", err)
	}

	return conn, nil
}

func isCanceled(err error) bool {
	s, ok := status.FromError(err)
	return ok && s.Code() == codes.Canceled
}

func (e *Engine) startListeners() {
	e.listenerCtx, e.listenerCancel = context.WithCancel(context.Background())
	e.listeners.Add(2)
	go func() {
		defer e.listeners.Done()
		e.listenInvoices(e.listenerCtx)
	}()
	go func() {
		defer e.listeners.Done()
		e.listenChannelEvents(e.listenerCtx)
	}()
}

func (e *Engine) stopListeners() {
	if e.listenerCancel != nil {
		e.listenerCancel()
	}
	e.listeners.Wait()
	e.listenerCancel = nil
}

func (e *Engine) listenInvoices(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		sub, err := e.client.SubscribeInvoices(ctx, &lnrpc.InvoiceSubscription{
			SettleIndex: e.settleIndex,
		})
		if err != nil {
			log.Printf("LND: SubscribeInvoices: %v", err)
			<-time.After(time.Second)
			continue
		}

		for {
			if ctx.Err() != nil {
				return
			}

			inv, err := sub.Recv()
			if err != nil {
				if isCanceled(err) {
					log.Printf("LND: listenInvoices: Got code canceled. Break.")
					break
				}

				log.Printf("LND: unexpected error in listenInvoices: %v", err)
				break
			}

			if inv.State != lnrpc.Invoice_SETTLED {
				continue
			}

			if inv.SettleIndex > e.settleIndex {
				e.settleIndex = inv.SettleIndex
			}

			hash, err := lntypes.MakeHash(inv.RHash)
			if err != nil {
				log.Printf("LND: listenInvoices: invalid payment hash %x: %v", inv.RHash, err)
				continue
			}

			e.events.Push(&engine.PaymentReceived{
				PaymentHash: hash,
				AmountMsat:  uint64(inv.AmtPaidMsat),
			})
		}

		<-time.After(time.Second)
	}
}

func (e *Engine) listenChannelEvents(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		sub, err := e.client.SubscribeChannelEvents(
			ctx,
			&lnrpc.ChannelEventSubscription{},
		)
		if err != nil {
			log.Printf("LND: listenChannelEvents: SubscribeChannelEvents: %v", err)
			<-time.After(time.Second)
			continue
		}

		for {
			if ctx.Err() != nil {
				return
			}

			msg, err := sub.Recv()
			if err != nil {
				if isCanceled(err) {
					log.Printf("LND: listenChannelEvents: Got code canceled. Break.")
					break
				}

				log.Printf("LND: unexpected error in listenChannelEvents: %v", err)
				break
			}

			e.handleChannelEvent(ctx, msg)
		}

		<-time.After(time.Second)
	}
}

func (e *Engine) handleChannelEvent(ctx context.Context, msg *lnrpc.ChannelEventUpdate) {
	switch msg.Type {
	case lnrpc.ChannelEventUpdate_PENDING_OPEN_CHANNEL:
		p := msg.GetPendingOpenChannel()
		op, err := lightning.NewOutPoint(p.GetTxid(), p.GetOutputIndex())
		if err != nil {
			log.Printf("LND: listenChannelEvents: invalid pending channel %+v: %v", p, err)
			return
		}
		e.remotePending(ctx, op.String())

	case lnrpc.ChannelEventUpdate_OPEN_CHANNEL:
		ch := msg.GetOpenChannel()
		op, err := lightning.NewOutPointFromString(ch.GetChannelPoint())
		if err != nil {
			log.Printf("LND: listenChannelEvents: invalid channel point %q: %v", ch.GetChannelPoint(), err)
			return
		}
		e.events.Push(&engine.ChannelReady{
			ChannelID:     channelID(op),
			UserChannelID: userChannelID(op),
		})

	case lnrpc.ChannelEventUpdate_CLOSED_CHANNEL:
		ch := msg.GetClosedChannel()
		op, err := lightning.NewOutPointFromString(ch.GetChannelPoint())
		if err != nil {
			log.Printf("LND: listenChannelEvents: invalid channel point %q: %v", ch.GetChannelPoint(), err)
			return
		}
		log.Printf("LND: channel %v closed (%v)", lightning.ShortChannelID(ch.GetChanId()), ch.GetCloseType())
		e.events.Push(&engine.ChannelClosed{
			ChannelID:     channelID(op),
			UserChannelID: userChannelID(op),
		})
	}
}

// remotePending emits ChannelPending for channels opened by the
// counterparty. Channels opened by this node are reported by
// ConnectOpenChannel, which knows the temporary channel id.
func (e *Engine) remotePending(ctx context.Context, point string) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	resp, err := e.client.PendingChannels(callCtx, &lnrpc.PendingChannelsRequest{})
	if err != nil {
		log.Printf("LND: PendingChannels error: %v", err)
		return
	}

	for _, p := range resp.PendingOpenChannels {
		ch := p.GetChannel()
		if ch.GetChannelPoint() != point {
			continue
		}
		if ch.Initiator == lnrpc.Initiator_INITIATOR_LOCAL {
			return
		}

		op, err := lightning.NewOutPointFromString(point)
		if err != nil {
			log.Printf("LND: invalid pending channel point %q: %v", point, err)
			return
		}
		counterparty, err := parsePubKey(ch.RemoteNodePub)
		if err != nil {
			log.Printf("LND: invalid pending channel counterparty %q: %v", ch.RemoteNodePub, err)
			return
		}

		id := channelID(op)
		e.events.Push(&engine.ChannelPending{
			ChannelID:                id,
			UserChannelID:            userChannelID(op),
			FormerTemporaryChannelID: id,
			CounterpartyNodeID:       counterparty,
			FundingTxo:               *op,
		})
		return
	}

	log.Printf("LND: pending channel %s not found", point)
}

func parsePubKey(s string) (*btcec.PublicKey, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, err
	}
	return btcec.ParsePubKey(b)
}
