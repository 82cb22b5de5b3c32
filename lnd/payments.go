package lnd

import (
	"context"
	"crypto/rand"
	"log"

	"github.com/breez/lnbind/engine"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/record"
	"github.com/lightningnetwork/lnd/zpay32"
)

const (
	paymentTimeoutSecs = 60
	minFeeLimitMsat    = 5_000
	listPageSize       = 500
)

// feeLimitMsat allows 1% routing fees, but at least minFeeLimitMsat.
func feeLimitMsat(amountMsat uint64) int64 {
	limit := amountMsat / 100
	if limit < minFeeLimitMsat {
		limit = minFeeLimitMsat
	}
	return int64(limit)
}

func (e *Engine) addInvoice(amountMsat uint64, description string, expirySecs uint32) (string, error) {
	if err := e.checkRunning(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	resp, err := e.client.AddInvoice(ctx, &lnrpc.Invoice{
		Memo:      description,
		ValueMsat: int64(amountMsat),
		Expiry:    int64(expirySecs),
	})
	if err != nil {
		log.Printf("LND: client.AddInvoice(%v) error: %v", amountMsat, err)
		return "", nodeError(engine.ErrInvoiceCreationFailed, err)
	}
	return resp.PaymentRequest, nil
}

func (e *Engine) ReceivePayment(amountMsat uint64, description string, expirySecs uint32) (string, error) {
	if amountMsat == 0 {
		return "", engine.NewNodeError(engine.ErrInvalidAmount, "amount must be positive")
	}
	return e.addInvoice(amountMsat, description, expirySecs)
}

func (e *Engine) ReceiveVariableAmountPayment(description string, expirySecs uint32) (string, error) {
	return e.addInvoice(0, description, expirySecs)
}

func (e *Engine) decodeInvoice(invoice string) (*zpay32.Invoice, lntypes.Hash, error) {
	inv, err := zpay32.Decode(invoice, e.cfg.Network)
	if err != nil {
		return nil, lntypes.Hash{}, engine.NewNodeError(engine.ErrInvalidInvoice, "%v", err)
	}
	if inv.PaymentHash == nil {
		return nil, lntypes.Hash{}, engine.NewNodeError(engine.ErrInvalidInvoice, "invoice has no payment hash")
	}
	return inv, lntypes.Hash(*inv.PaymentHash), nil
}

func (e *Engine) SendPayment(invoice string) (lntypes.Hash, error) {
	if err := e.checkRunning(); err != nil {
		return lntypes.Hash{}, err
	}
	inv, hash, err := e.decodeInvoice(invoice)
	if err != nil {
		return hash, err
	}
	if inv.MilliSat == nil {
		return hash, engine.NewNodeError(engine.ErrInvalidInvoice, "invoice has no amount, use SendPaymentUsingAmount")
	}
	if *inv.MilliSat == 0 {
		return hash, engine.NewNodeError(engine.ErrInvalidAmount, "invoice amount is zero")
	}

	return e.sendPayment(hash, &routerrpc.SendPaymentRequest{
		PaymentRequest: invoice,
		TimeoutSeconds: paymentTimeoutSecs,
		FeeLimitMsat:   feeLimitMsat(uint64(*inv.MilliSat)),
	})
}

func (e *Engine) SendPaymentUsingAmount(invoice string, amountMsat uint64) (lntypes.Hash, error) {
	if err := e.checkRunning(); err != nil {
		return lntypes.Hash{}, err
	}
	inv, hash, err := e.decodeInvoice(invoice)
	if err != nil {
		return hash, err
	}
	if amountMsat == 0 {
		return hash, engine.NewNodeError(engine.ErrInvalidAmount, "amount must be positive")
	}

	req := &routerrpc.SendPaymentRequest{
		PaymentRequest: invoice,
		TimeoutSeconds: paymentTimeoutSecs,
		FeeLimitMsat:   feeLimitMsat(amountMsat),
	}
	if inv.MilliSat != nil {
		invoiceMsat := uint64(*inv.MilliSat)
		if amountMsat < invoiceMsat {
			return hash, engine.NewNodeError(engine.ErrInvalidAmount, "amount %d msat is below the invoice amount %d msat", amountMsat, invoiceMsat)
		}
		// lnd pays exactly the invoice amount if the invoice has one.
		if amountMsat > invoiceMsat {
			return hash, engine.NewNodeError(engine.ErrInvalidAmount, "lnd cannot overpay invoice of %d msat", invoiceMsat)
		}
	} else {
		req.AmtMsat = int64(amountMsat)
	}

	return e.sendPayment(hash, req)
}

func (e *Engine) SendSpontaneousPayment(amountMsat uint64, nodeID *btcec.PublicKey) (lntypes.Hash, error) {
	if err := e.checkRunning(); err != nil {
		return lntypes.Hash{}, err
	}
	if amountMsat == 0 {
		return lntypes.Hash{}, engine.NewNodeError(engine.ErrInvalidAmount, "amount must be positive")
	}
	if nodeID.IsEqual(e.nodeID) {
		return lntypes.Hash{}, engine.NewNodeError(engine.ErrInvalidPublicKey, "cannot pay self spontaneously")
	}

	var preimage lntypes.Preimage
	if _, err := rand.Read(preimage[:]); err != nil {
		return lntypes.Hash{}, engine.NewNodeError(engine.ErrPaymentSendingFailed, "failed to generate preimage: %v", err)
	}
	hash := preimage.Hash()

	return e.sendPayment(hash, &routerrpc.SendPaymentRequest{
		Dest:              nodeID.SerializeCompressed(),
		AmtMsat:           int64(amountMsat),
		PaymentHash:       hash[:],
		DestCustomRecords: map[uint64][]byte{record.KeySendType: preimage[:]},
		TimeoutSeconds:    paymentTimeoutSecs,
		FeeLimitMsat:      feeLimitMsat(amountMsat),
	})
}

// sendPayment returns once lnd accepted the payment. The final result is
// delivered as PaymentSuccessful or PaymentFailed event.
func (e *Engine) sendPayment(hash lntypes.Hash, req *routerrpc.SendPaymentRequest) (lntypes.Hash, error) {
	ctx, cancel := context.WithCancel(e.paymentCtx)
	stream, err := e.router.SendPaymentV2(ctx, req)
	if err != nil {
		cancel()
		log.Printf("LND: router.SendPaymentV2(%v) error: %v", hash, err)
		return hash, nodeError(engine.ErrPaymentSendingFailed, err)
	}

	first, err := stream.Recv()
	if err != nil {
		cancel()
		log.Printf("LND: SendPaymentV2(%v) stream error: %v", hash, err)
		return hash, nodeError(engine.ErrPaymentSendingFailed, err)
	}

	switch first.Status {
	case lnrpc.Payment_FAILED:
		cancel()
		return hash, engine.NewNodeError(engine.ErrPaymentSendingFailed, "payment failed: %v", first.FailureReason)
	case lnrpc.Payment_SUCCEEDED:
		cancel()
		e.events.Push(&engine.PaymentSuccessful{PaymentHash: hash})
		return hash, nil
	}

	e.payments.Add(1)
	go func() {
		defer e.payments.Done()
		defer cancel()
		e.trackPayment(hash, stream)
	}()
	return hash, nil
}

func (e *Engine) trackPayment(hash lntypes.Hash, stream routerrpc.Router_SendPaymentV2Client) {
	for {
		update, err := stream.Recv()
		if err != nil {
			if !isCanceled(err) {
				log.Printf("LND: lost track of payment %v: %v", hash, err)
			}
			return
		}

		switch update.Status {
		case lnrpc.Payment_SUCCEEDED:
			e.events.Push(&engine.PaymentSuccessful{PaymentHash: hash})
			return
		case lnrpc.Payment_FAILED:
			log.Printf("LND: payment %v failed: %v", hash, update.FailureReason)
			e.events.Push(&engine.PaymentFailed{PaymentHash: hash})
			return
		}
	}
}

func (e *Engine) listInvoices(ctx context.Context) ([]*lnrpc.Invoice, error) {
	var result []*lnrpc.Invoice
	var offset uint64
	for {
		resp, err := e.client.ListInvoices(ctx, &lnrpc.ListInvoiceRequest{
			IndexOffset:    offset,
			NumMaxInvoices: listPageSize,
		})
		if err != nil {
			return nil, err
		}
		result = append(result, resp.Invoices...)
		if len(resp.Invoices) < listPageSize {
			return result, nil
		}
		offset = resp.LastIndexOffset
	}
}

func (e *Engine) listPayments(ctx context.Context) ([]*lnrpc.Payment, error) {
	var result []*lnrpc.Payment
	var offset uint64
	for {
		resp, err := e.client.ListPayments(ctx, &lnrpc.ListPaymentsRequest{
			IncludeIncomplete: true,
			IndexOffset:       offset,
			MaxPayments:       listPageSize,
		})
		if err != nil {
			return nil, err
		}
		result = append(result, resp.Payments...)
		if len(resp.Payments) < listPageSize {
			return result, nil
		}
		offset = resp.LastIndexOffset
	}
}

// ListPayments lists invoices created by this node followed by outgoing
// payments, both oldest first.
func (e *Engine) ListPayments() ([]*engine.PaymentDetails, error) {
	if err := e.checkRunning(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	invoices, err := e.listInvoices(ctx)
	if err != nil {
		log.Printf("LND: client.ListInvoices() error: %v", err)
		return nil, nodeError(engine.ErrPersistenceFailed, err)
	}
	payments, err := e.listPayments(ctx)
	if err != nil {
		log.Printf("LND: client.ListPayments() error: %v", err)
		return nil, nodeError(engine.ErrPersistenceFailed, err)
	}

	result := make([]*engine.PaymentDetails, 0, len(invoices)+len(payments))
	for _, inv := range invoices {
		p, err := inboundPayment(inv)
		if err != nil {
			return nil, engine.NewNodeError(engine.ErrInvalidPaymentHash, "lnd returned invoice %x: %v", inv.RHash, err)
		}
		result = append(result, p)
	}
	for _, pay := range payments {
		p, err := outboundPayment(pay, e.cfg.Network)
		if err != nil {
			return nil, engine.NewNodeError(engine.ErrInvalidPaymentHash, "lnd returned payment %s: %v", pay.PaymentHash, err)
		}
		result = append(result, p)
	}

	return result, nil
}

// Payment looks up an invoice first, then an outgoing payment.
func (e *Engine) Payment(hash lntypes.Hash) (*engine.PaymentDetails, error) {
	if err := e.checkRunning(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	inv, err := e.client.LookupInvoice(ctx, &lnrpc.PaymentHash{RHash: hash[:]})
	if err == nil {
		p, err := inboundPayment(inv)
		if err != nil {
			return nil, engine.NewNodeError(engine.ErrInvalidPaymentHash, "%v", err)
		}
		return p, nil
	}
	if !isNotFound(err) {
		log.Printf("LND: client.LookupInvoice(%v) error: %v", hash, err)
		return nil, nodeError(engine.ErrPersistenceFailed, err)
	}

	payments, err := e.listPayments(ctx)
	if err != nil {
		log.Printf("LND: client.ListPayments() error: %v", err)
		return nil, nodeError(engine.ErrPersistenceFailed, err)
	}
	for _, pay := range payments {
		if pay.PaymentHash != hash.String() {
			continue
		}
		p, err := outboundPayment(pay, e.cfg.Network)
		if err != nil {
			return nil, engine.NewNodeError(engine.ErrInvalidPaymentHash, "%v", err)
		}
		return p, nil
	}

	return nil, nil
}

// RemovePayment deletes an outgoing payment. lnd doesn't delete settled
// invoices, those stay listed.
func (e *Engine) RemovePayment(hash lntypes.Hash) error {
	if err := e.checkRunning(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	_, err := e.client.DeletePayment(ctx, &lnrpc.DeletePaymentRequest{PaymentHash: hash[:]})
	if err != nil && !isNotFound(err) {
		log.Printf("LND: client.DeletePayment(%v) error: %v", hash, err)
		return nodeError(engine.ErrPersistenceFailed, err)
	}
	return nil
}
