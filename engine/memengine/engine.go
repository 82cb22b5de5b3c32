package memengine

import (
	"bytes"
	"context"
	"crypto/rand"
	"math"
	"net"
	"sync"
	"time"

	"github.com/breez/lnbind/engine"
	"github.com/breez/lnbind/lightning"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	// FundingFeeSats is the on-chain fee charged for every channel open.
	FundingFeeSats          = 300
	requiredConfirmations   = 6
	defaultInvoiceExpiry    = 3600
	feerateSatPer1000Weight = 253
)

type peerKey [btcec.PubKeyBytesLenCompressed]byte

func keyOf(pk *btcec.PublicKey) peerKey {
	var k peerKey
	copy(k[:], pk.SerializeCompressed())
	return k
}

type channel struct {
	details engine.ChannelDetails
	config  engine.ChannelConfig
}

// Engine is safe for concurrent use.
type Engine struct {
	mu          sync.Mutex
	cfg         *engine.Config
	master      *hdkeychain.ExtendedKey
	key         *btcec.PrivateKey
	dial        DialFunc
	dialTimeout time.Duration

	running   bool
	closed    bool
	addrIndex uint32
	spendable uint64

	payments     map[lntypes.Hash]*engine.PaymentDetails
	paymentOrder []lntypes.Hash
	preimages    map[lntypes.Hash]lntypes.Preimage
	peers        map[peerKey]*engine.PeerDetails
	channels     []*channel
	failures     map[string]error

	events *engine.EventQueue
}

var _ engine.Engine = (*Engine)(nil)

// FailWith makes every following call to the named method return err until
// ClearFailures is called.
func (e *Engine) FailWith(method string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[method] = err
}

func (e *Engine) ClearFailures() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures = make(map[string]error)
}

// SetOnchainBalance replaces the confirmed on-chain balance.
func (e *Engine) SetOnchainBalance(sats uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spendable = sats
}

// QueueEvent appends ev to the event queue as if the node had emitted it.
func (e *Engine) QueueEvent(ev engine.Event) {
	e.events.Push(ev)
}

// PendingEvents returns the number of queued events.
func (e *Engine) PendingEvents() int {
	return e.events.Len()
}

// enter must be called with mu held.
func (e *Engine) enter(method string, needRunning bool) error {
	if err, ok := e.failures[method]; ok {
		return err
	}
	if e.closed {
		return engine.NewNodeError(engine.ErrNotRunning, "engine is closed")
	}
	if needRunning && !e.running {
		return engine.NewNodeError(engine.ErrNotRunning, "")
	}
	return nil
}

func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("Start", false); err != nil {
		return err
	}
	if e.running {
		return engine.NewNodeError(engine.ErrAlreadyRunning, "")
	}
	e.running = true
	return nil
}

func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("Stop", true); err != nil {
		return err
	}
	e.running = false
	return nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	e.closed = true
	e.events.Close()
	return nil
}

// SyncWallets confirms every pending channel.
func (e *Engine) SyncWallets() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("SyncWallets", true); err != nil {
		return err
	}
	for _, c := range e.channels {
		d := &c.details
		if d.IsChannelReady {
			continue
		}
		confirmations := uint32(requiredConfirmations)
		d.Confirmations = &confirmations
		d.IsChannelReady = true
		d.IsUsable = e.connected(d.CounterpartyNodeID)
		e.events.Push(&engine.ChannelReady{
			ChannelID:     d.ChannelID,
			UserChannelID: d.UserChannelID,
		})
	}
	return nil
}

func (e *Engine) NodeID() *btcec.PublicKey {
	return e.key.PubKey()
}

func (e *Engine) ListeningAddress() net.Addr {
	return e.cfg.ListeningAddress
}

func (e *Engine) NewOnchainAddress() (btcutil.Address, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("NewOnchainAddress", true); err != nil {
		return nil, err
	}
	child, err := e.master.Derive(e.addrIndex)
	if err != nil {
		return nil, engine.NewNodeError(engine.ErrWalletOperationFailed, "failed to derive address key: %v", err)
	}
	pub, err := child.ECPubKey()
	if err != nil {
		return nil, engine.NewNodeError(engine.ErrWalletOperationFailed, "failed to derive address key: %v", err)
	}
	addr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pub.SerializeCompressed()), e.cfg.Network)
	if err != nil {
		return nil, engine.NewNodeError(engine.ErrWalletOperationFailed, "failed to create address: %v", err)
	}
	e.addrIndex++
	return addr, nil
}

func (e *Engine) SpendableOnchainBalanceSats() (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("SpendableOnchainBalanceSats", true); err != nil {
		return 0, err
	}
	return e.spendable, nil
}

func (e *Engine) TotalOnchainBalanceSats() (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("TotalOnchainBalanceSats", true); err != nil {
		return 0, err
	}
	return e.spendable, nil
}

func invoiceFeatures() *lnwire.FeatureVector {
	return lnwire.NewFeatureVector(
		lnwire.NewRawFeatureVector(
			lnwire.TLVOnionPayloadRequired,
			lnwire.PaymentAddrRequired,
		),
		lnwire.Features,
	)
}

func (e *Engine) signCompact(msg []byte) ([]byte, error) {
	return ecdsa.SignCompact(e.key, chainhash.HashB(msg), true)
}

// createInvoice must be called with mu held.
func (e *Engine) createInvoice(amountMsat *uint64, description string, expirySecs uint32) (string, error) {
	var preimage lntypes.Preimage
	var secret engine.PaymentSecret
	if _, err := rand.Read(preimage[:]); err != nil {
		return "", engine.NewNodeError(engine.ErrInvoiceCreationFailed, "failed to generate preimage: %v", err)
	}
	if _, err := rand.Read(secret[:]); err != nil {
		return "", engine.NewNodeError(engine.ErrInvoiceCreationFailed, "failed to generate payment secret: %v", err)
	}
	if expirySecs == 0 {
		expirySecs = defaultInvoiceExpiry
	}
	hash := preimage.Hash()

	opts := []func(*zpay32.Invoice){
		zpay32.Description(description),
		zpay32.Expiry(time.Duration(expirySecs) * time.Second),
		zpay32.CLTVExpiry(uint64(e.cfg.DefaultCltvExpiryDelta)),
		zpay32.PaymentAddr(secret),
		zpay32.Features(invoiceFeatures()),
	}
	if amountMsat != nil {
		opts = append(opts, zpay32.Amount(lnwire.MilliSatoshi(*amountMsat)))
	}
	inv, err := zpay32.NewInvoice(e.cfg.Network, hash, time.Now(), opts...)
	if err != nil {
		return "", engine.NewNodeError(engine.ErrInvoiceCreationFailed, "failed to create invoice: %v", err)
	}
	encoded, err := inv.Encode(zpay32.MessageSigner{SignCompact: e.signCompact})
	if err != nil {
		return "", engine.NewNodeError(engine.ErrInvoiceCreationFailed, "failed to sign invoice: %v", err)
	}

	var amount *uint64
	if amountMsat != nil {
		a := *amountMsat
		amount = &a
	}
	e.preimages[hash] = preimage
	e.storePayment(&engine.PaymentDetails{
		Hash:       hash,
		Secret:     &secret,
		AmountMsat: amount,
		Direction:  engine.PaymentDirectionInbound,
		Status:     engine.PaymentStatusPending,
	})
	return encoded, nil
}

func (e *Engine) ReceivePayment(amountMsat uint64, description string, expirySecs uint32) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("ReceivePayment", true); err != nil {
		return "", err
	}
	if amountMsat == 0 {
		return "", engine.NewNodeError(engine.ErrInvalidAmount, "invoice amount must be positive")
	}
	return e.createInvoice(&amountMsat, description, expirySecs)
}

func (e *Engine) ReceiveVariableAmountPayment(description string, expirySecs uint32) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("ReceiveVariableAmountPayment", true); err != nil {
		return "", err
	}
	return e.createInvoice(nil, description, expirySecs)
}

// storePayment must be called with mu held.
func (e *Engine) storePayment(p *engine.PaymentDetails) {
	if _, ok := e.payments[p.Hash]; !ok {
		e.paymentOrder = append(e.paymentOrder, p.Hash)
	}
	e.payments[p.Hash] = p
}

// usableChannel returns a usable channel able to send amountMsat, preferring
// one with counterparty if given. Must be called with mu held.
func (e *Engine) usableChannel(amountMsat uint64, counterparty *btcec.PublicKey) *channel {
	var found *channel
	for _, c := range e.channels {
		d := &c.details
		if !d.IsUsable || d.OutboundCapacityMsat < amountMsat {
			continue
		}
		if counterparty != nil && d.CounterpartyNodeID.IsEqual(counterparty) {
			return c
		}
		if found == nil {
			found = c
		}
	}
	return found
}

// settleOutbound moves amountMsat across a channel and records the payment.
// Must be called with mu held.
func (e *Engine) settleOutbound(hash lntypes.Hash, preimage *lntypes.Preimage, amountMsat uint64, counterparty *btcec.PublicKey) error {
	amount := amountMsat
	c := e.usableChannel(amountMsat, counterparty)
	if c == nil {
		e.storePayment(&engine.PaymentDetails{
			Hash:       hash,
			AmountMsat: &amount,
			Direction:  engine.PaymentDirectionOutbound,
			Status:     engine.PaymentStatusFailed,
		})
		return engine.NewNodeError(engine.ErrPaymentSendingFailed, "no route with %d msat outbound capacity", amountMsat)
	}
	c.details.BalanceMsat -= amountMsat
	c.details.OutboundCapacityMsat -= amountMsat
	c.details.InboundCapacityMsat += amountMsat
	e.storePayment(&engine.PaymentDetails{
		Hash:       hash,
		Preimage:   preimage,
		AmountMsat: &amount,
		Direction:  engine.PaymentDirectionOutbound,
		Status:     engine.PaymentStatusSucceeded,
	})
	e.events.Push(&engine.PaymentSuccessful{PaymentHash: hash})
	return nil
}

func (e *Engine) pay(invoice string, amountMsat *uint64) (lntypes.Hash, error) {
	inv, err := zpay32.Decode(invoice, e.cfg.Network)
	if err != nil {
		return lntypes.Hash{}, engine.NewNodeError(engine.ErrInvalidInvoice, "%v", err)
	}
	hash := lntypes.Hash(*inv.PaymentHash)

	var amount uint64
	switch {
	case inv.MilliSat != nil && amountMsat != nil:
		if *amountMsat < uint64(*inv.MilliSat) {
			return hash, engine.NewNodeError(engine.ErrInvalidAmount, "amount %d msat is below the invoice amount %d msat", *amountMsat, uint64(*inv.MilliSat))
		}
		amount = *amountMsat
	case inv.MilliSat != nil:
		amount = uint64(*inv.MilliSat)
	case amountMsat != nil:
		amount = *amountMsat
	default:
		return hash, engine.NewNodeError(engine.ErrInvalidInvoice, "invoice has no amount")
	}
	if amount == 0 {
		return hash, engine.NewNodeError(engine.ErrInvalidAmount, "amount must be positive")
	}

	if p, ok := e.payments[hash]; ok {
		ownPaid := p.Direction == engine.PaymentDirectionInbound && p.Status == engine.PaymentStatusSucceeded
		outgoing := p.Direction == engine.PaymentDirectionOutbound && p.Status != engine.PaymentStatusFailed
		if ownPaid || outgoing {
			return hash, engine.NewNodeError(engine.ErrDuplicatePayment, "payment %v was already sent", hash)
		}
	}

	// Paying one of our own invoices settles it directly.
	if inv.Destination != nil && inv.Destination.IsEqual(e.key.PubKey()) {
		p, ok := e.payments[hash]
		if !ok || p.Direction != engine.PaymentDirectionInbound {
			return hash, engine.NewNodeError(engine.ErrPaymentSendingFailed, "unknown invoice %v", hash)
		}
		preimage := e.preimages[hash]
		p.Preimage = &preimage
		p.AmountMsat = &amount
		p.Status = engine.PaymentStatusSucceeded
		e.events.Push(&engine.PaymentReceived{PaymentHash: hash, AmountMsat: amount})
		e.events.Push(&engine.PaymentSuccessful{PaymentHash: hash})
		return hash, nil
	}

	return hash, e.settleOutbound(hash, nil, amount, inv.Destination)
}

func (e *Engine) SendPayment(invoice string) (lntypes.Hash, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("SendPayment", true); err != nil {
		return lntypes.Hash{}, err
	}
	return e.pay(invoice, nil)
}

func (e *Engine) SendPaymentUsingAmount(invoice string, amountMsat uint64) (lntypes.Hash, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("SendPaymentUsingAmount", true); err != nil {
		return lntypes.Hash{}, err
	}
	return e.pay(invoice, &amountMsat)
}

func (e *Engine) SendSpontaneousPayment(amountMsat uint64, nodeID *btcec.PublicKey) (lntypes.Hash, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("SendSpontaneousPayment", true); err != nil {
		return lntypes.Hash{}, err
	}
	if amountMsat == 0 {
		return lntypes.Hash{}, engine.NewNodeError(engine.ErrInvalidAmount, "amount must be positive")
	}
	if nodeID.IsEqual(e.key.PubKey()) {
		return lntypes.Hash{}, engine.NewNodeError(engine.ErrInvalidPublicKey, "cannot pay ourselves spontaneously")
	}
	var preimage lntypes.Preimage
	if _, err := rand.Read(preimage[:]); err != nil {
		return lntypes.Hash{}, engine.NewNodeError(engine.ErrPaymentSendingFailed, "failed to generate preimage: %v", err)
	}
	hash := preimage.Hash()
	return hash, e.settleOutbound(hash, &preimage, amountMsat, nodeID)
}

func copyPayment(p *engine.PaymentDetails) *engine.PaymentDetails {
	c := *p
	if p.Preimage != nil {
		v := *p.Preimage
		c.Preimage = &v
	}
	if p.Secret != nil {
		v := *p.Secret
		c.Secret = &v
	}
	if p.AmountMsat != nil {
		v := *p.AmountMsat
		c.AmountMsat = &v
	}
	return &c
}

func (e *Engine) ListPayments() ([]*engine.PaymentDetails, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("ListPayments", true); err != nil {
		return nil, err
	}
	list := make([]*engine.PaymentDetails, 0, len(e.paymentOrder))
	for _, h := range e.paymentOrder {
		list = append(list, copyPayment(e.payments[h]))
	}
	return list, nil
}

func (e *Engine) Payment(hash lntypes.Hash) (*engine.PaymentDetails, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("Payment", true); err != nil {
		return nil, err
	}
	p, ok := e.payments[hash]
	if !ok {
		return nil, nil
	}
	return copyPayment(p), nil
}

func (e *Engine) RemovePayment(hash lntypes.Hash) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("RemovePayment", true); err != nil {
		return err
	}
	if _, ok := e.payments[hash]; !ok {
		return nil
	}
	delete(e.payments, hash)
	delete(e.preimages, hash)
	e.paymentOrder = slices.DeleteFunc(e.paymentOrder, func(h lntypes.Hash) bool {
		return h == hash
	})
	return nil
}

// connected must be called with mu held.
func (e *Engine) connected(pk *btcec.PublicKey) bool {
	p, ok := e.peers[keyOf(pk)]
	return ok && p.IsConnected
}

// connect must be called with mu held.
func (e *Engine) connect(nodeID *btcec.PublicKey, address net.Addr, persist bool) error {
	if nodeID.IsEqual(e.key.PubKey()) {
		return engine.NewNodeError(engine.ErrConnectionFailed, "cannot connect to ourselves")
	}
	if e.connected(nodeID) {
		if persist {
			e.peers[keyOf(nodeID)].IsPersisted = true
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.dialTimeout)
	defer cancel()
	if err := e.dial(ctx, address); err != nil {
		return engine.NewNodeError(engine.ErrConnectionFailed, "failed to connect to %x@%v: %v", nodeID.SerializeCompressed(), address, err)
	}

	e.peers[keyOf(nodeID)] = &engine.PeerDetails{
		NodeID:      nodeID,
		Address:     address,
		IsPersisted: persist,
		IsConnected: true,
	}
	for _, c := range e.channels {
		if c.details.CounterpartyNodeID.IsEqual(nodeID) {
			c.details.IsUsable = c.details.IsChannelReady
		}
	}
	return nil
}

func (e *Engine) Connect(nodeID *btcec.PublicKey, address net.Addr, persist bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("Connect", true); err != nil {
		return err
	}
	return e.connect(nodeID, address, persist)
}

func (e *Engine) Disconnect(nodeID *btcec.PublicKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("Disconnect", true); err != nil {
		return err
	}
	delete(e.peers, keyOf(nodeID))
	for _, c := range e.channels {
		if c.details.CounterpartyNodeID.IsEqual(nodeID) {
			c.details.IsUsable = false
		}
	}
	return nil
}

// ListPeers returns the peers ordered by node id.
func (e *Engine) ListPeers() ([]*engine.PeerDetails, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("ListPeers", true); err != nil {
		return nil, err
	}
	keys := maps.Keys(e.peers)
	slices.SortFunc(keys, func(a, b peerKey) int {
		return bytes.Compare(a[:], b[:])
	})
	list := make([]*engine.PeerDetails, 0, len(keys))
	for _, k := range keys {
		p := *e.peers[k]
		list = append(list, &p)
	}
	return list, nil
}

func random32() ([32]byte, error) {
	var b [32]byte
	_, err := rand.Read(b[:])
	return b, err
}

func (e *Engine) ConnectOpenChannel(req *engine.OpenChannelRequest) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("ConnectOpenChannel", true); err != nil {
		return err
	}
	if err := e.connect(req.NodeID, req.Address, true); err != nil {
		return err
	}

	if req.ChannelAmountSats == 0 {
		return engine.NewNodeError(engine.ErrInvalidAmount, "channel amount must be positive")
	}
	capacityMsat := req.ChannelAmountSats * 1000
	var pushMsat uint64
	if req.PushToCounterpartyMsat != nil {
		pushMsat = *req.PushToCounterpartyMsat
	}
	if pushMsat > capacityMsat {
		return engine.NewNodeError(engine.ErrInvalidAmount, "push amount %d msat exceeds channel capacity", pushMsat)
	}
	if e.spendable < req.ChannelAmountSats+FundingFeeSats {
		return engine.NewNodeError(engine.ErrInsufficientFunds, "need %d sats, have %d", req.ChannelAmountSats+FundingFeeSats, e.spendable)
	}

	temporaryID, err := random32()
	if err != nil {
		return engine.NewNodeError(engine.ErrChannelCreationFailed, "%v", err)
	}
	txid, err := random32()
	if err != nil {
		return engine.NewNodeError(engine.ErrChannelCreationFailed, "%v", err)
	}
	var userChannelID engine.UserChannelID
	if _, err := rand.Read(userChannelID[:]); err != nil {
		return engine.NewNodeError(engine.ErrChannelCreationFailed, "%v", err)
	}
	fundingTxo := wire.OutPoint{Hash: chainhash.Hash(txid), Index: 0}
	channelID := lnwire.NewChanIDFromOutPoint(&fundingTxo)

	config := engine.ChannelConfig{CltvExpiryDelta: clampUint16(e.cfg.DefaultCltvExpiryDelta)}
	if req.ChannelConfig != nil {
		config = *req.ChannelConfig
	}
	reserve := req.ChannelAmountSats / 100
	balance := capacityMsat - pushMsat
	outbound := uint64(0)
	if balance > reserve*1000 {
		outbound = balance - reserve*1000
	}
	confirmationsRequired := uint32(requiredConfirmations)
	confirmations := uint32(0)
	cltv := config.CltvExpiryDelta
	op := fundingTxo

	e.spendable -= req.ChannelAmountSats + FundingFeeSats
	e.channels = append(e.channels, &channel{
		config: config,
		details: engine.ChannelDetails{
			ChannelID:                    channelID,
			CounterpartyNodeID:           req.NodeID,
			FundingTxo:                   &op,
			ChannelValueSats:             req.ChannelAmountSats,
			UnspendablePunishmentReserve: &reserve,
			UserChannelID:                userChannelID,
			FeerateSatPer1000Weight:      feerateSatPer1000Weight,
			BalanceMsat:                  balance,
			OutboundCapacityMsat:         outbound,
			InboundCapacityMsat:          pushMsat,
			ConfirmationsRequired:        &confirmationsRequired,
			Confirmations:                &confirmations,
			IsOutbound:                   true,
			IsPublic:                     req.AnnounceChannel,
			CltvExpiryDelta:              &cltv,
		},
	})
	e.events.Push(&engine.ChannelPending{
		ChannelID:                channelID,
		UserChannelID:            userChannelID,
		FormerTemporaryChannelID: lnwire.ChannelID(temporaryID),
		CounterpartyNodeID:       req.NodeID,
		FundingTxo:               fundingTxo,
	})
	return nil
}

func clampUint16(v uint32) uint16 {
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

// findChannel must be called with mu held.
func (e *Engine) findChannel(id lnwire.ChannelID, counterparty *btcec.PublicKey) (int, *channel) {
	for i, c := range e.channels {
		if c.details.ChannelID == id && c.details.CounterpartyNodeID.IsEqual(counterparty) {
			return i, c
		}
	}
	return -1, nil
}

func (e *Engine) CloseChannel(channelID lnwire.ChannelID, counterparty *btcec.PublicKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("CloseChannel", true); err != nil {
		return err
	}
	i, c := e.findChannel(channelID, counterparty)
	if c == nil {
		return engine.NewNodeError(engine.ErrChannelClosingFailed, "unknown channel %v", channelID)
	}
	e.spendable += c.details.BalanceMsat / 1000
	e.channels = slices.Delete(e.channels, i, i+1)
	e.events.Push(&engine.ChannelClosed{
		ChannelID:     c.details.ChannelID,
		UserChannelID: c.details.UserChannelID,
	})
	return nil
}

func (e *Engine) ListChannels() ([]*engine.ChannelDetails, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("ListChannels", true); err != nil {
		return nil, err
	}
	list := make([]*engine.ChannelDetails, 0, len(e.channels))
	for _, c := range e.channels {
		d := c.details
		list = append(list, &d)
	}
	return list, nil
}

func (e *Engine) UpdateChannelConfig(channelID lnwire.ChannelID, counterparty *btcec.PublicKey, config *engine.ChannelConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("UpdateChannelConfig", true); err != nil {
		return err
	}
	_, c := e.findChannel(channelID, counterparty)
	if c == nil {
		return engine.NewNodeError(engine.ErrChannelConfigUpdateFailed, "unknown channel %v", channelID)
	}
	c.config = *config
	cltv := config.CltvExpiryDelta
	c.details.CltvExpiryDelta = &cltv
	return nil
}

// ChannelConfig returns the forwarding configuration of a channel.
func (e *Engine) ChannelConfig(channelID lnwire.ChannelID, counterparty *btcec.PublicKey) (*engine.ChannelConfig, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, c := e.findChannel(channelID, counterparty)
	if c == nil {
		return nil, false
	}
	config := c.config
	return &config, true
}

func (e *Engine) SignMessage(msg []byte) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("SignMessage", true); err != nil {
		return "", err
	}
	sig, err := lightning.SignMessage(e.key, msg)
	if err != nil {
		return "", engine.NewNodeError(engine.ErrMessageSigningFailed, "%v", err)
	}
	return sig, nil
}

func (e *Engine) VerifySignature(msg []byte, signature string, pubkey *btcec.PublicKey) bool {
	return lightning.VerifyMessageFrom(msg, signature, pubkey)
}

func (e *Engine) NextEvent() engine.Event {
	return e.events.Next()
}

func (e *Engine) WaitNextEvent() engine.Event {
	return e.events.Wait()
}

func (e *Engine) EventHandled() {
	e.events.Handled()
}
