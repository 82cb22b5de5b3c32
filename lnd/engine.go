package lnd

import (
	"context"
	"encoding/hex"
	"log"
	"math"
	"net"
	"sync"
	"time"

	"github.com/breez/lnbind/chain"
	"github.com/breez/lnbind/engine"
	"github.com/breez/lnbind/lightning"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"github.com/lightningnetwork/lnd/lnwire"
)

const (
	callTimeout        = 30 * time.Second
	connectTimeoutSecs = 30
	openFeeStrategy    = chain.FeeStrategyHour
)

// Engine is an engine.Engine backed by a remote lnd node. lnd owns the
// wallet, the channels and the payment database. The engine translates calls
// and turns lnd's subscriptions into engine events.
type Engine struct {
	mu      sync.Mutex
	running bool
	closed  bool

	cfg    *engine.Config
	client lnrpc.LightningClient
	router routerrpc.RouterClient
	closer func() error
	nodeID *btcec.PublicKey
	listen net.Addr
	fees   chain.FeeEstimator
	peers  *peerStore
	events *engine.EventQueue

	settleIndex    uint64
	listenerCtx    context.Context
	listenerCancel context.CancelFunc
	listeners      sync.WaitGroup

	// paymentCtx outlives Stop, payments are tracked until Close.
	paymentCtx    context.Context
	paymentCancel context.CancelFunc
	payments      sync.WaitGroup
}

func newEngine(
	cfg *engine.Config,
	client lnrpc.LightningClient,
	router routerrpc.RouterClient,
	nodeID *btcec.PublicKey,
	listen net.Addr,
	fees chain.FeeEstimator,
	peers *peerStore,
) *Engine {
	paymentCtx, paymentCancel := context.WithCancel(context.Background())
	return &Engine{
		paymentCtx:    paymentCtx,
		paymentCancel: paymentCancel,
		cfg:           cfg,
		client:        client,
		router:        router,
		closer:        func() error { return nil },
		nodeID:        nodeID,
		listen:        listen,
		fees:          fees,
		peers:         peers,
		events:        engine.NewEventQueue(),
	}
}

func (e *Engine) checkRunning() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.running {
		return engine.NewNodeError(engine.ErrNotRunning, "")
	}
	return nil
}

func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return engine.NewNodeError(engine.ErrNotRunning, "engine is closed")
	}
	if e.running {
		return engine.NewNodeError(engine.ErrAlreadyRunning, "")
	}

	e.startListeners()
	e.reconnectPeers()
	e.running = true
	log.Printf("LND: engine for %x started", e.nodeID.SerializeCompressed())
	return nil
}

func (e *Engine) reconnectPeers() {
	for _, p := range e.peers.list() {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		_, err := e.client.ConnectPeer(ctx, &lnrpc.ConnectPeerRequest{
			Addr:    &lnrpc.LightningAddress{Pubkey: p.NodeID, Host: p.Address},
			Perm:    true,
			Timeout: connectTimeoutSecs,
		})
		cancel()
		if err != nil && !isAlreadyConnected(err) {
			log.Printf("LND: failed to reconnect peer %s@%s: %v", p.NodeID, p.Address, err)
		}
	}
}

func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.running {
		return engine.NewNodeError(engine.ErrNotRunning, "")
	}

	e.stopListeners()
	e.running = false
	log.Printf("LND: engine for %x stopped", e.nodeID.SerializeCompressed())
	return nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	if e.running {
		e.stopListeners()
		e.running = false
	}
	e.closed = true
	e.mu.Unlock()

	e.paymentCancel()
	e.payments.Wait()
	e.events.Close()
	return e.closer()
}

func (e *Engine) SyncWallets() error {
	if err := e.checkRunning(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	info, err := e.client.GetInfo(ctx, &lnrpc.GetInfoRequest{})
	if err != nil {
		log.Printf("LND: client.GetInfo() error: %v", err)
		return nodeError(engine.ErrTxSyncFailed, err)
	}
	if !info.SyncedToChain {
		return engine.NewNodeError(engine.ErrTxSyncFailed, "lnd is not synced to chain, block height %d", info.BlockHeight)
	}
	return nil
}

func (e *Engine) NodeID() *btcec.PublicKey {
	return e.nodeID
}

func (e *Engine) ListeningAddress() net.Addr {
	return e.listen
}

func (e *Engine) NewOnchainAddress() (btcutil.Address, error) {
	if err := e.checkRunning(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	resp, err := e.client.NewAddress(ctx, &lnrpc.NewAddressRequest{
		Type: lnrpc.AddressType_WITNESS_PUBKEY_HASH,
	})
	if err != nil {
		log.Printf("LND: client.NewAddress() error: %v", err)
		return nil, nodeError(engine.ErrWalletOperationFailed, err)
	}

	addr, err := btcutil.DecodeAddress(resp.Address, e.cfg.Network)
	if err != nil {
		return nil, engine.NewNodeError(engine.ErrInvalidAddress, "lnd returned address %q: %v", resp.Address, err)
	}
	return addr, nil
}

func (e *Engine) walletBalance() (*lnrpc.WalletBalanceResponse, error) {
	if err := e.checkRunning(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	resp, err := e.client.WalletBalance(ctx, &lnrpc.WalletBalanceRequest{})
	if err != nil {
		log.Printf("LND: client.WalletBalance() error: %v", err)
		return nil, nodeError(engine.ErrWalletOperationFailed, err)
	}
	return resp, nil
}

func (e *Engine) SpendableOnchainBalanceSats() (uint64, error) {
	resp, err := e.walletBalance()
	if err != nil {
		return 0, err
	}
	return sats(resp.ConfirmedBalance), nil
}

func (e *Engine) TotalOnchainBalanceSats() (uint64, error) {
	resp, err := e.walletBalance()
	if err != nil {
		return 0, err
	}
	return sats(resp.TotalBalance), nil
}

func (e *Engine) Connect(nodeID *btcec.PublicKey, address net.Addr, persist bool) error {
	if err := e.checkRunning(); err != nil {
		return err
	}
	if nodeID.IsEqual(e.nodeID) {
		return engine.NewNodeError(engine.ErrConnectionFailed, "cannot connect to self")
	}

	pubkey := hex.EncodeToString(nodeID.SerializeCompressed())
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout+connectTimeoutSecs*time.Second)
	defer cancel()
	_, err := e.client.ConnectPeer(ctx, &lnrpc.ConnectPeerRequest{
		Addr:    &lnrpc.LightningAddress{Pubkey: pubkey, Host: address.String()},
		Perm:    persist,
		Timeout: connectTimeoutSecs,
	})
	if err != nil && !isAlreadyConnected(err) {
		log.Printf("LND: client.ConnectPeer(%s@%v) error: %v", pubkey, address, err)
		return nodeError(engine.ErrConnectionFailed, err)
	}

	if persist {
		err = e.peers.add(storedPeer{NodeID: pubkey, Address: address.String()})
		if err != nil {
			log.Printf("LND: failed to persist peer %s: %v", pubkey, err)
			return engine.NewNodeError(engine.ErrPersistenceFailed, "%v", err)
		}
	}

	return nil
}

func (e *Engine) Disconnect(nodeID *btcec.PublicKey) error {
	if err := e.checkRunning(); err != nil {
		return err
	}

	pubkey := hex.EncodeToString(nodeID.SerializeCompressed())
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	_, err := e.client.DisconnectPeer(ctx, &lnrpc.DisconnectPeerRequest{PubKey: pubkey})
	if err != nil && !isNotConnected(err) {
		log.Printf("LND: client.DisconnectPeer(%s) error: %v", pubkey, err)
		return nodeError(engine.ErrConnectionFailed, err)
	}

	// Only forget the peer once lnd let go of it.
	if err := e.peers.remove(pubkey); err != nil {
		log.Printf("LND: failed to forget peer %s: %v", pubkey, err)
		return engine.NewNodeError(engine.ErrPersistenceFailed, "%v", err)
	}
	return nil
}

func (e *Engine) ListPeers() ([]*engine.PeerDetails, error) {
	if err := e.checkRunning(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	resp, err := e.client.ListPeers(ctx, &lnrpc.ListPeersRequest{})
	if err != nil {
		log.Printf("LND: client.ListPeers() error: %v", err)
		return nil, nodeError(engine.ErrConnectionFailed, err)
	}

	var result []*engine.PeerDetails
	connected := make(map[string]struct{})
	for _, p := range resp.Peers {
		connected[p.PubKey] = struct{}{}
		stored, persisted := e.peers.get(p.PubKey)
		address := p.Address
		if persisted {
			address = stored.Address
		}
		details, err := peerDetails(p.PubKey, address, persisted, true)
		if err != nil {
			log.Printf("LND: cannot list peer %s@%s: %v", p.PubKey, address, err)
			return nil, err
		}
		result = append(result, details)
	}

	for _, p := range e.peers.list() {
		if _, ok := connected[p.NodeID]; ok {
			continue
		}
		details, err := peerDetails(p.NodeID, p.Address, true, false)
		if err != nil {
			log.Printf("LND: cannot list stored peer %s@%s: %v", p.NodeID, p.Address, err)
			return nil, err
		}
		result = append(result, details)
	}

	return result, nil
}

func peerDetails(pubkey, address string, persisted, connected bool) (*engine.PeerDetails, error) {
	nodeID, err := parsePubKey(pubkey)
	if err != nil {
		return nil, engine.NewNodeError(engine.ErrInvalidPublicKey, "peer %s has an invalid node id: %v", pubkey, err)
	}
	// Peers are reported with socket addresses only, so a peer reached over
	// tor fails the listing instead of being left out of it.
	addr, err := parseNetAddr(address)
	if err != nil {
		return nil, engine.NewNodeError(engine.ErrInvalidNetAddress, "peer %s has unsupported address %q: %v", pubkey, address, err)
	}
	return &engine.PeerDetails{
		NodeID:      nodeID,
		Address:     addr,
		IsPersisted: persisted,
		IsConnected: connected,
	}, nil
}

func (e *Engine) SignMessage(msg []byte) (string, error) {
	if err := e.checkRunning(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	resp, err := e.client.SignMessage(ctx, &lnrpc.SignMessageRequest{Msg: msg})
	if err != nil {
		log.Printf("LND: client.SignMessage() error: %v", err)
		return "", nodeError(engine.ErrMessageSigningFailed, err)
	}
	return resp.Signature, nil
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

// feeRate returns the funding fee rate for channel opens and cooperative
// closes. Either the rate or the confirmation target is set.
func (e *Engine) feeRate(ctx context.Context) (satPerVByte uint64, targetConf int32) {
	est, err := e.fees.EstimateFeeRate(ctx, openFeeStrategy)
	if err != nil {
		log.Printf("LND: fee estimation failed, leaving the fee to lnd: %v", err)
		return 0, 0
	}
	if est.SatPerVByte != nil {
		return uint64(math.Ceil(*est.SatPerVByte)), 0
	}
	if est.TargetConf != nil {
		return 0, int32(*est.TargetConf)
	}
	return 0, 0
}

func (e *Engine) findChannel(ctx context.Context, id lnwire.ChannelID, counterparty *btcec.PublicKey) (*lnrpc.Channel, error) {
	resp, err := e.client.ListChannels(ctx, &lnrpc.ListChannelsRequest{
		Peer: counterparty.SerializeCompressed(),
	})
	if err != nil {
		return nil, err
	}

	for _, c := range resp.Channels {
		op, err := lightning.NewOutPointFromString(c.ChannelPoint)
		if err != nil {
			continue
		}
		if channelID(op) == id {
			return c, nil
		}
	}
	return nil, nil
}
