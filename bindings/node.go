package bindings

import (
	"log"
	"sync"

	"github.com/breez/lnbind/bindings/codes"
	"github.com/breez/lnbind/bindings/status"
	"github.com/breez/lnbind/engine"
	"github.com/btcsuite/btcd/chaincfg"
)

type nodeState int

const (
	nodeUnstarted nodeState = iota
	nodeRunning
	nodeStopped
	nodeClosed
)

func (s nodeState) String() string {
	switch s {
	case nodeUnstarted:
		return "unstarted"
	case nodeRunning:
		return "running"
	case nodeStopped:
		return "stopped"
	case nodeClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Node is the host facing handle of a built engine. Calls into the engine
// are serialized, except for waiting on the next event which must not keep
// other calls from making progress.
type Node struct {
	mu      sync.Mutex
	engine  engine.Engine
	network *chaincfg.Params
	state   nodeState
	events  *eventBridge
}

func newNode(eng engine.Engine, network *chaincfg.Params) *Node {
	return &Node{
		engine:  eng,
		network: network,
		events:  newEventBridge(eng),
	}
}

func (n *Node) Network() *chaincfg.Params {
	return n.network
}

// checkOpen must be called with mu held.
func (n *Node) checkOpen() error {
	if n.state == nodeClosed {
		return status.Errorf(codes.NodeClosed, "node is closed")
	}
	return nil
}

// checkRunning must be called with mu held.
func (n *Node) checkRunning() error {
	if err := n.checkOpen(); err != nil {
		return err
	}
	if n.state != nodeRunning {
		return status.Errorf(codes.NotRunning, "node is %v", n.state)
	}
	return nil
}

// run executes f while holding the node lock, if the node is running.
// Errors returned by f are engine errors and get translated.
func (n *Node) run(f func() error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.checkRunning(); err != nil {
		return err
	}
	return TranslateNodeError(f())
}

// Start starts the engine. A stopped node may be started again.
func (n *Node) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.checkOpen(); err != nil {
		return err
	}
	if n.state == nodeRunning {
		return status.Errorf(codes.AlreadyRunning, "node is already running")
	}
	if err := n.engine.Start(); err != nil {
		log.Printf("lnbind: engine start failed: %v", err)
		return TranslateNodeError(err)
	}
	n.state = nodeRunning
	return nil
}

func (n *Node) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.checkRunning(); err != nil {
		return err
	}
	if err := n.engine.Stop(); err != nil {
		log.Printf("lnbind: engine stop failed: %v", err)
		return TranslateNodeError(err)
	}
	n.state = nodeStopped
	return nil
}

// Close stops the engine if needed and releases it. Closing a closed node is
// a no-op.
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == nodeClosed {
		return nil
	}
	if n.state == nodeRunning {
		if err := n.engine.Stop(); err != nil {
			log.Printf("lnbind: engine stop on close failed: %v", err)
		}
	}
	n.state = nodeClosed
	n.events.close()
	return TranslateNodeError(n.engine.Close())
}

func (n *Node) SyncWallets() error {
	return n.run(n.engine.SyncWallets)
}

func (n *Node) NodeID() (PublicKey, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.checkOpen(); err != nil {
		return "", err
	}
	return PublicKeyFromEngine(n.engine.NodeID())
}

// ListeningAddress returns nil if the node does not accept incoming
// connections.
func (n *Node) ListeningAddress() (*NetAddress, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.checkOpen(); err != nil {
		return nil, err
	}
	addr := n.engine.ListeningAddress()
	if addr == nil {
		return nil, nil
	}
	a, err := NetAddressFromEngine(addr)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (n *Node) NewOnchainAddress() (string, error) {
	var address string
	err := n.run(func() error {
		addr, err := n.engine.NewOnchainAddress()
		if err != nil {
			return err
		}
		address, err = AddressFromEngine(addr, n.network)
		return err
	})
	return address, err
}

func (n *Node) balance(field string, get func() (uint64, error)) (Amount, error) {
	var amount Amount
	err := n.run(func() error {
		sats, err := get()
		if err != nil {
			return err
		}
		amount, err = NarrowAmount(field, sats)
		return err
	})
	return amount, err
}

func (n *Node) SpendableOnchainBalanceSats() (Amount, error) {
	return n.balance("spendable_onchain_balance_sats", n.engine.SpendableOnchainBalanceSats)
}

func (n *Node) TotalOnchainBalanceSats() (Amount, error) {
	return n.balance("total_onchain_balance_sats", n.engine.TotalOnchainBalanceSats)
}

func (n *Node) ReceivePayment(amountMsat Amount, description string, expirySecs uint32) (string, error) {
	var invoice string
	err := n.run(func() (err error) {
		invoice, err = n.engine.ReceivePayment(amountMsat.Widen(), description, expirySecs)
		return err
	})
	return invoice, err
}

func (n *Node) ReceiveVariableAmountPayment(description string, expirySecs uint32) (string, error) {
	var invoice string
	err := n.run(func() (err error) {
		invoice, err = n.engine.ReceiveVariableAmountPayment(description, expirySecs)
		return err
	})
	return invoice, err
}

func (n *Node) SendPayment(invoice string) (HexBytes, error) {
	if _, err := DecodeInvoice(invoice, n.network); err != nil {
		return nil, err
	}
	var hash HexBytes
	err := n.run(func() error {
		h, err := n.engine.SendPayment(invoice)
		if err != nil {
			return err
		}
		hash = PaymentHashFromEngine(h)
		return nil
	})
	return hash, err
}

func (n *Node) SendPaymentUsingAmount(invoice string, amountMsat Amount) (HexBytes, error) {
	if _, err := DecodeInvoice(invoice, n.network); err != nil {
		return nil, err
	}
	var hash HexBytes
	err := n.run(func() error {
		h, err := n.engine.SendPaymentUsingAmount(invoice, amountMsat.Widen())
		if err != nil {
			return err
		}
		hash = PaymentHashFromEngine(h)
		return nil
	})
	return hash, err
}

func (n *Node) SendSpontaneousPayment(amountMsat Amount, nodeID PublicKey) (HexBytes, error) {
	key, err := PublicKeyToEngine(nodeID)
	if err != nil {
		return nil, err
	}
	var hash HexBytes
	err = n.run(func() error {
		h, err := n.engine.SendSpontaneousPayment(amountMsat.Widen(), key)
		if err != nil {
			return err
		}
		hash = PaymentHashFromEngine(h)
		return nil
	})
	return hash, err
}

// ListPayments fails as a whole if any payment cannot be represented on the
// boundary.
func (n *Node) ListPayments() ([]*PaymentDetails, error) {
	var payments []*PaymentDetails
	err := n.run(func() error {
		list, err := n.engine.ListPayments()
		if err != nil {
			return err
		}
		payments = make([]*PaymentDetails, 0, len(list))
		for _, p := range list {
			d, err := PaymentDetailsFromEngine(p)
			if err != nil {
				return err
			}
			payments = append(payments, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// Payment returns nil, nil if no payment with the given hash is known.
func (n *Node) Payment(paymentHash HexBytes) (*PaymentDetails, error) {
	hash, err := PaymentHashToEngine(paymentHash)
	if err != nil {
		return nil, err
	}
	var payment *PaymentDetails
	err = n.run(func() error {
		p, err := n.engine.Payment(hash)
		if err != nil || p == nil {
			return err
		}
		payment, err = PaymentDetailsFromEngine(p)
		return err
	})
	return payment, err
}

func (n *Node) RemovePayment(paymentHash HexBytes) error {
	hash, err := PaymentHashToEngine(paymentHash)
	if err != nil {
		return err
	}
	return n.run(func() error {
		return n.engine.RemovePayment(hash)
	})
}

func (n *Node) Connect(nodeID PublicKey, address NetAddress, persist bool) error {
	key, err := PublicKeyToEngine(nodeID)
	if err != nil {
		return err
	}
	addr, err := NetAddressToEngine(address)
	if err != nil {
		return err
	}
	return n.run(func() error {
		return n.engine.Connect(key, addr, persist)
	})
}

func (n *Node) Disconnect(nodeID PublicKey) error {
	key, err := PublicKeyToEngine(nodeID)
	if err != nil {
		return err
	}
	return n.run(func() error {
		return n.engine.Disconnect(key)
	})
}

func (n *Node) ListPeers() ([]*PeerDetails, error) {
	var peers []*PeerDetails
	err := n.run(func() error {
		list, err := n.engine.ListPeers()
		if err != nil {
			return err
		}
		peers = make([]*PeerDetails, 0, len(list))
		for _, p := range list {
			d, err := PeerDetailsFromEngine(p)
			if err != nil {
				return err
			}
			peers = append(peers, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return peers, nil
}

// ConnectOpenChannel connects to the peer if needed and opens a channel to
// it. The channel is announced to the network only if announce is set.
func (n *Node) ConnectOpenChannel(
	nodeID PublicKey,
	address NetAddress,
	channelAmountSats Amount,
	pushToCounterpartyMsat *Amount,
	channelConfig *ChannelConfig,
	announce bool,
) error {
	key, err := PublicKeyToEngine(nodeID)
	if err != nil {
		return err
	}
	addr, err := NetAddressToEngine(address)
	if err != nil {
		return err
	}
	cfg, err := ChannelConfigToEngine(channelConfig)
	if err != nil {
		return err
	}
	req := &engine.OpenChannelRequest{
		NodeID:            key,
		Address:           addr,
		ChannelAmountSats: channelAmountSats.Widen(),
		ChannelConfig:     cfg,
		AnnounceChannel:   announce,
	}
	if pushToCounterpartyMsat != nil {
		push := pushToCounterpartyMsat.Widen()
		req.PushToCounterpartyMsat = &push
	}
	return n.run(func() error {
		return n.engine.ConnectOpenChannel(req)
	})
}

func (n *Node) CloseChannel(channelID HexBytes, counterpartyNodeID PublicKey) error {
	id, err := ChannelIDToEngine(channelID)
	if err != nil {
		return err
	}
	key, err := PublicKeyToEngine(counterpartyNodeID)
	if err != nil {
		return err
	}
	return n.run(func() error {
		return n.engine.CloseChannel(id, key)
	})
}

func (n *Node) ListChannels() ([]*ChannelDetails, error) {
	var channels []*ChannelDetails
	err := n.run(func() error {
		list, err := n.engine.ListChannels()
		if err != nil {
			return err
		}
		channels = make([]*ChannelDetails, 0, len(list))
		for _, c := range list {
			d, err := ChannelDetailsFromEngine(c)
			if err != nil {
				return err
			}
			channels = append(channels, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return channels, nil
}

func (n *Node) UpdateChannelConfig(channelID HexBytes, counterpartyNodeID PublicKey, channelConfig ChannelConfig) error {
	id, err := ChannelIDToEngine(channelID)
	if err != nil {
		return err
	}
	key, err := PublicKeyToEngine(counterpartyNodeID)
	if err != nil {
		return err
	}
	cfg, err := ChannelConfigToEngine(&channelConfig)
	if err != nil {
		return err
	}
	return n.run(func() error {
		return n.engine.UpdateChannelConfig(id, key, cfg)
	})
}

// SignMessage signs msg with the node key. The signature is zbase32 encoded.
func (n *Node) SignMessage(msg []byte) (string, error) {
	var sig string
	err := n.run(func() (err error) {
		sig, err = n.engine.SignMessage(msg)
		return err
	})
	return sig, err
}

// VerifySignature reports whether signature is a valid signature of msg by
// pubkey. Malformed signatures or keys are errors rather than false.
func (n *Node) VerifySignature(msg []byte, signature string, pubkey PublicKey) (bool, error) {
	if err := CheckSignature(signature); err != nil {
		return false, err
	}
	key, err := PublicKeyToEngine(pubkey)
	if err != nil {
		return false, err
	}
	var valid bool
	err = n.run(func() error {
		valid = n.engine.VerifySignature(msg, signature, key)
		return nil
	})
	return valid, err
}

func (n *Node) open() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.checkOpen()
}

// NextEvent returns the next event without blocking, or nil if there is
// none. The same event, with the same token, is returned until it is
// acknowledged.
func (n *Node) NextEvent() (*DeliveredEvent, error) {
	if err := n.open(); err != nil {
		return nil, err
	}
	return n.events.next()
}

// WaitNextEvent resolves the returned channel with the next event. Only one
// wait may be in flight per node.
func (n *Node) WaitNextEvent() <-chan EventResult {
	if err := n.open(); err != nil {
		result := make(chan EventResult, 1)
		result <- EventResult{Err: err}
		close(result)
		return result
	}
	return n.events.wait()
}

// EventHandled acknowledges the last delivered event.
func (n *Node) EventHandled() error {
	if err := n.open(); err != nil {
		return err
	}
	return n.events.handled("")
}

// EventHandledFor acknowledges the delivered event only if token belongs to
// it.
func (n *Node) EventHandledFor(token string) error {
	if err := n.open(); err != nil {
		return err
	}
	if token == "" {
		return status.Errorf(codes.MalformedValue, "event token is empty")
	}
	return n.events.handled(token)
}
