package hostrpc

import (
	"context"

	"github.com/breez/lnbind/bindings"
	"github.com/breez/lnbind/bindings/codes"
	"github.com/breez/lnbind/bindings/status"
)

type NodeServer interface {
	Start(ctx context.Context, req *NodeRequest) (*EmptyResponse, error)
	Stop(ctx context.Context, req *NodeRequest) (*EmptyResponse, error)
	Close(ctx context.Context, req *NodeRequest) (*EmptyResponse, error)
	SyncWallets(ctx context.Context, req *NodeRequest) (*EmptyResponse, error)
	NodeID(ctx context.Context, req *NodeRequest) (*NodeIDResponse, error)
	ListeningAddress(ctx context.Context, req *NodeRequest) (*ListeningAddressResponse, error)
	NewOnchainAddress(ctx context.Context, req *NodeRequest) (*NewOnchainAddressResponse, error)
	SpendableOnchainBalanceSats(ctx context.Context, req *NodeRequest) (*BalanceResponse, error)
	TotalOnchainBalanceSats(ctx context.Context, req *NodeRequest) (*BalanceResponse, error)
	ReceivePayment(ctx context.Context, req *ReceivePaymentRequest) (*InvoiceResponse, error)
	ReceiveVariableAmountPayment(ctx context.Context, req *ReceiveVariableAmountPaymentRequest) (*InvoiceResponse, error)
	SendPayment(ctx context.Context, req *SendPaymentRequest) (*PaymentHashResponse, error)
	SendPaymentUsingAmount(ctx context.Context, req *SendPaymentUsingAmountRequest) (*PaymentHashResponse, error)
	SendSpontaneousPayment(ctx context.Context, req *SendSpontaneousPaymentRequest) (*PaymentHashResponse, error)
	ListPayments(ctx context.Context, req *NodeRequest) (*ListPaymentsResponse, error)
	Payment(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error)
	RemovePayment(ctx context.Context, req *PaymentRequest) (*EmptyResponse, error)
	Connect(ctx context.Context, req *ConnectRequest) (*EmptyResponse, error)
	Disconnect(ctx context.Context, req *DisconnectRequest) (*EmptyResponse, error)
	ListPeers(ctx context.Context, req *NodeRequest) (*ListPeersResponse, error)
	ConnectOpenChannel(ctx context.Context, req *ConnectOpenChannelRequest) (*EmptyResponse, error)
	CloseChannel(ctx context.Context, req *CloseChannelRequest) (*EmptyResponse, error)
	ListChannels(ctx context.Context, req *NodeRequest) (*ListChannelsResponse, error)
	UpdateChannelConfig(ctx context.Context, req *UpdateChannelConfigRequest) (*EmptyResponse, error)
	SignMessage(ctx context.Context, req *SignMessageRequest) (*SignMessageResponse, error)
	VerifySignature(ctx context.Context, req *VerifySignatureRequest) (*VerifySignatureResponse, error)
	NextEvent(ctx context.Context, req *NodeRequest) (*EventResponse, error)
	WaitNextEvent(ctx context.Context, req *NodeRequest) (*EventResponse, error)
	EventHandled(ctx context.Context, req *EventHandledRequest) (*EmptyResponse, error)
}

type nodeServer struct {
	registry *Registry
}

type NodeRequest struct {
	Node string `json:"node"`
}

type NodeIDResponse struct {
	NodeID bindings.PublicKey `json:"node_id"`
}

type ListeningAddressResponse struct {
	ListeningAddress *bindings.NetAddress `json:"listening_address"`
}

type NewOnchainAddressResponse struct {
	Address string `json:"address"`
}

type BalanceResponse struct {
	BalanceSats bindings.Amount `json:"balance_sats"`
}

type ReceivePaymentRequest struct {
	Node        string          `json:"node"`
	AmountMsat  bindings.Amount `json:"amount_msat"`
	Description string          `json:"description"`
	ExpirySecs  uint32          `json:"expiry_secs"`
}

type ReceiveVariableAmountPaymentRequest struct {
	Node        string `json:"node"`
	Description string `json:"description"`
	ExpirySecs  uint32 `json:"expiry_secs"`
}

type InvoiceResponse struct {
	Invoice string `json:"invoice"`
}

type SendPaymentRequest struct {
	Node    string `json:"node"`
	Invoice string `json:"invoice"`
}

type SendPaymentUsingAmountRequest struct {
	Node       string          `json:"node"`
	Invoice    string          `json:"invoice"`
	AmountMsat bindings.Amount `json:"amount_msat"`
}

type SendSpontaneousPaymentRequest struct {
	Node       string             `json:"node"`
	AmountMsat bindings.Amount    `json:"amount_msat"`
	NodeID     bindings.PublicKey `json:"node_id"`
}

type PaymentHashResponse struct {
	PaymentHash bindings.HexBytes `json:"payment_hash"`
}

type ListPaymentsResponse struct {
	Payments []*bindings.PaymentDetails `json:"payments"`
}

type PaymentRequest struct {
	Node        string            `json:"node"`
	PaymentHash bindings.HexBytes `json:"payment_hash"`
}

type PaymentResponse struct {
	Payment *bindings.PaymentDetails `json:"payment"`
}

type ConnectRequest struct {
	Node    string              `json:"node"`
	NodeID  bindings.PublicKey  `json:"node_id"`
	Address bindings.NetAddress `json:"address"`
	Persist bool                `json:"persist"`
}

type DisconnectRequest struct {
	Node   string             `json:"node"`
	NodeID bindings.PublicKey `json:"node_id"`
}

type ListPeersResponse struct {
	Peers []*bindings.PeerDetails `json:"peers"`
}

type ConnectOpenChannelRequest struct {
	Node                   string                  `json:"node"`
	NodeID                 bindings.PublicKey      `json:"node_id"`
	Address                bindings.NetAddress     `json:"address"`
	ChannelAmountSats      bindings.Amount         `json:"channel_amount_sats"`
	PushToCounterpartyMsat *bindings.Amount        `json:"push_to_counterparty_msat"`
	ChannelConfig          *bindings.ChannelConfig `json:"channel_config"`
	AnnounceChannel        bool                    `json:"announce_channel"`
}

type CloseChannelRequest struct {
	Node               string             `json:"node"`
	ChannelID          bindings.HexBytes  `json:"channel_id"`
	CounterpartyNodeID bindings.PublicKey `json:"counterparty_node_id"`
}

type ListChannelsResponse struct {
	Channels []*bindings.ChannelDetails `json:"channels"`
}

type UpdateChannelConfigRequest struct {
	Node               string                 `json:"node"`
	ChannelID          bindings.HexBytes      `json:"channel_id"`
	CounterpartyNodeID bindings.PublicKey     `json:"counterparty_node_id"`
	ChannelConfig      bindings.ChannelConfig `json:"channel_config"`
}

type SignMessageRequest struct {
	Node string            `json:"node"`
	Msg  bindings.HexBytes `json:"msg"`
}

type SignMessageResponse struct {
	Signature string `json:"signature"`
}

type VerifySignatureRequest struct {
	Node      string             `json:"node"`
	Msg       bindings.HexBytes  `json:"msg"`
	Signature string             `json:"signature"`
	PublicKey bindings.PublicKey `json:"public_key"`
}

type VerifySignatureResponse struct {
	Valid bool `json:"valid"`
}

// EventResponse carries a nil event when none is queued.
type EventResponse struct {
	Event *bindings.DeliveredEvent `json:"event"`
}

// EventHandledRequest acknowledges the last delivered event. If Token is
// set, it must belong to that event.
type EventHandledRequest struct {
	Node  string  `json:"node"`
	Token *string `json:"token"`
}

func NewNodeServer(registry *Registry) NodeServer {
	return &nodeServer{
		registry: registry,
	}
}

func (s *nodeServer) empty(id string, f func(*bindings.Node) error) (*EmptyResponse, error) {
	n, err := s.registry.Node(id)
	if err != nil {
		return nil, err
	}
	if err := f(n); err != nil {
		return nil, err
	}
	return &EmptyResponse{}, nil
}

func (s *nodeServer) Start(ctx context.Context, req *NodeRequest) (*EmptyResponse, error) {
	return s.empty(req.Node, (*bindings.Node).Start)
}

func (s *nodeServer) Stop(ctx context.Context, req *NodeRequest) (*EmptyResponse, error) {
	return s.empty(req.Node, (*bindings.Node).Stop)
}

func (s *nodeServer) Close(ctx context.Context, req *NodeRequest) (*EmptyResponse, error) {
	return s.empty(req.Node, (*bindings.Node).Close)
}

func (s *nodeServer) SyncWallets(ctx context.Context, req *NodeRequest) (*EmptyResponse, error) {
	return s.empty(req.Node, (*bindings.Node).SyncWallets)
}

func (s *nodeServer) NodeID(ctx context.Context, req *NodeRequest) (*NodeIDResponse, error) {
	n, err := s.registry.Node(req.Node)
	if err != nil {
		return nil, err
	}
	id, err := n.NodeID()
	if err != nil {
		return nil, err
	}
	return &NodeIDResponse{NodeID: id}, nil
}

func (s *nodeServer) ListeningAddress(ctx context.Context, req *NodeRequest) (*ListeningAddressResponse, error) {
	n, err := s.registry.Node(req.Node)
	if err != nil {
		return nil, err
	}
	addr, err := n.ListeningAddress()
	if err != nil {
		return nil, err
	}
	return &ListeningAddressResponse{ListeningAddress: addr}, nil
}

func (s *nodeServer) NewOnchainAddress(ctx context.Context, req *NodeRequest) (*NewOnchainAddressResponse, error) {
	n, err := s.registry.Node(req.Node)
	if err != nil {
		return nil, err
	}
	addr, err := n.NewOnchainAddress()
	if err != nil {
		return nil, err
	}
	return &NewOnchainAddressResponse{Address: addr}, nil
}

func (s *nodeServer) balance(id string, get func(*bindings.Node) (bindings.Amount, error)) (*BalanceResponse, error) {
	n, err := s.registry.Node(id)
	if err != nil {
		return nil, err
	}
	sats, err := get(n)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{BalanceSats: sats}, nil
}

func (s *nodeServer) SpendableOnchainBalanceSats(ctx context.Context, req *NodeRequest) (*BalanceResponse, error) {
	return s.balance(req.Node, (*bindings.Node).SpendableOnchainBalanceSats)
}

func (s *nodeServer) TotalOnchainBalanceSats(ctx context.Context, req *NodeRequest) (*BalanceResponse, error) {
	return s.balance(req.Node, (*bindings.Node).TotalOnchainBalanceSats)
}

func (s *nodeServer) ReceivePayment(ctx context.Context, req *ReceivePaymentRequest) (*InvoiceResponse, error) {
	n, err := s.registry.Node(req.Node)
	if err != nil {
		return nil, err
	}
	invoice, err := n.ReceivePayment(req.AmountMsat, req.Description, req.ExpirySecs)
	if err != nil {
		return nil, err
	}
	return &InvoiceResponse{Invoice: invoice}, nil
}

func (s *nodeServer) ReceiveVariableAmountPayment(ctx context.Context, req *ReceiveVariableAmountPaymentRequest) (*InvoiceResponse, error) {
	n, err := s.registry.Node(req.Node)
	if err != nil {
		return nil, err
	}
	invoice, err := n.ReceiveVariableAmountPayment(req.Description, req.ExpirySecs)
	if err != nil {
		return nil, err
	}
	return &InvoiceResponse{Invoice: invoice}, nil
}

func (s *nodeServer) pay(id string, send func(*bindings.Node) (bindings.HexBytes, error)) (*PaymentHashResponse, error) {
	n, err := s.registry.Node(id)
	if err != nil {
		return nil, err
	}
	hash, err := send(n)
	if err != nil {
		return nil, err
	}
	return &PaymentHashResponse{PaymentHash: hash}, nil
}

func (s *nodeServer) SendPayment(ctx context.Context, req *SendPaymentRequest) (*PaymentHashResponse, error) {
	return s.pay(req.Node, func(n *bindings.Node) (bindings.HexBytes, error) {
		return n.SendPayment(req.Invoice)
	})
}

func (s *nodeServer) SendPaymentUsingAmount(ctx context.Context, req *SendPaymentUsingAmountRequest) (*PaymentHashResponse, error) {
	return s.pay(req.Node, func(n *bindings.Node) (bindings.HexBytes, error) {
		return n.SendPaymentUsingAmount(req.Invoice, req.AmountMsat)
	})
}

func (s *nodeServer) SendSpontaneousPayment(ctx context.Context, req *SendSpontaneousPaymentRequest) (*PaymentHashResponse, error) {
	return s.pay(req.Node, func(n *bindings.Node) (bindings.HexBytes, error) {
		return n.SendSpontaneousPayment(req.AmountMsat, req.NodeID)
	})
}

func (s *nodeServer) ListPayments(ctx context.Context, req *NodeRequest) (*ListPaymentsResponse, error) {
	n, err := s.registry.Node(req.Node)
	if err != nil {
		return nil, err
	}
	payments, err := n.ListPayments()
	if err != nil {
		return nil, err
	}
	return &ListPaymentsResponse{Payments: payments}, nil
}

func (s *nodeServer) Payment(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error) {
	n, err := s.registry.Node(req.Node)
	if err != nil {
		return nil, err
	}
	payment, err := n.Payment(req.PaymentHash)
	if err != nil {
		return nil, err
	}
	return &PaymentResponse{Payment: payment}, nil
}

func (s *nodeServer) RemovePayment(ctx context.Context, req *PaymentRequest) (*EmptyResponse, error) {
	return s.empty(req.Node, func(n *bindings.Node) error {
		return n.RemovePayment(req.PaymentHash)
	})
}

func (s *nodeServer) Connect(ctx context.Context, req *ConnectRequest) (*EmptyResponse, error) {
	return s.empty(req.Node, func(n *bindings.Node) error {
		return n.Connect(req.NodeID, req.Address, req.Persist)
	})
}

func (s *nodeServer) Disconnect(ctx context.Context, req *DisconnectRequest) (*EmptyResponse, error) {
	return s.empty(req.Node, func(n *bindings.Node) error {
		return n.Disconnect(req.NodeID)
	})
}

func (s *nodeServer) ListPeers(ctx context.Context, req *NodeRequest) (*ListPeersResponse, error) {
	n, err := s.registry.Node(req.Node)
	if err != nil {
		return nil, err
	}
	peers, err := n.ListPeers()
	if err != nil {
		return nil, err
	}
	return &ListPeersResponse{Peers: peers}, nil
}

func (s *nodeServer) ConnectOpenChannel(ctx context.Context, req *ConnectOpenChannelRequest) (*EmptyResponse, error) {
	return s.empty(req.Node, func(n *bindings.Node) error {
		return n.ConnectOpenChannel(
			req.NodeID,
			req.Address,
			req.ChannelAmountSats,
			req.PushToCounterpartyMsat,
			req.ChannelConfig,
			req.AnnounceChannel,
		)
	})
}

func (s *nodeServer) CloseChannel(ctx context.Context, req *CloseChannelRequest) (*EmptyResponse, error) {
	return s.empty(req.Node, func(n *bindings.Node) error {
		return n.CloseChannel(req.ChannelID, req.CounterpartyNodeID)
	})
}

func (s *nodeServer) ListChannels(ctx context.Context, req *NodeRequest) (*ListChannelsResponse, error) {
	n, err := s.registry.Node(req.Node)
	if err != nil {
		return nil, err
	}
	channels, err := n.ListChannels()
	if err != nil {
		return nil, err
	}
	return &ListChannelsResponse{Channels: channels}, nil
}

func (s *nodeServer) UpdateChannelConfig(ctx context.Context, req *UpdateChannelConfigRequest) (*EmptyResponse, error) {
	return s.empty(req.Node, func(n *bindings.Node) error {
		return n.UpdateChannelConfig(req.ChannelID, req.CounterpartyNodeID, req.ChannelConfig)
	})
}

func (s *nodeServer) SignMessage(ctx context.Context, req *SignMessageRequest) (*SignMessageResponse, error) {
	n, err := s.registry.Node(req.Node)
	if err != nil {
		return nil, err
	}
	sig, err := n.SignMessage(req.Msg)
	if err != nil {
		return nil, err
	}
	return &SignMessageResponse{Signature: sig}, nil
}

func (s *nodeServer) VerifySignature(ctx context.Context, req *VerifySignatureRequest) (*VerifySignatureResponse, error) {
	n, err := s.registry.Node(req.Node)
	if err != nil {
		return nil, err
	}
	valid, err := n.VerifySignature(req.Msg, req.Signature, req.PublicKey)
	if err != nil {
		return nil, err
	}
	return &VerifySignatureResponse{Valid: valid}, nil
}

func (s *nodeServer) NextEvent(ctx context.Context, req *NodeRequest) (*EventResponse, error) {
	n, err := s.registry.Node(req.Node)
	if err != nil {
		return nil, err
	}
	ev, err := n.NextEvent()
	if err != nil {
		return nil, err
	}
	return &EventResponse{Event: ev}, nil
}

// WaitNextEvent blocks until an event is available. If the host goes away
// first, the wait stays in flight and resolves the next call for this node.
func (s *nodeServer) WaitNextEvent(ctx context.Context, req *NodeRequest) (*EventResponse, error) {
	entry, err := s.registry.entry(req.Node)
	if err != nil {
		return nil, err
	}
	wait, err := entry.startWait()
	if err != nil {
		return nil, err
	}

	select {
	case r := <-wait:
		entry.endWait(true)
		if r.Err != nil {
			return nil, r.Err
		}
		return &EventResponse{Event: r.Event}, nil
	case <-ctx.Done():
		entry.endWait(false)
		return nil, status.Errorf(codes.Unknown, "wait abandoned: %v", ctx.Err())
	}
}

func (s *nodeServer) EventHandled(ctx context.Context, req *EventHandledRequest) (*EmptyResponse, error) {
	return s.empty(req.Node, func(n *bindings.Node) error {
		if req.Token == nil {
			return n.EventHandled()
		}
		return n.EventHandledFor(*req.Token)
	})
}

func nodeMethod(name string, call func(NodeServer, context.Context, func(interface{}) error) (interface{}, error)) MethodDesc {
	return MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
			return call(srv.(NodeServer), ctx, dec)
		},
	}
}

func RegisterNodeServer(s ServiceRegistrar, n NodeServer) {
	s.RegisterService(
		&ServiceDesc{
			ServiceName: "node",
			HandlerType: (*NodeServer)(nil),
			Methods: []MethodDesc{
				nodeMethod("node.start", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(NodeRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.Start(ctx, in)
				}),
				nodeMethod("node.stop", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(NodeRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.Stop(ctx, in)
				}),
				nodeMethod("node.close", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(NodeRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.Close(ctx, in)
				}),
				nodeMethod("node.sync_wallets", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(NodeRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.SyncWallets(ctx, in)
				}),
				nodeMethod("node.node_id", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(NodeRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.NodeID(ctx, in)
				}),
				nodeMethod("node.listening_address", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(NodeRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.ListeningAddress(ctx, in)
				}),
				nodeMethod("node.new_onchain_address", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(NodeRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.NewOnchainAddress(ctx, in)
				}),
				nodeMethod("node.spendable_onchain_balance_sats", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(NodeRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.SpendableOnchainBalanceSats(ctx, in)
				}),
				nodeMethod("node.total_onchain_balance_sats", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(NodeRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.TotalOnchainBalanceSats(ctx, in)
				}),
				nodeMethod("node.receive_payment", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(ReceivePaymentRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.ReceivePayment(ctx, in)
				}),
				nodeMethod("node.receive_variable_amount_payment", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(ReceiveVariableAmountPaymentRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.ReceiveVariableAmountPayment(ctx, in)
				}),
				nodeMethod("node.send_payment", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(SendPaymentRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.SendPayment(ctx, in)
				}),
				nodeMethod("node.send_payment_using_amount", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(SendPaymentUsingAmountRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.SendPaymentUsingAmount(ctx, in)
				}),
				nodeMethod("node.send_spontaneous_payment", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(SendSpontaneousPaymentRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.SendSpontaneousPayment(ctx, in)
				}),
				nodeMethod("node.list_payments", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(NodeRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.ListPayments(ctx, in)
				}),
				nodeMethod("node.payment", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(PaymentRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.Payment(ctx, in)
				}),
				nodeMethod("node.remove_payment", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(PaymentRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.RemovePayment(ctx, in)
				}),
				nodeMethod("node.connect", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(ConnectRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.Connect(ctx, in)
				}),
				nodeMethod("node.disconnect", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(DisconnectRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.Disconnect(ctx, in)
				}),
				nodeMethod("node.list_peers", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(NodeRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.ListPeers(ctx, in)
				}),
				nodeMethod("node.connect_open_channel", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(ConnectOpenChannelRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.ConnectOpenChannel(ctx, in)
				}),
				nodeMethod("node.close_channel", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(CloseChannelRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.CloseChannel(ctx, in)
				}),
				nodeMethod("node.list_channels", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(NodeRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.ListChannels(ctx, in)
				}),
				nodeMethod("node.update_channel_config", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(UpdateChannelConfigRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.UpdateChannelConfig(ctx, in)
				}),
				nodeMethod("node.sign_message", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(SignMessageRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.SignMessage(ctx, in)
				}),
				nodeMethod("node.verify_signature", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(VerifySignatureRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.VerifySignature(ctx, in)
				}),
				nodeMethod("node.next_event", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(NodeRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.NextEvent(ctx, in)
				}),
				nodeMethod("node.wait_next_event", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(NodeRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.WaitNextEvent(ctx, in)
				}),
				nodeMethod("node.event_handled", func(srv NodeServer, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
					in := new(EventHandledRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					return srv.EventHandled(ctx, in)
				}),
			},
		},
		n,
	)
}
