package lnd

import (
	"context"

	"github.com/lightningnetwork/lnd/lnrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// mockLightningClient implements the unary calls the engine makes. Calling
// anything else panics on the nil embedded client.
type mockLightningClient struct {
	lnrpc.LightningClient

	info     *lnrpc.GetInfoResponse
	balance  *lnrpc.WalletBalanceResponse
	channels []*lnrpc.Channel
	pending  []*lnrpc.PendingChannelsResponse_PendingOpenChannel
	peers    []*lnrpc.Peer
	invoices []*lnrpc.Invoice
	payments []*lnrpc.Payment

	connectErr    error
	connects      []*lnrpc.ConnectPeerRequest
	disconnectErr error
	disconnects   []string
	policy        *lnrpc.PolicyUpdateRequest
	added         *lnrpc.Invoice
	deleted       [][]byte
	signature     string
}

func (m *mockLightningClient) GetInfo(ctx context.Context, in *lnrpc.GetInfoRequest, opts ...grpc.CallOption) (*lnrpc.GetInfoResponse, error) {
	return m.info, nil
}

func (m *mockLightningClient) WalletBalance(ctx context.Context, in *lnrpc.WalletBalanceRequest, opts ...grpc.CallOption) (*lnrpc.WalletBalanceResponse, error) {
	return m.balance, nil
}

func (m *mockLightningClient) ListChannels(ctx context.Context, in *lnrpc.ListChannelsRequest, opts ...grpc.CallOption) (*lnrpc.ListChannelsResponse, error) {
	return &lnrpc.ListChannelsResponse{Channels: m.channels}, nil
}

func (m *mockLightningClient) PendingChannels(ctx context.Context, in *lnrpc.PendingChannelsRequest, opts ...grpc.CallOption) (*lnrpc.PendingChannelsResponse, error) {
	return &lnrpc.PendingChannelsResponse{PendingOpenChannels: m.pending}, nil
}

func (m *mockLightningClient) ConnectPeer(ctx context.Context, in *lnrpc.ConnectPeerRequest, opts ...grpc.CallOption) (*lnrpc.ConnectPeerResponse, error) {
	m.connects = append(m.connects, in)
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	return &lnrpc.ConnectPeerResponse{}, nil
}

func (m *mockLightningClient) DisconnectPeer(ctx context.Context, in *lnrpc.DisconnectPeerRequest, opts ...grpc.CallOption) (*lnrpc.DisconnectPeerResponse, error) {
	m.disconnects = append(m.disconnects, in.PubKey)
	if m.disconnectErr != nil {
		return nil, m.disconnectErr
	}
	return nil, status.Error(codes.Unknown, "peer "+in.PubKey+" is not connected")
}

func (m *mockLightningClient) ListPeers(ctx context.Context, in *lnrpc.ListPeersRequest, opts ...grpc.CallOption) (*lnrpc.ListPeersResponse, error) {
	return &lnrpc.ListPeersResponse{Peers: m.peers}, nil
}

func (m *mockLightningClient) UpdateChannelPolicy(ctx context.Context, in *lnrpc.PolicyUpdateRequest, opts ...grpc.CallOption) (*lnrpc.PolicyUpdateResponse, error) {
	m.policy = in
	return &lnrpc.PolicyUpdateResponse{}, nil
}

func (m *mockLightningClient) AddInvoice(ctx context.Context, in *lnrpc.Invoice, opts ...grpc.CallOption) (*lnrpc.AddInvoiceResponse, error) {
	m.added = in
	return &lnrpc.AddInvoiceResponse{PaymentRequest: "lnbcrt1test"}, nil
}

func (m *mockLightningClient) ListInvoices(ctx context.Context, in *lnrpc.ListInvoiceRequest, opts ...grpc.CallOption) (*lnrpc.ListInvoiceResponse, error) {
	if in.IndexOffset > 0 {
		return &lnrpc.ListInvoiceResponse{}, nil
	}
	return &lnrpc.ListInvoiceResponse{Invoices: m.invoices}, nil
}

func (m *mockLightningClient) LookupInvoice(ctx context.Context, in *lnrpc.PaymentHash, opts ...grpc.CallOption) (*lnrpc.Invoice, error) {
	for _, inv := range m.invoices {
		if string(inv.RHash) == string(in.RHash) {
			return inv, nil
		}
	}
	return nil, status.Error(codes.NotFound, "unable to locate invoice")
}

func (m *mockLightningClient) ListPayments(ctx context.Context, in *lnrpc.ListPaymentsRequest, opts ...grpc.CallOption) (*lnrpc.ListPaymentsResponse, error) {
	if in.IndexOffset > 0 {
		return &lnrpc.ListPaymentsResponse{}, nil
	}
	return &lnrpc.ListPaymentsResponse{Payments: m.payments}, nil
}

func (m *mockLightningClient) DeletePayment(ctx context.Context, in *lnrpc.DeletePaymentRequest, opts ...grpc.CallOption) (*lnrpc.DeletePaymentResponse, error) {
	m.deleted = append(m.deleted, in.PaymentHash)
	return &lnrpc.DeletePaymentResponse{}, nil
}

func (m *mockLightningClient) SignMessage(ctx context.Context, in *lnrpc.SignMessageRequest, opts ...grpc.CallOption) (*lnrpc.SignMessageResponse, error) {
	return &lnrpc.SignMessageResponse{Signature: m.signature}, nil
}
