package bindings

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/breez/lnbind/bindings/codes"
	"github.com/breez/lnbind/bindings/status"
	"github.com/breez/lnbind/engine"
	"github.com/breez/lnbind/engine/memengine"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reachable(context.Context, net.Addr) error {
	return nil
}

func unreachable(_ context.Context, addr net.Addr) error {
	return errors.New("dial tcp " + addr.String() + ": connection refused")
}

func newTestNode(t *testing.T, network Network, dial memengine.DialFunc) (*Node, *memengine.Engine) {
	f := memengine.NewFactory(1_000_000)
	f.Dial = dial
	b := NewBuilder(f)
	require.NoError(t, b.SetStorageDirPath(t.TempDir()))
	require.NoError(t, b.SetEntropyBip39Mnemonic(testMnemonic, nil))
	require.NoError(t, b.SetNetwork(network))
	node, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(func() {
		node.Close()
	})
	return node, node.engine.(*memengine.Engine)
}

func newRunningNode(t *testing.T, dial memengine.DialFunc) (*Node, *memengine.Engine) {
	node, eng := newTestNode(t, NetworkRegtest, dial)
	require.NoError(t, node.Start())
	return node, eng
}

func newPeer(t *testing.T) PublicKey {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pk, err := PublicKeyFromEngine(priv.PubKey())
	require.NoError(t, err)
	return pk
}

var peerAddress = NetAddress{Host: "127.0.0.1", Port: 9735}

func TestStartTwice(t *testing.T) {
	node, _ := newTestNode(t, NetworkRegtest, reachable)
	require.NoError(t, node.Start())

	err := node.Start()
	s := status.Convert(err)
	assert.Equal(t, codes.AlreadyRunning, s.Code)
	assert.Equal(t, codes.FamilyRuntime, s.Code.Family())
}

func TestOperationsRequireRunningNode(t *testing.T) {
	node, _ := newTestNode(t, NetworkRegtest, reachable)

	_, err := node.ReceivePayment(1000, "coffee", 3600)
	assert.Equal(t, codes.NotRunning, status.Code(err))
	_, err = node.ListChannels()
	assert.Equal(t, codes.NotRunning, status.Code(err))
	assert.Equal(t, codes.NotRunning, status.Code(node.SyncWallets()))
	assert.Equal(t, codes.NotRunning, status.Code(node.Stop()))

	// Identity is available before the node runs.
	id, err := node.NodeID()
	require.NoError(t, err)
	assert.Len(t, string(id), 66)
	addr, err := node.ListeningAddress()
	require.NoError(t, err)
	assert.Nil(t, addr)
}

func TestStopAndRestart(t *testing.T) {
	node, _ := newRunningNode(t, reachable)
	require.NoError(t, node.Stop())
	assert.Equal(t, codes.NotRunning, status.Code(node.Stop()))
	_, err := node.NewOnchainAddress()
	assert.Equal(t, codes.NotRunning, status.Code(err))

	require.NoError(t, node.Start())
	_, err = node.NewOnchainAddress()
	assert.NoError(t, err)
}

func TestClose(t *testing.T) {
	node, _ := newRunningNode(t, reachable)
	require.NoError(t, node.Close())
	require.NoError(t, node.Close())

	assert.Equal(t, codes.NodeClosed, status.Code(node.Start()))
	_, err := node.NodeID()
	assert.Equal(t, codes.NodeClosed, status.Code(err))
	_, err = node.NextEvent()
	assert.Equal(t, codes.NodeClosed, status.Code(err))
	assert.Equal(t, codes.NodeClosed, status.Code(node.EventHandled()))
}

func TestRegtestReceivePayment(t *testing.T) {
	node, _ := newRunningNode(t, reachable)

	invoice, err := node.ReceivePayment(1000, "test", 3600)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(invoice, "lnbcrt"), invoice)

	inv, err := DecodeInvoice(invoice, &chaincfg.RegressionNetParams)
	require.NoError(t, err)
	require.NotNil(t, inv.MilliSat)
	assert.Equal(t, uint64(1000), uint64(*inv.MilliSat))
	require.NotNil(t, inv.Description)
	assert.Equal(t, "test", *inv.Description)

	payments, err := node.ListPayments()
	require.NoError(t, err)
	require.Len(t, payments, 1)
	p := payments[0]
	assert.Equal(t, HexBytes(inv.PaymentHash[:]), p.Hash)
	assert.Equal(t, PaymentDirectionInbound, p.Direction)
	assert.Equal(t, PaymentStatusPending, p.Status)
	require.NotNil(t, p.AmountMsat)
	assert.Equal(t, Amount(1000), *p.AmountMsat)
	assert.NotNil(t, p.Secret)
	assert.Nil(t, p.Preimage)

	variable, err := node.ReceiveVariableAmountPayment("tip jar", 600)
	require.NoError(t, err)
	inv, err = DecodeInvoice(variable, &chaincfg.RegressionNetParams)
	require.NoError(t, err)
	assert.Nil(t, inv.MilliSat)
}

func TestSendPaymentChecksInvoiceNetwork(t *testing.T) {
	mainnet, _ := newTestNode(t, NetworkBitcoin, reachable)
	require.NoError(t, mainnet.Start())
	invoice, err := mainnet.ReceivePayment(5000, "", 3600)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(invoice, "lnbc"))

	node, eng := newRunningNode(t, reachable)
	eng.FailWith("SendPayment", errors.New("engine must not be called"))
	_, err = node.SendPayment(invoice)
	assert.Equal(t, codes.MalformedInvoice, status.Code(err))
	_, err = node.SendPayment("garbage")
	assert.Equal(t, codes.MalformedInvoice, status.Code(err))
}

func TestSelfPayment(t *testing.T) {
	node, _ := newRunningNode(t, reachable)

	invoice, err := node.ReceivePayment(2500, "self", 3600)
	require.NoError(t, err)
	hash, err := node.SendPayment(invoice)
	require.NoError(t, err)

	p, err := node.Payment(hash)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, PaymentStatusSucceeded, p.Status)
	assert.NotNil(t, p.Preimage)

	_, err = node.SendPayment(invoice)
	assert.Equal(t, codes.DuplicatePayment, status.Code(err))
}

func TestPaymentLookup(t *testing.T) {
	node, _ := newRunningNode(t, reachable)

	p, err := node.Payment(make(HexBytes, 32))
	assert.NoError(t, err)
	assert.Nil(t, p)

	_, err = node.Payment(make(HexBytes, 16))
	assert.Equal(t, codes.WrongLength, status.Code(err))

	invoice, err := node.ReceivePayment(1000, "", 60)
	require.NoError(t, err)
	inv, err := DecodeInvoice(invoice, &chaincfg.RegressionNetParams)
	require.NoError(t, err)

	require.NoError(t, node.RemovePayment(inv.PaymentHash[:]))
	payments, err := node.ListPayments()
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestConnectOpenChannelUnreachablePeer(t *testing.T) {
	node, eng := newRunningNode(t, unreachable)
	eng.SetOnchainBalance(0)

	err := node.ConnectOpenChannel(newPeer(t), peerAddress, 100_000, nil, nil, false)
	s := status.Convert(err)
	assert.Equal(t, codes.ConnectionFailed, s.Code)
	assert.Contains(t, s.Message, "connection refused")
}

func TestConnectOpenChannelInsufficientFunds(t *testing.T) {
	node, eng := newRunningNode(t, reachable)
	eng.SetOnchainBalance(0)

	err := node.ConnectOpenChannel(newPeer(t), peerAddress, 100_000, nil, nil, false)
	assert.Equal(t, codes.InsufficientFunds, status.Code(err))
}

func TestConnectOpenChannelMalformedArguments(t *testing.T) {
	node, eng := newRunningNode(t, reachable)
	eng.FailWith("ConnectOpenChannel", errors.New("engine must not be called"))

	err := node.ConnectOpenChannel("02", peerAddress, 100_000, nil, nil, false)
	assert.Equal(t, codes.MalformedPublicKey, status.Code(err))

	err = node.ConnectOpenChannel(newPeer(t), NetAddress{Host: "127.0.0.1", Port: 1 << 20}, 100_000, nil, nil, false)
	assert.Equal(t, codes.MalformedNetAddress, status.Code(err))

	err = node.ConnectOpenChannel(newPeer(t), peerAddress, 100_000, nil, &ChannelConfig{CltvExpiryDelta: 1 << 17}, false)
	assert.Equal(t, codes.OutOfRange, status.Code(err))
}

func TestChannelLifecycle(t *testing.T) {
	node, _ := newRunningNode(t, reachable)
	peer := newPeer(t)
	push := Amount(10_000_000)

	require.NoError(t, node.ConnectOpenChannel(peer, peerAddress, 100_000, &push, nil, true))

	peers, err := node.ListPeers()
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Equal(t, peer, peers[0].NodeID)
	assert.Equal(t, "127.0.0.1:9735", peers[0].Address)
	assert.True(t, peers[0].IsPersisted)
	assert.True(t, peers[0].IsConnected)

	ev, err := node.NextEvent()
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, EventChannelPending, ev.Event.Type)
	require.NotNil(t, ev.Event.CounterpartyNodeID)
	assert.Equal(t, peer, *ev.Event.CounterpartyNodeID)
	require.NotNil(t, ev.Event.FundingTxo)
	require.NoError(t, node.EventHandled())

	channels, err := node.ListChannels()
	require.NoError(t, err)
	require.Len(t, channels, 1)
	c := channels[0]
	assert.Equal(t, *ev.Event.ChannelID, c.ChannelID)
	assert.Equal(t, *ev.Event.UserChannelID, c.UserChannelID)
	assert.Equal(t, Amount(100_000), c.ChannelValueSats)
	assert.Equal(t, Amount(90_000_000), c.BalanceMsat)
	assert.Equal(t, Amount(10_000_000), c.InboundCapacityMsat)
	assert.False(t, c.IsChannelReady)
	assert.True(t, c.IsPublic)

	spendable, err := node.SpendableOnchainBalanceSats()
	require.NoError(t, err)
	assert.Equal(t, Amount(1_000_000-100_000-memengine.FundingFeeSats), spendable)

	require.NoError(t, node.SyncWallets())
	ev, err = node.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, EventChannelReady, ev.Event.Type)
	require.NoError(t, node.EventHandled())

	hash, err := node.SendSpontaneousPayment(1000, peer)
	require.NoError(t, err)
	ev, err = node.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSuccessful, ev.Event.Type)
	assert.Equal(t, hash, *ev.Event.PaymentHash)
	require.NoError(t, node.EventHandled())

	cfg := ChannelConfig{ForwardingFeeBaseMsat: 500, CltvExpiryDelta: 40}
	require.NoError(t, node.UpdateChannelConfig(c.ChannelID, peer, cfg))
	channels, err = node.ListChannels()
	require.NoError(t, err)
	require.NotNil(t, channels[0].CltvExpiryDelta)
	assert.Equal(t, uint32(40), *channels[0].CltvExpiryDelta)
	assert.True(t, channels[0].IsUsable)

	err = node.CloseChannel(c.ChannelID, newPeer(t))
	assert.Equal(t, codes.ChannelClosingFailed, status.Code(err))
	require.NoError(t, node.CloseChannel(c.ChannelID, peer))
	ev, err = node.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, EventChannelClosed, ev.Event.Type)

	channels, err = node.ListChannels()
	require.NoError(t, err)
	assert.Empty(t, channels)
}

func TestConnectAndDisconnect(t *testing.T) {
	node, _ := newRunningNode(t, reachable)
	peer := newPeer(t)

	require.NoError(t, node.Connect(peer, peerAddress, false))
	peers, err := node.ListPeers()
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.False(t, peers[0].IsPersisted)

	require.NoError(t, node.Disconnect(peer))
	peers, err = node.ListPeers()
	require.NoError(t, err)
	assert.Empty(t, peers)
}

func TestBalanceNarrowing(t *testing.T) {
	node, eng := newRunningNode(t, reachable)
	eng.SetOnchainBalance(uint64(MaxAmount) + 1)

	_, err := node.TotalOnchainBalanceSats()
	s := status.Convert(err)
	assert.Equal(t, codes.OutOfRange, s.Code)
	assert.Contains(t, s.Message, "total_onchain_balance_sats")

	eng.SetOnchainBalance(MaxAmount)
	total, err := node.TotalOnchainBalanceSats()
	require.NoError(t, err)
	assert.Equal(t, Amount(MaxAmount), total)
}

func TestNewOnchainAddress(t *testing.T) {
	node, _ := newRunningNode(t, reachable)
	a1, err := node.NewOnchainAddress()
	require.NoError(t, err)
	a2, err := node.NewOnchainAddress()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a1, "bcrt1"), a1)
	assert.NotEqual(t, a1, a2)
}

func TestSignAndVerify(t *testing.T) {
	node, _ := newRunningNode(t, reachable)
	id, err := node.NodeID()
	require.NoError(t, err)

	msg := []byte("hello lightning")
	sig, err := node.SignMessage(msg)
	require.NoError(t, err)

	valid, err := node.VerifySignature(msg, sig, id)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = node.VerifySignature([]byte("tampered"), sig, id)
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = node.VerifySignature(msg, sig, newPeer(t))
	require.NoError(t, err)
	assert.False(t, valid)

	_, err = node.VerifySignature(msg, "!!", id)
	assert.Equal(t, codes.MalformedSignature, status.Code(err))
}

func TestEngineErrorsAreTranslated(t *testing.T) {
	node, eng := newRunningNode(t, reachable)
	eng.FailWith("SyncWallets", engine.NewNodeError(engine.ErrTxSyncFailed, "esplora unreachable"))

	s := status.Convert(node.SyncWallets())
	assert.Equal(t, codes.TxSyncFailed, s.Code)
	assert.Equal(t, "esplora unreachable", s.Message)

	eng.ClearFailures()
	assert.NoError(t, node.SyncWallets())
}
