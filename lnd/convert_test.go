package lnd

import (
	"errors"
	"net"
	"testing"

	"github.com/breez/lnbind/engine"
	"github.com/breez/lnbind/lightning"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLndNetwork(t *testing.T) {
	tests := []struct {
		params *chaincfg.Params
		want   string
	}{
		{&chaincfg.MainNetParams, "mainnet"},
		{&chaincfg.TestNet3Params, "testnet"},
		{&chaincfg.RegressionNetParams, "regtest"},
		{&chaincfg.SigNetParams, "signet"},
	}
	for _, tt := range tests {
		got, err := lndNetwork(tt.params)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := lndNetwork(&chaincfg.Params{Name: "litecoin"})
	assert.Error(t, err)
}

func TestUserChannelID(t *testing.T) {
	a, err := lightning.NewOutPointFromString(testChannelPoint)
	require.NoError(t, err)
	b := *a
	b.Index++

	assert.Equal(t, userChannelID(a), userChannelID(a))
	assert.NotEqual(t, userChannelID(a), userChannelID(&b))
	assert.NotEqual(t, engine.UserChannelID{}, userChannelID(a))
}

func TestListeningAddress(t *testing.T) {
	configured := &net.TCPAddr{IP: net.IPv4zero, Port: 9735}

	addr := listeningAddress([]string{
		"02abc@lnd.onion:9735",
		"02abc@203.0.113.7:9736",
	}, configured)
	assert.Equal(t, "203.0.113.7:9736", addr.String())

	addr = listeningAddress([]string{"02abc@[2001:db8::1]:9735"}, nil)
	assert.Equal(t, "[2001:db8::1]:9735", addr.String())

	assert.Equal(t, configured, listeningAddress(nil, configured))
	assert.Nil(t, listeningAddress([]string{"garbage"}, nil))
}

func TestChannelPoint(t *testing.T) {
	op, err := lightning.NewOutPointFromString(testChannelPoint)
	require.NoError(t, err)

	cp := channelPoint(op)
	back, err := lightning.NewOutPoint(cp.GetFundingTxidBytes(), cp.OutputIndex)
	require.NoError(t, err)
	assert.Equal(t, testChannelPoint, back.String())
}

func TestNodeError(t *testing.T) {
	tests := []struct {
		err      error
		fallback engine.NodeErrorKind
		want     engine.NodeErrorKind
	}{
		{status.Error(codes.Unknown, "not enough witness outputs to create funding transaction, need 0.01 BTC only have 0 BTC available"), engine.ErrChannelCreationFailed, engine.ErrInsufficientFunds},
		{status.Error(codes.Unknown, "insufficient funds available to construct transaction"), engine.ErrOnchainTxCreationFailed, engine.ErrInsufficientFunds},
		{status.Error(codes.AlreadyExists, "invoice is already paid"), engine.ErrPaymentSendingFailed, engine.ErrDuplicatePayment},
		{status.Error(codes.AlreadyExists, "wallet already exists"), engine.ErrWalletOperationFailed, engine.ErrWalletOperationFailed},
		{status.Error(codes.Unavailable, "connection refused"), engine.ErrPersistenceFailed, engine.ErrConnectionFailed},
		{status.Error(codes.Unknown, "no route"), engine.ErrPaymentSendingFailed, engine.ErrPaymentSendingFailed},
		{errors.New("payment is in transition"), engine.ErrPaymentSendingFailed, engine.ErrDuplicatePayment},
	}
	for _, tt := range tests {
		got := nodeError(tt.fallback, tt.err)
		assert.Equal(t, tt.want, got.Kind, tt.err.Error())
		assert.NotContains(t, got.Msg, "rpc error")
	}
}

func TestPeerStore(t *testing.T) {
	dir := t.TempDir()
	s, err := loadPeerStore(dir)
	require.NoError(t, err)
	assert.Empty(t, s.list())

	require.NoError(t, s.add(storedPeer{NodeID: "02aa", Address: "127.0.0.1:9735"}))
	require.NoError(t, s.add(storedPeer{NodeID: "02bb", Address: "127.0.0.1:9736"}))
	require.NoError(t, s.add(storedPeer{NodeID: "02aa", Address: "127.0.0.1:9737"}))

	s, err = loadPeerStore(dir)
	require.NoError(t, err)
	assert.Equal(t, []storedPeer{
		{NodeID: "02aa", Address: "127.0.0.1:9737"},
		{NodeID: "02bb", Address: "127.0.0.1:9736"},
	}, s.list())

	require.NoError(t, s.remove("02aa"))
	require.NoError(t, s.remove("02cc"))
	s, err = loadPeerStore(dir)
	require.NoError(t, err)
	p, ok := s.get("02bb")
	assert.True(t, ok)
	assert.Equal(t, "127.0.0.1:9736", p.Address)
	_, ok = s.get("02aa")
	assert.False(t, ok)
}
