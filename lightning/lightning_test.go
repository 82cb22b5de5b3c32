package lightning

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyMessage(t *testing.T) {
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	sig, err := SignMessage(key, []byte("hello"))
	require.NoError(t, err)

	signer, err := VerifyMessage([]byte("hello"), sig)
	require.NoError(t, err)
	assert.True(t, signer.IsEqual(key.PubKey()))
	assert.True(t, VerifyMessageFrom([]byte("hello"), sig, key.PubKey()))
	assert.False(t, VerifyMessageFrom([]byte("hellO"), sig, key.PubKey()))

	_, err = VerifyMessage([]byte("hello"), "not zbase32")
	assert.Error(t, err)
}

func TestShortChannelID(t *testing.T) {
	scid, err := NewShortChannelIDFromString("700000x1234x1")
	require.NoError(t, err)
	assert.Equal(t, "700000x1234x1", scid.String())
	assert.True(t, scid.IsConfirmed())

	zero, err := NewShortChannelIDFromString("")
	require.NoError(t, err)
	assert.False(t, zero.IsConfirmed())

	_, err = NewShortChannelIDFromString("1x2")
	assert.Error(t, err)
	_, err = NewShortChannelIDFromString("1x2x70000")
	assert.Error(t, err)
}

func TestNewOutPointFromString(t *testing.T) {
	s := "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b:2"
	op, err := NewOutPointFromString(s)
	require.NoError(t, err)
	assert.Equal(t, s, op.String())

	_, err = NewOutPointFromString("abcd")
	assert.Error(t, err)
	_, err = NewOutPointFromString("zz:1")
	assert.Error(t, err)
}
