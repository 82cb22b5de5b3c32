package lightning

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/tv42/zbase32"
)

var ErrInvalidSignature = fmt.Errorf("invalid signature")
var SignedMsgPrefix = []byte("Lightning Signed Message:")

func messageDigest(message []byte) []byte {
	msg := make([]byte, 0, len(SignedMsgPrefix)+len(message))
	msg = append(msg, SignedMsgPrefix...)
	msg = append(msg, message...)
	first := sha256.Sum256(msg)
	second := sha256.Sum256(first[:])
	return second[:]
}

// SignMessage signs message the way lnd's signmessage does, returning a
// zbase32 encoded recoverable signature.
func SignMessage(key *btcec.PrivateKey, message []byte) (string, error) {
	sig, err := ecdsa.SignCompact(key, messageDigest(message), true)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	return zbase32.EncodeToString(sig), nil
}

// VerifyMessage recovers the public key that signed message.
func VerifyMessage(message []byte, signature string) (*btcec.PublicKey, error) {
	// The signature should be zbase32 encoded
	sig, err := zbase32.DecodeString(signature)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature: %v", err)
	}

	pubkey, wasCompressed, err := ecdsa.RecoverCompact(
		sig,
		messageDigest(message),
	)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	if !wasCompressed {
		return nil, ErrInvalidSignature
	}

	return pubkey, nil
}

// VerifyMessageFrom reports whether signature is a valid signature of message
// by pubkey.
func VerifyMessageFrom(message []byte, signature string, pubkey *btcec.PublicKey) bool {
	signer, err := VerifyMessage(message, signature)
	if err != nil {
		return false
	}
	return signer.IsEqual(pubkey)
}
