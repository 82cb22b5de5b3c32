package lnd

import (
	"context"
)

// MacaroonCredential authenticates every grpc call to lnd with a hex encoded
// macaroon.
type MacaroonCredential struct {
	MacaroonHex string
}

func NewMacaroonCredential(hex string) *MacaroonCredential {
	return &MacaroonCredential{
		MacaroonHex: hex,
	}
}

func (m *MacaroonCredential) RequireTransportSecurity() bool {
	return true
}

func (m *MacaroonCredential) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{"macaroon": m.MacaroonHex}, nil
}
