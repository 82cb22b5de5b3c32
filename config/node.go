package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

type LndConfig struct {
	// Address to the grpc api.
	Address string `toml:"Address"`

	// tls cert for the grpc api. Can either be a file path or the cert
	// contents. Typically stored in `lnd-dir/tls.cert`.
	Cert string `toml:"Cert"`

	// macaroon to use. Can either be a file path or the hex encoded macaroon.
	// May be empty if lnd has no wallet yet, then the admin macaroon returned
	// by the wallet initialization is used.
	Macaroon string `toml:"Macaroon"`

	// Password of the lnd wallet. Used to create the wallet from the node's
	// entropy if it doesn't exist yet, or to unlock it.
	WalletPassword string `toml:"WalletPassword"`
}

type MemoryConfig struct {
	// Confirmed on-chain balance every built node starts with.
	OnchainBalanceSats uint64 `toml:"OnchainBalanceSats"`
}

// CertPEM returns the tls cert contents.
func (c *LndConfig) CertPEM() ([]byte, error) {
	if strings.Contains(c.Cert, "-----BEGIN CERTIFICATE-----") {
		return []byte(c.Cert), nil
	}

	b, err := os.ReadFile(c.Cert)
	if err != nil {
		return nil, fmt.Errorf("failed to read lnd cert %s: %w", c.Cert, err)
	}
	return b, nil
}

// MacaroonHex returns the hex encoded macaroon, or an empty string if none is
// configured.
func (c *LndConfig) MacaroonHex() (string, error) {
	if c.Macaroon == "" {
		return "", nil
	}

	if _, err := hex.DecodeString(c.Macaroon); err == nil {
		return c.Macaroon, nil
	}

	b, err := os.ReadFile(c.Macaroon)
	if err != nil {
		return "", fmt.Errorf("failed to read lnd macaroon %s: %w", c.Macaroon, err)
	}
	return hex.EncodeToString(b), nil
}
