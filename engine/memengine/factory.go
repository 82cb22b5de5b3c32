// Package memengine is an engine.Engine that keeps its whole state in
// memory. It creates real invoices and signatures from the configured seed
// but never touches the bitcoin or lightning networks, which makes it useful
// for tests and for exercising hosts without a backing node.
package memengine

import (
	"context"
	"log"
	"net"
	"os"
	"time"

	"github.com/breez/lnbind/engine"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/lightningnetwork/lnd/lntypes"
)

// DialFunc checks that a peer is reachable.
type DialFunc func(ctx context.Context, addr net.Addr) error

type Factory struct {
	// OnchainBalanceSats is the confirmed on-chain balance every built
	// engine starts with.
	OnchainBalanceSats uint64

	// Dial defaults to a tcp dial with DialTimeout.
	Dial        DialFunc
	DialTimeout time.Duration
}

func NewFactory(onchainBalanceSats uint64) *Factory {
	return &Factory{
		OnchainBalanceSats: onchainBalanceSats,
		DialTimeout:        5 * time.Second,
	}
}

func tcpDial(ctx context.Context, addr net.Addr) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return err
	}
	return conn.Close()
}

func (f *Factory) Build(cfg *engine.Config) (engine.Engine, error) {
	if cfg.Network == nil {
		return nil, engine.NewBuildError(engine.BuildErrInvalidNetwork, "no network configured")
	}
	if err := os.MkdirAll(cfg.StorageDirPath, 0700); err != nil {
		return nil, engine.NewBuildError(engine.BuildErrStoragePathAccessFailed, "failed to create storage dir %s: %v", cfg.StorageDirPath, err)
	}

	seed, err := engine.Seed(cfg.Entropy)
	if err != nil {
		return nil, err
	}
	master, err := hdkeychain.NewMaster(seed, cfg.Network)
	if err != nil {
		return nil, engine.NewBuildError(engine.BuildErrWalletSetupFailed, "failed to derive master key: %v", err)
	}
	key, err := master.ECPrivKey()
	if err != nil {
		return nil, engine.NewBuildError(engine.BuildErrWalletSetupFailed, "failed to derive node key: %v", err)
	}

	dial := f.Dial
	if dial == nil {
		dial = tcpDial
	}
	timeout := f.DialTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	log.Printf("memengine: built node %x on %s", key.PubKey().SerializeCompressed(), cfg.Network.Name)
	return &Engine{
		cfg:         cfg,
		master:      master,
		key:         key,
		dial:        dial,
		dialTimeout: timeout,
		spendable:   f.OnchainBalanceSats,
		payments:    make(map[lntypes.Hash]*engine.PaymentDetails),
		preimages:   make(map[lntypes.Hash]lntypes.Preimage),
		peers:       make(map[peerKey]*engine.PeerDetails),
		failures:    make(map[string]error),
		events:      engine.NewEventQueue(),
	}, nil
}
