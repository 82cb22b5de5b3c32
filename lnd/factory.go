package lnd

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/breez/lnbind/chain"
	"github.com/breez/lnbind/config"
	"github.com/breez/lnbind/engine"
	"github.com/breez/lnbind/mempool"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
)

const (
	DefaultStartupTimeout = 2 * time.Minute
	defaultTargetConf     = 6
)

// Factory builds engines that all talk to the same lnd node. The node's
// wallet is created from the configured entropy if it doesn't exist yet.
type Factory struct {
	Conf           *config.LndConfig
	StartupTimeout time.Duration
}

func NewFactory(conf *config.LndConfig) *Factory {
	return &Factory{
		Conf:           conf,
		StartupTimeout: DefaultStartupTimeout,
	}
}

func (f *Factory) Build(cfg *engine.Config) (engine.Engine, error) {
	if cfg.Network == nil {
		return nil, engine.NewBuildError(engine.BuildErrInvalidNetwork, "network not set")
	}
	network, err := lndNetwork(cfg.Network)
	if err != nil {
		return nil, engine.NewBuildError(engine.BuildErrInvalidNetwork, "%v", err)
	}
	if rgs, ok := cfg.GossipSource.(engine.RapidGossipSync); ok {
		return nil, engine.NewBuildError(engine.BuildErrGossipSourceSetupFailed, "lnd does not support rapid gossip sync from %s", rgs.ServerURL)
	}

	if err := os.MkdirAll(cfg.StorageDirPath, 0700); err != nil {
		return nil, engine.NewBuildError(engine.BuildErrStoragePathAccessFailed, "%v", err)
	}
	peers, err := loadPeerStore(cfg.StorageDirPath)
	if err != nil {
		return nil, engine.NewBuildError(engine.BuildErrReadFailed, "%v", err)
	}

	fees, err := newFeeEstimator(cfg)
	if err != nil {
		return nil, engine.NewBuildError(engine.BuildErrChainSourceSetupFailed, "%v", err)
	}

	seed, err := engine.Seed(cfg.Entropy)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.StartupTimeout)
	defer cancel()
	macaroon, err := f.unlock(ctx, seed, cfg.Network)
	if err != nil {
		log.Printf("LND: wallet setup failed: %v", err)
		return nil, engine.NewBuildError(engine.BuildErrWalletSetupFailed, "%v", err)
	}

	conn, err := dial(f.Conf, macaroon)
	if err != nil {
		return nil, engine.NewBuildError(engine.BuildErrWalletSetupFailed, "%v", err)
	}

	client := lnrpc.NewLightningClient(conn)
	info, err := client.GetInfo(ctx, &lnrpc.GetInfoRequest{})
	if err != nil {
		conn.Close()
		log.Printf("LND: client.GetInfo() error: %v", err)
		return nil, engine.NewBuildError(engine.BuildErrWalletSetupFailed, "%v", err)
	}
	for _, c := range info.Chains {
		if c.Network != network {
			conn.Close()
			return nil, engine.NewBuildError(engine.BuildErrInvalidNetwork, "lnd runs on %s, not %s", c.Network, network)
		}
	}

	nodeID, err := parsePubKey(info.IdentityPubkey)
	if err != nil {
		conn.Close()
		return nil, engine.NewBuildError(engine.BuildErrWalletSetupFailed, "lnd returned identity pubkey %q: %v", info.IdentityPubkey, err)
	}

	listen := listeningAddress(info.Uris, cfg.ListeningAddress)
	log.Printf("LND: built engine for %s (%s) on %s, listening on %v", info.IdentityPubkey, info.Alias, network, listen)

	e := newEngine(cfg, client, routerrpc.NewRouterClient(conn), nodeID, listen, fees, peers)
	e.closer = conn.Close
	return e, nil
}

func newFeeEstimator(cfg *engine.Config) (chain.FeeEstimator, error) {
	fallback := chain.NewDefaultFeeEstimator(defaultTargetConf)
	if cfg.ChainSource.EsploraServerURL == "" {
		return fallback, nil
	}

	client, err := mempool.NewMempoolClient(cfg.ChainSource.EsploraServerURL)
	if err != nil {
		return nil, err
	}

	cacheDuration := time.Duration(cfg.FeeRateCacheUpdateIntervalSecs) * time.Second
	return chain.NewFallbackFeeEstimator(
		chain.NewCachedFeeEstimator(client, cacheDuration),
		fallback,
	), nil
}

// unlock makes sure lnd has an unlocked wallet and returns the macaroon to
// use for all further calls.
func (f *Factory) unlock(ctx context.Context, seed []byte, network *chaincfg.Params) (string, error) {
	macaroon, err := f.Conf.MacaroonHex()
	if err != nil {
		return "", err
	}

	conn, err := dial(f.Conf, "")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	state := lnrpc.NewStateClient(conn)
	resp, err := state.GetState(ctx, &lnrpc.GetStateRequest{})
	if err != nil {
		return "", fmt.Errorf("state.GetState() error: %w", err)
	}

	unlocker := lnrpc.NewWalletUnlockerClient(conn)
	switch resp.State {
	case lnrpc.WalletState_NON_EXISTING:
		if f.Conf.WalletPassword == "" {
			return "", fmt.Errorf("lnd has no wallet and no wallet password is configured")
		}
		master, err := hdkeychain.NewMaster(seed, network)
		if err != nil {
			return "", fmt.Errorf("failed to derive master key: %w", err)
		}
		initResp, err := unlocker.InitWallet(ctx, &lnrpc.InitWalletRequest{
			WalletPassword:    []byte(f.Conf.WalletPassword),
			ExtendedMasterKey: master.String(),
		})
		if err != nil {
			return "", fmt.Errorf("unlocker.InitWallet() error: %w", err)
		}
		if macaroon == "" {
			macaroon = hex.EncodeToString(initResp.AdminMacaroon)
		}
		log.Printf("LND: created wallet from the node entropy")

	case lnrpc.WalletState_LOCKED:
		if f.Conf.WalletPassword == "" {
			return "", fmt.Errorf("lnd wallet is locked and no wallet password is configured")
		}
		_, err := unlocker.UnlockWallet(ctx, &lnrpc.UnlockWalletRequest{
			WalletPassword: []byte(f.Conf.WalletPassword),
		})
		if err != nil {
			return "", fmt.Errorf("unlocker.UnlockWallet() error: %w", err)
		}
		log.Printf("LND: unlocked wallet")
	}

	if macaroon == "" {
		return "", fmt.Errorf("no lnd macaroon configured")
	}

	return macaroon, waitActive(ctx, state)
}

func waitActive(ctx context.Context, state lnrpc.StateClient) error {
	for {
		resp, err := state.GetState(ctx, &lnrpc.GetStateRequest{})
		if err != nil {
			return fmt.Errorf("state.GetState() error: %w", err)
		}
		switch resp.State {
		case lnrpc.WalletState_RPC_ACTIVE, lnrpc.WalletState_SERVER_ACTIVE:
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("lnd did not become active, state %v: %w", resp.State, ctx.Err())
		case <-time.After(500 * time.Millisecond):
		}
	}
}
