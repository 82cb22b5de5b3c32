package engine

import (
	"net"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	DefaultCltvExpiryDelta                uint32 = 144
	DefaultOnchainWalletSyncIntervalSecs  uint64 = 80
	DefaultWalletSyncIntervalSecs         uint64 = 30
	DefaultFeeRateCacheUpdateIntervalSecs uint64 = 600
	DefaultLogLevel                              = LogLevelDebug

	// SeedBytesLength is the length of raw entropy accepted as a wallet seed.
	SeedBytesLength = 64
)

type LogLevel int

const (
	LogLevelGossip LogLevel = iota
	LogLevelTrace
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var AllLogLevels = []LogLevel{
	LogLevelGossip,
	LogLevelTrace,
	LogLevelDebug,
	LogLevelInfo,
	LogLevelWarn,
	LogLevelError,
}

func (l LogLevel) String() string {
	switch l {
	case LogLevelGossip:
		return "GOSSIP"
	case LogLevelTrace:
		return "TRACE"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// EntropySource is where the node's key material comes from. Exactly one of
// SeedFile, SeedBytes or Bip39Mnemonic.
type EntropySource interface {
	entropySource()
	String() string
}

type SeedFile struct {
	Path string
}

type SeedBytes struct {
	Seed [SeedBytesLength]byte
}

type Bip39Mnemonic struct {
	Mnemonic   string
	Passphrase *string
}

func (SeedFile) entropySource()      {}
func (SeedBytes) entropySource()     {}
func (Bip39Mnemonic) entropySource() {}

func (s SeedFile) String() string    { return "seed file " + s.Path }
func (SeedBytes) String() string     { return "seed bytes" }
func (Bip39Mnemonic) String() string { return "bip39 mnemonic" }

// GossipSource is either the p2p network or a rapid gossip sync server.
type GossipSource interface {
	gossipSource()
}

type P2PGossip struct{}

type RapidGossipSync struct {
	ServerURL string
}

func (P2PGossip) gossipSource()       {}
func (RapidGossipSync) gossipSource() {}

// ChainSource is the esplora compatible server used for chain data. An empty
// ServerURL leaves the choice to the engine.
type ChainSource struct {
	EsploraServerURL string
}

type Config struct {
	StorageDirPath                 string
	Network                        *chaincfg.Params
	ListeningAddress               net.Addr
	DefaultCltvExpiryDelta         uint32
	OnchainWalletSyncIntervalSecs  uint64
	WalletSyncIntervalSecs         uint64
	FeeRateCacheUpdateIntervalSecs uint64
	TrustedPeers0Conf              []*btcec.PublicKey
	LogLevel                       LogLevel

	Entropy      EntropySource
	ChainSource  ChainSource
	GossipSource GossipSource
}

func DefaultConfig() *Config {
	return &Config{
		Network:                        &chaincfg.MainNetParams,
		DefaultCltvExpiryDelta:         DefaultCltvExpiryDelta,
		OnchainWalletSyncIntervalSecs:  DefaultOnchainWalletSyncIntervalSecs,
		WalletSyncIntervalSecs:         DefaultWalletSyncIntervalSecs,
		FeeRateCacheUpdateIntervalSecs: DefaultFeeRateCacheUpdateIntervalSecs,
		LogLevel:                       DefaultLogLevel,
		GossipSource:                   P2PGossip{},
	}
}
