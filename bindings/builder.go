package bindings

import (
	"log"
	"strings"

	"github.com/breez/lnbind/bindings/codes"
	"github.com/breez/lnbind/bindings/status"
	"github.com/breez/lnbind/engine"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/tyler-smith/go-bip39"
)

// Builder stages an engine configuration. Every setter validates its input
// and leaves the builder untouched on failure. Entropy is a single choice:
// selecting a new source replaces the previous one.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	factory engine.Factory
	config  *engine.Config
	built   bool
}

func NewBuilder(factory engine.Factory) *Builder {
	return &Builder{
		factory: factory,
		config:  engine.DefaultConfig(),
	}
}

// BuilderFromConfig starts a builder from a complete host configuration.
func BuilderFromConfig(factory engine.Factory, c *Config) (*Builder, error) {
	b := NewBuilder(factory)
	if c == nil {
		return b, nil
	}

	if c.StorageDirPath != "" {
		if err := b.SetStorageDirPath(c.StorageDirPath); err != nil {
			return nil, err
		}
	}
	if err := b.SetNetwork(c.Network); err != nil {
		return nil, err
	}
	if c.ListeningAddress != nil {
		if err := b.SetListeningAddress(*c.ListeningAddress); err != nil {
			return nil, err
		}
	}
	if c.DefaultCltvExpiryDelta != 0 {
		b.config.DefaultCltvExpiryDelta = c.DefaultCltvExpiryDelta
	}
	if c.OnchainWalletSyncIntervalSecs != 0 {
		b.config.OnchainWalletSyncIntervalSecs = uint64(c.OnchainWalletSyncIntervalSecs)
	}
	if c.WalletSyncIntervalSecs != 0 {
		b.config.WalletSyncIntervalSecs = uint64(c.WalletSyncIntervalSecs)
	}
	if c.FeeRateCacheUpdateIntervalSecs != 0 {
		b.config.FeeRateCacheUpdateIntervalSecs = uint64(c.FeeRateCacheUpdateIntervalSecs)
	}
	if c.TrustedPeers0Conf != nil {
		if err := b.SetTrustedPeers0Conf(c.TrustedPeers0Conf); err != nil {
			return nil, err
		}
	}
	if c.LogLevel != nil {
		if err := b.SetLogLevel(*c.LogLevel); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func (b *Builder) checkNotBuilt() error {
	if b.built {
		return status.Errorf(codes.AlreadyBuilt, "builder was already consumed by a successful build")
	}
	return nil
}

func (b *Builder) setEntropy(source engine.EntropySource) {
	if b.config.Entropy != nil {
		log.Printf("lnbind: entropy source %v superseded by %v", b.config.Entropy, source)
	}
	b.config.Entropy = source
}

func (b *Builder) SetEntropySeedPath(seedPath string) error {
	if err := b.checkNotBuilt(); err != nil {
		return err
	}
	if strings.TrimSpace(seedPath) == "" {
		return status.Errorf(codes.MalformedValue, "seed path is empty")
	}
	b.setEntropy(engine.SeedFile{Path: seedPath})
	return nil
}

func (b *Builder) SetEntropySeedBytes(seed []byte) error {
	if err := b.checkNotBuilt(); err != nil {
		return err
	}
	if len(seed) != engine.SeedBytesLength {
		return status.Errorf(codes.WrongLength, "seed must be %d bytes, got %d", engine.SeedBytesLength, len(seed))
	}
	s := engine.SeedBytes{}
	copy(s.Seed[:], seed)
	b.setEntropy(s)
	return nil
}

// SetEntropyBip39Mnemonic sets a bip39 mnemonic as entropy source. A nil
// passphrase is distinct from an empty one only to the engine.
func (b *Builder) SetEntropyBip39Mnemonic(mnemonic string, passphrase *string) error {
	if err := b.checkNotBuilt(); err != nil {
		return err
	}
	normalized := strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(normalized) {
		return status.Errorf(codes.MalformedMnemonic, "invalid bip39 mnemonic")
	}
	var pass *string
	if passphrase != nil {
		p := *passphrase
		pass = &p
	}
	b.setEntropy(engine.Bip39Mnemonic{Mnemonic: normalized, Passphrase: pass})
	return nil
}

// SetEsploraServer sets the chain source.
func (b *Builder) SetEsploraServer(serverURL string) error {
	if err := b.checkNotBuilt(); err != nil {
		return err
	}
	if err := CheckServerURL("esplora server", serverURL); err != nil {
		return err
	}
	b.config.ChainSource = engine.ChainSource{EsploraServerURL: serverURL}
	return nil
}

func (b *Builder) SetGossipSourceP2P() error {
	if err := b.checkNotBuilt(); err != nil {
		return err
	}
	b.config.GossipSource = engine.P2PGossip{}
	return nil
}

func (b *Builder) SetGossipSourceRGS(serverURL string) error {
	if err := b.checkNotBuilt(); err != nil {
		return err
	}
	if err := CheckServerURL("rapid gossip sync server", serverURL); err != nil {
		return err
	}
	b.config.GossipSource = engine.RapidGossipSync{ServerURL: serverURL}
	return nil
}

func (b *Builder) SetStorageDirPath(storageDirPath string) error {
	if err := b.checkNotBuilt(); err != nil {
		return err
	}
	if strings.TrimSpace(storageDirPath) == "" {
		return status.Errorf(codes.MalformedValue, "storage dir path is empty")
	}
	b.config.StorageDirPath = storageDirPath
	return nil
}

func (b *Builder) SetNetwork(network Network) error {
	if err := b.checkNotBuilt(); err != nil {
		return err
	}
	params, err := NetworkToEngine(network)
	if err != nil {
		return err
	}
	b.config.Network = params
	return nil
}

func (b *Builder) SetListeningAddress(address NetAddress) error {
	if err := b.checkNotBuilt(); err != nil {
		return err
	}
	addr, err := NetAddressToEngine(address)
	if err != nil {
		return err
	}
	b.config.ListeningAddress = addr
	return nil
}

func (b *Builder) SetLogLevel(level LogLevel) error {
	if err := b.checkNotBuilt(); err != nil {
		return err
	}
	l, err := LogLevelToEngine(level)
	if err != nil {
		return err
	}
	b.config.LogLevel = l
	return nil
}

func (b *Builder) SetDefaultCltvExpiryDelta(delta uint32) error {
	if err := b.checkNotBuilt(); err != nil {
		return err
	}
	b.config.DefaultCltvExpiryDelta = delta
	return nil
}

// SetTrustedPeers0Conf replaces the list of peers whose zero confirmation
// channels are accepted.
func (b *Builder) SetTrustedPeers0Conf(peers []PublicKey) error {
	if err := b.checkNotBuilt(); err != nil {
		return err
	}
	keys := make([]*btcec.PublicKey, 0, len(peers))
	for _, p := range peers {
		k, err := PublicKeyToEngine(p)
		if err != nil {
			return err
		}
		keys = append(keys, k)
	}
	b.config.TrustedPeers0Conf = keys
	return nil
}

// Build hands the staged configuration to the engine factory. After a
// successful build the builder is consumed; failed builds leave it usable.
func (b *Builder) Build() (*Node, error) {
	if err := b.checkNotBuilt(); err != nil {
		return nil, err
	}
	if b.config.Entropy == nil {
		return nil, status.Errorf(codes.MissingEntropySource, "missing required field: entropy source")
	}
	if b.config.StorageDirPath == "" {
		return nil, status.Errorf(codes.MissingStoragePath, "missing required field: storage dir path")
	}

	cfg := *b.config
	cfg.TrustedPeers0Conf = append([]*btcec.PublicKey(nil), b.config.TrustedPeers0Conf...)
	eng, err := b.factory.Build(&cfg)
	if err != nil {
		log.Printf("lnbind: engine build failed: %v", err)
		return nil, TranslateBuildError(err)
	}

	b.built = true
	return newNode(eng, cfg.Network), nil
}
