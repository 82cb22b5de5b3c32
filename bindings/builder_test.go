package bindings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/breez/lnbind/bindings/codes"
	"github.com/breez/lnbind/bindings/status"
	"github.com/breez/lnbind/engine"
	"github.com/breez/lnbind/engine/memengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// recordingFactory remembers the configuration it was asked to build.
type recordingFactory struct {
	inner engine.Factory
	cfg   *engine.Config
	err   error
}

func (f *recordingFactory) Build(cfg *engine.Config) (engine.Engine, error) {
	f.cfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return f.inner.Build(cfg)
}

func newRecordingFactory() *recordingFactory {
	return &recordingFactory{inner: memengine.NewFactory(1_000_000)}
}

func seedBytes(b byte) []byte {
	seed := make([]byte, engine.SeedBytesLength)
	for i := range seed {
		seed[i] = b
	}
	return seed
}

func TestBuildRequiresEntropy(t *testing.T) {
	b := NewBuilder(newRecordingFactory())
	require.NoError(t, b.SetStorageDirPath(t.TempDir()))

	_, err := b.Build()
	s := status.Convert(err)
	assert.Equal(t, codes.MissingEntropySource, s.Code)
	assert.Equal(t, codes.FamilyBuild, s.Code.Family())
	assert.Contains(t, s.Message, "entropy")
}

func TestBuildRequiresStoragePath(t *testing.T) {
	b := NewBuilder(newRecordingFactory())
	require.NoError(t, b.SetEntropySeedBytes(seedBytes(1)))

	_, err := b.Build()
	assert.Equal(t, codes.MissingStoragePath, status.Code(err))
}

func TestLastEntropySourceWins(t *testing.T) {
	f := newRecordingFactory()
	b := NewBuilder(f)
	require.NoError(t, b.SetStorageDirPath(t.TempDir()))
	require.NoError(t, b.SetEntropySeedBytes(seedBytes(1)))
	require.NoError(t, b.SetEntropyBip39Mnemonic(testMnemonic, nil))

	node, err := b.Build()
	require.NoError(t, err)
	defer node.Close()

	m, ok := f.cfg.Entropy.(engine.Bip39Mnemonic)
	require.True(t, ok, "entropy is %T", f.cfg.Entropy)
	assert.Equal(t, testMnemonic, m.Mnemonic)
	assert.Nil(t, m.Passphrase)
}

func TestEntropyValidation(t *testing.T) {
	b := NewBuilder(newRecordingFactory())

	assert.Equal(t, codes.WrongLength, status.Code(b.SetEntropySeedBytes(make([]byte, 32))))
	assert.Equal(t, codes.MalformedMnemonic, status.Code(b.SetEntropyBip39Mnemonic("abandon abandon", nil)))
	assert.Equal(t, codes.MalformedValue, status.Code(b.SetEntropySeedPath("  ")))

	// Failed setters leave the builder untouched.
	assert.Nil(t, b.config.Entropy)
}

func TestMnemonicWhitespaceIsNormalized(t *testing.T) {
	f := newRecordingFactory()
	b := NewBuilder(f)
	require.NoError(t, b.SetStorageDirPath(t.TempDir()))
	passphrase := "secret"
	require.NoError(t, b.SetEntropyBip39Mnemonic("  abandon abandon abandon abandon abandon abandon\n abandon abandon abandon abandon abandon about ", &passphrase))

	node, err := b.Build()
	require.NoError(t, err)
	defer node.Close()

	m := f.cfg.Entropy.(engine.Bip39Mnemonic)
	assert.Equal(t, testMnemonic, m.Mnemonic)
	require.NotNil(t, m.Passphrase)
	assert.Equal(t, "secret", *m.Passphrase)
}

func TestSetters(t *testing.T) {
	f := newRecordingFactory()
	b := NewBuilder(f)
	dir := t.TempDir()
	require.NoError(t, b.SetStorageDirPath(dir))
	require.NoError(t, b.SetEntropySeedBytes(seedBytes(2)))
	require.NoError(t, b.SetNetwork(NetworkRegtest))
	require.NoError(t, b.SetListeningAddress(NetAddress{Host: "0.0.0.0", Port: 9735}))
	require.NoError(t, b.SetEsploraServer("http://127.0.0.1:3002"))
	require.NoError(t, b.SetGossipSourceRGS("https://rgs.example.com/snapshot"))
	require.NoError(t, b.SetLogLevel(LogLevelInfo))
	require.NoError(t, b.SetDefaultCltvExpiryDelta(72))

	node, err := b.Build()
	require.NoError(t, err)
	defer node.Close()

	assert.Equal(t, dir, f.cfg.StorageDirPath)
	assert.Equal(t, "regtest", f.cfg.Network.Name)
	assert.Equal(t, "0.0.0.0:9735", f.cfg.ListeningAddress.String())
	assert.Equal(t, "http://127.0.0.1:3002", f.cfg.ChainSource.EsploraServerURL)
	assert.Equal(t, engine.RapidGossipSync{ServerURL: "https://rgs.example.com/snapshot"}, f.cfg.GossipSource)
	assert.Equal(t, engine.LogLevelInfo, f.cfg.LogLevel)
	assert.Equal(t, uint32(72), f.cfg.DefaultCltvExpiryDelta)
	assert.Equal(t, engine.DefaultWalletSyncIntervalSecs, f.cfg.WalletSyncIntervalSecs)
}

func TestSetterValidation(t *testing.T) {
	b := NewBuilder(newRecordingFactory())
	assert.Equal(t, codes.MalformedEnum, status.Code(b.SetNetwork(Network(17))))
	assert.Equal(t, codes.MalformedNetAddress, status.Code(b.SetListeningAddress(NetAddress{Host: "localhost", Port: 9735})))
	assert.Equal(t, codes.MalformedURL, status.Code(b.SetEsploraServer("esplora")))
	assert.Equal(t, codes.MalformedURL, status.Code(b.SetGossipSourceRGS("ftp://rgs")))
	assert.Equal(t, codes.MalformedPublicKey, status.Code(b.SetTrustedPeers0Conf([]PublicKey{"02"})))
	assert.Equal(t, codes.MalformedEnum, status.Code(b.SetLogLevel(LogLevel(99))))
}

func TestBuilderIsConsumedBySuccessfulBuild(t *testing.T) {
	b := NewBuilder(newRecordingFactory())
	require.NoError(t, b.SetStorageDirPath(t.TempDir()))
	require.NoError(t, b.SetEntropySeedBytes(seedBytes(3)))

	node, err := b.Build()
	require.NoError(t, err)
	defer node.Close()

	_, err = b.Build()
	assert.Equal(t, codes.AlreadyBuilt, status.Code(err))
	assert.Equal(t, codes.AlreadyBuilt, status.Code(b.SetNetwork(NetworkTestnet)))
	assert.Equal(t, codes.AlreadyBuilt, status.Code(b.SetEntropySeedBytes(seedBytes(4))))
}

func TestFailedBuildLeavesBuilderUsable(t *testing.T) {
	f := newRecordingFactory()
	f.err = engine.NewBuildError(engine.BuildErrKVStoreSetupFailed, "database is locked")
	b := NewBuilder(f)
	require.NoError(t, b.SetStorageDirPath(t.TempDir()))
	require.NoError(t, b.SetEntropySeedBytes(seedBytes(5)))

	_, err := b.Build()
	s := status.Convert(err)
	assert.Equal(t, codes.KVStoreSetupFailed, s.Code)
	assert.Equal(t, "database is locked", s.Message)

	f.err = nil
	node, err := b.Build()
	require.NoError(t, err)
	node.Close()
}

func TestSeedFileEntropy(t *testing.T) {
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "keys_seed")

	build := func() PublicKey {
		b := NewBuilder(newRecordingFactory())
		require.NoError(t, b.SetStorageDirPath(dir))
		require.NoError(t, b.SetEntropySeedPath(seedPath))
		node, err := b.Build()
		require.NoError(t, err)
		defer node.Close()
		id, err := node.NodeID()
		require.NoError(t, err)
		return id
	}

	first := build()
	info, err := os.Stat(seedPath)
	require.NoError(t, err)
	assert.Equal(t, int64(engine.SeedBytesLength), info.Size())
	assert.Equal(t, first, build())

	require.NoError(t, os.WriteFile(seedPath, []byte("short"), 0600))
	b := NewBuilder(newRecordingFactory())
	require.NoError(t, b.SetStorageDirPath(dir))
	require.NoError(t, b.SetEntropySeedPath(seedPath))
	_, err = b.Build()
	assert.Equal(t, codes.InvalidSeedFile, status.Code(err))
}

func TestBuilderFromConfig(t *testing.T) {
	f := newRecordingFactory()
	level := LogLevelWarn
	b, err := BuilderFromConfig(f, &Config{
		StorageDirPath:         t.TempDir(),
		Network:                NetworkSignet,
		ListeningAddress:       &NetAddress{Host: "::", Port: 9736},
		DefaultCltvExpiryDelta: 40,
		WalletSyncIntervalSecs: 10,
		LogLevel:               &level,
	})
	require.NoError(t, err)
	require.NoError(t, b.SetEntropySeedBytes(seedBytes(6)))

	node, err := b.Build()
	require.NoError(t, err)
	defer node.Close()

	assert.Equal(t, "signet", f.cfg.Network.Name)
	assert.Equal(t, uint32(40), f.cfg.DefaultCltvExpiryDelta)
	assert.Equal(t, uint64(10), f.cfg.WalletSyncIntervalSecs)
	assert.Equal(t, engine.DefaultOnchainWalletSyncIntervalSecs, f.cfg.OnchainWalletSyncIntervalSecs)
	assert.Equal(t, engine.LogLevelWarn, f.cfg.LogLevel)
	assert.Equal(t, "[::]:9736", f.cfg.ListeningAddress.String())

	_, err = BuilderFromConfig(f, &Config{Network: Network(8)})
	assert.Equal(t, codes.MalformedEnum, status.Code(err))
}
