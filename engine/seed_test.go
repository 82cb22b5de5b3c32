package engine

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireBuildErrorKind(t *testing.T, err error, kind BuildErrorKind) {
	t.Helper()
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, kind, buildErr.Kind)
}

func TestSeed_Bytes(t *testing.T) {
	var source SeedBytes
	source.Seed[0] = 7
	seed, err := Seed(source)
	require.NoError(t, err)
	assert.Equal(t, source.Seed[:], seed)

	// The returned seed is a copy.
	seed[0] = 8
	assert.Equal(t, byte(7), source.Seed[0])
}

func TestSeed_Mnemonic(t *testing.T) {
	passphrase := "TREZOR"
	seed, err := Seed(Bip39Mnemonic{
		Mnemonic:   "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
		Passphrase: &passphrase,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04",
		hex.EncodeToString(seed))

	_, err = Seed(Bip39Mnemonic{Mnemonic: "abandon abandon abandon"})
	requireBuildErrorKind(t, err, BuildErrInvalidMnemonic)
}

func TestSeed_FileCreatedOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "seed")

	seed, err := Seed(SeedFile{Path: path})
	require.NoError(t, err)
	require.Len(t, seed, SeedBytesLength)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	again, err := Seed(SeedFile{Path: path})
	require.NoError(t, err)
	assert.Equal(t, seed, again)
}

func TestSeed_FileWrongLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0600))

	_, err := Seed(SeedFile{Path: path})
	requireBuildErrorKind(t, err, BuildErrInvalidSeedFile)
}

func TestSeed_NoSource(t *testing.T) {
	_, err := Seed(nil)
	requireBuildErrorKind(t, err, BuildErrInvalidSeedBytes)
}
