package engine

import (
	"crypto/rand"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/tyler-smith/go-bip39"
)

// Seed returns the 64 byte wallet seed described by source. A seed file that
// does not exist yet is created with fresh random entropy. Errors are
// *BuildError.
func Seed(source EntropySource) ([]byte, error) {
	switch s := source.(type) {
	case SeedBytes:
		return append([]byte(nil), s.Seed[:]...), nil
	case Bip39Mnemonic:
		passphrase := ""
		if s.Passphrase != nil {
			passphrase = *s.Passphrase
		}
		seed, err := bip39.NewSeedWithErrorChecking(s.Mnemonic, passphrase)
		if err != nil {
			return nil, NewBuildError(BuildErrInvalidMnemonic, "invalid mnemonic: %v", err)
		}
		return seed, nil
	case SeedFile:
		return readOrCreateSeedFile(s.Path)
	default:
		return nil, NewBuildError(BuildErrInvalidSeedBytes, "no entropy source configured")
	}
}

func readOrCreateSeedFile(path string) ([]byte, error) {
	seed, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		seed = make([]byte, SeedBytesLength)
		if _, err := rand.Read(seed); err != nil {
			return nil, NewBuildError(BuildErrWriteFailed, "failed to generate seed: %v", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, NewBuildError(BuildErrWriteFailed, "failed to create seed dir: %v", err)
		}
		if err := os.WriteFile(path, seed, 0600); err != nil {
			return nil, NewBuildError(BuildErrWriteFailed, "failed to write seed file %s: %v", path, err)
		}
		log.Printf("lnbind: wrote new seed file %s", path)
		return seed, nil
	}
	if err != nil {
		return nil, NewBuildError(BuildErrReadFailed, "failed to read seed file %s: %v", path, err)
	}
	if len(seed) != SeedBytesLength {
		return nil, NewBuildError(BuildErrInvalidSeedFile, "seed file %s has %d bytes, expected %d", path, len(seed), SeedBytesLength)
	}
	return seed, nil
}
