package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/breez/lnbind/engine"
	"github.com/tyler-smith/go-bip39"
	"github.com/urfave/cli"
)

var genSeedCommand = cli.Command{
	Name:  "genseed",
	Usage: "Generate wallet entropy: a bip39 mnemonic, or a raw seed file when --out is set.",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "words",
			Usage: "Number of mnemonic words, 12 or 24.",
			Value: 24,
		},
		cli.StringFlag{
			Name:  "out",
			Usage: "Write a raw seed to this path instead of printing a mnemonic.",
		},
	},
	Action: genSeed,
}

func genSeed(cliCtx *cli.Context) error {
	if out := cliCtx.String("out"); out != "" {
		return writeSeedFile(out)
	}

	var bits int
	switch cliCtx.Int("words") {
	case 12:
		bits = 128
	case 24:
		bits = 256
	default:
		return fmt.Errorf("words must be 12 or 24")
	}

	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return fmt.Errorf("bip39.NewEntropy() error: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return fmt.Errorf("bip39.NewMnemonic() error: %w", err)
	}
	fmt.Println(mnemonic)
	return nil
}

func writeSeedFile(path string) error {
	seed := make([]byte, engine.SeedBytesLength)
	if _, err := rand.Read(seed); err != nil {
		return fmt.Errorf("failed to generate seed: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0400)
	if err != nil {
		return fmt.Errorf("failed to create seed file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(seed); err != nil {
		return fmt.Errorf("failed to write seed file: %w", err)
	}

	fmt.Printf("Wrote %d byte seed to %s\n", len(seed), path)
	return nil
}
