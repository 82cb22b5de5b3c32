package lightning

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// NewOutPoint builds an outpoint from a txid in internal byte order, as lnd
// returns it in funding_txid_bytes.
func NewOutPoint(fundingTxID []byte, index uint32) (*wire.OutPoint, error) {
	var h chainhash.Hash
	err := h.SetBytes(fundingTxID)
	if err != nil {
		return nil, fmt.Errorf("invalid funding txid %x: %w", fundingTxID, err)
	}

	return wire.NewOutPoint(&h, index), nil
}

// NewOutPointFromString parses the txid:index form used in lnd's
// channel_point fields.
func NewOutPointFromString(outpoint string) (*wire.OutPoint, error) {
	split := strings.Split(outpoint, ":")
	if len(split) != 2 {
		return nil, fmt.Errorf("invalid outpoint %q", outpoint)
	}

	h, err := chainhash.NewHashFromStr(split[0])
	if err != nil {
		return nil, fmt.Errorf("invalid outpoint %q: %w", outpoint, err)
	}

	outnum, err := strconv.ParseUint(split[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid outpoint %q: %w", outpoint, err)
	}

	return wire.NewOutPoint(h, uint32(outnum)), nil
}
