package lightning

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lightningnetwork/lnd/lnwire"
)

// ShortChannelID is the block height, transaction index and output index of
// a confirmed funding output, packed the way lnd's chan_id fields are.
type ShortChannelID uint64

func NewShortChannelIDFromString(channelID string) (*ShortChannelID, error) {
	if channelID == "" {
		c := ShortChannelID(0)
		return &c, nil
	}

	fields := strings.Split(channelID, "x")
	if len(fields) != 3 {
		return nil, fmt.Errorf("invalid short channel id %v", channelID)
	}
	blockHeight, err := strconv.ParseUint(fields[0], 10, 24)
	if err != nil {
		return nil, fmt.Errorf("failed to parse block height %v", fields[0])
	}
	txIndex, err := strconv.ParseUint(fields[1], 10, 24)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tx index %v", fields[1])
	}
	txPos, err := strconv.ParseUint(fields[2], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("failed to parse output index %v", fields[2])
	}

	result := ShortChannelID(
		lnwire.ShortChannelID{
			BlockHeight: uint32(blockHeight),
			TxIndex:     uint32(txIndex),
			TxPosition:  uint16(txPos),
		}.ToUint64(),
	)
	return &result, nil
}

// IsConfirmed reports whether the id refers to a mined funding output.
func (c ShortChannelID) IsConfirmed() bool {
	return lnwire.NewShortChanIDFromInt(uint64(c)).BlockHeight != 0
}

func (c ShortChannelID) String() string {
	u := uint64(c)
	blockHeight := (u >> 40) & 0xFFFFFF
	txIndex := (u >> 16) & 0xFFFFFF
	outputIndex := u & 0xFFFF
	return fmt.Sprintf("%dx%dx%d", blockHeight, txIndex, outputIndex)
}
