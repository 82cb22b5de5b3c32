package bindings

import (
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/breez/lnbind/bindings/codes"
	"github.com/breez/lnbind/bindings/status"
)

type Network int

const (
	NetworkBitcoin Network = iota
	NetworkRegtest
	NetworkSignet
	NetworkTestnet
)

var AllNetworks = []Network{NetworkBitcoin, NetworkRegtest, NetworkSignet, NetworkTestnet}

var networkNames = map[Network]string{
	NetworkBitcoin: "bitcoin",
	NetworkRegtest: "regtest",
	NetworkSignet:  "signet",
	NetworkTestnet: "testnet",
}

func (n Network) String() string {
	if s, ok := networkNames[n]; ok {
		return s
	}
	return "unknown"
}

func (n Network) MarshalText() ([]byte, error) {
	s, ok := networkNames[n]
	if !ok {
		return nil, status.Errorf(codes.MalformedEnum, "network: unknown variant %d", int(n))
	}
	return []byte(s), nil
}

func (n *Network) UnmarshalText(text []byte) error {
	v, err := ParseNetwork(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

func ParseNetwork(s string) (Network, error) {
	for n, name := range networkNames {
		if strings.EqualFold(name, s) {
			return n, nil
		}
	}
	return 0, status.Errorf(codes.MalformedEnum, "network: unknown variant %q", s)
}

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

var logLevelNames = map[LogLevel]string{
	LogLevelGossip: "gossip",
	LogLevelTrace:  "trace",
	LogLevelDebug:  "debug",
	LogLevelInfo:   "info",
	LogLevelWarn:   "warn",
	LogLevelError:  "error",
}

func (l LogLevel) String() string {
	if s, ok := logLevelNames[l]; ok {
		return s
	}
	return "unknown"
}

func (l LogLevel) MarshalText() ([]byte, error) {
	s, ok := logLevelNames[l]
	if !ok {
		return nil, status.Errorf(codes.MalformedEnum, "log level: unknown variant %d", int(l))
	}
	return []byte(s), nil
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	for level, name := range logLevelNames {
		if strings.EqualFold(name, string(text)) {
			*l = level
			return nil
		}
	}
	return status.Errorf(codes.MalformedEnum, "log level: unknown variant %q", string(text))
}

// HexBytes is a byte sequence that crosses the boundary as a hex string.
type HexBytes []byte

func (b HexBytes) String() string {
	return hex.EncodeToString(b)
}

func (b HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(b)), nil
}

func (b *HexBytes) UnmarshalText(text []byte) error {
	d, err := hex.DecodeString(string(text))
	if err != nil {
		return status.Errorf(codes.MalformedValue, "invalid hex string: %v", err)
	}
	*b = d
	return nil
}

// Amount is the integer type used for monetary values on the boundary.
// Engine amounts are 64 bit and are narrowed with a range check.
type Amount uint32

// UnmarshalJSON reports values that don't fit in an Amount as OutOfRange
// rather than as a generic decoding failure.
func (a *Amount) UnmarshalJSON(data []byte) error {
	text := string(data)
	if text == "null" {
		return nil
	}
	v, err := strconv.ParseUint(text, 10, 64)
	switch {
	case errors.Is(err, strconv.ErrRange), err != nil && strings.HasPrefix(text, "-"):
		return status.Errorf(codes.OutOfRange, "amount %s is out of range", text)
	case err != nil:
		return status.Errorf(codes.MalformedValue, "amount %s is not an integer", text)
	}
	narrowed, err := NarrowAmount("amount", v)
	if err != nil {
		return err
	}
	*a = narrowed
	return nil
}

// PublicKey is a compressed secp256k1 public key in lower case hex.
type PublicKey string

type NetAddress struct {
	Host string `json:"host"`
	Port uint32 `json:"port"`
}

type OutPoint struct {
	Txid string `json:"txid"`
	Vout uint32 `json:"vout"`
}

type ChannelConfig struct {
	ForwardingFeeProportionalMillionths uint32 `json:"forwarding_fee_proportional_millionths"`
	ForwardingFeeBaseMsat               uint32 `json:"forwarding_fee_base_msat"`
	CltvExpiryDelta                     uint32 `json:"cltv_expiry_delta"`
	MaxDustHTLCExposureMsat             Amount `json:"max_dust_htlc_exposure_msat"`
	ForceCloseAvoidanceMaxFeeSatoshis   Amount `json:"force_close_avoidance_max_fee_satoshis"`
}

type PaymentDirection string

const (
	PaymentDirectionInbound  PaymentDirection = "inbound"
	PaymentDirectionOutbound PaymentDirection = "outbound"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type PaymentDetails struct {
	Hash       HexBytes         `json:"hash"`
	Preimage   *HexBytes        `json:"preimage"`
	Secret     *HexBytes        `json:"secret"`
	AmountMsat *Amount          `json:"amount_msat"`
	Direction  PaymentDirection `json:"direction"`
	Status     PaymentStatus    `json:"status"`
}

type PeerDetails struct {
	NodeID      PublicKey `json:"node_id"`
	Address     string    `json:"address"`
	IsPersisted bool      `json:"is_persisted"`
	IsConnected bool      `json:"is_connected"`
}

type ChannelDetails struct {
	ChannelID                    HexBytes  `json:"channel_id"`
	CounterpartyNodeID           PublicKey `json:"counterparty_node_id"`
	FundingTxo                   *OutPoint `json:"funding_txo"`
	ChannelValueSats             Amount    `json:"channel_value_sats"`
	UnspendablePunishmentReserve *Amount   `json:"unspendable_punishment_reserve"`
	UserChannelID                string    `json:"user_channel_id"`
	FeerateSatPer1000Weight      uint32    `json:"feerate_sat_per_1000_weight"`
	BalanceMsat                  Amount    `json:"balance_msat"`
	OutboundCapacityMsat         Amount    `json:"outbound_capacity_msat"`
	InboundCapacityMsat          Amount    `json:"inbound_capacity_msat"`
	ConfirmationsRequired        *uint32   `json:"confirmations_required"`
	Confirmations                *uint32   `json:"confirmations"`
	IsOutbound                   bool      `json:"is_outbound"`
	IsChannelReady               bool      `json:"is_channel_ready"`
	IsUsable                     bool      `json:"is_usable"`
	IsPublic                     bool      `json:"is_public"`
	CltvExpiryDelta              *uint32   `json:"cltv_expiry_delta"`
}

// Config mirrors the engine configuration a host can hand to
// BuilderFromConfig. Zero intervals, a zero cltv delta and a nil log level
// select the engine defaults.
type Config struct {
	StorageDirPath                 string      `json:"storage_dir_path"`
	Network                        Network     `json:"network"`
	ListeningAddress               *NetAddress `json:"listening_address"`
	DefaultCltvExpiryDelta         uint32      `json:"default_cltv_expiry_delta"`
	OnchainWalletSyncIntervalSecs  uint32      `json:"onchain_wallet_sync_interval_secs"`
	WalletSyncIntervalSecs         uint32      `json:"wallet_sync_interval_secs"`
	FeeRateCacheUpdateIntervalSecs uint32      `json:"fee_rate_cache_update_interval_secs"`
	TrustedPeers0Conf              []PublicKey `json:"trusted_peers_0conf"`
	LogLevel                       *LogLevel   `json:"log_level"`
}
