package bindings

import (
	"encoding/hex"
	"math"
	"math/big"
	"net"
	"net/netip"
	"net/url"
	"strconv"

	"github.com/breez/lnbind/bindings/codes"
	"github.com/breez/lnbind/bindings/status"
	"github.com/breez/lnbind/engine"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
	"github.com/tv42/zbase32"
)

// MaxAmount is the largest monetary value representable on the boundary.
const MaxAmount = math.MaxUint32

func NetworkToEngine(n Network) (*chaincfg.Params, error) {
	switch n {
	case NetworkBitcoin:
		return &chaincfg.MainNetParams, nil
	case NetworkRegtest:
		return &chaincfg.RegressionNetParams, nil
	case NetworkSignet:
		return &chaincfg.SigNetParams, nil
	case NetworkTestnet:
		return &chaincfg.TestNet3Params, nil
	default:
		return nil, status.Errorf(codes.MalformedEnum, "network: unknown variant %d", int(n))
	}
}

func NetworkFromEngine(params *chaincfg.Params) (Network, error) {
	if params == nil {
		return 0, status.Errorf(codes.MalformedEnum, "network: missing chain params")
	}
	switch params.Name {
	case chaincfg.MainNetParams.Name:
		return NetworkBitcoin, nil
	case chaincfg.RegressionNetParams.Name:
		return NetworkRegtest, nil
	case chaincfg.SigNetParams.Name:
		return NetworkSignet, nil
	case chaincfg.TestNet3Params.Name:
		return NetworkTestnet, nil
	default:
		return 0, status.Errorf(codes.MalformedEnum, "network: no boundary variant for %q", params.Name)
	}
}

func LogLevelToEngine(l LogLevel) (engine.LogLevel, error) {
	switch l {
	case LogLevelGossip:
		return engine.LogLevelGossip, nil
	case LogLevelTrace:
		return engine.LogLevelTrace, nil
	case LogLevelDebug:
		return engine.LogLevelDebug, nil
	case LogLevelInfo:
		return engine.LogLevelInfo, nil
	case LogLevelWarn:
		return engine.LogLevelWarn, nil
	case LogLevelError:
		return engine.LogLevelError, nil
	default:
		return 0, status.Errorf(codes.MalformedEnum, "log level: unknown variant %d", int(l))
	}
}

func LogLevelFromEngine(l engine.LogLevel) (LogLevel, error) {
	switch l {
	case engine.LogLevelGossip:
		return LogLevelGossip, nil
	case engine.LogLevelTrace:
		return LogLevelTrace, nil
	case engine.LogLevelDebug:
		return LogLevelDebug, nil
	case engine.LogLevelInfo:
		return LogLevelInfo, nil
	case engine.LogLevelWarn:
		return LogLevelWarn, nil
	case engine.LogLevelError:
		return LogLevelError, nil
	default:
		return 0, status.Errorf(codes.MalformedEnum, "log level: no boundary variant for %d", int(l))
	}
}

// String returns the canonical host:port form, with brackets around IPv6
// hosts.
func (a NetAddress) String() string {
	return net.JoinHostPort(a.Host, strconv.FormatUint(uint64(a.Port), 10))
}

// ParseNetAddress parses a host:port string.
func ParseNetAddress(s string) (NetAddress, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return NetAddress{}, status.Errorf(codes.MalformedNetAddress, "invalid network address %q: %v", s, err)
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return NetAddress{}, status.Errorf(codes.MalformedNetAddress, "invalid port in network address %q", s)
	}
	a := NetAddress{Host: host, Port: uint32(p)}
	if _, err := NetAddressToEngine(a); err != nil {
		return NetAddress{}, err
	}
	return a, nil
}

func NetAddressToEngine(a NetAddress) (*net.TCPAddr, error) {
	if a.Port > math.MaxUint16 {
		return nil, status.Errorf(codes.MalformedNetAddress, "port %d out of range", a.Port)
	}
	ip, err := netip.ParseAddr(a.Host)
	if err != nil {
		return nil, status.Errorf(codes.MalformedNetAddress, "invalid host %q: expected an IP address", a.Host)
	}
	if ip.Zone() != "" {
		return nil, status.Errorf(codes.MalformedNetAddress, "invalid host %q: zones are not supported", a.Host)
	}
	return net.TCPAddrFromAddrPort(netip.AddrPortFrom(ip.Unmap(), uint16(a.Port))), nil
}

func NetAddressFromEngine(addr net.Addr) (NetAddress, error) {
	if addr == nil {
		return NetAddress{}, status.Errorf(codes.MalformedNetAddress, "missing network address")
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		ap := tcp.AddrPort()
		if !ap.Addr().IsValid() {
			return NetAddress{}, status.Errorf(codes.MalformedNetAddress, "invalid network address %v", addr)
		}
		return NetAddress{Host: ap.Addr().Unmap().String(), Port: uint32(ap.Port())}, nil
	}
	return ParseNetAddress(addr.String())
}

func PublicKeyToEngine(pk PublicKey) (*btcec.PublicKey, error) {
	if len(pk) != 2*btcec.PubKeyBytesLenCompressed {
		return nil, status.Errorf(codes.MalformedPublicKey, "public key must be %d hex characters, got %d", 2*btcec.PubKeyBytesLenCompressed, len(pk))
	}
	b, err := hex.DecodeString(string(pk))
	if err != nil {
		return nil, status.Errorf(codes.MalformedPublicKey, "public key is not hex: %v", err)
	}
	key, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, status.Errorf(codes.MalformedPublicKey, "invalid public key: %v", err)
	}
	return key, nil
}

func PublicKeyFromEngine(key *btcec.PublicKey) (PublicKey, error) {
	if key == nil {
		return "", status.Errorf(codes.MalformedPublicKey, "missing public key")
	}
	return PublicKey(hex.EncodeToString(key.SerializeCompressed())), nil
}

func fixed32(field string, b []byte) ([32]byte, error) {
	var r [32]byte
	if len(b) != len(r) {
		return r, status.Errorf(codes.WrongLength, "%s must be %d bytes, got %d", field, len(r), len(b))
	}
	copy(r[:], b)
	return r, nil
}

func ChannelIDToEngine(b HexBytes) (lnwire.ChannelID, error) {
	r, err := fixed32("channel id", b)
	return lnwire.ChannelID(r), err
}

func ChannelIDFromEngine(id lnwire.ChannelID) HexBytes {
	return HexBytes(append([]byte(nil), id[:]...))
}

func PaymentHashToEngine(b HexBytes) (lntypes.Hash, error) {
	r, err := fixed32("payment hash", b)
	return lntypes.Hash(r), err
}

func PaymentHashFromEngine(h lntypes.Hash) HexBytes {
	return HexBytes(append([]byte(nil), h[:]...))
}

func PaymentPreimageToEngine(b HexBytes) (lntypes.Preimage, error) {
	r, err := fixed32("payment preimage", b)
	return lntypes.Preimage(r), err
}

func PaymentPreimageFromEngine(p lntypes.Preimage) HexBytes {
	return HexBytes(append([]byte(nil), p[:]...))
}

func PaymentSecretToEngine(b HexBytes) (engine.PaymentSecret, error) {
	r, err := fixed32("payment secret", b)
	return engine.PaymentSecret(r), err
}

func PaymentSecretFromEngine(s engine.PaymentSecret) HexBytes {
	return HexBytes(append([]byte(nil), s[:]...))
}

// ParseTxid parses a transaction id in its canonical (byte reversed hex)
// form.
func ParseTxid(s string) (*chainhash.Hash, error) {
	if len(s) != chainhash.MaxHashStringSize {
		return nil, status.Errorf(codes.MalformedOutPoint, "txid must be %d hex characters, got %d", chainhash.MaxHashStringSize, len(s))
	}
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return nil, status.Errorf(codes.MalformedOutPoint, "invalid txid %q: %v", s, err)
	}
	return h, nil
}

// OutPointFromEngine maps an unconfirmed (nil) funding outpoint to nil.
func OutPointFromEngine(op *wire.OutPoint) *OutPoint {
	if op == nil {
		return nil
	}
	return &OutPoint{
		Txid: op.Hash.String(),
		Vout: op.Index,
	}
}

func OutPointToEngine(op *OutPoint) (*wire.OutPoint, error) {
	if op == nil {
		return nil, nil
	}
	h, err := ParseTxid(op.Txid)
	if err != nil {
		return nil, err
	}
	return wire.NewOutPoint(h, op.Vout), nil
}

// UserChannelIDFromEngine renders the 128 bit id as a decimal string.
func UserChannelIDFromEngine(id engine.UserChannelID) string {
	return new(big.Int).SetBytes(id[:]).String()
}

func UserChannelIDToEngine(s string) (engine.UserChannelID, error) {
	var id engine.UserChannelID
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return id, status.Errorf(codes.MalformedValue, "user channel id %q is not a decimal integer", s)
	}
	if n.Sign() < 0 || n.BitLen() > 8*len(id) {
		return id, status.Errorf(codes.OutOfRange, "user channel id %q does not fit in 128 bits", s)
	}
	n.FillBytes(id[:])
	return id, nil
}

// NarrowAmount converts an engine amount to the boundary integer, failing
// instead of wrapping when the value does not fit.
func NarrowAmount(field string, v uint64) (Amount, error) {
	if v > MaxAmount {
		return 0, status.Errorf(codes.OutOfRange, "%s %d exceeds the boundary maximum of %d", field, v, uint64(MaxAmount))
	}
	return Amount(v), nil
}

func narrowOptionalAmount(field string, v *uint64) (*Amount, error) {
	if v == nil {
		return nil, nil
	}
	a, err := NarrowAmount(field, *v)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Widen returns the amount as an engine amount. Widening is exact.
func (a Amount) Widen() uint64 {
	return uint64(a)
}

func ChannelConfigToEngine(c *ChannelConfig) (*engine.ChannelConfig, error) {
	if c == nil {
		return nil, nil
	}
	if c.CltvExpiryDelta > math.MaxUint16 {
		return nil, status.Errorf(codes.OutOfRange, "cltv_expiry_delta %d exceeds %d", c.CltvExpiryDelta, math.MaxUint16)
	}
	return &engine.ChannelConfig{
		ForwardingFeeProportionalMillionths: c.ForwardingFeeProportionalMillionths,
		ForwardingFeeBaseMsat:               c.ForwardingFeeBaseMsat,
		CltvExpiryDelta:                     uint16(c.CltvExpiryDelta),
		MaxDustHTLCExposureMsat:             c.MaxDustHTLCExposureMsat.Widen(),
		ForceCloseAvoidanceMaxFeeSatoshis:   c.ForceCloseAvoidanceMaxFeeSatoshis.Widen(),
	}, nil
}

func ChannelConfigFromEngine(c *engine.ChannelConfig) (*ChannelConfig, error) {
	if c == nil {
		return nil, nil
	}
	dust, err := NarrowAmount("max_dust_htlc_exposure_msat", c.MaxDustHTLCExposureMsat)
	if err != nil {
		return nil, err
	}
	forceClose, err := NarrowAmount("force_close_avoidance_max_fee_satoshis", c.ForceCloseAvoidanceMaxFeeSatoshis)
	if err != nil {
		return nil, err
	}
	return &ChannelConfig{
		ForwardingFeeProportionalMillionths: c.ForwardingFeeProportionalMillionths,
		ForwardingFeeBaseMsat:               c.ForwardingFeeBaseMsat,
		CltvExpiryDelta:                     uint32(c.CltvExpiryDelta),
		MaxDustHTLCExposureMsat:             dust,
		ForceCloseAvoidanceMaxFeeSatoshis:   forceClose,
	}, nil
}

func PeerDetailsFromEngine(p *engine.PeerDetails) (*PeerDetails, error) {
	nodeID, err := PublicKeyFromEngine(p.NodeID)
	if err != nil {
		return nil, err
	}
	addr, err := NetAddressFromEngine(p.Address)
	if err != nil {
		return nil, err
	}
	return &PeerDetails{
		NodeID:      nodeID,
		Address:     addr.String(),
		IsPersisted: p.IsPersisted,
		IsConnected: p.IsConnected,
	}, nil
}

func ChannelDetailsFromEngine(c *engine.ChannelDetails) (*ChannelDetails, error) {
	counterparty, err := PublicKeyFromEngine(c.CounterpartyNodeID)
	if err != nil {
		return nil, err
	}
	value, err := NarrowAmount("channel_value_sats", c.ChannelValueSats)
	if err != nil {
		return nil, err
	}
	reserve, err := narrowOptionalAmount("unspendable_punishment_reserve", c.UnspendablePunishmentReserve)
	if err != nil {
		return nil, err
	}
	balance, err := NarrowAmount("balance_msat", c.BalanceMsat)
	if err != nil {
		return nil, err
	}
	outbound, err := NarrowAmount("outbound_capacity_msat", c.OutboundCapacityMsat)
	if err != nil {
		return nil, err
	}
	inbound, err := NarrowAmount("inbound_capacity_msat", c.InboundCapacityMsat)
	if err != nil {
		return nil, err
	}

	var cltv *uint32
	if c.CltvExpiryDelta != nil {
		v := uint32(*c.CltvExpiryDelta)
		cltv = &v
	}

	return &ChannelDetails{
		ChannelID:                    ChannelIDFromEngine(c.ChannelID),
		CounterpartyNodeID:           counterparty,
		FundingTxo:                   OutPointFromEngine(c.FundingTxo),
		ChannelValueSats:             value,
		UnspendablePunishmentReserve: reserve,
		UserChannelID:                UserChannelIDFromEngine(c.UserChannelID),
		FeerateSatPer1000Weight:      c.FeerateSatPer1000Weight,
		BalanceMsat:                  balance,
		OutboundCapacityMsat:         outbound,
		InboundCapacityMsat:          inbound,
		ConfirmationsRequired:        copyUint32(c.ConfirmationsRequired),
		Confirmations:                copyUint32(c.Confirmations),
		IsOutbound:                   c.IsOutbound,
		IsChannelReady:               c.IsChannelReady,
		IsUsable:                     c.IsUsable,
		IsPublic:                     c.IsPublic,
		CltvExpiryDelta:              cltv,
	}, nil
}

func PaymentDirectionFromEngine(d engine.PaymentDirection) (PaymentDirection, error) {
	switch d {
	case engine.PaymentDirectionInbound:
		return PaymentDirectionInbound, nil
	case engine.PaymentDirectionOutbound:
		return PaymentDirectionOutbound, nil
	default:
		return "", status.Errorf(codes.MalformedEnum, "payment direction: no boundary variant for %d", int(d))
	}
}

func PaymentStatusFromEngine(s engine.PaymentStatus) (PaymentStatus, error) {
	switch s {
	case engine.PaymentStatusPending:
		return PaymentStatusPending, nil
	case engine.PaymentStatusSucceeded:
		return PaymentStatusSucceeded, nil
	case engine.PaymentStatusFailed:
		return PaymentStatusFailed, nil
	default:
		return "", status.Errorf(codes.MalformedEnum, "payment status: no boundary variant for %d", int(s))
	}
}

func PaymentDetailsFromEngine(p *engine.PaymentDetails) (*PaymentDetails, error) {
	direction, err := PaymentDirectionFromEngine(p.Direction)
	if err != nil {
		return nil, err
	}
	st, err := PaymentStatusFromEngine(p.Status)
	if err != nil {
		return nil, err
	}
	amount, err := narrowOptionalAmount("amount_msat", p.AmountMsat)
	if err != nil {
		return nil, err
	}

	r := &PaymentDetails{
		Hash:       PaymentHashFromEngine(p.Hash),
		AmountMsat: amount,
		Direction:  direction,
		Status:     st,
	}
	if p.Preimage != nil {
		b := PaymentPreimageFromEngine(*p.Preimage)
		r.Preimage = &b
	}
	if p.Secret != nil {
		b := PaymentSecretFromEngine(*p.Secret)
		r.Secret = &b
	}
	return r, nil
}

// DecodeInvoice checks that invoice is a bolt11 invoice for the given
// network.
func DecodeInvoice(invoice string, params *chaincfg.Params) (*zpay32.Invoice, error) {
	inv, err := zpay32.Decode(invoice, params)
	if err != nil {
		return nil, status.Errorf(codes.MalformedInvoice, "invalid invoice: %v", err)
	}
	return inv, nil
}

// CheckSignature checks that signature is a zbase32 encoded recoverable
// compact signature.
func CheckSignature(signature string) error {
	sig, err := zbase32.DecodeString(signature)
	if err != nil {
		return status.Errorf(codes.MalformedSignature, "signature is not zbase32: %v", err)
	}
	if len(sig) != 65 {
		return status.Errorf(codes.MalformedSignature, "signature must decode to 65 bytes, got %d", len(sig))
	}
	return nil
}

func AddressFromEngine(addr btcutil.Address, params *chaincfg.Params) (string, error) {
	if addr == nil {
		return "", status.Errorf(codes.MalformedAddress, "missing address")
	}
	if !addr.IsForNet(params) {
		return "", status.Errorf(codes.MalformedAddress, "address %s is not for network %s", addr.EncodeAddress(), params.Name)
	}
	return addr.EncodeAddress(), nil
}

// CheckServerURL validates an http(s) server url such as an esplora or rapid
// gossip sync server.
func CheckServerURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return status.Errorf(codes.MalformedURL, "%s: invalid url %q: %v", field, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return status.Errorf(codes.MalformedURL, "%s: url %q must use http or https", field, raw)
	}
	if u.Host == "" {
		return status.Errorf(codes.MalformedURL, "%s: url %q has no host", field, raw)
	}
	return nil
}

func copyUint32(v *uint32) *uint32 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
