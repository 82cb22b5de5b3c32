package engine

import "fmt"

type BuildErrorKind int

const (
	BuildErrInvalidSeedBytes BuildErrorKind = iota
	BuildErrInvalidSeedFile
	BuildErrInvalidMnemonic
	BuildErrInvalidSystemTime
	BuildErrInvalidChannelMonitor
	BuildErrInvalidListeningAddress
	BuildErrInvalidNetwork
	BuildErrReadFailed
	BuildErrWriteFailed
	BuildErrStoragePathAccessFailed
	BuildErrKVStoreSetupFailed
	BuildErrWalletSetupFailed
	BuildErrLoggerSetupFailed
	BuildErrChainSourceSetupFailed
	BuildErrGossipSourceSetupFailed
)

// AllBuildErrorKinds lists every build error kind. Keep it in sync with the
// constants above; the bindings test every entry for a status code.
var AllBuildErrorKinds = []BuildErrorKind{
	BuildErrInvalidSeedBytes,
	BuildErrInvalidSeedFile,
	BuildErrInvalidMnemonic,
	BuildErrInvalidSystemTime,
	BuildErrInvalidChannelMonitor,
	BuildErrInvalidListeningAddress,
	BuildErrInvalidNetwork,
	BuildErrReadFailed,
	BuildErrWriteFailed,
	BuildErrStoragePathAccessFailed,
	BuildErrKVStoreSetupFailed,
	BuildErrWalletSetupFailed,
	BuildErrLoggerSetupFailed,
	BuildErrChainSourceSetupFailed,
	BuildErrGossipSourceSetupFailed,
}

var buildErrorNames = map[BuildErrorKind]string{
	BuildErrInvalidSeedBytes:        "Given seed bytes are invalid.",
	BuildErrInvalidSeedFile:         "Given seed file is invalid or could not be read.",
	BuildErrInvalidMnemonic:         "Given mnemonic is invalid.",
	BuildErrInvalidSystemTime:       "System time is invalid. Clocks might have gone back in time.",
	BuildErrInvalidChannelMonitor:   "Failed to watch a deserialized ChannelMonitor.",
	BuildErrInvalidListeningAddress: "Given listening address is invalid.",
	BuildErrInvalidNetwork:          "Given network is not supported.",
	BuildErrReadFailed:              "Failed to read from store.",
	BuildErrWriteFailed:             "Failed to write to store.",
	BuildErrStoragePathAccessFailed: "Failed to access the given storage path.",
	BuildErrKVStoreSetupFailed:      "Failed to setup KVStore.",
	BuildErrWalletSetupFailed:       "Failed to setup onchain wallet.",
	BuildErrLoggerSetupFailed:       "Failed to setup the logger.",
	BuildErrChainSourceSetupFailed:  "Failed to setup the chain source.",
	BuildErrGossipSourceSetupFailed: "Failed to setup the gossip source.",
}

func (k BuildErrorKind) String() string {
	if s, ok := buildErrorNames[k]; ok {
		return s
	}
	return fmt.Sprintf("unknown build error kind %d", int(k))
}

// BuildError is returned by Factory.Build.
type BuildError struct {
	Kind BuildErrorKind
	Msg  string
}

func NewBuildError(kind BuildErrorKind, format string, a ...interface{}) *BuildError {
	return &BuildError{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

func (e *BuildError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Msg
}

type NodeErrorKind int

const (
	ErrAlreadyRunning NodeErrorKind = iota
	ErrNotRunning
	ErrOnchainTxCreationFailed
	ErrConnectionFailed
	ErrInvoiceCreationFailed
	ErrPaymentSendingFailed
	ErrChannelCreationFailed
	ErrChannelClosingFailed
	ErrChannelConfigUpdateFailed
	ErrPersistenceFailed
	ErrWalletOperationFailed
	ErrOnchainTxSigningFailed
	ErrMessageSigningFailed
	ErrTxSyncFailed
	ErrGossipUpdateFailed
	ErrInvalidAddress
	ErrInvalidNetAddress
	ErrInvalidPublicKey
	ErrInvalidSecretKey
	ErrInvalidPaymentHash
	ErrInvalidPaymentPreimage
	ErrInvalidPaymentSecret
	ErrInvalidAmount
	ErrInvalidInvoice
	ErrInvalidChannelID
	ErrInvalidNetwork
	ErrDuplicatePayment
	ErrInsufficientFunds
)

// AllNodeErrorKinds lists every runtime error kind.
var AllNodeErrorKinds = []NodeErrorKind{
	ErrAlreadyRunning,
	ErrNotRunning,
	ErrOnchainTxCreationFailed,
	ErrConnectionFailed,
	ErrInvoiceCreationFailed,
	ErrPaymentSendingFailed,
	ErrChannelCreationFailed,
	ErrChannelClosingFailed,
	ErrChannelConfigUpdateFailed,
	ErrPersistenceFailed,
	ErrWalletOperationFailed,
	ErrOnchainTxSigningFailed,
	ErrMessageSigningFailed,
	ErrTxSyncFailed,
	ErrGossipUpdateFailed,
	ErrInvalidAddress,
	ErrInvalidNetAddress,
	ErrInvalidPublicKey,
	ErrInvalidSecretKey,
	ErrInvalidPaymentHash,
	ErrInvalidPaymentPreimage,
	ErrInvalidPaymentSecret,
	ErrInvalidAmount,
	ErrInvalidInvoice,
	ErrInvalidChannelID,
	ErrInvalidNetwork,
	ErrDuplicatePayment,
	ErrInsufficientFunds,
}

var nodeErrorNames = map[NodeErrorKind]string{
	ErrAlreadyRunning:            "Node is already running.",
	ErrNotRunning:                "Node is not running.",
	ErrOnchainTxCreationFailed:   "On-chain transaction could not be created.",
	ErrConnectionFailed:          "Network connection closed.",
	ErrInvoiceCreationFailed:     "Failed to create invoice.",
	ErrPaymentSendingFailed:      "Failed to send the given payment.",
	ErrChannelCreationFailed:     "Failed to create channel.",
	ErrChannelClosingFailed:      "Failed to close channel.",
	ErrChannelConfigUpdateFailed: "Failed to update channel config.",
	ErrPersistenceFailed:         "Failed to persist data.",
	ErrWalletOperationFailed:     "Failed to conduct wallet operation.",
	ErrOnchainTxSigningFailed:    "Failed to sign given transaction.",
	ErrMessageSigningFailed:      "Failed to sign given message.",
	ErrTxSyncFailed:              "Failed to sync transactions.",
	ErrGossipUpdateFailed:        "Failed to update gossip data.",
	ErrInvalidAddress:            "The given address is invalid.",
	ErrInvalidNetAddress:         "The given network address is invalid.",
	ErrInvalidPublicKey:          "The given public key is invalid.",
	ErrInvalidSecretKey:          "The given secret key is invalid.",
	ErrInvalidPaymentHash:        "The given payment hash is invalid.",
	ErrInvalidPaymentPreimage:    "The given payment preimage is invalid.",
	ErrInvalidPaymentSecret:      "The given payment secret is invalid.",
	ErrInvalidAmount:             "The given amount is invalid.",
	ErrInvalidInvoice:            "The given invoice is invalid.",
	ErrInvalidChannelID:          "The given channel ID is invalid.",
	ErrInvalidNetwork:            "The given network is invalid.",
	ErrDuplicatePayment:          "A payment with the given hash has already been initiated.",
	ErrInsufficientFunds:         "There are insufficient funds to complete the given operation.",
}

func (k NodeErrorKind) String() string {
	if s, ok := nodeErrorNames[k]; ok {
		return s
	}
	return fmt.Sprintf("unknown node error kind %d", int(k))
}

// NodeError is returned by every Engine operation.
type NodeError struct {
	Kind NodeErrorKind
	Msg  string
}

func NewNodeError(kind NodeErrorKind, format string, a ...interface{}) *NodeError {
	return &NodeError{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

func (e *NodeError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Msg
}
