package codes

import "fmt"

// Code is a stable status code visible to the host. Values are part of the
// host protocol and must never be renumbered.
type Code int32

const (
	OK      Code = 0
	Unknown Code = 2

	ParseError     Code = -32700
	InvalidRequest Code = -32600
	MethodNotFound Code = -32601
	InvalidParams  Code = -32602
	InternalError  Code = -32603
)

// Build errors, raised only by Builder.Build.
const (
	InvalidSeedBytes        Code = 1001
	InvalidSeedFile         Code = 1002
	InvalidMnemonic         Code = 1003
	InvalidSystemTime       Code = 1004
	InvalidChannelMonitor   Code = 1005
	InvalidListeningAddress Code = 1006
	InvalidBuildNetwork     Code = 1007
	ReadFailed              Code = 1008
	WriteFailed             Code = 1009
	StoragePathAccessFailed Code = 1010
	KVStoreSetupFailed      Code = 1011
	WalletSetupFailed       Code = 1012
	LoggerSetupFailed       Code = 1013
	ChainSourceSetupFailed  Code = 1014
	GossipSourceSetupFailed Code = 1015
	MissingEntropySource    Code = 1101
	MissingStoragePath      Code = 1102
)

// Runtime errors, raised by a built node.
const (
	AlreadyRunning            Code = 2001
	NotRunning                Code = 2002
	OnchainTxCreationFailed   Code = 2003
	ConnectionFailed          Code = 2004
	InvoiceCreationFailed     Code = 2005
	PaymentSendingFailed      Code = 2006
	ChannelCreationFailed     Code = 2007
	ChannelClosingFailed      Code = 2008
	ChannelConfigUpdateFailed Code = 2009
	PersistenceFailed         Code = 2010
	WalletOperationFailed     Code = 2011
	OnchainTxSigningFailed    Code = 2012
	MessageSigningFailed      Code = 2013
	TxSyncFailed              Code = 2014
	GossipUpdateFailed        Code = 2015
	InvalidAddress            Code = 2016
	InvalidNetAddress         Code = 2017
	InvalidPublicKey          Code = 2018
	InvalidSecretKey          Code = 2019
	InvalidPaymentHash        Code = 2020
	InvalidPaymentPreimage    Code = 2021
	InvalidPaymentSecret      Code = 2022
	InvalidAmount             Code = 2023
	InvalidInvoice            Code = 2024
	InvalidChannelID          Code = 2025
	InvalidNetwork            Code = 2026
	DuplicatePayment          Code = 2027
	InsufficientFunds         Code = 2028
)

// Malformed values, raised by the converters before the engine is called.
const (
	MalformedValue      Code = 3000
	MalformedNetAddress Code = 3001
	MalformedPublicKey  Code = 3002
	WrongLength         Code = 3003
	OutOfRange          Code = 3004
	MalformedInvoice    Code = 3005
	MalformedEnum       Code = 3006
	MalformedOutPoint   Code = 3007
	MalformedSignature  Code = 3008
	MalformedMnemonic   Code = 3009
	MalformedURL        Code = 3010
	MalformedAddress    Code = 3011
	MalformedChannelID  Code = 3012
)

// Boundary errors, raised by the binding's own state machines.
const (
	AlreadyBuilt     Code = 4001
	NodeClosed       Code = 4002
	NoEventDelivered Code = 4003
	EventMismatch    Code = 4004
	WaitInFlight     Code = 4005
	UnknownHandle    Code = 4006
)

type Family int

const (
	FamilyNone Family = iota
	FamilyProtocol
	FamilyBuild
	FamilyRuntime
	FamilyMalformedValue
	FamilyBoundary
)

func (f Family) String() string {
	switch f {
	case FamilyProtocol:
		return "Protocol"
	case FamilyBuild:
		return "BuildError"
	case FamilyRuntime:
		return "RuntimeError"
	case FamilyMalformedValue:
		return "MalformedValue"
	case FamilyBoundary:
		return "BoundaryError"
	default:
		return "None"
	}
}

func (c Code) Family() Family {
	switch {
	case c == OK:
		return FamilyNone
	case c >= 1000 && c < 2000:
		return FamilyBuild
	case c >= 2000 && c < 3000:
		return FamilyRuntime
	case c >= 3000 && c < 4000:
		return FamilyMalformedValue
	case c >= 4000 && c < 5000:
		return FamilyBoundary
	default:
		return FamilyProtocol
	}
}

var names = map[Code]string{
	OK:             "OK",
	Unknown:        "Unknown",
	ParseError:     "ParseError",
	InvalidRequest: "InvalidRequest",
	MethodNotFound: "MethodNotFound",
	InvalidParams:  "InvalidParams",
	InternalError:  "InternalError",

	InvalidSeedBytes:        "InvalidSeedBytes",
	InvalidSeedFile:         "InvalidSeedFile",
	InvalidMnemonic:         "InvalidMnemonic",
	InvalidSystemTime:       "InvalidSystemTime",
	InvalidChannelMonitor:   "InvalidChannelMonitor",
	InvalidListeningAddress: "InvalidListeningAddress",
	InvalidBuildNetwork:     "InvalidNetwork",
	ReadFailed:              "ReadFailed",
	WriteFailed:             "WriteFailed",
	StoragePathAccessFailed: "StoragePathAccessFailed",
	KVStoreSetupFailed:      "KVStoreSetupFailed",
	WalletSetupFailed:       "WalletSetupFailed",
	LoggerSetupFailed:       "LoggerSetupFailed",
	ChainSourceSetupFailed:  "ChainSourceSetupFailed",
	GossipSourceSetupFailed: "GossipSourceSetupFailed",
	MissingEntropySource:    "MissingEntropySource",
	MissingStoragePath:      "MissingStoragePath",

	AlreadyRunning:            "AlreadyRunning",
	NotRunning:                "NotRunning",
	OnchainTxCreationFailed:   "OnchainTxCreationFailed",
	ConnectionFailed:          "ConnectionFailed",
	InvoiceCreationFailed:     "InvoiceCreationFailed",
	PaymentSendingFailed:      "PaymentSendingFailed",
	ChannelCreationFailed:     "ChannelCreationFailed",
	ChannelClosingFailed:      "ChannelClosingFailed",
	ChannelConfigUpdateFailed: "ChannelConfigUpdateFailed",
	PersistenceFailed:         "PersistenceFailed",
	WalletOperationFailed:     "WalletOperationFailed",
	OnchainTxSigningFailed:    "OnchainTxSigningFailed",
	MessageSigningFailed:      "MessageSigningFailed",
	TxSyncFailed:              "TxSyncFailed",
	GossipUpdateFailed:        "GossipUpdateFailed",
	InvalidAddress:            "InvalidAddress",
	InvalidNetAddress:         "InvalidNetAddress",
	InvalidPublicKey:          "InvalidPublicKey",
	InvalidSecretKey:          "InvalidSecretKey",
	InvalidPaymentHash:        "InvalidPaymentHash",
	InvalidPaymentPreimage:    "InvalidPaymentPreimage",
	InvalidPaymentSecret:      "InvalidPaymentSecret",
	InvalidAmount:             "InvalidAmount",
	InvalidInvoice:            "InvalidInvoice",
	InvalidChannelID:          "InvalidChannelId",
	InvalidNetwork:            "InvalidNetwork",
	DuplicatePayment:          "DuplicatePayment",
	InsufficientFunds:         "InsufficientFunds",

	MalformedValue:      "MalformedValue",
	MalformedNetAddress: "MalformedNetAddress",
	MalformedPublicKey:  "MalformedPublicKey",
	WrongLength:         "WrongLength",
	OutOfRange:          "OutOfRange",
	MalformedInvoice:    "MalformedInvoice",
	MalformedEnum:       "MalformedEnum",
	MalformedOutPoint:   "MalformedOutPoint",
	MalformedSignature:  "MalformedSignature",
	MalformedMnemonic:   "MalformedMnemonic",
	MalformedURL:        "MalformedURL",
	MalformedAddress:    "MalformedAddress",
	MalformedChannelID:  "MalformedChannelId",

	AlreadyBuilt:     "AlreadyBuilt",
	NodeClosed:       "NodeClosed",
	NoEventDelivered: "NoEventDelivered",
	EventMismatch:    "EventMismatch",
	WaitInFlight:     "WaitInFlight",
	UnknownHandle:    "UnknownHandle",
}

// String returns the kind name of the code, e.g. "InsufficientFunds".
func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return fmt.Sprintf("Code(%d)", int32(c))
}
