package bindings

import (
	"errors"
	"log"

	"github.com/breez/lnbind/bindings/codes"
	"github.com/breez/lnbind/bindings/status"
	"github.com/breez/lnbind/engine"
)

var buildErrorCodes = map[engine.BuildErrorKind]codes.Code{
	engine.BuildErrInvalidSeedBytes:        codes.InvalidSeedBytes,
	engine.BuildErrInvalidSeedFile:         codes.InvalidSeedFile,
	engine.BuildErrInvalidMnemonic:         codes.InvalidMnemonic,
	engine.BuildErrInvalidSystemTime:       codes.InvalidSystemTime,
	engine.BuildErrInvalidChannelMonitor:   codes.InvalidChannelMonitor,
	engine.BuildErrInvalidListeningAddress: codes.InvalidListeningAddress,
	engine.BuildErrInvalidNetwork:          codes.InvalidBuildNetwork,
	engine.BuildErrReadFailed:              codes.ReadFailed,
	engine.BuildErrWriteFailed:             codes.WriteFailed,
	engine.BuildErrStoragePathAccessFailed: codes.StoragePathAccessFailed,
	engine.BuildErrKVStoreSetupFailed:      codes.KVStoreSetupFailed,
	engine.BuildErrWalletSetupFailed:       codes.WalletSetupFailed,
	engine.BuildErrLoggerSetupFailed:       codes.LoggerSetupFailed,
	engine.BuildErrChainSourceSetupFailed:  codes.ChainSourceSetupFailed,
	engine.BuildErrGossipSourceSetupFailed: codes.GossipSourceSetupFailed,
}

var nodeErrorCodes = map[engine.NodeErrorKind]codes.Code{
	engine.ErrAlreadyRunning:            codes.AlreadyRunning,
	engine.ErrNotRunning:                codes.NotRunning,
	engine.ErrOnchainTxCreationFailed:   codes.OnchainTxCreationFailed,
	engine.ErrConnectionFailed:          codes.ConnectionFailed,
	engine.ErrInvoiceCreationFailed:     codes.InvoiceCreationFailed,
	engine.ErrPaymentSendingFailed:      codes.PaymentSendingFailed,
	engine.ErrChannelCreationFailed:     codes.ChannelCreationFailed,
	engine.ErrChannelClosingFailed:      codes.ChannelClosingFailed,
	engine.ErrChannelConfigUpdateFailed: codes.ChannelConfigUpdateFailed,
	engine.ErrPersistenceFailed:         codes.PersistenceFailed,
	engine.ErrWalletOperationFailed:     codes.WalletOperationFailed,
	engine.ErrOnchainTxSigningFailed:    codes.OnchainTxSigningFailed,
	engine.ErrMessageSigningFailed:      codes.MessageSigningFailed,
	engine.ErrTxSyncFailed:              codes.TxSyncFailed,
	engine.ErrGossipUpdateFailed:        codes.GossipUpdateFailed,
	engine.ErrInvalidAddress:            codes.InvalidAddress,
	engine.ErrInvalidNetAddress:         codes.InvalidNetAddress,
	engine.ErrInvalidPublicKey:          codes.InvalidPublicKey,
	engine.ErrInvalidSecretKey:          codes.InvalidSecretKey,
	engine.ErrInvalidPaymentHash:        codes.InvalidPaymentHash,
	engine.ErrInvalidPaymentPreimage:    codes.InvalidPaymentPreimage,
	engine.ErrInvalidPaymentSecret:      codes.InvalidPaymentSecret,
	engine.ErrInvalidAmount:             codes.InvalidAmount,
	engine.ErrInvalidInvoice:            codes.InvalidInvoice,
	engine.ErrInvalidChannelID:          codes.InvalidChannelID,
	engine.ErrInvalidNetwork:            codes.InvalidNetwork,
	engine.ErrDuplicatePayment:          codes.DuplicatePayment,
	engine.ErrInsufficientFunds:         codes.InsufficientFunds,
}

// TranslateBuildError maps an error returned by engine.Factory.Build to a
// BuildError status. The engine's message is kept verbatim.
func TranslateBuildError(err error) error {
	if err == nil {
		return nil
	}
	var be *engine.BuildError
	if errors.As(err, &be) {
		code, ok := buildErrorCodes[be.Kind]
		if !ok {
			log.Printf("lnbind: no status code for build error kind %d: %v", int(be.Kind), err)
			return status.Errorf(codes.Unknown, "%s", be.Error())
		}
		return status.Errorf(code, "%s", be.Error())
	}
	return translateForeign(err)
}

// TranslateNodeError maps an error returned by an engine.Engine operation to
// a RuntimeError status. The engine's message is kept verbatim.
func TranslateNodeError(err error) error {
	if err == nil {
		return nil
	}
	var ne *engine.NodeError
	if errors.As(err, &ne) {
		code, ok := nodeErrorCodes[ne.Kind]
		if !ok {
			log.Printf("lnbind: no status code for node error kind %d: %v", int(ne.Kind), err)
			return status.Errorf(codes.Unknown, "%s", ne.Error())
		}
		return status.Errorf(code, "%s", ne.Error())
	}
	return translateForeign(err)
}

func translateForeign(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Errorf(codes.Unknown, "%s", err.Error())
}
