package lnd

import (
	"strings"

	"github.com/breez/lnbind/engine"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// messageKinds classifies lnd errors by message where the grpc status code
// is too coarse.
var messageKinds = []struct {
	contains string
	kind     engine.NodeErrorKind
}{
	{"insufficient funds", engine.ErrInsufficientFunds},
	{"not enough witness outputs", engine.ErrInsufficientFunds},
	{"insufficient local balance", engine.ErrInsufficientFunds},
	{"invoice is already paid", engine.ErrDuplicatePayment},
	{"payment is in transition", engine.ErrDuplicatePayment},
	{"already succeeded", engine.ErrDuplicatePayment},
	{"invalid payment request", engine.ErrInvalidInvoice},
	{"unable to connect", engine.ErrConnectionFailed},
	{"dial tcp", engine.ErrConnectionFailed},
}

// nodeError turns an lnd error into a NodeError, using fallback when the
// error doesn't say anything more specific.
func nodeError(fallback engine.NodeErrorKind, err error) *engine.NodeError {
	msg := err.Error()
	s, ok := status.FromError(err)
	if ok {
		msg = s.Message()
		switch s.Code() {
		case codes.AlreadyExists:
			if fallback == engine.ErrPaymentSendingFailed {
				return engine.NewNodeError(engine.ErrDuplicatePayment, "%s", msg)
			}
		case codes.Unavailable:
			return engine.NewNodeError(engine.ErrConnectionFailed, "%s", msg)
		}
	}

	lower := strings.ToLower(msg)
	for _, m := range messageKinds {
		if strings.Contains(lower, m.contains) {
			return engine.NewNodeError(m.kind, "%s", msg)
		}
	}

	return engine.NewNodeError(fallback, "%s", msg)
}

func isNotFound(err error) bool {
	s, ok := status.FromError(err)
	if ok && s.Code() == codes.NotFound {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "unable to locate invoice") ||
		strings.Contains(msg, "there are no existing invoices") ||
		strings.Contains(msg, "not found")
}

func isAlreadyConnected(err error) bool {
	return strings.Contains(err.Error(), "already connected")
}

func isNotConnected(err error) bool {
	return strings.Contains(err.Error(), "not connected")
}
