package bindings

import (
	"errors"
	"fmt"
	"testing"

	"github.com/breez/lnbind/bindings/codes"
	"github.com/breez/lnbind/bindings/status"
	"github.com/breez/lnbind/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryBuildErrorKindHasACode(t *testing.T) {
	seen := make(map[codes.Code]engine.BuildErrorKind)
	for _, kind := range engine.AllBuildErrorKinds {
		err := TranslateBuildError(engine.NewBuildError(kind, "engine says no"))
		s, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.FamilyBuild, s.Code.Family(), kind.String())
		assert.Equal(t, "engine says no", s.Message)

		prev, dup := seen[s.Code]
		assert.False(t, dup, "%v and %v share code %d", prev, kind, s.Code)
		seen[s.Code] = kind
	}
	assert.Len(t, buildErrorCodes, len(engine.AllBuildErrorKinds))
}

func TestEveryNodeErrorKindHasACode(t *testing.T) {
	seen := make(map[codes.Code]engine.NodeErrorKind)
	for _, kind := range engine.AllNodeErrorKinds {
		err := TranslateNodeError(engine.NewNodeError(kind, "engine says no"))
		s, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.FamilyRuntime, s.Code.Family(), kind.String())
		assert.Equal(t, "engine says no", s.Message)

		prev, dup := seen[s.Code]
		assert.False(t, dup, "%v and %v share code %d", prev, kind, s.Code)
		seen[s.Code] = kind
	}
	assert.Len(t, nodeErrorCodes, len(engine.AllNodeErrorKinds))
}

func TestTranslateKeepsKindMessage(t *testing.T) {
	err := TranslateNodeError(engine.NewNodeError(engine.ErrInsufficientFunds, ""))
	s := status.Convert(err)
	assert.Equal(t, codes.InsufficientFunds, s.Code)
	assert.NotEmpty(t, s.Message)
}

func TestTranslateWrappedEngineError(t *testing.T) {
	wrapped := fmt.Errorf("while paying: %w", engine.NewNodeError(engine.ErrPaymentSendingFailed, "no route"))
	assert.Equal(t, codes.PaymentSendingFailed, status.Code(TranslateNodeError(wrapped)))
}

func TestTranslateUnknownKind(t *testing.T) {
	err := TranslateNodeError(engine.NewNodeError(engine.NodeErrorKind(9999), "mystery"))
	s := status.Convert(err)
	assert.Equal(t, codes.Unknown, s.Code)
	assert.Equal(t, "mystery", s.Message)

	err = TranslateBuildError(engine.NewBuildError(engine.BuildErrorKind(9999), "mystery"))
	assert.Equal(t, codes.Unknown, status.Code(err))
}

func TestTranslateForeignError(t *testing.T) {
	err := TranslateNodeError(errors.New("plain failure"))
	s, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Unknown, s.Code)
	assert.Equal(t, "plain failure", s.Message)

	already := status.Errorf(codes.OutOfRange, "too big")
	assert.Equal(t, already, TranslateNodeError(already))

	assert.NoError(t, TranslateNodeError(nil))
	assert.NoError(t, TranslateBuildError(nil))
}

func TestStatusIs(t *testing.T) {
	err := fmt.Errorf("context: %w", status.Errorf(codes.NotRunning, "stopped"))
	assert.ErrorIs(t, err, status.Errorf(codes.NotRunning, "other message"))
	assert.NotErrorIs(t, err, status.Errorf(codes.AlreadyRunning, "stopped"))
}
