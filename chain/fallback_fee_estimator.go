package chain

import (
	"context"
	"log"
)

// FallbackFeeEstimator uses fallback whenever primary fails.
type FallbackFeeEstimator struct {
	primary  FeeEstimator
	fallback FeeEstimator
}

func NewFallbackFeeEstimator(primary, fallback FeeEstimator) *FallbackFeeEstimator {
	return &FallbackFeeEstimator{
		primary:  primary,
		fallback: fallback,
	}
}

func (e *FallbackFeeEstimator) EstimateFeeRate(
	ctx context.Context,
	strategy FeeStrategy,
) (*FeeEstimation, error) {
	estimation, err := e.primary.EstimateFeeRate(ctx, strategy)
	if err == nil {
		return estimation, nil
	}

	log.Printf("fee estimation failed, using fallback: %v", err)
	return e.fallback.EstimateFeeRate(ctx, strategy)
}
