package chain

import "context"

// DefaultFeeEstimator defers fee estimation to the node by only returning a
// confirmation target.
type DefaultFeeEstimator struct {
	targetConf uint32
}

func NewDefaultFeeEstimator(targetConf uint32) *DefaultFeeEstimator {
	return &DefaultFeeEstimator{
		targetConf: targetConf,
	}
}

func (e *DefaultFeeEstimator) EstimateFeeRate(
	context.Context,
	FeeStrategy,
) (*FeeEstimation, error) {
	target := e.targetConf
	return &FeeEstimation{
		TargetConf: &target,
	}, nil
}
