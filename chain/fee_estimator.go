package chain

import "context"

type FeeStrategy int

const (
	FeeStrategyFastest  FeeStrategy = 0
	FeeStrategyHalfHour FeeStrategy = 1
	FeeStrategyHour     FeeStrategy = 2
	FeeStrategyEconomy  FeeStrategy = 3
	FeeStrategyMinimum  FeeStrategy = 4
)

// TargetConf is the confirmation target in blocks for the strategy.
func (s FeeStrategy) TargetConf() uint32 {
	switch s {
	case FeeStrategyFastest:
		return 1
	case FeeStrategyHalfHour:
		return 3
	case FeeStrategyHour:
		return 6
	case FeeStrategyEconomy:
		return 144
	default:
		return 1008
	}
}

// FeeEstimation is either an explicit fee rate or a confirmation target left
// to the node's own estimator.
type FeeEstimation struct {
	SatPerVByte *float64
	TargetConf  *uint32
}

type FeeEstimator interface {
	EstimateFeeRate(context.Context, FeeStrategy) (*FeeEstimation, error)
}
