package chain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEstimator struct {
	calls int
	rate  float64
	err   error
}

func (e *countingEstimator) EstimateFeeRate(context.Context, FeeStrategy) (*FeeEstimation, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	rate := e.rate
	return &FeeEstimation{SatPerVByte: &rate}, nil
}

func TestCachedFeeEstimator(t *testing.T) {
	inner := &countingEstimator{rate: 12}
	now := time.Unix(1_700_000_000, 0)
	e := NewCachedFeeEstimator(inner, time.Minute)
	e.now = func() time.Time { return now }

	est, err := e.EstimateFeeRate(context.Background(), FeeStrategyEconomy)
	require.NoError(t, err)
	assert.Equal(t, 12.0, *est.SatPerVByte)

	inner.rate = 20
	est, err = e.EstimateFeeRate(context.Background(), FeeStrategyEconomy)
	require.NoError(t, err)
	assert.Equal(t, 12.0, *est.SatPerVByte)
	assert.Equal(t, 1, inner.calls)

	// Strategies are cached separately.
	_, err = e.EstimateFeeRate(context.Background(), FeeStrategyFastest)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	now = now.Add(2 * time.Minute)
	est, err = e.EstimateFeeRate(context.Background(), FeeStrategyEconomy)
	require.NoError(t, err)
	assert.Equal(t, 20.0, *est.SatPerVByte)
	assert.Equal(t, 3, inner.calls)
}

func TestCachedFeeEstimatorDoesNotCacheErrors(t *testing.T) {
	inner := &countingEstimator{err: errors.New("unavailable")}
	e := NewCachedFeeEstimator(inner, 0)

	_, err := e.EstimateFeeRate(context.Background(), FeeStrategyHour)
	assert.Error(t, err)
	_, err = e.EstimateFeeRate(context.Background(), FeeStrategyHour)
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestFallbackFeeEstimator(t *testing.T) {
	primary := &countingEstimator{err: errors.New("esplora down")}
	e := NewFallbackFeeEstimator(primary, NewDefaultFeeEstimator(6))

	est, err := e.EstimateFeeRate(context.Background(), FeeStrategyHour)
	require.NoError(t, err)
	assert.Nil(t, est.SatPerVByte)
	require.NotNil(t, est.TargetConf)
	assert.Equal(t, uint32(6), *est.TargetConf)
}

func TestFeeStrategyTargetConf(t *testing.T) {
	assert.Equal(t, uint32(1), FeeStrategyFastest.TargetConf())
	assert.Equal(t, uint32(144), FeeStrategyEconomy.TargetConf())
	assert.Equal(t, uint32(1008), FeeStrategyMinimum.TargetConf())
}
