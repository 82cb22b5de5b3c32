package chain

import (
	"context"
	"sync"
	"time"
)

const DefaultCacheDuration = time.Minute * 5

type feeCache struct {
	time       time.Time
	estimation *FeeEstimation
}

// CachedFeeEstimator serves estimations of inner for at most cacheDuration.
type CachedFeeEstimator struct {
	cache         map[FeeStrategy]*feeCache
	cacheDuration time.Duration
	inner         FeeEstimator
	mtx           sync.Mutex
	now           func() time.Time
}

func NewCachedFeeEstimator(inner FeeEstimator, cacheDuration time.Duration) *CachedFeeEstimator {
	if cacheDuration <= 0 {
		cacheDuration = DefaultCacheDuration
	}
	return &CachedFeeEstimator{
		inner:         inner,
		cacheDuration: cacheDuration,
		cache:         make(map[FeeStrategy]*feeCache),
		now:           time.Now,
	}
}

func (e *CachedFeeEstimator) EstimateFeeRate(
	ctx context.Context,
	strategy FeeStrategy,
) (*FeeEstimation, error) {

	// Make sure we're in a lock, because we're reading/writing a map.
	e.mtx.Lock()
	defer e.mtx.Unlock()

	// See if there's a cached value first.
	cached, ok := e.cache[strategy]

	// If there is and it's still valid, return that.
	if ok && cached.time.Add(e.cacheDuration).After(e.now()) {
		return cached.estimation, nil
	}

	// There was no valid cache.
	// Fetch the new fee estimate.
	now := e.now()
	estimation, err := e.inner.EstimateFeeRate(ctx, strategy)
	if err != nil {
		return nil, err
	}

	// Cache it.
	e.cache[strategy] = &feeCache{
		time:       now,
		estimation: estimation,
	}

	return estimation, nil
}
