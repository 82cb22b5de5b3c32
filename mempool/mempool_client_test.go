package mempool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/breez/lnbind/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateFeeRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/fee-estimates", r.URL.Path)
		w.Write([]byte(`{"1": 30.5, "2": 25.1, "3": 20.0, "6": 12.2, "144": 2.0, "504": 1.1}`))
	}))
	defer srv.Close()

	c, err := NewMempoolClient(srv.URL + "/api")
	require.NoError(t, err)

	tests := []struct {
		strategy chain.FeeStrategy
		want     float64
	}{
		{chain.FeeStrategyFastest, 30.5},
		{chain.FeeStrategyHalfHour, 20.0},
		{chain.FeeStrategyHour, 12.2},
		{chain.FeeStrategyEconomy, 2.0},
		{chain.FeeStrategyMinimum, 1.1},
	}
	for _, tt := range tests {
		est, err := c.EstimateFeeRate(context.Background(), tt.strategy)
		require.NoError(t, err)
		require.NotNil(t, est.SatPerVByte)
		assert.Equal(t, tt.want, *est.SatPerVByte)
	}
}

func TestEstimateFeeRateErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewMempoolClient(srv.URL)
	require.NoError(t, err)
	_, err = c.EstimateFeeRate(context.Background(), chain.FeeStrategyHour)
	assert.Error(t, err)

	_, err = NewMempoolClient("")
	assert.Error(t, err)
}
