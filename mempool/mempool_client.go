package mempool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/breez/lnbind/chain"
)

// MempoolClient estimates fees from an esplora compatible api, such as
// blockstream.info/api or mempool.space/api.
type MempoolClient struct {
	apiBaseUrl string
	httpClient *http.Client
}

// FeeEstimatesResponse maps a confirmation target in blocks to a fee rate in
// sat/vB.
type FeeEstimatesResponse map[string]float64

func NewMempoolClient(apiBaseUrl string) (*MempoolClient, error) {
	if apiBaseUrl == "" {
		return nil, fmt.Errorf("apiBaseUrl not set")
	}

	if !strings.HasSuffix(apiBaseUrl, "/") {
		apiBaseUrl = apiBaseUrl + "/"
	}

	return &MempoolClient{
		apiBaseUrl: apiBaseUrl,
		httpClient: http.DefaultClient,
	}, nil
}

func (m *MempoolClient) EstimateFeeRate(
	ctx context.Context,
	strategy chain.FeeStrategy,
) (*chain.FeeEstimation, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET",
		m.apiBaseUrl+"fee-estimates",
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext error: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Do error: %w", err)
	}

	defer resp.Body.Close()
	if !(resp.StatusCode >= 200 && resp.StatusCode < 300) {
		return nil, fmt.Errorf("error statuscode %v", resp.StatusCode)
	}

	var body FeeEstimatesResponse
	err = json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	rate, ok := body.rateFor(strategy.TargetConf())
	if !ok {
		return nil, fmt.Errorf("no fee estimate for strategy %v", strategy)
	}

	return &chain.FeeEstimation{
		SatPerVByte: &rate,
	}, nil
}

// rateFor returns the rate of the largest target not above target. Esplora
// only reports a fixed set of targets.
func (r FeeEstimatesResponse) rateFor(target uint32) (float64, bool) {
	targets := make([]uint64, 0, len(r))
	for k := range r {
		t, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			continue
		}
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] > targets[j] })
	for _, t := range targets {
		if t <= uint64(target) {
			return r[strconv.FormatUint(t, 10)], true
		}
	}
	return 0, false
}
