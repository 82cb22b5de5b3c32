package lnbind

import (
	"context"
	"testing"
	"time"

	"github.com/breez/lnbind/config"
	"github.com/breez/lnbind/engine/memengine"
	"github.com/breez/lnbind/lnd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFactory(t *testing.T) {
	f, err := newFactory(&config.Config{
		Engine: config.EngineMemory,
		Memory: &config.MemoryConfig{OnchainBalanceSats: 42},
	})
	require.NoError(t, err)
	mem, ok := f.(*memengine.Factory)
	require.True(t, ok, "factory is %T", f)
	assert.Equal(t, uint64(42), mem.OnchainBalanceSats)

	f, err = newFactory(&config.Config{
		Engine: config.EngineLnd,
		Lnd:    &config.LndConfig{Address: "127.0.0.1:10009", Cert: "cert"},
	})
	require.NoError(t, err)
	assert.IsType(t, &lnd.Factory{}, f)

	_, err = newFactory(&config.Config{Engine: "cln"})
	assert.Error(t, err)
}

func TestMainStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Main(ctx, &config.Config{
			Engine:         config.EngineMemory,
			Memory:         &config.MemoryConfig{},
			MetricsAddress: "127.0.0.1:0",
			Rpc: config.RpcConfig{
				ListenAddress:           "127.0.0.1:0",
				MaxSimultaneousRequests: 4,
			},
		})
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Main did not return after cancel")
	}
}
