package lnbind

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/breez/lnbind/build"
	"github.com/breez/lnbind/config"
	"github.com/breez/lnbind/engine"
	"github.com/breez/lnbind/engine/memengine"
	"github.com/breez/lnbind/hostrpc"
	"github.com/breez/lnbind/lnd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var errHostDisconnected = errors.New("host disconnected")

func Main(ctx context.Context, config *config.Config) error {
	log.Printf("Starting lnbind %s", build.Version())

	factory, err := newFactory(config)
	if err != nil {
		return err
	}

	registry := hostrpc.NewRegistry()
	defer registry.Close()

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := hostrpc.NewServer(config.Rpc.MaxSimultaneousRequests, metrics)
	hostrpc.RegisterServices(s, registry, factory)

	g, ctx := errgroup.WithContext(ctx)
	if config.Rpc.ListenAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/rpc", s.WebsocketHandler())
		serveHTTP(ctx, g, "host rpc", config.Rpc.ListenAddress, mux)
	} else {
		g.Go(func() error {
			log.Printf("Serving host rpc on stdio")

			// Reading stdin cannot be interrupted, so don't wait for Serve
			// on shutdown.
			done := make(chan error, 1)
			go func() {
				done <- s.Serve(ctx, hostrpc.NewStreamConn(os.Stdin, os.Stdout))
			}()
			select {
			case err := <-done:
				if err != nil {
					return err
				}
				// Stop everything once the host closes stdin.
				return errHostDisconnected
			case <-ctx.Done():
				return nil
			}
		})
	}

	if config.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}))
		serveHTTP(ctx, g, "metrics", config.MetricsAddress, mux)
	}

	go func() {
		<-ctx.Done()
		log.Printf("Received stop signal. Stopping.")
	}()

	err = g.Wait()
	if errors.Is(err, errHostDisconnected) {
		err = nil
	}
	log.Printf("lnbind exited")
	return err
}

func newFactory(cfg *config.Config) (engine.Factory, error) {
	switch cfg.Engine {
	case config.EngineLnd:
		log.Printf("Using lnd at %s", cfg.Lnd.Address)
		return lnd.NewFactory(cfg.Lnd), nil
	case config.EngineMemory:
		log.Printf("Using the in-memory engine")
		return memengine.NewFactory(cfg.Memory.OnchainBalanceSats), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

// serveHTTP runs an http server in g until ctx is done.
func serveHTTP(ctx context.Context, g *errgroup.Group, name string, address string, handler http.Handler) {
	srv := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Printf("Serving %s on %s", name, address)
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			log.Printf("%s server stopped.", name)
			return nil
		}
		log.Printf("FATAL. %s server stopped with error: %v", name, err)
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
