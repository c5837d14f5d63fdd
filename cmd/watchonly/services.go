package main

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/watchonly/internal/config"
	"github.com/tdex-network/watchonly/internal/core/application/wallet"
	"github.com/tdex-network/watchonly/internal/core/ports"
	esplorachain "github.com/tdex-network/watchonly/internal/infrastructure/chain/esplora"
	dbbadger "github.com/tdex-network/watchonly/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/watchonly/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/watchonly/pkg/explorer/esplora"
	"github.com/tdex-network/watchonly/pkg/stats"
)

func newWalletOpener(
	metrics *stats.SyncMetrics, progress ports.ProgressFunc,
) (*wallet.Opener, error) {
	explorerSvc, err := esplora.NewService(
		config.GetString(config.ExplorerURLKey),
		config.GetInt(config.ExplorerRequestsPerSecondKey),
		config.GetSeconds(config.ExplorerRequestTimeoutKey),
	)
	if err != nil {
		return nil, err
	}

	syncer, err := esplorachain.NewChainSyncer(
		explorerSvc, config.GetNetworkParams(),
		config.GetInt(config.GapLimitKey), metrics,
	)
	if err != nil {
		return nil, err
	}

	return wallet.NewOpener(syncer, newWalletCacheFactory(), wallet.Opts{
		IncludeUnconfirmed: config.GetBool(config.IncludeUnconfirmedKey),
		Progress:           progress,
	})
}

func newWalletCacheFactory() ports.WalletCacheFactory {
	if config.GetString(config.DBTypeKey) == config.DBBadger {
		logger := log.New()
		logger.SetLevel(log.WarnLevel)
		return dbbadger.NewWalletCacheFactory(logger)
	}
	return inmemory.NewWalletCacheFactory()
}

// serveMetrics exposes the metrics of the given registry until the context
// is done. The returned channel is closed once the server is stopped.
func serveMetrics(
	ctx context.Context, addr string, reg *prometheus.Registry,
) <-chan struct{} {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Warn("metrics server stopped")
		}
	}()
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("failed to gracefully stop metrics server")
			return
		}
		log.Debug("metrics server stopped")
	}()
	return done
}

// enableProfiler periodically logs memory statistics and dumps the metrics
// to the datadir when the context is done.
func enableProfiler(ctx context.Context, reg *prometheus.Registry) {
	if !config.GetBool(config.EnableProfilerKey) {
		return
	}
	dumpPath := filepath.Join(config.GetDatadir(), config.ProfilerLocation, "metrics")
	stats.EnableMemoryStatistics(
		ctx, config.GetSeconds(config.StatsIntervalKey), reg, dumpPath,
	)
}
