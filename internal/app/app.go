package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	catalogsvc "github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/notify"
	"github.com/vladislavdragonenkov/storefront/internal/service/placement"
	transport "github.com/vladislavdragonenkov/storefront/internal/transport/http"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run собирает приложение и обслуживает запросы до отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	worker := notify.NewWorker(
		deps.Publisher,
		notify.WithLogger(logger),
		notify.WithQueueSize(cfg.NotifyQueueSize),
		notify.WithMaxAttempts(cfg.NotifyMaxAttempts),
	)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(workerCtx)
	}()

	coordinator := placement.NewCoordinator(
		deps.Stores,
		deps.Catalog,
		deps.Placements,
		deps.Orders,
		worker,
		logger.WithField("component", "placement"),
	)
	reader := catalogsvc.NewService(
		deps.Catalog,
		deps.Stores,
		deps.Inventory,
		deps.Cache,
		logger.WithField("component", "catalog"),
	)

	router := transport.NewRouter(transport.NewHandler(coordinator, reader, logger.WithField("component", "http")))
	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	v, _, _ := version.Info()
	healthHandler := healthcheck.NewHandler(v)
	if pg := deps.Postgres(); pg != nil {
		healthHandler.RegisterProbe("postgres", pg.Ping)
	}
	if rdb := deps.Redis(); rdb != nil {
		healthHandler.RegisterProbe("redis", func(probeCtx context.Context) error {
			return rdb.Ping(probeCtx).Err()
		})
	}
	metricsSrv := startMetricsServer(cfg.MetricsAddr, logger, healthHandler)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, завершаем работу")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		// Воркер уведомлений останавливается после HTTP: даём шанс
		// доставить сигналы уже принятых заказов.
		stopWorker()
		wg.Wait()
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		stopWorker()
		wg.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer поднимает сервисный HTTP: /metrics и health-эндпоинты.
func startMetricsServer(addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()
	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
