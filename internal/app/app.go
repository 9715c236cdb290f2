package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/carrinho/internal/health"
	"github.com/vladislavdragonenkov/carrinho/internal/httpapi"
	"github.com/vladislavdragonenkov/carrinho/internal/metrics"
	"github.com/vladislavdragonenkov/carrinho/internal/notify"
	"github.com/vladislavdragonenkov/carrinho/internal/version"
)

// Run поднимает витрину с корзиной и сервер метрик и блокируется до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.Register("storage", healthcheck.NewPingChecker("storage", deps.kv))

	if deps.dispatcher != nil {
		healthHandler.Register("kafka", healthcheck.NewOptionalChecker("kafka", deps.dispatcher.Healthy))
		// Останавливается после shutdownHTTP: запросы, которые ещё выполняются
		// при отмене ctx, успевают поставить изменения в очередь. Очередь
		// дочищается до закрытия producer в deps.close.
		stopDispatch := runDispatcher(deps.dispatcher)
		defer stopDispatch()
	}

	httpLogger := logger.WithField("layer", "http")
	handler := httpapi.NewHandler(httpapi.Deps{
		KV:       deps.kv,
		Catalog:  deps.catalog,
		Notifier: deps.notifier(),
		Metrics:  metrics.NewCartMetrics(),
		Logger:   httpLogger,
	})

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		shutdownHTTP(metricsSrv, cfg.ShutdownTimeout, logger)
		return err
	}

	srv := &http.Server{
		Handler:           httpapi.NewRouter(handler, httpLogger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("витрина доступна по адресу %s", lis.Addr())
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP серверы")
		shutdownHTTP(srv, cfg.ShutdownTimeout, logger)
		shutdownHTTP(metricsSrv, cfg.ShutdownTimeout, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, cfg.ShutdownTimeout, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// runDispatcher запускает доставку изменений в фоне. Доставка не зависит от
// ctx сервиса; stop отменяет её и ждёт, пока очередь будет дочищена.
func runDispatcher(d *notify.Dispatcher) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// startMetricsServer отдаёт /metrics для Prometheus и health-пробы.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, health *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health)
	mux.HandleFunc("/readyz", health.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, 0, logger)
	}()

	return srv
}

// shutdownHTTP останавливает сервер, ожидая активные запросы не дольше timeout.
func shutdownHTTP(srv *http.Server, timeout time.Duration, logger *log.Entry) {
	if srv == nil {
		return
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
