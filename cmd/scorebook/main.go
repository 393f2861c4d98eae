// Command scorebook serves the tournament scorebook HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/okian/scorebook/internal/adapters/archive"
	"github.com/okian/scorebook/internal/adapters/http/api"
	"github.com/okian/scorebook/internal/adapters/http/swagger"
	"github.com/okian/scorebook/internal/adapters/http/ws"
	"github.com/okian/scorebook/internal/adapters/livestore"
	"github.com/okian/scorebook/internal/adapters/livestore/redisstore"
	"github.com/okian/scorebook/internal/adapters/mq/kafka"
	app "github.com/okian/scorebook/internal/app"
	"github.com/okian/scorebook/internal/config"
	"github.com/okian/scorebook/internal/domain/fixture"
	"github.com/okian/scorebook/internal/domain/match"
	"github.com/okian/scorebook/internal/domain/standings"
	"github.com/okian/scorebook/pkg/logger"
	"github.com/okian/scorebook/pkg/metrics"
)

// HTTP server timeout constants. Writes are unbounded for websocket streams.
const (
	readTimeout           = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg); err != nil {
		log.Error(ctx, "scorebook stopped with error", logger.Error(err))
		stop()
		os.Exit(1) //nolint:gocritic // exitAfterDefer
	}
}

// run wires the service and serves HTTP until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, closers, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAll(ctx, closers)

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, svc),
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// buildService creates the live store, archive and notifier selected by cfg
// and the service on top of them. closers are released in reverse order.
func buildService(ctx context.Context, cfg *config.Config) (*app.Service, []io.Closer, error) {
	var closers []io.Closer
	fail := func(err error) (*app.Service, []io.Closer, error) {
		closeAll(ctx, closers)
		return nil, nil, err
	}

	var store livestore.Store
	switch cfg.LiveStore {
	case config.LiveStoreRedis:
		rs, err := redisstore.Connect(ctx, cfg.RedisAddr, redisstore.WithPrefix(cfg.RedisPrefix))
		if err != nil {
			return fail(fmt.Errorf("connect live store: %w", err))
		}
		store = rs
	default:
		store = livestore.NewMemoryStore()
	}
	closers = append(closers, store)

	opts := []app.Option{
		app.WithLogger(logger.Get()),
		app.WithLiveStore(store),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMatchPolicy(match.Policy{MaxOvers: cfg.MaxOvers, MaxWickets: cfg.MaxWickets}),
		app.WithPointsScheme(standings.Scheme{Win: cfg.WinPoints, Tie: cfg.TiePoints, Loss: cfg.LossPoints}),
		app.WithOddTeam(fixture.OddTeam(cfg.KnockoutOddTeam)),
		app.WithPublishRetry(cfg.PublishRetries, time.Duration(cfg.PublishBackoffMS)*time.Millisecond),
	}

	if cfg.ArchiveDriver != config.ArchiveNone {
		arc, err := archive.Open(ctx, cfg.ArchiveDriver, cfg.ArchiveDSN)
		if err != nil {
			return fail(fmt.Errorf("open archive: %w", err))
		}
		closers = append(closers, arc)
		opts = append(opts, app.WithArchive(arc))
	}

	if len(cfg.KafkaBrokers) > 0 {
		n := kafka.New(kafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic), cfg.KafkaTopic)
		closers = append(closers, n)
		opts = append(opts, app.WithNotifier(n))
	}

	return app.New(opts...), closers, nil
}

func newRouter(ctx context.Context, svc *app.Service) *mux.Router {
	r := mux.NewRouter()
	swagger.Register(ctx, r)
	api.NewServer(svc, svc, ws.NewHub(svc.Store())).Register(ctx, r)
	return r
}

func closeAll(ctx context.Context, closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Get().Warn(ctx, "close failed", logger.Error(err))
		}
	}
}

// startSystemMetricsUpdater updates process gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
