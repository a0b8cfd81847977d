package parkingapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/parking-lot/internal/cache"
	"github.com/magabrotheeeer/parking-lot/internal/config"
	"github.com/magabrotheeeer/parking-lot/internal/fee"
	"github.com/magabrotheeeer/parking-lot/internal/http/handlers/health"
	"github.com/magabrotheeeer/parking-lot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/parking-lot/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/parking-lot/internal/lib/sl"
	"github.com/magabrotheeeer/parking-lot/internal/metrics"
	"github.com/magabrotheeeer/parking-lot/internal/migrations"
	"github.com/magabrotheeeer/parking-lot/internal/rates/seed"
	parkingservice "github.com/magabrotheeeer/parking-lot/internal/services/parking"
	rateservice "github.com/magabrotheeeer/parking-lot/internal/services/rates"
	"github.com/magabrotheeeer/parking-lot/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App представляет HTTP API парковки.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New поднимает зависимости: БД с миграциями, тарифы из файла, Redis, RabbitMQ и HTTP-сервер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	rateService := rateservice.NewRateService(db, cacheRedis, logger)
	if err = seed.Apply(ctx, logger, cfg.RatesSeedPath, db); err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetParkingQueues())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	calc := fee.NewCalculator(fee.WithLocation(loc))
	parkingService := parkingservice.NewParkingService(db, rateService, calc, rabbitmq.NewPublisher(ch), m, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, parkingService, rateService,
		map[string]health.Pinger{"storage": db, "cache": cacheRedis}, middlewarectx.NewLimiter(cfg.RateLimit), registry)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
