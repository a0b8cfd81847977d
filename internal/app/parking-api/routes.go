// Package parkingapi собирает HTTP API парковки: маршруты, зависимости и запуск сервера.
package parkingapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	// Регистрация Swagger-документации.
	_ "github.com/magabrotheeeer/parking-lot/docs"
	"github.com/magabrotheeeer/parking-lot/internal/fee"
	"github.com/magabrotheeeer/parking-lot/internal/http/handlers/fee/calculate"
	"github.com/magabrotheeeer/parking-lot/internal/http/handlers/health"
	ratedeactivate "github.com/magabrotheeeer/parking-lot/internal/http/handlers/rate/deactivate"
	ratelist "github.com/magabrotheeeer/parking-lot/internal/http/handlers/rate/list"
	rateupsert "github.com/magabrotheeeer/parking-lot/internal/http/handlers/rate/upsert"
	"github.com/magabrotheeeer/parking-lot/internal/http/handlers/session/enter"
	"github.com/magabrotheeeer/parking-lot/internal/http/handlers/session/exit"
	sessionlist "github.com/magabrotheeeer/parking-lot/internal/http/handlers/session/list"
	"github.com/magabrotheeeer/parking-lot/internal/http/handlers/session/quote"
	"github.com/magabrotheeeer/parking-lot/internal/http/handlers/session/read"
	"github.com/magabrotheeeer/parking-lot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/parking-lot/internal/models"
)

// ParkingService объединяет операции стоянки, которые нужны обработчикам.
type ParkingService interface {
	Enter(ctx context.Context, req models.DummyEntry) (*models.Session, error)
	Read(ctx context.Context, id string) (*models.SessionView, error)
	ListActive(ctx context.Context, limit, offset int) ([]*models.SessionView, error)
	Quote(ctx context.Context, id string, at time.Time) (*fee.Result, error)
	Exit(ctx context.Context, id string, req models.DummyExit) (*models.Session, error)
	Calculate(ctx context.Context, req models.DummyCalculate) (*fee.Result, error)
}

// RateService объединяет операции админки тарифов.
type RateService interface {
	List(ctx context.Context) ([]*models.Rate, error)
	Upsert(ctx context.Context, rate fee.RateSchedule) (*models.Rate, error)
	Deactivate(ctx context.Context, category string) error
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, parkingService ParkingService, rateService RateService,
	checks map[string]health.Pinger, limiter *rate.Limiter, gatherer prometheus.Gatherer) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))

		r.Post("/sessions", enter.New(logger, parkingService).ServeHTTP)
		r.Get("/sessions/active", sessionlist.New(logger, parkingService).ServeHTTP)
		r.Get("/sessions/{id}", read.New(logger, parkingService).ServeHTTP)
		r.Get("/sessions/{id}/quote", quote.New(logger, parkingService).ServeHTTP)
		r.Post("/sessions/{id}/exit", exit.New(logger, parkingService).ServeHTTP)

		r.Post("/fees/calculate", calculate.New(logger, parkingService).ServeHTTP)

		r.Get("/rates", ratelist.New(logger, rateService).ServeHTTP)
		r.Put("/rates/{category}", rateupsert.New(logger, rateService).ServeHTTP)
		r.Delete("/rates/{category}", ratedeactivate.New(logger, rateService).ServeHTTP)
	})

	r.Get("/health", health.New(logger, checks).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
