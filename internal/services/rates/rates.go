// Package services содержит бизнес-логику таблицы тарифов с кешированием активных тарифов.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/parking-lot/internal/cache"
	"github.com/magabrotheeeer/parking-lot/internal/fee"
	"github.com/magabrotheeeer/parking-lot/internal/lib/sl"
	"github.com/magabrotheeeer/parking-lot/internal/models"
)

// RateRepository определяет методы для работы с тарифами в хранилище.
type RateRepository interface {
	// FindActiveRate возвращает активный тариф категории.
	FindActiveRate(ctx context.Context, category string) (*models.Rate, error)
	// ListRates возвращает все тарифы.
	ListRates(ctx context.Context) ([]*models.Rate, error)
	// UpsertRate создаёт или заменяет тариф категории.
	UpsertRate(ctx context.Context, rate fee.RateSchedule) (*models.Rate, error)
	// DeactivateRate отключает тариф и возвращает количество изменённых записей.
	DeactivateRate(ctx context.Context, category string) (int64, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// RateService реализует работу с тарифами, включая кеширование активных тарифов.
type RateService struct {
	repo  RateRepository
	cache Cache
	log   *slog.Logger
}

// NewRateService создает новый экземпляр RateService.
func NewRateService(repo RateRepository, cache Cache, log *slog.Logger) *RateService {
	return &RateService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// FindActive возвращает активный тариф категории, сначала из кеша.
// Ошибки кеша только логируются.
func (s *RateService) FindActive(ctx context.Context, category string) (*models.Rate, error) {
	var result *models.Rate
	cacheKey := cache.RateKey(category)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read rate from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found && result != nil {
		return result, nil
	}

	result, err = s.repo.FindActiveRate(ctx, category)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, cache.RateTTL); err != nil {
		s.log.Warn("failed to add rate to cache", slog.String("key", cacheKey), sl.Err(err))
	}
	return result, nil
}

// List возвращает все тарифы, включая отключённые.
func (s *RateService) List(ctx context.Context) ([]*models.Rate, error) {
	return s.repo.ListRates(ctx)
}

// Upsert проверяет и сохраняет тариф, затем сбрасывает его в кеше.
func (s *RateService) Upsert(ctx context.Context, rate fee.RateSchedule) (*models.Rate, error) {
	const op = "services.RateService.Upsert"
	if err := rate.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	saved, err := s.repo.UpsertRate(ctx, rate)
	if err != nil {
		return nil, err
	}
	s.invalidate(rate.VehicleCategory)
	s.log.Info("rate saved", slog.String("vehicle_category", rate.VehicleCategory))
	return saved, nil
}

// Deactivate отключает тариф. Если активного тарифа нет, возвращает fee.ErrRateNotFound.
func (s *RateService) Deactivate(ctx context.Context, category string) error {
	const op = "services.RateService.Deactivate"
	affected, err := s.repo.DeactivateRate(ctx, category)
	if err != nil {
		return err
	}
	s.invalidate(category)
	if affected == 0 {
		return fmt.Errorf("%s: %w: %s", op, fee.ErrRateNotFound, category)
	}
	s.log.Info("rate deactivated", slog.String("vehicle_category", category))
	return nil
}

func (s *RateService) invalidate(category string) {
	cacheKey := cache.RateKey(category)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove rate from cache", slog.String("key", cacheKey), sl.Err(err))
	}
}
