// Package services содержит планировщик, который находит транспорт, стоящий
// дольше порога, и публикует уведомления для персонала парковки.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/parking-lot/internal/fee"
	"github.com/magabrotheeeer/parking-lot/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/parking-lot/internal/lib/sl"
	"github.com/magabrotheeeer/parking-lot/internal/metrics"
	"github.com/magabrotheeeer/parking-lot/internal/models"
)

// SessionRepository определяет поиск долго стоящих сессий.
type SessionRepository interface {
	FindOverstayedSessions(ctx context.Context, before time.Time) ([]*models.Session, error)
}

// RateFinder возвращает активный тариф категории.
type RateFinder interface {
	FindActive(ctx context.Context, category string) (*models.Rate, error)
}

// Publisher отправляет события в брокер.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// SchedulerService периодически ищет транспорт, стоящий дольше overstayAfter.
type SchedulerService struct {
	repo          SessionRepository
	rates         RateFinder
	calc          *fee.Calculator
	publisher     Publisher
	metrics       *metrics.Metrics
	log           *slog.Logger
	overstayAfter time.Duration
	now           func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SessionRepository, rates RateFinder, calc *fee.Calculator, publisher Publisher,
	m *metrics.Metrics, log *slog.Logger, overstayAfter time.Duration) *SchedulerService {
	return &SchedulerService{
		repo:          repo,
		rates:         rates,
		calc:          calc,
		publisher:     publisher,
		metrics:       m,
		log:           log,
		overstayAfter: overstayAfter,
		now:           time.Now,
	}
}

// Run выполняет проверку сразу и затем каждые interval, пока не отменён ctx.
func (s *SchedulerService) Run(ctx context.Context, interval time.Duration) {
	s.runOverstayScan(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOverstayScan(ctx)
		}
	}
}

// runOverstayScan возвращает количество опубликованных уведомлений.
func (s *SchedulerService) runOverstayScan(ctx context.Context) int {
	now := s.now()
	s.log.Info("starting overstay scan", slog.Duration("overstay_after", s.overstayAfter))

	sessions, err := s.repo.FindOverstayedSessions(ctx, now.Add(-s.overstayAfter))
	if err != nil {
		s.log.Error("failed to find overstayed sessions", sl.Err(err))
		return 0
	}
	if len(sessions) == 0 {
		s.log.Info("no overstayed sessions found")
		return 0
	}
	s.log.Info("found overstayed sessions", slog.Int("count", len(sessions)))

	published := 0
	for _, session := range sessions {
		notice := models.OverstayNotice{
			SessionID:       session.ID,
			PlateNumber:     session.PlateNumber,
			VehicleCategory: session.VehicleCategory,
			EntryTime:       session.EntryTime,
			Duration:        fee.FormatDuration(session.EntryTime, now),
			AccruedFee:      s.accruedFee(ctx, session, now),
		}
		if err := s.publisher.Publish(rabbitmq.RoutingKeyOverstay, notice); err != nil {
			s.log.Error("failed to publish overstay notice", slog.String("session_id", session.ID), sl.Err(err))
			continue
		}
		s.metrics.OverstayNotices.Inc()
		published++
	}
	return published
}

// accruedFee считает стоимость на текущий момент. При ошибке уведомление уходит с нулевой суммой.
func (s *SchedulerService) accruedFee(ctx context.Context, session *models.Session, now time.Time) int64 {
	rate, err := s.rates.FindActive(ctx, session.VehicleCategory)
	if err != nil {
		s.log.Warn("failed to find rate for overstay notice",
			slog.String("vehicle_category", session.VehicleCategory), sl.Err(err))
		return 0
	}
	res, err := s.calc.CalculateFee(session.Interval(now), rate.RateSchedule)
	if err != nil {
		s.log.Warn("failed to calculate accrued fee", slog.String("session_id", session.ID), sl.Err(err))
		return 0
	}
	return res.TotalFee
}
